package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// DefaultUserInfoURL is Google's OpenID userinfo endpoint
const DefaultUserInfoURL = "https://openidconnect.googleapis.com/v1/userinfo"

// ErrNotConfigured is returned when sign-in is attempted without credentials
var ErrNotConfigured = errors.New("identity provider not configured")

// Config holds OAuth client configuration
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// User is the signed-in identity
type User struct {
	Subject string `json:"sub"`
	Email   string `json:"email"`
	Name    string `json:"name,omitempty"`
	Picture string `json:"picture,omitempty"`
}

// DisplayName returns the local part of the e-mail
func (u User) DisplayName() string {
	if i := strings.IndexByte(u.Email, '@'); i >= 0 {
		return u.Email[:i]
	}
	return u.Email
}

// GoogleProvider signs users in with Google OAuth2
type GoogleProvider struct {
	oauth       *oauth2.Config
	userInfoURL string
}

// ProviderOption configures a GoogleProvider
type ProviderOption func(*GoogleProvider)

// WithEndpoint overrides the OAuth endpoints
func WithEndpoint(authURL, tokenURL string) ProviderOption {
	return func(p *GoogleProvider) {
		p.oauth.Endpoint = oauth2.Endpoint{AuthURL: authURL, TokenURL: tokenURL}
	}
}

// WithUserInfoURL overrides the userinfo endpoint
func WithUserInfoURL(u string) ProviderOption {
	return func(p *GoogleProvider) {
		p.userInfoURL = u
	}
}

// NewGoogleProvider creates a provider; it is unavailable when cfg lacks credentials
func NewGoogleProvider(cfg Config, opts ...ProviderOption) *GoogleProvider {
	p := &GoogleProvider{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint:     google.Endpoint,
			Scopes:       []string{"openid", "email", "profile"},
		},
		userInfoURL: DefaultUserInfoURL,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Available reports whether sign-in can be offered
func (p *GoogleProvider) Available() bool {
	return p.oauth.ClientID != "" && p.oauth.ClientSecret != ""
}

// AuthCodeURL returns the consent page URL carrying state
// redirectURL overrides the configured callback when non-empty
func (p *GoogleProvider) AuthCodeURL(state, redirectURL string) string {
	cfg := p.config(redirectURL)
	return cfg.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// Exchange trades an authorization code for the user's identity
func (p *GoogleProvider) Exchange(ctx context.Context, code, redirectURL string) (*User, error) {
	if !p.Available() {
		return nil, ErrNotConfigured
	}

	cfg := p.config(redirectURL)
	tok, err := cfg.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange code: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.userInfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create userinfo request: %w", err)
	}

	resp, err := cfg.Client(ctx, tok).Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch userinfo: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read userinfo: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo error: status=%d body=%s", resp.StatusCode, string(body))
	}

	var u User
	if err := json.Unmarshal(body, &u); err != nil {
		return nil, fmt.Errorf("unmarshal userinfo: %w", err)
	}
	if u.Email == "" {
		return nil, errors.New("userinfo has no email")
	}

	return &u, nil
}

func (p *GoogleProvider) config(redirectURL string) *oauth2.Config {
	if redirectURL == "" || redirectURL == p.oauth.RedirectURL {
		return p.oauth
	}
	cfg := *p.oauth
	cfg.RedirectURL = redirectURL
	return &cfg
}
