package market

import (
	"errors"
	"fmt"
)

// Domain errors
var (
	ErrUpstream = errors.New("upstream error")
	ErrParse    = errors.New("parse error")
	ErrConfig   = errors.New("config error")
)

// UpstreamError is returned when the provider answers with a non-2xx status
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("alpaca api error: status=%d body=%s", e.StatusCode, e.Body)
}

func (e *UpstreamError) Is(target error) bool {
	return target == ErrUpstream
}

// ParseError is returned when a provider payload is malformed or incomplete
type ParseError struct {
	What string
	Err  error
}

func (e *ParseError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("parse %s", e.What)
	}
	return fmt.Sprintf("parse %s: %v", e.What, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func (e *ParseError) Is(target error) bool {
	return target == ErrParse
}

// ConfigError is returned when a required parameter or setting is missing
type ConfigError struct {
	Field string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("missing %s", e.Field)
}

func (e *ConfigError) Is(target error) bool {
	return target == ErrConfig
}
