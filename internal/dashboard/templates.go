package dashboard

import (
	"embed"
	"html/template"
)

// TemplateName is the full-page dashboard template
const TemplateName = "dashboard.html"

//go:embed templates/*.html
var templateFS embed.FS

// Templates parses the embedded page templates
func Templates() (*template.Template, error) {
	return template.New("").ParseFS(templateFS, "templates/*.html")
}
