// Package web holds the server-rendered dashboard templates.
package web

import (
	"embed"
	"html/template"
	"strings"
)

//go:embed templates/*.html
var templateFS embed.FS

// Funcs are the helpers available to every template.
var Funcs = template.FuncMap{
	"levelClass": LevelClass,
}

// Templates parses the embedded templates.
func Templates() (*template.Template, error) {
	return template.New("web").Funcs(Funcs).ParseFS(templateFS, "templates/*.html")
}

// LevelClass maps an intensity label such as "Very High" to its CSS class.
func LevelClass(level string) string {
	return "lvl-" + strings.ReplaceAll(strings.ToLower(level), " ", "-")
}
