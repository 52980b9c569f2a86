// Package web embeds the portal's server-rendered templates.
package web

import (
	"embed"
	"html/template"
)

//go:embed templates/*.tmpl
var files embed.FS

// Templates parses the embedded views. Panics at startup on a bad
// template, never at request time.
func Templates() *template.Template {
	return template.Must(template.ParseFS(files, "templates/*.tmpl"))
}
