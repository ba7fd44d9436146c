package server

import (
	"embed"
	"html/template"
	"time"

	"github.com/gofiber/fiber/v2"
)

//go:embed templates/*.html
var templateFS embed.FS

// pageTemplates holds the parsed page templates, each paired with the
// shared layout.
var pageTemplates struct {
	Index  *template.Template
	Signup *template.Template
	Login  *template.Template
}

func loadTemplates() error {
	funcs := template.FuncMap{
		"formatTime": func(t time.Time) string { return t.Format("2006-01-02 15:04") },
	}

	layout, err := templateFS.ReadFile("templates/layout.html")
	if err != nil {
		return err
	}

	makePage := func(name string) (*template.Template, error) {
		content, err := templateFS.ReadFile("templates/" + name + ".html")
		if err != nil {
			return nil, err
		}
		tmpl, err := template.New("layout").Funcs(funcs).Parse(string(layout))
		if err != nil {
			return nil, err
		}
		return tmpl.Parse(string(content))
	}

	if pageTemplates.Index, err = makePage("index"); err != nil {
		return err
	}
	if pageTemplates.Signup, err = makePage("signup"); err != nil {
		return err
	}
	if pageTemplates.Login, err = makePage("login"); err != nil {
		return err
	}
	return nil
}

// renderPage executes the template into the response with an HTML content type.
func renderPage(c *fiber.Ctx, tmpl *template.Template, status int, data any) error {
	c.Status(status)
	c.Type("html", "utf-8")
	return tmpl.Execute(c.Response().BodyWriter(), data)
}
