package http

import (
	"bytes"
	"embed"
	"html/template"

	"github.com/gofiber/fiber/v2"

	"nextstep-cv/internal/domain"
	"nextstep-cv/internal/form"
	"nextstep-cv/internal/importer"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	pageLanding = "landing.html"
	pageAuth    = "auth.html"
	pageCreate  = "create.html"
)

var funcs = template.FuncMap{
	"inc": func(i int) int { return i + 1 },
}

var pages = func() map[string]*template.Template {
	out := map[string]*template.Template{}
	for _, name := range []string{pageLanding, pageAuth, pageCreate} {
		out[name] = template.Must(template.New("layout.html").Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/"+name))
	}
	return out
}()

type Feature struct {
	Title       string
	Description string
}

var features = []Feature{
	{"ATS-Optimized", "Templates designed to pass Applicant Tracking Systems with ease."},
	{"AI-Powered", "Smart suggestions and auto-formatting for professional resumes."},
	{"Tailored Content", "Customized for your industry and career level."},
	{"Instant Analysis", "Real-time feedback and improvement suggestions."},
}

// view is everything a page template may read. Pages ignore the fields
// they do not use.
type view struct {
	Title    string
	Dark     bool
	Username string
	Flash    string
	Error    string

	// landing
	Features []Feature
	Accept   string

	// auth
	Signup bool
	Input  authInput

	// create
	Form    *form.Form
	History []domain.Submission
}

type authInput struct {
	Username string
	Email    string
}

func acceptAttr() string {
	return ".pdf,.docx," + importer.MIMEPDF + "," + importer.MIMEDOCX
}

func render(c *fiber.Ctx, status int, page string, v view) error {
	var buf bytes.Buffer
	if err := pages[page].Execute(&buf, v); err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.Status(status).Send(buf.Bytes())
}
