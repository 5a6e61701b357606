package echoweb

import (
	"embed"
	"html/template"
	"io"
	"io/fs"
	"path"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/flavorsense/flavorsense/core/menu"
	"github.com/flavorsense/flavorsense/core/review"
)

//go:embed templates/*.gohtml
var templateFS embed.FS

const (
	showRegister = "register"
	showLogin    = "login"
)

type (
	// authPage is the register/login page; Show selects the visible form.
	authPage struct {
		Show  string
		Error string
		Name  string
		Email string
	}

	studentPage struct {
		Name  string
		Email string
		Menu  menu.Menu
		Today string
	}

	staffLoginPage struct {
		Error    string
		Username string
	}

	dashboardPage struct {
		Menu        menu.Menu
		Reviews     []review.Row
		TodayIndex  int
		Message     string
		MenuUpdated bool
	}
)

var funcMap = template.FuncMap{
	"weekdays": func() []string { return review.Weekdays[:] },
	"dishes":   splitDishes,
	"stars":    func() []int { return []int{1, 2, 3, 4, 5} },
	"isYes":    func(flag string) bool { return strings.EqualFold(strings.TrimSpace(flag), review.Yes) },
}

// renderer renders the embedded pages, each wrapped in the "base" layout.
type renderer struct {
	templates map[string]*template.Template // {page name: template}
}

var _ echo.Renderer = (*renderer)(nil)

func newRenderer() *renderer {
	r := &renderer{templates: make(map[string]*template.Template)}

	pages, err := fs.Glob(templateFS, "templates/*.gohtml")
	if err != nil {
		panic(err)
	}
	for _, page := range pages {
		name := path.Base(page)
		if strings.HasPrefix(name, "_") {
			continue
		}
		r.templates[strings.TrimSuffix(name, ".gohtml")] = template.Must(
			template.New(name).Funcs(funcMap).ParseFS(templateFS, "templates/_base.gohtml", page),
		)
	}
	return r
}

func (r *renderer) Render(w io.Writer, name string, data interface{}, _ echo.Context) error {
	tmpl, ok := r.templates[name]
	if !ok {
		return errors.Errorf("template %q not found", name)
	}
	return tmpl.ExecuteTemplate(w, "base", data)
}

// splitDishes splits a comma-separated meal into its dishes.
func splitDishes(meal string) []string {
	var dishes []string
	for _, d := range strings.Split(meal, ",") {
		if d = strings.TrimSpace(d); d != "" {
			dishes = append(dishes, d)
		}
	}
	return dishes
}

func renderAuthPage(ctx echo.Context, code int, page authPage) error {
	return ctx.Render(code, "register_login", page)
}
