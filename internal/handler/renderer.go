package handler

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path"
	"strings"
	"sync"

	"github.com/a-h/templ"
)

// Renderer manages template parsing and rendering with isolated template sets.
// It supports two layouts:
//   - "auth" layout for unauthenticated pages (login)
//   - "app" layout for pages behind the route guard (dashboard, listings, etc.)
//
// Templates are organized as:
//   - layouts/auth.html, layouts/app.html - base layouts
//   - components/*.html - reusable components (shared across layouts)
//   - partials/*.html - standalone fragments for htmx responses
//   - pages/auth/*.html - auth pages (use auth layout)
//   - pages/*.html, pages/<dir>/*.html - app pages (use app layout)
//
// Pages are exposed as templ components so handlers render them the same way
// whether a page is backed by html/template or generated templ code.
type Renderer struct {
	templates map[string]*template.Template
	logger    *slog.Logger
	isDev     bool
	fsys      fs.FS
	mu        sync.RWMutex
}

// RendererConfig holds configuration for the renderer.
type RendererConfig struct {
	// FS holds the templates, normally the embedded web.Templates.
	FS fs.FS

	// TemplatesDir, when set in development, is read from disk on every
	// render so template edits show up without a restart.
	TemplatesDir string

	Logger *slog.Logger
	IsDev  bool
}

// NewRenderer creates a new template renderer.
func NewRenderer(cfg RendererConfig) (*Renderer, error) {
	fsys := cfg.FS
	reload := false
	if cfg.IsDev && cfg.TemplatesDir != "" {
		fsys = os.DirFS(cfg.TemplatesDir)
		reload = true
	}
	if fsys == nil {
		return nil, fmt.Errorf("renderer: no template filesystem configured")
	}

	r := &Renderer{
		templates: make(map[string]*template.Template),
		logger:    cfg.Logger,
		isDev:     reload,
		fsys:      fsys,
	}

	if err := r.load(); err != nil {
		return nil, err
	}

	return r, nil
}

func (r *Renderer) load() error {
	templates, err := parseTemplates(r.fsys)
	if err != nil {
		return err
	}

	r.mu.Lock()
	r.templates = templates
	r.mu.Unlock()

	r.logger.Debug("templates loaded", "count", len(templates))
	return nil
}

func parseTemplates(fsys fs.FS) (map[string]*template.Template, error) {
	templates := make(map[string]*template.Template)

	var componentFiles []string
	err := fs.WalkDir(fsys, "components", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(p, ".html") {
			componentFiles = append(componentFiles, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk components dir: %w", err)
	}

	partialFiles, err := fs.Glob(fsys, "partials/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to glob partials: %w", err)
	}

	// Each partial is also parsed standalone for htmx fragment responses
	for _, partial := range partialFiles {
		tmpl, err := template.New("").Funcs(TemplateFuncs()).ParseFS(fsys, append([]string{partial}, componentFiles...)...)
		if err != nil {
			return nil, fmt.Errorf("failed to parse partial %s: %w", partial, err)
		}
		templates["partial/"+baseName(partial)] = tmpl
	}

	bases := make(map[string]*template.Template, 2)
	for _, layout := range []string{"auth", "app"} {
		files := append([]string{"layouts/" + layout + ".html"}, componentFiles...)
		files = append(files, partialFiles...)

		tmpl, err := template.New(layout).Funcs(TemplateFuncs()).ParseFS(fsys, files...)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s layout: %w", layout, err)
		}
		bases[layout] = tmpl
	}

	err = fs.WalkDir(fsys, "pages", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(p, ".html") {
			return nil
		}

		// "pages/auth/login.html" -> "auth/login", "pages/listings/show.html" -> "listings/show"
		name := strings.TrimSuffix(strings.TrimPrefix(p, "pages/"), ".html")
		layout := "app"
		if strings.HasPrefix(name, "auth/") {
			layout = "auth"
		}

		tmpl, err := bases[layout].Clone()
		if err != nil {
			return fmt.Errorf("failed to clone %s template for %s: %w", layout, p, err)
		}
		if _, err := tmpl.ParseFS(fsys, p); err != nil {
			return fmt.Errorf("failed to parse page %s: %w", p, err)
		}
		templates[name] = tmpl
		return nil
	})
	if err != nil {
		return nil, err
	}

	return templates, nil
}

func baseName(p string) string {
	return strings.TrimSuffix(path.Base(p), path.Ext(p))
}

// lookup returns the named template set, reloading first in development.
func (r *Renderer) lookup(name string) (*template.Template, error) {
	if r.isDev {
		if err := r.load(); err != nil {
			return nil, fmt.Errorf("template reload failed: %w", err)
		}
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	tmpl, ok := r.templates[name]
	if !ok {
		return nil, fmt.Errorf("template %q not found", name)
	}
	return tmpl, nil
}

// Render renders a page to an io.Writer.
func (r *Renderer) Render(w io.Writer, name string, data interface{}) error {
	tmpl, err := r.lookup(name)
	if err != nil {
		return err
	}
	return tmpl.ExecuteTemplate(w, baseTemplateName(name), data)
}

// Page returns the named page as a templ component.
func (r *Renderer) Page(name string, data interface{}) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		return r.Render(w, name, data)
	})
}

// Partial returns a partial as a templ component. The partial file must
// contain {{define "name"}}...{{end}} where name matches the file name.
func (r *Renderer) Partial(name string, data interface{}) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		tmpl, err := r.lookup("partial/" + name)
		if err != nil {
			return err
		}
		return tmpl.ExecuteTemplate(w, name, data)
	})
}

// baseTemplateName determines which base template to execute.
func baseTemplateName(name string) string {
	if strings.HasPrefix(name, "auth/") {
		return "auth"
	}
	return "app"
}

// ListTemplates returns a list of all loaded template names.
func (r *Renderer) ListTemplates() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.templates))
	for name := range r.templates {
		names = append(names, name)
	}
	return names
}

// =============================================================================
// Writing components
// =============================================================================

// renderComponent renders c into a buffer first so a template error can
// still produce a clean 500 before any bytes reach the client.
func renderComponent(w http.ResponseWriter, r *http.Request, logger *slog.Logger, status int, c templ.Component) {
	var buf bytes.Buffer
	if err := c.Render(r.Context(), &buf); err != nil {
		logger.Error("template execution failed", "path", r.URL.Path, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// ToastData holds data for rendering a toast notification.
type ToastData struct {
	Type        string // success, error, warning, info
	Title       string // optional
	Message     string
	AutoDismiss int // seconds, default 5
}

func (t ToastData) withDefaults() ToastData {
	if t.AutoDismiss == 0 {
		t.AutoDismiss = 5
	}
	if t.Type == "" {
		t.Type = "info"
	}
	return t
}
