package pagewriter

import (
	"bytes"
	// Import embed to allow importing default page templates
	_ "embed"
	"fmt"
	"html/template"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	middlewareapi "github.com/canvas-auth/canvas-auth-proxy/pkg/apis/middleware"
	"github.com/canvas-auth/canvas-auth-proxy/pkg/logger"
)

const (
	errorTemplateName   = "error.html"
	landingTemplateName = "landing.html"
	robotsTxtName       = "robots.txt"
)

var (
	//go:embed error.html
	defaultErrorTemplate string
	//go:embed landing.html
	defaultLandingTemplate string
	//go:embed robots.txt
	defaultRobotsTxt []byte
)

// Opts configures a Writer.
type Opts struct {
	// TemplatesPath is a directory whose error.html, landing.html and
	// robots.txt replace the built in ones.
	TemplatesPath string

	// ProxyPrefix and LoginPath make up the "Sign in again" link.
	ProxyPrefix string
	LoginPath   string

	// Footer replaces the default footer. "-" removes it.
	Footer  string
	Version string

	// Debug shows the underlying error on error pages.
	Debug bool
}

// Writer renders the pages the gate answers with itself: the landing pages
// that end a login flow, the error page and robots.txt.
type Writer struct {
	templates *template.Template
	robotsTxt []byte
	loginURL  string
	footer    template.HTML
	version   string
	debug     bool
}

// page is the data every template is rendered with.
type page struct {
	Header     string
	Message    string
	StatusCode int
	LoginURL   string
	Redirect   string
	RequestID  string
	Footer     template.HTML
	Version    string
}

// NewWriter loads the templates, preferring those in opts.TemplatesPath.
func NewWriter(opts Opts) (*Writer, error) {
	templates := template.New("").Funcs(template.FuncMap{
		"ToUpper": strings.ToUpper,
		"ToLower": strings.ToLower,
	})
	for name, fallback := range map[string]string{
		errorTemplateName:   defaultErrorTemplate,
		landingTemplateName: defaultLandingTemplate,
	} {
		text, err := readCustom(opts.TemplatesPath, name)
		if err != nil {
			return nil, err
		}
		if text == nil {
			text = []byte(fallback)
		}
		if _, err := templates.New(name).Parse(string(text)); err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %v", name, err)
		}
	}

	robotsTxt, err := readCustom(opts.TemplatesPath, robotsTxtName)
	if err != nil {
		return nil, err
	}
	if robotsTxt == nil {
		robotsTxt = defaultRobotsTxt
	}

	/* #nosec G203 */
	return &Writer{
		templates: templates,
		robotsTxt: robotsTxt,
		loginURL:  opts.ProxyPrefix + opts.LoginPath,
		footer:    template.HTML(opts.Footer),
		version:   opts.Version,
		debug:     opts.Debug,
	}, nil
}

// readCustom returns the named file from dir, or nil when dir is unset or
// has no such regular file.
func readCustom(dir, name string) ([]byte, error) {
	if dir == "" {
		return nil, nil
	}
	path := filepath.Join(dir, name)
	if info, err := os.Stat(path); err != nil || !info.Mode().IsRegular() {
		return nil, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read %s: %v", path, err)
	}
	return content, nil
}

// render writes the named template, or a plain 500 if it cannot be
// executed. Nothing is written before the template has rendered.
func (w *Writer) render(rw http.ResponseWriter, name string, p page) {
	p.Footer = w.footer
	p.Version = w.version

	var buf bytes.Buffer
	if err := w.templates.ExecuteTemplate(&buf, name, p); err != nil {
		logger.Errorf("Error rendering %s: %v", name, err)
		http.Error(rw, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	rw.Header().Set("Content-Type", "text/html; charset=utf-8")
	rw.WriteHeader(p.StatusCode)
	if _, err := buf.WriteTo(rw); err != nil {
		logger.Errorf("Error writing %s: %v", name, err)
	}
}

// WriteRobotsTxt writes robots.txt.
func (w *Writer) WriteRobotsTxt(rw http.ResponseWriter, _ *http.Request) {
	rw.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if _, err := rw.Write(w.robotsTxt); err != nil {
		logger.Errorf("Error writing %s: %v", robotsTxtName, err)
	}
}

func requestID(req *http.Request) string {
	if scope := middlewareapi.GetRequestScope(req); scope != nil {
		return scope.RequestID
	}
	return ""
}
