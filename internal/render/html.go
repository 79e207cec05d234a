package render

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"html/template"
	"io/fs"
	"maps"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/rezonia/invoice-generator/internal/currency"
	"github.com/rezonia/invoice-generator/internal/model"
)

//go:embed templates/*.html
var builtinTemplates embed.FS

const templateExt = ".html"

// HTMLRenderer renders a record through a named template. Missing templates
// fall back to the default one.
type HTMLRenderer struct {
	templates fs.FS
	fallback  string
	funcMap   template.FuncMap
	logger    *zap.Logger
}

// HTMLOption configures the HTML renderer
type HTMLOption func(*HTMLRenderer)

// WithTemplateDir reads templates from dir instead of the built-in set
func WithTemplateDir(dir string) HTMLOption {
	return func(r *HTMLRenderer) {
		if dir != "" {
			r.templates = os.DirFS(dir)
		}
	}
}

// WithTemplateFS reads templates from fsys. Names resolve to <name>.html.
func WithTemplateFS(fsys fs.FS) HTMLOption {
	return func(r *HTMLRenderer) {
		r.templates = fsys
	}
}

// WithFallbackTemplate sets the template used when the requested one is missing
func WithFallbackTemplate(name string) HTMLOption {
	return func(r *HTMLRenderer) {
		if name != "" {
			r.fallback = name
		}
	}
}

// WithHTMLLogger sets the logger
func WithHTMLLogger(logger *zap.Logger) HTMLOption {
	return func(r *HTMLRenderer) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewHTMLRenderer creates an HTML renderer backed by the built-in templates
func NewHTMLRenderer(opts ...HTMLOption) *HTMLRenderer {
	sub, _ := fs.Sub(builtinTemplates, "templates")
	r := &HTMLRenderer{
		templates: sub,
		fallback:  model.DefaultTemplate,
		logger:    zap.NewNop(),
		funcMap: template.FuncMap{
			"formatCurrency": formatCurrency,
			"currencyName":   currency.Name,
			"currencySymbol": currency.Symbol,
			"join":           strings.Join,
			"compact":        compact,
		},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Format returns model.FormatHTML
func (r *HTMLRenderer) Format() model.Format {
	return model.FormatHTML
}

// Render produces the styled document artifact
func (r *HTMLRenderer) Render(ctx context.Context, record *model.InvoiceRecord) (model.Artifact, error) {
	html, err := r.RenderHTML(ctx, record)
	if err != nil {
		return model.Artifact{}, err
	}
	return model.NewArtifact(model.FormatHTML, html), nil
}

// RenderHTML executes the record's template and returns the document bytes
func (r *HTMLRenderer) RenderHTML(_ context.Context, record *model.InvoiceRecord) ([]byte, error) {
	name, content, err := r.load(record.Template)
	if err != nil {
		return nil, err
	}

	// helpers are copied per call so concurrent renders never share a FuncMap
	funcMap := make(template.FuncMap, len(r.funcMap))
	maps.Copy(funcMap, r.funcMap)

	tmpl, err := template.New(name).Funcs(funcMap).Parse(string(content))
	if err != nil {
		return nil, model.NewRenderError(model.FormatHTML, "failed to parse template "+name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, record); err != nil {
		return nil, model.NewRenderError(model.FormatHTML, "failed to execute template "+name, err)
	}
	return buf.Bytes(), nil
}

// Templates lists the names available to records
func (r *HTMLRenderer) Templates() ([]string, error) {
	matches, err := fs.Glob(r.templates, "*"+templateExt)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(matches))
	for i, m := range matches {
		names[i] = strings.TrimSuffix(m, templateExt)
	}
	return names, nil
}

func (r *HTMLRenderer) load(name string) (string, []byte, error) {
	if name != "" {
		content, err := r.read(name)
		if err == nil {
			return name, content, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", nil, model.NewRenderError(model.FormatHTML, "failed to read template "+name, err)
		}
		r.logger.Warn("template not found, using fallback",
			zap.String("template", name),
			zap.String("fallback", r.fallback))
	}

	content, err := r.read(r.fallback)
	if err != nil {
		return "", nil, model.NewRenderError(model.FormatHTML, "fallback template unavailable: "+r.fallback, err)
	}
	return r.fallback, content, nil
}

func (r *HTMLRenderer) read(name string) ([]byte, error) {
	file := name + templateExt
	if !fs.ValidPath(file) || strings.Contains(name, "/") {
		return nil, fs.ErrNotExist
	}
	return fs.ReadFile(r.templates, file)
}

func formatCurrency(amount decimal.Decimal, code string) string {
	return currency.Format(amount, code)
}

// compact drops empty strings, for joining optional address parts
func compact(parts ...string) []string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			out = append(out, p)
		}
	}
	return out
}
