package render

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/rezonia/invoice-generator/internal/model"
)

// Dispatcher renders a record into each requested format, in request order
type Dispatcher struct {
	renderers map[model.Format]Renderer
	logger    *zap.Logger
}

// NewDispatcher creates a dispatcher over renderers. Later renderers replace
// earlier ones registered for the same format.
func NewDispatcher(logger *zap.Logger, renderers ...Renderer) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	d := &Dispatcher{
		renderers: make(map[model.Format]Renderer, len(renderers)),
		logger:    logger,
	}
	for _, r := range renderers {
		d.renderers[r.Format()] = r
	}
	return d
}

// Supports reports whether a renderer is registered for f
func (d *Dispatcher) Supports(f model.Format) bool {
	_, ok := d.renderers[f]
	return ok
}

// Render produces one artifact per recognised format name. Names are
// matched case-insensitively; unknown or repeated names are skipped. The
// first renderer failure aborts the call and no artifacts are returned.
func (d *Dispatcher) Render(ctx context.Context, record *model.InvoiceRecord, formats []string) ([]model.Artifact, error) {
	artifacts := make([]model.Artifact, 0, len(formats))
	seen := make(map[model.Format]bool, len(formats))

	for _, name := range formats {
		f, ok := model.ParseFormat(strings.TrimSpace(name))
		if !ok {
			d.logger.Warn("unsupported output format skipped", zap.String("format", name))
			continue
		}
		if !d.Supports(f) {
			d.logger.Warn("no renderer for output format", zap.String("format", string(f)))
			continue
		}
		r := d.renderers[f]
		if seen[f] {
			continue
		}
		seen[f] = true

		if err := ctx.Err(); err != nil {
			return nil, model.NewRenderError(f, "generation cancelled", err)
		}

		artifact, err := r.Render(ctx, record)
		if err != nil {
			var renderErr *model.RenderError
			if errors.As(err, &renderErr) {
				return nil, err
			}
			return nil, model.NewRenderError(f, "renderer failed", err)
		}

		d.logger.Info("output generated",
			zap.String("format", string(f)),
			zap.Int("size", artifact.Size))
		artifacts = append(artifacts, artifact)
	}

	return artifacts, nil
}
