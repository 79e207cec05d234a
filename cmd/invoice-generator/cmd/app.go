package cmd

import (
	"context"
	"fmt"

	"github.com/rezonia/invoice-generator/internal/assembler"
	"github.com/rezonia/invoice-generator/internal/config"
	"github.com/rezonia/invoice-generator/internal/generator"
	"github.com/rezonia/invoice-generator/internal/numbering"
	"github.com/rezonia/invoice-generator/internal/render"
	"github.com/rezonia/invoice-generator/internal/store"
)

// app bundles the generator with the resources that must be released on exit
type app struct {
	generator *generator.Generator
	printer   *render.ChromePrinter
}

func (a *app) Close() {
	if a.printer != nil {
		_ = a.printer.Close()
	}
}

// newApp wires the generator from the loaded configuration. With lenient set,
// unknown output formats are skipped rather than rejected.
func newApp(ctx context.Context, c *config.Config, lenient bool) (*app, error) {
	st, err := newStore(ctx, c.Store)
	if err != nil {
		return nil, err
	}

	printer := render.NewChromePrinter(render.ChromeConfig{
		RemoteURL: c.PDF.RemoteURL,
		Timeout:   c.PDF.Timeout,
		NoSandbox: c.PDF.NoSandbox,
		Logger:    log.Named("chrome"),
	})

	htmlOpts := []render.HTMLOption{
		render.WithFallbackTemplate(c.Render.DefaultTemplate),
		render.WithHTMLLogger(log.Named("html")),
	}
	if c.Render.TemplateDir != "" {
		htmlOpts = append(htmlOpts, render.WithTemplateDir(c.Render.TemplateDir))
	}

	asm := assembler.New(
		assembler.WithNumberer(numbering.NewGenerator(c.Numbering.Prefix)),
		assembler.WithDefaultTemplate(c.Render.DefaultTemplate),
	)

	opts := []generator.Option{
		generator.WithAssembler(asm),
		generator.WithPrinter(render.NewInspectingPrinter(printer, log.Named("pdf"))),
		generator.WithHTMLRenderer(render.NewHTMLRenderer(htmlOpts...)),
		generator.WithStore(st),
		generator.WithLogger(log.Named("generator")),
	}
	if lenient {
		opts = append(opts, generator.WithLenientFormats())
	}
	gen := generator.New(opts...)

	return &app{generator: gen, printer: printer}, nil
}

func newStore(ctx context.Context, c config.StoreConfig) (store.Store, error) {
	switch c.Kind {
	case config.StoreFS:
		fsStore, err := store.NewFSStore(store.FSStoreConfig{
			Dir:    c.Dir,
			Logger: log.Named("store"),
		})
		if err != nil {
			return nil, err
		}
		return fsStore, nil
	case config.StoreS3:
		s3Store, err := store.NewS3Store(ctx, store.S3StoreConfig{
			Bucket:       c.S3.Bucket,
			Endpoint:     c.S3.Endpoint,
			Region:       c.S3.Region,
			AccessKey:    c.S3.AccessKey,
			SecretKey:    c.S3.SecretKey,
			UsePathStyle: c.S3.UsePathStyle,
			Prefix:       c.S3.Prefix,
		}, store.WithS3Logger(log.Named("store")))
		if err != nil {
			return nil, err
		}
		return s3Store, nil
	case config.StoreNone, "":
		return store.NopStore{}, nil
	default:
		return nil, fmt.Errorf("unsupported store kind: %s", c.Kind)
	}
}

// newCheckGenerator builds a generator for dry runs. It never prints or stores.
func newCheckGenerator() *generator.Generator {
	return generator.New(generator.WithLogger(log.Named("generator")))
}
