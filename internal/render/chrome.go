package render

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

const (
	defaultPrintTimeout = 60 * time.Second

	// A4 in millimetres
	a4WidthMM  = 210.0
	a4HeightMM = 297.0
)

// ChromeConfig configures the headless browser printer
type ChromeConfig struct {
	// RemoteURL connects to a running Chrome DevTools endpoint instead of
	// launching a browser
	RemoteURL string
	Timeout   time.Duration
	// NoSandbox is required when running as root or in most containers
	NoSandbox bool
	Logger    *zap.Logger
}

// ChromePrinter prints HTML to A4 PDF with zero margins and backgrounds.
// The browser allocator is created lazily and shared until Close.
type ChromePrinter struct {
	cfg    ChromeConfig
	logger *zap.Logger

	once        sync.Once
	allocCtx    context.Context
	allocCancel context.CancelFunc
}

// NewChromePrinter creates a printer. No browser is started until the first Print.
func NewChromePrinter(cfg ChromeConfig) *ChromePrinter {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultPrintTimeout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChromePrinter{cfg: cfg, logger: logger}
}

func (p *ChromePrinter) allocator() context.Context {
	p.once.Do(func() {
		if p.cfg.RemoteURL != "" {
			p.allocCtx, p.allocCancel = chromedp.NewRemoteAllocator(context.Background(), p.cfg.RemoteURL)
			return
		}

		opts := append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-first-run", true),
			chromedp.Flag("disable-extensions", true),
			chromedp.Flag("disable-dev-shm-usage", true),
			chromedp.Flag("disable-background-networking", true),
			chromedp.Flag("font-render-hinting", "none"),
		)
		if p.cfg.NoSandbox {
			opts = append(opts, chromedp.NoSandbox)
		}
		p.allocCtx, p.allocCancel = chromedp.NewExecAllocator(context.Background(), opts...)
	})
	return p.allocCtx
}

// Print loads html into a fresh tab and prints it
func (p *ChromePrinter) Print(ctx context.Context, html []byte) ([]byte, error) {
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
	defer cancel()

	tabCtx, tabCancel := chromedp.NewContext(p.allocator(),
		chromedp.WithLogf(func(format string, args ...any) {
			p.logger.Debug(fmt.Sprintf(format, args...))
		}),
	)
	defer tabCancel()

	// stop the tab when the caller's deadline passes
	stop := context.AfterFunc(ctx, tabCancel)
	defer stop()

	var pdf []byte
	err := chromedp.Run(tabCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frameTree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(frameTree.Frame.ID, string(html)).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			data, _, err := page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(mmToInches(a4WidthMM)).
				WithPaperHeight(mmToInches(a4HeightMM)).
				WithMarginTop(0).
				WithMarginRight(0).
				WithMarginBottom(0).
				WithMarginLeft(0).
				WithPreferCSSPageSize(false).
				Do(ctx)
			if err != nil {
				return err
			}
			pdf = data
			return nil
		}),
	)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("pdf printing timed out after %v: %w", p.cfg.Timeout, err)
		}
		return nil, fmt.Errorf("chromedp execution failed: %w", err)
	}

	p.logger.Debug("pdf printed",
		zap.Int("bytes", len(pdf)),
		zap.Duration("duration", time.Since(start)))
	return pdf, nil
}

// Close shuts down the browser allocator
func (p *ChromePrinter) Close() error {
	if p.allocCancel != nil {
		p.allocCancel()
	}
	return nil
}

func mmToInches(mm float64) float64 {
	return mm / 25.4
}
