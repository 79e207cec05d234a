package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/rezonia/invoice-generator/internal/assembler"
	"github.com/rezonia/invoice-generator/internal/calculator"
	"github.com/rezonia/invoice-generator/internal/currency"
	"github.com/rezonia/invoice-generator/internal/generator"
	"github.com/rezonia/invoice-generator/internal/logger"
	"github.com/rezonia/invoice-generator/internal/model"
	"github.com/rezonia/invoice-generator/internal/store"
)

const defaultRequestTimeout = 2 * time.Minute

// Config holds server configuration
type Config struct {
	Address        string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	RequestTimeout time.Duration
	Debug          bool
}

// Server represents the HTTP API server
type Server struct {
	config    *Config
	router    *gin.Engine
	generator *generator.Generator
	logger    *zap.Logger
}

// NewServer creates a new API server around gen
func NewServer(config *Config, gen *generator.Generator, log *zap.Logger) *Server {
	if !config.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	if config.RequestTimeout <= 0 {
		config.RequestTimeout = defaultRequestTimeout
	}
	if log == nil {
		log = zap.NewNop()
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(logger.GinMiddleware(log))

	s := &Server{
		config:    config,
		router:    router,
		generator: gen,
		logger:    log,
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	// Health check
	s.router.GET("/health", s.handleHealth)

	// API v1
	v1 := s.router.Group("/api/v1")
	{
		// Generation endpoints
		v1.POST("/invoices", s.handleGenerate)
		v1.POST("/invoices/:format", s.handleGenerateFormat)

		// Dry-run endpoints
		v1.POST("/validate", s.handleValidate)
		v1.POST("/calculate", s.handleCalculate)

		v1.GET("/currencies", s.handleCurrencies)
	}
}

// Run serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.config.Address,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.logger.Info("shutting down server")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

// Handler returns the http.Handler for use with custom servers
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleGenerate(c *gin.Context) {
	in, ok := bindInput(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), s.config.RequestTimeout)
	defer cancel()

	result, err := s.generator.Generate(ctx, in)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, GenerateResponse{
		Summary:   result.Summary,
		Invoice:   result.Record,
		Artifacts: result.Artifacts,
	})
}

func (s *Server) handleGenerateFormat(c *gin.Context) {
	format, ok := model.ParseFormat(c.Param("format"))
	if !ok {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Invalid output format: " + c.Param("format") + ". Valid formats are: PDF, HTML, JSON",
		})
		return
	}

	in, ok := bindInput(c)
	if !ok {
		return
	}
	in.OutputFormats = []string{string(format)}

	ctx, cancel := context.WithTimeout(c.Request.Context(), s.config.RequestTimeout)
	defer cancel()

	result, err := s.generator.Generate(ctx, in)
	if err != nil {
		writeError(c, err)
		return
	}

	artifact, found := result.Artifact(format)
	if !found {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "no output produced"})
		return
	}

	filename := store.Key(result.Summary.InvoiceNumber, format) + format.Extension()
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Header(HeaderInvoiceNumber, result.Summary.InvoiceNumber)
	c.Header(HeaderGenerationID, result.Summary.GenerationID)
	c.Data(http.StatusOK, artifact.ContentType, artifact.Content)
}

func (s *Server) handleValidate(c *gin.Context) {
	in, ok := bindInput(c)
	if !ok {
		return
	}

	if err := s.generator.Check(in); err != nil {
		resp := ValidationResponse{Valid: false, Errors: []string{err.Error()}}
		var validationErr *model.ValidationError
		if errors.As(err, &validationErr) {
			resp.Field = validationErr.Field
		}
		c.JSON(http.StatusOK, resp)
		return
	}

	c.JSON(http.StatusOK, ValidationResponse{Valid: true})
}

func (s *Server) handleCalculate(c *gin.Context) {
	in, ok := bindInput(c)
	if !ok {
		return
	}

	if err := s.generator.Check(in); err != nil {
		writeError(c, err)
		return
	}

	details := in.Details()
	currencyCode := details.Currency
	if currencyCode == "" {
		currencyCode = model.DefaultCurrency
	}
	amounts := calculator.Calculate(assembler.NormalizeItems(in.Items), details.TaxRate, details.DiscountRate)

	c.JSON(http.StatusOK, CalculateResponse{
		Currency:       currencyCode,
		FormattedTotal: currency.Format(amounts.Total, currencyCode),
		InvoiceAmounts: amounts,
	})
}

func (s *Server) handleCurrencies(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"currencies": currency.All(),
		"default":    model.DefaultCurrency,
	})
}

// Helper functions

func bindInput(c *gin.Context) (*model.Input, bool) {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "failed to read request body"})
		return nil, false
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "empty request body"})
		return nil, false
	}

	var in model.Input
	if err := decodeJSON(body, &in); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid JSON body", Details: err.Error()})
		return nil, false
	}
	return &in, true
}

func writeError(c *gin.Context, err error) {
	_ = c.Error(err)

	var validationErr *model.ValidationError
	if errors.As(err, &validationErr) {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: validationErr.Message, Field: validationErr.Field})
		return
	}

	var dateErr *model.DateFormatError
	if errors.As(err, &dateErr) {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: dateErr.Error(), Field: dateErr.Field})
		return
	}

	if errors.Is(err, context.DeadlineExceeded) {
		c.JSON(http.StatusGatewayTimeout, ErrorResponse{Error: "generation timed out"})
		return
	}

	var renderErr *model.RenderError
	if errors.As(err, &renderErr) {
		c.JSON(http.StatusBadGateway, ErrorResponse{Error: "rendering failed", Details: renderErr.Error()})
		return
	}

	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error", Details: err.Error()})
}
