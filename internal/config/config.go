// Package config loads generator settings from an optional config file,
// a .env file and INVOICE_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/rezonia/invoice-generator/internal/logger"
)

// EnvPrefix is prepended to every environment override, e.g. INVOICE_STORE_KIND
const EnvPrefix = "INVOICE"

// Store kinds
const (
	StoreNone = "none"
	StoreFS   = "fs"
	StoreS3   = "s3"
)

// Config holds all application configuration
type Config struct {
	Log       logger.Config
	Server    ServerConfig
	Render    RenderConfig
	PDF       PDFConfig
	Store     StoreConfig
	Numbering NumberingConfig
}

// ServerConfig holds HTTP listener settings
type ServerConfig struct {
	Address      string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	Debug        bool
}

// RenderConfig holds template settings
type RenderConfig struct {
	TemplateDir     string // overrides the built-in templates when set
	DefaultTemplate string
}

// PDFConfig holds headless browser settings
type PDFConfig struct {
	RemoteURL string // connect to a running browser instead of launching one
	Timeout   time.Duration
	NoSandbox bool
}

// StoreConfig selects where artifacts are persisted
type StoreConfig struct {
	Kind string // none, fs, s3
	Dir  string
	S3   S3Config
}

// S3Config holds S3-compatible object storage settings
type S3Config struct {
	Bucket       string
	Endpoint     string
	Region       string
	AccessKey    string
	SecretKey    string
	UsePathStyle bool
	Prefix       string
}

// NumberingConfig holds invoice number settings
type NumberingConfig struct {
	Prefix string
}

// NewViper returns a viper instance with defaults and environment binding.
// Callers may bind flags onto it before calling Load.
func NewViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.output", "stderr")

	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 2*time.Minute)
	v.SetDefault("server.debug", false)

	v.SetDefault("render.template_dir", "")
	v.SetDefault("render.default_template", "modern")

	v.SetDefault("pdf.remote_url", "")
	v.SetDefault("pdf.timeout", 60*time.Second)
	v.SetDefault("pdf.no_sandbox", true)

	v.SetDefault("store.kind", StoreNone)
	v.SetDefault("store.dir", "./out")
	v.SetDefault("store.s3.bucket", "")
	v.SetDefault("store.s3.endpoint", "")
	v.SetDefault("store.s3.region", "us-east-1")
	v.SetDefault("store.s3.access_key", "")
	v.SetDefault("store.s3.secret_key", "")
	v.SetDefault("store.s3.use_path_style", false)
	v.SetDefault("store.s3.prefix", "")

	v.SetDefault("numbering.prefix", "INV")
}

// Load reads .env, then the config file at path (or invoice-generator.* in
// the working directory when path is empty), and builds a validated Config.
func Load(v *viper.Viper, path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed loading .env: %w", err)
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", path, err)
		}
	} else {
		v.SetConfigName("invoice-generator")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("error reading config file: %w", err)
			}
		}
	}

	cfg := &Config{
		Log: logger.Config{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		Server: ServerConfig{
			Address:      v.GetString("server.address"),
			ReadTimeout:  v.GetDuration("server.read_timeout"),
			WriteTimeout: v.GetDuration("server.write_timeout"),
			Debug:        v.GetBool("server.debug"),
		},
		Render: RenderConfig{
			TemplateDir:     v.GetString("render.template_dir"),
			DefaultTemplate: v.GetString("render.default_template"),
		},
		PDF: PDFConfig{
			RemoteURL: v.GetString("pdf.remote_url"),
			Timeout:   v.GetDuration("pdf.timeout"),
			NoSandbox: v.GetBool("pdf.no_sandbox"),
		},
		Store: StoreConfig{
			Kind: strings.ToLower(v.GetString("store.kind")),
			Dir:  v.GetString("store.dir"),
			S3: S3Config{
				Bucket:       v.GetString("store.s3.bucket"),
				Endpoint:     v.GetString("store.s3.endpoint"),
				Region:       v.GetString("store.s3.region"),
				AccessKey:    v.GetString("store.s3.access_key"),
				SecretKey:    v.GetString("store.s3.secret_key"),
				UsePathStyle: v.GetBool("store.s3.use_path_style"),
				Prefix:       v.GetString("store.s3.prefix"),
			},
		},
		Numbering: NumberingConfig{
			Prefix: v.GetString("numbering.prefix"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that cannot be defaulted
func (c *Config) Validate() error {
	switch c.Store.Kind {
	case StoreNone, StoreFS, StoreS3:
	default:
		return fmt.Errorf("invalid store kind %q: must be one of none, fs, s3", c.Store.Kind)
	}
	if c.Store.Kind == StoreFS && c.Store.Dir == "" {
		return errors.New("store.dir is required for the fs store")
	}
	if c.Store.Kind == StoreS3 && c.Store.S3.Bucket == "" {
		return errors.New("store.s3.bucket is required for the s3 store")
	}
	if c.PDF.Timeout <= 0 {
		return errors.New("pdf.timeout must be positive")
	}
	return nil
}
