package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/rezonia/invoice-generator/internal/model"
)

// FSStoreConfig configures the file system store
type FSStoreConfig struct {
	// Dir is the output directory. Default: ./out
	Dir    string
	Logger *zap.Logger
}

// FSStore writes artifacts to <dir>/<key><ext>
type FSStore struct {
	dir    string
	logger *zap.Logger
}

// NewFSStore creates the output directory if needed
func NewFSStore(cfg FSStoreConfig) (*FSStore, error) {
	if cfg.Dir == "" {
		cfg.Dir = "./out"
	}
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory %s: %w", cfg.Dir, err)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FSStore{dir: cfg.Dir, logger: logger}, nil
}

// Put writes the artifact content and returns the file path
func (s *FSStore) Put(ctx context.Context, key string, artifact model.Artifact) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if key == "" || strings.ContainsAny(key, `/\`) || strings.Contains(key, "..") {
		return "", fmt.Errorf("invalid storage key %q", key)
	}

	path := filepath.Join(s.dir, key+artifact.Format.Extension())
	if err := os.WriteFile(path, artifact.Content, 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}

	s.logger.Info("artifact stored",
		zap.String("path", path),
		zap.Int("size", artifact.Size))
	return path, nil
}
