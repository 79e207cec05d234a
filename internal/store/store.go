// Package store persists rendered artifacts under deterministic keys.
package store

import (
	"context"
	"strings"

	"github.com/rezonia/invoice-generator/internal/model"
)

// Store persists one artifact and returns where it was written
type Store interface {
	Put(ctx context.Context, key string, artifact model.Artifact) (string, error)
}

// Key builds the persistence key invoice_<number>_<format lower-case>
func Key(invoiceNumber string, format model.Format) string {
	return "invoice_" + invoiceNumber + "_" + strings.ToLower(string(format))
}

// NopStore discards artifacts
type NopStore struct{}

// Put does nothing and returns an empty location
func (NopStore) Put(context.Context, string, model.Artifact) (string, error) {
	return "", nil
}
