// Package numbering synthesizes invoice numbers of the form
// <PREFIX>-<YYYYMM>-<NNNN>. Draws are checked against every number issued
// or reserved by the same Generator, so a process never hands out a
// duplicate within a retained month bucket.
package numbering

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"
)

// DefaultPrefix is used when no prefix is configured
const DefaultPrefix = "INV"

// DefaultMaxBuckets is how many months are tracked before the oldest is evicted
const DefaultMaxBuckets = 24

// bucketSize is the number of distinct suffixes per month
const bucketSize = 10000

// ErrBucketExhausted is returned when every suffix of a month is taken
var ErrBucketExhausted = errors.New("invoice number space exhausted for month")

// Generator hands out invoice numbers. It is safe for concurrent use.
//
// Memory is bounded: at most maxBuckets months are tracked, each holding at
// most bucketSize suffixes. When a new month would exceed the limit, the
// chronologically oldest month is dropped and numbers drawn for it later are
// no longer checked against what was issued before.
type Generator struct {
	prefix     string
	draw       func(n int) int
	retries    int
	maxBuckets int

	mu      sync.Mutex
	buckets map[string]map[int]struct{} // keyed by YYYYMM
}

// Option configures the generator
type Option func(*Generator)

// WithRand overrides the random source, mainly for tests. draw(n) must
// return a value in [0, n).
func WithRand(draw func(n int) int) Option {
	return func(g *Generator) {
		g.draw = draw
	}
}

// WithRetries sets how many random draws are tried before falling back to a
// linear scan of the bucket
func WithRetries(n int) Option {
	return func(g *Generator) {
		g.retries = n
	}
}

// WithMaxBuckets sets how many months are retained
func WithMaxBuckets(n int) Option {
	return func(g *Generator) {
		if n > 0 {
			g.maxBuckets = n
		}
	}
}

// NewGenerator creates a generator for the given prefix
func NewGenerator(prefix string, opts ...Option) *Generator {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = DefaultPrefix
	}

	g := &Generator{
		prefix:     prefix,
		draw:       rand.IntN,
		retries:    32,
		maxBuckets: DefaultMaxBuckets,
		buckets:    make(map[string]map[int]struct{}),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Prefix returns the configured prefix
func (g *Generator) Prefix() string {
	return g.prefix
}

// Next returns an unused number for the month of date
func (g *Generator) Next(date time.Time) (string, error) {
	month := date.Format("200601")

	g.mu.Lock()
	defer g.mu.Unlock()

	taken := g.bucketLocked(month)
	if len(taken) >= bucketSize {
		return "", fmt.Errorf("%w: %s-%s", ErrBucketExhausted, g.prefix, month)
	}

	for i := 0; i < g.retries; i++ {
		suffix := g.draw(bucketSize)
		if _, ok := taken[suffix]; !ok {
			taken[suffix] = struct{}{}
			return g.format(month, suffix), nil
		}
	}

	start := g.draw(bucketSize)
	for i := 0; i < bucketSize; i++ {
		suffix := (start + i) % bucketSize
		if _, ok := taken[suffix]; !ok {
			taken[suffix] = struct{}{}
			return g.format(month, suffix), nil
		}
	}

	return "", fmt.Errorf("%w: %s-%s", ErrBucketExhausted, g.prefix, month)
}

// Reserve records a caller-supplied number so it is never drawn. It returns
// false if the number was already issued or reserved. Numbers outside this
// generator's format cannot collide with a draw and are not recorded.
func (g *Generator) Reserve(number string) bool {
	month, suffix, ok := g.parse(number)
	if !ok {
		return true
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	taken := g.bucketLocked(month)
	if _, exists := taken[suffix]; exists {
		return false
	}
	taken[suffix] = struct{}{}
	return true
}

// Issued returns how many numbers are recorded across retained months
func (g *Generator) Issued() int {
	g.mu.Lock()
	defer g.mu.Unlock()

	n := 0
	for _, taken := range g.buckets {
		n += len(taken)
	}
	return n
}

// Months returns the retained months (YYYYMM), oldest first
func (g *Generator) Months() []string {
	g.mu.Lock()
	defer g.mu.Unlock()

	months := make([]string, 0, len(g.buckets))
	for m := range g.buckets {
		months = append(months, m)
	}
	slices.Sort(months)
	return months
}

// bucketLocked returns the suffix set for month, creating it and evicting
// the oldest month when over the limit
func (g *Generator) bucketLocked(month string) map[int]struct{} {
	if taken, ok := g.buckets[month]; ok {
		return taken
	}

	taken := make(map[int]struct{})
	g.buckets[month] = taken
	for len(g.buckets) > g.maxBuckets {
		oldest := ""
		for m := range g.buckets {
			if oldest == "" || m < oldest {
				oldest = m
			}
		}
		delete(g.buckets, oldest)
	}
	return taken
}

func (g *Generator) format(month string, suffix int) string {
	return fmt.Sprintf("%s-%s-%04d", g.prefix, month, suffix)
}

// parse splits "<PREFIX>-<YYYYMM>-<NNNN>" for this generator's prefix
func (g *Generator) parse(number string) (string, int, bool) {
	rest, ok := strings.CutPrefix(number, g.prefix+"-")
	if !ok || len(rest) != len("200601-0000") || rest[6] != '-' {
		return "", 0, false
	}
	month, digits := rest[:6], rest[7:]
	if _, err := time.Parse("200601", month); err != nil {
		return "", 0, false
	}
	suffix, err := strconv.Atoi(digits)
	if err != nil || suffix < 0 || strings.ContainsAny(digits, "+-") {
		return "", 0, false
	}
	return month, suffix, true
}
