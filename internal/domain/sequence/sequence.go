// Package sequence renders the human readable, prefixed numbers used by
// products, customers, orders and purchases.
package sequence

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"sync"
)

// Series prefixes
const (
	PrefixOrder    = "ORD"
	PrefixCustomer = "CUST"
	PrefixProduct  = "ART"
	PrefixPurchase = "PUR"
)

// Placeholder marks a number that the owning collection still has to assign.
const Placeholder = "TMP"

// Width is the zero padded width of the numeric part
const Width = 5

var patterns sync.Map // prefix -> *regexp.Regexp

func pattern(prefix string) *regexp.Regexp {
	if re, ok := patterns.Load(prefix); ok {
		return re.(*regexp.Regexp)
	}
	re, _ := patterns.LoadOrStore(prefix, regexp.MustCompile(regexp.QuoteMeta(prefix)+`-(\d+)`))
	return re.(*regexp.Regexp)
}

// Next returns the number following last in the series. An empty or
// unparseable last value starts the series at 1.
func Next(prefix, last string) string {
	next := uint64(1)
	if m := pattern(prefix).FindStringSubmatch(last); m != nil {
		if n, err := strconv.ParseUint(m[1], 10, 64); err == nil {
			next = n + 1
		}
	}
	return Format(prefix, next)
}

// Format renders n in the series
func Format(prefix string, n uint64) string {
	return fmt.Sprintf("%s-%0*d", prefix, Width, n)
}

// Source looks up the highest number issued so far, "" when the series is empty
type Source interface {
	LastNumber(ctx context.Context) (string, error)
}

// Generator issues numbers for one series
type Generator struct {
	prefix string
	source Source
}

// NewGenerator creates a generator for prefix backed by source
func NewGenerator(prefix string, source Source) *Generator {
	return &Generator{prefix: prefix, source: source}
}

// Prefix returns the series prefix
func (g *Generator) Prefix() string {
	return g.prefix
}

// Next reads the current maximum and returns the number after it. Two
// writers can read the same maximum; the unique index on the number column
// rejects the second insert and the write is retried.
func (g *Generator) Next(ctx context.Context) (string, error) {
	last, err := g.source.LastNumber(ctx)
	if err != nil {
		return "", fmt.Errorf("read last %s number: %w", g.prefix, err)
	}
	return Next(g.prefix, last), nil
}
