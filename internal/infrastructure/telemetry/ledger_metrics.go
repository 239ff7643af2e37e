package telemetry

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// LedgerMetrics counts stock ledger activity
type LedgerMetrics struct {
	adjustments   metric.Int64Counter
	movedUnits    metric.Int64Counter
	shortages     metric.Int64Counter
	conflicts     metric.Int64Counter
	restoreFaults metric.Int64Counter
}

// NewLedgerMetrics registers the ledger instruments on meter
func NewLedgerMetrics(meter metric.Meter) (*LedgerMetrics, error) {
	var errs []error
	counter := func(name, desc string) metric.Int64Counter {
		c, err := meter.Int64Counter(name, metric.WithDescription(desc))
		errs = append(errs, err)
		return c
	}
	m := &LedgerMetrics{
		adjustments:   counter("erp.ledger.adjustments", "Ledger entry quantity changes"),
		movedUnits:    counter("erp.ledger.units", "Units moved through the ledger"),
		shortages:     counter("erp.ledger.shortages", "Debits rejected for insufficient stock"),
		conflicts:     counter("erp.ledger.conflicts", "Ledger writes that hit a concurrency conflict"),
		restoreFaults: counter("erp.ledger.restore_failures", "Restorations that could not be applied"),
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return m, nil
}

// RecordAdjustment counts one entry change of delta units caused by effect
func (m *LedgerMetrics) RecordAdjustment(ctx context.Context, effect string, delta int) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("effect", effect))
	m.adjustments.Add(ctx, 1, attrs)
	if delta < 0 {
		delta = -delta
	}
	m.movedUnits.Add(ctx, int64(delta), attrs)
}

// RecordShortage counts a rejected debit
func (m *LedgerMetrics) RecordShortage(ctx context.Context) {
	if m != nil {
		m.shortages.Add(ctx, 1)
	}
}

// RecordConflict counts a lock timeout or version conflict
func (m *LedgerMetrics) RecordConflict(ctx context.Context) {
	if m != nil {
		m.conflicts.Add(ctx, 1)
	}
}

// RecordRestoreFailure counts a restoration without a target entry
func (m *LedgerMetrics) RecordRestoreFailure(ctx context.Context) {
	if m != nil {
		m.restoreFaults.Add(ctx, 1)
	}
}
