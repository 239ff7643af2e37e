package collection

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/erp/backoffice/internal/infrastructure/logger"
	"github.com/erp/backoffice/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// Locker hands out exclusive locks on string keys. Acquire blocks until the
// lock is free or ctx is done.
type Locker interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
}

// RunnerConfig tunes the write runner
type RunnerConfig struct {
	MaxRetries   int
	RetryBackoff time.Duration
}

// DefaultRunnerConfig returns the default retry policy
func DefaultRunnerConfig() RunnerConfig {
	return RunnerConfig{
		MaxRetries:   3,
		RetryBackoff: 20 * time.Millisecond,
	}
}

// Runner executes a write and everything it triggers as one unit: one
// transaction, one set of held locks, one retry loop.
type Runner struct {
	tx     shared.TransactionScope
	config RunnerConfig
}

// NewRunner creates a runner on top of a transaction scope
func NewRunner(tx shared.TransactionScope, config RunnerConfig) *Runner {
	if config.MaxRetries < 0 {
		config.MaxRetries = 0
	}
	return &Runner{tx: tx, config: config}
}

// Run executes fn inside the current write, or opens a new one. A new write
// is retried from scratch while it fails with a retryable conflict; fn must
// therefore not keep state between attempts.
func (r *Runner) Run(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	if scopeFrom(ctx) != nil {
		return fn(ctx)
	}

	ctx, span := telemetry.StartServiceSpan(ctx, "collection", name)
	defer span.End()

	var err error
	for attempt := 0; attempt <= r.config.MaxRetries; attempt++ {
		if attempt > 0 {
			logger.FromContext(ctx).Warn("retrying write after conflict",
				zap.String("write", name),
				zap.Int("attempt", attempt),
				zap.Error(err),
			)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(r.config.RetryBackoff * time.Duration(attempt)):
			}
		}
		err = r.once(ctx, fn)
		if err == nil || !shared.IsRetryable(err) {
			break
		}
	}
	if err != nil {
		telemetry.RecordError(span, err)
	}
	return err
}

func (r *Runner) once(ctx context.Context, fn func(ctx context.Context) error) error {
	scope := &lockScope{held: make(map[string]func())}
	defer scope.releaseAll()
	return r.tx.Execute(withScope(ctx, scope), fn)
}

type lockScope struct {
	mu   sync.Mutex
	held map[string]func()
	keys []string
}

type scopeKey struct{}

func withScope(ctx context.Context, s *lockScope) context.Context {
	return context.WithValue(ctx, scopeKey{}, s)
}

func scopeFrom(ctx context.Context) *lockScope {
	s, _ := ctx.Value(scopeKey{}).(*lockScope)
	return s
}

// releaseAll runs after the transaction finished, in reverse acquisition order
func (s *lockScope) releaseAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.keys) - 1; i >= 0; i-- {
		s.held[s.keys[i]]()
	}
	s.held = map[string]func(){}
	s.keys = nil
}

// Hold takes the lock on key for the rest of the current write. Holding a key
// twice in one write is a no-op, so nested hooks can lock freely. The lock is
// released once the outermost transaction has committed or rolled back.
func Hold(ctx context.Context, locker Locker, key string, timeout time.Duration) error {
	s := scopeFrom(ctx)
	if s == nil {
		return fmt.Errorf("lock %s requested outside of a write", key)
	}
	s.mu.Lock()
	if _, ok := s.held[key]; ok {
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	acquireCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		acquireCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	release, err := locker.Acquire(acquireCtx, key)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.held[key] = release
	s.keys = append(s.keys, key)
	s.mu.Unlock()
	return nil
}
