// AngelaMos | 2026
// store.go

package store

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/carterperez-dev/jeddrive/internal/kv"
)

const tracerName = "github.com/carterperez-dev/jeddrive/internal/store"

// Listener observes committed actions. It runs after the write lock is
// released and must not block.
type Listener func(a Action, next State)

type Options struct {
	Seed         bool
	PasswordHash string
	Logger       *slog.Logger
}

// Store owns the marketplace state. Writers are serialized through Dispatch;
// a reduction is only made visible after the touched slices are persisted.
type Store struct {
	mu        sync.RWMutex
	state     State
	kv        kv.Store
	opts      Options
	listeners []Listener
	tracer    trace.Tracer
	logger    *slog.Logger
}

// Open loads state from kv, upgrading older layouts in place. An empty
// backend is seeded when opts.Seed is set.
func Open(ctx context.Context, backend kv.Store, opts Options) (*Store, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Store{
		kv:     backend,
		opts:   opts,
		tracer: otel.Tracer(tracerName),
		logger: logger,
	}

	snap, err := readSnapshot(ctx, backend)
	if err != nil {
		return nil, fmt.Errorf("load state: %w", err)
	}

	if snap.empty() && snap.version == 0 {
		state := State{}
		if opts.Seed {
			state = Seed(opts.PasswordHash, time.Now().UTC())
		}
		state.normalize()
		if err := writeAll(ctx, backend, state); err != nil {
			return nil, err
		}
		s.state = state
		logger.Info("store initialized", "seeded", opts.Seed)
		return s, nil
	}

	migrated, err := upgrade(snap)
	if err != nil {
		return nil, fmt.Errorf("load state: %w", err)
	}
	snap.state.normalize()

	if migrated {
		if err := writeAll(ctx, backend, snap.state); err != nil {
			return nil, err
		}
		logger.Info("store schema upgraded",
			"from", max(snap.version, 1),
			"to", SchemaVersion,
		)
	}

	s.state = snap.state
	return s, nil
}

// Dispatch reduces a against the current state, persists every touched
// slice in one write and then publishes the new state. On any error the
// visible state is left as it was.
func (s *Store) Dispatch(ctx context.Context, a Action) (Effect, error) {
	ctx, span := s.tracer.Start(ctx, "store.Dispatch",
		trace.WithAttributes(attribute.String("store.action", string(a.Kind()))),
	)
	defer span.End()

	s.mu.Lock()

	next, eff, err := Reduce(s.state, a)
	if err != nil {
		s.mu.Unlock()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Effect{}, fmt.Errorf("%s: %w", a.Kind(), err)
	}

	if !eff.Changed {
		s.mu.Unlock()
		span.SetAttributes(attribute.Bool("store.changed", false))
		return eff, nil
	}

	entries, err := encodeSlices(next, eff.Slices)
	if err == nil {
		err = s.kv.SetMulti(ctx, entries)
	}
	if err != nil {
		s.mu.Unlock()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Effect{}, fmt.Errorf("%s: persist: %w", a.Kind(), err)
	}

	s.state = next
	listeners := s.listeners
	s.mu.Unlock()

	span.SetAttributes(attribute.Bool("store.changed", true))

	for _, l := range listeners {
		l(a, next)
	}

	return eff, nil
}

// Snapshot returns the current state. Collections are never mutated in
// place, so the result can be read without further locking.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Store) Subscribe(l Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = appendCopy(s.listeners, l)
}

// Reset wipes the backend and starts over from the seed (or empty state).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.kv.Clear(ctx); err != nil {
		return fmt.Errorf("reset: %w", err)
	}

	state := State{}
	if s.opts.Seed {
		state = Seed(s.opts.PasswordHash, time.Now().UTC())
	}
	state.normalize()

	if err := writeAll(ctx, s.kv, state); err != nil {
		return fmt.Errorf("reset: %w", err)
	}

	s.state = state
	s.logger.Info("store reset", "seeded", s.opts.Seed)
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.kv.Ping(ctx)
}
