// internal/source/loader.go
package source

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"listing-service/internal/common/logger"
	"listing-service/internal/common/metrics"
	"listing-service/internal/common/retry"
	"listing-service/internal/listing"

	"golang.org/x/sync/singleflight"
)

// ErrStaleLoad is returned by a load that a newer load superseded.
var ErrStaleLoad = errors.New("STALE_LOAD")

// FallbackMessage is the user-facing notice shown when demo data is served.
const FallbackMessage = "Unable to reach the listing backend. Showing sample data."

// Snapshot is the outcome of one load.
type Snapshot struct {
	Raw        []listing.Raw
	Fallback   bool
	Message    string
	Err        error
	Generation uint64
	LoadedAt   time.Time
}

// LoaderConfig configures a Loader.
type LoaderConfig struct {
	Name     string
	Retry    retry.Policy
	DemoSize int
	// RefreshTimeout bounds a shared refresh started by Get. Zero means none.
	RefreshTimeout time.Duration
}

// Loader fetches listings from a Source and falls back to the demo dataset
// when the source fails. Only the most recently started load may publish its
// result; an earlier load that finishes later is discarded.
type Loader struct {
	source Source
	config LoaderConfig
	logger logger.Logger

	generation atomic.Uint64

	refresh singleflight.Group

	mu      sync.RWMutex
	current *Snapshot
}

func NewLoader(src Source, cfg LoaderConfig, log logger.Logger) *Loader {
	if cfg.Name == "" {
		cfg.Name = "listings"
	}
	if cfg.DemoSize <= 0 {
		cfg.DemoSize = listing.DemoSize
	}
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Loader{
		source: src,
		config: cfg,
		logger: log.WithFields(map[string]interface{}{"source": cfg.Name}),
	}
}

// Load fetches a fresh collection. A failed fetch yields a fallback snapshot,
// not an error. Errors are returned only when ctx ends before the load settles
// or when a newer load has started in the meantime.
func (l *Loader) Load(ctx context.Context) (*Snapshot, error) {
	gen := l.generation.Add(1)

	var raws []listing.Raw
	err := l.config.Retry.Do(ctx, l.logger, "listing fetch", func(ctx context.Context) error {
		r, err := l.source.Fetch(ctx)
		if err != nil {
			return err
		}
		raws = r
		return nil
	})

	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}

	snap := &Snapshot{
		Raw:        raws,
		Generation: gen,
		LoadedAt:   time.Now(),
	}
	if raws == nil {
		snap.Raw = []listing.Raw{}
	}

	if err != nil {
		l.logger.Warn("listing source failed, serving demo data", map[string]interface{}{
			"error":      err.Error(),
			"generation": gen,
		})
		metrics.ListingSourceFallbacks.WithLabelValues(l.config.Name).Inc()

		snap.Raw = listing.DemoRaw(l.config.DemoSize)
		snap.Fallback = true
		snap.Message = FallbackMessage
		snap.Err = err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if gen != l.generation.Load() {
		l.logger.Debug("discarding superseded listing load", map[string]interface{}{
			"generation": gen,
			"latest":     l.generation.Load(),
		})
		return nil, ErrStaleLoad
	}
	l.current = snap
	return snap, nil
}

// Current returns the last published snapshot, or nil before the first load.
func (l *Loader) Current() *Snapshot {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.current
}

// Get returns the current snapshot if it is younger than maxAge, otherwise it
// loads a new one. A zero maxAge always loads. Concurrent callers share a
// single refresh; it is detached from any one caller's cancellation, and each
// caller stops waiting when its own ctx ends.
func (l *Loader) Get(ctx context.Context, maxAge time.Duration) (*Snapshot, error) {
	fresh := func() *Snapshot {
		if cur := l.Current(); cur != nil && maxAge > 0 && time.Since(cur.LoadedAt) < maxAge {
			return cur
		}
		return nil
	}
	if cur := fresh(); cur != nil {
		return cur, nil
	}

	ch := l.refresh.DoChan("load", func() (interface{}, error) {
		// a refresh may have finished between the check above and here
		if cur := fresh(); cur != nil {
			return cur, nil
		}
		loadCtx := context.WithoutCancel(ctx)
		if l.config.RefreshTimeout > 0 {
			var cancel context.CancelFunc
			loadCtx, cancel = context.WithTimeout(loadCtx, l.config.RefreshTimeout)
			defer cancel()
		}
		return l.Load(loadCtx)
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res = <-ch:
	}

	if errors.Is(res.Err, ErrStaleLoad) {
		if cur := l.Current(); cur != nil {
			return cur, nil
		}
	}
	if res.Err != nil {
		return nil, res.Err
	}
	return res.Val.(*Snapshot), nil
}
