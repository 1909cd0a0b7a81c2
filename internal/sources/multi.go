package sources

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"BlogEngine/internal/domain"
	"BlogEngine/internal/trending"
	"BlogEngine/internal/usecase"
)

// MultiSource fans out to every registered source and collects one batch each.
type MultiSource struct {
	registry *Registry
	timeout  time.Duration
	logger   *slog.Logger
}

var _ usecase.TrendFetcher = (*MultiSource)(nil)

// NewMultiSource wires the registry. A positive timeout bounds each source.
func NewMultiSource(reg *Registry, timeout time.Duration, log *slog.Logger) *MultiSource {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &MultiSource{registry: reg, timeout: timeout, logger: log}
}

// FetchAll queries sources concurrently. Batches keep registration order and
// a failing source never affects the others.
func (m *MultiSource) FetchAll(ctx context.Context) []trending.Batch {
	if m.registry == nil {
		return nil
	}
	all := m.registry.All()
	batches := make([]trending.Batch, len(all))

	var wg sync.WaitGroup
	for i, src := range all {
		batches[i] = trending.Batch{Source: src.Name(), Platform: src.Platform()}
		if !src.Enabled() {
			batches[i].Err = domain.ErrSourceDisabled
			m.logger.Info("trend source disabled", "source", src.Name())
			continue
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			batches[i].Trends, batches[i].Err = m.fetch(ctx, src.Name(), src.FetchTrends)
		}()
	}
	wg.Wait()

	for _, b := range batches {
		if b.Err != nil && !b.Disabled() {
			m.logger.Warn("trend source failed", "source", b.Source, "error", b.Err)
			continue
		}
		m.logger.Debug("trend source done", "source", b.Source, "count", len(b.Trends))
	}
	return batches
}

func (m *MultiSource) fetch(ctx context.Context, name string, fn func(context.Context) ([]domain.TrendCandidate, error)) (trends []domain.TrendCandidate, err error) {
	if m.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}
	defer func() {
		if p := recover(); p != nil {
			trends, err = nil, fmt.Errorf("source %s panicked: %v", name, p)
		}
	}()

	trends, err = fn(ctx)
	if err != nil {
		return nil, fmt.Errorf("source %s: %w", name, err)
	}
	return trends, nil
}
