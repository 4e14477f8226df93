// Package opportunities serves the mock delivery gigs and area demand data
// with simulated network latency.
package opportunities

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hoanghai1803/driverpro/internal/models"
	"golang.org/x/sync/errgroup"
)

// DefaultLatency is the simulated fetch delay used when none is configured.
const DefaultLatency = 500 * time.Millisecond

// Snapshot holds one fetch of both seed collections.
type Snapshot struct {
	Gigs       []models.Gig
	AreaDemand []models.AreaDemand
}

// Source hands out the seed data after a fixed delay. It is safe for
// concurrent use; every call returns fresh copies.
type Source struct {
	latency time.Duration
}

// NewSource creates a Source with the given simulated latency. A negative
// latency is treated as zero.
func NewSource(latency time.Duration) *Source {
	if latency < 0 {
		latency = 0
	}
	return &Source{latency: latency}
}

// GigCount returns the number of seed gigs without any delay.
func (s *Source) GigCount() int {
	return len(seedGigs)
}

// Gigs returns the seed gigs after the simulated latency.
func (s *Source) Gigs(ctx context.Context) ([]models.Gig, error) {
	if err := s.wait(ctx); err != nil {
		return nil, fmt.Errorf("fetching gigs: %w", err)
	}
	return SeedGigs(), nil
}

// AreaDemand returns the seed area-demand rows after the simulated latency.
func (s *Source) AreaDemand(ctx context.Context) ([]models.AreaDemand, error) {
	if err := s.wait(ctx); err != nil {
		return nil, fmt.Errorf("fetching area demand: %w", err)
	}
	return SeedAreaDemand(), nil
}

// Snapshot fetches gigs and area demand concurrently.
func (s *Source) Snapshot(ctx context.Context) (*Snapshot, error) {
	var snap Snapshot

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		gigs, err := s.Gigs(ctx)
		if err != nil {
			return err
		}
		snap.Gigs = gigs
		return nil
	})
	g.Go(func() error {
		areas, err := s.AreaDemand(ctx)
		if err != nil {
			return err
		}
		snap.AreaDemand = areas
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	slog.Debug("fetched opportunity snapshot",
		"gigs", len(snap.Gigs),
		"areas", len(snap.AreaDemand),
	)
	return &snap, nil
}

// wait blocks for the configured latency or until ctx is done.
func (s *Source) wait(ctx context.Context) error {
	if s.latency == 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(s.latency)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
