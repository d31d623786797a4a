package analytics

import (
	"context"
	"strings"

	"golang.org/x/sync/singleflight"

	"github.com/matribhumi/matribhumi-admin/internal/travelapi"
)

// Resolved pairs a report with the degraded-mode flag so both travel
// through the cache together.
type Resolved struct {
	Report   travelapi.Report `json:"report"`
	Degraded bool             `json:"degraded"`
}

// Service is the cache-aware report resolver used by the HTTP handlers and
// the warmup job. Concurrent requests for the same window collapse into a
// single backend call; admin identity only authorizes the call, it does not
// scope the data, so the cache is shared across sessions.
type Service struct {
	cache *Cache
	group singleflight.Group
}

// NewService wires the optional cache helper. A nil cache resolves
// straight through.
func NewService(cache *Cache) *Service {
	return &Service{cache: cache}
}

// Resolve returns the report for the window, serving from cache when warm.
// The degraded flag survives caching so the advisory notice stays accurate
// for the cache lifetime.
func (s *Service) Resolve(ctx context.Context, src ReportSource, window Window, limit int) (travelapi.Report, bool, error) {
	if s == nil {
		return ResolveReport(ctx, src, window, limit)
	}

	flightKey := strings.Join(keyReport(window, limit), ":")
	resultChan := s.group.DoChan(flightKey, func() (interface{}, error) {
		cacheKey, err := s.cache.BuildKey(ctx, keyReport(window, limit)...)
		if err != nil {
			return nil, err
		}
		var resolved Resolved
		err = s.cache.FetchJSON(ctx, cacheKey, &resolved, func(ctx context.Context) (interface{}, error) {
			report, degraded, err := ResolveReport(ctx, src, window, limit)
			if err != nil {
				return nil, err
			}
			return Resolved{Report: report, Degraded: degraded}, nil
		})
		if err != nil {
			return nil, err
		}
		return resolved, nil
	})

	select {
	case <-ctx.Done():
		return travelapi.Report{}, false, ctx.Err()
	case res := <-resultChan:
		if res.Err != nil {
			return travelapi.Report{}, false, res.Err
		}
		resolved := res.Val.(Resolved)
		return resolved.Report, resolved.Degraded, nil
	}
}
