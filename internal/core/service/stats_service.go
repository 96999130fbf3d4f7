package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/wyclub/member-system/internal/core/ports"
)

// StatsCache abstracts the short-lived cache for aggregate counts (Redis).
type StatsCache interface {
	Get(ctx context.Context) (ports.RoleCounts, bool, error)
	Set(ctx context.Context, counts ports.RoleCounts) error
}

// StatsService computes the aggregate member counts behind the admin
// dashboard, with a short cache in front of the aggregation query.
type StatsService struct {
	repo  ports.ProfileRepository
	cache StatsCache
	log   zerolog.Logger
}

func NewStatsService(repo ports.ProfileRepository, cache StatsCache, log zerolog.Logger) *StatsService {
	return &StatsService{repo: repo, cache: cache, log: log}
}

func (s *StatsService) MemberStats(ctx context.Context) (*ports.MemberStats, error) {
	if counts, ok, err := s.cache.Get(ctx); err != nil {
		s.log.Warn().Err(err).Msg("stats cache read failed, querying repository")
	} else if ok {
		return statsFrom(counts), nil
	}

	counts, err := s.repo.CountByRole(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, counts); err != nil {
		s.log.Warn().Err(err).Msg("stats cache write failed")
	}
	return statsFrom(counts), nil
}

func statsFrom(counts ports.RoleCounts) *ports.MemberStats {
	var total int64
	for _, n := range counts {
		total += n
	}
	return &ports.MemberStats{Total: total, ByRole: counts}
}
