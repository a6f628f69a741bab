package service

import (
	"context"
	"encoding/json"
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/asten-tickets/triage-service/internal/domain"
	"github.com/asten-tickets/triage-service/internal/repository"
)

// Dashboard period selectors.
const (
	PeriodSevenDays  = "7d"
	PeriodThirtyDays = "30d"
	PeriodAll        = "all"
)

const distributionBins = 10

// evolutionWindows are the team-evolution spans the refresher warms; other
// spans are computed on demand and expire with the cache TTL.
var evolutionWindows = []int{7, 30}

// CategoryCount is one row of the per-category breakdown.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int64  `json:"count"`
}

// ConfidenceBands buckets predictions into high / medium / low confidence.
type ConfidenceBands struct {
	High   int64 `json:"high"`
	Medium int64 `json:"medium"`
	Low    int64 `json:"low"`
}

// ConfidenceDistribution is a fixed 10-bin histogram of prediction
// confidence over a period.
type ConfidenceDistribution struct {
	Period string  `json:"period"`
	Bins   []int64 `json:"bins"`
	Total  int64   `json:"total"`
}

// TeamSeries is one team's per-day assignment counts, aligned with the Days
// axis of TeamEvolution.
type TeamSeries struct {
	Team   string  `json:"team"`
	Counts []int64 `json:"counts"`
}

// TeamEvolution is the per-day, per-team assignment activity over a window.
type TeamEvolution struct {
	Days   []string     `json:"days"`
	Series []TeamSeries `json:"series"`
}

// Overview is the headline dashboard card.
type Overview struct {
	TicketsToday         int64   `json:"tickets_today"`
	OpenTickets          int64   `json:"open_tickets"`
	AvgResolutionMinutes float64 `json:"avg_resolution_minutes"`
}

// DashboardService computes triage aggregations with a Redis cache in front.
// The cache is an accelerator only: a cache failure falls through to a fresh
// computation, and a store failure degrades to zero-filled results so the
// dashboard always renders.
type DashboardService struct {
	tickets     repository.TicketRepository
	assignments repository.AssignmentRepository
	corrections repository.CorrectionRepository
	cache       *redis.Client
	cacheTTL    time.Duration
	logger      *zap.Logger
	now         func() time.Time
}

// DashboardDependencies bundles collaborators for the dashboard service.
type DashboardDependencies struct {
	TicketRepo     repository.TicketRepository
	AssignmentRepo repository.AssignmentRepository
	CorrectionRepo repository.CorrectionRepository
	Cache          *redis.Client
	CacheTTL       time.Duration
	Logger         *zap.Logger
}

// NewDashboardService constructs the service.
func NewDashboardService(deps DashboardDependencies) *DashboardService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	ttl := deps.CacheTTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &DashboardService{
		tickets:     deps.TicketRepo,
		assignments: deps.AssignmentRepo,
		corrections: deps.CorrectionRepo,
		cache:       deps.Cache,
		cacheTTL:    ttl,
		logger:      logger,
		now:         time.Now,
	}
}

// CountByCategory returns ticket counts for every category in the fixed
// vocabulary, zero-filled, with unknown categories folded into Other.
func (s *DashboardService) CountByCategory(ctx context.Context) []CategoryCount {
	var result []CategoryCount
	if s.fromCache(ctx, "dashboard:categories", &result) {
		return result
	}

	counts := make(map[string]int64, len(domain.Categories))
	tickets, err := s.tickets.ListWindow(ctx, nil)
	if err != nil {
		s.logger.Warn("category breakdown degraded", zap.Error(err))
	} else {
		for _, t := range tickets {
			category := t.Category
			if !domain.KnownCategory(category) {
				category = domain.CategoryOther
			}
			counts[category]++
		}
	}

	result = make([]CategoryCount, 0, len(domain.Categories))
	for _, category := range domain.Categories {
		result = append(result, CategoryCount{Category: category, Count: counts[category]})
	}
	if err == nil {
		s.toCache(ctx, "dashboard:categories", result)
	}
	return result
}

// CountByConfidenceBand buckets every ticket's prediction confidence: high
// at 0.9 and above, medium from 0.7, low below. Tickets without a usable
// prediction count as low.
func (s *DashboardService) CountByConfidenceBand(ctx context.Context) ConfidenceBands {
	var bands ConfidenceBands
	if s.fromCache(ctx, "dashboard:confidence_bands", &bands) {
		return bands
	}

	tickets, err := s.tickets.ListWindow(ctx, nil)
	if err != nil {
		s.logger.Warn("confidence bands degraded", zap.Error(err))
		return ConfidenceBands{}
	}
	for _, t := range tickets {
		switch {
		case t.Confidence >= 0.9:
			bands.High++
		case t.Confidence >= 0.7:
			bands.Medium++
		default:
			bands.Low++
		}
	}
	s.toCache(ctx, "dashboard:confidence_bands", bands)
	return bands
}

// Distribution builds the 10-bin confidence histogram for a period ("7d",
// "30d", or "all"). Bin i covers [i/10, (i+1)/10); a perfect 1.0 lands in
// the last bin.
func (s *DashboardService) Distribution(ctx context.Context, period string) ConfidenceDistribution {
	switch period {
	case PeriodSevenDays, PeriodThirtyDays:
	default:
		period = PeriodAll
	}

	key := "dashboard:distribution:" + period
	var dist ConfidenceDistribution
	if s.fromCache(ctx, key, &dist) {
		return dist
	}

	var since *time.Time
	switch period {
	case PeriodSevenDays:
		t := s.now().AddDate(0, 0, -7)
		since = &t
	case PeriodThirtyDays:
		t := s.now().AddDate(0, 0, -30)
		since = &t
	}

	dist = ConfidenceDistribution{Period: period, Bins: make([]int64, distributionBins)}
	tickets, err := s.tickets.ListWindow(ctx, since)
	if err != nil {
		s.logger.Warn("confidence distribution degraded", zap.Error(err))
		return dist
	}
	for _, t := range tickets {
		// Exact tenths (0.7, 0.9) must land in their upper bin; plain
		// float64 multiplication leaves 0.7*10 just under 7.
		bin := int(math.Floor(t.Confidence*distributionBins + 1e-9))
		if bin < 0 {
			bin = 0
		}
		if bin >= distributionBins {
			bin = distributionBins - 1
		}
		dist.Bins[bin]++
		dist.Total++
	}
	s.toCache(ctx, key, dist)
	return dist
}

// TeamEvolution returns every team's assignment count per day over the last
// n days, zero-filled so each series covers the whole axis. Days are UTC
// calendar days.
func (s *DashboardService) TeamEvolution(ctx context.Context, days int) TeamEvolution {
	if days <= 0 || days > 365 {
		days = 30
	}

	key := "dashboard:team_evolution:" + strconv.Itoa(days)
	var cached TeamEvolution
	if s.fromCache(ctx, key, &cached) {
		return cached
	}

	today := s.now().UTC().Truncate(24 * time.Hour)
	start := today.AddDate(0, 0, -(days - 1))

	axis := make([]string, days)
	dayIndex := make(map[string]int, days)
	for i := 0; i < days; i++ {
		day := start.AddDate(0, 0, i).Format("2006-01-02")
		axis[i] = day
		dayIndex[day] = i
	}
	result := TeamEvolution{Days: axis, Series: []TeamSeries{}}

	assignments, err := s.assignments.ListSince(ctx, start)
	if err != nil {
		s.logger.Warn("team evolution degraded", zap.Error(err))
		return result
	}

	perTeam := make(map[string][]int64)
	for _, a := range assignments {
		idx, ok := dayIndex[a.AssignedAt.UTC().Format("2006-01-02")]
		if !ok {
			continue
		}
		counts, ok := perTeam[a.Team]
		if !ok {
			counts = make([]int64, days)
			perTeam[a.Team] = counts
		}
		counts[idx]++
	}

	teams := make([]string, 0, len(perTeam))
	for team := range perTeam {
		teams = append(teams, team)
	}
	sort.Strings(teams)
	for _, team := range teams {
		result.Series = append(result.Series, TeamSeries{Team: team, Counts: perTeam[team]})
	}
	s.toCache(ctx, key, result)
	return result
}

// CorrectionFrequency returns how often each predicted category was
// corrected away from, most-corrected first.
func (s *DashboardService) CorrectionFrequency(ctx context.Context) []CategoryCount {
	var cached []CategoryCount
	if s.fromCache(ctx, "dashboard:corrections", &cached) {
		return cached
	}

	counts, err := s.corrections.CountByOldCategory(ctx)
	if err != nil {
		s.logger.Warn("correction frequency degraded", zap.Error(err))
		return []CategoryCount{}
	}

	result := make([]CategoryCount, 0, len(counts))
	for category, count := range counts {
		result = append(result, CategoryCount{Category: category, Count: count})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}
		return result[i].Category < result[j].Category
	})
	s.toCache(ctx, "dashboard:corrections", result)
	return result
}

// GetOverview returns the headline numbers: tickets created today, open
// tickets, and mean resolution time in minutes.
func (s *DashboardService) GetOverview(ctx context.Context) Overview {
	var overview Overview
	if s.fromCache(ctx, "dashboard:overview", &overview) {
		return overview
	}

	now := s.now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	today, err := s.tickets.CountCreatedSince(ctx, midnight)
	if err != nil {
		s.logger.Warn("overview degraded", zap.Error(err))
		return Overview{}
	}
	open, err := s.tickets.CountOpen(ctx)
	if err != nil {
		s.logger.Warn("overview degraded", zap.Error(err))
		return Overview{}
	}
	avg, err := s.tickets.AvgResolutionMinutes(ctx)
	if err != nil {
		s.logger.Warn("overview degraded", zap.Error(err))
		return Overview{}
	}

	overview = Overview{TicketsToday: today, OpenTickets: open, AvgResolutionMinutes: avg}
	s.toCache(ctx, "dashboard:overview", overview)
	return overview
}

// RefreshCache recomputes and re-caches every dashboard aggregate. Invoked
// on a schedule so interactive requests mostly hit warm entries.
func (s *DashboardService) RefreshCache(ctx context.Context) {
	s.invalidate(ctx)
	s.CountByCategory(ctx)
	s.CountByConfidenceBand(ctx)
	for _, period := range []string{PeriodSevenDays, PeriodThirtyDays, PeriodAll} {
		s.Distribution(ctx, period)
	}
	for _, days := range evolutionWindows {
		s.TeamEvolution(ctx, days)
	}
	s.CorrectionFrequency(ctx)
	s.GetOverview(ctx)
}

func (s *DashboardService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	keys := []string{
		"dashboard:categories",
		"dashboard:confidence_bands",
		"dashboard:distribution:" + PeriodSevenDays,
		"dashboard:distribution:" + PeriodThirtyDays,
		"dashboard:distribution:" + PeriodAll,
		"dashboard:corrections",
		"dashboard:overview",
	}
	for _, days := range evolutionWindows {
		keys = append(keys, "dashboard:team_evolution:"+strconv.Itoa(days))
	}
	if err := s.cache.Del(ctx, keys...).Err(); err != nil {
		s.logger.Warn("dashboard cache invalidation failed", zap.Error(err))
	}
}

func (s *DashboardService) fromCache(ctx context.Context, key string, out any) bool {
	if s.cache == nil {
		return false
	}
	raw, err := s.cache.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			s.logger.Warn("dashboard cache read failed", zap.String("key", key), zap.Error(err))
		}
		return false
	}
	if err := json.Unmarshal(raw, out); err != nil {
		s.logger.Warn("dashboard cache entry corrupt", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (s *DashboardService) toCache(ctx context.Context, key string, value any) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, raw, s.cacheTTL).Err(); err != nil {
		s.logger.Warn("dashboard cache write failed", zap.String("key", key), zap.Error(err))
	}
}
