package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asten-tickets/triage-service/internal/domain"
)

func newDashboardFixture() (*DashboardService, *fakeTicketRepo, *fakeAssignmentRepo, *fakeCorrectionRepo) {
	tickets := newFakeTicketRepo()
	assignments := &fakeAssignmentRepo{}
	corrections := &fakeCorrectionRepo{}
	svc := NewDashboardService(DashboardDependencies{
		TicketRepo:     tickets,
		AssignmentRepo: assignments,
		CorrectionRepo: corrections,
	})
	return svc, tickets, assignments, corrections
}

func seedTicket(t *testing.T, repo *fakeTicketRepo, category string, confidence float64, status domain.TicketStatus) {
	t.Helper()
	err := repo.Create(context.Background(), &domain.Ticket{
		Title:       "seed",
		Description: "seed",
		SubmitterID: "user-1",
		Status:      status,
		Category:    category,
		Confidence:  confidence,
	})
	require.NoError(t, err)
}

func TestCountByCategory(t *testing.T) {
	ctx := context.Background()

	t.Run("zero-fills the whole vocabulary", func(t *testing.T) {
		svc, tickets, _, _ := newDashboardFixture()
		seedTicket(t, tickets, "Bug Report", 0.9, domain.TicketStatusNew)
		seedTicket(t, tickets, "Bug Report", 0.8, domain.TicketStatusNew)
		seedTicket(t, tickets, "mystery-label", 0.5, domain.TicketStatusNew)

		result := svc.CountByCategory(ctx)
		require.Len(t, result, len(domain.Categories))

		byCategory := map[string]int64{}
		for _, row := range result {
			byCategory[row.Category] = row.Count
		}
		assert.Equal(t, int64(2), byCategory["Bug Report"])
		assert.Equal(t, int64(1), byCategory[domain.CategoryOther])
		assert.Equal(t, int64(0), byCategory["Refund Request"])
		assert.NotContains(t, byCategory, "mystery-label")
	})

	t.Run("empty store still yields the full vocabulary", func(t *testing.T) {
		svc, _, _, _ := newDashboardFixture()
		result := svc.CountByCategory(ctx)
		require.Len(t, result, len(domain.Categories))
		for _, row := range result {
			assert.Zero(t, row.Count)
		}
	})

	t.Run("store failure degrades to zeros", func(t *testing.T) {
		svc, tickets, _, _ := newDashboardFixture()
		tickets.failAll = errors.New("connection reset")

		result := svc.CountByCategory(ctx)
		require.Len(t, result, len(domain.Categories))
		for _, row := range result {
			assert.Zero(t, row.Count)
		}
	})
}

func TestCountByConfidenceBand(t *testing.T) {
	ctx := context.Background()
	svc, tickets, _, _ := newDashboardFixture()

	seedTicket(t, tickets, "Bug Report", 0.95, domain.TicketStatusNew)
	seedTicket(t, tickets, "Bug Report", 0.90, domain.TicketStatusNew)
	seedTicket(t, tickets, "Bug Report", 0.89, domain.TicketStatusNew)
	seedTicket(t, tickets, "Bug Report", 0.70, domain.TicketStatusNew)
	seedTicket(t, tickets, "Bug Report", 0.69, domain.TicketStatusNew)
	seedTicket(t, tickets, domain.FallbackCategory, 0, domain.TicketStatusNew)

	bands := svc.CountByConfidenceBand(ctx)
	assert.Equal(t, int64(2), bands.High)
	assert.Equal(t, int64(2), bands.Medium)
	assert.Equal(t, int64(2), bands.Low)
}

func TestDistribution(t *testing.T) {
	ctx := context.Background()

	t.Run("ten bins with full confidence in the last", func(t *testing.T) {
		svc, tickets, _, _ := newDashboardFixture()
		for _, confidence := range []float64{0.05, 0.15, 0.95, 1.0} {
			seedTicket(t, tickets, "Bug Report", confidence, domain.TicketStatusNew)
		}

		dist := svc.Distribution(ctx, PeriodAll)
		require.Len(t, dist.Bins, 10)
		assert.Equal(t, []int64{1, 1, 0, 0, 0, 0, 0, 0, 0, 2}, dist.Bins)
		assert.Equal(t, int64(4), dist.Total)
		assert.Equal(t, PeriodAll, dist.Period)
	})

	t.Run("exact band edges land in their upper bin", func(t *testing.T) {
		svc, tickets, _, _ := newDashboardFixture()
		seedTicket(t, tickets, "Bug Report", 0.7, domain.TicketStatusNew)
		seedTicket(t, tickets, "Bug Report", 0.9, domain.TicketStatusNew)

		dist := svc.Distribution(ctx, PeriodAll)
		assert.Equal(t, []int64{0, 0, 0, 0, 0, 0, 0, 1, 0, 1}, dist.Bins)
	})

	t.Run("unknown period falls back to all", func(t *testing.T) {
		svc, _, _, _ := newDashboardFixture()
		dist := svc.Distribution(ctx, "last-century")
		assert.Equal(t, PeriodAll, dist.Period)
	})
}

func TestTeamEvolution(t *testing.T) {
	ctx := context.Background()

	t.Run("zero-filled per-team series over the window", func(t *testing.T) {
		svc, _, assignments, _ := newDashboardFixture()

		fixed := time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)
		svc.now = func() time.Time { return fixed }

		day := func(offset int) time.Time {
			return time.Date(2026, 3, 10+offset, 9, 0, 0, 0, time.UTC)
		}
		assignments.records = []*domain.Assignment{
			{TicketID: "t1", Team: "Network", AssignedAt: day(0)},
			{TicketID: "t2", Team: "Network", AssignedAt: day(-1)},
			{TicketID: "t3", Team: "Network", AssignedAt: day(-1)},
			{TicketID: "t4", Team: "Facilities", AssignedAt: day(-2)},
		}

		evolution := svc.TeamEvolution(ctx, 7)
		require.Len(t, evolution.Days, 7)
		assert.Equal(t, "2026-03-04", evolution.Days[0])
		assert.Equal(t, "2026-03-10", evolution.Days[6])

		require.Len(t, evolution.Series, 2)
		assert.Equal(t, "Facilities", evolution.Series[0].Team)
		assert.Equal(t, []int64{0, 0, 0, 0, 1, 0, 0}, evolution.Series[0].Counts)
		assert.Equal(t, "Network", evolution.Series[1].Team)
		assert.Equal(t, []int64{0, 0, 0, 0, 0, 2, 1}, evolution.Series[1].Counts)
	})

	t.Run("buckets by UTC day regardless of wall-clock zone", func(t *testing.T) {
		svc, _, assignments, _ := newDashboardFixture()

		zone := time.FixedZone("UTC+10", 10*3600)
		svc.now = func() time.Time {
			return time.Date(2026, 3, 11, 1, 0, 0, 0, zone) // 2026-03-10 15:00 UTC
		}
		assignments.records = []*domain.Assignment{
			// 2026-03-10 22:00 UTC; the local calendar already reads 03-11.
			{TicketID: "t1", Team: "Network", AssignedAt: time.Date(2026, 3, 11, 8, 0, 0, 0, zone)},
		}

		evolution := svc.TeamEvolution(ctx, 7)
		assert.Equal(t, "2026-03-10", evolution.Days[6])
		require.Len(t, evolution.Series, 1)
		assert.Equal(t, []int64{0, 0, 0, 0, 0, 0, 1}, evolution.Series[0].Counts)
	})
}

func TestCorrectionFrequency(t *testing.T) {
	ctx := context.Background()
	svc, _, _, corrections := newDashboardFixture()

	for i := 0; i < 3; i++ {
		require.NoError(t, corrections.Create(ctx, &domain.CategoryCorrection{
			TicketID: "t1", OldCategory: "Other", NewCategory: "Bug Report", CorrectorID: "admin-1",
		}))
	}
	require.NoError(t, corrections.Create(ctx, &domain.CategoryCorrection{
		TicketID: "t2", OldCategory: "Usage Question", NewCategory: "Technical Support", CorrectorID: "admin-1",
	}))

	result := svc.CorrectionFrequency(ctx)
	require.Len(t, result, 2)
	assert.Equal(t, CategoryCount{Category: "Other", Count: 3}, result[0])
	assert.Equal(t, CategoryCount{Category: "Usage Question", Count: 1}, result[1])
}

func TestGetOverview(t *testing.T) {
	ctx := context.Background()
	svc, tickets, _, _ := newDashboardFixture()

	seedTicket(t, tickets, "Bug Report", 0.9, domain.TicketStatusNew)
	seedTicket(t, tickets, "Bug Report", 0.9, domain.TicketStatusInProgress)
	seedTicket(t, tickets, "Bug Report", 0.9, domain.TicketStatusClosed)

	overview := svc.GetOverview(ctx)
	assert.Equal(t, int64(3), overview.TicketsToday)
	assert.Equal(t, int64(2), overview.OpenTickets)
}
