package services

import (
	"math"
	"testing"
	"time"

	"github.com/praxislabs/praxis-backend/internal/types"
)

func day(n int) time.Time {
	return time.Date(2024, 1, n, 12, 0, 0, 0, time.UTC)
}

func TestAggregateHistoryEmpty(t *testing.T) {
	got := AggregateHistory(nil)
	if got.TotalSessions != 0 || got.AverageScore != 0 || got.CompletionRate != 0 || got.TotalMinutes != 0 {
		t.Fatalf("expected all-zero aggregates, got %+v", got)
	}
	if len(got.Categories) != 0 || len(got.Trend) != 0 {
		t.Fatalf("expected empty collections, got %+v", got)
	}
}

func TestAggregateHistoryCategoryGrouping(t *testing.T) {
	records := []*types.SessionRecord{
		{Category: "A", Score: 80, CompletionStatus: types.SessionStatusCompleted, CreatedAt: day(1)},
		{Category: "A", Score: 60, CompletionStatus: types.SessionStatusCompleted, CreatedAt: day(2)},
		{Category: "B", Score: 90, CompletionStatus: types.SessionStatusCompleted, CreatedAt: day(3)},
	}
	got := AggregateHistory(records)

	if len(got.Categories) != 2 {
		t.Fatalf("categories = %d, want 2", len(got.Categories))
	}
	a, b := got.Categories[0], got.Categories[1]
	if a.Category != "A" || b.Category != "B" {
		t.Fatalf("category order = [%s, %s], want [A, B]", a.Category, b.Category)
	}
	if a.Count != 2 || a.AverageScore != 70 {
		t.Fatalf("A stats = %+v, want count=2 avg=70", a)
	}
	if b.Count != 1 || b.AverageScore != 90 {
		t.Fatalf("B stats = %+v, want count=1 avg=90", b)
	}
}

func TestAggregateHistoryCompletedOnlyAverage(t *testing.T) {
	records := []*types.SessionRecord{
		{Category: "A", Score: 80, DurationMinutes: 30, CompletionStatus: types.SessionStatusCompleted, CreatedAt: day(1)},
		{Category: "A", Score: 40, DurationMinutes: 10, CompletionStatus: types.SessionStatusAbandoned, CreatedAt: day(2)},
		{Category: "B", Score: 60, DurationMinutes: 20, CompletionStatus: types.SessionStatusCompleted, CreatedAt: day(3)},
	}
	got := AggregateHistory(records)

	if got.TotalSessions != 3 {
		t.Fatalf("total = %d, want 3", got.TotalSessions)
	}
	if got.AverageScore != 70 {
		t.Fatalf("average score = %v, want 70 (completed only)", got.AverageScore)
	}
	wantRate := 2.0 / 3.0 * 100
	if math.Abs(got.CompletionRate-wantRate) > 1e-9 {
		t.Fatalf("completion rate = %v, want %v", got.CompletionRate, wantRate)
	}
	if got.TotalMinutes != 60 {
		t.Fatalf("total minutes = %d, want 60", got.TotalMinutes)
	}
}

func TestAggregateHistoryNoCompletedSessions(t *testing.T) {
	records := []*types.SessionRecord{
		{Category: "A", Score: 50, CompletionStatus: types.SessionStatusAbandoned, CreatedAt: day(1)},
	}
	got := AggregateHistory(records)
	if got.AverageScore != 0 {
		t.Fatalf("average score = %v, want 0 with no completed sessions", got.AverageScore)
	}
	if got.CompletionRate != 0 {
		t.Fatalf("completion rate = %v, want 0", got.CompletionRate)
	}
}

func TestAggregateHistoryTrendAscending(t *testing.T) {
	records := []*types.SessionRecord{
		{SimulationName: "Later", Score: 90, CompletionStatus: types.SessionStatusCompleted, CreatedAt: day(15)},
		{SimulationName: "Earlier", Score: 70, CompletionStatus: types.SessionStatusCompleted, CreatedAt: day(3)},
		{SimulationName: "Middle", Score: 80, CompletionStatus: types.SessionStatusCompleted, CreatedAt: day(9)},
	}
	got := AggregateHistory(records)

	if len(got.Trend) != 3 {
		t.Fatalf("trend points = %d, want 3", len(got.Trend))
	}
	wantOrder := []string{"Earlier", "Middle", "Later"}
	for i, want := range wantOrder {
		if got.Trend[i].SimulationName != want {
			t.Fatalf("trend[%d] = %q, want %q", i, got.Trend[i].SimulationName, want)
		}
	}
	if got.Trend[0].Date != "2024-01-03" {
		t.Fatalf("trend date = %q, want 2024-01-03", got.Trend[0].Date)
	}
}

func TestAggregateHistoryMissingFieldsTreatedAsZero(t *testing.T) {
	records := []*types.SessionRecord{
		{Category: "A", CompletionStatus: types.SessionStatusCompleted, CreatedAt: day(1)},
		nil,
	}
	got := AggregateHistory(records)
	if got.TotalSessions != 1 {
		t.Fatalf("total sessions = %d, want 1 (nil records excluded)", got.TotalSessions)
	}
	if got.CompletionRate != 100 {
		t.Fatalf("completion rate = %v, want 100 (nil records excluded from denominator)", got.CompletionRate)
	}
	if got.TotalMinutes != 0 {
		t.Fatalf("total minutes = %d, want 0", got.TotalMinutes)
	}
	if got.AverageScore != 0 {
		t.Fatalf("average score = %v, want 0", got.AverageScore)
	}
	if len(got.Trend) != 1 {
		t.Fatalf("trend points = %d, want 1 (nil records skipped)", len(got.Trend))
	}
}

func TestAggregateHistoryDoesNotMutateInput(t *testing.T) {
	records := []*types.SessionRecord{
		{SimulationName: "B", Score: 90, CreatedAt: day(9), CompletionStatus: types.SessionStatusCompleted},
		{SimulationName: "A", Score: 70, CreatedAt: day(3), CompletionStatus: types.SessionStatusCompleted},
	}
	_ = AggregateHistory(records)
	if records[0].SimulationName != "B" || records[1].SimulationName != "A" {
		t.Fatal("input slice order must not change")
	}
}
