package promo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func activeEvent(id string, priority int, createdAt time.Time) *PromoEvent {
	return &PromoEvent{
		ID:        id,
		Name:      "event " + id,
		Status:    StatusActive,
		Priority:  priority,
		StartAt:   time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		EndAt:     time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC),
		CreatedAt: createdAt,
	}
}

func TestSelect_HighestPriorityWins(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	created := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	low := activeEvent("event-low", 1, created)
	high := activeEvent("event-high", 10, created.Add(time.Hour))

	winner := Select([]*PromoEvent{low, high}, now)

	require.NotNil(t, winner)
	assert.Equal(t, "event-high", winner.ID)
}

func TestSelect_PriorityTie_SmallestIDWins(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

	// event-a was created later; the ID still decides the tie
	older := activeEvent("event-b", 5, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	newer := activeEvent("event-a", 5, time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC))

	winner := Select([]*PromoEvent{newer, older}, now)

	require.NotNil(t, winner)
	assert.Equal(t, "event-a", winner.ID)
}

func TestSelect_Deterministic(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	created := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	events := []*PromoEvent{
		activeEvent("event-c", 5, created),
		activeEvent("event-a", 5, created),
		activeEvent("event-b", 5, created),
	}

	first := Select(events, now)
	require.NotNil(t, first)

	// Same inputs in a different order pick the same winner
	reordered := []*PromoEvent{events[2], events[0], events[1]}
	for i := 0; i < 10; i++ {
		winner := Select(reordered, now)
		require.NotNil(t, winner)
		assert.Equal(t, first.ID, winner.ID)
	}
}

func TestSelect_SkipsInactiveStatuses(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	created := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	for _, status := range []Status{StatusDraft, StatusPaused, StatusExpired, StatusDisabled} {
		e := activeEvent("event-1", 10, created)
		e.Status = status
		assert.Nil(t, Select([]*PromoEvent{e}, now), "status %s must not be selectable", status)
	}
}

func TestSelect_WindowIsHalfOpen(t *testing.T) {
	created := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	e := activeEvent("event-1", 1, created)
	e.StartAt = time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	e.EndAt = time.Date(2026, 6, 2, 0, 0, 0, 0, time.UTC)

	// Exactly at StartAt: eligible
	assert.NotNil(t, Select([]*PromoEvent{e}, e.StartAt))

	// Just before EndAt: eligible
	assert.NotNil(t, Select([]*PromoEvent{e}, e.EndAt.Add(-time.Nanosecond)))

	// Exactly at EndAt: no longer eligible
	assert.Nil(t, Select([]*PromoEvent{e}, e.EndAt))

	// Before StartAt: not yet eligible
	assert.Nil(t, Select([]*PromoEvent{e}, e.StartAt.Add(-time.Second)))
}

func TestSelect_NoEligibleEvents(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

	assert.Nil(t, Select(nil, now))
	assert.Nil(t, Select([]*PromoEvent{}, now))
	assert.Nil(t, Select([]*PromoEvent{nil}, now))
}

func TestSelect_HighPriorityOutsideWindowLoses(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	created := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	expired := activeEvent("event-expired", 100, created)
	expired.EndAt = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	current := activeEvent("event-current", 1, created)

	winner := Select([]*PromoEvent{expired, current}, now)

	require.NotNil(t, winner)
	assert.Equal(t, "event-current", winner.ID)
}
