package store

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShouldSnapshot(t *testing.T) {
	assert.False(t, ShouldSnapshot(0))
	assert.False(t, ShouldSnapshot(1))
	assert.False(t, ShouldSnapshot(9))
	assert.True(t, ShouldSnapshot(10))
	assert.False(t, ShouldSnapshot(11))
	assert.True(t, ShouldSnapshot(20))
}

func TestSnapshotThreshold(t *testing.T) {
	assert.Equal(t, 10, SnapshotThreshold)
}

func TestEventStore_SnapshotRoundTrip(t *testing.T) {
	ctx := context.Background()
	es := NewEventStore(nil)

	type BillState struct {
		ID     string `json:"id"`
		UserID string `json:"user_id"`
		Status string `json:"status"`
		Total  int64  `json:"total"`
	}

	state := BillState{
		ID:     "bill-123",
		UserID: "user-456",
		Status: "APPROVED",
		Total:  250000,
	}
	stateJSON, err := json.Marshal(state)
	require.NoError(t, err)

	// No snapshot yet
	got, err := es.GetSnapshot(ctx, "bill-123")
	require.NoError(t, err)
	assert.Nil(t, got)

	err = es.SaveSnapshot(ctx, &Snapshot{
		AggregateID:   "bill-123",
		AggregateType: "Bill",
		Version:       10,
		State:         stateJSON,
		CreatedAt:     time.Now(),
	})
	require.NoError(t, err)

	got, err = es.GetSnapshot(ctx, "bill-123")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 10, got.Version)

	var restored BillState
	require.NoError(t, json.Unmarshal(got.State, &restored))
	assert.Equal(t, state, restored)
}

func TestEventStore_AppendAssignsVersions(t *testing.T) {
	ctx := context.Background()
	es := NewEventStore(nil)

	for i := 0; i < 3; i++ {
		_, err := es.Append(ctx, "bill-1", "Bill", "BillStatusChanged", map[string]string{"status": "APPROVED"})
		require.NoError(t, err)
	}

	events := es.GetEvents("bill-1")
	require.Len(t, events, 3)
	for i, e := range events {
		assert.Equal(t, i+1, e.Version)
	}

	fromV1 := es.GetEventsFromVersion(ctx, "bill-1", 1)
	require.Len(t, fromV1, 2)
	assert.Equal(t, 2, fromV1[0].Version)
}
