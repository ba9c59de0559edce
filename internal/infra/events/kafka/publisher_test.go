package kafka

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/ip-inspection/internal/domain/ai"
	domain "github.com/bryanwahyu/ip-inspection/internal/domain/inspection"
)

func TestNewMessage(t *testing.T) {
	score := 8.5
	created := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	rec := &domain.Record{
		ID:        "r-1",
		UserID:    "p-1",
		Addresses: []string{"10.77.3.4", "10.77.3.5"},
		Location:  "Changzhou",
		Result:    ai.ScoreResult{Score: &score},
		CreatedAt: created,
	}

	msg, err := newMessage(rec)

	require.NoError(t, err)
	assert.Equal(t, "p-1", string(msg.Key))
	assert.JSONEq(t, `{"type":"inspection.completed","record_id":"r-1","user_id":"p-1","ip":"10.77.3.4",
		"location":"Changzhou","score":8.5,"created_at":"2026-05-01T12:00:00Z"}`, string(msg.Value))
	require.Len(t, msg.Headers, 1)
	assert.Equal(t, "type", msg.Headers[0].Key)
}

func TestNewEvent_NoAddresses(t *testing.T) {
	ev := newEvent(&domain.Record{ID: "r-2", UserID: "p-1"})

	assert.Empty(t, ev.IP)
	assert.Zero(t, ev.Score)
}
