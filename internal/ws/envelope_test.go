package ws

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Pratiikpy/irys-confession-board/internal/domain"
)

func marshal(t *testing.T, e Envelope) map[string]any {
	t.Helper()

	data, err := json.Marshal(e)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(data, &out))
	return out
}

func TestConnectionMessageShape(t *testing.T) {
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	out := marshal(t, NewConnectionMessage("user-1", at))

	assert.Equal(t, "connection", out["type"])
	assert.Equal(t, "connected", out["status"])
	assert.Equal(t, "user-1", out["user_id"])
	assert.Equal(t, "2025-06-01T12:00:00Z", out["timestamp"])
}

func TestNewConfessionShape(t *testing.T) {
	post := &domain.Post{
		ID:         uuid.New(),
		TxID:       "tx123",
		GatewayURL: "https://gateway.irys.xyz/tx123",
		Content:    "hello",
		Author:     "anonymous",
		Timestamp:  time.Now(),
		Upvotes:    3,
		Mood:       "calm",
		Tags:       []string{"life"},
		Verified:   true,
	}

	out := marshal(t, NewConfessionBroadcast(post))
	assert.Equal(t, "new_confession", out["type"])

	confession, ok := out["confession"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, post.ID.String(), confession["id"])
	assert.Equal(t, "tx123", confession["tx_id"])
	assert.Equal(t, "https://gateway.irys.xyz/tx123", confession["gateway_url"])
	assert.Equal(t, "hello", confession["content"])
	assert.Equal(t, float64(3), confession["upvotes"])
	assert.Equal(t, true, confession["verified"])
}

func TestNewReplyShape(t *testing.T) {
	reply := &domain.Reply{
		ID:           uuid.New(),
		ConfessionID: uuid.New(),
		Content:      "me too",
		Author:       "anonymous",
		Timestamp:    time.Now(),
	}

	out := marshal(t, NewReplyBroadcast(reply))
	assert.Equal(t, "new_reply", out["type"])

	payload, ok := out["reply"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, reply.ConfessionID.String(), payload["confession_id"])
	assert.Equal(t, "me too", payload["content"])
}

func TestMessageTypes(t *testing.T) {
	assert.Equal(t, "pong", NewPongMessage(time.Now()).MessageType())
	assert.Equal(t, "echo", NewEchoMessage(nil, time.Now()).MessageType())
	assert.Equal(t, "error", NewErrorMessage("bad", time.Now()).MessageType())
	assert.Equal(t, "crisis_support", NewCrisisSupportMessage().MessageType())
	assert.Equal(t, "vote_update", NewVoteUpdateMessage("c", domain.VoteUp).MessageType())
}
