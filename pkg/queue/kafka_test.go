package queue

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode_PassesRawJSONThrough(t *testing.T) {
	raw := json.RawMessage(`{"type":"post_created"}`)

	data, err := encode(raw)
	require.NoError(t, err)
	assert.Equal(t, []byte(raw), data)
}

func TestEncode_MarshalsEvents(t *testing.T) {
	event := Event{
		ID:        "evt-1",
		Type:      EventFollowedBy,
		Timestamp: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		Data:      ActivityEventData{ActivityID: 3, UserID: 2, ReferenceKind: "user", ReferenceID: 1},
	}

	data, err := encode(event)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "followed_by", decoded["type"])
	assert.Equal(t, "user", decoded["data"].(map[string]interface{})["reference_kind"])
}
