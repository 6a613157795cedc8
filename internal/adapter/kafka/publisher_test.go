package kafka

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pinemarten/campus-alert-service/internal/domain"
)

func TestSerializeToMessage(t *testing.T) {
	rec := domain.IncidentRecord{
		AlertID:    7,
		IncidentID: 3,
		Address:    "45th and Brooklyn",
		Category:   "Robbery",
		AlertText:  "UPDATE at 8:47pm: The scene is clear.",
		Kind:       domain.KindUpdate,
	}

	msg, err := serializeToMessage(rec)
	require.NoError(t, err)

	assert.Equal(t, []byte("3"), msg.Key, "incident id keys the partition so postings stay ordered")

	var decoded domain.IncidentRecord
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, rec, decoded)

	headers := map[string]string{}
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, "Update", headers["alert_kind"])
	assert.Equal(t, "7", headers["alert_id"])
}
