package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSportRecord_PreservesUnknownFields(t *testing.T) {
	in := `{"schedule":[{"date":"Sep 5, 2026","time":"7:00 PM","opponent":"Central","homeAway":"Home","eventType":""}],` +
		`"roster":[],"coach":"Pat Doe","record":"10-2","captains":["A","B"]}`

	var rec SportRecord
	require.NoError(t, json.Unmarshal([]byte(in), &rec))
	assert.Equal(t, "Pat Doe", rec.Coach)
	require.Len(t, rec.Schedule, 1)

	rec.Coach = "Sam Roe"
	out, err := json.Marshal(rec)
	require.NoError(t, err)

	var generic map[string]any
	require.NoError(t, json.Unmarshal(out, &generic))
	assert.Equal(t, "10-2", generic["record"])
	assert.Equal(t, []any{"A", "B"}, generic["captains"])
	assert.Equal(t, "Sam Roe", generic["coach"])
}

func TestSportRecord_EmptyListsMarshalAsArrays(t *testing.T) {
	out, err := json.Marshal(SportRecord{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"schedule":[],"roster":[]}`, string(out))
}

