package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateTime_WireFormat(t *testing.T) {
	t.Parallel()

	dt := NewDateTime(time.Date(2026, 3, 15, 9, 30, 0, 0, time.UTC))
	b, err := json.Marshal(dt)
	require.NoError(t, err)
	assert.Equal(t, `"2026-03-15 09:30:00"`, string(b))

	var back DateTime
	require.NoError(t, json.Unmarshal(b, &back))
	assert.True(t, back.Equal(dt.Time))
}

func TestDateTime_AcceptsRFC3339(t *testing.T) {
	t.Parallel()

	var dt DateTime
	require.NoError(t, json.Unmarshal([]byte(`"2026-03-15T09:30:00Z"`), &dt))
	assert.Equal(t, 9, dt.Hour())
}

func TestDateTime_Invalid(t *testing.T) {
	t.Parallel()

	var dt DateTime
	assert.Error(t, json.Unmarshal([]byte(`"not a time"`), &dt))
}

func TestDate_WireFormat(t *testing.T) {
	t.Parallel()

	d := NewDate(time.Date(2026, 3, 15, 22, 45, 0, 0, time.UTC))
	b, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `"2026-03-15"`, string(b))
}

func TestDate_ScanTruncates(t *testing.T) {
	t.Parallel()

	var d Date
	require.NoError(t, d.Scan(time.Date(2026, 3, 15, 13, 1, 2, 0, time.UTC)))
	assert.Equal(t, 0, d.Hour())
	assert.True(t, d.Equal(NewDate(time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC))))
}

func TestSchedule_AvailableSlotsDerived(t *testing.T) {
	t.Parallel()

	s := Schedule{MaxPatients: 10, CurrentPatients: 9}
	assert.Equal(t, 1, s.AvailableSlots())
	assert.False(t, s.Full())

	s.CurrentPatients = 10
	assert.Equal(t, 0, s.AvailableSlots())
	assert.True(t, s.Full())
}
