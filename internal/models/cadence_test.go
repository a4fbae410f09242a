package models

import (
	"testing"
	"time"

	"github.com/dmitrijs2005/clipkeeper/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCadence(t *testing.T) {
	tests := []struct {
		in   string
		want Cadence
	}{
		{"never", CadenceNever},
		{"Never", CadenceNever},
		{"off", CadenceNever},
		{"every_24_hours", CadenceEvery24Hours},
		{"Every 24 hours", CadenceEvery24Hours},
		{" 24h ", CadenceEvery24Hours},
		{"3d", CadenceEvery3Days},
		{"Every 3 days", CadenceEvery3Days},
		{"weekly", CadenceEveryWeek},
		{"7D", CadenceEveryWeek},
		{"every_week", CadenceEveryWeek},
		{"monthly", CadenceEveryMonth},
		{"Every month", CadenceEveryMonth},
		{"30d", CadenceEveryMonth},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseCadence(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseCadence_Rejects(t *testing.T) {
	for _, in := range []string{"", "hourly", "every 2 days", "48h"} {
		_, err := ParseCadence(in)
		require.ErrorIs(t, err, common.ErrInvalidCadence, in)
	}
}

func TestCadence_Durations(t *testing.T) {
	assert.Equal(t, time.Duration(0), CadenceNever.Duration())
	assert.Equal(t, 24*time.Hour, CadenceEvery24Hours.Duration())
	assert.Equal(t, 72*time.Hour, CadenceEvery3Days.Duration())
	assert.Equal(t, 168*time.Hour, CadenceEveryWeek.Duration())
	assert.Equal(t, 720*time.Hour, CadenceEveryMonth.Duration())

	assert.False(t, CadenceNever.Enabled())
	assert.True(t, CadenceEveryWeek.Enabled())
	assert.False(t, Cadence(42).Enabled())
}

func TestCadence_StringDisplayRoundTrip(t *testing.T) {
	for _, c := range Cadences() {
		parsed, err := ParseCadence(c.Display())
		require.NoError(t, err)
		assert.Equal(t, c, parsed)

		var scanned Cadence
		v, err := c.Value()
		require.NoError(t, err)
		require.NoError(t, scanned.Scan(v))
		assert.Equal(t, c, scanned)
	}
}

func TestCadence_ScanAcceptsOnlyCanonicalKeys(t *testing.T) {
	var c Cadence
	require.NoError(t, c.Scan([]byte("every_3_days")))
	assert.Equal(t, CadenceEvery3Days, c)

	require.ErrorIs(t, c.Scan("3d"), common.ErrInvalidCadence)
	require.ErrorIs(t, c.Scan("Every week"), common.ErrInvalidCadence)

	require.NoError(t, c.Scan(nil))
	assert.Equal(t, CadenceNever, c)

	require.Error(t, c.Scan(12))
}

func TestCadence_ValueRejectsOutOfRange(t *testing.T) {
	_, err := Cadence(99).Value()
	require.ErrorIs(t, err, common.ErrInvalidCadence)
	assert.Equal(t, "cadence(99)", Cadence(99).String())
}
