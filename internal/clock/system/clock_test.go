// Package system exercises the real-time clock adapter.
package system

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestClockDefaultsToUTC ensures a nil location yields UTC timestamps.
func TestClockDefaultsToUTC(t *testing.T) {
	t.Parallel()

	clk := New(nil)
	before := time.Now().Add(-time.Second)
	got := clk.Now()
	after := time.Now().Add(time.Second)

	require.Equal(t, time.UTC, got.Location())
	require.True(t, got.After(before) && got.Before(after))
}

// TestInZoneUsesNamedLocation checks the menu pages' local zone is honored.
func TestInZoneUsesNamedLocation(t *testing.T) {
	t.Parallel()

	clk, err := InZone("America/Los_Angeles")
	require.NoError(t, err)
	require.Equal(t, "America/Los_Angeles", clk.Now().Location().String())
	require.Equal(t, clk.Location(), clk.Now().Location())
}

// TestInZoneRejectsUnknownZone surfaces bad configuration.
func TestInZoneRejectsUnknownZone(t *testing.T) {
	t.Parallel()

	_, err := InZone("Mars/Olympus_Mons")
	require.Error(t, err)
}

// TestClockNowMonotonic checks successive timestamps are non-decreasing.
func TestClockNowMonotonic(t *testing.T) {
	t.Parallel()

	clk := New(time.UTC)
	first := clk.Now()
	second := clk.Now()
	require.False(t, second.Before(first))
}
