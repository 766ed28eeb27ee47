package attendance_test

import (
	"testing"
	"time"

	"github.com/attendascot/attendascot/attendance"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntryID(t *testing.T) {
	assert.Equal(t, "1001-jane", attendance.EntryID("1001", "jane", attendance.ResponseAccepted))
	assert.Equal(t, "1001-jane-declined", attendance.EntryID("1001", "jane", attendance.ResponseDeclined))
}

func TestLogRecordsEntryOnce(t *testing.T) {
	l := attendance.NewLedger()

	assert.True(t, l.Log("jane", "Jane", "1001", attendance.ResponseAccepted))
	assert.False(t, l.Log("jane", "Jane", "1001", attendance.ResponseAccepted), "second log of the same pseudo id should be dropped")
	assert.Equal(t, 1, l.Len())
}

func TestLogDuplicateKeepsFirstEntry(t *testing.T) {
	l := attendance.NewLedger()

	l.Log("jane", "Jane", "1001", attendance.ResponseAccepted)
	first, ok := l.Get("1001-jane")
	require.True(t, ok)

	l.Log("jane", "JANE", "1001", attendance.ResponseAccepted)
	second, ok := l.Get("1001-jane")
	require.True(t, ok)

	assert.Equal(t, first, second, "later writes with the same pseudo id must not overwrite")
	assert.Equal(t, "Jane", second.DisplayName)
}

func TestLogAcceptedAndDeclinedAreDistinctFacts(t *testing.T) {
	l := attendance.NewLedger()

	assert.True(t, l.Log("ray", "Ray", "1001", attendance.ResponseAccepted))
	assert.True(t, l.Log("ray", "Ray", "1001", attendance.ResponseDeclined))
	assert.Equal(t, 2, l.Len())
}

func TestLogTrimsDisplayName(t *testing.T) {
	l := attendance.NewLedger()

	l.Log("jane", "  Jane ", "1001", attendance.ResponseAccepted)

	e, ok := l.Get("1001-jane")
	require.True(t, ok)
	assert.Equal(t, "Jane", e.DisplayName)
}

func TestAlreadyLogged(t *testing.T) {
	l := attendance.NewLedger()

	assert.False(t, l.AlreadyLogged("1001-jane"))
	l.Log("jane", "Jane", "1001", attendance.ResponseAccepted)
	assert.True(t, l.AlreadyLogged("1001-jane"))
}

func TestEntriesForParticipant(t *testing.T) {
	l := newPopulatedLedger()

	entries := l.EntriesForParticipant("jane")

	require.Len(t, entries, 2)
	assert.Equal(t, "1001", entries[0].EventID)
	assert.Equal(t, "1002", entries[1].EventID)
}

func TestEntriesForEvent(t *testing.T) {
	l := newPopulatedLedger()

	entries := l.EntriesForEvent("1001")

	require.Len(t, entries, 2)
	assert.Equal(t, attendance.ParticipantKey("jane"), entries[0].Key)
	assert.Equal(t, attendance.ParticipantKey("ray"), entries[1].Key)
}

func TestSummaryAggregatesByDisplayName(t *testing.T) {
	l := newPopulatedLedger()

	summary := l.Summary()

	assert.Equal(t, attendance.ResponseCounts{Accepted: 2}, summary["Jane"])
	assert.Equal(t, attendance.ResponseCounts{Declined: 1}, summary["Ray"])
}

func TestSummaryKeepsDistinctDisplaySpellingsApart(t *testing.T) {
	l := attendance.NewLedger()
	l.Log("jane", "Jane", "1001", attendance.ResponseAccepted)
	l.Log("jane", "JANE", "1002", attendance.ResponseAccepted)

	summary := l.Summary()

	// aggregation is by display name as stored, so different spellings of
	// the same participant each get a row
	assert.Equal(t, attendance.ResponseCounts{Accepted: 1}, summary["Jane"])
	assert.Equal(t, attendance.ResponseCounts{Accepted: 1}, summary["JANE"])
}

func TestClear(t *testing.T) {
	l := newPopulatedLedger()
	require.NotZero(t, l.Len())

	l.Clear()

	assert.Zero(t, l.Len())
	assert.False(t, l.AlreadyLogged("1001-jane"))
}

func TestRestoreKeepsOriginalTimestamp(t *testing.T) {
	l := attendance.NewLedger()
	ts := time.Date(2023, time.June, 17, 18, 0, 0, 0, time.UTC)

	added := l.Restore(attendance.Entry{Key: "jane", DisplayName: "Jane", EventID: "1001", Response: attendance.ResponseAccepted, CreatedAt: ts})
	require.True(t, added)

	e, ok := l.Get("1001-jane")
	require.True(t, ok)
	assert.Equal(t, ts, e.CreatedAt)
}

func TestEntriesReturnsInsertionOrder(t *testing.T) {
	l := newPopulatedLedger()

	entries := l.Entries()

	require.Len(t, entries, 4)
	assert.Equal(t, "1001-jane", entries[0].PseudoID())
	assert.Equal(t, "1001-ray-declined", entries[1].PseudoID())
	assert.Equal(t, "1002-jane", entries[2].PseudoID())
	assert.Equal(t, "1002-bob", entries[3].PseudoID())
}

func newPopulatedLedger() (l *attendance.Ledger) {
	l = attendance.NewLedger()
	l.Log("jane", "Jane", "1001", attendance.ResponseAccepted)
	l.Log("ray", "Ray", "1001", attendance.ResponseDeclined)
	l.Log("jane", "Jane", "1002", attendance.ResponseAccepted)
	l.Log("bob", "Bob", "1002", attendance.ResponseAccepted)

	return l
}
