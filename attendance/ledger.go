package attendance

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// Response values recorded in the ledger
const (
	ResponseAccepted = "accepted"
	ResponseDeclined = "declined"
)

// Entry is one attendance fact: a participant's response to one event
type Entry struct {
	Key         ParticipantKey
	DisplayName string
	EventID     string
	Response    string
	CreatedAt   time.Time
}

// PseudoID returns the synthetic dedup key for the entry. Accepted entries
// use "<eventID>-<key>", declined entries "<eventID>-<key>-declined"
func (e Entry) PseudoID() string {
	return EntryID(e.EventID, e.Key, e.Response)
}

// EntryID computes the pseudo identifier for an (event, participant, response)
// combination without requiring a full Entry value
func EntryID(eventID string, key ParticipantKey, response string) string {
	if response == ResponseDeclined {
		return fmt.Sprintf("%s-%s-declined", eventID, key)
	}

	return fmt.Sprintf("%s-%s", eventID, key)
}

// ResponseCounts holds accepted/declined tallies for one participant
type ResponseCounts struct {
	Accepted int
	Declined int
}

// Ledger is an idempotent, append-only store of attendance entries keyed by
// pseudo identifier. For a given pseudo id at most one entry ever exists:
// the first write wins and later writes are silently dropped. Entries are
// only removed by Clear. A single mutex guards the check-then-insert so
// concurrent scans can't double-log
type Ledger struct {
	mutex   sync.Mutex
	entries map[string]Entry
	order   []string
}

// NewLedger creates a new empty Ledger
func NewLedger() (l *Ledger) {
	l = new(Ledger)
	l.entries = make(map[string]Entry)
	l.order = make([]string, 0)

	return l
}

// AlreadyLogged returns true if an entry with the given pseudo id exists
func (l *Ledger) AlreadyLogged(pseudoID string) (logged bool) {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	_, logged = l.entries[pseudoID]
	return logged
}

// NewEntry builds an attendance entry with a fresh timestamp and the display
// name trimmed of surrounding whitespace
func NewEntry(key ParticipantKey, displayName string, eventID string, response string) (e Entry) {
	return Entry{Key: key, DisplayName: strings.TrimSpace(displayName), EventID: eventID, Response: response, CreatedAt: time.Now()}
}

// Log records a new attendance entry with a fresh timestamp and returns true.
// If an entry with the same pseudo id already exists, nothing is recorded
// and Log returns false: that's the expected dedup path, not a failure.
// The display name is stored trimmed of surrounding whitespace
func (l *Ledger) Log(key ParticipantKey, displayName string, eventID string, response string) (added bool) {
	return l.Restore(NewEntry(key, displayName, eventID, response))
}

// Restore inserts a pre-built entry, keeping its original timestamp. Like
// Log, it returns false without mutation when the pseudo id is already
// present. It exists so a persistence collaborator can warm a fresh ledger
// with previously recorded entries
func (l *Ledger) Restore(e Entry) (added bool) {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	id := e.PseudoID()
	if _, ok := l.entries[id]; ok {
		return false
	}

	l.entries[id] = e
	l.order = append(l.order, id)
	return true
}

// Get returns the entry for a pseudo id, if present
func (l *Ledger) Get(pseudoID string) (e Entry, ok bool) {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	e, ok = l.entries[pseudoID]
	return e, ok
}

// Entries returns a copy of all entries in insertion order
func (l *Ledger) Entries() (entries []Entry) {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	entries = make([]Entry, 0, len(l.order))
	for _, id := range l.order {
		entries = append(entries, l.entries[id])
	}

	return entries
}

// EntriesForParticipant returns all entries recorded for a participant key,
// in insertion order
func (l *Ledger) EntriesForParticipant(key ParticipantKey) (entries []Entry) {
	return l.filter(func(e Entry) bool { return e.Key == key })
}

// EntriesForEvent returns all entries recorded for an event, in insertion order
func (l *Ledger) EntriesForEvent(eventID string) (entries []Entry) {
	return l.filter(func(e Entry) bool { return e.EventID == eventID })
}

func (l *Ledger) filter(keep func(e Entry) bool) (entries []Entry) {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	entries = make([]Entry, 0)
	for _, id := range l.order {
		if e := l.entries[id]; keep(e) {
			entries = append(entries, e)
		}
	}

	return entries
}

// Summary aggregates accepted/declined counts by display name. Note that the
// aggregation key is the display name as stored, not the participant key: a
// participant logged over time under differently spelled display names shows
// up as multiple rows
func (l *Ledger) Summary() (summary map[string]ResponseCounts) {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	summary = make(map[string]ResponseCounts)
	for _, e := range l.entries {
		counts := summary[e.DisplayName]

		switch e.Response {
		case ResponseDeclined:
			counts.Declined++
		default:
			counts.Accepted++
		}

		summary[e.DisplayName] = counts
	}

	return summary
}

// Len returns the total number of entries
func (l *Ledger) Len() (count int) {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	return len(l.entries)
}

// Clear empties the ledger. Meant for reset/test scenarios; the normal scan
// flow never clears
func (l *Ledger) Clear() {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	l.entries = make(map[string]Entry)
	l.order = make([]string, 0)
}
