package attendance

import (
	"sync"
)

// DefaultWindowCapacity is the number of event records kept by a Window when
// no explicit capacity is given
const DefaultWindowCapacity = 8

// ParticipantTally is one participant's aggregated counts over the window
// along with the display name to show for them
type ParticipantTally struct {
	DisplayName string
	Accepted    int
	Declined    int
}

// Window is a bounded history of the most recently scanned event records.
// Insertion order reflects scan order, not event identifier order, and once
// the capacity is exceeded the oldest record is evicted. Eviction only
// affects the window: ledger entries for evicted events remain
type Window struct {
	mutex    sync.Mutex
	capacity int
	records  []EventRecord
}

// NewWindow creates a Window holding up to capacity records. A capacity of
// zero or less falls back to DefaultWindowCapacity
func NewWindow(capacity int) (w *Window) {
	if capacity <= 0 {
		capacity = DefaultWindowCapacity
	}

	w = new(Window)
	w.capacity = capacity
	w.records = make([]EventRecord, 0, capacity)

	return w
}

// Add appends a record, evicting the oldest one if the window would exceed
// its capacity. A record with the event id of one already windowed replaces
// it in place instead, keeping rescans of the same history idempotent
func (w *Window) Add(r EventRecord) {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	for i, rec := range w.records {
		if rec.EventID == r.EventID {
			w.records[i] = r
			return
		}
	}

	w.records = append(w.records, r)
	if len(w.records) > w.capacity {
		w.records = w.records[1:]
	}
}

// Get returns the first windowed record with the given event id
func (w *Window) Get(eventID string) (r EventRecord, ok bool) {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	for _, rec := range w.records {
		if rec.EventID == eventID {
			return rec, true
		}
	}

	return EventRecord{}, false
}

// All returns a copy of the windowed records in insertion order. Callers
// never observe later mutations of the window through the returned slice
func (w *Window) All() (records []EventRecord) {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	records = make([]EventRecord, len(w.records))
	copy(records, w.records)

	return records
}

// Len returns the number of currently windowed records
func (w *Window) Len() (count int) {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	return len(w.records)
}

// Clear removes all windowed records
func (w *Window) Clear() {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	w.records = make([]EventRecord, 0, w.capacity)
}

// Participation returns the accepted/declined counts of one participant over
// the currently windowed records. Evicted events no longer contribute. An
// event counts at most once per category even if the participant was listed
// more than once in it
func (w *Window) Participation(key ParticipantKey) (counts ResponseCounts) {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	for _, rec := range w.records {
		if containsKey(rec.Accepted, key) {
			counts.Accepted++
		}

		if containsKey(rec.Declined, key) {
			counts.Declined++
		}
	}

	return counts
}

// AllParticipants folds over every windowed record and returns the tally of
// every participant seen, keyed by participant key. The display name is
// assigned on every occurrence so the spelling from the most recently
// scanned event wins
func (w *Window) AllParticipants() (tallies map[ParticipantKey]ParticipantTally) {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	tallies = make(map[ParticipantKey]ParticipantTally)

	for _, rec := range w.records {
		for _, p := range rec.Accepted {
			t := tallies[p.Key]
			t.DisplayName = p.DisplayName
			t.Accepted++
			tallies[p.Key] = t
		}

		for _, p := range rec.Declined {
			t := tallies[p.Key]
			t.DisplayName = p.DisplayName
			t.Declined++
			tallies[p.Key] = t
		}
	}

	return tallies
}

func containsKey(participants []Participant, key ParticipantKey) bool {
	for _, p := range participants {
		if p.Key == key {
			return true
		}
	}

	return false
}
