package attendance

import (
	"time"
)

// Participant pairs a normalized identity key with the raw display form it
// was extracted from
type Participant struct {
	Key         ParticipantKey
	DisplayName string
}

// EventRecord holds one event's accepted and declined participant lists tied
// to the identifier of the source message. Records are immutable once built
type EventRecord struct {
	EventID   string
	Accepted  []Participant
	Declined  []Participant
	CreatedAt time.Time
}

// NewEventRecord builds one EventRecord from the raw name lists extracted
// from a message. Every raw name is normalized and paired with its original
// display form, preserving input order. No deduplication happens here: a
// person listed twice appears twice and the ledger sorts that out
func NewEventRecord(eventID string, acceptedRaw []string, declinedRaw []string) (r EventRecord) {
	r = EventRecord{EventID: eventID, CreatedAt: time.Now()}
	r.Accepted = toParticipants(acceptedRaw)
	r.Declined = toParticipants(declinedRaw)

	return r
}

func toParticipants(rawNames []string) (participants []Participant) {
	participants = make([]Participant, 0, len(rawNames))

	for _, raw := range rawNames {
		participants = append(participants, Participant{Key: Normalize(raw), DisplayName: raw})
	}

	return participants
}
