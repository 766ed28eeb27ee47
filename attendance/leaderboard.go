package attendance

import (
	"sort"
)

// Standing is one ranked participant line of a leaderboard
type Standing struct {
	Key         ParticipantKey
	DisplayName string
	Accepted    int
	Declined    int
}

// Leaderboard is the ranked participation summary over a window of events.
// Ranked holds participants with at least one accepted response, ordered by
// descending accepted count with ascending display name as the tie break.
// DeclinedOnly holds participants that never accepted but declined at least
// once, ordered by descending declined count with the same tie break. The
// ordering is deterministic regardless of scan order, which matters because
// message history iteration order is platform-defined
type Leaderboard struct {
	Ranked          []Standing
	DeclinedOnly    []Standing
	TotalResponders int
}

// BuildLeaderboard ranks the participant tallies of a window (as returned by
// Window.AllParticipants)
func BuildLeaderboard(tallies map[ParticipantKey]ParticipantTally) (lb Leaderboard) {
	lb.Ranked = make([]Standing, 0, len(tallies))
	lb.DeclinedOnly = make([]Standing, 0)
	lb.TotalResponders = len(tallies)

	for key, t := range tallies {
		s := Standing{Key: key, DisplayName: t.DisplayName, Accepted: t.Accepted, Declined: t.Declined}

		if s.Accepted == 0 && s.Declined > 0 {
			lb.DeclinedOnly = append(lb.DeclinedOnly, s)
		} else {
			lb.Ranked = append(lb.Ranked, s)
		}
	}

	sort.Slice(lb.Ranked, func(i, j int) bool {
		if lb.Ranked[i].Accepted != lb.Ranked[j].Accepted {
			return lb.Ranked[i].Accepted > lb.Ranked[j].Accepted
		}

		return lb.Ranked[i].DisplayName < lb.Ranked[j].DisplayName
	})

	sort.Slice(lb.DeclinedOnly, func(i, j int) bool {
		if lb.DeclinedOnly[i].Declined != lb.DeclinedOnly[j].Declined {
			return lb.DeclinedOnly[i].Declined > lb.DeclinedOnly[j].Declined
		}

		return lb.DeclinedOnly[i].DisplayName < lb.DeclinedOnly[j].DisplayName
	})

	return lb
}
