package routing

import "github.com/spec-kit/ticket-routing/internal/domain"

// Outcome is the assignment decision for one scoring pass. A nil TeamID
// clears any prior auto-assignment rather than leaving it stale.
type Outcome struct {
	TeamID *int64
}

// Assigned reports whether the outcome assigns a team.
func (o Outcome) Assigned() bool {
	return o.TeamID != nil
}

// Decide applies the auto-assignment rule: assign when the top-ranked
// confidence meets the threshold and the suggested team resolved to an
// active team, otherwise clear. Confidence is expected in the
// normalized [0,100] space (see NormalizeConfidence).
func Decide(topConfidence, threshold float64, team *domain.Team) Outcome {
	if team == nil || !team.Active {
		return Outcome{}
	}
	if topConfidence < threshold {
		return Outcome{}
	}
	id := team.ID
	return Outcome{TeamID: &id}
}
