package routing

import (
	"math"
	"sort"
)

// ScoringResponse is the wire shape returned by the classification
// service. Teams may be empty or absent; AutoAssign is decoded for
// completeness but the threshold check remains authoritative.
type ScoringResponse struct {
	AutoAssign *bool            `json:"autoAssign,omitempty"`
	Teams      []TeamScore      `json:"teams"`
	Results    []EvidenceResult `json:"results"`
}

// TeamScore is one ranked candidate as returned by the scorer.
type TeamScore struct {
	Team       string  `json:"team"`
	Confidence float64 `json:"confidence"`
	RankOrder  int     `json:"rankOrder"`
}

// EvidenceResult is a supporting evidence snippet from the scorer's
// retrieval index.
type EvidenceResult struct {
	Path               string   `json:"path"`
	Team               string   `json:"team"`
	Text               string   `json:"text"`
	Score              float64  `json:"score"`
	BoostContribution  float64  `json:"boostContribution"`
	AISuggestedMessage string   `json:"ai_suggested_message"`
	TeamConfidence     *float64 `json:"teamConfidence"`
}

// Empty reports whether the response carries no ranked teams.
func (r ScoringResponse) Empty() bool {
	return len(r.Teams) == 0
}

// EvidenceExcerpt returns the suggested message of the first evidence
// snippet, or nil when the scorer returned none.
func (r ScoringResponse) EvidenceExcerpt() *string {
	if len(r.Results) == 0 {
		return nil
	}
	msg := r.Results[0].AISuggestedMessage
	if msg == "" {
		return nil
	}
	return &msg
}

// RankedTeam is a candidate after normalization and rank assignment.
type RankedTeam struct {
	Name       string
	Confidence float64
	Rank       int
}

// NormalizeConfidence maps a score into the [0,100] confidence scale.
// Values already in range pass through untouched; anything outside is
// treated as a raw relevance score and squashed through a logistic
// curve, matching how the scorer derives its own percentages.
func NormalizeConfidence(score float64) float64 {
	if score >= 0 && score <= 100 {
		return score
	}
	return 100 / (1 + math.Exp(-score))
}

// RankTeams selects the top-N candidates and assigns 1-based dense rank
// order by descending confidence. Ties keep the scorer's order.
func RankTeams(teams []TeamScore, topN int) []RankedTeam {
	if topN <= 0 || len(teams) == 0 {
		return nil
	}
	ranked := make([]RankedTeam, 0, len(teams))
	for _, t := range teams {
		ranked = append(ranked, RankedTeam{
			Name:       t.Team,
			Confidence: NormalizeConfidence(t.Confidence),
		})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Confidence > ranked[j].Confidence
	})
	if len(ranked) > topN {
		ranked = ranked[:topN]
	}
	for i := range ranked {
		ranked[i].Rank = i + 1
	}
	return ranked
}
