package routing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeConfidence(t *testing.T) {
	t.Run("in-range values pass through", func(t *testing.T) {
		assert.Equal(t, 0.0, NormalizeConfidence(0))
		assert.Equal(t, 61.0, NormalizeConfidence(61))
		assert.Equal(t, 100.0, NormalizeConfidence(100))
	})

	t.Run("raw scores squash through the logistic curve", func(t *testing.T) {
		assert.InDelta(t, 100.0, NormalizeConfidence(500), 0.0001)
		assert.InDelta(t, 0.0, NormalizeConfidence(-50), 0.0001)
		// 100 / (1 + e^5)
		assert.InDelta(t, 0.6693, NormalizeConfidence(-5), 0.001)
	})
}

func TestRankTeams(t *testing.T) {
	teams := []TeamScore{
		{Team: "Security", Confidence: 61},
		{Team: "Network", Confidence: 92},
		{Team: "Hardware", Confidence: 12},
		{Team: "Billing", Confidence: 45},
	}

	t.Run("orders by descending confidence with dense ranks", func(t *testing.T) {
		ranked := RankTeams(teams, 3)
		require.Len(t, ranked, 3)
		assert.Equal(t, RankedTeam{Name: "Network", Confidence: 92, Rank: 1}, ranked[0])
		assert.Equal(t, RankedTeam{Name: "Security", Confidence: 61, Rank: 2}, ranked[1])
		assert.Equal(t, RankedTeam{Name: "Billing", Confidence: 45, Rank: 3}, ranked[2])
	})

	t.Run("returns fewer than topN when input is short", func(t *testing.T) {
		ranked := RankTeams(teams[:2], 3)
		require.Len(t, ranked, 2)
		assert.Equal(t, 1, ranked[0].Rank)
		assert.Equal(t, 2, ranked[1].Rank)
	})

	t.Run("ties keep scorer order", func(t *testing.T) {
		ranked := RankTeams([]TeamScore{
			{Team: "First", Confidence: 80},
			{Team: "Second", Confidence: 80},
		}, 3)
		require.Len(t, ranked, 2)
		assert.Equal(t, "First", ranked[0].Name)
		assert.Equal(t, "Second", ranked[1].Name)
	})

	t.Run("empty input and zero topN yield nil", func(t *testing.T) {
		assert.Nil(t, RankTeams(nil, 3))
		assert.Nil(t, RankTeams(teams, 0))
	})

	t.Run("does not mutate the input slice", func(t *testing.T) {
		_ = RankTeams(teams, 2)
		assert.Equal(t, "Security", teams[0].Team)
	})
}

func TestScoringResponseEmpty(t *testing.T) {
	assert.True(t, ScoringResponse{}.Empty())
	assert.False(t, ScoringResponse{Teams: []TeamScore{{Team: "Network"}}}.Empty())
}

func TestEvidenceExcerpt(t *testing.T) {
	t.Run("returns first snippet's suggestion", func(t *testing.T) {
		resp := ScoringResponse{Results: []EvidenceResult{
			{AISuggestedMessage: "Restart the VPN client."},
			{AISuggestedMessage: "Check firewall rules."},
		}}
		excerpt := resp.EvidenceExcerpt()
		require.NotNil(t, excerpt)
		assert.Equal(t, "Restart the VPN client.", *excerpt)
	})

	t.Run("nil when no results or message empty", func(t *testing.T) {
		assert.Nil(t, ScoringResponse{}.EvidenceExcerpt())
		assert.Nil(t, ScoringResponse{Results: []EvidenceResult{{}}}.EvidenceExcerpt())
	})
}
