package routing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/ticket-routing/internal/domain"
)

func TestDecide(t *testing.T) {
	network := &domain.Team{ID: 7, Name: "Network", Active: true}

	t.Run("assigns at or above threshold", func(t *testing.T) {
		outcome := Decide(92, 80, network)
		require.True(t, outcome.Assigned())
		assert.Equal(t, int64(7), *outcome.TeamID)

		outcome = Decide(80, 80, network)
		assert.True(t, outcome.Assigned())
	})

	t.Run("clears below threshold", func(t *testing.T) {
		outcome := Decide(79.9, 80, network)
		assert.False(t, outcome.Assigned())
		assert.Nil(t, outcome.TeamID)
	})

	t.Run("clears when team is unknown", func(t *testing.T) {
		assert.False(t, Decide(95, 80, nil).Assigned())
	})

	t.Run("clears when team is inactive", func(t *testing.T) {
		retired := &domain.Team{ID: 3, Name: "Legacy", Active: false}
		assert.False(t, Decide(95, 80, retired).Assigned())
	})
}
