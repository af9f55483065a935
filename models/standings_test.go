package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTieBreakCriteria(t *testing.T) {
	t.Run("empty list falls back to defaults", func(t *testing.T) {
		criteria, err := ParseTieBreakCriteria(nil)
		require.NoError(t, err)
		assert.Equal(t, DefaultCriteria(), criteria)
	})

	t.Run("valid list keeps order", func(t *testing.T) {
		criteria, err := ParseTieBreakCriteria([]string{"points_diff", "matches_won"})
		require.NoError(t, err)
		assert.Equal(t, []TieBreakCriterion{CriterionPointsDiff, CriterionMatchesWon}, criteria)
	})

	t.Run("unknown name rejected", func(t *testing.T) {
		_, err := ParseTieBreakCriteria([]string{"matches_won", "coin_flip"})
		assert.ErrorContains(t, err, "coin_flip")
	})

	t.Run("duplicate rejected", func(t *testing.T) {
		_, err := ParseTieBreakCriteria([]string{"sets_won", "sets_won"})
		assert.ErrorContains(t, err, "duplicate")
	})
}

func TestSetWins(t *testing.T) {
	tests := []struct {
		name  string
		sets  []SetScore
		wantA int
		wantB int
	}{
		{"empty", nil, 0, 0},
		{"straight sets", []SetScore{{21, 15}, {21, 19}}, 2, 0},
		{"three setter", []SetScore{{21, 15}, {18, 21}, {21, 19}}, 2, 1},
		{"drawn set counts for neither", []SetScore{{20, 20}, {21, 15}}, 1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, b := SetWins(tt.sets)
			assert.Equal(t, tt.wantA, a)
			assert.Equal(t, tt.wantB, b)
		})
	}
}

func TestMatchParticipants(t *testing.T) {
	m := &Match{TeamAID: 3, TeamBID: 7}

	assert.True(t, m.HasParticipant(3))
	assert.True(t, m.HasParticipant(7))
	assert.False(t, m.HasParticipant(4))

	assert.Equal(t, 7, m.Opponent(3))
	assert.Equal(t, 3, m.Opponent(7))
	assert.Zero(t, m.Opponent(4))
}
