package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func candidate(id uint, total float64) Candidate {
	return Candidate{SupplierID: id, Breakdown: ScoreBreakdown{Total: total}}
}

func TestRank(t *testing.T) {
	ranked := Rank([]Candidate{
		candidate(3, 80),
		candidate(1, 80),
		candidate(2, 90),
		candidate(4, 70),
	}, 3)

	require.Len(t, ranked, 3)
	assert.Equal(t, []uint{2, 1, 3}, []uint{ranked[0].SupplierID, ranked[1].SupplierID, ranked[2].SupplierID})
	assert.Equal(t, []int{1, 2, 3}, []int{ranked[0].Rank, ranked[1].Rank, ranked[2].Rank})
}

func TestRankKeepsAllWithoutLimit(t *testing.T) {
	ranked := Rank([]Candidate{candidate(9, 1), candidate(8, 1)}, 0)
	require.Len(t, ranked, 2)
	assert.Equal(t, uint(8), ranked[0].SupplierID)
	assert.Equal(t, uint(9), ranked[1].SupplierID)

	assert.Empty(t, Rank(nil, 5))
}

func TestRankIsIndependentOfInputOrder(t *testing.T) {
	a := Rank([]Candidate{candidate(5, 60), candidate(2, 75), candidate(7, 75), candidate(1, 10)}, 5)
	b := Rank([]Candidate{candidate(1, 10), candidate(7, 75), candidate(5, 60), candidate(2, 75)}, 5)
	assert.Equal(t, a, b)
}
