package rewards

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMilestones(t *testing.T) {
	ms := Milestones()
	assert.Len(t, ms, 16)

	t.Run("ascending order", func(t *testing.T) {
		for i := 1; i < len(ms); i++ {
			assert.Greater(t, ms[i].RequiredActiveReferrals, ms[i-1].RequiredActiveReferrals)
			assert.Equal(t, ms[i-1].Level+1, ms[i].Level)
		}
	})

	t.Run("pkr conversion", func(t *testing.T) {
		first := ms[0]
		assert.Equal(t, 5, first.RequiredActiveReferrals)
		assert.Equal(t, int64(700), first.RewardPKR()) // $2.5 at 280

		last := ms[len(ms)-1]
		assert.Equal(t, "Crown Legend", last.Name)
		assert.Equal(t, int64(140000), last.RewardPKR()) // $500 at 280
	})
}

func TestMilestoneByLevel(t *testing.T) {
	m, ok := MilestoneByLevel(11)
	assert.True(t, ok)
	assert.Equal(t, "Platinum Elite", m.Name)
	assert.Equal(t, int64(28000), m.RewardPKR())

	_, ok = MilestoneByLevel(17)
	assert.False(t, ok)
}

func TestWithdrawalTierFor(t *testing.T) {
	tests := []struct {
		count  int
		amount int64
		exact  bool
	}{
		{0, 143, true},
		{1, 285, true},
		{2, 855, true},
		{3, 1400, false},
		{10, 1400, false},
	}

	for _, tt := range tests {
		tier := WithdrawalTierFor(tt.count)
		assert.Equal(t, tt.amount, tier.RequiredAmount, "count %d", tt.count)
		assert.Equal(t, tt.exact, tier.Exact, "count %d", tt.count)
	}
}

func TestProcessingFee(t *testing.T) {
	// 1% rounded half-up to a whole rupee.
	assert.Equal(t, int64(1), ProcessingFee(143))  // 1.43
	assert.Equal(t, int64(3), ProcessingFee(285))  // 2.85
	assert.Equal(t, int64(9), ProcessingFee(855))  // 8.55
	assert.Equal(t, int64(14), ProcessingFee(1400))
	assert.Equal(t, int64(2), ProcessingFee(150)) // 1.50 rounds up
	assert.Equal(t, int64(1), ProcessingFee(149)) // 1.49 rounds down
}

func TestSpinnerPrizes(t *testing.T) {
	prizes := SpinnerPrizes()
	assert.Len(t, prizes, 9)
	assert.InDelta(t, 100.0, SpinnerTotalWeight(), 1e-9)

	t.Run("try again is last", func(t *testing.T) {
		assert.True(t, prizes[len(prizes)-1].TryAgain)
		assert.InDelta(t, 90.8, prizes[len(prizes)-1].Weight, 1e-9)
	})

	t.Run("pkr conversion rounds", func(t *testing.T) {
		// 0.6 * 280 would truncate to 167 without rounding.
		assert.Equal(t, int64(168), prizes[3].RewardPKR())
		assert.Equal(t, int64(140), prizes[0].RewardPKR())
		assert.Equal(t, int64(1400), prizes[7].RewardPKR())
	})
}
