package services

import (
	"lemon-club-service/models"
)

// RewardUnitsPerEvolution is the block of staking reward units one evolution
// costs when evolving on rewards instead of points.
const RewardUnitsPerEvolution = 5

// StakingRewardUnits computes accrued reward units for a stake interval: one
// unit per full minute between stakeStart and now (unix millis). Partial
// minutes never count.
func StakingRewardUnits(stakeStart, now int64) int64 {
	if stakeStart <= 0 || now <= stakeStart {
		return 0
	}
	elapsedSeconds := (now - stakeStart) / 1000
	return elapsedSeconds / 60
}

// PreviewRewards is the read-only projection of a record's reward balance:
// banked units plus whatever the current stake interval has accrued so far.
// Repeated calls with the same now are identical; nothing is mutated.
func PreviewRewards(n *models.NFT, now int64) int64 {
	if !n.Staked {
		return n.Rewards
	}
	return n.Rewards + StakingRewardUnits(n.StakeStart, now)
}

// StakeNFT marks the record staked from now. Fails when already staked.
func StakeNFT(n *models.NFT, now int64) error {
	if n.Staked {
		return models.Conflictf("stake", "NFT already staked")
	}
	n.Staked = true
	n.StakeStart = now
	return nil
}

// UnstakeNFT folds the elapsed stake interval into the record's reward units
// exactly once and clears the stake. Returns the units earned this interval.
func UnstakeNFT(n *models.NFT, now int64) (int64, error) {
	if !n.Staked {
		return 0, models.Conflictf("unstake", "NFT not staked")
	}
	earned := StakingRewardUnits(n.StakeStart, now)
	n.Rewards += earned
	n.Staked = false
	n.StakeStart = 0
	return earned, nil
}

// CanEvolve reports whether the record can advance to next: enough points for
// the stage threshold, or a full block of reward units.
func CanEvolve(n *models.NFT, next models.Stage) bool {
	return n.Points >= next.MinPoints || n.Rewards >= RewardUnitsPerEvolution
}

// ApplyEvolution advances the record one stage, spending exactly one
// resource: a reward block when available, otherwise the stage's point cost.
// Never both. Reports the stage reached and whether rewards paid for it.
func ApplyEvolution(n *models.NFT, stages []models.Stage) (next models.Stage, usedRewards bool, err error) {
	nextStage, nextIndex, ok := models.NextStage(stages, n.Stage)
	if !ok {
		return models.Stage{}, false, models.Conflictf("evolve", "no next stage available")
	}
	if !CanEvolve(n, nextStage) {
		return models.Stage{}, false, models.Insufficientf("evolve",
			"not enough points or rewards (need %d+ points or %d+ rewards)",
			nextStage.MinPoints, RewardUnitsPerEvolution)
	}
	if n.Rewards >= RewardUnitsPerEvolution {
		n.Rewards -= RewardUnitsPerEvolution
		usedRewards = true
	} else {
		n.Points -= nextStage.MinPoints
	}
	n.Stage = nextIndex
	return nextStage, usedRewards, nil
}
