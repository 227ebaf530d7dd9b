package domain

import "github.com/shopspring/decimal"

// Tier is a staking level that determines a teacher's platform commission
type Tier struct {
	Name           string          `json:"name"`
	MinStaked      decimal.Decimal `json:"min_staked"`
	CommissionRate decimal.Decimal `json:"commission_rate"`
}

// Tiers are ordered by ascending stake requirement
var Tiers = []Tier{
	{Name: "Bronze", MinStaked: decimal.NewFromInt(0), CommissionRate: decimal.RequireFromString("0.50")},
	{Name: "Silver", MinStaked: decimal.NewFromInt(100), CommissionRate: decimal.RequireFromString("0.44")},
	{Name: "Gold", MinStaked: decimal.NewFromInt(300), CommissionRate: decimal.RequireFromString("0.38")},
	{Name: "Platinum", MinStaked: decimal.NewFromInt(600), CommissionRate: decimal.RequireFromString("0.31")},
	{Name: "Diamond", MinStaked: decimal.NewFromInt(1000), CommissionRate: decimal.RequireFromString("0.25")},
}

// TierFor returns the highest tier whose requirement the staked amount meets
func TierFor(staked decimal.Decimal) Tier {
	current := Tiers[0]
	for _, t := range Tiers {
		if staked.GreaterThanOrEqual(t.MinStaked) {
			current = t
		}
	}
	return current
}

// NextTier returns the tier after the current one, or nil at the top
func NextTier(staked decimal.Decimal) *Tier {
	for i := range Tiers {
		if staked.LessThan(Tiers[i].MinStaked) {
			t := Tiers[i]
			return &t
		}
	}
	return nil
}

// StakingInfo summarizes a user's staking position
type StakingInfo struct {
	UserID          UserID           `json:"user_id"`
	Staked          decimal.Decimal  `json:"staked"`
	Tier            string           `json:"tier"`
	CommissionRate  decimal.Decimal  `json:"commission_rate"`
	NextTier        *string          `json:"next_tier,omitempty"`
	RemainingToNext *decimal.Decimal `json:"remaining_to_next,omitempty"`
}

// NewStakingInfo derives the staking summary from a staked balance
func NewStakingInfo(userID UserID, staked decimal.Decimal) StakingInfo {
	tier := TierFor(staked)
	info := StakingInfo{
		UserID:         userID,
		Staked:         staked,
		Tier:           tier.Name,
		CommissionRate: tier.CommissionRate,
	}
	if next := NextTier(staked); next != nil {
		remaining := next.MinStaked.Sub(staked)
		info.NextTier = &next.Name
		info.RemainingToNext = &remaining
	}
	return info
}
