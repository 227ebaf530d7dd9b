package domain

import "time"

const (
	// TEODecimals is the fixed internal precision of ledger amounts
	TEODecimals = 8
	// WeiDecimals is the ERC-20 token precision on chain
	WeiDecimals = 18

	// Discount economics
	TeacherBonusPercent     = 25
	DefaultDecisionTTL      = 24 * time.Hour
	DefaultPaymentTolerance = "0.85"

	// Reward economics
	RewardPoolPercent          = "0.15"
	RewardPerSubmissionPercent = "0.05"
	RewardReviewerPercent      = "0.005"
	PassingAverageScore        = 6

	// ZeroAddress is the EVM zero address
	ZeroAddress = "0x0000000000000000000000000000000000000000"
)

// AllowedDiscountPercents are the only discount levels a student may request
var AllowedDiscountPercents = []int{5, 10, 15}

// ValidDiscountPercent reports whether p is an allowed discount level
func ValidDiscountPercent(p int) bool {
	for _, allowed := range AllowedDiscountPercents {
		if p == allowed {
			return true
		}
	}
	return false
}
