package domain

import (
	"math/big"

	"github.com/shopspring/decimal"
)

var (
	weiPerTEO  = new(big.Int).Exp(big.NewInt(10), big.NewInt(WeiDecimals), nil)
	weiPerUnit = new(big.Int).Exp(big.NewInt(10), big.NewInt(WeiDecimals-TEODecimals), nil)
)

// OneTEOWei returns 10^18
func OneTEOWei() *big.Int {
	return new(big.Int).Set(weiPerTEO)
}

// ValidateAmount checks that a ledger amount is positive and representable at 8 decimal places
func ValidateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount.Withf("amount %s must be positive", amount.String())
	}
	if !amount.Equal(amount.Truncate(TEODecimals)) {
		return ErrInvalidAmount.Withf("amount %s has more than %d decimal places", amount.String(), TEODecimals)
	}
	return nil
}

// RoundTEO rounds to the ledger precision using banker's rounding
func RoundTEO(amount decimal.Decimal) decimal.Decimal {
	return amount.RoundBank(TEODecimals)
}

// WeiToTEO converts an on-chain wei amount into a ledger amount.
// It refuses amounts that are not a whole multiple of 10^-8 TEO.
func WeiToTEO(wei *big.Int) (decimal.Decimal, error) {
	if wei == nil {
		return decimal.Zero, ErrInvalidAmount.Withf("nil wei amount")
	}
	if new(big.Int).Rem(wei, weiPerUnit).Sign() != 0 {
		return decimal.Zero, ErrPrecisionLoss.With("wei", wei.String())
	}
	return decimal.NewFromBigInt(wei, -WeiDecimals), nil
}

// TEOToWei converts a ledger amount into on-chain wei
func TEOToWei(amount decimal.Decimal) (*big.Int, error) {
	if !amount.Equal(amount.Truncate(TEODecimals)) {
		return nil, ErrPrecisionLoss.With("amount", amount.String())
	}
	return amount.Shift(WeiDecimals).BigInt(), nil
}

// WeiToTEOExact converts wei to TEO without enforcing ledger precision.
// Used for display of on-chain balances only.
func WeiToTEOExact(wei *big.Int) decimal.Decimal {
	if wei == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(wei, -WeiDecimals)
}

// ParseWei parses a base-10 wei string
func ParseWei(s string) (*big.Int, error) {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok || v.Sign() < 0 {
		return nil, ErrInvalidAmount.Withf("invalid wei amount %q", s)
	}
	return v, nil
}

// DiscountCostWei computes the TEO cost of a discount:
// max(1 TEO, round_half_even(price_eur * percent / 100 * 10^18))
func DiscountCostWei(priceEUR decimal.Decimal, percent int) *big.Int {
	discountEUR := priceEUR.Mul(decimal.NewFromInt(int64(percent))).Div(decimal.NewFromInt(100))
	wei := discountEUR.Shift(WeiDecimals).RoundBank(0).BigInt()
	if wei.Cmp(weiPerTEO) < 0 {
		return OneTEOWei()
	}
	return wei
}

// TeacherBonusWei is 25% of the TEO cost using integer division
func TeacherBonusWei(costWei *big.Int) *big.Int {
	bonus := new(big.Int).Mul(costWei, big.NewInt(TeacherBonusPercent))
	return bonus.Quo(bonus, big.NewInt(100))
}
