package curves

import (
	"fmt"
	"math/big"

	"github.com/elys-network/curved/internal/fixedpoint"
)

// Progressive prices shares linearly in supply, P(s) = m*s, so the cost of
// moving supply from s1 to s2 is the area under that line:
//
//	cost = (s2^2 - s1^2) * m/2
//
// The inverse (shares for a given deposit) falls out of solving for s2:
//
//	s2 = sqrt(s1^2 + assets/(m/2))
//
// The slope is fixed at construction; it must be nonzero and even so that
// m/2 can be halved exactly up front instead of on every call.
type Progressive struct {
	baseCurve
	slope     fixedpoint.UFixed
	halfSlope fixedpoint.UFixed
}

var _ Curve = (*Progressive)(nil)

// NewProgressive constructs a progressive curve with the given name and slope.
func NewProgressive(name string, slope fixedpoint.UFixed) (*Progressive, error) {
	halfSlope, err := halveSlope(slope)
	if err != nil {
		return nil, err
	}
	maxShares, maxAssets, err := progressiveBounds(fixedpoint.Zero(), halfSlope)
	if err != nil {
		return nil, err
	}
	base, err := newBaseCurve(name, maxShares, maxAssets)
	if err != nil {
		return nil, err
	}
	return &Progressive{baseCurve: base, slope: slope, halfSlope: halfSlope}, nil
}

// halveSlope validates the slope and returns slope/2, which is exact because
// the raw value is required to be even.
func halveSlope(slope fixedpoint.UFixed) (fixedpoint.UFixed, error) {
	raw := slope.BigInt()
	if raw.Sign() == 0 || raw.Bit(0) != 0 {
		return fixedpoint.UFixed{}, fmt.Errorf("%w: got %s", ErrInvalidSlope, slope)
	}
	return fixedpoint.NewFromBigInt(new(big.Int).Rsh(raw, 1))
}

// progressiveBounds derives the overflow-safe ceilings for the progressive
// family. Shares are capped at sqrt(TYPE_MAX / UNIT), the supply beyond which
// squaring leaves the representable range; the offset variant hands in a
// nonzero offset that shrinks the cap. Assets are capped at the cost of
// reaching the share cap.
func progressiveBounds(offset, halfSlope fixedpoint.UFixed) (maxShares, maxAssets fixedpoint.UFixed, err error) {
	maxSupply, err := fixedpoint.Max().QuoDown(fixedpoint.New(1_000_000_000_000_000_000))
	if err != nil {
		return fixedpoint.UFixed{}, fixedpoint.UFixed{}, err
	}
	maxSupply, err = maxSupply.SqrtDown()
	if err != nil {
		return fixedpoint.UFixed{}, fixedpoint.UFixed{}, err
	}
	maxShares, err = maxSupply.Sub(offset)
	if err != nil {
		return fixedpoint.UFixed{}, fixedpoint.UFixed{}, fmt.Errorf("%w: offset %s", ErrInvalidOffset, offset)
	}
	sq, err := maxSupply.SquareDown()
	if err != nil {
		return fixedpoint.UFixed{}, fixedpoint.UFixed{}, err
	}
	maxAssets, err = sq.MulDown(halfSlope)
	if err != nil {
		return fixedpoint.UFixed{}, fixedpoint.UFixed{}, fmt.Errorf("%w: slope too large for asset ceiling", ErrInvalidSlope)
	}
	return maxShares, maxAssets, nil
}

func (c *Progressive) PreviewDeposit(assets, totalAssets, totalShares fixedpoint.UFixed) (fixedpoint.UFixed, error) {
	if err := c.checkDomain(totalAssets, totalShares); err != nil {
		return fixedpoint.UFixed{}, err
	}
	if _, err := c.checkAssetCeiling(assets, totalAssets); err != nil {
		return fixedpoint.UFixed{}, err
	}
	return c.sharesFromDeposit(assets, totalShares)
}

func (c *Progressive) PreviewMint(shares, totalShares, totalAssets fixedpoint.UFixed) (fixedpoint.UFixed, error) {
	if err := c.checkDomain(totalAssets, totalShares); err != nil {
		return fixedpoint.UFixed{}, err
	}
	newTotal, err := c.checkShareCeiling(shares, totalShares)
	if err != nil {
		return fixedpoint.UFixed{}, err
	}
	assets, err := c.costBetween(totalShares, newTotal, true)
	if err != nil {
		return fixedpoint.UFixed{}, err
	}
	if _, err := c.checkAssetCeiling(assets, totalAssets); err != nil {
		return fixedpoint.UFixed{}, err
	}
	return assets, nil
}

func (c *Progressive) PreviewWithdraw(assets, totalAssets, totalShares fixedpoint.UFixed) (fixedpoint.UFixed, error) {
	if err := c.checkDomain(totalAssets, totalShares); err != nil {
		return fixedpoint.UFixed{}, err
	}
	if err := c.checkWithdraw(assets, totalAssets); err != nil {
		return fixedpoint.UFixed{}, err
	}
	return c.sharesFromWithdraw(assets, totalShares)
}

func (c *Progressive) PreviewRedeem(shares, totalShares, totalAssets fixedpoint.UFixed) (fixedpoint.UFixed, error) {
	if err := c.checkDomain(totalAssets, totalShares); err != nil {
		return fixedpoint.UFixed{}, err
	}
	if err := c.checkRedeem(shares, totalShares); err != nil {
		return fixedpoint.UFixed{}, err
	}
	remaining, err := totalShares.Sub(shares)
	if err != nil {
		return fixedpoint.UFixed{}, err
	}
	return c.costBetween(remaining, totalShares, false)
}

func (c *Progressive) ConvertToShares(assets, totalAssets, totalShares fixedpoint.UFixed) (fixedpoint.UFixed, error) {
	if err := c.checkDomain(totalAssets, totalShares); err != nil {
		return fixedpoint.UFixed{}, err
	}
	if _, err := c.checkAssetCeiling(assets, totalAssets); err != nil {
		return fixedpoint.UFixed{}, err
	}
	if totalAssets.IsZero() && totalShares.IsZero() {
		// 1:1 seed ratio for an empty pool.
		return assets, nil
	}
	return c.sharesFromDeposit(assets, totalShares)
}

func (c *Progressive) ConvertToAssets(shares, totalShares, totalAssets fixedpoint.UFixed) (fixedpoint.UFixed, error) {
	return c.PreviewRedeem(shares, totalShares, totalAssets)
}

// CurrentPrice returns m * totalShares, the marginal price at the current
// supply.
func (c *Progressive) CurrentPrice(totalShares, totalAssets fixedpoint.UFixed) (fixedpoint.UFixed, error) {
	if err := c.checkDomain(totalAssets, totalShares); err != nil {
		return fixedpoint.UFixed{}, err
	}
	return c.slope.MulDown(totalShares)
}

// sharesFromDeposit solves sqrt(s^2 + assets/(m/2)) - s, rounded down.
func (c *Progressive) sharesFromDeposit(assets, totalShares fixedpoint.UFixed) (fixedpoint.UFixed, error) {
	newTotal, err := supplyAfterDeposit(assets, totalShares, c.halfSlope)
	if err != nil {
		return fixedpoint.UFixed{}, err
	}
	if newTotal.GT(c.maxShares) {
		return fixedpoint.UFixed{}, fmt.Errorf("%w: resulting supply %s exceeds max %s",
			ErrSharesOverflowMax, newTotal, c.maxShares)
	}
	return newTotal.Sub(totalShares)
}

// sharesFromWithdraw solves s - sqrt(s^2 - assets/(m/2)), rounded up.
func (c *Progressive) sharesFromWithdraw(assets, totalShares fixedpoint.UFixed) (fixedpoint.UFixed, error) {
	newTotal, err := supplyAfterWithdraw(assets, totalShares, c.halfSlope)
	if err != nil {
		return fixedpoint.UFixed{}, err
	}
	return totalShares.Sub(newTotal)
}

// supplyAfterDeposit returns sqrt(supply^2 + assets/halfSlope), the share
// supply after depositing assets, rounded down.
func supplyAfterDeposit(assets, supply, halfSlope fixedpoint.UFixed) (fixedpoint.UFixed, error) {
	area, err := assets.QuoDown(halfSlope)
	if err != nil {
		return fixedpoint.UFixed{}, err
	}
	sq, err := supply.SquareDown()
	if err != nil {
		return fixedpoint.UFixed{}, err
	}
	sum, err := sq.Add(area)
	if err != nil {
		return fixedpoint.UFixed{}, err
	}
	return sum.SqrtDown()
}

// supplyAfterWithdraw returns sqrt(supply^2 - assets/halfSlope), the share
// supply left after withdrawing assets. The inner division rounds up and the
// root rounds down so the shares burned are never underestimated.
func supplyAfterWithdraw(assets, supply, halfSlope fixedpoint.UFixed) (fixedpoint.UFixed, error) {
	area, err := assets.QuoUp(halfSlope)
	if err != nil {
		return fixedpoint.UFixed{}, err
	}
	sq, err := supply.SquareDown()
	if err != nil {
		return fixedpoint.UFixed{}, err
	}
	rem, err := sq.Sub(area)
	if err != nil {
		return fixedpoint.UFixed{}, fmt.Errorf("%w: %s worth more than the pool area", ErrAssetsExceedTotal, assets)
	}
	return rem.SqrtDown()
}

// costBetween integrates the price line between two supply points:
// (hi^2 - lo^2) * m/2. roundUp selects the user-cost direction used by mint.
func (c *Progressive) costBetween(lo, hi fixedpoint.UFixed, roundUp bool) (fixedpoint.UFixed, error) {
	return supplyCost(lo, hi, c.halfSlope, roundUp)
}

func supplyCost(lo, hi, halfSlope fixedpoint.UFixed, roundUp bool) (fixedpoint.UFixed, error) {
	loSq, err := lo.SquareDown()
	if err != nil {
		return fixedpoint.UFixed{}, err
	}
	var hiSq fixedpoint.UFixed
	if roundUp {
		hiSq, err = hi.SquareUp()
	} else {
		hiSq, err = hi.SquareDown()
	}
	if err != nil {
		return fixedpoint.UFixed{}, err
	}
	diff, err := hiSq.Sub(loSq)
	if err != nil {
		return fixedpoint.UFixed{}, err
	}
	if roundUp {
		return diff.MulUp(halfSlope)
	}
	return diff.MulDown(halfSlope)
}
