package curves

import (
	"fmt"

	"github.com/elys-network/curved/internal/fixedpoint"
)

// OffsetProgressive is the progressive curve with every supply term shifted
// by a constant: P(s) = m*(s + offset). The shift snips the steep low-supply
// region of the pure progressive curve, so early depositors see gentler
// pricing while the quadratic-area cost formula is unchanged with (s+offset)
// substituted for s throughout.
type OffsetProgressive struct {
	baseCurve
	slope     fixedpoint.UFixed
	halfSlope fixedpoint.UFixed
	offset    fixedpoint.UFixed
	// maxSupply caps the shifted supply (maxShares + offset).
	maxSupply fixedpoint.UFixed
}

var _ Curve = (*OffsetProgressive)(nil)

// NewOffsetProgressive constructs an offset progressive curve. The slope
// rules match NewProgressive; the offset must leave a nonzero share ceiling.
func NewOffsetProgressive(name string, slope, offset fixedpoint.UFixed) (*OffsetProgressive, error) {
	halfSlope, err := halveSlope(slope)
	if err != nil {
		return nil, err
	}
	maxShares, maxAssets, err := progressiveBounds(offset, halfSlope)
	if err != nil {
		return nil, err
	}
	base, err := newBaseCurve(name, maxShares, maxAssets)
	if err != nil {
		return nil, err
	}
	maxSupply, err := maxShares.Add(offset)
	if err != nil {
		return nil, err
	}
	return &OffsetProgressive{
		baseCurve: base,
		slope:     slope,
		halfSlope: halfSlope,
		offset:    offset,
		maxSupply: maxSupply,
	}, nil
}

func (c *OffsetProgressive) PreviewDeposit(assets, totalAssets, totalShares fixedpoint.UFixed) (fixedpoint.UFixed, error) {
	if err := c.checkDomain(totalAssets, totalShares); err != nil {
		return fixedpoint.UFixed{}, err
	}
	if _, err := c.checkAssetCeiling(assets, totalAssets); err != nil {
		return fixedpoint.UFixed{}, err
	}
	return c.sharesFromDeposit(assets, totalShares)
}

func (c *OffsetProgressive) PreviewMint(shares, totalShares, totalAssets fixedpoint.UFixed) (fixedpoint.UFixed, error) {
	if err := c.checkDomain(totalAssets, totalShares); err != nil {
		return fixedpoint.UFixed{}, err
	}
	newTotal, err := c.checkShareCeiling(shares, totalShares)
	if err != nil {
		return fixedpoint.UFixed{}, err
	}
	lo, err := totalShares.Add(c.offset)
	if err != nil {
		return fixedpoint.UFixed{}, err
	}
	hi, err := newTotal.Add(c.offset)
	if err != nil {
		return fixedpoint.UFixed{}, err
	}
	assets, err := supplyCost(lo, hi, c.halfSlope, true)
	if err != nil {
		return fixedpoint.UFixed{}, err
	}
	if _, err := c.checkAssetCeiling(assets, totalAssets); err != nil {
		return fixedpoint.UFixed{}, err
	}
	return assets, nil
}

func (c *OffsetProgressive) PreviewWithdraw(assets, totalAssets, totalShares fixedpoint.UFixed) (fixedpoint.UFixed, error) {
	if err := c.checkDomain(totalAssets, totalShares); err != nil {
		return fixedpoint.UFixed{}, err
	}
	if err := c.checkWithdraw(assets, totalAssets); err != nil {
		return fixedpoint.UFixed{}, err
	}
	shifted, err := totalShares.Add(c.offset)
	if err != nil {
		return fixedpoint.UFixed{}, err
	}
	newShifted, err := supplyAfterWithdraw(assets, shifted, c.halfSlope)
	if err != nil {
		return fixedpoint.UFixed{}, err
	}
	shares, err := shifted.Sub(newShifted)
	if err != nil {
		return fixedpoint.UFixed{}, err
	}
	if shares.GT(totalShares) {
		return fixedpoint.UFixed{}, fmt.Errorf("%w: %s would burn below the offset floor", ErrAssetsExceedTotal, assets)
	}
	return shares, nil
}

func (c *OffsetProgressive) PreviewRedeem(shares, totalShares, totalAssets fixedpoint.UFixed) (fixedpoint.UFixed, error) {
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
	lo, err := remaining.Add(c.offset)
	if err != nil {
		return fixedpoint.UFixed{}, err
	}
	hi, err := totalShares.Add(c.offset)
	if err != nil {
		return fixedpoint.UFixed{}, err
	}
	return supplyCost(lo, hi, c.halfSlope, false)
}

func (c *OffsetProgressive) ConvertToShares(assets, totalAssets, totalShares fixedpoint.UFixed) (fixedpoint.UFixed, error) {
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

func (c *OffsetProgressive) ConvertToAssets(shares, totalShares, totalAssets fixedpoint.UFixed) (fixedpoint.UFixed, error) {
	return c.PreviewRedeem(shares, totalShares, totalAssets)
}

// CurrentPrice returns m * (totalShares + offset).
func (c *OffsetProgressive) CurrentPrice(totalShares, totalAssets fixedpoint.UFixed) (fixedpoint.UFixed, error) {
	if err := c.checkDomain(totalAssets, totalShares); err != nil {
		return fixedpoint.UFixed{}, err
	}
	shifted, err := totalShares.Add(c.offset)
	if err != nil {
		return fixedpoint.UFixed{}, err
	}
	return c.slope.MulDown(shifted)
}

// sharesFromDeposit solves sqrt((s+offset)^2 + assets/(m/2)) - (s+offset),
// rounded down.
func (c *OffsetProgressive) sharesFromDeposit(assets, totalShares fixedpoint.UFixed) (fixedpoint.UFixed, error) {
	shifted, err := totalShares.Add(c.offset)
	if err != nil {
		return fixedpoint.UFixed{}, err
	}
	newShifted, err := supplyAfterDeposit(assets, shifted, c.halfSlope)
	if err != nil {
		return fixedpoint.UFixed{}, err
	}
	if newShifted.GT(c.maxSupply) {
		return fixedpoint.UFixed{}, fmt.Errorf("%w: resulting supply %s exceeds max %s",
			ErrSharesOverflowMax, newShifted, c.maxSupply)
	}
	return newShifted.Sub(shifted)
}
