package curves

import (
	"fmt"

	"github.com/elys-network/curved/internal/fixedpoint"
)

// Linear prices shares at the pool's current asset/share ratio:
//
//	shares = assets * totalShares / totalAssets
//
// An empty pool bootstraps 1:1. No squaring is performed anywhere, so both
// ceilings are the fixed-point type's own maximum.
type Linear struct {
	baseCurve
}

var _ Curve = (*Linear)(nil)

// NewLinear constructs a linear curve with the given registry name.
func NewLinear(name string) (*Linear, error) {
	base, err := newBaseCurve(name, fixedpoint.Max(), fixedpoint.Max())
	if err != nil {
		return nil, err
	}
	return &Linear{baseCurve: base}, nil
}

func (c *Linear) PreviewDeposit(assets, totalAssets, totalShares fixedpoint.UFixed) (fixedpoint.UFixed, error) {
	if err := c.checkDomain(totalAssets, totalShares); err != nil {
		return fixedpoint.UFixed{}, err
	}
	if _, err := c.checkAssetCeiling(assets, totalAssets); err != nil {
		return fixedpoint.UFixed{}, err
	}
	shares, err := c.sharesFor(assets, totalAssets, totalShares, false)
	if err != nil {
		return fixedpoint.UFixed{}, err
	}
	if _, err := c.checkShareCeiling(shares, totalShares); err != nil {
		return fixedpoint.UFixed{}, err
	}
	return shares, nil
}

func (c *Linear) PreviewMint(shares, totalShares, totalAssets fixedpoint.UFixed) (fixedpoint.UFixed, error) {
	if err := c.checkDomain(totalAssets, totalShares); err != nil {
		return fixedpoint.UFixed{}, err
	}
	if _, err := c.checkShareCeiling(shares, totalShares); err != nil {
		return fixedpoint.UFixed{}, err
	}
	assets, err := c.assetsFor(shares, totalShares, totalAssets, true)
	if err != nil {
		return fixedpoint.UFixed{}, err
	}
	if _, err := c.checkAssetCeiling(assets, totalAssets); err != nil {
		return fixedpoint.UFixed{}, err
	}
	return assets, nil
}

func (c *Linear) PreviewWithdraw(assets, totalAssets, totalShares fixedpoint.UFixed) (fixedpoint.UFixed, error) {
	if err := c.checkDomain(totalAssets, totalShares); err != nil {
		return fixedpoint.UFixed{}, err
	}
	if err := c.checkWithdraw(assets, totalAssets); err != nil {
		return fixedpoint.UFixed{}, err
	}
	return c.sharesFor(assets, totalAssets, totalShares, true)
}

func (c *Linear) PreviewRedeem(shares, totalShares, totalAssets fixedpoint.UFixed) (fixedpoint.UFixed, error) {
	if err := c.checkDomain(totalAssets, totalShares); err != nil {
		return fixedpoint.UFixed{}, err
	}
	if err := c.checkRedeem(shares, totalShares); err != nil {
		return fixedpoint.UFixed{}, err
	}
	return c.assetsFor(shares, totalShares, totalAssets, false)
}

func (c *Linear) ConvertToShares(assets, totalAssets, totalShares fixedpoint.UFixed) (fixedpoint.UFixed, error) {
	if err := c.checkDomain(totalAssets, totalShares); err != nil {
		return fixedpoint.UFixed{}, err
	}
	if _, err := c.checkAssetCeiling(assets, totalAssets); err != nil {
		return fixedpoint.UFixed{}, err
	}
	return c.sharesFor(assets, totalAssets, totalShares, false)
}

func (c *Linear) ConvertToAssets(shares, totalShares, totalAssets fixedpoint.UFixed) (fixedpoint.UFixed, error) {
	if err := c.checkDomain(totalAssets, totalShares); err != nil {
		return fixedpoint.UFixed{}, err
	}
	if err := c.checkRedeem(shares, totalShares); err != nil {
		return fixedpoint.UFixed{}, err
	}
	return c.assetsFor(shares, totalShares, totalAssets, false)
}

// CurrentPrice returns totalAssets/totalShares, or 1.0 for an empty pool.
func (c *Linear) CurrentPrice(totalShares, totalAssets fixedpoint.UFixed) (fixedpoint.UFixed, error) {
	if err := c.checkDomain(totalAssets, totalShares); err != nil {
		return fixedpoint.UFixed{}, err
	}
	if totalShares.IsZero() {
		return fixedpoint.One(), nil
	}
	return totalAssets.QuoDown(totalShares)
}

// sharesFor converts assets to shares at the pool ratio. roundUp selects the
// user-cost direction used by withdraw.
func (c *Linear) sharesFor(assets, totalAssets, totalShares fixedpoint.UFixed, roundUp bool) (fixedpoint.UFixed, error) {
	if totalShares.IsZero() {
		// 1:1 seed ratio for an empty pool.
		return assets, nil
	}
	if totalAssets.IsZero() {
		return fixedpoint.UFixed{}, fmt.Errorf("%w: nonzero shares with zero assets", ErrDomainExceeded)
	}
	if roundUp {
		num, err := assets.MulUp(totalShares)
		if err != nil {
			return fixedpoint.UFixed{}, err
		}
		return num.QuoUp(totalAssets)
	}
	num, err := assets.MulDown(totalShares)
	if err != nil {
		return fixedpoint.UFixed{}, err
	}
	return num.QuoDown(totalAssets)
}

// assetsFor converts shares to assets at the pool ratio.
func (c *Linear) assetsFor(shares, totalShares, totalAssets fixedpoint.UFixed, roundUp bool) (fixedpoint.UFixed, error) {
	if totalShares.IsZero() {
		return shares, nil
	}
	if roundUp {
		num, err := shares.MulUp(totalAssets)
		if err != nil {
			return fixedpoint.UFixed{}, err
		}
		return num.QuoUp(totalShares)
	}
	num, err := shares.MulDown(totalAssets)
	if err != nil {
		return fixedpoint.UFixed{}, err
	}
	return num.QuoDown(totalShares)
}
