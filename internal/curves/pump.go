package curves

import (
	"fmt"

	"github.com/elys-network/curved/internal/fixedpoint"
)

// Pump is a fixed virtual-reserve hyperbola:
//
//	tokens(x) = V_t - K / (V_a + x)
//
// where x is cumulative assets deposited and K = V_a * V_t, so tokens(0) = 0
// and supply approaches V_t asymptotically. The constants keep useful
// precision only over a narrow asset range, so external amounts are scaled
// down by a fixed factor before the hyperbola is evaluated and results are
// scaled back up. There is no additive closed form for the cost of a trade:
// every preview is the difference of the formula evaluated at the state
// before and after the operation.
type Pump struct {
	baseCurve
	virtualAssets fixedpoint.UFixed
	virtualTokens fixedpoint.UFixed
	k             fixedpoint.UFixed
	scale         fixedpoint.UFixed
}

var _ Curve = (*Pump)(nil)

// NewPump constructs the hyperbolic curve with the given registry name.
func NewPump(name string) (*Pump, error) {
	virtualAssets := fixedpoint.New(30)
	virtualTokens := fixedpoint.New(1_073_000_000)
	k, err := virtualAssets.MulDown(virtualTokens)
	if err != nil {
		return nil, err
	}
	c := &Pump{
		virtualAssets: virtualAssets,
		virtualTokens: virtualTokens,
		k:             k,
		scale:         fixedpoint.New(10_000_000),
	}
	maxAssets := fixedpoint.New(1_000_000_000)
	maxShares, err := c.sharesAtAssets(maxAssets, false)
	if err != nil {
		return nil, err
	}
	c.baseCurve, err = newBaseCurve(name, maxShares, maxAssets)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Pump) PreviewDeposit(assets, totalAssets, totalShares fixedpoint.UFixed) (fixedpoint.UFixed, error) {
	if err := c.checkDomain(totalAssets, totalShares); err != nil {
		return fixedpoint.UFixed{}, err
	}
	newTotal, err := c.checkAssetCeiling(assets, totalAssets)
	if err != nil {
		return fixedpoint.UFixed{}, err
	}
	shares, err := c.sharesBetween(totalAssets, newTotal)
	if err != nil {
		return fixedpoint.UFixed{}, err
	}
	if _, err := c.checkShareCeiling(shares, totalShares); err != nil {
		return fixedpoint.UFixed{}, err
	}
	return shares, nil
}

func (c *Pump) PreviewMint(shares, totalShares, totalAssets fixedpoint.UFixed) (fixedpoint.UFixed, error) {
	if err := c.checkDomain(totalAssets, totalShares); err != nil {
		return fixedpoint.UFixed{}, err
	}
	newTotal, err := c.checkShareCeiling(shares, totalShares)
	if err != nil {
		return fixedpoint.UFixed{}, err
	}
	after, err := c.assetsAtShares(newTotal, true)
	if err != nil {
		return fixedpoint.UFixed{}, err
	}
	before, err := c.assetsAtShares(totalShares, false)
	if err != nil {
		return fixedpoint.UFixed{}, err
	}
	assets, err := after.Sub(before)
	if err != nil {
		return fixedpoint.UFixed{}, err
	}
	if _, err := c.checkAssetCeiling(assets, totalAssets); err != nil {
		return fixedpoint.UFixed{}, err
	}
	return assets, nil
}

func (c *Pump) PreviewWithdraw(assets, totalAssets, totalShares fixedpoint.UFixed) (fixedpoint.UFixed, error) {
	if err := c.checkDomain(totalAssets, totalShares); err != nil {
		return fixedpoint.UFixed{}, err
	}
	if err := c.checkWithdraw(assets, totalAssets); err != nil {
		return fixedpoint.UFixed{}, err
	}
	remaining, err := totalAssets.Sub(assets)
	if err != nil {
		return fixedpoint.UFixed{}, err
	}
	after, err := c.sharesAtAssets(totalAssets, true)
	if err != nil {
		return fixedpoint.UFixed{}, err
	}
	before, err := c.sharesAtAssets(remaining, false)
	if err != nil {
		return fixedpoint.UFixed{}, err
	}
	return after.Sub(before)
}

func (c *Pump) PreviewRedeem(shares, totalShares, totalAssets fixedpoint.UFixed) (fixedpoint.UFixed, error) {
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
	return c.assetsBetween(remaining, totalShares)
}

func (c *Pump) ConvertToShares(assets, totalAssets, totalShares fixedpoint.UFixed) (fixedpoint.UFixed, error) {
	if err := c.checkDomain(totalAssets, totalShares); err != nil {
		return fixedpoint.UFixed{}, err
	}
	newTotal, err := c.checkAssetCeiling(assets, totalAssets)
	if err != nil {
		return fixedpoint.UFixed{}, err
	}
	return c.sharesBetween(totalAssets, newTotal)
}

func (c *Pump) ConvertToAssets(shares, totalShares, totalAssets fixedpoint.UFixed) (fixedpoint.UFixed, error) {
	return c.PreviewRedeem(shares, totalShares, totalAssets)
}

// CurrentPrice approximates the marginal price as a one-whole-share finite
// difference of the inverse formula, not an analytic derivative. The error
// stays below one price quantum over the curve's whole domain.
func (c *Pump) CurrentPrice(totalShares, totalAssets fixedpoint.UFixed) (fixedpoint.UFixed, error) {
	if err := c.checkDomain(totalAssets, totalShares); err != nil {
		return fixedpoint.UFixed{}, err
	}
	bumped, err := totalShares.Add(fixedpoint.One())
	if err != nil {
		return fixedpoint.UFixed{}, err
	}
	return c.assetsBetween(totalShares, bumped)
}

// sharesBetween returns tokens(hi) - tokens(lo), both evaluated rounding
// down so the difference never overstates the user's shares.
func (c *Pump) sharesBetween(lo, hi fixedpoint.UFixed) (fixedpoint.UFixed, error) {
	after, err := c.sharesAtAssets(hi, false)
	if err != nil {
		return fixedpoint.UFixed{}, err
	}
	before, err := c.sharesAtAssets(lo, false)
	if err != nil {
		return fixedpoint.UFixed{}, err
	}
	return after.Sub(before)
}

// assetsBetween returns assets(hi) - assets(lo) on the inverse formula, both
// rounding down.
func (c *Pump) assetsBetween(lo, hi fixedpoint.UFixed) (fixedpoint.UFixed, error) {
	after, err := c.assetsAtShares(hi, false)
	if err != nil {
		return fixedpoint.UFixed{}, err
	}
	before, err := c.assetsAtShares(lo, false)
	if err != nil {
		return fixedpoint.UFixed{}, err
	}
	return after.Sub(before)
}

// sharesAtAssets evaluates (V_t - K/(V_a + x/scale)) * scale. roundUp picks
// the rounding direction of every internal step so the final value rounds
// the requested way.
func (c *Pump) sharesAtAssets(assets fixedpoint.UFixed, roundUp bool) (fixedpoint.UFixed, error) {
	var scaled fixedpoint.UFixed
	var err error
	if roundUp {
		scaled, err = assets.QuoUp(c.scale)
	} else {
		scaled, err = assets.QuoDown(c.scale)
	}
	if err != nil {
		return fixedpoint.UFixed{}, err
	}
	denom, err := c.virtualAssets.Add(scaled)
	if err != nil {
		return fixedpoint.UFixed{}, err
	}
	var quo fixedpoint.UFixed
	if roundUp {
		quo, err = c.k.QuoDown(denom)
	} else {
		quo, err = c.k.QuoUp(denom)
	}
	if err != nil {
		return fixedpoint.UFixed{}, err
	}
	tokens, err := c.virtualTokens.Sub(quo)
	if err != nil {
		return fixedpoint.UFixed{}, err
	}
	if roundUp {
		return tokens.MulUp(c.scale)
	}
	return tokens.MulDown(c.scale)
}

// assetsAtShares evaluates the inverse, (K/(V_t - s/scale) - V_a) * scale.
func (c *Pump) assetsAtShares(shares fixedpoint.UFixed, roundUp bool) (fixedpoint.UFixed, error) {
	var scaled fixedpoint.UFixed
	var err error
	if roundUp {
		scaled, err = shares.QuoUp(c.scale)
	} else {
		scaled, err = shares.QuoDown(c.scale)
	}
	if err != nil {
		return fixedpoint.UFixed{}, err
	}
	denom, err := c.virtualTokens.Sub(scaled)
	if err != nil || denom.IsZero() {
		return fixedpoint.UFixed{}, fmt.Errorf("%w: supply %s at or past the curve asymptote",
			ErrSharesOverflowMax, shares)
	}
	var quo fixedpoint.UFixed
	if roundUp {
		quo, err = c.k.QuoUp(denom)
	} else {
		quo, err = c.k.QuoDown(denom)
	}
	if err != nil {
		return fixedpoint.UFixed{}, err
	}
	assets, err := quo.Sub(c.virtualAssets)
	if err != nil {
		return fixedpoint.UFixed{}, err
	}
	if roundUp {
		return assets.MulUp(c.scale)
	}
	return assets.MulDown(c.scale)
}
