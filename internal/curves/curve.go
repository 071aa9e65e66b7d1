/*
Curve is the shared contract every bonding curve implements.

A curve is a pure pricing function: the vault owns (totalAssets, totalShares)
and passes them into every call, the curve computes a quote and returns it
with no side effects. Rounding is asymmetric: quantities returned to the
user round down, quantities required from the user round up.
*/

package curves

import (
	"errors"
	"fmt"

	"github.com/elys-network/curved/internal/fixedpoint"
)

var (
	ErrAssetsExceedTotal = errors.New("assets exceed total assets")
	ErrSharesExceedTotal = errors.New("shares exceed total shares")
	ErrAssetsOverflowMax = errors.New("assets exceed curve maximum")
	ErrSharesOverflowMax = errors.New("shares exceed curve maximum")
	ErrDomainExceeded    = errors.New("pool state outside curve domain")
	ErrEmptyName         = errors.New("curve name is empty")
	ErrInvalidSlope      = errors.New("slope must be nonzero and even")
	ErrInvalidOffset     = errors.New("offset exceeds curve share ceiling")
)

// Curve is the operation set shared by every bonding curve.
//
// Argument order mirrors the direction of the operation: asset-driven
// operations take (assets, totalAssets, totalShares), share-driven ones take
// (shares, totalShares, totalAssets).
type Curve interface {
	// Name returns the curve's unique human-readable name.
	Name() string

	// MaxShares returns the precomputed share ceiling beyond which the
	// curve's internal math would overflow.
	MaxShares() fixedpoint.UFixed

	// MaxAssets returns the precomputed asset ceiling.
	MaxAssets() fixedpoint.UFixed

	// PreviewDeposit returns the shares minted for depositing assets,
	// rounded down.
	PreviewDeposit(assets, totalAssets, totalShares fixedpoint.UFixed) (fixedpoint.UFixed, error)

	// PreviewMint returns the assets required to mint shares, rounded up.
	PreviewMint(shares, totalShares, totalAssets fixedpoint.UFixed) (fixedpoint.UFixed, error)

	// PreviewWithdraw returns the shares that must be redeemed to withdraw
	// assets, rounded up.
	PreviewWithdraw(assets, totalAssets, totalShares fixedpoint.UFixed) (fixedpoint.UFixed, error)

	// PreviewRedeem returns the assets returned for burning shares,
	// rounded down.
	PreviewRedeem(shares, totalShares, totalAssets fixedpoint.UFixed) (fixedpoint.UFixed, error)

	// ConvertToShares is the spot assets-to-shares conversion at the current
	// state, independent of flow direction. Rounded down.
	ConvertToShares(assets, totalAssets, totalShares fixedpoint.UFixed) (fixedpoint.UFixed, error)

	// ConvertToAssets is the spot shares-to-assets conversion. Rounded down.
	ConvertToAssets(shares, totalShares, totalAssets fixedpoint.UFixed) (fixedpoint.UFixed, error)

	// CurrentPrice returns the marginal price of one whole share, expressed
	// in assets at the same fixed-point scale.
	CurrentPrice(totalShares, totalAssets fixedpoint.UFixed) (fixedpoint.UFixed, error)
}

// baseCurve carries the name and precomputed ceilings shared by every
// implementation, together with the validation helpers.
type baseCurve struct {
	name      string
	maxShares fixedpoint.UFixed
	maxAssets fixedpoint.UFixed
}

func newBaseCurve(name string, maxShares, maxAssets fixedpoint.UFixed) (baseCurve, error) {
	if name == "" {
		return baseCurve{}, ErrEmptyName
	}
	return baseCurve{name: name, maxShares: maxShares, maxAssets: maxAssets}, nil
}

func (b baseCurve) Name() string                 { return b.name }
func (b baseCurve) MaxShares() fixedpoint.UFixed { return b.maxShares }
func (b baseCurve) MaxAssets() fixedpoint.UFixed { return b.maxAssets }

// checkDomain verifies the caller-supplied state is inside the curve's valid
// domain. A violation signals a bug on the vault side, not a user error.
func (b baseCurve) checkDomain(totalAssets, totalShares fixedpoint.UFixed) error {
	if totalAssets.GT(b.maxAssets) {
		return fmt.Errorf("%w: total assets %s exceed max %s", ErrDomainExceeded, totalAssets, b.maxAssets)
	}
	if totalShares.GT(b.maxShares) {
		return fmt.Errorf("%w: total shares %s exceed max %s", ErrDomainExceeded, totalShares, b.maxShares)
	}
	return nil
}

// checkAssetCeiling verifies totalAssets+assets stays under the asset ceiling
// and returns the new total.
func (b baseCurve) checkAssetCeiling(assets, totalAssets fixedpoint.UFixed) (fixedpoint.UFixed, error) {
	newTotal, err := totalAssets.Add(assets)
	if err != nil || newTotal.GT(b.maxAssets) {
		return fixedpoint.UFixed{}, fmt.Errorf("%w: %s + %s exceeds max %s",
			ErrAssetsOverflowMax, totalAssets, assets, b.maxAssets)
	}
	return newTotal, nil
}

// checkShareCeiling verifies totalShares+shares stays under the share ceiling
// and returns the new total.
func (b baseCurve) checkShareCeiling(shares, totalShares fixedpoint.UFixed) (fixedpoint.UFixed, error) {
	newTotal, err := totalShares.Add(shares)
	if err != nil || newTotal.GT(b.maxShares) {
		return fixedpoint.UFixed{}, fmt.Errorf("%w: %s + %s exceeds max %s",
			ErrSharesOverflowMax, totalShares, shares, b.maxShares)
	}
	return newTotal, nil
}

// checkWithdraw verifies assets can be taken out of the pool.
func (b baseCurve) checkWithdraw(assets, totalAssets fixedpoint.UFixed) error {
	if assets.GT(totalAssets) {
		return fmt.Errorf("%w: %s > %s", ErrAssetsExceedTotal, assets, totalAssets)
	}
	return nil
}

// checkRedeem verifies shares can be burned from the pool.
func (b baseCurve) checkRedeem(shares, totalShares fixedpoint.UFixed) error {
	if shares.GT(totalShares) {
		return fmt.Errorf("%w: %s > %s", ErrSharesExceedTotal, shares, totalShares)
	}
	return nil
}
