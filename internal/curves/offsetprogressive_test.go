package curves

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/elys-network/curved/internal/fixedpoint"
)

// slope 2.0, offset 5.0: half-slope is exactly 1.0 and the supply shift is 5,
// so cost areas are (s2+5)^2 - (s1+5)^2.
func mustOffsetProgressive(t *testing.T) *OffsetProgressive {
	t.Helper()
	c, err := NewOffsetProgressive("offset-progressive", fixedpoint.New(2), fixedpoint.New(5))
	require.NoError(t, err)
	return c
}

func TestNewOffsetProgressiveValidates(t *testing.T) {
	_, err := NewOffsetProgressive("x", fixedpoint.Zero(), fixedpoint.New(5))
	require.ErrorIs(t, err, ErrInvalidSlope)

	_, err = NewOffsetProgressive("", fixedpoint.New(2), fixedpoint.New(5))
	require.ErrorIs(t, err, ErrEmptyName)

	_, err = NewOffsetProgressive("x", fixedpoint.New(2), fixedpoint.Max())
	require.ErrorIs(t, err, ErrInvalidOffset)
}

func TestOffsetProgressiveFirstDeposit(t *testing.T) {
	c := mustOffsetProgressive(t)

	// sqrt(5^2 + 11) - 5 = 1.
	shares, err := c.PreviewDeposit(fixedpoint.New(11), fixedpoint.Zero(), fixedpoint.Zero())
	require.NoError(t, err)
	require.True(t, shares.Equal(fixedpoint.One()))
}

func TestOffsetProgressiveStartingPrice(t *testing.T) {
	c := mustOffsetProgressive(t)

	// The offset lifts the zero-supply price off the floor: m * offset.
	price, err := c.CurrentPrice(fixedpoint.Zero(), fixedpoint.Zero())
	require.NoError(t, err)
	require.True(t, price.Equal(fixedpoint.New(10)))

	price, err = c.CurrentPrice(fixedpoint.One(), fixedpoint.New(11))
	require.NoError(t, err)
	require.True(t, price.Equal(fixedpoint.New(12)))
}

func TestOffsetProgressiveGentlerThanPure(t *testing.T) {
	offset := mustOffsetProgressive(t)
	pure := mustProgressive(t)

	deposit := fixedpoint.New(11)
	offsetShares, err := offset.PreviewDeposit(deposit, fixedpoint.Zero(), fixedpoint.Zero())
	require.NoError(t, err)
	pureShares, err := pure.PreviewDeposit(deposit, fixedpoint.Zero(), fixedpoint.Zero())
	require.NoError(t, err)

	// Same deposit mints fewer shares on the snipped curve: its low-supply
	// region already prices shares as if supply were at the offset.
	require.True(t, offsetShares.LT(pureShares))
}

func TestOffsetProgressiveMintRedeemAgree(t *testing.T) {
	c := mustOffsetProgressive(t)

	// Supply 0 -> 1 costs (6^2 - 5^2) = 11.
	assets, err := c.PreviewMint(fixedpoint.One(), fixedpoint.Zero(), fixedpoint.Zero())
	require.NoError(t, err)
	require.True(t, assets.Equal(fixedpoint.New(11)))

	back, err := c.PreviewRedeem(fixedpoint.One(), fixedpoint.One(), fixedpoint.New(11))
	require.NoError(t, err)
	require.True(t, back.Equal(fixedpoint.New(11)))

	burned, err := c.PreviewWithdraw(fixedpoint.New(11), fixedpoint.New(11), fixedpoint.One())
	require.NoError(t, err)
	require.True(t, burned.Equal(fixedpoint.One()))
}

func TestOffsetProgressiveZeroSupplyConversionIsOneToOne(t *testing.T) {
	c := mustOffsetProgressive(t)

	converted, err := c.ConvertToShares(fixedpoint.New(5), fixedpoint.Zero(), fixedpoint.Zero())
	require.NoError(t, err)
	require.True(t, converted.Equal(fixedpoint.New(5)))
}

func TestOffsetProgressiveRoundTripNeverProfits(t *testing.T) {
	c := mustOffsetProgressive(t)

	// Supply 2 sits at area (2+5)^2 - 5^2 = 24.
	totalAssets := fixedpoint.New(24)
	totalShares := fixedpoint.New(2)
	for _, deposit := range []string{"0.5", "1", "13", "99.99"} {
		assets := fixedpoint.MustParse(deposit)

		shares, err := c.PreviewDeposit(assets, totalAssets, totalShares)
		require.NoError(t, err)

		newShares, err := totalShares.Add(shares)
		require.NoError(t, err)
		newAssets, err := totalAssets.Add(assets)
		require.NoError(t, err)

		back, err := c.PreviewRedeem(shares, newShares, newAssets)
		require.NoError(t, err)
		require.True(t, back.LTE(assets), "deposit %s came back as %s", assets, back)
	}
}

func TestOffsetProgressiveCeilingShiftedByOffset(t *testing.T) {
	c := mustOffsetProgressive(t)
	pure := mustProgressive(t)

	require.True(t, c.MaxShares().LT(pure.MaxShares()))

	diff, err := pure.MaxShares().Sub(c.MaxShares())
	require.NoError(t, err)
	require.True(t, diff.Equal(fixedpoint.New(5)))
}
