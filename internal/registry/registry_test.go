package registry

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/elys-network/curved/internal/curves"
	"github.com/elys-network/curved/internal/fixedpoint"
	"github.com/elys-network/curved/internal/types"
)

func mustLinear(t *testing.T, name string) *curves.Linear {
	t.Helper()
	c, err := curves.NewLinear(name)
	require.NoError(t, err)
	return c
}

func TestAddCurveAssignsDenseIDs(t *testing.T) {
	reg := New()

	first, err := reg.AddCurve(mustLinear(t, "linear"))
	require.NoError(t, err)
	require.Equal(t, types.CurveID(1), first)

	second, err := reg.AddCurve(mustLinear(t, "linear-2"))
	require.NoError(t, err)
	require.Equal(t, types.CurveID(2), second)

	require.Equal(t, 2, reg.Count())
}

func TestAddCurveRejectsNil(t *testing.T) {
	reg := New()
	_, err := reg.AddCurve(nil)
	require.ErrorIs(t, err, ErrNilCurve)
	require.Equal(t, 0, reg.Count())
}

func TestAddCurveRejectsDuplicateInstance(t *testing.T) {
	reg := New()
	curve := mustLinear(t, "linear")

	_, err := reg.AddCurve(curve)
	require.NoError(t, err)

	_, err = reg.AddCurve(curve)
	require.ErrorIs(t, err, ErrCurveAlreadyRegistered)
	require.Equal(t, 1, reg.Count())
}

func TestAddCurveRejectsDuplicateName(t *testing.T) {
	reg := New()

	_, err := reg.AddCurve(mustLinear(t, "linear"))
	require.NoError(t, err)

	_, err = reg.AddCurve(mustLinear(t, "linear"))
	require.ErrorIs(t, err, ErrDuplicateCurveName)
	require.Equal(t, 1, reg.Count())
}

func TestResolveUnknownID(t *testing.T) {
	reg := New()
	_, err := reg.AddCurve(mustLinear(t, "linear"))
	require.NoError(t, err)

	// Zero is never assigned.
	_, err = reg.Curve(0)
	require.ErrorIs(t, err, ErrCurveNotFound)

	_, err = reg.Curve(7)
	require.ErrorIs(t, err, ErrCurveNotFound)

	_, err = reg.PreviewDeposit(0, fixedpoint.One(), fixedpoint.Zero(), fixedpoint.Zero())
	require.ErrorIs(t, err, ErrCurveNotFound)
}

func TestCurveIDRoundTrip(t *testing.T) {
	reg := New()
	curve := mustLinear(t, "linear")

	id, err := reg.AddCurve(curve)
	require.NoError(t, err)

	got, err := reg.CurveID(curve)
	require.NoError(t, err)
	require.Equal(t, id, got)

	_, err = reg.CurveID(mustLinear(t, "stranger"))
	require.ErrorIs(t, err, ErrCurveNotFound)

	_, err = reg.CurveID(nil)
	require.ErrorIs(t, err, ErrNilCurve)
}

func TestForwardingMatchesDirectCall(t *testing.T) {
	reg := New()
	curve := mustLinear(t, "linear")
	id, err := reg.AddCurve(curve)
	require.NoError(t, err)

	assets := fixedpoint.New(100)
	ta := fixedpoint.New(1000)
	ts := fixedpoint.New(1000)

	direct, err := curve.PreviewDeposit(assets, ta, ts)
	require.NoError(t, err)

	routed, err := reg.PreviewDeposit(id, assets, ta, ts)
	require.NoError(t, err)
	require.True(t, routed.Equal(direct))

	directPrice, err := curve.CurrentPrice(ts, ta)
	require.NoError(t, err)
	routedPrice, err := reg.CurrentPrice(id, ts, ta)
	require.NoError(t, err)
	require.True(t, routedPrice.Equal(directPrice))
}

func TestForwardingPropagatesCurveErrors(t *testing.T) {
	reg := New()
	id, err := reg.AddCurve(mustLinear(t, "linear"))
	require.NoError(t, err)

	_, err = reg.PreviewRedeem(id, fixedpoint.New(2), fixedpoint.New(1), fixedpoint.New(1))
	require.ErrorIs(t, err, curves.ErrSharesExceedTotal)
}

func TestObserversFireOnRegistration(t *testing.T) {
	type event struct {
		id   types.CurveID
		name string
	}
	var seen []event

	reg := New(func(id types.CurveID, _ curves.Curve, name string) {
		seen = append(seen, event{id: id, name: name})
	})

	_, err := reg.AddCurve(mustLinear(t, "linear"))
	require.NoError(t, err)
	_, err = reg.AddCurve(mustLinear(t, "linear-2"))
	require.NoError(t, err)

	// A failed registration must not notify.
	_, err = reg.AddCurve(mustLinear(t, "linear"))
	require.Error(t, err)

	require.Equal(t, []event{
		{id: 1, name: "linear"},
		{id: 2, name: "linear-2"},
	}, seen)
}

func TestListReturnsEntriesInIDOrder(t *testing.T) {
	reg := New()
	for _, name := range []string{"linear", "progressive-flavored", "third"} {
		_, err := reg.AddCurve(mustLinear(t, name))
		require.NoError(t, err)
	}

	infos := reg.List()
	require.Len(t, infos, 3)
	require.Equal(t, types.CurveID(1), infos[0].ID)
	require.Equal(t, "linear", infos[0].Name)
	require.Equal(t, types.CurveID(3), infos[2].ID)
	require.Equal(t, "third", infos[2].Name)
	require.True(t, infos[0].MaxAssets.Equal(fixedpoint.Max()))

	name, err := reg.CurveName(2)
	require.NoError(t, err)
	require.Equal(t, "progressive-flavored", name)
}
