package fixedpoint

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseAndString(t *testing.T) {
	v, err := Parse("1.5")
	require.NoError(t, err)
	require.Equal(t, "1.500000000000000000", v.String())

	v, err = Parse("2000000000")
	require.NoError(t, err)
	require.Equal(t, "2000000000.000000000000000000", v.String())

	_, err = Parse("-1")
	require.ErrorIs(t, err, ErrNegativeResult)

	_, err = Parse("not-a-number")
	require.Error(t, err)
}

func TestNewWholeUnits(t *testing.T) {
	require.Equal(t, "5.000000000000000000", New(5).String())
	require.True(t, Zero().IsZero())
	require.Equal(t, "1.000000000000000000", One().String())
}

func TestAddSub(t *testing.T) {
	a := MustParse("1.5")
	b := MustParse("2.5")

	sum, err := a.Add(b)
	require.NoError(t, err)
	require.Equal(t, "4.000000000000000000", sum.String())

	diff, err := b.Sub(a)
	require.NoError(t, err)
	require.Equal(t, "1.000000000000000000", diff.String())

	_, err = a.Sub(b)
	require.ErrorIs(t, err, ErrNegativeResult)

	_, err = Max().Add(One())
	require.ErrorIs(t, err, ErrOverflow)
}

func TestMulRounding(t *testing.T) {
	exact, err := MustParse("1.5").MulDown(MustParse("2.0"))
	require.NoError(t, err)
	require.Equal(t, "3.000000000000000000", exact.String())

	// (1 + 1e-18)^2 = 1 + 2e-18 + 1e-36; the cross term survives, the tail
	// rounds per the requested direction.
	x := MustParse("1.000000000000000001")
	down, err := x.MulDown(x)
	require.NoError(t, err)
	require.Equal(t, "1.000000000000000002", down.String())

	up, err := x.MulUp(x)
	require.NoError(t, err)
	require.Equal(t, "1.000000000000000003", up.String())

	_, err = Max().MulDown(MustParse("2.0"))
	require.ErrorIs(t, err, ErrOverflow)
}

func TestQuoRounding(t *testing.T) {
	one := One()
	three := New(3)

	down, err := one.QuoDown(three)
	require.NoError(t, err)
	require.Equal(t, "0.333333333333333333", down.String())

	up, err := one.QuoUp(three)
	require.NoError(t, err)
	require.Equal(t, "0.333333333333333334", up.String())

	_, err = one.QuoDown(Zero())
	require.ErrorIs(t, err, ErrDivideByZero)
	_, err = one.QuoUp(Zero())
	require.ErrorIs(t, err, ErrDivideByZero)
}

func TestSqrt(t *testing.T) {
	root, err := New(4).SqrtDown()
	require.NoError(t, err)
	require.Equal(t, "2.000000000000000000", root.String())

	down, err := New(2).SqrtDown()
	require.NoError(t, err)
	require.Equal(t, "1.414213562373095048", down.String())

	up, err := New(2).SqrtUp()
	require.NoError(t, err)
	require.Equal(t, "1.414213562373095049", up.String())

	// Exact roots agree in both directions.
	exactUp, err := New(4).SqrtUp()
	require.NoError(t, err)
	require.True(t, root.Equal(exactUp))
}

func TestSquare(t *testing.T) {
	sq, err := New(3).SquareDown()
	require.NoError(t, err)
	require.Equal(t, "9.000000000000000000", sq.String())

	// Square then sqrt round-trips on exact values.
	root, err := sq.SqrtDown()
	require.NoError(t, err)
	require.True(t, root.Equal(New(3)))
}

func TestComparisons(t *testing.T) {
	a := New(1)
	b := New(2)
	require.True(t, a.LT(b))
	require.True(t, a.LTE(a))
	require.True(t, b.GT(a))
	require.True(t, b.GTE(b))
	require.True(t, a.Equal(New(1)))
}

func TestZeroValueIsUsable(t *testing.T) {
	var v UFixed
	require.True(t, v.IsZero())
	require.Equal(t, "0.000000000000000000", v.String())

	sum, err := v.Add(One())
	require.NoError(t, err)
	require.True(t, sum.Equal(One()))
}

func TestJSONRoundTrip(t *testing.T) {
	v := MustParse("123.456000000000000789")

	data, err := json.Marshal(v)
	require.NoError(t, err)
	require.Equal(t, `"123.456000000000000789"`, string(data))

	var back UFixed
	require.NoError(t, json.Unmarshal(data, &back))
	require.True(t, v.Equal(back))
}

func TestNewFromBigIntRejectsNegative(t *testing.T) {
	neg := New(1).BigInt().Neg(New(1).BigInt())
	_, err := NewFromBigInt(neg)
	require.ErrorIs(t, err, ErrNegativeResult)
}
