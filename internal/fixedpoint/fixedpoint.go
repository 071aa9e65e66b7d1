/*
Unsigned fixed-point arithmetic with 18 fractional digits.

Every curve computes on UFixed. All operations are checked: results that
cannot be represented in [0, 2^256-1] come back as errors, never as
wrapped-around values, and rounding is always explicit (Down / Up variants).
*/

package fixedpoint

import (
	"errors"
	"fmt"
	"math/big"

	sdkmath "cosmossdk.io/math"
)

// Decimals is the number of fractional digits in a UFixed value.
const Decimals = 18

var (
	ErrOverflow       = errors.New("fixed-point overflow")
	ErrNegativeResult = errors.New("fixed-point result is negative")
	ErrDivideByZero   = errors.New("fixed-point division by zero")
)

var (
	oneRaw = new(big.Int).Exp(big.NewInt(10), big.NewInt(Decimals), nil) // 10^18
	// maxRaw is 2^256 - 1, the largest integer sdkmath.Int can hold.
	maxRaw = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))
)

// UFixed is an unsigned decimal with 18 fractional digits, stored as a raw
// integer scaled by 10^18. The zero value is 0.
type UFixed struct {
	i sdkmath.Int
}

// New returns the UFixed representing `whole` whole units.
func New(whole uint64) UFixed {
	raw := new(big.Int).Mul(new(big.Int).SetUint64(whole), oneRaw)
	return UFixed{i: sdkmath.NewIntFromBigInt(raw)}
}

// Zero returns 0.
func Zero() UFixed {
	return UFixed{i: sdkmath.ZeroInt()}
}

// One returns 1.0, the fixed-point unit.
func One() UFixed {
	return UFixed{i: sdkmath.NewIntFromBigInt(new(big.Int).Set(oneRaw))}
}

// Max returns the largest representable value, (2^256-1) / 10^18.
func Max() UFixed {
	return UFixed{i: sdkmath.NewIntFromBigInt(new(big.Int).Set(maxRaw))}
}

// NewFromRaw wraps an already-scaled integer. Fails on negative input.
func NewFromRaw(raw sdkmath.Int) (UFixed, error) {
	if raw.IsNil() {
		return UFixed{}, fmt.Errorf("%w: raw value is nil", ErrNegativeResult)
	}
	if raw.IsNegative() {
		return UFixed{}, fmt.Errorf("%w: raw value %s", ErrNegativeResult, raw)
	}
	return UFixed{i: raw}, nil
}

// NewFromBigInt wraps an already-scaled big integer, copying it.
func NewFromBigInt(raw *big.Int) (UFixed, error) {
	if raw.Sign() < 0 {
		return UFixed{}, fmt.Errorf("%w: raw value %s", ErrNegativeResult, raw)
	}
	return newChecked(new(big.Int).Set(raw))
}

// Parse reads a decimal string such as "1.5" or "2000000000".
func Parse(s string) (UFixed, error) {
	dec, err := sdkmath.LegacyNewDecFromStr(s)
	if err != nil {
		return UFixed{}, fmt.Errorf("invalid fixed-point string %q: %w", s, err)
	}
	if dec.IsNegative() {
		return UFixed{}, fmt.Errorf("%w: %s", ErrNegativeResult, s)
	}
	return newChecked(dec.BigInt())
}

// MustParse is Parse for compile-time constants; panics on bad input.
func MustParse(s string) UFixed {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

// newChecked converts a raw big integer into a UFixed, rejecting values
// outside [0, 2^256-1]. The caller must hand over ownership of raw.
func newChecked(raw *big.Int) (UFixed, error) {
	if raw.Sign() < 0 {
		return UFixed{}, fmt.Errorf("%w: raw value %s", ErrNegativeResult, raw)
	}
	if raw.Cmp(maxRaw) > 0 {
		return UFixed{}, fmt.Errorf("%w: raw value %s exceeds 2^256-1", ErrOverflow, raw)
	}
	return UFixed{i: sdkmath.NewIntFromBigInt(raw)}, nil
}

// Raw returns the underlying scaled integer.
func (x UFixed) Raw() sdkmath.Int {
	if x.i.IsNil() {
		return sdkmath.ZeroInt()
	}
	return x.i
}

// BigInt returns a copy of the underlying scaled integer.
func (x UFixed) BigInt() *big.Int {
	return x.Raw().BigInt()
}

func (x UFixed) IsZero() bool        { return x.Raw().IsZero() }
func (x UFixed) Equal(y UFixed) bool { return x.Raw().Equal(y.Raw()) }
func (x UFixed) LT(y UFixed) bool    { return x.Raw().LT(y.Raw()) }
func (x UFixed) LTE(y UFixed) bool   { return x.Raw().LTE(y.Raw()) }
func (x UFixed) GT(y UFixed) bool    { return x.Raw().GT(y.Raw()) }
func (x UFixed) GTE(y UFixed) bool   { return x.Raw().GTE(y.Raw()) }

// Add returns x+y, failing with ErrOverflow past 2^256-1.
func (x UFixed) Add(y UFixed) (UFixed, error) {
	return newChecked(new(big.Int).Add(x.BigInt(), y.BigInt()))
}

// Sub returns x-y, failing with ErrNegativeResult when y > x.
func (x UFixed) Sub(y UFixed) (UFixed, error) {
	if y.GT(x) {
		return UFixed{}, fmt.Errorf("%w: %s - %s", ErrNegativeResult, x, y)
	}
	return newChecked(new(big.Int).Sub(x.BigInt(), y.BigInt()))
}

// MulDown returns x*y rounded toward zero.
func (x UFixed) MulDown(y UFixed) (UFixed, error) {
	prod := new(big.Int).Mul(x.BigInt(), y.BigInt())
	return newChecked(prod.Quo(prod, oneRaw))
}

// MulUp returns x*y rounded away from zero.
func (x UFixed) MulUp(y UFixed) (UFixed, error) {
	prod := new(big.Int).Mul(x.BigInt(), y.BigInt())
	return newChecked(ceilDiv(prod, oneRaw))
}

// QuoDown returns x/y rounded toward zero.
func (x UFixed) QuoDown(y UFixed) (UFixed, error) {
	if y.IsZero() {
		return UFixed{}, fmt.Errorf("%w: %s / 0", ErrDivideByZero, x)
	}
	num := new(big.Int).Mul(x.BigInt(), oneRaw)
	return newChecked(num.Quo(num, y.BigInt()))
}

// QuoUp returns x/y rounded away from zero.
func (x UFixed) QuoUp(y UFixed) (UFixed, error) {
	if y.IsZero() {
		return UFixed{}, fmt.Errorf("%w: %s / 0", ErrDivideByZero, x)
	}
	num := new(big.Int).Mul(x.BigInt(), oneRaw)
	return newChecked(ceilDiv(num, y.BigInt()))
}

// SquareDown returns x*x rounded toward zero.
func (x UFixed) SquareDown() (UFixed, error) { return x.MulDown(x) }

// SquareUp returns x*x rounded away from zero.
func (x UFixed) SquareUp() (UFixed, error) { return x.MulUp(x) }

// SqrtDown returns the square root of x rounded toward zero.
func (x UFixed) SqrtDown() (UFixed, error) {
	scaled := new(big.Int).Mul(x.BigInt(), oneRaw)
	return newChecked(scaled.Sqrt(scaled))
}

// SqrtUp returns the square root of x rounded away from zero.
func (x UFixed) SqrtUp() (UFixed, error) {
	scaled := new(big.Int).Mul(x.BigInt(), oneRaw)
	root := new(big.Int).Sqrt(scaled)
	if new(big.Int).Mul(root, root).Cmp(scaled) < 0 {
		root.Add(root, big.NewInt(1))
	}
	return newChecked(root)
}

// String renders the value as a decimal with 18 fractional digits.
func (x UFixed) String() string {
	return sdkmath.LegacyNewDecFromBigIntWithPrec(x.BigInt(), Decimals).String()
}

// MarshalJSON encodes the value as a decimal string.
func (x UFixed) MarshalJSON() ([]byte, error) {
	return []byte(`"` + x.String() + `"`), nil
}

// UnmarshalJSON decodes a decimal string.
func (x *UFixed) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	v, err := Parse(s)
	if err != nil {
		return err
	}
	*x = v
	return nil
}

// ceilDiv divides a by b rounding away from zero. b must be positive.
func ceilDiv(a, b *big.Int) *big.Int {
	r := new(big.Int).Add(a, new(big.Int).Sub(b, big.NewInt(1)))
	return r.Quo(r, b)
}
