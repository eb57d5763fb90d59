package chem

import (
	"math"
	"math/big"

	"github.com/pkg/errors"
)

// Add returns the union of a and b, summing shared nuclide counts and charges.
func Add(a, b Formula) (Formula, error) {
	charge := int(a.charge) + int(b.charge)
	if charge < MinCharge || charge > MaxCharge {
		return Formula{}, errors.Wrapf(ErrOverflow, "charge %d", charge)
	}
	out := a.clone(len(b.nuclides))
	out.charge = int16(charge)
	for key, n := range b.nuclides {
		sum := int(out.nuclides[key]) + int(n)
		if sum > MaxCount {
			return Formula{}, errors.Wrapf(ErrOverflow, "%s: %d", key, sum)
		}
		out.nuclides[key] = uint16(sum)
	}
	return out, nil
}

// Subtract removes b's nuclides from a.
//
// A nuclide whose count drops to zero or below is dropped entirely (counts never go negative), while the charge is
// plainly subtracted.  The result is therefore only exact when a.Contains(b).
func Subtract(a, b Formula) (Formula, error) {
	charge := int(a.charge) - int(b.charge)
	if charge < MinCharge || charge > MaxCharge {
		return Formula{}, errors.Wrapf(ErrOverflow, "charge %d", charge)
	}
	out := a.clone(0)
	out.charge = int16(charge)
	for key, n := range b.nuclides {
		have, exists := out.nuclides[key]
		if !exists {
			continue
		}
		if have <= n {
			delete(out.nuclides, key)
		} else {
			out.nuclides[key] = have - n
		}
	}
	return out, nil
}

// Multiply scales every nuclide count and the charge of a by factor.
//
// Each scaled value is independently rounded half away from zero; counts that round to zero are dropped.
// A nil or negative factor fails with ErrBadScalar before any scaling occurs.
func Multiply(a Formula, factor *big.Rat) (Formula, error) {
	if factor == nil || factor.Sign() < 0 {
		return Formula{}, errors.Wrapf(ErrBadScalar, "multiply by %v", factor)
	}
	return scale(a, factor)
}

// Divide scales a by 1/divisor, rounding as Multiply does.  A nil or non-positive divisor fails with ErrBadScalar.
func Divide(a Formula, divisor *big.Rat) (Formula, error) {
	if divisor == nil || divisor.Sign() <= 0 {
		return Formula{}, errors.Wrapf(ErrBadScalar, "divide by %v", divisor)
	}
	return scale(a, new(big.Rat).Inv(divisor))
}

// MultiplyInt is Multiply for an integer factor.
func MultiplyInt(a Formula, n int) (Formula, error) {
	return Multiply(a, new(big.Rat).SetInt64(int64(n)))
}

// DivideInt is Divide for an integer divisor.
func DivideInt(a Formula, n int) (Formula, error) {
	return Divide(a, new(big.Rat).SetInt64(int64(n)))
}

// MultiplyFloat is Multiply for a float factor; NaN and infinities fail with ErrBadScalar.
func MultiplyFloat(a Formula, x float64) (Formula, error) {
	factor, err := ratFromFloat(x)
	if err != nil {
		return Formula{}, err
	}
	return Multiply(a, factor)
}

// DivideFloat is Divide for a float divisor; NaN and infinities fail with ErrBadScalar.
func DivideFloat(a Formula, x float64) (Formula, error) {
	divisor, err := ratFromFloat(x)
	if err != nil {
		return Formula{}, err
	}
	return Divide(a, divisor)
}

func ratFromFloat(x float64) (*big.Rat, error) {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return nil, errors.Wrapf(ErrBadScalar, "%v", x)
	}
	return new(big.Rat).SetFloat64(x), nil
}

func scale(a Formula, factor *big.Rat) (Formula, error) {
	out := Formula{
		nuclides: make(map[IsotopeKey]uint16, len(a.nuclides)),
	}

	var x big.Rat
	for key, n := range a.nuclides {
		x.SetInt64(int64(n))
		count := RoundHalfAway(x.Mul(&x, factor))
		if !count.IsInt64() || count.Int64() > MaxCount {
			return Formula{}, errors.Wrapf(ErrOverflow, "%s: %v", key, count)
		}
		if count.Sign() > 0 {
			out.nuclides[key] = uint16(count.Int64())
		}
	}

	x.SetInt64(int64(a.charge))
	charge := RoundHalfAway(x.Mul(&x, factor))
	if !charge.IsInt64() || charge.Int64() < MinCharge || charge.Int64() > MaxCharge {
		return Formula{}, errors.Wrapf(ErrOverflow, "charge %v", charge)
	}
	out.charge = int16(charge.Int64())

	return out, nil
}

// RoundHalfAway rounds x to the nearest integer, ties away from zero (2.5 -> 3, -2.5 -> -3).
func RoundHalfAway(x *big.Rat) *big.Int {
	// floor((2|num| + den) / 2den)
	q := new(big.Int).Abs(x.Num())
	q.Lsh(q, 1)
	q.Add(q, x.Denom())
	den := new(big.Int).Lsh(x.Denom(), 1)
	q.Quo(q, den)
	if x.Sign() < 0 {
		q.Neg(q)
	}
	return q
}
