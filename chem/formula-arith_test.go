package chem

import (
	"math"
	"math/big"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counts(kv ...interface{}) map[IsotopeKey]int {
	m := make(map[IsotopeKey]int, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		m[IsotopeKey(kv[i].(string))] = kv[i+1].(int)
	}
	return m
}

func TestAddSubtract(t *testing.T) {
	methane := MustNewFormula(counts("C-12", 1, "H-1", 4), 0)
	oxygen := MustNewFormula(counts("O-16", 2), 0)
	hydroxide := MustNewFormula(counts("O-16", 1, "H-1", 1), -1)

	sum, err := Add(methane, oxygen)
	require.NoError(t, err)
	assert.Equal(t, counts("C-12", 1, "H-1", 4, "O-16", 2), sum.Counts())

	sum, err = Add(sum, hydroxide)
	require.NoError(t, err)
	assert.Equal(t, 5, sum.Count("H-1"))
	assert.Equal(t, int16(-1), sum.Charge())

	// identity
	same, err := Add(methane, EmptyFormula)
	require.NoError(t, err)
	assert.True(t, same.Equal(methane))

	// Subtract undoes Add when the operand is contained
	back, err := Subtract(sum, hydroxide)
	require.NoError(t, err)
	assert.Equal(t, counts("C-12", 1, "H-1", 4, "O-16", 2), back.Counts())
	assert.Equal(t, int16(0), back.Charge())

	// counts floor at zero and vanish; charge subtracts plainly
	diff, err := Subtract(hydroxide, methane)
	require.NoError(t, err)
	assert.Equal(t, counts("O-16", 1), diff.Counts())
	assert.Equal(t, int16(-1), diff.Charge())

	self, err := Subtract(methane, methane)
	require.NoError(t, err)
	assert.True(t, self.IsEmpty())
}

func TestAddOverflow(t *testing.T) {
	full := MustNewFormula(counts("H-1", MaxCount), MaxCharge)
	one := MustNewFormula(counts("H-1", 1), 0)
	cation := MustNewFormula(nil, 1)
	anion := MustNewFormula(nil, -1)

	_, err := Add(full, one)
	assert.True(t, errors.Is(err, ErrOverflow))

	_, err = Add(full, cation)
	assert.True(t, errors.Is(err, ErrOverflow))

	low := MustNewFormula(nil, MinCharge)
	_, err = Subtract(low, cation)
	assert.True(t, errors.Is(err, ErrOverflow))

	_, err = Add(low, anion)
	assert.True(t, errors.Is(err, ErrOverflow))
}

func TestScale(t *testing.T) {
	f := MustNewFormula(counts("C-12", 3, "H-1", 5, "O-16", 1), 1)

	doubled, err := MultiplyInt(f, 2)
	require.NoError(t, err)
	assert.Equal(t, counts("C-12", 6, "H-1", 10, "O-16", 2), doubled.Counts())
	assert.Equal(t, int16(2), doubled.Charge())

	halved, err := DivideInt(doubled, 2)
	require.NoError(t, err)
	assert.True(t, halved.Equal(f))

	// 1.5, 2.5 and 0.5 round away from zero
	half, err := DivideInt(f, 2)
	require.NoError(t, err)
	assert.Equal(t, counts("C-12", 2, "H-1", 3, "O-16", 1), half.Counts())
	assert.Equal(t, int16(1), half.Charge())

	// 1/3 rounds to 0 and is dropped
	third, err := Divide(f, big.NewRat(3, 1))
	require.NoError(t, err)
	assert.Equal(t, counts("C-12", 1, "H-1", 2), third.Counts())
	assert.Equal(t, int16(0), third.Charge())

	zero, err := MultiplyInt(f, 0)
	require.NoError(t, err)
	assert.True(t, zero.IsEmpty())

	same, err := MultiplyFloat(f, 1.0)
	require.NoError(t, err)
	assert.True(t, same.Equal(f))

	anion := MustNewFormula(counts("O-16", 1), -3)
	scaled, err := DivideFloat(anion, 2)
	require.NoError(t, err)
	assert.Equal(t, int16(-2), scaled.Charge())
}

func TestScaleErrors(t *testing.T) {
	f := MustNewFormula(counts("H-1", 2), 0)

	for _, x := range []float64{-1, math.NaN(), math.Inf(1)} {
		_, err := MultiplyFloat(f, x)
		assert.True(t, errors.Is(err, ErrBadScalar), "%v", x)
	}
	for _, x := range []float64{0, -2, math.Inf(-1)} {
		_, err := DivideFloat(f, x)
		assert.True(t, errors.Is(err, ErrBadScalar), "%v", x)
	}
	_, err := Multiply(f, nil)
	assert.True(t, errors.Is(err, ErrBadScalar))

	_, err = MultiplyInt(f, MaxCount)
	assert.True(t, errors.Is(err, ErrOverflow))

	ok, err := MultiplyInt(MustNewFormula(counts("H-1", 1), 0), MaxCount)
	require.NoError(t, err)
	assert.Equal(t, MaxCount, ok.Count("H-1"))
}

func TestRoundHalfAway(t *testing.T) {
	tests := []struct {
		num, den int64
		want     int64
	}{
		{5, 2, 3},
		{-5, 2, -3},
		{3, 2, 2},
		{1, 2, 1},
		{-1, 2, -1},
		{1, 3, 0},
		{2, 3, 1},
		{-7, 3, -2},
		{10, 1, 10},
		{0, 1, 0},
	}
	for _, tt := range tests {
		got := RoundHalfAway(big.NewRat(tt.num, tt.den))
		assert.Equal(t, tt.want, got.Int64(), "%d/%d", tt.num, tt.den)
	}
}
