package chem

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testRegistry knows H, C and O with a couple of isotopes each.
type testRegistry map[IsotopeKey]*Isotope

func newTestRegistry() testRegistry {
	reg := testRegistry{}
	add := func(el *Element, massNumber int, mass float64, common bool) {
		iso := &Isotope{Element: el, MassNumber: massNumber, Mass: mass, IsCommon: common}
		reg[iso.Key()] = iso
	}
	H := &Element{Symbol: "H", AtomicNumber: 1, AtomicWeight: 1.008}
	C := &Element{Symbol: "C", AtomicNumber: 6, AtomicWeight: 12.011}
	O := &Element{Symbol: "O", AtomicNumber: 8, AtomicWeight: 15.999}
	add(H, 1, 1.00782503207, true)
	add(H, 2, 2.0141017778, false)
	add(C, 12, 12, true)
	add(C, 13, 13.0033548378, false)
	add(O, 16, 15.99491461956, true)
	add(O, 18, 17.9991610, false)
	return reg
}

func (reg testRegistry) ResolveSymbol(sym string) (*Element, bool) {
	for _, iso := range reg {
		if iso.Element.Symbol == sym {
			return iso.Element, true
		}
	}
	return nil, false
}

func (reg testRegistry) CommonIsotope(el *Element) (*Isotope, bool) {
	for _, iso := range reg {
		if iso.Element == el && iso.IsCommon {
			return iso, true
		}
	}
	return nil, false
}

func (reg testRegistry) IsotopeByMass(el *Element, massNumber int) (*Isotope, bool) {
	iso, ok := reg[FormIsotopeKey(el.Symbol, massNumber)]
	return iso, ok
}

func (reg testRegistry) IsotopeFromKey(key IsotopeKey) (*Isotope, bool) {
	iso, ok := reg[key]
	return iso, ok
}

func water(t *testing.T) Formula {
	f, err := NewFormula(map[IsotopeKey]int{"H-1": 2, "O-16": 1}, 0)
	require.NoError(t, err)
	return f
}

func TestIsotopeKey(t *testing.T) {
	key := FormIsotopeKey("Cl", 37)
	assert.Equal(t, IsotopeKey("Cl-37"), key)
	assert.Equal(t, "Cl", key.Symbol())
	assert.Equal(t, 37, key.MassNumber())
	assert.NoError(t, key.Validate())

	for _, bad := range []IsotopeKey{"", "C", "C-", "C-0", "C-301", "c-12", "Cl-037", "CL-35", "C-12x"} {
		err := bad.Validate()
		assert.True(t, errors.Is(err, ErrBadIsotopeKey), "%q", bad)
	}
}

func TestNewFormula(t *testing.T) {
	f := water(t)
	assert.Equal(t, 2, f.Len())
	assert.Equal(t, 3, f.AtomCount())
	assert.Equal(t, 2, f.Count("H-1"))
	assert.Equal(t, 0, f.Count("C-12"))
	assert.Equal(t, []IsotopeKey{"H-1", "O-16"}, f.Isotopes())
	assert.Equal(t, []string{"H", "O"}, f.Elements())

	zeroDropped, err := NewFormula(map[IsotopeKey]int{"H-1": 0, "C-12": 1}, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, zeroDropped.Len())

	_, err = NewFormula(map[IsotopeKey]int{"H-1": -1}, 0)
	assert.True(t, errors.Is(err, ErrBadCount))

	_, err = NewFormula(map[IsotopeKey]int{"H-1": MaxCount + 1}, 0)
	assert.True(t, errors.Is(err, ErrOverflow))

	_, err = NewFormula(map[IsotopeKey]int{"H-1": MaxCount}, MaxCharge)
	assert.NoError(t, err)

	_, err = NewFormula(nil, MinCharge-1)
	assert.True(t, errors.Is(err, ErrOverflow))

	_, err = NewFormula(map[IsotopeKey]int{"H1": 1}, 0)
	assert.True(t, errors.Is(err, ErrBadIsotopeKey))
}

func TestEmptyFormula(t *testing.T) {
	assert.True(t, EmptyFormula.IsEmpty())
	assert.True(t, Formula{}.Equal(EmptyFormula))
	assert.Equal(t, 0, EmptyFormula.AtomCount())

	ion, err := EmptyFormula.WithCharge(1)
	require.NoError(t, err)
	assert.False(t, ion.IsEmpty())
	assert.Equal(t, 0, ion.Len())

	empty, err := NewFormula(map[IsotopeKey]int{}, 0)
	require.NoError(t, err)
	assert.True(t, empty.Equal(EmptyFormula))
}

func TestFormulaEdits(t *testing.T) {
	f := water(t)

	heavy, err := f.AddIsotope("H-2", 1)
	require.NoError(t, err)
	assert.Equal(t, 1, heavy.Count("H-2"))
	assert.Equal(t, 0, f.Count("H-2"), "edits must not alias")

	assert.Equal(t, 2, heavy.RemoveIsotope("H-1").Len())
	assert.Equal(t, 0, heavy.RemoveIsotope("H-1").Count("H-1"))
	assert.True(t, f.RemoveIsotope("N-14").Equal(f))

	_, err = f.AddIsotope("H-1", MaxCount)
	assert.True(t, errors.Is(err, ErrOverflow))
	_, err = f.AddIsotope("H-1", -1)
	assert.True(t, errors.Is(err, ErrBadCount))

	ion, err := f.WithCharge(-2)
	require.NoError(t, err)
	assert.Equal(t, int16(-2), ion.Charge())
	assert.Equal(t, int16(0), f.Charge())
	assert.False(t, ion.Equal(f))

	_, err = f.WithCharge(MaxCharge + 1)
	assert.True(t, errors.Is(err, ErrOverflow))
}

func TestContains(t *testing.T) {
	f := water(t)
	h2 := MustNewFormula(map[IsotopeKey]int{"H-1": 2}, 0)
	h3 := MustNewFormula(map[IsotopeKey]int{"H-1": 3}, 0)

	assert.True(t, f.Contains(h2))
	assert.False(t, f.Contains(h3))
	assert.True(t, f.Contains(EmptyFormula))
	assert.True(t, f.Contains(f))
}

func TestMasses(t *testing.T) {
	reg := newTestRegistry()
	f := water(t)

	avg, err := f.AverageMass(reg)
	require.NoError(t, err)
	assert.InDelta(t, 2*1.008+15.999, avg, 1e-9)

	mono, err := f.MonoisotopicMass(reg)
	require.NoError(t, err)
	assert.InDelta(t, 18.0105646837, mono, 1e-9)

	heavy := MustNewFormula(map[IsotopeKey]int{"H-2": 2, "O-18": 1}, 0)
	avg, err = heavy.AverageMass(reg)
	require.NoError(t, err)
	assert.InDelta(t, 2*2.0141017778+17.9991610, avg, 1e-9)

	unknown := MustNewFormula(map[IsotopeKey]int{"N-14": 1}, 0)
	_, err = unknown.MonoisotopicMass(reg)
	assert.True(t, errors.Is(err, ErrUnknownIsotope))
}

func TestFormulaSelector(t *testing.T) {
	f := water(t)
	neutral := int16(0)
	anion := int16(-1)

	assert.True(t, DefaultFormulaSelector.Selects(f))
	assert.True(t, (&FormulaSelector{MinAtoms: 3, MaxAtoms: 3}).Selects(f))
	assert.False(t, (&FormulaSelector{MinAtoms: 4}).Selects(f))
	assert.False(t, (&FormulaSelector{MaxAtoms: 2}).Selects(f))
	assert.True(t, (&FormulaSelector{Charge: &neutral}).Selects(f))
	assert.False(t, (&FormulaSelector{Charge: &anion}).Selects(f))
	assert.True(t, (&FormulaSelector{Contains: MustNewFormula(map[IsotopeKey]int{"O-16": 1}, 0)}).Selects(f))
	assert.False(t, (&FormulaSelector{Contains: MustNewFormula(map[IsotopeKey]int{"C-12": 1}, 0)}).Selects(f))
}
