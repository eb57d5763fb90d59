package chem

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// Formula is an immutable set of nuclide counts plus a net ionic charge -- the information content of Hill notation.
//
// The zero value is the empty formula.  Every editing or arithmetic operation returns a new Formula.
type Formula struct {
	nuclides map[IsotopeKey]uint16 // never holds a zero count
	charge   int16
}

// EmptyFormula has no nuclides and no charge.
var EmptyFormula = Formula{}

// NewFormula validates and copies the given counts.
//
// Zero counts are dropped.  A negative count fails with ErrBadCount, a count above MaxCount or a charge outside
// [MinCharge, MaxCharge] fails with ErrOverflow.
func NewFormula(counts map[IsotopeKey]int, charge int) (Formula, error) {
	if charge < MinCharge || charge > MaxCharge {
		return Formula{}, errors.Wrapf(ErrOverflow, "charge %d", charge)
	}
	f := Formula{
		charge: int16(charge),
	}
	for key, n := range counts {
		if err := key.Validate(); err != nil {
			return Formula{}, err
		}
		switch {
		case n < 0:
			return Formula{}, errors.Wrapf(ErrBadCount, "%s: %d", key, n)
		case n > MaxCount:
			return Formula{}, errors.Wrapf(ErrOverflow, "%s: %d", key, n)
		case n == 0:
			continue
		}
		if f.nuclides == nil {
			f.nuclides = make(map[IsotopeKey]uint16, len(counts))
		}
		f.nuclides[key] = uint16(n)
	}
	return f, nil
}

// MustNewFormula is NewFormula that panics on error.
func MustNewFormula(counts map[IsotopeKey]int, charge int) Formula {
	f, err := NewFormula(counts, charge)
	if err != nil {
		panic(err)
	}
	return f
}

// Charge returns the net ionic charge in units of the elementary charge.
func (f Formula) Charge() int16 {
	return f.charge
}

// IsEmpty reports if f has no nuclides and no charge.
func (f Formula) IsEmpty() bool {
	return len(f.nuclides) == 0 && f.charge == 0
}

// Len returns the number of distinct nuclides.
func (f Formula) Len() int {
	return len(f.nuclides)
}

// Count returns the number of the given nuclide (0 if absent).
func (f Formula) Count(key IsotopeKey) int {
	return int(f.nuclides[key])
}

// AtomCount returns the total number of atoms.
func (f Formula) AtomCount() int {
	total := 0
	for _, n := range f.nuclides {
		total += int(n)
	}
	return total
}

// Counts returns a copy of the nuclide counts.
func (f Formula) Counts() map[IsotopeKey]int {
	counts := make(map[IsotopeKey]int, len(f.nuclides))
	for key, n := range f.nuclides {
		counts[key] = int(n)
	}
	return counts
}

// Each calls fn for every nuclide, in no particular order.
func (f Formula) Each(fn func(key IsotopeKey, count int)) {
	for key, n := range f.nuclides {
		fn(key, int(n))
	}
}

// Isotopes returns the distinct nuclides, sorted by key.
func (f Formula) Isotopes() []IsotopeKey {
	keys := make([]IsotopeKey, 0, len(f.nuclides))
	for key := range f.nuclides {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// Elements returns the distinct element symbols, sorted.
func (f Formula) Elements() []string {
	seen := make(map[string]struct{}, len(f.nuclides))
	syms := make([]string, 0, len(f.nuclides))
	for key := range f.nuclides {
		sym := key.Symbol()
		if _, exists := seen[sym]; !exists {
			seen[sym] = struct{}{}
			syms = append(syms, sym)
		}
	}
	sort.Strings(syms)
	return syms
}

// Equal reports if f and other have the same nuclide counts and charge.
func (f Formula) Equal(other Formula) bool {
	if f.charge != other.charge || len(f.nuclides) != len(other.nuclides) {
		return false
	}
	for key, n := range f.nuclides {
		if other.nuclides[key] != n {
			return false
		}
	}
	return true
}

// Contains reports if f holds at least as many of each nuclide as other (charge is not considered).
//
// Subtract(f, other) loses nothing exactly when f.Contains(other).
func (f Formula) Contains(other Formula) bool {
	for key, n := range other.nuclides {
		if f.nuclides[key] < n {
			return false
		}
	}
	return true
}

// AddIsotope returns a copy of f with n more of the given nuclide.
func (f Formula) AddIsotope(key IsotopeKey, n int) (Formula, error) {
	if err := key.Validate(); err != nil {
		return Formula{}, err
	}
	if n < 0 {
		return Formula{}, errors.Wrapf(ErrBadCount, "%s: %d", key, n)
	}
	sum := int(f.nuclides[key]) + n
	if sum > MaxCount {
		return Formula{}, errors.Wrapf(ErrOverflow, "%s: %d", key, sum)
	}
	out := f.clone(1)
	if sum > 0 {
		out.nuclides[key] = uint16(sum)
	}
	return out, nil
}

// RemoveIsotope returns a copy of f without the given nuclide.
func (f Formula) RemoveIsotope(key IsotopeKey) Formula {
	if _, exists := f.nuclides[key]; !exists {
		return f
	}
	out := f.clone(0)
	delete(out.nuclides, key)
	return out
}

// WithCharge returns a copy of f with the given charge.
func (f Formula) WithCharge(charge int) (Formula, error) {
	if charge < MinCharge || charge > MaxCharge {
		return Formula{}, errors.Wrapf(ErrOverflow, "charge %d", charge)
	}
	out := f
	out.charge = int16(charge)
	return out, nil
}

// AverageMass returns the mass of f (Da) using standard atomic weights for common isotopes and exact masses for explicit ones.
func (f Formula) AverageMass(reg Registry) (float64, error) {
	return f.sumMasses(reg, func(iso *Isotope) float64 {
		if iso.IsCommon && iso.Element.AtomicWeight > 0 {
			return iso.Element.AtomicWeight
		}
		return iso.Mass
	})
}

// MonoisotopicMass returns the sum of the exact nuclide masses of f (Da).
func (f Formula) MonoisotopicMass(reg Registry) (float64, error) {
	return f.sumMasses(reg, func(iso *Isotope) float64 {
		return iso.Mass
	})
}

func (f Formula) sumMasses(reg Registry, massOf func(iso *Isotope) float64) (float64, error) {
	total := 0.0
	for key, n := range f.nuclides {
		iso, ok := reg.IsotopeFromKey(key)
		if !ok {
			return 0, errors.Wrap(ErrUnknownIsotope, string(key))
		}
		total += float64(n) * massOf(iso)
	}
	return total, nil
}

// String returns Hill notation when an engine has registered FormatFormula, otherwise a raw key listing.
func (f Formula) String() string {
	if FormatFormula != nil {
		return FormatFormula(f)
	}
	if f.IsEmpty() {
		return EmptyToken
	}
	var b strings.Builder
	for i, key := range f.Isotopes() {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%s:%d", key, f.nuclides[key])
	}
	if f.charge != 0 {
		fmt.Fprintf(&b, " %+d", f.charge)
	}
	return b.String()
}

func (f Formula) clone(extra int) Formula {
	out := Formula{
		nuclides: make(map[IsotopeKey]uint16, len(f.nuclides)+extra),
		charge:   f.charge,
	}
	for key, n := range f.nuclides {
		out.nuclides[key] = n
	}
	return out
}
