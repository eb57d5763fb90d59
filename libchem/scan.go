package libchem

import (
	"math"

	"github.com/fine-structures/chem.SDK/chem"
	"github.com/pkg/errors"
)

// maxScanValue bounds a scanned run of digits so that products of two scanned values always fit in an int64.
const maxScanValue = math.MaxInt32

// number is the result of a speculative number scan.
type number struct {
	value    int        // signed value
	plane    chem.Plane // plane of the digits (of the sign if no digits were read)
	isCharge bool       // a sign was consumed
}

// scanNumber reads a maximal run of same-plane digits starting at pos, with an optional leading sign
// (the NumberFormat's ASCII glyphs or ⁺/⁻) or, only after superscript digits with no leading sign, a trailing ⁺/⁻.
//
// A sign with no digits reads as a magnitude of 1.  Nothing is committed: the caller advances by the returned
// rune count (0 when nothing was read) or ignores the scan.
func (st *parseState) scanNumber(pos int) (num number, consumed int, err error) {
	text := st.text
	i := pos
	sign := 0

	if i < st.end {
		switch r := text[i]; r {
		case st.format.PositiveSign:
			sign, num.plane = 1, chem.Normal
		case st.format.NegativeSign:
			sign, num.plane = -1, chem.Normal
		case chem.SuperscriptPlus:
			sign, num.plane = 1, chem.Superscript
		case chem.SuperscriptMinus:
			sign, num.plane = -1, chem.Superscript
		}
		if sign != 0 {
			i++
		}
	}

	digits := 0
	value := 0
	for ; i < st.end; i++ {
		d, plane := chem.ClassifyDigit(text[i])
		if plane == chem.NotADigit || (digits > 0 && plane != num.plane) {
			break
		}
		num.plane = plane
		value = 10*value + d
		if value > maxScanValue {
			return number{}, 0, st.fail(pos, errors.Wrap(chem.ErrOverflow, "number too large"))
		}
		digits++
	}

	if digits == 0 {
		if sign == 0 {
			return number{}, 0, nil
		}
		value = 1
	} else if sign == 0 && num.plane == chem.Superscript && i < st.end {
		switch text[i] {
		case chem.SuperscriptPlus:
			sign = 1
			i++
		case chem.SuperscriptMinus:
			sign = -1
			i++
		}
	}

	num.isCharge = sign != 0
	if sign < 0 {
		value = -value
	}
	num.value = value
	return num, i - pos, nil
}

// scanSymbol reads an uppercase letter and an optional lowercase letter at pos and resolves it as an element symbol.
//
// The returned rune count is non-zero whenever a symbol shape was read, even if it did not resolve (el == nil).
func (st *parseState) scanSymbol(pos int) (el *chem.Element, sym string, consumed int) {
	text := st.text
	if pos >= st.end || text[pos] < 'A' || text[pos] > 'Z' {
		return nil, "", 0
	}
	consumed = 1
	if pos+1 < st.end && text[pos+1] >= 'a' && text[pos+1] <= 'z' {
		consumed = 2
	}
	sym = string(text[pos : pos+consumed])
	el, _ = st.reg.ResolveSymbol(sym)
	return el, sym, consumed
}
