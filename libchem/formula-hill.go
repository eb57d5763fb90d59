package libchem

import (
	"strconv"
	"strings"

	"github.com/emirpasic/gods/sets/treeset"
	"github.com/emirpasic/gods/utils"
	"github.com/fine-structures/chem.SDK/chem"
)

// hillComparator orders isotope keys by element symbol, then by descending mass number.
func hillComparator(a, b interface{}) int {
	ka := a.(chem.IsotopeKey)
	kb := b.(chem.IsotopeKey)
	if diff := utils.StringComparator(ka.Symbol(), kb.Symbol()); diff != 0 {
		return diff
	}
	return utils.IntComparator(kb.MassNumber(), ka.MassNumber())
}

// Hill renders f in Hill order: carbon first, then hydrogen (only when carbon is present), then all other elements
// alphabetically.  Isotopes of one element are listed heaviest first.  Counts above 1 are subscripted and the charge
// trails as a superscript ("C₂H₅O⁻", "SO₄²⁻").
//
// The output of Hill always parses back to an equal Formula.
func (eng *Engine) Hill(f chem.Formula) string {
	if f.IsEmpty() {
		return chem.EmptyToken
	}

	keys := treeset.NewWith(hillComparator)
	f.Each(func(key chem.IsotopeKey, _ int) {
		keys.Add(key)
	})

	ordered := make([]chem.IsotopeKey, 0, keys.Size())
	hasCarbon := false
	for _, v := range keys.Values() {
		if key := v.(chem.IsotopeKey); key.Symbol() == "C" {
			ordered = append(ordered, key)
			hasCarbon = true
		}
	}
	if hasCarbon {
		for _, v := range keys.Values() {
			if key := v.(chem.IsotopeKey); key.Symbol() == "H" {
				ordered = append(ordered, key)
			}
		}
	}
	for _, v := range keys.Values() {
		key := v.(chem.IsotopeKey)
		switch sym := key.Symbol(); {
		case sym == "C":
		case sym == "H" && hasCarbon:
		default:
			ordered = append(ordered, key)
		}
	}

	out := make([]byte, 0, 8*len(ordered)+8)
	bareTail := false // last entry ended in a symbol, so a superscript would read as its charge
	for _, key := range ordered {
		iso, known := eng.Registry.IsotopeFromKey(key)
		switch {
		case known && iso.IsCommon:
			out = append(out, iso.Element.Symbol...)
		case known && !bareTail:
			out = append(out, iso.String()...)
		default:
			out = append(out, '{')
			out = strconv.AppendInt(out, int64(key.MassNumber()), 10)
			out = append(out, '}')
			out = append(out, key.Symbol()...)
		}

		count := f.Count(key)
		bareTail = count == 1
		if count != 1 {
			out = chem.AppendDigits(out, count, chem.Subscript)
		}
	}

	out = chem.AppendSuperscriptCharge(out, int(f.Charge()))
	return string(out)
}

// SuperscriptNumber renders a decimal number string as a signed superscript exponent, e.g. "-1.5" => "⁻¹.⁵".
//
// Digits and signs map to their superscript glyphs and '.' maps to the engine's decimal separator.
// Any other rune is passed through.
func (eng *Engine) SuperscriptNumber(num string) string {
	var b strings.Builder
	b.Grow(2 * len(num))
	for _, r := range num {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(chem.DigitGlyph(int(r-'0'), chem.Superscript))
		case r == '+' || r == eng.Format.PositiveSign:
			b.WriteRune(chem.SuperscriptPlus)
		case r == '-' || r == eng.Format.NegativeSign:
			b.WriteRune(chem.SuperscriptMinus)
		case r == '.' || r == eng.Format.DecimalSeparator:
			b.WriteRune(eng.Format.DecimalSeparator)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// FormatExponent renders x with prec fractional digits as a superscript exponent (see SuperscriptNumber).
func (eng *Engine) FormatExponent(x float64, prec int) string {
	num := strconv.FormatFloat(x, 'f', prec, 64)
	if x > 0 {
		num = "+" + num
	}
	return eng.SuperscriptNumber(num)
}
