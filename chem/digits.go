package chem

import "unicode/utf8"

// Plane is the Unicode "plane" a decimal digit glyph lives in.
type Plane byte

const (
	NotADigit Plane = iota
	Normal
	Subscript
	Superscript
)

func (p Plane) String() string {
	switch p {
	case Normal:
		return "normal"
	case Subscript:
		return "subscript"
	case Superscript:
		return "superscript"
	}
	return "none"
}

var (
	subscriptDigits   = [10]rune{'₀', '₁', '₂', '₃', '₄', '₅', '₆', '₇', '₈', '₉'}
	superscriptDigits = [10]rune{'⁰', '¹', '²', '³', '⁴', '⁵', '⁶', '⁷', '⁸', '⁹'}
)

const (
	SubscriptPlus    = '₊'
	SubscriptMinus   = '₋'
	SuperscriptPlus  = '⁺'
	SuperscriptMinus = '⁻'
)

// digitInfo packs value (low nibble) and plane (high nibble)
type digitInfo byte

// digitTable maps every sub/superscript digit glyph; written once by init() and read-only thereafter.
var digitTable map[rune]digitInfo

func init() {
	digitTable = make(map[rune]digitInfo, 20)
	for i := 0; i < 10; i++ {
		digitTable[subscriptDigits[i]] = digitInfo(byte(Subscript)<<4 | byte(i))
		digitTable[superscriptDigits[i]] = digitInfo(byte(Superscript)<<4 | byte(i))
	}
}

// ClassifyDigit returns the value and plane of r, or NotADigit if r is not one of the 30 recognized digit glyphs.
func ClassifyDigit(r rune) (value int, plane Plane) {
	if r >= '0' && r <= '9' {
		return int(r - '0'), Normal
	}
	if r < 0x80 {
		return 0, NotADigit
	}
	info, ok := digitTable[r]
	if !ok {
		return 0, NotADigit
	}
	return int(info & 0x0F), Plane(info >> 4)
}

// DigitGlyph returns the glyph of the given digit value (0..9) in the given plane.
func DigitGlyph(value int, plane Plane) rune {
	if value < 0 || value > 9 {
		return 0
	}
	switch plane {
	case Subscript:
		return subscriptDigits[value]
	case Superscript:
		return superscriptDigits[value]
	}
	return rune('0' + value)
}

// SignGlyph returns the '+' or '-' glyph in the given plane.
func SignGlyph(negative bool, plane Plane) rune {
	switch plane {
	case Subscript:
		if negative {
			return SubscriptMinus
		}
		return SubscriptPlus
	case Superscript:
		if negative {
			return SuperscriptMinus
		}
		return SuperscriptPlus
	}
	if negative {
		return '-'
	}
	return '+'
}

// AppendDigits appends the decimal digits of |n| in the given plane.
func AppendDigits(dst []byte, n int, plane Plane) []byte {
	if n < 0 {
		n = -n
	}
	var scratch [20]rune
	i := len(scratch)
	for {
		i--
		scratch[i] = DigitGlyph(n%10, plane)
		n /= 10
		if n == 0 {
			break
		}
	}
	for _, r := range scratch[i:] {
		dst = utf8.AppendRune(dst, r)
	}
	return dst
}

// AppendSuperscriptCharge appends a charge as a trailing signed exponent: "²⁺", "³⁻", and "⁺" / "⁻" for a unit charge.
func AppendSuperscriptCharge(dst []byte, charge int) []byte {
	if charge == 0 {
		return dst
	}
	if charge != 1 && charge != -1 {
		dst = AppendDigits(dst, charge, Superscript)
	}
	return utf8.AppendRune(dst, SignGlyph(charge < 0, Superscript))
}
