package chem

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyDigit(t *testing.T) {
	tests := []struct {
		r     rune
		value int
		plane Plane
	}{
		{'0', 0, Normal},
		{'7', 7, Normal},
		{'₀', 0, Subscript},
		{'₉', 9, Subscript},
		{'⁰', 0, Superscript},
		{'¹', 1, Superscript},
		{'²', 2, Superscript},
		{'³', 3, Superscript},
		{'⁴', 4, Superscript},
		{'⁹', 9, Superscript},
		{'a', -1, NotADigit},
		{'+', -1, NotADigit},
		{'⁺', -1, NotADigit},
		{'٣', -1, NotADigit},
	}
	for _, tt := range tests {
		value, plane := ClassifyDigit(tt.r)
		assert.Equal(t, tt.plane, plane, "%q", tt.r)
		if tt.plane != NotADigit {
			assert.Equal(t, tt.value, value, "%q", tt.r)
		}
	}
}

func TestDigitGlyphRoundTrip(t *testing.T) {
	for _, plane := range []Plane{Normal, Subscript, Superscript} {
		for d := 0; d < 10; d++ {
			value, got := ClassifyDigit(DigitGlyph(d, plane))
			require.Equal(t, plane, got)
			require.Equal(t, d, value)
		}
	}
}

func TestAppendDigits(t *testing.T) {
	assert.Equal(t, "₁₂", string(AppendDigits(nil, 12, Subscript)))
	assert.Equal(t, "¹³", string(AppendDigits(nil, -13, Superscript)))
	assert.Equal(t, "0", string(AppendDigits(nil, 0, Normal)))
	assert.Equal(t, "x65535", string(AppendDigits([]byte("x"), 65535, Normal)))
}

func TestAppendSuperscriptCharge(t *testing.T) {
	assert.Equal(t, "", string(AppendSuperscriptCharge(nil, 0)))
	assert.Equal(t, "⁺", string(AppendSuperscriptCharge(nil, 1)))
	assert.Equal(t, "⁻", string(AppendSuperscriptCharge(nil, -1)))
	assert.Equal(t, "²⁺", string(AppendSuperscriptCharge(nil, 2)))
	assert.Equal(t, "¹⁰⁻", string(AppendSuperscriptCharge(nil, -10)))
}
