package libchem_test

import (
	"testing"

	"github.com/fine-structures/chem.SDK/chem"
	"github.com/fine-structures/chem.SDK/libchem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHill(t *testing.T) {
	tests := []struct {
		text string
		hill string
	}{
		{"H2O", "H₂O"},
		{"C2H5OH", "C₂H₆O"},
		{"OHC", "CHO"},
		{"HOC", "CHO"},
		{"NaCl", "ClNa"},
		{"HCl", "ClH"},
		{"SO4-2", "O₄S²⁻"},
		{"Fe+3", "Fe³⁺"},
		{"Na+", "Na⁺"},
		{"NH4+", "H₄N⁺"},
		{"C6H12O6", "C₆H₁₂O₆"},
		{"CH3COOH", "C₂H₄O₂"},
		{"CCl4", "CCl₄"},
		{"[Cu(NH3)4]SO4", "CuH₁₂N₄O₄S"},
		{"{13}CH4", "¹³CH₄"},
		{"CH3{13}CH3", "¹³CCH₆"},
		{"{2}H2O", "²H₂O"},
		{"H{2}HO", "²HHO"},
		{"H{18}O", "H{18}O"},
		{"{18}OH", "H{18}O"},
		{"Na{37}Cl", "³⁷ClNa"},
		{"<empty>", "<empty>"},
		{"+", "⁺"},
		{"()-2", "²⁻"},
	}
	for _, tt := range tests {
		f, err := libchem.Parse(tt.text)
		require.NoError(t, err, tt.text)
		assert.Equal(t, tt.hill, libchem.Hill(f), tt.text)
		assert.Equal(t, tt.hill, f.String(), tt.text)
	}
}

func TestHillOrderIndependent(t *testing.T) {
	a := chem.MustNewFormula(map[chem.IsotopeKey]int{"O-16": 1, "H-1": 4, "C-12": 1}, 0)
	b := chem.MustNewFormula(map[chem.IsotopeKey]int{"C-12": 1, "O-16": 1, "H-1": 4}, 0)
	assert.Equal(t, "CH₄O", libchem.Hill(a))
	assert.Equal(t, libchem.Hill(a), libchem.Hill(b))

	// carbon block, then hydrogen block, then the rest alphabetically
	f := libchem.MustParse("ZnBrHCN{13}C")
	assert.Equal(t, "¹³CCHBrNZn", libchem.Hill(f))
}

func TestRoundTrip(t *testing.T) {
	inputs := []string{
		"H2O", "{2}H2O", "CH3{13}CH3", "{13}C{13}C", "H{2}H", "O{18}O", "H{18}O{18}O",
		"{17}O{18}OO", "C{13}CH{2}H{3}H", "Na{37}Cl", "{37}ClCl", "K{37}Cl",
		"SO4-2", "Fe+3", "Na+", "Cl-", "OH-", "NH4+", "+", "-", "()-12",
		"CuSO4.5H2O", "[Cu(NH3)4]SO4", "(CH3)3COH", "C60", "H65535",
		"<empty>", "U{235}U", "{98}Tc", "{99}Tc", "H{3}HO+",
	}
	for _, text := range inputs {
		f, err := libchem.Parse(text)
		require.NoError(t, err, text)

		hill := libchem.Hill(f)
		back, err := libchem.Parse(hill)
		require.NoError(t, err, "%s => %s", text, hill)
		assert.True(t, back.Equal(f), "%s => %s => %v", text, hill, back.Counts())
		assert.Equal(t, hill, libchem.Hill(back))
	}
}

func TestSuperscriptNumber(t *testing.T) {
	eng := libchem.Default()
	assert.Equal(t, "⁻¹.⁵", eng.SuperscriptNumber("-1.5"))
	assert.Equal(t, "⁺¹²", eng.SuperscriptNumber("+12"))
	assert.Equal(t, "⁺².⁵", eng.FormatExponent(2.5, 1))
	assert.Equal(t, "⁻³", eng.FormatExponent(-3, 0))
	assert.Equal(t, "⁰", eng.FormatExponent(0, 0))

	comma := libchem.NewEngine(nil, chem.NumberFormat{PositiveSign: '+', NegativeSign: '-', DecimalSeparator: ','})
	assert.Equal(t, "⁻¹,⁵", comma.SuperscriptNumber("-1.5"))
	assert.Equal(t, "⁻¹,⁵", comma.SuperscriptNumber("-1,5"))
	assert.Equal(t, "⁺⁰,²⁵", comma.FormatExponent(0.25, 2))
}
