package libchem_test

import (
	"testing"

	"github.com/fine-structures/chem.SDK/chem"
	"github.com/fine-structures/chem.SDK/libchem"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func checkEval(t *testing.T, expr string, hill string) {
	t.Helper()
	f, err := libchem.Eval(expr)
	require.NoError(t, err, expr)
	assert.Equal(t, hill, libchem.Hill(f), expr)
}

func TestEval(t *testing.T) {
	checkEval(t, "H2O", "H₂O")
	checkEval(t, "CH4 + 2 O2", "CH₄O₄")
	checkEval(t, "CH4 + 2*O2 - CO2", "H₄O₂")
	checkEval(t, "2 H2O - H2O", "H₂O")
	checkEval(t, "2H2O", "H₄O₂")
	checkEval(t, "H2O * 3 / 2", "H₃O₂")
	checkEval(t, "3/2 O2", "O₃")
	checkEval(t, "0.5 O2", "O")
	checkEval(t, "Na+ + Cl-", "ClNa")
	checkEval(t, "Na⁺ + OH⁻", "HNaO")
	checkEval(t, "H2O - H2O", "<empty>")
	checkEval(t, "C6H12O6 + 6 O2 - 6 CO2", "H₁₂O₆")
	checkEval(t, "<empty> + H2", "H₂")
}

func TestEvalErrors(t *testing.T) {
	tests := []struct {
		expr  string
		cause error
	}{
		{"", chem.ErrBadExpr},
		{"H2O +", chem.ErrBadExpr},
		{"* H2O", chem.ErrBadExpr},
		{"2", chem.ErrBadExpr},
		{"H2O / 0", chem.ErrBadScalar},
		{"0/0 H2O", chem.ErrBadScalar},
		{"Xx + H2O", chem.ErrBadFormula},
		{"H65535 + H", chem.ErrOverflow},
	}
	for _, tt := range tests {
		_, err := libchem.Eval(tt.expr)
		assert.True(t, errors.Is(err, tt.cause), "%q: %v", tt.expr, err)
	}
}

func TestParseFormulaExpr(t *testing.T) {
	ast, err := libchem.ParseFormulaExpr("2 * H2O / 3 - CO2")
	require.NoError(t, err)
	assert.Equal(t, "2", ast.Head.Coef)
	assert.Equal(t, "H2O", ast.Head.Formula)
	require.Len(t, ast.Head.Scales, 1)
	assert.Equal(t, "/", ast.Head.Scales[0].Op)
	assert.Equal(t, "3", ast.Head.Scales[0].By)
	require.Len(t, ast.Tail, 1)
	assert.Equal(t, "-", ast.Tail[0].Op)
	assert.Equal(t, "CO2", ast.Tail[0].Term.Formula)
}
