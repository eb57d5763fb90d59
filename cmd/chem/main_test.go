package main

import (
	"os"
	"path"
	"strings"
	"testing"

	"github.com/fine-structures/chem.SDK/chem"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultOpts() cliOpts {
	return cliOpts{
		Plus:    "+",
		Minus:   "-",
		Decimal: ".",
	}
}

func TestEvalExpr(t *testing.T) {
	opts := defaultOpts()
	eng, err := newEngine(opts)
	require.NoError(t, err)

	opts.Expr = "CH4 + 2 O2 - CO2"
	opts.Masses = true
	var out strings.Builder
	require.NoError(t, evalExpr(&out, eng, opts))
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "H₄O₂", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "average mass:"))

	opts.Expr = "H2O / 0"
	assert.True(t, errors.Is(evalExpr(&out, eng, opts), chem.ErrBadScalar))

	opts.Expr = "H2O"
	opts.Name = "water"
	assert.True(t, errors.Is(evalExpr(&out, eng, opts), chem.ErrBadCatalogParam))
}

func TestEvalExprCatalog(t *testing.T) {
	opts := defaultOpts()
	eng, err := newEngine(opts)
	require.NoError(t, err)

	opts.Catalog = path.Join(t.TempDir(), "formulas")
	opts.Expr = "C2H5OH"
	opts.Name = "ethanol"
	var out strings.Builder
	require.NoError(t, evalExpr(&out, eng, opts))

	opts.Expr = "CH3OCH3"
	opts.Name = "dimethyl ether"
	require.NoError(t, evalExpr(&out, eng, opts))

	// lookup only, read-only
	out.Reset()
	opts.Expr = "C2H6O"
	opts.Name = ""
	require.NoError(t, evalExpr(&out, eng, opts))
	assert.Equal(t, "C₂H₆O\n  dimethyl ether\n  ethanol\n", out.String())
}

func TestNewEngine(t *testing.T) {
	opts := defaultOpts()
	opts.Minus = "−"
	eng, err := newEngine(opts)
	require.NoError(t, err)
	f, err := eng.Parse("SO4−2")
	require.NoError(t, err)
	assert.Equal(t, int16(-2), f.Charge())

	opts = defaultOpts()
	opts.Plus = "++"
	_, err = newEngine(opts)
	assert.Error(t, err)

	opts = defaultOpts()
	opts.Decimal = ""
	_, err = newEngine(opts)
	assert.Error(t, err)

	table := "elements:\n" +
		"  - {symbol: H, name: Hydrogen, z: 1, weight: 1.008, isotopes: [{a: 1, mass: 1.00782503, abundance: 0.999885, common: true}]}\n"
	regPath := path.Join(t.TempDir(), "tiny.yaml")
	require.NoError(t, os.WriteFile(regPath, []byte(table), 0600))

	opts = defaultOpts()
	opts.Registry = regPath
	eng, err = newEngine(opts)
	require.NoError(t, err)
	_, err = eng.Parse("H2")
	assert.NoError(t, err)
	_, err = eng.Parse("H2O")
	assert.True(t, errors.Is(err, chem.ErrUnresolvedSymbol))

	opts.Registry = path.Join(t.TempDir(), "missing.yaml")
	_, err = newEngine(opts)
	assert.Error(t, err)
}
