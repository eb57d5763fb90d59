package libchem

import (
	"math/big"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
	"github.com/fine-structures/chem.SDK/chem"
	"github.com/pkg/errors"
)

// FormulaExpr is a sum or difference of scaled formulas, e.g. "2 CH4 + 4 O2 - CO2 * 2".
//
// '+' and '-' between terms must be set off by whitespace, otherwise they read as a charge of the preceding formula.
type FormulaExpr struct {
	Head *ExprTerm   `parser:"@@"`
	Tail []*ExprTail `parser:"@@*"`
}

type ExprTail struct {
	Op   string    `parser:"@(\"+\" | \"-\")"`
	Term *ExprTerm `parser:"@@"`
}

type ExprTerm struct {
	Coef    string       `parser:"(@Number \"*\"?)?"`
	Formula string       `parser:"@Formula"`
	Scales  []*ExprScale `parser:"@@*"`
}

type ExprScale struct {
	Op string `parser:"@(\"*\" | \"/\")"`
	By string `parser:"@Number"`
}

var sFormulaLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Formula", Pattern: `[A-Z(\[{<⁰¹²³⁴⁵⁶⁷⁸⁹⁺⁻][^\s*/]*`},
	{Name: "Number", Pattern: `\d+(?:\.\d+)?(?:/\d+)?`},
	{Name: "Op", Pattern: `[-+*/]`},
	{Name: "whitespace", Pattern: `\s+`},
})

var sParseFormulaExpr = participle.MustBuild[FormulaExpr](
	participle.Lexer(sFormulaLexer),
	participle.Elide("whitespace"),
)

// ParseFormulaExpr parses expr into its syntax tree without evaluating it.
func ParseFormulaExpr(expr string) (*FormulaExpr, error) {
	ast, err := sParseFormulaExpr.ParseString("", expr)
	if err != nil {
		return nil, errors.Wrap(chem.ErrBadExpr, err.Error())
	}
	return ast, nil
}

// Eval parses and evaluates a formula expression.
//
// Coefficients and scale factors may be integers, decimals or ratios ("3/2").  Each term is scaled using
// chem.Multiply / chem.Divide, so fractional results are rounded per nuclide.
func (eng *Engine) Eval(expr string) (chem.Formula, error) {
	ast, err := ParseFormulaExpr(expr)
	if err != nil {
		return chem.Formula{}, err
	}

	acc, err := eng.evalTerm(ast.Head)
	if err != nil {
		return chem.Formula{}, err
	}

	for _, tail := range ast.Tail {
		term, err := eng.evalTerm(tail.Term)
		if err != nil {
			return chem.Formula{}, err
		}
		switch tail.Op {
		case "+":
			acc, err = chem.Add(acc, term)
		case "-":
			acc, err = chem.Subtract(acc, term)
		}
		if err != nil {
			return chem.Formula{}, err
		}
	}

	return acc, nil
}

func (eng *Engine) evalTerm(term *ExprTerm) (chem.Formula, error) {
	f, err := eng.Parse(term.Formula)
	if err != nil {
		return chem.Formula{}, err
	}

	if term.Coef != "" {
		coef, err := parseScalar(term.Coef)
		if err != nil {
			return chem.Formula{}, err
		}
		if f, err = chem.Multiply(f, coef); err != nil {
			return chem.Formula{}, err
		}
	}

	for _, sc := range term.Scales {
		by, err := parseScalar(sc.By)
		if err != nil {
			return chem.Formula{}, err
		}
		switch sc.Op {
		case "*":
			f, err = chem.Multiply(f, by)
		case "/":
			f, err = chem.Divide(f, by)
		}
		if err != nil {
			return chem.Formula{}, err
		}
	}

	return f, nil
}

func parseScalar(s string) (*big.Rat, error) {
	r, ok := new(big.Rat).SetString(s)
	if !ok {
		return nil, errors.Wrapf(chem.ErrBadScalar, "%q", s)
	}
	return r, nil
}
