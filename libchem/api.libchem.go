// Package libchem is the chemical formula engine: it parses formula text into a chem.Formula, renders a
// chem.Formula in Hill notation, and evaluates formula expressions.
package libchem

import (
	"sync"

	"github.com/fine-structures/chem.SDK/chem"
	"github.com/fine-structures/chem.SDK/libchem/registry"
)

// Engine binds a Registry and a NumberFormat.  An Engine holds no parse state and is safe for concurrent use.
type Engine struct {
	Registry chem.Registry
	Format   chem.NumberFormat
}

// NewEngine returns an Engine using the given registry (the periodic table if nil) and number format.
//
// A format with no sign glyphs falls back to chem.DefaultNumberFormat.
func NewEngine(reg chem.Registry, format chem.NumberFormat) *Engine {
	if reg == nil {
		reg = registry.Periodic()
	}
	if format.PositiveSign == 0 || format.NegativeSign == 0 {
		format.PositiveSign = chem.DefaultNumberFormat.PositiveSign
		format.NegativeSign = chem.DefaultNumberFormat.NegativeSign
	}
	if format.DecimalSeparator == 0 {
		format.DecimalSeparator = chem.DefaultNumberFormat.DecimalSeparator
	}
	return &Engine{
		Registry: reg,
		Format:   format,
	}
}

var (
	defaultOnce   sync.Once
	defaultEngine *Engine
)

// Default returns the Engine over the periodic table and the invariant number format.
func Default() *Engine {
	defaultOnce.Do(func() {
		defaultEngine = NewEngine(registry.Periodic(), chem.DefaultNumberFormat)
	})
	return defaultEngine
}

func init() {
	chem.FormatFormula = func(f chem.Formula) string {
		return Default().Hill(f)
	}
}

// Parse is Default().Parse()
func Parse(text string) (chem.Formula, error) {
	return Default().Parse(text)
}

// MustParse is Default().MustParse()
func MustParse(text string) chem.Formula {
	return Default().MustParse(text)
}

// Hill is Default().Hill()
func Hill(f chem.Formula) string {
	return Default().Hill(f)
}

// Eval is Default().Eval()
func Eval(expr string) (chem.Formula, error) {
	return Default().Eval(expr)
}
