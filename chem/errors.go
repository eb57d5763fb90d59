package chem

import (
	"fmt"

	"github.com/pkg/errors"
)

// Errors
var (
	ErrBadFormula        = errors.New("bad formula")
	ErrBlankFormula      = errors.New("formula text is blank")
	ErrUnresolvedSymbol  = errors.New("unresolved element symbol")
	ErrUnknownIsotope    = errors.New("unknown isotope")
	ErrUnmatchedBracket  = errors.New("unmatched bracket")
	ErrBadMassNumber     = errors.New("mass number out of range")
	ErrDoubleMassNumber  = errors.New("mass number already pending")
	ErrMisplacedNumber   = errors.New("mass number must be followed by an element symbol")
	ErrUnexpectedChar    = errors.New("unexpected character")
	ErrOverflow          = errors.New("count or charge overflow")
	ErrBadCount          = errors.New("negative nuclide count")
	ErrBadScalar         = errors.New("bad scale factor")
	ErrBadIsotopeKey     = errors.New("bad isotope key")
	ErrBadExpr           = errors.New("bad formula expression")
	ErrBadCatalogParam   = errors.New("bad catalog param")
	ErrCatalogReadOnly   = errors.New("catalog is in read-only mode")
	ErrCatalogClosed     = errors.New("catalog is closed")
	ErrFormulaNotFound   = errors.New("formula not found")
	ErrBadCatalogVersion = errors.New("catalog version is incompatible")
)

// ParseError reports where and why formula text was rejected.
//
// errors.Is(err, ErrBadFormula) holds for every ParseError, and the underlying cause is reachable through Unwrap().
type ParseError struct {
	Input string
	Pos   int // rune offset into Input
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("bad formula %q at position %d: %v", e.Input, e.Pos, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Cause supports errors.Cause()
func (e *ParseError) Cause() error {
	return e.Err
}

func (e *ParseError) Is(target error) bool {
	return target == ErrBadFormula
}
