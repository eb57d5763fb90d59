package chem

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

const (

	// MaxCount is the largest number of a single nuclide a Formula can hold.
	MaxCount = 1<<16 - 1

	// MinCharge and MaxCharge bound the net ionic charge of a Formula.
	MinCharge = -1 << 15
	MaxCharge = 1<<15 - 1

	// MinMassNumber and MaxMassNumber bound an explicit isotope mass number annotation.
	MinMassNumber = 1
	MaxMassNumber = 300

	// EmptyToken is the canonical text form of the empty Formula.
	EmptyToken = "<empty>"
)

// IsotopeKey uniquely identifies a nuclide: "<Symbol>-<MassNumber>", e.g. "C-12".
//
// A Formula keys its counts by IsotopeKey so that it never holds registry object identity.
type IsotopeKey string

// FormIsotopeKey returns the canonical key for the given element symbol and mass number.
func FormIsotopeKey(symbol string, massNumber int) IsotopeKey {
	return IsotopeKey(symbol + "-" + strconv.Itoa(massNumber))
}

// Symbol returns the element symbol part of this key.
func (key IsotopeKey) Symbol() string {
	i := strings.LastIndexByte(string(key), '-')
	if i < 0 {
		return string(key)
	}
	return string(key[:i])
}

// MassNumber returns the mass number part of this key (0 if malformed).
func (key IsotopeKey) MassNumber() int {
	i := strings.LastIndexByte(string(key), '-')
	if i < 0 {
		return 0
	}
	massNumber, err := strconv.Atoi(string(key[i+1:]))
	if err != nil {
		return 0
	}
	return massNumber
}

// Validate checks that this key is of canonical form.
func (key IsotopeKey) Validate() error {
	sym := key.Symbol()
	if !IsSymbol(sym) {
		return errors.Wrapf(ErrBadIsotopeKey, "%q: bad element symbol", string(key))
	}
	mass := key.MassNumber()
	if mass < MinMassNumber || mass > MaxMassNumber {
		return errors.Wrapf(ErrBadIsotopeKey, "%q: bad mass number", string(key))
	}
	if FormIsotopeKey(sym, mass) != key {
		return errors.Wrapf(ErrBadIsotopeKey, "%q: not canonical", string(key))
	}
	return nil
}

// IsSymbol reports if sym has the shape of an element symbol: one uppercase ASCII letter, optionally followed by a lowercase one.
func IsSymbol(sym string) bool {
	switch len(sym) {
	case 1:
		return sym[0] >= 'A' && sym[0] <= 'Z'
	case 2:
		return sym[0] >= 'A' && sym[0] <= 'Z' && sym[1] >= 'a' && sym[1] <= 'z'
	}
	return false
}

// Element is a chemical element as known to a Registry.
type Element struct {
	Symbol       string
	Name         string
	AtomicNumber int
	AtomicWeight float64 // standard atomic weight (Da); 0 if the element has no stable composition
}

// Isotope is a specific nuclide of an Element.
type Isotope struct {
	Element    *Element
	MassNumber int
	Mass       float64 // exact mass (Da)
	Abundance  float64 // natural abundance, 0..1
	IsCommon   bool    // set for the isotope used when no mass number is given
}

// Key returns the canonical IsotopeKey of this isotope.
func (iso *Isotope) Key() IsotopeKey {
	return FormIsotopeKey(iso.Element.Symbol, iso.MassNumber)
}

// String renders the element symbol, prefixed with a superscript mass number unless this is the element's common isotope (e.g. "C", "¹³C").
func (iso *Isotope) String() string {
	if iso.IsCommon {
		return iso.Element.Symbol
	}
	var buf [16]byte
	out := AppendDigits(buf[:0], iso.MassNumber, Superscript)
	return string(out) + iso.Element.Symbol
}

// Registry resolves element symbols and mass numbers into concrete isotope records.
//
// All lookups are pure, synchronous and safe for concurrent use.
type Registry interface {

	// ResolveSymbol looks up a case-sensitive 1-2 letter element symbol.
	ResolveSymbol(sym string) (*Element, bool)

	// CommonIsotope returns the nuclide used when no mass number is given.
	CommonIsotope(el *Element) (*Isotope, bool)

	// IsotopeByMass returns the isotope of el with the given mass number.
	IsotopeByMass(el *Element, massNumber int) (*Isotope, bool)

	// IsotopeFromKey decodes a canonical IsotopeKey.
	IsotopeFromKey(key IsotopeKey) (*Isotope, bool)
}

// NumberFormat holds the locale glyphs recognized for signs and used when rendering signed exponents.
type NumberFormat struct {
	PositiveSign     rune
	NegativeSign     rune
	DecimalSeparator rune
}

// DefaultNumberFormat is the invariant format: '+', '-', '.'
var DefaultNumberFormat = NumberFormat{
	PositiveSign:     '+',
	NegativeSign:     '-',
	DecimalSeparator: '.',
}

// FormatFormula is a forward declared renderer, allowing Formula.String() to emit Hill notation without chem importing the engine.
var FormatFormula func(f Formula) string

// CatalogOpts specifies params for opening a Catalog
type CatalogOpts struct {
	DbPathName string // omit for in-memory db
	ReadOnly   bool   // open in read-only mode
}

// CatalogEntry is a named Formula stored in a Catalog.
type CatalogEntry struct {
	Name    string
	Formula Formula
}

// OnFormulaHit is a callback channel used to return entries meeting a set of selection criteria.
type OnFormulaHit chan<- CatalogEntry

// CatalogContext is a container for open / active Catalog instances.
type CatalogContext interface {

	// Attaches the given Catalog to this context.
	AttachCatalog(cat Catalog)

	// Detaches the given Catalog from this context.
	DetachCatalog(cat Catalog)

	// Closes all open catalogs then closes.
	Close()

	// Signals when Close() completed and all open Catalogs have been closed
	Done() <-chan struct{}

	// Returns the first error returned while closing an attached Catalog.
	Err() error
}

type FormulaAdder interface {

	// Tries to add the given formula under the given name.
	// If true is returned, name did not exist and was added.
	TryAddFormula(name string, f Formula) (bool, error)
}

// Catalog wraps a database of named formulas, indexed by Hill notation.
type Catalog interface {
	FormulaAdder

	// Returns true if this catalog was opened for read-only access.
	IsReadOnly() bool

	// NumFormulas returns the number of named formulas in this catalog.
	NumFormulas() int64

	// Get returns the formula stored under the given name.
	Get(name string) (Formula, error)

	// Remove deletes the named formula.
	Remove(name string) error

	// NamesByHill returns the names of all formulas having the given Hill notation.
	NamesByHill(hill string) ([]string, error)

	// Select pushes each entry that meets the selection criteria to onHit.
	Select(sel FormulaSelector, onHit OnFormulaHit)

	Close() error
}

// FormulaSelector is an operator that either selects a given Formula or not.
type FormulaSelector struct {
	MinAtoms int     // lower bound on AtomCount()
	MaxAtoms int     // upper bound on AtomCount(); 0 denotes no bound
	Contains Formula // nuclides that must be present (at least these counts)
	Charge   *int16  // if set, the charge to match
}

// DefaultFormulaSelector selects every formula.
var DefaultFormulaSelector = FormulaSelector{}

// Selects is a convenience function used to see if a Formula is selected according to a FormulaSelector.
func (sel *FormulaSelector) Selects(f Formula) bool {
	atoms := f.AtomCount()
	if atoms < sel.MinAtoms || (sel.MaxAtoms > 0 && atoms > sel.MaxAtoms) {
		return false
	}
	if sel.Charge != nil && *sel.Charge != f.Charge() {
		return false
	}
	return f.Contains(sel.Contains)
}

// PrintOpts specifies what is printed for each formula of a FormulaStream
type PrintOpts struct {
	Label  string   // Prefix label
	Counts bool     // if set, prints each nuclide count
	Masses Registry // if set, average and monoisotopic masses are printed using this registry
}

// DefaultPrintOpts{}
var DefaultPrintOpts = PrintOpts{}
