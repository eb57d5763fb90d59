package libchem

import (
	"strings"
	"unicode"

	"github.com/fine-structures/chem.SDK/chem"
	"github.com/pkg/errors"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// parseState is the state of one bracket level of a formula parse.
//
// Each bracket level is parsed by its own parseState over a sub-range of the shared rune slice, so positions in
// errors are always offsets into the whole (normalized) input.
type parseState struct {
	reg    chem.Registry
	format chem.NumberFormat
	input  string
	text   []rune
	pos    int
	end    int

	counts    map[chem.IsotopeKey]int
	charge    int
	hasCharge bool

	ambient      int           // current multiplier, 0 if none
	hasAmbient   bool          // ambient multiplier was explicitly given (possibly 0)
	pending      *chem.Isotope // last isotope read, not yet given a count
	massOverride int           // explicit mass number for the next symbol, 0 if none
	massAt       int           // position of the pending mass override
}

func isSeparator(r rune) bool {
	return r == '.' || r == '·' || r == '•'
}

func isOpener(r rune) bool {
	return r == '(' || r == '['
}

func isCloser(r rune) bool {
	return r == ')' || r == ']' || r == '}'
}

func closerOf(r rune) rune {
	if r == '[' {
		return ']'
	}
	return ')'
}

// isSkippable reports if r is ignored between tokens.
func isSkippable(r rune) bool {
	return unicode.IsSpace(r) || unicode.IsPunct(r)
}

// Parse reads formula text into a Formula.
//
// Text is normalized (NFC, full-width forms narrowed) before parsing.  "<empty>" in any letter case reads as the
// empty formula.  On failure the returned error is a *chem.ParseError.
func (eng *Engine) Parse(text string) (chem.Formula, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return chem.Formula{}, &chem.ParseError{Input: text, Err: chem.ErrBlankFormula}
	}
	if strings.EqualFold(trimmed, chem.EmptyToken) {
		return chem.EmptyFormula, nil
	}

	normalized := width.Narrow.String(norm.NFC.String(trimmed))
	runes := []rune(normalized)
	st := &parseState{
		reg:    eng.Registry,
		format: eng.Format,
		input:  normalized,
		text:   runes,
		end:    len(runes),
		counts: make(map[chem.IsotopeKey]int),
	}
	if err := st.run(); err != nil {
		return chem.Formula{}, err
	}

	f, err := chem.NewFormula(st.counts, st.charge)
	if err != nil {
		return chem.Formula{}, st.fail(st.end, err)
	}
	return f, nil
}

// TryParse is Parse that reports only success or failure.
func (eng *Engine) TryParse(text string) (chem.Formula, bool) {
	f, err := eng.Parse(text)
	return f, err == nil
}

// MustParse is Parse that panics on error.
func (eng *Engine) MustParse(text string) chem.Formula {
	f, err := eng.Parse(text)
	if err != nil {
		panic(err)
	}
	return f
}

func (st *parseState) fail(pos int, err error) error {
	return &chem.ParseError{
		Input: st.input,
		Pos:   pos,
		Err:   err,
	}
}

// sub returns a fresh state over text[start:end].
func (st *parseState) sub(start, end int) *parseState {
	return &parseState{
		reg:    st.reg,
		format: st.format,
		input:  st.input,
		text:   st.text,
		pos:    start,
		end:    end,
		counts: make(map[chem.IsotopeKey]int),
	}
}

func (st *parseState) multiplier() int {
	if st.hasAmbient {
		return st.ambient
	}
	return 1
}

func (st *parseState) add(pos int, key chem.IsotopeKey, n int64) error {
	total := int64(st.counts[key]) + n
	if n > chem.MaxCount || total > chem.MaxCount {
		return st.fail(pos, errors.Wrapf(chem.ErrOverflow, "%s count %d", key, total))
	}
	st.counts[key] = int(total)
	return nil
}

func (st *parseState) setCharge(pos int, charge int64) error {
	if charge < chem.MinCharge || charge > chem.MaxCharge {
		return st.fail(pos, errors.Wrapf(chem.ErrOverflow, "charge %d", charge))
	}
	st.charge = int(charge)
	st.hasCharge = true
	return nil
}

func (st *parseState) setMassOverride(pos, massNumber int) error {
	if st.massOverride != 0 {
		return st.fail(pos, chem.ErrDoubleMassNumber)
	}
	if massNumber < chem.MinMassNumber || massNumber > chem.MaxMassNumber {
		return st.fail(pos, errors.Wrapf(chem.ErrBadMassNumber, "%d", massNumber))
	}
	st.massOverride = massNumber
	st.massAt = pos
	return nil
}

// flush commits the pending isotope with an implicit count of 1 (times the ambient multiplier).
func (st *parseState) flush(pos int) error {
	if st.pending == nil {
		return nil
	}
	iso := st.pending
	st.pending = nil
	return st.add(pos, iso.Key(), int64(st.multiplier()))
}

func (st *parseState) run() error {
	groupStart := true

	for st.pos < st.end {
		pos := st.pos

		// A group may open with a multiplier ("5H2O"); anything else read here is re-read below.
		if groupStart {
			groupStart = false
			num, n, err := st.scanNumber(pos)
			if err != nil {
				return err
			}
			if n > 0 && num.plane == chem.Normal && !num.isCharge {
				st.ambient, st.hasAmbient = num.value, true
				st.pos += n
				continue
			}
		}

		r := st.text[pos]
		switch {
		case isSeparator(r):
			if err := st.flush(pos); err != nil {
				return err
			}
			if st.massOverride != 0 {
				return st.fail(st.massAt, chem.ErrMisplacedNumber)
			}
			st.ambient, st.hasAmbient = 0, false
			groupStart = true
			st.pos++

		case isOpener(r):
			if err := st.flush(pos); err != nil {
				return err
			}
			if err := st.readGroup(); err != nil {
				return err
			}

		case r == '{':
			if err := st.flush(pos); err != nil {
				return err
			}
			if err := st.readMassAnnotation(); err != nil {
				return err
			}

		case isCloser(r):
			return st.fail(pos, errors.Wrapf(chem.ErrUnmatchedBracket, "%q", r))

		default:
			num, n, err := st.scanNumber(pos)
			if err != nil {
				return err
			}
			if n > 0 {
				if err := st.applyNumber(pos, num); err != nil {
					return err
				}
				st.pos += n
				continue
			}

			el, sym, n := st.scanSymbol(pos)
			if n > 0 {
				if el == nil {
					return st.fail(pos, errors.Wrapf(chem.ErrUnresolvedSymbol, "%q", sym))
				}
				if err := st.applySymbol(pos, el); err != nil {
					return err
				}
				st.pos += n
				continue
			}

			if !isSkippable(r) {
				return st.fail(pos, errors.Wrapf(chem.ErrUnexpectedChar, "%q", r))
			}
			if err := st.flush(pos); err != nil {
				return err
			}
			st.pos++
		}
	}

	if err := st.flush(st.end); err != nil {
		return err
	}
	if st.massOverride != 0 {
		return st.fail(st.massAt, chem.ErrMisplacedNumber)
	}
	return nil
}

// applyNumber interprets a number read outside a group start.
func (st *parseState) applyNumber(pos int, num number) error {
	if st.massOverride != 0 {
		return st.fail(pos, chem.ErrMisplacedNumber)
	}

	if num.plane == chem.Superscript || num.isCharge {
		// A superscript trailing an isotope, or any signed number, is a charge; otherwise it is a mass number prefix.
		if st.pending != nil || num.isCharge {
			if err := st.flush(pos); err != nil {
				return err
			}
			return st.setCharge(pos, int64(num.value))
		}
		return st.setMassOverride(pos, num.value)
	}

	if st.pending != nil {
		iso := st.pending
		st.pending = nil
		return st.add(pos, iso.Key(), int64(num.value)*int64(st.multiplier()))
	}

	st.ambient, st.hasAmbient = num.value, true
	return nil
}

func (st *parseState) applySymbol(pos int, el *chem.Element) error {
	if err := st.flush(pos); err != nil {
		return err
	}

	var iso *chem.Isotope
	var ok bool
	if st.massOverride != 0 {
		iso, ok = st.reg.IsotopeByMass(el, st.massOverride)
		if !ok {
			return st.fail(st.massAt, errors.Wrapf(chem.ErrUnknownIsotope, "%s-%d", el.Symbol, st.massOverride))
		}
		st.massOverride = 0
	} else {
		iso, ok = st.reg.CommonIsotope(el)
		if !ok {
			return st.fail(pos, errors.Wrapf(chem.ErrUnknownIsotope, "%s", el.Symbol))
		}
	}
	st.pending = iso
	return nil
}

// findCloser returns the position of the bracket closing the one at openAt, or -1.
func (st *parseState) findCloser(openAt int) int {
	open := st.text[openAt]
	closer := closerOf(open)
	depth := 0
	for i := openAt; i < st.end; i++ {
		switch st.text[i] {
		case open:
			depth++
		case closer:
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// readGroup parses a bracketed group and its optional trailing multiplier or charge, merging it into st.
func (st *parseState) readGroup() error {
	if st.massOverride != 0 {
		return st.fail(st.massAt, chem.ErrMisplacedNumber)
	}

	openAt := st.pos
	closeAt := st.findCloser(openAt)
	if closeAt < 0 {
		return st.fail(openAt, errors.Wrapf(chem.ErrUnmatchedBracket, "%q", st.text[openAt]))
	}

	group := st.sub(openAt+1, closeAt)
	if err := group.run(); err != nil {
		return err
	}
	st.pos = closeAt + 1

	mult := int64(1)
	trailingCharge, hasTrailingCharge := int64(0), false

	num, n, err := st.scanNumber(st.pos)
	if err != nil {
		return err
	}
	if n > 0 {
		switch {
		case num.isCharge:
			trailingCharge, hasTrailingCharge = int64(num.value), true
			st.pos += n
		case num.plane == chem.Superscript:
			// "(SO4)²" is a charge but "(OH)¹⁸O" is a mass number for what follows.
			next := st.pos + n
			if next >= st.end || !unicode.IsUpper(st.text[next]) {
				trailingCharge, hasTrailingCharge = int64(num.value), true
				st.pos += n
			}
		default:
			mult = int64(num.value)
			st.pos += n
		}
	}

	// Any factor above MaxCount overflows a non-zero count, so clamping keeps count*factor within int64.
	factor := mult * int64(st.multiplier())
	if factor > chem.MaxCount {
		factor = chem.MaxCount + 1
	}
	for key, count := range group.counts {
		if err := st.add(openAt, key, int64(count)*factor); err != nil {
			return err
		}
	}
	if group.hasCharge {
		if err := st.setCharge(openAt, int64(group.charge)*mult); err != nil {
			return err
		}
	}
	if hasTrailingCharge {
		if err := st.setCharge(closeAt+1, trailingCharge); err != nil {
			return err
		}
	}
	return nil
}

// readMassAnnotation reads "{N}" as a mass number for the next element symbol.
func (st *parseState) readMassAnnotation() error {
	openAt := st.pos
	st.pos++

	num, n, err := st.scanNumber(st.pos)
	if err != nil {
		return err
	}
	if n == 0 {
		return st.fail(st.pos, errors.Wrap(chem.ErrBadMassNumber, "expected a mass number"))
	}
	st.pos += n
	if st.pos >= st.end || st.text[st.pos] != '}' {
		return st.fail(openAt, errors.Wrap(chem.ErrUnmatchedBracket, "'{'"))
	}
	st.pos++

	value := num.value
	if value < 0 {
		value = -value
	}
	return st.setMassOverride(openAt, value)
}
