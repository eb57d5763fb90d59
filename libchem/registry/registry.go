// Package registry provides the periodic table / isotope registry consulted by the formula engine.
//
// A Table is immutable once loaded and is safe for concurrent use.  Periodic() returns the process-wide default
// table, loaded once from the embedded periodic.yaml.
package registry

import (
	"bytes"
	_ "embed"
	"io"
	"sort"
	"sync"

	"github.com/emirpasic/gods/trees/redblacktree"
	"github.com/fine-structures/chem.SDK/chem"
	"github.com/pkg/errors"
	"github.com/plan-systems/klog"
	"gopkg.in/yaml.v3"
)

// Errors
var (
	ErrBadTable = errors.New("bad registry table")
)

//go:embed periodic.yaml
var periodicYAML []byte

type tableDef struct {
	Elements []elementDef `yaml:"elements"`
}

type elementDef struct {
	Symbol   string       `yaml:"symbol"`
	Name     string       `yaml:"name"`
	Z        int          `yaml:"z"`
	Weight   float64      `yaml:"weight"`
	Isotopes []isotopeDef `yaml:"isotopes"`
}

type isotopeDef struct {
	A         int     `yaml:"a"`
	Mass      float64 `yaml:"mass"`
	Abundance float64 `yaml:"abundance"`
	Common    bool    `yaml:"common"`
}

type elementEntry struct {
	elem   *chem.Element
	common *chem.Isotope
	byMass *redblacktree.Tree // mass number => *chem.Isotope
}

// Table is an immutable chem.Registry.
type Table struct {
	bySymbol    map[string]*elementEntry
	elements    []*chem.Element // by atomic number
	numIsotopes int
}

var (
	periodicOnce  sync.Once
	periodicTable *Table
)

// Periodic returns the default table (118 elements).
func Periodic() *Table {
	periodicOnce.Do(func() {
		tbl, err := Parse(periodicYAML)
		if err != nil {
			panic(err)
		}
		periodicTable = tbl
	})
	return periodicTable
}

// Load reads a YAML table in the format of periodic.yaml.
func Load(r io.Reader) (*Table, error) {
	var def tableDef
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&def); err != nil {
		return nil, errors.Wrap(ErrBadTable, err.Error())
	}
	return newTable(&def)
}

// Parse is Load for an in-memory YAML document.
func Parse(data []byte) (*Table, error) {
	return Load(bytes.NewReader(data))
}

func newTable(def *tableDef) (*Table, error) {
	tbl := &Table{
		bySymbol: make(map[string]*elementEntry, len(def.Elements)),
		elements: make([]*chem.Element, 0, len(def.Elements)),
	}

	for _, ed := range def.Elements {
		if !chem.IsSymbol(ed.Symbol) {
			return nil, errors.Wrapf(ErrBadTable, "bad element symbol %q", ed.Symbol)
		}
		if _, dupe := tbl.bySymbol[ed.Symbol]; dupe {
			return nil, errors.Wrapf(ErrBadTable, "element %q listed twice", ed.Symbol)
		}
		if len(ed.Isotopes) == 0 {
			return nil, errors.Wrapf(ErrBadTable, "element %q has no isotopes", ed.Symbol)
		}

		entry := &elementEntry{
			elem: &chem.Element{
				Symbol:       ed.Symbol,
				Name:         ed.Name,
				AtomicNumber: ed.Z,
				AtomicWeight: ed.Weight,
			},
			byMass: redblacktree.NewWithIntComparator(),
		}

		var mostAbundant *chem.Isotope
		for _, id := range ed.Isotopes {
			if id.A < chem.MinMassNumber || id.A > chem.MaxMassNumber || id.A < ed.Z {
				return nil, errors.Wrapf(ErrBadTable, "%s: bad mass number %d", ed.Symbol, id.A)
			}
			if _, dupe := entry.byMass.Get(id.A); dupe {
				return nil, errors.Wrapf(ErrBadTable, "%s: isotope %d listed twice", ed.Symbol, id.A)
			}
			iso := &chem.Isotope{
				Element:    entry.elem,
				MassNumber: id.A,
				Mass:       id.Mass,
				Abundance:  id.Abundance,
			}
			if id.Common {
				if entry.common != nil {
					return nil, errors.Wrapf(ErrBadTable, "%s: more than one common isotope", ed.Symbol)
				}
				entry.common = iso
			}
			if mostAbundant == nil || iso.Abundance > mostAbundant.Abundance {
				mostAbundant = iso
			}
			entry.byMass.Put(id.A, iso)
			tbl.numIsotopes++
		}
		if entry.common == nil {
			entry.common = mostAbundant
		}
		entry.common.IsCommon = true

		tbl.bySymbol[ed.Symbol] = entry
		tbl.elements = append(tbl.elements, entry.elem)
	}

	sort.SliceStable(tbl.elements, func(i, j int) bool {
		return tbl.elements[i].AtomicNumber < tbl.elements[j].AtomicNumber
	})

	klog.V(2).Infof("registry: loaded %d elements, %d isotopes", len(tbl.elements), tbl.numIsotopes)
	return tbl, nil
}

func (tbl *Table) ResolveSymbol(sym string) (*chem.Element, bool) {
	entry := tbl.bySymbol[sym]
	if entry == nil {
		return nil, false
	}
	return entry.elem, true
}

func (tbl *Table) CommonIsotope(el *chem.Element) (*chem.Isotope, bool) {
	if el == nil {
		return nil, false
	}
	entry := tbl.bySymbol[el.Symbol]
	if entry == nil {
		return nil, false
	}
	return entry.common, true
}

func (tbl *Table) IsotopeByMass(el *chem.Element, massNumber int) (*chem.Isotope, bool) {
	if el == nil {
		return nil, false
	}
	entry := tbl.bySymbol[el.Symbol]
	if entry == nil {
		return nil, false
	}
	iso, found := entry.byMass.Get(massNumber)
	if !found {
		return nil, false
	}
	return iso.(*chem.Isotope), true
}

func (tbl *Table) IsotopeFromKey(key chem.IsotopeKey) (*chem.Isotope, bool) {
	entry := tbl.bySymbol[key.Symbol()]
	if entry == nil {
		return nil, false
	}
	iso, found := entry.byMass.Get(key.MassNumber())
	if !found {
		return nil, false
	}
	return iso.(*chem.Isotope), true
}

// Elements returns all elements ordered by atomic number.
func (tbl *Table) Elements() []*chem.Element {
	return append([]*chem.Element(nil), tbl.elements...)
}

// Isotopes returns the isotopes of el ordered by mass number.
func (tbl *Table) Isotopes(el *chem.Element) []*chem.Isotope {
	entry := tbl.bySymbol[el.Symbol]
	if entry == nil {
		return nil
	}
	values := entry.byMass.Values()
	isos := make([]*chem.Isotope, len(values))
	for i, v := range values {
		isos[i] = v.(*chem.Isotope)
	}
	return isos
}

// NumIsotopes returns the total number of isotopes in this table.
func (tbl *Table) NumIsotopes() int {
	return tbl.numIsotopes
}
