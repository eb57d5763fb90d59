// Package pychem registers the "_chem" gpython module, exposing formula parsing, Hill rendering, formula arithmetic
// and formula catalogs to python scripts.
package pychem

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/fine-structures/chem.SDK/chem"
	"github.com/fine-structures/chem.SDK/libchem"
	"github.com/fine-structures/chem.SDK/libchem/catalog"
	"github.com/go-python/gpython/py"
	"github.com/pkg/errors"
)

var (
	LIB_VERSION = "v1.2023.1"
)

var (
	pyFormulaType       = py.NewType("Formula", "an immutable chemical formula: nuclide counts plus a net charge")
	pyFormulaStreamType = py.NewType("FormulaStream", "chem.FormulaStream")
	pyCatalogType       = py.NewType("Catalog", "chem.Catalog")
	pyWorkspaceType     = py.NewType("Workspace", "collects active session resources and catalogs")
)

var gEngine atomic.Pointer[libchem.Engine]

// SetEngine sets the Engine used to parse and render formulas in scripts.  nil restores libchem.Default().
func SetEngine(eng *libchem.Engine) {
	gEngine.Store(eng)
}

func engine() *libchem.Engine {
	if eng := gEngine.Load(); eng != nil {
		return eng
	}
	return libchem.Default()
}

func chemError(err error) error {
	switch {
	case errors.Is(err, chem.ErrCatalogReadOnly):
		return py.ExceptionNewf(py.PermissionError, "%v", err)
	case errors.Is(err, chem.ErrFormulaNotFound):
		return py.ExceptionNewf(py.KeyError, "%v", err)
	case errors.Is(err, chem.ErrCatalogClosed):
		return py.ExceptionNewf(py.ValueError, "%v", err)
	case errors.Is(err, chem.ErrOverflow):
		return py.ExceptionNewf(py.OverflowError, "%v", err)
	}
	return py.ExceptionNewf(py.ValueError, "%v", err)
}

type pyFormula struct {
	chem.Formula
}

func (f pyFormula) Type() *py.Type {
	return pyFormulaType
}

func (f pyFormula) M__str__() (py.Object, error) {
	return py.String(engine().Hill(f.Formula)), nil
}

func (f pyFormula) M__repr__() (py.Object, error) {
	return py.String(fmt.Sprintf("Formula('%s')", engine().Hill(f.Formula))), nil
}

// toFormula accepts a Formula or formula text.
func toFormula(obj py.Object) (chem.Formula, error) {
	switch v := obj.(type) {
	case pyFormula:
		return v.Formula, nil
	case py.String:
		f, err := engine().Parse(string(v))
		if err != nil {
			return chem.Formula{}, chemError(err)
		}
		return f, nil
	}
	return chem.Formula{}, py.ExceptionNewf(py.TypeError, "expected Formula or str (got %v)", obj.Type().Name)
}

func wrapFormula(f chem.Formula, err error) (py.Object, error) {
	if err != nil {
		return nil, chemError(err)
	}
	return pyFormula{f}, nil
}

func (f pyFormula) M__add__(other py.Object) (py.Object, error) {
	b, err := toFormula(other)
	if err != nil {
		return py.NotImplemented, nil
	}
	return wrapFormula(chem.Add(f.Formula, b))
}

func (f pyFormula) M__radd__(other py.Object) (py.Object, error) {
	a, err := toFormula(other)
	if err != nil {
		return py.NotImplemented, nil
	}
	return wrapFormula(chem.Add(a, f.Formula))
}

func (f pyFormula) M__sub__(other py.Object) (py.Object, error) {
	b, err := toFormula(other)
	if err != nil {
		return py.NotImplemented, nil
	}
	return wrapFormula(chem.Subtract(f.Formula, b))
}

func (f pyFormula) M__mul__(other py.Object) (py.Object, error) {
	switch n := other.(type) {
	case py.Int:
		return wrapFormula(chem.MultiplyInt(f.Formula, int(n)))
	case py.Float:
		return wrapFormula(chem.MultiplyFloat(f.Formula, float64(n)))
	}
	return py.NotImplemented, nil
}

func (f pyFormula) M__rmul__(other py.Object) (py.Object, error) {
	return f.M__mul__(other)
}

func (f pyFormula) M__truediv__(other py.Object) (py.Object, error) {
	switch n := other.(type) {
	case py.Int:
		return wrapFormula(chem.DivideInt(f.Formula, int(n)))
	case py.Float:
		return wrapFormula(chem.DivideFloat(f.Formula, float64(n)))
	}
	return py.NotImplemented, nil
}

func (f pyFormula) M__eq__(other py.Object) (py.Object, error) {
	b, ok := other.(pyFormula)
	if !ok {
		return py.NotImplemented, nil
	}
	return py.NewBool(f.Equal(b.Formula)), nil
}

func (f pyFormula) M__ne__(other py.Object) (py.Object, error) {
	b, ok := other.(pyFormula)
	if !ok {
		return py.NotImplemented, nil
	}
	return py.NewBool(!f.Equal(b.Formula)), nil
}

func (f pyFormula) M__len__() (py.Object, error) {
	return py.Int(f.Len()), nil
}

func py_Parse(module py.Object, args py.Tuple) (py.Object, error) {
	var text string
	if err := py.LoadTuple(args, []interface{}{&text}); err != nil {
		return nil, err
	}
	return wrapFormula(engine().Parse(text))
}

func py_Eval(module py.Object, args py.Tuple) (py.Object, error) {
	var expr string
	if err := py.LoadTuple(args, []interface{}{&expr}); err != nil {
		return nil, err
	}
	return wrapFormula(engine().Eval(expr))
}

func py_Hill(module py.Object, args py.Tuple) (py.Object, error) {
	if len(args) != 1 {
		return nil, py.ExceptionNewf(py.TypeError, "Hill() takes exactly 1 argument (%d given)", len(args))
	}
	f, err := toFormula(args[0])
	if err != nil {
		return nil, err
	}
	return py.String(engine().Hill(f)), nil
}

func py_FormatExponent(module py.Object, args py.Tuple) (py.Object, error) {
	if len(args) != 2 {
		return nil, py.ExceptionNewf(py.TypeError, "FormatExponent() takes exactly 2 arguments (%d given)", len(args))
	}
	var x float64
	switch v := args[0].(type) {
	case py.Float:
		x = float64(v)
	case py.Int:
		x = float64(v)
	default:
		return nil, py.ExceptionNewf(py.TypeError, "expected a number (got %v)", args[0].Type().Name)
	}
	prec, err := py.GetInt(args[1])
	if err != nil {
		return nil, err
	}
	return py.String(engine().FormatExponent(x, int(prec))), nil
}

func py_Formula_Charge(self py.Object, args py.Tuple) (py.Object, error) {
	f := self.(pyFormula)
	return py.Int(f.Charge()), nil
}

func py_Formula_AtomCount(self py.Object, args py.Tuple) (py.Object, error) {
	f := self.(pyFormula)
	return py.Int(f.AtomCount()), nil
}

// Count(symbol [, mass_number]) returns the count of a nuclide; with no mass number, the element's common isotope.
func py_Formula_Count(self py.Object, args py.Tuple) (py.Object, error) {
	f := self.(pyFormula)

	var sym string
	var massNumber int32
	if err := py.LoadTuple(args, []interface{}{&sym, &massNumber}); err != nil {
		return nil, err
	}

	eng := engine()
	el, ok := eng.Registry.ResolveSymbol(sym)
	if !ok {
		return nil, py.ExceptionNewf(py.ValueError, "%v: %q", chem.ErrUnresolvedSymbol, sym)
	}

	var iso *chem.Isotope
	if massNumber == 0 {
		iso, ok = eng.Registry.CommonIsotope(el)
	} else {
		iso, ok = eng.Registry.IsotopeByMass(el, int(massNumber))
	}
	if !ok {
		return nil, py.ExceptionNewf(py.ValueError, "%v: %s-%d", chem.ErrUnknownIsotope, sym, massNumber)
	}
	return py.Int(f.Count(iso.Key())), nil
}

func py_Formula_Elements(self py.Object, args py.Tuple) (py.Object, error) {
	f := self.(pyFormula)
	syms := f.Elements()
	out := make(py.Tuple, len(syms))
	for i, sym := range syms {
		out[i] = py.String(sym)
	}
	return out, nil
}

// Counts returns a tuple of (isotope key, count) pairs in key order.
func py_Formula_Counts(self py.Object, args py.Tuple) (py.Object, error) {
	f := self.(pyFormula)
	keys := f.Isotopes()
	out := make(py.Tuple, len(keys))
	for i, key := range keys {
		out[i] = py.Tuple{py.String(key), py.Int(f.Count(key))}
	}
	return out, nil
}

func py_Formula_AverageMass(self py.Object, args py.Tuple) (py.Object, error) {
	f := self.(pyFormula)
	mass, err := f.AverageMass(engine().Registry)
	if err != nil {
		return nil, chemError(err)
	}
	return py.Float(mass), nil
}

func py_Formula_MonoisotopicMass(self py.Object, args py.Tuple) (py.Object, error) {
	f := self.(pyFormula)
	mass, err := f.MonoisotopicMass(engine().Registry)
	if err != nil {
		return nil, chemError(err)
	}
	return py.Float(mass), nil
}

func py_Formula_Contains(self py.Object, args py.Tuple) (py.Object, error) {
	f := self.(pyFormula)
	if len(args) != 1 {
		return nil, py.ExceptionNewf(py.TypeError, "Contains() takes exactly 1 argument (%d given)", len(args))
	}
	other, err := toFormula(args[0])
	if err != nil {
		return nil, err
	}
	return py.NewBool(f.Contains(other)), nil
}

func py_Formula_WithCharge(self py.Object, args py.Tuple) (py.Object, error) {
	f := self.(pyFormula)
	var charge int32
	if err := py.LoadTuple(args, []interface{}{&charge}); err != nil {
		return nil, err
	}
	return wrapFormula(f.WithCharge(int(charge)))
}

func py_Formula_Stream(self py.Object, args py.Tuple) (py.Object, error) {
	f := self.(pyFormula)
	var name string
	if err := py.LoadTuple(args, []interface{}{&name}); err != nil {
		return nil, err
	}
	if name == "" {
		name = engine().Hill(f.Formula)
	}
	stream := chem.StreamFormulas(chem.CatalogEntry{Name: name, Formula: f.Formula})
	return wrapFormulaStream(stream), nil
}

const (
	READ_ONLY = 0x01

	kWorkspaceAttr = "_Workspace"
)

type Workspace struct {
	CatalogCtx chem.CatalogContext
}

func (ws *Workspace) Close() {
	ws.CatalogCtx.Close()
	<-ws.CatalogCtx.Done()
}

func (ws *Workspace) Type() *py.Type {
	return pyWorkspaceType
}

func py_GetWorkspace(module py.Object, args py.Tuple) (py.Object, error) {
	wsObj, _ := py.GetAttrString(module, kWorkspaceAttr)
	if wsObj == nil {
		wsObj = &Workspace{
			CatalogCtx: chem.NewCatalogContext(),
		}
		py.SetAttrString(module, kWorkspaceAttr, wsObj)
	}
	return wsObj, nil
}

func py_Workspace_CatalogExists(self py.Object, args py.Tuple) (py.Object, error) {
	_ = self.(*Workspace)

	var pathname string
	if err := py.LoadTuple(args, []interface{}{&pathname}); err != nil {
		return nil, err
	}
	_, err := os.Stat(pathname)
	return py.NewBool(!os.IsNotExist(err)), nil
}

// OpenCatalog([pathname [, flags]]) opens a catalog; an empty pathname opens an in-memory catalog.
func py_Workspace_OpenCatalog(self py.Object, args py.Tuple) (py.Object, error) {
	ws := self.(*Workspace)

	var pathname string
	var flags int32
	if len(args) > 0 {
		if err := py.LoadTuple(args, []interface{}{&pathname, &flags}); err != nil {
			return nil, err
		}
	}

	opts := chem.CatalogOpts{
		ReadOnly:   (flags & READ_ONLY) != 0,
		DbPathName: pathname,
	}

	cat, err := catalog.OpenCatalog(ws.CatalogCtx, engine(), opts)
	if err != nil {
		return nil, py.ExceptionNewf(py.RuntimeError, "%v", err)
	}
	return pyCatalog{cat}, nil
}

type pyCatalog struct {
	chem.Catalog
}

func (cat pyCatalog) Type() *py.Type {
	return pyCatalogType
}

func (cat pyCatalog) M__len__() (py.Object, error) {
	return py.Int(cat.NumFormulas()), nil
}

func py_Catalog_Close(self py.Object, args py.Tuple) (py.Object, error) {
	cat := self.(pyCatalog)
	if cat.Catalog != nil {
		cat.Close()
	}
	return py.None, nil
}

// Add(name, formula) returns True if name was not present and was added.
func py_Catalog_Add(self py.Object, args py.Tuple) (py.Object, error) {
	cat := self.(pyCatalog)
	if len(args) != 2 {
		return nil, py.ExceptionNewf(py.TypeError, "Add() takes exactly 2 arguments (%d given)", len(args))
	}
	name, ok := args[0].(py.String)
	if !ok {
		return nil, py.ExceptionNewf(py.TypeError, "expected str name (got %v)", args[0].Type().Name)
	}
	f, err := toFormula(args[1])
	if err != nil {
		return nil, err
	}
	added, err := cat.TryAddFormula(string(name), f)
	if err != nil {
		return nil, chemError(err)
	}
	return py.NewBool(added), nil
}

func py_Catalog_Get(self py.Object, args py.Tuple) (py.Object, error) {
	cat := self.(pyCatalog)
	var name string
	if err := py.LoadTuple(args, []interface{}{&name}); err != nil {
		return nil, err
	}
	return wrapFormula(cat.Get(name))
}

func py_Catalog_Remove(self py.Object, args py.Tuple) (py.Object, error) {
	cat := self.(pyCatalog)
	var name string
	if err := py.LoadTuple(args, []interface{}{&name}); err != nil {
		return nil, err
	}
	if err := cat.Remove(name); err != nil {
		return nil, chemError(err)
	}
	return py.None, nil
}

// Names(formula) lists the names of all formulas equal to the given one.
func py_Catalog_Names(self py.Object, args py.Tuple) (py.Object, error) {
	cat := self.(pyCatalog)
	if len(args) != 1 {
		return nil, py.ExceptionNewf(py.TypeError, "Names() takes exactly 1 argument (%d given)", len(args))
	}
	f, err := toFormula(args[0])
	if err != nil {
		return nil, err
	}
	names, err := cat.NamesByHill(engine().Hill(f))
	if err != nil {
		return nil, chemError(err)
	}
	out := make(py.Tuple, len(names))
	for i, name := range names {
		out[i] = py.String(name)
	}
	return out, nil
}

func py_Catalog_NumFormulas(self py.Object, args py.Tuple) (py.Object, error) {
	cat := self.(pyCatalog)
	return py.Int(cat.NumFormulas()), nil
}

func py_Catalog_Select(self py.Object, args py.Tuple, kwargs py.StringDict) (py.Object, error) {
	cat := self.(pyCatalog)
	sel, err := getFormulaSelector(kwargs)
	if err != nil {
		return nil, err
	}
	next := chem.SelectFromCatalog(cat, sel)
	return wrapFormulaStream(next), nil
}

type formulaStream struct {
	*chem.FormulaStream
}

func (stream formulaStream) Type() *py.Type {
	return pyFormulaStreamType
}

func wrapFormulaStream(stream *chem.FormulaStream) py.Object {
	return formulaStream{stream}
}

func py_FormulaStream_Go(self py.Object, args py.Tuple) (py.Object, error) {
	stream := self.(formulaStream)
	count := stream.PullAll()
	return py.Int(count), nil
}

// Collect drains the stream, returning a tuple of (name, Formula) pairs.
func py_FormulaStream_Collect(self py.Object, args py.Tuple) (py.Object, error) {
	stream := self.(formulaStream)
	entries := stream.Collect()
	out := make(py.Tuple, len(entries))
	for i, entry := range entries {
		out[i] = py.Tuple{py.String(entry.Name), pyFormula{entry.Formula}}
	}
	return out, nil
}

var gOutCount = int32(0)

type echoToWriter struct {
	stdout *os.File
	to     io.WriteCloser
}

func (echo *echoToWriter) Write(buf []byte) (int, error) {
	if echo.to == nil {
		return echo.stdout.Write(buf)
	}
	return echo.to.Write(buf)
}

func (echo *echoToWriter) Close() error {
	if echo.to != nil {
		return echo.to.Close()
	}
	return nil
}

// Print([label], counts=False, masses=False, file="") prints each formula passing through the stream.
func py_FormulaStream_Print(self py.Object, args py.Tuple, kwargs py.StringDict) (py.Object, error) {
	stream := self.(formulaStream)
	opts := chem.DefaultPrintOpts

	py.LoadTuple(args, []interface{}{&opts.Label})
	if opts.Label == "" {
		if label, ok := kwargs["label"].(py.String); ok {
			opts.Label = string(label)
		}
	}
	if opts.Label == "" {
		opts.Label = fmt.Sprintf("out[%d]", atomic.AddInt32(&gOutCount, 1))
	}

	var err error
	if opts.Counts, err = boolKwarg(kwargs, "counts"); err != nil {
		return nil, err
	}
	withMasses, err := boolKwarg(kwargs, "masses")
	if err != nil {
		return nil, err
	}
	if withMasses {
		opts.Masses = engine().Registry
	}

	writer := &echoToWriter{
		stdout: os.Stdout,
	}
	if pathname, ok := kwargs["file"].(py.String); ok && len(pathname) > 0 {
		os.MkdirAll(filepath.Dir(string(pathname)), 0700)

		file, err := os.OpenFile(string(pathname), os.O_TRUNC|os.O_WRONLY|os.O_CREATE, 0600)
		if err != nil {
			return nil, py.ExceptionNewf(py.FileNotFoundError, "%v", err)
		}
		writer.to = file
	}

	next := stream.Print(writer, opts)
	if writer.to == nil {
		return wrapFormulaStream(next), nil
	}

	// close the output file once the stream drains
	closer := chem.NewFormulaStream()
	go func() {
		for entry := range next.Outlet {
			closer.Outlet <- entry
		}
		writer.Close()
		closer.Close()
	}()
	return wrapFormulaStream(closer), nil
}

func py_FormulaStream_AddTo(self py.Object, args py.Tuple) (py.Object, error) {
	stream := self.(formulaStream)
	if len(args) != 1 {
		return nil, py.ExceptionNewf(py.TypeError, "AddTo() takes exactly 1 argument (%d given)", len(args))
	}
	cat, ok := args[0].(pyCatalog)
	if !ok {
		return nil, py.ExceptionNewf(py.TypeError, "expected Catalog object (got %v)", args[0].Type().Name)
	}
	if cat.IsReadOnly() {
		return nil, py.ExceptionNewf(py.PermissionError, "%v", chem.ErrCatalogReadOnly)
	}
	next := stream.AddTo(cat)
	return wrapFormulaStream(next), nil
}

func py_FormulaStream_Select(self py.Object, args py.Tuple, kwargs py.StringDict) (py.Object, error) {
	stream := self.(formulaStream)
	sel, err := getFormulaSelector(kwargs)
	if err != nil {
		return nil, err
	}
	next := stream.SelectFromStream(sel)
	return wrapFormulaStream(next), nil
}

func boolKwarg(kwargs py.StringDict, key string) (bool, error) {
	switch v := kwargs[key].(type) {
	case nil, py.NoneType:
		return false, nil
	case py.Bool:
		return bool(v), nil
	case py.Int:
		return v != 0, nil
	}
	return false, py.ExceptionNewf(py.TypeError, "%s: expected bool", key)
}

func intKwarg(kwargs py.StringDict, key string) (int, bool, error) {
	obj, ok := kwargs[key]
	if !ok || obj == py.None {
		return 0, false, nil
	}
	n, err := py.GetInt(obj)
	if err != nil {
		return 0, false, err
	}
	return int(n), true, nil
}

// getFormulaSelector reads min_atoms, max_atoms, contains and charge keyword args.
func getFormulaSelector(kwargs py.StringDict) (chem.FormulaSelector, error) {
	sel := chem.DefaultFormulaSelector

	var err error
	if sel.MinAtoms, _, err = intKwarg(kwargs, "min_atoms"); err != nil {
		return sel, err
	}
	if sel.MaxAtoms, _, err = intKwarg(kwargs, "max_atoms"); err != nil {
		return sel, err
	}
	if sel.MaxAtoms > 0 && sel.MaxAtoms < sel.MinAtoms {
		return sel, py.ExceptionNewf(py.ValueError, "%v", errors.New("max_atoms is less than min_atoms"))
	}

	charge, hasCharge, err := intKwarg(kwargs, "charge")
	if err != nil {
		return sel, err
	}
	if hasCharge {
		q := int16(charge)
		sel.Charge = &q
	}

	if obj, ok := kwargs["contains"]; ok && obj != py.None {
		if sel.Contains, err = toFormula(obj); err != nil {
			return sel, err
		}
	}
	return sel, nil
}

func init() {

	/////////////////////////////////
	// Formula
	{
		pyFormulaType.Dict["Charge"] = py.MustNewMethod("Charge", py_Formula_Charge, 0, "net charge")
		pyFormulaType.Dict["AtomCount"] = py.MustNewMethod("AtomCount", py_Formula_AtomCount, 0, "total number of atoms")
		pyFormulaType.Dict["Count"] = py.MustNewMethod("Count", py_Formula_Count, 0, "Count(symbol [, mass_number]) returns the count of a nuclide")
		pyFormulaType.Dict["Counts"] = py.MustNewMethod("Counts", py_Formula_Counts, 0, "")
		pyFormulaType.Dict["Elements"] = py.MustNewMethod("Elements", py_Formula_Elements, 0, "")
		pyFormulaType.Dict["AverageMass"] = py.MustNewMethod("AverageMass", py_Formula_AverageMass, 0, "")
		pyFormulaType.Dict["MonoisotopicMass"] = py.MustNewMethod("MonoisotopicMass", py_Formula_MonoisotopicMass, 0, "")
		pyFormulaType.Dict["Contains"] = py.MustNewMethod("Contains", py_Formula_Contains, 0, "")
		pyFormulaType.Dict["WithCharge"] = py.MustNewMethod("WithCharge", py_Formula_WithCharge, 0, "")
		pyFormulaType.Dict["Stream"] = py.MustNewMethod("Stream", py_Formula_Stream, 0, "")
	}

	/////////////////////////////////
	// Catalog
	{
		pyCatalogType.Dict["Add"] = py.MustNewMethod("Add", py_Catalog_Add, 0, "")
		pyCatalogType.Dict["Get"] = py.MustNewMethod("Get", py_Catalog_Get, 0, "")
		pyCatalogType.Dict["Remove"] = py.MustNewMethod("Remove", py_Catalog_Remove, 0, "")
		pyCatalogType.Dict["Names"] = py.MustNewMethod("Names", py_Catalog_Names, 0, "")
		pyCatalogType.Dict["NumFormulas"] = py.MustNewMethod("NumFormulas", py_Catalog_NumFormulas, 0, "")
		pyCatalogType.Dict["Select"] = py.MustNewMethod("Select", py_Catalog_Select, 0, "")
		pyCatalogType.Dict["Close"] = py.MustNewMethod("Close", py_Catalog_Close, 0, "")
	}

	/////////////////////////////////
	// Workspace
	{
		pyWorkspaceType.Dict["OpenCatalog"] = py.MustNewMethod("OpenCatalog", py_Workspace_OpenCatalog, 0, "")
		pyWorkspaceType.Dict["CatalogExists"] = py.MustNewMethod("CatalogExists", py_Workspace_CatalogExists, 0, "")
	}

	/////////////////////////////////
	// FormulaStream
	{
		pyFormulaStreamType.Dict["Go"] = py.MustNewMethod("Go", py_FormulaStream_Go, 0, "counts the number of formulas output from the FormulaStream")
		pyFormulaStreamType.Dict["Collect"] = py.MustNewMethod("Collect", py_FormulaStream_Collect, 0, "")
		pyFormulaStreamType.Dict["Print"] = py.MustNewMethod("Print", py_FormulaStream_Print, 0, "prints each formula from the FormulaStream")
		pyFormulaStreamType.Dict["AddTo"] = py.MustNewMethod("AddTo", py_FormulaStream_AddTo, 0, "")
		pyFormulaStreamType.Dict["Select"] = py.MustNewMethod("Select", py_FormulaStream_Select, 0, "")
	}

	{
		methods := []*py.Method{
			py.MustNewMethod("Parse", py_Parse, 0, "Parse(text) returns the Formula for the given formula text"),
			py.MustNewMethod("Eval", py_Eval, 0, "Eval(expr) evaluates a formula expression such as '2 H2 + O2'"),
			py.MustNewMethod("Hill", py_Hill, 0, "Hill(formula) renders a Formula (or formula text) in Hill notation"),
			py.MustNewMethod("FormatExponent", py_FormatExponent, 0, ""),
			py.MustNewMethod("GetWorkspace", py_GetWorkspace, 0, ""),
		}

		globals := py.StringDict{
			"LIB_VERSION": py.String(LIB_VERSION),
			"READ_ONLY":   py.Int(READ_ONLY),
			"MAX_COUNT":   py.Int(chem.MaxCount),
		}

		py.RegisterModule(&py.ModuleImpl{
			Info: py.ModuleInfo{
				Name: "_chem",
				Doc:  "chemical formula gpython module",
			},
			Methods: methods,
			Globals: globals,
			OnContextClosed: func(m *py.Module) {
				wsObj, _ := py.GetAttrString(m, kWorkspaceAttr)
				if wsObj != nil {
					wsObj.(*Workspace).Close()
				}
			},
		})
	}
}
