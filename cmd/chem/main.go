package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"unicode/utf8"

	"github.com/fine-structures/chem.SDK/chem"
	"github.com/fine-structures/chem.SDK/libchem"
	"github.com/fine-structures/chem.SDK/libchem/catalog"
	"github.com/fine-structures/chem.SDK/libchem/registry"
	"github.com/fine-structures/chem.SDK/pychem"
	"github.com/pkg/errors"
	"github.com/plan-systems/klog"
)

type cliOpts struct {
	Expr     string
	Registry string
	Catalog  string
	Name     string
	Masses   bool
	Plus     string
	Minus    string
	Decimal  string
}

func main() {
	var opts cliOpts

	klog.InitFlags(nil)
	flag.Set("logtostderr", "true")
	flag.Set("v", "1")
	klog.SetFormatter(&klog.FmtConstWidth{
		FileNameCharWidth: 16,
		UseColor:          true,
	})

	flag.StringVar(&opts.Expr, "expr", "", "formula expression to evaluate, e.g. \"CH4 + 2 O2\" (omit to run a script or the REPL)")
	flag.StringVar(&opts.Registry, "registry", "", "pathname of a registry yaml file (default: built-in periodic table)")
	flag.StringVar(&opts.Catalog, "catalog", "", "pathname of a formula catalog; lists the names of formulas equal to -expr")
	flag.StringVar(&opts.Name, "name", "", "adds the -expr result to -catalog under this name")
	flag.BoolVar(&opts.Masses, "masses", false, "prints average and monoisotopic masses")
	flag.StringVar(&opts.Plus, "plus", "+", "positive sign glyph")
	flag.StringVar(&opts.Minus, "minus", "-", "negative sign glyph")
	flag.StringVar(&opts.Decimal, "decimal", ".", "decimal separator glyph")
	flag.Parse()

	eng, err := newEngine(opts)
	if err != nil {
		klog.Fatal(err)
	}
	pychem.SetEngine(eng)

	if len(opts.Expr) > 0 {
		err = evalExpr(os.Stdout, eng, opts)
		klog.Flush()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	pathname := flag.Arg(0)
	go_gpython(pathname)

	klog.Flush()
}

func glyph(s string, flagName string) (rune, error) {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError || size != len(s) {
		return 0, errors.Errorf("-%s must be a single character (got %q)", flagName, s)
	}
	return r, nil
}

func newEngine(opts cliOpts) (*libchem.Engine, error) {
	var (
		format chem.NumberFormat
		err    error
	)
	if format.PositiveSign, err = glyph(opts.Plus, "plus"); err != nil {
		return nil, err
	}
	if format.NegativeSign, err = glyph(opts.Minus, "minus"); err != nil {
		return nil, err
	}
	if format.DecimalSeparator, err = glyph(opts.Decimal, "decimal"); err != nil {
		return nil, err
	}

	var reg chem.Registry
	if len(opts.Registry) > 0 {
		file, err := os.Open(opts.Registry)
		if err != nil {
			return nil, err
		}
		defer file.Close()

		tbl, err := registry.Load(file)
		if err != nil {
			return nil, errors.Wrapf(err, "loading %q", opts.Registry)
		}
		klog.V(1).Infof("loaded %d elements from %q", len(tbl.Elements()), opts.Registry)
		reg = tbl
	}

	return libchem.NewEngine(reg, format), nil
}

func evalExpr(out io.Writer, eng *libchem.Engine, opts cliOpts) error {
	f, err := eng.Eval(opts.Expr)
	if err != nil {
		return err
	}
	hill := eng.Hill(f)
	fmt.Fprintln(out, hill)

	if opts.Masses {
		avg, err := f.AverageMass(eng.Registry)
		if err != nil {
			return err
		}
		mono, err := f.MonoisotopicMass(eng.Registry)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "average mass:       %.4f\n", avg)
		fmt.Fprintf(out, "monoisotopic mass:  %.6f\n", mono)
	}

	if len(opts.Catalog) == 0 {
		if len(opts.Name) > 0 {
			return errors.Wrap(chem.ErrBadCatalogParam, "-name requires -catalog")
		}
		return nil
	}

	ctx := chem.NewCatalogContext()
	defer func() {
		ctx.Close()
		<-ctx.Done()
		if err := ctx.Err(); err != nil {
			klog.Warningf("closing %q: %v", opts.Catalog, err)
		}
	}()

	cat, err := catalog.OpenCatalog(ctx, eng, chem.CatalogOpts{
		DbPathName: opts.Catalog,
		ReadOnly:   len(opts.Name) == 0,
	})
	if err != nil {
		return err
	}

	if len(opts.Name) > 0 {
		added, err := cat.TryAddFormula(opts.Name, f)
		if err != nil {
			return err
		}
		if !added {
			klog.Warningf("%q is already in %q", opts.Name, opts.Catalog)
		}
	}

	names, err := cat.NamesByHill(hill)
	if err != nil {
		return err
	}
	for _, name := range names {
		fmt.Fprintf(out, "  %s\n", name)
	}
	return nil
}
