package catalog

import (
	"runtime"
	"strings"
	"sync"

	"github.com/dgraph-io/badger/v3"
	"github.com/fine-structures/chem.SDK/chem"
	"github.com/fine-structures/chem.SDK/libchem"
	"github.com/gogo/protobuf/proto"
	"github.com/pkg/errors"
	"github.com/plan-systems/klog"
)

/***

Catalog database format:

	gCatalogStateKey                    => catalogState

	'n', NUL, <name>                    => formulaRecord
	...

	'h', NUL, <Hill notation>, NUL, <name>  (no value)
	...

The name table holds each formula, and the Hill table indexes names by formula so that the names of every
formula equal to a given one can be listed with a single prefix scan.

***/

// Errors
var (
	ErrUnmarshal = errors.New("unmarshal failed")
)

var (
	gCatalogStateKey = []byte{0x00, 0x00, 0x01}
	gNamePrefix      = []byte{'n', 0x00}
	gHillPrefix      = []byte{'h', 0x00}
)

// catalog is a badger db of named chem.Formulas
type catalog struct {
	ctx        chem.CatalogContext
	eng        *libchem.Engine
	readOnly   bool
	mu         sync.Mutex // guards state
	stateDirty bool
	state      catalogState
	db         *badger.DB
}

// OpenCatalog opens (or creates) a formula catalog and attaches it to ctx.
//
// If opts.DbPathName is empty, the catalog is held in memory.  eng renders the Hill index and may be nil for libchem.Default().
func OpenCatalog(ctx chem.CatalogContext, eng *libchem.Engine, opts chem.CatalogOpts) (chem.Catalog, error) {
	if eng == nil {
		eng = libchem.Default()
	}

	cat := &catalog{
		ctx:      ctx,
		eng:      eng,
		readOnly: opts.ReadOnly,
	}

	dbOpts := badger.DefaultOptions(opts.DbPathName)
	dbOpts.ReadOnly = opts.ReadOnly
	dbOpts.DetectConflicts = false
	dbOpts.Logger = badgerLogger{}

	// Badger for windows currently does not support read-only mode
	if runtime.GOOS == "windows" {
		dbOpts.ReadOnly = false
	}

	if len(opts.DbPathName) == 0 {
		if opts.ReadOnly {
			return nil, errors.Wrap(chem.ErrBadCatalogParam, "DbPathName must be specified for read-only catalog")
		}
		dbOpts.InMemory = true
	}

	var err error
	cat.db, err = badger.Open(dbOpts)
	if err != nil {
		return nil, err
	}

	// Once the db is open, the catalog ctx is blocked until the catalog closes
	ctx.AttachCatalog(cat)

	err = cat.loadState()
	if err == badger.ErrKeyNotFound {
		err = nil
		cat.stateDirty = !cat.readOnly
		cat.state.MajorVers = catalogMajorVers
		cat.state.MinorVers = catalogMinorVers
	}

	if err == nil && (cat.state.MajorVers != catalogMajorVers || cat.state.MinorVers != catalogMinorVers) {
		err = errors.Wrapf(chem.ErrBadCatalogVersion, "found v%d.%d", cat.state.MajorVers, cat.state.MinorVers)
	}

	if err != nil {
		cat.Close()
		return nil, err
	}

	klog.V(1).Infof("catalog: opened %q (%d formulas)", opts.DbPathName, cat.state.NumFormulas)
	return cat, nil
}

func (cat *catalog) loadState() error {
	return cat.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(gCatalogStateKey)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return proto.Unmarshal(val, &cat.state)
		})
	})
}

func (cat *catalog) flushState() error {
	cat.mu.Lock()
	defer cat.mu.Unlock()

	if !cat.stateDirty || cat.db == nil {
		return nil
	}
	err := cat.db.Update(func(txn *badger.Txn) error {
		stateBuf, err := proto.Marshal(&cat.state)
		if err != nil {
			return err
		}
		return txn.Set(gCatalogStateKey, stateBuf)
	})
	if err == nil {
		cat.stateDirty = false
	}
	return err
}

// Close flushes the catalog state and closes the db.  Closing an already closed catalog does nothing.
func (cat *catalog) Close() error {
	err := cat.flushState()

	cat.mu.Lock()
	db, ctx := cat.db, cat.ctx
	cat.db, cat.ctx = nil, nil
	cat.mu.Unlock()

	if db == nil {
		return nil
	}
	if closeErr := db.Close(); err == nil {
		err = closeErr
	}
	ctx.DetachCatalog(cat)
	return err
}

// openDB returns the badger db, or nil once the catalog is closed.
func (cat *catalog) openDB() *badger.DB {
	cat.mu.Lock()
	defer cat.mu.Unlock()
	return cat.db
}

func (cat *catalog) IsReadOnly() bool {
	return cat.readOnly
}

func (cat *catalog) NumFormulas() int64 {
	cat.mu.Lock()
	defer cat.mu.Unlock()
	return cat.state.NumFormulas
}

func formNameKey(key []byte, name string) []byte {
	key = append(key, gNamePrefix...)
	return append(key, name...)
}

func formHillKey(key []byte, hill, name string) []byte {
	key = append(key, gHillPrefix...)
	key = append(key, hill...)
	key = append(key, 0)
	return append(key, name...)
}

func checkName(name string) error {
	if len(name) == 0 {
		return errors.Wrap(chem.ErrBadCatalogParam, "formula name is empty")
	}
	if strings.IndexByte(name, 0) >= 0 {
		return errors.Wrap(chem.ErrBadCatalogParam, "formula name contains NUL")
	}
	return nil
}

// TryAddFormula adds f under name if name is not already present.
//
// If true is returned, name was not present and was added.
func (cat *catalog) TryAddFormula(name string, f chem.Formula) (bool, error) {
	if cat.readOnly {
		return false, chem.ErrCatalogReadOnly
	}
	if err := checkName(name); err != nil {
		return false, err
	}

	val, err := marshalFormula(f)
	if err != nil {
		return false, err
	}
	nameKey := formNameKey(nil, name)
	hillKey := formHillKey(nil, cat.eng.Hill(f), name)

	cat.mu.Lock()
	defer cat.mu.Unlock()

	if cat.db == nil {
		return false, chem.ErrCatalogClosed
	}
	txn := cat.db.NewTransaction(true)
	defer txn.Discard()

	_, err = txn.Get(nameKey)
	if err == nil {
		return false, nil
	}
	if err != badger.ErrKeyNotFound {
		return false, err
	}

	if err = txn.Set(nameKey, val); err != nil {
		return false, err
	}
	if err = txn.Set(hillKey, nil); err != nil {
		return false, err
	}
	if err = txn.Commit(); err != nil {
		return false, err
	}

	cat.state.NumFormulas++
	cat.stateDirty = true
	return true, nil
}

func (cat *catalog) Get(name string) (chem.Formula, error) {
	db := cat.openDB()
	if db == nil {
		return chem.Formula{}, chem.ErrCatalogClosed
	}
	var f chem.Formula
	err := db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(formNameKey(nil, name))
		if err == badger.ErrKeyNotFound {
			return errors.Wrapf(chem.ErrFormulaNotFound, "%q", name)
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			f, err = unmarshalFormula(val)
			return err
		})
	})
	return f, err
}

func (cat *catalog) Remove(name string) error {
	if cat.readOnly {
		return chem.ErrCatalogReadOnly
	}

	cat.mu.Lock()
	defer cat.mu.Unlock()

	if cat.db == nil {
		return chem.ErrCatalogClosed
	}
	txn := cat.db.NewTransaction(true)
	defer txn.Discard()

	nameKey := formNameKey(nil, name)
	item, err := txn.Get(nameKey)
	if err == badger.ErrKeyNotFound {
		return errors.Wrapf(chem.ErrFormulaNotFound, "%q", name)
	}
	if err != nil {
		return err
	}

	var f chem.Formula
	err = item.Value(func(val []byte) error {
		f, err = unmarshalFormula(val)
		return err
	})
	if err != nil {
		return err
	}

	if err = txn.Delete(nameKey); err != nil {
		return err
	}
	if err = txn.Delete(formHillKey(nil, cat.eng.Hill(f), name)); err != nil {
		return err
	}
	if err = txn.Commit(); err != nil {
		return err
	}

	cat.state.NumFormulas--
	cat.stateDirty = true
	return nil
}

// NamesByHill returns the names of all formulas whose Hill notation is hill, in name order.
func (cat *catalog) NamesByHill(hill string) ([]string, error) {
	db := cat.openDB()
	if db == nil {
		return nil, chem.ErrCatalogClosed
	}
	prefix := append(append([]byte(nil), gHillPrefix...), hill...)
	prefix = append(prefix, 0)

	var names []string
	err := db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.IteratorOptions{
			PrefetchValues: false,
			Prefix:         prefix,
		})
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			names = append(names, string(it.Item().Key()[len(prefix):]))
		}
		return nil
	})
	return names, err
}

// Select pushes every entry selected by sel to onHit, in name order.
//
// Entries whose record cannot be decoded are logged and skipped.  A closed catalog selects nothing.
func (cat *catalog) Select(sel chem.FormulaSelector, onHit chem.OnFormulaHit) {
	db := cat.openDB()
	if db == nil {
		klog.Warningf("catalog: select on closed catalog")
		return
	}
	txn := db.NewTransaction(false)
	defer txn.Discard()

	it := txn.NewIterator(badger.IteratorOptions{
		PrefetchValues: true,
		PrefetchSize:   100,
		Prefix:         gNamePrefix,
	})
	defer it.Close()

	for it.Rewind(); it.Valid(); it.Next() {
		item := it.Item()
		name := string(item.Key()[len(gNamePrefix):])

		var f chem.Formula
		err := item.Value(func(val []byte) error {
			var err error
			f, err = unmarshalFormula(val)
			return err
		})
		if err != nil {
			klog.Warningf("catalog: skipping %q: %v", name, err)
			continue
		}
		if sel.Selects(f) {
			onHit <- chem.CatalogEntry{
				Name:    name,
				Formula: f,
			}
		}
	}
}

// badgerLogger routes badger's log output to klog.
type badgerLogger struct{}

func (badgerLogger) Errorf(format string, args ...interface{}) {
	klog.Errorf("badger: "+format, args...)
}

func (badgerLogger) Warningf(format string, args ...interface{}) {
	klog.Warningf("badger: "+format, args...)
}

func (badgerLogger) Infof(format string, args ...interface{}) {
	klog.V(3).Infof("badger: "+format, args...)
}

func (badgerLogger) Debugf(format string, args ...interface{}) {
	klog.V(4).Infof("badger: "+format, args...)
}
