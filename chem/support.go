package chem

import (
	"sort"
	"sync"

	"github.com/plan-systems/klog"
)

// NewCatalogContext returns a context that owns every Catalog opened against it.
// Close shuts the catalogs down one at a time, most recently attached first.
func NewCatalogContext() CatalogContext {
	return &catalogContext{
		attached: make(map[Catalog]uint64),
		closing:  make(chan struct{}),
		closed:   make(chan struct{}),
	}
}

type catalogContext struct {
	mu        sync.Mutex
	attached  map[Catalog]uint64 // catalog -> attach order
	seq       uint64
	inFlight  int // closeCatalog calls not yet finished
	isClosing bool
	isDone    bool
	closeErr  error
	closing   chan struct{}
	closed    chan struct{}
}

func (ctx *catalogContext) AttachCatalog(cat Catalog) {
	ctx.mu.Lock()
	defer ctx.mu.Unlock()

	if ctx.isDone {
		klog.Warningf("catalog context: catalog attached after close")
		ctx.inFlight++
		go ctx.closeCatalog(cat)
		return
	}

	ctx.seq++
	ctx.attached[cat] = ctx.seq
	if ctx.isClosing {
		ctx.inFlight++
		go ctx.closeCatalog(cat)
	}
}

func (ctx *catalogContext) DetachCatalog(cat Catalog) {
	ctx.mu.Lock()
	defer ctx.mu.Unlock()

	delete(ctx.attached, cat)
	ctx.checkDone()
}

// checkDone signals Done once closing has begun and nothing is left attached or closing.  Expects mu held.
func (ctx *catalogContext) checkDone() {
	if ctx.isClosing && !ctx.isDone && ctx.inFlight == 0 && len(ctx.attached) == 0 {
		ctx.isDone = true
		close(ctx.closed)
	}
}

func (ctx *catalogContext) Closing() <-chan struct{} {
	return ctx.closing
}

func (ctx *catalogContext) Done() <-chan struct{} {
	return ctx.closed
}

func (ctx *catalogContext) Err() error {
	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	return ctx.closeErr
}

func (ctx *catalogContext) Close() {
	ctx.mu.Lock()
	defer ctx.mu.Unlock()

	if ctx.isClosing {
		return
	}
	ctx.isClosing = true
	close(ctx.closing)

	cats := make([]Catalog, 0, len(ctx.attached))
	for cat := range ctx.attached {
		cats = append(cats, cat)
	}
	sort.Slice(cats, func(i, j int) bool {
		return ctx.attached[cats[i]] > ctx.attached[cats[j]]
	})
	klog.V(2).Infof("catalog context: closing %d catalogs", len(cats))

	if len(cats) == 0 {
		ctx.checkDone()
		return
	}

	ctx.inFlight += len(cats)
	go func() {
		for _, cat := range cats {
			ctx.closeCatalog(cat)
		}
	}()
}

// closeCatalog closes cat, keeps the first close error, and detaches cat even if its Close did not.
func (ctx *catalogContext) closeCatalog(cat Catalog) {
	err := cat.Close()
	if err != nil {
		klog.Warningf("catalog context: error closing catalog: %v", err)
	}

	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	if err != nil && ctx.closeErr == nil {
		ctx.closeErr = err
	}
	ctx.inFlight--
	delete(ctx.attached, cat)
	ctx.checkDone()
}
