package scope

import (
	"csem/report"
	"csem/sem"

	"github.com/emirpasic/gods/maps/linkedhashmap"
)

// RemovalCallback is called for each identifier removed from a scope, before
// the identifier's own payload cleanup runs.
type RemovalCallback func(sym *Symbol, sid sem.ScopedIdentifier)

// binding is an entry of a flat scope.  Linked bindings refer to an entity
// owned by another scope and are not released on removal.
type binding struct {
	sid    sem.ScopedIdentifier
	linked bool
}

// FlatScope is a single namespace level: a map from symbols to scoped
// identifiers.  Iteration follows insertion order.
type FlatScope struct {
	entries   *linkedhashmap.Map
	onRemoval RemovalCallback
}

// NewFlatScope creates a new, empty flat scope.  The removal callback may be
// nil.
func NewFlatScope(onRemoval RemovalCallback) *FlatScope {
	return &FlatScope{entries: linkedhashmap.New(), onRemoval: onRemoval}
}

// Insert binds a symbol in the scope.  It fails with an `AlreadyExists` error
// if the scope already binds the symbol: merging redeclarations is up to the
// caller.
func (fs *FlatScope) Insert(sym *Symbol, sid sem.ScopedIdentifier) error {
	return fs.insert(sym, &binding{sid: sid})
}

// Link binds a symbol to an entity owned by another scope, eg. a block scope
// `extern` declaration referring to the file scope object.  Removing a linked
// binding runs the removal callback but not the identifier's cleanup.
func (fs *FlatScope) Link(sym *Symbol, sid sem.ScopedIdentifier) error {
	return fs.insert(sym, &binding{sid: sid, linked: true})
}

func (fs *FlatScope) insert(sym *Symbol, b *binding) error {
	if _, ok := fs.entries.Get(sym); ok {
		return report.Raise(report.AlreadyExists, nil, "`%s` is already defined in this scope", sym.Name())
	}

	fs.entries.Put(sym, b)
	return nil
}

// Lookup returns the identifier bound to a symbol.
func (fs *FlatScope) Lookup(sym *Symbol) (sem.ScopedIdentifier, bool) {
	if b, ok := fs.entries.Get(sym); ok {
		return b.(*binding).sid, true
	}

	return nil, false
}

// Has returns whether the scope binds a symbol.
func (fs *FlatScope) Has(sym *Symbol) bool {
	_, ok := fs.entries.Get(sym)
	return ok
}

// Remove unbinds a symbol, running the removal hooks.
func (fs *FlatScope) Remove(sym *Symbol) {
	if b, ok := fs.entries.Get(sym); ok {
		fs.entries.Remove(sym)
		fs.release(sym, b.(*binding))
	}
}

// IsEmpty returns whether the scope binds no symbol.
func (fs *FlatScope) IsEmpty() bool {
	return fs.entries.Empty()
}

// Len returns the number of bound symbols.
func (fs *FlatScope) Len() int {
	return fs.entries.Size()
}

// Each calls f for every binding in insertion order.
func (fs *FlatScope) Each(f func(sym *Symbol, sid sem.ScopedIdentifier)) {
	fs.entries.Each(func(key, value interface{}) {
		f(key.(*Symbol), value.(*binding).sid)
	})
}

// Free unbinds every symbol, running the removal hooks in insertion order.
func (fs *FlatScope) Free() {
	fs.entries.Each(func(key, value interface{}) {
		fs.release(key.(*Symbol), value.(*binding))
	})

	fs.entries.Clear()
}

func (fs *FlatScope) release(sym *Symbol, b *binding) {
	if fs.onRemoval != nil {
		fs.onRemoval(sym, b.sid)
	}

	if !b.linked {
		b.sid.Release()
	}
}
