package scope

import (
	"csem/report"
	"csem/sem"

	"github.com/emirpasic/gods/stacks/arraystack"
)

// blockNode is a node of the block scope tree.  Nodes refer to each other by
// index into the tree's node list.
type blockNode struct {
	scope    *FlatScope
	parent   int
	children []int
}

// BlockScope is a tree of flat scopes mirroring the nesting of blocks.
// Opening a block adds a child to the current node and descends into it;
// closing a block ascends back to the parent.  Closed blocks stay in the tree
// until the block scope is freed.  The root node is never closed.
type BlockScope struct {
	nodes []*blockNode

	// path is the stack of node indices from the root to the current node.
	path *arraystack.Stack

	onRemoval RemovalCallback
}

// NewBlockScope creates a block scope holding only the root node.  The
// removal callback may be nil.
func NewBlockScope(onRemoval RemovalCallback) *BlockScope {
	bs := &BlockScope{
		nodes:     []*blockNode{{scope: NewFlatScope(onRemoval), parent: -1}},
		path:      arraystack.New(),
		onRemoval: onRemoval,
	}

	bs.path.Push(0)
	return bs
}

// current returns the index of the current node.
func (bs *BlockScope) current() int {
	top, _ := bs.path.Peek()
	return top.(int)
}

// Current returns the flat scope of the current node.
func (bs *BlockScope) Current() *FlatScope {
	return bs.nodes[bs.current()].scope
}

// Depth returns the number of open blocks above the root.
func (bs *BlockScope) Depth() int {
	return bs.path.Size() - 1
}

// OpenBlock adds a new child to the current node and makes it current.
func (bs *BlockScope) OpenBlock() {
	parent := bs.current()

	bs.nodes = append(bs.nodes, &blockNode{scope: NewFlatScope(bs.onRemoval), parent: parent})
	child := len(bs.nodes) - 1
	bs.nodes[parent].children = append(bs.nodes[parent].children, child)

	bs.path.Push(child)
}

// CloseBlock makes the parent of the current node current.  Closing the root
// is an internal compiler error.
func (bs *BlockScope) CloseBlock() {
	report.Assert(bs.Depth() > 0, "attempted to close the root block scope")
	bs.path.Pop()
}

// Insert binds a symbol in the current block.
func (bs *BlockScope) Insert(sym *Symbol, sid sem.ScopedIdentifier) error {
	return bs.Current().Insert(sym, sid)
}

// Link binds a symbol in the current block to an entity owned elsewhere.
func (bs *BlockScope) Link(sym *Symbol, sid sem.ScopedIdentifier) error {
	return bs.Current().Link(sym, sid)
}

// Lookup finds the innermost binding of a symbol walking from the current
// block to the root.
func (bs *BlockScope) Lookup(sym *Symbol) (sem.ScopedIdentifier, bool) {
	for index := bs.current(); index >= 0; index = bs.nodes[index].parent {
		if sid, ok := bs.nodes[index].scope.Lookup(sym); ok {
			return sid, true
		}
	}

	return nil, false
}

// Has returns whether a symbol is visible from the current block.
func (bs *BlockScope) Has(sym *Symbol) bool {
	_, ok := bs.Lookup(sym)
	return ok
}

// IsEmpty returns whether every flat scope of the tree is empty.
func (bs *BlockScope) IsEmpty() bool {
	return bs.subtreeEmpty(0)
}

func (bs *BlockScope) subtreeEmpty(index int) bool {
	node := bs.nodes[index]
	if !node.scope.IsEmpty() {
		return false
	}

	for _, child := range node.children {
		if !bs.subtreeEmpty(child) {
			return false
		}
	}

	return true
}

// Free releases every flat scope of the tree, children before their parents,
// and resets the block scope to an empty root.
func (bs *BlockScope) Free() {
	bs.freeSubtree(0)

	bs.nodes = bs.nodes[:1]
	bs.nodes[0].children = nil
	bs.path.Clear()
	bs.path.Push(0)
}

func (bs *BlockScope) freeSubtree(index int) {
	node := bs.nodes[index]
	for _, child := range node.children {
		bs.freeSubtree(child)
	}

	node.scope.Free()
}
