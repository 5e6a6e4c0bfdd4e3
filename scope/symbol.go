package scope

// Symbol is an interned identifier.  Two symbols of the same symbol table are
// equal if and only if they are the same pointer.
type Symbol struct {
	name string
}

// Name returns the identifier string of the symbol.
func (s *Symbol) Name() string {
	return s.name
}

func (s *Symbol) String() string {
	return s.name
}

// SymbolTable deduplicates identifier strings into symbols.  It is owned by a
// global context: symbols of distinct tables must never be compared.
type SymbolTable struct {
	symbols map[string]*Symbol
}

// NewSymbolTable creates a new, empty symbol table.
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{symbols: make(map[string]*Symbol)}
}

// Intern returns the unique symbol of the given name, creating it if needed.
func (st *SymbolTable) Intern(name string) *Symbol {
	if sym, ok := st.symbols[name]; ok {
		return sym
	}

	sym := &Symbol{name: name}
	st.symbols[name] = sym
	return sym
}

// Lookup returns the symbol of the given name if it was interned.
func (st *SymbolTable) Lookup(name string) (*Symbol, bool) {
	sym, ok := st.symbols[name]
	return sym, ok
}

// Len returns the number of interned symbols.
func (st *SymbolTable) Len() int {
	return len(st.symbols)
}
