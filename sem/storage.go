package sem

// StorageClass is the storage class of a declaration.  It should be one of the
// enumerated storage classes.
type StorageClass int

// Enumeration of storage classes.
const (
	StorageNone StorageClass = iota
	StorageTypedef
	StorageExtern
	StorageStatic
	StorageThreadLocal
	StorageExternThreadLocal
	StorageStaticThreadLocal
	StorageAuto
	StorageRegister
)

func (sc StorageClass) Repr() string {
	switch sc {
	case StorageNone:
		return "none"
	case StorageTypedef:
		return "typedef"
	case StorageExtern:
		return "extern"
	case StorageStatic:
		return "static"
	case StorageThreadLocal:
		return "_Thread_local"
	case StorageExternThreadLocal:
		return "extern _Thread_local"
	case StorageStaticThreadLocal:
		return "static _Thread_local"
	case StorageAuto:
		return "auto"
	default:
		// StorageRegister
		return "register"
	}
}

// Merge combines two storage-class specifiers of one declaration.  Only
// `_Thread_local` may be combined with `extern` or `static`; any other pair
// conflicts.
func (sc StorageClass) Merge(other StorageClass) (StorageClass, bool) {
	switch {
	case sc == StorageNone:
		return other, true
	case other == StorageNone:
		return sc, true
	case sc == StorageThreadLocal && other == StorageExtern, sc == StorageExtern && other == StorageThreadLocal:
		return StorageExternThreadLocal, true
	case sc == StorageThreadLocal && other == StorageStatic, sc == StorageStatic && other == StorageThreadLocal:
		return StorageStaticThreadLocal, true
	default:
		return sc, false
	}
}

// IsThreadLocal returns whether the storage class has thread storage duration.
func (sc StorageClass) IsThreadLocal() bool {
	return sc == StorageThreadLocal || sc == StorageExternThreadLocal || sc == StorageStaticThreadLocal
}

// -----------------------------------------------------------------------------

// FunctionSpecifier is the combination of the function specifiers of a
// declaration.  The specifiers form a lattice: merging is associative and
// commutative, and `inline` merged with `_Noreturn` yields both.
type FunctionSpecifier int

// Enumeration of function specifiers.
const (
	SpecNone           FunctionSpecifier = 0
	SpecInline         FunctionSpecifier = 1
	SpecNoreturn       FunctionSpecifier = 2
	SpecInlineNoreturn FunctionSpecifier = SpecInline | SpecNoreturn
)

// Merge combines two function specifiers.
func (fs FunctionSpecifier) Merge(other FunctionSpecifier) FunctionSpecifier {
	return fs | other
}

// IsInline returns whether `inline` is part of the specifier.
func (fs FunctionSpecifier) IsInline() bool {
	return fs&SpecInline != 0
}

// IsNoreturn returns whether `_Noreturn` is part of the specifier.
func (fs FunctionSpecifier) IsNoreturn() bool {
	return fs&SpecNoreturn != 0
}

func (fs FunctionSpecifier) Repr() string {
	switch fs {
	case SpecInline:
		return "inline"
	case SpecNoreturn:
		return "_Noreturn"
	case SpecInlineNoreturn:
		return "inline _Noreturn"
	default:
		return "none"
	}
}

// -----------------------------------------------------------------------------

// Linkage determines whether declarations of the same identifier in different
// scopes refer to the same entity.
type Linkage int

// Enumeration of linkages.
const (
	LinkageNone Linkage = iota
	LinkageInternal
	LinkageExternal
)

func (l Linkage) Repr() string {
	switch l {
	case LinkageInternal:
		return "internal"
	case LinkageExternal:
		return "external"
	default:
		return "none"
	}
}
