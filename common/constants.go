package common

const (
	CsemVersion = "0.1.0"

	// UnitFileExtension is the extension of AST interchange files.
	UnitFileExtension = ".json"

	// TargetFileExtension is the extension of target environment files.
	TargetFileExtension = ".toml"

	// DefaultTargetName is the name of the target preset used when no target
	// is specified.
	DefaultTargetName = "lp64"

	// StringLiteralPrefix prefixes the symbols generated for string literals.
	StringLiteralPrefix = "__csem_str."
)
