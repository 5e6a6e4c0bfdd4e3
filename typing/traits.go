package typing

// Traits is the target policy consulted by the type algebra and by layout:
// sizes and alignments of the basic types, the signedness of plain `char` and
// the integer types the language defines in terms of others.  Traits are
// immutable once constructed and may be shared between contexts.
type Traits struct {
	// CharSigned indicates whether plain `char` is signed.
	CharSigned bool

	// Sizes and Alignments of each basic type in bytes.  The entries for void
	// are unused.
	Sizes      [NumBasicTypes]uint64
	Alignments [NumBasicTypes]uint64

	PointerSize      uint64
	PointerAlignment uint64

	// EnumUnderlying is the integer type of enumerations.
	EnumUnderlying BasicType

	// The types of `ptrdiff_t`, `size_t` and `wchar_t`.
	PtrdiffType BasicType
	SizeType    BasicType
	WcharType   BasicType
}

// DefaultTraits returns the traits of the x86_64 System V data model.
func DefaultTraits() *Traits {
	return &Traits{
		CharSigned: true,
		Sizes: [NumBasicTypes]uint64{
			Void:             1,
			Bool:             1,
			Char:             1,
			SignedChar:       1,
			UnsignedChar:     1,
			Short:            2,
			UnsignedShort:    2,
			Int:              4,
			UnsignedInt:      4,
			Long:             8,
			UnsignedLong:     8,
			LongLong:         8,
			UnsignedLongLong: 8,
			Float:            4,
			Double:           8,
			LongDouble:       16,
		},
		Alignments: [NumBasicTypes]uint64{
			Void:             1,
			Bool:             1,
			Char:             1,
			SignedChar:       1,
			UnsignedChar:     1,
			Short:            2,
			UnsignedShort:    2,
			Int:              4,
			UnsignedInt:      4,
			Long:             8,
			UnsignedLong:     8,
			LongLong:         8,
			UnsignedLongLong: 8,
			Float:            4,
			Double:           8,
			LongDouble:       16,
		},
		PointerSize:      8,
		PointerAlignment: 8,
		EnumUnderlying:   Int,
		PtrdiffType:      Long,
		SizeType:         UnsignedLong,
		WcharType:        Int,
	}
}

// IsSigned returns whether an integer basic type is signed.
func (tr *Traits) IsSigned(bt BasicType) bool {
	switch bt {
	case Char:
		return tr.CharSigned
	case SignedChar, Short, Int, Long, LongLong:
		return true
	default:
		return false
	}
}

// Bits returns the width in bits of a basic type.
func (tr *Traits) Bits(bt BasicType) uint {
	if bt == Bool {
		return 1
	}

	return uint(tr.Sizes[bt] * 8)
}
