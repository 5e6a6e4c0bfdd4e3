package ast

import (
	"bytes"
	"io"
	"strconv"
	"strings"

	"csem/report"
	"csem/sem"
	"csem/typing"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
)

// The AST interchange format is JSON: every node is an object with a `kind`
// field naming the node, an optional `span` field holding the zero-indexed
// `[startLine, startCol, endLine, endCol]` of the node, and the fields of the
// node named in snake case (eg. `{"kind": "identifier", "name": "x"}`).
// Operators, keywords and storage classes are spelled as in C source.

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// DecodeTranslationUnit reads a translation unit in the AST interchange
// format.
func DecodeTranslationUnit(r io.Reader) (*TranslationUnit, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "reading translation unit")
	}

	d := &decoder{}
	node := d.node(jsoniter.RawMessage(data), "translation unit")
	if d.err != nil {
		return nil, d.err
	}

	tu, ok := node.(*TranslationUnit)
	if !ok {
		return nil, errors.Errorf("expected a translation unit at the root, got `%s`", d.lastKind)
	}

	return tu, nil
}

// DecodeExpr reads a single expression in the AST interchange format.
func DecodeExpr(data []byte) (Expr, error) {
	d := &decoder{}
	expr := d.expr(jsoniter.RawMessage(data), "expression")
	return expr, d.err
}

// -----------------------------------------------------------------------------

// decoder converts JSON objects into nodes.  It records the first error it
// encounters and yields nil nodes afterwards so that decoding code can be
// written without checking every field.
type decoder struct {
	err      error
	lastKind string
}

func (d *decoder) fail(err error, context string) {
	if d.err == nil {
		d.err = errors.Wrapf(err, "decoding %s", context)
	}
}

// object is a JSON object being decoded into a node.
type object struct {
	d      *decoder
	kind   string
	span   *report.TextSpan
	fields map[string]jsoniter.RawMessage
}

func (d *decoder) object(data jsoniter.RawMessage, context string) *object {
	if d.err != nil || isNull(data) {
		return nil
	}

	fields := make(map[string]jsoniter.RawMessage)
	if err := json.Unmarshal(data, &fields); err != nil {
		d.fail(err, context)
		return nil
	}

	obj := &object{d: d, fields: fields}
	if raw, ok := fields["kind"]; ok {
		if err := json.Unmarshal(raw, &obj.kind); err != nil {
			d.fail(err, context)
			return nil
		}
	}

	if raw, ok := fields["span"]; ok && !isNull(raw) {
		var coords []int
		if err := json.Unmarshal(raw, &coords); err != nil || len(coords) != 4 {
			d.fail(errors.Errorf("malformed span `%s`", string(raw)), context)
			return nil
		}

		obj.span = &report.TextSpan{StartLine: coords[0], StartCol: coords[1], EndLine: coords[2], EndCol: coords[3]}
	}

	d.lastKind = obj.kind
	return obj
}

func isNull(data jsoniter.RawMessage) bool {
	trimmed := bytes.TrimSpace(data)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

func (o *object) base() NodeBase {
	return NewNodeBase(o.span)
}

func (o *object) raw(name string) jsoniter.RawMessage {
	return o.fields[name]
}

func (o *object) scalar(name string, v interface{}) {
	if raw, ok := o.fields[name]; ok && !isNull(raw) && o.d.err == nil {
		if err := json.Unmarshal(raw, v); err != nil {
			o.d.fail(err, "field `"+name+"` of `"+o.kind+"`")
		}
	}
}

func (o *object) str(name string) string {
	var s string
	o.scalar(name, &s)
	return s
}

func (o *object) boolean(name string) bool {
	var b bool
	o.scalar(name, &b)
	return b
}

func (o *object) list(name string) []jsoniter.RawMessage {
	var items []jsoniter.RawMessage
	o.scalar(name, &items)
	return items
}

func (o *object) expr(name string) Expr {
	return o.d.expr(o.raw(name), "field `"+name+"` of `"+o.kind+"`")
}

func (o *object) exprs(name string) []Expr {
	var exprs []Expr
	for _, item := range o.list(name) {
		exprs = append(exprs, o.d.expr(item, "field `"+name+"` of `"+o.kind+"`"))
	}

	return exprs
}

func (o *object) nodes(name string) []Node {
	var nodes []Node
	for _, item := range o.list(name) {
		nodes = append(nodes, o.d.node(item, "field `"+name+"` of `"+o.kind+"`"))
	}

	return nodes
}

func (o *object) declarator(name string) Declarator {
	node := o.d.node(o.raw(name), "field `"+name+"` of `"+o.kind+"`")
	if node == nil {
		return nil
	}

	if decl, ok := node.(Declarator); ok {
		return decl
	}

	o.d.fail(errors.Errorf("`%s` is not a declarator", o.d.lastKind), "field `"+name+"` of `"+o.kind+"`")
	return nil
}

func (o *object) specifiers(name string) []DeclSpecifier {
	var specs []DeclSpecifier
	for _, node := range o.nodes(name) {
		if spec, ok := node.(DeclSpecifier); ok {
			specs = append(specs, spec)
		} else if node != nil {
			o.d.fail(errors.New("not a declaration specifier"), "field `"+name+"` of `"+o.kind+"`")
		}
	}

	return specs
}

func (o *object) qualifiers(name string) []*TypeQualifier {
	var quals []*TypeQualifier
	for _, node := range o.nodes(name) {
		if qual, ok := node.(*TypeQualifier); ok {
			quals = append(quals, qual)
		} else if node != nil {
			o.d.fail(errors.New("not a type qualifier"), "field `"+name+"` of `"+o.kind+"`")
		}
	}

	return quals
}

func (o *object) typeName(name string) *TypeName {
	node := o.d.node(o.raw(name), "field `"+name+"` of `"+o.kind+"`")
	if tn, ok := node.(*TypeName); ok {
		return tn
	} else if node != nil {
		o.d.fail(errors.New("not a type name"), "field `"+name+"` of `"+o.kind+"`")
	}

	return nil
}

func (o *object) initializer(name string) *Initializer {
	node := o.d.node(o.raw(name), "field `"+name+"` of `"+o.kind+"`")
	if init, ok := node.(*Initializer); ok {
		return init
	} else if node != nil {
		o.d.fail(errors.New("not an initializer"), "field `"+name+"` of `"+o.kind+"`")
	}

	return nil
}

func (o *object) compound(name string) *CompoundStatement {
	node := o.d.node(o.raw(name), "field `"+name+"` of `"+o.kind+"`")
	if cs, ok := node.(*CompoundStatement); ok {
		return cs
	} else if node != nil {
		o.d.fail(errors.New("not a compound statement"), "field `"+name+"` of `"+o.kind+"`")
	}

	return nil
}

// -----------------------------------------------------------------------------

func (d *decoder) expr(data jsoniter.RawMessage, context string) Expr {
	node := d.node(data, context)
	if node == nil {
		return nil
	}

	if expr, ok := node.(Expr); ok {
		return expr
	}

	d.fail(errors.Errorf("`%s` is not an expression", d.lastKind), context)
	return nil
}

// node decodes any node.  Absent and null fields decode to nil.
func (d *decoder) node(data jsoniter.RawMessage, context string) Node {
	o := d.object(data, context)
	if o == nil {
		return nil
	}

	var node Node
	switch o.kind {
	case "translation_unit":
		node = &TranslationUnit{NodeBase: o.base(), Items: o.nodes("items")}
	case "function_definition":
		fd := &FunctionDefinition{
			NodeBase:   o.base(),
			Specifiers: o.specifiers("specifiers"),
			Declarator: o.declarator("declarator"),
			Body:       o.compound("body"),
		}

		for _, item := range o.nodes("declarations") {
			if decl, ok := item.(*Declaration); ok {
				fd.Declarations = append(fd.Declarations, decl)
			} else if item != nil {
				d.fail(errors.New("not a declaration"), "declaration list")
			}
		}

		node = fd
	case "compound_statement":
		node = &CompoundStatement{NodeBase: o.base(), Items: o.nodes("items")}
	case "expression_statement":
		node = &ExpressionStatement{NodeBase: o.base(), Expr: o.expr("expr")}
	case "return_statement":
		node = &ReturnStatement{NodeBase: o.base(), Expr: o.expr("expr")}
	case "declaration":
		decl := &Declaration{NodeBase: o.base(), Specifiers: o.specifiers("specifiers")}
		for _, item := range o.nodes("declarators") {
			if idecl, ok := item.(*InitDeclarator); ok {
				decl.Declarators = append(decl.Declarators, idecl)
			} else if item != nil {
				d.fail(errors.New("not an init declarator"), "declaration")
			}
		}

		node = decl
	case "init_declarator":
		node = &InitDeclarator{NodeBase: o.base(), Declarator: o.declarator("declarator"), Init: o.initializer("init")}
	case "initializer":
		node = d.initializer(o)
	case "static_assertion":
		sa := &StaticAssertion{NodeBase: o.base(), Cond: o.expr("cond")}
		if msg := o.expr("message"); msg != nil {
			if lit, ok := msg.(*StringLiteral); ok {
				sa.Message = lit
			} else {
				d.fail(errors.New("message is not a string literal"), "static assertion")
			}
		}

		node = sa
	case "type_name":
		node = &TypeName{NodeBase: o.base(), Specifiers: o.specifiers("specifiers"), Declarator: o.declarator("declarator")}
	default:
		if spec := d.specifier(o); spec != nil {
			node = spec
		} else if decl := d.declaratorNode(o); decl != nil {
			node = decl
		} else if expr := d.exprNode(o); expr != nil {
			node = expr
		} else if d.err == nil {
			d.fail(errors.Errorf("unknown node kind `%s`", o.kind), context)
		}
	}

	if d.err != nil {
		return nil
	}

	return node
}

func (d *decoder) initializer(o *object) *Initializer {
	init := &Initializer{NodeBase: o.base()}
	if _, ok := o.fields["list"]; !ok {
		init.Expr = o.expr("expr")
		return init
	}

	for _, item := range o.list("list") {
		entry := d.object(item, "initializer entry")
		if entry == nil {
			continue
		}

		ie := &InitializerEntry{Init: entry.initializer("init")}
		for _, draw := range entry.list("designators") {
			dobj := d.object(draw, "designator")
			if dobj == nil {
				continue
			}

			ie.Designators = append(ie.Designators, &Designator{
				NodeBase: dobj.base(),
				Member:   dobj.str("member"),
				Index:    dobj.expr("index"),
			})
		}

		init.List = append(init.List, ie)
	}

	return init
}

var typeKeywords = map[string]TypeKeyword{
	"void":     KwVoid,
	"char":     KwChar,
	"short":    KwShort,
	"int":      KwInt,
	"long":     KwLong,
	"float":    KwFloat,
	"double":   KwDouble,
	"signed":   KwSigned,
	"unsigned": KwUnsigned,
	"_Bool":    KwBool,
	"_Complex": KwComplex,
	"_Atomic":  KwAtomic,
}

var qualifierKeywords = map[string]typing.Qualifiers{
	"const":    typing.Const,
	"restrict": typing.Restrict,
	"volatile": typing.Volatile,
}

var storageKeywords = map[string]sem.StorageClass{
	"typedef":       sem.StorageTypedef,
	"extern":        sem.StorageExtern,
	"static":        sem.StorageStatic,
	"_Thread_local": sem.StorageThreadLocal,
	"auto":          sem.StorageAuto,
	"register":      sem.StorageRegister,
}

var functionSpecKeywords = map[string]sem.FunctionSpecifier{
	"inline":    sem.SpecInline,
	"_Noreturn": sem.SpecNoreturn,
}

// keyword looks up a spelled keyword in a table, failing on unknown spellings.
func keyword[T any](o *object, field string, table map[string]T) T {
	spelling := o.str(field)
	value, ok := table[spelling]
	if !ok {
		o.d.fail(errors.Errorf("unknown %s `%s`", field, spelling), "`"+o.kind+"`")
	}

	return value
}

func (d *decoder) specifier(o *object) DeclSpecifier {
	switch o.kind {
	case "type_specifier":
		return &TypeSpecifier{NodeBase: o.base(), Keyword: keyword(o, "keyword", typeKeywords)}
	case "struct_specifier":
		return &StructSpecifier{
			NodeBase: o.base(),
			Union:    o.boolean("union"),
			Tag:      o.str("tag"),
			Complete: o.boolean("complete"),
			Members:  o.nodes("members"),
		}
	case "enum_specifier":
		es := &EnumSpecifier{NodeBase: o.base(), Tag: o.str("tag"), Complete: o.boolean("complete")}
		for _, item := range o.list("enumerators") {
			eobj := d.object(item, "enumerator")
			if eobj == nil {
				continue
			}

			es.Enumerators = append(es.Enumerators, &EnumeratorDecl{
				NodeBase: eobj.base(),
				Name:     eobj.str("name"),
				Value:    eobj.expr("value"),
			})
		}

		return es
	case "typedef_name":
		return &TypedefName{NodeBase: o.base(), Name: o.str("name")}
	case "type_qualifier":
		return &TypeQualifier{NodeBase: o.base(), Qualifier: keyword(o, "qualifier", qualifierKeywords)}
	case "storage_class":
		return &StorageClassSpecifier{NodeBase: o.base(), Storage: keyword(o, "storage", storageKeywords)}
	case "function_specifier":
		return &FunctionSpecifier{NodeBase: o.base(), Specifier: keyword(o, "specifier", functionSpecKeywords)}
	case "alignment_specifier":
		return &AlignmentSpecifier{NodeBase: o.base(), Expr: o.expr("expr"), Type: o.typeName("type")}
	}

	return nil
}

var arraySyntaxes = map[string]ArraySyntax{
	"unbounded": ArrayUnbounded,
	"bounded":   ArrayBounded,
	"star":      ArrayStar,
}

func (d *decoder) declaratorNode(o *object) Node {
	switch o.kind {
	case "identifier_declarator":
		return &IdentifierDeclarator{NodeBase: o.base(), Name: o.str("name")}
	case "pointer_declarator":
		return &PointerDeclarator{NodeBase: o.base(), Qualifiers: o.qualifiers("qualifiers"), Declarator: o.declarator("declarator")}
	case "array_declarator":
		return &ArrayDeclarator{
			NodeBase:   o.base(),
			Syntax:     keyword(o, "syntax", arraySyntaxes),
			Static:     o.boolean("static"),
			Qualifiers: o.qualifiers("qualifiers"),
			Length:     o.expr("length"),
			Declarator: o.declarator("declarator"),
		}
	case "function_declarator":
		fd := &FunctionDeclarator{
			NodeBase:       o.base(),
			IdentifierList: o.boolean("identifier_list"),
			Ellipsis:       o.boolean("ellipsis"),
			Declarator:     o.declarator("declarator"),
		}

		for _, node := range o.nodes("params") {
			if param, ok := node.(*ParameterDeclaration); ok {
				fd.Params = append(fd.Params, param)
			} else if node != nil {
				d.fail(errors.New("not a parameter declaration"), "function declarator")
			}
		}

		var names []string
		o.scalar("identifiers", &names)
		for _, name := range names {
			fd.Identifiers = append(fd.Identifiers, &IdentifierDeclarator{NodeBase: o.base(), Name: name})
		}

		return fd
	case "parameter_declaration":
		return &ParameterDeclaration{NodeBase: o.base(), Specifiers: o.specifiers("specifiers"), Declarator: o.declarator("declarator")}
	case "struct_declaration":
		sd := &StructDeclaration{NodeBase: o.base(), Specifiers: o.specifiers("specifiers")}
		for _, item := range o.list("declarators") {
			dobj := d.object(item, "struct declarator")
			if dobj == nil {
				continue
			}

			sd.Declarators = append(sd.Declarators, &StructDeclarator{
				NodeBase:   dobj.base(),
				Declarator: dobj.declarator("declarator"),
				Width:      dobj.expr("width"),
			})
		}

		return sd
	}

	return nil
}

var constantKinds = map[string]ConstantKind{
	"bool":               ConstBool,
	"char":               ConstChar,
	"wchar":              ConstWideChar,
	"int":                ConstInt,
	"unsigned int":       ConstUnsignedInt,
	"long":               ConstLong,
	"unsigned long":      ConstUnsignedLong,
	"long long":          ConstLongLong,
	"unsigned long long": ConstUnsignedLongLong,
	"float":              ConstFloat,
	"double":             ConstDouble,
	"long double":        ConstLongDouble,
}

var unaryOps = map[string]UnaryOp{
	"+":        OpPlus,
	"-":        OpNegate,
	"~":        OpInvert,
	"!":        OpLogicalNot,
	"&":        OpAddress,
	"*":        OpIndirection,
	"++x":      OpPreIncrement,
	"--x":      OpPreDecrement,
	"x++":      OpPostIncrement,
	"x--":      OpPostDecrement,
	"sizeof":   OpSizeof,
	"_Alignof": OpAlignof,
}

var binaryOps = map[string]BinaryOp{
	"+":  OpAdd,
	"-":  OpSub,
	"*":  OpMul,
	"/":  OpDiv,
	"%":  OpMod,
	"<<": OpShiftLeft,
	">>": OpShiftRight,
	"<":  OpLess,
	"<=": OpLessEqual,
	">":  OpGreater,
	">=": OpGreaterEqual,
	"==": OpEqual,
	"!=": OpNotEqual,
	"&":  OpBitAnd,
	"|":  OpBitOr,
	"^":  OpBitXor,
	"&&": OpLogicalAnd,
	"||": OpLogicalOr,
}

func (d *decoder) exprNode(o *object) Expr {
	switch o.kind {
	case "constant":
		c := &Constant{NodeBase: o.base(), Kind: keyword(o, "type", constantKinds)}
		text := string(bytes.TrimSpace(o.raw("value")))

		var err error
		if c.Kind >= ConstFloat {
			c.Float, err = strconv.ParseFloat(text, 64)
		} else if c.Int, err = strconv.ParseInt(text, 10, 64); err != nil {
			var u uint64
			if u, err = strconv.ParseUint(text, 10, 64); err == nil {
				c.Int = int64(u)
			}
		}

		if err != nil {
			d.fail(err, "constant value")
		}

		return c
	case "string_literal":
		return &StringLiteral{NodeBase: o.base(), Wide: o.boolean("wide"), Value: o.str("value")}
	case "identifier":
		return &Identifier{NodeBase: o.base(), Name: o.str("name")}
	case "generic_selection":
		gs := &GenericSelection{NodeBase: o.base(), Control: o.expr("control")}
		for _, item := range o.list("associations") {
			aobj := d.object(item, "generic association")
			if aobj == nil {
				continue
			}

			gs.Associations = append(gs.Associations, &GenericAssociation{Type: aobj.typeName("type"), Expr: aobj.expr("expr")})
		}

		return gs
	case "compound_literal":
		return &CompoundLiteral{NodeBase: o.base(), Type: o.typeName("type"), Init: o.initializer("init")}
	case "array_subscript":
		return &ArraySubscript{NodeBase: o.base(), Array: o.expr("array"), Index: o.expr("index")}
	case "function_call":
		return &FunctionCall{NodeBase: o.base(), Func: o.expr("func"), Args: o.exprs("args")}
	case "struct_member":
		return &StructMember{NodeBase: o.base(), Struct: o.expr("struct"), Member: o.str("member"), Indirect: o.boolean("indirect")}
	case "unary_operation":
		return &UnaryOperation{NodeBase: o.base(), Op: keyword(o, "op", unaryOps), Operand: o.expr("operand")}
	case "type_trait":
		return &TypeTrait{NodeBase: o.base(), Op: keyword(o, "op", unaryOps), Type: o.typeName("type")}
	case "cast":
		return &Cast{NodeBase: o.base(), Type: o.typeName("type"), Expr: o.expr("expr")}
	case "binary_operation":
		return &BinaryOperation{NodeBase: o.base(), Op: keyword(o, "op", binaryOps), Lhs: o.expr("lhs"), Rhs: o.expr("rhs")}
	case "conditional":
		return &Conditional{NodeBase: o.base(), Cond: o.expr("cond"), Then: o.expr("then"), Else: o.expr("else")}
	case "assignment":
		a := &Assignment{NodeBase: o.base(), Target: o.expr("target"), Value: o.expr("value")}
		if op := o.str("op"); op != "=" && op != "" {
			binOp, ok := binaryOps[strings.TrimSuffix(op, "=")]
			if !ok {
				d.fail(errors.Errorf("unknown op `%s`", op), "`assignment`")
			}

			a.Compound = true
			a.Op = binOp
		}

		return a
	case "comma":
		return &Comma{NodeBase: o.base(), Exprs: o.exprs("exprs")}
	case "builtin_offsetof":
		bo := &BuiltinOffsetof{NodeBase: o.base(), Type: o.typeName("type")}
		for _, item := range o.list("path") {
			sobj := d.object(item, "offsetof step")
			if sobj == nil {
				continue
			}

			bo.Path = append(bo.Path, &OffsetofStep{Member: sobj.str("member"), Index: sobj.expr("index")})
		}

		return bo
	}

	return nil
}
