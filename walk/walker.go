package walk

import (
	"csem/ast"
	"csem/report"
	"csem/sem"
	"csem/typing"
)

// Walker is responsible for walking syntax trees and performing semantic
// analysis on them: it resolves declarators into types, declares entities in
// its context, types expressions and evaluates constant expressions.
type Walker struct {
	// The context entities are declared in: the global context at file scope,
	// a local context inside a function body.
	ctx    Context
	global *GlobalContext
	local  *LocalContext

	// The diagnostics recorded for declarations and statements that failed.
	diags *report.Diagnostics

	// The function whose body is being analyzed: `nil` at file scope.
	function *sem.Function

	// The number of parameter lists enclosing the declarator being analyzed.
	// `[*]` array declarators are only valid inside one.
	prototypeDepth int
}

// NewWalker creates a walker declaring entities in the given context.
func NewWalker(ctx Context) *Walker {
	w := &Walker{ctx: ctx, global: ctx.Global(), diags: &report.Diagnostics{}}
	if lc, ok := ctx.(*LocalContext); ok {
		w.local = lc
	}

	return w
}

// Context returns the current context of the walker.
func (w *Walker) Context() Context {
	return w.ctx
}

// Diagnostics returns the errors recorded by the walker.
func (w *Walker) Diagnostics() *report.Diagnostics {
	return w.diags
}

// AnalyzeTranslationUnit analyzes every external declaration of a translation
// unit.  A failing declaration is recorded as a diagnostic and analysis
// continues with its siblings.
func (w *Walker) AnalyzeTranslationUnit(tu *ast.TranslationUnit) {
	for _, item := range tu.Items {
		w.diags.Add(report.WithSpan(w.AnalyzeNode(item), item.Span()))
	}

	w.completeTentativeArrays()
	tu.Props().Category = ast.CategoryTranslationUnit
}

// AnalyzeNode analyzes a single node: a declaration, a static assertion, a
// function definition, a statement, a type name or an expression.
func (w *Walker) AnalyzeNode(node ast.Node) error {
	switch v := node.(type) {
	case *ast.TranslationUnit:
		w.AnalyzeTranslationUnit(v)
		return nil
	case *ast.Declaration:
		return w.AnalyzeDeclaration(v)
	case *ast.StaticAssertion:
		return w.analyzeStaticAssertion(v)
	case *ast.FunctionDefinition:
		return w.AnalyzeFunctionDefinition(v)
	case *ast.TypeName:
		_, err := w.AnalyzeTypeName(v)
		return err
	case ast.Statement:
		if w.local == nil {
			return report.Raise(report.MalformedArgument, node.Span(), "statement outside of a function body")
		}

		return w.analyzeStatement(v)
	case ast.Expr:
		return w.AnalyzeExpr(v)
	default:
		report.Assert(false, "unexpected node %T", node)
		return nil
	}
}

// ResolveStruct resolves an incomplete structure or union type to the
// complete type visible under the same tag.
func (w *Walker) ResolveStruct(st *typing.StructType) (*typing.StructType, error) {
	if st.Tag != "" {
		if tag, err := w.ctx.ResolveTag(st.Tag); err == nil {
			if resolved, ok := tag.Type.(*typing.StructType); ok && resolved.Union == st.Union && resolved.Complete {
				return resolved, nil
			}
		}
	}

	return nil, report.Raise(report.NotFound, nil, "`%s` is not defined", st.Repr())
}

// sizeOf returns the size of a type using the walker as struct resolver.
func (w *Walker) sizeOf(typ typing.Type) (uint64, error) {
	return typing.SizeOf(w.ctx.Traits(), w, typ)
}

// alignOf returns the alignment of a type using the walker as struct resolver.
func (w *Walker) alignOf(typ typing.Type) (uint64, error) {
	return typing.AlignOf(w.ctx.Traits(), w, typ)
}

func (w *Walker) bundle() *typing.Bundle {
	return w.ctx.Bundle()
}

func (w *Walker) traits() *typing.Traits {
	return w.ctx.Traits()
}

// -----------------------------------------------------------------------------

// enterFunction switches the walker into a fresh local context for the body
// of a function.  The returned func restores the walker.
func (w *Walker) enterFunction(fn *sem.Function) func() {
	prevCtx, prevLocal, prevFunc := w.ctx, w.local, w.function

	w.local = NewLocalContext(w.global)
	w.ctx = w.local
	w.function = fn

	return func() {
		w.local.Free()
		w.ctx, w.local, w.function = prevCtx, prevLocal, prevFunc
	}
}

// pushBlock opens a nested block in the local context.  The returned func
// closes it again.
func (w *Walker) pushBlock() func() {
	w.local.PushBlock()
	return w.local.PopBlock
}

// completeTentativeArrays gives a length of one to file scope arrays defined
// without a length nor an initializer.
func (w *Walker) completeTentativeArrays() {
	for _, obj := range w.fileScopeObjects() {
		if !obj.Defined || obj.Initialized {
			continue
		}

		if at, ok := obj.Type.(*typing.ArrayType); ok && at.Boundary == typing.Unbounded {
			obj.Type = w.bundle().NewBoundedArray(at.Elem, 1, at.Qualification)
		}
	}
}

// fileScopeObjects returns the objects bound in the file scope in declaration
// order.
func (w *Walker) fileScopeObjects() []*sem.Object {
	var objects []*sem.Object
	for _, sid := range w.global.FileScope() {
		if obj, ok := sid.(*sem.Object); ok {
			objects = append(objects, obj)
		}
	}

	return objects
}
