package report

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRaiseFormatsMessage(t *testing.T) {
	span := &TextSpan{StartLine: 2, StartCol: 4, EndLine: 2, EndCol: 9}
	err := Raise(NotConstant, span, "expected %s", "an integer")

	assert.Equal(t, "expected an integer", err.Error())
	assert.Equal(t, NotConstant, err.Kind)
	assert.Equal(t, "3:5", err.Span.String())
}

func TestIsKindThroughWrapping(t *testing.T) {
	err := errors.Wrap(Raise(NotFound, nil, "unknown identifier"), "resolving x")

	assert.True(t, IsKind(err, NotFound))
	assert.False(t, IsKind(err, MalformedArgument))
	assert.False(t, IsKind(errors.New("plain"), NotFound))
}

func TestWithSpanKeepsExistingSpan(t *testing.T) {
	first := &TextSpan{StartLine: 1}
	second := &TextSpan{StartLine: 7}

	err := WithSpan(Raise(AlreadyExists, nil, "dup"), second)
	var cerr *CompileError
	require.True(t, errors.As(err, &cerr))
	assert.Equal(t, second, cerr.Span)

	err = WithSpan(Raise(AlreadyExists, first, "dup"), second)
	require.True(t, errors.As(err, &cerr))
	assert.Equal(t, first, cerr.Span)
}

func TestAssertPanicsWithICE(t *testing.T) {
	assert.NotPanics(t, func() { Assert(true, "fine") })

	defer func() {
		x := recover()
		ice, ok := x.(*ICE)
		require.True(t, ok)
		assert.Equal(t, "internal compiler error: bad 42", ice.Error())
	}()

	Assert(false, "bad %d", 42)
}

func TestDiagnosticsAccumulate(t *testing.T) {
	var d Diagnostics
	assert.False(t, d.Any())

	d.Add(nil)
	d.Add(Raise(NotConstant, nil, "a"))
	d.Add(errors.Wrap(Raise(NotConstant, nil, "b"), "ctx"))
	d.Add(errors.New("c"))

	assert.True(t, d.Any())
	assert.Len(t, d.Errors, 3)
	assert.Equal(t, 2, d.Count(NotConstant))
	assert.Equal(t, 1, d.Count(MalformedArgument))
}

func TestDiagnosticsWarnings(t *testing.T) {
	var d Diagnostics
	span := &TextSpan{StartLine: 3, StartCol: 1, EndLine: 3, EndCol: 6}

	d.Warn(span, "duplicate `%s`", "const")
	assert.False(t, d.Any())
	require.Len(t, d.Warnings, 1)
	assert.Equal(t, "duplicate `const`", d.Warnings[0].Message)
	assert.Same(t, span, d.Warnings[0].Span)
}

func TestSpanOver(t *testing.T) {
	a := &TextSpan{StartLine: 1, StartCol: 2, EndLine: 1, EndCol: 3}
	b := &TextSpan{StartLine: 4, StartCol: 0, EndLine: 5, EndCol: 6}

	assert.Equal(t, &TextSpan{StartLine: 1, StartCol: 2, EndLine: 5, EndCol: 6}, NewSpanOver(a, b))
	assert.Equal(t, b, NewSpanOver(nil, b))
	assert.Equal(t, a, NewSpanOver(a, nil))
}
