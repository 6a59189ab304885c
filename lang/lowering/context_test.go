package lowering

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLabelContextAnonymousIDsGrowContinuously(t *testing.T) {
	var lc LabelContext
	a, b, c := lc.NewAnonymous(), lc.NewAnonymous(), lc.NewAnonymous()
	assert.Equal(t, uint32(0), a)
	assert.Equal(t, uint32(1), b)
	assert.Equal(t, uint32(2), c)
}

func TestLabelContextSetPositionWhenUndefined(t *testing.T) {
	var lc LabelContext
	a := lc.NewAnonymous()
	assert.NoError(t, lc.SetPosition(a, 101))
}

func TestLabelContextSetPositionWhenAlreadyDefined(t *testing.T) {
	var lc LabelContext
	a := lc.NewAnonymous()
	require.NoError(t, lc.SetPosition(a, 101))
	assert.Error(t, lc.SetPosition(a, 13))
}

func TestLabelContextResolveDefined(t *testing.T) {
	var lc LabelContext
	a := lc.NewAnonymous()
	require.NoError(t, lc.SetPosition(a, 42))

	pos, err := lc.Resolve(a)
	require.NoError(t, err)
	assert.Equal(t, uint32(42), pos)
}

func TestLabelContextResolveUndefined(t *testing.T) {
	var lc LabelContext
	a := lc.NewAnonymous()
	_, err := lc.Resolve(a)
	assert.Error(t, err)
}

func TestStackContextDefineAndResolveOnTop(t *testing.T) {
	var sc StackContext
	sc.PushAnonymous()
	require.NoError(t, sc.NameTopAnonymous("foo"))

	depth, ok := sc.Resolve("foo")
	require.True(t, ok)
	assert.Equal(t, uint16(0), depth)
}

func TestStackContextDefineAndResolveNotTop(t *testing.T) {
	var sc StackContext
	sc.PushAnonymous()
	require.NoError(t, sc.NameTopAnonymous("foo"))
	sc.PushAnonymous()
	require.NoError(t, sc.NameTopAnonymous("bar"))

	depth, ok := sc.Resolve("foo")
	require.True(t, ok)
	assert.Equal(t, uint16(1), depth)
}

func TestStackContextShadowingSimple(t *testing.T) {
	var sc StackContext
	sc.PushAnonymous()
	require.NoError(t, sc.NameTopAnonymous("foo"))
	sc.PushAnonymous()
	require.NoError(t, sc.NameTopAnonymous("foo"))

	depth, ok := sc.Resolve("foo")
	require.True(t, ok)
	assert.Equal(t, uint16(0), depth)
}

func TestStackContextCrossSubcontextShadowing(t *testing.T) {
	var sc StackContext
	sc.PushAnonymous()
	require.NoError(t, sc.NameTopAnonymous("foo"))
	sc.PushAnonymous()
	require.NoError(t, sc.NameTopAnonymous("bar"))

	outer := sc.NewSubcontext()

	sc.PushAnonymous()
	require.NoError(t, sc.NameTopAnonymous("foo"))
	depth, ok := sc.Resolve("foo")
	require.True(t, ok)
	assert.Equal(t, uint16(0), depth)

	sc.DropSubcontext(outer)
	depth, ok = sc.Resolve("foo")
	require.True(t, ok)
	assert.Equal(t, uint16(1), depth)
}

func TestStackContextPushAnonymousIncreasesDepth(t *testing.T) {
	var sc StackContext
	sc.PushAnonymous()
	require.NoError(t, sc.NameTopAnonymous("foo"))
	sc.PushAnonymous()

	depth, ok := sc.Resolve("foo")
	require.True(t, ok)
	assert.Equal(t, uint16(1), depth)
}

func TestStackContextDropTopAnonymousDecreasesDepth(t *testing.T) {
	var sc StackContext
	sc.PushAnonymous()
	require.NoError(t, sc.NameTopAnonymous("foo"))
	sc.PushAnonymous()

	require.NoError(t, sc.PopTopAnonymous())

	depth, ok := sc.Resolve("foo")
	require.True(t, ok)
	assert.Equal(t, uint16(0), depth)
}

func TestStackContextPopTopAnonymousFailsWhenNotAnonymous(t *testing.T) {
	var sc StackContext
	sc.PushAnonymous()
	require.NoError(t, sc.NameTopAnonymous("foo"))

	assert.Error(t, sc.PopTopAnonymous())
}

func TestStackContextPopTopAnonymousFailsWhenEmpty(t *testing.T) {
	var sc StackContext
	assert.Error(t, sc.PopTopAnonymous())
}

func TestStackContextNameTopAnonymousWorking(t *testing.T) {
	var sc StackContext
	sc.PushAnonymous()
	require.NoError(t, sc.NameTopAnonymous("foo"))

	depth, ok := sc.Resolve("foo")
	require.True(t, ok)
	assert.Equal(t, uint16(0), depth)
}

func TestStackContextNameTopAnonymousEmptyStack(t *testing.T) {
	var sc StackContext
	assert.Error(t, sc.NameTopAnonymous("foo"))
}

func TestStackContextNameTopAnonymousAlreadyNamed(t *testing.T) {
	var sc StackContext
	sc.PushAnonymous()
	require.NoError(t, sc.NameTopAnonymous("foo"))

	assert.Error(t, sc.NameTopAnonymous("bar"))
}
