package statemachine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroup(t *testing.T) {
	a := newHarness(t, WithName("a"))
	b := newHarness(t, WithName("b"))

	g := NewGroup()
	require.NoError(t, g.AddMachine(a.m))
	require.NoError(t, g.AddMachine(b.m))
	assert.Equal(t, 2, g.Count())

	// 同名注册失败，保留已有的状态机
	dup := newHarness(t, WithName("a"))
	assert.ErrorIs(t, g.AddMachine(dup.m), ErrMachineExists)
	assert.Equal(t, 2, g.Count())
	assert.Equal(t, []string{"a", "b"}, g.Names())
	assert.Equal(t, map[string]string{"a": "", "b": ""}, g.States())

	got, ok := g.GetMachine("a")
	require.True(t, ok)
	assert.Same(t, a.m, got)

	a.start(t)
	err := g.RaiseEvent("missing", NewEvent("evt1", nil))
	assert.ErrorIs(t, err, ErrMachineNotFound)

	results := g.RaiseAll(NewEvent("evt1", nil))
	assert.NoError(t, results["a"])
	assert.ErrorIs(t, results["b"], ErrNotStarted)
	wait(t, a.succeed)
	wait(t, a.records)

	states := g.States()
	assert.Equal(t, "/root/S1/S1_1", states["a"])
	assert.Equal(t, "", states["b"])

	require.NoError(t, g.RaiseEvent("a", NewEvent("evt2", nil)))
	expectState(t, wait(t, a.succeed), a.s12)
	wait(t, a.records)

	stopped := g.StopAll()
	assert.Len(t, stopped, 1)
	assert.NoError(t, stopped["a"])
	assert.False(t, a.m.IsStarted())

	g.RemoveMachine("b")
	assert.Equal(t, []string{"a"}, g.Names())
}
