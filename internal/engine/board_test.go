package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoard_InsertAtTop(t *testing.T) {
	b := NewBoard(New(newGatedDoer()))
	first := newSpec("http://example.com/1")
	second := newSpec("http://example.com/2")

	b.Insert(first)
	b.Insert(second)

	entries := b.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, second.ID(), entries[0].Spec.ID())
	assert.Equal(t, first.ID(), entries[1].Spec.ID())
	assert.Equal(t, second.ID(), b.Active().Spec.ID())

	// re-inserting only selects
	b.Insert(first)
	assert.Len(t, b.Entries(), 2)
	assert.Equal(t, first.ID(), b.Active().Spec.ID())
}

func TestBoard_Select(t *testing.T) {
	b := NewBoard(New(newGatedDoer()))
	spec := newSpec("http://example.com")
	b.Insert(spec)
	b.Insert(newSpec("http://example.com/other"))

	require.NoError(t, b.Select(spec.ID()))
	assert.Equal(t, spec.ID(), b.Active().Spec.ID())
	assert.Error(t, b.Select("missing"))
}

func TestBoard_TickReportsCompletions(t *testing.T) {
	doer := newGatedDoer()
	b := NewBoard(New(doer))
	a := b.Insert(newSpec("http://example.com/a"))
	c := b.Insert(newSpec("http://example.com/c"))

	require.NoError(t, b.Send(context.Background(), a.Spec.ID()))
	require.NoError(t, b.Send(context.Background(), c.Spec.ID()))
	assert.Empty(t, b.Tick())

	doneA, doneC := a.Lifecycle.Done(), c.Lifecycle.Done()
	close(doer.release)
	waitDone(t, doneA)
	waitDone(t, doneC)

	completed := b.Tick()
	assert.Len(t, completed, 2)
	assert.Empty(t, b.Tick())
	assert.Equal(t, Completed, a.Lifecycle.State())
	assert.Equal(t, Completed, c.Lifecycle.State())
}

func TestBoard_RemoveCancelsPending(t *testing.T) {
	doer := newGatedDoer()
	defer close(doer.release)
	b := NewBoard(New(doer))
	entry := b.Insert(newSpec("http://example.com"))

	require.NoError(t, b.Send(context.Background(), entry.Spec.ID()))
	assert.True(t, b.Remove(entry.Spec.ID()))

	assert.Equal(t, Idle, entry.Lifecycle.State())
	assert.Nil(t, b.Active())
	assert.Empty(t, b.Entries())
	assert.False(t, b.Remove(entry.Spec.ID()))
	assert.Error(t, b.Send(context.Background(), entry.Spec.ID()))
}

func TestBoard_Clear(t *testing.T) {
	b := NewBoard(New(newGatedDoer()))
	b.Insert(newSpec("http://example.com/1"))
	b.Insert(newSpec("http://example.com/2"))

	b.Clear()
	assert.Empty(t, b.Entries())
	assert.Nil(t, b.Active())
}
