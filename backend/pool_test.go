package backend

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type fakePool struct {
	resets int
}

func (p *fakePool) Reset() { p.resets++ }

type fakeFence struct{ signaled bool }

func (f *fakeFence) Signaled() bool { return f.signaled }
func (f *fakeFence) Wait()          { f.signaled = true }

func TestFreeListAcquireConstructsWhenEmpty(t *testing.T) {
	n := 0
	fl := NewFreeList(func() *fakePool { n++; return &fakePool{} })
	p1 := fl.Acquire()
	p2 := fl.Acquire()
	require.NotSame(t, p1, p2)
	require.Equal(t, 2, n)
}

func TestFreeListReleaseIsGatedOnFence(t *testing.T) {
	fl := NewFreeList(func() *fakePool { return &fakePool{} })
	p := fl.Acquire()
	fence := &fakeFence{}
	fl.Release(p, fence)

	fl.Reclaim()
	require.Equal(t, 0, fl.Len(), "must not reuse before the fence signals")
	require.Equal(t, 1, fl.Pending())

	fence.signaled = true
	fl.Reclaim()
	require.Equal(t, 1, fl.Len())
	require.Equal(t, 0, fl.Pending())
	require.Equal(t, 1, p.resets)
}

func TestFreeListReusesReclaimedObject(t *testing.T) {
	n := 0
	fl := NewFreeList(func() *fakePool { n++; return &fakePool{} })
	p := fl.Acquire()
	fence := &fakeFence{signaled: true}
	fl.Release(p, fence)
	fl.Reclaim()

	got := fl.Acquire()
	require.Same(t, p, got)
	require.Equal(t, 1, n)
}
