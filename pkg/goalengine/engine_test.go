package goalengine

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func blockingProcedure() (*Script, chan struct{}) {
	release := make(chan struct{})
	return &Script{Steps: []Procedure{ProcedureFunc(func(ctx context.Context) error {
		select {
		case <-release:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})}}, release
}

func TestSubmitRunsGoalImmediatelyWhenNoConflict(t *testing.T) {
	e := New(nil)
	var ran bool
	var mu sync.Mutex

	g := &Goal{ID: 1, Procedure: ProcedureFunc(func(ctx context.Context) error {
		mu.Lock()
		ran = true
		mu.Unlock()
		return nil
	})}

	e.Submit(g)
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return ran
	}, time.Second, time.Millisecond)

	require.Eventually(t, func() bool { return !e.IsActive(1) }, time.Second, time.Millisecond)
}

func TestSubmitDefersExclusiveGoalUntilActiveCompletes(t *testing.T) {
	e := New(nil)
	proc, release := blockingProcedure()
	g1 := &Goal{ID: 1, Procedure: proc}
	e.Submit(g1)

	require.Eventually(t, func() bool { return e.IsActive(1) }, time.Second, time.Millisecond)

	var ran bool
	g2 := &Goal{ID: 2, ExclusiveGoalID: 1, Contention: Wait, Procedure: ProcedureFunc(func(ctx context.Context) error {
		ran = true
		return nil
	})}
	e.Submit(g2)

	assert.True(t, e.IsPending(2))
	assert.False(t, ran)

	close(release)

	require.Eventually(t, func() bool { return ran }, time.Second, time.Millisecond)
	require.Eventually(t, func() bool { return !e.IsPending(2) }, time.Second, time.Millisecond)
}

func TestSubmitCancelOthersTearsDownConflict(t *testing.T) {
	e := New(nil)
	proc, _ := blockingProcedure()
	g1 := &Goal{ID: 1, Procedure: proc}
	e.Submit(g1)
	require.Eventually(t, func() bool { return e.IsActive(1) }, time.Second, time.Millisecond)

	var ran bool
	g2 := &Goal{ID: 2, ExclusiveGoalID: 1, Contention: CancelOthers, Procedure: ProcedureFunc(func(ctx context.Context) error {
		ran = true
		return nil
	})}
	e.Submit(g2)

	require.Eventually(t, func() bool { return ran }, time.Second, time.Millisecond)
}

func TestConcurrentWithAllowsOverlap(t *testing.T) {
	e := New(nil)
	proc, release := blockingProcedure()
	defer close(release)

	g1 := &Goal{ID: 1, Procedure: proc}
	e.Submit(g1)
	require.Eventually(t, func() bool { return e.IsActive(1) }, time.Second, time.Millisecond)

	var ran bool
	g2 := &Goal{ID: 2, ExclusiveGoalID: 1, ConcurrentWith: []int{1}, Procedure: ProcedureFunc(func(ctx context.Context) error {
		ran = true
		return nil
	})}
	e.Submit(g2)

	require.Eventually(t, func() bool { return ran }, time.Second, time.Millisecond)
}

func TestOnCompleteReceivesError(t *testing.T) {
	e := New(nil)
	wantErr := errors.New("boom")
	done := make(chan error, 1)
	e.OnComplete(func(goal *Goal, err error) { done <- err })

	g := &Goal{ID: 1, Procedure: ProcedureFunc(func(ctx context.Context) error { return wantErr })}
	e.Submit(g)

	select {
	case err := <-done:
		assert.ErrorIs(t, err, wantErr)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for completion")
	}
}
