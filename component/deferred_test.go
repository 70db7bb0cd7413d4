package component

import (
	"context"
	stderrors "errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestDeferred_InitialState(t *testing.T) {
	d := NewDeferred[string]("cell")

	if d.Name() != "cell" {
		t.Errorf("expected name 'cell', got %q", d.Name())
	}
	if _, ok := d.Get(); ok {
		t.Error("expected empty cell before Initialize")
	}
	if d.State() != StatePending {
		t.Errorf("expected pending, got %s", d.State())
	}
	select {
	case <-d.Done():
		t.Error("Done should not be closed before Initialize")
	default:
	}
}

func TestDeferred_Initialize(t *testing.T) {
	d := NewDeferred[string]("cell")

	err := d.Initialize(context.Background(), func(context.Context) (string, error) {
		return "value", nil
	})
	if err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	got, ok := d.Get()
	if !ok || got != "value" {
		t.Fatalf("expected ready value, got %q ok=%v", got, ok)
	}
	if !d.IsReady() || d.State() != StateReady {
		t.Errorf("expected ready, got %s", d.State())
	}
	select {
	case <-d.Done():
	default:
		t.Error("Done should be closed after Initialize")
	}
}

func TestDeferred_SingleAttempt(t *testing.T) {
	d := NewDeferred[int]("cell")
	var calls int32

	init := func(context.Context) (int, error) {
		atomic.AddInt32(&calls, 1)
		return 1, nil
	}
	if err := d.Initialize(context.Background(), init); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	if err := d.Initialize(context.Background(), init); !stderrors.Is(err, ErrAlreadyInitialized) {
		t.Errorf("expected ErrAlreadyInitialized, got %v", err)
	}
	if atomic.LoadInt32(&calls) != 1 {
		t.Errorf("expected initializer called once, got %d", calls)
	}
}

func TestDeferred_ConcurrentInitialize(t *testing.T) {
	d := NewDeferred[int]("cell")
	var calls int32
	var wg sync.WaitGroup

	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = d.Initialize(context.Background(), func(context.Context) (int, error) {
				atomic.AddInt32(&calls, 1)
				time.Sleep(5 * time.Millisecond)
				return 7, nil
			})
		}()
	}
	wg.Wait()

	if calls != 1 {
		t.Errorf("expected exactly one initializer run, got %d", calls)
	}
	if v, ok := d.Get(); !ok || v != 7 {
		t.Errorf("expected value 7, got %d ok=%v", v, ok)
	}
}

func TestDeferred_NotVisibleWhileInitializing(t *testing.T) {
	d := NewDeferred[int]("cell")
	started := make(chan struct{})
	release := make(chan struct{})

	go d.Initialize(context.Background(), func(context.Context) (int, error) {
		close(started)
		<-release
		return 1, nil
	})

	<-started
	if _, ok := d.Get(); ok {
		t.Error("value must not be visible while initializing")
	}
	if d.State() != StateInitializing {
		t.Errorf("expected initializing, got %s", d.State())
	}
	close(release)
	<-d.Done()
}

func TestDeferred_FailureIsPermanent(t *testing.T) {
	d := NewDeferred[int]("cell")
	boom := stderrors.New("boom")

	err := d.Initialize(context.Background(), func(context.Context) (int, error) {
		return 0, boom
	})
	if !stderrors.Is(err, boom) {
		t.Fatalf("expected original error, got %v", err)
	}
	if d.State() != StateFailed || d.Err() != boom {
		t.Errorf("expected failed state with error, got %s / %v", d.State(), d.Err())
	}

	err = d.Initialize(context.Background(), func(context.Context) (int, error) { return 1, nil })
	if !stderrors.Is(err, ErrAlreadyInitialized) {
		t.Errorf("expected retry to be refused, got %v", err)
	}
	if d.IsReady() {
		t.Error("cell must stay empty after failure")
	}
}

func TestDeferred_Close(t *testing.T) {
	closed := ""
	d := NewDeferred[string]("cell").WithCloser(func(v string) error {
		closed = v
		return nil
	})

	d.Initialize(context.Background(), func(context.Context) (string, error) { return "conn", nil })
	if err := d.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if closed != "conn" {
		t.Errorf("expected closer to receive value, got %q", closed)
	}
	if d.IsReady() || d.State() != StateClosed {
		t.Errorf("expected closed state, got %s", d.State())
	}
}

func TestDeferred_ClosePending(t *testing.T) {
	d := NewDeferred[string]("cell").WithCloser(func(string) error {
		t.Error("closer must not run for a pending cell")
		return nil
	})

	if err := d.Close(); err != nil {
		t.Fatalf("Close on pending cell failed: %v", err)
	}
	if d.State() != StateClosed {
		t.Errorf("expected closed, got %s", d.State())
	}

	ran := false
	err := d.Initialize(context.Background(), func(context.Context) (string, error) {
		ran = true
		return "conn", nil
	})
	if !stderrors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}
	if ran {
		t.Error("initializer must not run on a closed cell")
	}
}

func TestDeferred_CloseWhileInitializing(t *testing.T) {
	var released []string
	d := NewDeferred[string]("cell").WithCloser(func(v string) error {
		released = append(released, v)
		return nil
	})
	started := make(chan struct{})
	release := make(chan struct{})
	result := make(chan error, 1)

	go func() {
		result <- d.Initialize(context.Background(), func(context.Context) (string, error) {
			close(started)
			<-release
			return "conn", nil
		})
	}()

	<-started
	if err := d.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	close(release)

	if err := <-result; !stderrors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
	if len(released) != 1 || released[0] != "conn" {
		t.Errorf("expected late value to be released, got %v", released)
	}
	if _, ok := d.Get(); ok {
		t.Error("late value must not be published after Close")
	}
	if d.State() != StateClosed {
		t.Errorf("expected closed, got %s", d.State())
	}
	select {
	case <-d.Done():
		t.Error("Done must not close for a closed cell")
	default:
	}
}

func TestDeferred_CloseWhileInitializingFailure(t *testing.T) {
	d := NewDeferred[int]("cell")
	started := make(chan struct{})
	release := make(chan struct{})
	result := make(chan error, 1)
	boom := stderrors.New("boom")

	go func() {
		result <- d.Initialize(context.Background(), func(context.Context) (int, error) {
			close(started)
			<-release
			return 0, boom
		})
	}()

	<-started
	_ = d.Close()
	close(release)

	err := <-result
	if !stderrors.Is(err, ErrClosed) || !stderrors.Is(err, boom) {
		t.Errorf("expected ErrClosed joined with cause, got %v", err)
	}
	if d.State() != StateClosed {
		t.Errorf("expected closed, got %s", d.State())
	}
}

func TestStateString(t *testing.T) {
	if StateReady.String() != "ready" || State(42).String() != "state(42)" {
		t.Error("unexpected state strings")
	}
}
