package testutil

import (
	"context"
	"errors"
	"testing"

	"github.com/kapeta/sdk-go-redis/component"
)

type fakeComponent struct {
	name     string
	events   *[]string
	state    string
	startErr error
	stopErr  error
}

func newFake(name string, events *[]string) *fakeComponent {
	return &fakeComponent{name: name, events: events}
}

func (f *fakeComponent) Name() string { return f.name }

func (f *fakeComponent) Start(context.Context) error {
	*f.events = append(*f.events, "start "+f.name)
	return f.startErr
}

func (f *fakeComponent) Stop(context.Context) error {
	*f.events = append(*f.events, "stop "+f.name)
	return f.stopErr
}

func (f *fakeComponent) Health(context.Context) component.Health {
	return component.Health{Name: f.name, Status: component.StatusHealthy}
}

func (f *fakeComponent) Reset(context.Context) error {
	f.state = ""
	return nil
}

func (f *fakeComponent) Snapshot(context.Context) (interface{}, error) {
	return f.state, nil
}

func (f *fakeComponent) Restore(_ context.Context, snap interface{}) error {
	s, ok := snap.(string)
	if !ok {
		return errors.New("bad snapshot")
	}
	f.state = s
	return nil
}

func TestSetup(t *testing.T) {
	var events []string
	c := newFake("a", &events)

	stop, err := Setup(context.Background(), c)
	if err != nil {
		t.Fatalf("Setup failed: %v", err)
	}
	if err := stop(); err != nil {
		t.Fatalf("stop failed: %v", err)
	}
	if len(events) != 2 || events[0] != "start a" || events[1] != "stop a" {
		t.Errorf("unexpected events: %v", events)
	}

	c.startErr = errors.New("boom")
	if _, err := Setup(context.Background(), c); err == nil {
		t.Error("expected Setup to fail")
	}
}

func TestTHelper(t *testing.T) {
	var events []string
	c := newFake("a", &events)

	t.Run("inner", func(t *testing.T) {
		h := T(t)
		h.Setup(c)

		c.state = "one"
		snap := h.Snapshot(c)
		c.state = "two"
		h.Restore(c, snap)
		if c.state != "one" {
			t.Errorf("state = %q, want %q", c.state, "one")
		}
		h.Reset(c)
		if c.state != "" {
			t.Errorf("state = %q after Reset", c.state)
		}
	})

	if len(events) != 2 || events[1] != "stop a" {
		t.Errorf("component should be stopped by cleanup, events: %v", events)
	}
}

func TestManager(t *testing.T) {
	var events []string
	m := NewManager(context.Background())
	m.Add(newFake("a", &events))
	m.Add(newFake("b", &events))

	if err := m.StartAll(); err != nil {
		t.Fatalf("StartAll failed: %v", err)
	}
	if err := m.ResetAll(); err != nil {
		t.Fatalf("ResetAll failed: %v", err)
	}
	if err := m.StopAll(); err != nil {
		t.Fatalf("StopAll failed: %v", err)
	}

	want := []string{"start a", "start b", "stop b", "stop a"}
	if len(events) != len(want) {
		t.Fatalf("events = %v, want %v", events, want)
	}
	for i := range want {
		if events[i] != want[i] {
			t.Errorf("events[%d] = %q, want %q", i, events[i], want[i])
		}
	}
}

func TestManager_StopAllJoinsErrors(t *testing.T) {
	var events []string
	a := newFake("a", &events)
	b := newFake("b", &events)
	a.stopErr = errors.New("a failed")
	b.stopErr = errors.New("b failed")

	m := NewManager(context.Background())
	m.Add(a)
	m.Add(b)

	err := m.StopAll()
	if !errors.Is(err, a.stopErr) || !errors.Is(err, b.stopErr) {
		t.Errorf("expected both stop errors, got %v", err)
	}
	if len(events) != 2 {
		t.Errorf("every component should be stopped, events: %v", events)
	}
}
