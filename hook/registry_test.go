package hook

import (
	"context"
	"errors"
	"testing"

	"github.com/xraph/tollgate/rules"
)

type recordingHook struct {
	name    string
	checks  int
	grants  int
	loaded  int
	failAll bool
}

func (h *recordingHook) Name() string { return h.name }

func (h *recordingHook) OnBeforeCheck(_ context.Context, _ any) error {
	h.checks++
	if h.failAll {
		return errors.New("boom")
	}
	return nil
}

func (h *recordingHook) OnGrantCreated(_ context.Context, _ *rules.Grant) error {
	h.grants++
	return nil
}

func (h *recordingHook) OnRulesetLoaded(_ context.Context, _ *rules.Snapshot) error {
	h.loaded++
	return nil
}

func TestRegistry_TypeCaching(t *testing.T) {
	r := NewRegistry(nil)
	h := &recordingHook{name: "recorder"}
	r.Register(h)

	ctx := context.Background()
	r.EmitBeforeCheck(ctx, nil)
	r.EmitGrantCreated(ctx, &rules.Grant{})
	r.EmitRulesetLoaded(ctx, &rules.Snapshot{})
	// The hook does not implement AfterCheck; this must be a silent no-op.
	r.EmitAfterCheck(ctx, nil, nil)

	if h.checks != 1 || h.grants != 1 || h.loaded != 1 {
		t.Fatalf("unexpected emit counts: checks=%d grants=%d loaded=%d", h.checks, h.grants, h.loaded)
	}
}

func TestRegistry_HookErrorsDoNotPropagate(t *testing.T) {
	r := NewRegistry(nil)
	failing := &recordingHook{name: "failing", failAll: true}
	second := &recordingHook{name: "second"}
	r.Register(failing)
	r.Register(second)

	// A failing hook must not stop later hooks from running.
	r.EmitBeforeCheck(context.Background(), nil)

	if failing.checks != 1 || second.checks != 1 {
		t.Fatalf("expected both hooks to run, got %d/%d", failing.checks, second.checks)
	}
}

func TestRegistry_Hooks(t *testing.T) {
	r := NewRegistry(nil)
	r.Register(&recordingHook{name: "a"})
	r.Register(&recordingHook{name: "b"})

	if len(r.Hooks()) != 2 {
		t.Fatalf("expected 2 hooks, got %d", len(r.Hooks()))
	}
}
