package observability

import (
	"context"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	r := NoopResolveHooks{}
	r.OnGroupStart(ctx, "install", "requirements/runtime_cuda.txt")
	r.OnGroupComplete(ctx, "install", 12, time.Millisecond, nil)
	r.OnFileRead(ctx, "requirements/runtime_cuda.txt", 12)
	r.OnInclude(ctx, "requirements_cuda.txt", "requirements/serve.txt", 1)
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()

	if _, ok := Resolve().(NoopResolveHooks); !ok {
		t.Error("Resolve() should return NoopResolveHooks by default")
	}

	custom := &testResolveHooks{}
	SetResolveHooks(custom)
	if Resolve() != custom {
		t.Error("SetResolveHooks should set custom hooks")
	}

	Reset()
	if _, ok := Resolve().(NoopResolveHooks); !ok {
		t.Error("Reset() should restore NoopResolveHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()

	custom := &testResolveHooks{}
	SetResolveHooks(custom)
	SetResolveHooks(nil)

	if Resolve() != custom {
		t.Error("SetResolveHooks(nil) should be ignored")
	}

	Reset()
}

type testResolveHooks struct{ NoopResolveHooks }
