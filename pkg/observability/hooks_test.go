package observability

import (
	"context"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	p := NoopPipelineHooks{}
	p.OnLoadStart(ctx, "hello.py")
	p.OnLoadComplete(ctx, "hello.py", 17, time.Second, nil)
	p.OnBuildComplete(ctx, 17, 16, time.Millisecond)
	p.OnLayoutStart(ctx, 17)
	p.OnLayoutComplete(ctx, time.Second, nil)
	p.OnRenderStart(ctx, "static")
	p.OnRenderComplete(ctx, "static", 2048, time.Second, nil)

	h := NoopHTTPHooks{}
	h.OnRequest(ctx, "POST", "/render")
	h.OnResponse(ctx, "POST", "/render", 200, time.Second)
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Pipeline() should return NoopPipelineHooks by default")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() should return NoopHTTPHooks by default")
	}

	custom := &recordingHooks{}
	SetPipelineHooks(custom)
	if Pipeline() != custom {
		t.Error("SetPipelineHooks should set custom hooks")
	}

	SetPipelineHooks(nil)
	if Pipeline() != custom {
		t.Error("SetPipelineHooks(nil) should keep the current hooks")
	}

	Reset()
	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Reset() should restore NoopPipelineHooks")
	}
}

func TestCustomHooksReceiveEvents(t *testing.T) {
	t.Cleanup(Reset)
	custom := &recordingHooks{}
	SetPipelineHooks(custom)

	Pipeline().OnLoadStart(context.Background(), "a.py")
	Pipeline().OnRenderStart(context.Background(), "interactive")

	if len(custom.events) != 2 || custom.events[0] != "load a.py" || custom.events[1] != "render interactive" {
		t.Errorf("events = %v", custom.events)
	}
}

type recordingHooks struct {
	NoopPipelineHooks
	events []string
}

func (r *recordingHooks) OnLoadStart(_ context.Context, ref string) {
	r.events = append(r.events, "load "+ref)
}

func (r *recordingHooks) OnRenderStart(_ context.Context, plotter string) {
	r.events = append(r.events, "render "+plotter)
}
