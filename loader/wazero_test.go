package loader

import (
	"context"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/spf13/afero"

	"github.com/wippyai/keybridge/dom"
	"github.com/wippyai/keybridge/errors"
)

// Game module: imports env.record(i32, i32) and exports key_event(phase, keyCode)
// which forwards both arguments to record.
var gameWASM = []byte{
	0x00, 0x61, 0x73, 0x6d, // magic
	0x01, 0x00, 0x00, 0x00, // version
	// Type section: (i32, i32) -> ()
	0x01, 0x06, 0x01, 0x60, 0x02, 0x7f, 0x7f, 0x00,
	// Import section: env.record func type 0
	0x02, 0x0e, 0x01,
	0x03, 0x65, 0x6e, 0x76,
	0x06, 0x72, 0x65, 0x63, 0x6f, 0x72, 0x64,
	0x00, 0x00,
	// Function section: func 1 uses type 0
	0x03, 0x02, 0x01, 0x00,
	// Export section: "key_event" -> func 1
	0x07, 0x0d, 0x01,
	0x09, 0x6b, 0x65, 0x79, 0x5f, 0x65, 0x76, 0x65, 0x6e, 0x74,
	0x00, 0x01,
	// Code section: local.get 0, local.get 1, call 0
	0x0a, 0x0a, 0x01, 0x08, 0x00, 0x20, 0x00, 0x20, 0x01, 0x10, 0x00, 0x0b,
}

// Same as gameWASM plus an "init" export that calls record(7, 0).
var gameWithInitWASM = []byte{
	0x00, 0x61, 0x73, 0x6d, // magic
	0x01, 0x00, 0x00, 0x00, // version
	// Type section: (i32, i32) -> (), () -> ()
	0x01, 0x09, 0x02, 0x60, 0x02, 0x7f, 0x7f, 0x00, 0x60, 0x00, 0x00,
	// Import section: env.record func type 0
	0x02, 0x0e, 0x01,
	0x03, 0x65, 0x6e, 0x76,
	0x06, 0x72, 0x65, 0x63, 0x6f, 0x72, 0x64,
	0x00, 0x00,
	// Function section: func 1 type 0, func 2 type 1
	0x03, 0x03, 0x02, 0x00, 0x01,
	// Export section: "key_event" -> func 1, "init" -> func 2
	0x07, 0x14, 0x02,
	0x09, 0x6b, 0x65, 0x79, 0x5f, 0x65, 0x76, 0x65, 0x6e, 0x74, 0x00, 0x01,
	0x04, 0x69, 0x6e, 0x69, 0x74, 0x00, 0x02,
	// Code section
	0x0a, 0x13, 0x02,
	0x08, 0x00, 0x20, 0x00, 0x20, 0x01, 0x10, 0x00, 0x0b,
	0x08, 0x00, 0x41, 0x07, 0x41, 0x00, 0x10, 0x00, 0x0b,
}

// Exports key_event with the wrong shape: () -> i32.
var badSignatureWASM = []byte{
	0x00, 0x61, 0x73, 0x6d, // magic
	0x01, 0x00, 0x00, 0x00, // version
	0x01, 0x05, 0x01, 0x60, 0x00, 0x01, 0x7f, // type section: () -> i32
	0x03, 0x02, 0x01, 0x00, // func section: 1 func of type 0
	0x07, 0x0d, 0x01, // export "key_event"
	0x09, 0x6b, 0x65, 0x79, 0x5f, 0x65, 0x76, 0x65, 0x6e, 0x74,
	0x00, 0x00,
	0x0a, 0x06, 0x01, 0x04, 0x00, 0x41, 0x2a, 0x0b, // code: return 42
}

// Minimal valid WASM module (no exports)
var minimalWASM = []byte{
	0x00, 0x61, 0x73, 0x6d, // magic
	0x01, 0x00, 0x00, 0x00, // version
}

type keyCall struct {
	phase, code uint32
}

type recorder struct {
	mu    sync.Mutex
	calls []keyCall
}

func (r *recorder) record(_ context.Context, phase, code uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, keyCall{phase, code})
}

func (r *recorder) snapshot() []keyCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]keyCall, len(r.calls))
	copy(out, r.calls)
	return out
}

func newGameLoader(t *testing.T, wasm []byte) (*Wazero, *dom.Node, *recorder) {
	t.Helper()

	fs := afero.NewMemMapFs()
	if err := afero.WriteFile(fs, "/pkg/game.wasm", wasm, 0o644); err != nil {
		t.Fatal(err)
	}

	doc := dom.NewMemory()
	canvas := doc.Append("canvas")

	w := NewWazero(canvas, &WazeroConfig{FS: fs})
	rec := &recorder{}
	if err := w.Hosts().RegisterFunc("env", "record", rec.record); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = w.Close(context.Background()) })
	return w, canvas, rec
}

func assertCalls(t *testing.T, got, want []keyCall) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("calls = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("call[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestWazero_ForwardsSurfaceKeys(t *testing.T) {
	ctx := context.Background()
	w, canvas, rec := newGameLoader(t, gameWASM)

	if err := w.Load(ctx, "/pkg/game.wasm"); err != nil {
		t.Fatalf("Load: %v", err)
	}

	canvas.DispatchEvent(dom.KeyboardEvent(dom.KeyDown, "Space"))
	canvas.DispatchEvent(dom.KeyboardEvent(dom.KeyUp, "Space"))
	canvas.DispatchEvent(dom.KeyboardEvent(dom.KeyDown, "ArrowRight"))

	assertCalls(t, rec.snapshot(), []keyCall{
		{PhaseKeyDown, 32},
		{PhaseKeyUp, 32},
		{PhaseKeyDown, 39},
	})
}

func TestWazero_CallsInit(t *testing.T) {
	ctx := context.Background()
	w, canvas, rec := newGameLoader(t, gameWithInitWASM)

	if err := w.Load(ctx, "/pkg/game.wasm"); err != nil {
		t.Fatalf("Load: %v", err)
	}
	canvas.DispatchEvent(dom.KeyboardEvent(dom.KeyUp, "ArrowDown"))

	assertCalls(t, rec.snapshot(), []keyCall{
		{7, 0},
		{PhaseKeyUp, 40},
	})
}

func TestWazero_EventsBeforeLoadAreNotSeen(t *testing.T) {
	ctx := context.Background()
	w, canvas, rec := newGameLoader(t, gameWASM)

	canvas.DispatchEvent(dom.KeyboardEvent(dom.KeyDown, "Space"))
	if err := w.Load(ctx, "/pkg/game.wasm"); err != nil {
		t.Fatalf("Load: %v", err)
	}
	canvas.DispatchEvent(dom.KeyboardEvent(dom.KeyUp, "Space"))

	assertCalls(t, rec.snapshot(), []keyCall{{PhaseKeyUp, 32}})
}

func TestWazero_CloseDetaches(t *testing.T) {
	ctx := context.Background()
	w, canvas, rec := newGameLoader(t, gameWASM)

	if err := w.Load(ctx, "/pkg/game.wasm"); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if canvas.ListenerCount(dom.KeyDown) != 1 || canvas.ListenerCount(dom.KeyUp) != 1 {
		t.Fatal("guest should listen for keydown and keyup")
	}
	if err := w.Close(ctx); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if canvas.ListenerCount(dom.KeyDown) != 0 {
		t.Error("Close should remove guest listeners")
	}

	canvas.DispatchEvent(dom.KeyboardEvent(dom.KeyDown, "Space"))
	if len(rec.snapshot()) != 0 {
		t.Error("closed guest should not receive events")
	}
}

func TestWazero_LoadErrors(t *testing.T) {
	tests := []struct {
		name   string
		wasm   []byte
		path   string
		record bool
		target error
	}{
		{
			name:   "missing file",
			wasm:   gameWASM,
			path:   "/pkg/absent.wasm",
			record: true,
			target: &errors.Error{Phase: errors.PhaseLoad, Kind: errors.KindInvalidData},
		},
		{
			name:   "not wasm",
			wasm:   []byte("export default {}"),
			path:   "/pkg/game.wasm",
			record: true,
			target: &errors.Error{Phase: errors.PhaseLoad, Kind: errors.KindInvalidData},
		},
		{
			name:   "no key_event export",
			wasm:   minimalWASM,
			path:   "/pkg/game.wasm",
			record: true,
			target: &errors.Error{Phase: errors.PhaseLoad, Kind: errors.KindMissingExport},
		},
		{
			name:   "wrong key_event signature",
			wasm:   badSignatureWASM,
			path:   "/pkg/game.wasm",
			record: true,
			target: &errors.Error{Phase: errors.PhaseLoad, Kind: errors.KindSignatureMismatch},
		},
		{
			name:   "unresolved import",
			wasm:   gameWASM,
			path:   "/pkg/game.wasm",
			record: false,
			target: &errors.MissingImportsError{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			if err := afero.WriteFile(fs, "/pkg/game.wasm", tt.wasm, 0o644); err != nil {
				t.Fatal(err)
			}
			doc := dom.NewMemory()
			canvas := doc.Append("canvas")
			w := NewWazero(canvas, &WazeroConfig{FS: fs})
			if tt.record {
				rec := &recorder{}
				_ = w.Hosts().RegisterFunc("env", "record", rec.record)
			}

			err := w.Load(context.Background(), tt.path)
			if err == nil {
				t.Fatal("expected error")
			}
			if !stderrors.Is(err, tt.target) {
				t.Errorf("err = %v, want %v", err, tt.target)
			}
			var missing *errors.MissingImportsError
			if stderrors.As(err, &missing) {
				if got := missing.Error(); got != "[load] missing_import: env.record" {
					t.Errorf("missing imports = %q", got)
				}
			}
			if canvas.ListenerCount(dom.KeyDown) != 0 {
				t.Error("failed load must not attach listeners")
			}
		})
	}
}

func TestWazero_LoadTwice(t *testing.T) {
	ctx := context.Background()
	w, _, _ := newGameLoader(t, gameWASM)

	if err := w.Load(ctx, "/pkg/game.wasm"); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := w.Load(ctx, "/pkg/game.wasm"); err == nil {
		t.Error("second Load should fail")
	}
}

func TestWazero_HTTPSource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/pkg/game.wasm" {
			http.NotFound(rw, r)
			return
		}
		rw.Header().Set("Content-Type", "application/wasm")
		_, _ = rw.Write(gameWASM)
	}))
	defer srv.Close()

	ctx := context.Background()
	w, canvas, rec := newGameLoader(t, nil)

	if err := w.Load(ctx, srv.URL+"/pkg/missing.wasm"); err == nil {
		t.Fatal("404 should fail the load")
	}
	if err := w.Load(ctx, srv.URL+"/pkg/game.wasm"); err != nil {
		t.Fatalf("Load: %v", err)
	}

	canvas.DispatchEvent(dom.KeyboardEvent(dom.KeyDown, "ArrowDown"))
	assertCalls(t, rec.snapshot(), []keyCall{{PhaseKeyDown, 40}})
}

func TestHostRegistry_RegisterFunc(t *testing.T) {
	r := NewHostRegistry()

	if !r.Has(HostModule, "log") {
		t.Error("keybridge.log should be pre-registered")
	}
	if err := r.RegisterFunc("", "x", func() {}); err == nil {
		t.Error("empty module should be rejected")
	}
	if err := r.RegisterFunc("env", "x", nil); err == nil {
		t.Error("nil func should be rejected")
	}
	if err := r.RegisterFunc("env", "now", func(context.Context) uint64 { return 0 }); err != nil {
		t.Fatalf("RegisterFunc: %v", err)
	}
	if !r.Has("env", "now") {
		t.Error("env.now should be registered")
	}
}
