package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/wippyai/keybridge/config"
	"github.com/wippyai/keybridge/dom"
)

// Exports key_event(i32, i32) with an empty body.
var idleGameWASM = []byte{
	0x00, 0x61, 0x73, 0x6d, // magic
	0x01, 0x00, 0x00, 0x00, // version
	0x01, 0x06, 0x01, 0x60, 0x02, 0x7f, 0x7f, 0x00, // type section: (i32, i32) -> ()
	0x03, 0x02, 0x01, 0x00, // func section
	0x07, 0x0d, 0x01, // export "key_event"
	0x09, 0x6b, 0x65, 0x79, 0x5f, 0x65, 0x76, 0x65, 0x6e, 0x74,
	0x00, 0x00,
	0x0a, 0x04, 0x01, 0x02, 0x00, 0x0b, // code: empty body
}

func newTestApp(t *testing.T, modulePath string) *app {
	t.Helper()

	fs := afero.NewMemMapFs()
	if err := afero.WriteFile(fs, "/pkg/game.wasm", idleGameWASM, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := config.Default()
	cfg.Module.Path = modulePath

	a, err := newApp(cfg, fs, zap.NewNop(), nil)
	if err != nil {
		t.Fatalf("newApp: %v", err)
	}
	t.Cleanup(func() { a.close(context.Background()) })
	return a
}

func keyLine(t dom.EventType, code string) string {
	return formatKey(dom.KeyboardEvent(t, code))
}

func assertInOrder(t *testing.T, out string, want ...string) {
	t.Helper()
	rest := out
	for _, w := range want {
		i := strings.Index(rest, w)
		if i < 0 {
			t.Fatalf("output missing %q (in order) in:\n%s", w, out)
		}
		rest = rest[i+len(w):]
	}
}

func TestRunScript(t *testing.T) {
	a := newTestApp(t, "/pkg/game.wasm")

	script := `
# stock controls
wait
tap jump
click advance
click advance
pointerdown sliding
blur
pointercancel sliding
status
`
	var out bytes.Buffer
	if err := runScript(context.Background(), a, strings.NewReader(script), &out); err != nil {
		t.Fatalf("runScript: %v", err)
	}

	got := out.String()
	assertInOrder(t, got,
		"module: loaded",
		keyLine(dom.KeyDown, "Space"),
		keyLine(dom.KeyUp, "Space"),
		keyLine(dom.KeyDown, "ArrowRight"),
		"error: line 6:",
		keyLine(dom.KeyDown, "ArrowDown"),
		keyLine(dom.KeyUp, "ArrowDown"),
		"advance",
		"removed",
	)
	if strings.Count(got, "ArrowRight") != 2 {
		// one key event plus the status line
		t.Errorf("one-shot fired more than once:\n%s", got)
	}
	if a.doc.ActiveElement() != "canvas" {
		t.Errorf("surface should hold focus after a gesture, got %q", a.doc.ActiveElement())
	}
}

func TestRunScript_LoadFailure(t *testing.T) {
	a := newTestApp(t, "/pkg/missing.wasm")

	var out bytes.Buffer
	err := runScript(context.Background(), a, strings.NewReader("wait\ntap jump\n"), &out)
	if err != nil {
		t.Fatalf("runScript: %v", err)
	}

	assertInOrder(t, out.String(),
		"module: failed:",
		keyLine(dom.KeyDown, "Space"),
		keyLine(dom.KeyUp, "Space"),
	)
}

func TestRunScript_BadCommands(t *testing.T) {
	a := newTestApp(t, "/pkg/game.wasm")

	script := "tap\nkeydown jump\ntap nowhere\n"
	var out bytes.Buffer
	if err := runScript(context.Background(), a, strings.NewReader(script), &out); err != nil {
		t.Fatalf("runScript: %v", err)
	}

	got := out.String()
	for _, want := range []string{"error: line 1: usage", "error: line 2:", "error: line 3:"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
	if lines := strings.Count(got, "\n"); lines != 3 {
		t.Errorf("expected only the 3 error lines, got %d:\n%s", lines, got)
	}
}

func TestEventLog(t *testing.T) {
	l := newEventLog(2)
	l.add("a")
	l.add("b")
	l.add("c")

	got := l.snapshot()
	if len(got) != 2 || got[0] != "b" || got[1] != "c" {
		t.Errorf("snapshot = %v, want [b c]", got)
	}
}
