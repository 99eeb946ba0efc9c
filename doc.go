// Package keybridge turns on-screen control gestures into synthetic keyboard
// input for an embedded interactive module.
//
// The embedded module renders to a surface element and reads the keyboard the
// way it always does. The bridge sits next to it: each registered control
// element is mapped to a key code, and a gesture on the control focuses the
// surface and dispatches the key there.
//
// # Architecture Overview
//
//	keybridge/
//	├── dom/             Element and Document interfaces, in-memory document, key table
//	│   └── jsdom/       syscall/js implementation for the browser (js/wasm only)
//	├── bridge/          Control registry, focus, event synthesis, one-shot lifecycle
//	├── loader/          Fire-and-forget module load, wazero guest host
//	├── config/          viper configuration and validation
//	├── logging/         zap logger construction
//	├── errors/          Structured error types
//	└── cmd/
//	    ├── keybridge/     Terminal front end (bubbletea UI or stdin script)
//	    └── keybridge-web/ In-page bridge for GOOS=js GOARCH=wasm
//
// # Control Modes
//
// A one-shot control sends a single key-down on click, then unregisters its
// listener and removes its element. It can never fire again.
//
// A momentary control sends key-down on pointerdown and key-up on pointerup or
// pointercancel. It keeps no pressed state; overlapping presses are the
// embedded module's concern.
//
// # Quick Start
//
//	doc := dom.NewMemory()
//	canvas := doc.Append("canvas")
//	doc.Append("advance")
//	doc.Append("jump")
//	doc.Append("sliding")
//
//	b, err := bridge.New(doc, bridge.Options{
//	    Loader:     loader.NewWazero(canvas, nil),
//	    ModulePath: "pkg/game.wasm",
//	})
//	if err != nil {
//	    log.Fatal(err) // no surface
//	}
//	b.Start(ctx)
//
//	b.Trigger("jump", dom.PointerDown) // keydown Space on #canvas
//	b.Trigger("jump", dom.PointerUp)   // keyup Space on #canvas
//
// # Guest Interface
//
// Modules run by the wazero loader export
//
//	key_event(phase i32, key_code i32)
//
// with phase 0 for key-down and 1 for key-up, and optionally an init function
// called once after instantiation. The host namespace "keybridge" provides
// log(ptr, len i32) for writing a UTF-8 string from guest memory to the bridge
// log.
//
// # Logging
//
// Library packages log through zap and stay silent by default:
//
//	logger, _ := zap.NewDevelopment()
//	bridge.SetLogger(logger)
//	loader.SetLogger(logger)
//
// A failed module load is logged at error level and never stops the controls.
package keybridge
