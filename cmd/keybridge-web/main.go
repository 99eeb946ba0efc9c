//go:build js && wasm

// Command keybridge-web is the in-page bridge. Build with GOOS=js GOARCH=wasm
// and load it next to the page that holds the canvas and the control buttons.
package main

import (
	"context"
	"fmt"
	"os"
	"syscall/js"

	"go.uber.org/zap"

	"github.com/wippyai/keybridge/bridge"
	"github.com/wippyai/keybridge/dom/jsdom"
	"github.com/wippyai/keybridge/logging"
)

const defaultModulePath = "../pkg/index.js"

func main() {
	log, err := logging.New(logging.Config{Level: "info", Format: "console"})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	logging.Install(log)

	doc, err := jsdom.New()
	if err != nil {
		log.Fatal("no document", zap.Error(err))
	}

	b, err := bridge.New(doc, bridge.Options{
		Loader:     jsdom.ImportLoader{},
		ModulePath: modulePath(),
	})
	if err != nil {
		// without a surface nothing can work
		log.Fatal("bridge init failed", zap.Error(err))
	}
	b.Start(context.Background())

	// listeners live as long as the page
	select {}
}

// modulePath reads window.keybridgeModule, falling back to the default.
func modulePath() string {
	v := js.Global().Get("keybridgeModule")
	if v.Type() == js.TypeString && v.String() != "" {
		return v.String()
	}
	return defaultModulePath
}
