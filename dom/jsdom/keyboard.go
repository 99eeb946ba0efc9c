package jsdom

import "github.com/wippyai/keybridge/dom"

// keyboardInit is the KeyboardEventInit dictionary for ev. Browsers read only
// code and key from it; keyCode and which are ignored by the constructor.
func keyboardInit(ev dom.Event) map[string]any {
	return map[string]any{
		"code":       ev.Code,
		"key":        ev.Key,
		"bubbles":    true,
		"cancelable": true,
	}
}

// legacyKeyProps are read-only properties defined on the constructed event so
// listeners reading keyCode or which see the same key as code.
func legacyKeyProps(ev dom.Event) map[string]int {
	if ev.KeyCode == 0 {
		return nil
	}
	return map[string]int{
		"keyCode": int(ev.KeyCode),
		"which":   int(ev.KeyCode),
	}
}
