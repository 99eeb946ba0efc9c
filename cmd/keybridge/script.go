package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/wippyai/keybridge/dom"
)

// runScript feeds gestures to the bridge from r, one command per line:
//
//	click|pointerdown|pointerup|pointercancel|tap <control-id>
//	blur    move focus away from the surface
//	wait    block until the module load finishes
//	status  print every control's state
//
// Blank lines and lines starting with '#' are skipped. Every key event the
// surface receives is written to w. A failing command is reported on w and
// the script continues.
func runScript(ctx context.Context, a *app, r io.Reader, w io.Writer) error {
	a.observeKeys(func(ev dom.Event) {
		fmt.Fprintln(w, formatKey(ev))
	})
	a.start(ctx)

	sc := bufio.NewScanner(r)
	for n := 1; sc.Scan(); n++ {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := runCommand(a, strings.Fields(line), w); err != nil {
			fmt.Fprintf(w, "error: line %d: %v\n", n, err)
		}
	}
	return sc.Err()
}

func runCommand(a *app, fields []string, w io.Writer) error {
	cmd := strings.ToLower(fields[0])

	switch cmd {
	case "blur":
		a.doc.Blur()
		return nil
	case "wait":
		task := a.bridge.LoadTask()
		if task == nil {
			return nil
		}
		if err := task.Err(); err != nil {
			fmt.Fprintf(w, "module: failed: %v\n", err)
		} else {
			fmt.Fprintln(w, "module: loaded")
		}
		return nil
	case "status":
		for _, st := range a.bridge.Controls() {
			fmt.Fprintf(w, "%-10s %-10s %-9s %s\n", st.ID, st.Code, st.Mode, st.State)
		}
		return nil
	}

	if len(fields) != 2 {
		return fmt.Errorf("usage: %s <control-id>", cmd)
	}
	id := fields[1]

	if cmd == "tap" {
		return a.bridge.Tap(id)
	}
	return a.bridge.Trigger(id, dom.EventType(cmd))
}
