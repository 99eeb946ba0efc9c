package errors

import (
	"errors"
	"strings"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name: "full error",
			err: &Error{
				Phase:   PhaseRegistry,
				Kind:    KindInvalidInput,
				Element: "jump",
				Detail:  "duplicate control id",
			},
			contains: []string{"[registry]", "invalid_input", "#jump", "duplicate control id"},
		},
		{
			name: "minimal error",
			err: &Error{
				Phase: PhaseFocus,
				Kind:  KindNotFound,
			},
			contains: []string{"[focus]", "not_found"},
		},
		{
			name: "error with cause",
			err: &Error{
				Phase:  PhaseLoad,
				Kind:   KindInstantiation,
				Detail: "instantiate module",
				Cause:  errors.New("underlying error"),
			},
			contains: []string{"[load]", "instantiation", "instantiate module", "caused by", "underlying error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, s := range tt.contains {
				if !strings.Contains(msg, s) {
					t.Errorf("error message %q does not contain %q", msg, s)
				}
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := &Error{
		Phase: PhaseLoad,
		Kind:  KindInvalidData,
		Cause: cause,
	}

	if !errors.Is(err.Unwrap(), cause) {
		t.Error("Unwrap did not return cause")
	}

	if !errors.Is(errors.Unwrap(err), cause) {
		t.Error("errors.Unwrap did not return cause")
	}
}

func TestError_Is(t *testing.T) {
	err := SurfaceMissing("canvas")

	if !err.Is(&Error{Phase: PhaseFocus, Kind: KindNotFound}) {
		t.Error("Is should match same phase and kind")
	}

	if err.Is(&Error{Phase: PhaseRegistry, Kind: KindNotFound}) {
		t.Error("Is should not match different phase")
	}

	if err.Is(&Error{Phase: PhaseFocus, Kind: KindInvalidInput}) {
		t.Error("Is should not match different kind")
	}

	target := &Error{Phase: PhaseFocus, Kind: KindNotFound}
	if !errors.Is(err, target) {
		t.Error("errors.Is should match")
	}
}

func TestBuilder(t *testing.T) {
	cause := errors.New("root")
	err := New(PhaseRegistry, KindInvalidInput).
		Element("advance").
		Value("sideways").
		Cause(cause).
		Detail("unknown mode %q", "sideways").
		Build()

	if err.Phase != PhaseRegistry {
		t.Errorf("Phase = %v, want %v", err.Phase, PhaseRegistry)
	}
	if err.Kind != KindInvalidInput {
		t.Errorf("Kind = %v, want %v", err.Kind, KindInvalidInput)
	}
	if err.Element != "advance" {
		t.Errorf("Element = %v, want 'advance'", err.Element)
	}
	if err.Value != "sideways" {
		t.Errorf("Value = %v, want 'sideways'", err.Value)
	}
	if !errors.Is(err.Cause, cause) {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}
	if err.Detail != `unknown mode "sideways"` {
		t.Errorf("Detail = %v", err.Detail)
	}
}

func TestConvenienceConstructors(t *testing.T) {
	t.Run("SurfaceMissing", func(t *testing.T) {
		err := SurfaceMissing("canvas")
		if err.Kind != KindNotFound || err.Phase != PhaseFocus {
			t.Errorf("got %v/%v", err.Phase, err.Kind)
		}
		if !strings.Contains(err.Error(), `"canvas"`) {
			t.Errorf("message should name the surface id: %s", err)
		}
	})

	t.Run("MissingExport", func(t *testing.T) {
		err := MissingExport("key_event")
		if err.Kind != KindMissingExport {
			t.Errorf("Kind = %v, want %v", err.Kind, KindMissingExport)
		}
	})

	t.Run("SignatureMismatch", func(t *testing.T) {
		err := SignatureMismatch("key_event", "(i32, i32)", "(i64)")
		if err.Kind != KindSignatureMismatch {
			t.Errorf("Kind = %v, want %v", err.Kind, KindSignatureMismatch)
		}
		if !strings.Contains(err.Detail, "(i64)") {
			t.Errorf("Detail = %v", err.Detail)
		}
	})

	t.Run("Panic", func(t *testing.T) {
		err := Panic(PhaseLoad, "boom", "")
		if err.Kind != KindPanic || err.Value != "boom" {
			t.Errorf("got %+v", err)
		}
	})

	t.Run("Instantiation", func(t *testing.T) {
		cause := errors.New("trap")
		err := Instantiation(cause)
		if !errors.Is(err, cause) {
			t.Error("cause should be reachable through errors.Is")
		}
	})
}

func TestMissingImportsError(t *testing.T) {
	tests := []struct {
		name string
		keys []string
		want string
	}{
		{"single", []string{"env#record"}, "[load] missing_import: env.record"},
		{"in order", []string{"env#record", "wbg#__wbindgen_throw", "env#now"},
			"[load] missing_import: env.record, wbg.__wbindgen_throw, env.now"},
		{"no separator", []string{"env"}, "[load] missing_import: env."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := MissingImports(tt.keys)
			if len(err.Imports) != len(tt.keys) {
				t.Fatalf("got %d imports, want %d", len(err.Imports), len(tt.keys))
			}
			if got := err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}

	t.Run("errors.Is", func(t *testing.T) {
		err := MissingImports([]string{"env#record"})
		if !errors.Is(err, &MissingImportsError{}) {
			t.Error("should match MissingImportsError")
		}
		if !errors.Is(err, &Error{Phase: PhaseLoad, Kind: KindMissingImport}) {
			t.Error("should match load/missing_import")
		}
		if errors.Is(err, &Error{Phase: PhaseLoad, Kind: KindNotFound}) {
			t.Error("should not match other kinds")
		}
	})
}
