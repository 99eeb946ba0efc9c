package loader

import (
	"fmt"
	"strings"

	"github.com/tetratelabs/wazero/api"
	"go.bytecodealliance.org/wit"

	"github.com/wippyai/keybridge/errors"
)

// Key phases passed to the guest's key_event export.
const (
	PhaseKeyDown uint32 = 0
	PhaseKeyUp   uint32 = 1
)

// guestFunc declares an export the bridge calls, in WIT terms.
type guestFunc struct {
	name     string
	params   []wit.Type
	results  []wit.Type
	required bool
}

// Guest interface:
//
//	key-event: func(phase: u32, key-code: u32)
//	init: func()
var (
	keyEventExport = guestFunc{
		name:     "key_event",
		params:   []wit.Type{wit.U32{}, wit.U32{}},
		required: true,
	}
	initExport = guestFunc{
		name: "init",
	}
)

// lower maps a WIT primitive to its flat core wasm type.
func lower(t wit.Type) (api.ValueType, error) {
	switch t.(type) {
	case wit.Bool, wit.U8, wit.S8, wit.U16, wit.S16, wit.U32, wit.S32, wit.Char:
		return api.ValueTypeI32, nil
	case wit.U64, wit.S64:
		return api.ValueTypeI64, nil
	case wit.F32:
		return api.ValueTypeF32, nil
	case wit.F64:
		return api.ValueTypeF64, nil
	default:
		return 0, errors.New(errors.PhaseLoad, errors.KindInvalidInput).
			Value(t).
			Detail("%T has no flat core type", t).
			Build()
	}
}

func lowerAll(ts []wit.Type) ([]api.ValueType, error) {
	out := make([]api.ValueType, 0, len(ts))
	for _, t := range ts {
		vt, err := lower(t)
		if err != nil {
			return nil, err
		}
		out = append(out, vt)
	}
	return out, nil
}

func signature(params, results []api.ValueType) string {
	names := func(vs []api.ValueType) string {
		parts := make([]string, len(vs))
		for i, v := range vs {
			parts[i] = api.ValueTypeName(v)
		}
		return "(" + strings.Join(parts, ", ") + ")"
	}
	return fmt.Sprintf("%s -> %s", names(params), names(results))
}

// check verifies an export against its declaration. A missing optional export
// returns (false, nil).
func (g guestFunc) check(exports map[string]api.FunctionDefinition) (bool, error) {
	def, ok := exports[g.name]
	if !ok {
		if g.required {
			return false, errors.MissingExport(g.name)
		}
		return false, nil
	}

	wantParams, err := lowerAll(g.params)
	if err != nil {
		return false, err
	}
	wantResults, err := lowerAll(g.results)
	if err != nil {
		return false, err
	}

	want := signature(wantParams, wantResults)
	got := signature(def.ParamTypes(), def.ResultTypes())
	if want != got {
		return false, errors.SignatureMismatch(g.name, want, got)
	}
	return true, nil
}
