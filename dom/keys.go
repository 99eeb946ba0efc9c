package dom

// Key describes a physical key by its platform code.
type Key struct {
	Code    string // KeyboardEvent.code, e.g. "ArrowRight"
	Key     string // KeyboardEvent.key for an unshifted US layout
	KeyCode uint32 // legacy KeyboardEvent.keyCode
}

var keyTable = map[string]Key{
	"ArrowLeft":  {Code: "ArrowLeft", Key: "ArrowLeft", KeyCode: 37},
	"ArrowUp":    {Code: "ArrowUp", Key: "ArrowUp", KeyCode: 38},
	"ArrowRight": {Code: "ArrowRight", Key: "ArrowRight", KeyCode: 39},
	"ArrowDown":  {Code: "ArrowDown", Key: "ArrowDown", KeyCode: 40},
	"Space":      {Code: "Space", Key: " ", KeyCode: 32},
	"Enter":      {Code: "Enter", Key: "Enter", KeyCode: 13},
	"Escape":     {Code: "Escape", Key: "Escape", KeyCode: 27},
	"Tab":        {Code: "Tab", Key: "Tab", KeyCode: 9},
	"Backspace":  {Code: "Backspace", Key: "Backspace", KeyCode: 8},
	"ShiftLeft":  {Code: "ShiftLeft", Key: "Shift", KeyCode: 16},
	"ShiftRight": {Code: "ShiftRight", Key: "Shift", KeyCode: 16},
}

func init() {
	for c := 'A'; c <= 'Z'; c++ {
		code := "Key" + string(c)
		keyTable[code] = Key{Code: code, Key: string(c + ('a' - 'A')), KeyCode: uint32(c)}
	}
	for c := '0'; c <= '9'; c++ {
		code := "Digit" + string(c)
		keyTable[code] = Key{Code: code, Key: string(c), KeyCode: uint32(c)}
	}
}

// LookupKey returns the key for a platform code.
func LookupKey(code string) (Key, bool) {
	k, ok := keyTable[code]
	return k, ok
}

// KeyboardEvent builds a keyboard event for code. Unknown codes still produce
// an event with Key equal to the code and a zero KeyCode.
func KeyboardEvent(t EventType, code string) Event {
	ev := Event{Type: t, Code: code, Key: code}
	if k, ok := LookupKey(code); ok {
		ev.Key = k.Key
		ev.KeyCode = k.KeyCode
	}
	return ev
}
