// Package script defines typed Go stand-ins for the surface an embedded
// scripting runtime would bind against (spec section 6's Script surface).
// The runtime itself — the config language interpreter — is explicitly
// out of scope; this package is the boundary a future binding layer would
// sit behind, expressed as plain accessor methods rather than a live
// proxy object, per SPEC_FULL.md's re-architecture guidance.
package script

import (
	"fmt"

	"github.com/lectorhq/lector/internal/actions"
	"github.com/lectorhq/lector/internal/symbols"
)

// Options mirrors the script surface's o[key] table: validated
// getter/setter access to runtime options.
type Options struct {
	SpeechRate            float64
	SymbolLevel           symbols.Level
	AutoRead              bool
	StopSpeechOnFocusLoss bool
}

// OptionsTable wraps Options with setter validation, so an invalid value
// from script surfaces as an error back to the caller rather than
// silently corrupting state (spec section 7: "user" error kind).
type OptionsTable struct {
	opts *Options
}

// NewOptionsTable wraps opts for script-style access.
func NewOptionsTable(opts *Options) *OptionsTable { return &OptionsTable{opts: opts} }

// Get returns the current value of key, or an error if key is unknown.
func (t *OptionsTable) Get(key string) (interface{}, error) {
	switch key {
	case "speech_rate":
		return t.opts.SpeechRate, nil
	case "symbol_level":
		return t.opts.SymbolLevel.String(), nil
	case "auto_read":
		return t.opts.AutoRead, nil
	case "stop_speech_on_focus_loss":
		return t.opts.StopSpeechOnFocusLoss, nil
	default:
		return nil, fmt.Errorf("script: unknown option %q", key)
	}
}

// Set validates and assigns value to key, or returns an error the caller
// should surface as a failed assignment in the script.
func (t *OptionsTable) Set(key string, value interface{}) error {
	switch key {
	case "speech_rate":
		rate, ok := value.(float64)
		if !ok || rate <= 0 {
			return fmt.Errorf("script: speech_rate must be a positive number, got %v", value)
		}
		t.opts.SpeechRate = rate
	case "symbol_level":
		name, ok := value.(string)
		if !ok {
			return fmt.Errorf("script: symbol_level must be a string, got %v", value)
		}
		level, err := parseLevel(name)
		if err != nil {
			return err
		}
		t.opts.SymbolLevel = level
	case "auto_read":
		b, ok := value.(bool)
		if !ok {
			return fmt.Errorf("script: auto_read must be a boolean, got %v", value)
		}
		t.opts.AutoRead = b
	case "stop_speech_on_focus_loss":
		b, ok := value.(bool)
		if !ok {
			return fmt.Errorf("script: stop_speech_on_focus_loss must be a boolean, got %v", value)
		}
		t.opts.StopSpeechOnFocusLoss = b
	default:
		return fmt.Errorf("script: unknown option %q", key)
	}
	return nil
}

func parseLevel(name string) (symbols.Level, error) {
	switch name {
	case "none":
		return symbols.LevelNone, nil
	case "some":
		return symbols.LevelSome, nil
	case "most":
		return symbols.LevelMost, nil
	case "all":
		return symbols.LevelAll, nil
	case "character":
		return symbols.LevelCharacter, nil
	default:
		return 0, fmt.Errorf("script: invalid symbol_level %q", name)
	}
}

// SymbolTable wraps symbols.Table for the script surface's symbols[g]
// read/write/remove-on-nil access.
type SymbolTable struct {
	tbl *symbols.Table
}

// NewSymbolTable wraps tbl.
func NewSymbolTable(tbl *symbols.Table) *SymbolTable { return &SymbolTable{tbl: tbl} }

// Get returns g's record, if any.
func (t *SymbolTable) Get(g string) (symbols.Record, bool) { return t.tbl.Get(g) }

// Set assigns g's record.
func (t *SymbolTable) Set(g string, r symbols.Record) { t.tbl.Put(g, r) }

// Remove deletes g's record, the script surface's "assigning nil removes"
// semantics.
func (t *SymbolTable) Remove(g string) { t.tbl.Remove(g) }

// BindingTable wraps actions.Dispatcher for the script surface's
// bindings[key] read/write access in a given mode.
type BindingTable struct {
	disp *actions.Dispatcher
	mode actions.Mode
}

// NewBindingTable wraps disp's binding table for mode.
func NewBindingTable(disp *actions.Dispatcher, mode actions.Mode) *BindingTable {
	return &BindingTable{disp: disp, mode: mode}
}

// Get returns key's binding, if any.
func (t *BindingTable) Get(key string) (actions.Binding, bool) { return t.disp.Binding(t.mode, key) }

// Set assigns key's binding, accepting either a built-in action name or a
// user callable (the script surface's `{help, fn}` record), matching
// spec section 4.G's atomic single-map-write mutation. The action name is
// not checked against the built-in actions.
func (t *BindingTable) Set(key string, b actions.Binding) { t.disp.SetBinding(t.mode, key, b) }

// Remove deletes key's binding, the script surface's "assigning nil"
// analogue.
func (t *BindingTable) Remove(key string) { t.disp.RemoveBinding(t.mode, key) }

// Hooks are the writable callable slots the script surface exposes
// (spec section 6). Each is nil until script assigns it. The core does not
// call any of them: no other package reads a Hooks value.
type Hooks struct {
	OnStartup          func()
	OnShutdown         func()
	OnError            func(err error)
	OnScreenUpdate     func()
	OnLiveRead         func(text string) (rewritten string, suppress bool)
	OnSpeechStart      func(text string)
	OnSpeechEnd        func(text string)
	OnReviewCursorMove func(row, col int)
	OnModeChange       func(from, to actions.Mode)
	OnTableModeEnter   func(top, bottom, columns int, headerRow int)
	OnTableModeExit    func()
	OnClipboardChange  func(text string)
	OnKeyUnhandled     func(key string) bool
}

// API is the api.* surface: direct calls into built-in actions, keyed by
// name the same way bindings[key] = "name" resolves a built-in.
type API struct {
	disp *actions.Dispatcher
}

// NewAPI wraps disp.
func NewAPI(disp *actions.Dispatcher) *API { return &API{disp: disp} }

// Speak implements api.speak(text, interrupt).
func (a *API) Speak(text string, interrupt bool) {
	if a.disp.OnSpeak != nil {
		a.disp.OnSpeak(text, interrupt)
	}
}

// Call invokes a built-in action by name, the resolution a
// bindings[key]="name" string value also uses.
func (a *API) Call(name string) error {
	act := actions.Action(name)
	if !actions.IsBuiltin(act) {
		return fmt.Errorf("script: unknown built-in action %q", name)
	}
	a.disp.Run(act)
	return nil
}
