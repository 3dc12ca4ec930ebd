package migrate

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// Rules holds the legacy-to-new name tables consumed by the pass
// catalogue. The tables are configuration data rather than embedded
// constants, so individual passes stay testable and the catalogue can be
// extended without code changes.
type Rules struct {
	// Marker is the decorator path whose functions become async.
	Marker string `toml:"marker"`

	// ReturnException is the exception class whose raise becomes a
	// return statement.
	ReturnException string `toml:"return-exception"`

	// UnwrapScheduler is the scheduler call dropped from around a
	// self-scheduling method call.
	UnwrapScheduler string `toml:"unwrap-scheduler"`

	// UnwrapMethod is the method whose calls schedule themselves and no
	// longer need the scheduler wrapper.
	UnwrapMethod string `toml:"unwrap-method"`

	// CallRenames maps bare legacy call names to their replacements.
	CallRenames map[string]string `toml:"call-renames"`

	// KeywordRenames maps a callee name to old-to-new keyword argument
	// names within its calls.
	KeywordRenames map[string]map[string]string `toml:"keyword-renames"`

	// KeywordRemovals maps a callee name to keyword arguments that no
	// longer exist and are dropped from its calls.
	KeywordRemovals map[string][]string `toml:"keyword-removals"`

	// RemovedAttributes maps attribute names that no longer exist to the
	// advisory text reported for them.
	RemovedAttributes map[string]string `toml:"removed-attributes"`

	// QualifiedNames maps bare symbols to the namespace that now holds
	// them.
	QualifiedNames map[string]string `toml:"qualified-names"`
}

// DefaultRules returns the cocotb 1.x to 2.x migration tables.
func DefaultRules() Rules {
	return Rules{
		Marker:          "cocotb.coroutine",
		ReturnException: "ReturnValue",
		UnwrapScheduler: "cocotb.start_soon",
		UnwrapMethod:    "start",
		CallRenames: map[string]string{
			"fork": "cocotb.start_soon",
		},
		KeywordRenames: map[string]map[string]string{
			"Clock": {"units": "unit"},
		},
		KeywordRemovals: map[string][]string{
			"start": {"cycles"},
		},
		RemovedAttributes: map[string]string{
			"frequency": "Clock.frequency was removed in cocotb 2.0 (manual fix required)",
		},
		QualifiedNames: map[string]string{
			"RisingEdge":   "cocotb.triggers",
			"FallingEdge":  "cocotb.triggers",
			"Edge":         "cocotb.triggers",
			"ClockCycles":  "cocotb.triggers",
			"Timer":        "cocotb.triggers",
			"Combine":      "cocotb.triggers",
			"First":        "cocotb.triggers",
			"ReadOnly":     "cocotb.triggers",
			"ReadWrite":    "cocotb.triggers",
			"NextTimeStep": "cocotb.triggers",
		},
	}
}

// LoadRules reads a TOML file of table overrides on top of the defaults.
func LoadRules(path string) (Rules, error) {
	r := DefaultRules()
	if _, err := toml.DecodeFile(path, &r); err != nil {
		return Rules{}, fmt.Errorf("load rules %s: %w", path, err)
	}
	return r, nil
}

// Catalogue returns the passes in their documented order. The order is a
// contract: later passes deliberately see earlier rewrites (a yield
// rewritten to await still qualifies its trigger call; a renamed fork can
// still be unwrapped), and the runner never loops the list.
func Catalogue(r Rules) []Pass {
	return []Pass{
		&CoroutinePass{Marker: r.Marker},
		&YieldPass{},
		&RaiseReturnPass{Exception: r.ReturnException},
		&CallRenamePass{Renames: r.CallRenames},
		&StartSoonUnwrapPass{Scheduler: r.UnwrapScheduler, Method: r.UnwrapMethod},
		&KeywordRenamePass{Renames: r.KeywordRenames},
		&KeywordRemovalPass{Removals: r.KeywordRemovals},
		&RemovedAttributePass{Attributes: r.RemovedAttributes},
		&QualifyPass{Names: r.QualifiedNames},
	}
}
