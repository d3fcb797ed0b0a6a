package builtins

import (
	"fmt"
	"sort"

	"objmodel/pkg/vm"
)

// GetStandardInitializers returns all built-in initializers sorted by priority
func GetStandardInitializers() []BuiltinInitializer {
	initializers := []BuiltinInitializer{
		&ObjectInitializer{},
		&FunctionInitializer{},
		&ArrayInitializer{},
		&GlobalsInitializer{},
		&ErrorInitializer{},
		&ReflectInitializer{},
		&StringInitializer{},
		&BooleanInitializer{},
		&NumberInitializer{},
		&SymbolInitializer{},
		&JSONInitializer{},
		&ConsoleInitializer{},
	}

	// Sort by priority (lower numbers first)
	sort.SliceStable(initializers, func(i, j int) bool {
		return initializers[i].Priority() < initializers[j].Priority()
	})

	return initializers
}

// Install runs every standard initializer against r. Globals become
// writable, non-enumerable, configurable properties of the global object.
func Install(r *vm.Realm) error {
	log := r.Logger()
	ctx := &RuntimeContext{
		Realm: r,
		DefineGlobal: func(name string, value vm.Value) error {
			r.GlobalObject.SetOwnNonEnumerable(r, vm.StringKey(name), value)
			return nil
		},
	}
	for _, init := range GetStandardInitializers() {
		if err := init.InitRuntime(ctx); err != nil {
			return fmt.Errorf("builtins: initializing %s: %w", init.Name(), err)
		}
		log.Debug().Str("builtin", init.Name()).Int("priority", init.Priority()).Msg("builtin installed")
	}
	return nil
}

// NewRealm creates a realm with the standard built-ins installed.
func NewRealm(opts vm.Options) (*vm.Realm, error) {
	r := vm.NewRealm(opts)
	if err := Install(r); err != nil {
		return nil, err
	}
	return r, nil
}
