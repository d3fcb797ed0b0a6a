package builtins

import (
	"objmodel/pkg/vm"
)

// BuiltinInitializer is implemented by each builtin module
type BuiltinInitializer interface {
	// Name returns the module name (e.g., "Object", "Reflect")
	Name() string

	// Priority returns initialization order (lower = earlier)
	Priority() int

	// InitRuntime installs the module's values into the realm
	InitRuntime(ctx *RuntimeContext) error
}

// RuntimeContext provides everything needed for runtime initialization
type RuntimeContext struct {
	// The realm being populated
	Realm *vm.Realm

	// Define a global value
	DefineGlobal func(name string, value vm.Value) error
}

// Priority constants for initialization order
const (
	PriorityObject   = 0   // Object must be first (base prototype)
	PriorityFunction = 1   // Function second (inherits from Object)
	PriorityArray    = 3   // Array third
	PriorityGlobals  = 10  // Global constants
	PriorityError    = 20  // Error constructors
	PriorityReflect  = 30  // Reflect namespace
	PriorityString   = 40  // Primitive wrappers
	PriorityBoolean  = 41
	PriorityNumber   = 42
	PrioritySymbol   = 43
	PriorityJSON     = 101 // JSON object
	PriorityConsole  = 102
)
