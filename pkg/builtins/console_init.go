package builtins

import (
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"objmodel/pkg/vm"
)

// ConsoleInitializer installs console, which writes through the realm's
// logger instead of stdout.
type ConsoleInitializer struct{}

func (c *ConsoleInitializer) Name() string {
	return "console"
}

func (c *ConsoleInitializer) Priority() int {
	return PriorityConsole
}

func (c *ConsoleInitializer) InitRuntime(ctx *RuntimeContext) error {
	r := ctx.Realm
	consoleObj := r.NewObject()
	log := r.Logger().With().Str("source", "console").Logger()

	for _, m := range []struct {
		name  string
		level zerolog.Level
	}{
		{"log", zerolog.InfoLevel},
		{"info", zerolog.InfoLevel},
		{"debug", zerolog.DebugLevel},
		{"warn", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
	} {
		level := m.level
		defineMethod(r, consoleObj, m.name, 0, func(r *vm.Realm, call vm.FunctionCall) (vm.Value, error) {
			log.WithLevel(level).Msg(formatConsoleArgs(r, call.Args))
			return vm.Undefined, nil
		})
	}

	counters := make(map[string]int)
	counterLabel := func(r *vm.Realm, call vm.FunctionCall) (string, error) {
		if arg := call.Argument(0); !arg.IsUndefined() {
			return r.ToString(arg)
		}
		return "default", nil
	}
	defineMethod(r, consoleObj, "count", 0, func(r *vm.Realm, call vm.FunctionCall) (vm.Value, error) {
		label, err := counterLabel(r, call)
		if err != nil {
			return vm.Undefined, err
		}
		counters[label]++
		log.Info().Msg(label + ": " + strconv.Itoa(counters[label]))
		return vm.Undefined, nil
	})
	defineMethod(r, consoleObj, "countReset", 0, func(r *vm.Realm, call vm.FunctionCall) (vm.Value, error) {
		label, err := counterLabel(r, call)
		if err != nil {
			return vm.Undefined, err
		}
		delete(counters, label)
		return vm.Undefined, nil
	})

	return ctx.DefineGlobal("console", consoleObj.Value())
}

// formatConsoleArgs joins arguments with spaces. Strings print raw, anything
// else in its inspected form.
func formatConsoleArgs(r *vm.Realm, args []vm.Value) string {
	parts := make([]string, len(args))
	for i, arg := range args {
		if arg.IsString() {
			parts[i] = arg.AsString()
		} else {
			parts[i] = r.Inspect(arg)
		}
	}
	return strings.Join(parts, " ")
}
