package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"

	"objmodel/pkg/builtins"
	"objmodel/pkg/config"
	"objmodel/pkg/errors"
	"objmodel/pkg/snapshot"
	"objmodel/pkg/vm"
)

func main() {
	// Define flags
	configFlag := flag.String("config", "", "Load realm limits and logging from a TOML file")
	logLevelFlag := flag.String("log-level", "", "Override the configured log level")
	snapshotFlag := flag.String("snapshot", "", "Write a CBOR snapshot of the loaded document to this file")
	restoreFlag := flag.String("restore", "", "Load the document from a CBOR snapshot instead of JSON")
	statsFlag := flag.Bool("stats", false, "Show shape, inline cache and heap statistics")

	flag.Parse() // Parses the command-line flags

	if flag.NArg() > 1 || (flag.NArg() == 1 && *restoreFlag != "") {
		fmt.Fprintf(os.Stderr, "Usage: objmodel [-config file] [-snapshot out.cbor] [document.json | -restore in.cbor]\n")
		os.Exit(64) // Exit code 64: command line usage error
	}

	cfg := config.Default()
	if *configFlag != "" {
		var err error
		if cfg, err = config.Load(*configFlag); err != nil {
			reportAndExit(err)
		}
	}
	if *logLevelFlag != "" {
		cfg.Log.Level = *logLevelFlag
		if err := cfg.Validate(); err != nil {
			reportAndExit(err)
		}
	}
	log := cfg.Logger(os.Stderr)

	realm, err := builtins.NewRealm(cfg.RealmOptions(log))
	if err != nil {
		reportAndExit(err)
	}

	doc, err := loadDocument(realm, *restoreFlag, flag.Arg(0))
	if err != nil {
		reportAndExit(err)
	}

	out, err := realm.MarshalJSON(doc)
	if err != nil {
		reportAndExit(err)
	}
	fmt.Println(string(out))

	if *snapshotFlag != "" {
		if err := writeSnapshot(realm, doc, *snapshotFlag); err != nil {
			reportAndExit(err)
		}
		log.Info().Str("file", *snapshotFlag).Msg("snapshot written")
	}

	if *statsFlag {
		printStats(realm, doc, log)
	}
}

// loadDocument restores a snapshot, parses a JSON file, or reads JSON from
// stdin, in that order of preference.
func loadDocument(r *vm.Realm, restorePath, jsonPath string) (vm.Value, error) {
	if restorePath != "" {
		f, err := os.Open(restorePath)
		if err != nil {
			return vm.Undefined, err
		}
		defer f.Close()
		snap, err := snapshot.Decode(f)
		if err != nil {
			return vm.Undefined, err
		}
		roots, err := snapshot.Restore(r, snap)
		if err != nil {
			return vm.Undefined, err
		}
		if len(roots) == 0 {
			return vm.Undefined, nil
		}
		return roots[0], nil
	}

	var data []byte
	var err error
	if jsonPath != "" {
		data, err = os.ReadFile(jsonPath)
	} else {
		data, err = io.ReadAll(os.Stdin)
	}
	if err != nil {
		return vm.Undefined, err
	}
	return r.ParseJSON(data)
}

func writeSnapshot(r *vm.Realm, doc vm.Value, path string) error {
	snap, err := snapshot.Capture(r, doc)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := snapshot.Encode(f, snap); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func printStats(r *vm.Realm, doc vm.Value, log zerolog.Logger) {
	shapes := r.ShapeStats()
	cache := r.CacheStats()
	reachable := 0
	if doc.IsObject() {
		reachable = len(r.Heap().Reachable(doc.AsRef()))
	}
	fmt.Printf("shapes: %d (transition hits %d, misses %d)\n", shapes.Shapes, shapes.TransitionHits, shapes.TransitionMisses)
	fmt.Printf("inline cache: %d hits, %d misses\n", cache.TotalHits, cache.TotalMisses)
	fmt.Printf("heap: %d live objects, %d reachable from document\n", r.Heap().Size(), reachable)
	log.Debug().Str("realm", r.ID().String()).Msg("stats printed")
}

func reportAndExit(err error) {
	if ee, ok := err.(errors.EngineError); ok {
		errors.Display(os.Stderr, []errors.EngineError{ee})
		if ee.Kind() == "Config" {
			os.Exit(78) // Exit code 78: configuration error
		}
		os.Exit(70)
	}
	fmt.Fprintf(os.Stderr, "objmodel: %v\n", err)
	os.Exit(70) // Exit code 70: internal software error
}
