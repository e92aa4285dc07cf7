// hammercad-export renders a saved project into the engine input file
// without launching the editor. Useful for scripting and CI checks.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/surgeworks/hammercad/pkg/hyfile"
	"github.com/surgeworks/hammercad/pkg/logging"
	"github.com/surgeworks/hammercad/pkg/metrics"
	"github.com/surgeworks/hammercad/pkg/network"
	"github.com/surgeworks/hammercad/pkg/project"
	"github.com/surgeworks/hammercad/pkg/units"
)

func main() {
	var (
		inPath   = flag.String("in", "", "project file (.hmj or .hmz)")
		outPath  = flag.String("out", "", "engine input file to write; stdout when empty")
		unitName = flag.String("unit", "", "override the project's unit system (SI or FPS)")
	)
	flag.Parse()

	if *inPath == "" {
		fmt.Fprintln(os.Stderr, "usage: hammercad-export -in project.hmz [-out plant.dat] [-unit SI|FPS]")
		os.Exit(2)
	}

	logger := logging.NewDefaultLogger().With(logging.Component("export"))

	store := network.NewStore(network.Options{Logger: logger})
	if err := project.LoadInto(store, *inPath); err != nil {
		logger.Error("project load failed", logging.Path(*inPath), logging.Error(err))
		os.Exit(1)
	}

	if *unitName != "" {
		u, err := units.Parse(*unitName)
		if err != nil {
			logger.Error("bad unit system", logging.Error(err))
			os.Exit(2)
		}
		store.SetGlobalUnit(u)
	}

	emitter := hyfile.NewEmitter(logger, metrics.Default())
	text := emitter.Emit(store.CurrentSnapshot(), store.GlobalUnit())

	if *outPath == "" {
		fmt.Print(text)
		return
	}
	if err := os.WriteFile(*outPath, []byte(text), 0644); err != nil {
		logger.Error("write failed", logging.Path(*outPath), logging.Error(err))
		os.Exit(1)
	}
	logger.Info("engine file written", logging.Path(*outPath), logging.Int("bytes", len(text)))
}
