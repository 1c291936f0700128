package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"runtime/pprof"
	"sort"
	"strings"

	"github.com/phil-mansfield/gotraj/io"
)

// FileGroup contains utility files for logging and writing profiles to.
type FileGroup struct {
	log, prof *os.File
}

// Close closes the files inside FileGroup.
func (fg *FileGroup) Close() {
	if fg.log != nil {
		err := fg.log.Close()
		if err != nil { log.Fatal(err.Error()) }
	}

	if fg.prof != nil {
		pprof.StopCPUProfile()
		err := fg.prof.Close()
		if err != nil { log.Fatal(err.Error()) }
	}
}

func main() {
	var (
		simulate, plotFile, exampleConfig string
		plotOutput, plotView string
		plotTag, threads int
	)
	vars := map[string]*string {
		"Simulate": &simulate,
		"Plot": &plotFile,
		"ExampleConfig": &exampleConfig,
	}

	flag.StringVar(
		&simulate, "Simulate", "",
		"Configuration file for [Simulate] mode. Additional material files "+
			"may be given as arguments.",
	)
	flag.StringVar(
		&plotFile, "Plot", "",
		"Trajectory output file whose event trees should be plotted.",
	)
	flag.StringVar(
		&exampleConfig,
		"ExampleConfig", "", "Prints an example configuration file of the "+
			"specified type to stdout. Accepted arguments are 'Simulate' "+
			"and 'Material'.",
	)
	flag.StringVar(
		&plotOutput, "PlotOutput", "",
		"Directory that Plot mode saves figures to. If not set, figures are "+
			"shown interactively.",
	)
	flag.StringVar(
		&plotView, "PlotView", "Side",
		"Projection used by Plot mode. Accepted arguments are 'Side' and "+
			"'Top'.",
	)
	flag.IntVar(
		&plotTag, "PlotTag", -1,
		"Primary tag plotted by Plot mode. If negative, every primary is "+
			"plotted.",
	)
	flag.IntVar(
		&threads, "Threads", -1,
		"Number of simulation threads. Overrides the 'Threads' variable of "+
			"the configuration file.",
	)

	flag.Parse()

	modeName, err := getModeName(vars)
	if err != nil { log.Fatal(err.Error()) }

	switch modeName {
	case "Simulate":
		wrap, err := io.ReadSimulateConfig(simulate, flag.Args()...)
		if err != nil { log.Fatal(err.Error()) }
		con := &wrap.Simulate
		if err = con.CheckInit(); err != nil { log.Fatal(err.Error()) }
		if threads >= 0 { con.Threads = threads }

		ms, err := wrap.Materials()
		if err != nil { log.Fatal(err.Error()) }
		if len(ms) == 0 {
			log.Fatal("At least one [Material] section must be given.")
		}

		fg := simulateSetupIO(con)
		err = simulateMain(con, ms)
		fg.Close()
		if err != nil { log.Fatal(err.Error()) }

	case "Plot":
		view, ok := views[plotView]
		if !ok {
			log.Fatalf(
				"Unrecognized 'PlotView' argument '%s'. Only recognized "+
					"arguments are %s.", plotView, viewNames(),
			)
		}
		if err := plotMain(plotFile, plotOutput, view, plotTag); err != nil {
			log.Fatal(err.Error())
		}

	case "ExampleConfig":
		switch exampleConfig {
		case "Simulate":
			fmt.Println(io.ExampleSimulateFile)
		case "Material":
			fmt.Println(io.ExampleMaterialFile)
		default:
			log.Fatal(
				"Unrecognized 'ExampleConfig' argument. Only recognized " +
					"arguments are 'Simulate' and 'Material'.",
			)
		}
	default:
		panic("Impossible")
	}
}

func getModeName(vars map[string]*string) (string, error) {
	setNames := []string{}

	for name, varPtr := range vars {
		if *varPtr != "" { setNames = append(setNames, name) }
	}
	sort.Strings(setNames)

	if len(setNames) == 0 {
		return "", fmt.Errorf("No flags have been set.")
	}

	if len(setNames) > 1 {
		return "", fmt.Errorf(
			"The following flags were set: %s, but gotraj "+
				"only accepts one flag at a time.",
			strings.Join(setNames, ", "),
		)
	}

	return setNames[0], nil
}

// simulateSetupIO sets up the log and profile files of a simulation.
func simulateSetupIO(con *io.SimulateConfig) *FileGroup {
	var err error
	fg := new(FileGroup)

	// Set up log file.
	if con.ValidLogFile() {
		fg.log, err = os.Create(con.LogFile)
		if err != nil { log.Fatal(err.Error()) }
		log.SetOutput(fg.log)
	}

	// Set up profile file.
	if con.ValidProfileFile() {
		fg.prof, err = os.Create(con.ProfileFile)
		if err != nil { log.Fatal(err.Error()) }
		err = pprof.StartCPUProfile(fg.prof)
		if err != nil { log.Fatal(err.Error()) }
	}

	return fg
}
