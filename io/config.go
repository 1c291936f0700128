package io

import (
	"fmt"
	"sort"
	"strings"

	"gopkg.in/gcfg.v1"

	"github.com/phil-mansfield/gotraj/physics"
)

const (
	ExampleSimulateFile = `[Simulate]

#######################
# Required Parameters #
#######################

# Triangle file describing the geometry. Each line is
#     material_in material_out ax ay az bx by bz cx cy cz
# with coordinates in nm. Special materials are -127 (terminator),
# -126 (detector), -123 (vacuum) and -122 (mirror).
Geometry = path/to/geometry.tri

# Primary electron file. Each line is
#     x y z dx dy dz energy pixel_x pixel_y
# with positions in nm and energies in eV.
Primaries = path/to/primaries.pri

# File which energy deposits are written to. Can be set to stdout.
Output = deposits.bin

#######################
# Optional Parameters #
#######################

# Mode must be one of [ Trajectories | Iterate ]. Trajectories runs every
# primary to completion and records the parent and child edges of each
# event. Iterate steps all particles, including secondaries, one step at a
# time and only records energy deposits.
# Mode = Trajectories

# Maximum number of iterations in Iterate mode. 0 means until no particles
# are left.
# Iterations = 0

# File which detected electrons are written to.
# DetectOutput = detected.bin

# Particles inside a material with less energy than this (in eV) are
# terminated.
# EnergyThreshold = 0

# Seed = 2026365851

# Number of simulation threads. 0 means one per logical core. The -Threads
# flag overrides this.
# Threads = 0

# Number of primaries handed to a thread at a time.
# BatchSize = 1

# Stops the simulation if a single particle takes more steps than this.
# 0 means no limit.
# MaxSteps = 0

# YAML file describing the finished run: its ID, inputs, record counts and
# timings.
# SummaryFile = summary.yaml

# File which run metrics are written to in the Prometheus text format, e.g.
# for the node_exporter textfile collector.
# MetricsFile = gotraj.prom

# Output files which are useful for profiling and debugging. Generally, there
# isn't a reason to use these unless something goes wrong.
# ProfileFile = prof.out
# LogFile = log.out`

	ExampleMaterialFile = `[Material "silicon"]
# Materials may be put in the same file as the [Simulate] section or in
# separate files given as extra arguments. Index is the number used for this
# material in the triangle file.
Index = 0

# Mean free paths, in nm.
ElasticMFP = 1.2
InelasticMFP = 3.5

# Incident particles lose energy to inelastic events with an exponential
# distribution with this mean, in eV. An inelastic event creates a secondary
# electron carrying SecondaryFraction of the lost energy.
MeanLoss = 12
SecondaryFraction = 0.6

# Particles below Barrier (in eV) stop and particles without enough energy
# to pass it can't leave into the vacuum.
Barrier = 5.5
MaxEnergy = 30000

#######################
# Optional Parameters #
#######################

# Fraction of energy lost in elastic events.
# ElasticLoss = 0.001`
)

// Simulation modes.
const (
	TrajectoriesMode = "Trajectories"
	IterateMode      = "Iterate"
)

type SimulateConfig struct {
	// Required
	Geometry, Primaries, Output string

	// Optional
	Mode                     string
	Iterations               int
	DetectOutput             string
	EnergyThreshold          float64
	Seed                     int64
	Threads, BatchSize       int
	MaxSteps                 int
	SummaryFile, MetricsFile string
	LogFile, ProfileFile     string
}

type MaterialConfig struct {
	// Required
	Index                    int
	ElasticMFP, InelasticMFP float64
	MeanLoss                 float64
	SecondaryFraction        float64
	Barrier, MaxEnergy       float64

	// Optional
	ElasticLoss float64
}

type SimulateWrapper struct {
	Simulate SimulateConfig
	Material map[string]*MaterialConfig
}

type MaterialWrapper struct {
	Material map[string]*MaterialConfig
}

func DefaultSimulateWrapper() *SimulateWrapper {
	con := SimulateConfig{}
	con.Mode = TrajectoriesMode
	con.Seed = 0x78c7e39b
	con.BatchSize = 1
	return &SimulateWrapper{Simulate: con}
}

// ReadSimulateConfig reads a [Simulate] file along with any number of
// additional files containing [Material] sections.
func ReadSimulateConfig(
	fname string, materialFiles ...string,
) (*SimulateWrapper, error) {
	wrap := DefaultSimulateWrapper()
	if err := gcfg.ReadFileInto(wrap, fname); err != nil {
		return nil, err
	}
	if wrap.Material == nil {
		wrap.Material = map[string]*MaterialConfig{}
	}

	for _, mf := range materialFiles {
		mw := &MaterialWrapper{}
		if err := gcfg.ReadFileInto(mw, mf); err != nil {
			return nil, err
		}
		for name, mat := range mw.Material {
			if _, ok := wrap.Material[name]; ok {
				return nil, fmt.Errorf(
					"Material '%s' in %s was already defined.", name, mf,
				)
			}
			wrap.Material[name] = mat
		}
	}

	return wrap, nil
}

func (con *SimulateConfig) ValidGeometry() bool  { return con.Geometry != "" }
func (con *SimulateConfig) ValidPrimaries() bool { return con.Primaries != "" }
func (con *SimulateConfig) ValidOutput() bool    { return con.Output != "" }
func (con *SimulateConfig) ValidDetectOutput() bool {
	return con.DetectOutput != ""
}
func (con *SimulateConfig) ValidMode() bool {
	return con.Mode == TrajectoriesMode || con.Mode == IterateMode
}
func (con *SimulateConfig) ValidIterations() bool { return con.Iterations >= 0 }
func (con *SimulateConfig) ValidEnergyThreshold() bool {
	return con.EnergyThreshold >= 0
}
func (con *SimulateConfig) ValidThreads() bool   { return con.Threads >= 0 }
func (con *SimulateConfig) ValidBatchSize() bool { return con.BatchSize > 0 }
func (con *SimulateConfig) ValidMaxSteps() bool  { return con.MaxSteps >= 0 }
func (con *SimulateConfig) ValidSummaryFile() bool {
	return con.SummaryFile != ""
}
func (con *SimulateConfig) ValidMetricsFile() bool {
	return con.MetricsFile != ""
}
func (con *SimulateConfig) ValidLogFile() bool   { return con.LogFile != "" }
func (con *SimulateConfig) ValidProfileFile() bool {
	return con.ProfileFile != ""
}

// CheckInit normalizes the mode name and returns an error describing the
// first invalid parameter.
func (con *SimulateConfig) CheckInit() error {
	tmp := con.Mode
	for _, mode := range []string{TrajectoriesMode, IterateMode} {
		if strings.EqualFold(strings.TrimSpace(con.Mode), mode) {
			con.Mode = mode
		}
	}

	switch {
	case !con.ValidGeometry():
		return fmt.Errorf("Invalid/non-existent 'Geometry' value.")
	case !con.ValidPrimaries():
		return fmt.Errorf("Invalid/non-existent 'Primaries' value.")
	case !con.ValidOutput():
		return fmt.Errorf("Invalid/non-existent 'Output' value.")
	case !con.ValidMode():
		return fmt.Errorf(
			"Mode must be one of [%s | %s]. '%s' is not recognized.",
			TrajectoriesMode, IterateMode, tmp,
		)
	case !con.ValidIterations():
		return fmt.Errorf("Invalid 'Iterations' value, %d.", con.Iterations)
	case !con.ValidEnergyThreshold():
		return fmt.Errorf(
			"Invalid 'EnergyThreshold' value, %g.", con.EnergyThreshold,
		)
	case !con.ValidThreads():
		return fmt.Errorf("Invalid 'Threads' value, %d.", con.Threads)
	case !con.ValidBatchSize():
		return fmt.Errorf("Invalid 'BatchSize' value, %d.", con.BatchSize)
	case !con.ValidMaxSteps():
		return fmt.Errorf("Invalid 'MaxSteps' value, %d.", con.MaxSteps)
	}
	return nil
}

// Material converts a material section into a physics.Material.
func (mc *MaterialConfig) Material(name string) (*physics.Material, error) {
	m := &physics.Material{
		Name:              name,
		ElasticMFP:        float32(mc.ElasticMFP),
		InelasticMFP:      float32(mc.InelasticMFP),
		ElasticLoss:       float32(mc.ElasticLoss),
		MeanLoss:          float32(mc.MeanLoss),
		SecondaryFraction: float32(mc.SecondaryFraction),
		Barrier:           float32(mc.Barrier),
		MaxEnergy:         float32(mc.MaxEnergy),
	}
	if err := m.Check(); err != nil {
		return nil, err
	}
	return m, nil
}

// Materials returns the configured materials ordered by their indices. The
// indices must be exactly 0, 1, ..., N-1.
func (wrap *SimulateWrapper) Materials() (physics.Materials, error) {
	names := make([]string, 0, len(wrap.Material))
	for name := range wrap.Material {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		return wrap.Material[names[i]].Index < wrap.Material[names[j]].Index
	})

	ms := make(physics.Materials, len(names))
	for i, name := range names {
		mc := wrap.Material[name]
		if mc.Index != i {
			return nil, fmt.Errorf(
				"Material '%s' has Index %d, but indices must run from 0 "+
					"to %d without gaps or repeats.", name, mc.Index, len(names)-1,
			)
		}

		m, err := mc.Material(name)
		if err != nil {
			return nil, err
		}
		ms[i] = m
	}

	return ms, nil
}
