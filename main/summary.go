package main

import (
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"gopkg.in/yaml.v3"
)

// simMetrics counts simulation progress. Counters may be incremented from any
// thread.
type simMetrics struct {
	reg *prometheus.Registry

	primaries  prometheus.Counter
	deposits   prometheus.Counter
	detected   prometheus.Counter
	iterations prometheus.Counter
	seconds    *prometheus.GaugeVec
}

func newSimMetrics(runID, mode string) *simMetrics {
	labels := prometheus.Labels{ "run_id": runID, "mode": mode }
	m := &simMetrics{
		reg: prometheus.NewRegistry(),
		primaries: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "gotraj_primaries_simulated_total",
			Help:        "Primary electrons pushed into a driver.",
			ConstLabels: labels,
		}),
		deposits: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "gotraj_deposits_total",
			Help:        "Energy deposit records written.",
			ConstLabels: labels,
		}),
		detected: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "gotraj_detected_total",
			Help:        "Detected electron records written.",
			ConstLabels: labels,
		}),
		iterations: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "gotraj_iterations_total",
			Help:        "Driver iterations over all threads.",
			ConstLabels: labels,
		}),
		seconds: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "gotraj_stage_seconds",
			Help:        "Wall clock time spent in each stage of the run.",
			ConstLabels: labels,
		}, []string{ "stage" }),
	}
	m.reg.MustRegister(
		m.primaries, m.deposits, m.detected, m.iterations, m.seconds,
	)
	return m
}

// Write writes the metrics in the Prometheus text format, e.g. for the
// node_exporter textfile collector.
func (m *simMetrics) Write(fname string) error {
	return prometheus.WriteToTextfile(fname, m.reg)
}

type stageSummary struct {
	Name    string  `yaml:"name"`
	Seconds float64 `yaml:"seconds"`
}

// runSummary is the machine readable description of a finished run.
type runSummary struct {
	RunID     string    `yaml:"run_id"`
	Started   time.Time `yaml:"started"`
	Mode      string    `yaml:"mode"`
	Seed      int64     `yaml:"seed"`
	Threads   int       `yaml:"threads"`
	Geometry  string    `yaml:"geometry"`
	Primaries string    `yaml:"primaries"`
	Output    string    `yaml:"output"`

	Triangles       int `yaml:"triangles"`
	Materials       int `yaml:"materials"`
	PrimaryCount    int `yaml:"primary_count"`
	DepositCount    int `yaml:"deposit_count"`
	DetectedCount   int `yaml:"detected_count,omitempty"`

	Stages []stageSummary `yaml:"stages"`
}

func newRunSummary() *runSummary {
	return &runSummary{ RunID: uuid.NewString(), Started: time.Now() }
}

func (s *runSummary) AddStages(tl *timeLog) {
	for i := range tl.names {
		s.Stages = append(s.Stages, stageSummary{
			tl.names[i], tl.spans[i].Seconds(),
		})
	}
}

func (s *runSummary) Write(fname string) error {
	b, err := yaml.Marshal(s)
	if err != nil { return err }
	return os.WriteFile(fname, b, 0644)
}
