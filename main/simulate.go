package main

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/phil-mansfield/gotraj/driver"
	"github.com/phil-mansfield/gotraj/geom"
	"github.com/phil-mansfield/gotraj/io"
	"github.com/phil-mansfield/gotraj/particle"
	"github.com/phil-mansfield/gotraj/physics"
)

const (
	depositBufLen = 1 << 16
	detectBufLen  = 1 << 10
)

// outputs are the files shared by every simulation thread.
type outputs struct {
	deposits, detected *io.RecordWriter
	pixels io.Pixels
	metrics *simMetrics
}

func (out *outputs) Close() error {
	err := out.deposits.Close()
	if out.detected != nil {
		if derr := out.detected.Close(); err == nil { err = derr }
	}
	return err
}

func simulateMain(con *io.SimulateConfig, ms physics.Materials) error {
	timer := &timeLog{}
	summary := newRunSummary()
	log.Printf("Starting run %s.", summary.RunID)

	// Load geometry.
	log.Println("Loading geometry.")
	timer.Start()
	ts, err := io.ReadTriFile(con.Geometry)
	if err != nil { return err }
	if warning, err := checkMaterials(ts, len(ms)); err != nil {
		return err
	} else if warning != "" {
		log.Println(warning)
	}
	geometry := geom.NewTriList(ts)
	timer.Stop("Loading triangles")

	// Load primaries.
	log.Println("Loading primary electrons.")
	timer.Start()
	primaries, err := io.ReadPriFile(con.Primaries, geometry, ms.MaxEnergy())
	if err != nil { return err }
	if len(primaries) == 0 {
		return fmt.Errorf(
			"Primaries file '%s' contains no usable primaries.", con.Primaries,
		)
	}
	ps := make([]particle.Particle, len(primaries))
	tags := make([]uint32, len(primaries))
	for i := range primaries {
		ps[i], tags[i] = primaries[i].Particle, primaries[i].Tag
	}
	pool := driver.NewWorkPool(ps, tags)
	timer.Stop("Loading primary electrons")

	min, max := geometry.AABB()
	log.Printf("Loaded %d triangles.", geometry.Len())
	log.Printf("  min = {%g, %g, %g}", min[0], min[1], min[2])
	log.Printf("  max = {%g, %g, %g}", max[0], max[1], max[2])
	log.Printf("Loaded %d primaries.", len(primaries))
	log.Printf("Loaded %d materials.", len(ms))

	info := driver.NewCPU(geometry, ms, float32(con.EnergyThreshold), 0)
	log.Println("Physics models:")
	info.Info(log.Writer())

	// Prepare output files.
	kind := io.TrajectoryKind
	if con.Mode == io.IterateMode { kind = io.DepositKind }
	out := &outputs{
		pixels: io.PrimaryPixels(primaries),
		metrics: newSimMetrics(summary.RunID, con.Mode),
	}
	if out.deposits, err = io.CreateRecordWriter(con.Output, kind); err != nil {
		return err
	}
	if con.ValidDetectOutput() {
		out.detected, err = io.CreateRecordWriter(con.DetectOutput, io.DetectKind)
		if err != nil {
			out.deposits.Close()
			return err
		}
	}

	threads := con.Threads
	if threads == 0 { threads = runtime.NumCPU() }
	log.Printf("Simulating with %d threads in %s mode.", threads, con.Mode)

	// Each thread gets its own seed, drawn from the configured one.
	timer.Start()
	seeds := rand.New(rand.NewSource(con.Seed))
	g, ctx := errgroup.WithContext(context.Background())
	for i := 0; i < threads; i++ {
		seed := seeds.Int63()
		g.Go(func() error {
			return simulateThread(ctx, con, geometry, ms, pool, out, seed)
		})
	}

	errc := make(chan error, 1)
	go func() { errc <- g.Wait() }()

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
loop:
	for {
		select {
		case err = <-errc:
			break loop
		case <-ticker.C:
			log.Printf("Progress %.2f%%", progress(pool))
		}
	}

	if cerr := out.Close(); err == nil { err = cerr }
	if err != nil { return err }
	timer.Stop("Simulation")

	log.Printf("Wrote %d deposits to %s.", out.deposits.Count(), con.Output)
	if out.detected != nil {
		log.Printf(
			"Wrote %d detected electrons to %s.",
			out.detected.Count(), con.DetectOutput,
		)
	}
	timer.Print(log.Writer())

	summary.Mode, summary.Seed, summary.Threads = con.Mode, con.Seed, threads
	summary.Geometry, summary.Primaries = con.Geometry, con.Primaries
	summary.Output = con.Output
	summary.Triangles, summary.Materials = geometry.Len(), len(ms)
	summary.PrimaryCount = len(primaries)
	summary.DepositCount = out.deposits.Count()
	if out.detected != nil { summary.DetectedCount = out.detected.Count() }
	summary.AddStages(timer)

	return writeReports(con, summary, out.metrics)
}

// writeReports writes the optional summary and metrics files of a finished
// run.
func writeReports(
	con *io.SimulateConfig, summary *runSummary, metrics *simMetrics,
) error {
	if con.ValidSummaryFile() {
		if err := summary.Write(con.SummaryFile); err != nil { return err }
	}

	if con.ValidMetricsFile() {
		metrics.deposits.Add(float64(summary.DepositCount))
		metrics.detected.Add(float64(summary.DetectedCount))
		for _, stage := range summary.Stages {
			metrics.seconds.WithLabelValues(stage.Name).Set(stage.Seconds)
		}
		if err := metrics.Write(con.MetricsFile); err != nil { return err }
	}

	return nil
}

// progress returns the percentage of primaries which have been handed out.
func progress(pool *driver.WorkPool) float64 {
	if pool.Len() == 0 { return 100 }
	return 100 * (1 - float64(pool.Remaining())/float64(pool.Len()))
}

// simulateThread runs a single driver until the pool is empty.
func simulateThread(
	ctx context.Context, con *io.SimulateConfig, geometry *geom.TriList,
	ms physics.Materials, pool *driver.WorkPool, out *outputs, seed int64,
) error {
	d := driver.NewCPU(geometry, ms, float32(con.EnergyThreshold), seed)
	traj := d.Trajectories()
	if con.MaxSteps > 0 { traj.SetStepLimit(con.MaxSteps) }

	var detected *io.RecordBuffer[io.DetectRecord]
	if out.detected != nil {
		detected = io.NewRecordBuffer[io.DetectRecord](out.detected, detectBufLen)
	}
	flushDetected := func() error {
		return d.FlushDetected(func(p particle.Particle, tag uint32) error {
			if detected == nil { return nil }
			return detected.Append(out.pixels.Detect(p, tag))
		})
	}

	var err error
	switch con.Mode {
	case io.TrajectoriesMode:
		err = simulateToEnd(ctx, con, d, traj, pool, out, flushDetected)
	case io.IterateMode:
		err = iterate(ctx, con, d, traj, pool, out, flushDetected)
	}
	if err != nil { return err }

	if detected != nil { return detected.Flush() }
	return nil
}

func simulateToEnd(
	ctx context.Context, con *io.SimulateConfig, d *driver.CPU,
	traj *driver.Trajectories, pool *driver.WorkPool, out *outputs,
	flushDetected func() error,
) error {
	buf := io.NewRecordBuffer[io.TrajectoryRecord](out.deposits, depositBufLen)
	report := func(
		before, after particle.Particle, tag uint32,
		parentEdge, childPrimary, childSecondary int,
	) error {
		return buf.Append(out.pixels.Trajectory(
			before, after, tag, parentEdge, childPrimary, childSecondary,
		))
	}

	for {
		if err := ctx.Err(); err != nil { return err }

		// Secondaries left over from earlier batches are simulated along
		// with the new primaries.
		ps, tags := pool.Get(con.BatchSize)
		if len(ps) == 0 && d.RunningCount() == 0 { break }
		d.Push(ps, tags)
		out.metrics.primaries.Add(float64(len(ps)))

		if err := traj.SimulateToEnd(report); err != nil { return err }
		if err := flushDetected(); err != nil { return err }
		d.FlushTerminated()
	}

	return buf.Flush()
}

// iterate keeps BatchSize primaries' worth of cascades running, steps every
// particle once per iteration, and stops after con.Iterations iterations if
// it is set.
func iterate(
	ctx context.Context, con *io.SimulateConfig, d *driver.CPU,
	traj *driver.Trajectories, pool *driver.WorkPool, out *outputs,
	flushDetected func() error,
) error {
	buf := io.NewRecordBuffer[io.DepositRecord](out.deposits, depositBufLen)
	report := func(before, after particle.Particle, tag uint32) error {
		return buf.Append(out.pixels.Deposit(before, after, tag))
	}

	for it := 0; con.Iterations == 0 || it < con.Iterations; it++ {
		if err := ctx.Err(); err != nil { return err }

		if d.RunningCount() < con.BatchSize {
			ps, tags := pool.Get(con.BatchSize - d.RunningCount())
			d.Push(ps, tags)
			out.metrics.primaries.Add(float64(len(ps)))
		}
		if d.RunningCount() == 0 { break }
		out.metrics.iterations.Inc()

		if err := traj.DoIteration(report); err != nil { return err }
		if err := flushDetected(); err != nil { return err }
		d.FlushTerminated()
	}

	if n := d.RunningCount(); n > 0 {
		log.Printf(
			"Stopped after %d iterations with %d particles still running.",
			con.Iterations, n,
		)
	}
	return buf.Flush()
}

// checkMaterials checks that the geometry doesn't refer to more materials
// than were configured. A warning is returned if materials are left unused.
func checkMaterials(ts []geom.Triangle, materials int) (string, error) {
	maxMaterial := -1
	for i := range ts {
		if ts[i].MaterialIn > maxMaterial { maxMaterial = ts[i].MaterialIn }
		if ts[i].MaterialOut > maxMaterial { maxMaterial = ts[i].MaterialOut }
	}

	if maxMaterial >= materials {
		return "", fmt.Errorf(
			"Not enough materials provided for this geometry. Expected %d "+
				"materials, %d provided.", maxMaterial+1, materials,
		)
	} else if maxMaterial+1 < materials {
		return fmt.Sprintf(
			"Too many materials provided for this geometry. Expected %d "+
				"materials, %d provided.", maxMaterial+1, materials,
		), nil
	}
	return "", nil
}
