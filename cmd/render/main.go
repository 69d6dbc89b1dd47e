// Command render runs the outbreak models once and writes the results as
// charts, an MJPEG animation of the real-time simulation and a CSV of the
// daily snapshots.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/Nhlanhla999/Epidemiologist-Data-Science-Tool/internal/core"
	"github.com/Nhlanhla999/Epidemiologist-Data-Science-Tool/internal/domain/model"
	"github.com/Nhlanhla999/Epidemiologist-Data-Science-Tool/internal/infrastructure/render"
)

func main() {
	var (
		count         = flag.Int("cases", 200, "number of simulated cases")
		infectionRate = flag.Float64("infection-rate", 0.10, "share of cases flagged infected")
		daySpan       = flag.Int("day-span", 30, "diagnosis dates are spread over this many days")
		seed          = flag.Int64("seed", 42, "random seed")

		population = flag.Float64("population", 1000, "SIR population size")
		beta       = flag.Float64("beta", 0.3, "transmission rate")
		gamma      = flag.Float64("gamma", 0.1, "recovery rate")
		sirDays    = flag.Int("sir-days", 160, "days of the compartmental model")

		vaccination = flag.Float64("vaccination", 0.2, "vaccination rate")
		distancing  = flag.Float64("distancing", 0.3, "social distancing reduction of beta")
		threshold   = flag.Int("threshold", core.DefaultClusterThreshold, "cases per cell that raise a cluster alert")
		simDays     = flag.Int("sim-days", 0, "days of the real-time simulation (0: until the last diagnosis)")

		outDir = flag.String("out", "output", "output directory")
		size   = flag.Int("size", 720, "animation frame size in pixels")
		fps    = flag.Int("fps", 4, "animation frames per second")
	)
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := os.MkdirAll(*outDir, 0755); err != nil {
		log.Fatalf("Failed to create output directory: %v", err)
	}

	cmp, err := core.CompareScenarios(model.SIRParams{
		Population:      *population,
		Beta:            *beta,
		Gamma:           *gamma,
		Days:            *sirDays,
		InitialInfected: 1,
	}, model.ControlMeasures{
		SocialDistancing: *distancing,
		VaccinationRate:  *vaccination,
	})
	if err != nil {
		log.Fatalf("SIR model failed: %v", err)
	}
	writeFile(filepath.Join(*outDir, "sir_comparison.png"), func(f *os.File) error {
		return render.SIRComparisonChart(f, cmp)
	})

	ds, err := core.GenerateCases(core.GeneratorConfig{
		Count:         *count,
		InfectionRate: *infectionRate,
		DaySpan:       *daySpan,
	}, core.NewRand(*seed))
	if err != nil {
		log.Fatalf("Case generation failed: %v", err)
	}
	log.Printf("Generated %d cases from %s", len(ds.Cases), ds.Epoch.Format("2006-01-02"))

	writeFile(filepath.Join(*outDir, "cumulative_infections.png"), func(f *os.File) error {
		return render.CumulativeChart(f, core.CumulativeInfections(ds))
	})

	days := *simDays
	if days == 0 {
		days = core.MaxDay(ds) + 1
	}
	detector, err := core.NewClusterDetector(core.DefaultBinResolution, *threshold)
	if err != nil {
		log.Fatalf("Invalid cluster settings: %v", err)
	}
	sim, err := core.NewSimulator(ds, core.RealtimeParams{
		Days:            days,
		VaccinationRate: *vaccination,
		RecoveryRate:    *gamma,
	}, core.NewRand(*seed), detector)
	if err != nil {
		log.Fatalf("Invalid simulation settings: %v", err)
	}

	animation, err := render.NewAnimation(filepath.Join(*outDir, "outbreak.avi"), render.Frame{
		Width:  *size,
		Height: *size,
		Bounds: core.CaseBounds(ds.Cases, 0.02),
	}, *fps)
	if err != nil {
		log.Fatalf("Failed to create animation: %v", err)
	}

	csvFile, err := os.Create(filepath.Join(*outDir, "daily_snapshots.csv"))
	if err != nil {
		log.Fatalf("Failed to create CSV file: %v", err)
	}
	defer csvFile.Close()
	snapshots, err := render.NewSnapshotCSV(csvFile)
	if err != nil {
		log.Fatalf("Failed to start CSV: %v", err)
	}

	err = sim.Run(ctx, func(snap model.DaySnapshot) error {
		log.Printf("Day %d: %d visible cases, %d clusters", snap.Day, len(snap.Cases), len(snap.Clusters))
		if err := snapshots.Write(snap); err != nil {
			return err
		}
		return animation.AddSnapshot(snap)
	})
	if errors.Is(err, context.Canceled) {
		log.Printf("Interrupted after day %d", sim.Day())
	} else if err != nil {
		log.Fatalf("Simulation failed: %v", err)
	}

	if err := snapshots.Flush(); err != nil {
		log.Fatalf("Failed to write CSV: %v", err)
	}
	if err := animation.Close(); err != nil {
		log.Fatalf("Failed to finish animation: %v", err)
	}
	log.Printf("Wrote %d frames to %s", animation.Frames(), *outDir)
}

func writeFile(path string, fn func(*os.File) error) {
	f, err := os.Create(path)
	if err != nil {
		log.Fatalf("Failed to create %s: %v", path, err)
	}
	defer f.Close()
	if err := fn(f); err != nil {
		log.Fatalf("Failed to write %s: %v", path, err)
	}
	log.Printf("Saved %s", path)
}
