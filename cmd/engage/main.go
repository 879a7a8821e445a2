// Command engage runs a scripted engagement, prints the outcome and
// optionally records it to SQLite and renders plots.
package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/ava5627/oort-ai/internal/config"
	"github.com/ava5627/oort-ai/internal/fsutil"
	"github.com/ava5627/oort-ai/internal/monitoring"
	"github.com/ava5627/oort-ai/internal/report"
	"github.com/ava5627/oort-ai/internal/scenario"
	"github.com/ava5627/oort-ai/internal/telemetry"
	"github.com/ava5627/oort-ai/internal/version"
)

func main() {
	var (
		name       string
		ticks      int
		seed       int64
		configPath string
		dbPath     string
		pngPath    string
		htmlPath   string
		noise      float64
		confidence bool
		radioLoss  float64
		list       bool
		quiet      bool
		showVer    bool
	)

	flag.StringVar(&name, "scenario", "gunnery", "scenario to run (see -list)")
	flag.IntVar(&ticks, "ticks", 3600, "maximum ticks to simulate")
	flag.Int64Var(&seed, "seed", 1, "random seed for sensor noise and radio loss")
	flag.StringVar(&configPath, "config", "", "path to tuning JSON (defaults built in)")
	flag.StringVar(&dbPath, "db", "", "record the run to this sqlite db")
	flag.StringVar(&pngPath, "png", "", "write a trajectory plot to this file")
	flag.StringVar(&htmlPath, "html", "", "write an interactive range chart to this file")
	flag.Float64Var(&noise, "noise", 0, "contact position error in metres per km of range")
	flag.BoolVar(&confidence, "confidence", false, "report signal confidence with contacts")
	flag.Float64Var(&radioLoss, "radio-loss", 0, "probability a radio message is dropped")
	flag.BoolVar(&list, "list", false, "list scenarios and exit")
	flag.BoolVar(&quiet, "quiet", false, "suppress agent logs")
	flag.BoolVar(&showVer, "version", false, "print version and exit")
	flag.Parse()

	if showVer {
		fmt.Println(version.String("engage"))
		return
	}
	if list {
		for _, n := range scenario.Names() {
			sc, _ := scenario.Lookup(n)
			fmt.Printf("%-10s %s\n", n, sc.Description)
		}
		return
	}
	if quiet {
		monitoring.SetLogger(nil)
	}

	tuning := config.DefaultTuningConfig()
	if configPath != "" {
		cfg, err := config.LoadTuningConfig(configPath)
		if err != nil {
			log.Fatalf("load config: %v", err)
		}
		tuning = cfg
	}

	w, err := scenario.Load(name, scenario.Options{
		Seed:             seed,
		Tuning:           tuning,
		Noise:            noise,
		ReportConfidence: confidence,
		RadioLoss:        radioLoss,
	})
	if err != nil {
		log.Fatalf("load scenario: %v", err)
	}

	res := w.Run(ticks)
	fmt.Printf("%s: %d ticks, winner %s, alive %v, lost %v\n",
		name, res.Ticks, winner(res.Winner), res.Alive, res.Lost)
	for _, s := range telemetry.Summarize(res.Records) {
		fmt.Printf("  %-12s shots %-4d closest %8.1f m  mean error %7.1f m  detonated %t\n",
			s.BodyID, s.Shots, s.MinRange, s.MeanError, s.Detonated)
	}

	if dbPath != "" {
		if err := record(dbPath, name, seed, res.Records); err != nil {
			log.Fatalf("record run: %v", err)
		}
	}
	if pngPath != "" {
		if err := report.PlotTrajectories(res.Records, name, pngPath); err != nil {
			log.Fatalf("plot: %v", err)
		}
		fmt.Printf("wrote %s\n", pngPath)
	}
	if htmlPath != "" {
		if err := report.SaveRangeChart(fsutil.OSFileSystem{}, htmlPath, res.Records, name); err != nil {
			log.Fatalf("chart: %v", err)
		}
		fmt.Printf("wrote %s\n", htmlPath)
	}
}

func record(path, name string, seed int64, records []scenario.Record) error {
	rec, err := telemetry.Open(path)
	if err != nil {
		return err
	}
	defer rec.Close()
	if err := rec.MigrateUp(); err != nil {
		return err
	}
	run, err := rec.CreateRun(name, seed)
	if err != nil {
		return err
	}
	if err := rec.RecordTicks(run.ID, records); err != nil {
		return err
	}
	fmt.Printf("recorded %d rows as %s in %s\n", len(records), run.ID, path)
	return nil
}

func winner(team int) string {
	if team < 0 {
		return "none"
	}
	return fmt.Sprintf("team %d", team)
}
