package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-timetable-api/internal/csvio"
	"github.com/noah-isme/sma-timetable-api/internal/scheduler"
	"github.com/noah-isme/sma-timetable-api/pkg/config"
	"github.com/noah-isme/sma-timetable-api/pkg/export"
	"github.com/noah-isme/sma-timetable-api/pkg/logger"
)

type options struct {
	inputDir        string
	academicYear    string
	term            string
	seed            int64
	out             string
	unscheduledPath string
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	var opts options
	flag.StringVar(&opts.inputDir, "input", ".", "Directory holding classes.csv, rooms.csv, time_slots.csv and optionally availability.csv")
	flag.StringVar(&opts.academicYear, "year", "", "Academic year to schedule")
	flag.StringVar(&opts.term, "term", "", "Term to schedule")
	flag.Int64Var(&opts.seed, "seed", cfg.Scheduler.Seed, "Shuffle seed, 0 picks one from the clock")
	flag.StringVar(&opts.out, "out", "-", "Sessions CSV output path, - for stdout")
	flag.StringVar(&opts.unscheduledPath, "unscheduled", "", "Optional CSV path for classes that could not be placed")
	flag.Parse()

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if err := run(cfg, opts, logr); err != nil {
		logr.Fatal("timetable generation failed", zap.Error(err))
	}
}

func run(cfg *config.Config, opts options, logr *zap.Logger) error {
	if opts.academicYear == "" || opts.term == "" {
		return errors.New("-year and -term are required")
	}
	inputs, err := csvio.LoadDir(opts.inputDir)
	if err != nil {
		return err
	}

	window := scheduler.Window{Open: cfg.Scheduler.WindowOpen, Close: cfg.Scheduler.WindowClose}
	if window.Open == "" || window.Close == "" {
		window = scheduler.DefaultWindow
	}
	slots := scheduler.EligibleSlots(inputs.Slots, window)
	classes := inputs.ForTerm(opts.academicYear, opts.term)
	logr.Info("inputs loaded",
		zap.Int("classes", len(classes)),
		zap.Int("rooms", len(inputs.Rooms)),
		zap.Int("slots", len(inputs.Slots)),
		zap.Int("eligible_slots", len(slots)),
		zap.Int("availability", len(inputs.Availability)),
	)

	problem := scheduler.NewProblem(opts.academicYear, opts.term, classes, inputs.Rooms, slots, inputs.Availability)
	result, err := scheduler.NewAllocator(opts.seed, cfg.Scheduler.DurationTolerance).Allocate(problem)
	if err != nil {
		return err
	}
	for _, class := range result.Unscheduled {
		logr.Warn("class left unscheduled", zap.String("class_id", class.ID), zap.String("instructor_id", class.InstructorID))
	}

	if err := writeTo(opts.out, func(w io.Writer) error { return export.WriteSessions(w, result.Sessions) }); err != nil {
		return err
	}
	if opts.unscheduledPath != "" {
		if err := writeTo(opts.unscheduledPath, func(w io.Writer) error { return export.WriteUnscheduled(w, result.Unscheduled) }); err != nil {
			return err
		}
	}
	logr.Info("timetable generated", zap.Int("sessions", len(result.Sessions)), zap.Int("unscheduled", len(result.Unscheduled)))
	return nil
}

func writeTo(path string, write func(io.Writer) error) error {
	if path == "-" {
		return write(os.Stdout)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
