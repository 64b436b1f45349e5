package main

import (
	"io"
	"log/slog"

	"github.com/fatih/color"

	"github.com/nonsonwune/student_records/config"
	"github.com/nonsonwune/student_records/migrations"
	"github.com/nonsonwune/student_records/registry"
	"github.com/nonsonwune/student_records/storage"
)

// app is one open session over the data directory.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
	files  *storage.FileStore
	store  *registry.Store
	ui     ui
}

var missingMessages = map[string]string{
	storage.StudentsFile:    "No existing student data file found. Starting fresh.",
	storage.CoursesFile:     "No existing course data file found. Starting fresh.",
	storage.EnrollmentsFile: "No existing enrollment data file found. Starting fresh.",
}

// openApp prepares the data directory, loads the saved records and rebuilds
// the in-memory store. Unreadable files are reported and treated as empty.
func openApp(cfg *config.Config, out, errOut io.Writer) (*app, error) {
	if cfg.NoColor {
		color.NoColor = true
	}
	logger := slog.New(slog.NewTextHandler(errOut, &slog.HandlerOptions{Level: cfg.Level()}))
	a := &app{
		cfg:    cfg,
		logger: logger,
		files:  storage.NewFileStore(cfg.DataDir, logger),
		ui:     ui{out: out},
	}

	mismatches, err := migrations.InitSchema(cfg.DataDir)
	if err != nil {
		return nil, err
	}
	for _, m := range mismatches {
		a.ui.warn("%s", m.String())
	}

	res, err := a.files.Load()
	if err != nil {
		a.ui.warn("Some data could not be read and was skipped: %v", err)
	}
	for _, name := range res.Missing {
		a.ui.info("%s", missingMessages[name])
	}
	if n := len(res.Skipped); n > 0 {
		a.ui.warn("Skipped %d malformed line(s) while loading.", n)
	}
	if res.Unresolved > 0 {
		a.ui.warn("Skipped %d enrollment(s) referring to unknown students or courses.", res.Unresolved)
	}

	store, report := registry.Restore(res.Students, res.Courses, res.Enrollments,
		registry.WithCommitter(a.files),
		registry.WithLogger(logger),
		registry.WithDefaultCapacity(cfg.DefaultCapacity),
	)
	if n := report.DuplicateStudents + report.DuplicateCourses + report.DroppedPairs; n > 0 {
		a.ui.warn("Ignored %d duplicate or over-capacity record(s) while loading.", n)
	}
	a.store = store

	students, courses, enrollments := store.Counts()
	logger.Info("session opened",
		slog.String("data_dir", cfg.DataDir),
		slog.String("config_file", cfg.FileUsed),
		slog.Int("students", students),
		slog.Int("courses", courses),
		slog.Int("enrollments", enrollments))
	return a, nil
}
