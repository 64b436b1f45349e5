package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/nonsonwune/student_records/config"
	"github.com/nonsonwune/student_records/importer"
	"github.com/nonsonwune/student_records/reports"
)

// appKey stores the open session in the command context.
type appKey struct{}

func sessionFrom(ctx context.Context) *app {
	a, _ := ctx.Value(appKey{}).(*app)
	return a
}

func newRootCmd() *cobra.Command {
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:   "records",
		Short: "Student and course records manager",
		Long: `records keeps student and course records with enrollments in plain
delimited files under a data directory.

Run without a subcommand for the interactive menu.`,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}
			if err := config.LoadDotEnv(); err != nil {
				return err
			}
			cfg, err := config.Load(cfgFile, cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}
			a, err := openApp(cfg, cmd.OutOrStdout(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			cmd.SetContext(context.WithValue(cmd.Context(), appKey{}, a))
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := sessionFrom(cmd.Context())
			rl, err := readline.NewEx(&readline.Config{
				Prompt:          "> ",
				HistoryFile:     a.cfg.HistoryFile,
				InterruptPrompt: "^C",
				EOFPrompt:       "exit",
				Stdout:          cmd.OutOrStdout(),
			})
			if err != nil {
				return fmt.Errorf("failed to initialize input: %w", err)
			}
			defer func() { _ = rl.Close() }()

			return newMenu(a, rl).run()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default: ./records.yaml)")
	config.RegisterFlags(flags)

	rootCmd.AddCommand(newReportCmd(), newExportCmd(), newImportCmd())
	return rootCmd
}

var reportKinds = []string{"grades", "attendance", "top", "courses", "students", "summary"}

func newReportCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "report {" + strings.Join(reportKinds, "|") + "}",
		Short:     "Print one report and exit",
		ValidArgs: reportKinds,
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := sessionFrom(cmd.Context())
			return printReport(a, cmd.OutOrStdout(), args[0])
		},
	}
}

func printReport(a *app, w io.Writer, kind string) error {
	students := a.store.ListStudents()
	courses := a.store.ListCourses()

	switch kind {
	case "grades":
		renderGradeReport(w, students)
	case "attendance":
		renderAttendanceReport(w, students)
	case "top":
		renderTopPerformers(w, reports.TopPerformers(students, a.cfg.TopN))
	case "courses":
		renderCourses(w, courses)
	case "students":
		renderStudents(w, students, "Total students")
	case "summary":
		_, _, enrollments := a.store.Counts()
		renderSummary(w, students, courses, enrollments)
	default:
		return usagef("unknown report %q (want one of %s)", kind, strings.Join(reportKinds, ", "))
	}
	return nil
}

func newExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export FILE.xlsx",
		Short: "Export students, courses and grades to an xlsx workbook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := sessionFrom(cmd.Context())
			if err := exportWorkbook(a, args[0]); err != nil {
				return err
			}
			a.ui.success("Exported records to %s", args[0])
			return nil
		},
	}
}

func exportWorkbook(a *app, path string) (err error) {
	if ext := strings.ToLower(filepath.Ext(path)); ext != ".xlsx" {
		return usagef("export file must end in .xlsx, got %q", path)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error creating %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return reports.WriteWorkbook(f, a.store.ListStudents(), a.store.ListCourses())
}

func newImportCmd() *cobra.Command {
	var failedFile string

	cmd := &cobra.Command{
		Use:       "import {students|courses} FILE",
		Short:     "Import a roster from a .csv or .xlsx file",
		ValidArgs: []string{"students", "courses"},
		Args:      cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := sessionFrom(cmd.Context())
			res, err := importRoster(cmd.Context(), a, args[0], args[1])
			if err != nil {
				return err
			}
			printImportResult(a, res)
			if failedFile != "" && res.Failed > 0 {
				if err := writeFailed(res, failedFile); err != nil {
					return err
				}
				a.ui.info("Failed rows written to %s", failedFile)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&failedFile, "failed", "", "write rejected rows with their errors to this CSV file")
	return cmd
}

func importRoster(ctx context.Context, a *app, kind, path string) (*importer.ImportResult, error) {
	im := importer.New(a.logger)
	switch kind {
	case "students":
		return im.ImportStudents(ctx, a.store, path)
	case "courses":
		return im.ImportCourses(ctx, a.store, path)
	default:
		return nil, usagef("unknown import kind %q (want students or courses)", kind)
	}
}

func printImportResult(a *app, res *importer.ImportResult) {
	a.ui.success("Imported %d of %d row(s) from %s", res.Imported, res.Total(), res.Source)
	for i, err := range res.Errors {
		if i == 10 {
			a.ui.warn("... and %d more", len(res.Errors)-i)
			break
		}
		a.ui.errorf("%v", err)
	}
	if res.PersistErr != nil {
		a.ui.warn("Imported rows could not be saved: %v", res.PersistErr)
	}
}

func writeFailed(res *importer.ImportResult, path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error creating %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	if err := res.SaveFailedRecords(f); err != nil {
		return err
	}
	return nil
}

// isUsage reports whether err came from bad arguments.
func isUsage(err error) bool {
	var ue usageError
	return errors.As(err, &ue)
}
