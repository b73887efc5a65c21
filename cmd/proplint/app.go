package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/c360studio/proplint/config"
	"github.com/c360studio/proplint/lint"
	"github.com/c360studio/proplint/report"
	"github.com/c360studio/proplint/watch"
)

func checkCmd(configPath *string) *cobra.Command {
	var (
		format string
		output string
	)

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate the proposal set once and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			runner, err := newRunner(*configPath)
			if err != nil {
				return err
			}

			rep, err := runner.Run(cmd.Context())
			if err != nil {
				return err
			}

			if err := writeReport(rep, format, output); err != nil {
				return err
			}

			if !rep.Passed() {
				return fmt.Errorf("%d of %d proposals have violations", rep.Failed, rep.Checked)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "text", "Report format (text, json)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write report to file instead of stdout")
	return cmd
}

func watchCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Validate continuously, re-running on file changes",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, runner, err := newConfigAndRunner(*configPath)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			watcher, err := watch.New(cfg.Watch, cfg.Proposals.Root, slog.Default())
			if err != nil {
				return fmt.Errorf("create watcher: %w", err)
			}
			defer watcher.Stop()

			if err := watcher.Start(ctx); err != nil {
				return fmt.Errorf("start watcher: %w", err)
			}

			// Seed content hashes up front so a save that does not change a
			// file never retriggers, not even the first one.
			if paths, err := runner.Discover(); err == nil {
				watcher.Seed(paths)
			}

			// Initial run before waiting for changes.
			if err := runAndPrint(ctx, runner); err != nil {
				return err
			}

			for {
				select {
				case <-ctx.Done():
					return nil
				case trigger, ok := <-watcher.Triggers():
					if !ok {
						return nil
					}
					slog.Info("Change detected, revalidating",
						slog.Int("changed", len(trigger.Paths)))
					if err := runAndPrint(ctx, runner); err != nil {
						return err
					}
				}
			}
		},
	}
	return cmd
}

func indexCmd(configPath *string) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "index",
		Short: "Print the id, status and title of every proposal",
		RunE: func(cmd *cobra.Command, args []string) error {
			runner, err := newRunner(*configPath)
			if err != nil {
				return err
			}

			index, err := runner.BuildIndex(cmd.Context())
			if err != nil {
				return err
			}

			entries := index.Entries()
			if format == "json" {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(entries)
			}
			for _, e := range entries {
				fmt.Printf("%-8d %-12s %s\n", e.ID, e.Status, e.Title)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format (text, json)")
	return cmd
}

func newRunner(configPath string) (*lint.Runner, error) {
	_, runner, err := newConfigAndRunner(configPath)
	return runner, err
}

func newConfigAndRunner(configPath string) (*config.Config, *lint.Runner, error) {
	loader := config.NewLoader(slog.Default())
	cfg, err := loader.Load(configPath)
	if err != nil {
		return nil, nil, err
	}

	runner, err := lint.NewRunner(cfg, slog.Default())
	if err != nil {
		return nil, nil, err
	}
	return cfg, runner, nil
}

func runAndPrint(ctx context.Context, runner *lint.Runner) error {
	rep, err := runner.Run(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return err
	}
	return rep.WriteText(os.Stdout)
}

func writeReport(rep *report.Report, format, output string) error {
	var w io.Writer = os.Stdout
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("create report file: %w", err)
		}
		defer f.Close()
		w = f
	}

	switch format {
	case "json":
		return rep.WriteJSON(w)
	case "text":
		return rep.WriteText(w)
	default:
		return fmt.Errorf("unknown report format %q (want text or json)", format)
	}
}
