// Package main provides the memberdir binary entry point. Memberdir manages
// the section configuration of a member profile directory: it validates and
// syncs administrator-authored section documents, guards against destructive
// schema changes, and answers visibility questions for rendering layers.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"github.com/c360studio/memberdir/config"
	"github.com/c360studio/memberdir/ingest"
	"github.com/c360studio/memberdir/visibility"
)

const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "memberdir"
)

func main() {
	// Add panic recovery
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var logLevel string

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Member directory section configuration",
		Long: `Memberdir manages administrator-defined profile sections for a member
directory: syncing section documents into the live registry, validating
uploads against naming and collision rules, guarding stored member data
against destructive schema changes, and previewing per-viewer visibility.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	cmd.AddCommand(
		syncCmd(&logLevel),
		validateCmd(&logLevel),
		sectionsCmd(&logLevel),
		fieldsCmd(&logLevel),
		reorderCmd(&logLevel),
		deleteCmd(&logLevel),
		relabelCmd(&logLevel),
		previewCmd(&logLevel),
		serveCmd(&logLevel),
		versionCmd(),
	)

	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("%s version %s (build: %s)\n", appName, Version, BuildTime)
		},
	}
}

func setupLogger(logLevel string) *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(logLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger
}

// withApp loads config, wires the application, and hands it to fn.
func withApp(logLevel string, fn func(ctx context.Context, app *App) error) error {
	ctx := context.Background()
	logger := setupLogger(logLevel)

	cfg, err := config.NewLoader(logger).Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	app, err := NewApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer app.Close(ctx)

	return fn(ctx, app)
}

func syncCmd(logLevel *string) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Validate and promote all section documents",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(*logLevel, func(ctx context.Context, app *App) error {
				result, err := app.SyncDocuments(ctx)
				if err != nil {
					return err
				}
				printSyncResult(result)
				return nil
			})
		},
	}
}

func printSyncResult(result *ingest.Result) {
	fmt.Printf("Batch %s\n", result.BatchID)
	for _, id := range result.Loaded {
		fmt.Printf("  ✓ %s\n", id)
	}
	for id, reason := range result.Skipped {
		fmt.Printf("  ✗ %s: %s\n", id, reason)
	}
	fmt.Printf("%d loaded, %d skipped\n", len(result.Loaded), len(result.Skipped))
}

func validateCmd(logLevel *string) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <document.json>",
		Short: "Validate one section document against the live registry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(*logLevel, func(ctx context.Context, app *App) error {
				data, err := os.ReadFile(args[0])
				if err != nil {
					return fmt.Errorf("read document: %w", err)
				}
				def, verr := app.Registry.ValidateUpload(data)
				if verr != nil {
					return fmt.Errorf("%s: %s", verr.Kind, verr.Reason)
				}
				fmt.Printf("✓ %s is valid (%d content fields)\n", def.Key, len(def.ContentFieldKeys()))
				return nil
			})
		},
	}
}

func sectionsCmd(logLevel *string) *cobra.Command {
	return &cobra.Command{
		Use:   "sections",
		Short: "List live sections in display order",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(*logLevel, func(ctx context.Context, app *App) error {
				for _, s := range app.Registry.Sections() {
					fmt.Printf("%3d  %-24s %s (%d fields)\n", s.Order, s.Key, s.Label, len(s.AllFields()))
				}
				return nil
			})
		},
	}
}

func fieldsCmd(logLevel *string) *cobra.Command {
	return &cobra.Command{
		Use:   "fields <section>",
		Short: "Show a section's tab groups and fields",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(*logLevel, func(ctx context.Context, app *App) error {
				s := app.Registry.Section(args[0])
				if s == nil {
					return fmt.Errorf("unknown section %q", args[0])
				}
				for _, g := range s.FieldGroups() {
					fmt.Printf("[%s]\n", g.Tab)
					for _, f := range g.Fields {
						fmt.Printf("  %-40s %s\n", f.Key, f.Type)
					}
				}
				return nil
			})
		},
	}
}

func reorderCmd(logLevel *string) *cobra.Command {
	return &cobra.Command{
		Use:   "reorder <section-a> <section-b>",
		Short: "Swap the display order of two adjacent sections",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(*logLevel, func(ctx context.Context, app *App) error {
				return app.Pipeline.Reorder(ctx, args[0], args[1])
			})
		},
	}
}

func deleteCmd(logLevel *string) *cobra.Command {
	var confirm bool
	cmd := &cobra.Command{
		Use:   "delete <section>",
		Short: "Delete a section (requires --confirm; backs up first)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(*logLevel, func(ctx context.Context, app *App) error {
				return app.Pipeline.Delete(ctx, args[0], confirm)
			})
		},
	}
	cmd.Flags().BoolVar(&confirm, "confirm", false, "Confirm the deletion")
	return cmd
}

func relabelCmd(logLevel *string) *cobra.Command {
	return &cobra.Command{
		Use:   "relabel <section> <label>",
		Short: "Change a section's display label (backs up first)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(*logLevel, func(ctx context.Context, app *App) error {
				return app.Pipeline.Relabel(ctx, args[0], args[1])
			})
		},
	}
}

func previewCmd(logLevel *string) *cobra.Command {
	var level string
	cmd := &cobra.Command{
		Use:   "preview <section>",
		Short: "Preview which fields a spoofed viewer would see",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(*logLevel, func(ctx context.Context, app *App) error {
				viewer, err := visibility.SpoofViewer(visibility.SpoofLevel(level))
				if err != nil {
					return err
				}

				s := app.Registry.Section(args[0])
				if s == nil {
					return fmt.Errorf("unknown section %q", args[0])
				}

				// Hidden fields are omitted entirely, the same contract
				// renderers honor.
				fmt.Printf("%s as %s viewer:\n", s.Key, level)
				for _, f := range s.AllFields() {
					levels := visibility.Levels{
						Field:   f.PMPDefault,
						Section: s.PMPDefault,
						Global:  app.Config.Visibility.GlobalDefault,
					}
					if app.Resolver.CanView(levels, viewer) {
						fmt.Printf("  %s\n", f.Key)
					}
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&level, "level", string(visibility.SpoofPublic), "Spoof level (member or public)")
	return cmd
}

func serveCmd(logLevel *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve metrics and re-sync on document changes",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(*logLevel, func(ctx context.Context, app *App) error {
				return app.Serve(ctx)
			})
		},
	}
}
