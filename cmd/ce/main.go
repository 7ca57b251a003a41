package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/collaboreats/collaboreats/internal/config"
	"github.com/collaboreats/collaboreats/internal/debug"
	"github.com/collaboreats/collaboreats/internal/forktree"
	"github.com/collaboreats/collaboreats/internal/storage"
	"github.com/collaboreats/collaboreats/internal/storage/factory"
	"github.com/collaboreats/collaboreats/internal/telemetry"
	"github.com/collaboreats/collaboreats/internal/ui"
)

var (
	dbPath      string
	backendFlag string
	actor       string
	jsonOutput  bool
	verboseFlag bool
	quietFlag   bool

	store storage.Storage
	svc   *forktree.Service

	// Signal-aware context for graceful cancellation
	rootCtx    context.Context
	rootCancel context.CancelFunc
)

// skipStoreAnnotation marks commands that run without an open store.
const skipStoreAnnotation = "ce:no-store"

func init() {
	if err := config.Initialize(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize config: %v\n", err)
	}

	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Database path (default: .collaboreats/recipes.db)")
	rootCmd.PersistentFlags().StringVar(&backendFlag, "backend", "", "Storage backend: sqlite, mysql, dolt or memory")
	rootCmd.PersistentFlags().StringVar(&actor, "actor", "", "Actor name recorded as owner and author (default: $CE_ACTOR, $USER)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Enable verbose/debug output")
	rootCmd.PersistentFlags().BoolVarP(&quietFlag, "quiet", "q", false, "Suppress non-essential output (errors only)")

	rootCmd.Flags().BoolP("version", "V", false, "Print version information")

	rootCmd.AddGroup(&cobra.Group{ID: "recipes", Title: "Working With Recipes:"})
	rootCmd.AddGroup(&cobra.Group{ID: "views", Title: "Trees & Reports:"})
	rootCmd.AddGroup(&cobra.Group{ID: "data", Title: "Import & Export:"})
	rootCmd.AddGroup(&cobra.Group{ID: "setup", Title: "Setup & Configuration:"})
}

var rootCmd = &cobra.Command{
	Use:           "ce",
	Short:         "ce - recipe versions and their fork trees",
	Long:          `Share recipes, fork each other's versions, and browse the family tree every recipe grows.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if v, _ := cmd.Flags().GetBool("version"); v {
			printVersion()
			return nil
		}
		return cmd.Help()
	},
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		setupSignalContext()
		applyFlagOverrides(cmd)

		if err := initTelemetry(); err != nil {
			WarnError("telemetry disabled: %v", err)
		}
		if skipsStore(cmd) {
			return nil
		}
		return openStore(rootCtx)
	},
}

func setupSignalContext() {
	rootCtx, rootCancel = signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// applyFlagOverrides pushes explicitly set global flags into config so every
// later lookup sees one merged view.
func applyFlagOverrides(cmd *cobra.Command) {
	flags := cmd.Flags()
	if flags.Changed("db") {
		config.Set("db", dbPath)
	}
	if flags.Changed("backend") {
		config.Set("backend", backendFlag)
	}
	if flags.Changed("actor") {
		config.Set("actor", actor)
	}
	if !flags.Changed("json") {
		jsonOutput = config.GetBool("json")
	}
	if !flags.Changed("verbose") {
		verboseFlag = config.GetBool("verbose")
	}
	if !flags.Changed("quiet") {
		quietFlag = config.GetBool("quiet")
	}
	debug.SetVerbose(verboseFlag)
	debug.SetQuiet(quietFlag || jsonOutput)
	if !ui.ShouldUseColor() {
		ui.DisableColor()
	}
}

func skipsStore(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations[skipStoreAnnotation] == "true" {
			return true
		}
	}
	// help and completion are cobra-generated
	switch cmd.Name() {
	case "help", "completion", cobra.ShellCompRequestCmd, cobra.ShellCompNoDescRequestCmd:
		return true
	}
	return false
}

func noStore() map[string]string {
	return map[string]string{skipStoreAnnotation: "true"}
}

// openStore opens the configured backend. A missing SQLite file means the
// project was never initialized; the driver would otherwise create an empty
// database in an unexpected place.
func openStore(ctx context.Context) error {
	backend, opts := factory.OptionsFromConfig()
	if backend == "" || backend == factory.BackendSQLite {
		if _, err := os.Stat(opts.Path); os.IsNotExist(err) {
			return withHint(
				fmt.Errorf("no recipe database at %s: %w", opts.Path, storage.ErrNotInitialized),
				"Run 'ce init' to create one, or pass --db")
		}
	}
	debug.Logf("opening %s store at %s\n", backend, opts.Path)

	s, err := factory.New(ctx, backend, opts)
	if err != nil {
		return fmt.Errorf("open %s store: %w", backend, err)
	}
	if telemetry.Enabled() {
		s = telemetry.WrapStorage(s)
	}
	store = s
	svc = newService(s)
	return nil
}

func newService(s storage.Storage) *forktree.Service {
	opts := forktree.Options{
		Strict:  config.GetBool("tree.strict"),
		Workers: config.GetInt("tree.workers"),
	}
	if telemetry.Enabled() {
		opts.Recorder = telemetry.NewBuildRecorder(telemetry.Meter("github.com/collaboreats/collaboreats/forktree"))
	}
	return forktree.New(s, opts)
}

func initTelemetry() error {
	return telemetry.Init(rootCtx, "ce", Version, telemetry.Options{
		Enabled:  config.GetBool("telemetry.enabled"),
		Stdout:   config.GetBool("telemetry.stdout"),
		Endpoint: config.GetString("telemetry.endpoint"),
	})
}

// getActor returns the name recorded on new recipes and comments.
func getActor() string {
	return config.Actor()
}

// dataDir is where events.log lives. debug.LogEvent skips it when the
// directory does not exist.
func dataDir() string {
	return config.DataDir()
}

func cleanup() {
	if store != nil {
		if err := store.Close(); err != nil {
			debug.Logf("close store: %v\n", err)
		}
		store = nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	telemetry.Shutdown(ctx)
	if rootCancel != nil {
		rootCancel()
	}
}

func run() int {
	err := rootCmd.Execute()
	cleanup()
	if err != nil {
		reportError(err)
		return 1
	}
	return 0
}

func main() {
	os.Exit(run())
}
