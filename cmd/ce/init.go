package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/collaboreats/collaboreats/internal/config"
	"github.com/collaboreats/collaboreats/internal/debug"
	"github.com/collaboreats/collaboreats/internal/storage/factory"
)

const dataDirGitignore = `# Local recipe database and event log
recipes.db
recipes.db-*
dolt/
events.log
`

var (
	initPrefix string
	initQuiet  bool
)

var initCmd = &cobra.Command{
	Use:         "init",
	GroupID:     "setup",
	Short:       "Create a recipe database in the current directory",
	Annotations: noStore(),
	Long: `Create .collaboreats/ in the current directory with a config.yaml and an
empty recipe database.

Running init again is safe: an existing config.yaml is kept and the
database schema is brought up to date.

Examples:
  ce init
  ce init --backend dolt
  ce init --prefix soup`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := validatePrefix(initPrefix); err != nil {
			return err
		}

		dir, err := filepath.Abs(config.DirName)
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}

		existing := config.LoadLocalConfig(dir)
		local := &config.LocalConfig{Backend: config.Store().Backend}
		local.ID.Prefix = initPrefix
		if local.ID.Prefix == "" {
			local.ID.Prefix = config.GetString("id.prefix")
		}
		if err := config.WriteLocalConfig(dir, local); err != nil {
			return fmt.Errorf("write config.yaml: %w", err)
		}
		gitignore := filepath.Join(dir, ".gitignore")
		if _, err := os.Stat(gitignore); os.IsNotExist(err) {
			if err := os.WriteFile(gitignore, []byte(dataDirGitignore), 0o600); err != nil {
				WarnError("failed to write .gitignore: %v", err)
			}
		}

		// Re-read so the new project config and this directory win.
		if err := config.Initialize(); err != nil {
			return err
		}
		applyFlagOverrides(cmd)
		if existing.Backend != "" && cmd.Flags().Changed("backend") && existing.Backend != backendFlag {
			WarnError("config.yaml already selects backend %q; --backend %s applies to this run only", existing.Backend, backendFlag)
		}
		if initPrefix != "" {
			config.Set("id.prefix", initPrefix)
		}

		backend, opts := factory.OptionsFromConfig()
		s, err := factory.New(rootCtx, backend, opts)
		if err != nil {
			return fmt.Errorf("initialize %s store: %w", backend, err)
		}
		if err := s.Close(); err != nil {
			return err
		}

		debug.LogEvent(dir, debug.EventInit, "", getActor(), fmt.Sprintf("backend=%s", backend))

		if jsonOutput {
			return outputJSON(map[string]string{
				"data_dir": dir,
				"backend":  backend,
				"database": opts.Path,
				"prefix":   config.GetString("id.prefix"),
			})
		}
		if !initQuiet {
			fmt.Printf("Initialized %s store in %s\n", backend, dir)
			debug.PrintNormal("  recipe ids: %s-xxxxxx\n", config.GetString("id.prefix"))
		}
		return nil
	},
}

func validatePrefix(prefix string) error {
	if prefix == "" {
		return nil
	}
	if len(prefix) > 8 || strings.ContainsFunc(prefix, func(r rune) bool {
		return (r < 'a' || r > 'z') && (r < '0' || r > '9')
	}) {
		return withHint(fmt.Errorf("invalid prefix %q", prefix), "Use up to 8 lowercase letters or digits")
	}
	return nil
}

func init() {
	initCmd.Flags().StringVarP(&initPrefix, "prefix", "p", "", "Recipe id prefix (default: rc)")
	initCmd.Flags().BoolVar(&initQuiet, "silent", false, "Print nothing on success")
	rootCmd.AddCommand(initCmd)
}
