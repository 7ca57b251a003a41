package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/collaboreats/collaboreats/internal/config"
	"github.com/collaboreats/collaboreats/internal/ui"
)

var configCmd = &cobra.Command{
	Use:         "config",
	GroupID:     "setup",
	Short:       "Read and write settings",
	Annotations: noStore(),
	Long: `Read and write settings in .collaboreats/config.yaml.

Every key can also be set with an environment variable: CE_ plus the key
in upper case with dots and dashes turned into underscores, e.g.
CE_TREE_MAX_DEPTH=3. Environment variables win over the file.

Examples:
  ce config get backend
  ce config set actor ana
  ce config set tree.strict true
  ce config list`,
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print the effective value of a key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		key := args[0]
		if !config.IsKnownKey(key) && key != "mysql.password" {
			return unknownKeyError(key)
		}
		value := config.GetString(key)
		if jsonOutput {
			return outputJSON(map[string]string{"key": key, "value": value})
		}
		fmt.Println(value)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Write a key to the project config.yaml",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]
		if key == "mysql.password" {
			return withHint(fmt.Errorf("mysql.password is not stored in config.yaml"), "Set CE_MYSQL_PASSWORD instead")
		}
		if !config.IsKnownKey(key) {
			return unknownKeyError(key)
		}
		if err := config.SetYamlConfig(key, value); err != nil {
			return err
		}
		if jsonOutput {
			return outputJSON(map[string]string{"key": key, "value": value})
		}
		fmt.Printf("Set %s = %s\n", key, value)
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print every known key with its effective value",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		keys := append([]string(nil), config.KnownKeys...)
		sort.Strings(keys)

		if jsonOutput {
			out := make(map[string]string, len(keys))
			for _, k := range keys {
				out[k] = config.GetString(k)
			}
			return outputJSON(out)
		}

		if used := config.ConfigFileUsed(); used != "" {
			fmt.Println(ui.RenderMuted("# " + used))
		}
		width := 0
		for _, k := range keys {
			width = max(width, len(k))
		}
		for _, k := range keys {
			fmt.Printf("%-*s  %s\n", width, k, config.GetString(k))
		}
		return nil
	},
}

func unknownKeyError(key string) error {
	var similar []string
	prefix, _, _ := strings.Cut(key, ".")
	for _, k := range config.KnownKeys {
		if strings.HasPrefix(k, prefix) {
			similar = append(similar, k)
		}
	}
	err := fmt.Errorf("unknown config key %q", key)
	if len(similar) > 0 {
		return withHint(err, "Did you mean one of: "+strings.Join(similar, ", "))
	}
	return withHint(err, "Run 'ce config list' to see every key")
}

func init() {
	configCmd.AddCommand(configGetCmd, configSetCmd, configListCmd)
	rootCmd.AddCommand(configCmd)
}
