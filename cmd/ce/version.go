package main

import (
	"fmt"
	"runtime/debug"

	"github.com/spf13/cobra"
)

var (
	// Version is the current version of ce (overridden by ldflags at build time)
	Version = "0.1.0"
	// Build can be set via ldflags at compile time
	Build = "dev"
)

var versionCmd = &cobra.Command{
	Use:         "version",
	GroupID:     "setup",
	Short:       "Print version information",
	Annotations: noStore(),
	Args:        cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if jsonOutput {
			result := map[string]string{"version": Version, "build": Build}
			if commit := resolveCommitHash(); commit != "" {
				result["commit"] = commit
			}
			return outputJSON(result)
		}
		printVersion()
		return nil
	},
}

func printVersion() {
	if commit := resolveCommitHash(); commit != "" {
		fmt.Printf("ce version %s (%s: %s)\n", Version, Build, shortCommit(commit))
		return
	}
	fmt.Printf("ce version %s (%s)\n", Version, Build)
}

// resolveCommitHash reads the VCS revision stamped by the go toolchain.
func resolveCommitHash() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	for _, s := range info.Settings {
		if s.Key == "vcs.revision" {
			return s.Value
		}
	}
	return ""
}

func shortCommit(hash string) string {
	if len(hash) > 12 {
		return hash[:12]
	}
	return hash
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
