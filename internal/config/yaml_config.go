package config

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
)

// KnownKeys are the keys `ce config set` accepts. Anything else is rejected
// so a typo does not silently land in config.yaml.
var KnownKeys = []string{
	"actor",
	"backend",
	"db",
	"json",
	"quiet",
	"verbose",
	"id.prefix",
	"id.length",
	"tree.strict",
	"tree.max-depth",
	"tree.workers",
	"serve.addr",
	"serve.read-timeout",
	"serve.fetch-timeout",
	"mysql.host",
	"mysql.port",
	"mysql.user",
	"mysql.database",
	"mysql.tls",
	"dolt.path",
	"dolt.server",
	"dolt.database",
	"dolt.committer-name",
	"dolt.committer-email",
	"telemetry.enabled",
	"telemetry.stdout",
	"telemetry.endpoint",
}

// IsKnownKey reports whether key may be written with SetYamlConfig.
// mysql.password is not listed; set CE_MYSQL_PASSWORD instead.
func IsKnownKey(key string) bool {
	return slices.Contains(KnownKeys, key)
}

// SetYamlConfig writes key: value into the project's config.yaml, creating
// .collaboreats/config.yaml in the working directory when none exists yet.
// Commented-out occurrences of the key are replaced in place.
func SetYamlConfig(key, value string) error {
	if !IsKnownKey(key) {
		return fmt.Errorf("unknown config key %q", key)
	}

	configPath, err := findProjectConfigYaml()
	if err != nil {
		configPath = filepath.Join(DirName, "config.yaml")
		if err := os.MkdirAll(DirName, 0o750); err != nil {
			return fmt.Errorf("failed to create %s: %w", DirName, err)
		}
	}

	content, err := os.ReadFile(configPath) //nolint:gosec // configPath is from findProjectConfigYaml
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to read config.yaml: %w", err)
	}

	newContent := updateYamlKey(string(content), key, value)
	if err := os.WriteFile(configPath, []byte(newContent+"\n"), 0o600); err != nil {
		return fmt.Errorf("failed to write config.yaml: %w", err)
	}

	// Keep the running process consistent with the file.
	ensure().Set(key, value)
	return nil
}

// GetYamlConfig returns the effective value of key, or "" before Initialize.
func GetYamlConfig(key string) string {
	if v == nil {
		return ""
	}
	return v.GetString(key)
}

// findProjectConfigYaml walks up from the working directory to the nearest
// .collaboreats/config.yaml.
func findProjectConfigYaml() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get working directory: %w", err)
	}

	for dir := cwd; ; dir = filepath.Dir(dir) {
		configPath := filepath.Join(dir, DirName, "config.yaml")
		if _, err := os.Stat(configPath); err == nil {
			return configPath, nil
		}
		if dir == filepath.Dir(dir) {
			break
		}
	}

	return "", fmt.Errorf("no %s/config.yaml found", DirName)
}

// updateYamlKey sets key in yaml content. An existing line for the key,
// commented or not, is rewritten in place keeping its indent; otherwise the
// key is appended.
func updateYamlKey(content, key, value string) string {
	newLine := fmt.Sprintf("%s: %s", key, formatYamlValue(value))
	keyPattern := regexp.MustCompile(`^(\s*)(#\s*)?` + regexp.QuoteMeta(key) + `\s*:`)

	found := false
	var result []string

	scanner := bufio.NewScanner(strings.NewReader(strings.TrimRight(content, "\n")))
	for scanner.Scan() {
		line := scanner.Text()
		if m := keyPattern.FindStringSubmatch(line); m != nil && !found {
			result = append(result, m[1]+newLine)
			found = true
			continue
		}
		result = append(result, line)
	}

	if !found {
		if len(result) > 0 && result[len(result)-1] != "" {
			result = append(result, "")
		}
		result = append(result, newLine)
	}

	return strings.Join(result, "\n")
}

// formatYamlValue quotes value only when YAML would misread it.
func formatYamlValue(value string) string {
	lower := strings.ToLower(value)
	if lower == "true" || lower == "false" {
		return lower
	}
	if isNumeric(value) || isDuration(value) {
		return value
	}
	if needsQuoting(value) {
		return fmt.Sprintf("%q", value)
	}
	return value
}

func isNumeric(s string) bool {
	if s == "" || s == "-" {
		return false
	}
	for i, c := range s {
		if c == '-' && i == 0 {
			continue
		}
		if c == '.' {
			continue
		}
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

func isDuration(s string) bool {
	if len(s) < 2 {
		return false
	}
	switch s[len(s)-1] {
	case 's', 'm', 'h':
		return isNumeric(s[:len(s)-1])
	}
	return false
}

func needsQuoting(s string) bool {
	if s == "" || strings.TrimSpace(s) != s {
		return true
	}
	return strings.ContainsAny(s, ":#[]{},&*!|>'\"%@`")
}
