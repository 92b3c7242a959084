// Package config resolves and validates the command line into an immutable
// pipeline configuration.
package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// OptionTools lists the external tools that accept a pass-through option
// string, in pipeline order. fasta2DB and DB2fasta take none.
var OptionTools = []string{
	"DBsplit",
	"daligner",
	"REPmask",
	"datander",
	"TANmask",
	"DAScover",
	"DASqv",
	"DAStrim",
	"DASpatch",
	"DASedit",
}

// ConfigError reports a bad or missing command line argument.
type ConfigError struct {
	Msg string
}

func (e ConfigError) Error() string {
	return e.Msg
}

// Raw holds command line values before validation.
type Raw struct {
	InputReads  string
	GenomeSize  string
	TempDir     string
	Keep        bool
	RepeatDepth float64
	Plot        bool
	HistFile    string
	ToolOptions map[string]string
}

// Config is the resolved pipeline configuration. Built once by Resolve and
// read-only afterward.
type Config struct {
	InputReads  string
	GenomeSize  int64
	RepeatDepth float64
	TempDir     string
	Keep        bool
	Plot        bool
	HistFile    string

	toolOptions map[string][]string
}

// ToolOptions returns the user-supplied extra arguments for a tool, already
// split on whitespace. Nil when the user gave none.
func (c *Config) ToolOptions(tool string) []string {
	return c.toolOptions[tool]
}

// HasToolOption reports whether any user-supplied argument for the tool
// starts with the given prefix. Used to let user overrides suppress computed
// defaults such as DBsplit -s or REPmask -c.
func (c *Config) HasToolOption(tool, prefix string) bool {
	for _, opt := range c.toolOptions[tool] {
		if strings.HasPrefix(opt, prefix) {
			return true
		}
	}
	return false
}

// Resolve validates raw arguments and builds the pipeline configuration. It
// has no side effects beyond validation: the temporary directory is named but
// not created.
func Resolve(raw Raw) (*Config, error) {
	if raw.InputReads == "" {
		return nil, ConfigError{"an input read file is required"}
	}
	if info, err := os.Stat(raw.InputReads); err != nil || info.IsDir() {
		return nil, ConfigError{"input read file does not exist: " + raw.InputReads}
	}
	inputReads, err := filepath.Abs(raw.InputReads)
	if err != nil {
		return nil, ConfigError{"could not resolve input path: " + err.Error()}
	}

	genomeSize, err := ParseGenomeSize(raw.GenomeSize)
	if err != nil {
		return nil, err
	}

	if raw.RepeatDepth <= 0 {
		return nil, ConfigError{"repeat depth must be greater than 0"}
	}

	tempDir := raw.TempDir
	if tempDir == "" {
		tempDir = fmt.Sprintf("dascrubber_temp_%d", os.Getpid())
	}
	tempDir, err = filepath.Abs(tempDir)
	if err != nil {
		return nil, ConfigError{"could not resolve temp directory path: " + err.Error()}
	}
	if _, err := os.Stat(tempDir); err == nil {
		return nil, ConfigError{"temporary directory already exists: " + tempDir}
	}

	toolOptions := make(map[string][]string)
	for tool, opts := range raw.ToolOptions {
		if !knownTool(tool) {
			return nil, ConfigError{"unknown tool for option override: " + tool}
		}
		if fields := strings.Fields(opts); len(fields) > 0 {
			toolOptions[tool] = fields
		}
	}

	return &Config{
		InputReads:  inputReads,
		GenomeSize:  genomeSize,
		RepeatDepth: raw.RepeatDepth,
		TempDir:     tempDir,
		Keep:        raw.Keep,
		Plot:        raw.Plot,
		HistFile:    raw.HistFile,
		toolOptions: toolOptions,
	}, nil
}

func knownTool(name string) bool {
	for _, tool := range OptionTools {
		if tool == name {
			return true
		}
	}
	return false
}

// ParseGenomeSize converts a genome size string such as "3G", "5.5M", "800k"
// or "1000000" to a base count. Suffixes are case-insensitive.
func ParseGenomeSize(s string) (int64, error) {
	str := strings.ToLower(strings.TrimSpace(s))
	if str == "" {
		return 0, ConfigError{"a genome size is required"}
	}

	multiplier := int64(1)
	switch str[len(str)-1] {
	case 'g':
		multiplier = 1000000000
		str = str[:len(str)-1]
	case 'm':
		multiplier = 1000000
		str = str[:len(str)-1]
	case 'k':
		multiplier = 1000
		str = str[:len(str)-1]
	}

	var size int64
	if strings.Contains(str, ".") {
		value, err := strconv.ParseFloat(str, 64)
		if err != nil {
			return 0, ConfigError{"could not parse genome size: " + s}
		}
		size = int64(math.Round(value * float64(multiplier)))
	} else {
		value, err := strconv.ParseInt(str, 10, 64)
		if err != nil {
			return 0, ConfigError{"could not parse genome size: " + s}
		}
		size = value * multiplier
	}

	if size < 1 {
		return 0, ConfigError{"genome size must be a positive value"}
	}
	return size, nil
}

// SizeWarning returns a warning for implausible genome sizes, or "" when the
// size looks reasonable.
func SizeWarning(genomeSize int64) string {
	if genomeSize < 100 {
		return fmt.Sprintf("genome size is very small (%d bases). Did you mean to use a suffix (G, M, k)?", genomeSize)
	}
	if genomeSize > 100000000000 {
		return fmt.Sprintf("genome size is very large (%d bases). Is that a mistake?", genomeSize)
	}
	return ""
}
