// Package report handles all diagnostic output. Everything goes to stderr so
// stdout stays clean for the scrubbed FASTA stream.
package report

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/exp/slices"
)

var (
	headerColor  = color.New(color.Bold, color.Underline)
	commandColor = color.New(color.FgGreen)
	dimColor     = color.New(color.Faint)
	warnColor    = color.New(color.FgRed, color.Bold)
	fileColor    = color.New(color.FgBlue)
)

func BlankLine() {
	fmt.Fprintln(os.Stderr)
}

// Header marks the start of a pipeline phase.
func Header(text string) {
	BlankLine()
	headerColor.Fprintln(os.Stderr, text)
}

// Command echoes a command line about to be run, or a filesystem action
// phrased as one.
func Command(args []string) {
	commandColor.Fprintln(os.Stderr, strings.Join(args, " "))
}

// ToolOutput prints one line of captured external tool output, dimmed and
// indented under the echoed command.
func ToolOutput(line string) {
	fmt.Fprint(os.Stderr, "  ")
	dimColor.Fprintln(os.Stderr, line)
}

func Warning(text string) {
	BlankLine()
	warnColor.Fprintln(os.Stderr, "WARNING: "+text)
	BlankLine()
}

// ListDir returns the names in dir, for use as the before snapshot of a
// NewFiles call. A missing directory reads as empty.
func ListDir(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	names := make([]string, len(entries))
	for i := range entries {
		names[i] = entries[i].Name()
	}
	return names
}

// NewFiles reports the names present in dir that were not in before.
func NewFiles(dir string, before []string) {
	prev := make(map[string]bool, len(before))
	for _, name := range before {
		prev[name] = true
	}
	var created []string
	for _, name := range ListDir(dir) {
		if !prev[name] {
			created = append(created, name)
		}
	}
	if len(created) == 0 {
		return
	}
	slices.Sort(created)
	if len(created) == 1 {
		fmt.Fprint(os.Stderr, "New file: ")
	} else {
		fmt.Fprint(os.Stderr, "New files: ")
	}
	fileColor.Fprintln(os.Stderr, strings.Join(created, ", "))
}

// Comma formats an integer with thousands separators.
func Comma(value int64) string {
	str := strconv.FormatInt(value, 10)
	start := 0
	if str[0] == '-' {
		start = 1
	}
	var b strings.Builder
	b.WriteString(str[:start])
	for i := start; i < len(str); i++ {
		if i > start && (len(str)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteByte(str[i])
	}
	return b.String()
}

// Float formats a float with the given number of decimals and thousands
// separators in the integer part.
func Float(value float64, decimals int) string {
	str := strconv.FormatFloat(value, 'f', decimals, 64)
	dot := strings.IndexByte(str, '.')
	if dot == -1 {
		whole, err := strconv.ParseInt(str, 10, 64)
		if err != nil {
			return str
		}
		return Comma(whole)
	}
	whole, err := strconv.ParseInt(str[:dot], 10, 64)
	if err != nil {
		return str
	}
	return Comma(whole) + str[dot:]
}
