package pipeline

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"dascrub/report"
)

// failureTailLines bounds how much captured tool output a ToolFailureError
// carries. The full stream has already been echoed to stderr.
const failureTailLines = 20

// ToolFailureError reports an external step that exited non-zero.
type ToolFailureError struct {
	Tool     string
	ExitCode int
	Output   string
}

func (e ToolFailureError) Error() string {
	msg := fmt.Sprintf("%s exited with code %d", e.Tool, e.ExitCode)
	if e.Output != "" {
		msg += "\nlast output:\n" + e.Output
	}
	return msg
}

// run executes one external tool in the temp directory, echoing the command
// and streaming its merged stdout and stderr, dimmed, to our stderr. stdout
// of the wrapper itself is never touched.
func (d *Driver) run(tool string, args ...string) error {
	report.Command(append([]string{tool}, args...))

	cmd := exec.Command(tool, args...)
	cmd.Dir = d.cfg.TempDir

	pr, pw, err := os.Pipe()
	if err != nil {
		return err
	}
	cmd.Stdout = pw
	cmd.Stderr = pw

	if err := cmd.Start(); err != nil {
		pw.Close()
		pr.Close()
		return ToolFailureError{Tool: tool, ExitCode: -1, Output: err.Error()}
	}
	pw.Close() // the child holds its own copy

	var tail []string
	scanner := bufio.NewScanner(pr)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), " \t\r")
		if line == "" {
			continue
		}
		report.ToolOutput(line)
		tail = append(tail, line)
		if len(tail) > failureTailLines {
			tail = tail[1:]
		}
	}
	pr.Close()

	if err := cmd.Wait(); err != nil {
		code := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			code = exitErr.ExitCode()
		}
		return ToolFailureError{Tool: tool, ExitCode: code, Output: strings.Join(tail, "\n")}
	}
	return nil
}
