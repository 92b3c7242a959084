package pipeline

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"dascrub/config"
)

// writeStub drops a fake tool on the stub PATH that logs its name and
// arguments to steps.log in the working directory, then runs body.
func writeStub(t *testing.T, dir, name, body string) {
	t.Helper()
	script := "#!/bin/sh\necho \"" + name + " $@\" >> steps.log\n" + body + "\n"
	err := os.WriteFile(filepath.Join(dir, name), []byte(script), 0755)
	if err != nil {
		t.Fatal(err)
	}
}

func writeStubs(t *testing.T, dir string) {
	t.Helper()
	for _, tool := range Tools {
		body := "exit 0"
		if tool == "DB2fasta" {
			// DB2fasta recreates the database's source fasta
			body = "printf '>reads/0/100_900\\nACGT\\n' > renamed_reads.fasta"
		}
		writeStub(t, dir, tool, body)
	}
}

func testConfig(t *testing.T, toolOptions map[string]string) *config.Config {
	t.Helper()
	inputDir := t.TempDir()
	input := filepath.Join(inputDir, "reads.fasta")
	err := os.WriteFile(input, []byte(">read1\nACGT\n"), 0644)
	if err != nil {
		t.Fatal(err)
	}

	cfg, err := config.Resolve(config.Raw{
		InputReads:  input,
		GenomeSize:  "1M",
		TempDir:     filepath.Join(t.TempDir(), "work"),
		RepeatDepth: 2,
		ToolOptions: toolOptions,
	})
	if err != nil {
		t.Fatal(err)
	}

	err = os.Mkdir(cfg.TempDir, 0755)
	if err != nil {
		t.Fatal(err)
	}
	err = os.WriteFile(filepath.Join(cfg.TempDir, "renamed_reads.fasta"), []byte(">reads/0/0_4\nACGT\n"), 0644)
	if err != nil {
		t.Fatal(err)
	}
	return cfg
}

func readLog(t *testing.T, cfg *config.Config) []string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(cfg.TempDir, "steps.log"))
	if err != nil {
		t.Fatal(err)
	}
	return strings.Split(strings.TrimSpace(string(data)), "\n")
}

func TestRunInvokesToolsInOrder(t *testing.T) {
	stubDir := t.TempDir()
	writeStubs(t, stubDir)
	t.Setenv("PATH", stubDir)

	cfg := testConfig(t, nil)
	d := New(cfg, 50, 100)
	if d.State() != NotStarted {
		t.Error("problem with initial state", d.State())
	}

	err := d.Run()
	if err != nil {
		t.Fatal(err)
	}
	if d.State() != Succeeded {
		t.Error("problem with terminal state", d.State())
	}

	want := []string{
		"fasta2DB reads.db renamed_reads.fasta",
		"DBsplit -s100 reads",
		"daligner -v -Palign_temp reads reads",
		"REPmask -v -c100 reads reads.reads.las",
		"datander -v -Palign_temp reads",
		"TANmask -v reads TAN.reads",
		"daligner -v -Palign_temp -mrep -mtan reads reads",
		"DAScover -v reads reads.reads.las",
		"DASqv -v -c50 reads reads.reads.las",
		"DAStrim -v reads reads.reads.las",
		"DASpatch -v reads reads.reads.las",
		"DASedit -v reads patched_reads",
		"DB2fasta -vU patched_reads",
	}
	got := readLog(t, cfg)
	if len(got) != len(want) {
		t.Fatal("problem with step sequence", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Error("problem with step", i, got[i])
		}
	}

	// the extract step's file shuffle must leave both fastas in place
	if _, err := os.Stat(filepath.Join(cfg.TempDir, "scrubbed_reads.fasta")); err != nil {
		t.Error("scrubbed_reads.fasta missing after extraction")
	}
	renamed, err := os.ReadFile(filepath.Join(cfg.TempDir, "renamed_reads.fasta"))
	if err != nil || string(renamed) != ">reads/0/0_4\nACGT\n" {
		t.Error("renamed_reads.fasta not restored after extraction", string(renamed))
	}
	if _, err := os.Stat(filepath.Join(cfg.TempDir, "align_temp")); !os.IsNotExist(err) {
		t.Error("align_temp scratch directory should be removed")
	}
}

func TestRunUserOverridesSuppressComputedOptions(t *testing.T) {
	stubDir := t.TempDir()
	writeStubs(t, stubDir)
	t.Setenv("PATH", stubDir)

	cfg := testConfig(t, map[string]string{
		"DBsplit": "-s250",
		"REPmask": "-c75",
		"DASqv":   "-c40 -H",
	})
	d := New(cfg, 50, 100)
	if err := d.Run(); err != nil {
		t.Fatal(err)
	}

	log := strings.Join(readLog(t, cfg), "\n")
	for _, want := range []string{
		"DBsplit -s250 reads",
		"REPmask -v -c75 reads reads.reads.las",
		"DASqv -v -c40 -H reads reads.reads.las",
	} {
		if !strings.Contains(log, want) {
			t.Error("problem with option override, missing", want)
		}
	}
	for _, unwanted := range []string{"-s100", "-c100", "-c50"} {
		if strings.Contains(log, unwanted) {
			t.Error("computed default should have been suppressed", unwanted)
		}
	}
}

func TestRunAbortsOnFirstFailure(t *testing.T) {
	stubDir := t.TempDir()
	writeStubs(t, stubDir)
	writeStub(t, stubDir, "DASqv", "echo 'DASqv: insufficient memory' >&2\nexit 3")
	t.Setenv("PATH", stubDir)

	cfg := testConfig(t, nil)
	d := New(cfg, 50, 100)

	err := d.Run()
	if err == nil {
		t.Fatal("expected the run to fail")
	}
	var toolErr ToolFailureError
	if !errors.As(err, &toolErr) {
		t.Fatalf("expected ToolFailureError, got %T", err)
	}
	if toolErr.Tool != "DASqv" || toolErr.ExitCode != 3 {
		t.Error("problem with failure details", toolErr.Tool, toolErr.ExitCode)
	}
	if !strings.Contains(toolErr.Output, "insufficient memory") {
		t.Error("failure should carry captured output", toolErr.Output)
	}

	if d.State() != Failed {
		t.Error("problem with terminal state", d.State())
	}
	title, cause := d.FailedStep()
	if !strings.Contains(title, "DASqv") || cause == nil {
		t.Error("problem with failed step bookkeeping", title, cause)
	}

	// no step after the failing one may have run
	log := strings.Join(readLog(t, cfg), "\n")
	for _, tool := range []string{"DAStrim", "DASpatch", "DASedit", "DB2fasta"} {
		if strings.Contains(log, tool) {
			t.Error("step ran after failure:", tool)
		}
	}

	// temp directory must survive for inspection
	if _, err := os.Stat(cfg.TempDir); err != nil {
		t.Error("temp directory should be preserved after a failure")
	}
}

func TestPreflight(t *testing.T) {
	stubDir := t.TempDir()
	writeStubs(t, stubDir)
	t.Setenv("PATH", stubDir)

	if err := Preflight(); err != nil {
		t.Fatal("expected all stub tools to be found:", err)
	}

	err := os.Remove(filepath.Join(stubDir, "datander"))
	if err != nil {
		t.Fatal(err)
	}
	err = Preflight()
	var missingErr MissingExecutableError
	if !errors.As(err, &missingErr) {
		t.Fatalf("expected MissingExecutableError, got %v", err)
	}
	if len(missingErr.Missing) != 1 || missingErr.Missing[0] != "datander" {
		t.Error("problem with missing tool listing", missingErr.Missing)
	}
}
