// Package pipeline drives the external Dazzler/DASCRUBBER tools in fixed
// sequence inside the temporary directory. The filesystem contents of that
// directory are the only channel between steps; each invocation blocks until
// the tool exits and the first non-zero exit aborts the whole run.
package pipeline

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"dascrub/config"
	"dascrub/report"
)

// Tools lists every external executable the pipeline needs, in first-use
// order. All of them must be on PATH before the first step runs.
var Tools = []string{
	"fasta2DB",
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
	"DB2fasta",
}

// MissingExecutableError reports external tools not found on PATH.
type MissingExecutableError struct {
	Missing []string
}

func (e MissingExecutableError) Error() string {
	if len(e.Missing) == 1 {
		return "could not find tool: " + e.Missing[0]
	}
	return "could not find tools: " + strings.Join(e.Missing, ", ")
}

// Preflight checks that every required external tool resolves on PATH, so a
// missing executable is caught before hours of alignment rather than after.
func Preflight() error {
	var missing []string
	for _, tool := range Tools {
		if _, err := exec.LookPath(tool); err != nil {
			missing = append(missing, tool)
		}
	}
	if len(missing) > 0 {
		return MissingExecutableError{Missing: missing}
	}
	return nil
}

// State tracks driver progress. Transitions are strictly forward:
// NotStarted -> Running -> Succeeded or Failed. No retries.
type State int

const (
	NotStarted State = iota
	Running
	Succeeded
	Failed
)

// Driver executes the scrubbing steps against a prepared temp directory
// containing renamed_reads.fasta.
type Driver struct {
	cfg             *config.Config
	baseDepth       int
	repeatThreshold int

	state State
	step  int
	cause error
}

func New(cfg *config.Config, baseDepth, repeatThreshold int) *Driver {
	return &Driver{cfg: cfg, baseDepth: baseDepth, repeatThreshold: repeatThreshold}
}

func (d *Driver) State() State {
	return d.state
}

// FailedStep returns the title of the step that failed and its cause, valid
// only in the Failed state.
func (d *Driver) FailedStep() (string, error) {
	if d.state != Failed {
		return "", nil
	}
	return steps[d.step].title, d.cause
}

type step struct {
	title string
	run   func(d *Driver) error
}

var steps = []step{
	{"Creating Dazzler database", (*Driver).createDB},
	{"Splitting Dazzler database", (*Driver).splitDB},
	{"Read overlap alignment with daligner", (*Driver).align},
	{"Masking repeats with REPmask", (*Driver).maskRepeats},
	{"Finding tandem repeats with datander", (*Driver).findTandems},
	{"Masking tandem repeats with TANmask", (*Driver).maskTandems},
	{"Read overlap alignment with daligner (with repeat masking)", (*Driver).alignMasked},
	{"Computing estimated genome coverage with DAScover", (*Driver).estimateCoverage},
	{"Finding intrinsic quality values with DASqv", (*Driver).intrinsicQuality},
	{"Trimming reads and breaking chimeras with DAStrim", (*Driver).trim},
	{"Patching low quality segments with DASpatch", (*Driver).patch},
	{"Building new database of scrubbed reads with DASedit", (*Driver).editDB},
	{"Extracting scrubbed reads", (*Driver).extract},
}

// Run executes every step in order, aborting on the first failure. On
// failure the temp directory is left untouched for inspection no matter what
// the keep flag says.
func (d *Driver) Run() error {
	d.state = Running
	for i := range steps {
		d.step = i
		report.Header(steps[i].title)
		before := report.ListDir(d.cfg.TempDir)
		if err := steps[i].run(d); err != nil {
			d.state = Failed
			d.cause = err
			return err
		}
		report.NewFiles(d.cfg.TempDir, before)
		report.BlankLine()
	}
	d.state = Succeeded
	return nil
}

func (d *Driver) createDB() error {
	return d.run("fasta2DB", "reads.db", "renamed_reads.fasta")
}

// splitDB must run before any later step; DASedit refuses databases that
// were never block-split.
func (d *Driver) splitDB() error {
	var args []string
	if !d.cfg.HasToolOption("DBsplit", "-s") {
		args = append(args, "-s100")
	}
	args = append(args, d.cfg.ToolOptions("DBsplit")...)
	args = append(args, "reads")
	return d.run("DBsplit", args...)
}

func (d *Driver) align() error {
	return d.alignPass(false)
}

func (d *Driver) alignMasked() error {
	return d.alignPass(true)
}

// alignPass runs the all-against-all overlap alignment, giving daligner a
// scratch directory for its sort files and removing it afterward.
func (d *Driver) alignPass(masked bool) error {
	scratch := filepath.Join(d.cfg.TempDir, "align_temp")
	report.Command([]string{"mkdir", "align_temp"})
	if err := os.Mkdir(scratch, 0755); err != nil {
		return err
	}

	args := []string{"-v", "-Palign_temp"}
	if masked {
		args = append(args, "-mrep", "-mtan")
	}
	args = append(args, d.cfg.ToolOptions("daligner")...)
	args = append(args, "reads", "reads")
	if err := d.run("daligner", args...); err != nil {
		return err
	}

	report.Command([]string{"rm", "-r", "align_temp"})
	return os.RemoveAll(scratch)
}

func (d *Driver) maskRepeats() error {
	args := []string{"-v"}
	if !d.cfg.HasToolOption("REPmask", "-c") {
		args = append(args, fmt.Sprintf("-c%d", d.repeatThreshold))
	}
	args = append(args, d.cfg.ToolOptions("REPmask")...)
	args = append(args, "reads", "reads.reads.las")
	return d.run("REPmask", args...)
}

func (d *Driver) findTandems() error {
	scratch := filepath.Join(d.cfg.TempDir, "align_temp")
	report.Command([]string{"mkdir", "align_temp"})
	if err := os.Mkdir(scratch, 0755); err != nil {
		return err
	}

	args := []string{"-v", "-Palign_temp"}
	args = append(args, d.cfg.ToolOptions("datander")...)
	args = append(args, "reads")
	if err := d.run("datander", args...); err != nil {
		return err
	}

	report.Command([]string{"rm", "-r", "align_temp"})
	return os.RemoveAll(scratch)
}

func (d *Driver) maskTandems() error {
	args := []string{"-v"}
	args = append(args, d.cfg.ToolOptions("TANmask")...)
	args = append(args, "reads", "TAN.reads")
	return d.run("TANmask", args...)
}

func (d *Driver) estimateCoverage() error {
	args := []string{"-v"}
	args = append(args, d.cfg.ToolOptions("DAScover")...)
	args = append(args, "reads", "reads.reads.las")
	return d.run("DAScover", args...)
}

func (d *Driver) intrinsicQuality() error {
	args := []string{"-v"}
	if !d.cfg.HasToolOption("DASqv", "-c") {
		args = append(args, fmt.Sprintf("-c%d", d.baseDepth))
	}
	args = append(args, d.cfg.ToolOptions("DASqv")...)
	args = append(args, "reads", "reads.reads.las")
	return d.run("DASqv", args...)
}

func (d *Driver) trim() error {
	args := []string{"-v"}
	args = append(args, d.cfg.ToolOptions("DAStrim")...)
	args = append(args, "reads", "reads.reads.las")
	return d.run("DAStrim", args...)
}

func (d *Driver) patch() error {
	args := []string{"-v"}
	args = append(args, d.cfg.ToolOptions("DASpatch")...)
	args = append(args, "reads", "reads.reads.las")
	return d.run("DASpatch", args...)
}

func (d *Driver) editDB() error {
	args := []string{"-v"}
	args = append(args, d.cfg.ToolOptions("DASedit")...)
	args = append(args, "reads", "patched_reads")
	return d.run("DASedit", args...)
}

// extract dumps the edited database back to FASTA. DB2fasta recreates the
// database's source file name, renamed_reads.fasta, so the original is moved
// aside first and moved back once the extracted copy has been renamed to
// scrubbed_reads.fasta.
func (d *Driver) extract() error {
	renamed := filepath.Join(d.cfg.TempDir, "renamed_reads.fasta")
	parked := filepath.Join(d.cfg.TempDir, "temp.fasta")
	scrubbed := filepath.Join(d.cfg.TempDir, "scrubbed_reads.fasta")

	report.Command([]string{"mv", "renamed_reads.fasta", "temp.fasta"})
	if err := os.Rename(renamed, parked); err != nil {
		return err
	}

	if err := d.run("DB2fasta", "-vU", "patched_reads"); err != nil {
		return err
	}

	report.Command([]string{"mv", "renamed_reads.fasta", "scrubbed_reads.fasta"})
	if err := os.Rename(renamed, scrubbed); err != nil {
		return err
	}
	report.Command([]string{"mv", "temp.fasta", "renamed_reads.fasta"})
	return os.Rename(parked, renamed)
}
