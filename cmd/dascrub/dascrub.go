// dascrub wraps the Dazzler/DASCRUBBER toolchain to scrub a long read set:
// reads are renamed to toolchain-friendly headers, run through database
// construction, overlap alignment, repeat masking, quality estimation,
// trimming, chimera splitting and patching, then written to stdout with
// their original names restored.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"dascrub/config"
	"dascrub/depth"
	"dascrub/pipeline"
	"dascrub/rename"
	"dascrub/report"
	"dascrub/restore"
	"dascrub/stats"

	"github.com/vertgenlab/gonomics/exception"
)

const version string = "1.0.0"

func usage() {
	fmt.Fprint(os.Stderr,
		"dascrub - scrub (trim, de-chimera, patch) a long read set with the DASCRUBBER pipeline\n"+
			"Version: "+version+"\n\n"+
			"Usage:\n"+
			"  dascrub -i input_reads.fastq.gz -g genome_size > scrubbed_reads.fasta\n\n"+
			"Required arguments:\n"+
			"  -i, --input_reads PATH   input set of long reads to be scrubbed (FASTA or FASTQ,\n"+
			"                           may be gzipped)\n"+
			"  -g, --genome_size SIZE   approximate genome size (examples: 3G, 5.5M or 800k), used\n"+
			"                           to determine depth of coverage\n\n"+
			"Optional arguments:\n"+
			"  -d, --tempdir PATH       directory for temporary files (default: dascrubber_temp_PID\n"+
			"                           in the current directory)\n"+
			"  -k, --keep               keep the temporary directory after scrubbing is complete\n"+
			"  -r, --repeat_depth N     REPmask repeat threshold, relative to the overall depth\n"+
			"                           (default: 2)\n"+
			"      --plot               plot the read length distribution to stderr\n"+
			"      --hist FILE          save a read length histogram image (format from extension)\n\n"+
			"Command options (extra options passed verbatim to each Dazzler command,\n"+
			"example: --daligner_options=\"-M80\"):\n"+
			"      --dbsplit_options, --daligner_options, --repmask_options,\n"+
			"      --datander_options, --tanmask_options, --dascover_options,\n"+
			"      --dasqv_options, --dastrim_options, --daspatch_options,\n"+
			"      --dasedit_options\n\n"+
			"Help:\n"+
			"  -h, --help               show this help message and exit\n")
}

func main() {
	var inputReads, genomeSize, tempDir, histFile string
	var keep, plot bool
	var repeatDepth float64

	flag.StringVar(&inputReads, "i", "", "")
	flag.StringVar(&inputReads, "input_reads", "", "")
	flag.StringVar(&genomeSize, "g", "", "")
	flag.StringVar(&genomeSize, "genome_size", "", "")
	flag.StringVar(&tempDir, "d", "", "")
	flag.StringVar(&tempDir, "tempdir", "", "")
	flag.BoolVar(&keep, "k", false, "")
	flag.BoolVar(&keep, "keep", false, "")
	flag.Float64Var(&repeatDepth, "r", 2, "")
	flag.Float64Var(&repeatDepth, "repeat_depth", 2, "")
	flag.BoolVar(&plot, "plot", false, "")
	flag.StringVar(&histFile, "hist", "", "")

	toolOptionFlags := make(map[string]*string, len(config.OptionTools))
	for _, tool := range config.OptionTools {
		toolOptionFlags[tool] = flag.String(strings.ToLower(tool)+"_options", "", "")
	}

	flag.Usage = usage
	flag.Parse()

	if inputReads == "" || genomeSize == "" {
		usage()
		errExit("\nERROR: must supply --input_reads and --genome_size")
	}

	toolOptions := make(map[string]string, len(toolOptionFlags))
	for tool, opts := range toolOptionFlags {
		toolOptions[tool] = *opts
	}

	cfg, err := config.Resolve(config.Raw{
		InputReads:  inputReads,
		GenomeSize:  genomeSize,
		TempDir:     tempDir,
		Keep:        keep,
		RepeatDepth: repeatDepth,
		Plot:        plot,
		HistFile:    histFile,
		ToolOptions: toolOptions,
	})
	if err != nil {
		errExit("ERROR: " + err.Error() + "\nRun dascrub --help for usage.")
	}
	if warning := config.SizeWarning(cfg.GenomeSize); warning != "" {
		report.Warning(warning)
	}

	if err := pipeline.Preflight(); err != nil {
		errExit("ERROR: " + err.Error())
	}

	// An interrupt mid-pipeline reaches the running child through the
	// process group; exiting here without cleanup leaves the temp
	// directory for inspection.
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sig
		report.Warning("interrupted; temporary directory left in place: " + cfg.TempDir)
		os.Exit(130)
	}()

	scrub(cfg)
}

func scrub(cfg *config.Config) {
	report.Header("Creating temporary directory")
	report.Command([]string{"mkdir", cfg.TempDir})
	err := os.Mkdir(cfg.TempDir, 0755)
	if err != nil {
		errExit("ERROR: could not create temporary directory: " + err.Error())
	}
	report.BlankLine()

	report.Header("Processing and renaming reads")
	readMap, err := rename.Rename(cfg.InputReads, filepath.Join(cfg.TempDir, "renamed_reads.fasta"))
	if err != nil {
		errExit("ERROR: " + err.Error())
	}

	summary := stats.Summarize(readMap.Lengths())
	coverage := depth.Coverage(summary.TotalBases, cfg.GenomeSize)
	fmt.Fprintln(os.Stderr, "Reads:", report.Comma(int64(summary.Reads)))
	fmt.Fprintln(os.Stderr, "Total bases:", report.Comma(summary.TotalBases))
	if summary.Reads > 0 {
		fmt.Fprintln(os.Stderr, "Mean length:", report.Float(summary.MeanLength, 0))
		fmt.Fprintln(os.Stderr, "Read N50:", report.Comma(int64(summary.N50)))
		fmt.Fprintln(os.Stderr, "Depth of coverage:", report.Float(coverage, 1))
	}
	if cfg.Plot {
		stats.PrintLengthPlot(readMap.Lengths())
	}
	if cfg.HistFile != "" {
		if err := stats.SaveLengthHist(readMap.Lengths(), cfg.HistFile); err != nil {
			report.Warning("could not save read length histogram: " + err.Error())
		}
	}
	report.BlankLine()

	if summary.Reads == 0 {
		report.Warning("no reads found in " + cfg.InputReads + ", nothing to scrub")
		cleanup(cfg)
		return
	}

	baseDepth := depth.Base(summary.TotalBases, cfg.GenomeSize)
	repeatThreshold := depth.RepeatThreshold(baseDepth, cfg.RepeatDepth)

	driver := pipeline.New(cfg, baseDepth, repeatThreshold)
	if err := driver.Run(); err != nil {
		errExit("ERROR: " + err.Error() +
			"\nTemporary directory left in place for inspection: " + cfg.TempDir)
	}

	report.Header("Outputting scrubbed reads to stdout")
	count, bases, err := restore.Restore(filepath.Join(cfg.TempDir, "scrubbed_reads.fasta"), readMap, os.Stdout)
	if err != nil {
		errExit("ERROR: " + err.Error() +
			"\nTemporary directory left in place for inspection: " + cfg.TempDir)
	}
	fmt.Fprintln(os.Stderr, "Reads:", report.Comma(int64(count)))
	fmt.Fprintln(os.Stderr, "Total bases:", report.Comma(bases))

	cleanup(cfg)
}

func cleanup(cfg *config.Config) {
	if !cfg.Keep {
		report.Header("Deleting temporary directory")
		report.Command([]string{"rm", "-r", cfg.TempDir})
		err := os.RemoveAll(cfg.TempDir)
		exception.PanicOnErr(err)
	}
	report.BlankLine()
}

func errExit(err string) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
