// Package stats summarizes read length distributions for the stderr report.
// Purely informational; nothing here feeds back into the pipeline.
package stats

import (
	"fmt"
	"os"

	"github.com/guptarohit/asciigraph"
	"golang.org/x/exp/slices"
	"gonum.org/v1/gonum/stat"
)

// Summary holds size statistics for a read set.
type Summary struct {
	Reads      int
	TotalBases int64
	MeanLength float64
	N50        int
}

func Summarize(lengths []int) Summary {
	s := Summary{Reads: len(lengths)}
	if len(lengths) == 0 {
		return s
	}

	values := make([]float64, len(lengths))
	for i, l := range lengths {
		s.TotalBases += int64(l)
		values[i] = float64(l)
	}
	s.MeanLength = stat.Mean(values, nil)
	s.N50 = n50(lengths, s.TotalBases)
	return s
}

// n50 is the largest length such that reads at least that long cover half
// the total bases.
func n50(lengths []int, totalBases int64) int {
	sorted := make([]int, len(lengths))
	copy(sorted, lengths)
	slices.Sort(sorted)

	var cumulative int64
	for i := len(sorted) - 1; i >= 0; i-- {
		cumulative += int64(sorted[i])
		if 2*cumulative >= totalBases {
			return sorted[i]
		}
	}
	return 0
}

// plotBins is the horizontal resolution of the terminal length plot.
const plotBins = 60

// PrintLengthPlot draws the read length distribution to stderr as a binned
// count series.
func PrintLengthPlot(lengths []int) {
	counts, binWidth := histogram(lengths, plotBins)
	if counts == nil {
		return
	}
	fmt.Fprintln(os.Stderr, asciigraph.Plot(counts,
		asciigraph.Height(10),
		asciigraph.Precision(0),
		asciigraph.Caption(fmt.Sprintf("Read length distribution (%d bp per bin)", binWidth))))
}

// histogram bins lengths into at most bins equal-width buckets over
// [0, max]. Returns nil when there is nothing to plot.
func histogram(lengths []int, bins int) ([]float64, int) {
	if len(lengths) == 0 {
		return nil, 0
	}
	max := slices.Max(lengths)
	if max == 0 {
		return nil, 0
	}
	binWidth := max/bins + 1
	counts := make([]float64, max/binWidth+1)
	for _, l := range lengths {
		counts[l/binWidth]++
	}
	return counts, binWidth
}
