// Package depth estimates sequencing depth of coverage from the input read
// set and the genome size estimate. The values parameterize REPmask and DASqv
// but have no effect on the mechanics of the pipeline.
package depth

import "math"

// Coverage returns the raw depth of coverage, for reporting.
func Coverage(totalBases, genomeSize int64) float64 {
	return float64(totalBases) / float64(genomeSize)
}

// Base returns the expected base depth rounded to an integer no smaller
// than 1.
func Base(totalBases, genomeSize int64) int {
	d := int(math.Round(Coverage(totalBases, genomeSize)))
	if d < 1 {
		return 1
	}
	return d
}

// RepeatThreshold scales the base depth by the repeat depth multiplier,
// rounded to an integer no smaller than 1. Regions covered by more than this
// many reads are considered repeats by REPmask.
func RepeatThreshold(baseDepth int, multiplier float64) int {
	c := int(math.Round(float64(baseDepth) * multiplier))
	if c < 1 {
		return 1
	}
	return c
}
