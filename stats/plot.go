package stats

import (
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// SaveLengthHist writes a read length histogram to file; the image format
// follows the file extension (.png, .pdf, .svg).
func SaveLengthHist(lengths []int, file string) error {
	values := make(plotter.Values, len(lengths))
	for i, l := range lengths {
		values[i] = float64(l)
	}

	h, err := plotter.NewHist(values, 40)
	if err != nil {
		return err
	}

	pl := plot.New()
	pl.Add(h)
	pl.Title.Text = "Read length distribution"
	pl.X.Label.Text = "Read length (bases)"
	pl.Y.Label.Text = "Reads"

	return pl.Save(20*vg.Centimeter, 12*vg.Centimeter, file)
}
