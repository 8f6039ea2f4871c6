// Package report writes the three data files of every checkpoint.
package report

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/nvandessel/galton/internal/constants"
	"github.com/nvandessel/galton/internal/datfile"
	"github.com/nvandessel/galton/internal/distribution"
	"github.com/nvandessel/galton/internal/simulation"
)

// ErrOutputDirMissing is returned by NewWriter when the output directory
// does not exist or is not a directory.
var ErrOutputDirMissing = errors.New("report: output directory missing")

// Summary line labels in binom files.
const (
	LabelMeanSquaredError = "mean squared error binomial/normal"
	LabelMaxDeviation     = "maximum deviation simulation/binomial over all k"
)

// Writer writes sim, binom and normal files for each checkpoint into a
// directory. It implements simulation.Observer.
type Writer struct {
	dir string
}

var _ simulation.Observer = (*Writer)(nil)

// NewWriter returns a Writer for dir, which must already exist.
func NewWriter(dir string) (*Writer, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOutputDirMissing, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrOutputDirMissing, dir)
	}
	return &Writer{dir: dir}, nil
}

// Dir returns the output directory.
func (w *Writer) Dir() string { return w.dir }

// Checkpoint writes the three files for snap. Each file is flushed and
// closed before the next is opened.
func (w *Writer) Checkpoint(ctx context.Context, snap simulation.Snapshot) error {
	cmp, err := distribution.Compare(snap.Histogram, snap.Trials, constants.DeflectProbability)
	if err != nil {
		return fmt.Errorf("comparing histogram: %w", err)
	}

	if err := w.writeFile(datfile.KindSim, snap, func(bw *bufio.Writer) {
		writeSim(bw, snap.Histogram)
	}); err != nil {
		return err
	}
	if err := w.writeFile(datfile.KindBinom, snap, func(bw *bufio.Writer) {
		writeBinom(bw, cmp)
	}); err != nil {
		return err
	}
	return w.writeFile(datfile.KindNormal, snap, func(bw *bufio.Writer) {
		writeNormal(bw, snap.Height, snap.Trials)
	})
}

func (w *Writer) writeFile(kind datfile.Kind, snap simulation.Snapshot, body func(*bufio.Writer)) error {
	path := datfile.Path(w.dir, kind, snap.Height, snap.Trials)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s file: %w", kind, err)
	}

	bw := bufio.NewWriter(f)
	body(bw)
	if err := bw.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", datfile.Name(kind, snap.Height, snap.Trials), err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", datfile.Name(kind, snap.Height, snap.Trials), err)
	}
	return nil
}

// writeSim writes "<row>\t<count>" for every row.
func writeSim(bw *bufio.Writer, histogram []int64) {
	for row, count := range histogram {
		bw.WriteString(strconv.Itoa(row))
		bw.WriteByte('\t')
		bw.WriteString(strconv.FormatInt(count, 10))
		bw.WriteByte('\n')
	}
}

// writeBinom writes one line per row followed by a blank line and the two
// summary comments.
func writeBinom(bw *bufio.Writer, cmp *distribution.Comparison) {
	for _, r := range cmp.Rows {
		fmt.Fprintf(bw, "%d\t%s\t%s\t# deviation of simulation: %s\n",
			r.K, formatReal(r.Expected), formatReal(r.Bound), formatReal(r.Deviation))
	}
	fmt.Fprintf(bw, "\n# %s: %s\n", LabelMeanSquaredError, formatReal(cmp.MeanSquaredError))
	fmt.Fprintf(bw, "# %s: %s\n", LabelMaxDeviation, formatReal(cmp.MaxDeviation))
}

// writeNormal samples the normal approximation, scaled to counts, at
// NormalSamples+1 evenly spaced points on [-0.5, height+0.5].
func writeNormal(bw *bufio.Writer, height int, trials int64) {
	mu, variance := distribution.BinomialMoments(height, constants.DeflectProbability)
	if variance <= 0 {
		fmt.Fprintf(bw, "# normal approximation undefined for height %d\n", height)
		return
	}
	for s := 0; s <= constants.NormalSamples; s++ {
		x := float64(s)/constants.NormalSamples*float64(height+1) - 0.5
		y := distribution.NormalPDF(x, mu, variance) * float64(trials)
		bw.WriteString(formatReal(x))
		bw.WriteByte('\t')
		bw.WriteString(formatReal(y))
		bw.WriteByte('\n')
	}
}
