package report_test

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nvandessel/galton/internal/constants"
	"github.com/nvandessel/galton/internal/datfile"
	"github.com/nvandessel/galton/internal/galton"
	"github.com/nvandessel/galton/internal/report"
	"github.com/nvandessel/galton/internal/simulation"
)

func TestNewWriter_MissingDir(t *testing.T) {
	_, err := report.NewWriter(filepath.Join(t.TempDir(), "nope"))
	require.ErrorIs(t, err, report.ErrOutputDirMissing)
}

func TestNewWriter_NotADir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(path, nil, 0644))

	_, err := report.NewWriter(path)
	require.ErrorIs(t, err, report.ErrOutputDirMissing)
}

func TestWriter_Checkpoint(t *testing.T) {
	dir := t.TempDir()
	w, err := report.NewWriter(dir)
	require.NoError(t, err)
	require.Equal(t, dir, w.Dir())

	snap := simulation.Snapshot{
		Height:    5,
		Trials:    32,
		Histogram: []int64{1, 5, 10, 10, 5, 1},
	}
	require.NoError(t, w.Checkpoint(context.Background(), snap))

	sim, err := datfile.ReadSim(datfile.Path(dir, datfile.KindSim, 5, 32))
	require.NoError(t, err)
	require.Len(t, sim, 6)
	for j, r := range sim {
		require.Equal(t, j, r.Row)
		require.Equal(t, snap.Histogram[j], r.Count)
	}

	raw, err := os.ReadFile(datfile.Path(dir, datfile.KindBinom, 5, 32))
	require.NoError(t, err)
	lines := strings.Split(string(raw), "\n")
	require.Equal(t, "0\t1\t3.11247\t# deviation of simulation: 0", lines[0])
	require.Equal(t, "", lines[6])
	require.True(t, strings.HasPrefix(lines[7], "# "+report.LabelMeanSquaredError+": "))
	require.Equal(t, "# "+report.LabelMaxDeviation+": 0", lines[8])

	bf, err := datfile.ReadBinom(datfile.Path(dir, datfile.KindBinom, 5, 32))
	require.NoError(t, err)
	require.Len(t, bf.Rows, 6)
	require.InDelta(t, 10.0, bf.Rows[2].Expected, 1e-9)
	require.Contains(t, bf.Summary, report.LabelMeanSquaredError)
	require.Zero(t, bf.Summary[report.LabelMaxDeviation])

	pts, err := datfile.ReadNormal(datfile.Path(dir, datfile.KindNormal, 5, 32))
	require.NoError(t, err)
	require.Len(t, pts, constants.NormalSamples+1)
	require.Equal(t, -0.5, pts[0].X)
	require.Equal(t, 5.5, pts[len(pts)-1].X)

	// The curve peaks at the mean, 2.5.
	peak := pts[0]
	for _, p := range pts {
		if p.Y > peak.Y {
			peak = p
		}
	}
	require.InDelta(t, 2.5, peak.X, 0.01)
	require.InDelta(t, 32/math.Sqrt(2*math.Pi*1.25), peak.Y, 0.01)
}

func TestWriter_ZeroHeight(t *testing.T) {
	dir := t.TempDir()
	w, err := report.NewWriter(dir)
	require.NoError(t, err)

	snap := simulation.Snapshot{Height: 0, Trials: 10, Histogram: []int64{10}}
	require.NoError(t, w.Checkpoint(context.Background(), snap))

	bf, err := datfile.ReadBinom(datfile.Path(dir, datfile.KindBinom, 0, 10))
	require.NoError(t, err)
	require.Len(t, bf.Rows, 1)
	require.Equal(t, 10.0, bf.Rows[0].Expected)
	require.True(t, math.IsNaN(bf.Summary[report.LabelMeanSquaredError]))

	pts, err := datfile.ReadNormal(datfile.Path(dir, datfile.KindNormal, 0, 10))
	require.NoError(t, err)
	require.Empty(t, pts)
}

func TestWriter_DirRemovedMidRun(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	require.NoError(t, os.Mkdir(dir, 0755))
	w, err := report.NewWriter(dir)
	require.NoError(t, err)
	require.NoError(t, os.Remove(dir))

	err = w.Checkpoint(context.Background(), simulation.Snapshot{Height: 1, Trials: 10, Histogram: []int64{5, 5}})
	require.Error(t, err)
	require.True(t, errors.Is(err, os.ErrNotExist))
}

// TestWriter_FullRun drives a height-5 board through the whole trial budget
// and checks the files on disk.
func TestWriter_FullRun(t *testing.T) {
	if testing.Short() {
		t.Skip("drops a million balls")
	}
	dir := t.TempDir()
	w, err := report.NewWriter(dir)
	require.NoError(t, err)

	d := simulation.NewDriver(galton.NewBoard(constants.Seed), nil, simulation.WithObserver(w))
	require.NoError(t, d.Run(context.Background(), []int{5}))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 3*len(simulation.Checkpoints(constants.MaxTrials)))

	for _, trials := range simulation.Checkpoints(constants.MaxTrials) {
		for _, kind := range datfile.Kinds() {
			require.FileExists(t, datfile.Path(dir, kind, 5, trials))
		}

		rows, err := datfile.ReadSim(datfile.Path(dir, datfile.KindSim, 5, trials))
		require.NoError(t, err)
		require.Len(t, rows, 6)
		var total int64
		for _, r := range rows {
			total += r.Count
		}
		require.Equal(t, trials, total, "sim_h5_b%d", trials)

		bf, err := datfile.ReadBinom(datfile.Path(dir, datfile.KindBinom, 5, trials))
		require.NoError(t, err)
		var maxDev float64
		for _, r := range bf.Rows {
			maxDev = math.Max(maxDev, r.Deviation)
		}
		require.InDelta(t, maxDev, bf.Summary[report.LabelMaxDeviation], maxDev*1e-5+1e-9)
	}

	// At a million balls every row lies inside its weak-law bound.
	bf, err := datfile.ReadBinom(datfile.Path(dir, datfile.KindBinom, 5, constants.MaxTrials))
	require.NoError(t, err)
	for _, r := range bf.Rows {
		require.Less(t, r.Deviation, r.Bound, "row %d", r.K)
	}
}
