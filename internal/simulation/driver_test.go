package simulation_test

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/nvandessel/galton/internal/constants"
	"github.com/nvandessel/galton/internal/galton"
	"github.com/nvandessel/galton/internal/simulation"
)

// recorder captures a copy of every snapshot it sees.
type recorder struct {
	snaps []simulation.Snapshot
}

func (r *recorder) Checkpoint(_ context.Context, snap simulation.Snapshot) error {
	snap.Histogram = slices.Clone(snap.Histogram)
	r.snaps = append(r.snaps, snap)
	return nil
}

func sum(h []int64) int64 {
	var s int64
	for _, c := range h {
		s += c
	}
	return s
}

func TestCheckpoints(t *testing.T) {
	tests := []struct {
		max  int64
		want []int64
	}{
		{9, nil},
		{10, []int64{10}},
		{999, []int64{10, 100}},
		{constants.MaxTrials, []int64{10, 100, 1000, 10000, 100000, 1000000}},
	}
	for _, tt := range tests {
		got := simulation.Checkpoints(tt.max)
		if !slices.Equal(got, tt.want) {
			t.Errorf("Checkpoints(%d) = %v, want %v", tt.max, got, tt.want)
		}
	}
}

func TestDriver_CheckpointSchedule(t *testing.T) {
	rec := &recorder{}
	d := simulation.NewDriver(galton.NewBoard(constants.Seed), nil,
		simulation.WithObserver(rec),
		simulation.WithMaxTrials(10_000),
	)
	if err := d.Run(context.Background(), []int{5, 10}); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	want := []struct {
		height int
		trials int64
	}{
		{5, 10}, {5, 100}, {5, 1000}, {5, 10000},
		{10, 10}, {10, 100}, {10, 1000}, {10, 10000},
	}
	if len(rec.snaps) != len(want) {
		t.Fatalf("got %d snapshots, want %d", len(rec.snaps), len(want))
	}
	for i, w := range want {
		s := rec.snaps[i]
		if s.Height != w.height || s.Trials != w.trials {
			t.Errorf("snapshot %d = (h%d, b%d), want (h%d, b%d)", i, s.Height, s.Trials, w.height, w.trials)
		}
		if len(s.Histogram) != s.Height+1 {
			t.Errorf("snapshot %d has %d buckets, want %d", i, len(s.Histogram), s.Height+1)
		}
		if got := sum(s.Histogram); got != s.Trials {
			t.Errorf("snapshot %d histogram sums to %d, want %d", i, got, s.Trials)
		}
	}
}

func TestDriver_CheckpointsAreCumulative(t *testing.T) {
	rec := &recorder{}
	d := simulation.NewDriver(galton.NewBoard(1), nil,
		simulation.WithObserver(rec),
		simulation.WithMaxTrials(1000),
	)
	if err := d.Run(context.Background(), []int{5}); err != nil {
		t.Fatal(err)
	}
	for i := 1; i < len(rec.snaps); i++ {
		prev, cur := rec.snaps[i-1].Histogram, rec.snaps[i].Histogram
		for k := range cur {
			if cur[k] < prev[k] {
				t.Errorf("bucket %d shrank between checkpoints: %d -> %d", k, prev[k], cur[k])
			}
		}
	}
}

func TestDriver_ZeroHeight(t *testing.T) {
	rec := &recorder{}
	d := simulation.NewDriver(galton.NewBoard(constants.Seed), nil,
		simulation.WithObserver(rec),
		simulation.WithMaxTrials(1000),
	)
	if err := d.Run(context.Background(), []int{0}); err != nil {
		t.Fatal(err)
	}
	if len(rec.snaps) != 3 {
		t.Fatalf("got %d snapshots, want 3", len(rec.snaps))
	}
	for _, s := range rec.snaps {
		if len(s.Histogram) != 1 || s.Histogram[0] != s.Trials {
			t.Errorf("height 0 at %d trials: histogram %v", s.Trials, s.Histogram)
		}
	}
}

func TestDriver_Deterministic(t *testing.T) {
	run := func() []simulation.Snapshot {
		rec := &recorder{}
		d := simulation.NewDriver(galton.NewBoard(constants.Seed), nil,
			simulation.WithObserver(rec),
			simulation.WithMaxTrials(1000),
		)
		if err := d.Run(context.Background(), []int{5, 50}); err != nil {
			t.Fatal(err)
		}
		return rec.snaps
	}

	a, b := run(), run()
	if len(a) != len(b) {
		t.Fatalf("runs differ in length: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if !slices.Equal(a[i].Histogram, b[i].Histogram) {
			t.Errorf("snapshot %d differs: %v vs %v", i, a[i].Histogram, b[i].Histogram)
		}
	}
}

func TestDriver_ObserversCalledInOrder(t *testing.T) {
	var calls []string
	first := simulation.ObserverFunc(func(context.Context, simulation.Snapshot) error {
		calls = append(calls, "first")
		return nil
	})
	second := simulation.ObserverFunc(func(context.Context, simulation.Snapshot) error {
		calls = append(calls, "second")
		return nil
	})

	d := simulation.NewDriver(galton.NewBoard(1), nil,
		simulation.WithObserver(first),
		simulation.WithObserver(second),
		simulation.WithMaxTrials(10),
	)
	if err := d.Run(context.Background(), []int{3}); err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(calls, []string{"first", "second"}) {
		t.Errorf("calls = %v", calls)
	}
}

func TestDriver_ObserverErrorAborts(t *testing.T) {
	boom := errors.New("disk full")
	calls := 0
	obs := simulation.ObserverFunc(func(_ context.Context, snap simulation.Snapshot) error {
		calls++
		if snap.Trials == 100 {
			return boom
		}
		return nil
	})

	d := simulation.NewDriver(galton.NewBoard(1), nil,
		simulation.WithObserver(obs),
		simulation.WithMaxTrials(10_000),
	)
	err := d.Run(context.Background(), []int{5, 10})
	if !errors.Is(err, boom) {
		t.Fatalf("Run() error = %v, want %v", err, boom)
	}
	if calls != 2 {
		t.Errorf("observer called %d times, want 2", calls)
	}
}

func TestDriver_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rec := &recorder{}
	d := simulation.NewDriver(galton.NewBoard(1), nil,
		simulation.WithObserver(rec),
		simulation.WithMaxTrials(100),
	)
	err := d.Run(ctx, []int{5})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Run() error = %v, want context.Canceled", err)
	}
	if len(rec.snaps) != 0 {
		t.Errorf("observer saw %d snapshots after cancel", len(rec.snaps))
	}
}

func TestDriver_NegativeHeight(t *testing.T) {
	d := simulation.NewDriver(galton.NewBoard(1), nil, simulation.WithMaxTrials(10))
	if err := d.Run(context.Background(), []int{-1}); err == nil {
		t.Error("Run() with negative height should fail")
	}
}
