package telemetry

import (
	"errors"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/pthm-cable/flock/neural"
)

func TestHallOfFameKeepsBestSorted(t *testing.T) {
	hof := NewHallOfFame(3, rand.New(rand.NewSource(1)))

	for _, f := range []float64{5, 1, 9, 3, 7} {
		hof.Consider(HallEntry{Fitness: f})
	}

	entries := hof.Entries()
	want := []float64{9, 7, 5}
	if len(entries) != len(want) {
		t.Fatalf("size = %d, want %d", len(entries), len(want))
	}
	for i, w := range want {
		if entries[i].Fitness != w {
			t.Errorf("entry %d fitness = %v, want %v", i, entries[i].Fitness, w)
		}
	}

	if hof.Consider(HallEntry{Fitness: 2}) {
		t.Error("full hall accepted an entry below its worst")
	}
	if best, err := hof.Best(); err != nil || best.Fitness != 9 {
		t.Errorf("Best = %v, %v; want fitness 9", best.Fitness, err)
	}
}

func TestHallOfFameEmpty(t *testing.T) {
	hof := NewHallOfFame(5, rand.New(rand.NewSource(1)))

	if hof.Sample() != nil {
		t.Error("Sample on empty hall returned weights")
	}
	if _, err := hof.Best(); !errors.Is(err, ErrEmptyHall) {
		t.Errorf("Best err = %v, want ErrEmptyHall", err)
	}
}

func TestHallOfFameFileRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	nn := neural.NewFFNN(rng)

	hof := NewHallOfFame(4, rng)
	hof.Consider(HallEntry{Weights: nn.MarshalWeights(), Fitness: 12.5, Generation: 3, Score: 2})
	hof.Consider(HallEntry{Weights: nn.MarshalWeights(), Fitness: 4, Generation: 1})

	data, err := hof.MarshalJSON()
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "hall_of_fame.json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	loaded, err := LoadHallOfFameFromFile(path, rng)
	if err != nil {
		t.Fatalf("LoadHallOfFameFromFile: %v", err)
	}
	best, err := loaded.Best()
	if err != nil {
		t.Fatal(err)
	}
	if best.Fitness != 12.5 || best.Generation != 3 || best.Score != 2 {
		t.Errorf("best = %+v", best)
	}

	restored := &neural.FFNN{}
	if err := restored.UnmarshalWeights(best.Weights); err != nil {
		t.Fatalf("UnmarshalWeights: %v", err)
	}
	if *restored != *nn {
		t.Error("restored champion differs")
	}
}
