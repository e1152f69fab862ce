package telemetry

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"sort"

	"github.com/pthm-cable/flock/neural"
)

// ErrEmptyHall is returned when a champion is requested from an empty hall.
var ErrEmptyHall = errors.New("hall of fame is empty")

// HallEntry is a champion network with the episode it earned its place in.
type HallEntry struct {
	Weights    neural.BrainWeights `json:"brain"`
	Fitness    float64             `json:"fitness"`
	Generation int                 `json:"generation"`
	Slot       int                 `json:"slot"`
	Score      int                 `json:"score"`
	Ticks      int                 `json:"ticks"`
}

// HallOfFame keeps the best networks seen across all generations, sorted by
// fitness descending and capped at maxSize.
type HallOfFame struct {
	entries []HallEntry
	maxSize int
	rng     *rand.Rand
}

// NewHallOfFame creates a new hall of fame with the given capacity.
func NewHallOfFame(maxSize int, rng *rand.Rand) *HallOfFame {
	if maxSize < 1 {
		maxSize = 1
	}
	return &HallOfFame{
		entries: make([]HallEntry, 0, maxSize),
		maxSize: maxSize,
		rng:     rng,
	}
}

// Consider offers an entry to the hall.
// Returns true if the entry was added.
func (hof *HallOfFame) Consider(entry HallEntry) bool {
	// Find insertion point (sorted descending by fitness)
	idx := sort.Search(len(hof.entries), func(i int) bool {
		return hof.entries[i].Fitness < entry.Fitness
	})

	// If hall is full and entry would be last (lowest), skip it
	if len(hof.entries) >= hof.maxSize && idx >= hof.maxSize {
		return false
	}

	hof.entries = append(hof.entries, HallEntry{})
	copy(hof.entries[idx+1:], hof.entries[idx:])
	hof.entries[idx] = entry

	if len(hof.entries) > hof.maxSize {
		hof.entries = hof.entries[:hof.maxSize]
	}
	return true
}

// Sample selects a network from the hall using tournament selection.
// Returns nil if the hall is empty.
func (hof *HallOfFame) Sample() *neural.BrainWeights {
	if len(hof.entries) == 0 {
		return nil
	}

	const tournamentSize = 3
	var best *HallEntry
	for i := 0; i < tournamentSize; i++ {
		candidate := &hof.entries[hof.rng.Intn(len(hof.entries))]
		if best == nil || candidate.Fitness > best.Fitness {
			best = candidate
		}
	}

	weightsCopy := best.Weights
	return &weightsCopy
}

// Best returns the fittest entry.
func (hof *HallOfFame) Best() (HallEntry, error) {
	if len(hof.entries) == 0 {
		return HallEntry{}, ErrEmptyHall
	}
	return hof.entries[0], nil
}

// Entries returns the entries, best first. The slice must not be modified.
func (hof *HallOfFame) Entries() []HallEntry {
	return hof.entries
}

// Size returns the number of entries.
func (hof *HallOfFame) Size() int {
	return len(hof.entries)
}

// MarshalJSON serializes the hall of fame to JSON.
func (hof *HallOfFame) MarshalJSON() ([]byte, error) {
	return json.MarshalIndent(struct {
		MaxSize int         `json:"max_size"`
		Entries []HallEntry `json:"entries"`
	}{hof.maxSize, hof.entries}, "", "  ")
}

// LoadHallOfFameFromFile reads a hall of fame JSON file.
func LoadHallOfFameFromFile(path string, rng *rand.Rand) (*HallOfFame, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading hall of fame: %w", err)
	}

	var raw struct {
		MaxSize int         `json:"max_size"`
		Entries []HallEntry `json:"entries"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing hall of fame JSON: %w", err)
	}

	maxSize := max(raw.MaxSize, len(raw.Entries))
	hof := NewHallOfFame(maxSize, rng)
	for _, e := range raw.Entries {
		hof.Consider(e)
	}
	return hof, nil
}
