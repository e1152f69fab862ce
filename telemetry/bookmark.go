package telemetry

import (
	"fmt"
	"log/slog"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkFirstPass       BookmarkType = "first_pass"
	BookmarkNewBestScore    BookmarkType = "new_best_score"
	BookmarkNewBestFitness  BookmarkType = "new_best_fitness"
	BookmarkStagnation      BookmarkType = "stagnation"
	BookmarkFitnessCollapse BookmarkType = "fitness_collapse"
)

// Bookmark represents an automatically triggered bookmark.
type Bookmark struct {
	Type        BookmarkType `csv:"type"`
	Generation  int          `csv:"generation"`
	Description string       `csv:"description"`
}

// LogBookmark logs the bookmark using slog.
func (b Bookmark) LogBookmark() {
	slog.Info("bookmark",
		"type", string(b.Type),
		"generation", b.Generation,
		"description", b.Description,
	)
}

// BookmarkDetector detects interesting generations during training.
type BookmarkDetector struct {
	// Rolling history (circular buffer)
	history     []GenerationStats
	historySize int
	historyIdx  int
	historyFull bool

	stagnationLimit int

	// State tracking
	seen          bool
	bestFitness   float64
	bestScore     int
	sinceImproved int
}

// NewBookmarkDetector creates a detector with the given history size.
// stagnationLimit is the number of generations without a new best fitness
// that triggers a stagnation bookmark (0 disables it).
func NewBookmarkDetector(historySize, stagnationLimit int) *BookmarkDetector {
	if historySize < 3 {
		historySize = 3
	}
	return &BookmarkDetector{
		history:         make([]GenerationStats, historySize),
		historySize:     historySize,
		stagnationLimit: stagnationLimit,
	}
}

// Check analyzes the latest stats and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(stats GenerationStats) []Bookmark {
	var bookmarks []Bookmark

	if b := bd.checkScore(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}
	if b := bd.checkBestFitness(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}
	if b := bd.checkStagnation(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}
	if b := bd.checkCollapse(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}

	bd.addToHistory(stats)
	bd.seen = true

	return bookmarks
}

func (bd *BookmarkDetector) addToHistory(stats GenerationStats) {
	bd.history[bd.historyIdx] = stats
	bd.historyIdx = (bd.historyIdx + 1) % bd.historySize
	if bd.historyIdx == 0 {
		bd.historyFull = true
	}
}

func (bd *BookmarkDetector) getHistory() []GenerationStats {
	if bd.historyFull {
		return bd.history
	}
	return bd.history[:bd.historyIdx]
}

func (bd *BookmarkDetector) checkScore(stats GenerationStats) *Bookmark {
	if stats.Score <= bd.bestScore {
		return nil
	}

	prev := bd.bestScore
	bd.bestScore = stats.Score

	if prev == 0 {
		return &Bookmark{
			Type:        BookmarkFirstPass,
			Generation:  stats.Generation,
			Description: fmt.Sprintf("First pipe cleared; score %d", stats.Score),
		}
	}
	return &Bookmark{
		Type:        BookmarkNewBestScore,
		Generation:  stats.Generation,
		Description: fmt.Sprintf("Score %d beats previous best %d", stats.Score, prev),
	}
}

func (bd *BookmarkDetector) checkBestFitness(stats GenerationStats) *Bookmark {
	if !bd.seen {
		bd.bestFitness = stats.BestFitness
		return nil
	}
	if stats.BestFitness <= bd.bestFitness {
		bd.sinceImproved++
		return nil
	}

	prev := bd.bestFitness
	bd.bestFitness = stats.BestFitness
	bd.sinceImproved = 0

	return &Bookmark{
		Type:        BookmarkNewBestFitness,
		Generation:  stats.Generation,
		Description: fmt.Sprintf("Best fitness %.1f beats previous %.1f", stats.BestFitness, prev),
	}
}

// checkStagnation fires once per plateau, exactly when the limit is reached.
func (bd *BookmarkDetector) checkStagnation(stats GenerationStats) *Bookmark {
	if bd.stagnationLimit <= 0 || bd.sinceImproved != bd.stagnationLimit {
		return nil
	}
	return &Bookmark{
		Type:        BookmarkStagnation,
		Generation:  stats.Generation,
		Description: fmt.Sprintf("No fitness improvement for %d generations (best %.1f)", bd.sinceImproved, bd.bestFitness),
	}
}

func (bd *BookmarkDetector) checkCollapse(stats GenerationStats) *Bookmark {
	history := bd.getHistory()
	if len(history) < 3 {
		return nil
	}

	var total float64
	for _, h := range history {
		total += h.MeanFitness
	}
	avg := total / float64(len(history))
	if avg <= 0 {
		return nil
	}

	if stats.MeanFitness < avg*0.5 {
		return &Bookmark{
			Type:        BookmarkFitnessCollapse,
			Generation:  stats.Generation,
			Description: fmt.Sprintf("Mean fitness %.1f fell below half the recent average %.1f", stats.MeanFitness, avg),
		}
	}
	return nil
}
