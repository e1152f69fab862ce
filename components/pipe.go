package components

// Pipe is a top/bottom obstacle pair separated by a fixed gap.
type Pipe struct {
	GapY   float64 // top edge of the gap, fixed for the pipe's lifetime
	Top    float64 // y of the top sprite (GapY - sprite height)
	Bottom float64 // y of the bottom sprite (GapY + gap)
	Passed bool    // cleared by the cohort; bonus already granted
}
