package components

// Observation is what a bird sees each tick: its own height and the vertical
// distances to both edges of the gap it is heading for.
type Observation struct {
	Y         float64 `json:"y" inspect:"bar,max:730,fmt:%.0f"`
	GapTop    float64 `json:"gap_top" inspect:"label,fmt:%.0f"`    // |Y - gap top edge|
	GapBottom float64 `json:"gap_bottom" inspect:"label,fmt:%.0f"` // |Y - bottom pipe|
}
