package neural

// IODescriptor describes a brain input or output for UI display.
type IODescriptor struct {
	ID          string  // Unique identifier
	Label       string  // Display name
	Description string  // Tooltip/extended description
	Min         float32 // Minimum value
	Max         float32 // Maximum value
	IsCentered  bool    // True for centered bar display (e.g., -1 to +1)
}

// BrainInputDescriptors returns metadata for all brain inputs.
// Order matches Encode.
func BrainInputDescriptors() []IODescriptor {
	return []IODescriptor{
		{ID: "height", Label: "Y", Description: "Bird height above the top edge", Min: 0, Max: 1},
		{ID: "gap_top", Label: "dTop", Description: "Distance to the gap's top edge", Min: 0, Max: 1},
		{ID: "gap_bottom", Label: "dBot", Description: "Distance to the bottom pipe", Min: 0, Max: 1},
	}
}

// BrainOutputDescriptors returns metadata for all brain outputs.
func BrainOutputDescriptors() []IODescriptor {
	return []IODescriptor{
		{ID: "flap", Label: "Flap", Description: "Flap when above the decision threshold", Min: -1, Max: 1, IsCentered: true},
	}
}

// InputLabels returns the short input labels for network diagrams.
func InputLabels() []string {
	return labels(BrainInputDescriptors())
}

// OutputLabels returns the short output labels for network diagrams.
func OutputLabels() []string {
	return labels(BrainOutputDescriptors())
}

func labels(descs []IODescriptor) []string {
	out := make([]string, len(descs))
	for i, d := range descs {
		out[i] = d.Label
	}
	return out
}
