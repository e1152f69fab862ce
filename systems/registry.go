package systems

import "github.com/pthm-cable/flock/telemetry"

// SystemInfo describes a simulation system for UI display.
type SystemInfo struct {
	ID          string // Internal identifier (used for perf tracking)
	Name        string // Display name
	Description string // What this system does
	Category    string // Grouping (e.g., "core", "visual", "ai")
}

// SystemRegistry holds metadata about all systems.
// This centralizes system naming so the UI and perf tracker stay in sync.
type SystemRegistry struct {
	systems []SystemInfo
	byID    map[string]SystemInfo
}

// NewSystemRegistry creates a registry with all known systems.
func NewSystemRegistry() *SystemRegistry {
	reg := &SystemRegistry{
		byID: make(map[string]SystemInfo),
	}
	reg.registerDefaults()
	return reg
}

// registerDefaults adds the tick phases in execution order.
// Update this when adding new phases.
func (r *SystemRegistry) registerDefaults() {
	r.Register(SystemInfo{ID: telemetry.PhaseObserve, Name: "Observe", Description: "Builds each bird's view of the lookahead pipe", Category: "ai"})
	r.Register(SystemInfo{ID: telemetry.PhaseDecide, Name: "Decide", Description: "Evaluates decision functions and applies flaps", Category: "ai"})
	r.Register(SystemInfo{ID: telemetry.PhasePhysics, Name: "Physics", Description: "Integrates bird motion and wing frames", Category: "physics"})
	r.Register(SystemInfo{ID: telemetry.PhaseCollision, Name: "Collision", Description: "Pixel-mask and bounds elimination", Category: "physics"})
	r.Register(SystemInfo{ID: telemetry.PhasePasses, Name: "Passes", Description: "Scores cleared pipes and rewards the cohort", Category: "core"})
	r.Register(SystemInfo{ID: telemetry.PhasePipes, Name: "Pipes", Description: "Scrolls, spawns and retires obstacles", Category: "world"})
	r.Register(SystemInfo{ID: telemetry.PhaseFitness, Name: "Fitness", Description: "Applies the tick's fitness deltas", Category: "core"})
}

// Register adds a system to the registry.
func (r *SystemRegistry) Register(info SystemInfo) {
	r.systems = append(r.systems, info)
	r.byID[info.ID] = info
}

// GetName returns the display name for a system ID.
// Falls back to the ID itself if not found.
func (r *SystemRegistry) GetName(id string) string {
	if info, ok := r.byID[id]; ok {
		return info.Name
	}
	return id
}

// ByCategory returns systems filtered by category.
func (r *SystemRegistry) ByCategory(category string) []SystemInfo {
	var result []SystemInfo
	for _, info := range r.systems {
		if info.Category == category {
			result = append(result, info)
		}
	}
	return result
}

// Categories returns all unique categories.
func (r *SystemRegistry) Categories() []string {
	seen := make(map[string]bool)
	var cats []string
	for _, info := range r.systems {
		if !seen[info.Category] {
			seen[info.Category] = true
			cats = append(cats, info.Category)
		}
	}
	return cats
}
