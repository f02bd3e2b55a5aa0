package models

// Stage is one step in the fixed evolution ladder. Stages are ordered;
// stage N+1 is reachable from stage N only.
type Stage struct {
	Name      string `json:"name" toml:"name"`
	Symbol    string `json:"symbol" toml:"symbol"`
	URI       string `json:"uri" toml:"uri"`
	MinPoints int64  `json:"minPoints" toml:"min_points"`
}

// StageAt returns the stage at index, falling back to the first stage when the
// index is out of range (old snapshots with unknown indices degrade to Seed).
func StageAt(stages []Stage, index int) Stage {
	if index < 0 || index >= len(stages) {
		return stages[0]
	}
	return stages[index]
}

// NextStage returns the stage after index, or false at the terminal stage.
func NextStage(stages []Stage, index int) (Stage, int, bool) {
	next := index + 1
	if next < 1 || next >= len(stages) {
		return Stage{}, 0, false
	}
	return stages[next], next, true
}
