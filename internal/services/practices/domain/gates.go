package domain

// GateDecision is the outcome of one phase advancement check.
type GateDecision struct {
	Phase              int
	CompletedInPhase   int
	RequiredInPhase    int
	AssessmentRecorded bool
	Eligible           bool
}

// defaultPhaseMinimums is the completed-practice floor per phase.
var defaultPhaseMinimums = map[int]int{
	1: 10,
	2: 15,
	3: 20,
}

const fallbackPhaseMinimum = 10

// CheckGate decides advancement from completed counts and the recorded
// assessment flag. Both conditions must hold.
func CheckGate(phase int, completed int, required int, assessmentRecorded bool) GateDecision {
	return GateDecision{
		Phase:              phase,
		CompletedInPhase:   completed,
		RequiredInPhase:    required,
		AssessmentRecorded: assessmentRecorded,
		Eligible:           completed >= required && assessmentRecorded,
	}
}

// PhaseMinimum returns the completed-practice floor for a phase.
func PhaseMinimum(phase int) int {
	if minimum, ok := defaultPhaseMinimums[phase]; ok {
		return minimum
	}
	return fallbackPhaseMinimum
}
