// Package motor executes the physical arm skills through the solo CLI
// automation layer, with retry and a deterministic simulation fallback for
// hardware-free runs.
package motor

import "time"

// Skill is one of the three trained motor policies. The set is closed;
// the orchestrator dispatches over it exhaustively.
type Skill int

// Motor skills.
const (
	OpenBook Skill = iota
	CloseBook
	TurnPage
)

// String returns the skill's wire name.
func (s Skill) String() string {
	switch s {
	case OpenBook:
		return "open_book"
	case CloseBook:
		return "close_book"
	case TurnPage:
		return "turn_page"
	default:
		return "unknown"
	}
}

// Spec describes how one skill is executed: which trained policy to load,
// how long the inference session runs, and the task description the policy
// was trained with.
type Spec struct {
	Policy   string
	Duration time.Duration
	Task     string
}

// DefaultSpecs returns the trained policy bindings for each skill.
func DefaultSpecs() map[Skill]Spec {
	return map[Skill]Spec{
		OpenBook: {
			Policy:   "ladybugs/open_book_ACT",
			Duration: 15 * time.Second,
			Task:     "Open the book cover",
		},
		CloseBook: {
			Policy:   "ladybugs/close_book_ACT",
			Duration: 15 * time.Second,
			Task:     "Close the book",
		},
		TurnPage: {
			Policy:   "ladybugs/turn_page_ACT",
			Duration: 10 * time.Second,
			Task:     "Turn one page from right to left",
		},
	}
}

// Outcome reports one completed skill execution.
type Outcome struct {
	// Skill that was executed.
	Skill Skill

	// Attempts is how many tries it took, including the successful one.
	Attempts int

	// Elapsed is the wall time of the successful attempt.
	Elapsed time.Duration

	// Simulated is true when the fallback runner executed the skill,
	// meaning no physical motion happened.
	Simulated bool
}
