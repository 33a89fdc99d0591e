package blocking

import "time"

// Desired is the blocking state the task set calls for at an instant.
type Desired struct {
	Blocking bool
	Window   Window // set when Blocking
}

// DesiredState maps (tasks, now, enabled) to the desired state.
// Overlapping windows resolve to the earliest start, then the smallest id.
func DesiredState(tasks []Task, now time.Time, enabled bool) Desired {
	if !enabled {
		return Desired{}
	}
	windows := InWindow(tasks, now)
	if len(windows) == 0 {
		return Desired{}
	}
	return Desired{Blocking: true, Window: windows[0]}
}

// TransitionKind names the single transition a reconciliation pass applies.
type TransitionKind string

const (
	TransitionNone       TransitionKind = "none"
	TransitionActivate   TransitionKind = "activate"
	TransitionDeactivate TransitionKind = "deactivate"
	TransitionHandover   TransitionKind = "handover"
)

// Transition is the convergence step from actual to desired state.
type Transition struct {
	Kind   TransitionKind
	Window Window // target window for activate and handover
}

// PlanConvergence picks at most one transition that moves actual towards the
// state implied by inWindow (eligible windows containing now, in tie-break
// order). A session whose task is still in its window is kept even when the
// tie-break would pick another task: sessions are not preempted.
func PlanConvergence(actual ActiveState, inWindow []Window, enabled bool) Transition {
	if !enabled || len(inWindow) == 0 {
		if actual.Active() {
			return Transition{Kind: TransitionDeactivate}
		}
		return Transition{Kind: TransitionNone}
	}

	if !actual.Active() {
		return Transition{Kind: TransitionActivate, Window: inWindow[0]}
	}

	for _, w := range inWindow {
		if w.TaskID == actual.TaskID {
			return Transition{Kind: TransitionNone}
		}
	}

	return Transition{Kind: TransitionHandover, Window: inWindow[0]}
}
