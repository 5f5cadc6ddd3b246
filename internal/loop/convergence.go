package loop

import (
	"fmt"

	"github.com/recurhq/aot/internal/config"
	"github.com/recurhq/aot/internal/state"
)

// RecordRound updates the convergence counters in the control block at the
// end of a round. The iteration counter always increments by exactly one; the
// stall counter resets to zero when the pending-atom count strictly
// decreases and increments otherwise.
func RecordRound(ctrl *state.Control, pending int) {
	ctrl.Iteration++
	if pending < ctrl.PreviousPending {
		ctrl.StallCount = 0
	} else {
		ctrl.StallCount++
	}
	ctrl.PreviousPending = pending
}

// CheckCeilings stops the control block when an iteration or stall ceiling is
// breached. It runs once per round, after RecordRound and before the next
// readiness query. Returns the matching exit reason, or ExitReasonUnknown
// when no ceiling was hit. A control block already stopped (for example by
// exhaustion) is left untouched.
func CheckCeilings(ctrl *state.Control, limits config.Limits) ExitReason {
	if ctrl.Status == state.StatusStopped {
		return ExitReasonUnknown
	}
	if ctrl.StallCount >= limits.MaxStallCount {
		ctrl.Status = state.StatusStopped
		ctrl.StopReason = fmt.Sprintf("stall ceiling reached: %d rounds without progress (max_stall_count=%d)",
			ctrl.StallCount, limits.MaxStallCount)
		return ExitReasonStalled
	}
	if ctrl.Iteration >= limits.MaxIterations {
		ctrl.Status = state.StatusStopped
		ctrl.StopReason = fmt.Sprintf("iteration ceiling reached: %d (max_iterations=%d)",
			ctrl.Iteration, limits.MaxIterations)
		return ExitReasonMaxIterations
	}
	return ExitReasonUnknown
}
