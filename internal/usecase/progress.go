package usecase

import "klik/internal/domain"

// estimateProgress derives a progress percentage from the number of log
// lines the backend has emitted so far. It is a display heuristic, not a
// backend guarantee: min(90, 10+2*logCount), with 100 reserved for the
// terminal completed state.
func estimateProgress(snapshot domain.StatusSnapshot) int {
	if len(snapshot.Logs) == 0 {
		return 10
	}
	p := 10 + 2*len(snapshot.Logs)
	if p > 90 {
		return 90
	}
	return p
}
