package rental

import "github.com/erazemk/minirent/internal/model"

func toSet(states ...model.RentalStatus) map[model.RentalStatus]struct{} {
	set := make(map[model.RentalStatus]struct{}, len(states))
	for _, s := range states {
		set[s] = struct{}{}
	}
	return set
}

// transitions lists, for each non-terminal status, the statuses it may move
// to. Terminal statuses have no entry.
var transitions = map[model.RentalStatus]map[model.RentalStatus]struct{}{
	model.RentalPending: toSet(model.RentalActive, model.RentalRejected, model.RentalEnded, model.RentalTerminated),
	model.RentalActive:  toSet(model.RentalEnded, model.RentalTerminated),
}

// CanTransition reports whether a rental may move from one status to another.
func CanTransition(from, to model.RentalStatus) bool {
	_, ok := transitions[from][to]
	return ok
}

// needsApproval reports whether moving into to is an approval decision,
// which only the property owner or an admin may make.
func needsApproval(to model.RentalStatus) bool {
	return to == model.RentalActive || to == model.RentalRejected
}
