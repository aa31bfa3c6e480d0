package usecase

import (
	"fmt"

	"marketplace/internal/data/entity"
)

type Action string

const (
	ActionApprove  Action = "approve"
	ActionReject   Action = "reject"
	ActionOverride Action = "override"
)

// Transition computes the next approval status. changed is false for a
// same-status request, which is an error only when strict is set.
// target is read for ActionOverride only.
func Transition(current entity.ApprovalStatus, action Action, target entity.ApprovalStatus, actor entity.Identity, strict bool) (entity.ApprovalStatus, bool, error) {
	if !actor.IsAdmin() {
		return current, false, fmt.Errorf("only admins can moderate products: %w", ErrForbidden)
	}

	var next entity.ApprovalStatus
	switch action {
	case ActionApprove:
		next = entity.StatusApproved
	case ActionReject:
		next = entity.StatusRejected
	case ActionOverride:
		if !target.Valid() {
			return current, false, newValidationError("approval_status", "must be one of: pending approved rejected")
		}
		next = target
	default:
		return current, false, newValidationError("action", fmt.Sprintf("unknown action %q", action))
	}

	if next == current {
		if strict {
			return current, false, fmt.Errorf("product is already %s: %w", current, ErrPreconditionFailed)
		}
		return current, false, nil
	}
	return next, true, nil
}
