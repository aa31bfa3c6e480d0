package usecase

import (
	"testing"

	"marketplace/internal/data/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransition(t *testing.T) {
	admin := entity.Identity{UserID: uuid.New(), Role: entity.RoleAdmin}

	tests := []struct {
		name    string
		current entity.ApprovalStatus
		action  Action
		target  entity.ApprovalStatus
		want    entity.ApprovalStatus
		changed bool
	}{
		{"approve pending", entity.StatusPending, ActionApprove, "", entity.StatusApproved, true},
		{"reject pending", entity.StatusPending, ActionReject, "", entity.StatusRejected, true},
		{"approve rejected", entity.StatusRejected, ActionApprove, "", entity.StatusApproved, true},
		{"reject approved", entity.StatusApproved, ActionReject, "", entity.StatusRejected, true},
		{"override back to pending", entity.StatusApproved, ActionOverride, entity.StatusPending, entity.StatusPending, true},
		{"approve approved is a no-op", entity.StatusApproved, ActionApprove, "", entity.StatusApproved, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, changed, err := Transition(tt.current, tt.action, tt.target, admin, false)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.changed, changed)
		})
	}
}

func TestTransition_NonAdminForbidden(t *testing.T) {
	seller := entity.Identity{UserID: uuid.New(), Role: entity.RoleSeller}

	for _, action := range []Action{ActionApprove, ActionReject, ActionOverride} {
		got, changed, err := Transition(entity.StatusPending, action, entity.StatusApproved, seller, false)
		assert.ErrorIs(t, err, ErrForbidden, action)
		assert.False(t, changed)
		assert.Equal(t, entity.StatusPending, got)
	}
}

func TestTransition_SameStatusStrict(t *testing.T) {
	admin := entity.Identity{UserID: uuid.New(), Role: entity.RoleAdmin}

	_, _, err := Transition(entity.StatusApproved, ActionApprove, "", admin, true)
	assert.ErrorIs(t, err, ErrPreconditionFailed)

	_, _, err = Transition(entity.StatusRejected, ActionOverride, entity.StatusRejected, admin, true)
	assert.ErrorIs(t, err, ErrPreconditionFailed)
}

func TestTransition_InvalidInput(t *testing.T) {
	admin := entity.Identity{UserID: uuid.New(), Role: entity.RoleAdmin}

	_, _, err := Transition(entity.StatusPending, Action("archive"), "", admin, false)
	assert.ErrorIs(t, err, ErrValidation)

	_, _, err = Transition(entity.StatusPending, ActionOverride, entity.ApprovalStatus("sold"), admin, false)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "approval_status")
}
