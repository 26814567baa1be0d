package service

import (
	"github.com/google/uuid"

	"github.com/itrun-git/itrun-back/internal/domain"
	"github.com/itrun-git/itrun-back/internal/response"
)

// Membership moves only forward: nonexistent -> member -> admin, or
// nonexistent -> admin for the creator. Any edge may be removed.

// checkRemoval guards the admin removal path
func checkRemoval(callerID, targetID uuid.UUID, targetRole domain.Role) error {
	if callerID == targetID {
		return response.NewBadRequestError("Use leave to remove yourself")
	}
	if targetRole == domain.RoleAdmin {
		return response.NewForbiddenError("An admin cannot be removed by another admin")
	}
	return nil
}

// checkRoleChange validates a requested role. It reports noop when the
// member already holds the role.
func checkRoleChange(current domain.Role, requested string) (role domain.Role, noop bool, err error) {
	role = domain.Role(requested)
	if !role.IsValid() {
		return "", false, response.NewValidationError("Invalid role", requested)
	}
	if current == role {
		return role, true, nil
	}
	if current == domain.RoleAdmin && role == domain.RoleMember {
		return "", false, response.NewBadRequestError("Admins cannot be demoted")
	}
	return role, false, nil
}

// leaveOutcome is what happens to a container when a member leaves it
type leaveOutcome int

const (
	leaveRemoveEdge leaveOutcome = iota
	leaveDeleteContainer
)

// checkLeave decides whether the caller may leave. The last admin cannot
// leave while other members remain; the last member takes the container
// with them.
func checkLeave(role domain.Role, admins, members int64) (leaveOutcome, error) {
	if members <= 1 {
		return leaveDeleteContainer, nil
	}
	if role == domain.RoleAdmin && admins <= 1 {
		return 0, response.NewBadRequestError("Promote another member to admin before leaving")
	}
	return leaveRemoveEdge, nil
}
