package policy

import "github.com/dmitrijs2005/taskkeeper/internal/server/models"

// RoleUserRules: admins manage everyone; users read and edit themselves.
type RoleUserRules struct{}

func (RoleUserRules) CanRead(a models.Identity, u *models.User) bool {
	return a.IsAdmin() || a.ID == u.ID
}

func (RoleUserRules) CanCreate(a models.Identity) bool { return a.IsAdmin() }

func (RoleUserRules) CanUpdate(a models.Identity, u *models.User) bool {
	return a.IsAdmin() || a.ID == u.ID
}

func (RoleUserRules) CanDelete(a models.Identity, _ *models.User) bool { return a.IsAdmin() }

// RoleProjectRules: any user may create; only the owner renames. Admins may
// read and delete any project but not rename someone else's.
type RoleProjectRules struct{}

func (RoleProjectRules) CanRead(a models.Identity, p *models.Project) bool {
	return a.IsAdmin() || a.ID == p.OwnerID
}

func (RoleProjectRules) CanCreate(models.Identity) bool { return true }

func (RoleProjectRules) CanUpdate(a models.Identity, p *models.Project) bool {
	return a.ID == p.OwnerID
}

func (RoleProjectRules) CanDelete(a models.Identity, p *models.Project) bool {
	return a.IsAdmin() || a.ID == p.OwnerID
}

// RoleTaskRules: admins do everything; assignees may only read.
type RoleTaskRules struct{}

func (RoleTaskRules) CanRead(a models.Identity, t *models.Task) bool {
	return a.IsAdmin() || a.ID == t.AssigneeID
}

func (RoleTaskRules) CanCreate(a models.Identity) bool { return a.IsAdmin() }

func (RoleTaskRules) CanUpdate(a models.Identity, _ *models.Task) bool { return a.IsAdmin() }

func (RoleTaskRules) CanDelete(a models.Identity, _ *models.Task) bool { return a.IsAdmin() }
