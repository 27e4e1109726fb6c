// Package policy decides whether an authenticated caller may act on a
// resource. Rules are pure functions of the caller and the loaded resource;
// the caller is responsible for establishing existence first, so a missing
// resource surfaces as not-found rather than forbidden.
package policy

import (
	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
)

// UserRules governs access to user accounts.
type UserRules interface {
	CanRead(actor models.Identity, target *models.User) bool
	CanCreate(actor models.Identity) bool
	CanUpdate(actor models.Identity, target *models.User) bool
	CanDelete(actor models.Identity, target *models.User) bool
}

// ProjectRules governs access to projects.
type ProjectRules interface {
	CanRead(actor models.Identity, p *models.Project) bool
	CanCreate(actor models.Identity) bool
	CanUpdate(actor models.Identity, p *models.Project) bool
	CanDelete(actor models.Identity, p *models.Project) bool
}

// TaskRules governs access to tasks.
type TaskRules interface {
	CanRead(actor models.Identity, t *models.Task) bool
	CanCreate(actor models.Identity) bool
	CanUpdate(actor models.Identity, t *models.Task) bool
	CanDelete(actor models.Identity, t *models.Task) bool
}

// Engine bundles the rule set for each resource kind.
type Engine struct {
	users    UserRules
	projects ProjectRules
	tasks    TaskRules
}

// NewEngine returns the role-based rule set.
func NewEngine() *Engine {
	return NewEngineWith(RoleUserRules{}, RoleProjectRules{}, RoleTaskRules{})
}

// NewEngineWith assembles an Engine from custom rule sets.
func NewEngineWith(u UserRules, p ProjectRules, t TaskRules) *Engine {
	return &Engine{users: u, projects: p, tasks: t}
}

func (e *Engine) Users() UserRules       { return e.users }
func (e *Engine) Projects() ProjectRules { return e.projects }
func (e *Engine) Tasks() TaskRules       { return e.tasks }

// Check turns a decision into common.ErrorForbidden when it is a denial.
func Check(allowed bool) error {
	if !allowed {
		return common.ErrorForbidden
	}
	return nil
}
