package models

const (
	DefaultPageLimit = 50
	MaxPageLimit     = 100
)

// Page is a limit/offset window over a list.
type Page struct {
	Limit  int
	Offset int
}

// Normalize clamps the window to sane bounds.
func (p Page) Normalize() Page {
	if p.Limit <= 0 {
		p.Limit = DefaultPageLimit
	}
	if p.Limit > MaxPageLimit {
		p.Limit = MaxPageLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}

// UserFilter narrows user lists. Text fields match case-insensitive
// substrings; OnlyID, when non-zero, restricts the list to one user.
type UserFilter struct {
	Username string
	Email    string
	OnlyID   int64
	Page
}

// ProjectFilter narrows project lists. OwnerID 0 means any owner.
type ProjectFilter struct {
	Title   string
	OwnerID int64
	Page
}

// TaskFilter narrows task lists. Zero ids mean any.
type TaskFilter struct {
	Title      string
	ProjectID  int64
	AssigneeID int64
	Page
}
