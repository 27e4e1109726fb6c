package models

import "github.com/dmitrijs2005/taskkeeper/internal/common"

// Identity is the caller established from a verified access token.
type Identity struct {
	ID   int64
	Role string
}

func (i Identity) IsAdmin() bool {
	return i.Role == common.RoleAdmin
}
