package common

// Roles known to the policy engine. Anything that is not RoleAdmin is treated
// as a regular user.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// Token types carried in the "type" claim.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// BearerTokenType is reported to clients alongside a token pair.
const BearerTokenType = "Bearer"

// DefaultTaskStatus is assigned to tasks created without an explicit status.
const DefaultTaskStatus = "pending"
