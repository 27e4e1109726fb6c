// Package repositories holds helpers shared by the in-memory repository
// implementations; the storage contracts live in the subpackages.
package repositories

import (
	"strings"

	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
)

// ContainsFold reports whether sub occurs in s ignoring case, like ILIKE
// '%sub%'. An empty sub matches everything.
func ContainsFold(s, sub string) bool {
	return sub == "" || strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

// Paginate applies a normalized limit/offset window to items.
func Paginate[T any](items []T, p models.Page) []T {
	p = p.Normalize()
	if p.Offset >= len(items) {
		return []T{}
	}
	end := min(p.Offset+p.Limit, len(items))
	return items[p.Offset:end]
}
