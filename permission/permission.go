package permission

import (
	"errors"
	"fmt"
	"strings"
)

// Wildcard is the action that grants every action on a resource.
const Wildcard = "*"

// Separator splits resource from action.
const Separator = ":"

// ErrInvalidPermission indicates a string outside the resource:action grammar.
var ErrInvalidPermission = errors.New("permission: invalid permission")

// Permission is a parsed resource:action pair.
type Permission struct {
	Resource string
	Action   string
}

// Parse parses s. It fails unless s has exactly one colon with non-empty
// parts on both sides.
func Parse(s string) (Permission, error) {
	if strings.Count(s, Separator) != 1 {
		return Permission{}, fmt.Errorf("%w: %q", ErrInvalidPermission, s)
	}
	resource, action, _ := strings.Cut(s, Separator)
	if resource == "" || action == "" {
		return Permission{}, fmt.Errorf("%w: %q", ErrInvalidPermission, s)
	}
	return Permission{Resource: resource, Action: action}, nil
}

// New builds a permission string.
func New(resource, action string) string {
	return resource + Separator + action
}

// String returns resource:action.
func (p Permission) String() string {
	return New(p.Resource, p.Action)
}

// IsWildcard reports whether p grants every action on its resource.
func (p Permission) IsWildcard() bool {
	return p.Action == Wildcard
}
