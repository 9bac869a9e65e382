package permission

import (
	"sort"
)

// Set is an immutable set of permission strings.
//
// The zero value is an empty set that grants nothing.
type Set struct {
	grants map[string]struct{}
}

// NewSet builds a set. Duplicates collapse and order is irrelevant.
func NewSet(perms ...string) Set {
	grants := make(map[string]struct{}, len(perms))
	for _, p := range perms {
		grants[p] = struct{}{}
	}
	return Set{grants: grants}
}

// Len returns the number of distinct strings.
func (s Set) Len() int {
	return len(s.grants)
}

// Has reports exact membership of perm. Wildcards are not expanded.
func (s Set) Has(perm string) bool {
	_, ok := s.grants[perm]
	return ok
}

// HasAny reports whether any of required is a member. It is false for an
// empty list.
func (s Set) HasAny(required ...string) bool {
	for _, p := range required {
		if s.Has(p) {
			return true
		}
	}
	return false
}

// HasAll reports whether every one of required is a member. It is true for
// an empty list.
func (s Set) HasAll(required ...string) bool {
	for _, p := range required {
		if !s.Has(p) {
			return false
		}
	}
	return true
}

// CanAccess reports whether resource:action or resource:* is present.
func (s Set) CanAccess(resource, action string) bool {
	if resource == "" || action == "" {
		return false
	}
	return s.Has(New(resource, action)) || s.Has(New(resource, Wildcard))
}

// GroupByResource maps each resource to its sorted, distinct actions.
// Strings that fail Parse are skipped.
func (s Set) GroupByResource() map[string][]string {
	out := make(map[string][]string)
	for raw := range s.grants {
		p, err := Parse(raw)
		if err != nil {
			continue
		}
		out[p.Resource] = append(out[p.Resource], p.Action)
	}
	for resource := range out {
		sort.Strings(out[resource])
	}
	return out
}

// AccessibleResources returns the sorted resources named by parsable grants.
func (s Set) AccessibleResources() []string {
	grouped := s.GroupByResource()
	out := make([]string, 0, len(grouped))
	for resource := range grouped {
		out = append(out, resource)
	}
	sort.Strings(out)
	return out
}

// Slice returns the members sorted.
func (s Set) Slice() []string {
	out := make([]string, 0, len(s.grants))
	for p := range s.grants {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}
