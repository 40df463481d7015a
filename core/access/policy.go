// Package access holds the static capability table of each Role.
package access

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/academia/core"
)

type (
	Kind      string
	Operation string
	Scope     int
)

const (
	KindDepartment Kind = "department"
	KindTeacher    Kind = "teacher"
	KindStudent    Kind = "student"
	KindCourse     Kind = "course"
)

const (
	Create Operation = "create"
	Read   Operation = "read"
	Update Operation = "update"
	Delete Operation = "delete"
	Enroll Operation = "enroll" // enroll & unenroll
)

const (
	ScopeNone Scope = iota
	ScopeSelf       // only the caller's own profile
	ScopeAny
)

type capabilities map[Kind]map[Operation]Scope

var crud = map[Operation]Scope{Create: ScopeAny, Read: ScopeAny, Update: ScopeAny, Delete: ScopeAny}

var table = map[core.Role]capabilities{
	core.RoleStudent: {
		KindStudent: {Read: ScopeSelf, Update: ScopeSelf, Enroll: ScopeSelf},
		KindCourse:  {Read: ScopeAny},
	},
	core.RoleTeacher: {
		KindDepartment: crud,
		KindTeacher:    crud,
		KindStudent:    {Create: ScopeAny, Read: ScopeAny, Update: ScopeAny, Delete: ScopeAny, Enroll: ScopeAny},
		KindCourse:     crud,
	},
}

// ScopeOf looks up what `role` may do with `op` on entities of `kind`.
func ScopeOf(role core.Role, kind Kind, op Operation) Scope {
	return table[role][kind][op]
}

// SelfFunc reports whether the target of an operation is the caller's own profile.
// A nil SelfFunc denotes a collection operation (list, filter), which has no single target.
type SelfFunc func(ctx context.Context) (bool, error)

// Authorize returns core.ErrForbidden unless caller may perform op on kind.
// isSelf is only consulted when the caller's scope is ScopeSelf.
func Authorize(ctx context.Context, caller core.Identity, kind Kind, op Operation, isSelf SelfFunc) error {
	switch ScopeOf(caller.Role, kind, op) {
	case ScopeAny:
		return nil
	case ScopeSelf:
		if isSelf == nil {
			return core.ErrForbidden
		}
		ok, err := isSelf(ctx)
		if err != nil {
			if errors.Is(err, core.ErrNotFound) {
				return core.ErrForbidden
			}
			return errors.Wrap(err, "resolving own profile")
		}
		if ok {
			return nil
		}
	}
	return core.ErrForbidden
}

// Can is the boolean form of ScopeOf, for collection operations.
func Can(caller core.Identity, kind Kind, op Operation) bool {
	return ScopeOf(caller.Role, kind, op) == ScopeAny
}
