package core

type Role string

const (
	RoleStudent Role = "STUDENT"
	RoleTeacher Role = "TEACHER"
)

var Roles = []Role{RoleStudent, RoleTeacher}

func (r Role) IsValid() bool {
	return r == RoleStudent || r == RoleTeacher
}

// Identity is the authenticated caller of a core operation.
type Identity struct {
	AccountID int
	Username  string
	Role      Role
}

func (id Identity) IsStudent() bool { return id.Role == RoleStudent }
func (id Identity) IsTeacher() bool { return id.Role == RoleTeacher }
