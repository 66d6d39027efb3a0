package identity

import "time"

// Roles a clinic user can hold. A user's role is fixed at creation and only
// changes through an explicit update.
const (
	RoleDoctor    = "doctor"
	RoleAssistant = "assistant"
	RoleExpert    = "expert"
	RolePatient   = "patient"
)

// ValidRoles is the set of accepted role values.
var ValidRoles = map[string]bool{
	RoleDoctor:    true,
	RoleAssistant: true,
	RoleExpert:    true,
	RolePatient:   true,
}

// User maps to the users table. Password holds the bcrypt hash and is never
// serialized.
type User struct {
	ID        int64     `db:"id" json:"id"`
	Username  string    `db:"username" json:"username"`
	Password  string    `db:"password" json:"-"`
	Name      string    `db:"name" json:"name"`
	Role      string    `db:"role" json:"role"`
	Active    bool      `db:"active" json:"active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// UserPatch lists the fields that are legitimately mutable on a user.
// Username and creation timestamp are immutable and deliberately absent.
type UserPatch struct {
	Password *string `json:"password,omitempty"`
	Name     *string `json:"name,omitempty"`
	Role     *string `json:"role,omitempty"`
	Active   *bool   `json:"active,omitempty"`
}

func (u *User) apply(p UserPatch) {
	if p.Password != nil {
		u.Password = *p.Password
	}
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Role != nil {
		u.Role = *p.Role
	}
	if p.Active != nil {
		u.Active = *p.Active
	}
}
