package coach

import (
	"strings"

	"github.com/HazemIbrahim256/sports-academy/internal/domain/validation"
)

// MinPasswordLength is the shortest password the academy API accepts.
const MinPasswordLength = 6

// User is an authentication account.
type User struct {
	ID        int    `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	IsStaff   bool   `json:"is_staff"`
}

// DisplayName returns the full name, falling back to the username.
func (u User) DisplayName() string {
	full := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if full != "" {
		return full
	}
	return u.Username
}

// Initial is the avatar letter for users without a photo.
func (u User) Initial() string {
	name := u.DisplayName()
	if name == "" {
		return "?"
	}
	r := []rune(name)
	return strings.ToUpper(string(r[0]))
}

// GroupRef is the short form of a group nested in a coach.
type GroupRef struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Coach is a staff member who runs groups.
type Coach struct {
	ID     int        `json:"id"`
	User   User       `json:"user"`
	Bio    string     `json:"bio"`
	Photo  string     `json:"photo"`
	Phone  string     `json:"phone"`
	Groups []GroupRef `json:"groups"`
}

// HasGroup reports whether the coach runs group id.
func (c *Coach) HasGroup(id int) bool {
	for _, g := range c.Groups {
		if g.ID == id {
			return true
		}
	}
	return false
}

// AssignableGroups returns the groups from all that the coach does not already run.
// INVARIANT: order of all is preserved
func (c *Coach) AssignableGroups(all []GroupRef) []GroupRef {
	out := make([]GroupRef, 0, len(all))
	for _, g := range all {
		if !c.HasGroup(g.ID) {
			out = append(out, g)
		}
	}
	return out
}

// CreateForm is the input for creating a coach together with its login.
type CreateForm struct {
	Username  string `form:"username" json:"username" validate:"required"`
	Password  string `form:"password" json:"password" validate:"required,min=6"`
	Email     string `form:"email" json:"email,omitempty" validate:"omitempty,email"`
	FirstName string `form:"first_name" json:"first_name,omitempty"`
	LastName  string `form:"last_name" json:"last_name,omitempty"`
	Phone     string `form:"phone" json:"phone,omitempty"`
	Bio       string `form:"bio" json:"bio,omitempty"`
}

// Validate checks the create form.
// POST: text fields other than Password are trimmed
func (f *CreateForm) Validate() error {
	f.Username = strings.TrimSpace(f.Username)
	f.Email = strings.TrimSpace(f.Email)
	f.FirstName = strings.TrimSpace(f.FirstName)
	f.LastName = strings.TrimSpace(f.LastName)
	f.Phone = strings.TrimSpace(f.Phone)
	f.Bio = strings.TrimSpace(f.Bio)
	return validation.Struct(f)
}
