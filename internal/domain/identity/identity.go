package identity

import (
	"github.com/HazemIbrahim256/sports-academy/internal/domain/coach"
	"github.com/HazemIbrahim256/sports-academy/internal/domain/media"
)

// Kind is the variant of a resolved identity.
type Kind int

const (
	// Anonymous means no valid session.
	Anonymous Kind = iota
	// Staff users administer every group.
	Staff
	// Coach users see their own groups.
	Coach
	// Member is authenticated without staff rights or a coach profile.
	Member
)

// String names the variant for logs.
func (k Kind) String() string {
	switch k {
	case Staff:
		return "staff"
	case Coach:
		return "coach"
	case Member:
		return "member"
	}
	return "anonymous"
}

// Me is the academy API's description of the current user.
type Me struct {
	User    coach.User   `json:"user"`
	Coach   *coach.Coach `json:"coach"`
	IsStaff bool         `json:"is_staff"`
}

// Identity is the resolved viewer of a request.
// INVARIANT: the zero value is Anonymous
type Identity struct {
	Kind  Kind
	User  coach.User
	Coach *coach.Coach
}

// FromMe classifies a Me payload.
// POST: staff wins over a coach profile
func FromMe(me Me) Identity {
	id := Identity{User: me.User, Coach: me.Coach}
	switch {
	case me.IsStaff || me.User.IsStaff:
		id.Kind = Staff
	case me.Coach != nil:
		id.Kind = Coach
	default:
		id.Kind = Member
	}
	return id
}

// IsAuthenticated reports whether a session backs this identity.
func (i Identity) IsAuthenticated() bool {
	return i.Kind != Anonymous
}

// IsStaff reports staff rights.
func (i Identity) IsStaff() bool {
	return i.Kind == Staff
}

// DisplayName is the navigation label.
func (i Identity) DisplayName() string {
	return i.User.DisplayName()
}

// Initial is the avatar fallback letter.
func (i Identity) Initial() string {
	return i.User.Initial()
}

// PhotoURL resolves the coach photo, if any, against the API origin.
func (i Identity) PhotoURL(origin string) string {
	if i.Coach == nil {
		return ""
	}
	return media.ResolveURL(origin, i.Coach.Photo)
}
