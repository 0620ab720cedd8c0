package group

import (
	"fmt"
	"strings"

	"github.com/HazemIbrahim256/sports-academy/internal/domain/coach"
	"github.com/HazemIbrahim256/sports-academy/internal/domain/player"
	"github.com/HazemIbrahim256/sports-academy/internal/domain/validation"
)

// DashboardLimit is how many groups the dashboard shows.
const DashboardLimit = 6

// Group is a training group with its nested coach and players.
type Group struct {
	ID          int             `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Coach       *coach.Coach    `json:"coach"`
	Players     []player.Player `json:"players"`
}

// PlayerCount returns how many players the group holds.
func (g *Group) PlayerCount() int {
	return len(g.Players)
}

// CoachName returns the assigned coach's display name or "Unassigned".
func (g *Group) CoachName() string {
	if g.Coach == nil {
		return "Unassigned"
	}
	return g.Coach.User.DisplayName()
}

// Ref returns the short form used by coach views.
func (g *Group) Ref() coach.GroupRef {
	return coach.GroupRef{ID: g.ID, Name: g.Name}
}

// Refs maps groups to their short form, preserving order.
func Refs(groups []Group) []coach.GroupRef {
	out := make([]coach.GroupRef, 0, len(groups))
	for i := range groups {
		out = append(out, groups[i].Ref())
	}
	return out
}

// TotalPlayers sums nested players across groups.
func TotalPlayers(groups []Group) int {
	n := 0
	for i := range groups {
		n += groups[i].PlayerCount()
	}
	return n
}

// CreateForm is the input for a new group.
type CreateForm struct {
	Name        string `form:"name" json:"name" validate:"required"`
	Description string `form:"description" json:"description"`
	CoachID     int    `form:"coach_id" json:"coach_id" validate:"required,gt=0"`
}

// Validate checks the create form.
// POST: Name and Description are trimmed
func (f *CreateForm) Validate() error {
	f.Name = strings.TrimSpace(f.Name)
	f.Description = strings.TrimSpace(f.Description)
	if f.CoachID <= 0 {
		return validation.Errorf("Coach is required")
	}
	return validation.Struct(f)
}

// ReportFilename is the attachment name used for a group's PDF report.
func ReportFilename(id int) string {
	return fmt.Sprintf("group-%d-report.pdf", id)
}
