package projections

import (
	"context"
	"fmt"
	"strings"

	"github.com/HazemIbrahim256/sports-academy/internal/application/listutil"
	"github.com/HazemIbrahim256/sports-academy/internal/domain/coach"
	"github.com/HazemIbrahim256/sports-academy/internal/domain/group"
	"github.com/HazemIbrahim256/sports-academy/internal/domain/media"
)

// CoachSortColumns are the sortable columns of the coaches table.
var CoachSortColumns = []string{"name", "username", "email"}

var coachColumns = map[string]listutil.Less[CoachRow]{
	"name":     func(a, b CoachRow) bool { return lower(a.User.DisplayName()) < lower(b.User.DisplayName()) },
	"username": func(a, b CoachRow) bool { return lower(a.User.Username) < lower(b.User.Username) },
	"email":    func(a, b CoachRow) bool { return lower(a.User.Email) < lower(b.User.Email) },
}

func lower(s string) string { return strings.ToLower(s) }

// CoachRow is one row of the coaches table.
type CoachRow struct {
	coach.Coach
	PhotoURL string `json:"photo_url"`
}

// GetCoachListQuery carries input for the coaches page.
type GetCoachListQuery struct {
	Token  string
	Origin string
	List   listutil.ListParams
}

// GetCoachListDeps holds dependencies for the coaches page.
type GetCoachListDeps struct {
	CoachReader CoachReader
}

// CoachListResult carries the coaches page.
type CoachListResult struct {
	Coaches []CoachRow          `json:"coaches"`
	Sort    listutil.SortParams `json:"sort"`
	Search  string              `json:"search"`
}

// QueryGetCoachList lists coaches, filtered by the search term and sorted.
func QueryGetCoachList(ctx context.Context, query GetCoachListQuery, deps GetCoachListDeps) (CoachListResult, error) {
	coaches, err := deps.CoachReader.ListCoaches(ctx, query.Token)
	if err != nil {
		return CoachListResult{}, fmt.Errorf("list coaches: %w", err)
	}
	result := CoachListResult{
		Coaches: make([]CoachRow, 0, len(coaches)),
		Sort:    query.List.SortParams,
		Search:  query.List.Search,
	}
	for _, c := range coaches {
		if !query.List.Matches(c.User.DisplayName(), c.User.Username, c.User.Email, c.Phone) {
			continue
		}
		result.Coaches = append(result.Coaches, CoachRow{Coach: c, PhotoURL: media.ResolveURL(query.Origin, c.Photo)})
	}
	listutil.Sort(result.Coaches, query.List.SortParams, coachColumns)
	return result, nil
}

// GetCoachDetailQuery carries input for the coach page.
type GetCoachDetailQuery struct {
	Token   string
	CoachID int
	Origin  string
}

// GetCoachDetailDeps holds dependencies for the coach page.
type GetCoachDetailDeps struct {
	CoachReader CoachReader
	GroupReader GroupReader
}

// CoachDetailResult carries the coach page.
type CoachDetailResult struct {
	Coach      coach.Coach      `json:"coach"`
	PhotoURL   string           `json:"photo_url"`
	Assignable []coach.GroupRef `json:"assignable"` // groups the coach does not run yet
}

// QueryGetCoachDetail loads a coach with its groups and the groups it could take over.
// POST: Assignable and Coach.Groups are disjoint
func QueryGetCoachDetail(ctx context.Context, query GetCoachDetailQuery, deps GetCoachDetailDeps) (CoachDetailResult, error) {
	c, err := deps.CoachReader.GetCoach(ctx, query.Token, query.CoachID)
	if err != nil {
		return CoachDetailResult{}, fmt.Errorf("get coach %d: %w", query.CoachID, err)
	}
	groups, err := deps.GroupReader.ListGroups(ctx, query.Token, "")
	if err != nil {
		return CoachDetailResult{}, fmt.Errorf("list groups: %w", err)
	}
	if c.Groups == nil {
		c.Groups = []coach.GroupRef{}
	}
	return CoachDetailResult{
		Coach:      c,
		PhotoURL:   media.ResolveURL(query.Origin, c.Photo),
		Assignable: c.AssignableGroups(group.Refs(groups)),
	}, nil
}
