package projections

import (
	"context"
	"fmt"

	"github.com/HazemIbrahim256/sports-academy/internal/domain/coach"
	"github.com/HazemIbrahim256/sports-academy/internal/domain/group"
	"github.com/HazemIbrahim256/sports-academy/internal/domain/identity"
	"github.com/HazemIbrahim256/sports-academy/internal/domain/media"
	"github.com/HazemIbrahim256/sports-academy/internal/domain/player"
)

// GetGroupListQuery carries input for the groups page.
type GetGroupListQuery struct {
	Token  string
	Viewer identity.Identity
}

// GetGroupListDeps holds dependencies for the groups page.
type GetGroupListDeps struct {
	GroupReader GroupReader
	CoachReader CoachReader
}

// GroupListResult carries the groups page.
type GroupListResult struct {
	Groups    []group.Group `json:"groups"`
	Coaches   []coach.Coach `json:"coaches,omitempty"` // create form choices, staff only
	CanManage bool          `json:"can_manage"`
}

// QueryGetGroupList lists the viewer's groups; staff also get the coach choices.
// PRE: viewer is authenticated
func QueryGetGroupList(ctx context.Context, query GetGroupListQuery, deps GetGroupListDeps) (GroupListResult, error) {
	groups, err := deps.GroupReader.ListGroups(ctx, query.Token, "")
	if err != nil {
		return GroupListResult{}, fmt.Errorf("list groups: %w", err)
	}
	result := GroupListResult{Groups: groups, CanManage: query.Viewer.IsStaff()}
	if result.CanManage {
		coaches, err := deps.CoachReader.ListCoaches(ctx, query.Token)
		if err != nil {
			return GroupListResult{}, fmt.Errorf("list coaches: %w", err)
		}
		result.Coaches = coaches
	}
	return result, nil
}

// GetGroupDetailQuery carries input for the group detail page.
type GetGroupDetailQuery struct {
	Token   string
	GroupID int
	Origin  string
}

// GetGroupDetailDeps holds dependencies for the group detail page.
type GetGroupDetailDeps struct {
	GroupReader  GroupReader
	PlayerReader PlayerReader
}

// GroupPlayerRow is a player in the group roster.
type GroupPlayerRow struct {
	player.Player
	PhotoURL string `json:"photo_url"`
}

// GroupDetailResult carries the group detail page.
type GroupDetailResult struct {
	Group     group.Group      `json:"group"`
	Players   []GroupPlayerRow `json:"players"`
	Available []player.Player  `json:"available"` // players that can be added
}

// QueryGetGroupDetail loads a group, its roster and the players available to add.
// POST: no player appears in both Players and Available
func QueryGetGroupDetail(ctx context.Context, query GetGroupDetailQuery, deps GetGroupDetailDeps) (GroupDetailResult, error) {
	g, err := deps.GroupReader.GetGroup(ctx, query.Token, query.GroupID)
	if err != nil {
		return GroupDetailResult{}, fmt.Errorf("get group %d: %w", query.GroupID, err)
	}
	roster, err := deps.PlayerReader.ListPlayers(ctx, query.Token, query.GroupID)
	if err != nil {
		return GroupDetailResult{}, fmt.Errorf("list group players: %w", err)
	}
	all, err := deps.PlayerReader.ListPlayers(ctx, query.Token, 0)
	if err != nil {
		return GroupDetailResult{}, fmt.Errorf("list players: %w", err)
	}

	result := GroupDetailResult{Group: g, Players: make([]GroupPlayerRow, 0, len(roster))}
	inRoster := make(map[int]bool, len(roster))
	for _, p := range roster {
		inRoster[p.ID] = true
		result.Players = append(result.Players, GroupPlayerRow{Player: p, PhotoURL: media.ResolveURL(query.Origin, p.Photo)})
	}
	result.Available = make([]player.Player, 0, len(all))
	for _, p := range all {
		if p.InGroup(query.GroupID) || inRoster[p.ID] {
			continue
		}
		result.Available = append(result.Available, p)
	}
	return result, nil
}
