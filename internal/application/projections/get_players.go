package projections

import (
	"context"
	"fmt"
	"strings"

	"github.com/HazemIbrahim256/sports-academy/internal/application/listutil"
	"github.com/HazemIbrahim256/sports-academy/internal/domain/group"
	"github.com/HazemIbrahim256/sports-academy/internal/domain/media"
	"github.com/HazemIbrahim256/sports-academy/internal/domain/player"
)

// PlayerSortColumns are the sortable columns of the players table.
var PlayerSortColumns = []string{"name", "age", "birth_date"}

var playerColumns = map[string]listutil.Less[PlayerRow]{
	"name":       func(a, b PlayerRow) bool { return strings.ToLower(a.Name) < strings.ToLower(b.Name) },
	"age":        func(a, b PlayerRow) bool { return a.Age < b.Age },
	"birth_date": func(a, b PlayerRow) bool { return a.BirthDate < b.BirthDate },
}

// GetPlayerListQuery carries input for the players page.
type GetPlayerListQuery struct {
	Token   string
	GroupID int // 0 selects the first group
	Origin  string
	List    listutil.ListParams
}

// GetPlayerListDeps holds dependencies for the players page.
type GetPlayerListDeps struct {
	GroupReader  GroupReader
	PlayerReader PlayerReader
}

// PlayerRow is one row of the players table.
type PlayerRow struct {
	player.Player
	PhotoURL string `json:"photo_url"`
}

// PlayerListResult carries the players page.
type PlayerListResult struct {
	Groups          []group.Group       `json:"groups"`
	SelectedGroupID int                 `json:"selected_group_id"`
	Players         []PlayerRow         `json:"players"`
	Sort            listutil.SortParams `json:"sort"`
	Search          string              `json:"search"`
}

// QueryGetPlayerList lists the players of the selected group.
// An unknown or missing group selection falls back to the first group.
// POST: SelectedGroupID is 0 only when there are no groups
func QueryGetPlayerList(ctx context.Context, query GetPlayerListQuery, deps GetPlayerListDeps) (PlayerListResult, error) {
	groups, err := deps.GroupReader.ListGroups(ctx, query.Token, "")
	if err != nil {
		return PlayerListResult{}, fmt.Errorf("list groups: %w", err)
	}
	result := PlayerListResult{
		Groups:  groups,
		Players: []PlayerRow{},
		Sort:    query.List.SortParams,
		Search:  query.List.Search,
	}
	result.SelectedGroupID = selectGroup(groups, query.GroupID)
	if result.SelectedGroupID == 0 {
		return result, nil
	}

	players, err := deps.PlayerReader.ListPlayers(ctx, query.Token, result.SelectedGroupID)
	if err != nil {
		return PlayerListResult{}, fmt.Errorf("list players: %w", err)
	}
	for _, p := range players {
		if !query.List.Matches(p.Name, p.Phone) {
			continue
		}
		result.Players = append(result.Players, PlayerRow{Player: p, PhotoURL: media.ResolveURL(query.Origin, p.Photo)})
	}
	listutil.Sort(result.Players, query.List.SortParams, playerColumns)
	return result, nil
}

// selectGroup returns want when it is one of groups, else the first group id, else 0.
func selectGroup(groups []group.Group, want int) int {
	for _, g := range groups {
		if g.ID == want {
			return want
		}
	}
	if len(groups) > 0 {
		return groups[0].ID
	}
	return 0
}
