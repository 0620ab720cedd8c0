package projections

import (
	"sort"
	"strconv"

	"github.com/HazemIbrahim256/sports-academy/internal/domain/evaluation"
	"github.com/HazemIbrahim256/sports-academy/internal/domain/group"
	"github.com/HazemIbrahim256/sports-academy/internal/domain/media"
	"github.com/HazemIbrahim256/sports-academy/internal/domain/player"
	"github.com/HazemIbrahim256/sports-academy/internal/domain/rating"
)

// MaxRankTiers is the number of distinct rating tiers shown on the leaderboard.
const MaxRankTiers = 10

// RankedPlayer is one leaderboard row.
type RankedPlayer struct {
	Evaluation evaluation.Evaluation `json:"evaluation"`
	Player     *player.Player        `json:"player"`
	Name       string                `json:"name"`
	PhotoURL   string                `json:"photo_url"`
	Group      *group.Group          `json:"group"`
	Rank       int                   `json:"rank"`
}

// Rating is the evaluation's average, 0 when unrated.
func (r RankedPlayer) Rating() float64 {
	return r.Evaluation.Rating()
}

// RatingText formats the average with two decimals.
func (r RankedPlayer) RatingText() string {
	return strconv.FormatFloat(r.Rating(), 'f', 2, 64)
}

// RatingLabel is the word label of the rounded average.
func (r RankedPlayer) RatingLabel() string {
	return rating.LabelFromAverage(r.Rating())
}

// RankBestPlayers builds the best-players leaderboard.
// Players and their groups are looked up from the nested group payloads; when a
// player id appears more than once the last occurrence wins. Evaluations are
// ordered by rating, highest first, keeping input order between equal ratings,
// and ranked densely: equal ratings share a rank and the next distinct rating
// takes the next integer.
// PRE: none; nil inputs are allowed
// POST: every entry has 1 <= Rank <= MaxRankTiers; ranks are non-decreasing
// INVARIANT: inputs are not mutated
func RankBestPlayers(groups []group.Group, evs []evaluation.Evaluation, origin string) []RankedPlayer {
	if len(evs) == 0 {
		return []RankedPlayer{}
	}

	players := make(map[int]*player.Player)
	owners := make(map[int]*group.Group)
	for gi := range groups {
		g := &groups[gi]
		for pi := range g.Players {
			p := g.Players[pi]
			players[p.ID] = &p
			owners[p.ID] = g
		}
	}

	sorted := make([]evaluation.Evaluation, len(evs))
	copy(sorted, evs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Rating() > sorted[j].Rating()
	})

	out := make([]RankedPlayer, 0, len(sorted))
	rank := 0
	var last float64
	for i, ev := range sorted {
		r := ev.Rating()
		if i == 0 || r != last {
			rank++
			last = r
		}
		if rank > MaxRankTiers {
			break
		}
		entry := RankedPlayer{
			Evaluation: ev,
			Player:     players[ev.Player],
			Name:       player.DisplayName(players[ev.Player], ev.Player),
			Rank:       rank,
		}
		if entry.Player != nil {
			entry.PhotoURL = media.ResolveURL(origin, entry.Player.Photo)
		}
		if g, ok := owners[ev.Player]; ok {
			gc := *g
			entry.Group = &gc
		}
		out = append(out, entry)
	}
	return out
}
