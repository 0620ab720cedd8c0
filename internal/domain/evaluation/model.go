package evaluation

import (
	"sort"
	"time"

	"github.com/HazemIbrahim256/sports-academy/internal/domain/rating"
)

// DefaultScore is the starting value of every score input.
const DefaultScore = 3

// RecentLimit is how many evaluations the dashboard lists as recent.
const RecentLimit = 5

// Evaluation is one coach's assessment of a player.
// AverageRating is derived by the academy API; it is nil until at least one
// skill has been rated.
type Evaluation struct {
	ID     int `json:"id"`
	Player int `json:"player"`
	Coach  int `json:"coach"`

	BallControl   *int `json:"ball_control"`
	Passing       *int `json:"passing"`
	Dribbling     *int `json:"dribbling"`
	Shooting      *int `json:"shooting"`
	UsingBothFeet *int `json:"using_both_feet"`

	Speed     *int `json:"speed"`
	Agility   *int `json:"agility"`
	Endurance *int `json:"endurance"`
	Strength  *int `json:"strength"`

	Positioning    *int `json:"positioning"`
	DecisionMaking *int `json:"decision_making"`
	GameAwareness  *int `json:"game_awareness"`
	Teamwork       *int `json:"teamwork"`

	Respect       *int `json:"respect"`
	Sportsmanship *int `json:"sportsmanship"`
	Confidence    *int `json:"confidence"`
	Leadership    *int `json:"leadership"`

	AttendanceAndPunctuality *int `json:"attendance_and_punctuality"`

	Notes         string    `json:"notes"`
	AverageRating *float64  `json:"average_rating"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Rating returns the average rating, treating a missing value as 0.
// INVARIANT: never panics on a nil AverageRating
func (e *Evaluation) Rating() float64 {
	if e == nil || e.AverageRating == nil {
		return 0
	}
	return *e.AverageRating
}

// RatingLabel is the display label of the average, or NoRating when unrated.
func (e *Evaluation) RatingLabel() string {
	if e == nil || e.AverageRating == nil {
		return rating.NoRating
	}
	return rating.LabelFromAverage(*e.AverageRating)
}

// field returns the address of the skill pointer for key.
func (e *Evaluation) field(key string) **int {
	switch key {
	case "ball_control":
		return &e.BallControl
	case "passing":
		return &e.Passing
	case "dribbling":
		return &e.Dribbling
	case "shooting":
		return &e.Shooting
	case "using_both_feet":
		return &e.UsingBothFeet
	case "speed":
		return &e.Speed
	case "agility":
		return &e.Agility
	case "endurance":
		return &e.Endurance
	case "strength":
		return &e.Strength
	case "positioning":
		return &e.Positioning
	case "decision_making":
		return &e.DecisionMaking
	case "game_awareness":
		return &e.GameAwareness
	case "teamwork":
		return &e.Teamwork
	case "respect":
		return &e.Respect
	case "sportsmanship":
		return &e.Sportsmanship
	case "confidence":
		return &e.Confidence
	case "leadership":
		return &e.Leadership
	case "attendance_and_punctuality":
		return &e.AttendanceAndPunctuality
	}
	return nil
}

// SkillValue returns the recorded score for key and whether one is set.
func (e *Evaluation) SkillValue(key string) (int, bool) {
	f := e.field(key)
	if f == nil || *f == nil {
		return 0, false
	}
	return **f, true
}

// SetSkill records a score for key. Unknown keys are ignored.
// POST: the stored value is clamped to [1,5]
func (e *Evaluation) SetSkill(key string, v int) {
	f := e.field(key)
	if f == nil {
		return
	}
	c := ClampScore(v)
	*f = &c
}

// ClampScore bounds a form score to the rating scale.
func ClampScore(v int) int {
	return rating.Clamp(v)
}

// Scores is the form state of the skill inputs keyed by skill key.
type Scores map[string]int

// NewScores returns every skill at DefaultScore.
func NewScores() Scores {
	s := make(Scores, len(Keys()))
	for _, k := range Keys() {
		s[k] = DefaultScore
	}
	return s
}

// ScoresFrom seeds form state from an existing evaluation; unset skills get DefaultScore.
func ScoresFrom(e *Evaluation) Scores {
	s := NewScores()
	if e == nil {
		return s
	}
	for _, k := range Keys() {
		if v, ok := e.SkillValue(k); ok {
			s[k] = ClampScore(v)
		}
	}
	return s
}

// Payload converts form state into the JSON body for create/patch calls.
// POST: every catalogue skill is present and within [1,5]
func (s Scores) Payload() map[string]any {
	out := make(map[string]any, len(Keys()))
	for _, k := range Keys() {
		v, ok := s[k]
		if !ok {
			v = DefaultScore
		}
		out[k] = ClampScore(v)
	}
	return out
}

// LatestFirst returns up to n evaluations, most recently updated first.
// The input slice is not modified.
func LatestFirst(evs []Evaluation, n int) []Evaluation {
	sorted := make([]Evaluation, len(evs))
	copy(sorted, evs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].UpdatedAt.After(sorted[j].UpdatedAt)
	})
	if n >= 0 && len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// ForPlayer returns the first evaluation recorded for a player, or nil.
func ForPlayer(evs []Evaluation, playerID int) *Evaluation {
	for i := range evs {
		if evs[i].Player == playerID {
			return &evs[i]
		}
	}
	return nil
}
