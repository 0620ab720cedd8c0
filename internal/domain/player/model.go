package player

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/HazemIbrahim256/sports-academy/internal/domain/evaluation"
	"github.com/HazemIbrahim256/sports-academy/internal/domain/validation"
)

// MaxFilenameBase bounds the base name of an uploaded photo.
const MaxFilenameBase = 80

// Player is an academy member as returned by the academy API.
type Player struct {
	ID             int                    `json:"id"`
	Name           string                 `json:"name"`
	Age            int                    `json:"age"`
	BirthDate      string                 `json:"birth_date"`
	Phone          string                 `json:"phone"`
	Group          *int                   `json:"group"`
	Photo          string                 `json:"photo"`
	AttendanceDays int                    `json:"attendance_days"`
	Evaluation     *evaluation.Evaluation `json:"evaluation,omitempty"`
}

// InGroup reports whether the player currently belongs to group id.
func (p *Player) InGroup(id int) bool {
	return p.Group != nil && *p.Group == id
}

// DisplayName returns the player's name, or a synthetic label when the player
// is not visible to the caller. A known player's name is returned as is.
func DisplayName(p *Player, id int) string {
	if p == nil {
		return "Player #" + strconv.Itoa(id)
	}
	return p.Name
}

// Form is the create/edit input of a player.
type Form struct {
	Name      string `form:"name" validate:"required"`
	BirthDate string `form:"birth_date" validate:"required,datetime=2006-01-02"`
	Phone     string `form:"phone" validate:"required"`
	Group     int    `form:"group"`
}

// Validate checks a create form.
// PRE: fields are raw form values
// POST: Name, BirthDate and Phone are trimmed; returns validation.ErrInvalid on failure
func (f *Form) Validate() error {
	f.Name = strings.TrimSpace(f.Name)
	f.BirthDate = strings.TrimSpace(f.BirthDate)
	f.Phone = strings.TrimSpace(f.Phone)
	return validation.Struct(f)
}

// ValidateEdit checks an edit form, which additionally requires a group.
func (f *Form) ValidateEdit() error {
	if err := f.Validate(); err != nil {
		return err
	}
	if f.Group <= 0 {
		return validation.Errorf("Group is required")
	}
	return nil
}

// Fields renders the form as multipart text fields.
// INVARIANT: the group field is only sent when one is chosen
func (f *Form) Fields() map[string]string {
	out := map[string]string{
		"name":       f.Name,
		"birth_date": f.BirthDate,
		"phone":      f.Phone,
	}
	if f.Group > 0 {
		out["group"] = strconv.Itoa(f.Group)
	}
	return out
}

var unsafeRun = regexp.MustCompile(`[^a-zA-Z0-9\-_]+`)
var dashes = regexp.MustCompile(`-+`)

// SafeFilename normalises an uploaded file name for storage.
// POST: result is lowercase, base contains only [a-z0-9-_], base is at most MaxFilenameBase chars
func SafeFilename(original string) string {
	name := filepath.Base(strings.ReplaceAll(original, `\`, "/"))
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "." || (ext != "" && !isSafeExt(ext)) {
		ext = ""
	}
	base := strings.ToLower(strings.TrimSuffix(name, filepath.Ext(name)))
	base = unsafeRun.ReplaceAllString(base, "-")
	base = dashes.ReplaceAllString(base, "-")
	base = strings.Trim(base, "-")
	if len(base) > MaxFilenameBase {
		base = base[:MaxFilenameBase]
	}
	if base == "" {
		base = "photo"
	}
	return base + ext
}

func isSafeExt(ext string) bool {
	return !unsafeRun.MatchString(strings.TrimPrefix(ext, "."))
}

// ReportFilename is the attachment name used for a player's PDF report.
func ReportFilename(id int) string {
	return fmt.Sprintf("player-%d-report.pdf", id)
}
