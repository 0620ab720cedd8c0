package orchestrators

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/HazemIbrahim256/sports-academy/internal/adapters/academyapi"
	"github.com/HazemIbrahim256/sports-academy/internal/domain/identity"
	"github.com/HazemIbrahim256/sports-academy/internal/domain/player"
	"github.com/HazemIbrahim256/sports-academy/internal/domain/validation"
)

// Upload is a file received from the browser.
type Upload struct {
	Filename    string
	ContentType string
	Content     io.Reader
}

// file converts the upload into a multipart part with a storage-safe name.
func (u *Upload) file(field string) academyapi.File {
	return academyapi.File{
		Field:       field,
		Filename:    player.SafeFilename(u.Filename),
		ContentType: u.ContentType,
		Content:     u.Content,
	}
}

// ProfileUpdater patches the current user's profile.
type ProfileUpdater interface {
	UpdateMe(ctx context.Context, token string, form *academyapi.Form) (identity.Me, error)
}

// ProfileForm is the editable part of the current user's profile.
type ProfileForm struct {
	FirstName string `form:"first_name"`
	LastName  string `form:"last_name"`
	Email     string `form:"email" validate:"omitempty,email"`
	Bio       string `form:"bio"`
	Phone     string `form:"phone"`
}

// UpdateProfileInput carries input for the profile orchestrator.
type UpdateProfileInput struct {
	Token  string
	Viewer identity.Identity
	Form   ProfileForm
	Photo  *Upload
}

// UpdateProfileDeps holds dependencies for UpdateProfile.
type UpdateProfileDeps struct {
	Profiles ProfileUpdater
}

// ExecuteUpdateProfile sends the profile form. Bio, phone and photo are only
// sent for coaches and staff, who have a coach profile to hold them.
// PRE: Viewer is authenticated
// POST: returns the refreshed identity payload
func ExecuteUpdateProfile(ctx context.Context, input UpdateProfileInput, deps UpdateProfileDeps) (identity.Me, error) {
	f := input.Form
	f.FirstName = strings.TrimSpace(f.FirstName)
	f.LastName = strings.TrimSpace(f.LastName)
	f.Email = strings.TrimSpace(f.Email)
	if err := validation.Struct(&f); err != nil {
		return identity.Me{}, err
	}

	form := &academyapi.Form{Fields: map[string]string{
		"first_name": f.FirstName,
		"last_name":  f.LastName,
		"email":      f.Email,
	}}
	if input.Viewer.Coach != nil || input.Viewer.IsStaff() {
		form.Fields["bio"] = strings.TrimSpace(f.Bio)
		form.Fields["phone"] = strings.TrimSpace(f.Phone)
		if input.Photo != nil {
			form.Files = append(form.Files, input.Photo.file("photo"))
		}
	}

	me, err := deps.Profiles.UpdateMe(ctx, input.Token, form)
	if err != nil {
		return identity.Me{}, fmt.Errorf("update profile: %w", err)
	}
	slog.Info("profile_event", "event", "profile_updated", "user_id", me.User.ID)
	return me, nil
}
