package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/HazemIbrahim256/sports-academy/internal/adapters/academyapi"
	"github.com/HazemIbrahim256/sports-academy/internal/domain/player"
)

// PlayerWriter mutates players on the academy API.
type PlayerWriter interface {
	CreatePlayer(ctx context.Context, token string, form *academyapi.Form) (player.Player, error)
	PatchPlayerForm(ctx context.Context, token string, id int, form *academyapi.Form) (player.Player, error)
	DeletePlayer(ctx context.Context, token string, id int) error
}

// PlayerDeps holds dependencies for the player orchestrators.
type PlayerDeps struct {
	Players PlayerWriter
}

// SavePlayerInput carries a create or edit form with an optional photo.
type SavePlayerInput struct {
	Token    string
	PlayerID int // zero on create
	Form     player.Form
	Photo    *Upload
}

var (
	ErrPlayerRequired = errors.New("choose a player first")
	ErrPhotoRequired  = errors.New("choose a photo to upload")
)

func playerForm(f *player.Form, photo *Upload) *academyapi.Form {
	form := &academyapi.Form{Fields: f.Fields()}
	if photo != nil {
		form.Files = append(form.Files, photo.file("photo"))
	}
	return form
}

// ExecuteCreatePlayer creates a player, uploading the photo in the same request.
// POST: no call is made when name, birth date or phone is missing
func ExecuteCreatePlayer(ctx context.Context, input SavePlayerInput, deps PlayerDeps) (player.Player, error) {
	f := input.Form
	if err := f.Validate(); err != nil {
		return player.Player{}, err
	}
	p, err := deps.Players.CreatePlayer(ctx, input.Token, playerForm(&f, input.Photo))
	if err != nil {
		return player.Player{}, fmt.Errorf("create player: %w", err)
	}
	slog.Info("player_event", "event", "player_created", "player_id", p.ID, "group_id", f.Group)
	return p, nil
}

// ExecuteUpdatePlayer edits a player. Edits always carry a group.
// PRE: PlayerID > 0
func ExecuteUpdatePlayer(ctx context.Context, input SavePlayerInput, deps PlayerDeps) (player.Player, error) {
	if input.PlayerID <= 0 {
		return player.Player{}, ErrPlayerRequired
	}
	f := input.Form
	if err := f.ValidateEdit(); err != nil {
		return player.Player{}, err
	}
	p, err := deps.Players.PatchPlayerForm(ctx, input.Token, input.PlayerID, playerForm(&f, input.Photo))
	if err != nil {
		return player.Player{}, fmt.Errorf("update player %d: %w", input.PlayerID, err)
	}
	slog.Info("player_event", "event", "player_updated", "player_id", p.ID)
	return p, nil
}

// ExecuteUploadPlayerPhoto replaces a player's photo only.
func ExecuteUploadPlayerPhoto(ctx context.Context, token string, playerID int, photo *Upload, deps PlayerDeps) (player.Player, error) {
	if photo == nil || photo.Content == nil {
		return player.Player{}, ErrPhotoRequired
	}
	form := &academyapi.Form{Files: []academyapi.File{photo.file("photo")}}
	p, err := deps.Players.PatchPlayerForm(ctx, token, playerID, form)
	if err != nil {
		return player.Player{}, fmt.Errorf("upload photo for player %d: %w", playerID, err)
	}
	slog.Info("player_event", "event", "photo_uploaded", "player_id", playerID)
	return p, nil
}

// ExecuteDeletePlayer deletes a player after explicit confirmation.
func ExecuteDeletePlayer(ctx context.Context, token string, playerID int, confirmed bool, deps PlayerDeps) error {
	if !confirmed {
		return ErrNotConfirmed
	}
	if err := deps.Players.DeletePlayer(ctx, token, playerID); err != nil {
		return fmt.Errorf("delete player %d: %w", playerID, err)
	}
	slog.Info("player_event", "event", "player_deleted", "player_id", playerID)
	return nil
}
