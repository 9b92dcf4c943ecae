package store

import (
	"context"
	"fmt"

	"github.com/K3das/clementine/store/db"
	"github.com/K3das/clementine/transcript"
)

func (s *Store) GetOrCreateUser(ctx context.Context, userID string) (*db.User, error) {
	err := s.CreateUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}

	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("getting user: %w", err)
	}

	return &user, nil
}

// Preferences are the per-user defaults for commands that don't specify them.
type Preferences struct {
	Format    transcript.Format
	Translate bool
}

func PreferencesFromUser(user *db.User) Preferences {
	format, err := transcript.ParseFormat(user.DefaultFormat)
	if err != nil {
		format = transcript.PlainText
	}
	return Preferences{
		Format:    format,
		Translate: user.Translate,
	}
}

func (s *Store) GetPreferences(ctx context.Context, userID string) (Preferences, error) {
	user, err := s.GetOrCreateUser(ctx, userID)
	if err != nil {
		return Preferences{}, err
	}
	return PreferencesFromUser(user), nil
}
