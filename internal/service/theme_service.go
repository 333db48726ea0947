package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"taskflow/internal/repository"
)

// ThemeService persists the dark-mode preference.
type ThemeService struct {
	repo   *repository.SettingsRepository
	logger *zap.Logger
}

func NewThemeService(repo *repository.SettingsRepository, logger *zap.Logger) *ThemeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ThemeService{repo: repo, logger: logger}
}

// IsDark reports the stored preference. Unreadable values count as light.
func (s *ThemeService) IsDark(ctx context.Context) (bool, error) {
	dark, err := s.repo.DarkMode(ctx)
	if errors.Is(err, repository.ErrCorrupt) {
		s.logger.Warn("stored theme unreadable, using light", zap.Error(err))
		return false, nil
	}
	return dark, err
}

// Toggle flips the preference and returns the new value.
func (s *ThemeService) Toggle(ctx context.Context) (bool, error) {
	dark, err := s.IsDark(ctx)
	if err != nil {
		return false, err
	}
	dark = !dark
	if err := s.repo.SetDarkMode(ctx, dark); err != nil {
		return false, err
	}
	return dark, nil
}
