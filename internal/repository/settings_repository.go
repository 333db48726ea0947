package repository

import (
	"context"
	"encoding/json"
	"fmt"
)

// SettingsRepository stores the dark-mode flag.
type SettingsRepository struct {
	kv KeyValueStore
}

func NewSettingsRepository(kv KeyValueStore) *SettingsRepository {
	return &SettingsRepository{kv: kv}
}

// DarkMode returns the stored flag, false when absent.
func (r *SettingsRepository) DarkMode(ctx context.Context) (bool, error) {
	raw, ok, err := r.kv.Get(ctx, ThemeKey)
	if err != nil {
		return false, fmt.Errorf("load theme: %w", err)
	}
	if !ok {
		return false, nil
	}
	var dark bool
	if err := json.Unmarshal(raw, &dark); err != nil {
		return false, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return dark, nil
}

func (r *SettingsRepository) SetDarkMode(ctx context.Context, dark bool) error {
	payload, _ := json.Marshal(dark)
	if err := r.kv.Set(ctx, ThemeKey, payload); err != nil {
		return fmt.Errorf("save theme: %w", err)
	}
	return nil
}
