// Package store persists each user's stored loadouts.
package store

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/zachrip/valpal/pkg/types"
)

var (
	ErrUnsupportedVersion = errors.New("unsupported user config version")
	ErrInvalidUserID      = errors.New("invalid user id")
)

type Repository interface {
	// GetUserConfig returns the user's config, creating the default one on
	// first use.
	GetUserConfig(ctx context.Context, userID string) (types.UserConfig, error)
	SaveUserConfig(ctx context.Context, userID string, cfg types.UserConfig) error
}

const DefaultLoadoutName = "Default Loadout"

// DefaultLoadout is an enabled loadout with every weapon present and
// nothing customized.
func DefaultLoadout(weaponIDs []string) types.Loadout {
	weapons := make(map[string]types.WeaponConfig, len(weaponIDs))
	for _, id := range weaponIDs {
		weapons[id] = types.WeaponConfig{Templates: []types.Template{}}
	}
	empty := types.ExpressionSlot{SprayIDs: []string{}, FlexIDs: []string{}}
	return types.Loadout{
		ID:             uuid.NewString(),
		Name:           DefaultLoadoutName,
		Enabled:        true,
		AgentIDs:       []string{},
		Weapons:        weapons,
		PlayerCardIDs:  []string{},
		PlayerTitleIDs: []string{},
		Expressions:    types.ExpressionSlots{Top: empty, Right: empty, Bottom: empty, Left: empty},
	}
}

func DefaultConfig(weaponIDs []string) types.UserConfig {
	return types.UserConfig{
		Version:  types.ConfigVersion,
		Loadouts: []types.Loadout{DefaultLoadout(weaponIDs)},
	}
}

func checkVersion(cfg types.UserConfig) error {
	if cfg.Version != types.ConfigVersion {
		return ErrUnsupportedVersion
	}
	return nil
}
