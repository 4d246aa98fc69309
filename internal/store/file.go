package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/zachrip/valpal/pkg/types"
)

const (
	configFileMode  = 0o600
	configDirMode   = 0o700
	tempFilePattern = ".user-*.json.tmp"
)

// FileStore keeps one user_<id>.json per user in a directory.
type FileStore struct {
	dir     string
	weapons []string
	mu      sync.Mutex
}

var _ Repository = (*FileStore)(nil)

func NewFileStore(dir string, weaponIDs []string) *FileStore {
	return &FileStore{dir: dir, weapons: weaponIDs}
}

func (s *FileStore) path(userID string) (string, error) {
	if userID == "" || strings.ContainsAny(userID, `/\:`) || strings.Contains(userID, "..") {
		return "", fmt.Errorf("%w: %q", ErrInvalidUserID, userID)
	}
	return filepath.Join(s.dir, "user_"+userID+".json"), nil
}

func (s *FileStore) GetUserConfig(_ context.Context, userID string) (types.UserConfig, error) {
	path, err := s.path(userID)
	if err != nil {
		return types.UserConfig{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		cfg := DefaultConfig(s.weapons)
		if err := s.write(path, cfg); err != nil {
			return types.UserConfig{}, err
		}
		return cfg, nil
	}
	if err != nil {
		return types.UserConfig{}, fmt.Errorf("read user config: %w", err)
	}

	var cfg types.UserConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return types.UserConfig{}, fmt.Errorf("decode user config: %w", err)
	}
	if err := checkVersion(cfg); err != nil {
		return types.UserConfig{}, fmt.Errorf("%s: %w (got %d)", path, err, cfg.Version)
	}
	return cfg, nil
}

func (s *FileStore) SaveUserConfig(_ context.Context, userID string, cfg types.UserConfig) error {
	path, err := s.path(userID)
	if err != nil {
		return err
	}
	cfg.Version = types.ConfigVersion

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write(path, cfg)
}

// write replaces path atomically through a temp file in the same directory.
func (s *FileStore) write(path string, cfg types.UserConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), configDirMode); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	data, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode user config: %w", err)
	}

	tempFile, err := os.CreateTemp(filepath.Dir(path), tempFilePattern)
	if err != nil {
		return fmt.Errorf("create temp config file: %w", err)
	}
	tempName := tempFile.Name()
	cleanup := true
	defer func() {
		if cleanup {
			_ = os.Remove(tempName)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("write temp config file: %w", err)
	}
	if err := tempFile.Chmod(configFileMode); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("chmod temp config file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("close temp config file: %w", err)
	}
	if err := os.Rename(tempName, path); err != nil {
		return fmt.Errorf("replace config file: %w", err)
	}
	cleanup = false
	return nil
}
