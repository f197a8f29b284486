// Package settings persists per-bank enable flags and the announcement
// volume under the key names the original app stored them with:
// "{Bank}_enabled" and "sound_volume".
package settings

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/insightdelivered/bank-notify/internal/announce"
	"github.com/insightdelivered/bank-notify/internal/models"
)

// VolumeKey is the stored key of the announcement volume.
const VolumeKey = "sound_volume"

const enabledSuffix = "_enabled"

var (
	ErrUnknownKey       = errors.New("unknown settings key")
	ErrInvalidValue     = errors.New("invalid settings value")
	ErrVolumeOutOfRange = errors.New("volume must be between 0 and 1")
)

// EnabledKey returns the stored key of a source's enable flag, e.g. "ACB_enabled".
func EnabledKey(source models.SourceID) string {
	return string(source) + enabledSuffix
}

// Store is a YAML file holding the settings. Missing keys fall back to the
// defaults: every bank enabled, volume 0.5.
type Store struct {
	path    string
	logger  *slog.Logger
	mu      sync.RWMutex
	enabled map[models.SourceID]bool
	volume  float64
	// keys written by other tools are kept as-is
	extra map[string]any
}

// Open loads the settings file at path. A missing file is not an error.
func Open(path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{
		path:    path,
		logger:  logger,
		enabled: make(map[models.SourceID]bool),
		volume:  announce.DefaultVolume,
		extra:   make(map[string]any),
	}
	if err := s.load(); err != nil {
		return nil, fmt.Errorf("failed to load settings %q: %w", path, err)
	}
	return s, nil
}

func (s *Store) load() error {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		s.logger.Debug("settings file not found, using defaults", "path", s.path)
		return nil
	}
	if err != nil {
		return err
	}

	raw := map[string]any{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("parse settings yaml: %w", err)
	}
	for key, value := range raw {
		if err := s.set(key, value); err != nil {
			if errors.Is(err, ErrUnknownKey) {
				s.extra[key] = value
				continue
			}
			return err
		}
	}
	return nil
}

// set applies one key without saving. Caller holds the lock.
func (s *Store) set(key string, value any) error {
	if key == VolumeKey {
		v, ok := toFloat(value)
		if !ok {
			return fmt.Errorf("%w: %s=%v", ErrInvalidValue, key, value)
		}
		if math.IsNaN(v) || v < 0 || v > 1 {
			return fmt.Errorf("%w: %v", ErrVolumeOutOfRange, v)
		}
		s.volume = v
		return nil
	}

	source, ok := sourceForKey(key)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}
	b, ok := value.(bool)
	if !ok {
		return fmt.Errorf("%w: %s=%v", ErrInvalidValue, key, value)
	}
	s.enabled[source] = b
	return nil
}

func sourceForKey(key string) (models.SourceID, bool) {
	if !strings.HasSuffix(key, enabledSuffix) {
		return "", false
	}
	source := models.SourceID(strings.TrimSuffix(key, enabledSuffix))
	return source, source.Valid()
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}

// Enabled reports whether announcements for source are turned on.
func (s *Store) Enabled(source models.SourceID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	enabled, ok := s.enabled[source]
	return !ok || enabled
}

// Volume returns the configured announcement volume.
func (s *Store) Volume() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.volume
}

// Snapshot returns a consistent copy of the preferences and volume for one
// dispatch.
func (s *Store) Snapshot() (models.Preferences, float64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	prefs := make(models.Preferences, len(models.Sources))
	for _, source := range models.Sources {
		enabled, ok := s.enabled[source]
		prefs[source] = !ok || enabled
	}
	return prefs, s.volume
}

// Values returns every setting under its stored key.
func (s *Store) Values() map[string]any {
	prefs, volume := s.Snapshot()
	out := make(map[string]any, len(prefs)+1)
	for source, enabled := range prefs {
		out[EnabledKey(source)] = enabled
	}
	out[VolumeKey] = volume
	return out
}

// SetEnabled turns announcements for source on or off and saves the file.
func (s *Store) SetEnabled(source models.SourceID, enabled bool) error {
	return s.Apply(map[string]any{EnabledKey(source): enabled})
}

// SetVolume stores the announcement volume. It must be within [0,1].
func (s *Store) SetVolume(volume float64) error {
	return s.Apply(map[string]any{VolumeKey: volume})
}

// Apply validates and stores several settings at once. Nothing is changed
// if any key or value is rejected.
func (s *Store) Apply(changes map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prevEnabled := make(map[models.SourceID]bool, len(s.enabled))
	for k, v := range s.enabled {
		prevEnabled[k] = v
	}
	prevVolume := s.volume

	rollback := func() {
		s.enabled = prevEnabled
		s.volume = prevVolume
	}

	keys := make([]string, 0, len(changes))
	for key := range changes {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if err := s.set(key, changes[key]); err != nil {
			rollback()
			return err
		}
	}

	if err := s.save(); err != nil {
		rollback()
		return fmt.Errorf("failed to save settings: %w", err)
	}
	s.logger.Info("settings updated", "path", s.path, "keys", keys)
	return nil
}

// save writes the file atomically. Caller holds the lock.
func (s *Store) save() error {
	out := make(map[string]any, len(s.extra)+len(models.Sources)+1)
	for k, v := range s.extra {
		out[k] = v
	}
	for _, source := range models.Sources {
		enabled, ok := s.enabled[source]
		out[EnabledKey(source)] = !ok || enabled
	}
	out[VolumeKey] = s.volume

	data, err := yaml.Marshal(out)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".settings-*.yaml")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}
