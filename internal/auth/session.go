// Package auth implements the two-PIN role gate and the officer registered
// on this device. The PINs select a role; they are not a security boundary.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/mr1hm/go-field-mesh/internal/models"
	"github.com/mr1hm/go-field-mesh/internal/storage"
)

const (
	authKey    = "auth"
	officerKey = "officer"
)

var ErrInvalidPIN = errors.New("invalid access code")

type OfficerInfo struct {
	Name string `json:"name"`
	Role string `json:"role"`
}

type Session struct {
	kv   storage.KV
	pins map[string]models.Role

	mu      sync.RWMutex
	state   models.AuthState
	officer *models.Officer
}

func NewSession(kv storage.KV, fieldPIN, hqPIN string) *Session {
	return &Session{
		kv: kv,
		pins: map[string]models.Role{
			fieldPIN: models.RoleField,
			hqPIN:    models.RoleHQ,
		},
	}
}

// Restore reads the persisted auth state and officer. Failures are logged
// and leave the session logged out.
func (s *Session) Restore(ctx context.Context) {
	var state models.AuthState
	if err := readJSON(ctx, s.kv, authKey, &state); err != nil {
		slog.Error("failed to restore auth state", "error", err)
	}
	var officer *models.Officer
	if err := readJSON(ctx, s.kv, officerKey, &officer); err != nil {
		slog.Error("failed to restore officer", "error", err)
	}

	s.mu.Lock()
	s.state = state
	s.officer = officer
	s.mu.Unlock()
}

// Login maps pin onto a role. When info is given and no officer is
// registered yet, a new officer with a fresh device id is stored.
func (s *Session) Login(ctx context.Context, pin string, info *OfficerInfo) (models.Role, error) {
	role, ok := s.pins[strings.TrimSpace(pin)]
	if !ok {
		return "", ErrInvalidPIN
	}

	s.mu.Lock()
	s.state = models.AuthState{IsAuthenticated: true, UserRole: role}
	var registered *models.Officer
	if info != nil && s.officer == nil {
		registered = &models.Officer{
			DeviceID: "DEV-" + uuid.NewString(),
			Name:     strings.TrimSpace(info.Name),
			Role:     strings.TrimSpace(info.Role),
		}
		s.officer = registered
	}
	state := s.state
	s.mu.Unlock()

	if err := writeJSON(ctx, s.kv, authKey, state); err != nil {
		slog.Error("failed to persist auth state", "error", err)
	}
	if registered != nil {
		if err := writeJSON(ctx, s.kv, officerKey, registered); err != nil {
			slog.Error("failed to persist officer", "error", err)
		}
		slog.Info("officer registered", "device_id", registered.DeviceID, "name", registered.Name)
	}
	return role, nil
}

// Logout clears the role; the registered officer stays.
func (s *Session) Logout(ctx context.Context) {
	s.mu.Lock()
	s.state = models.AuthState{}
	s.mu.Unlock()

	if err := s.kv.Remove(ctx, authKey); err != nil {
		slog.Error("failed to clear auth state", "error", err)
	}
}

func (s *Session) State() models.AuthState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Session) Officer() (models.Officer, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.officer == nil {
		return models.Officer{}, false
	}
	return *s.officer, true
}

// OfficerName is empty when no officer is registered.
func (s *Session) OfficerName() string {
	o, _ := s.Officer()
	return o.Name
}

func readJSON(ctx context.Context, kv storage.KV, key string, dst any) error {
	raw, ok, err := kv.Get(ctx, key)
	if err != nil || !ok {
		return err
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return fmt.Errorf("error decoding %s: %w", key, err)
	}
	return nil
}

func writeJSON(ctx context.Context, kv storage.KV, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("error encoding %s: %w", key, err)
	}
	return kv.Set(ctx, key, string(data))
}
