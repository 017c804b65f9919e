package secret

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/LavaJover/pickup-settlement-service/internal/config"
	"github.com/LavaJover/pickup-settlement-service/internal/domain"
	"github.com/LavaJover/pickup-settlement-service/internal/usecase/approval"
)

const (
	SettingName = "order_approval_secret"
	// generatedBytes is the amount of randomness behind a provisioned secret.
	generatedBytes = 48
)

type Store struct {
	cfg    config.Approval
	repo   domain.SettingsRepository
	random io.Reader
	log    *slog.Logger
}

// NewStore wires secret resolution. repo may be nil when the order store has
// no persistent settings; then only an operator-configured secret works.
func NewStore(cfg config.Approval, repo domain.SettingsRepository, log *slog.Logger) *Store {
	if log == nil {
		log = slog.Default()
	}
	return &Store{cfg: cfg, repo: repo, random: rand.Reader, log: log}
}

// Resolve returns the keyring used for the whole process lifetime. Order:
// configured secret, then persisted secret, then a freshly generated one that
// is persisted before use. Without config and persistence it fails closed.
func (s *Store) Resolve(ctx context.Context) (*approval.Keyring, error) {
	current, err := s.currentSecret(ctx)
	if err != nil {
		return nil, err
	}
	return approval.NewKeyring(current, s.cfg.PreviousSecrets, s.cfg.PreviousValidUntil), nil
}

func (s *Store) currentSecret(ctx context.Context) (string, error) {
	if s.cfg.Secret != "" {
		return s.cfg.Secret, nil
	}
	if s.repo == nil {
		return "", domain.ConfigurationError(domain.ErrSecretUnavailable)
	}

	stored, err := s.repo.GetSetting(ctx, SettingName)
	if err == nil && stored != "" {
		return stored, nil
	}
	if err != nil && !errors.Is(err, domain.ErrSettingNotFound) {
		return "", domain.ConfigurationError(fmt.Errorf("%w: read persisted secret: %v", domain.ErrSecretUnavailable, err))
	}

	generated, err := s.generate()
	if err != nil {
		return "", domain.ConfigurationError(fmt.Errorf("%w: %v", domain.ErrSecretUnavailable, err))
	}
	persisted, err := s.repo.PutSettingIfAbsent(ctx, SettingName, generated)
	if err != nil {
		return "", domain.ConfigurationError(fmt.Errorf("%w: persist generated secret: %v", domain.ErrSecretUnavailable, err))
	}
	if persisted == "" {
		return "", domain.ConfigurationError(domain.ErrSecretUnavailable)
	}
	s.log.Warn("order approval secret generated and persisted; consider moving it into configuration")
	return persisted, nil
}

func (s *Store) generate() (string, error) {
	buf := make([]byte, generatedBytes)
	if _, err := io.ReadFull(s.random, buf); err != nil {
		return "", fmt.Errorf("generate secret: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
