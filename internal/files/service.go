package files

import (
	"path/filepath"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/remotefs/internal/infrastructure/config"
)

// DefaultMaxNameAttempts bounds the namer when the configuration leaves it unset.
const DefaultMaxNameAttempts = 10000

// Service binds the filesystem operations to one base directory.
// It holds no mutable state and is safe for concurrent use.
type Service struct {
	base            string
	maxAttempts     int
	confineSymlinks bool
	logger          *zap.Logger
}

// NewService creates a service rooted at cfg.BaseDir. The base directory is
// expected to be absolute and cleaned (config.Validate does both).
func NewService(cfg config.StorageConfig, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	attempts := cfg.MaxNameAttempts
	if attempts <= 0 {
		attempts = DefaultMaxNameAttempts
	}
	return &Service{
		base:            filepath.Clean(cfg.BaseDir),
		maxAttempts:     attempts,
		confineSymlinks: cfg.ConfineSymlinks,
		logger:          logger.Named("files"),
	}
}

// Base returns the base directory.
func (s *Service) Base() string {
	return s.base
}

// Sanitize resolves a raw URL tail against the service's base directory.
func (s *Service) Sanitize(rawTail string) (Path, error) {
	p, err := Sanitize(s.base, rawTail)
	if err != nil {
		s.logger.Warn("rejecting path", zap.String("tail", rawTail), zap.Error(err))
		return Path{}, err
	}
	s.logger.Debug("sanitized path", zap.String("tail", rawTail), zap.String("path", p.String()))
	return p, nil
}
