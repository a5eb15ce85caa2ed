package restaurant

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var errMissingDatabase = errors.New("restaurant: database handle is required")

// ServiceConfig describes the dependencies required by the read-side service.
type ServiceConfig struct {
	Database *gorm.DB
	Logger   *zap.Logger
}

// Service exposes read access to stored restaurants.
type Service struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewService constructs a Service from validated configuration.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Database == nil {
		return nil, errMissingDatabase
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{db: cfg.Database, logger: logger}, nil
}

// List returns every stored restaurant in store order.
func (s *Service) List(ctx context.Context) ([]Restaurant, error) {
	if s.db == nil {
		return nil, errMissingDatabase
	}

	var restaurants []Restaurant
	if err := s.db.WithContext(ctx).Find(&restaurants).Error; err != nil {
		s.logger.Error("restaurant list query failed", zap.Error(err))
		return nil, err
	}
	return restaurants, nil
}
