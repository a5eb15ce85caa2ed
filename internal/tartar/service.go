package tartar

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Impre-visible/tartar/internal/restaurant"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const defaultRatingScale = 10

var (
	errMissingDatabase   = errors.New("database handle is required")
	errMissingConverter  = errors.New("currency converter is required")
	errMissingIDProvider = errors.New("id provider is required")
	noOpLogger           = zap.NewNop()
)

// ServiceError carries a dotted operation.reason code alongside the cause.
type ServiceError struct {
	code   string
	reason string
	err    error
}

func (e *ServiceError) Error() string {
	if e.err == nil {
		return e.code
	}
	return fmt.Sprintf("%s: %v", e.code, e.err)
}

func (e *ServiceError) Unwrap() error {
	return e.err
}

// Code returns the full operation.reason code.
func (e *ServiceError) Code() string {
	return e.code
}

// Reason returns the failure reason independent of the operation.
func (e *ServiceError) Reason() string {
	return e.reason
}

const (
	opServiceNew = "tartar.service.new"
	opCreate     = "tartar.create"
	opUpdate     = "tartar.update"
	opDelete     = "tartar.delete"
	opList       = "tartar.list"
)

// Failure reasons surfaced to HTTP status mapping.
const (
	ReasonMissingField             = "missing_field"
	ReasonInvalidRestaurantPayload = "invalid_restaurant_payload"
	ReasonInvalidScore             = "invalid_score"
	ReasonConversionFailed         = "conversion_failed"
	ReasonNotFound                 = "not_found"
)

func newServiceError(operation, reason string, cause error) error {
	return &ServiceError{
		code:   fmt.Sprintf("%s.%s", operation, reason),
		reason: reason,
		err:    cause,
	}
}

// Converter normalizes an amount from the submitted currency into the
// reference currency.
type Converter interface {
	Convert(ctx context.Context, code string, amount float64) (float64, error)
}

// IDProvider issues identifiers for new rows.
type IDProvider interface {
	NewID() (string, error)
}

// ServiceConfig describes the dependencies of the rating service.
type ServiceConfig struct {
	Database   *gorm.DB
	Converter  Converter
	Clock      func() time.Time
	IDProvider IDProvider
	Scale      float64
	Logger     *zap.Logger
}

// Service implements the rating submission workflow plus the read, update,
// and delete operations over persisted ratings.
type Service struct {
	db         *gorm.DB
	converter  Converter
	clock      func() time.Time
	idProvider IDProvider
	scale      float64
	logger     *zap.Logger
}

// NewService constructs a Service from validated configuration.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Database == nil {
		return nil, newServiceError(opServiceNew, "missing_database", errMissingDatabase)
	}
	if cfg.Converter == nil {
		return nil, newServiceError(opServiceNew, "missing_converter", errMissingConverter)
	}
	if cfg.IDProvider == nil {
		return nil, newServiceError(opServiceNew, "missing_id_provider", errMissingIDProvider)
	}

	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}

	scale := cfg.Scale
	if scale <= 0 {
		scale = defaultRatingScale
	}

	logger := cfg.Logger
	if logger == nil {
		logger = noOpLogger
	}

	return &Service{
		db:         cfg.Database,
		converter:  cfg.Converter,
		clock:      clock,
		idProvider: cfg.IDProvider,
		scale:      scale,
		logger:     logger,
	}, nil
}

// CreateRequest carries a submission. Numeric and timestamp fields are
// pointers so an absent field is distinguishable from a zero value.
type CreateRequest struct {
	RestaurantJSON string
	Currency       *string
	Price          *float64
	Texture        *float64
	Taste          *float64
	Presentation   *float64
	TotalScore     *float64
	CreatedAt      *time.Time
}

func (r CreateRequest) missingFields() []string {
	var missing []string
	if strings.TrimSpace(r.RestaurantJSON) == "" {
		missing = append(missing, "restaurant")
	}
	if r.Currency == nil || strings.TrimSpace(*r.Currency) == "" {
		missing = append(missing, "currency")
	}
	if r.Price == nil {
		missing = append(missing, "price")
	}
	if r.Texture == nil {
		missing = append(missing, "texture")
	}
	if r.Taste == nil {
		missing = append(missing, "taste")
	}
	if r.Presentation == nil {
		missing = append(missing, "presentation")
	}
	if r.TotalScore == nil {
		missing = append(missing, "totalScore")
	}
	if r.CreatedAt == nil {
		missing = append(missing, "createdAt")
	}
	return missing
}

// UpdateRequest replaces the rating fields of one persisted record. The
// normalized price is deliberately not part of the update surface.
type UpdateRequest struct {
	ID           string
	Currency     *string
	Price        *float64
	Texture      *float64
	Taste        *float64
	Presentation *float64
	TotalScore   *float64
	CreatedAt    *time.Time
}

func (r UpdateRequest) missingFields() []string {
	var missing []string
	if strings.TrimSpace(r.ID) == "" {
		missing = append(missing, "id")
	}
	if r.Currency == nil || strings.TrimSpace(*r.Currency) == "" {
		missing = append(missing, "currency")
	}
	if r.Price == nil {
		missing = append(missing, "price")
	}
	if r.Texture == nil {
		missing = append(missing, "texture")
	}
	if r.Taste == nil {
		missing = append(missing, "taste")
	}
	if r.Presentation == nil {
		missing = append(missing, "presentation")
	}
	if r.TotalScore == nil {
		missing = append(missing, "totalScore")
	}
	if r.CreatedAt == nil {
		missing = append(missing, "createdAt")
	}
	return missing
}

// Create runs the submission workflow: validate, resolve or create the
// restaurant, normalize the price, persist the rating. Restaurant resolution
// and both inserts share one transaction; the currency call happens before it
// so no outbound request runs inside the transaction.
func (s *Service) Create(ctx context.Context, request CreateRequest) (Rating, error) {
	if s.db == nil {
		s.logError(opCreate, "missing_database", errMissingDatabase)
		return Rating{}, newServiceError(opCreate, "missing_database", errMissingDatabase)
	}

	if missing := request.missingFields(); len(missing) > 0 {
		err := fmt.Errorf("required fields absent: %s", strings.Join(missing, ", "))
		s.logError(opCreate, ReasonMissingField, err)
		return Rating{}, newServiceError(opCreate, ReasonMissingField, err)
	}

	descriptor, err := restaurant.ParseDescriptor(request.RestaurantJSON)
	if err != nil {
		s.logError(opCreate, ReasonInvalidRestaurantPayload, err)
		return Rating{}, newServiceError(opCreate, ReasonInvalidRestaurantPayload, err)
	}

	if err := s.validateScores(scoreSet{
		texture:      *request.Texture,
		taste:        *request.Taste,
		presentation: *request.Presentation,
		total:        *request.TotalScore,
	}); err != nil {
		s.logError(opCreate, ReasonInvalidScore, err)
		return Rating{}, newServiceError(opCreate, ReasonInvalidScore, err)
	}

	normalizedPrice, err := s.converter.Convert(ctx, *request.Currency, *request.Price)
	if err != nil {
		s.logError(opCreate, ReasonConversionFailed, err, zap.String("currency", *request.Currency))
		return Rating{}, newServiceError(opCreate, ReasonConversionFailed, err)
	}

	now := s.clock().UTC()

	var created Rating
	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		resolved, err := s.resolveRestaurant(tx, descriptor, now)
		if err != nil {
			return err
		}

		ratingID, err := s.idProvider.NewID()
		if err != nil {
			s.logError(opCreate, "id_generation_failed", err)
			return newServiceError(opCreate, "id_generation_failed", err)
		}

		record := Rating{
			ID:                 ratingID,
			RestaurantID:       resolved.ID,
			Price:              *request.Price,
			Currency:           strings.TrimSpace(*request.Currency),
			USDPrice:           normalizedPrice,
			TextureRating:      *request.Texture,
			TasteRating:        *request.Taste,
			PresentationRating: *request.Presentation,
			TotalRating:        *request.TotalScore,
			CreatedAtSeconds:   request.CreatedAt.UTC().Unix(),
			RecordedAtSeconds:  now.Unix(),
		}
		if err := tx.Omit("Restaurant").Create(&record).Error; err != nil {
			s.logError(opCreate, "rating_insert_failed", err, zap.String("place_id", descriptor.PlaceID))
			return newServiceError(opCreate, "rating_insert_failed", err)
		}

		record.Restaurant = resolved
		created = record
		return nil
	})
	if txErr != nil {
		return Rating{}, txErr
	}

	return created, nil
}

func (s *Service) resolveRestaurant(tx *gorm.DB, descriptor restaurant.Descriptor, now time.Time) (restaurant.Restaurant, error) {
	var existing restaurant.Restaurant
	err := tx.Where("place_id = ?", descriptor.PlaceID).Take(&existing).Error
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logError(opCreate, "restaurant_select_failed", err, zap.String("place_id", descriptor.PlaceID))
		return restaurant.Restaurant{}, newServiceError(opCreate, "restaurant_select_failed", err)
	}

	restaurantID, err := s.idProvider.NewID()
	if err != nil {
		s.logError(opCreate, "id_generation_failed", err)
		return restaurant.Restaurant{}, newServiceError(opCreate, "id_generation_failed", err)
	}

	record := restaurant.Restaurant{
		ID:               restaurantID,
		PlaceID:          descriptor.PlaceID,
		Name:             descriptor.Name,
		Address:          descriptor.Address,
		Latitude:         descriptor.Latitude,
		Longitude:        descriptor.Longitude,
		CreatedAtSeconds: now.Unix(),
	}
	// Concurrent first submissions race to this insert; the unique index on
	// place_id makes the loser fall through to the re-select below.
	if err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "place_id"}},
		DoNothing: true,
	}).Create(&record).Error; err != nil {
		s.logError(opCreate, "restaurant_insert_failed", err, zap.String("place_id", descriptor.PlaceID))
		return restaurant.Restaurant{}, newServiceError(opCreate, "restaurant_insert_failed", err)
	}

	if err := tx.Where("place_id = ?", descriptor.PlaceID).Take(&existing).Error; err != nil {
		s.logError(opCreate, "restaurant_select_failed", err, zap.String("place_id", descriptor.PlaceID))
		return restaurant.Restaurant{}, newServiceError(opCreate, "restaurant_select_failed", err)
	}
	return existing, nil
}

// Update replaces the rating fields of the identified record. The normalized
// price keeps its creation-time snapshot.
func (s *Service) Update(ctx context.Context, request UpdateRequest) (Rating, error) {
	if s.db == nil {
		s.logError(opUpdate, "missing_database", errMissingDatabase)
		return Rating{}, newServiceError(opUpdate, "missing_database", errMissingDatabase)
	}

	if missing := request.missingFields(); len(missing) > 0 {
		err := fmt.Errorf("required fields absent: %s", strings.Join(missing, ", "))
		s.logError(opUpdate, ReasonMissingField, err)
		return Rating{}, newServiceError(opUpdate, ReasonMissingField, err)
	}

	if err := s.validateScores(scoreSet{
		texture:      *request.Texture,
		taste:        *request.Taste,
		presentation: *request.Presentation,
		total:        *request.TotalScore,
	}); err != nil {
		s.logError(opUpdate, ReasonInvalidScore, err)
		return Rating{}, newServiceError(opUpdate, ReasonInvalidScore, err)
	}

	var existing Rating
	err := s.db.WithContext(ctx).Preload("Restaurant").Where("id = ?", request.ID).Take(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		s.logError(opUpdate, ReasonNotFound, err, zap.String("rating_id", request.ID))
		return Rating{}, newServiceError(opUpdate, ReasonNotFound, err)
	}
	if err != nil {
		s.logError(opUpdate, "rating_select_failed", err, zap.String("rating_id", request.ID))
		return Rating{}, newServiceError(opUpdate, "rating_select_failed", err)
	}

	existing.Price = *request.Price
	existing.Currency = strings.TrimSpace(*request.Currency)
	existing.TextureRating = *request.Texture
	existing.TasteRating = *request.Taste
	existing.PresentationRating = *request.Presentation
	existing.TotalRating = *request.TotalScore
	existing.CreatedAtSeconds = request.CreatedAt.UTC().Unix()

	if err := s.db.WithContext(ctx).Omit("Restaurant").Save(&existing).Error; err != nil {
		s.logError(opUpdate, "rating_save_failed", err, zap.String("rating_id", request.ID))
		return Rating{}, newServiceError(opUpdate, "rating_save_failed", err)
	}

	return existing, nil
}

// Delete removes the identified rating and returns the deleted record. A
// missing identifier surfaces not_found rather than silent success.
func (s *Service) Delete(ctx context.Context, ratingID string) (Rating, error) {
	if s.db == nil {
		s.logError(opDelete, "missing_database", errMissingDatabase)
		return Rating{}, newServiceError(opDelete, "missing_database", errMissingDatabase)
	}

	if strings.TrimSpace(ratingID) == "" {
		err := fmt.Errorf("required fields absent: id")
		s.logError(opDelete, ReasonMissingField, err)
		return Rating{}, newServiceError(opDelete, ReasonMissingField, err)
	}

	var existing Rating
	err := s.db.WithContext(ctx).Preload("Restaurant").Where("id = ?", ratingID).Take(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		s.logError(opDelete, ReasonNotFound, err, zap.String("rating_id", ratingID))
		return Rating{}, newServiceError(opDelete, ReasonNotFound, err)
	}
	if err != nil {
		s.logError(opDelete, "rating_select_failed", err, zap.String("rating_id", ratingID))
		return Rating{}, newServiceError(opDelete, "rating_select_failed", err)
	}

	if err := s.db.WithContext(ctx).Delete(&Rating{}, "id = ?", ratingID).Error; err != nil {
		s.logError(opDelete, "rating_delete_failed", err, zap.String("rating_id", ratingID))
		return Rating{}, newServiceError(opDelete, "rating_delete_failed", err)
	}

	return existing, nil
}

// List returns every rating with its joined restaurant, in store order.
func (s *Service) List(ctx context.Context) ([]Rating, error) {
	if s.db == nil {
		s.logError(opList, "missing_database", errMissingDatabase)
		return nil, newServiceError(opList, "missing_database", errMissingDatabase)
	}

	var ratings []Rating
	if err := s.db.WithContext(ctx).Preload("Restaurant").Find(&ratings).Error; err != nil {
		s.logError(opList, "query_failed", err)
		return nil, newServiceError(opList, "query_failed", err)
	}
	return ratings, nil
}

type scoreSet struct {
	texture      float64
	taste        float64
	presentation float64
	total        float64
}

func (s *Service) validateScores(scores scoreSet) error {
	checks := []struct {
		field string
		value float64
	}{
		{"texture", scores.texture},
		{"taste", scores.taste},
		{"presentation", scores.presentation},
		{"totalScore", scores.total},
	}
	for _, check := range checks {
		if check.value < 0 || check.value > s.scale {
			return fmt.Errorf("%s must be between 0 and %v, got %v", check.field, s.scale, check.value)
		}
	}
	return nil
}

func (s *Service) loggerOrDefault() *zap.Logger {
	if s == nil || s.logger == nil {
		return noOpLogger
	}
	return s.logger
}

func (s *Service) logError(operation, reason string, err error, fields ...zap.Field) {
	attrs := []zap.Field{
		zap.String("operation", operation),
		zap.String("reason", reason),
	}
	if err != nil {
		attrs = append(attrs, zap.Error(err))
	}
	attrs = append(attrs, fields...)
	s.loggerOrDefault().Error("tartar service error", attrs...)
}
