package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/Impre-visible/tartar/internal/places"
	"github.com/Impre-visible/tartar/internal/restaurant"
	"github.com/Impre-visible/tartar/internal/tartar"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const apiPrefix = "/api"

var (
	errMissingTartarService     = errors.New("tartar service dependency required")
	errMissingRestaurantService = errors.New("restaurant service dependency required")
	errMissingPlacesClient      = errors.New("places client dependency required")
	errMissingOTPValidator      = errors.New("otp validator dependency required")
)

// Search error messages preserved from the original wire contract.
const (
	messageMissingAPIKey  = "API key is not configured"
	messageNoQuery        = "No query provided"
	messageInvalidLatLng  = "Invalid latitude or longitude"
	messageProviderFailed = "Places provider request failed"
)

// PlacesSearcher resolves free-text or coordinate queries into provider results.
type PlacesSearcher interface {
	Search(ctx context.Context, query places.Query) (json.RawMessage, error)
}

// OTPValidator gates mutating client actions behind a shared secret.
type OTPValidator interface {
	Validate(code string) bool
	Format() string
}

type Dependencies struct {
	TartarService     *tartar.Service
	RestaurantService *restaurant.Service
	Places            PlacesSearcher
	OTP               OTPValidator
	Logger            *zap.Logger
}

func NewHTTPHandler(deps Dependencies) (http.Handler, error) {
	if deps.TartarService == nil {
		return nil, errMissingTartarService
	}
	if deps.RestaurantService == nil {
		return nil, errMissingRestaurantService
	}
	if deps.Places == nil {
		return nil, errMissingPlacesClient
	}
	if deps.OTP == nil {
		return nil, errMissingOTPValidator
	}

	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{"Authorization", "Content-Type"},
		MaxAge:       12 * time.Hour,
	}))

	handler := &httpHandler{
		tartarService:     deps.TartarService,
		restaurantService: deps.RestaurantService,
		places:            deps.Places,
		otp:               deps.OTP,
		logger:            logger,
	}

	api := router.Group(apiPrefix)
	api.GET("/restaurant", handler.handleListRestaurants)
	api.GET("/restaurant/search", handler.handleSearchRestaurants)
	api.GET("/tartar", handler.handleListTartars)
	api.POST("/tartar", handler.handleCreateTartar)
	api.PUT("/tartar", handler.handleUpdateTartar)
	api.DELETE("/tartar", handler.handleDeleteTartar)
	api.POST("/otp/validate", handler.handleValidateOTP)
	api.GET("/otp/format", handler.handleOTPFormat)

	return router, nil
}

type httpHandler struct {
	tartarService     *tartar.Service
	restaurantService *restaurant.Service
	places            PlacesSearcher
	otp               OTPValidator
	logger            *zap.Logger
}

func (h *httpHandler) handleListRestaurants(c *gin.Context) {
	restaurants, err := h.restaurantService.List(c.Request.Context())
	if err != nil {
		h.logger.Error("restaurant list failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
		return
	}
	c.JSON(http.StatusOK, restaurants)
}

// searchErrorPayload is the structured error shape of the search endpoint.
// The body shape predates this service; the HTTP status now mirrors the
// embedded statusCode instead of always reading 200.
type searchErrorPayload struct {
	Error      string `json:"error"`
	StatusCode int    `json:"statusCode"`
}

func (h *httpHandler) handleSearchRestaurants(c *gin.Context) {
	query := places.Query{Text: c.Query("query")}

	latRaw := c.Query("latitude")
	lngRaw := c.Query("longitude")
	if latRaw != "" && lngRaw != "" {
		lat, latErr := strconv.ParseFloat(latRaw, 64)
		lng, lngErr := strconv.ParseFloat(lngRaw, 64)
		if latErr != nil || lngErr != nil {
			searchError(c, http.StatusBadRequest, messageInvalidLatLng)
			return
		}
		query.Latitude = &lat
		query.Longitude = &lng
	}

	results, err := h.places.Search(c.Request.Context(), query)
	switch {
	case errors.Is(err, places.ErrNoQuery):
		searchError(c, http.StatusBadRequest, messageNoQuery)
		return
	case errors.Is(err, places.ErrMissingAPIKey):
		searchError(c, http.StatusInternalServerError, messageMissingAPIKey)
		return
	case err != nil:
		h.logger.Error("places search failed", zap.Error(err))
		searchError(c, http.StatusBadGateway, messageProviderFailed)
		return
	}

	c.Data(http.StatusOK, "application/json; charset=utf-8", results)
}

func searchError(c *gin.Context, status int, message string) {
	c.JSON(status, searchErrorPayload{Error: message, StatusCode: status})
}

func (h *httpHandler) handleListTartars(c *gin.Context) {
	ratings, err := h.tartarService.List(c.Request.Context())
	if err != nil {
		h.respondServiceError(c, err, "tartar list failed")
		return
	}
	c.JSON(http.StatusOK, ratings)
}

type tartarRequestPayload struct {
	ID           string     `json:"id"`
	Restaurant   string     `json:"restaurant"`
	Currency     *string    `json:"currency"`
	Price        *float64   `json:"price"`
	Texture      *float64   `json:"texture"`
	Taste        *float64   `json:"taste"`
	Presentation *float64   `json:"presentation"`
	TotalScore   *float64   `json:"totalScore"`
	CreatedAt    *time.Time `json:"createdAt"`
}

func (h *httpHandler) handleCreateTartar(c *gin.Context) {
	var request tartarRequestPayload
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	created, err := h.tartarService.Create(c.Request.Context(), tartar.CreateRequest{
		RestaurantJSON: request.Restaurant,
		Currency:       request.Currency,
		Price:          request.Price,
		Texture:        request.Texture,
		Taste:          request.Taste,
		Presentation:   request.Presentation,
		TotalScore:     request.TotalScore,
		CreatedAt:      request.CreatedAt,
	})
	if err != nil {
		h.respondServiceError(c, err, "tartar create failed")
		return
	}

	c.JSON(http.StatusCreated, created)
}

func (h *httpHandler) handleUpdateTartar(c *gin.Context) {
	var request tartarRequestPayload
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	updated, err := h.tartarService.Update(c.Request.Context(), tartar.UpdateRequest{
		ID:           request.ID,
		Currency:     request.Currency,
		Price:        request.Price,
		Texture:      request.Texture,
		Taste:        request.Taste,
		Presentation: request.Presentation,
		TotalScore:   request.TotalScore,
		CreatedAt:    request.CreatedAt,
	})
	if err != nil {
		h.respondServiceError(c, err, "tartar update failed")
		return
	}

	c.JSON(http.StatusOK, updated)
}

type deleteTartarPayload struct {
	ID string `json:"id"`
}

func (h *httpHandler) handleDeleteTartar(c *gin.Context) {
	var request deleteTartarPayload
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	deleted, err := h.tartarService.Delete(c.Request.Context(), request.ID)
	if err != nil {
		h.respondServiceError(c, err, "tartar delete failed")
		return
	}

	c.JSON(http.StatusOK, deleted)
}

type otpValidatePayload struct {
	Code string `json:"code"`
}

func (h *httpHandler) handleValidateOTP(c *gin.Context) {
	var request otpValidatePayload
	// An unreadable body degrades to an empty code, which is never valid.
	_ = c.ShouldBindJSON(&request)

	c.JSON(http.StatusOK, gin.H{"isValid": h.otp.Validate(request.Code)})
}

func (h *httpHandler) handleOTPFormat(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"format": h.otp.Format()})
}

func (h *httpHandler) respondServiceError(c *gin.Context, err error, logMessage string) {
	var serviceErr *tartar.ServiceError
	if errors.As(err, &serviceErr) {
		status := statusForReason(serviceErr.Reason())
		if status >= http.StatusInternalServerError {
			h.logger.Error(logMessage, zap.String("code", serviceErr.Code()), zap.Error(err))
		} else {
			h.logger.Warn(logMessage, zap.String("code", serviceErr.Code()))
		}
		c.JSON(status, gin.H{"error": serviceErr.Reason(), "code": serviceErr.Code()})
		return
	}

	h.logger.Error(logMessage, zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
}

func statusForReason(reason string) int {
	switch reason {
	case tartar.ReasonMissingField, tartar.ReasonInvalidRestaurantPayload, tartar.ReasonInvalidScore:
		return http.StatusBadRequest
	case tartar.ReasonNotFound:
		return http.StatusNotFound
	case tartar.ReasonConversionFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
