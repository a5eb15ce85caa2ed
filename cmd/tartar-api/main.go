package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Impre-visible/tartar/internal/config"
	"github.com/Impre-visible/tartar/internal/currency"
	"github.com/Impre-visible/tartar/internal/database"
	"github.com/Impre-visible/tartar/internal/logging"
	"github.com/Impre-visible/tartar/internal/otp"
	"github.com/Impre-visible/tartar/internal/places"
	"github.com/Impre-visible/tartar/internal/restaurant"
	"github.com/Impre-visible/tartar/internal/server"
	"github.com/Impre-visible/tartar/internal/tartar"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var (
	cfgFile string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "tartar-api",
		Short: "Tartar rating backend service",
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context())
		},
	}

	setupFlags(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func setupFlags(cmd *cobra.Command) {
	config.ApplyDefaults(viper.GetViper())
	defaults := config.NewViper()
	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Path to configuration file")
	cmd.PersistentFlags().String("http-address", defaults.GetString("http.address"), "HTTP listen address")
	cmd.PersistentFlags().String("database-path", defaults.GetString("database.path"), "SQLite database path")
	cmd.PersistentFlags().String("log-level", defaults.GetString("log.level"), "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().String("places-api-key", "", "Places provider API key (overrides env)")
	cmd.PersistentFlags().Int("places-radius", defaults.GetInt("places.radius"), "Nearby-search radius in meters")
	cmd.PersistentFlags().String("currency-reference", defaults.GetString("currency.reference"), "Reference currency prices are normalized into")
	cmd.PersistentFlags().String("otp-code", "", "Shared OTP secret (overrides env)")

	bindFlag(cmd, "http.address", "http-address")
	bindFlag(cmd, "database.path", "database-path")
	bindFlag(cmd, "log.level", "log-level")
	bindFlag(cmd, "places.api_key", "places-api-key")
	bindFlag(cmd, "places.radius", "places-radius")
	bindFlag(cmd, "currency.reference", "currency-reference")
	bindFlag(cmd, "otp.code", "otp-code")
}

func bindFlag(cmd *cobra.Command, key, flag string) {
	if err := viper.BindPFlag(key, cmd.PersistentFlags().Lookup(flag)); err != nil {
		panic(err)
	}
}

func initConfig() error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}

	if err := viper.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if cfgFile != "" && errors.As(err, &configNotFound) {
			return err
		}
	}

	return nil
}

func runServer(ctx context.Context) error {
	appConfig, err := config.Load(viper.GetViper())
	if err != nil {
		return err
	}

	logger, err := logging.NewLogger(appConfig.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	db, err := database.OpenSQLite(appConfig.DatabasePath, logger)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	placesClient := places.NewClient(places.ClientConfig{
		APIKey:  appConfig.PlacesAPIKey,
		Radius:  appConfig.PlacesRadius,
		BaseURL: appConfig.PlacesBaseURL,
		Logger:  logger,
	})

	currencyClient := currency.NewClient(currency.ClientConfig{
		BaseURL:   appConfig.CurrencyBaseURL,
		Reference: appConfig.ReferenceCurrency,
		Logger:    logger,
	})

	restaurantService, err := restaurant.NewService(restaurant.ServiceConfig{
		Database: db,
		Logger:   logger,
	})
	if err != nil {
		return err
	}

	tartarService, err := tartar.NewService(tartar.ServiceConfig{
		Database:   db,
		Converter:  currencyClient,
		Clock:      time.Now,
		IDProvider: tartar.NewUUIDProvider(),
		Scale:      appConfig.RatingScale,
		Logger:     logger,
	})
	if err != nil {
		return err
	}

	otpValidator := otp.NewValidator(appConfig.OTPCode, appConfig.OTPFormat)

	handler, err := server.NewHTTPHandler(server.Dependencies{
		TartarService:     tartarService,
		RestaurantService: restaurantService,
		Places:            placesClient,
		OTP:               otpValidator,
		Logger:            logger,
	})
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:    appConfig.HTTPAddress,
		Handler: handler,
	}

	signalCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", zap.String("address", appConfig.HTTPAddress))
		err := httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-signalCtx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}
