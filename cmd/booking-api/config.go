// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package main

import (
	"flag"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/logging"
	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/scheduler"
	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/service"
	"github.com/linuxfoundation/lfx-v2-room-booking-service/pkg/constants"
)

// flags are the command line flags for the room booking service.
type flags struct {
	Debug bool
	Port  string
	Bind  string
}

// environment are the environment variables for the room booking service.
type environment struct {
	Port string

	NATSURL           string
	NATSTimeout       time.Duration
	NATSMaxReconnect  int
	NATSReconnectWait time.Duration

	RoomCatalogDSN  string
	RoomCatalogSeed string
	// RoomOrderSeed fixes the room probing order when set.
	RoomOrderSeed   *uint64
	WorkingDaysRule string

	CalendarProvider        string
	CalendarAdminAccount    string
	CalendarProviderTimeout time.Duration

	ConsentSecret      string
	ConsentTokenTTL    time.Duration
	PublicBaseURL      string
	ConsentRedirectURL string

	Email emailConfig
}

// emailConfig holds the SMTP settings of the notifier.
type emailConfig struct {
	Enabled  bool
	Host     string
	Port     int
	From     string
	FromName string
	Username string
	Password string
}

// parseFlags parses command line flags for the room booking service
func parseFlags(defaultPort string) flags {
	var debug = flag.Bool("d", false, "enable debug logging")
	var port = flag.String("p", defaultPort, "listen port")
	var bind = flag.String("bind", "*", "interface to bind on")

	flag.Usage = func() {
		flag.PrintDefaults()
		os.Exit(2)
	}
	flag.Parse()

	// Based on the debug flag, set the log level environment variable used by [log.InitStructureLogConfig]
	if *debug {
		err := os.Setenv("LOG_LEVEL", "debug")
		if err != nil {
			slog.With(logging.ErrKey, err).Error("error setting log level")
			os.Exit(1)
		}
	}

	return flags{
		Debug: *debug,
		Port:  *port,
		Bind:  *bind,
	}
}

// parseEnv parses environment variables for the room booking service
func parseEnv() environment {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	natsURL := os.Getenv("NATS_URL")
	if natsURL == "" {
		natsURL = "nats://localhost:4222"
	}

	catalogDSN := os.Getenv("ROOM_CATALOG_DSN")
	if catalogDSN == "" {
		catalogDSN = "file:rooms.db"
	}

	publicBaseURL := os.Getenv("PUBLIC_BASE_URL")
	if publicBaseURL == "" {
		publicBaseURL = "http://localhost:" + port
	} else if _, err := url.ParseRequestURI(publicBaseURL); err != nil {
		slog.With(logging.ErrKey, err, "url", publicBaseURL).Error("invalid PUBLIC_BASE_URL provided")
		os.Exit(1)
	}

	workingDays := os.Getenv("WORKING_DAYS_RULE")
	if workingDays == "" {
		workingDays = scheduler.DefaultWorkingDaysRule
	}

	var orderSeed *uint64
	if raw := os.Getenv("ROOM_ORDER_SEED"); raw != "" {
		seed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			slog.With(logging.ErrKey, err, "value", raw).Error("invalid ROOM_ORDER_SEED provided")
			os.Exit(1)
		}
		orderSeed = &seed
	}

	return environment{
		Port:                    port,
		NATSURL:                 natsURL,
		NATSTimeout:             envDuration("NATS_TIMEOUT", 10*time.Second),
		NATSMaxReconnect:        envInt("NATS_MAX_RECONNECT", 3),
		NATSReconnectWait:       envDuration("NATS_RECONNECT_WAIT", 2*time.Second),
		RoomCatalogDSN:          catalogDSN,
		RoomCatalogSeed:         os.Getenv("ROOM_CATALOG_SEED"),
		RoomOrderSeed:           orderSeed,
		WorkingDaysRule:         workingDays,
		CalendarProvider:        os.Getenv("CALENDAR_PROVIDER"),
		CalendarAdminAccount:    os.Getenv("CALENDAR_ADMIN_ACCOUNT"),
		CalendarProviderTimeout: envDuration("CALENDAR_PROVIDER_TIMEOUT", constants.DefaultProviderTimeout),
		ConsentSecret:           os.Getenv("CONSENT_SECRET"),
		ConsentTokenTTL:         envDuration("CONSENT_TOKEN_TTL", service.DefaultConsentTTL),
		PublicBaseURL:           publicBaseURL,
		ConsentRedirectURL:      os.Getenv("CONSENT_REDIRECT_URL"),
		Email:                   parseEmailConfig(),
	}
}

// parseEmailConfig parses the SMTP configuration. Email is disabled unless
// EMAIL_ENABLED is true.
func parseEmailConfig() emailConfig {
	host := os.Getenv("SMTP_HOST")
	if host == "" {
		host = "localhost"
	}

	from := os.Getenv("SMTP_FROM")
	if from == "" {
		from = "no-reply@linuxfoundation.org"
	}

	fromName := os.Getenv("SMTP_FROM_NAME")
	if fromName == "" {
		fromName = "LFX Room Booking"
	}

	return emailConfig{
		Enabled:  os.Getenv("EMAIL_ENABLED") == "true",
		Host:     host,
		Port:     envInt("SMTP_PORT", 25),
		From:     from,
		FromName: fromName,
		Username: os.Getenv("SMTP_USERNAME"),
		Password: os.Getenv("SMTP_PASSWORD"),
	}
}

func envDuration(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		slog.Warn("invalid duration, using default", "key", key, "value", raw, "default", fallback.String())
		return fallback
	}
	return d
}

func envInt(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		slog.Warn("invalid integer, using default", "key", key, "value", raw, "default", fallback)
		return fallback
	}
	return n
}
