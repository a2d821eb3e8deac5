// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

// Package main is the room booking service. It negotiates meeting slots and
// rooms over NATS request/reply and serves the consent links over HTTP.
package main

import (
	"context"
	_ "expvar"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/linuxfoundation/lfx-v2-room-booking-service/cmd/booking-api/providers"
	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/handlers"
	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/infrastructure/consent"
	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/infrastructure/messaging"
	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/logging"
	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/scheduler"
	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/service"
	"github.com/linuxfoundation/lfx-v2-room-booking-service/pkg/constants"
	"github.com/linuxfoundation/lfx-v2-room-booking-service/pkg/utils"
)

func main() {
	env := parseEnv()
	flags := parseFlags(env.Port)

	logging.InitStructureLogConfig()

	otelShutdown, err := utils.SetupOTelSDK(context.Background())
	if err != nil {
		slog.With(logging.ErrKey, err).Error("error setting up OpenTelemetry SDK")
		os.Exit(1)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := otelShutdown(shutdownCtx); err != nil {
			slog.With(logging.ErrKey, err).Error("error shutting down OpenTelemetry SDK")
		}
	}()

	if env.CalendarAdminAccount == "" {
		slog.Error("CALENDAR_ADMIN_ACCOUNT environment variable is required but not set")
		return
	}

	// Initialize the calendar backend
	providerConfigs := providers.NewProviderConfigsFromEnv(env.CalendarAdminAccount, env.CalendarProviderTimeout)
	providerRegistry := providers.NewProviderRegistry(providerConfigs)
	calendarProvider, err := providers.Resolve(providerRegistry, env.CalendarProvider)
	if err != nil {
		slog.With(logging.ErrKey, err).Error("error resolving calendar provider")
		return
	}

	consentKey, err := consent.ParseSecret(env.ConsentSecret)
	if err != nil {
		slog.With(logging.ErrKey, err).Error("error reading CONSENT_SECRET")
		return
	}
	tokenCodec, err := consent.NewCodec(consentKey)
	if err != nil {
		slog.With(logging.ErrKey, err).Error("error setting up consent tokens")
		return
	}

	workingDays, err := scheduler.ParseWorkingDays(env.WorkingDaysRule)
	if err != nil {
		slog.With(logging.ErrKey, err).Error("error reading WORKING_DAYS_RULE")
		return
	}

	// Initialize email service (independent of NATS)
	emailService, err := setupEmailService(env)
	if err != nil {
		slog.With(logging.ErrKey, err).Error("error setting up email service")
		return
	}

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	gracefulCloseWG := sync.WaitGroup{}

	// Open the room catalog
	roomRepository, closeCatalog, err := setupRoomCatalog(ctx, env)
	if err != nil {
		slog.With(logging.ErrKey, err).Error("error setting up room catalog")
		return
	}
	defer closeCatalog()

	// Setup NATS connection
	natsConn, err := setupNATS(ctx, env, &gracefulCloseWG, done)
	if err != nil {
		slog.With(logging.ErrKey, err).Error("error setting up NATS")
		return
	}

	// Get the key-value stores for the service.
	repos, err := getKeyValueStores(ctx, natsConn)
	if err != nil {
		slog.With(logging.ErrKey, err).Error("error getting key-value stores")
		return
	}

	// Build the negotiation engine
	roomOrder := scheduler.NewRandomOrder(env.RoomOrderSeed)
	collector := scheduler.NewBusyCollector(calendarProvider, constants.FreeBusyWorkers, env.CalendarProviderTimeout)
	slotFinder := scheduler.NewSlotFinder(collector, workingDays)
	roomSelector := scheduler.NewRoomSelector(roomRepository, slotFinder, roomOrder)
	negotiator := scheduler.NewNegotiator(slotFinder, roomSelector)

	// Initialize services
	serviceConfig := service.ServiceConfig{
		AdminAccount:  env.CalendarAdminAccount,
		PublicBaseURL: env.PublicBaseURL,
		ConsentTTL:    env.ConsentTokenTTL,
	}
	messageBuilder := messaging.NewMessageBuilder(natsConn)
	meetingRequestService := service.NewMeetingRequestService(
		repos.MeetingRequest,
		repos.Meeting,
		repos.Attendee,
		roomRepository,
		calendarProvider,
		negotiator,
		messageBuilder,
		emailService,
		tokenCodec,
		serviceConfig,
	)
	calendarService := service.NewCalendarService(calendarProvider, serviceConfig)

	// Initialize handlers
	bookingHandler := handlers.NewBookingHandler(meetingRequestService, calendarService)
	consentHandler := handlers.NewConsentHandler(meetingRequestService, env.ConsentRedirectURL)
	healthHandler := handlers.NewHealthHandler(
		bookingHandler.HandlerReady,
		natsConn.IsConnected,
		func() bool { return roomRepository.IsReady(ctx) },
	)

	httpServer := setupHTTPServer(flags, newHTTPHandler(consentHandler, healthHandler), &gracefulCloseWG)

	// Create NATS subscriptions for the service.
	err = createNatsSubscriptions(ctx, bookingHandler, bookingHandler.Subjects(), natsConn)
	if err != nil {
		slog.With(logging.ErrKey, err).Error("error creating NATS subscriptions")
		return
	}

	// This next line blocks until SIGINT or SIGTERM is received.
	<-done

	gracefulShutdown(httpServer, natsConn, &gracefulCloseWG, cancel)
}
