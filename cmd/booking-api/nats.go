// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/domain"
	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/infrastructure/messaging"
	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/infrastructure/store"
	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/logging"
)

// gracefulShutdownSeconds bounds how long the HTTP server and NATS drain may take.
const gracefulShutdownSeconds = 25

// repositories are the KV backed repositories of the service.
type repositories struct {
	MeetingRequest *store.NatsMeetingRequestRepository
	Meeting        *store.NatsMeetingRepository
	Attendee       *store.NatsAttendeeRepository
}

// setupNATS connects to NATS. When the connection is closed for good the
// service is signalled to shut down.
func setupNATS(ctx context.Context, env environment, gracefulCloseWG *sync.WaitGroup, done chan os.Signal) (*nats.Conn, error) {
	slog.InfoContext(ctx, "connecting to NATS", "url", env.NATSURL)

	gracefulCloseWG.Add(1)
	natsConn, err := nats.Connect(
		env.NATSURL,
		nats.Name("lfx-v2-room-booking-service"),
		nats.Timeout(env.NATSTimeout),
		nats.MaxReconnects(env.NATSMaxReconnect),
		nats.ReconnectWait(env.NATSReconnectWait),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				slog.With(logging.ErrKey, err).Warn("disconnected from NATS")
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			slog.Info("reconnected to NATS", "url", nc.ConnectedUrlRedacted())
		}),
		nats.ClosedHandler(func(_ *nats.Conn) {
			gracefulCloseWG.Done()
			select {
			case <-ctx.Done():
				// Shutdown in progress.
			default:
				slog.Error("NATS connection closed unexpectedly, shutting down", logging.PriorityCritical())
				done <- syscall.SIGTERM
			}
		}),
		nats.ErrorHandler(func(_ *nats.Conn, s *nats.Subscription, err error) {
			if s != nil {
				slog.With(logging.ErrKey, err, "subject", s.Subject, "queue", s.Queue).Error("async NATS error")
			} else {
				slog.With(logging.ErrKey, err).Error("async NATS error outside subscription")
			}
		}),
	)
	if err != nil {
		gracefulCloseWG.Done()
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}

	return natsConn, nil
}

// getKeyValueStores binds the repositories to their JetStream KV buckets.
// Buckets are provisioned with the deployment and are not created here.
func getKeyValueStores(ctx context.Context, natsConn *nats.Conn) (*repositories, error) {
	js, err := jetstream.New(natsConn)
	if err != nil {
		return nil, fmt.Errorf("create JetStream context: %w", err)
	}

	requestsKV, err := js.KeyValue(ctx, store.KVStoreNameMeetingRequests)
	if err != nil {
		return nil, fmt.Errorf("bind KV bucket %s: %w", store.KVStoreNameMeetingRequests, err)
	}

	meetingsKV, err := js.KeyValue(ctx, store.KVStoreNameMeetings)
	if err != nil {
		return nil, fmt.Errorf("bind KV bucket %s: %w", store.KVStoreNameMeetings, err)
	}

	attendeesKV, err := js.KeyValue(ctx, store.KVStoreNameAttendees)
	if err != nil {
		return nil, fmt.Errorf("bind KV bucket %s: %w", store.KVStoreNameAttendees, err)
	}

	return &repositories{
		MeetingRequest: store.NewNatsMeetingRequestRepository(requestsKV),
		Meeting:        store.NewNatsMeetingRepository(meetingsKV),
		Attendee:       store.NewNatsAttendeeRepository(attendeesKV),
	}, nil
}

// natsSubscriber is the subset of a NATS connection the subscriptions need.
type natsSubscriber interface {
	QueueSubscribe(subject, queue string, cb nats.MsgHandler) (*nats.Subscription, error)
}

// createNatsSubscriptions subscribes the handler to each of subjects in the
// service queue group.
func createNatsSubscriptions(ctx context.Context, handler domain.MessageHandler, subjects []string, natsConn natsSubscriber) error {
	slog.InfoContext(ctx, "subscribing to NATS subjects", "queue", models.BookingAPIQueue, "subjects", subjects)

	for _, subject := range subjects {
		_, err := natsConn.QueueSubscribe(subject, models.BookingAPIQueue, func(msg *nats.Msg) {
			natsMsg := messaging.NewNatsMessage(msg)
			handler.HandleMessage(natsMsg.Context(ctx), natsMsg)
		})
		if err != nil {
			return fmt.Errorf("subscribe to %s: %w", subject, err)
		}
	}

	return nil
}

// gracefulShutdown stops the HTTP server, drains NATS and waits for both.
func gracefulShutdown(httpServer *http.Server, natsConn *nats.Conn, gracefulCloseWG *sync.WaitGroup, cancel context.CancelFunc) {
	// Cancel first so the closed handler knows the shutdown is expected.
	cancel()

	slog.Info("shutting down http server")
	ctx, shutdownCancel := context.WithTimeout(context.Background(), gracefulShutdownSeconds*time.Second)
	defer shutdownCancel()

	go func() {
		if err := httpServer.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.With(logging.ErrKey, err).Error("http shutdown error")
		}
		// Decrement the wait group.
		gracefulCloseWG.Done()
	}()

	if !natsConn.IsClosed() && !natsConn.IsDraining() {
		slog.Info("draining NATS connections")
		if err := natsConn.Drain(); err != nil {
			slog.With(logging.ErrKey, err).Error("error draining NATS connection")
			// Close runs the closed handler, which releases the wait group.
			natsConn.Close()
		}
	}

	waitDone := make(chan struct{})
	go func() {
		gracefulCloseWG.Wait()
		close(waitDone)
	}()

	select {
	case <-waitDone:
		slog.Info("graceful shutdown complete")
	case <-ctx.Done():
		slog.Error("graceful shutdown timed out")
		os.Exit(1)
	}
}
