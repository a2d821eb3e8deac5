// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package main

import (
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/handlers"
	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/logging"
	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/middleware"
	"github.com/linuxfoundation/lfx-v2-room-booking-service/pkg/constants"
)

// newHTTPHandler mounts the consent links and the probes.
func newHTTPHandler(consentHandler *handlers.ConsentHandler, healthHandler *handlers.HealthHandler) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET "+constants.LivezPath, healthHandler.Livez)
	mux.HandleFunc("GET "+constants.ReadyzPath, healthHandler.Readyz)
	mux.HandleFunc("GET "+constants.ConsentAcceptPath, consentHandler.Accept)
	mux.HandleFunc("GET "+constants.ConsentDeclinePath, consentHandler.Decline)

	var handler http.Handler = otelhttp.NewHandler(mux, "booking-api",
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + r.URL.Path
		}),
	)

	// Add HTTP middleware
	// Note: Order matters - RequestIDMiddleware should come first in the chain,
	// so it should be the last middleware added to the handler since it is executed in reverse order.
	handler = middleware.RequestLoggerMiddleware()(handler)
	handler = middleware.RequestIDMiddleware()(handler)

	return handler
}

// setupHTTPServer configures and starts the HTTP server
func setupHTTPServer(flags flags, handler http.Handler, gracefulCloseWG *sync.WaitGroup) *http.Server {
	// Set up http listener in a goroutine using provided command line parameters.
	var addr string
	if flags.Bind == "*" {
		addr = ":" + flags.Port
	} else {
		addr = flags.Bind + ":" + flags.Port
	}
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 3 * time.Second,
	}
	gracefulCloseWG.Add(1)
	go func() {
		slog.With("addr", addr).Debug("starting http server, listening on port " + flags.Port)
		err := httpServer.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			slog.With(logging.ErrKey, err).Error("http listener error")
			os.Exit(1)
		}
		// Because ErrServerClosed is *immediately* returned when Shutdown is
		// called, not when when Shutdown completes, this must not yet decrement
		// the wait group.
	}()

	return httpServer
}
