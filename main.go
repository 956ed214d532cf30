// Copyright (c) 2022 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	grpcPrometheus "github.com/grpc-ecosystem/go-grpc-prometheus"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/propagators/b3"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/zipkin"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
	"google.golang.org/grpc"
	"google.golang.org/grpc/reflection"

	"turn-based-flow-grpc-plugin-server-go/pkg/common"
	"turn-based-flow-grpc-plugin-server-go/pkg/match"
	turnflow "turn-based-flow-grpc-plugin-server-go/pkg/pb"
	"turn-based-flow-grpc-plugin-server-go/pkg/platform"
	"turn-based-flow-grpc-plugin-server-go/pkg/player"
	"turn-based-flow-grpc-plugin-server-go/pkg/router"
	"turn-based-flow-grpc-plugin-server-go/pkg/server"
)

const (
	environment = "production"
	id          = 1
)

var (
	port        = flag.Int("port", 6565, "The grpc server port")
	metricsPort = flag.Int("metrics-port", common.GetEnvInt("METRICS_PORT", 8080), "The prometheus metrics port")
)

func initProvider(serviceName, zipkinEndpoint string) (*sdktrace.TracerProvider, error) {
	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceNameKey.String(serviceName),
		attribute.String("environment", environment),
		attribute.Int64("ID", id),
	)
	opts := []sdktrace.TracerProviderOption{
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithResource(res),
	}

	// Create the Zipkin exporter when a collector is configured
	if zipkinEndpoint != "" {
		exporter, err := zipkin.New(zipkinEndpoint)
		if err != nil {
			return nil, errors.Wrap(err, "failed to create zipkin exporter")
		}
		opts = append(opts, sdktrace.WithBatcher(exporter))
	}
	tracerProvider := sdktrace.NewTracerProvider(opts...)

	// Register our TracerProvider as the global so any imported
	// instrumentation in the future will default to using it.
	otel.SetTracerProvider(tracerProvider)
	// propagator for envoy
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		b3.New(b3.WithInjectEncoding(b3.B3MultipleHeader)),
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return tracerProvider, nil
}

func serveMetrics(reg *prometheus.Registry) *http.Server {
	httpServer := &http.Server{
		Handler:           promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		Addr:              fmt.Sprintf("0.0.0.0:%d", *metricsPort),
		ReadHeaderTimeout: 5 * time.Second,
	}
	logrus.Printf("serving metrics at localhost:%d/metrics", *metricsPort)

	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Fatalf("Unable to start a http server. %s", err.Error())
		}
	}()

	return httpServer
}

func newStore(ctx context.Context) (platform.MatchStore, error) {
	retention := common.GetEnvSeconds("STORE_RETENTION_SECONDS", 24*time.Hour)

	switch kind := common.GetEnv("PLATFORM_STORE", "memory"); kind {
	case "memory":
		return platform.NewCacheStore(retention, 10*time.Minute), nil
	case "redis":
		client := redis.NewClient(&redis.Options{Addr: common.GetEnv("REDIS_ADDR", "localhost:6379")})
		store := platform.NewRedisStore(client, retention)
		if err := store.Ping(ctx); err != nil {
			return nil, err
		}

		return store, nil
	default:
		return nil, errors.Errorf("unknown PLATFORM_STORE %q", kind)
	}
}

// sweepExchanges cancels exchanges of matchID once they run past their deadline
func sweepExchanges(ctx context.Context, hub *platform.Memory, matchID string, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m, err := hub.ExpireExchanges(ctx, matchID)
			if err != nil {
				logrus.Warnf("exchange sweep for %s: %v", matchID, err)

				continue
			}
			if m.Status == match.StatusEnded {
				return
			}
		}
	}
}

func main() {
	flag.Parse()
	common.SetLogLevel(common.GetEnv("LOG_LEVEL", "info"))
	logrus.Infof("starting app server.")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logrus.Infof("starting init provider.")
	tp, err := initProvider(common.GetEnv("OTEL_SERVICE_NAME", "turn-flow"), common.GetEnv("ZIPKIN_ENDPOINT", ""))
	if err != nil {
		logrus.Fatalf("failed to initializing the provider. %s", err.Error())
	}
	// Cleanly shutdown and flush telemetry when the application exits.
	defer func() {
		// Do not make the application hang when it is shutdown.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			logrus.Error(err)
		}
	}()

	rules, err := server.RulesFromJSON(common.GetEnv("FLOW_RULES", ""))
	if err != nil {
		logrus.Fatal(err)
	}
	local := player.IDFromString(common.GetEnv("LOCAL_PLAYER_ID", "player-1"))
	cfg, err := rules.RouterConfig(local)
	if err != nil {
		logrus.Fatal(err)
	}
	cfg.InboxSize = common.GetEnvInt("ROUTER_INBOX_SIZE", 64)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	grpcMetrics := grpcPrometheus.NewServerMetrics()
	reg.MustRegister(grpcMetrics)
	metrics := router.NewMetrics(reg)

	store, err := newStore(ctx)
	if err != nil {
		logrus.Fatalf("failed to create the match store: %v", err)
	}
	hub := platform.NewMemory(store)
	presenter := server.NewStreamPresenter()
	flow := router.New(cfg, hub.Client(local), presenter, metrics)
	hub.Subscribe(local, func(event match.Event) {
		if err := flow.Publish(ctx, event); err != nil {
			logrus.Warnf("dropped %s event: %v", event.Kind, err)
		}
	})

	s := grpc.NewServer(server.ServerOptions(local, logrus.StandardLogger(), grpcMetrics)...)
	turnflow.RegisterTurnFlowServer(s, server.NewTurnFlowServer(flow, presenter))
	grpcMetrics.InitializeMetrics(s)
	logrus.Infof("adding the grpc reflection.")
	reflection.Register(s) // self documentation for the server

	logrus.Infof("listening to grpc port.")
	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", *port))
	if err != nil {
		logrus.Fatalf("failed to listen: %v", err)
	}
	go func() {
		if err := s.Serve(lis); err != nil {
			logrus.Fatalf("failed to serve: %v", err)
		}
	}()
	logrus.Printf("gRPC server listening at %v", lis.Addr())
	metricsServer := serveMetrics(reg)

	routerDone := make(chan struct{})
	go func() {
		defer close(routerDone)
		_ = flow.Run(ctx)
	}()

	if opponents := common.GetEnv("DEMO_OPPONENTS", ""); opponents != "" {
		players := append([]player.ID{local}, player.IDsFromStrings(strings.Split(opponents, ","))...)
		m, err := hub.CreateMatch(ctx, players)
		if err != nil {
			logrus.Errorf("failed to create the demo match: %v", err)
		} else {
			logrus.Infof("demo match %s ready", m.MatchID)
			go sweepExchanges(ctx, hub, m.MatchID, common.GetEnvSeconds("EXCHANGE_SWEEP_SECONDS", 15*time.Second))
		}
	}

	<-ctx.Done()
	logrus.Infof("shutting down.")
	s.GracefulStop()
	<-routerDone
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = metricsServer.Shutdown(shutdownCtx)
}
