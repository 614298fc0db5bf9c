package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"time"

	activityapp "machinehealth-cloud/internal/activities/application"
	activityrepo "machinehealth-cloud/internal/activities/infrastructure/postgres"
	activityinterfaces "machinehealth-cloud/internal/activities/interfaces"
	activityhttp "machinehealth-cloud/internal/activities/interfaces/http"
	"machinehealth-cloud/internal/audit"
	"machinehealth-cloud/internal/auth"
	"machinehealth-cloud/internal/eventing"
	"machinehealth-cloud/internal/eventing/eventbus"
	eventingrepo "machinehealth-cloud/internal/eventing/infrastructure/postgres"
	masterdataapp "machinehealth-cloud/internal/masterdata/application"
	masterdatarepo "machinehealth-cloud/internal/masterdata/infrastructure/postgres"
	masterdatahttp "machinehealth-cloud/internal/masterdata/interfaces/http"
	monitorapp "machinehealth-cloud/internal/monitor/application"
	"machinehealth-cloud/internal/observability/metrics"
	signalapp "machinehealth-cloud/internal/signals/application"
	signalrepo "machinehealth-cloud/internal/signals/infrastructure/postgres"
	signalhttp "machinehealth-cloud/internal/signals/interfaces/http"
	statusapp "machinehealth-cloud/internal/status/application"
	statushttp "machinehealth-cloud/internal/status/interfaces/http"
	telemetryrepo "machinehealth-cloud/internal/telemetry/infrastructure/postgres"
	telemetryhttp "machinehealth-cloud/internal/telemetry/interfaces/http"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg := loadConfig()
	logger := log.New(os.Stdout, "", log.LstdFlags)

	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("db open error: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Fatalf("db ping error: %v", err)
	}

	metrics.Init(db, logger)
	auditRepo := audit.NewRepository(db)
	auditHandler, err := audit.NewHandler(auditRepo)
	if err != nil {
		logger.Fatalf("audit handler error: %v", err)
	}

	monitorCfg, err := monitorapp.LoadConfig()
	if err != nil {
		logger.Fatalf("monitor config error: %v", err)
	}

	telemetryQuery := telemetryrepo.NewTelemetryQuery(db,
		telemetryrepo.WithLivenessHorizon(monitorCfg.LivenessHorizon))
	statusService, err := statusapp.NewService(telemetryQuery, logger)
	if err != nil {
		logger.Fatalf("status service error: %v", err)
	}
	statusHandler, err := statushttp.NewHandler(statusService)
	if err != nil {
		logger.Fatalf("status handler error: %v", err)
	}
	telemetryHandler, err := telemetryhttp.NewHandler(telemetryQuery)
	if err != nil {
		logger.Fatalf("telemetry handler error: %v", err)
	}

	parameterRepo, err := masterdatarepo.NewParameterRepository(db)
	if err != nil {
		logger.Fatalf("parameter repo error: %v", err)
	}
	machineRepo, err := masterdatarepo.NewMachineRepository(db)
	if err != nil {
		logger.Fatalf("machine repo error: %v", err)
	}

	spanRepo := signalrepo.NewSpanRepository(db)
	signalService, err := signalapp.NewService(spanRepo, logger,
		signalapp.WithQueryTimeout(monitorCfg.QueryTimeout),
		signalapp.WithMachineDirectory(machineRepo))
	if err != nil {
		logger.Fatalf("signals service error: %v", err)
	}
	signalHandler, err := signalhttp.NewHandler(signalService)
	if err != nil {
		logger.Fatalf("signals handler error: %v", err)
	}

	pendingRepo, err := activityrepo.NewPendingRepository(db)
	if err != nil {
		logger.Fatalf("pending repo error: %v", err)
	}
	historyRepo, err := activityrepo.NewHistoryRepository(db)
	if err != nil {
		logger.Fatalf("history repo error: %v", err)
	}
	tracker, err := activityapp.NewTracker(pendingRepo, historyRepo)
	if err != nil {
		logger.Fatalf("tracker error: %v", err)
	}
	activityHandler, err := activityhttp.NewHandler(tracker, pendingRepo, historyRepo)
	if err != nil {
		logger.Fatalf("activities handler error: %v", err)
	}

	parameterService, err := masterdataapp.NewParameterService(parameterRepo, machineRepo, auditRepo, logger)
	if err != nil {
		logger.Fatalf("parameter service error: %v", err)
	}
	masterdataHandler, err := masterdatahttp.NewHandler(parameterService)
	if err != nil {
		logger.Fatalf("masterdata handler error: %v", err)
	}

	baseBus := eventbus.NewInMemoryBus()
	publisher := eventing.NewPublisher(baseBus)
	processedStore, err := eventingrepo.NewProcessedStore(db)
	if err != nil {
		logger.Fatalf("processed store error: %v", err)
	}
	if err := activityinterfaces.RegisterConditionConsumer(baseBus, tracker, processedStore, logger); err != nil {
		logger.Fatalf("condition consumer error: %v", err)
	}

	if !monitorCfg.Disabled {
		sweeper, err := monitorapp.NewSweeper(statusService, publisher, logger, monitorCfg)
		if err != nil {
			logger.Fatalf("sweeper error: %v", err)
		}
		go sweeper.Start(context.Background())
	}

	policy := auth.NewDefaultPolicy([]string{"/healthz", "/metrics"}, nil)
	authMiddleware := auth.NewMiddleware([]byte(cfg.JWTSecret), policy)

	mux := http.NewServeMux()
	mux.Handle("/api/v1/status", statusHandler)
	mux.Handle("/api/v1/status/groups/", statusHandler)
	mux.Handle("/api/v1/machine-states/", signalHandler)
	mux.Handle("/api/v1/readings/", telemetryHandler)
	mux.Handle("/api/v1/activities", activityHandler)
	mux.Handle("/api/v1/activities/", activityHandler)
	mux.Handle("/api/v1/machines", masterdataHandler)
	mux.Handle("/api/v1/machines/", masterdataHandler)
	mux.Handle("/api/v1/parameters/", masterdataHandler)
	mux.Handle("/api/v1/audit", auditHandler)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	server := &http.Server{Addr: cfg.HTTPAddr, Handler: loggingMiddleware(authMiddleware.Wrap(mux), logger)}
	logger.Printf("http listening on %s", cfg.HTTPAddr)
	logger.Fatal(server.ListenAndServe())
}

type config struct {
	DatabaseURL string
	HTTPAddr    string
	JWTSecret   string
}

func loadConfig() config {
	cfg := config{
		DatabaseURL: getenvDefault("DATABASE_URL", getenvDefault("PG_DSN", "")),
		HTTPAddr:    getenvDefault("HTTP_ADDR", ":8080"),
		JWTSecret:   getenvDefault("AUTH_JWT_SECRET", getenvDefault("JWT_SECRET", "")),
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL or PG_DSN is required")
	}
	if cfg.JWTSecret == "" {
		log.Fatal("AUTH_JWT_SECRET is required")
	}
	return cfg
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func loggingMiddleware(next http.Handler, logger *log.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		resp := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(resp, r)
		logger.Printf("http %s %s %d %s", r.Method, r.URL.Path, resp.status, time.Since(start))
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
