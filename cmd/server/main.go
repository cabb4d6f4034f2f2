// Package main provides the underwriting service: deal storage,
// on-demand underwriting, Monte Carlo simulation with live progress
// over WebSocket, and Prometheus metrics.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"property-deal-lab/internal/domain"
	"property-deal-lab/internal/idhash"
	"property-deal-lab/internal/montecarlo"
	"property-deal-lab/internal/observability"
	"property-deal-lab/internal/progress"
	"property-deal-lab/internal/reporting"
	"property-deal-lab/internal/storage"
	chstore "property-deal-lab/internal/storage/clickhouse"
	"property-deal-lab/internal/storage/memory"
	pgstore "property-deal-lab/internal/storage/postgres"
	"property-deal-lab/internal/storage/rediscache"
)

// Simulation request bounds enforced at the API boundary.
const (
	minRuns    = 100
	maxRuns    = 50000
	minHorizon = 1
	maxHorizon = 50
)

// Server holds all components of the underwriting service.
type Server struct {
	dealStore    storage.DealStore
	runStore     storage.RunStore
	trialArchive storage.TrialArchive
	cache        storage.ResultCache

	hub     *progress.Hub
	metrics *observability.Metrics
	logger  *log.Logger

	rentDelta float64
	vacDelta  float64
	gridSize  int
}

func main() {
	loadEnvFile()

	addr := flag.String("addr", ":8080", "HTTP listen address")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse connection string")
	redisAddr := flag.String("redis-addr", os.Getenv("REDIS_ADDR"), "Redis address for the result cache")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of PostgreSQL/ClickHouse")
	rentDelta := flag.Float64("rent-delta", 10, "Sensitivity rent step (%)")
	vacDelta := flag.Float64("vac-delta", 2.5, "Sensitivity vacancy step (points)")
	gridSize := flag.Int("grid-size", 5, "Sensitivity grid size (odd)")

	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lshortfile)

	if !*useMemory && *postgresDSN == "" {
		logger.Fatal("--postgres-dsn is required (use --use-memory for in-memory storage)")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	srv := &Server{
		hub:       progress.NewHub(),
		metrics:   observability.NewMetrics(""),
		logger:    logger,
		rentDelta: *rentDelta,
		vacDelta:  *vacDelta,
		gridSize:  *gridSize,
	}

	if *useMemory {
		srv.dealStore = memory.NewDealStore()
		srv.runStore = memory.NewRunStore()
		srv.trialArchive = memory.NewTrialArchive()
	} else {
		pool, err := pgstore.NewPool(ctx, *postgresDSN)
		if err != nil {
			logger.Fatalf("postgres: %v", err)
		}
		defer pool.Close()
		srv.dealStore = pgstore.NewDealStore(pool)
		srv.runStore = pgstore.NewRunStore(pool)

		if *clickhouseDSN != "" {
			conn, err := chstore.NewConn(ctx, *clickhouseDSN)
			if err != nil {
				logger.Fatalf("clickhouse: %v", err)
			}
			defer conn.Close()
			srv.trialArchive = chstore.NewTrialArchive(conn)
		}
	}

	if *redisAddr != "" {
		cache := rediscache.New(*redisAddr)
		defer cache.Close()
		srv.cache = cache
	}

	router := mux.NewRouter()
	router.HandleFunc("/healthz", srv.handleHealth).Methods(http.MethodGet)
	router.Handle("/metrics", observability.Handler()).Methods(http.MethodGet)
	router.HandleFunc("/deals", srv.handleCreateDeal).Methods(http.MethodPost)
	router.HandleFunc("/deals", srv.handleListDeals).Methods(http.MethodGet)
	router.HandleFunc("/deals/{id}", srv.handleGetDeal).Methods(http.MethodGet)
	router.HandleFunc("/deals/{id}/underwrite", srv.handleUnderwrite).Methods(http.MethodGet)
	router.HandleFunc("/deals/{id}/simulate", srv.handleSimulate).Methods(http.MethodPost)
	router.HandleFunc("/runs/{id}", srv.handleGetRun).Methods(http.MethodGet)
	router.HandleFunc("/ws/runs/{id}", srv.handleRunProgress).Methods(http.MethodGet)

	httpServer := &http.Server{
		Addr:    *addr,
		Handler: router,
	}

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh
		logger.Printf("Received signal %v, shutting down...", sig)

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)
		cancel()
	}()

	logger.Printf("Listening on %s", *addr)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatalf("http server: %v", err)
	}
}

// createDealRequest is the POST /deals payload.
type createDealRequest struct {
	Name    string            `json:"name"`
	Address string            `json:"address"`
	Params  domain.DealParams `json:"params"`
}

func (s *Server) handleCreateDeal(w http.ResponseWriter, r *http.Request) {
	var req createDealRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	now := time.Now().UnixMilli()
	deal := &domain.Deal{
		DealID:    idhash.ComputeDealID(req.Name, req.Address, req.Params.PurchasePrice, now),
		Name:      req.Name,
		Address:   req.Address,
		Params:    req.Params,
		CreatedAt: now,
	}

	if err := s.dealStore.Insert(r.Context(), deal); err != nil {
		if errors.Is(err, storage.ErrDuplicateKey) {
			writeError(w, http.StatusConflict, "deal already exists")
			return
		}
		s.logger.Printf("insert deal: %v", err)
		writeError(w, http.StatusInternalServerError, "storage failure")
		return
	}

	writeJSON(w, http.StatusCreated, deal)
}

func (s *Server) handleListDeals(w http.ResponseWriter, r *http.Request) {
	deals, err := s.dealStore.List(r.Context())
	if err != nil {
		s.logger.Printf("list deals: %v", err)
		writeError(w, http.StatusInternalServerError, "storage failure")
		return
	}
	writeJSON(w, http.StatusOK, deals)
}

func (s *Server) handleGetDeal(w http.ResponseWriter, r *http.Request) {
	deal, ok := s.loadDeal(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, deal)
}

func (s *Server) handleUnderwrite(w http.ResponseWriter, r *http.Request) {
	deal, ok := s.loadDeal(w, r)
	if !ok {
		return
	}

	s.metrics.UnderwritingRequests.WithLabelValues("underwrite").Inc()
	gen := reporting.NewGenerator(s.rentDelta, s.vacDelta, s.gridSize)
	writeJSON(w, http.StatusOK, gen.Build(deal, nil, ""))
}

// simulateRequest is the POST /deals/{id}/simulate payload. Zero
// values fall back to service defaults.
type simulateRequest struct {
	Runs         int                     `json:"runs"`
	HorizonYears int                     `json:"horizon_years"`
	ExitMethod   string                  `json:"exit_method"`
	Seed         int64                   `json:"seed"`
	Dist         domain.DistributionSpec `json:"dist"`
}

// simulateResponse pairs the run ID with the aggregated result.
type simulateResponse struct {
	RunID  string            `json:"run_id"`
	Cached bool              `json:"cached"`
	Result *domain.SimResult `json:"result"`
}

func (s *Server) handleSimulate(w http.ResponseWriter, r *http.Request) {
	deal, ok := s.loadDeal(w, r)
	if !ok {
		return
	}

	var req simulateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	cfg := domain.SimConfig{
		Runs:         clampInt(req.Runs, minRuns, maxRuns),
		HorizonYears: clampInt(req.HorizonYears, minHorizon, maxHorizon),
		ExitMethod:   req.ExitMethod,
		Seed:         req.Seed,
		Dist:         req.Dist,
	}
	if cfg.ExitMethod == "" {
		cfg.ExitMethod = domain.ExitMethodAppreciation
	}
	if cfg.ExitMethod != domain.ExitMethodAppreciation && cfg.ExitMethod != domain.ExitMethodExitCap {
		writeError(w, http.StatusBadRequest, "exit_method must be appreciation or exitcap")
		return
	}

	runID := idhash.ComputeRunID(deal.DealID, cfg.Runs, cfg.HorizonYears, cfg.ExitMethod, cfg.Seed)

	// A seeded run is deterministic, so its result can be served from
	// cache. Seed 0 streams are different every time; never cache them.
	// The run ID does not cover the distribution spec, so the cache key
	// must.
	cacheKey := runID + ":" + distKey(cfg.Dist)
	cacheable := s.cache != nil && cfg.Seed != 0
	if cacheable {
		if cached, hit := s.cache.Get(r.Context(), cacheKey); hit {
			s.metrics.CacheHits.Inc()
			var result domain.SimResult
			if err := json.Unmarshal([]byte(cached), &result); err == nil {
				writeJSON(w, http.StatusOK, simulateResponse{RunID: runID, Cached: true, Result: &result})
				return
			}
		}
		s.metrics.CacheMisses.Inc()
	}

	engine := montecarlo.New(montecarlo.Options{
		Sampler: montecarlo.NewGaussianSampler(cfg.Seed),
		OnProgress: func(done, total int) {
			s.hub.Publish(progress.Update{RunID: runID, Done: done, Total: total, Finished: done >= total})
		},
	})

	start := time.Now()
	result, trials, err := engine.Run(r.Context(), deal.Params, cfg)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "simulation cancelled")
		return
	}
	s.metrics.SimulationRuns.Inc()
	s.metrics.TrialsExecuted.Add(float64(result.Runs))
	s.metrics.UnresolvedIRRs.Add(float64(result.Runs - result.IRRResolved))
	s.metrics.SimulationDuration.Observe(time.Since(start).Seconds())

	for i := range trials {
		trials[i].RunID = runID
	}

	if s.trialArchive != nil {
		refs := make([]*domain.TrialRecord, len(trials))
		for i := range trials {
			refs[i] = &trials[i]
		}
		if err := s.trialArchive.InsertBulk(r.Context(), refs); err != nil {
			s.logger.Printf("archive trials for run %s: %v", idhash.ShortID(runID), err)
		}
	}

	if s.runStore != nil {
		summary := &domain.RunSummary{
			RunID:     runID,
			DealID:    deal.DealID,
			Seed:      cfg.Seed,
			Result:    *result,
			CreatedAt: time.Now().UnixMilli(),
		}
		if err := s.runStore.Insert(r.Context(), summary); err != nil && !errors.Is(err, storage.ErrDuplicateKey) {
			s.logger.Printf("persist run %s: %v", idhash.ShortID(runID), err)
		}
	}

	if cacheable {
		if payload, err := json.Marshal(result); err == nil {
			if err := s.cache.Set(r.Context(), cacheKey, string(payload)); err != nil {
				s.logger.Printf("cache run %s: %v", idhash.ShortID(runID), err)
			}
		}
	}

	writeJSON(w, http.StatusOK, simulateResponse{RunID: runID, Result: result})
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	runID := mux.Vars(r)["id"]
	run, err := s.runStore.GetByID(r.Context(), runID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "run not found")
			return
		}
		s.logger.Printf("get run: %v", err)
		writeError(w, http.StatusInternalServerError, "storage failure")
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func (s *Server) handleRunProgress(w http.ResponseWriter, r *http.Request) {
	runID := mux.Vars(r)["id"]
	if err := s.hub.Subscribe(w, r, runID); err != nil {
		s.logger.Printf("ws subscribe for run %s: %v", idhash.ShortID(runID), err)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// loadDeal fetches the deal in the route, writing the error response
// itself when the deal cannot be served.
func (s *Server) loadDeal(w http.ResponseWriter, r *http.Request) (*domain.Deal, bool) {
	dealID := mux.Vars(r)["id"]
	deal, err := s.dealStore.GetByID(r.Context(), dealID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "deal not found")
			return nil, false
		}
		s.logger.Printf("get deal: %v", err)
		writeError(w, http.StatusInternalServerError, "storage failure")
		return nil, false
	}
	return deal, true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// distKey is a stable textual form of a distribution spec for cache keys.
func distKey(d domain.DistributionSpec) string {
	return fmt.Sprintf("%g/%g:%g/%g:%g/%g:%g/%g",
		d.RentGrowth.MeanPct, d.RentGrowth.StdPct,
		d.ExpenseGrowth.MeanPct, d.ExpenseGrowth.StdPct,
		d.Appreciation.MeanPct, d.Appreciation.StdPct,
		d.Vacancy.MeanPct, d.Vacancy.StdPct)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// loadEnvFile loads environment variables from .env file if it exists.
func loadEnvFile() {
	data, err := os.ReadFile(".env")
	if err != nil {
		return // File doesn't exist, use system env vars
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		value := strings.Trim(strings.TrimSpace(parts[1]), `"`)
		if os.Getenv(key) == "" {
			os.Setenv(key, value)
		}
	}
}
