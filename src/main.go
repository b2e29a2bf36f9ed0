// Copyright (c) 2026 Khaled Abbas
//
// This source code is licensed under the Business Source License 1.1.
//
// Change Date: 4 years after the first public release of this version.
// Change License: MIT
//
// On the Change Date, this version of the code automatically converts
// to the MIT License. Prior to that date, use is subject to the
// Additional Use Grant. See the LICENSE file for details.

package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/docker/docker/client"

	"github.com/darraghmahns/DES-Demo/src/compliance"
	"github.com/darraghmahns/DES-Demo/src/enrich"
	"github.com/darraghmahns/DES-Demo/src/extract"
	"github.com/darraghmahns/DES-Demo/src/logging"
	"github.com/darraghmahns/DES-Demo/src/pipeline"
	"github.com/darraghmahns/DES-Demo/src/render"
	"github.com/darraghmahns/DES-Demo/src/storage"
	"github.com/darraghmahns/DES-Demo/src/stream"
	"github.com/darraghmahns/DES-Demo/src/tasks"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		fmt.Printf("Warning: no .env file loaded: %v\n", err)
	}

	var (
		DB_USER     = os.Getenv("DB_USER")
		DB_PASSWORD = os.Getenv("DB_PASSWORD")
		DB_NAME     = os.Getenv("DB_NAME")
		DB_HOST     = os.Getenv("DB_HOST")
		DB_PORT     = os.Getenv("DB_PORT")
		DB_SSLMODE  = os.Getenv("DB_SSLMODE")
	)
	if DB_SSLMODE == "" {
		// Enable SSL For Production
		DB_SSLMODE = "require"
	}

	// Generate Unique ID
	instanceID := uuid.New().String()
	fmt.Printf("Starting extraction instance with UUID: %s\n", instanceID)

	// Setup Graceful Shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Optional Postgres: without it, results and discovered compliance rules
	// live in process memory only.
	var db *sql.DB
	if DB_HOST != "" {
		var err error
		db, err = sql.Open("postgres", fmt.Sprintf("user=%s password=%s dbname=%s host=%s port=%s sslmode=%s",
			DB_USER, DB_PASSWORD, DB_NAME, DB_HOST, DB_PORT, DB_SSLMODE))
		if err != nil {
			panic(err)
		}
		defer db.Close()
	}

	var resultStore storage.ResultStore
	var ruleStore compliance.RuleStore
	if db != nil {
		pgResults := storage.NewPostgresResultStore(db)
		if err := pgResults.Migrate(ctx); err != nil {
			panic(fmt.Sprintf("failed to migrate result store: %v", err))
		}
		pgRules, err := compliance.NewPostgresRuleStore(ctx, db)
		if err != nil {
			panic(fmt.Sprintf("failed to migrate rule store: %v", err))
		}
		resultStore = pgResults
		ruleStore = pgRules
		logging.Log("Postgres stores ready", slog.LevelInfo)
	} else {
		resultStore = storage.NewMemoryResultStore()
		ruleStore = compliance.NewMemoryRuleStore()
		logging.Log("No DB_HOST configured, using in-memory stores", slog.LevelInfo)
	}

	// Renderer: docker runs poppler in a sandboxed container, passthrough
	// skips rasterization for local development.
	var renderer render.Renderer
	switch os.Getenv("RENDERER") {
	case "docker":
		cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
		if err != nil {
			panic(fmt.Sprintf("failed to create docker client: %v", err))
		}
		defer cli.Close()

		dockerRenderer := render.NewDockerRenderer(cli)
		if err := dockerRenderer.EnsureImage(ctx); err != nil {
			fmt.Printf("Warning: failed to pull render image: %v. Rendering might fail if image is not present locally.\n", err)
		}

		idleTimeoutStr := os.Getenv("RENDER_IDLE_TIMEOUT")
		if idleTimeoutStr == "" {
			idleTimeoutStr = "5m"
		}
		idleTimeout, err := time.ParseDuration(idleTimeoutStr)
		if err != nil {
			fmt.Printf("Warning: failed to parse RENDER_IDLE_TIMEOUT '%s', defaulting to 5m: %v\n", idleTimeoutStr, err)
			idleTimeout = 5 * time.Minute
		}
		go dockerRenderer.RunReaper(ctx, idleTimeout)
		defer dockerRenderer.Cleanup(context.Background())

		renderer = dockerRenderer
	default:
		renderer = render.NewPassthrough()
	}

	var engine extract.Engine
	switch name := os.Getenv("ENGINE"); name {
	case "", "mock":
		engine = extract.NewMockEngine()
	default:
		panic(fmt.Sprintf("unknown extraction engine %q", name))
	}

	docsDir := os.Getenv("DOCS_DIR")
	if docsDir == "" {
		docsDir = "docs"
	}

	retention, _ := strconv.Atoi(os.Getenv("TASK_RETENTION"))

	// Setup Pipeline OpenTelemetry Metrics
	logging.InitializeFloatCounter("pipeline_tasks_total", "Total number of extraction tasks", "Task")
	logging.InitializeFloatCounter("pipeline_tasks_failed", "Number of failed extraction tasks", "Task")
	logging.InitializeFloatCounter("pipeline_tasks_succeeded", "Number of succeeded extraction tasks", "Task")
	logging.InitializeFloatCounter("pipeline_cache_hits", "Number of tasks served from the result cache", "Task")
	logging.InitializeFloatCounter("pipeline_error_rate", "Error rate of extraction tasks", "%")

	// Wire the pipeline together
	broker := stream.NewBroker()
	manager := tasks.NewManager(broker, retention)
	stats := logging.NewPipelineStats(instanceID)
	checker := compliance.NewChecker(ruleStore)
	sequencer := pipeline.NewSequencer(
		broker,
		manager,
		pipeline.NewFSSource(docsDir),
		renderer,
		extract.NewProtocol(engine),
		checker,
		enrich.NewStaticEnricher(),
		resultStore,
		stats,
	)
	manager.SetRunner(sequencer)

	apiPort := os.Getenv("API_PORT")
	if apiPort == "" {
		apiPort = "8080"
	}

	logging.Log("Extraction service started. Waiting for requests...", slog.LevelInfo)
	if err := StartAPIServer(ctx, apiPort, manager, broker, checker, resultStore, stats); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
	logging.Log("Shutting down extraction service gracefully...", slog.LevelInfo)
}
