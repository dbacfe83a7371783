package main

import (
	"fmt"
	"log"
	"time"

	"github.com/jmoiron/sqlx"

	"claimcheck/internal/archive"
	"claimcheck/internal/classify"
	"claimcheck/internal/config"
	"claimcheck/internal/decide"
	"claimcheck/internal/extract"
	"claimcheck/internal/handler"
	"claimcheck/internal/llm"
	_ "claimcheck/internal/llm/gemini"
	_ "claimcheck/internal/llm/openai"
	"claimcheck/internal/pdftext"
	"claimcheck/internal/pipeline"
	"claimcheck/internal/port"
	"claimcheck/internal/repository/postgres"
	"claimcheck/internal/router"
	s3storage "claimcheck/internal/storage/s3"
	"claimcheck/internal/validate"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize text generation with provider fallback
	generator, err := buildGenerator(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize text generation: %w", err)
	}
	retry := llm.DefaultRetryPolicy()
	if cfg.LLM.MaxRetries > 0 {
		retry.MaxAttempts = cfg.LLM.MaxRetries
	}
	client := llm.NewClient(generator, retry)

	// Initialize pipeline stages
	texts := pdftext.NewExtractor(cfg.PDF, pdftext.NewExecRunner())
	classifier := classify.NewClassifier(client, cfg.Pipeline.Concurrency)
	bills := extract.NewBillExtractor(client, cfg.Extract)
	discharges := extract.NewDischargeExtractor(client)
	idCards := extract.NewIDCardExtractor(client)
	validator := validate.NewValidator(client)
	engine := decide.NewEngine(client)
	pipe := pipeline.New(texts, classifier, bills, discharges, idCards, validator, engine, cfg.Pipeline.Concurrency)

	// Optional: archive finished results to S3
	var archiver *archive.Archiver
	if cfg.S3.Enabled {
		store, err := s3storage.NewArchiveStore(&cfg.S3)
		if err != nil {
			return fmt.Errorf("failed to initialize S3 client: %w", err)
		}
		expiry := time.Duration(cfg.S3.PresignExpiry) * time.Second
		archiver = archive.NewArchiver(store, cfg.S3.Bucket, expiry)
	}

	// Optional: decision audit log in PostgreSQL
	var db *sqlx.DB
	var audit port.DecisionAuditRepository
	if cfg.DB.Enabled {
		db, err = postgres.NewDB(&cfg.DB)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer db.Close()
		audit = postgres.NewDecisionAuditRepo(db)
	}

	// Initialize handlers
	claimH := handler.NewClaimHandler(pipe, cfg.Upload, archiver, audit)
	healthH := handler.NewHealthHandler(db)

	// Setup router
	r := router.Setup(cfg, claimH, healthH)

	log.Printf("Server starting on %s", cfg.Server.Port)
	if err := r.Run(cfg.Server.Port); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}

// buildGenerator wires the primary provider, plus the secondary behind rate
// limit fallback when configured.
func buildGenerator(cfg *config.Config) (port.TextGenerator, error) {
	primary, err := llm.NewGenerator(&cfg.LLM.Primary)
	if err != nil {
		return nil, err
	}
	secondaryCfg := cfg.LLM.SecondaryConfig()
	if secondaryCfg == nil {
		return primary, nil
	}
	secondary, err := llm.NewGenerator(secondaryCfg)
	if err != nil {
		return nil, err
	}
	return llm.NewFallbackGenerator([]port.TextGenerator{primary, secondary}), nil
}
