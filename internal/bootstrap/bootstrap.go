// Package bootstrap wires configuration into repositories and services for
// the API server and the operator CLI.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"unitalent/talent-center/internal/config"
	"unitalent/talent-center/internal/metrics"
	"unitalent/talent-center/internal/models"
	"unitalent/talent-center/internal/repositories"
	"unitalent/talent-center/internal/secrets"
	"unitalent/talent-center/internal/services"
)

type Container struct {
	DB      *gorm.DB
	Metrics *metrics.Metrics

	Students      repositories.StudentRepository
	Portfolio     repositories.PortfolioRepository
	Organizations repositories.CatalogRepository[models.Organization]
	News          repositories.CatalogRepository[models.News]
	StudentOrgs   repositories.CatalogRepository[models.StudentOrganization]

	Gemini  services.GeminiService
	Flow    *services.TalentScoreFlow
	Scorer  services.TalentScoreService
	Storage services.StorageService
	PDF     services.PDFParserService
	Search  services.SearchService

	// Index and Indexer are nil when QDRANT_URL is empty.
	Index   services.TalentIndex
	Indexer services.ProfileIndexer
}

// New connects to the database and builds every service. reg receives the
// metric collectors; pass nil for the default registerer.
func New(ctx context.Context, cfg *config.Config, log *zap.Logger, reg prometheus.Registerer) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	db, err := config.InitDatabase(cfg, log)
	if err != nil {
		return nil, err
	}

	c := &Container{
		DB:            db,
		Metrics:       metrics.MustNew(reg),
		Students:      repositories.NewStudentRepository(db),
		Portfolio:     repositories.NewPortfolioRepository(db),
		Organizations: repositories.NewOrganizationRepository(db),
		News:          repositories.NewNewsRepository(db),
		StudentOrgs:   repositories.NewStudentOrganizationRepository(db),
		Storage:       services.NewStorageService(cfg.Storage.UploadPath, cfg.Storage.MaxFileSize),
		PDF:           services.NewPDFParserService(),
	}
	log.Info("✅ Repositories initialized successfully")

	if err := c.Storage.EnsureUploadDir(); err != nil {
		return nil, err
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name:  "GEMINI_API_KEY",
		Value: cfg.Gemini.APIKey,
		File:  cfg.Gemini.APIKeyFile,
	})
	if err != nil {
		return nil, err
	}

	c.Gemini, err = services.NewGeminiService(ctx, apiKey, cfg.Gemini, log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Gemini AI: %w", err)
	}
	log.Info("✅ Gemini AI initialized successfully", zap.String("model", c.Gemini.Model()))

	c.Flow = services.NewTalentScoreFlow(
		services.NewGeminiScoreProvider(c.Gemini),
		services.FlowOptions{Clamp: cfg.Scoring.Clamp, MaxLogLength: cfg.Scoring.MaxLogLength},
		log,
		c.Metrics,
	)
	c.Scorer = services.NewTalentScoreService(c.Flow, c.Students, cfg.Scoring, log, c.Metrics)

	if cfg.Qdrant.Enabled() {
		c.Index, err = services.NewTalentIndex(cfg.Qdrant.URL, cfg.Qdrant.APIKey, cfg.Qdrant.Collection, log)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Qdrant: %w", err)
		}
		if err := c.Index.InitCollection(ctx); err != nil {
			return nil, fmt.Errorf("failed to initialize Qdrant collection: %w", err)
		}
		c.Indexer = services.NewProfileIndexer(
			c.Students,
			c.Gemini,
			c.Index,
			services.NewTextChunker(cfg.Worker.ChunkSize, cfg.Worker.ChunkOverlap),
			log,
		)
		c.Search = services.NewSearchService(c.Students, c.Gemini, c.Index)
		log.Info("✅ Qdrant initialized successfully", zap.String("collection", cfg.Qdrant.Collection))
	} else {
		c.Search = services.NewSearchService(c.Students, nil, nil)
		log.Warn("⚠️ QDRANT_URL is not set, talent search is disabled")
	}

	return c, nil
}

// Close releases the database pool.
func (c *Container) Close() error {
	sqlDB, err := c.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
