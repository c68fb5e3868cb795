package main

import (
	"context"
	"fmt"
	"os"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"reqgraph/internal/graph"
	"reqgraph/pkg/config"
	"reqgraph/pkg/logger"
)

// One deduplication pass over the stored graph, intended to run from
// cron outside the request path.
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load configuration: %v", err))
	}

	if err := logger.Init(cfg.Env); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Sync()

	log := logger.Get()
	log.Info("Starting deduplication sweep...")

	driver, err := neo4j.NewDriverWithContext(
		cfg.Neo4jURI,
		neo4j.BasicAuth(cfg.Neo4jUser, cfg.Neo4jPassword, ""),
	)
	if err != nil {
		log.Fatal("Failed to create Neo4j driver", zap.Error(err))
	}
	defer driver.Close(context.Background())

	ctx := context.Background()
	if err := driver.VerifyConnectivity(ctx); err != nil {
		log.Fatal("Failed to verify Neo4j connectivity", zap.Error(err))
	}

	repo := graph.NewRepository(driver)
	report, err := repo.SweepDuplicates(ctx)
	if err != nil {
		log.Error("Deduplication sweep failed", zap.Error(err))
		os.Exit(1)
	}

	log.Info("Sweep complete",
		zap.Int("groups_merged", report.GroupsMerged),
		zap.Int("edges_redirected", report.EdgesRedirected),
		zap.Int("duplicates_deleted", report.DuplicatesDeleted),
		zap.Int("orphans_deleted", report.OrphansDeleted),
	)
}
