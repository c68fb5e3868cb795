package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"reqgraph/internal/docsource"
	"reqgraph/internal/extract"
	"reqgraph/internal/graph"
	"reqgraph/internal/jobs"
	"reqgraph/internal/pipeline"
	"reqgraph/pkg/config"
	"reqgraph/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load configuration: %v", err))
	}

	// Initialize logger
	if err := logger.Init(cfg.Env); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Sync()

	log := logger.Get()
	log.Info("Starting extraction API server...")

	// Initialize Neo4j driver
	driver, err := neo4j.NewDriverWithContext(
		cfg.Neo4jURI,
		neo4j.BasicAuth(cfg.Neo4jUser, cfg.Neo4jPassword, ""),
	)
	if err != nil {
		log.Fatal("Failed to create Neo4j driver", zap.Error(err))
	}
	defer driver.Close(context.Background())

	// Verify Neo4j connection
	ctx := context.Background()
	if err := driver.VerifyConnectivity(ctx); err != nil {
		log.Fatal("Failed to verify Neo4j connectivity", zap.Error(err))
	}

	// Initialize dependencies
	graphRepo := graph.NewRepository(driver)
	sources := docsource.NewRegistry()
	llm := extract.NewClient(extract.Options{
		BaseURL:        cfg.LLMBaseURL,
		APIKey:         cfg.LLMAPIKey,
		Model:          cfg.ModelID,
		Timeout:        cfg.LLMTimeout,
		RequestsPerMin: cfg.LLMRequestsPerMin,
		CacheTTL:       cfg.CacheTTL,
		Concurrency:    cfg.ExtractConcurrency,
	})
	pipe := pipeline.New(sources, llm, graphRepo, pipeline.Options{
		MaxChunkSize: cfg.MaxChunkSize,
		ChunkOverlap: cfg.ChunkOverlap,
	})
	jobRepo := jobs.NewStore(driver)
	queue := jobs.NewQueue(jobRepo, pipe, jobs.QueueOptions{
		Workers:    cfg.JobWorkers,
		JobTimeout: cfg.JobTimeout,
	})
	queue.Start(ctx)

	// Setup Gin router
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(ginLogger(log))
	router.Use(gin.Recovery())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// API routes
	api := router.Group("/api")
	{
		// Submit an extraction job
		api.POST("/extractions", func(c *gin.Context) {
			var req struct {
				DocumentPath string `json:"document_path" binding:"required"`
				ProjectName  string `json:"project_name" binding:"required"`
				Model        string `json:"model"`
			}

			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}

			job := jobs.NewExtractionJob(req.DocumentPath, req.ProjectName, req.Model)
			accepted, err := queue.Submit(c.Request.Context(), job)
			if err != nil {
				log.Error("Failed to submit extraction job", zap.Error(err))
				c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Failed to submit job"})
				return
			}

			c.JSON(http.StatusAccepted, gin.H{
				"id":     accepted.ID,
				"status": accepted.Status,
			})
		})

		// Fetch job status and result
		api.GET("/extractions/:id", func(c *gin.Context) {
			job, err := jobRepo.Get(c.Request.Context(), c.Param("id"))
			if err != nil {
				if _, ok := err.(jobs.ErrJobNotFound); ok {
					c.JSON(http.StatusNotFound, gin.H{"error": "Job not found"})
					return
				}
				log.Error("Failed to fetch job", zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch job"})
				return
			}

			c.JSON(http.StatusOK, job)
		})

		// List recent jobs
		api.GET("/extractions", func(c *gin.Context) {
			list, err := jobRepo.List(c.Request.Context(), 50)
			if err != nil {
				log.Error("Failed to list jobs", zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list jobs"})
				return
			}

			c.JSON(http.StatusOK, gin.H{"jobs": list})
		})

		// Stored requirements for a project
		api.GET("/projects/:name/requirements", func(c *gin.Context) {
			reqs, err := graphRepo.ProjectRequirements(c.Request.Context(), c.Param("name"))
			if err != nil {
				log.Error("Failed to fetch project requirements", zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch requirements"})
				return
			}

			c.JSON(http.StatusOK, gin.H{"requirements": reqs})
		})

		// Run the duplicate sweep
		api.POST("/maintenance/dedupe", func(c *gin.Context) {
			report, err := graphRepo.SweepDuplicates(c.Request.Context())
			if err != nil {
				log.Error("Deduplication sweep failed", zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Sweep failed"})
				return
			}

			c.JSON(http.StatusOK, report)
		})
	}

	// Start server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Graceful shutdown
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	log.Info("Server started", zap.String("port", cfg.Port))

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	// Let queued extractions finish before the driver closes
	queue.Stop()

	log.Info("Server exited")
}

// ginLogger is a custom logger middleware for Gin
func ginLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		if raw != "" {
			path = path + "?" + raw
		}

		log.Info("HTTP Request",
			zap.Int("status", status),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Duration("latency", latency),
			zap.String("ip", c.ClientIP()),
		)
	}
}
