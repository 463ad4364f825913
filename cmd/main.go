package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os/signal"
	"syscall"
	"time"
	"weaveit-pipeline/application/ports/outbound"
	"weaveit-pipeline/application/services"
	"weaveit-pipeline/config"
	"weaveit-pipeline/infrastructure/adapters"
	"weaveit-pipeline/infrastructure/gin_interface/controllers"
	"weaveit-pipeline/middleware"
	mockgenerator "weaveit-pipeline/mock"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/panjf2000/ants/v2"
	"github.com/rs/zerolog/log"
)

const shutdownTimeout = 30 * time.Second

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Warn().Err(err).Msg("Failed to load .env file")
	}

	loggerConfig, err := config.GetLoggerConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to get logger config")
	}

	serverConfig, err := config.GetServerConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to get server config")
	}

	storeConfig, err := config.GetStoreConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to get store config")
	}

	orchestratorConfig, err := config.GetOrchestratorConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to get orchestrator config")
	}

	rendererConfig, err := config.GetRendererConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to get renderer config")
	}

	s3Config, err := config.GetS3Config()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to get s3 config")
	}

	dynamoConfig, err := config.GetDynamoConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to get dynamo config")
	}

	zeroLogger := adapters.NewZerologWrapper(loggerConfig)

	panicHandler := func(p interface{}) {
		zeroLogger.Error(fmt.Errorf("%v", p), "Panic in worker pool")
	}

	jobPool, err := ants.NewPool(orchestratorConfig.MaxConcurrentJobs,
		ants.WithPanicHandler(panicHandler), ants.WithNonblocking(orchestratorConfig.NonBlockingSubmit))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create job pool")
	}

	synthesisPool, err := ants.NewPool(orchestratorConfig.SynthesisConcurrency, ants.WithPanicHandler(panicHandler))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create synthesis pool")
	}
	defer synthesisPool.Release()

	renderPool, err := ants.NewPool(orchestratorConfig.RenderConcurrency, ants.WithPanicHandler(panicHandler))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create render pool")
	}
	defer renderPool.Release()

	contentStore, err := adapters.NewFileContentStore(storeConfig.OutputDir, zeroLogger)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create content store")
	}
	sweepStaged := func(context.Context) error {
		_, err := contentStore.SweepStale(storeConfig.StaleTempAge)
		return err
	}
	if err := sweepStaged(context.Background()); err != nil {
		zeroLogger.Error(err, "Failed to sweep staged files on startup")
	}

	scheduler := adapters.NewCronScheduler(zeroLogger)
	if _, err := scheduler.Every(storeConfig.SweepInterval, "sweep-staged-files", sweepStaged); err != nil {
		log.Fatal().Err(err).Msg("Failed to schedule staged file sweep")
	}
	scheduler.Start()
	defer scheduler.Stop()

	metrics := adapters.NewPrometheusMetrics()

	enhancer, speechBackend := newBackends(serverConfig, rendererConfig, zeroLogger)
	prober := adapters.NewFFprobeAudioProber(rendererConfig.FFprobePath, zeroLogger)
	encoder := adapters.NewFFmpegScrollEncoder(rendererConfig, zeroLogger)
	mirror, ledger := newAWSAdapters(s3Config, dynamoConfig, zeroLogger)

	narrationWriter := services.NewNarrationWriter(zeroLogger, enhancer)

	speechSynthesizer := services.NewSpeechSynthesizer(zeroLogger, speechBackend, prober, contentStore)

	videoRenderer := services.NewScrollVideoRenderer(zeroLogger, encoder, contentStore, rendererConfig)

	orchestrator := services.NewContentJobOrchestrator(zeroLogger, narrationWriter, speechSynthesizer, videoRenderer,
		contentStore, jobPool, synthesisPool, renderPool, metrics, ledger, mirror)

	statusPoller := services.NewStatusPoller(contentStore, serverConfig.ArtifactBasePath)

	artifactReader := services.NewArtifactReader(contentStore)

	generationController := controllers.NewContentGenerationController(zeroLogger, orchestrator, "/status")
	statusController := controllers.NewContentStatusController(zeroLogger, statusPoller)
	artifactController := controllers.NewArtifactController(zeroLogger, artifactReader)
	healthController := controllers.NewHealthController(jobPool, metrics.Handler())

	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestMetrics(metrics, zeroLogger))

	err = router.SetTrustedProxies(nil)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to set trusted proxies!")
	}

	var generateGuards []gin.HandlerFunc
	if serverConfig.JwksUrl != "" {
		authHandler, err := middleware.NewAuthHandler(serverConfig.JwksUrl, zeroLogger)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create auth handler!")
		}
		defer authHandler.Close()
		generateGuards = append(generateGuards, authHandler.AuthMiddleware())
	}
	if serverConfig.GenerateRateLimit != "off" {
		limiter, err := middleware.NewRateLimiter(serverConfig.GenerateRateLimit)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create rate limiter!")
		}
		generateGuards = append(generateGuards, middleware.RateLimit(limiter, zeroLogger))
	}

	generationController.RegisterRoutes(router, generateGuards...)
	statusController.RegisterRoutes(router)
	artifactController.RegisterRoutes(router)
	healthController.RegisterRoutes(router)

	srv := &http.Server{
		Addr:    ":" + serverConfig.Port,
		Handler: router,
	}

	go func() {
		zeroLogger.InfoWithFields("Server listening", map[string]interface{}{
			"port":          serverConfig.Port,
			"output_dir":    storeConfig.OutputDir,
			"mock_backends": serverConfig.MockBackends,
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server!")
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	zeroLogger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zeroLogger.Error(err, "Server forced to shut down")
	}
	if err := jobPool.ReleaseTimeout(shutdownTimeout); err != nil {
		zeroLogger.WarnWithFields("Jobs still running at shutdown", map[string]interface{}{
			"running": jobPool.Running(),
		})
	}
}

func newBackends(serverConfig *config.ServerConfig, rendererConfig *config.RendererConfig,
	logger outbound.LoggerPort) (outbound.ScriptEnhancerPort, outbound.SpeechBackendPort) {
	if serverConfig.MockBackends {
		var narrations map[string]mockgenerator.MockNarration
		if serverConfig.MockNarrationsFile != "" {
			var err error
			narrations, err = mockgenerator.NewFileNarrationReader(logger).Read(serverConfig.MockNarrationsFile)
			if err != nil {
				log.Fatal().Err(err).Msg("Failed to read mock narrations")
			}
		}
		logger.Warn("Using offline mock backends")
		return mockgenerator.NewScriptEnhancer(narrations, logger),
			mockgenerator.NewSilentSpeechBackend(rendererConfig.FFmpegPath, logger)
	}

	gptConfig, err := config.GetGptConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to get gpt config")
	}

	elevenLabsConfig, err := config.GetElevenLabsConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to get eleven labs config")
	}

	contentFetcher := adapters.NewContentFetcher(logger, elevenLabsConfig.Timeout)

	return adapters.NewScriptEnhancer(gptConfig, logger),
		adapters.NewElevenLabsSpeechBackend(contentFetcher, elevenLabsConfig, logger)
}

// newAWSAdapters returns nil ports for whatever is not configured.
func newAWSAdapters(s3Config *config.S3Config, dynamoConfig *config.DynamoConfig,
	logger outbound.LoggerPort) (outbound.ArtifactMirrorPort, outbound.JobEventLedgerPort) {
	if !s3Config.Enabled && !dynamoConfig.Enabled {
		return nil, nil
	}

	sess := session.Must(session.NewSessionWithOptions(session.Options{
		SharedConfigState: session.SharedConfigEnable,
	}))

	var mirror outbound.ArtifactMirrorPort
	if s3Config.Enabled {
		s3Client := s3.New(sess, aws.NewConfig().WithRegion(s3Config.Region))
		mirror = adapters.NewS3ArtifactMirror(logger, s3Client, s3Config)
	}

	var ledger outbound.JobEventLedgerPort
	if dynamoConfig.Enabled {
		dynamoClient := dynamodb.New(sess, aws.NewConfig().WithRegion(dynamoConfig.Region))
		ledger = adapters.NewDynamoJobLedger(logger, dynamoClient, dynamoConfig)
	}

	return mirror, ledger
}
