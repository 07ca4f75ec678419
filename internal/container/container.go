package container

import (
	"net/http"

	"go-deforest-monitor/internal/analyzer"
	"go-deforest-monitor/internal/config"
	"go-deforest-monitor/internal/factory"
	"go-deforest-monitor/internal/logger"
	"go-deforest-monitor/internal/observer"
	"go-deforest-monitor/internal/report"
	"go-deforest-monitor/internal/repository"
	"go-deforest-monitor/internal/service"
	"go-deforest-monitor/internal/transport"
	"go-deforest-monitor/pkg/models"
)

// Container wires the pipeline together. Construction is fail-fast: any
// configuration problem surfaces here, before the server starts.
type Container struct {
	Config  *config.Config
	Service service.AnalysisService
	Handler http.Handler
}

// New builds the dependency graph from configuration
func New(cfg *config.Config) (*Container, error) {
	opts, err := buildOptions(cfg)
	if err != nil {
		return nil, err
	}

	storageCfg := factory.StorageConfig{
		AlphaAsNIR:       cfg.AlphaAsNIR,
		MaxFetchBytes:    cfg.MaxRequestBodySize,
		AzureAccountName: cfg.AzureAccountName,
		AzureAccountKey:  cfg.AzureAccountKey,
	}
	files := factory.NewFileStore(storageCfg)
	fetcher := factory.NewSceneFetcher(storageCfg, files)
	blobs, err := factory.NewBlobStore(storageCfg, files)
	if err != nil {
		return nil, err
	}
	if blobs != nil {
		logger.WithField("account", cfg.AzureAccountName).Info("Azure blob scene source enabled")
	}
	repo := repository.NewSceneRepository(files, fetcher, blobs)

	serializer, err := report.NewSerializer(report.MaskEncoding(cfg.MaskEncoding), cfg.OutputDir)
	if err != nil {
		return nil, err
	}

	detector, err := factory.NewDetector(factory.DetectorThreshold, opts)
	if err != nil {
		return nil, err
	}
	sceneAnalyzer, err := analyzer.NewSceneAnalyzerWith(
		opts,
		analyzer.NewPreprocessor(opts),
		analyzer.NewIndexCalculator(opts.SoilBrightness),
		detector,
	)
	if err != nil {
		return nil, err
	}
	orchestrator := analyzer.NewBatchOrchestrator(sceneAnalyzer, files)

	tracker := service.NewStatsTracker()
	publisher := observer.NewEventPublisher()
	publisher.Subscribe(observer.NewLoggingObserver(logger.Logger))
	publisher.Subscribe(tracker)

	svc := service.NewAnalysisService(repo, sceneAnalyzer, orchestrator, serializer, publisher, tracker)

	return &Container{
		Config:  cfg,
		Service: svc,
		Handler: transport.NewHandler(svc, cfg),
	}, nil
}

// buildOptions maps configuration values onto analysis options. Threshold
// and mode validation happens in the analyzer constructor.
func buildOptions(cfg *config.Config) (analyzer.AnalysisOptions, error) {
	opts := analyzer.DefaultOptions().
		WithNDVIThreshold(cfg.NDVIThreshold).
		WithSecondaryThreshold(models.IndexEVI, cfg.EVIThreshold).
		WithSecondaryThreshold(models.IndexSAVI, cfg.SAVIThreshold).
		WithSoilBrightness(cfg.SoilBrightness).
		WithTargetSize(cfg.TargetWidth, cfg.TargetHeight).
		WithNormalization(analyzer.NormalizationMode(cfg.Normalization)).
		WithWorkers(cfg.Workers).
		WithBatchTimeout(cfg.BatchTimeout)
	opts.ForestThreshold = cfg.ForestThreshold
	opts.Resampling = analyzer.ResamplingMode(cfg.Resampling)
	if cfg.Denoise {
		opts = opts.WithDenoise()
	}
	return opts, opts.Validate()
}
