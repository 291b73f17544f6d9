package ingest

import (
	"context"
	"fmt"

	"github.com/Taichi-iskw/yt-trend/internal/config"
	"github.com/Taichi-iskw/yt-trend/internal/repository"
	"github.com/Taichi-iskw/yt-trend/internal/service/common"
	"github.com/Taichi-iskw/yt-trend/internal/service/corpus"
	ingestSvc "github.com/Taichi-iskw/yt-trend/internal/service/ingest"
	"github.com/Taichi-iskw/yt-trend/internal/service/report"
	"github.com/Taichi-iskw/yt-trend/internal/service/transcript"
	"github.com/Taichi-iskw/yt-trend/internal/service/youtube"
)

// reportTitle is sent as the OpenRouter X-Title header
const reportTitle = "yt-trend"

// ServiceFactory builds services from the loaded configuration
type ServiceFactory struct {
	cfg *config.Config
}

// NewServiceFactory loads configuration and creates a new service factory
func NewServiceFactory() (*ServiceFactory, error) {
	cfg, err := config.NewConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return NewServiceFactoryWithConfig(cfg), nil
}

// NewServiceFactoryWithConfig creates a new service factory over cfg
func NewServiceFactoryWithConfig(cfg *config.Config) *ServiceFactory {
	return &ServiceFactory{cfg: cfg}
}

// Config returns the configuration the factory was built with
func (f *ServiceFactory) Config() *config.Config {
	return f.cfg
}

func (f *ServiceFactory) listingHTTPClient() *common.HTTPClient {
	httpCfg := common.DefaultHTTPClientConfig()
	httpCfg.RateLimit = f.cfg.RequestsPerSecond
	return common.NewHTTPClient(httpCfg)
}

// CreateYouTubeService wires the configured listing source
func (f *ServiceFactory) CreateYouTubeService() youtube.YouTubeService {
	switch f.cfg.ListingSource {
	case config.ListingSourceFeed:
		httpClient := f.listingHTTPClient()
		return youtube.NewYouTubeService(youtube.NewPageResolver(httpClient), youtube.NewFeedLister(httpClient))
	case config.ListingSourceYtDlp:
		client := youtube.NewYtDlpClient()
		return youtube.NewYouTubeService(client, client)
	default:
		httpClient := f.listingHTTPClient()
		api := youtube.NewDataAPIClient(f.cfg.YouTubeAPIKey, httpClient, youtube.NewPageResolver(httpClient))
		return youtube.NewYouTubeService(api, api)
	}
}

// CreateFetcher wires the configured transcript source. Transcript requests
// are never retried: one attempt per video.
func (f *ServiceFactory) CreateFetcher() transcript.Fetcher {
	if f.cfg.TranscriptSource == config.TranscriptSourceYtDlp {
		return transcript.NewFetcher(transcript.NewYtDlpSource())
	}
	httpCfg := common.DefaultHTTPClientConfig()
	httpCfg.RateLimit = f.cfg.RequestsPerSecond
	httpCfg.MaxTries = 1
	return transcript.NewFetcher(transcript.NewInnertubeSource(common.NewHTTPClient(httpCfg)))
}

// CreateWriter creates the corpus writer for the configured directory
func (f *ServiceFactory) CreateWriter() corpus.Writer {
	return corpus.NewWriter(f.cfg.TranscriptsDir)
}

// CreateCatalog connects to the catalog database
func (f *ServiceFactory) CreateCatalog(ctx context.Context) (*repository.Catalog, func(), error) {
	dbPool, err := config.NewDatabasePool(ctx, f.cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	cleanup := func() {
		config.CloseDatabasePool(dbPool)
	}
	return repository.NewCatalog(dbPool), cleanup, nil
}

// CreateService creates the ingestion service. With save set the run is
// recorded in the catalog; the returned cleanup must always be called.
func (f *ServiceFactory) CreateService(ctx context.Context, save bool) (ingestSvc.Service, func(), error) {
	var catalog ingestSvc.Catalog
	cleanup := func() {}
	if save {
		c, dbCleanup, err := f.CreateCatalog(ctx)
		if err != nil {
			return nil, nil, err
		}
		catalog = c
		cleanup = dbCleanup
	}

	service := ingestSvc.NewService(f.CreateYouTubeService(), f.CreateFetcher(), f.CreateWriter(), catalog)
	return service, cleanup, nil
}

// CreateSummarizer creates the two-stage report summarizer
func (f *ServiceFactory) CreateSummarizer() (report.Summarizer, error) {
	rc := f.cfg.Report
	chat, err := report.NewChatClient(report.ChatConfig{
		APIKey:      f.cfg.OpenRouterAPIKey,
		BaseURL:     rc.BaseURL,
		Model:       rc.Model,
		Temperature: rc.Temperature,
		MaxTokens:   rc.MaxTokens,
		Referer:     "https://github.com/Taichi-iskw/yt-trend",
		Title:       reportTitle,
	})
	if err != nil {
		return nil, err
	}

	var crew *report.Crew
	if rc.CrewFile != "" {
		crew, err = report.LoadCrew(rc.CrewFile)
		if err != nil {
			return nil, err
		}
	}
	return report.NewCrewSummarizer(chat, crew)
}
