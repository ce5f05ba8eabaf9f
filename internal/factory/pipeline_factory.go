package factory

import (
	"github.com/mikey/inbox-clusterer/internal/config"
	"github.com/mikey/inbox-clusterer/internal/core"
	"github.com/mikey/inbox-clusterer/internal/utils"
	"go.uber.org/zap"
)

// PipelineFactory assembles the clustering service from configuration
type PipelineFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewPipelineFactory creates a new pipeline factory
func NewPipelineFactory(cfg *config.Config, logger *zap.Logger) *PipelineFactory {
	return &PipelineFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateService creates the clustering service. A nil summarizer disables
// summaries and a nil repository disables persistence.
func (f *PipelineFactory) CreateService(
	src core.EmailSource,
	summarizer core.Summarizer,
	textProcessor *utils.TextProcessor,
	repo core.ClusterRepository,
) (*core.ClusteringService, error) {
	clusterCfg := f.cfg.GetClustering()
	vecCfg := f.cfg.GetVectorizer()
	sumCfg, err := f.cfg.GetSummarizer()
	if err != nil {
		return nil, err
	}

	vectorizer := core.NewVectorizer(core.VectorizerConfig{
		MaxDF:       vecCfg.MaxDF,
		MinDF:       vecCfg.MinDF,
		MaxFeatures: vecCfg.MaxFeatures,
		Stopwords:   core.EnglishStopwords,
	})
	assigner := core.NewAssigner(core.KMeansConfig{
		Seed:          clusterCfg.Seed,
		MaxIterations: clusterCfg.MaxIterations,
		Runs:          clusterCfg.Runs,
	})

	return core.NewClusteringService(
		src,
		core.NewPreprocessor(f.logger, clusterCfg.RemoveStopwords, clusterCfg.Workers),
		vectorizer,
		assigner,
		core.NewClusterSummarizer(summarizer, textProcessor, sumCfg.MaxInputChars, f.logger),
		repo,
		f.logger,
		core.ServiceOptions{
			DefaultK:         clusterCfg.K,
			DefaultMaxEmails: f.cfg.GetSource().MaxEmails,
		},
	), nil
}
