package core

import (
	"context"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

// keywordsPerCluster is the number of top terms reported per cluster
const keywordsPerCluster = 5

// ServiceOptions holds the run defaults of the clustering service
type ServiceOptions struct {
	DefaultK         int
	DefaultMaxEmails int
}

// ClusteringService runs the email clustering pipeline end to end
type ClusteringService struct {
	source       EmailSource
	preprocessor *Preprocessor
	vectorizer   *Vectorizer
	assigner     *Assigner
	summarizer   *ClusterSummarizer
	repo         ClusterRepository
	logger       *zap.Logger
	opts         ServiceOptions
	now          func() time.Time
}

// NewClusteringService creates a new clustering service. The repository may be
// nil, in which case results are not persisted.
func NewClusteringService(
	source EmailSource,
	preprocessor *Preprocessor,
	vectorizer *Vectorizer,
	assigner *Assigner,
	summarizer *ClusterSummarizer,
	repo ClusterRepository,
	logger *zap.Logger,
	opts ServiceOptions,
) *ClusteringService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.DefaultK < 1 {
		opts.DefaultK = 5
	}
	if opts.DefaultMaxEmails < 1 {
		opts.DefaultMaxEmails = 50
	}
	return &ClusteringService{
		source:       source,
		preprocessor: preprocessor,
		vectorizer:   vectorizer,
		assigner:     assigner,
		summarizer:   summarizer,
		repo:         repo,
		logger:       logger,
		opts:         opts,
		now:          time.Now,
	}
}

// Run fetches emails since req.Since, clusters them and persists the clusters
// for req.UserID. Any email source error aborts the run.
func (s *ClusteringService) Run(ctx context.Context, req RunRequest) (*RunResult, error) {
	if s.source == nil {
		return nil, fmt.Errorf("%w: no email source configured", ErrSourceFailed)
	}
	if req.Since.After(s.now()) {
		return nil, fmt.Errorf("%w: start date %s is in the future", ErrInvalidDate, req.Since.Format("2006-01-02"))
	}
	maxEmails := req.MaxEmails
	if maxEmails < 1 {
		maxEmails = s.opts.DefaultMaxEmails
	}

	s.logger.Info("Fetching emails",
		zap.Time("since", req.Since),
		zap.Int("max_emails", maxEmails),
		zap.Int64("user_id", req.UserID))

	records, err := s.source.FetchEmails(ctx, req.Since, maxEmails)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceFailed, err)
	}

	result, err := s.Cluster(ctx, records, req.K)
	if err != nil {
		return nil, err
	}

	if s.repo != nil {
		if err := s.repo.SaveClusters(ctx, s.clusterRecords(result, req)); err != nil {
			return nil, fmt.Errorf("failed to save clusters: %w", err)
		}
	}
	return result, nil
}

// Cluster runs the pipeline on an already fetched batch without persisting it
func (s *ClusteringService) Cluster(ctx context.Context, records []EmailRecord, k int) (*RunResult, error) {
	if k < 1 {
		k = s.opts.DefaultK
	}
	start := s.now()

	emails, err := s.preprocessor.PreprocessEmails(ctx, records)
	if err != nil {
		return nil, err
	}
	if len(emails) == 0 {
		return nil, fmt.Errorf("%w: no emails left to cluster (%d fetched)", ErrEmptyInput, len(records))
	}

	features, err := s.vectorizer.Vectorize(Texts(emails))
	if err != nil {
		return nil, err
	}
	_, dims := features.Matrix.Dims()
	s.logger.Debug("Vectorized emails", zap.Int("rows", len(emails)), zap.Int("features", dims))

	labels, err := s.assigner.Assign(features.Matrix, k)
	if err != nil {
		return nil, err
	}

	report, err := Report(Records(emails), labels)
	if err != nil {
		return nil, err
	}

	groups, err := GroupByCluster(emails, labels)
	if err != nil {
		return nil, err
	}

	textsByCluster := make(map[int][]string, len(groups))
	for id, members := range groups {
		textsByCluster[id] = Texts(members)
	}
	var summaries map[int]string
	if s.summarizer != nil {
		summaries = s.summarizer.Summarize(ctx, textsByCluster)
	}

	idsByCluster := make(map[int][]string, len(groups))
	for i, label := range labels {
		idsByCluster[label] = append(idsByCluster[label], emails[i].Key(i))
	}

	clusters := make([]ClusterResult, 0, len(groups))
	for _, id := range SortedClusterIDs(groups) {
		members := groups[id]
		clusters = append(clusters, ClusterResult{
			ClusterID: id,
			Summary:   summaries[id],
			Keywords:  TopTerms(features, labels, id, keywordsPerCluster),
			Language:  DominantLanguage(textsByCluster[id]),
			EmailIDs:  idsByCluster[id],
			Count:     len(members),
		})
	}

	s.logger.Info("Clustered emails",
		zap.Int("emails", len(emails)),
		zap.Int("clusters", len(clusters)),
		zap.Int("k", k),
		zap.Duration("duration", s.now().Sub(start)))

	return &RunResult{
		RunID:    ulid.Make().String(),
		Fetched:  len(records),
		Emails:   emails,
		Labels:   labels,
		Report:   report,
		Clusters: clusters,
	}, nil
}

func (s *ClusteringService) clusterRecords(result *RunResult, req RunRequest) []*ClusterRecord {
	processedAt := s.now()
	records := make([]*ClusterRecord, 0, len(result.Clusters))
	for _, c := range result.Clusters {
		records = append(records, &ClusterRecord{
			RunID:       result.RunID,
			UserID:      req.UserID,
			ClusterID:   c.ClusterID,
			Summary:     c.Summary,
			Keywords:    c.Keywords,
			Language:    c.Language,
			EmailIDs:    c.EmailIDs,
			EmailCount:  c.Count,
			StartDate:   req.Since,
			ProcessedAt: processedAt,
		})
	}
	return records
}
