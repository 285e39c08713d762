package history

import "context"

// Repo persists analysis runs and their learning paths.
type Repo interface {
	CreateAnalysis(ctx context.Context, a Analysis) error
	MarkLearningPathGenerated(ctx context.Context, analysisID string) error
	// SaveLearningPath replaces the stored weeks of an analysis.
	SaveLearningPath(ctx context.Context, analysisID string, weeks []Week) error
	GetAnalysis(ctx context.Context, analysisID string) (Analysis, error)
	// ListAnalyses returns analyses newest first.
	ListAnalyses(ctx context.Context, filter ListFilter) ([]Analysis, error)
	ListLearningPath(ctx context.Context, analysisID string) ([]Week, error)
}
