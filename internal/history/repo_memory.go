package history

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo is an in-memory Repo.
type MemoryRepo struct {
	mu       sync.RWMutex
	analyses map[string]Analysis
	weeks    map[string][]Week
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		analyses: make(map[string]Analysis),
		weeks:    make(map[string][]Week),
	}
}

func (r *MemoryRepo) CreateAnalysis(ctx context.Context, a Analysis) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.analyses[a.ID] = a
	return nil
}

func (r *MemoryRepo) MarkLearningPathGenerated(ctx context.Context, analysisID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.analyses[analysisID]
	if !ok {
		return ErrNotFound
	}
	a.LearningPathGenerated = true
	r.analyses[analysisID] = a
	return nil
}

func (r *MemoryRepo) SaveLearningPath(ctx context.Context, analysisID string, weeks []Week) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.analyses[analysisID]; !ok {
		return ErrNotFound
	}
	stored := make([]Week, len(weeks))
	for i, w := range weeks {
		w.AnalysisID = analysisID
		stored[i] = w
	}
	r.weeks[analysisID] = stored
	return nil
}

func (r *MemoryRepo) GetAnalysis(ctx context.Context, analysisID string) (Analysis, error) {
	if err := ctx.Err(); err != nil {
		return Analysis{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.analyses[analysisID]
	if !ok {
		return Analysis{}, ErrNotFound
	}
	return a, nil
}

func (r *MemoryRepo) ListAnalyses(ctx context.Context, filter ListFilter) ([]Analysis, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	out := make([]Analysis, 0, len(r.analyses))
	for _, a := range r.analyses {
		if filter.UserID != "" && a.UserID != filter.UserID {
			continue
		}
		out = append(out, a)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].AnalyzedAt.Equal(out[j].AnalyzedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].AnalyzedAt.After(out[j].AnalyzedAt)
	})

	offset := max(filter.Offset, 0)
	if offset >= len(out) {
		return []Analysis{}, nil
	}
	end := len(out)
	if filter.Limit > 0 && offset+filter.Limit < end {
		end = offset + filter.Limit
	}
	return out[offset:end], nil
}

func (r *MemoryRepo) ListLearningPath(ctx context.Context, analysisID string) ([]Week, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	weeks := r.weeks[analysisID]
	out := make([]Week, len(weeks))
	copy(out, weeks)
	sort.SliceStable(out, func(i, j int) bool { return out[i].WeekNumber < out[j].WeekNumber })
	return out, nil
}
