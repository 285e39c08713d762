package catalog

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// MemoryRepo is an in-memory Repo.
type MemoryRepo struct {
	mu     sync.RWMutex
	nextID int64
	data   []Resource
}

// NewMemoryRepo constructs an empty MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{}
}

func (r *MemoryRepo) Lookup(ctx context.Context, skill string) ([]Resource, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	key := strings.ToLower(strings.TrimSpace(skill))

	r.mu.RLock()
	var out []Resource
	for _, res := range r.data {
		if strings.ToLower(res.Skill) == key {
			out = append(out, res)
		}
	}
	r.mu.RUnlock()

	sortByDifficulty(out)
	return out, nil
}

func (r *MemoryRepo) List(ctx context.Context) ([]Resource, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	out := make([]Resource, len(r.data))
	copy(out, r.data)
	r.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i].Skill) < strings.ToLower(out[j].Skill)
	})
	return out, nil
}

func (r *MemoryRepo) Count(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.data), nil
}

func (r *MemoryRepo) Insert(ctx context.Context, resources []Resource) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, res := range resources {
		r.nextID++
		res.ID = r.nextID
		r.data = append(r.data, res)
	}
	return nil
}

// sortByDifficulty orders by difficulty rank, keeping insertion order on ties.
func sortByDifficulty(list []Resource) {
	sort.SliceStable(list, func(i, j int) bool {
		return DifficultyRank(list[i].Difficulty) < DifficultyRank(list[j].Difficulty)
	})
}
