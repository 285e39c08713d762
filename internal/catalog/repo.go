package catalog

import "context"

// Repo stores learning resources keyed by skill name.
type Repo interface {
	// Lookup returns the resources for skill, matched case-insensitively and
	// ordered from beginner to advanced.
	Lookup(ctx context.Context, skill string) ([]Resource, error)
	List(ctx context.Context) ([]Resource, error)
	Count(ctx context.Context) (int, error)
	Insert(ctx context.Context, resources []Resource) error
}
