package jobs

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/sync/errgroup"

	"skillgap-backend/internal/shared/metrics"
	"skillgap-backend/internal/shared/telemetry"
	"skillgap-backend/internal/skills"
)

const (
	DefaultMaxResults = 50
	DefaultMaxPages   = 5
)

var errNoSource = errors.New("no job source configured")

// Builder assembles the job corpus for an analysis.
type Builder struct {
	Source    Source
	Extractor *skills.Extractor
	Synthetic *SyntheticCorpus
	// Parallel fetches all pages at once. Results are still assembled in
	// page order with the same short-page cut-off.
	Parallel bool
	MaxPages int
	PageSize int
}

// NewBuilder returns a builder with default paging and the embedded corpus.
func NewBuilder(src Source, extractor *skills.Extractor) *Builder {
	return &Builder{
		Source:    src,
		Extractor: extractor,
		Synthetic: DefaultSyntheticCorpus(),
		MaxPages:  DefaultMaxPages,
		PageSize:  defaultPageSize,
	}
}

// FetchJobs returns up to maxResults jobs for query. Any source failure is
// recovered by returning the synthetic corpus, so the result is never an
// error.
func (b *Builder) FetchJobs(ctx context.Context, query string, maxResults int) []Job {
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}

	jobs, err := b.fetchLive(ctx, query, maxResults)
	if err == nil {
		telemetry.Info("jobs.fetched", map[string]any{"query": query, "count": len(jobs), "source": "live"})
		return jobs
	}

	fields := map[string]any{"query": query, "error": err.Error()}
	var srcErr *SourceError
	if errors.As(err, &srcErr) {
		fields["page"] = srcErr.Page
		fields["status"] = srcErr.Status
	}
	if errors.Is(err, errNoSource) {
		telemetry.Info("jobs.synthetic", fields)
	} else {
		telemetry.Warn("jobs.source_fallback", fields)
		metrics.IncSourceFallback()
	}
	return b.synthetic().Jobs(query)
}

func (b *Builder) synthetic() *SyntheticCorpus {
	if b.Synthetic == nil {
		b.Synthetic = DefaultSyntheticCorpus()
	}
	return b.Synthetic
}

func (b *Builder) pageSize() int {
	if b.PageSize <= 0 {
		return defaultPageSize
	}
	return b.PageSize
}

// pageCount is ceil(maxResults/pageSize) capped at MaxPages.
func (b *Builder) pageCount(maxResults int) int {
	size := b.pageSize()
	pages := (maxResults + size - 1) / size
	limit := b.MaxPages
	if limit <= 0 {
		limit = DefaultMaxPages
	}
	if pages > limit {
		pages = limit
	}
	return pages
}

func (b *Builder) fetchLive(ctx context.Context, query string, maxResults int) ([]Job, error) {
	if b.Source == nil {
		return nil, errNoSource
	}
	pages := b.pageCount(maxResults)

	var (
		results [][]Posting
		err     error
	)
	if b.Parallel {
		results, err = b.fetchParallel(ctx, query, pages)
	} else {
		results, err = b.fetchSequential(ctx, query, pages, maxResults)
	}
	if err != nil {
		return nil, err
	}

	postings := assemble(results, b.pageSize())
	if len(postings) > maxResults {
		postings = postings[:maxResults]
	}
	out := make([]Job, 0, len(postings))
	for _, p := range postings {
		out = append(out, b.toJob(p))
	}
	return out, nil
}

func (b *Builder) fetchSequential(ctx context.Context, query string, pages, maxResults int) ([][]Posting, error) {
	var (
		out   [][]Posting
		total int
	)
	for page := 1; page <= pages && total < maxResults; page++ {
		got, err := b.Source.Search(ctx, query, page)
		if err != nil {
			return nil, err
		}
		out = append(out, got)
		total += len(got)
		if len(got) < b.pageSize() {
			break
		}
	}
	return out, nil
}

func (b *Builder) fetchParallel(ctx context.Context, query string, pages int) ([][]Posting, error) {
	out := make([][]Posting, pages)
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < pages; i++ {
		page := i + 1
		g.Go(func() error {
			got, err := b.Source.Search(gctx, query, page)
			if err != nil {
				return err
			}
			out[page-1] = got
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// assemble concatenates pages in order, stopping after the first short page.
func assemble(pages [][]Posting, size int) []Posting {
	var out []Posting
	for _, p := range pages {
		out = append(out, p...)
		if len(p) < size {
			break
		}
	}
	return out
}

func (b *Builder) toJob(p Posting) Job {
	job := Job{
		ID:          strings.TrimSpace(string(p.ID)),
		Title:       p.Title,
		Company:     p.Company.DisplayName,
		Location:    p.Location.DisplayName,
		Description: StripHTML(p.Description),
		URL:         p.RedirectURL,
	}
	if p.SalaryMin != nil {
		job.Salary = *p.SalaryMin
	}
	if job.Description != "" && b.Extractor != nil {
		for _, w := range b.Extractor.Extract(job.Description) {
			job.AddRequiredSkill(w.Skill)
		}
	}
	return job
}
