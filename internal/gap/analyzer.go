package gap

import (
	"fmt"
	"sort"

	"skillgap-backend/internal/jobs"
	"skillgap-backend/internal/resumes"
	"skillgap-backend/internal/shared/metrics"
	"skillgap-backend/internal/shared/telemetry"
	"skillgap-backend/internal/skills"
)

const (
	clusterWeight = 0.6
	overlapWeight = 0.4
	maxClusters   = 3
)

// Analyzer compares a resume against a job corpus.
type Analyzer struct {
	Clusterer Clusterer
}

// NewAnalyzer returns an analyzer using c, or k-means when c is nil.
func NewAnalyzer(c Clusterer) *Analyzer {
	if c == nil {
		c = KMeans{}
	}
	return &Analyzer{Clusterer: c}
}

// universe is the ordered set of distinct skills required across a corpus.
type universe struct {
	keys   []string
	demand map[string]int
}

func buildUniverse(list []jobs.Job) universe {
	u := universe{demand: map[string]int{}}
	for _, j := range list {
		seen := map[string]struct{}{}
		for _, s := range j.RequiredSkills {
			key := s.Key()
			if key == "" {
				continue
			}
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			if _, ok := u.demand[key]; !ok {
				u.keys = append(u.keys, key)
			}
			u.demand[key]++
		}
	}
	return u
}

// Analyze never fails: empty inputs produce an all-zero result, a resume
// without skills scores 0 without clustering and a clustering error degrades
// the score to the overlap ratio.
func (a *Analyzer) Analyze(resume resumes.Resume, corpus []jobs.Job) Result {
	res := Result{
		Resume:            resume,
		AnalyzedJobs:      corpus,
		MatchingSkills:    []skills.Weighted{},
		MissingSkills:     []skills.Weighted{},
		TotalJobsAnalyzed: len(corpus),
		Method:            MethodEmpty,
	}

	u := buildUniverse(corpus)
	if len(u.keys) == 0 {
		return res
	}

	have := skills.KeySet(resume.Skills)
	for _, key := range u.keys {
		w := skills.Weighted{Skill: skills.New(skills.Capitalize(key)), Frequency: u.demand[key]}
		if _, ok := have[key]; ok {
			res.MatchingSkills = append(res.MatchingSkills, w)
		} else {
			res.MissingSkills = append(res.MissingSkills, w)
		}
	}
	sort.SliceStable(res.MissingSkills, func(i, j int) bool {
		return res.MissingSkills[i].Frequency > res.MissingSkills[j].Frequency
	})

	res.OverlapPercentage = float64(len(res.MatchingSkills)) / float64(len(u.keys)) * 100

	// an all-zero resume vector can still share a cluster with sparse jobs
	if len(have) == 0 {
		res.Method = MethodOverlap
		res.MatchPercentage = 0
		return res
	}

	cluster, err := a.clusterMatch(have, u, corpus)
	if err != nil {
		telemetry.Warn("gap.clustering_fallback", map[string]any{
			"error": err.Error(),
			"jobs":  len(corpus),
		})
		metrics.IncClusteringFallback()
		res.Method = MethodOverlap
		res.MatchPercentage = clamp(res.OverlapPercentage)
		return res
	}

	res.ClusterPercentage = cluster
	res.Method = MethodBlended
	res.MatchPercentage = clamp(clusterWeight*cluster + overlapWeight*res.OverlapPercentage)
	return res
}

// clusterMatch clusters the resume together with every job and returns the
// share of jobs landing in the resume's cluster.
func (a *Analyzer) clusterMatch(have map[string]struct{}, u universe, corpus []jobs.Job) (float64, error) {
	features := featureSpace(have, u)
	if len(features) == 0 {
		return 0, ErrEmptyFeatures
	}
	index := make(map[string]int, len(features))
	for i, f := range features {
		index[f] = i
	}

	vectors := make([][]float64, 0, len(corpus)+1)
	vectors = append(vectors, binaryVector(index, sortedKeys(have)))
	for _, j := range corpus {
		keys := make([]string, 0, len(j.RequiredSkills))
		for _, s := range j.RequiredSkills {
			keys = append(keys, s.Key())
		}
		vectors = append(vectors, binaryVector(index, keys))
	}

	k := min(maxClusters, len(vectors))
	clusterer := a.Clusterer
	if clusterer == nil {
		clusterer = KMeans{}
	}
	assign, err := clusterer.Cluster(vectors, k)
	if err != nil {
		return 0, err
	}
	if len(assign) != len(vectors) {
		return 0, fmt.Errorf("clusterer returned %d assignments for %d vectors", len(assign), len(vectors))
	}

	same := 0
	for _, c := range assign[1:] {
		if c == assign[0] {
			same++
		}
	}
	return float64(same) / float64(len(corpus)) * 100, nil
}

// featureSpace is the sorted union of resume and job skills.
func featureSpace(have map[string]struct{}, u universe) []string {
	set := make(map[string]struct{}, len(have)+len(u.keys))
	for k := range have {
		set[k] = struct{}{}
	}
	for _, k := range u.keys {
		set[k] = struct{}{}
	}
	return sortedKeys(set)
}

func binaryVector(index map[string]int, keys []string) []float64 {
	v := make([]float64, len(index))
	for _, k := range keys {
		if i, ok := index[k]; ok {
			v[i] = 1
		}
	}
	return v
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		if k != "" {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

func clamp(p float64) float64 {
	switch {
	case p < 0:
		return 0
	case p > 100:
		return 100
	default:
		return p
	}
}
