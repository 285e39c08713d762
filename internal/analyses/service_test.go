package analyses

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skillgap-backend/internal/catalog"
	"skillgap-backend/internal/extract"
	"skillgap-backend/internal/gap"
	"skillgap-backend/internal/history"
	"skillgap-backend/internal/jobs"
	"skillgap-backend/internal/plans"
	"skillgap-backend/internal/queue"
	"skillgap-backend/internal/resumes"
	"skillgap-backend/internal/shared/storage/object"
	"skillgap-backend/internal/shared/storage/object/local"
	"skillgap-backend/internal/shared/telemetry"
	"skillgap-backend/internal/skills"
)

const devopsResume = "Jane Doe\njane@example.com\nSkills: Python, Docker, Kubernetes, Linux"

type stubQueue struct {
	mu   sync.Mutex
	sent []queue.Message
	err  error
}

func (q *stubQueue) Send(_ context.Context, msg queue.Message) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return q.err
	}
	q.sent = append(q.sent, msg)
	return nil
}

func newTestService(t *testing.T) (*Service, *history.MemoryRepo) {
	t.Helper()
	hist := history.NewMemoryRepo()
	cat := catalog.NewMemoryRepo()
	_, err := catalog.Seed(context.Background(), cat)
	require.NoError(t, err)

	ext := skills.NewExtractor(skills.DefaultDictionary())
	text := extract.New(nil)
	n := 0
	return &Service{
		Parser:    resumes.NewParser(text, ext),
		Extractor: text,
		Jobs:      jobs.NewBuilder(nil, ext),
		Analyzer:  gap.NewAnalyzer(gap.KMeans{Seed: 7}),
		Planner:   plans.NewAllocator(cat, hist),
		History:   hist,
		Now:       func() time.Time { return time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC) },
		NewID: func() string {
			n++
			return fmt.Sprintf("a-%d", n)
		},
	}, hist
}

func TestAnalyzeTextRunsPipelineAndPersists(t *testing.T) {
	svc, hist := newTestService(t)
	ctx := telemetry.WithRequestID(context.Background(), "req-1")

	report, err := svc.AnalyzeText(ctx, TextRequest{UserID: "guest:me", Text: devopsResume, Query: "DevOps engineer"})
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, report.Status)
	assert.True(t, report.Result.HasResults())

	assert.Equal(t, "a-1", report.AnalysisID)
	assert.True(t, report.Persisted)
	assert.NotEmpty(t, report.Result.AnalyzedJobs)
	assert.Equal(t, len(report.Result.AnalyzedJobs), report.Result.TotalJobsAnalyzed)
	assert.Contains(t, report.Summary, fmt.Sprintf("Analyzed %d jobs", report.Result.TotalJobsAnalyzed))
	assert.Contains(t, report.Result.MatchingNames(), "Docker")
	assert.Contains(t, report.Result.MissingNames(), "Jenkins")
	assert.Equal(t, report.Plan.Text, report.Result.LearningPath)
	assert.InDelta(t, report.Result.SimpleMatchPercentage(), report.SimpleMatchPercentage, 1e-9)

	stored, err := hist.GetAnalysis(context.Background(), "a-1")
	require.NoError(t, err)
	assert.Equal(t, "guest:me", stored.UserID)
	assert.Equal(t, "Jane Doe", stored.UserName)
	assert.Equal(t, pastedFileName, stored.ResumeFilename)
	assert.Equal(t, "DevOps engineer", stored.Query)
	assert.Equal(t, report.Result.MatchPercentage, stored.MatchPercentage)
	assert.True(t, stored.LearningPathGenerated)
	assert.Equal(t, time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC), stored.AnalyzedAt)

	weeks, err := hist.ListLearningPath(context.Background(), "a-1")
	require.NoError(t, err)
	assert.Len(t, weeks, report.Plan.ScheduledWeeks())
}

func TestAnalyzeTextValidation(t *testing.T) {
	svc, hist := newTestService(t)

	_, err := svc.AnalyzeText(context.Background(), TextRequest{Text: devopsResume})
	require.ErrorIs(t, err, ErrInvalidRequest)
	assert.Contains(t, err.Error(), "query is required")

	_, err = svc.AnalyzeText(context.Background(), TextRequest{Text: "   ", Query: "devops"})
	require.ErrorIs(t, err, ErrInvalidRequest)
	assert.Contains(t, err.Error(), "text is required")

	_, err = svc.AnalyzeText(context.Background(), TextRequest{Text: "x", Query: "devops", MaxResults: 500})
	require.ErrorIs(t, err, ErrInvalidRequest)

	items, err := hist.ListAnalyses(context.Background(), history.ListFilter{})
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestAnalyzeTextWithoutSkillsStillCompletes(t *testing.T) {
	svc, _ := newTestService(t)
	report, err := svc.AnalyzeText(context.Background(), TextRequest{Text: "zzz qqq", Query: "devops"})
	require.NoError(t, err)
	assert.Empty(t, report.Result.MatchingSkills)
	assert.Equal(t, "None", report.Result.MatchingNames())
	assert.NotEmpty(t, report.Result.MissingSkills)
}

func TestAnalyzeFileRejectsInvalidUpload(t *testing.T) {
	svc, hist := newTestService(t)

	_, err := svc.AnalyzeFile(context.Background(), FileRequest{FileName: "cv.exe", Data: []byte("x"), Query: "devops"})
	require.ErrorIs(t, err, resumes.ErrInvalidFile)
	assert.True(t, IsInputError(err))

	_, err = svc.AnalyzeFile(context.Background(), FileRequest{FileName: "scan.png", Data: []byte{1, 2, 3}, Query: "devops"})
	require.ErrorIs(t, err, resumes.ErrInvalidFile)
	assert.True(t, IsInputError(err))
	assert.NotErrorIs(t, err, extract.ErrOCRUnavailable)

	items, err := hist.ListAnalyses(context.Background(), history.ListFilter{})
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestAnalyzeFilePlainText(t *testing.T) {
	svc, hist := newTestService(t)
	report, err := svc.AnalyzeFile(context.Background(), FileRequest{
		UserID:   "guest:me",
		UserName: "J. Doe",
		FileName: "cv.txt",
		Data:     []byte(devopsResume),
		Query:    "sre",
	})
	require.NoError(t, err)

	stored, err := hist.GetAnalysis(context.Background(), report.AnalysisID)
	require.NoError(t, err)
	assert.Equal(t, "cv.txt", stored.ResumeFilename)
	assert.Equal(t, "J. Doe", stored.UserName)
}

func TestAnalyzeWithoutHistory(t *testing.T) {
	svc, _ := newTestService(t)
	svc.History = nil
	svc.Planner.History = nil

	report, err := svc.AnalyzeText(context.Background(), TextRequest{Text: devopsResume, Query: "devops"})
	require.NoError(t, err)
	assert.False(t, report.Persisted)
	assert.NotEmpty(t, report.Plan.Text)
}

func TestEnqueueRequiresQueue(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Enqueue(context.Background(), FileRequest{FileName: "cv.txt", Data: []byte("x"), Query: "devops"})
	assert.ErrorIs(t, err, ErrAsyncDisabled)
}

func TestEnqueueStoresUploadAndSends(t *testing.T) {
	svc, hist := newTestService(t)
	q := &stubQueue{}
	svc.Queue = q
	svc.Store = local.New(t.TempDir())
	ctx := telemetry.WithRequestID(context.Background(), "req-9")

	queued, err := svc.Enqueue(ctx, FileRequest{
		UserID:   "guest:me",
		FileName: "cv.txt",
		Data:     []byte(devopsResume),
		Query:    " devops ",
	})
	require.NoError(t, err)
	assert.Equal(t, StatusQueued, queued.Status)

	require.Len(t, q.sent, 1)
	msg := q.sent[0]
	assert.Equal(t, queued.AnalysisID, msg.AnalysisID)
	assert.Equal(t, "req-9", msg.RequestID)
	assert.Equal(t, "devops", msg.Query)
	assert.Equal(t, extract.MimeText, msg.ContentType)
	assert.Equal(t, "2025-06-01T09:00:00Z", msg.EnqueuedAt)
	assert.Equal(t, queue.MessageVersion, msg.Version)

	rc, err := svc.Store.Open(ctx, msg.FileKey)
	require.NoError(t, err)
	body, _ := io.ReadAll(rc)
	rc.Close()
	assert.Equal(t, devopsResume, string(body))

	_, err = hist.GetAnalysis(ctx, msg.AnalysisID)
	assert.ErrorIs(t, err, history.ErrNotFound)
}

func TestEnqueueRejectsInvalidFile(t *testing.T) {
	svc, _ := newTestService(t)
	q := &stubQueue{}
	svc.Queue = q
	svc.Store = local.New(t.TempDir())

	_, err := svc.Enqueue(context.Background(), FileRequest{FileName: "cv.txt", Query: "devops"})
	require.ErrorIs(t, err, resumes.ErrInvalidFile)

	_, err = svc.Enqueue(context.Background(), FileRequest{FileName: "scan.png", Data: []byte{1, 2, 3}, Query: "devops"})
	require.ErrorIs(t, err, resumes.ErrInvalidFile)
	assert.Empty(t, q.sent)
}

func TestProcessAnalysisCompletesQueuedUpload(t *testing.T) {
	svc, hist := newTestService(t)
	q := &stubQueue{}
	svc.Queue = q
	svc.Store = local.New(t.TempDir())
	ctx := context.Background()

	_, err := svc.Enqueue(ctx, FileRequest{UserID: "guest:me", FileName: "cv.txt", Data: []byte(devopsResume), Query: "devops"})
	require.NoError(t, err)
	msg := q.sent[0]

	require.NoError(t, svc.ProcessAnalysis(ctx, msg))
	stored, err := hist.GetAnalysis(ctx, msg.AnalysisID)
	require.NoError(t, err)
	assert.Equal(t, "guest:me", stored.UserID)
	assert.Contains(t, stored.MatchingSkills, "Docker")

	rc, err := svc.Store.Open(ctx, msg.FileKey+".extracted.txt")
	require.NoError(t, err)
	rc.Close()

	// a redelivery is acknowledged without running again
	require.NoError(t, svc.ProcessAnalysis(ctx, msg))
	items, err := hist.ListAnalyses(ctx, history.ListFilter{})
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestProcessAnalysisPermanentFailures(t *testing.T) {
	svc, _ := newTestService(t)
	svc.Store = local.New(t.TempDir())
	ctx := context.Background()

	err := svc.ProcessAnalysis(ctx, queue.Message{AnalysisID: "gone", FileKey: "owner/missing.txt", FileName: "cv.txt"})
	assert.ErrorIs(t, err, ErrUnprocessable)
	assert.ErrorIs(t, err, object.ErrNotFound)

	obj, err := svc.Store.Save(ctx, "owner", "scan.png", bytes.NewReader([]byte{0x89, 'P', 'N', 'G'}))
	require.NoError(t, err)
	err = svc.ProcessAnalysis(ctx, queue.Message{AnalysisID: "img", FileKey: obj.Key, FileName: "scan.png"})
	assert.ErrorIs(t, err, ErrUnprocessable)
	assert.ErrorIs(t, err, extract.ErrOCRUnavailable)
}

func TestProcessAnalysisWithoutStore(t *testing.T) {
	svc, _ := newTestService(t)
	err := svc.ProcessAnalysis(context.Background(), queue.Message{AnalysisID: "x", FileKey: "k", FileName: "cv.txt"})
	assert.ErrorIs(t, err, ErrAsyncDisabled)
}
