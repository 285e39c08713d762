package analyses

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"skillgap-backend/internal/extract"
	"skillgap-backend/internal/gap"
	"skillgap-backend/internal/history"
	"skillgap-backend/internal/jobs"
	"skillgap-backend/internal/plans"
	"skillgap-backend/internal/queue"
	"skillgap-backend/internal/resumes"
	"skillgap-backend/internal/shared/metrics"
	"skillgap-backend/internal/shared/storage/object"
	"skillgap-backend/internal/shared/telemetry"
)

const pastedFileName = "pasted-resume.txt"

// Service runs the analysis pipeline: parse, fetch jobs, analyze, plan and
// persist. Planner.History should be the same repo as History.
type Service struct {
	Parser    *resumes.Parser
	Extractor *extract.Extractor
	Jobs      *jobs.Builder
	Analyzer  *gap.Analyzer
	Planner   *plans.Allocator
	History   history.Repo
	Store     object.Store
	Queue     queue.Client
	// MaxResults applies when a request leaves it unset.
	MaxResults int
	Now        func() time.Time
	NewID      func() string
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Service) newID() string {
	if s.NewID != nil {
		return s.NewID()
	}
	return uuid.NewString()
}

func (s *Service) maxResults(requested int) int {
	if requested > 0 {
		return requested
	}
	if s.MaxResults > 0 {
		return s.MaxResults
	}
	return jobs.DefaultMaxResults
}

// AnalyzeFile validates and parses an upload, then runs the pipeline on it.
// Invalid or unreadable uploads fail before any job is fetched.
func (s *Service) AnalyzeFile(ctx context.Context, req FileRequest) (Report, error) {
	req.normalize()
	if err := validateRequest(req); err != nil {
		return Report{}, err
	}
	metrics.IncAnalysisStarted()

	resume, err := s.Parser.Parse(ctx, req.FileName, req.ContentType, req.Data)
	if err != nil {
		metrics.IncAnalysisFailed()
		telemetry.Warn("analyses.parse_failed", map[string]any{
			"file":       req.FileName,
			"user_id":    req.UserID,
			"request_id": telemetry.RequestID(ctx),
			"error":      err.Error(),
		})
		return Report{}, err
	}

	return s.run(ctx, runInput{
		id:         s.newID(),
		userID:     req.UserID,
		userName:   req.UserName,
		fileName:   req.FileName,
		query:      req.Query,
		maxResults: req.MaxResults,
	}, resume)
}

// AnalyzeText runs the pipeline on already extracted resume text.
func (s *Service) AnalyzeText(ctx context.Context, req TextRequest) (Report, error) {
	req.normalize()
	if err := validateRequest(req); err != nil {
		return Report{}, err
	}
	metrics.IncAnalysisStarted()

	return s.run(ctx, runInput{
		id:         s.newID(),
		userID:     req.UserID,
		userName:   req.UserName,
		fileName:   req.FileName,
		query:      req.Query,
		maxResults: req.MaxResults,
	}, s.Parser.FromText(req.FileName, req.Text))
}

// ValidateUpload checks an upload's name and size before it is read.
func (s *Service) ValidateUpload(name string, size int64) error {
	if s.Parser == nil {
		return resumes.ValidateFile(name, size)
	}
	return s.Parser.Validate(name, size)
}

// Enqueue stores the upload and hands the analysis to the worker. The
// result becomes visible in history once the worker finishes.
func (s *Service) Enqueue(ctx context.Context, req FileRequest) (Queued, error) {
	if s.Queue == nil || s.Store == nil {
		return Queued{}, ErrAsyncDisabled
	}
	req.normalize()
	if err := validateRequest(req); err != nil {
		return Queued{}, err
	}
	if err := s.ValidateUpload(req.FileName, int64(len(req.Data))); err != nil {
		return Queued{}, err
	}

	obj, err := s.Store.Save(ctx, req.UserID, req.FileName, bytes.NewReader(req.Data))
	if err != nil {
		return Queued{}, fmt.Errorf("store upload: %w", err)
	}

	msg := queue.Message{
		AnalysisID:  s.newID(),
		RequestID:   telemetry.RequestID(ctx),
		UserID:      req.UserID,
		UserName:    req.UserName,
		FileKey:     obj.Key,
		FileName:    req.FileName,
		ContentType: extract.MimeType(req.FileName, req.ContentType, req.Data),
		Query:       req.Query,
		MaxResults:  req.MaxResults,
		EnqueuedAt:  s.now().UTC().Format(time.RFC3339),
		Version:     queue.MessageVersion,
	}
	if err := s.Queue.Send(ctx, msg); err != nil {
		return Queued{}, fmt.Errorf("enqueue analysis: %w", err)
	}

	telemetry.Info("analyses.enqueued", map[string]any{
		"analysis_id": msg.AnalysisID,
		"request_id":  msg.RequestID,
		"user_id":     msg.UserID,
		"file_key":    msg.FileKey,
	})
	return Queued{AnalysisID: msg.AnalysisID, Status: StatusQueued, FileKey: obj.Key}, nil
}

// ProcessAnalysis runs a queued analysis. Redelivered messages whose
// analysis is already stored are skipped. Failures that no retry can fix
// are wrapped with ErrUnprocessable.
func (s *Service) ProcessAnalysis(ctx context.Context, msg queue.Message) error {
	if s.History != nil {
		_, err := s.History.GetAnalysis(ctx, msg.AnalysisID)
		if err == nil {
			telemetry.Info("analyses.duplicate_delivery", map[string]any{
				"analysis_id": msg.AnalysisID,
				"request_id":  msg.RequestID,
			})
			return nil
		}
		if !errors.Is(err, history.ErrNotFound) {
			return fmt.Errorf("check analysis %s: %w", msg.AnalysisID, err)
		}
	}
	if s.Store == nil || s.Extractor == nil {
		return ErrAsyncDisabled
	}
	metrics.IncAnalysisStarted()

	text, err := s.Extractor.FromStore(ctx, s.Store, msg.FileKey, msg.ContentType, msg.FileName)
	if err != nil {
		metrics.IncAnalysisFailed()
		if permanent(err) {
			return fmt.Errorf("%w: %w", ErrUnprocessable, err)
		}
		return err
	}

	_, err = s.run(ctx, runInput{
		id:         msg.AnalysisID,
		userID:     msg.UserID,
		userName:   msg.UserName,
		fileName:   msg.FileName,
		query:      msg.Query,
		maxResults: msg.MaxResults,
	}, s.Parser.FromText(msg.FileName, text))
	return err
}

func (s *Service) run(ctx context.Context, in runInput, resume resumes.Resume) (Report, error) {
	started := time.Now()
	analyzedAt := s.now().UTC()

	corpus := s.Jobs.FetchJobs(ctx, in.query, s.maxResults(in.maxResults))
	result := s.Analyzer.Analyze(resume, corpus)
	plan := s.Planner.Generate(ctx, result)
	result.LearningPath = plan.Text

	if !result.HasResults() {
		telemetry.Warn("analyses.no_results", map[string]any{
			"analysis_id": in.id,
			"request_id":  telemetry.RequestID(ctx),
			"query":       in.query,
			"jobs":        result.TotalJobsAnalyzed,
		})
	}

	report := Report{
		AnalysisID:            in.id,
		Status:                StatusCompleted,
		Summary:               result.Summary(),
		SimpleMatchPercentage: result.SimpleMatchPercentage(),
		Result:                result,
		Plan:                  plan,
	}

	if s.History != nil {
		userName := in.userName
		if userName == "" {
			userName = resume.UserName
		}
		err := s.History.CreateAnalysis(ctx, history.Analysis{
			ID:              in.id,
			UserID:          in.userID,
			UserName:        userName,
			ResumeFilename:  in.fileName,
			Query:           in.query,
			MatchingSkills:  result.MatchingNames(),
			MissingSkills:   result.MissingNames(),
			MatchPercentage: result.MatchPercentage,
			JobsAnalyzed:    result.TotalJobsAnalyzed,
			AnalyzedAt:      analyzedAt,
		})
		if err != nil {
			return s.fail(ctx, in, fmt.Errorf("save analysis: %w", err))
		}
		if err := s.Planner.Persist(ctx, in.id, plan); err != nil {
			return s.fail(ctx, in, err)
		}
		report.Persisted = true
	}

	metrics.IncAnalysisCompleted()
	metrics.ObserveAnalysisSince(started)
	telemetry.Info("analyses.completed", map[string]any{
		"analysis_id":   in.id,
		"request_id":    telemetry.RequestID(ctx),
		"user_id":       in.userID,
		"query":         in.query,
		"jobs":          result.TotalJobsAnalyzed,
		"match":         result.MatchPercentage,
		"method":        result.Method,
		"missing":       len(result.MissingSkills),
		"resume_skills": len(resume.Skills),
		"duration_ms":   time.Since(started).Milliseconds(),
	})
	return report, nil
}

func (s *Service) fail(ctx context.Context, in runInput, err error) (Report, error) {
	metrics.IncAnalysisFailed()
	telemetry.Error("analyses.failed", map[string]any{
		"analysis_id": in.id,
		"request_id":  telemetry.RequestID(ctx),
		"user_id":     in.userID,
		"error":       err.Error(),
	})
	return Report{}, err
}
