package analyses

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"skillgap-backend/internal/resumes"
	"skillgap-backend/internal/shared/server/middleware"
	"skillgap-backend/internal/shared/server/respond"
)

// multipart overhead allowed on top of the file limit
const formOverhead = 1 << 20

// Handler wires HTTP handlers to the analyses service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches analysis routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/analyses", h.analyzeFile)
	rg.POST("/analyses/text", h.analyzeText)
}

func (h *Handler) analyzeFile(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, resumes.MaxFileSize+formOverhead)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respond.Error(c, http.StatusRequestEntityTooLarge, "validation_error", "file is too large, maximum is 10 MB", nil)
			return
		}
		respond.Error(c, http.StatusBadRequest, "validation_error", "file is required", nil)
		return
	}
	if err := h.Svc.ValidateUpload(fileHeader.Filename, fileHeader.Size); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		return
	}

	maxResults, err := formInt(c.PostForm("maxResults"))
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "maxResults must be a number", nil)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read file", nil)
		return
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read file", nil)
		return
	}

	req := FileRequest{
		UserID:      middleware.UserIDFromContext(c),
		UserName:    firstNonEmpty(c.PostForm("userName"), middleware.UserNameFromContext(c)),
		FileName:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Data:        data,
		Query:       c.PostForm("query"),
		MaxResults:  maxResults,
	}
	c.Set("query", req.Query)
	ctx := c.Request.Context()

	if async, _ := strconv.ParseBool(c.Query("async")); async {
		queued, err := h.Svc.Enqueue(ctx, req)
		if err != nil {
			h.fail(c, err)
			return
		}
		c.Set("analysisId", queued.AnalysisID)
		respond.Accepted(c, "/api/v1/history/"+queued.AnalysisID, queued)
		return
	}

	report, err := h.Svc.AnalyzeFile(ctx, req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.Set("analysisId", report.AnalysisID)
	respond.OK(c, report)
}

func (h *Handler) analyzeText(c *gin.Context) {
	var req TextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	req.UserID = middleware.UserIDFromContext(c)
	req.UserName = firstNonEmpty(req.UserName, middleware.UserNameFromContext(c))
	c.Set("query", req.Query)

	report, err := h.Svc.AnalyzeText(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.Set("analysisId", report.AnalysisID)
	respond.OK(c, report)
}

func (h *Handler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrInvalidRequest), errors.Is(err, resumes.ErrInvalidFile):
		respond.Error(c, http.StatusBadRequest, "validation_error", validationMessage(err), nil)
	case IsUnreadable(err):
		respond.Error(c, http.StatusUnprocessableEntity, "unreadable_file", "could not read text from the file", nil)
	case errors.Is(err, ErrAsyncDisabled):
		respond.Error(c, http.StatusServiceUnavailable, "async_unavailable", "async analyses are not enabled", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "analysis failed", nil)
	}
}

func validationMessage(err error) string {
	var ve *resumes.ValidationError
	if errors.As(err, &ve) {
		return ve.Error()
	}
	msg := err.Error()
	if _, rest, ok := strings.Cut(msg, ErrInvalidRequest.Error()+": "); ok {
		return rest
	}
	return msg
}

func formInt(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
