package jobs

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/xeipuuv/gojsonschema"
)

const (
	DefaultAdzunaBaseURL = "https://api.adzuna.com/v1/api/jobs"
	DefaultAdzunaCountry = "in"
	defaultPageSize      = 10
	maxResponseBytes     = 4 << 20
)

//go:embed adzuna_schema.json
var adzunaSchema []byte

var adzunaSchemaLoader = gojsonschema.NewBytesLoader(adzunaSchema)

// AdzunaSource queries the Adzuna job search API.
type AdzunaSource struct {
	BaseURL        string
	Country        string
	AppID          string
	AppKey         string
	ResultsPerPage int
	Client         *http.Client
}

// NewAdzunaSource returns a source with production defaults.
func NewAdzunaSource(appID, appKey, country string, timeout time.Duration) *AdzunaSource {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &AdzunaSource{
		BaseURL:        DefaultAdzunaBaseURL,
		Country:        country,
		AppID:          appID,
		AppKey:         appKey,
		ResultsPerPage: defaultPageSize,
		Client:         &http.Client{Timeout: timeout},
	}
}

type adzunaPage struct {
	Results []Posting `json:"results"`
}

// Search fetches one result page.
func (s *AdzunaSource) Search(ctx context.Context, query string, page int) ([]Posting, error) {
	if strings.TrimSpace(s.AppID) == "" || strings.TrimSpace(s.AppKey) == "" {
		return nil, ErrMissingCredentials
	}
	if page < 1 {
		page = 1
	}

	endpoint := s.searchURL(query, page)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &SourceError{Page: page, Message: "build request", Cause: err}
	}
	req.Header.Set("Accept", "application/json")

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, &SourceError{Page: page, Message: "request failed", Cause: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &SourceError{Page: page, Status: resp.StatusCode, Message: "read body", Cause: err}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &SourceError{Page: page, Status: resp.StatusCode, Message: "unexpected status"}
	}

	if err := validatePage(body); err != nil {
		return nil, &SourceError{Page: page, Status: resp.StatusCode, Message: "invalid payload", Cause: err}
	}

	var parsed adzunaPage
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, &SourceError{Page: page, Status: resp.StatusCode, Message: "decode payload", Cause: fmt.Errorf("%w: %v", ErrMalformedResponse, err)}
	}
	return parsed.Results, nil
}

func (s *AdzunaSource) searchURL(query string, page int) string {
	base := strings.TrimRight(s.BaseURL, "/")
	if base == "" {
		base = DefaultAdzunaBaseURL
	}
	country := s.Country
	if country == "" {
		country = DefaultAdzunaCountry
	}
	perPage := s.ResultsPerPage
	if perPage <= 0 {
		perPage = defaultPageSize
	}
	params := url.Values{}
	params.Set("app_id", s.AppID)
	params.Set("app_key", s.AppKey)
	params.Set("results_per_page", strconv.Itoa(perPage))
	params.Set("what", query)
	return fmt.Sprintf("%s/%s/search/%d?%s", base, url.PathEscape(country), page, params.Encode())
}

func validatePage(body []byte) error {
	result, err := gojsonschema.Validate(adzunaSchemaLoader, gojsonschema.NewBytesLoader(body))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if result.Valid() {
		return nil
	}
	msgs := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		msgs = append(msgs, field+": "+desc.Description())
	}
	return fmt.Errorf("%w: %s", ErrMalformedResponse, strings.Join(msgs, "; "))
}
