package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skillgap-backend/internal/analyses"
	"skillgap-backend/internal/bootstrap"
	"skillgap-backend/internal/shared/config"
)

const resumeText = "Jane Doe\njane@example.com\nSkills: Python, Docker, Kubernetes, Linux"

// testBuilder hands every command the same in-memory app so history
// written by one command is visible to the next.
func testBuilder(t *testing.T) appBuilder {
	t.Helper()
	cfg := config.Config{
		Env:            "test",
		LocalStoreDir:  t.TempDir(),
		JWTSecret:      "test-secret",
		SkillMatchMode: "substring",
		JobsMaxResults: 20,
		ClusterSeed:    7,
	}
	app, err := bootstrap.Build(context.Background(), cfg, bootstrap.RoleCLI)
	require.NoError(t, err)
	t.Cleanup(func() { app.Close() })
	return func(context.Context) (*bootstrap.App, error) { return app, nil }
}

func execute(t *testing.T, build appBuilder, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd(build)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestAnalyzeText(t *testing.T) {
	out, err := execute(t, testBuilder(t), "analyze", "--text", resumeText, "--query", "devops engineer")
	require.NoError(t, err)
	assert.Contains(t, out, "Matching skills:")
	assert.Contains(t, out, "Docker")
	assert.Contains(t, out, "Skills to learn:")
	assert.Contains(t, out, "4-WEEK LEARNING PATH")
}

func TestAnalyzeFileJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cv.txt")
	require.NoError(t, os.WriteFile(path, []byte(resumeText), 0o600))

	out, err := execute(t, testBuilder(t), "analyze", "--file", path, "--query", "devops engineer", "--json")
	require.NoError(t, err)

	var report analyses.Report
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.NotEmpty(t, report.AnalysisID)
	assert.True(t, report.Persisted)
	assert.Positive(t, report.Result.TotalJobsAnalyzed)
}

func TestAnalyzeRequiresInput(t *testing.T) {
	_, err := execute(t, testBuilder(t), "analyze", "--query", "devops engineer")
	require.Error(t, err)

	_, err = execute(t, testBuilder(t), "analyze", "--text", "x", "--file", "cv.txt")
	require.Error(t, err)
}

func TestAnalyzeMissingFile(t *testing.T) {
	_, err := execute(t, testBuilder(t), "analyze", "--file", filepath.Join(t.TempDir(), "absent.pdf"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "absent.pdf")
}

func TestAnalyzeShortQueryRejected(t *testing.T) {
	_, err := execute(t, testBuilder(t), "analyze", "--text", resumeText, "--query", "a")
	require.ErrorIs(t, err, analyses.ErrInvalidRequest)
}

func TestHistoryListsAnalyses(t *testing.T) {
	build := testBuilder(t)

	out, err := execute(t, build, "history")
	require.NoError(t, err)
	assert.Contains(t, out, "No analyses yet.")

	_, err = execute(t, build, "analyze", "--text", resumeText, "--query", "devops engineer")
	require.NoError(t, err)

	out, err = execute(t, build, "history", "--limit", "5")
	require.NoError(t, err)
	assert.Contains(t, out, "ANALYZED")
	assert.Contains(t, out, "devops engineer")
	assert.Contains(t, out, "pasted-resume.txt")
}

func TestHistoryRejectsBadLimit(t *testing.T) {
	_, err := execute(t, testBuilder(t), "history", "--limit", "0")
	require.Error(t, err)
}

func TestResources(t *testing.T) {
	build := testBuilder(t)

	out, err := execute(t, build, "resources", "--skill", "docker")
	require.NoError(t, err)
	assert.Contains(t, out, "[Docker] Docker Tutorial for Beginners (YouTube) - Beginner")
	assert.Contains(t, out, "-> https://www.youtube.com/watch?v=fqMOX6JJhGo")

	out, err = execute(t, build, "resources", "--skill", "Apache Beam")
	require.NoError(t, err)
	assert.Contains(t, out, `No resources found for "Apache Beam".`)

	out, err = execute(t, build, "resources")
	require.NoError(t, err)
	assert.Contains(t, out, "[Kubernetes]")
}
