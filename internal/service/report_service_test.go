package service

import (
	"bytes"
	"context"
	"encoding/json"
	"image/png"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"learning_copilot_backend/internal/config"
	"learning_copilot_backend/internal/model"
	"learning_copilot_backend/internal/repository"
	"learning_copilot_backend/internal/search"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testReport() *model.StudentReport {
	return &model.StudentReport{
		ID:           "r1",
		StudentName:  "Avery Patel",
		GradeLevel:   6,
		Subject:      "Science",
		SchoolYear:   "2026/2027",
		Term:         "Autumn term",
		Strengths:    []string{"asks thoughtful questions during class discussion", "shows strong problem-solving skills"},
		Improvements: []string{"should take more care presenting written work"},
	}
}

func TestRenderAssessmentMentionsStudent(t *testing.T) {
	svc := &ReportService{}
	report := testReport()

	text, err := svc.renderAssessment(report, "Avery")
	require.NoError(t, err)

	assert.Contains(t, text, "Avery Patel")
	assert.Contains(t, text, "Science")
	assert.Contains(t, text, report.Strengths[0])
	assert.Contains(t, text, report.Improvements[0])
}

func TestRenderReportHTML(t *testing.T) {
	report := testReport()
	report.AssessmentText = "Solid term overall."

	out, err := renderReportHTML(report)
	require.NoError(t, err)

	html := string(out)
	assert.Contains(t, html, "Avery Patel")
	assert.Contains(t, html, "Solid term overall.")
	assert.Contains(t, html, "<li>shows strong problem-solving skills</li>")
}

func TestRenderReportHTMLEscapesContent(t *testing.T) {
	report := testReport()
	report.AssessmentText = `<script>alert("x")</script>`

	out, err := renderReportHTML(report)
	require.NoError(t, err)
	assert.NotContains(t, string(out), "<script>alert")
}

func TestRenderReportPDF(t *testing.T) {
	report := testReport()
	report.AssessmentText = "Solid term overall."

	out, err := renderReportPDF(report)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")), "output must be a PDF document")
}

func TestPlaceholderImageIsValidPNG(t *testing.T) {
	data, err := placeholderImage("Avery Patel", "Science")
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 512, img.Bounds().Dx())
	assert.Equal(t, 512, img.Bounds().Dy())
}

func TestPickReturnsDistinctPhrases(t *testing.T) {
	got := pick(strengthPhrases, 2)

	require.Len(t, got, 2)
	assert.NotEqual(t, got[0], got[1])
}

func TestRenderAssessmentConcurrent(t *testing.T) {
	svc := &ReportService{}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				text, err := svc.renderAssessment(testReport(), "Avery")
				assert.NoError(t, err)
				assert.Contains(t, text, "Avery Patel")
			}
		}()
	}
	wg.Wait()
}

func TestListReportsSendsGradeFilter(t *testing.T) {
	var gotFilter string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var q search.Query
		require.NoError(t, json.NewDecoder(r.Body).Decode(&q))
		gotFilter = q.Filter
		json.NewEncoder(w).Encode(map[string]interface{}{"value": []interface{}{}})
	}))
	defer srv.Close()

	svc := &ReportService{ReportRepo: repository.NewReportRepository(search.NewClient(config.SearchConfig{Endpoint: srv.URL, APIVersion: "2023-11-01"}))}

	grade := 6
	_, err := svc.ListReports(context.Background(), "Science", &grade, 10)
	require.NoError(t, err)

	assert.Contains(t, gotFilter, "subject eq 'Science'")
	assert.Contains(t, gotFilter, "grade_level eq 6")
}
