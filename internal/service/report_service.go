package service

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"image/color"
	"math/rand"
	"strings"
	texttemplate "text/template"
	"time"

	"learning_copilot_backend/internal/ai"
	"learning_copilot_backend/internal/model"
	"learning_copilot_backend/internal/repository"
	"learning_copilot_backend/internal/util"
	"learning_copilot_backend/pkg/logger"

	"github.com/fogleman/gg"
	"github.com/go-pdf/fpdf"
	"go.uber.org/zap"
	"golang.org/x/image/font/basicfont"
)

// ReportService synthesizes fake student reports for demo and test data:
// templated assessment text, an AI-generated cover image (with a locally
// drawn placeholder when the image model is unavailable), rendered to both
// HTML and PDF, uploaded to object storage and indexed.
type ReportService struct {
	AI         *ai.Client
	Storage    *StorageService
	ReportRepo *repository.ReportRepository
	EventRepo  *repository.EventRepository
}

func NewReportService(aiClient *ai.Client, storage *StorageService, reportRepo *repository.ReportRepository, eventRepo *repository.EventRepository) *ReportService {
	return &ReportService{
		AI:         aiClient,
		Storage:    storage,
		ReportRepo: reportRepo,
		EventRepo:  eventRepo,
	}
}

var (
	firstNames = []string{"Alex", "Sam", "Jordan", "Taylor", "Morgan", "Riley", "Casey", "Jamie", "Avery", "Quinn"}
	lastNames  = []string{"Smith", "Jones", "Taylor", "Brown", "Williams", "Wilson", "Johnson", "Davies", "Patel", "Walker"}
	subjects   = []string{"Mathematics", "Science", "English", "History", "Geography", "Art"}

	strengthPhrases = []string{
		"consistently completes set work to a high standard",
		"asks thoughtful questions during class discussion",
		"shows strong problem-solving skills",
		"works well both independently and in groups",
		"demonstrates genuine curiosity about the subject",
	}
	improvementPhrases = []string{
		"would benefit from reviewing feedback before starting new work",
		"should take more care presenting written work",
		"could contribute more frequently in class discussion",
		"needs to allow more time for checking answers",
		"should practise past exercises to consolidate skills",
	}
)

const assessmentTemplate = `{{.StudentName}} has made {{.Descriptor}} progress in {{.Subject}} this {{.Term}}. {{.FirstName}} {{.Strength}}, and {{.Strength2}}. To keep improving, {{.FirstName}} {{.Improvement}}. Overall effort this term has been {{.Effort}}.`

const reportHTMLTemplate = `<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <title>Student Report - {{.StudentName}}</title>
  <style>
    body { font-family: Georgia, serif; margin: 2em auto; max-width: 48em; }
    h1 { border-bottom: 2px solid #2c3e50; padding-bottom: 0.3em; }
    .meta { color: #555; margin-bottom: 1.5em; }
    ul { margin: 0.5em 0; }
  </style>
</head>
<body>
  <h1>Student Report</h1>
  <p class="meta">{{.StudentName}} &middot; Grade {{.GradeLevel}} &middot; {{.Subject}} &middot; {{.SchoolYear}} {{.Term}}</p>
  {{if .ImageURL}}<img src="{{.ImageURL}}" alt="report illustration" width="320">{{end}}
  <h2>Assessment</h2>
  <p>{{.AssessmentText}}</p>
  <h2>Strengths</h2>
  <ul>{{range .Strengths}}<li>{{.}}</li>{{end}}</ul>
  <h2>Areas for improvement</h2>
  <ul>{{range .Improvements}}<li>{{.}}</li>{{end}}</ul>
</body>
</html>`

// SynthesizeOptions controls a synthesis batch.
type SynthesizeOptions struct {
	Count      int
	GradeLevel *int
	Subject    string
}

// Synthesize produces count fake reports. Individual failures are logged
// and skipped; the batch returns whatever succeeded.
func (s *ReportService) Synthesize(ctx context.Context, requesterID uint, opts SynthesizeOptions) ([]model.StudentReport, error) {
	if opts.Count <= 0 {
		opts.Count = 1
	}
	if opts.Count > 50 {
		opts.Count = 50
	}

	reports := make([]model.StudentReport, 0, opts.Count)
	for i := 0; i < opts.Count; i++ {
		report, err := s.synthesizeOne(ctx, opts)
		if err != nil {
			logger.Log.Error("report synthesis failed", zap.Int("index", i), zap.Error(err))
			continue
		}
		reports = append(reports, *report)
	}

	if s.EventRepo != nil && len(reports) > 0 {
		_ = s.EventRepo.Create(&model.LearningEvent{
			UserID:    requesterID,
			EventType: model.EventReportCreated,
			Detail:    fmt.Sprintf("synthesized %d reports", len(reports)),
			Succeeded: true,
		})
	}
	return reports, nil
}

func (s *ReportService) synthesizeOne(ctx context.Context, opts SynthesizeOptions) (*model.StudentReport, error) {
	firstName := firstNames[rand.Intn(len(firstNames))]
	lastName := lastNames[rand.Intn(len(lastNames))]

	subject := opts.Subject
	if subject == "" {
		subject = subjects[rand.Intn(len(subjects))]
	}
	grade := 1 + rand.Intn(12)
	if opts.GradeLevel != nil {
		grade = *opts.GradeLevel
	}

	report := &model.StudentReport{
		ID:          model.GenerateUUID(),
		StudentName: firstName + " " + lastName,
		GradeLevel:  grade,
		Subject:     subject,
		SchoolYear:  fmt.Sprintf("%d/%d", time.Now().Year(), time.Now().Year()+1),
		Term:        []string{"Autumn term", "Spring term", "Summer term"}[rand.Intn(3)],
		Strengths:   pick(strengthPhrases, 2),
		CreatedAt:   time.Now(),
	}
	report.Improvements = pick(improvementPhrases, 2)

	text, err := s.renderAssessment(report, firstName)
	if err != nil {
		return nil, err
	}
	report.AssessmentText = text

	// Cover image: hosted model first, locally drawn placeholder on failure.
	imageBytes, err := s.AI.GenerateImage(ctx,
		fmt.Sprintf("A warm, child-friendly illustration representing %s for a school report cover, no text", subject), "1024x1024")
	if err != nil {
		logger.Log.Warn("image generation failed, drawing placeholder", zap.Error(err))
		imageBytes, err = placeholderImage(report.StudentName, subject)
		if err != nil {
			return nil, err
		}
	}

	base := fmt.Sprintf("reports/%s", report.ID)

	imageURL, err := s.Storage.Upload(ctx, base+"/cover.png", bytes.NewReader(imageBytes), int64(len(imageBytes)), "image/png")
	if err != nil {
		return nil, util.NewUpstreamError("storage", "image upload", err)
	}
	report.ImageURL = imageURL

	htmlBytes, err := renderReportHTML(report)
	if err != nil {
		return nil, err
	}
	htmlURL, err := s.Storage.Upload(ctx, base+"/report.html", bytes.NewReader(htmlBytes), int64(len(htmlBytes)), util.MimeHTML)
	if err != nil {
		return nil, util.NewUpstreamError("storage", "html upload", err)
	}
	report.HTMLURL = htmlURL

	pdfBytes, err := renderReportPDF(report)
	if err != nil {
		return nil, err
	}
	pdfURL, err := s.Storage.Upload(ctx, base+"/report.pdf", bytes.NewReader(pdfBytes), int64(len(pdfBytes)), util.MimePDF)
	if err != nil {
		return nil, util.NewUpstreamError("storage", "pdf upload", err)
	}
	report.PDFURL = pdfURL

	if err := s.ReportRepo.Save(ctx, report); err != nil {
		return nil, err
	}
	return report, nil
}

func (s *ReportService) renderAssessment(report *model.StudentReport, firstName string) (string, error) {
	tmpl, err := texttemplate.New("assessment").Parse(assessmentTemplate)
	if err != nil {
		return "", err
	}

	data := map[string]string{
		"StudentName": report.StudentName,
		"FirstName":   firstName,
		"Subject":     report.Subject,
		"Term":        strings.ToLower(report.Term),
		"Descriptor":  []string{"excellent", "strong", "steady", "encouraging"}[rand.Intn(4)],
		"Effort":      []string{"outstanding", "very good", "good", "satisfactory"}[rand.Intn(4)],
		"Strength":    report.Strengths[0],
		"Strength2":   report.Strengths[len(report.Strengths)-1],
		"Improvement": report.Improvements[0],
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func renderReportHTML(report *model.StudentReport) ([]byte, error) {
	tmpl, err := template.New("report").Parse(reportHTMLTemplate)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, report); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func renderReportPDF(report *model.StudentReport) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "Student Report")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 6, fmt.Sprintf("%s - Grade %d - %s - %s %s",
		report.StudentName, report.GradeLevel, report.Subject, report.SchoolYear, report.Term))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 13)
	pdf.Cell(0, 8, "Assessment")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 11)
	pdf.MultiCell(0, 5, report.AssessmentText, "", "L", false)
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 13)
	pdf.Cell(0, 8, "Strengths")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 11)
	for _, sline := range report.Strengths {
		pdf.MultiCell(0, 5, "- "+sline, "", "L", false)
	}
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 13)
	pdf.Cell(0, 8, "Areas for improvement")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 11)
	for _, iline := range report.Improvements {
		pdf.MultiCell(0, 5, "- "+iline, "", "L", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

var placeholderPalette = []color.NRGBA{
	{R: 0x4d, G: 0x7c, B: 0xc7, A: 0xff},
	{R: 0x5f, G: 0xb0, B: 0x6e, A: 0xff},
	{R: 0xc7, G: 0x74, B: 0x4d, A: 0xff},
	{R: 0x8e, G: 0x63, B: 0xb8, A: 0xff},
}

// placeholderImage draws a simple initials card so a report never ships
// without a cover.
func placeholderImage(studentName, subject string) ([]byte, error) {
	const size = 512
	dc := gg.NewContext(size, size)

	bg := placeholderPalette[int(studentName[0])%len(placeholderPalette)]
	dc.SetColor(bg)
	dc.Clear()

	initials := ""
	for _, part := range strings.Fields(studentName) {
		initials += strings.ToUpper(string(part[0]))
	}

	dc.SetFontFace(basicfont.Face7x13)
	dc.SetRGB(1, 1, 1)
	dc.DrawCircle(size/2, size/2, size/3)
	dc.SetLineWidth(6)
	dc.Stroke()
	dc.DrawStringAnchored(initials, size/2, size/2, 0.5, 0.5)
	dc.DrawStringAnchored(subject, size/2, size-40, 0.5, 0.5)

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ListReports returns recent synthesized reports, optionally narrowed by
// subject and grade level.
func (s *ReportService) ListReports(ctx context.Context, subject string, grade *int, top int) ([]model.StudentReport, error) {
	if top <= 0 || top > 100 {
		top = 20
	}
	return s.ReportRepo.List(ctx, subject, grade, top)
}

// pick relies on the package-level rand functions, which serialize access,
// so concurrent synthesize requests can share the service.
func pick(pool []string, n int) []string {
	idx := rand.Perm(len(pool))
	if n > len(pool) {
		n = len(pool)
	}
	out := make([]string, 0, n)
	for _, i := range idx[:n] {
		out = append(out, pool[i])
	}
	return out
}
