package llm

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/synapse-edu/classroom-service/internal/utils"
)

const defaultModel = "gemini-2.0-flash"

// TextGenerator is the opaque text-generation collaborator: one or two
// PDF documents plus a prompt in, text out. Failures surface as errors
// whose text is shown to the master; they never abort the surrounding
// request.
type TextGenerator interface {
	// GenerateFeedback compares a pupil's submission against the
	// reference solution and produces a feedback report.
	GenerateFeedback(ctx context.Context, submissionPDF, referencePDF []byte, spaceName string) (string, error)

	// CheckIntegrity inspects a single submission for academic
	// integrity flags.
	CheckIntegrity(ctx context.Context, submissionPDF []byte) (string, error)

	// SummarizeReports aggregates prior per-pupil reports into a
	// space-level performance summary.
	SummarizeReports(ctx context.Context, reports []string) (string, error)
}

type geminiGenerator struct {
	client *genai.Client
	model  string
	logger utils.Logger
}

// NewGeminiGenerator builds a Gemini-backed TextGenerator.
func NewGeminiGenerator(ctx context.Context, apiKey string, logger utils.Logger) (TextGenerator, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &geminiGenerator{
		client: client,
		model:  defaultModel,
		logger: logger,
	}, nil
}

const feedbackPrompt = `You are an AI teaching assistant for the course %s.
Compare the pupil's submitted assignment (first document) with the reference
solution (second document) and write a feedback report for the pupil.

Instructions:
1. Identify which parts of the submission are correct and which are not.
2. Point out errors or missing steps clearly, referencing the relevant
   sections where possible.
3. Suggest specific concepts the pupil should review.
4. Start with positive feedback before constructive criticism.
5. Structure the report with clear headings.`

const integrityPrompt = `Analyze the attached assignment submission for unusual
patterns that might suggest academic integrity concerns: sudden changes in
writing style or approach, concepts not yet covered in the course, signs of
direct copying, or uncharacteristic perfection. Provide a concise report of
any flags with explanations; if none are found, state so clearly.`

const summaryPrompt = `Here are individual feedback reports for a class's
assignment. Analyze them and summarize the class's overall performance:
common strengths, common areas of struggle, noticeable trends, and
suggestions for the teacher based on these insights.

---
Individual reports:
%s
---
Class performance summary:`

func (g *geminiGenerator) GenerateFeedback(ctx context.Context, submissionPDF, referencePDF []byte, spaceName string) (string, error) {
	parts := []*genai.Part{
		genai.NewPartFromText(fmt.Sprintf(feedbackPrompt, spaceName)),
		genai.NewPartFromBytes(submissionPDF, "application/pdf"),
		genai.NewPartFromBytes(referencePDF, "application/pdf"),
	}
	return g.generate(ctx, parts, "feedback")
}

func (g *geminiGenerator) CheckIntegrity(ctx context.Context, submissionPDF []byte) (string, error) {
	parts := []*genai.Part{
		genai.NewPartFromText(integrityPrompt),
		genai.NewPartFromBytes(submissionPDF, "application/pdf"),
	}
	return g.generate(ctx, parts, "integrity")
}

func (g *geminiGenerator) SummarizeReports(ctx context.Context, reports []string) (string, error) {
	combined := strings.Join(reports, "\n---\n")
	parts := []*genai.Part{
		genai.NewPartFromText(fmt.Sprintf(summaryPrompt, combined)),
	}
	return g.generate(ctx, parts, "summary")
}

func (g *geminiGenerator) generate(ctx context.Context, parts []*genai.Part, kind string) (string, error) {
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, nil)
	if err != nil {
		g.logger.Error("gemini generation failed", "kind", kind, "error", err)
		return "", fmt.Errorf("text generation failed: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("text generation returned no content")
	}
	return text, nil
}

// NewUnavailableGenerator returns a TextGenerator whose calls all fail.
// It stands in when no API key is configured so feedback requests get a
// clear error instead of a nil collaborator.
func NewUnavailableGenerator() TextGenerator {
	return unavailableGenerator{}
}

type unavailableGenerator struct{}

func (unavailableGenerator) GenerateFeedback(ctx context.Context, submissionPDF, referencePDF []byte, spaceName string) (string, error) {
	return "", fmt.Errorf("AI feedback is not configured")
}

func (unavailableGenerator) CheckIntegrity(ctx context.Context, submissionPDF []byte) (string, error) {
	return "", fmt.Errorf("AI feedback is not configured")
}

func (unavailableGenerator) SummarizeReports(ctx context.Context, reports []string) (string, error) {
	return "", fmt.Errorf("AI feedback is not configured")
}

// MockGenerator returns canned responses for tests.
type MockGenerator struct {
	FeedbackText  string
	IntegrityText string
	SummaryText   string
	Err           error
}

func (m *MockGenerator) GenerateFeedback(ctx context.Context, submissionPDF, referencePDF []byte, spaceName string) (string, error) {
	return m.FeedbackText, m.Err
}

func (m *MockGenerator) CheckIntegrity(ctx context.Context, submissionPDF []byte) (string, error) {
	return m.IntegrityText, m.Err
}

func (m *MockGenerator) SummarizeReports(ctx context.Context, reports []string) (string, error) {
	return m.SummaryText, m.Err
}
