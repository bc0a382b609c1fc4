package assess

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ng12-backend/models"
	"ng12-backend/rag"
)

type stubRetriever struct {
	citations []models.Citation
	err       error
	queries   []string
}

func (s *stubRetriever) Retrieve(ctx context.Context, query string, topK int) ([]models.Citation, error) {
	s.queries = append(s.queries, query)
	return s.citations, s.err
}

type stubGenerator struct {
	out   string
	err   error
	calls int
}

func (s *stubGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return s.out, nil
}

func testPatient() *models.Patient {
	return &models.Patient{
		PatientID: "PT-101",
		Age:       62,
		Sex:       "male",
		Symptoms:  []string{"weight loss", "change in bowel habit"},
	}
}

func cite(id, excerpt string) models.Citation {
	return models.Citation{Source: "NG12 PDF", Page: 3, ChunkID: id, Excerpt: excerpt}
}

func TestAssessRetrievalErrorIsConservativeTerminal(t *testing.T) {
	a := NewAssessor(
		&stubRetriever{err: &rag.RetrievalError{Err: errors.New("index unreachable")}},
		&stubGenerator{},
		10,
	)

	resp := a.Assess(context.Background(), testPatient())

	assert.Equal(t, models.CategoryInsufficientEvidence, resp.Category)
	assert.Contains(t, resp.Rationale, "Retrieval failed")
	assert.Equal(t, "Retry retrieval or review NG12 guidance manually.", resp.RecommendedAction)
	assert.Empty(t, resp.Citations)
}

func TestAssessEmptyRetrieval(t *testing.T) {
	gen := &stubGenerator{}
	a := NewAssessor(&stubRetriever{}, gen, 10)

	resp := a.Assess(context.Background(), testPatient())

	assert.Equal(t, models.CategoryInsufficientEvidence, resp.Category)
	assert.Equal(t, "No relevant NG12 guidance could be retrieved for the given symptoms.", resp.Rationale)
	assert.Empty(t, resp.Citations)
	assert.Zero(t, gen.calls, "generation must not run without evidence")
}

func TestAssessAllCandidatesGatedAway(t *testing.T) {
	retr := &stubRetriever{citations: []models.Citation{
		cite("c1", "Refer urgently when fever and night sweats are present."),
	}}
	a := NewAssessor(retr, &stubGenerator{}, 10)

	resp := a.Assess(context.Background(), testPatient())

	assert.Equal(t, models.CategoryInsufficientEvidence, resp.Category)
	assert.Empty(t, resp.Citations)
}

func TestAssessHappyPath(t *testing.T) {
	retr := &stubRetriever{citations: []models.Citation{
		cite("c1", "Refer adults using a suspected cancer pathway referral for colorectal cancer."),
		cite("c2", "Background epidemiology."),
	}}
	gen := &stubGenerator{out: `{"category":"Urgent Referral","rationale":"Excerpt recommends the pathway.","recommended_action":"Refer on the suspected cancer pathway."}`}
	a := NewAssessor(retr, gen, 10)

	resp := a.Assess(context.Background(), testPatient())

	assert.Equal(t, models.CategoryUrgentReferral, resp.Category)
	assert.Equal(t, "Excerpt recommends the pathway.", resp.Rationale)
	require.Len(t, resp.Citations, 1)
	assert.Equal(t, "c1", resp.Citations[0].ChunkID, "best ranked gated excerpt is the single citation")
}

func TestAssessGenerationErrorFallsBackToExcerptPhrases(t *testing.T) {
	// Generation fails, and the single gated excerpt carries an
	// urgent-investigation phrase; evidence is still attached.
	retr := &stubRetriever{citations: []models.Citation{
		cite("c1", "Offer urgent investigation with colonoscopy within two weeks."),
	}}
	a := NewAssessor(retr, &stubGenerator{err: errors.New("model unavailable")}, 10)

	resp := a.Assess(context.Background(), testPatient())

	assert.Equal(t, models.CategoryUrgentInvestigation, resp.Category)
	assert.Equal(t, "Offer urgent investigation.", resp.RecommendedAction)
	require.Len(t, resp.Citations, 1)
	assert.Equal(t, "c1", resp.Citations[0].ChunkID)
}

func TestAssessGenerationErrorPathwayExcerpt(t *testing.T) {
	retr := &stubRetriever{citations: []models.Citation{
		cite("c1", "Refer using a suspected cancer pathway referral."),
	}}
	a := NewAssessor(retr, &stubGenerator{err: errors.New("timeout")}, 10)

	resp := a.Assess(context.Background(), testPatient())

	assert.Equal(t, models.CategoryUrgentReferral, resp.Category)
	assert.Equal(t, "Refer using a suspected cancer pathway referral.", resp.RecommendedAction)
}

func TestAssessGenerationErrorNeutralExcerptStillCites(t *testing.T) {
	retr := &stubRetriever{citations: []models.Citation{
		cite("c1", "This guideline covers recognition in primary care."),
	}}
	a := NewAssessor(retr, &stubGenerator{err: errors.New("quota exceeded")}, 10)

	resp := a.Assess(context.Background(), testPatient())

	assert.Equal(t, models.CategoryInsufficientEvidence, resp.Category)
	assert.Contains(t, resp.Rationale, "Generation failed")
	require.Len(t, resp.Citations, 1, "evidence is real even though synthesis failed")
}

func TestAssessMalformedOutputFallsBack(t *testing.T) {
	retr := &stubRetriever{citations: []models.Citation{
		cite("c1", "Offer urgent investigation."),
	}}
	a := NewAssessor(retr, &stubGenerator{out: "I am sorry, I cannot comply."}, 10)

	resp := a.Assess(context.Background(), testPatient())

	assert.Equal(t, models.CategoryUrgentInvestigation, resp.Category)
	require.Len(t, resp.Citations, 1)
}

func TestAssessBackfillsEmptyFields(t *testing.T) {
	retr := &stubRetriever{citations: []models.Citation{
		cite("c1", "Offer urgent investigation with endoscopy."),
	}}
	gen := &stubGenerator{out: `{"category":"no_urgent_action","rationale":"","recommended_action":""}`}
	a := NewAssessor(retr, gen, 10)

	resp := a.Assess(context.Background(), testPatient())

	// An empty recommended action is backfilled from the excerpt wording and
	// the category follows it.
	assert.Equal(t, models.CategoryUrgentInvestigation, resp.Category)
	assert.Equal(t, "Offer urgent investigation.", resp.RecommendedAction)
	assert.Equal(t, "Recommendation is grounded in the retrieved NG12 excerpt.", resp.Rationale)
}

func TestAssessRuleBeatsModelRanking(t *testing.T) {
	// With weight loss + change in bowel habit recorded, the pathway excerpt
	// must be the cited one even though the CT excerpt ranks first in raw
	// similarity order.
	retr := &stubRetriever{citations: []models.Citation{
		cite("ct", "Consider a direct access CT scan to assess for pancreatic cancer in people with weight loss and abdominal pain."),
		cite("pathway", "Refer adults using a suspected cancer pathway referral for colorectal cancer."),
	}}
	gen := &stubGenerator{err: errors.New("force fallback to inspect citation")}
	a := NewAssessor(retr, gen, 10)

	resp := a.Assess(context.Background(), testPatient())

	require.Len(t, resp.Citations, 1)
	assert.Equal(t, "pathway", resp.Citations[0].ChunkID)
}

func TestAssessIsIdempotent(t *testing.T) {
	retr := &stubRetriever{citations: []models.Citation{
		cite("c1", "Refer using a suspected cancer pathway referral."),
	}}
	gen := &stubGenerator{out: `{"category":"urgent_referral","rationale":"r","recommended_action":"a"}`}
	a := NewAssessor(retr, gen, 10)

	first := a.Assess(context.Background(), testPatient())
	second := a.Assess(context.Background(), testPatient())

	assert.Equal(t, first, second)
	require.Len(t, retr.queries, 2)
	assert.Equal(t, retr.queries[0], retr.queries[1], "identical patients produce identical queries")
}
