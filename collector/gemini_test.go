package collector

import (
	"context"
	"testing"

	"github.com/disasterlabs/beacon/model"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeGenerativeClient returns a canned response or error.
type fakeGenerativeClient struct {
	response string
	err      error
	prompts  []string
}

func (c *fakeGenerativeClient) GenerateContent(ctx context.Context, prompt string) (string, error) {
	c.prompts = append(c.prompts, prompt)
	return c.response, c.err
}

func TestStripCodeFences(t *testing.T) {
	assert.Equal(t, `["a"]`, stripCodeFences("```json\n[\"a\"]\n```"))
	assert.Equal(t, `["a"]`, stripCodeFences("```\n[\"a\"]\n```"))
	assert.Equal(t, `["a"]`, stripCodeFences(`["a"]`))
}

func TestExtractLocations(t *testing.T) {
	client := &fakeGenerativeClient{response: "```json\n[\"Manhattan, NYC\", \"Brooklyn, NY\"]\n```"}
	analyzer := NewGeminiAnalyzer(client)

	locations := analyzer.ExtractLocations(context.Background(), "Flooding in Manhattan and Brooklyn")
	assert.Equal(t, []string{"Manhattan, NYC", "Brooklyn, NY"}, locations)
	require.Len(t, client.prompts, 1)
	assert.Contains(t, client.prompts[0], "Flooding in Manhattan and Brooklyn")
}

func TestExtractLocationsFailureReturnsEmptyList(t *testing.T) {
	analyzer := NewGeminiAnalyzer(&fakeGenerativeClient{err: errors.New("quota exceeded")})
	assert.Equal(t, []string{}, analyzer.ExtractLocations(context.Background(), "whatever"))

	analyzer = NewGeminiAnalyzer(&fakeGenerativeClient{response: "I could not find any locations."})
	assert.Equal(t, []string{}, analyzer.ExtractLocations(context.Background(), "whatever"))
}

func TestVerifyImage(t *testing.T) {
	client := &fakeGenerativeClient{response: "```json\n{\"is_authentic\": true, \"is_disaster\": true, \"disaster_type\": \"flood\", \"confidence\": \"high\", \"analysis\": \"consistent shadows\", \"verification_status\": \"verified\"}\n```"}
	analyzer := NewGeminiAnalyzer(client)

	result := analyzer.VerifyImage(context.Background(), "https://img.example/flood.jpg", "Disaster: NYC Flood.")

	require.NotNil(t, result.IsAuthentic)
	assert.True(t, *result.IsAuthentic)
	require.NotNil(t, result.IsDisaster)
	assert.True(t, *result.IsDisaster)
	require.NotNil(t, result.DisasterType)
	assert.Equal(t, "flood", *result.DisasterType)
	assert.Equal(t, "high", result.Confidence)
	assert.Equal(t, model.VerificationVerified, result.VerificationStatus)
	assert.Contains(t, client.prompts[0], "Context: Disaster: NYC Flood.")
}

func TestVerifyImageIsTotalOnFailure(t *testing.T) {
	for _, client := range []*fakeGenerativeClient{
		{err: errors.New("upstream down")},
		{response: "sorry, I cannot analyze images"},
	} {
		analyzer := NewGeminiAnalyzer(client)
		result := analyzer.VerifyImage(context.Background(), "https://img.example/x.jpg", "")

		assert.Nil(t, result.IsAuthentic)
		assert.Nil(t, result.IsDisaster)
		assert.Nil(t, result.DisasterType)
		assert.Equal(t, "low", result.Confidence)
		assert.NotEmpty(t, result.Analysis)
		assert.Equal(t, model.VerificationUnverifiable, result.VerificationStatus)
	}
}

func TestVerifyImageNormalizesVocabulary(t *testing.T) {
	// Folded-case answers are kept; anything off-vocabulary collapses to
	// the safe floor.
	analyzer := NewGeminiAnalyzer(&fakeGenerativeClient{
		response: `{"verification_status": "VERIFIED", "confidence": "Medium"}`,
	})
	result := analyzer.VerifyImage(context.Background(), "https://img.example/x.jpg", "")
	assert.Equal(t, model.VerificationVerified, result.VerificationStatus)
	assert.Equal(t, "medium", result.Confidence)

	analyzer = NewGeminiAnalyzer(&fakeGenerativeClient{
		response: `{"verification_status": "probably fine", "confidence": "absolutely"}`,
	})
	result = analyzer.VerifyImage(context.Background(), "https://img.example/x.jpg", "")
	assert.Equal(t, model.VerificationUnverifiable, result.VerificationStatus)
	assert.Equal(t, "low", result.Confidence)
}

func TestVerifyImageFillsMissingStatus(t *testing.T) {
	// A parsable but incomplete answer still yields a total record.
	analyzer := NewGeminiAnalyzer(&fakeGenerativeClient{response: `{"analysis": "inconclusive"}`})
	result := analyzer.VerifyImage(context.Background(), "https://img.example/x.jpg", "")

	assert.Equal(t, model.VerificationUnverifiable, result.VerificationStatus)
	assert.Equal(t, "low", result.Confidence)
}
