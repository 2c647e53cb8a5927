package collector

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/disasterlabs/beacon/collector/clients"
	"github.com/disasterlabs/beacon/model"
	"github.com/disasterlabs/beacon/utils"
	Logger "github.com/disasterlabs/beacon/utils/log"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	geminiBase    = "https://generativelanguage.googleapis.com/v1beta"
	geminiModel   = "gemini-2.0-flash"
	geminiTimeout = 30 * time.Second
)

// GenerativeClient is the single seam to the text-understanding service.
// Implementations return the model's raw text output; callers must treat it
// as opaque and run it through the defensive decode path below.
type GenerativeClient interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

// GeminiClient calls the Gemini generateContent REST endpoint.
type GeminiClient struct {
	baseURL string
	apiKey  string
	client  *clients.HttpClient
}

func NewGeminiClient() *GeminiClient {
	return NewGeminiClientWithBaseURL(geminiBase, os.Getenv("GEMINI_API_KEY"))
}

func NewGeminiClientWithBaseURL(baseURL string, apiKey string) *GeminiClient {
	return &GeminiClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  clients.NewHttpClient(http.Header{}, []http.Cookie{}, geminiTimeout),
	}
}

func (c *GeminiClient) GenerateContent(ctx context.Context, prompt string) (string, error) {
	payload, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
	})
	if err != nil {
		return "", err
	}

	uri := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, geminiModel, c.apiKey)
	res, err := c.client.Post(uri, "application/json", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	defer res.Body.Close()

	body, err := ioutil.ReadAll(res.Body)
	if err != nil {
		return "", err
	}
	var decoded geminiResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return "", errors.Wrap(err, "decode generateContent response")
	}
	if len(decoded.Candidates) == 0 || len(decoded.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("generateContent returned no candidates")
	}
	return decoded.Candidates[0].Content.Parts[0].Text, nil
}

// The vocabularies the verification prompt asks for; answers outside them
// are normalized away.
var (
	allowedVerificationStatuses = []string{
		model.VerificationVerified, model.VerificationFake, model.VerificationUnverifiable,
	}
	allowedConfidenceLevels = []string{"high", "medium", "low"}
)

// GeminiAnalyzer wraps a GenerativeClient with the two analysis tasks the
// platform needs: location extraction and image verification.
type GeminiAnalyzer struct {
	client GenerativeClient
}

func NewGeminiAnalyzer(client GenerativeClient) *GeminiAnalyzer {
	return &GeminiAnalyzer{client: client}
}

// stripCodeFences removes incidental markdown wrapping from a model
// response before structured decoding. Models routinely wrap JSON answers
// in ```json fences despite instructions.
func stripCodeFences(text string) string {
	cleaned := strings.TrimSpace(text)
	cleaned = strings.ReplaceAll(cleaned, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	return strings.TrimSpace(cleaned)
}

// ExtractLocations asks the model for place names found in a disaster
// description. Returns the empty list on any call or parse failure.
func (a *GeminiAnalyzer) ExtractLocations(ctx context.Context, description string) []string {
	prompt := fmt.Sprintf(`Extract all location names from the following disaster description. Return ONLY a JSON array of location strings. If no locations found, return an empty array [].

Description: "%s"

Example output: ["Manhattan, NYC", "Brooklyn, NY"]`, description)

	text, err := a.client.GenerateContent(ctx, prompt)
	if err != nil {
		Logger.Log.Errorf("location extraction error: %v", err)
		return []string{}
	}

	var locations []string
	if err := json.Unmarshal([]byte(stripCodeFences(text)), &locations); err != nil {
		Logger.Log.Errorf("location extraction returned unparsable response: %v", err)
		return []string{}
	}

	Logger.Log.WithFields(logrus.Fields{"locations": locations}).
		Info("locations extracted from description")
	return locations
}

// VerifyImage asks the model to assess an image for authenticity and
// disaster relevance. The returned record is always fully populated: on any
// upstream failure the flags are null and the status is "unverifiable", so
// downstream report status updates always have a value to write.
func (a *GeminiAnalyzer) VerifyImage(ctx context.Context, imageURL string, contextText string) model.VerificationResult {
	prompt := fmt.Sprintf(`You are a disaster image verification expert. Analyze the image at the following URL and determine:
1. Is this image likely authentic or manipulated?
2. Does it show a real disaster scene?
3. What type of disaster does it depict (if any)?
4. Confidence level (high, medium, low)

Image URL: %s
%s

Respond in JSON format:
{
  "is_authentic": true/false,
  "is_disaster": true/false,
  "disaster_type": "type or null",
  "confidence": "high/medium/low",
  "analysis": "brief explanation",
  "verification_status": "verified/fake/unverifiable"
}`, imageURL, formatContext(contextText))

	text, err := a.client.GenerateContent(ctx, prompt)
	if err != nil {
		Logger.Log.Errorf("image verification error: %v", err)
		return unverifiableResult(err)
	}

	var verification model.VerificationResult
	if err := json.Unmarshal([]byte(stripCodeFences(text)), &verification); err != nil {
		Logger.Log.Errorf("image verification returned unparsable response: %v", err)
		return unverifiableResult(err)
	}
	// The model occasionally strays from the requested vocabulary; anything
	// outside it collapses to the safe floor.
	if !utils.ContainsStringFold(allowedVerificationStatuses, verification.VerificationStatus) {
		verification.VerificationStatus = model.VerificationUnverifiable
	}
	verification.VerificationStatus = strings.ToLower(verification.VerificationStatus)
	if !utils.ContainsStringFold(allowedConfidenceLevels, verification.Confidence) {
		verification.Confidence = "low"
	}
	verification.Confidence = strings.ToLower(verification.Confidence)

	Logger.Log.WithFields(logrus.Fields{"image_url": imageURL, "status": verification.VerificationStatus}).
		Info("image verification completed")
	return verification
}

func formatContext(contextText string) string {
	if contextText == "" {
		return ""
	}
	return fmt.Sprintf("Context: %s", contextText)
}

func unverifiableResult(err error) model.VerificationResult {
	return model.VerificationResult{
		IsAuthentic:        nil,
		IsDisaster:         nil,
		DisasterType:       nil,
		Confidence:         "low",
		Analysis:           fmt.Sprintf("Verification failed: %v", err),
		VerificationStatus: model.VerificationUnverifiable,
	}
}
