package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"text/template"
	"time"

	"github.com/mansoorceksport/platepal/internal/domain"
	"github.com/mansoorceksport/platepal/internal/nutrition"
)

const (
	defaultOpenRouterBaseURL = "https://openrouter.ai/api/v1"
	defaultCoachPersona      = "friendly registered dietitian"
	unknownFoodName          = "Unidentified meal"

	systemPromptTmplStr = `You are a {{.Persona}} working for {{.AppName}}. You estimate the nutrition content of meals from photos. Be realistic about portion sizes. Return only valid JSON.`

	userPromptTmplStr = `Look at this meal photo and estimate its nutrition for the whole visible portion.

Return ONLY valid JSON in this EXACT format:
{
  "food_name": "short name of the dish",
  "calories": 0,
  "macros": {"protein": 0, "carbs": 0, "fat": 0},
  "ai_advice": "one or two sentences of practical advice"
}

Calories are kcal. Macros are grams. Use numbers, not ranges.`
)

// PromptContext feeds the analyzer prompt templates
type PromptContext struct {
	AppName string
	Persona string
}

// OpenRouterAnalyzer implements domain.MealAnalyzer using the OpenRouter chat API
type OpenRouterAnalyzer struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
	systemTmpl *template.Template
	userTmpl   *template.Template
}

func NewOpenRouterAnalyzer(apiKey, model, baseURL string) *OpenRouterAnalyzer {
	if baseURL == "" {
		baseURL = defaultOpenRouterBaseURL
	}
	return &OpenRouterAnalyzer{
		apiKey:     apiKey,
		model:      model,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 60 * time.Second},
		systemTmpl: template.Must(template.New("system").Parse(systemPromptTmplStr)),
		userTmpl:   template.Must(template.New("user").Parse(userPromptTmplStr)),
	}
}

// AnalyzeMeal sends the photo to the vision model and normalises its answer
func (a *OpenRouterAnalyzer) AnalyzeMeal(ctx context.Context, imageData []byte) (*domain.MealAnalysis, error) {
	contentType, err := detectImageType(imageData)
	if err != nil {
		return nil, err
	}

	promptCtx := PromptContext{AppName: "PlatePal", Persona: defaultCoachPersona}

	var systemPrompt, userPrompt bytes.Buffer
	if err := a.systemTmpl.Execute(&systemPrompt, promptCtx); err != nil {
		return nil, fmt.Errorf("failed to render system prompt: %w", err)
	}
	if err := a.userTmpl.Execute(&userPrompt, promptCtx); err != nil {
		return nil, fmt.Errorf("failed to render user prompt: %w", err)
	}

	requestBody := map[string]interface{}{
		"model": a.model,
		"messages": []map[string]interface{}{
			{
				"role":    "system",
				"content": systemPrompt.String(),
			},
			{
				"role": "user",
				"content": []map[string]interface{}{
					{"type": "text", "text": userPrompt.String()},
					{
						"type": "image_url",
						"image_url": map[string]string{
							"url": fmt.Sprintf("data:%s;base64,%s", contentType, base64.StdEncoding.EncodeToString(imageData)),
						},
					},
				},
			},
		},
		"temperature": 0.2,
	}

	payload, err := json.Marshal(requestBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+a.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Title", "PlatePal Meal Analyzer")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("openrouter api error (status %d): %s", resp.StatusCode, string(body))
	}

	var apiResponse struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
		Error *struct {
			Message string `json:"message"`
			Code    int    `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &apiResponse); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if apiResponse.Error != nil {
		return nil, fmt.Errorf("openrouter error: %s (code: %d)", apiResponse.Error.Message, apiResponse.Error.Code)
	}
	if len(apiResponse.Choices) == 0 {
		return nil, fmt.Errorf("no response from AI model")
	}

	return parseMealAnalysis(apiResponse.Choices[0].Message.Content)
}

// parseMealAnalysis reads the model's JSON. Models wrap answers in prose or
// code fences and send numbers as strings, so the object is located first
// and every number goes through nutrition.Number.
func parseMealAnalysis(content string) (*domain.MealAnalysis, error) {
	raw, err := extractJSONFromText(content)
	if err != nil {
		return nil, fmt.Errorf("failed to parse AI response as JSON: %w", err)
	}

	analysis := &domain.MealAnalysis{
		FoodName: strings.TrimSpace(stringField(raw, "food_name")),
		Calories: nutrition.Number(raw["calories"]),
		AIAdvice: strings.TrimSpace(stringField(raw, "ai_advice")),
	}
	if analysis.FoodName == "" {
		analysis.FoodName = unknownFoodName
	}

	// Some models flatten the macros onto the top level
	macros, ok := raw["macros"].(map[string]interface{})
	if !ok {
		macros = raw
	}
	analysis.Macros = domain.Macros{
		Protein: nutrition.Number(macros["protein"]),
		Carbs:   nutrition.Number(macros["carbs"]),
		Fat:     nutrition.Number(macros["fat"]),
	}
	return analysis, nil
}

func extractJSONFromText(text string) (map[string]interface{}, error) {
	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start == -1 || end == -1 || start >= end {
		return nil, fmt.Errorf("no JSON object found in text")
	}

	dec := json.NewDecoder(strings.NewReader(text[start : end+1]))
	dec.UseNumber()
	var raw map[string]interface{}
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	return raw, nil
}

func stringField(raw map[string]interface{}, key string) string {
	s, _ := raw[key].(string)
	return s
}

// heifBrands maps ISO-BMFF major brands to the image type they carry
var heifBrands = map[string]string{
	"heic": "image/heic",
	"heix": "image/heic",
	"hevc": "image/heic",
	"heim": "image/heic",
	"heis": "image/heic",
	"mif1": "image/heif",
	"msf1": "image/heif",
	"heif": "image/heif",
}

// detectImageType sniffs the photo's format from its magic bytes.
// Anything that is not JPEG, PNG, WEBP or HEIC/HEIF is rejected.
func detectImageType(data []byte) (string, error) {
	switch {
	case len(data) >= 3 && data[0] == 0xFF && data[1] == 0xD8 && data[2] == 0xFF:
		return "image/jpeg", nil
	case len(data) >= 8 && bytes.Equal(data[0:8], []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}):
		return "image/png", nil
	case len(data) >= 12 && bytes.Equal(data[0:4], []byte("RIFF")) && bytes.Equal(data[8:12], []byte("WEBP")):
		return "image/webp", nil
	case len(data) >= 12 && bytes.Equal(data[4:8], []byte("ftyp")):
		if contentType, ok := heifBrands[string(data[8:12])]; ok {
			return contentType, nil
		}
	}
	return "", fmt.Errorf("%w: unsupported image format, expected JPEG, PNG, WEBP or HEIC", domain.ErrInvalidInput)
}
