package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// Capture paths. The only behavioral difference between them is which
// vision model identifier services the request.
const (
	SourceUpload = "upload"
	SourceCamera = "camera"
)

const analysisSystemPrompt = `You are a nutrition analysis engine. Given a food photo, respond with ONLY a JSON object, no prose, matching exactly this shape:
{
  "image_meta": {"width": int, "height": int, "orientation": "portrait"|"landscape"|"square"},
  "composition": [
    {
      "label": string,
      "confidence": number in [0,1],
      "serving_est_g": non-negative number,
      "bbox_norm": {"x": number, "y": number, "w": number, "h": number},
      "nutrition": {
        "calories_kcal": number,
        "macros": {"protein_g": number, "carbs_g": number, "fat_g": number, "fiber_g": number, "sugar_g": number},
        "micros": {"sodium_mg": number, "potassium_mg": number, "calcium_mg": number, "iron_mg": number, "vitamin_a_mcg": number, "vitamin_c_mg": number, "cholesterol_mg": number},
        "allergens": [string]
      }
    }
  ],
  "totals": same nutrition shape aggregated over all items,
  "notes": optional string
}
Bounding boxes are normalized fractions of the image dimensions. All nutrient values must be non-negative.`

const analysisUserPrompt = `Identify every food item in this photo, estimate its portion weight in grams, and provide the full macro and micronutrient breakdown per item plus the aggregated totals.`

type chatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageRef `json:"image_url,omitempty"`
}

type imageRef struct {
	URL string `json:"url"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// VisionService talks to an OpenAI-compatible chat-completions endpoint
// hosting the multimodal model.
type VisionService struct {
	apiKey      string
	baseURL     string
	uploadModel string
	cameraModel string
	client      *http.Client
}

func NewVisionService() *VisionService {
	return &VisionService{
		apiKey:      os.Getenv("VISION_API_KEY"),
		baseURL:     envOr("VISION_BASE_URL", "https://api.openai.com/v1"),
		uploadModel: envOr("VISION_UPLOAD_MODEL", "gpt-4o-mini"),
		cameraModel: envOr("VISION_CAMERA_MODEL", "gpt-4o"),
		client:      &http.Client{Timeout: 60 * time.Second},
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// ModelFor selects the model identifier for a capture path.
func (s *VisionService) ModelFor(source string) string {
	if source == SourceCamera {
		return s.cameraModel
	}
	return s.uploadModel
}

// Complete sends the image to the model and returns the raw completion
// text. One-shot: no retry, no backoff.
func (s *VisionService) Complete(ctx context.Context, model, imageDataURL string) (string, error) {
	if s.apiKey == "" {
		return "", ErrMissingAPIKey
	}

	reqBody := chatRequest{
		Model: model,
		Messages: []chatMessage{
			{Role: "system", Content: analysisSystemPrompt},
			{Role: "user", Content: []contentPart{
				{Type: "text", Text: analysisUserPrompt},
				{Type: "image_url", ImageURL: &imageRef{URL: imageDataURL}},
			}},
		},
		MaxTokens:   2000,
		Temperature: 0.1,
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		s.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", &TransportError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &TransportError{Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		return "", &TransportError{Status: resp.StatusCode, Body: string(body)}
	}

	var out chatResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", &MalformedResponseError{Snippet: snippet(string(body))}
	}
	if len(out.Choices) == 0 {
		return "", &MalformedResponseError{Snippet: snippet(string(body))}
	}
	return out.Choices[0].Message.Content, nil
}
