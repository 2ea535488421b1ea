package vision

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

const DefaultModel = "gemini-2.0-flash"

// Client calls the Gemini API for plant image analysis.
type Client struct {
	client *genai.Client
	model  string
}

// NewClient creates a Gemini-backed vision client. The API key is required;
// callers should fail fast at startup rather than mid-request.
func NewClient(ctx context.Context, apiKey, model string) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("vision API key is required")
	}
	if model == "" {
		model = DefaultModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &Client{client: client, model: model}, nil
}

// Analyze sends the instruction and the image to the model and returns the
// raw text reply. An empty reply is returned as-is; the pipeline decides
// what that means.
func (c *Client) Analyze(ctx context.Context, instruction, imageDataURL string) (string, error) {
	mimeType, data, err := decodeDataURL(imageDataURL)
	if err != nil {
		return "", err
	}

	parts := []*genai.Part{
		genai.NewPartFromText(instruction),
		genai.NewPartFromBytes(data, mimeType),
	}
	contents := []*genai.Content{
		genai.NewContentFromParts(parts, genai.RoleUser),
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, &genai.GenerateContentConfig{
		Temperature: genai.Ptr[float32](0.2),
	})
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	return resp.Text(), nil
}

// decodeDataURL splits a data:<mime>;base64,<data> URL back into its parts.
func decodeDataURL(url string) (string, []byte, error) {
	s := strings.TrimSpace(url)

	rest, ok := strings.CutPrefix(s, "data:")
	if !ok {
		return "", nil, errors.New("invalid image data URL")
	}
	meta, encoded, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, errors.New("invalid image data URL")
	}

	mimeType := strings.TrimSuffix(meta, ";base64")
	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", nil, fmt.Errorf("decode image data: %w", err)
	}
	if len(data) == 0 {
		return "", nil, errors.New("empty image data")
	}

	return mimeType, data, nil
}
