package adapter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/sethvargo/go-retry"

	"github.com/Rust-User-Group-VR/gpt-md-translator/internal/translate"
)

const geminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// geminiCaller implements translate.Caller for Google Gemini via the REST API.
type geminiCaller struct {
	apiKey  string
	baseURL string
	client  *http.Client
	retries int
}

// NewGemini creates a Gemini caller. If opts.APIKey is empty,
// GEMINI_API_KEY is used.
func NewGemini(opts Options) translate.Caller {
	apiKey := opts.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = geminiBaseURL
	}
	return &geminiCaller{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{},
		retries: opts.Retries,
	}
}

// geminiGenerateRequest is the request body for the generateContent API.
type geminiGenerateRequest struct {
	Contents          []geminiContent         `json:"contents"`
	SystemInstruction *geminiContent          `json:"systemInstruction,omitempty"`
	GenerationConfig  *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiGenerationConfig struct {
	MaxOutputTokens int `json:"maxOutputTokens,omitempty"`
}

// geminiGenerateResponse is the response from the generateContent API.
type geminiGenerateResponse struct {
	Candidates    []geminiCandidate `json:"candidates"`
	UsageMetadata *geminiUsage      `json:"usageMetadata,omitempty"`
	Error         *geminiError      `json:"error,omitempty"`
}

type geminiCandidate struct {
	Content      *geminiContent `json:"content,omitempty"`
	FinishReason string         `json:"finishReason"`
}

type geminiUsage struct {
	PromptTokenCount     int `json:"promptTokenCount"`
	CandidatesTokenCount int `json:"candidatesTokenCount"`
	TotalTokenCount      int `json:"totalTokenCount"`
}

type geminiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (g *geminiCaller) Call(ctx context.Context, systemPrompt, body, model string) (string, *translate.Usage, error) {
	payload, err := json.Marshal(geminiGenerateRequest{
		Contents: []geminiContent{{Role: "user", Parts: []geminiPart{{Text: body}}}},
		SystemInstruction: &geminiContent{
			Parts: []geminiPart{{Text: systemPrompt}},
		},
		GenerationConfig: &geminiGenerationConfig{MaxOutputTokens: defaultMaxTokens},
	})
	if err != nil {
		return "", nil, callError(ProviderGemini, fmt.Errorf("marshal: %w", err))
	}
	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", g.baseURL, model, g.apiKey)

	var resp geminiGenerateResponse
	err = withRetry(ctx, g.retries, func(ctx context.Context) error {
		var err error
		resp, err = g.doGenerate(ctx, url, payload)
		return err
	})
	if err != nil {
		return "", nil, callError(ProviderGemini, err)
	}

	choices := make([]choice, len(resp.Candidates))
	for i, cand := range resp.Candidates {
		choices[i] = choice{finish: cand.FinishReason, natural: cand.FinishReason == "STOP"}
		if cand.Content != nil {
			var parts []string
			for _, part := range cand.Content.Parts {
				parts = append(parts, part.Text)
			}
			text := strings.Join(parts, "")
			choices[i].text = &text
		}
	}
	text, err := joinChoices(ProviderGemini, choices)
	if err != nil {
		return "", nil, err
	}

	var usage *translate.Usage
	if u := resp.UsageMetadata; u != nil {
		usage = usageOf(u.PromptTokenCount, u.CandidatesTokenCount, u.TotalTokenCount)
	}
	return text, usage, nil
}

// doGenerate makes one generateContent call. Rate limits, server errors and
// transport failures are marked retryable.
func (g *geminiCaller) doGenerate(ctx context.Context, url string, payload []byte) (geminiGenerateResponse, error) {
	var genResp geminiGenerateResponse

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return genResp, fmt.Errorf("request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return genResp, retry.RetryableError(fmt.Errorf("generate: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		err := fmt.Errorf("generate: status %d: %s", resp.StatusCode, bytes.TrimSpace(respBody))
		if retryableStatus(resp.StatusCode) {
			return genResp, retry.RetryableError(err)
		}
		return genResp, err
	}

	if err := json.NewDecoder(resp.Body).Decode(&genResp); err != nil {
		return genResp, fmt.Errorf("decode: %w", err)
	}
	if genResp.Error != nil {
		return genResp, fmt.Errorf("api error %d: %s", genResp.Error.Code, genResp.Error.Message)
	}
	return genResp, nil
}
