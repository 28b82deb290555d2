package semantic

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"math"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/ezrec/lpu/isa"
)

// DEFAULT_SYSTEM_PROMPT asks the model for terse answers.
const DEFAULT_SYSTEM_PROMPT = "Output ONLY the answer. No intro. No fluff. No punctuation unless required. Answer with a single word if appropriate, otherwise a single sentence."

// Client is an Adapter for an OpenAI-compatible backend.
type Client struct {
	URL            string        // Base URL, without the /v1 suffix.
	TextModel      string        // Model for chat completions.
	EmbeddingModel string        // Model for embeddings.
	APIKey         string        // Bearer token, if any.
	SystemPrompt   string        // System message of every chat completion.
	Temperature    float64       // Sampling temperature.
	Timeout        time.Duration // Per request timeout, if no HTTPClient is set.
	HTTPClient     *http.Client  // HTTP client to use. Optional.
	Verbose        bool          // If set, logs requests and responses.
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	Stream      bool          `json:"stream"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

type embeddingRequest struct {
	Model          string `json:"model"`
	Input          string `json:"input"`
	EncodingFormat string `json:"encoding_format"`
}

type embeddingResponse struct {
	Data []struct {
		Embedding []float64 `json:"embedding"`
	} `json:"data"`
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return &http.Client{Timeout: c.Timeout}
}

// post sends a JSON request, and decodes the JSON response.
func (c *Client) post(ctx context.Context, path string, request any, response any) (err error) {
	body, err := json.Marshal(request)
	if err != nil {
		return
	}

	url := strings.TrimSuffix(c.URL, "/") + path
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if len(c.APIKey) != 0 {
		httpReq.Header.Set("Authorization", "Bearer "+c.APIKey)
	}

	if c.Verbose {
		log.Printf("semantic: POST %v %s", url, body)
	}

	resp, err := c.httpClient().Do(httpReq)
	if err != nil {
		return
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return
	}

	if c.Verbose {
		log.Printf("semantic: %v %s", resp.Status, data)
	}

	if resp.StatusCode != http.StatusOK {
		err = &ErrStatus{Code: resp.StatusCode, Body: strings.TrimSpace(string(data))}
		return
	}

	err = json.Unmarshal(data, response)
	return
}

// Chat sends the context messages and a prompt, and returns the trimmed reply.
func (c *Client) Chat(ctx context.Context, messages []isa.Message, prompt string) (reply string, err error) {
	request := chatRequest{
		Model:       c.TextModel,
		Temperature: c.Temperature,
	}

	system := c.SystemPrompt
	if len(system) == 0 {
		system = DEFAULT_SYSTEM_PROMPT
	}
	request.Messages = append(request.Messages, chatMessage{Role: "system", Content: system})
	for _, msg := range messages {
		request.Messages = append(request.Messages, chatMessage{Role: msg.Role.String(), Content: msg.Content})
	}
	request.Messages = append(request.Messages, chatMessage{Role: "user", Content: prompt})

	var response chatResponse
	err = c.post(ctx, "/v1/chat/completions", &request, &response)
	if err != nil {
		return
	}

	if len(response.Choices) == 0 {
		err = ErrEmptyResponse
		return
	}

	reply = strings.TrimSpace(response.Choices[0].Message.Content)
	return
}

// Embed returns the embedding vector of a text.
func (c *Client) Embed(ctx context.Context, text string) (vector []float64, err error) {
	request := embeddingRequest{
		Model:          c.EmbeddingModel,
		Input:          text,
		EncodingFormat: "float",
	}

	var response embeddingResponse
	err = c.post(ctx, "/v1/embeddings", &request, &response)
	if err != nil {
		return
	}

	if len(response.Data) == 0 || len(response.Data[0].Embedding) == 0 {
		err = ErrEmptyResponse
		return
	}

	vector = response.Data[0].Embedding
	return
}

// Similarity is the cosine similarity of two vectors, clamped to [0, 1],
// as a rounded percentage.
func Similarity(a, b []float64) (percent float64, err error) {
	if len(a) != len(b) {
		err = ErrEmbeddingMismatch
		return
	}

	var dot, norm_a, norm_b float64
	for n := range a {
		dot += a[n] * b[n]
		norm_a += a[n] * a[n]
		norm_b += b[n] * b[n]
	}

	if norm_a == 0 || norm_b == 0 {
		err = ErrEmbeddingZero
		return
	}

	cosine := dot / (math.Sqrt(norm_a) * math.Sqrt(norm_b))
	percent = math.Round(min(max(cosine, 0), 1) * 100)
	return
}

// Judge maps a reply to 100 if it is one of the labels, and 0 otherwise.
func Judge(reply string, labels []string) float64 {
	answer := strings.ToUpper(strings.Trim(reply, " \t\r\n.!\"'`*"))
	if slices.Contains(labels, answer) {
		return 100
	}
	return 0
}

// Evaluate implements Adapter.
func (c *Client) Evaluate(ctx context.Context, req Request) (value isa.Value, err error) {
	switch req.Strategy {
	case STRATEGY_GENERATE:
		var reply string
		reply, err = c.Chat(ctx, req.Messages, req.Prompt)
		if err != nil {
			return
		}
		value = isa.Text(reply)
	case STRATEGY_JUDGE:
		var reply string
		reply, err = c.Chat(ctx, req.Messages, req.Prompt)
		if err != nil {
			return
		}
		value = isa.Number(Judge(reply, req.Labels))
	case STRATEGY_EMBED:
		if len(req.Operands) != 2 {
			err = ErrOperandCount
			return
		}
		var a, b []float64
		a, err = c.Embed(ctx, req.Operands[0])
		if err != nil {
			return
		}
		b, err = c.Embed(ctx, req.Operands[1])
		if err != nil {
			return
		}
		var percent float64
		percent, err = Similarity(a, b)
		if err != nil {
			return
		}
		value = isa.Number(percent)
	default:
		err = ErrStrategy
	}

	return
}
