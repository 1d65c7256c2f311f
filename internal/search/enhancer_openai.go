package search

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
	"github.com/openai/openai-go/shared"
)

const defaultOpenAIModel = "gpt-4o-mini"

const enhanceSystemPrompt = `You rank catalog entries for a search box of an anime, manga and quiz app.
You receive a user query and a JSON list of catalog items {id, title, genres, tags, creators}.
Return JSON: {"results": [{"itemId": string, "relevanceScore": number between 0 and 1, "matchedFields": [string], "reasoning": string}]}.
Only include items that are relevant to the query, best first, using ids exactly as given.
Understand nicknames, translations, romanizations and descriptions of the plot or characters.`

// OpenAIEnhancer asks a chat completion model to judge the catalog summary.
type OpenAIEnhancer struct {
	client    *openai.Client
	model     string
	maxTokens int64
}

// NewOpenAIEnhancer creates an enhancer. baseURL may point at any
// OpenAI-compatible endpoint; empty uses the public API.
func NewOpenAIEnhancer(apiKey, model, baseURL string) *OpenAIEnhancer {
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		// the remote strategy owns the deadline and falls back instead of retrying
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	if model == "" {
		model = defaultOpenAIModel
	}
	client := openai.NewClient(opts...)
	return &OpenAIEnhancer{client: &client, model: model, maxTokens: 2000}
}

func (o *OpenAIEnhancer) Name() string { return "openai" }

// Enhance runs one completion and decodes its JSON object answer.
func (o *OpenAIEnhancer) Enhance(ctx context.Context, query string, summaries []ItemSummary) (*RemoteResponse, error) {
	catalog, err := json.Marshal(summaries)
	if err != nil {
		return nil, fmt.Errorf("failed to encode catalog summary: %w", err)
	}
	userPrompt := fmt.Sprintf("Query: %s\n\nCatalog:\n%s", query, catalog)

	jsonObjectFormat := shared.NewResponseFormatJSONObjectParam()
	completion, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(enhanceSystemPrompt),
			openai.UserMessage(userPrompt),
		},
		Model:       shared.ChatModel(o.model),
		Temperature: param.NewOpt(0.0),
		MaxTokens:   param.NewOpt(o.maxTokens),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &jsonObjectFormat,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("OpenAI API call failed: %w", err)
	}
	if len(completion.Choices) == 0 {
		return nil, ErrEmptyRemoteResponse
	}

	content := strings.TrimSpace(completion.Choices[0].Message.Content)
	var out RemoteResponse
	if err := json.Unmarshal([]byte(content), &out); err != nil {
		return nil, fmt.Errorf("failed to parse OpenAI response: %w", err)
	}
	if len(out.Results) == 0 {
		return nil, ErrEmptyRemoteResponse
	}
	return &out, nil
}
