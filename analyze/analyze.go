// Package analyze turns a curated bundle into forecast text, either through
// the LLM or through the rule-based fallback when the LLM path fails.
package analyze

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"swellforecaster/config"
	"swellforecaster/curate"
	"swellforecaster/swell"
)

const maxCompletionTokens = 4096

// ChatCompleter is the slice of the OpenAI client the analyzer needs.
type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Analyzer produces forecast prose from a curated selection.
type Analyzer struct {
	cfg     *config.Config
	client  ChatCompleter
	prompts *Prompts
	now     func() time.Time
}

// New returns an analyzer. client may be nil, in which case Analyze always
// falls back to the rule-based forecast.
func New(cfg *config.Config, client ChatCompleter) *Analyzer {
	return &Analyzer{
		cfg:     cfg,
		client:  client,
		prompts: LoadPrompts(cfg.Forecast.PromptsFile),
		now:     time.Now,
	}
}

// Analyze generates the forecast for a curated selection. On any LLM failure
// it logs a warning and produces the fallback forecast instead, so a run with
// a dead API key or network still yields output.
func (an *Analyzer) Analyze(ctx context.Context, sel *curate.Selection) (string, error) {
	text, err := an.llmForecast(ctx, sel)
	if err != nil {
		log.Printf("Warning: LLM forecast failed, using fallback analyzer: %v", err)
		return Fallback(sel, an.now().In(swell.HST))
	}
	return text, nil
}

func (an *Analyzer) llmForecast(ctx context.Context, sel *curate.Selection) (string, error) {
	if an.client == nil {
		return "", errors.New("no LLM client configured")
	}

	now := an.now().In(swell.HST)
	vars := map[string]string{
		"date":    now.Format("Monday, January 2, 2006"),
		"summary": sel.Summary,
	}
	prompt := BuildPrompt(an.prompts, vars, sel.NorthSeason, sel.SouthSeason, SouthSwellDetails(sel))

	parts := []openai.ChatMessagePart{
		{Type: openai.ChatMessagePartTypeText, Text: prompt},
		{Type: openai.ChatMessagePartTypeText, Text: textPayload(sel)},
	}
	for _, img := range sel.Images {
		parts = append(parts, openai.ChatMessagePart{
			Type: openai.ChatMessagePartTypeImageURL,
			ImageURL: &openai.ChatMessageImageURL{
				URL:    fmt.Sprintf("data:%s;base64,%s", img.MIMEType, img.Base64),
				Detail: openai.ImageURLDetailAuto,
			},
		})
	}

	callCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	resp, err := an.client.CreateChatCompletion(callCtx, openai.ChatCompletionRequest{
		Model:       an.cfg.General.Model,
		Temperature: 0.7,
		MaxTokens:   maxCompletionTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, MultiContent: parts},
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", errors.New("chat completion returned no content")
	}
	return resp.Choices[0].Message.Content, nil
}

// textPayload concatenates the curated text artifacts, each under a labelled
// heading so the model can attribute readings to stations.
func textPayload(sel *curate.Selection) string {
	var b []byte
	add := func(label string, items []curate.Item) {
		for _, it := range items {
			header := fmt.Sprintf("\n\n=== %s: %s/%s ===\n", label, it.Artifact.Source, it.Artifact.Subtype)
			if it.Artifact.Buoy != "" {
				header = fmt.Sprintf("\n\n=== %s: buoy %s ===\n", label, it.Artifact.Buoy)
			}
			b = append(b, header...)
			b = append(b, it.Content...)
		}
	}
	add("OBSERVATION", sel.Buoys)
	add("MODEL", sel.Models)
	add("OTHER", sel.Other)
	return string(b)
}
