package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/nafioutino/xamxam.io-sub000/internal/llm"
	"github.com/nafioutino/xamxam.io-sub000/internal/model"
	"github.com/nafioutino/xamxam.io-sub000/internal/store"
	"github.com/nafioutino/xamxam.io-sub000/pkg/logger"
	"github.com/nafioutino/xamxam.io-sub000/pkg/metrics"
)

// ErrLLMDisabled is returned when no LLM provider is configured.
var ErrLLMDisabled = errors.New("content generation is not configured")

// ContentService generates social captions for products through the
// configured LLM provider.
type ContentService struct {
	store  store.Store
	llm    llm.Client
	logger *logger.Logger
}

// NewContentService creates a new content service. A nil client disables
// generation.
func NewContentService(st store.Store, client llm.Client, log *logger.Logger) *ContentService {
	return &ContentService{store: st, llm: client, logger: log}
}

// Generate produces a caption and hashtags for a product post.
func (s *ContentService) Generate(ctx context.Context, req *model.GenerateContentRequest) (*model.GeneratedContent, error) {
	if s.llm == nil {
		return nil, ErrLLMDisabled
	}

	product, err := s.store.GetProduct(ctx, req.ProductID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, &NotFoundError{Resource: "product", ID: req.ProductID}
		}
		return nil, err
	}

	resp, err := s.llm.Complete(ctx, &llm.CompletionRequest{
		Messages: []llm.ChatMessage{
			{Role: "user", Content: buildPrompt(product, req)},
		},
		MaxTokens: 1024,
	})
	if err != nil {
		return nil, fmt.Errorf("content generation failed: %w", err)
	}

	caption, hashtags := splitHashtags(resp.Content)

	metrics.ContentGenerationsTotal.WithLabelValues(resp.Model).Inc()
	s.logger.Info("content generated",
		zap.String("product_id", product.ID),
		zap.String("model", resp.Model),
		zap.Int("tokens_out", resp.TokensOut),
	)

	return &model.GeneratedContent{
		Caption:   caption,
		Hashtags:  hashtags,
		Model:     resp.Model,
		TokensIn:  resp.TokensIn,
		TokensOut: resp.TokensOut,
	}, nil
}

func buildPrompt(p *model.Product, req *model.GenerateContentRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Write a short %s post promoting the product %q", strings.ToLower(string(req.Platform)), p.Name)
	if p.Description != nil && *p.Description != "" {
		fmt.Fprintf(&b, " (%s)", *p.Description)
	}
	if req.Tone != "" {
		fmt.Fprintf(&b, " in a %s tone", req.Tone)
	}
	if req.Language != "" {
		fmt.Fprintf(&b, ", in %s", req.Language)
	}
	b.WriteString(". End with a line of relevant hashtags.")
	return b.String()
}

// splitHashtags separates a trailing hashtag line from the caption body.
func splitHashtags(content string) (string, []string) {
	lines := strings.Split(strings.TrimSpace(content), "\n")
	if len(lines) == 0 {
		return content, nil
	}
	last := strings.TrimSpace(lines[len(lines)-1])
	if !strings.HasPrefix(last, "#") {
		return strings.TrimSpace(content), nil
	}
	var tags []string
	for _, w := range strings.Fields(last) {
		if strings.HasPrefix(w, "#") {
			tags = append(tags, w)
		}
	}
	caption := strings.TrimSpace(strings.Join(lines[:len(lines)-1], "\n"))
	return caption, tags
}
