package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nafioutino/xamxam.io-sub000/internal/llm"
	"github.com/nafioutino/xamxam.io-sub000/internal/model"
	"github.com/nafioutino/xamxam.io-sub000/pkg/logger"
)

type fakeLLM struct {
	content string
	err     error
}

func (f *fakeLLM) Complete(ctx context.Context, req *llm.CompletionRequest) (*llm.CompletionResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &llm.CompletionResponse{Content: f.content, Model: "fake-model", TokensIn: 10, TokensOut: 20}, nil
}

func (f *fakeLLM) Name() string { return "fake" }

func TestGenerate_DisabledWithoutClient(t *testing.T) {
	svc := NewContentService(seededStore(), nil, logger.NewNop())

	_, err := svc.Generate(context.Background(), &model.GenerateContentRequest{
		ProductID: categoryID,
		Platform:  model.PlatformInstagram,
	})

	assert.ErrorIs(t, err, ErrLLMDisabled)
}

func TestGenerate_ProductMissing(t *testing.T) {
	svc := NewContentService(seededStore(), &fakeLLM{content: "hello"}, logger.NewNop())

	_, err := svc.Generate(context.Background(), &model.GenerateContentRequest{
		ProductID: categoryID,
		Platform:  model.PlatformInstagram,
	})

	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestGenerate_SplitsHashtagLine(t *testing.T) {
	st := seededStore()
	products := newProductService(st)
	p, err := products.Create(context.Background(), &model.CreateProductRequest{
		ShopID: shopID,
		Name:   "wax print fabric",
		Price:  150000,
	})
	require.NoError(t, err)

	svc := NewContentService(st, &fakeLLM{
		content: "Fresh wax prints just landed.\nCome see the new colors!\n#fashion #dakar #waxprint",
	}, logger.NewNop())

	content, err := svc.Generate(context.Background(), &model.GenerateContentRequest{
		ProductID: p.ID,
		Platform:  model.PlatformInstagram,
		Tone:      "playful",
	})
	require.NoError(t, err)

	assert.Equal(t, "Fresh wax prints just landed.\nCome see the new colors!", content.Caption)
	assert.Equal(t, []string{"#fashion", "#dakar", "#waxprint"}, content.Hashtags)
	assert.Equal(t, "fake-model", content.Model)
}

func TestSplitHashtags(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		caption  string
		hashtags []string
	}{
		{
			name:     "trailing tag line",
			in:       "New arrivals today.\n#shop #new",
			caption:  "New arrivals today.",
			hashtags: []string{"#shop", "#new"},
		},
		{
			name:    "no tags",
			in:      "New arrivals today.",
			caption: "New arrivals today.",
		},
		{
			name:     "tags only",
			in:       "#shop #new",
			caption:  "",
			hashtags: []string{"#shop", "#new"},
		},
		{
			name:    "hash mid-text is not a tag line",
			in:      "Item #4 is back in stock.",
			caption: "Item #4 is back in stock.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			caption, tags := splitHashtags(tt.in)
			assert.Equal(t, tt.caption, caption)
			assert.Equal(t, tt.hashtags, tags)
		})
	}
}
