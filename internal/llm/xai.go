package llm

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/jo-hoe/styleai/internal/stylist"
)

const (
	DefaultXAIBaseURL     = "https://api.x.ai/v1"
	DefaultXAIModel       = "grok-beta"
	DefaultXAIVisionModel = "grok-vision-beta"

	stylistSystemPrompt = "You are an expert fashion stylist with deep knowledge of color theory, skin tones, and Indian fashion trends."
	visionPrompt        = "Analyze this person's skin tone, face shape, and provide fashion styling recommendations. Be specific about colors that would suit them."
)

type XAIConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	VisionModel string
}

// XAIClient talks to the xAI chat completions API, which is OpenAI compatible.
type XAIClient struct {
	client      openai.Client
	model       string
	visionModel string
}

type Advice struct {
	Text  string `json:"advice"`
	Model string `json:"model"`
}

func NewXAIClient(config XAIConfig) (*XAIClient, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("xai: %w", ErrMissingAPIKey)
	}
	if config.BaseURL == "" {
		config.BaseURL = DefaultXAIBaseURL
	}
	if config.Model == "" {
		config.Model = DefaultXAIModel
	}
	if config.VisionModel == "" {
		config.VisionModel = DefaultXAIVisionModel
	}

	client := openai.NewClient(
		option.WithAPIKey(config.APIKey),
		option.WithBaseURL(strings.TrimSuffix(config.BaseURL, "/")+"/"),
		option.WithMaxRetries(0),
	)
	return &XAIClient{
		client:      client,
		model:       config.Model,
		visionModel: config.VisionModel,
	}, nil
}

// Explain writes a short, friendly explanation of why the first three
// palette colors suit the profile.
func (c *XAIClient) Explain(ctx context.Context, p stylist.Profile, palette []stylist.NamedColor) (string, error) {
	names := make([]string, 0, 3)
	for _, color := range palette[:min(3, len(palette))] {
		names = append(names, color.Name)
	}
	prompt := fmt.Sprintf("In 2-3 friendly sentences, explain why %s colors are perfect for someone with %s skin and %s undertones for %s occasions. Be warm and encouraging.",
		strings.Join(names, ", "), p.SkinTone, p.Undertone, p.Occasion)

	text, _, err := c.complete(ctx, openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(c.model),
		Messages:    []openai.ChatCompletionMessageParamUnion{openai.UserMessage(prompt)},
		Temperature: openai.Float(0.8),
		MaxTokens:   openai.Int(150),
	})
	return text, err
}

// Advice returns free-form styling advice for the profile.
func (c *XAIClient) Advice(ctx context.Context, p stylist.Profile) (Advice, error) {
	prompt := fmt.Sprintf(`You are a professional fashion stylist. Based on the following information, provide personalized fashion advice:

Skin Tone: %s
Undertone: %s
Gender: %s
Occasion: %s
Style Vibe: %s
Budget: %s

Please provide:
1. Why these colors work well for this skin tone and undertone
2. Specific outfit suggestions (be creative and detailed)
3. Accessory recommendations
4. Hairstyle suggestions
5. Styling tips

Keep the response natural, friendly, and practical. Focus on Indian fashion context and availability.`,
		p.SkinTone, p.Undertone, p.Gender, p.Occasion, p.Vibe, p.Budget)

	text, model, err := c.complete(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(stylistSystemPrompt),
			openai.UserMessage(prompt),
		},
		Temperature: openai.Float(0.7),
	})
	if err != nil {
		return Advice{}, err
	}
	if model == "" {
		model = c.model
	}
	return Advice{Text: text, Model: model}, nil
}

// AnalyzeImage sends the photo to the vision model as a data URL.
func (c *XAIClient) AnalyzeImage(ctx context.Context, image []byte) (string, error) {
	if len(image) == 0 {
		return "", fmt.Errorf("empty image")
	}
	dataURL := fmt.Sprintf("data:%s;base64,%s", http.DetectContentType(image), base64.StdEncoding.EncodeToString(image))

	text, _, err := c.complete(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.visionModel),
		Messages: []openai.ChatCompletionMessageParamUnion{
			{
				OfUser: &openai.ChatCompletionUserMessageParam{
					Content: openai.ChatCompletionUserMessageParamContentUnion{
						OfArrayOfContentParts: []openai.ChatCompletionContentPartUnionParam{
							{OfText: &openai.ChatCompletionContentPartTextParam{
								Text: visionPrompt,
							}},
							{OfImageURL: &openai.ChatCompletionContentPartImageParam{
								ImageURL: openai.ChatCompletionContentPartImageImageURLParam{
									URL:    dataURL,
									Detail: "auto",
								},
							}},
						},
					},
				},
			},
		},
		Temperature: openai.Float(0.5),
	})
	return text, err
}

func (c *XAIClient) complete(ctx context.Context, params openai.ChatCompletionNewParams) (string, string, error) {
	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", "", fmt.Errorf("xai request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", "", fmt.Errorf("xai reply has no choices")
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", "", fmt.Errorf("xai reply is empty")
	}
	return text, resp.Model, nil
}
