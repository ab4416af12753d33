package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"google.golang.org/genai"

	"github.com/jo-hoe/styleai/internal/stylist"
)

const DefaultGeminiModel = "gemini-2.5-flash"

// generateFunc sends one prompt and returns the raw text reply.
type generateFunc func(ctx context.Context, prompt string) (string, error)

// GeminiAdvisor asks Gemini for a full recommendation as JSON.
type GeminiAdvisor struct {
	model    string
	generate generateFunc
}

func NewGeminiAdvisor(ctx context.Context, apiKey, model string) (*GeminiAdvisor, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini: %w", ErrMissingAPIKey)
	}
	if model == "" {
		model = DefaultGeminiModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	config := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr[float32](0.7),
		ResponseMIMEType: "application/json",
	}
	return &GeminiAdvisor{
		model: model,
		generate: func(ctx context.Context, prompt string) (string, error) {
			resp, err := client.Models.GenerateContent(ctx, model, genai.Text(prompt), config)
			if err != nil {
				return "", err
			}
			return resp.Text(), nil
		},
	}, nil
}

func (a *GeminiAdvisor) Advise(ctx context.Context, p stylist.Profile) (stylist.Bundle, error) {
	text, err := a.generate(ctx, advicePrompt(p))
	if err != nil {
		return stylist.Bundle{}, fmt.Errorf("gemini generate failed: %w", err)
	}

	bundle, err := parseAdvice(text)
	if err != nil {
		return stylist.Bundle{}, err
	}
	slog.Debug("gemini advice received", "model", a.model, "colors", len(bundle.ColorPalette))
	return bundle, nil
}

func advicePrompt(p stylist.Profile) string {
	return fmt.Sprintf(`You are an expert fashion stylist. Generate personalized styling advice.

User Profile:
- Skin Tone: %s
- Undertone: %s
- Gender: %s
- Desired Vibe: %s
- Weather: %s
- Budget: %s
- Occasion: %s

Provide recommendations in JSON format with these sections:
1. color_palette: Array of 5 colors that suit this skin tone, each an object with "name" and "hex"
2. outfits: Array of 3 complete outfit suggestions, each an object with "name", "items" and "colors"
3. accessories: Array of 5 accessory suggestions
4. hairstyle: Array of 2 hairstyle suggestions
5. shopping_tips: Array of 3 practical shopping tips for India
6. explanation: Why these recommendations suit the user

Keep it practical, India-friendly, and culturally appropriate. Use Indian fashion brands when possible.

Return ONLY valid JSON, no markdown formatting.`,
		p.SkinTone, p.Undertone, p.Gender, p.Vibe, p.Weather, p.Budget, p.Occasion)
}

type adviceReply struct {
	ColorPalette []paletteEntry `json:"color_palette"`
	Outfits      []outfitEntry  `json:"outfits"`
	Accessories  textList       `json:"accessories"`
	Hairstyle    textList       `json:"hairstyle"`
	ShoppingTips textList       `json:"shopping_tips"`
	Explanation  string         `json:"explanation"`
}

type paletteEntry stylist.NamedColor

// UnmarshalJSON accepts {"name","hex"} objects and bare hex strings.
func (e *paletteEntry) UnmarshalJSON(data []byte) error {
	var hex string
	if err := json.Unmarshal(data, &hex); err == nil {
		*e = paletteEntry{Name: hex, Hex: hex}
		return nil
	}
	var c stylist.NamedColor
	if err := json.Unmarshal(data, &c); err != nil {
		return err
	}
	*e = paletteEntry(c)
	return nil
}

type outfitEntry struct {
	Name   string   `json:"name"`
	Items  textList `json:"items"`
	Colors textList `json:"colors"`
}

// textList accepts a single string, a list of strings, or a list of
// objects carrying a "name" or "description".
type textList []string

func (l *textList) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*l = textList{single}
		return nil
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(textList, 0, len(raw))
	for _, item := range raw {
		var s string
		if err := json.Unmarshal(item, &s); err == nil {
			out = append(out, s)
			continue
		}
		var obj struct {
			Name        string `json:"name"`
			Description string `json:"description"`
		}
		if err := json.Unmarshal(item, &obj); err != nil {
			return err
		}
		if obj.Name != "" {
			out = append(out, obj.Name)
		} else if obj.Description != "" {
			out = append(out, obj.Description)
		}
	}
	*l = out
	return nil
}

func parseAdvice(text string) (stylist.Bundle, error) {
	var reply adviceReply
	if err := json.Unmarshal([]byte(stripCodeFence(text)), &reply); err != nil {
		return stylist.Bundle{}, fmt.Errorf("malformed advice reply: %w", err)
	}

	bundle := stylist.Bundle{
		Accessories:  []string(reply.Accessories),
		Hairstyles:   []string(reply.Hairstyle),
		ShoppingTips: []string(reply.ShoppingTips),
		Explanation:  strings.TrimSpace(reply.Explanation),
		Source:       stylist.SourceAI,
	}
	for _, c := range reply.ColorPalette {
		if c.Hex == "" {
			continue
		}
		bundle.ColorPalette = append(bundle.ColorPalette, stylist.NamedColor(c))
	}
	for _, o := range reply.Outfits {
		bundle.Outfits = append(bundle.Outfits, stylist.Outfit{
			Name:   o.Name,
			Items:  []string(o.Items),
			Colors: []string(o.Colors),
		})
	}

	if len(bundle.ColorPalette) == 0 {
		return stylist.Bundle{}, fmt.Errorf("malformed advice reply: no color palette")
	}
	return bundle, nil
}
