// Package shopping builds outbound search links for partner storefronts.
// No inventory is queried; products are search entry points with
// indicative prices.
package shopping

import (
	"math"
	"math/rand"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

type Product struct {
	ID       int     `json:"id"`
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Price    int     `json:"price"`
	URL      string  `json:"url"`
	Platform string  `json:"platform"`
	Rating   float64 `json:"rating"`
	Reviews  int     `json:"reviews"`
}

type TrendingProduct struct {
	ID        int               `json:"id"`
	Name      string            `json:"name"`
	Category  string            `json:"category"`
	Price     int               `json:"price"`
	Image     string            `json:"image"`
	Platforms map[string]string `json:"platforms"`
	Trending  bool              `json:"trending"`
}

type Query struct {
	Occasion string
	Budget   string
	Gender   string
	// Color is an optional keyword prepended to every search term.
	Color string
	Limit int
}

// LinkBuilder produces storefront links for recommendations.
type LinkBuilder interface {
	Search(platform string, q Query) []Product
	Trending(limit int) []TrendingProduct
}

type Builder struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

type Option func(*Builder)

// WithRandSource makes prices reproducible.
func WithRandSource(src rand.Source) Option {
	return func(b *Builder) {
		b.rnd = rand.New(src)
	}
}

func NewBuilder(opts ...Option) *Builder {
	b := &Builder{rnd: rand.New(rand.NewSource(time.Now().UnixNano()))}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Search returns up to q.Limit products for the occasion on one platform.
// Unknown platforms link to a plain Amazon search.
func (b *Builder) Search(platform string, q Query) []Product {
	prices, ok := priceRanges[q.Budget]
	if !ok {
		prices = priceRanges[defaultBudget]
	}

	terms := SearchTerms(q.Occasion, q.Gender, q.Color)
	if q.Limit > 0 && q.Limit < len(terms) {
		terms = terms[:q.Limit]
	}

	products := make([]Product, 0, len(terms))
	for i, term := range terms {
		productURL, platformName := searchURL(platform, term)
		products = append(products, Product{
			ID:       i + 1,
			Name:     productName(term),
			Category: term,
			Price:    b.price(prices),
			URL:      productURL,
			Platform: platformName,
			Rating:   math.Round((4.0+float64(i%10)*0.1)*10) / 10,
			Reviews:  100 + i*50,
		})
	}
	return products
}

// SearchAll runs Search for every known platform.
func SearchAll(lb LinkBuilder, q Query) map[string][]Product {
	out := make(map[string][]Product, len(Platforms))
	for _, p := range Platforms {
		out[p] = lb.Search(p, q)
	}
	return out
}

func (b *Builder) Trending(limit int) []TrendingProduct {
	if limit <= 0 {
		limit = defaultTrendingLimit
	}
	items := trendingItems
	if limit < len(items) {
		items = items[:limit]
	}

	products := make([]TrendingProduct, 0, len(items))
	for i, item := range items {
		image, ok := productImages[item]
		if !ok {
			image = defaultImageURL
		}
		products = append(products, TrendingProduct{
			ID:       i + 1,
			Name:     titleCase(item),
			Category: item,
			Price:    999 + i*500,
			Image:    image,
			Platforms: map[string]string{
				PlatformAmazon:   amazonBaseURL + "/s?k=" + escape(item+" women"),
				PlatformFlipkart: flipkartBaseURL + "/search?q=" + escape(item),
				PlatformMyntra:   myntraBaseURL + "/" + slug(item),
			},
			Trending: true,
		})
	}
	return products
}

// SearchTerms returns the query list for an occasion. For male shoppers
// the word "women" is swapped for "men".
func SearchTerms(occasion, gender, color string) []string {
	base, ok := occasionQueries[strings.ToLower(occasion)]
	if !ok {
		base = defaultQueries
	}

	male := strings.EqualFold(gender, "male")
	color = strings.ToLower(strings.TrimSpace(color))

	terms := make([]string, 0, len(base))
	for _, term := range base {
		if male {
			term = swapWord(term, "women", "men")
		}
		if color != "" {
			term = color + " " + term
		}
		terms = append(terms, term)
	}
	return terms
}

func searchURL(platform, term string) (string, string) {
	switch platform {
	case PlatformAmazon:
		return amazonBaseURL + "/s?k=" + escape(term) + "&rh=n:1968024031", "Amazon"
	case PlatformFlipkart:
		return flipkartBaseURL + "/search?q=" + escape(term) + "&marketplace=FLIPKART", "Flipkart"
	case PlatformMyntra:
		return myntraBaseURL + "/" + slug(term) + "?rawQuery=" + escape(term), "Myntra"
	default:
		return amazonBaseURL + "/s?k=" + escape(term), "Amazon"
	}
}

// price draws from [min, max] and snaps to the "...99" price point.
func (b *Builder) price(r priceRange) int {
	b.mu.Lock()
	p := r.min + b.rnd.Intn(r.max-r.min+1)
	b.mu.Unlock()
	return (p/100)*100 + 99
}

// escape percent-encodes s with spaces as %20.
func escape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// slug renders term as one lowercase, hyphenated path segment.
func slug(term string) string {
	return url.PathEscape(strings.Join(strings.Fields(strings.ToLower(term)), "-"))
}

func productName(term string) string {
	words := strings.Fields(titleCase(term))
	kept := words[:0]
	for _, w := range words {
		if w != "Women" && w != "Men" {
			kept = append(kept, w)
		}
	}
	return strings.Join(kept, " ")
}

func titleCase(s string) string {
	return cases.Title(language.Und).String(s)
}

func swapWord(s, from, to string) string {
	words := strings.Fields(s)
	for i, w := range words {
		if w == from {
			words[i] = to
		}
	}
	return strings.Join(words, " ")
}
