package shopping

import (
	"math/rand"
	"strings"
	"testing"
)

func newTestBuilder() *Builder {
	return NewBuilder(WithRandSource(rand.NewSource(42)))
}

func TestBuilder_Search_URLs(t *testing.T) {
	tests := []struct {
		platform     string
		wantURL      string
		wantPlatform string
	}{
		{PlatformAmazon, "https://www.amazon.in/s?k=wedding%20lehenga%20women&rh=n:1968024031", "Amazon"},
		{PlatformFlipkart, "https://www.flipkart.com/search?q=wedding%20lehenga%20women&marketplace=FLIPKART", "Flipkart"},
		{PlatformMyntra, "https://www.myntra.com/wedding-lehenga-women?rawQuery=wedding%20lehenga%20women", "Myntra"},
		{"ebay", "https://www.amazon.in/s?k=wedding%20lehenga%20women", "Amazon"},
	}

	b := newTestBuilder()
	for _, tt := range tests {
		t.Run(tt.platform, func(t *testing.T) {
			products := b.Search(tt.platform, Query{Occasion: "wedding", Limit: 4})
			if len(products) != 4 {
				t.Fatalf("Expected 4 products, got %d", len(products))
			}
			first := products[0]
			if first.URL != tt.wantURL {
				t.Errorf("Expected URL %s, got %s", tt.wantURL, first.URL)
			}
			if first.Platform != tt.wantPlatform {
				t.Errorf("Expected platform %s, got %s", tt.wantPlatform, first.Platform)
			}
			if first.Name != "Wedding Lehenga" {
				t.Errorf("Expected name 'Wedding Lehenga', got '%s'", first.Name)
			}
			if first.Category != "wedding lehenga women" {
				t.Errorf("Expected category to be the search term, got '%s'", first.Category)
			}
		})
	}
}

func TestBuilder_Search_MyntraSlugIsOnePathSegment(t *testing.T) {
	products := newTestBuilder().Search(PlatformMyntra, Query{Occasion: "daily", Color: "red?x=1#/top", Limit: 1})
	if len(products) != 1 {
		t.Fatalf("Expected 1 product, got %d", len(products))
	}

	want := "https://www.myntra.com/red%3Fx=1%23%2Ftop-casual-top-women?rawQuery=red%3Fx%3D1%23%2Ftop%20casual%20top%20women"
	if products[0].URL != want {
		t.Errorf("Expected URL %s, got %s", want, products[0].URL)
	}
}

func TestBuilder_Search_ProductFields(t *testing.T) {
	products := newTestBuilder().Search(PlatformAmazon, Query{Occasion: "party", Budget: "low", Limit: 4})

	for i, p := range products {
		if p.ID != i+1 {
			t.Errorf("Expected id %d, got %d", i+1, p.ID)
		}
		if p.Price%100 != 99 {
			t.Errorf("Expected price ending in 99, got %d", p.Price)
		}
		if p.Price < 599 || p.Price > 2099 {
			t.Errorf("Expected low budget price, got %d", p.Price)
		}
		if p.Reviews != 100+i*50 {
			t.Errorf("Expected %d reviews, got %d", 100+i*50, p.Reviews)
		}
	}
	if products[3].Rating != 4.3 {
		t.Errorf("Expected rating 4.3, got %v", products[3].Rating)
	}
}

func TestBuilder_Search_DeterministicWithSeed(t *testing.T) {
	a := newTestBuilder().Search(PlatformMyntra, Query{Occasion: "daily", Limit: 4})
	b := newTestBuilder().Search(PlatformMyntra, Query{Occasion: "daily", Limit: 4})
	for i := range a {
		if a[i].Price != b[i].Price {
			t.Errorf("Expected identical prices for same seed at %d: %d vs %d", i, a[i].Price, b[i].Price)
		}
	}
}

func TestBuilder_Search_Limit(t *testing.T) {
	b := newTestBuilder()
	if got := len(b.Search(PlatformAmazon, Query{Occasion: "gym", Limit: 2})); got != 2 {
		t.Errorf("Expected 2 products, got %d", got)
	}
	if got := len(b.Search(PlatformAmazon, Query{Occasion: "unknown", Limit: 4})); got != 2 {
		t.Errorf("Expected 2 default products, got %d", got)
	}
}

func TestSearchTerms(t *testing.T) {
	terms := SearchTerms("work", "male", "navy")
	want := []string{"navy formal shirt men", "navy blazer men", "navy office wear men", "navy formal trousers men"}
	for i := range want {
		if terms[i] != want[i] {
			t.Errorf("Expected %q, got %q", want[i], terms[i])
		}
	}

	def := SearchTerms("", "female", "")
	if def[0] != "women fashion" {
		t.Errorf("Expected default terms, got %v", def)
	}
}

func TestProductName_StripsGenderWord(t *testing.T) {
	if got := productName("formal shirt men"); got != "Formal Shirt" {
		t.Errorf("Expected 'Formal Shirt', got '%s'", got)
	}
}

func TestSearchAll(t *testing.T) {
	all := SearchAll(newTestBuilder(), Query{Occasion: "beach", Limit: 4})
	if len(all) != len(Platforms) {
		t.Fatalf("Expected %d platforms, got %d", len(Platforms), len(all))
	}
	for _, p := range Platforms {
		if len(all[p]) != 4 {
			t.Errorf("Expected 4 products for %s, got %d", p, len(all[p]))
		}
	}
}

func TestBuilder_Trending(t *testing.T) {
	b := newTestBuilder()

	all := b.Trending(0)
	if len(all) != 6 {
		t.Fatalf("Expected 6 trending products by default, got %d", len(all))
	}
	second := all[1]
	if second.Name != "Denim Jacket" || second.Price != 1499 || !second.Trending {
		t.Errorf("Unexpected trending product: %+v", second)
	}
	if got := second.Platforms[PlatformAmazon]; got != "https://www.amazon.in/s?k=denim%20jacket%20women" {
		t.Errorf("Unexpected amazon link %s", got)
	}
	if got := second.Platforms[PlatformMyntra]; got != "https://www.myntra.com/denim-jacket" {
		t.Errorf("Unexpected myntra link %s", got)
	}
	if !strings.HasPrefix(second.Image, "https://") {
		t.Errorf("Expected image URL, got %s", second.Image)
	}

	if got := len(b.Trending(3)); got != 3 {
		t.Errorf("Expected 3 trending products, got %d", got)
	}
}
