package shopping

import (
	"maps"
	"slices"
)

const (
	PlatformAmazon   = "amazon"
	PlatformFlipkart = "flipkart"
	PlatformMyntra   = "myntra"

	amazonBaseURL   = "https://www.amazon.in"
	flipkartBaseURL = "https://www.flipkart.com"
	myntraBaseURL   = "https://www.myntra.com"

	defaultBudget        = "medium"
	defaultTrendingLimit = 6
	defaultImageURL      = "https://images.unsplash.com/photo-1515372039744-b8f02a3ae446?w=400&h=500&fit=crop"
)

// Platforms lists the storefronts a recommendation links to, in response order.
var Platforms = []string{PlatformAmazon, PlatformFlipkart, PlatformMyntra}

type priceRange struct {
	min, max int
}

var priceRanges = map[string]priceRange{
	"low":    {500, 2000},
	"medium": {2000, 5000},
	"high":   {5000, 15000},
}

var occasionQueries = map[string][]string{
	"wedding":   {"wedding lehenga women", "bridal saree", "party gown", "ethnic wear women"},
	"party":     {"party dress women", "cocktail dress", "evening gown", "party wear women"},
	"work":      {"formal shirt women", "blazer women", "office wear women", "formal trousers women"},
	"gym":       {"sports bra", "gym leggings women", "workout top women", "activewear women"},
	"beach":     {"swimsuit women", "beach dress", "bikini", "resort wear women"},
	"date":      {"date dress women", "casual dress women", "midi dress", "jumpsuit women"},
	"festival":  {"festive wear women", "ethnic kurta women", "traditional dress", "indo western women"},
	"daily":     {"casual top women", "jeans women", "kurti", "casual dress women"},
	"college":   {"casual wear women", "denim jacket women", "crop top", "sneakers women"},
	"interview": {"formal blazer women", "formal shirt women", "formal pants women", "professional wear women"},
	"brunch":    {"brunch dress women", "casual top women", "skirt women", "summer dress women"},
	"dinner":    {"dinner dress women", "elegant top women", "formal dress women", "evening wear women"},
	"travel":    {"travel wear women", "comfortable dress women", "casual outfit women", "travel pants women"},
	"shopping":  {"shopping outfit women", "casual wear women", "comfortable dress women", "everyday wear women"},
	"concert":   {"concert outfit women", "trendy top women", "stylish dress women", "party wear women"},
}

var defaultQueries = []string{"women fashion", "casual wear women"}

var trendingItems = []string{
	"floral dress",
	"denim jacket",
	"white sneakers",
	"crossbody bag",
	"sunglasses",
	"statement earrings",
}

var productImages = map[string]string{
	"floral dress":       "https://images.unsplash.com/photo-1572804013309-59a88b7e92f1?w=400&h=500&fit=crop",
	"denim jacket":       "https://images.unsplash.com/photo-1551028719-00167b16eac5?w=400&h=500&fit=crop",
	"white sneakers":     "https://images.unsplash.com/photo-1549298916-b41d501d3772?w=400&h=500&fit=crop",
	"crossbody bag":      "https://images.unsplash.com/photo-1515372039744-b8f02a3ae446?w=400&h=500&fit=crop",
	"sunglasses":         "https://images.unsplash.com/photo-1572804013309-59a88b7e92f1?w=400&h=500&fit=crop",
	"statement earrings": "https://images.unsplash.com/photo-1583391733956-6c78276477e2?w=400&h=500&fit=crop",
}

// Occasions returns the occasions with a dedicated query list, sorted.
func Occasions() []string {
	return slices.Sorted(maps.Keys(occasionQueries))
}
