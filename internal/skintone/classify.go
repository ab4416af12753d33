package skintone

import "strings"

// SkinTone is the brightness bucket of a skin sample.
type SkinTone string

const (
	Fair   SkinTone = "Fair"
	Medium SkinTone = "Medium"
	Olive  SkinTone = "Olive"
	Deep   SkinTone = "Deep"
)

// Undertone is the red/blue balance bucket of a skin sample.
type Undertone string

const (
	Warm    Undertone = "warm"
	Cool    Undertone = "cool"
	Neutral Undertone = "neutral"
)

const (
	fairThreshold   = 200.0
	mediumThreshold = 160.0
	oliveThreshold  = 120.0

	warmRedRatio  = 0.55
	coolBlueRatio = 0.35
)

// SkinTones lists every tone, lightest first.
var SkinTones = []SkinTone{Fair, Medium, Olive, Deep}

// Undertones lists every undertone.
var Undertones = []Undertone{Warm, Cool, Neutral}

// ClassifyTone buckets a sample by its channel mean. The lower bound of each
// bucket is exclusive: a brightness of exactly 200 is Medium, not Fair.
func ClassifyTone(c ColorSample) SkinTone {
	brightness := c.Brightness()
	switch {
	case brightness > fairThreshold:
		return Fair
	case brightness > mediumThreshold:
		return Medium
	case brightness > oliveThreshold:
		return Olive
	default:
		return Deep
	}
}

// DetectUndertone compares each of red and blue against the other two channels.
// The red check wins over the blue check.
func DetectUndertone(c ColorSample) Undertone {
	redRatio := float64(c.R) / float64(c.G+c.B+1)
	blueRatio := float64(c.B) / float64(c.R+c.G+1)

	if redRatio > warmRedRatio {
		return Warm
	}
	if blueRatio > coolBlueRatio {
		return Cool
	}
	return Neutral
}

// ParseSkinTone accepts a tone name in any case.
func ParseSkinTone(s string) (SkinTone, bool) {
	for _, t := range SkinTones {
		if strings.EqualFold(string(t), s) {
			return t, true
		}
	}
	return "", false
}

// ParseUndertone accepts an undertone name in any case.
func ParseUndertone(s string) (Undertone, bool) {
	for _, u := range Undertones {
		if strings.EqualFold(string(u), s) {
			return u, true
		}
	}
	return "", false
}
