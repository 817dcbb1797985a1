package omr

import (
	"image"

	"github.com/ironsheep/form-omr/internal/imaging"
	"github.com/ironsheep/form-omr/internal/layout"
)

// confidenceAtThreshold is the confidence of a region filled exactly to the
// mark threshold.
const confidenceAtThreshold = 0.25

// Mark is the scored outcome for one form region.
type Mark struct {
	// Type is quantity or selection.
	Type layout.MarkType `json:"type"`

	// Item is the menu item the region belongs to.
	Item string `json:"item"`

	// Position is the region rectangle after clipping to the image.
	Position layout.Rect `json:"position"`

	// IsMarked is true when FillRatio reaches the mark threshold.
	IsMarked bool `json:"isMarked"`

	// Confidence grows with FillRatio (0-1). Barely over the threshold is
	// low; a solidly filled box approaches 1.
	Confidence float64 `json:"confidence"`

	// FillRatio is DarkPixels / TotalPixels, 0 for an empty region.
	FillRatio float64 `json:"fillRatio"`

	// DarkPixels is the ink pixel count inside the clipped region.
	DarkPixels int `json:"darkPixels"`

	// WhitePixels is TotalPixels - DarkPixels.
	WhitePixels int `json:"whitePixels"`

	// TotalPixels is the scored area: the clipped region less its inset
	// border.
	TotalPixels int `json:"totalPixels"`

	// BlobCoverage is the largest connected ink blob inside the region
	// divided by DarkPixels. Near 1 for a solid fill, low for scattered
	// dirt. Informational only.
	BlobCoverage float64 `json:"blobCoverage"`
}

// Scorer decides whether regions of a binary image are marked.
type Scorer struct {
	// Threshold is the minimum fill ratio of a marked region, in (0,1].
	Threshold float64

	// Inset is the fraction of each region side skipped on every edge
	// before counting ink. 0 scores the whole region.
	Inset float64
}

// Score counts the ink inside one region and classifies it.
//
// The region is shrunk by the inset and clipped to the image. Position
// reports the clipped region without the inset. A region lying wholly
// outside the image yields TotalPixels=0, IsMarked=false and Confidence=0;
// it never fails.
//
// # Monotonicity
//
// For a fixed region, adding ink never lowers Confidence and never turns a
// marked region unmarked: both depend only on FillRatio, through
// non-decreasing functions.
func (s Scorer) Score(bin *imaging.Binary, region layout.Region) Mark {
	scored := region.Position.Inset(s.Inset).Clip(bin.Width, bin.Height)
	mark := Mark{
		Type:        region.Type,
		Item:        region.Item,
		Position:    region.Position.Clip(bin.Width, bin.Height),
		TotalPixels: scored.Area(),
	}
	if mark.TotalPixels == 0 {
		return mark
	}

	rect := image.Rect(scored.X, scored.Y, scored.X+scored.Width, scored.Y+scored.Height)
	mark.DarkPixels = bin.Count(rect)
	mark.WhitePixels = mark.TotalPixels - mark.DarkPixels
	mark.FillRatio = float64(mark.DarkPixels) / float64(mark.TotalPixels)
	mark.IsMarked = mark.FillRatio >= s.Threshold
	mark.Confidence = Confidence(mark.FillRatio, s.Threshold)
	if mark.DarkPixels > 0 {
		mark.BlobCoverage = float64(bin.LargestBlob(rect)) / float64(mark.DarkPixels)
	}
	return mark
}

// Confidence maps a fill ratio to a 0-1 confidence.
//
// The mapping is piecewise linear and strictly increasing:
//
//	fill in [0, t):  0.25 × fill / t
//	fill in [t, 1]:  0.25 + 0.75 × (fill - t) / (1 - t)
//
// so an empty box scores 0, a box filled exactly to the threshold t scores
// 0.25, and a solid box scores 1. Inputs outside [0,1] are clamped.
func Confidence(fillRatio, threshold float64) float64 {
	fill := clamp01(fillRatio)
	if threshold <= 0 {
		return fill
	}
	if fill < threshold {
		return confidenceAtThreshold * fill / threshold
	}
	if threshold >= 1 {
		return 1
	}
	return clamp01(confidenceAtThreshold + (1-confidenceAtThreshold)*(fill-threshold)/(1-threshold))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
