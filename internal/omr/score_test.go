package omr

import (
	"math"
	"testing"

	"github.com/ironsheep/form-omr/internal/imaging"
	"github.com/ironsheep/form-omr/internal/layout"
)

// inkRect sets every pixel in [x1,x2) × [y1,y2) of bin to ink
func inkRect(bin *imaging.Binary, x1, y1, x2, y2 int) {
	for y := y1; y < y2; y++ {
		for x := x1; x < x2; x++ {
			bin.Ink[y][x] = true
		}
	}
}

func selectionRegion(x, y, w, h int) layout.Region {
	return layout.Region{
		Type:     layout.Selection,
		Item:     "egg",
		Position: layout.Rect{X: x, Y: y, Width: w, Height: h},
	}
}

func TestConfidence_Anchors(t *testing.T) {
	tests := []struct {
		fill float64
		want float64
	}{
		{0, 0},
		{0.2, 0.125},
		{0.4, 0.25},
		{0.7, 0.625},
		{1, 1},
		{-0.5, 0},
		{1.5, 1},
	}

	for _, tt := range tests {
		got := Confidence(tt.fill, 0.4)
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("Confidence(%v, 0.4) = %v, want %v", tt.fill, got, tt.want)
		}
	}
}

func TestConfidence_StrictlyIncreasing(t *testing.T) {
	for _, threshold := range []float64{0.1, 0.4, 0.9} {
		prev := Confidence(0, threshold)
		for i := 1; i <= 100; i++ {
			fill := float64(i) / 100
			got := Confidence(fill, threshold)
			if got <= prev {
				t.Fatalf("threshold %v: confidence not increasing at fill %v (%v <= %v)", threshold, fill, got, prev)
			}
			if got < 0 || got > 1 {
				t.Fatalf("threshold %v: confidence %v outside [0,1]", threshold, got)
			}
			prev = got
		}
	}
}

func TestScore_BlankAndFilled(t *testing.T) {
	bin := imaging.NewBinary(100, 100)
	scorer := Scorer{Threshold: 0.4}

	blank := scorer.Score(bin, selectionRegion(10, 10, 20, 20))
	if blank.IsMarked || blank.Confidence != 0 || blank.FillRatio != 0 {
		t.Errorf("blank region: got marked=%v conf=%v fill=%v", blank.IsMarked, blank.Confidence, blank.FillRatio)
	}
	if blank.TotalPixels != 400 || blank.WhitePixels != 400 {
		t.Errorf("blank region pixels: got total=%d white=%d", blank.TotalPixels, blank.WhitePixels)
	}

	inkRect(bin, 10, 10, 30, 30)
	filled := scorer.Score(bin, selectionRegion(10, 10, 20, 20))
	if !filled.IsMarked {
		t.Error("solid region should be marked")
	}
	if filled.Confidence != 1 {
		t.Errorf("solid region confidence: got %v, want 1", filled.Confidence)
	}
	if filled.BlobCoverage != 1 {
		t.Errorf("solid region blob coverage: got %v, want 1", filled.BlobCoverage)
	}
	if filled.Type != layout.Selection || filled.Item != "egg" {
		t.Errorf("mark identity not preserved: %+v", filled)
	}
}

func TestScore_ThresholdBoundary(t *testing.T) {
	bin := imaging.NewBinary(100, 100)
	scorer := Scorer{Threshold: 0.4}
	region := selectionRegion(0, 0, 10, 10)

	// 39 of 100 pixels
	inkRect(bin, 0, 0, 10, 3)
	inkRect(bin, 0, 3, 9, 4)
	below := scorer.Score(bin, region)
	if below.IsMarked {
		t.Errorf("fill %v should not be marked", below.FillRatio)
	}

	bin.Ink[3][9] = true
	at := scorer.Score(bin, region)
	if !at.IsMarked {
		t.Errorf("fill %v at the threshold should be marked", at.FillRatio)
	}
	if math.Abs(at.Confidence-0.25) > 1e-9 {
		t.Errorf("confidence at threshold: got %v, want 0.25", at.Confidence)
	}
}

func TestScore_Monotonic(t *testing.T) {
	bin := imaging.NewBinary(50, 50)
	scorer := Scorer{Threshold: 0.4}
	region := selectionRegion(10, 10, 20, 20)

	prev := scorer.Score(bin, region)
	for y := 10; y < 30; y++ {
		for x := 10; x < 30; x += 3 {
			bin.Ink[y][x] = true
			cur := scorer.Score(bin, region)
			if cur.Confidence < prev.Confidence {
				t.Fatalf("confidence dropped from %v to %v after adding ink", prev.Confidence, cur.Confidence)
			}
			if prev.IsMarked && !cur.IsMarked {
				t.Fatal("adding ink turned a marked region unmarked")
			}
			prev = cur
		}
	}
}

func TestScore_Clipping(t *testing.T) {
	bin := imaging.NewBinary(40, 40)
	inkRect(bin, 0, 0, 40, 40)
	scorer := Scorer{Threshold: 0.4}

	t.Run("partially outside", func(t *testing.T) {
		mark := scorer.Score(bin, selectionRegion(30, 30, 20, 20))
		want := layout.Rect{X: 30, Y: 30, Width: 10, Height: 10}
		if mark.Position != want {
			t.Errorf("position: got %+v, want %+v", mark.Position, want)
		}
		if mark.TotalPixels != 100 || mark.DarkPixels != 100 {
			t.Errorf("pixels: got total=%d dark=%d, want 100/100", mark.TotalPixels, mark.DarkPixels)
		}
	})

	t.Run("wholly outside", func(t *testing.T) {
		mark := scorer.Score(bin, selectionRegion(100, 100, 20, 20))
		if mark.TotalPixels != 0 {
			t.Errorf("total pixels: got %d, want 0", mark.TotalPixels)
		}
		if mark.IsMarked || mark.Confidence != 0 || mark.FillRatio != 0 {
			t.Errorf("empty region should be unmarked with zero confidence: %+v", mark)
		}
	})
}

func TestScore_BlobCoverageScatteredInk(t *testing.T) {
	bin := imaging.NewBinary(40, 40)
	for y := 0; y < 20; y += 2 {
		for x := 0; x < 20; x += 2 {
			bin.Ink[y][x] = true
		}
	}

	mark := Scorer{Threshold: 0.4}.Score(bin, selectionRegion(0, 0, 20, 20))
	if mark.DarkPixels != 100 {
		t.Fatalf("dark pixels: got %d, want 100", mark.DarkPixels)
	}
	if mark.BlobCoverage != 0.01 {
		t.Errorf("isolated dots should give 1/100 coverage, got %v", mark.BlobCoverage)
	}
}

func TestScore_InsetIgnoresOutline(t *testing.T) {
	bin := imaging.NewBinary(40, 40)
	// 20x20 box outline, 2 px thick
	inkRect(bin, 0, 0, 20, 2)
	inkRect(bin, 0, 18, 20, 20)
	inkRect(bin, 0, 0, 2, 20)
	inkRect(bin, 18, 0, 20, 20)
	region := selectionRegion(0, 0, 20, 20)

	whole := Scorer{Threshold: 0.4}.Score(bin, region)
	if whole.DarkPixels != 144 {
		t.Fatalf("outline pixels without inset: got %d, want 144", whole.DarkPixels)
	}

	inset := Scorer{Threshold: 0.4, Inset: 0.15}.Score(bin, region)
	if inset.DarkPixels != 0 || inset.IsMarked || inset.Confidence != 0 {
		t.Errorf("outline should not count as fill: %+v", inset)
	}
	if inset.TotalPixels != 14*14 {
		t.Errorf("scored area: got %d, want %d", inset.TotalPixels, 14*14)
	}
	if inset.Position != region.Position {
		t.Errorf("position should report the whole box: got %+v", inset.Position)
	}

	inkRect(bin, 2, 2, 18, 18)
	filled := Scorer{Threshold: 0.4, Inset: 0.15}.Score(bin, region)
	if !filled.IsMarked || filled.FillRatio != 1 {
		t.Errorf("filled box: marked=%v fill=%v", filled.IsMarked, filled.FillRatio)
	}
}
