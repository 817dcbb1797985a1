package imaging

import (
	"image"
	"image/color"
	"testing"
)

// grayGradient creates a left-to-right lighting gradient from dark to bright
func grayGradient(width, height int, from, to uint8) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			v := float64(from) + (float64(to)-float64(from))*float64(x)/float64(width-1)
			img.Pix[y*img.Stride+x] = uint8(v)
		}
	}
	return img
}

func paintGray(img *image.Gray, x1, y1, x2, y2 int, v uint8) {
	for y := y1; y < y2; y++ {
		for x := x1; x < x2; x++ {
			img.SetGray(x, y, color.Gray{Y: v})
		}
	}
}

func TestBinarize_BlankPaper(t *testing.T) {
	gray := image.NewGray(image.Rect(0, 0, 200, 200))
	paintGray(gray, 0, 0, 200, 200, 255)

	for _, method := range []Method{MethodAdaptive, MethodGlobal} {
		t.Run(string(method), func(t *testing.T) {
			opts := DefaultBinarizeOptions()
			opts.Method = method

			bin, err := Binarize(gray, opts)
			if err != nil {
				t.Fatalf("Binarize failed: %v", err)
			}
			if n := bin.Count(image.Rect(0, 0, 200, 200)); n != 0 {
				t.Errorf("blank paper should have no ink, got %d pixels", n)
			}
		})
	}
}

func TestBinarize_FilledSquareInterior(t *testing.T) {
	gray := image.NewGray(image.Rect(0, 0, 300, 300))
	paintGray(gray, 0, 0, 300, 300, 255)
	paintGray(gray, 100, 100, 110, 110, 0)

	bin, err := Binarize(gray, DefaultBinarizeOptions())
	if err != nil {
		t.Fatalf("Binarize failed: %v", err)
	}

	if n := bin.Count(image.Rect(100, 100, 110, 110)); n != 100 {
		t.Errorf("filled square should be all ink, got %d/100", n)
	}
	if bin.Ink[50][50] {
		t.Error("paper far from the mark should not be ink")
	}
}

func TestBinarize_UnevenIllumination(t *testing.T) {
	// Paper brightness falls from 240 on the right to 90 on the left, so a
	// global cutoff of 127 calls the whole shadowed side ink.
	gray := grayGradient(400, 100, 90, 240)
	paintGray(gray, 20, 40, 30, 50, 20)   // mark under shadow
	paintGray(gray, 370, 40, 380, 50, 60) // mark in bright light

	// Window well above the 10px mark size
	adaptiveOpts := DefaultBinarizeOptions()
	adaptiveOpts.WindowFraction = 0.4

	adaptive, err := Binarize(gray, adaptiveOpts)
	if err != nil {
		t.Fatalf("Binarize failed: %v", err)
	}

	if n := adaptive.Count(image.Rect(20, 40, 30, 50)); n != 100 {
		t.Errorf("shadowed mark: got %d/100 ink pixels", n)
	}
	if n := adaptive.Count(image.Rect(370, 40, 380, 50)); n != 100 {
		t.Errorf("bright mark: got %d/100 ink pixels", n)
	}
	if n := adaptive.Count(image.Rect(50, 0, 60, 10)); n != 0 {
		t.Errorf("shadowed paper should be background, got %d ink pixels", n)
	}

	opts := DefaultBinarizeOptions()
	opts.Method = MethodGlobal
	global, err := Binarize(gray, opts)
	if err != nil {
		t.Fatalf("Binarize failed: %v", err)
	}
	if n := global.Count(image.Rect(50, 0, 60, 10)); n == 0 {
		t.Error("global threshold was expected to misread shadowed paper as ink")
	}
}

func TestBinarize_InvalidOptions(t *testing.T) {
	gray := image.NewGray(image.Rect(0, 0, 10, 10))

	if _, err := Binarize(gray, BinarizeOptions{Method: "otsu"}); err == nil {
		t.Error("unknown method should fail")
	}
	if _, err := Binarize(gray, BinarizeOptions{Method: MethodAdaptive, WindowFraction: 0}); err == nil {
		t.Error("zero window should fail")
	}
}

func TestBinary_CountClipsToBounds(t *testing.T) {
	bin := NewBinary(10, 10)
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			bin.Ink[y][x] = true
		}
	}

	tests := []struct {
		name string
		r    image.Rectangle
		want int
	}{
		{"inside", image.Rect(2, 2, 4, 4), 4},
		{"partly outside", image.Rect(8, 8, 20, 20), 4},
		{"wholly outside", image.Rect(20, 20, 30, 30), 0},
		{"negative origin", image.Rect(-5, -5, 2, 2), 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := bin.Count(tt.r); got != tt.want {
				t.Errorf("Count(%v): got %d, want %d", tt.r, got, tt.want)
			}
		})
	}
}

func TestBinary_FilterNoise(t *testing.T) {
	bin := NewBinary(50, 50)
	bin.Ink[0][0] = true // speck
	for y := 10; y < 20; y++ {
		for x := 10; x < 20; x++ {
			bin.Ink[y][x] = true
		}
	}

	cleared := bin.FilterNoise(4, 0)
	if cleared != 1 {
		t.Errorf("cleared: got %d, want 1", cleared)
	}
	if bin.Ink[0][0] {
		t.Error("speck should be removed")
	}
	if got := bin.LargestBlob(image.Rect(0, 0, 50, 50)); got != 100 {
		t.Errorf("largest blob: got %d, want 100", got)
	}
}

func TestBinary_ToImage(t *testing.T) {
	bin := NewBinary(4, 4)
	bin.Ink[1][2] = true

	img := bin.ToImage()
	if img.GrayAt(2, 1).Y != 0 {
		t.Error("ink should render black")
	}
	if img.GrayAt(0, 0).Y != 255 {
		t.Error("paper should render white")
	}
}
