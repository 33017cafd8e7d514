package images

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"os"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

const jpegQuality = 88

// Decode 는 jpeg/png/gif/webp 이미지를 디코딩한다.
func Decode(data []byte) (image.Image, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty image data")
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}

// CoverCrop 은 비율을 유지한 채 w×h 를 꽉 채우도록 확대/축소하고 가운데를 잘라낸다.
func CoverCrop(src image.Image, w, h int) image.Image {
	b := src.Bounds()
	sw, sh := b.Dx(), b.Dy()

	// 원본에서 목표 비율에 맞는 가운데 영역
	crop := b
	if sw*h > sh*w {
		cw := sh * w / h
		x0 := b.Min.X + (sw-cw)/2
		crop = image.Rect(x0, b.Min.Y, x0+cw, b.Max.Y)
	} else if sw*h < sh*w {
		ch := sw * h / w
		y0 := b.Min.Y + (sh-ch)/2
		crop = image.Rect(b.Min.X, y0, b.Max.X, y0+ch)
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, crop, draw.Over, nil)
	return dst
}

var placeholderPalette = [][2]color.RGBA{
	{{R: 20, G: 30, B: 60, A: 255}, {R: 90, G: 40, B: 120, A: 255}},
	{{R: 10, G: 60, B: 70, A: 255}, {R: 40, G: 140, B: 120, A: 255}},
	{{R: 70, G: 20, B: 30, A: 255}, {R: 180, G: 80, B: 40, A: 255}},
	{{R: 30, G: 30, B: 30, A: 255}, {R: 90, G: 90, B: 110, A: 255}},
}

// Placeholder 는 슬롯마다 색이 다른 세로 그라디언트 이미지를 만든다.
func Placeholder(w, h, slot int) image.Image {
	pair := placeholderPalette[slot%len(placeholderPalette)]
	top, bottom := pair[0], pair[1]

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		t := float64(y) / float64(max(h-1, 1))
		c := color.RGBA{
			R: lerp(top.R, bottom.R, t),
			G: lerp(top.G, bottom.G, t),
			B: lerp(top.B, bottom.B, t),
			A: 255,
		}
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func lerp(a, b uint8, t float64) uint8 {
	return uint8(float64(a) + (float64(b)-float64(a))*t)
}

// SaveJPEG 는 이미지를 JPEG 로 저장한다.
func SaveJPEG(path string, img image.Image) error {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return fmt.Errorf("encode JPEG: %w", err)
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}
