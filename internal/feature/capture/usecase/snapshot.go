// Package usecase は撮影画像を認識に送れる形へ変換します。
package usecase

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"hanzi_backend/internal/feature/recognition/domain/entity"
)

const (
	// MaxImageSize は画像アップロードの最大サイズ（10MB）です。
	MaxImageSize = 10 * 1024 * 1024
	// MaxEdge は長辺の最大ピクセル数です。
	MaxEdge = 1280
	// JPEGQuality は再エンコード時の品質です。
	JPEGQuality = 90

	maxPixels = 50_000_000
)

var (
	ErrEmptyImage       = errors.New("image data is empty")
	ErrImageTooLarge    = fmt.Errorf("image size exceeds maximum of %d bytes", MaxImageSize)
	ErrUnsupportedImage = errors.New("unsupported or corrupt image")
)

// Snapshotter は画像を縮小・JPEG化します。
type Snapshotter struct {
	maxEdge int
	quality int
}

// NewSnapshotter はSnapshotterの新しいインスタンスを生成します。0以下の値は既定値になります。
func NewSnapshotter(maxEdge, quality int) *Snapshotter {
	if maxEdge <= 0 {
		maxEdge = MaxEdge
	}
	if quality <= 0 || quality > 100 {
		quality = JPEGQuality
	}
	return &Snapshotter{maxEdge: maxEdge, quality: quality}
}

// Snapshot はJPEG/PNG/GIF/WebPの画像を長辺 maxEdge 以下に縮小し、JPEGで返します。
func (s *Snapshotter) Snapshot(data []byte) (entity.Image, error) {
	if len(data) == 0 {
		return entity.Image{}, ErrEmptyImage
	}
	if len(data) > MaxImageSize {
		return entity.Image{}, ErrImageTooLarge
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return entity.Image{}, fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || cfg.Width*cfg.Height > maxPixels {
		return entity.Image{}, fmt.Errorf("%w: %dx%d", ErrUnsupportedImage, cfg.Width, cfg.Height)
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return entity.Image{}, fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}

	w, h := fit(src.Bounds().Dx(), src.Bounds().Dy(), s.maxEdge)
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	// 透過部分は白で塗る
	draw.Draw(dst, dst.Bounds(), image.White, image.Point{}, draw.Src)
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: s.quality}); err != nil {
		return entity.Image{}, fmt.Errorf("failed to encode jpeg: %w", err)
	}
	return entity.Image{MIMEType: "image/jpeg", Data: buf.Bytes()}, nil
}

// FromDataURL はデータURLをデコードしてから Snapshot します。
func (s *Snapshotter) FromDataURL(dataURL string) (entity.Image, error) {
	img, err := entity.ParseDataURL(dataURL)
	if err != nil {
		return entity.Image{}, err
	}
	return s.Snapshot(img.Data)
}

// fit は縦横比を保ったまま長辺を maxEdge 以下に収めたサイズを返します。
func fit(w, h, maxEdge int) (int, int) {
	long := max(w, h)
	if long <= maxEdge {
		return w, h
	}
	nw := max(1, w*maxEdge/long)
	nh := max(1, h*maxEdge/long)
	return nw, nh
}
