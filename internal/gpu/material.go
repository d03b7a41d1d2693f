package gpu

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"

	xdraw "golang.org/x/image/draw"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/gogpu/fpv/scene"
)

// DefaultMaxTextureSize bounds material textures on each side.
const DefaultMaxTextureSize = 1024

// ErrEmptyImage is returned for a material image with no pixels.
var ErrEmptyImage = errors.New("gpu: empty material image")

// Materials holds one image per drawable kind. A nil entry gets a
// checkerboard.
type Materials [scene.NumShapes]image.Image

// LoadImage decodes a PNG, JPEG, GIF, BMP, TIFF or WebP file.
func LoadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("gpu: open material: %w", err)
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("gpu: decode %s: %w", path, err)
	}
	b := img.Bounds()
	slogger().Debug("gpu: material loaded", "path", path, "format", format, "width", b.Dx(), "height", b.Dy())
	return img, nil
}

// LoadMaterials loads the image for each kind from paths. An empty path
// leaves that kind on the checkerboard fallback. Kinds sharing a path
// share one decoded image.
func LoadMaterials(paths [scene.NumShapes]string) (Materials, error) {
	return LoadMaterialsCached(NewImageCache(0), paths)
}

// LoadMaterialsCached is like LoadMaterials but decodes through cache.
func LoadMaterialsCached(cache *ImageCache, paths [scene.NumShapes]string) (Materials, error) {
	var m Materials
	for _, k := range scene.DrawOrder {
		if paths[k] == "" {
			continue
		}
		img, err := cache.Load(paths[k])
		if err != nil {
			return m, fmt.Errorf("%s material: %w", k, err)
		}
		m[k] = img
	}
	return m, nil
}

// ToRGBA converts img to tightly packed RGBA. Images larger than maxSize
// on either side are scaled down with Catmull-Rom filtering, keeping the
// aspect ratio.
func ToRGBA(img image.Image, maxSize int) (*image.RGBA, error) {
	b := img.Bounds()
	if b.Empty() {
		return nil, ErrEmptyImage
	}
	w, h := b.Dx(), b.Dy()
	if maxSize > 0 && (w > maxSize || h > maxSize) {
		if w >= h {
			h = max(1, h*maxSize/w)
			w = maxSize
		} else {
			w = max(1, w*maxSize/h)
			h = maxSize
		}
		dst := image.NewRGBA(image.Rect(0, 0, w, h))
		xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, b, xdraw.Src, nil)
		return dst, nil
	}
	if rgba, ok := img.(*image.RGBA); ok && rgba.Stride == 4*w && b.Min == (image.Point{}) {
		return rgba, nil
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst, nil
}

// Checkerboard returns a size x size image of 8x8 cells alternating a and b.
func Checkerboard(size int, a, b color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	cell := max(1, size/8)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			c := a
			if (x/cell+y/cell)%2 == 1 {
				c = b
			}
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

// defaultMaterial is the fallback for kind k.
func defaultMaterial(k scene.Kind) *image.RGBA {
	switch k {
	case scene.KindTriangle:
		return Checkerboard(64, color.RGBA{R: 240, G: 200, B: 60, A: 255}, color.RGBA{R: 200, G: 80, B: 40, A: 255})
	default:
		return Checkerboard(64, color.RGBA{R: 90, G: 90, B: 100, A: 255}, color.RGBA{R: 40, G: 40, B: 48, A: 255})
	}
}
