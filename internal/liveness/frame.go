package liveness

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
)

// DecodeFrame decodes raw frame bytes (jpeg, png, gif or bmp).
func DecodeFrame(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode frame: %w", err)
	}
	return img, nil
}

// CropRegion extracts a rectangular region from a frame, clamped to the
// frame bounds. Used to restrict the liveness comparison to the face
// bounding box supplied by the extractor.
func CropRegion(img image.Image, region image.Rectangle) image.Image {
	region = region.Intersect(img.Bounds())
	dst := image.NewRGBA(image.Rect(0, 0, region.Dx(), region.Dy()))
	draw.Copy(dst, image.Point{}, img, region, draw.Over, nil)
	return dst
}

// ResizeFrame scales a frame to the given dimensions. Two regions cropped
// from differently sized captures can be brought to a common shape before
// Check compares them.
func ResizeFrame(img image.Image, width, height int) image.Image {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.BiLinear.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Over, nil)
	return dst
}
