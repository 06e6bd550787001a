package transform

import (
	"bytes"
	"context"

	"contentflow/internal/domain"

	"github.com/disintegration/imaging"
)

// Result carries a re-encoded image and its final properties.
type Result struct {
	Data        []byte
	ContentType string
	Width       int
	Height      int
}

// Transformer converts an encoded image into a bounded-dimension JPEG.
type Transformer interface {
	// Transform re-encodes data to JPEG, scaled down to fit the bounding
	// box while preserving aspect ratio. Images already within the box are
	// re-encoded at their original dimensions; nothing is upscaled. The
	// input buffer is never mutated. An undecodable payload yields a
	// transform-kind error.
	Transform(ctx context.Context, data []byte) (*Result, error)
}

// jpegTransformer implements Transformer with an in-process resize.
type jpegTransformer struct {
	maxWidth  int
	maxHeight int
	quality   int
}

// NewJPEGTransformer creates a Transformer with the given bounding box and
// re-encode quality.
func NewJPEGTransformer(maxWidth, maxHeight, quality int) Transformer {
	return &jpegTransformer{
		maxWidth:  maxWidth,
		maxHeight: maxHeight,
		quality:   quality,
	}
}

func (t *jpegTransformer) Transform(ctx context.Context, data []byte) (*Result, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, domain.NewTransformError("decode image", err)
	}

	bounds := img.Bounds()
	if bounds.Dx() > t.maxWidth || bounds.Dy() > t.maxHeight {
		img = imaging.Fit(img, t.maxWidth, t.maxHeight, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(t.quality)); err != nil {
		return nil, domain.NewTransformError("encode jpeg", err)
	}

	out := img.Bounds()
	return &Result{
		Data:        buf.Bytes(),
		ContentType: "image/jpeg",
		Width:       out.Dx(),
		Height:      out.Dy(),
	}, nil
}
