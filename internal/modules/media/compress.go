package media

import (
	"bytes"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"

	"golang.org/x/image/draw"
)

// CompressOptions bound the output of Compress.
type CompressOptions struct {
	MaxSizeMB        float64
	MaxWidthOrHeight int
}

// DefaultCompressOptions mirror what the admin upload form used.
var DefaultCompressOptions = CompressOptions{
	MaxSizeMB:        1,
	MaxWidthOrHeight: 1920,
}

// Compress decodes an image, downscales it so neither dimension exceeds
// MaxWidthOrHeight and re-encodes it in its source format, stepping JPEG
// quality down until the byte budget is met. Corrupt input returns an error;
// the caller aborts the whole upload batch on it, never silently falling
// back to the original bytes.
func Compress(data []byte, opts CompressOptions) ([]byte, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("media: decode image: %w", err)
	}

	if opts.MaxWidthOrHeight > 0 {
		img = downscale(img, opts.MaxWidthOrHeight)
	}

	budget := int(opts.MaxSizeMB * 1024 * 1024)
	switch format {
	case "jpeg":
		return encodeJPEG(img, budget)
	case "png":
		var buf bytes.Buffer
		enc := png.Encoder{CompressionLevel: png.BestCompression}
		if err := enc.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("media: encode png: %w", err)
		}
		return buf.Bytes(), nil
	case "gif":
		var buf bytes.Buffer
		if err := gif.Encode(&buf, img, nil); err != nil {
			return nil, fmt.Errorf("media: encode gif: %w", err)
		}
		return buf.Bytes(), nil
	default:
		// Unknown but decodable format: normalize to JPEG.
		return encodeJPEG(img, budget)
	}
}

func encodeJPEG(img image.Image, budget int) ([]byte, error) {
	var last []byte
	for quality := 85; quality >= 25; quality -= 10 {
		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
			return nil, fmt.Errorf("media: encode jpeg: %w", err)
		}
		last = buf.Bytes()
		if budget <= 0 || len(last) <= budget {
			return last, nil
		}
	}
	// Could not meet the budget at the lowest quality step; ship the
	// smallest encoding rather than fail the batch.
	return last, nil
}

func downscale(src image.Image, maxDim int) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= maxDim && h <= maxDim {
		return src
	}

	nw, nh := w, h
	if w >= h {
		nw = maxDim
		nh = (h * maxDim) / w
	} else {
		nh = maxDim
		nw = (w * maxDim) / h
	}
	if nw < 1 {
		nw = 1
	}
	if nh < 1 {
		nh = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	// bilinear has a good quality / speed tradeoff
	draw.BiLinear.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
	return dst
}
