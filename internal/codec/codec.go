// Package codec decodes encoded image blobs into pixel buffers and encodes
// composed buffers back into blobs.
//
// The session core treats the source image as an opaque byte slice; this
// package is the only place that knows about encodings. Supported decode
// formats are PNG, JPEG, GIF, WebP, and QOI, detected by magic bytes rather
// than by any caller-supplied hint. The canonical output encoding is PNG;
// QOI is available as a lossless alternative.
package codec

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	"image/jpeg"
	"image/png"

	"github.com/xfmoulet/qoi"
	"golang.org/x/image/webp"
)

// ErrDecode wraps every decode failure from this package. A blob that does
// not decode produces no partial output.
var ErrDecode = errors.New("codec: image decode failed")

// MIME types returned by SniffMIME.
const (
	MIMEPNG     = "image/png"
	MIMEJPEG    = "image/jpeg"
	MIMEGIF     = "image/gif"
	MIMEWebP    = "image/webp"
	MIMEQOI     = "image/qoi"
	MIMEUnknown = "application/octet-stream"
)

// ImageInfo describes a decoded image blob.
type ImageInfo struct {
	// Width and Height are the pixel dimensions of the decoded image.
	Width  int `json:"width"`
	Height int `json:"height"`

	// MIME is the sniffed content type of the encoded blob.
	MIME string `json:"mime_type"`

	// SizeBytes is the length of the encoded blob.
	SizeBytes int `json:"size_bytes"`
}

// SniffMIME detects the encoding of blob from its magic bytes. Unknown or
// truncated blobs report MIMEUnknown.
func SniffMIME(blob []byte) string {
	switch {
	case len(blob) >= 8 && bytes.Equal(blob[:8], []byte("\x89PNG\r\n\x1a\n")):
		return MIMEPNG
	case len(blob) >= 3 && bytes.Equal(blob[:3], []byte{0xFF, 0xD8, 0xFF}):
		return MIMEJPEG
	case len(blob) >= 6 && (bytes.Equal(blob[:6], []byte("GIF87a")) || bytes.Equal(blob[:6], []byte("GIF89a"))):
		return MIMEGIF
	case len(blob) >= 12 && bytes.Equal(blob[:4], []byte("RIFF")) && bytes.Equal(blob[8:12], []byte("WEBP")):
		return MIMEWebP
	case len(blob) >= 4 && bytes.Equal(blob[:4], []byte("qoif")):
		return MIMEQOI
	default:
		return MIMEUnknown
	}
}

// Decode decodes blob into an image plus metadata.
//
// The format is sniffed from the blob itself. All failures are wrapped in
// ErrDecode so callers can classify them with errors.Is.
func Decode(blob []byte) (image.Image, *ImageInfo, error) {
	mime := SniffMIME(blob)

	var (
		img image.Image
		err error
	)
	switch mime {
	case MIMEWebP:
		img, err = webp.Decode(bytes.NewReader(blob))
	case MIMEQOI:
		img, err = qoi.Decode(bytes.NewReader(blob))
	case MIMEUnknown:
		err = fmt.Errorf("unrecognized image format")
	default:
		img, _, err = image.Decode(bytes.NewReader(blob))
	}
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	bounds := img.Bounds()
	return img, &ImageInfo{
		Width:     bounds.Dx(),
		Height:    bounds.Dy(),
		MIME:      mime,
		SizeBytes: len(blob),
	}, nil
}

// DecodeInfo decodes only the blob header and returns its metadata without
// materializing pixels. Used at session start to validate the source.
func DecodeInfo(blob []byte) (*ImageInfo, error) {
	mime := SniffMIME(blob)

	var (
		cfg image.Config
		err error
	)
	switch mime {
	case MIMEWebP:
		cfg, err = webp.DecodeConfig(bytes.NewReader(blob))
	case MIMEQOI:
		cfg, err = qoi.DecodeConfig(bytes.NewReader(blob))
	case MIMEUnknown:
		err = fmt.Errorf("unrecognized image format")
	default:
		cfg, _, err = image.DecodeConfig(bytes.NewReader(blob))
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	return &ImageInfo{
		Width:     cfg.Width,
		Height:    cfg.Height,
		MIME:      mime,
		SizeBytes: len(blob),
	}, nil
}

// EncodePNG encodes img as PNG, the canonical output format for applied
// edits.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("codec: png encode: %w", err)
	}
	return buf.Bytes(), nil
}

// EncodeJPEG encodes img as JPEG with the given quality (1-100; 0 selects
// the encoder default).
func EncodeJPEG(img image.Image, quality int) ([]byte, error) {
	var opts *jpeg.Options
	if quality > 0 {
		opts = &jpeg.Options{Quality: quality}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, opts); err != nil {
		return nil, fmt.Errorf("codec: jpeg encode: %w", err)
	}
	return buf.Bytes(), nil
}

// EncodeQOI encodes img as QOI, a fast lossless format.
func EncodeQOI(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := qoi.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("codec: qoi encode: %w", err)
	}
	return buf.Bytes(), nil
}
