package render

import (
	"bytes"
	"image"
	"image/jpeg"
	"image/png"
	"io"

	errs "github.com/matzehuels/collagefm/pkg/errors"
)

// Format is an output image encoding.
type Format string

const (
	PNG  Format = "png"
	JPEG Format = "jpeg"
)

// DefaultJPEGQuality is used when no quality is given.
const DefaultJPEGQuality = 90

// ValidFormats lists the supported encodings.
var ValidFormats = map[Format]bool{PNG: true, JPEG: true}

// ParseFormat validates a format name. "jpg" is accepted as [JPEG]; empty
// means [PNG].
func ParseFormat(s string) (Format, error) {
	switch s {
	case "":
		return PNG, nil
	case "jpg":
		return JPEG, nil
	}
	f := Format(s)
	if !ValidFormats[f] {
		return "", errs.New(errs.ErrCodeInvalidFormat, "invalid format: %s (must be png or jpeg)", s)
	}
	return f, nil
}

// Ext returns the file extension for f, including the dot.
func (f Format) Ext() string {
	if f == JPEG {
		return ".jpg"
	}
	return ".png"
}

// ContentType returns the MIME type for f.
func (f Format) ContentType() string {
	if f == JPEG {
		return "image/jpeg"
	}
	return "image/png"
}

// Encode writes img to w in format f.
func Encode(w io.Writer, img image.Image, f Format) error {
	switch f {
	case JPEG:
		return jpeg.Encode(w, img, &jpeg.Options{Quality: DefaultJPEGQuality})
	case PNG, "":
		return png.Encode(w, img)
	default:
		return errs.New(errs.ErrCodeInvalidFormat, "invalid format: %s", f)
	}
}

// EncodeBytes encodes img into memory.
func EncodeBytes(img image.Image, f Format) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, img, f); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
