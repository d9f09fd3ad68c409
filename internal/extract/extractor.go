// Package extract turns a receipt photo into a validated receipt using a
// generative model. Nothing partially valid ever leaves this package.
package extract

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gana36/billbeam/internal/models"
)

// MaxImageBytes is the largest photo sent inline to the model.
const MaxImageBytes = 20 << 20

var (
	ErrExtraction        = errors.New("receipt extraction failed")
	ErrMissingAPIKey     = fmt.Errorf("%w: missing Gemini API key", ErrExtraction)
	ErrEmptyImage        = fmt.Errorf("%w: empty image", ErrExtraction)
	ErrImageTooLarge     = fmt.Errorf("%w: image too large", ErrExtraction)
	ErrUnsupportedImage  = fmt.Errorf("%w: unsupported image type", ErrExtraction)
	ErrMalformedResponse = fmt.Errorf("%w: model response is not valid receipt JSON", ErrExtraction)
	ErrNoItems           = fmt.Errorf("%w: no items found", ErrExtraction)
	ErrNonNumericPrice   = fmt.Errorf("%w: non-numeric price", ErrExtraction)
)

var supportedTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"image/heic": true,
	"image/heif": true,
}

// Image is a receipt photo as uploaded.
type Image struct {
	Data     []byte
	MIMEType string
}

// Extractor reads a receipt photo into a receipt with fresh item IDs and no assignments.
type Extractor interface {
	Extract(ctx context.Context, img Image) (*models.Receipt, error)
}

// Validate checks the image and fills in a sniffed MIME type when none was given.
func (img *Image) Validate() error {
	if len(img.Data) == 0 {
		return ErrEmptyImage
	}
	if len(img.Data) > MaxImageBytes {
		return ErrImageTooLarge
	}
	if img.MIMEType == "" {
		img.MIMEType = http.DetectContentType(img.Data)
	}
	mime := strings.ToLower(strings.TrimSpace(strings.Split(img.MIMEType, ";")[0]))
	if !supportedTypes[mime] {
		return fmt.Errorf("%w: %s", ErrUnsupportedImage, img.MIMEType)
	}
	img.MIMEType = mime
	return nil
}

// Extension returns a file extension for the image type, used for archive keys.
func (img Image) Extension() string {
	switch img.MIMEType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	case "image/heic":
		return ".heic"
	case "image/heif":
		return ".heif"
	default:
		return ""
	}
}

// UserMessage maps an extraction error to text suitable for the capture screen.
func UserMessage(err error) string {
	switch {
	case errors.Is(err, ErrNoItems):
		return "No items found in receipt. Please try again."
	case errors.Is(err, ErrNonNumericPrice):
		return "Could not extract prices. Please try a clearer photo."
	case errors.Is(err, ErrMalformedResponse):
		return "Failed to read the receipt. Please try again."
	case errors.Is(err, ErrEmptyImage), errors.Is(err, ErrUnsupportedImage):
		return "Please upload a photo of the receipt."
	case errors.Is(err, ErrImageTooLarge):
		return "That photo is too large. Please try a smaller one."
	case errors.Is(err, ErrMissingAPIKey):
		return "Receipt scanning is not configured."
	default:
		return "Failed to process receipt. Please try again."
	}
}
