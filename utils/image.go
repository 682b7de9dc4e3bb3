package utils

import (
	"encoding/base64"
	"fmt"
	"strings"

	"platelens/models"
)

// MaxImageBytes caps the decoded payload size. Callers are expected to
// downscale captures before sending; this is the hard limit.
const MaxImageBytes = 8 << 20

// ParseDataURL splits a "data:<mime>;base64,<data>" string and decodes
// the payload. Only image media types are accepted.
func ParseDataURL(dataURL string) (contentType string, data []byte, err error) {
	parts := strings.SplitN(dataURL, ",", 2)
	if len(parts) != 2 {
		return "", nil, fmt.Errorf("not a data URL")
	}
	meta := parts[0]
	if !strings.HasPrefix(meta, "data:") || !strings.HasSuffix(meta, ";base64") {
		return "", nil, fmt.Errorf("unsupported data URL header %q", meta)
	}
	contentType = strings.TrimSuffix(strings.TrimPrefix(meta, "data:"), ";base64")
	if !strings.HasPrefix(contentType, "image/") {
		return "", nil, fmt.Errorf("unsupported media type %q", contentType)
	}

	data, err = base64.StdEncoding.DecodeString(parts[1])
	if err != nil {
		return "", nil, fmt.Errorf("decode image payload: %v", err)
	}
	if len(data) == 0 {
		return "", nil, fmt.Errorf("empty image payload")
	}
	if len(data) > MaxImageBytes {
		return "", nil, fmt.Errorf("image payload %d bytes exceeds limit of %d", len(data), MaxImageBytes)
	}
	return contentType, data, nil
}

// Orientation classifies image dimensions.
func Orientation(width, height int) string {
	switch {
	case width > height:
		return models.OrientationLandscape
	case height > width:
		return models.OrientationPortrait
	default:
		return models.OrientationSquare
	}
}
