package utils

import (
	"encoding/base64"
	"testing"

	"platelens/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDataURL(t *testing.T) {
	payload := base64.StdEncoding.EncodeToString([]byte("fake-jpeg-bytes"))

	t.Run("valid image data URL", func(t *testing.T) {
		ct, data, err := ParseDataURL("data:image/jpeg;base64," + payload)
		require.NoError(t, err)
		assert.Equal(t, "image/jpeg", ct)
		assert.Equal(t, []byte("fake-jpeg-bytes"), data)
	})

	t.Run("rejections", func(t *testing.T) {
		cases := map[string]string{
			"no comma":        "data:image/png;base64",
			"no data prefix":  "http://example.com/a.png," + payload,
			"not base64 meta": "data:image/png," + payload,
			"non-image type":  "data:text/plain;base64," + payload,
			"bad base64":      "data:image/png;base64,!!!not-base64!!!",
			"empty payload":   "data:image/png;base64,",
		}
		for name, input := range cases {
			_, _, err := ParseDataURL(input)
			assert.Error(t, err, name)
		}
	})

	t.Run("oversized payload", func(t *testing.T) {
		big := base64.StdEncoding.EncodeToString(make([]byte, MaxImageBytes+1))
		_, _, err := ParseDataURL("data:image/png;base64," + big)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "exceeds limit")
	})
}

func TestOrientation(t *testing.T) {
	assert.Equal(t, models.OrientationLandscape, Orientation(1920, 1080))
	assert.Equal(t, models.OrientationPortrait, Orientation(1080, 1920))
	assert.Equal(t, models.OrientationSquare, Orientation(512, 512))
}
