package masking

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaskSecret(t *testing.T) {
	assert.Equal(t, "", MaskSecret("  "))
	assert.Equal(t, "****", MaskSecret("abc"))
	assert.Equal(t, "****6789", MaskSecret("19800101-6789"))
	assert.Equal(t, "cus_****7890", MaskSecret("cus_1234567890"))
}

func TestMaskMetadata(t *testing.T) {
	got := MaskMetadata(map[string]any{
		"email":           "anna@example.se",
		"personal_number": "19800101-6789",
		"applicant": map[string]any{
			"Password": "hemligt-losen",
			"name":     "Anna",
		},
		"recipients": 12,
		" ":          "dropped",
	})

	assert.Equal(t, map[string]any{
		"email":           "anna@example.se",
		"personal_number": "****6789",
		"applicant": map[string]any{
			"Password": "****osen",
			"name":     "Anna",
		},
		"recipients": 12,
	}, got)

	assert.Nil(t, MaskMetadata(nil))
}
