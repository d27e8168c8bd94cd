package middleware

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type samplePayload struct {
	ShopID string  `json:"shopId" validate:"required,uuid"`
	Name   string  `json:"name" validate:"required,max=8"`
	URL    *string `json:"url,omitempty" validate:"omitempty,url"`
}

func TestValidateStruct(t *testing.T) {
	bad := "not a url"
	details := ValidateStruct(&samplePayload{ShopID: "nope", Name: "way too long for the cap", URL: &bad})
	require.Len(t, details, 3)
	assert.Contains(t, details[0], "must be a valid UUID")
	assert.Contains(t, details[1], "must be at most 8")
	assert.Contains(t, details[2], "must be a valid URL")

	details = ValidateStruct(&samplePayload{})
	require.Len(t, details, 2)
	assert.Contains(t, details[0], "is required")

	ok := ValidateStruct(&samplePayload{ShopID: "5b6962dd-3f90-4c93-8f61-eeafe4a52e07", Name: "short"})
	assert.Nil(t, ok)
}

func TestValidateUUID(t *testing.T) {
	assert.NoError(t, ValidateUUID("id", "5b6962dd-3f90-4c93-8f61-eeafe4a52e07"))

	err := ValidateUUID("shopId", "abc")
	require.Error(t, err)
	assert.Equal(t, "shopId must be a valid UUID", err.Error())
}
