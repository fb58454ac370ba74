package oidc

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMatchVisaClaims(t *testing.T) {
	expected := []RequiredVisa{
		{"type": "ControlledAccessGrants", "value": "https://example.org/dataset1"},
		{"type": "AffiliationAndRole", "value": "faculty"},
	}
	visaObj := map[string]any{
		"type":  "ControlledAccessGrants",
		"value": "https://example.org/dataset1",
	}

	matched := matchVisaClaims(visaObj, expected)
	assert.Len(t, matched, 1)
	assert.Equal(t, "ControlledAccessGrants", matched[0]["type"])
}

func TestMatchVisaClaimsRejectsNonObject(t *testing.T) {
	assert.Nil(t, matchVisaClaims(nil, []RequiredVisa{{"type": "x"}}))
}

func TestRemoveVisas(t *testing.T) {
	all := []RequiredVisa{
		{"type": "A"},
		{"type": "B"},
	}
	remaining := removeVisas(all, []RequiredVisa{{"type": "A"}})
	assert.Len(t, remaining, 1)
	assert.Equal(t, "B", remaining[0]["type"])
}

func TestValidTimestamps(t *testing.T) {
	now := float64(time.Now().Unix())
	claims := map[string]any{"exp": now + 100, "iat": now - 100}
	assert.True(t, validTimestamps(claims, true))

	expired := map[string]any{"exp": now - 100}
	assert.False(t, validTimestamps(expired, true))
}
