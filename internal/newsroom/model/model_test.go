package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestKindFromMime(t *testing.T) {
	tests := []struct {
		mime string
		want MediaKind
	}{
		{"image/jpeg", KindImage},
		{" IMAGE/PNG ", KindImage},
		{"video/mp4", KindVideo},
		{"application/pdf", KindOther},
		{"", KindOther},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, KindFromMime(tt.mime), tt.mime)
	}
}

func TestMediaAsset_PersistedHref(t *testing.T) {
	a := &MediaAsset{}
	_, _, ok := a.PersistedHref()
	assert.False(t, ok)

	href := "https://downloader.example/a"
	a.CachedHref = &href
	_, _, ok = a.PersistedHref()
	assert.False(t, ok, "href without expiry is unusable")

	exp := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	a.CachedHrefExpiresAt = &exp
	got, gotExp, ok := a.PersistedHref()
	assert.True(t, ok)
	assert.Equal(t, href, got)
	assert.Equal(t, exp, gotExp)
}

func TestMediaAsset_PublicKeyValue(t *testing.T) {
	a := &MediaAsset{}
	assert.Equal(t, "", a.PublicKeyValue())
	pk := "PK1"
	a.PublicKey = &pk
	assert.Equal(t, "PK1", a.PublicKeyValue())
}
