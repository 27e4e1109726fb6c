package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPageNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   Page
		want Page
	}{
		{"zero", Page{}, Page{Limit: DefaultPageLimit}},
		{"too large", Page{Limit: 1000, Offset: 5}, Page{Limit: MaxPageLimit, Offset: 5}},
		{"negative offset", Page{Limit: 10, Offset: -3}, Page{Limit: 10}},
		{"kept", Page{Limit: 20, Offset: 40}, Page{Limit: 20, Offset: 40}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.in.Normalize())
		})
	}
}

func TestRefreshTokenExpired(t *testing.T) {
	now := time.Now()
	assert.False(t, (&RefreshToken{ExpiresAt: now.Add(time.Minute)}).Expired(now))
	assert.True(t, (&RefreshToken{ExpiresAt: now}).Expired(now))
	assert.True(t, (&RefreshToken{ExpiresAt: now.Add(-time.Second)}).Expired(now))
}

func TestIdentityIsAdmin(t *testing.T) {
	assert.True(t, Identity{ID: 1, Role: "admin"}.IsAdmin())
	assert.False(t, Identity{ID: 1, Role: "user"}.IsAdmin())
	assert.False(t, Identity{}.IsAdmin())
}
