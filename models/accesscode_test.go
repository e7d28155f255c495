package models_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/teamlexia/admin-api/models"
)

func TestAccessCodeIsExpired(t *testing.T) {
	now := time.Now()
	code := models.AccessCode{ExpiresAt: now.Add(time.Hour)}

	assert.False(t, code.IsExpired(now))
	assert.True(t, code.IsExpired(now.Add(2*time.Hour)))
}

func TestAccessCodeIsActive(t *testing.T) {
	now := time.Now()

	active := models.AccessCode{ExpiresAt: now.Add(time.Hour)}
	assert.True(t, active.IsActive(now))

	used := models.AccessCode{ExpiresAt: now.Add(time.Hour), IsUsed: true}
	assert.False(t, used.IsActive(now))

	expired := models.AccessCode{ExpiresAt: now.Add(-time.Minute)}
	assert.False(t, expired.IsActive(now))
}

func TestAccessCodeActiveFlipsAtExpiry(t *testing.T) {
	now := time.Now()
	code := models.AccessCode{ExpiresAt: now}

	assert.True(t, code.IsActive(now.Add(-time.Second)))
	assert.False(t, code.IsActive(now))
}
