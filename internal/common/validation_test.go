package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateMessageText(t *testing.T) {
	assert.NoError(t, ValidateMessageText("hi"))
	assert.Error(t, ValidateMessageText(""))
	assert.Error(t, ValidateMessageText("   \t\n"))

	long := make([]byte, 2001)
	for i := range long {
		long[i] = 'a'
	}
	assert.Error(t, ValidateMessageText(string(long)))
}

func TestValidateDisplayName(t *testing.T) {
	assert.NoError(t, ValidateDisplayName("Alice"))
	assert.Error(t, ValidateDisplayName("a"))
	assert.Error(t, ValidateDisplayName("  "))
}

func TestValidateEmail(t *testing.T) {
	assert.NoError(t, ValidateEmail("alice@example.com"))
	assert.NoError(t, ValidateEmail("  Alice@Example.COM "))
	assert.Error(t, ValidateEmail(""))
	assert.Error(t, ValidateEmail("not-an-email"))
}

func TestValidateStars(t *testing.T) {
	assert.Error(t, ValidateStars(0))
	assert.NoError(t, ValidateStars(1))
	assert.NoError(t, ValidateStars(5))
	assert.Error(t, ValidateStars(6))
}
