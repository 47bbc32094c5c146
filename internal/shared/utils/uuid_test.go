package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewOrderedIDIsMonotonic(t *testing.T) {
	prev := NewOrderedID()
	for i := 0; i < 100; i++ {
		next := NewOrderedID()
		assert.Less(t, prev, next)
		prev = next
	}
}

func TestIsUUID(t *testing.T) {
	assert.True(t, IsUUID(NewUUID()))
	assert.True(t, IsUUID(NewOrderedID()))
	assert.False(t, IsUUID(""))
	assert.False(t, IsUUID("fixed"))
	assert.False(t, IsUUID("urn:uuid:"+NewUUID()))
}
