package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVerifyChecksum(t *testing.T) {
	data := []byte("records")
	sum := Checksum(data)

	assert.True(t, VerifyChecksum(sum, data))
	assert.False(t, VerifyChecksum(sum, []byte("Records")))
	assert.False(t, VerifyChecksum(sum+1, data))
	assert.Equal(t, uint32(0), Checksum(nil))
}
