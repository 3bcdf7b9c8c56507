package clients

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsConnectionError(t *testing.T) {
	assert.False(t, isConnectionError(nil))
	assert.True(t, isConnectionError(errors.New("dial tcp 127.0.0.1:6379: connect: connection refused")))
	assert.True(t, isConnectionError(errors.New("unexpected EOF")))
	assert.True(t, isConnectionError(errors.New("read tcp: i/o timeout")))
	assert.False(t, isConnectionError(errors.New("WRONGTYPE Operation against a key")))
}
