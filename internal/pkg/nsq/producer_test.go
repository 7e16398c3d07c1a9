package nsq

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProducer_Unreachable(t *testing.T) {
	producer, err := NewProducer("127.0.0.1:1")

	assert.Nil(t, producer)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to ping NSQ daemon")
}

func TestNewProducer_InvalidConfig(t *testing.T) {
	producer, err := NewProducer("")

	assert.Nil(t, producer)
	assert.Error(t, err)
}
