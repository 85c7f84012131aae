package tracing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestNewProvider_Disabled(t *testing.T) {
	provider, err := NewProvider(nil, Config{Enabled: false}, zap.NewNop())
	assert.NoError(t, err)
	assert.NotNil(t, provider)
}

func TestNewProvider_Enabled(t *testing.T) {
	provider, err := NewProvider(nil, Config{
		Enabled:          true,
		ServiceName:      "kasira",
		ServiceVersion:   "0.1.0",
		Environment:      "test",
		ExporterEndpoint: "localhost:4317",
		ExporterProtocol: "grpc",
		SamplingRatio:    0.5,
	}, zap.NewNop())
	assert.NoError(t, err)
	assert.NotNil(t, provider)
}

func TestNewProvider_UnsupportedProtocol(t *testing.T) {
	_, err := NewProvider(nil, Config{
		Enabled:          true,
		ExporterProtocol: "carrier-pigeon",
	}, zap.NewNop())
	assert.Error(t, err)
}
