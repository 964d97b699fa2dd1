package s3store

import (
	"errors"
	"fmt"
	"testing"

	"portfolio_gallery/internal/config"

	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
)

func TestEndpointURL(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.ObjectStoreConfig
		want string
	}{
		{name: "aws default", cfg: config.ObjectStoreConfig{}, want: ""},
		{name: "plain host", cfg: config.ObjectStoreConfig{Endpoint: "localhost:9000"}, want: "http://localhost:9000"},
		{name: "plain host tls", cfg: config.ObjectStoreConfig{Endpoint: "s3.local", UseSSL: true}, want: "https://s3.local"},
		{name: "full url", cfg: config.ObjectStoreConfig{Endpoint: "https://r2.example.com"}, want: "https://r2.example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, endpointURL(tt.cfg))
		})
	}
}

func TestStorage_PublicURL(t *testing.T) {
	key := "1700000000000-abc1234.jpg"

	s := &Storage{bucket: "gallery-images", region: "eu-west-1"}
	assert.Equal(t, "https://gallery-images.s3.eu-west-1.amazonaws.com/"+key, s.PublicURL(key))

	s.endpoint = "http://localhost:9000/"
	assert.Equal(t, "http://localhost:9000/gallery-images/"+key, s.PublicURL(key))

	s.publicBase = "https://cdn.example.com"
	assert.Equal(t, "https://cdn.example.com/"+key, s.PublicURL(key))
}

func TestIsAPIError(t *testing.T) {
	err := fmt.Errorf("put: %w", &smithy.GenericAPIError{Code: "PreconditionFailed", Message: "At least one of the pre-conditions you specified did not hold"})

	assert.True(t, isAPIError(err, "PreconditionFailed", "ConditionalRequestConflict"))
	assert.False(t, isAPIError(err, "NoSuchKey"))
	assert.False(t, isAPIError(errors.New("dial tcp: connection refused"), "PreconditionFailed"))
}
