package storage

import (
	"context"
	"testing"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient(t *testing.T) {
	tests := []struct {
		name     string
		cfg      Config
		wantHost string
		wantTLS  bool
	}{
		{
			name:     "BareEndpoint",
			cfg:      Config{Endpoint: "localhost:9000", AccessKey: "testkey", SecretKey: "testsecret", Bucket: "reconcile"},
			wantHost: "localhost:9000",
		},
		{
			name:     "EndpointWithHTTP",
			cfg:      Config{Endpoint: "http://minio.internal:9000", AccessKey: "testkey", SecretKey: "testsecret"},
			wantHost: "minio.internal:9000",
		},
		{
			name:     "EndpointWithHTTPS",
			cfg:      Config{Endpoint: "https://s3.amazonaws.com", AccessKey: "testkey", SecretKey: "testsecret", UseSSL: true, Region: "us-east-1"},
			wantHost: "s3.amazonaws.com",
			wantTLS:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewClient(tt.cfg)
			require.NoError(t, err)

			wrapped, ok := client.(*minioClientWrapper)
			require.True(t, ok)
			assert.Equal(t, tt.wantHost, wrapped.EndpointURL().Host)
			if tt.wantTLS {
				assert.Equal(t, "https", wrapped.EndpointURL().Scheme)
			} else {
				assert.Equal(t, "http", wrapped.EndpointURL().Scheme)
			}
		})
	}

	t.Run("InvalidEndpoint", func(t *testing.T) {
		_, err := NewClient(Config{Endpoint: "http://bad host:9000"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to create minio client")
	})
}

func TestDialTimeout(t *testing.T) {
	tests := []struct {
		name    string
		seconds int
		want    time.Duration
	}{
		{"Unset", 0, 30 * time.Second},
		{"Negative", -5, 30 * time.Second},
		{"Configured", 120, 2 * time.Minute},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, dialTimeout(tt.seconds))
		})
	}
}

func TestNewTransport(t *testing.T) {
	tr := newTransport(45 * time.Second)
	assert.Equal(t, 45*time.Second, tr.TLSHandshakeTimeout)
	assert.Equal(t, 45*time.Second, tr.ResponseHeaderTimeout)
	assert.NotNil(t, tr.DialContext)
	assert.True(t, tr.ForceAttemptHTTP2)
}

func TestGetObject_InvalidBucketReturnsNilReader(t *testing.T) {
	client, err := NewClient(Config{Endpoint: "localhost:9000", AccessKey: "testkey", SecretKey: "testsecret"})
	require.NoError(t, err)

	rc, err := client.GetObject(context.Background(), "", "tables/platform.xlsx", minio.GetObjectOptions{})
	require.Error(t, err)
	assert.Nil(t, rc)
}
