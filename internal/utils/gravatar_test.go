package utils

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGravatarURLNormalizesEmail(t *testing.T) {
	// Gravatar hashes the lower-cased, trimmed address.
	a := GravatarURL("User@Example.com ")
	b := GravatarURL("user@example.com")
	assert.Equal(t, b, a)
	// MD5 of "user@example.com"
	assert.Equal(t, "https://www.gravatar.com/avatar/b58996c504c5638798eb6b511e6f49af?d=404", b)
}

func TestGravatarLookup(t *testing.T) {
	// One known hash gets an image, everything else is a 404.
	const knownHash = "b58996c504c5638798eb6b511e6f49af" // user@example.com
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/"+knownHash {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	g := &Gravatar{Client: srv.Client(), baseURL: srv.URL}

	url, err := g.Lookup(context.Background(), "User@Example.com ")
	require.NoError(t, err)
	assert.Contains(t, url, knownHash)

	_, err = g.Lookup(context.Background(), "missing@example.com")
	assert.Error(t, err)
}
