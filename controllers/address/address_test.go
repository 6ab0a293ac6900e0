package addressControllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestResolver(handler http.HandlerFunc) (*Resolver, *httptest.Server) {
	srv := httptest.NewServer(handler)
	return &Resolver{BaseURL: srv.URL, HTTP: &http.Client{Timeout: time.Second}}, srv
}

func TestResolveRejectsBadFormatWithoutNetworkCall(t *testing.T) {
	var calls int32
	resolver, srv := newTestResolver(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	})
	defer srv.Close()

	for _, cep := range []string{"", "1234567", "123456789", "abc", "12.345-67", "03878-02"} {
		_, err := resolver.Resolve(context.Background(), cep)
		assert.ErrorIs(t, err, ErrInvalidFormat, "cep %q", cep)
	}
	assert.Zero(t, atomic.LoadInt32(&calls), "invalid postal codes must not hit the provider")
}

func TestResolveStripsFormatting(t *testing.T) {
	resolver, srv := newTestResolver(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/03878020/json/", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"cep":"03878-020","logradouro":"Rua dos Argentinos","bairro":"Ponte Rasa","localidade":"São Paulo","uf":"SP"}`))
	})
	defer srv.Close()

	addr, err := resolver.Resolve(context.Background(), "03878-020")
	require.NoError(t, err)
	assert.Equal(t, "Rua dos Argentinos", addr.Street)
	assert.Equal(t, "Ponte Rasa", addr.District)
	assert.Equal(t, "São Paulo", addr.City)
	assert.Equal(t, "SP", addr.Region)
	assert.Equal(t, "03878020", addr.PostalCode)
}

func TestResolveNotFound(t *testing.T) {
	resolver, srv := newTestResolver(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"erro": true}`))
	})
	defer srv.Close()

	_, err := resolver.Resolve(context.Background(), "99999999")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResolveProviderError(t *testing.T) {
	resolver, srv := newTestResolver(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	defer srv.Close()

	_, err := resolver.Resolve(context.Background(), "03878020")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidFormat)
	assert.NotErrorIs(t, err, ErrNotFound)
}
