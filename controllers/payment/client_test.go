package paymentControllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(handler http.HandlerFunc) (*Client, *httptest.Server) {
	srv := httptest.NewServer(handler)
	return &Client{BaseURL: srv.URL, AccessToken: "TEST-token", HTTP: &http.Client{Timeout: time.Second}}, srv
}

func TestCreateApproved(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/payments", r.URL.Path)
		assert.Equal(t, "Bearer TEST-token", r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.Header.Get("X-Idempotency-Key"))

		var payload map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, 135.0, payload["transaction_amount"])
		// empty payer email is defaulted, never sent blank
		payer := payload["payer"].(map[string]interface{})
		assert.NotEmpty(t, payer["email"])

		json.NewEncoder(w).Encode(map[string]interface{}{"id": 12345, "status": "approved"})
	})
	defer srv.Close()

	result, err := client.Create(context.Background(), CreateRequest{Amount: 135.00, Token: "tok_1", MethodID: "visa"})
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, result.Status)
	assert.Equal(t, "12345", result.ProviderID)
	assert.True(t, result.Paid())
}

func TestCreatePendingCarriesPixPayload(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"id":     67890,
			"status": "pending",
			"point_of_interaction": map[string]interface{}{
				"transaction_data": map[string]interface{}{
					"qr_code":        "00020126pixcode",
					"qr_code_base64": "aW1hZ2U=",
				},
			},
		})
	})
	defer srv.Close()

	result, err := client.Create(context.Background(), CreateRequest{Amount: 45.00, MethodID: "pix"})
	require.NoError(t, err)
	assert.Equal(t, StatusPending, result.Status)
	assert.Equal(t, "00020126pixcode", result.QRCode)
	assert.Equal(t, "aW1hZ2U=", result.QRCodeBase64)
	assert.True(t, result.Paid())
}

func TestCreateInProcessMapsToPending(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"id": 1, "status": "in_process"})
	})
	defer srv.Close()

	result, err := client.Create(context.Background(), CreateRequest{Amount: 10})
	require.NoError(t, err)
	assert.Equal(t, StatusPending, result.Status)
	// Pix payload absent: fields default to empty, no panic
	assert.Empty(t, result.QRCode)
}

func TestCreateRejectedKeepsDetailVerbatim(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"id": 2, "status": "rejected", "status_detail": "cc_rejected_insufficient_amount",
		})
	})
	defer srv.Close()

	result, err := client.Create(context.Background(), CreateRequest{Amount: 10, Token: "tok"})
	require.NoError(t, err)
	assert.Equal(t, StatusRejected, result.Status)
	assert.Equal(t, "cc_rejected_insufficient_amount", result.Detail)
	assert.False(t, result.Paid())
}

func TestCreateFreshIdempotencyKeyPerSubmission(t *testing.T) {
	var keys []string
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		keys = append(keys, r.Header.Get("X-Idempotency-Key"))
		json.NewEncoder(w).Encode(map[string]interface{}{"id": 1, "status": "approved"})
	})
	defer srv.Close()

	for i := 0; i < 3; i++ {
		_, err := client.Create(context.Background(), CreateRequest{Amount: 10})
		require.NoError(t, err)
	}
	require.Len(t, keys, 3)
	assert.NotEqual(t, keys[0], keys[1])
	assert.NotEqual(t, keys[1], keys[2])
}

func TestCreateProviderFailureIsAnError(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"invalid access token"}`))
	})
	defer srv.Close()

	_, err := client.Create(context.Background(), CreateRequest{Amount: 10})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestCreateMalformedResponseIsAnError(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	})
	defer srv.Close()

	_, err := client.Create(context.Background(), CreateRequest{Amount: 10})
	require.Error(t, err)
}
