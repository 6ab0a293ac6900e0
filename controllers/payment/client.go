package paymentControllers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusApproved Status = "approved"
	StatusPending  Status = "pending"
	StatusRejected Status = "rejected"
)

// Result is the interpreted provider outcome. Optional provider fields are
// never trusted to be present; absent ones stay zero-valued.
type Result struct {
	Status     Status `json:"status"`
	ProviderID string `json:"provider_id"`
	// Detail carries the provider's status_detail verbatim on rejection.
	Detail string `json:"detail,omitempty"`
	// Pix payload, only set on pending Pix payments.
	QRCode       string `json:"qr_code,omitempty"`
	QRCodeBase64 string `json:"qr_code_base64,omitempty"`
}

// Paid reports whether an order may be created for this outcome.
func (r *Result) Paid() bool {
	return r.Status == StatusApproved || r.Status == StatusPending
}

// CreateRequest is assembled server-side: the amount comes from the cart
// computation, never from the payment UI.
type CreateRequest struct {
	Amount       float64
	Description  string
	Token        string
	MethodID     string
	Installments int
	PayerEmail   string
	PayerName    string
}

// Client submits payments to a Mercado-Pago-style processing endpoint.
type Client struct {
	BaseURL     string
	AccessToken string
	HTTP        *http.Client
}

func NewClient() *Client {
	base := os.Getenv("MP_API_URL")
	if base == "" {
		base = "https://api.mercadopago.com"
	}
	return &Client{
		BaseURL:     base,
		AccessToken: os.Getenv("MP_ACCESS_TOKEN"),
		HTTP:        &http.Client{Timeout: 30 * time.Second},
	}
}

type providerResponse struct {
	ID                 json.Number `json:"id"`
	Status             string      `json:"status"`
	StatusDetail       string      `json:"status_detail"`
	PointOfInteraction struct {
		TransactionData struct {
			QRCode       string `json:"qr_code"`
			QRCodeBase64 string `json:"qr_code_base64"`
		} `json:"transaction_data"`
	} `json:"point_of_interaction"`
}

// Create submits the payment. Every call carries a fresh idempotency key so
// a client-side retry cannot double-charge. Network and malformed-response
// failures are returned as errors; the caller decides how to surface them.
func (c *Client) Create(ctx context.Context, req CreateRequest) (*Result, error) {
	email := req.PayerEmail
	if email == "" {
		email = "cliente@tarsisweet.com"
	}
	installments := req.Installments
	if installments < 1 {
		installments = 1
	}

	payload := map[string]interface{}{
		"transaction_amount": req.Amount,
		"description":        req.Description,
		"payment_method_id":  req.MethodID,
		"token":              req.Token,
		"installments":       installments,
		"payer": map[string]interface{}{
			"email":      email,
			"first_name": req.PayerName,
		},
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/v1/payments", bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.AccessToken)
	httpReq.Header.Set("X-Idempotency-Key", uuid.NewString())

	resp, err := c.HTTP.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("payment provider unreachable: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("payment provider error (%d): %s", resp.StatusCode, string(body))
	}

	var pr providerResponse
	if err := json.Unmarshal(body, &pr); err != nil {
		return nil, fmt.Errorf("failed to parse payment response: %w", err)
	}

	result := &Result{ProviderID: pr.ID.String()}
	switch pr.Status {
	case "approved":
		result.Status = StatusApproved
	case "pending", "in_process":
		result.Status = StatusPending
		result.QRCode = pr.PointOfInteraction.TransactionData.QRCode
		result.QRCodeBase64 = pr.PointOfInteraction.TransactionData.QRCodeBase64
	default:
		result.Status = StatusRejected
		result.Detail = pr.StatusDetail
	}
	return result, nil
}
