package deliveryControllers

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/oauth2/clientcredentials"
)

// ErrIncompleteAddress: delivery quoting needs at least street and number.
var ErrIncompleteAddress = errors.New("street and number are required for a delivery quote")

// DefaultDeliveryFee is charged when the courier provider cannot give a
// quote. Checkout must not be blocked by the provider being down.
const DefaultDeliveryFee = 15.00

// StoreOrigin is the fixed pickup identity sent with every quote and
// dispatch request.
type StoreOrigin struct {
	Name      string
	Phone     string
	Address   string
	Latitude  float64
	Longitude float64
}

// FullAddress is the destination as collected at checkout: the resolved
// street/district/city/region plus the number and complement typed by the
// customer.
type FullAddress struct {
	Street     string `json:"street"`
	Number     string `json:"number"`
	Complement string `json:"complement"`
	District   string `json:"district"`
	City       string `json:"city"`
	Region     string `json:"region"`
	PostalCode string `json:"postal_code"`
}

func (a FullAddress) String() string {
	parts := []string{a.Street + ", " + a.Number}
	if a.Complement != "" {
		parts = append(parts, a.Complement)
	}
	parts = append(parts, a.District, a.City+" - "+a.Region, a.PostalCode)
	return strings.Join(parts, ", ")
}

// Fingerprint ties a quote to the exact address it was computed for. Any
// edit to the address changes the fingerprint and invalidates the quote.
func (a FullAddress) Fingerprint() string {
	h := sha256.Sum256([]byte(strings.ToLower(a.String())))
	return hex.EncodeToString(h[:])
}

// Quote is the provider's fee/ETA offer, held by the client between quoting
// and order submission. Fee is in whole currency units. The quote round-trips
// through the customer's browser, so the server signs it on issue and only
// accepts it back with a matching signature.
type Quote struct {
	ID                 string    `json:"id"`
	Fee                float64   `json:"fee"`
	ExpiresAt          time.Time `json:"expires_at"`
	AddressFingerprint string    `json:"address_fingerprint"`
	// Fallback is set when the provider failed and the default fee applies.
	Fallback  bool   `json:"fallback"`
	Warning   string `json:"warning,omitempty"`
	Signature string `json:"signature"`
}

// Valid reports whether the quote can still back an order for dest. It does
// not check the signature; callers accepting a quote from outside must also
// call Verify.
func (q Quote) Valid(dest FullAddress, now time.Time) bool {
	if q.Fee < 0 {
		return false
	}
	if q.Fallback {
		return q.AddressFingerprint == dest.Fingerprint()
	}
	return q.ID != "" &&
		q.AddressFingerprint == dest.Fingerprint() &&
		!q.ExpiresAt.IsZero() && now.Before(q.ExpiresAt)
}

func (q Quote) signingManifest() string {
	return fmt.Sprintf("id:%s;fee:%.2f;expires:%d;addr:%s;fallback:%t;",
		q.ID, q.Fee, q.ExpiresAt.Unix(), q.AddressFingerprint, q.Fallback)
}

// Sign stamps the quote so it can be handed to the client and recognized as
// the server's own when it comes back at checkout.
func (q *Quote) Sign(secret []byte) {
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(q.signingManifest()))
	q.Signature = hex.EncodeToString(mac.Sum(nil))
}

// Verify reports whether the signature matches the quote's fields. Any field
// edited after signing, the fee included, fails verification.
func (q Quote) Verify(secret []byte) bool {
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(q.signingManifest()))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(q.Signature), []byte(expected))
}

// SigningSecret is the key quotes are signed with.
func SigningSecret() []byte {
	if s := os.Getenv("QUOTE_SIGNING_SECRET"); s != "" {
		return []byte(s)
	}
	return []byte(os.Getenv("JWT_SECRET"))
}

// Dispatch result returned by the courier provider.
type Delivery struct {
	ID          string `json:"id"`
	Status      string `json:"status"`
	TrackingURL string `json:"tracking_url,omitempty"`
}

// Client talks to an Uber-Direct-style dispatch API. The zero HTTP client is
// replaced by an OAuth2 client-credentials transport in NewClient; tests
// inject a plain client against an httptest server.
type Client struct {
	BaseURL    string
	CustomerID string
	Origin     StoreOrigin
	HTTP       *http.Client
	Secret     []byte
}

func NewClient(origin StoreOrigin) *Client {
	base := os.Getenv("UBER_API_URL")
	if base == "" {
		base = "https://api.uber.com"
	}
	tokenURL := os.Getenv("UBER_LOGIN_URL")
	if tokenURL == "" {
		tokenURL = "https://login.uber.com/oauth/v2/token"
	}

	cc := clientcredentials.Config{
		ClientID:     os.Getenv("UBER_CLIENT_ID"),
		ClientSecret: os.Getenv("UBER_CLIENT_SECRET"),
		TokenURL:     tokenURL,
		Scopes:       []string{"eats.deliveries", "direct.organizations"},
	}

	return &Client{
		BaseURL:    base,
		CustomerID: os.Getenv("UBER_CUSTOMER_ID"),
		Origin:     origin,
		HTTP:       cc.Client(context.Background()),
		Secret:     SigningSecret(),
	}
}

type quoteResponse struct {
	ID      string `json:"id"`
	Fee     int64  `json:"fee"` // minor currency units
	Expires string `json:"expires"`
}

// Quote asks the provider for a delivery fee to dest. The returned fee is
// already converted from minor units. Provider failures bubble up as errors;
// use QuoteWithFallback from checkout.
func (c *Client) Quote(ctx context.Context, dest FullAddress) (*Quote, error) {
	if strings.TrimSpace(dest.Street) == "" || strings.TrimSpace(dest.Number) == "" {
		return nil, ErrIncompleteAddress
	}

	payload := map[string]interface{}{
		"pickup_address":   c.Origin.Address,
		"dropoff_address":  dest.String(),
		"pickup_latitude":  c.Origin.Latitude,
		"pickup_longitude": c.Origin.Longitude,
	}

	var body quoteResponse
	if err := c.post(ctx, "/delivery_quotes", payload, &body); err != nil {
		return nil, err
	}

	expires, err := time.Parse(time.RFC3339, body.Expires)
	if err != nil || expires.IsZero() {
		// provider gave no usable expiry, keep the lock short
		expires = time.Now().Add(5 * time.Minute)
	}
	quote := &Quote{
		ID:                 body.ID,
		Fee:                float64(body.Fee) / 100,
		ExpiresAt:          expires,
		AddressFingerprint: dest.Fingerprint(),
	}
	quote.Sign(c.Secret)
	return quote, nil
}

// QuoteWithFallback never fails on provider errors: it degrades to the
// default fee and carries a warning for the UI. Address validation errors
// are still returned as-is.
func (c *Client) QuoteWithFallback(ctx context.Context, dest FullAddress) (*Quote, error) {
	quote, err := c.Quote(ctx, dest)
	if err == nil {
		return quote, nil
	}
	if errors.Is(err, ErrIncompleteAddress) {
		return nil, err
	}
	fallback := &Quote{
		Fee:                DefaultDeliveryFee,
		AddressFingerprint: dest.Fingerprint(),
		Fallback:           true,
		Warning:            fmt.Sprintf("could not get a live quote, using the standard fee: %v", err),
	}
	fallback.Sign(c.Secret)
	return fallback, nil
}

// Recipient is who the courier hands the order to.
type Recipient struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// Dispatch creates the courier job against a previously obtained quote.
func (c *Client) Dispatch(ctx context.Context, dest FullAddress, recipient Recipient, orderDetails, quoteID string) (*Delivery, error) {
	payload := map[string]interface{}{
		"pickup_name":           c.Origin.Name,
		"pickup_address":        c.Origin.Address,
		"pickup_phone_number":   c.Origin.Phone,
		"pickup_latitude":       c.Origin.Latitude,
		"pickup_longitude":      c.Origin.Longitude,
		"dropoff_name":          recipient.Name,
		"dropoff_address":       dest.String(),
		"dropoff_phone_number":  NormalizePhone(recipient.Phone),
		"pickup_notes":          orderDetails,
		"deliverable_action":    "deliverable_action_meet_at_door",
		"manifest_items": []map[string]interface{}{
			{"name": "Encomenda Tarsi Sweet", "quantity": 1, "size": "small", "must_be_upright": true},
		},
	}
	if quoteID != "" {
		payload["quote_id"] = quoteID
	}

	var out Delivery
	if err := c.post(ctx, "/deliveries", payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Status fetches the current state of a courier job.
func (c *Client) Status(ctx context.Context, deliveryID string) (*Delivery, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/v1/customers/%s/deliveries/%s", c.BaseURL, c.CustomerID, deliveryID), nil)
	if err != nil {
		return nil, err
	}
	var out Delivery
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Cancel aborts a courier job.
func (c *Client) Cancel(ctx context.Context, deliveryID string) (*Delivery, error) {
	var out Delivery
	if err := c.post(ctx, fmt.Sprintf("/deliveries/%s/cancel", deliveryID), struct{}{}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) post(ctx context.Context, path string, payload, out interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	url := fmt.Sprintf("%s/v1/customers/%s%s", c.BaseURL, c.CustomerID, path)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out interface{}) error {
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("courier provider unreachable: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("courier provider error (%d): %s", resp.StatusCode, string(body))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse courier response: %w", err)
	}
	return nil
}

// NormalizePhone converts a Brazilian phone number to international dialing
// form: digits only, country code 55 prepended for bare 10-11 digit local
// numbers, leading plus.
func NormalizePhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	cleaned := b.String()
	if len(cleaned) >= 10 && len(cleaned) <= 11 {
		cleaned = "55" + cleaned
	}
	return "+" + cleaned
}
