package addressControllers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

var (
	// ErrInvalidFormat: the postal code does not reduce to exactly 8 digits.
	ErrInvalidFormat = errors.New("postal code must have exactly 8 digits")
	// ErrNotFound: the lookup provider does not know this postal code.
	ErrNotFound = errors.New("postal code not found")
)

// Address is the canonical street/district/city/region for a postal code.
// House number and complement are never returned by the lookup and are
// collected separately at checkout.
type Address struct {
	PostalCode string `json:"postal_code"`
	Street     string `json:"street"`
	District   string `json:"district"`
	City       string `json:"city"`
	Region     string `json:"region"`
}

// Resolver looks postal codes up against a ViaCEP-compatible endpoint.
type Resolver struct {
	BaseURL string
	HTTP    *http.Client
}

func NewResolver() *Resolver {
	base := os.Getenv("VIACEP_BASE_URL")
	if base == "" {
		base = "https://viacep.com.br/ws"
	}
	return &Resolver{
		BaseURL: base,
		HTTP:    &http.Client{Timeout: 10 * time.Second},
	}
}

// OnlyDigits strips everything that is not a decimal digit.
func OnlyDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

type viaCEPResponse struct {
	CEP        string `json:"cep"`
	Logradouro string `json:"logradouro"`
	Bairro     string `json:"bairro"`
	Localidade string `json:"localidade"`
	UF         string `json:"uf"`
	Erro       bool   `json:"erro"`
}

// Resolve validates the postal code locally, then queries the provider.
// Invalid input never reaches the network.
func (r *Resolver) Resolve(ctx context.Context, postalCode string) (*Address, error) {
	digits := OnlyDigits(postalCode)
	if len(digits) != 8 {
		return nil, ErrInvalidFormat
	}

	url := fmt.Sprintf("%s/%s/json/", r.BaseURL, digits)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := r.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("address lookup failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("address lookup returned status %d", resp.StatusCode)
	}

	var body viaCEPResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to parse lookup response: %w", err)
	}
	if body.Erro {
		return nil, ErrNotFound
	}

	return &Address{
		PostalCode: digits,
		Street:     body.Logradouro,
		District:   body.Bairro,
		City:       body.Localidade,
		Region:     body.UF,
	}, nil
}

// GET /address/:cep
func ResolveHandler(resolver *Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		addr, err := resolver.Resolve(c.Request.Context(), c.Param("cep"))
		switch {
		case errors.Is(err, ErrInvalidFormat):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case err != nil:
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		default:
			// A new address invalidates any delivery quote the client holds;
			// quotes are fingerprinted against the address at checkout.
			c.JSON(http.StatusOK, addr)
		}
	}
}
