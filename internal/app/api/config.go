package api

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"go.temporal.io/sdk/client"

	ordersdomain "github.com/massagesobi/storefront/internal/domains/orders/domain"
	"github.com/massagesobi/storefront/internal/wayforpay"
)

// Config carries environment-driven settings for the API process.
type Config struct {
	Port        string
	PostgresDSN string

	TemporalAddress   string
	TemporalNamespace string
	TemporalDisabled  bool

	Merchant         wayforpay.Merchant
	MerchantSecret   string
	SignatureProfile wayforpay.Profile
	GatewayURL       string
	// ServiceURL is the externally reachable callback endpoint registered
	// with every invoice.
	ServiceURL string

	TelegramToken  string
	TelegramChatID int64

	Products []ordersdomain.Product
}

// LoadConfig reads environment variables, applies defaults, and validates
// basic constraints.
func LoadConfig() (Config, error) {
	cfg := Config{
		Port:              envDefault("PORT", "8080"),
		PostgresDSN:       strings.TrimSpace(os.Getenv("POSTGRES_DSN")),
		TemporalAddress:   envDefault("TEMPORAL_ADDRESS", client.DefaultHostPort),
		TemporalNamespace: envDefault("TEMPORAL_NAMESPACE", client.DefaultNamespace),
		TemporalDisabled:  isTruthy(os.Getenv("TEMPORAL_DISABLED")),
		Merchant: wayforpay.Merchant{
			Account: strings.TrimSpace(os.Getenv("WAYFORPAY_MERCHANT_ACCOUNT")),
			Domain:  strings.TrimSpace(os.Getenv("WAYFORPAY_MERCHANT_DOMAIN")),
		},
		MerchantSecret: strings.TrimSpace(os.Getenv("WAYFORPAY_MERCHANT_SECRET")),
		GatewayURL:     envDefault("WAYFORPAY_API_URL", wayforpay.DefaultAPIURL),
		ServiceURL:     strings.TrimSpace(os.Getenv("SERVICE_URL")),
		TelegramToken:  strings.TrimSpace(os.Getenv("TELEGRAM_BOT_TOKEN")),
	}
	if cfg.Merchant.Account == "" || cfg.Merchant.Domain == "" {
		return Config{}, fmt.Errorf("WAYFORPAY_MERCHANT_ACCOUNT and WAYFORPAY_MERCHANT_DOMAIN are required")
	}
	if cfg.MerchantSecret == "" {
		return Config{}, fmt.Errorf("WAYFORPAY_MERCHANT_SECRET is required")
	}
	profile, err := wayforpay.ParseProfile(os.Getenv("WAYFORPAY_SIGNATURE_PROFILE"))
	if err != nil {
		return Config{}, err
	}
	cfg.SignatureProfile = profile
	if raw := strings.TrimSpace(os.Getenv("TELEGRAM_CHAT_ID")); raw != "" {
		chatID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return Config{}, fmt.Errorf("TELEGRAM_CHAT_ID must be an integer")
		}
		cfg.TelegramChatID = chatID
	}
	products, err := parseProducts(os.Getenv("PRODUCTS"))
	if err != nil {
		return Config{}, err
	}
	cfg.Products = products
	return cfg, nil
}

// Catalog indexes the configured products by id.
func (c Config) Catalog() map[int64]ordersdomain.Product {
	catalog := make(map[int64]ordersdomain.Product, len(c.Products))
	for _, product := range c.Products {
		catalog[product.ID] = product
	}
	return catalog
}

type productConfig struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	PriceMinor int64  `json:"priceMinor"`
	Currency   string `json:"currency"`
}

func parseProducts(raw string) ([]ordersdomain.Product, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("PRODUCTS is required (JSON array of {id,name,priceMinor,currency})")
	}
	var parsed []productConfig
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, fmt.Errorf("PRODUCTS is not valid JSON: %w", err)
	}
	if len(parsed) == 0 {
		return nil, fmt.Errorf("PRODUCTS must list at least one product")
	}
	products := make([]ordersdomain.Product, 0, len(parsed))
	for _, p := range parsed {
		if p.ID <= 0 || p.Name == "" || p.PriceMinor <= 0 || p.Currency == "" {
			return nil, fmt.Errorf("PRODUCTS entry %+v is incomplete", p)
		}
		products = append(products, ordersdomain.Product{
			ID:         p.ID,
			Name:       p.Name,
			PriceMinor: p.PriceMinor,
			Currency:   p.Currency,
		})
	}
	return products, nil
}

func envDefault(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

func isTruthy(value string) bool {
	value = strings.TrimSpace(strings.ToLower(value))
	return value == "1" || value == "true" || value == "yes"
}
