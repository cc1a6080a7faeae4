package infrastructure

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"fortune/ledger-service/domain/entities"
)

// priceCacheTTL bounds how stale a served rate may be. Rates are indicative
// only; the ledger itself is USD denominated.
const priceCacheTTL = 5 * time.Minute

// coinIDs maps supported currencies to the oracle's asset identifiers
var coinIDs = map[string]string{
	entities.CurrencyBTC:  "bitcoin",
	entities.CurrencyETH:  "ethereum",
	entities.CurrencyUSDT: "tether",
}

// HTTPPriceOracle fetches crypto/USD rates from a CoinGecko-compatible API
// and caches them briefly so the dashboard cannot exhaust the rate limit
type HTTPPriceOracle struct {
	baseURL    string
	httpClient *http.Client

	mu        sync.Mutex
	cached    map[string]decimal.Decimal
	fetchedAt time.Time
}

// NewHTTPPriceOracle creates a new HTTP price oracle
func NewHTTPPriceOracle(baseURL string) *HTTPPriceOracle {
	return &HTTPPriceOracle{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Rates returns the USD price per supported currency. Serves the cached
// response inside the TTL; a fetch failure with a warm cache degrades to the
// stale rates rather than an error.
func (o *HTTPPriceOracle) Rates(ctx context.Context) (map[string]decimal.Decimal, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.cached != nil && time.Since(o.fetchedAt) < priceCacheTTL {
		return o.cached, nil
	}

	rates, err := o.fetch(ctx)
	if err != nil {
		if o.cached != nil {
			log.WithError(err).Warn("Price fetch failed, serving stale rates")
			return o.cached, nil
		}
		return nil, err
	}

	o.cached = rates
	o.fetchedAt = time.Now()
	return rates, nil
}

func (o *HTTPPriceOracle) fetch(ctx context.Context) (map[string]decimal.Decimal, error) {
	url := fmt.Sprintf("%s/simple/price?ids=bitcoin,ethereum,tether&vs_currencies=usd", o.baseURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build price request: %w", err)
	}

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("price oracle unreachable: %w", entities.ErrExternalUnavailable)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("price oracle returned %d: %w", resp.StatusCode, entities.ErrExternalUnavailable)
	}

	var body map[string]struct {
		USD decimal.Decimal `json:"usd"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode price response: %w", err)
	}

	rates := make(map[string]decimal.Decimal, len(coinIDs))
	for currency, coinID := range coinIDs {
		entry, ok := body[coinID]
		if !ok {
			return nil, fmt.Errorf("price response missing %s: %w", coinID, entities.ErrExternalUnavailable)
		}
		rates[currency] = entry.USD
	}
	return rates, nil
}
