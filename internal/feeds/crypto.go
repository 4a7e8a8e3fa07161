package feeds

import (
	"context"
	"time"
)

type CryptoPrices struct {
	BTCUSD float64 `json:"btc_usd"`
	WLDUSD float64 `json:"wld_usd"`
}

// Crypto fetches BTC and WLD spot prices in USD.
func (c *Client) Crypto(ctx context.Context) (CryptoPrices, error) {
	return cached(ctx, c, "feeds:crypto:spot", 5*time.Minute, func() (CryptoPrices, error) {
		var decoded map[string]map[string]float64
		if err := c.getJSON(ctx, c.CryptoURL, nil, &decoded); err != nil {
			return CryptoPrices{}, err
		}
		return CryptoPrices{
			BTCUSD: decoded["bitcoin"]["usd"],
			WLDUSD: decoded["worldcoin"]["usd"],
		}, nil
	})
}
