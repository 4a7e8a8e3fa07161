package feeds

import (
	"context"
	"time"
)

// Rates carries the USD cross rates the digest cares about.
type Rates struct {
	BYN float64 `json:"byn"`
	RUB float64 `json:"rub"`
}

type currencyAPIResp struct {
	USD map[string]float64 `json:"usd"`
}

// USDRates fetches current USD→BYN and USD→RUB rates.
func (c *Client) USDRates(ctx context.Context) (Rates, error) {
	return cached(ctx, c, "feeds:rates:usd", 30*time.Minute, func() (Rates, error) {
		var decoded currencyAPIResp
		if err := c.getJSON(ctx, c.RatesURL, nil, &decoded); err != nil {
			return Rates{}, err
		}
		return Rates{BYN: decoded.USD["byn"], RUB: decoded.USD["rub"]}, nil
	})
}
