// Package digest composes the scheduled morning summary: weather for the
// configured cities, currency rates, crypto prices, and a model-written
// greeting on top. Feed failures degrade to "no data" lines; the digest
// itself never fails on an upstream outage.
package digest

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"

	"github.com/abramau/gavrila/internal/feeds"
	"github.com/abramau/gavrila/internal/llm"
)

const noData = "no data"

type Composer struct {
	feeds    *feeds.Client
	provider llm.Provider
	// cities maps display name to the weather API query, e.g.
	// "Minsk" -> "Minsk,BY".
	cities map[string]string
}

func NewComposer(f *feeds.Client, provider llm.Provider, cities map[string]string) *Composer {
	return &Composer{feeds: f, provider: provider, cities: cities}
}

// Compose builds the digest text. All feeds are fetched concurrently.
func (c *Composer) Compose(ctx context.Context) string {
	var (
		mu      sync.Mutex
		weather = make(map[string]string, len(c.cities))

		rates   feeds.Rates
		crypto  feeds.CryptoPrices
		avgTemp float64
		nTemps  int
	)

	var wg sync.WaitGroup
	for name, query := range c.cities {
		wg.Add(1)
		go func(name, query string) {
			defer wg.Done()
			r, err := c.feeds.Weather(ctx, query)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				log.Printf("digest: weather %s: %v", query, err)
				weather[name] = noData
				return
			}
			weather[name] = r.String()
			avgTemp += r.TempC
			nTemps++
		}(name, query)
	}

	wg.Add(2)
	go func() {
		defer wg.Done()
		r, err := c.feeds.USDRates(ctx)
		if err != nil {
			log.Printf("digest: rates: %v", err)
			return
		}
		mu.Lock()
		rates = r
		mu.Unlock()
	}()
	go func() {
		defer wg.Done()
		p, err := c.feeds.Crypto(ctx)
		if err != nil {
			log.Printf("digest: crypto: %v", err)
			return
		}
		mu.Lock()
		crypto = p
		mu.Unlock()
	}()
	wg.Wait()

	if nTemps > 0 {
		avgTemp /= float64(nTemps)
	}

	body := c.renderBody(weather, rates, crypto)

	greeting := c.greeting(ctx, avgTemp, rates, crypto)
	if greeting == "" {
		return body
	}
	return greeting + "\n\n" + body
}

func (c *Composer) renderBody(weather map[string]string, rates feeds.Rates, crypto feeds.CryptoPrices) string {
	names := make([]string, 0, len(weather))
	for name := range weather {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString("*Weather report:*\n")
	for _, name := range names {
		fmt.Fprintf(&b, "🌥 *%s*: %s\n", name, weather[name])
	}

	btcBYN := crypto.BTCUSD * rates.BYN
	wldBYN := crypto.WLDUSD * rates.BYN

	b.WriteString("\n*Exchange rates:*\n")
	fmt.Fprintf(&b, "💵 *USD/BYN*: %.2f BYN\n", rates.BYN)
	fmt.Fprintf(&b, "💵 *USD/RUB*: %.2f RUB\n", rates.RUB)
	fmt.Fprintf(&b, "₿ *BTC*: $%.2f USD | %.2f BYN\n", crypto.BTCUSD, btcBYN)
	fmt.Fprintf(&b, "🌍 *WLD*: $%.2f USD | %.2f BYN", crypto.WLDUSD, wldBYN)
	return b.String()
}

// greeting asks the model for a short opener based on the fetched numbers.
// Failure only costs the greeting line.
func (c *Composer) greeting(ctx context.Context, avgTemp float64, rates feeds.Rates, crypto feeds.CryptoPrices) string {
	if c.provider == nil {
		return ""
	}
	prompt := fmt.Sprintf(
		"Average temperature across our cities today is %.1f°C. USD/BYN is %.2f, USD/RUB is %.2f. Bitcoin trades at $%.2f. "+
			"Write a short greeting for a morning message to a group chat based on these numbers. "+
			"Be witty and a little sarcastic. Two or three sentences at most.",
		avgTemp, rates.BYN, rates.RUB, crypto.BTCUSD,
	)
	out, err := c.provider.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}})
	if err != nil {
		log.Printf("digest: greeting: %v", err)
		return ""
	}
	return strings.TrimSpace(out)
}
