package tolerance

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"tradecheck/internal/logger"

	"github.com/adshao/go-binance/v2"
	"github.com/shopspring/decimal"
)

// BinanceProvider derives tick size and lot step from Binance exchange
// filters, so reconciliation tolerances track what the venue actually
// rounds to instead of a hand-maintained table. Results are cached for the
// process lifetime; filters change rarely.
type BinanceProvider struct {
	client   *binance.Client
	fallback Provider

	mu    sync.Mutex
	cache map[string]Set
}

// NewBinanceProvider builds a provider against the public exchange-info
// endpoint. No credentials are needed. fallback (usually a Static) answers
// for symbols the venue does not list.
func NewBinanceProvider(restBaseURL string, fallback Provider) *BinanceProvider {
	client := binance.NewClient("", "")
	if base := strings.TrimSpace(restBaseURL); base != "" {
		client.BaseURL = base
	}
	client.HTTPClient = &http.Client{Timeout: 10 * time.Second}
	return &BinanceProvider{
		client:   client,
		fallback: fallback,
		cache:    make(map[string]Set),
	}
}

func (p *BinanceProvider) ForSymbol(ctx context.Context, symbol string) (Set, error) {
	clean := canonSymbol(symbol)
	if clean == "" {
		return Set{}, fmt.Errorf("tolerance: symbol is required")
	}
	p.mu.Lock()
	if set, ok := p.cache[clean]; ok {
		p.mu.Unlock()
		return set, nil
	}
	p.mu.Unlock()

	info, err := p.client.NewExchangeInfoService().Symbol(clean).Do(ctx)
	if err != nil {
		if p.fallback != nil {
			logger.Warnf("tolerance: exchange info for %s failed (%v), using fallback", clean, err)
			return p.fallback.ForSymbol(ctx, symbol)
		}
		return Set{}, fmt.Errorf("tolerance: exchange info for %s: %w", clean, err)
	}
	for _, sym := range info.Symbols {
		if !strings.EqualFold(sym.Symbol, clean) {
			continue
		}
		set, err := setFromFilters(sym)
		if err != nil {
			return Set{}, err
		}
		p.mu.Lock()
		p.cache[clean] = set
		p.mu.Unlock()
		return set, nil
	}
	if p.fallback != nil {
		return p.fallback.ForSymbol(ctx, symbol)
	}
	return Set{}, fmt.Errorf("tolerance: symbol %s not listed", clean)
}

func setFromFilters(sym binance.Symbol) (Set, error) {
	var set Set
	if pf := sym.PriceFilter(); pf != nil {
		tick, err := decimal.NewFromString(pf.TickSize)
		if err != nil {
			return Set{}, fmt.Errorf("tolerance: bad tick size %q: %w", pf.TickSize, err)
		}
		set.Price = tick
	}
	if lf := sym.LotSizeFilter(); lf != nil {
		step, err := decimal.NewFromString(lf.StepSize)
		if err != nil {
			return Set{}, fmt.Errorf("tolerance: bad lot step %q: %w", lf.StepSize, err)
		}
		set.Quantity = step
	}
	return set, nil
}
