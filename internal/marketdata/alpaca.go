package marketdata

import (
	"context"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"

	"b3quant/internal/domain"
)

// Compile-time interface check.
var _ Provider = (*AlpacaProvider)(nil)

// AlpacaProvider fetches daily bars from the Alpaca market-data API. It only
// covers US-listed symbols; select it via provider.kind when running the
// pipeline against a US universe.
type AlpacaProvider struct {
	client *marketdata.Client
}

// NewAlpacaProvider creates an AlpacaProvider with the given credentials.
// An empty dataURL uses the SDK default endpoint.
func NewAlpacaProvider(apiKey, apiSecret, dataURL string) *AlpacaProvider {
	opts := marketdata.ClientOpts{
		APIKey:    apiKey,
		APISecret: apiSecret,
	}
	if dataURL != "" {
		opts.BaseURL = dataURL
	}
	return &AlpacaProvider{client: marketdata.NewClient(opts)}
}

// DailyAdjCloses implements Provider. Bars are requested split- and
// dividend-adjusted so Close matches the adjusted-close convention.
func (p *AlpacaProvider) DailyAdjCloses(_ context.Context, symbol string, start, end time.Time) ([]Close, error) {
	bars, err := p.client.GetBars(symbol, marketdata.GetBarsRequest{
		TimeFrame:  marketdata.OneDay,
		Start:      start,
		End:        end,
		Adjustment: marketdata.All,
	})
	if err != nil {
		return nil, err
	}
	if len(bars) == 0 {
		return nil, ErrNoData
	}

	closes := make([]Close, 0, len(bars))
	for _, b := range bars {
		closes = append(closes, Close{
			Date:     domain.Day(b.Timestamp),
			AdjClose: b.Close,
		})
	}
	return closes, nil
}
