package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"b3quant/internal/domain"
)

// DefaultYahooBaseURL is the public Yahoo Finance chart endpoint.
const DefaultYahooBaseURL = "https://query1.finance.yahoo.com"

// Compile-time interface check.
var _ Provider = (*YahooProvider)(nil)

// YahooProvider fetches daily adjusted closes from the Yahoo Finance v8
// chart API. B3 symbols carry the ".SA" suffix on Yahoo.
type YahooProvider struct {
	baseURL string
	httpc   *http.Client
}

// NewYahooProvider creates a YahooProvider. Empty baseURL falls back to the
// public endpoint.
func NewYahooProvider(baseURL string) *YahooProvider {
	if baseURL == "" {
		baseURL = DefaultYahooBaseURL
	}
	return &YahooProvider{
		baseURL: baseURL,
		httpc:   &http.Client{Timeout: 30 * time.Second},
	}
}

// chartResponse is the subset of the v8 chart payload we consume.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				AdjClose []struct {
					AdjClose []*float64 `json:"adjclose"`
				} `json:"adjclose"`
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// DailyAdjCloses implements Provider against the chart API.
func (p *YahooProvider) DailyAdjCloses(ctx context.Context, symbol string, start, end time.Time) ([]Close, error) {
	q := url.Values{}
	q.Set("period1", fmt.Sprintf("%d", start.Unix()))
	// period2 is exclusive; extend by one day so "end" itself is included.
	q.Set("period2", fmt.Sprintf("%d", end.AddDate(0, 0, 1).Unix()))
	q.Set("interval", "1d")
	q.Set("events", "div,split")

	u := p.baseURL + "/v8/finance/chart/" + url.PathEscape(symbol) + "?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := p.httpc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNoData
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("yahoo chart %s: status %d: %s", symbol, resp.StatusCode, body)
	}

	var cr chartResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return nil, fmt.Errorf("decoding chart response for %s: %w", symbol, err)
	}
	if cr.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo chart %s: %s: %s", symbol, cr.Chart.Error.Code, cr.Chart.Error.Description)
	}
	if len(cr.Chart.Result) == 0 {
		return nil, ErrNoData
	}

	result := cr.Chart.Result[0]

	// Prefer the adjusted series; fall back to raw closes when Yahoo omits it.
	var values []*float64
	if len(result.Indicators.AdjClose) > 0 {
		values = result.Indicators.AdjClose[0].AdjClose
	}
	if values == nil && len(result.Indicators.Quote) > 0 {
		values = result.Indicators.Quote[0].Close
	}
	if len(result.Timestamp) == 0 || values == nil {
		return nil, ErrNoData
	}

	closes := make([]Close, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(values) || values[i] == nil {
			continue // Yahoo pads missing sessions with nulls
		}
		closes = append(closes, Close{
			Date:     domain.Day(time.Unix(ts, 0).UTC()),
			AdjClose: *values[i],
		})
	}
	if len(closes) == 0 {
		return nil, ErrNoData
	}
	return closes, nil
}
