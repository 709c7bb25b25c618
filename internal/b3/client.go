// Package b3 implements a client for the B3 listed-companies proxy API.
// Query parameters are JSON documents base64-encoded into the request path,
// and listing results are paginated.
package b3

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"b3quant/internal/util"
)

// DefaultBaseURL is the public listed-companies proxy endpoint.
const DefaultBaseURL = "https://sistemaswebb3-listados.b3.com.br/listedCompaniesProxy/CompanyCall/"

// Client queries the listed-companies API.
type Client struct {
	baseURL  string
	pageSize int
	httpc    *http.Client
	limiter  *util.RateLimiter
	log      *slog.Logger
}

// NewClient creates a Client for the given base URL and page size. A nil
// limiter disables request pacing. Empty baseURL falls back to
// DefaultBaseURL; pageSize <= 0 falls back to 120.
func NewClient(baseURL string, pageSize int, limiter *util.RateLimiter) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if pageSize <= 0 {
		pageSize = 120
	}
	return &Client{
		baseURL:  baseURL,
		pageSize: pageSize,
		httpc:    &http.Client{Timeout: 30 * time.Second},
		limiter:  limiter,
		log:      slog.Default().With("client", "b3"),
	}
}

// ---------------------------------------------------------------------------
// Wire types
// ---------------------------------------------------------------------------

// listingQuery is the base64-encoded parameter document for GetInitialCompanies.
type listingQuery struct {
	Language   string `json:"language"`
	PageNumber int    `json:"pageNumber"`
	PageSize   int    `json:"pageSize"`
}

// detailQuery is the base64-encoded parameter document for GetDetail.
type detailQuery struct {
	CodeCVM  string `json:"codeCVM"`
	Language string `json:"language"`
}

// Listing is one company row from the paginated GetInitialCompanies response.
type Listing struct {
	CodeCVM        json.Number `json:"codeCVM"`
	IssuingCompany string      `json:"issuingCompany"`
	CompanyName    string      `json:"companyName"`
	TradingName    string      `json:"tradingName"`
	CNPJ           string      `json:"cnpj"`
	Segment        string      `json:"segment"`
	Market         string      `json:"market"`
	Type           string      `json:"type"`
	Status         string      `json:"status"`
	DateListing    string      `json:"dateListing"` // DD/MM/YYYY
}

// OtherCode is one tradable code entry in a company detail.
type OtherCode struct {
	Code string `json:"code"`
	ISIN string `json:"isin"`
}

// Detail is the GetDetail response for one company.
type Detail struct {
	CodeCVM    json.Number `json:"codeCVM"`
	Activity   string      `json:"activity"`
	Website    string      `json:"website"`
	Status     string      `json:"status"`
	OtherCodes []OtherCode `json:"otherCodes"`
}

type listingPage struct {
	Page struct {
		PageNumber   int `json:"pageNumber"`
		PageSize     int `json:"pageSize"`
		TotalRecords int `json:"totalRecords"`
		TotalPages   int `json:"totalPages"`
	} `json:"page"`
	Results []Listing `json:"results"`
}

// ---------------------------------------------------------------------------
// Requests
// ---------------------------------------------------------------------------

// encodeQuery marshals the parameter document and base64-encodes it for the
// URL path. A fresh document is built per request; nothing is shared or
// mutated across calls.
func encodeQuery(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// get performs a GET against baseURL+path and decodes the JSON response into
// out. Non-2xx statuses are errors.
func (c *Client) get(ctx context.Context, path string, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("GET %s: status %d: %s", path, resp.StatusCode, body)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s response: %w", path, err)
	}
	return nil
}

// fetchPage retrieves one page of the company listing.
func (c *Client) fetchPage(ctx context.Context, pageNumber int) (*listingPage, error) {
	q, err := encodeQuery(listingQuery{
		Language:   "pt-br",
		PageNumber: pageNumber,
		PageSize:   c.pageSize,
	})
	if err != nil {
		return nil, err
	}

	var page listingPage
	if err := c.get(ctx, "GetInitialCompanies/"+q, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// ListCompanies fetches every page of the company listing and returns the
// concatenated results.
func (c *Client) ListCompanies(ctx context.Context) ([]Listing, error) {
	first, err := c.fetchPage(ctx, 1)
	if err != nil {
		return nil, fmt.Errorf("fetching first listing page: %w", err)
	}

	total := first.Page.TotalRecords
	pages := (total + c.pageSize - 1) / c.pageSize
	c.log.Info("listing companies", "totalRecords", total, "pages", pages)

	results := make([]Listing, 0, total)
	results = append(results, first.Results...)

	for p := 2; p <= pages; p++ {
		page, err := c.fetchPage(ctx, p)
		if err != nil {
			return nil, fmt.Errorf("fetching listing page %d/%d: %w", p, pages, err)
		}
		results = append(results, page.Results...)
	}
	return results, nil
}

// GetDetail fetches the detail record for one CVM code.
func (c *Client) GetDetail(ctx context.Context, codeCVM string) (*Detail, error) {
	q, err := encodeQuery(detailQuery{
		CodeCVM:  codeCVM,
		Language: "pt-br",
	})
	if err != nil {
		return nil, err
	}

	var d Detail
	if err := c.get(ctx, "GetDetail/"+q, &d); err != nil {
		return nil, err
	}
	return &d, nil
}
