package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"
)

// DefaultBaseURL is the Yahoo Finance chart endpoint root.
const DefaultBaseURL = "https://query1.finance.yahoo.com"

// Client fetches the latest quote for a Yahoo symbol.
type Client interface {
	LatestQuote(ctx context.Context, symbol string) (Quote, error)
}

// FinanceClient provides methods for fetching quotes from the Yahoo Finance chart API.
// Requests are throttled by a token bucket shared by every caller of the client.
type FinanceClient struct {
	httpClient *http.Client
	baseURL    string
	limiter    *rate.Limiter
}

// NewFinanceClient creates a Yahoo Finance client.
//
// Parameters:
//   - baseURL: API root, DefaultBaseURL when empty
//   - perSecond, burst: request budget; a non-positive perSecond disables throttling
func NewFinanceClient(baseURL string, perSecond float64, burst int) *FinanceClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	limit := rate.Inf
	if perSecond > 0 {
		limit = rate.Limit(perSecond)
	}
	if burst < 1 {
		burst = 1
	}
	return &FinanceClient{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    strings.TrimRight(baseURL, "/"),
		limiter:    rate.NewLimiter(limit, burst),
	}
}

// LatestQuote returns the most recent non-empty close of the last five trading days.
func (c *FinanceClient) LatestQuote(ctx context.Context, symbol string) (Quote, error) {
	response, err := c.QueryFiveDaySymbol(ctx, symbol)
	if err != nil {
		return Quote{}, err
	}
	chart, err := ParseChart(response)
	if err != nil {
		return Quote{}, fmt.Errorf("symbol %s: %w", symbol, err)
	}

	for i := len(chart.Indicators) - 1; i >= 0; i-- {
		ind := chart.Indicators[i]
		if ind.PriceClose <= 0 {
			continue
		}
		name := chart.LongName
		if name == "" {
			name = chart.Shortname
		}
		return Quote{
			Symbol:   chart.Symbol,
			Name:     name,
			Currency: chart.Currency,
			Price:    decimal.NewFromFloat(ind.PriceClose).Round(2),
			At:       ind.Date,
		}, nil
	}

	return Quote{}, fmt.Errorf("no close prices returned for symbol %s", symbol)
}

// ParseChart converts a raw Yahoo Finance API response into a structured price chart.
//
// The method performs validation to ensure:
//   - A result is present
//   - Timestamp and close price data are present
//   - Close prices and timestamps have matching lengths
func ParseChart(yahooResult Response) (PriceChart, error) {
	if len(yahooResult.Chart.Result) == 0 {
		return PriceChart{}, fmt.Errorf("no results returned")
	}
	result := yahooResult.Chart.Result[0]

	if len(result.Timestamp) == 0 {
		return PriceChart{}, fmt.Errorf("no price data returned")
	}
	if len(result.Indicators.Quote) == 0 || len(result.Indicators.Quote[0].Close) == 0 {
		return PriceChart{}, fmt.Errorf("no close prices returned")
	}

	quote := result.Indicators.Quote[0]
	if len(quote.Close) != len(result.Timestamp) {
		return PriceChart{}, fmt.Errorf("mismatched data lengths")
	}

	indicators := make([]Indicators, len(result.Timestamp))
	for i, v := range result.Timestamp {
		indicators[i].Date = time.Unix(v, 0).UTC()
		indicators[i].PriceClose = valueAt(quote.Close, i)
		indicators[i].PriceOpen = valueAt(quote.Open, i)
		indicators[i].PriceHigh = valueAt(quote.High, i)
		indicators[i].PriceLow = valueAt(quote.Low, i)
	}

	return PriceChart{
		Symbol:     result.Meta.Symbol,
		Currency:   result.Meta.Currency,
		LongName:   result.Meta.LongName,
		Shortname:  result.Meta.Shortname,
		Indicators: indicators,
	}, nil
}

// Yahoo sends null for days without trading, and short arrays for some fields.
func valueAt(values []*float64, i int) float64 {
	if i >= len(values) || values[i] == nil {
		return 0
	}
	return *values[i]
}

// QueryFiveDaySymbol fetches the last 5 days of daily price data for a symbol.
func (c *FinanceClient) QueryFiveDaySymbol(ctx context.Context, symbol string) (Response, error) {
	endpoint := fmt.Sprintf("%s/v8/finance/chart/%s?interval=1d&range=5d", c.baseURL, url.PathEscape(symbol))
	result, err := c.queryYahoo(ctx, endpoint)
	if err != nil {
		return Response{}, err
	}
	if len(result.Chart.Result) == 0 {
		return Response{}, fmt.Errorf("no results returned for symbol %s", symbol)
	}

	return result, nil
}

// queryYahoo waits for the limiter, then executes the request and decodes the chart payload.
func (c *FinanceClient) queryYahoo(ctx context.Context, endpoint string) (Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return Response{}, fmt.Errorf("rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Response{}, err
	}

	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Response{}, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return Response{}, err
	}

	var response Response
	if err := json.Unmarshal(data, &response); err != nil {
		return Response{}, fmt.Errorf("yahoo returned status %d: %w", resp.StatusCode, err)
	}

	if response.Chart.Error != nil {
		return response, fmt.Errorf("yahoo error: %s %s", response.Chart.Error.Code, response.Chart.Error.Description)
	}

	return response, nil
}
