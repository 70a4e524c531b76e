package finnhub

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"time"

	"SwingRank/internal/domain/models"
	drepo "SwingRank/internal/domain/repository"
	xhttp "SwingRank/pkg/http"
)

// Client reads daily candles and reported quarterly financials from the
// Finnhub REST API.
type Client struct {
	baseURL string
	apiKey  string
	http    *xhttp.Client
	now     func() time.Time
}

// Option configures Client.
type Option func(*Client)

// WithClock overrides the clock used to compute the candle window.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(h *xhttp.Client) Option {
	return func(c *Client) { c.http = h }
}

// New creates a Finnhub REST client.
func New(baseURL, apiKey string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    xhttp.NewClient(xhttp.WithTimeout(timeout)),
		now:     time.Now,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

type candleResp struct {
	C []float64 `json:"c"`
	H []float64 `json:"h"`
	L []float64 `json:"l"`
	O []float64 `json:"o"`
	V []float64 `json:"v"`
	T []int64   `json:"t"`
	S string    `json:"s"`
}

// LoadDailyBars fetches daily candles covering period up to today.
func (c *Client) LoadDailyBars(ctx context.Context, symbol string, period drepo.Period) (*models.Series, error) {
	to := c.now().UTC()
	from := period.Start(to)

	var cr candleResp
	err := c.get(ctx, "/stock/candle", map[string][]string{
		"symbol":     {symbol},
		"resolution": {"D"},
		"from":       {strconv.FormatInt(from.Unix(), 10)},
		"to":         {strconv.FormatInt(to.Unix(), 10)},
	}, &cr)
	if err != nil {
		return nil, fmt.Errorf("finnhub candles %s: %w", symbol, err)
	}
	if cr.S == "no_data" || len(cr.T) == 0 {
		return nil, fmt.Errorf("finnhub candles %s: %w", symbol, models.ErrNoData)
	}
	n := len(cr.T)
	if len(cr.C) != n || len(cr.H) != n || len(cr.L) != n || len(cr.O) != n || len(cr.V) != n {
		return nil, fmt.Errorf("finnhub candles %s: ragged arrays (t=%d c=%d)", symbol, n, len(cr.C))
	}

	bars := make([]models.Bar, n)
	for i := range bars {
		bars[i] = models.Bar{
			Date:   time.Unix(cr.T[i], 0).UTC(),
			Open:   cr.O[i],
			High:   cr.H[i],
			Low:    cr.L[i],
			Close:  cr.C[i],
			Volume: cr.V[i],
		}
	}
	return models.NewSeries(symbol, bars), nil
}

type reportItem struct {
	Concept string  `json:"concept"`
	Label   string  `json:"label"`
	Value   float64 `json:"value"`
}

type financialsResp struct {
	Data []struct {
		Year    int    `json:"year"`
		Quarter int    `json:"quarter"`
		EndDate string `json:"endDate"`
		Report  struct {
			IC []reportItem `json:"ic"`
		} `json:"report"`
	} `json:"data"`
}

// conceptKeys maps XBRL concepts to the revenue line names the scorer looks for.
var conceptKeys = map[string]string{
	"us-gaap_Revenues": "Total Revenue",
	"us-gaap_RevenueFromContractWithCustomerExcludingAssessedTax": "Operating Revenue",
	"us-gaap_SalesRevenueNet":                                     "Revenue",
	"ifrs-full_Revenue":                                           "Revenue",
}

// LoadQuarterlyFinancials returns income-statement items per quarter, most
// recent first.
func (c *Client) LoadQuarterlyFinancials(ctx context.Context, symbol string) (*models.QuarterlyFinancials, error) {
	var fr financialsResp
	err := c.get(ctx, "/stock/financials-reported", map[string][]string{
		"symbol": {symbol},
		"freq":   {"quarterly"},
	}, &fr)
	if err != nil {
		return nil, fmt.Errorf("finnhub financials %s: %w", symbol, err)
	}
	if len(fr.Data) == 0 {
		return nil, fmt.Errorf("finnhub financials %s: %w", symbol, models.ErrNoData)
	}

	data := append(fr.Data[:0:0], fr.Data...)
	sort.SliceStable(data, func(i, j int) bool {
		if data[i].Year != data[j].Year {
			return data[i].Year > data[j].Year
		}
		return data[i].Quarter > data[j].Quarter
	})

	out := &models.QuarterlyFinancials{Symbol: symbol}
	for _, d := range data {
		q := models.Quarter{
			Period: fmt.Sprintf("%d-Q%d", d.Year, d.Quarter),
			Items:  make(map[string]float64, len(d.Report.IC)),
		}
		if d.EndDate != "" {
			q.Period = d.EndDate
		}
		for _, it := range d.Report.IC {
			if it.Label != "" {
				q.Items[it.Label] = it.Value
			}
			if k, ok := conceptKeys[it.Concept]; ok {
				if _, exists := q.Items[k]; !exists {
					q.Items[k] = it.Value
				}
			}
		}
		out.Quarters = append(out.Quarters, q)
	}
	return out, nil
}

func (c *Client) get(ctx context.Context, path string, query map[string][]string, dest interface{}) error {
	query["token"] = []string{c.apiKey}
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:      xhttp.MethodGet,
		URL:         c.baseURL + path,
		QueryParams: query,
	}, dest)
	var se *xhttp.StatusError
	if errors.As(err, &se) && se.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %w", models.ErrNoData, err)
	}
	return err
}

var (
	_ drepo.BarSource       = (*Client)(nil)
	_ drepo.FinancialSource = (*Client)(nil)
)
