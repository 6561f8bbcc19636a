// Package exchange — тонкий REST-клиент Binance Futures: цены для трекера
// и вселенная символов для коин-менеджера.
package exchange

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/pkg/errors"
)

type Client struct {
	base string
	http *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		base: baseURL,
		http: &http.Client{Timeout: 8 * time.Second},
	}
}

func (c *Client) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	u := c.base + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, errors.Wrap(err, "build request")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "GET %s", path)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode/100 != 2 {
		return nil, fmt.Errorf("http %d: %s", resp.StatusCode, string(body))
	}
	return body, nil
}

// Price — текущая цена символа. Ошибка означает "пропусти этот тик",
// трекер попробует на следующем.
func (c *Client) Price(ctx context.Context, symbol string) (float64, error) {
	q := url.Values{"symbol": []string{symbol}}
	body, err := c.get(ctx, "/fapi/v1/ticker/price", q)
	if err != nil {
		return 0, err
	}
	var resp struct {
		Price string `json:"price"`
	}
	if err := sonic.Unmarshal(body, &resp); err != nil {
		return 0, errors.Wrap(err, "parse ticker price")
	}
	px, err := strconv.ParseFloat(resp.Price, 64)
	if err != nil || px <= 0 {
		return 0, errors.Errorf("bad price %q for %s", resp.Price, symbol)
	}
	return px, nil
}

// AllUSDTSymbols — все торгуемые USDT-фьючерсы с exchangeInfo.
func (c *Client) AllUSDTSymbols(ctx context.Context) ([]string, error) {
	body, err := c.get(ctx, "/fapi/v1/exchangeInfo", nil)
	if err != nil {
		return nil, err
	}
	var resp struct {
		Symbols []struct {
			Symbol string `json:"symbol"`
			Status string `json:"status"`
		} `json:"symbols"`
	}
	if err := sonic.Unmarshal(body, &resp); err != nil {
		return nil, errors.Wrap(err, "parse exchangeInfo")
	}
	out := make([]string, 0, len(resp.Symbols))
	for _, s := range resp.Symbols {
		if s.Status == "TRADING" && strings.HasSuffix(s.Symbol, "USDT") {
			out = append(out, s.Symbol)
		}
	}
	return out, nil
}

// TopVolume — топ USDT-символов по 24-часовому quote-объёму.
func (c *Client) TopVolume(ctx context.Context, limit int) ([]string, error) {
	body, err := c.get(ctx, "/fapi/v1/ticker/24hr", nil)
	if err != nil {
		return nil, err
	}
	var resp []struct {
		Symbol      string `json:"symbol"`
		QuoteVolume string `json:"quoteVolume"`
	}
	if err := sonic.Unmarshal(body, &resp); err != nil {
		return nil, errors.Wrap(err, "parse 24hr tickers")
	}
	type volRow struct {
		symbol string
		vol    float64
	}
	rows := make([]volRow, 0, len(resp))
	for _, t := range resp {
		if !strings.HasSuffix(t.Symbol, "USDT") {
			continue
		}
		v, _ := strconv.ParseFloat(t.QuoteVolume, 64)
		rows = append(rows, volRow{symbol: t.Symbol, vol: v})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].vol > rows[j].vol })
	if limit > len(rows) {
		limit = len(rows)
	}
	out := make([]string, 0, limit)
	for _, r := range rows[:limit] {
		out = append(out, r.symbol)
	}
	return out, nil
}
