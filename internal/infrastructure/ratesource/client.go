// Package ratesource cliente HTTP de la fuente externa de tasas (historial BCV por día).
package ratesource

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Contabilidad-api/internal/domain/entity"
	"github.com/jhoicas/Contabilidad-api/internal/domain/repository"
	"github.com/jhoicas/Contabilidad-api/pkg/config"
)

var _ repository.RateSource = (*Client)(nil)

const queryDateLayout = "02-01-2006"

// Client implementa repository.RateSource sobre resty.
type Client struct {
	http    *resty.Client
	monitor string
}

// NewClient construye el cliente con el token Bearer y el timeout de la configuración.
func NewClient(cfg config.RatesConfig) *Client {
	timeout := cfg.Timeout()
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	monitor := cfg.Monitor
	if monitor == "" {
		monitor = "usd"
	}

	r := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetHeader("Accept", "application/json").
		SetTimeout(timeout)
	if cfg.Token != "" {
		r.SetAuthToken(cfg.Token)
	}
	return &Client{http: r, monitor: monitor}
}

type historyResponse struct {
	History []struct {
		Price      decimal.Decimal `json:"price"`
		LastUpdate string          `json:"last_update"`
	} `json:"history"`
}

// History consulta los puntos publicados para un día (start_date = end_date).
// Una respuesta no exitosa es un error; el adquiridor la trata como "sin tasa" y sigue retrocediendo.
func (c *Client) History(ctx context.Context, date time.Time) ([]entity.RatePoint, error) {
	day := date.Format(queryDateLayout)
	result := new(historyResponse)

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"page":          "bcv",
			"monitor":       c.monitor,
			"start_date":    day,
			"end_date":      day,
			"format_date":   "default",
			"rounded_price": "true",
			"order":         "desc",
		}).
		SetResult(result).
		Get("")
	if err != nil {
		return nil, fmt.Errorf("tasas: consultar %s: %w", day, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("tasas: respuesta %d para %s", resp.StatusCode(), day)
	}

	points := make([]entity.RatePoint, 0, len(result.History))
	for _, h := range result.History {
		points = append(points, entity.RatePoint{Price: h.Price, LastUpdate: h.LastUpdate})
	}
	return points, nil
}
