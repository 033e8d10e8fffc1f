package ecb

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Dan9191/advisory-service/internal/config"
	"github.com/Dan9191/advisory-service/internal/models"
	"github.com/beevik/etree"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// ECBClient reads euro foreign exchange reference rates from the European Central Bank
type ECBClient struct {
	url    string
	client *http.Client
	log    *logrus.Logger
}

// NewECBClient initializes a new ECB client
func NewECBClient(cfg *config.Config, log *logrus.Logger) *ECBClient {
	return &ECBClient{
		url: cfg.ECBURL,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		log: log,
	}
}

// sendRequest fetches the daily reference rate document
func (c *ECBClient) sendRequest(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/xml")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	c.log.Debugf("ECB XML response: %d bytes", len(body))
	return body, nil
}

// parseXMLResponse extracts currency -> rate pairs from the Cube elements
func parseXMLResponse(rawBody []byte) (map[string]decimal.Decimal, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(rawBody); err != nil {
		return nil, fmt.Errorf("failed to parse XML: %w", err)
	}

	cubes := doc.FindElements("//Cube[@currency]")
	if len(cubes) == 0 {
		return nil, fmt.Errorf("no rate data found in XML")
	}

	rates := map[string]decimal.Decimal{"EUR": decimal.NewFromInt(1)}
	for _, cube := range cubes {
		currency := strings.ToUpper(cube.SelectAttrValue("currency", ""))
		rate, err := decimal.NewFromString(cube.SelectAttrValue("rate", ""))
		if err != nil {
			return nil, fmt.Errorf("failed to parse rate for %s: %w", currency, err)
		}
		rates[currency] = rate
	}
	return rates, nil
}

// GetRates retrieves today's reference rates, quoted as units per euro
func (c *ECBClient) GetRates(ctx context.Context) (map[string]decimal.Decimal, error) {
	body, err := c.sendRequest(ctx)
	if err != nil {
		return nil, err
	}

	rates, err := parseXMLResponse(body)
	if err != nil {
		return nil, err
	}

	c.log.Infof("Retrieved %d ECB reference rates", len(rates))
	return rates, nil
}

// Convert expresses a EUR forecast in another currency. The rate is units
// of the target currency per euro.
func Convert(f models.Forecast, rate decimal.Decimal, currency string) models.Forecast {
	out := models.Forecast{
		Currency:        currency,
		ActiveRevenue:   f.ActiveRevenue.Mul(rate),
		RenewalRevenue:  f.RenewalRevenue.Mul(rate),
		PipelineRevenue: f.PipelineRevenue.Mul(rate),
		Sections:        make([]models.ForecastSection, len(f.Sections)),
	}
	out.Total = out.ActiveRevenue.Add(out.RenewalRevenue).Add(out.PipelineRevenue)
	for i, s := range f.Sections {
		s.Subtotal = s.Subtotal.Mul(rate)
		out.Sections[i] = s
	}
	return out
}
