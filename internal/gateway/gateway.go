// Package gateway is the HTTP client for the upstream records API. The
// transport envelope varies per endpoint and deploy, so every list
// response passes through the envelope normalizer before anything else
// sees it.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	catalogdomain "github.com/Cachi0001/bizcore/internal/catalog/domain"
	"github.com/Cachi0001/bizcore/internal/config"
	directorydomain "github.com/Cachi0001/bizcore/internal/directory/domain"
	"github.com/Cachi0001/bizcore/internal/envelope"
	saledomain "github.com/Cachi0001/bizcore/internal/sale/domain"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DateRange bounds a sales listing; zero values mean unbounded.
type DateRange struct {
	From string
	To   string
}

// RecordsAPI is the collaborator surface the core consumes. The HTTP
// implementation lives here; tests substitute fakes.
type RecordsAPI interface {
	GetProducts(ctx context.Context) ([]catalogdomain.Product, error)
	GetCustomers(ctx context.Context) ([]directorydomain.Customer, error)
	GetSales(ctx context.Context, dateRange DateRange) ([]saledomain.Record, error)
	GetInvoices(ctx context.Context) ([]saledomain.Invoice, error)
	CreateSale(ctx context.Context, payload saledomain.Submission) (saledomain.Record, error)
	UpdateCustomer(ctx context.Context, id string, patch directorydomain.CustomerPatch) (directorydomain.Customer, error)
	DeleteCustomer(ctx context.Context, id string) error
}

// APIError is a non-2xx upstream response.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("upstream api error: status %d: %s", e.Status, e.Message)
}

type Client struct {
	baseURL string
	client  *http.Client
	log     *zap.Logger
}

func NewClient(cfg config.Config, log *zap.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.UpstreamBaseURL, "/"),
		client:  &http.Client{Timeout: cfg.UpstreamTimeout},
		log:     log.Named("gateway"),
	}
}

func (c *Client) GetProducts(ctx context.Context) ([]catalogdomain.Product, error) {
	raw, err := c.doRequest(ctx, http.MethodGet, "/products", nil)
	if err != nil {
		return nil, err
	}
	return envelope.Normalize[catalogdomain.Product](raw, "products")
}

func (c *Client) GetCustomers(ctx context.Context) ([]directorydomain.Customer, error) {
	raw, err := c.doRequest(ctx, http.MethodGet, "/customers", nil)
	if err != nil {
		return nil, err
	}
	return envelope.Normalize[directorydomain.Customer](raw, "customers")
}

func (c *Client) GetSales(ctx context.Context, dateRange DateRange) ([]saledomain.Record, error) {
	path := "/sales"
	query := make([]string, 0, 2)
	if dateRange.From != "" {
		query = append(query, "start_date="+dateRange.From)
	}
	if dateRange.To != "" {
		query = append(query, "end_date="+dateRange.To)
	}
	if len(query) > 0 {
		path += "?" + strings.Join(query, "&")
	}

	raw, err := c.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	return envelope.Normalize[saledomain.Record](raw, "sales")
}

func (c *Client) GetInvoices(ctx context.Context) ([]saledomain.Invoice, error) {
	raw, err := c.doRequest(ctx, http.MethodGet, "/invoices", nil)
	if err != nil {
		return nil, err
	}
	return envelope.Normalize[saledomain.Invoice](raw, "invoices")
}

func (c *Client) CreateSale(ctx context.Context, payload saledomain.Submission) (saledomain.Record, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return saledomain.Record{}, err
	}

	raw, err := c.doRequest(ctx, http.MethodPost, "/sales", body)
	if err != nil {
		return saledomain.Record{}, err
	}

	record, ok := decodeObject[saledomain.Record](raw, "sale", func(r saledomain.Record) bool { return r.ID != "" })
	if !ok {
		// The sale went through; only the echo was unreadable.
		c.log.Warn("create sale response had an unexpected shape", zap.ByteString("body", truncate(raw)))
		return saledomain.Record{}, nil
	}
	return record, nil
}

func (c *Client) UpdateCustomer(ctx context.Context, id string, patch directorydomain.CustomerPatch) (directorydomain.Customer, error) {
	body, err := json.Marshal(patch)
	if err != nil {
		return directorydomain.Customer{}, err
	}

	raw, err := c.doRequest(ctx, http.MethodPut, "/customers/"+id, body)
	if err != nil {
		return directorydomain.Customer{}, err
	}

	customer, ok := decodeObject[directorydomain.Customer](raw, "customer", func(cu directorydomain.Customer) bool { return cu.ID != "" })
	if !ok {
		c.log.Warn("update customer response had an unexpected shape", zap.String("customer_id", id))
		return directorydomain.Customer{}, nil
	}
	return customer, nil
}

func (c *Client) DeleteCustomer(ctx context.Context, id string) error {
	_, err := c.doRequest(ctx, http.MethodDelete, "/customers/"+id, nil)
	return err
}

func (c *Client) doRequest(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		c.log.Warn("upstream request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err),
		)
		return nil, err
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, err
	}

	c.log.Debug("upstream request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Int64("duration_ms", time.Since(start).Milliseconds()),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{Status: resp.StatusCode, Message: apiMessage(payload)}
	}
	return payload, nil
}

// decodeObject probes the single-object envelope variants: bare object,
// {"<key>": obj}, {"data": obj}, {"data": {"<key>": obj}}.
func decodeObject[T any](raw []byte, key string, valid func(T) bool) (T, bool) {
	var zero T

	var bare T
	if err := json.Unmarshal(raw, &bare); err == nil && valid(bare) {
		return bare, true
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return zero, false
	}

	for _, field := range []string{key, "data"} {
		inner, ok := obj[field]
		if !ok {
			continue
		}
		var v T
		if err := json.Unmarshal(inner, &v); err == nil && valid(v) {
			return v, true
		}
		var nested map[string]json.RawMessage
		if err := json.Unmarshal(inner, &nested); err == nil {
			if innermost, ok := nested[key]; ok {
				if err := json.Unmarshal(innermost, &v); err == nil && valid(v) {
					return v, true
				}
			}
		}
	}
	return zero, false
}

func apiMessage(payload []byte) string {
	var parsed struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(payload, &parsed); err == nil {
		if parsed.Message != "" {
			return parsed.Message
		}
		if parsed.Error != "" {
			return parsed.Error
		}
	}
	return string(truncate(payload))
}

func truncate(b []byte) []byte {
	const max = 512
	if len(b) <= max {
		return b
	}
	return b[:max]
}
