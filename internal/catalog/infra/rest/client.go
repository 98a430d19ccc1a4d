// Package rest is the HTTP client for the remote product service.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dwikikusuma/storefront/internal/catalog/app"
	"github.com/dwikikusuma/storefront/internal/catalog/domain"
)

type Client struct {
	base string
	http *http.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		base: strings.TrimRight(baseURL, "/"),
		http: &http.Client{Timeout: timeout},
	}
}

type productPayload struct {
	ID          string   `json:"_id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	Category    string   `json:"category"`
	Images      []string `json:"images"`
}

type ackPayload struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func (c *Client) List(ctx context.Context, bearer string) ([]domain.Product, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/product", bearer, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("product service: %w", err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return nil, err
	}

	var payload []productPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode product list: %w", err)
	}

	products := make([]domain.Product, 0, len(payload))
	for _, p := range payload {
		products = append(products, toDomain(p))
	}
	return products, nil
}

func (c *Client) Get(ctx context.Context, bearer string, id string) (domain.Product, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/product/"+id, bearer, nil)
	if err != nil {
		return domain.Product{}, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return domain.Product{}, fmt.Errorf("product service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return domain.Product{}, fmt.Errorf("product %s: %w", id, app.ErrNotFound)
	}
	if err := checkStatus(resp); err != nil {
		return domain.Product{}, err
	}

	var payload productPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return domain.Product{}, fmt.Errorf("decode product: %w", err)
	}
	return toDomain(payload), nil
}

func (c *Client) Create(ctx context.Context, bearer string, p domain.Product) (app.Ack, error) {
	return c.mutate(ctx, http.MethodPost, "/product", bearer, fromDomain(p))
}

func (c *Client) Update(ctx context.Context, bearer string, p domain.Product) (app.Ack, error) {
	return c.mutate(ctx, http.MethodPut, "/product/"+p.ID, bearer, fromDomain(p))
}

func (c *Client) Delete(ctx context.Context, bearer string, id string) (app.Ack, error) {
	return c.mutate(ctx, http.MethodDelete, "/product/"+id, bearer, nil)
}

func (c *Client) mutate(ctx context.Context, method, path, bearer string, body any) (app.Ack, error) {
	req, err := c.newRequest(ctx, method, path, bearer, body)
	if err != nil {
		return app.Ack{}, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return app.Ack{}, fmt.Errorf("product service: %w", err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return app.Ack{}, err
	}

	var ack ackPayload
	if err := json.NewDecoder(resp.Body).Decode(&ack); err != nil {
		return app.Ack{}, fmt.Errorf("decode ack: %w", err)
	}
	return app.Ack{Success: ack.Success, Message: ack.Message}, nil
}

func (c *Client) newRequest(ctx context.Context, method, path, bearer string, body any) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	return req, nil
}

func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	var ack ackPayload
	msg := resp.Status
	if err := json.NewDecoder(resp.Body).Decode(&ack); err == nil && ack.Message != "" {
		msg = ack.Message
	}
	return fmt.Errorf("product service: %s", msg)
}

func toDomain(p productPayload) domain.Product {
	return domain.Product{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Category:    p.Category,
		Images:      p.Images,
	}
}

func fromDomain(p domain.Product) productPayload {
	return productPayload{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Category:    p.Category,
		Images:      p.Images,
	}
}
