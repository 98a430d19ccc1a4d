// Package rest is the HTTP client for the remote cart service, the
// authoritative store of a user's cart.
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

	"github.com/dwikikusuma/storefront/internal/cart/app"
	"github.com/dwikikusuma/storefront/internal/cart/domain"
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

// Wire shapes. The service populates `product` with either the ID string
// or the full product document depending on the endpoint.
type cartPayload struct {
	ID        string        `json:"_id"`
	User      string        `json:"user"`
	Items     []itemPayload `json:"items"`
	UpdatedAt time.Time     `json:"updated_at"`
}

type itemPayload struct {
	ID       string          `json:"_id"`
	Product  json.RawMessage `json:"product"`
	Quantity int             `json:"quantity"`
}

type ackPayload struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func (c *Client) Fetch(ctx context.Context, bearer string) (domain.RemoteCart, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/cart", bearer, nil)
	if err != nil {
		return domain.RemoteCart{}, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return domain.RemoteCart{}, fmt.Errorf("%w: %v", app.ErrRemoteCall, err)
	}
	defer resp.Body.Close()

	// No cart for this session yet: an empty cart shape, not an error.
	if resp.StatusCode == http.StatusNotFound {
		return domain.RemoteCart{}, nil
	}
	if err := checkStatus(resp); err != nil {
		return domain.RemoteCart{}, err
	}

	var payload cartPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		if err == io.EOF {
			return domain.RemoteCart{}, nil
		}
		return domain.RemoteCart{}, fmt.Errorf("%w: decode cart: %v", app.ErrRemoteCall, err)
	}
	return toRemoteCart(payload), nil
}

func (c *Client) AddLines(ctx context.Context, bearer string, lines []domain.Line) (app.Ack, error) {
	type wireItem struct {
		Product  string `json:"product"`
		Quantity int    `json:"quantity"`
	}
	body := struct {
		Items []wireItem `json:"items"`
	}{}
	for _, l := range lines {
		body.Items = append(body.Items, wireItem{Product: l.ProductID, Quantity: l.Quantity})
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/cart", bearer, body)
	if err != nil {
		return app.Ack{}, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return app.Ack{}, fmt.Errorf("%w: %v", app.ErrRemoteCall, err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return app.Ack{}, err
	}

	var ack ackPayload
	if err := json.NewDecoder(resp.Body).Decode(&ack); err != nil {
		return app.Ack{}, fmt.Errorf("%w: decode ack: %v", app.ErrRemoteCall, err)
	}
	return app.Ack{Success: ack.Success, Message: ack.Message}, nil
}

func (c *Client) SetQuantity(ctx context.Context, bearer string, lineID string, quantity int) error {
	body := struct {
		Quantity int `json:"quantity"`
	}{Quantity: quantity}

	req, err := c.newRequest(ctx, http.MethodPut, "/cart/"+lineID, bearer, body)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", app.ErrRemoteCall, err)
	}
	defer resp.Body.Close()

	return checkStatus(resp)
}

func (c *Client) Remove(ctx context.Context, bearer string, lineID string) error {
	req, err := c.newRequest(ctx, http.MethodDelete, "/cart/"+lineID, bearer, nil)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", app.ErrRemoteCall, err)
	}
	defer resp.Body.Close()

	// The line is already gone: the contract treats this as success.
	if resp.StatusCode == http.StatusNotFound {
		return nil
	}
	return checkStatus(resp)
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
	return fmt.Errorf("%w: %s", app.ErrRemoteCall, msg)
}

func toRemoteCart(payload cartPayload) domain.RemoteCart {
	rc := domain.RemoteCart{
		OwnerID:   payload.User,
		UpdatedAt: payload.UpdatedAt,
	}
	for _, it := range payload.Items {
		rc.Lines = append(rc.Lines, domain.RemoteLine{
			LineID:    it.ID,
			ProductID: productID(it.Product),
			Quantity:  it.Quantity,
		})
	}
	return rc
}

// productID handles both wire forms of the product field.
func productID(raw json.RawMessage) string {
	var id string
	if err := json.Unmarshal(raw, &id); err == nil {
		return id
	}
	var doc struct {
		ID string `json:"_id"`
	}
	if err := json.Unmarshal(raw, &doc); err == nil {
		return doc.ID
	}
	return ""
}
