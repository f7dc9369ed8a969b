// Package client accesses the persons collection of the service over REST.
//
// Every operation maps onto one HTTP call against the collection endpoint /api/persons. There
// are no retries and no timeouts apart from what the context and the http.Client impose; all
// errors are returned to the caller.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"gitlab.com/dirk.krummacker/persons/pkg/model"
)

// BasePath is the path of the collection endpoint below the service URL.
const BasePath = "/api/persons"

// Client talks to one persons service.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces http.DefaultClient as the transport.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// New returns a client for the service at baseURL, e.g. "http://localhost:8080".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ListAll fetches the full collection.
//
//	GET /api/persons
func (c *Client) ListAll(ctx context.Context) ([]model.Person, error) {
	var persons []model.Person
	if err := c.do(ctx, "list persons", http.MethodGet, BasePath, 0, nil, &persons); err != nil {
		return nil, err
	}
	if persons == nil {
		persons = []model.Person{}
	}
	return persons, nil
}

// GetByID fetches a single person. It returns a *NotFoundError if the service does not know
// the id.
//
//	GET /api/persons/{id}
func (c *Client) GetByID(ctx context.Context, id int64) (model.Person, error) {
	var person model.Person
	err := c.do(ctx, "get person", http.MethodGet, itemPath(id), id, nil, &person)
	return person, err
}

// Create submits a new person and returns it with the id and timestamps the service assigned.
//
//	POST /api/persons
func (c *Client) Create(ctx context.Context, fields model.PersonFields) (model.Person, error) {
	var person model.Person
	err := c.do(ctx, "create person", http.MethodPost, BasePath, 0, fields, &person)
	return person, err
}

// Update replaces all editable fields of a person and returns the new version.
//
//	PUT /api/persons/{id}
func (c *Client) Update(ctx context.Context, id int64, fields model.PersonFields) (model.Person, error) {
	var person model.Person
	err := c.do(ctx, "update person", http.MethodPut, itemPath(id), id, fields, &person)
	return person, err
}

// Delete removes a person.
//
//	DELETE /api/persons/{id}
func (c *Client) Delete(ctx context.Context, id int64) error {
	return c.do(ctx, "delete person", http.MethodDelete, itemPath(id), id, nil, nil)
}

func itemPath(id int64) string {
	return BasePath + "/" + strconv.FormatInt(id, 10)
}

// errorBody is the shape of the service's error responses.
type errorBody struct {
	Message string `json:"message"`
}

// do sends one request. A 404 for a call addressing a single person (id != 0) becomes a
// *NotFoundError, every other failure a *TransportError.
func (c *Client) do(ctx context.Context, op, method, path string, id int64, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return &TransportError{Op: op, Err: fmt.Errorf("encode request: %w", err)}
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	defer res.Body.Close()

	resBody, err := io.ReadAll(res.Body)
	if err != nil {
		return &TransportError{Op: op, StatusCode: res.StatusCode, Err: fmt.Errorf("read response: %w", err)}
	}

	if res.StatusCode == http.StatusNotFound && id != 0 {
		return &NotFoundError{Id: id}
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		var e errorBody
		_ = json.Unmarshal(resBody, &e)
		return &TransportError{Op: op, StatusCode: res.StatusCode, Message: e.Message}
	}

	if out == nil || len(bytes.TrimSpace(resBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(resBody, out); err != nil {
		return &TransportError{Op: op, StatusCode: res.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}
