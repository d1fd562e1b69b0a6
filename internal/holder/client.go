package holder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/dropDatabas3/replayguard/internal/nonce"
)

// DefaultURL es el endpoint del verifier si no se configura otro.
const DefaultURL = "http://localhost:3000/api/verify-signature"

// maxResponseBytes acota lo que se lee de la respuesta.
const maxResponseBytes = 64 << 10

// Client envía SignedRequests al verifier.
type Client struct {
	url  string
	http *http.Client
}

// NewClient crea un Client. hc nil usa un http.Client con timeout de 10s.
func NewClient(url string, hc *http.Client) *Client {
	if url == "" {
		url = DefaultURL
	}
	if hc == nil {
		hc = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{url: url, http: hc}
}

// Response es lo que devolvió el verifier.
type Response struct {
	StatusCode int
	Body       []byte
}

// Code devuelve el campo "code" de una respuesta de error ("" si no hay).
func (r Response) Code() string {
	var v struct {
		Code string `json:"code"`
	}
	_ = json.Unmarshal(r.Body, &v)
	return v.Code
}

// Submit hace POST del request firmado. Solo devuelve error por fallas de transporte;
// un rechazo del verifier es un Response con status != 200.
func (c *Client) Submit(ctx context.Context, req nonce.SignedRequest) (Response, error) {
	b, err := json.Marshal(req)
	if err != nil {
		return Response{}, fmt.Errorf("holder: marshal: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(b))
	if err != nil {
		return Response{}, fmt.Errorf("holder: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	res, err := c.http.Do(httpReq)
	if err != nil {
		return Response{}, fmt.Errorf("holder: post %s: %w", c.url, err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(io.LimitReader(res.Body, maxResponseBytes))
	if err != nil {
		return Response{}, fmt.Errorf("holder: read response: %w", err)
	}
	return Response{StatusCode: res.StatusCode, Body: body}, nil
}
