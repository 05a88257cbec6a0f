package search

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"github.com/dharmasatrya/flightquery/internal/models"
	"github.com/dharmasatrya/flightquery/internal/tfs"
)

// maxBodySize bounds a fetched result page.
const maxBodySize = 16 << 20

// HTTPFetcher hands tokens to a fetch service that owns the browser or HTTP
// session with the flight site. It POSTs the request parameters as JSON and
// expects the raw result body back.
type HTTPFetcher struct {
	url      string
	client   *http.Client
	language string
	currency string
}

type fetchRequest struct {
	Params map[string]string `json:"params"`
	Mode   Mode              `json:"mode"`
}

func NewHTTPFetcher(url string, timeout time.Duration, language, currency string) *HTTPFetcher {
	return &HTTPFetcher{
		url:      url,
		client:   &http.Client{Timeout: timeout},
		language: language,
		currency: currency,
	}
}

func (f *HTTPFetcher) FetchPayload(ctx context.Context, token tfs.Token, session models.SessionToken, mode Mode) ([]byte, error) {
	params := map[string]string{}
	for k, v := range tfs.RequestParams(token, session, f.language, f.currency) {
		params[k] = v[0]
	}
	reqBody, err := json.Marshal(fetchRequest{Params: params, Mode: mode})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.url, bytes.NewReader(reqBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch service returned %d", resp.StatusCode)
	}
	return body, nil
}
