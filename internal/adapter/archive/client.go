package archive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/couchcryptid/metar-archive-etl/internal/domain"
)

// maxBodyBytes bounds a single month response.
const maxBodyBytes = 32 << 20

// Client implements domain.Fetcher against the OGIMET bulletin query page.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates an archive client. timeout bounds a whole request
// including reading the body.
func NewClient(baseURL, userAgent string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		baseURL:   baseURL,
		userAgent: userAgent,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// Fetch returns the raw plain-text response for one station-month.
func (c *Client) Fetch(ctx context.Context, unit domain.FetchUnit) (string, error) {
	fullURL := c.baseURL + "?" + QueryParams(unit).Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	c.logger.Debug("archive request", "unit", unit.Key(), "url", fullURL)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("archive request %s: %w", unit.Key(), classifyTransportError(err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("archive error: status %d: %s", resp.StatusCode, body)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("read archive response %s: %w", unit.Key(), classifyTransportError(err))
	}
	return string(body), nil
}

// QueryParams builds the archive query for a unit: the whole month from day
// 01 00:00 to the end day 23:59, oldest first, no NIL reports, plain text.
func QueryParams(unit domain.FetchUnit) url.Values {
	tipo := "SA"
	if unit.ReportType == domain.ReportTAF {
		tipo = "FT"
	}
	return url.Values{
		"lang":  {"en"},
		"lugar": {unit.Station},
		"tipo":  {tipo},
		"ord":   {"DIR"},
		"nil":   {"NO"},
		"fmt":   {"txt"},
		"ano":   {unit.Year},
		"mes":   {unit.Month},
		"day":   {"01"},
		"hora":  {"00"},
		"anof":  {unit.Year},
		"mesf":  {unit.Month},
		"dayf":  {unit.EndDay},
		"horaf": {"23"},
		"minf":  {"59"},
		"send":  {"send"},
	}
}

// classifyTransportError wraps err with the matching domain transport class.
// Cancellation is passed through untouched.
func classifyTransportError(err error) error {
	var netErr net.Error
	switch {
	case errors.Is(err, context.Canceled):
		return err
	case errors.Is(err, context.DeadlineExceeded), errors.As(err, &netErr) && netErr.Timeout():
		return fmt.Errorf("%w: %w", domain.ErrTransportTimeout, err)
	default:
		return fmt.Errorf("%w: %w", domain.ErrTransportConnection, err)
	}
}
