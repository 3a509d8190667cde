package hiscores

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"osrs-tracker/internal/constants"
	"osrs-tracker/internal/domain"

	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"
)

// Client talks to the hiscores endpoints: the per-mode index_lite.ws raw
// record feed and the paginated overall leaderboard HTML.
type Client struct {
	baseURL string
	client  *fasthttp.Client
	logger  zerolog.Logger
}

func NewClient(logger zerolog.Logger) *Client {
	return NewClientWithBase(logger, defaultBaseURL)
}

// NewClientWithBase points the client at an alternate host. Tests use it
// with a local fake upstream.
func NewClientWithBase(logger zerolog.Logger, baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &fasthttp.Client{
			MaxConnsPerHost:     10,
			ReadTimeout:         constants.OverallPageTimeout,
			WriteTimeout:        constants.HiscoresTimeout,
			MaxIdleConnDuration: 1 * time.Minute,
		},
		logger: logger.With().Str("component", "hiscores").Logger(),
	}
}

// FetchRaw retrieves one player's flat record for a mode and splits it
// into comma-delimited lines. A 404 from the source means the player has
// no record on that mode's leaderboard and maps to ErrPlayerNotFound.
func (c *Client) FetchRaw(ctx context.Context, player string, mode domain.Mode) ([]string, error) {
	path, ok := modePaths[mode]
	if !ok {
		return nil, fmt.Errorf("%w: no endpoint for mode %q", ErrFetchFailed, mode)
	}

	reqURL := fmt.Sprintf("%s%s?player=%s", c.baseURL, path, url.QueryEscape(player))
	status, body, err := c.do(ctx, reqURL, constants.HiscoresTimeout, "")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	if status == fasthttp.StatusNotFound {
		return nil, fmt.Errorf("%w: %q on %s hiscores", ErrPlayerNotFound, player, mode)
	}
	if status != fasthttp.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrFetchFailed, status)
	}

	text := strings.TrimSpace(string(body))
	if text == "" {
		return nil, fmt.Errorf("%w: empty record for %q on %s hiscores", ErrFetchFailed, player, mode)
	}
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	return lines, nil
}

// OverallRank reads the player's current Overall rank from the first line
// of the raw record. Unranked players have no usable rank.
func (c *Client) OverallRank(ctx context.Context, player string, mode domain.Mode) (int64, error) {
	lines, err := c.FetchRaw(ctx, player, mode)
	if err != nil {
		return 0, err
	}
	rank := ParseOptionalInt(strings.Split(lines[0], ",")[0])
	if rank == nil || *rank <= 0 {
		return 0, fmt.Errorf("no overall rank for %q on %s hiscores", player, mode)
	}
	return *rank, nil
}

// FetchOverallPage retrieves one page of the overall leaderboard HTML.
func (c *Client) FetchOverallPage(ctx context.Context, page int) (string, error) {
	reqURL := fmt.Sprintf("%s%s?table=0&page=%d", c.baseURL, overallPath, page)
	status, body, err := c.do(ctx, reqURL, constants.OverallPageTimeout, "Mozilla/5.0")
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	if status != fasthttp.StatusOK {
		return "", fmt.Errorf("%w: status %d for overall page %d", ErrFetchFailed, status, page)
	}
	return string(body), nil
}

func (c *Client) do(ctx context.Context, reqURL string, timeout time.Duration, userAgent string) (int, []byte, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(reqURL)
	req.Header.SetMethod(fasthttp.MethodGet)
	if userAgent != "" {
		req.Header.SetUserAgent(userAgent)
	}

	deadline := time.Now().Add(timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := c.client.DoDeadline(req, resp, deadline); err != nil {
		return 0, nil, err
	}

	body := make([]byte, len(resp.Body()))
	copy(body, resp.Body())
	return resp.StatusCode(), body, nil
}
