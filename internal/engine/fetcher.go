package engine

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/tartampluch/go-compactdates/internal/config"
)

// CalendarFetcher retrieves remote iCalendar data for the Importer.
type CalendarFetcher interface {
	Fetch(ctx context.Context, url, user, pass string) (io.ReadCloser, error)
}

// HTTPFetcher downloads calendars over HTTP(S).
type HTTPFetcher struct {
	Client *http.Client
}

// NewHTTPFetcher creates a fetcher whose client gives up after config.HTTPTimeout.
func NewHTTPFetcher() *HTTPFetcher {
	return &HTTPFetcher{
		Client: &http.Client{Timeout: config.HTTPTimeout},
	}
}

// Fetch issues a GET for feedURL, with Basic auth when user or pass is set.
// Anything but 200 OK is an error. The returned body stops after
// config.MaxHTTPResponseSize bytes; the caller must close it.
func (f *HTTPFetcher) Fetch(ctx context.Context, feedURL, user, pass string) (io.ReadCloser, error) {
	u, err := parseFeedURL(feedURL)
	if err != nil {
		return nil, err
	}

	log := slog.With(
		slog.String(config.LogKeyComponent, config.CompFetcher),
		slog.String(config.LogKeyURL, redactURL(u)),
	)
	log.Debug(config.MsgFetchStart)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrRequestCreate, err)
	}
	req.Header.Set(config.HeaderUserAgent, config.UserAgent)
	if user != "" || pass != "" {
		req.SetBasicAuth(user, pass)
	}

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrNetwork, err)
	}
	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		log.Warn(config.MsgFetchStatus, slog.Int(config.LogKeyStatus, resp.StatusCode))
		return nil, fmt.Errorf("%s: %s", config.ErrHTTPStatus, resp.Status)
	}

	log.Debug(config.MsgFetchStream, slog.Int64(config.LogKeyLength, resp.ContentLength))
	return struct {
		io.Reader
		io.Closer
	}{io.LimitReader(resp.Body, config.MaxHTTPResponseSize), resp.Body}, nil
}

// parseFeedURL accepts absolute http and https URLs only.
func parseFeedURL(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrInvalidURL, err)
	}
	if u.Scheme != config.SchemeHTTP && u.Scheme != config.SchemeHTTPS {
		return nil, fmt.Errorf("%s: %q", config.ErrProtocol, u.Scheme)
	}
	return u, nil
}

// redactURL drops credentials and the query string, which often carries feed tokens.
func redactURL(u *url.URL) string {
	return u.Scheme + "://" + u.Host + u.Path
}
