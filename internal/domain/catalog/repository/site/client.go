// Package site reads the broadcast archive web site
package site

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"

	"github.com/RaShaimardanov/franky/internal/domain/catalog/deps"
	"github.com/RaShaimardanov/franky/internal/domain/catalog/entities"
	catalogerrors "github.com/RaShaimardanov/franky/internal/domain/catalog/errors"
)

const userAgent = "franky-scraper/1.0"

// Client reads the list page and downloads audio through the code form
type Client struct {
	http     *http.Client
	startURL string
	logger   zerolog.Logger
}

// NewClient creates a site client; a nil httpClient gets a default with timeout
func NewClient(httpClient *http.Client, startURL string, logger zerolog.Logger) deps.Site {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	return &Client{http: httpClient, startURL: startURL, logger: logger}
}

// ListLinks opens the list with role names shown and collects its anchors
func (c *Client) ListLinks(ctx context.Context) ([]entities.Link, error) {
	pageURL, err := listURL(c.startURL)
	if err != nil {
		return nil, err
	}

	doc, base, err := c.fetchDocument(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	list := doc.Find("#list")
	if list.Length() == 0 {
		return nil, fmt.Errorf("%w: list element not found on %s", catalogerrors.ErrSiteUnavailable, pageURL)
	}

	var links []entities.Link
	list.Find("a").Each(func(_ int, a *goquery.Selection) {
		href, ok := a.Attr("href")
		text := strings.TrimSpace(a.Text())
		if !ok || href == "" || text == "" {
			return
		}

		target, err := base.Parse(href)
		if err != nil {
			c.logger.Debug().Err(err).Str("href", href).Msg("Skipping malformed link")
			return
		}
		links = append(links, entities.Link{Text: text, URL: target.String()})
	})

	return links, nil
}

// Download opens the link page, copies the code from #nekto into the form field "code"
// and submits it; the response body is the audio file
func (c *Client) Download(ctx context.Context, link entities.Link) (*entities.Download, error) {
	doc, base, err := c.fetchDocument(ctx, link.URL)
	if err != nil {
		return nil, err
	}

	code := strings.TrimSpace(doc.Find("#nekto").First().Text())
	if code == "" {
		return nil, fmt.Errorf("%w: no download code on %s", catalogerrors.ErrDownloadFailed, link.URL)
	}

	input := doc.Find(`input[name="code"]`).First()
	if input.Length() == 0 {
		return nil, fmt.Errorf("%w: no code field on %s", catalogerrors.ErrDownloadFailed, link.URL)
	}

	form := input.Closest("form")
	action, method, values := formRequest(form, base)
	values.Set("code", code)

	req, err := newFormRequest(ctx, method, action, values)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", catalogerrors.ErrDownloadFailed, err)
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("%w: %s returned %s", catalogerrors.ErrDownloadFailed, action, resp.Status)
	}
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "text/html") {
		resp.Body.Close()
		return nil, fmt.Errorf("%w: %s answered with a page instead of a file", catalogerrors.ErrDownloadFailed, action)
	}

	return &entities.Download{
		Filename: responseFilename(resp),
		Body:     resp.Body,
		Size:     resp.ContentLength,
	}, nil
}

func (c *Client) fetchDocument(ctx context.Context, pageURL string) (*goquery.Document, *url.URL, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", catalogerrors.ErrSiteUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, nil, fmt.Errorf("%w: %s returned %s", catalogerrors.ErrSiteUnavailable, pageURL, resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("parse document: %w", err)
	}

	return doc, resp.Request.URL, nil
}

// listURL adds show=1, the switch that reveals role names on the list page
func listURL(startURL string) (string, error) {
	u, err := url.Parse(startURL)
	if err != nil {
		return "", fmt.Errorf("invalid start url %q: %w", startURL, err)
	}
	q := u.Query()
	q.Set("show", "1")
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// formRequest returns the submit target of form together with its hidden fields
func formRequest(form *goquery.Selection, base *url.URL) (string, string, url.Values) {
	values := url.Values{}
	action := base.String()
	method := http.MethodPost

	if form.Length() == 0 {
		return action, method, values
	}

	if raw, ok := form.Attr("action"); ok && strings.TrimSpace(raw) != "" {
		if target, err := base.Parse(strings.TrimSpace(raw)); err == nil {
			action = target.String()
		}
	}
	if raw, ok := form.Attr("method"); ok && strings.EqualFold(strings.TrimSpace(raw), http.MethodGet) {
		method = http.MethodGet
	}

	form.Find(`input[type="hidden"]`).Each(func(_ int, in *goquery.Selection) {
		name, _ := in.Attr("name")
		value, _ := in.Attr("value")
		if name != "" {
			values.Set(name, value)
		}
	})

	return action, method, values
}

func newFormRequest(ctx context.Context, method, action string, values url.Values) (*http.Request, error) {
	var (
		req *http.Request
		err error
	)

	if method == http.MethodGet {
		target, parseErr := url.Parse(action)
		if parseErr != nil {
			return nil, fmt.Errorf("invalid form action %q: %w", action, parseErr)
		}
		q := target.Query()
		for k, v := range values {
			q[k] = v
		}
		target.RawQuery = q.Encode()
		req, err = http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	} else {
		req, err = http.NewRequestWithContext(ctx, http.MethodPost, action, strings.NewReader(values.Encode()))
		if err == nil {
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		}
	}
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("User-Agent", userAgent)
	return req, nil
}

// responseFilename prefers Content-Disposition and falls back to the last path segment
func responseFilename(resp *http.Response) string {
	if cd := resp.Header.Get("Content-Disposition"); cd != "" {
		if _, params, err := mime.ParseMediaType(cd); err == nil {
			if name := path.Base(strings.ReplaceAll(params["filename"], `\`, "/")); name != "" && name != "." && name != "/" {
				return name
			}
		}
	}

	name := path.Base(resp.Request.URL.Path)
	if name == "" || name == "." || name == "/" {
		return fmt.Sprintf("broadcast-%d.mp3", time.Now().Unix())
	}
	return name
}

