package phpmyadmin

import (
	"bytes"
	"context"
	"fmt"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"pmabackup/lib/telemetry"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("scrapers/phpmyadmin")

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"

// Client owns one console session: cookies persist across calls, basic
// auth (when configured) is attached to every request, and the configured
// timeout applies to each request individually. It knows nothing about
// login or export semantics.
type Client struct {
	BaseUrl *url.URL
	Http    *resty.Client
}

type ClientOptions struct {
	// LoginUrl is the address of the console's login page. It also anchors
	// relative links found in the markup.
	LoginUrl string
	// Timeout applies per request, not across the whole workflow.
	Timeout time.Duration
	// BasicAuth is an optional "user:password" pair for HTTP basic
	// authentication in front of the console.
	BasicAuth string
}

func NewClient(opts ClientOptions) (*Client, error) {
	baseUrl, err := url.Parse(opts.LoginUrl)
	if err != nil {
		return nil, err
	}

	client := resty.New()
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	client.SetCookieJar(jar)
	client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)

	client.SetHeader("user-agent", userAgent)
	client.SetRedirectPolicy(resty.DomainCheckRedirectPolicy(baseUrl.Hostname()))
	if opts.Timeout > 0 {
		client.SetTimeout(opts.Timeout)
	}
	if opts.BasicAuth != "" {
		user, password, ok := strings.Cut(opts.BasicAuth, ":")
		if !ok {
			return nil, fmt.Errorf(`basic auth must be of the form "user:password"`)
		}
		client.SetBasicAuth(user, password)
	}

	telemetry.InstrumentResty(client, "scrapers/phpmyadmin/http")

	return &Client{
		BaseUrl: baseUrl,
		Http:    client,
	}, nil
}

// resolve joins a link found in the markup with the base url. An empty ref
// resolves to the base url itself.
func (c *Client) resolve(ref string) (string, error) {
	link, err := c.BaseUrl.Parse(ref)
	if err != nil {
		return "", err
	}
	return link.String(), nil
}

// GetPage fetches a page and parses it as an HTML document.
func (c *Client) GetPage(ctx context.Context, ref string) (*goquery.Document, error) {
	target, err := c.resolve(ref)
	if err != nil {
		return nil, err
	}

	res, err := c.Http.R().
		SetContext(ctx).
		Get(target)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	if !res.IsSuccess() {
		return nil, &TransportError{Status: res.StatusCode()}
	}

	return goquery.NewDocumentFromReader(bytes.NewReader(res.Body()))
}

// PostForm submits form-encoded fields and parses the response as an HTML
// document.
func (c *Client) PostForm(ctx context.Context, ref string, fields url.Values) (*goquery.Document, error) {
	target, err := c.resolve(ref)
	if err != nil {
		return nil, err
	}

	res, err := c.Http.R().
		SetContext(ctx).
		SetFormDataFromValues(fields).
		Post(target)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	if !res.IsSuccess() {
		return nil, &TransportError{Status: res.StatusCode()}
	}

	return goquery.NewDocumentFromReader(bytes.NewReader(res.Body()))
}

// PostFormStream submits form-encoded fields and hands back the response
// with an unread body, so arbitrarily large downloads are never buffered.
// The caller owns closing res.RawBody().
func (c *Client) PostFormStream(ctx context.Context, ref string, fields url.Values) (*resty.Response, error) {
	target, err := c.resolve(ref)
	if err != nil {
		return nil, err
	}

	res, err := c.Http.R().
		SetContext(ctx).
		SetFormDataFromValues(fields).
		SetDoNotParseResponse(true).
		Post(target)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	if !res.IsSuccess() {
		res.RawBody().Close()
		return nil, &TransportError{Status: res.StatusCode()}
	}

	return res, nil
}
