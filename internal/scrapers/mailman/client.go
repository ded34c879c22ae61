// client.go contains the session plumbing of the admin client: construction,
// authentication and the request helpers every operation goes through.

package mailman

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"

	"mailman-admin/internal/components/assert"
	"mailman-admin/internal/components/telemetry"
	"mailman-admin/lib/htmlutil"

	"dario.cat/mergo"
	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("mailman-admin/scrapers/mailman")

const (
	report_client_authenticate   = "client.authenticate"
	report_client_fetch          = "client.fetch"
	report_client_csrf_token     = "client.csrf-token"
	report_client_list_members   = "client.list-members"
	report_client_add_members    = "client.add-members"
	report_client_remove_members = "client.remove-members"
	report_client_change_member  = "client.change-member"
)

const defaultTimeout = 30 * time.Second

type ClientOptions struct {
	// BaseUrl is the admin url of a single list, ex.
	// https://lists.example.org/mailman/admin/mylist
	BaseUrl string
	// Password is the list administrator password.
	Password string
	// SkipCertValidation disables tls certificate validation, for
	// deployments with self-signed certificates.
	SkipCertValidation bool
	// SubmitLabel is the localized label of the submit button, it
	// defaults to DefaultSubmitLabel.
	SubmitLabel string
	// Timeout bounds every single request, it defaults to 30 seconds.
	Timeout time.Duration
	// CloudflareBypass wraps the transport for list servers sitting
	// behind cloudflare's bot protection.
	CloudflareBypass bool
	// Layout defaults to DefaultLayout.
	Layout *Layout
	// MessageOutput receives a dump of every http exchange, it can be nil.
	MessageOutput telemetry.MessageOutput
}

// Client administers a single mailing list through mailman's admin web
// interface. It is not safe for concurrent use, the csrf token a mutating
// call fetches can be invalidated by any page view made in between.
type Client struct {
	BaseUrl *url.URL
	Http    *resty.Client

	password    string
	submitLabel string
	layout      Layout
	tel         telemetry.API
}

func newClient(opts ClientOptions, tel telemetry.API) (*Client, error) {
	assert.NotNil(tel)

	tel = telemetry.NewScopedAPI("mailman_admin", tel)

	baseUrl, err := url.Parse(opts.BaseUrl)
	if err != nil {
		return nil, err
	}
	if baseUrl.Scheme == "" || baseUrl.Host == "" {
		return nil, fmt.Errorf("base url must be absolute: %q", opts.BaseUrl)
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	submitLabel := opts.SubmitLabel
	if submitLabel == "" {
		submitLabel = DefaultSubmitLabel
	}
	layout, err := resolveLayout(opts.Layout)
	if err != nil {
		return nil, err
	}

	httpClient := resty.New()
	httpClient.SetBaseURL(opts.BaseUrl)
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	httpClient.SetCookieJar(jar)
	httpClient.SetHeader("user-agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36")
	httpClient.SetRedirectPolicy(resty.DomainCheckRedirectPolicy(baseUrl.Hostname()))
	httpClient.SetTimeout(timeout)

	if opts.SkipCertValidation {
		httpClient.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	if opts.CloudflareBypass {
		inner := httpClient.GetClient().Transport
		httpClient.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(inner)
		// the bypass replaces the tls config of the transport it wraps
		transport, ok := inner.(*http.Transport)
		if ok && opts.SkipCertValidation {
			if transport.TLSClientConfig == nil {
				transport.TLSClientConfig = &tls.Config{}
			}
			transport.TLSClientConfig.InsecureSkipVerify = true
		}
	}

	telemetry.InstrumentResty(httpClient, tel, opts.MessageOutput)

	return &Client{
		BaseUrl:     baseUrl,
		Http:        httpClient,
		password:    opts.Password,
		submitLabel: submitLabel,
		layout:      layout,
		tel:         tel,
	}, nil
}

func resolveLayout(override *Layout) (Layout, error) {
	if override == nil {
		return DefaultLayout, nil
	}
	layout := *override
	err := mergo.Merge(&layout, DefaultLayout)
	if err != nil {
		return Layout{}, fmt.Errorf("layout: %w", err)
	}
	return layout, nil
}

// NewClient creates a client and authenticates it with the admin password.
//
// mailman does not answer a wrong password with an error status, it just
// shows the login form again, so a wrong password only shows up later as
// empty results.
func NewClient(ctx context.Context, opts ClientOptions, tel telemetry.API) (*Client, error) {
	c, err := newClient(opts, tel)
	if err != nil {
		return nil, err
	}
	err = c.Authenticate(ctx)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Authenticate submits the admin password, the session cookies mailman
// answers with are kept in the client's cookie jar.
func (c *Client) Authenticate(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "client:Authenticate")
	defer span.End()

	_, _, err := c.submit(ctx, endpoint_login, map[string]string{
		field_password: c.password,
	})
	if err != nil {
		span.SetStatus(codes.Error, "failed to post login request")
		c.tel.ReportBroken(
			report_client_authenticate,
			fmt.Errorf("login request: %w", err),
		)
		return fmt.Errorf("mailman: authenticate: %w", err)
	}
	return nil
}

func (c *Client) parseResponse(res *resty.Response) (*goquery.Document, *url.URL, error) {
	if res.IsError() {
		return nil, nil, &StatusError{
			Method:     res.Request.Method,
			Url:        res.Request.URL,
			StatusCode: res.StatusCode(),
		}
	}

	doc, err := htmlutil.NewDocument(res.Body())
	if err != nil {
		return nil, nil, fmt.Errorf("parse: %w", err)
	}

	var location *url.URL
	if res.RawResponse != nil && res.RawResponse.Request != nil {
		location = res.RawResponse.Request.URL
	}
	return doc, location, nil
}

// fetch gets a page, `endpoint` is either relative to the base url or
// absolute. The returned url is the one the page was finally served from.
func (c *Client) fetch(ctx context.Context, endpoint string) (*goquery.Document, *url.URL, error) {
	res, err := c.Http.R().
		SetContext(ctx).
		Get(endpoint)
	if err != nil {
		c.tel.ReportBroken(
			report_client_fetch,
			fmt.Errorf("fetch: %w", err),
			endpoint,
		)
		return nil, nil, err
	}
	doc, location, err := c.parseResponse(res)
	if err != nil {
		c.tel.ReportBroken(report_client_fetch, err, endpoint)
		return nil, nil, err
	}
	return doc, location, nil
}

// submit posts a form-encoded body.
func (c *Client) submit(ctx context.Context, endpoint string, form map[string]string) (*goquery.Document, *url.URL, error) {
	res, err := c.Http.R().
		SetContext(ctx).
		SetFormData(form).
		Post(endpoint)
	if err != nil {
		return nil, nil, err
	}
	return c.parseResponse(res)
}
