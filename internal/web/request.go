// Package web exposes an explicit, read-only view over an incoming HTTP
// request: headers, body, decoded JSON, form and query values, and the
// derived flags (HTTPS, AJAX, method override) that handlers commonly need.
package web

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/agentic-research/essence/internal/data"
)

const (
	defaultMaxMemory = 32 << 20

	// MethodPleaField is the form field that overrides the request method.
	MethodPleaField = "__method_plea"
)

// Request is built once per request by New and is safe for concurrent reads.
type Request struct {
	r      *http.Request
	body   []byte
	json   any
	query  map[string]any
	form   map[string]any
	path   string
	port   int
	secure bool
	start  time.Time
}

// Credentials are the HTTP basic auth user and password.
type Credentials struct {
	User     string
	Password string
}

type config struct {
	secure    bool
	start     time.Time
	maxMemory int64
	log       *zap.Logger
}

type Option func(*config)

// WithSecure marks the request as served over TLS, for servers behind a
// terminating proxy that did not set r.TLS.
func WithSecure(secure bool) Option {
	return func(c *config) { c.secure = secure }
}

// WithStartTime sets the instant Elapsed measures from. Defaults to time.Now
// at construction.
func WithStartTime(t time.Time) Option {
	return func(c *config) { c.start = t }
}

// WithMaxMemory bounds the multipart form bytes held in memory.
func WithMaxMemory(n int64) Option {
	return func(c *config) { c.maxMemory = n }
}

func WithLogger(l *zap.Logger) Option {
	return func(c *config) { c.log = l }
}

// New reads r's body once, restoring r.Body so later readers see the same
// bytes, and decodes JSON, form and query input up front.
func New(r *http.Request, opts ...Option) (*Request, error) {
	cfg := config{maxMemory: defaultMaxMemory, log: zap.NewNop()}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.start.IsZero() {
		cfg.start = time.Now()
	}

	req := &Request{r: r, start: cfg.start, path: r.URL.Path}

	if r.Body != nil && r.Body != http.NoBody {
		b, err := io.ReadAll(r.Body)
		if err != nil {
			return nil, fmt.Errorf("read request body: %w", err)
		}
		_ = r.Body.Close()
		req.body = b
		r.Body = io.NopCloser(bytes.NewReader(b))
	}

	if isJSONDocument(req.body) {
		v, err := data.DecodeJSON(req.body)
		if err != nil {
			cfg.log.Debug("request body is not valid json", zap.String("path", req.path), zap.Error(err))
		} else {
			req.json = v
		}
	}

	form, err := parseForm(r, cfg.maxMemory)
	if err != nil {
		return nil, err
	}
	if req.body != nil {
		r.Body = io.NopCloser(bytes.NewReader(req.body))
	}
	req.form = form
	req.query = ParseValues(r.URL.Query())

	req.port = serverPort(r)
	req.secure = cfg.secure || r.TLS != nil || req.port == 443
	if req.port == 0 {
		req.port = 80
		if req.secure {
			req.port = 443
		}
	}

	cfg.log.Debug("request context",
		zap.String("method", r.Method),
		zap.String("path", req.path),
		zap.Int("body_bytes", len(req.body)),
		zap.Bool("json", req.json != nil),
		zap.Bool("https", req.secure))
	return req, nil
}

func isJSONDocument(b []byte) bool {
	b = bytes.TrimSpace(b)
	return len(b) > 0 && (b[0] == '{' || b[0] == '[')
}

func parseForm(r *http.Request, maxMemory int64) (map[string]any, error) {
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch ct {
	case "multipart/form-data":
		if err := r.ParseMultipartForm(maxMemory); err != nil {
			return nil, fmt.Errorf("parse multipart form: %w", err)
		}
	case "application/x-www-form-urlencoded":
		if err := r.ParseForm(); err != nil {
			return nil, fmt.Errorf("parse form: %w", err)
		}
	default:
		return map[string]any{}, nil
	}
	return ParseValues(r.PostForm), nil
}

// serverPort is the port the request arrived on, or 0 when unknown.
func serverPort(r *http.Request) int {
	if addr, ok := r.Context().Value(http.LocalAddrContextKey).(net.Addr); ok {
		if tcp, ok := addr.(*net.TCPAddr); ok && tcp.Port != 0 {
			return tcp.Port
		}
	}
	if _, p, err := net.SplitHostPort(r.Host); err == nil {
		if n, err := strconv.Atoi(p); err == nil {
			return n
		}
	}
	return 0
}

// Raw returns the underlying request.
func (q *Request) Raw() *http.Request { return q.r }

func (q *Request) Method() string { return q.r.Method }

func (q *Request) Host() string { return q.r.Host }

// URI is the request target in origin form, path plus query.
func (q *Request) URI() string { return q.r.URL.RequestURI() }

// Path is the URI without its query string.
func (q *Request) Path() string { return q.path }

// Query returns the query string parsed with bracket notation.
func (q *Request) Query() map[string]any { return q.query }

func (q *Request) Header(name string) string { return q.r.Header.Get(name) }

// FormData returns url-encoded or multipart body fields parsed with bracket
// notation. Empty for other content types.
func (q *Request) FormData() map[string]any { return q.form }

func (q *Request) Body() []byte { return q.body }

// JSON is the decoded body when it held a JSON object or array, else nil.
func (q *Request) JSON() any { return q.json }

// Input is the JSON body when present, else the form data.
func (q *Request) Input() any {
	if q.json != nil {
		return q.json
	}
	return q.form
}

// InputLookup resolves a dot-notation path against Input.
func (q *Request) InputLookup(path string, def any) any {
	return data.Lookup(path, q.Input(), def)
}

// URL reconstructs the absolute URL from scheme, Host and URI.
func (q *Request) URL() string {
	scheme := "http"
	if q.secure {
		scheme = "https"
	}
	return scheme + "://" + q.Host() + q.URI()
}

// Auth returns the basic auth credentials, if the request carries any.
func (q *Request) Auth() (Credentials, bool) {
	user, pass, ok := q.r.BasicAuth()
	return Credentials{User: user, Password: pass}, ok
}

func (q *Request) UserAgent() string { return q.r.UserAgent() }

func (q *Request) StartTime() time.Time { return q.start }

// Elapsed is the time spent since the request started.
func (q *Request) Elapsed() time.Duration { return time.Since(q.start) }

// Port is the server port: the listener's local port, else the port in
// Host, else 443 or 80 by scheme.
func (q *Request) Port() int { return q.port }

func (q *Request) IsHTTPS() bool { return q.secure }

// ForwardProto is the X-Forwarded-Proto header set by proxies.
func (q *Request) ForwardProto() string { return q.r.Header.Get("X-Forwarded-Proto") }

func (q *Request) Referer() string { return q.r.Referer() }

// IP is the remote address without its port.
func (q *Request) IP() string {
	host, _, err := net.SplitHostPort(q.r.RemoteAddr)
	if err != nil {
		return q.r.RemoteAddr
	}
	return host
}

// HTTPSPlea reports whether the client reached us over HTTPS, directly or
// through a proxy that says so.
func (q *Request) HTTPSPlea() bool {
	return q.secure || strings.EqualFold(q.ForwardProto(), "https")
}

// AjaxPlea reports an X-Requested-With: XMLHttpRequest header.
func (q *Request) AjaxPlea() bool {
	return strings.EqualFold(q.r.Header.Get("X-Requested-With"), "XMLHttpRequest")
}

// MethodPlea is the method named by the __method_plea form field, falling
// back to the request method.
func (q *Request) MethodPlea() string {
	if m, ok := q.form[MethodPleaField].(string); ok {
		return m
	}
	return q.Method()
}

// Values collects every accessor into one map so a Request can be walked
// with dot-notation paths.
func (q *Request) Values() map[string]any {
	headers := make(map[string]any, len(q.r.Header))
	for name, vals := range q.r.Header {
		headers[name] = strings.Join(vals, ", ")
	}
	v := map[string]any{
		"method":        q.Method(),
		"method_plea":   q.MethodPlea(),
		"host":          q.Host(),
		"uri":           q.URI(),
		"path":          q.Path(),
		"url":           q.URL(),
		"query":         q.query,
		"form":          q.form,
		"json":          q.json,
		"body":          string(q.body),
		"headers":       headers,
		"user_agent":    q.UserAgent(),
		"port":          q.port,
		"https":         q.secure,
		"https_plea":    q.HTTPSPlea(),
		"ajax_plea":     q.AjaxPlea(),
		"forward_proto": q.ForwardProto(),
		"referer":       q.Referer(),
		"ip":            q.IP(),
		"elapsed_ms":    q.Elapsed().Milliseconds(),
	}
	if creds, ok := q.Auth(); ok {
		v["auth"] = map[string]any{"user": creds.User, "password": creds.Password}
	}
	return v
}

// Get resolves one top-level key of Values, which makes a Request a
// data.Accessor.
func (q *Request) Get(segment string) (any, bool) {
	v, ok := q.Values()[segment]
	return v, ok
}
