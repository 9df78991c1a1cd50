package tests

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/ohler55/ojg/oj"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/agentic-research/essence/internal/arr"
	"github.com/agentic-research/essence/internal/census"
	"github.com/agentic-research/essence/internal/data"
	"github.com/agentic-research/essence/internal/env"
	"github.com/agentic-research/essence/internal/projection"
	"github.com/agentic-research/essence/internal/source"
	"github.com/agentic-research/essence/internal/web"
)

// testFixture bundles the on-disk inputs shared by the integration tests:
// a YAML document, a projection manifest, an HCL env file and a SQLite
// results table.
type testFixture struct {
	dir    string
	dbPath string
	loader *source.Loader
}

const inventoryYAML = `
services:
  - name: api
    port: 8080
    owners: [ann, bob]
  - name: worker
    owners: []
  - name: web
    port: 443
    owners: [cat]
`

const serviceManifest = `
version: v1
selector: $.services[*]
fields:
  - name: service
    path: name
    required: true
  - name: port
    path: port
    default: 80
  - name: lead
    path: owners.0
    strict: true
    default: nobody
`

var cveRecords = []string{
	`{"item": {"cve": {"id": "CVE-2024-0001", "severity": "high", "refs": ["a"]}}}`,
	`{"item": {"cve": {"id": "CVE-2024-0002", "severity": ""}}}`,
	`{"item": {"cve": {"id": "CVE-2024-0003", "severity": "low", "refs": []}}}`,
}

func setup(t *testing.T) *testFixture {
	t.Helper()
	dir := t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "inventory.yaml"), []byte(inventoryYAML), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "services.yaml"), []byte(serviceManifest), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.hcl"), []byte("REGION = \"eu-north-1\"\nREPLICAS = 3\n"), 0o644))

	dbPath := filepath.Join(dir, "cves.db")
	w, err := source.NewWriter(dbPath, zaptest.NewLogger(t))
	require.NoError(t, err)
	for i, rec := range cveRecords {
		v, err := data.DecodeJSON([]byte(rec))
		require.NoError(t, err)
		require.NoError(t, w.Add(source.Record{ID: fmt.Sprintf("cve-%d", i), Value: v}))
	}
	require.NoError(t, w.Close())

	return &testFixture{
		dir:    dir,
		dbPath: dbPath,
		loader: source.NewLoader(osfs.New(dir), zaptest.NewLogger(t)),
	}
}

// ---------------------------------------------------------------------------
// Documents
// ---------------------------------------------------------------------------

func TestDocumentPipeline(t *testing.T) {
	fx := setup(t)

	doc, err := fx.loader.Load("inventory.yaml")
	require.NoError(t, err)

	t.Run("wildcard lookup", func(t *testing.T) {
		assert.Equal(t, []any{"api", "worker", "web"}, data.Lookup("services.*.name", doc, nil))

		ports := data.Lookup("services.*.port", doc, 80).([]any)
		require.Len(t, ports, 3)
		assert.EqualValues(t, 8080, ports[0])
		assert.Equal(t, 80, ports[1])
		assert.EqualValues(t, 443, ports[2])
	})

	t.Run("lookup agrees with jsonpath", func(t *testing.T) {
		matches, err := data.Query("$.services[*].owners[*]", doc)
		require.NoError(t, err)
		assert.Equal(t, []any{"ann", "bob", "cat"}, matches)
	})

	t.Run("projection manifest", func(t *testing.T) {
		p, err := projection.Load(osfs.New(fx.dir), "services.yaml")
		require.NoError(t, err)

		out, err := projection.Apply(p, doc)
		require.NoError(t, err)
		rows := out.([]any)
		require.Len(t, rows, 3)
		assert.Equal(t, "ann", data.Lookup("0.lead", rows, nil))
		assert.Equal(t, "nobody", data.Lookup("1.lead", rows, nil))
		assert.EqualValues(t, 80, data.Lookup("1.port", rows, nil))
	})

	t.Run("partition and flatten", func(t *testing.T) {
		services, ok := data.Elements(data.Lookup("services", doc, nil))
		require.True(t, ok)
		groups := arr.Partition(services, 2)
		require.Len(t, groups, 2)
		assert.Len(t, groups[0], 2)
		assert.Len(t, groups[1], 1)

		flat := arr.DotFlatten(doc)
		assert.Equal(t, "bob", flat["services.0.owners.1"])
		assert.NotContains(t, flat, "services.1.owners")
	})
}

// ---------------------------------------------------------------------------
// Record sets
// ---------------------------------------------------------------------------

func TestRecordPipeline(t *testing.T) {
	fx := setup(t)

	records, err := source.LoadSQLite(fx.dbPath)
	require.NoError(t, err)
	require.Len(t, records, 3)

	c := census.Build(source.Values(records))
	assert.Equal(t, []uint32{0, 2}, c.Filled("item.cve.severity").ToArray())
	assert.Equal(t, []uint32{0}, c.Together("item.cve.severity", "item.cve.refs").ToArray())

	filter, err := source.NewFilter(`filled("item.cve.severity") && lookup("item.cve.severity") != "low"`)
	require.NoError(t, err)

	var ids []string
	for _, r := range records {
		ok, err := filter.Match(r.Value)
		require.NoError(t, err)
		if ok {
			ids = append(ids, r.ID)
		}
	}
	assert.Equal(t, []string{"cve-0"}, ids)
}

// ---------------------------------------------------------------------------
// Environment
// ---------------------------------------------------------------------------

func TestEnvFallbackFile(t *testing.T) {
	fx := setup(t)
	t.Setenv("REPLICAS", "5")

	vars, err := env.LoadHCL(osfs.New(fx.dir), "app.hcl")
	require.NoError(t, err)

	e := env.New(env.WithFallback(vars))
	assert.Equal(t, "5", e.Get("REPLICAS", "1"))
	assert.Equal(t, "eu-north-1", e.Get("REGION", ""))
	assert.Equal(t, "", e.GetLocal("REGION", ""))
}

// ---------------------------------------------------------------------------
// HTTP
// ---------------------------------------------------------------------------

func TestRequestContextOverHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req, err := web.New(r, web.WithLogger(zaptest.NewLogger(t)))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		out := map[string]any{
			"method": req.MethodPlea(),
			"name":   req.InputLookup("user.name", "anonymous"),
			"tags":   req.InputLookup("user.tags.*", nil),
			"page":   data.Lookup("page", req.Query(), "1"),
			"port":   req.Port(),
			"ajax":   req.AjaxPlea(),
		}
		_, _ = io.WriteString(w, oj.JSON(out))
	}))
	defer srv.Close()

	u, err := url.Parse(srv.URL)
	require.NoError(t, err)
	port, err := strconv.Atoi(u.Port())
	require.NoError(t, err)

	decode := func(resp *http.Response) any {
		t.Helper()
		defer func() { _ = resp.Body.Close() }()
		require.Equal(t, http.StatusOK, resp.StatusCode)
		b, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		v, err := data.DecodeJSON(b)
		require.NoError(t, err)
		return v
	}

	t.Run("json body", func(t *testing.T) {
		resp, err := http.Post(srv.URL+"/users?page=3", "application/json",
			strings.NewReader(`{"user": {"name": "ann", "tags": ["a", "b"]}}`))
		require.NoError(t, err)
		got := decode(resp)
		assert.Equal(t, "POST", data.Lookup("method", got, nil))
		assert.Equal(t, "ann", data.Lookup("name", got, nil))
		assert.Equal(t, []any{"a", "b"}, data.Lookup("tags", got, nil))
		assert.Equal(t, "3", data.Lookup("page", got, nil))
		assert.EqualValues(t, port, data.Lookup("port", got, nil))
	})

	t.Run("form with method override", func(t *testing.T) {
		form := url.Values{
			"user[name]":    {"bob"},
			"user[tags][]":  {"x"},
			"__method_plea": {"PUT"},
		}
		req, err := http.NewRequest(http.MethodPost, srv.URL+"/users", strings.NewReader(form.Encode()))
		require.NoError(t, err)
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.Header.Set("X-Requested-With", "XMLHttpRequest")

		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		got := decode(resp)
		assert.Equal(t, "PUT", data.Lookup("method", got, nil))
		assert.Equal(t, "bob", data.Lookup("name", got, nil))
		assert.Equal(t, []any{"x"}, data.Lookup("tags", got, nil))
		assert.Equal(t, "1", data.Lookup("page", got, nil))
		assert.Equal(t, true, data.Lookup("ajax", got, nil))
	})
}
