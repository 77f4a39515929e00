package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tenancypack/internal/config"
	"tenancypack/internal/document"
	"tenancypack/internal/infra/chrome"
)

const validBody = `{
  "property": {"houseNumber": "12", "street": "Acacia Avenue", "city": "Leeds", "postcode": "LS1 4AB"},
  "landlord": {"fullName": "Alice Landlord", "address": "1 High St, York", "phone": "07700 900123", "email": "alice@example.com"},
  "tenants": [{"fullName": "Bob Tenant", "address": "2 Low St, York", "phone": "07700 900456", "email": "bob@example.com"}],
  "rentalTerms": {
    "agreementDate": "2024-01-01", "rentAmount": 1200, "paymentFrequency": "month",
    "paymentDay": "1st", "firstPaymentDate": "2024-02-01", "depositAmount": "1384.62",
    "tenancyLength": 12, "startDate": "2024-02-01"
  },
  "documents": {"epc": {"hasDocument": true}}
}`

func minimalConfig(t *testing.T) config.Config {
	var cfg config.Config
	cfg.Server.BodyLimit = 64 * 1024
	cfg.RateLimiter.Interval = time.Minute
	cfg.PDF.Engine = config.EngineFPDF
	cfg.PDF.DefaultPaper = "A4"
	cfg.PDF.PaperSizes = map[string]config.PaperSize{"A4": {Width: 8.27, Height: 11.69}}
	cfg.PDF.Margin = 0.75
	cfg.PDF.TimeoutSecs = 1
	cfg.Pack.ScratchDir = t.TempDir()
	cfg.Metrics.Path = "/metrics"
	return cfg
}

type errorBody struct {
	Error  string `json:"error"`
	Fields []struct {
		Field  string `json:"field"`
		Reason string `json:"reason"`
	} `json:"fields"`
}

func do(t *testing.T, cfg config.Config, method, path, body string) (*http.Response, []byte) {
	t.Helper()
	app := New(Deps{Config: cfg})
	return doWith(t, app.Test, method, path, body)
}

func doWith(t *testing.T, test func(*http.Request, ...int) (*http.Response, error), method, path, body string) (*http.Response, []byte) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := test(req, -1)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, data
}

func decodeError(t *testing.T, data []byte) errorBody {
	t.Helper()
	var body errorBody
	if err := json.Unmarshal(data, &body); err != nil {
		t.Fatalf("expected JSON error body, got %q: %v", data, err)
	}
	return body
}

func TestNew_RoutesAndJSON404(t *testing.T) {
	cfg := minimalConfig(t)

	resp, _ := do(t, cfg, http.MethodGet, "/health", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected /health 200, got %d", resp.StatusCode)
	}

	resp, data := do(t, cfg, http.MethodGet, "/does-not-exist", "")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
	if got := decodeError(t, data).Error; got != "Not Found" {
		t.Fatalf("expected Not Found error, got %q", got)
	}
}

func TestGenerate_Success(t *testing.T) {
	resp, data := do(t, minimalConfig(t), http.MethodPost, "/generate-tenancy-pack", validBody)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(data))
	assert.Equal(t, "application/zip", resp.Header.Get("Content-Type"))
	assert.Regexp(t, `^attachment; filename="tenancy_pack_\d{8}_\d{6}\.zip"$`, resp.Header.Get("Content-Disposition"))
	assert.True(t, strings.HasPrefix(string(data), "PK"), "expected a zip body")
	assert.NotEmpty(t, resp.Header.Get("X-Request-Id"))
}

func TestGenerate_EmptyBodyIs400(t *testing.T) {
	resp, data := do(t, minimalConfig(t), http.MethodPost, "/generate-tenancy-pack", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "No data provided", decodeError(t, data).Error)
}

func TestGenerate_StrictValidationIs400WithFields(t *testing.T) {
	cfg := minimalConfig(t)
	cfg.Pack.StrictValidation = true

	body := strings.Replace(validBody, `"fullName": "Alice Landlord", `, "", 1)
	resp, data := do(t, cfg, http.MethodPost, "/generate-tenancy-pack", body)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	eb := decodeError(t, data)
	assert.Equal(t, "Invalid tenancy data", eb.Error)
	require.Len(t, eb.Fields, 1)
	assert.Equal(t, "landlord.fullName", eb.Fields[0].Field)
	assert.Equal(t, "is required", eb.Fields[0].Reason)
}

func TestGenerate_LenientMissingFieldIs500(t *testing.T) {
	cfg := minimalConfig(t)

	body := strings.Replace(validBody, `"fullName": "Alice Landlord", `, "", 1)
	resp, data := do(t, cfg, http.MethodPost, "/generate-tenancy-pack", body)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "missing required field 'landlord.fullName'", decodeError(t, data).Error)
}

func TestGenerate_MalformedJSONIs500(t *testing.T) {
	resp, data := do(t, minimalConfig(t), http.MethodPost, "/generate-tenancy-pack", `{"property":`)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Contains(t, decodeError(t, data).Error, "invalid JSON body")
}

func TestGenerate_UserRateLimit(t *testing.T) {
	cfg := minimalConfig(t)
	cfg.RateLimiter.UserLimit = 1
	app := New(Deps{Config: cfg})

	resp, _ := doWith(t, app.Test, http.MethodPost, "/generate-tenancy-pack", validBody)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, data := doWith(t, app.Test, http.MethodPost, "/generate-tenancy-pack", validBody)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "Too Many Requests", decodeError(t, data).Error)

	// health is never limited
	resp, _ = doWith(t, app.Test, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestCORSPreflight(t *testing.T) {
	app := New(Deps{Config: minimalConfig(t)})
	req := httptest.NewRequest(http.MethodOptions, "/generate-tenancy-pack", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestMetricsEndpoint(t *testing.T) {
	cfg := minimalConfig(t)
	app := New(Deps{Config: cfg})

	resp, _ := doWith(t, app.Test, http.MethodPost, "/generate-tenancy-pack", validBody)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, data := doWith(t, app.Test, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(data), `tenancypack_requests_total{result="success"}`)
	assert.Contains(t, string(data), "tenancypack_build_duration_seconds")
}

func TestMetricsDisabled(t *testing.T) {
	cfg := minimalConfig(t)
	disabled := false
	cfg.Metrics.Enabled = &disabled

	resp, _ := do(t, cfg, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestNewRenderer_ByEngine(t *testing.T) {
	cfg := minimalConfig(t)
	_, ok := NewRenderer(cfg).(*document.FPDF)
	assert.True(t, ok, "fpdf is the default engine")

	cfg.PDF.Engine = config.EngineChrome
	cfg.PDF.ChromePath = "/usr/bin/chromium"
	r, ok := NewRenderer(cfg).(*chrome.Renderer)
	require.True(t, ok)
	assert.Equal(t, "/usr/bin/chromium", r.ExecPath)
}

const firstTenant = `{"fullName": "Bob Tenant", "address": "2 Low St, York", "phone": "07700 900456", "email": "bob@example.com"}`

func zipNames(t *testing.T, data []byte) []string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	return names
}

func TestShippedConfig_GeneratesFormPayloads(t *testing.T) {
	cfg := config.LoadFrom("../../../config/config.yaml")
	cfg.Pack.ScratchDir = t.TempDir()
	app := New(Deps{Config: cfg})

	t.Run("two tenants, epc held, gas safety not", func(t *testing.T) {
		body := strings.Replace(validBody, firstTenant, firstTenant+`, {"fullName": "Carol Tenant", "address": "3 Mid St, York", "phone": "07700 900789", "email": "carol@example.com"}`, 1)
		body = strings.Replace(body, `"documents": {"epc": {"hasDocument": true}}`, `"documents": {"epc": {"hasDocument": true}, "gasSafety": {"hasDocument": false}}`, 1)

		resp, data := doWith(t, app.Test, http.MethodPost, "/generate-tenancy-pack", body)
		require.Equal(t, http.StatusOK, resp.StatusCode, string(data))
		assert.Regexp(t, `filename="tenancy_pack_\d{8}_\d{6}\.zip"`, resp.Header.Get("Content-Disposition"))
		names := zipNames(t, data)
		assert.Contains(t, names, "Energy_Performance_Certificate.pdf")
		assert.NotContains(t, names, "Gas_Safety_Certificate.pdf")
	})

	t.Run("five tenants", func(t *testing.T) {
		body := strings.Replace(validBody, firstTenant, strings.Repeat(firstTenant+", ", 4)+firstTenant, 1)
		resp, data := doWith(t, app.Test, http.MethodPost, "/generate-tenancy-pack", body)
		assert.Equal(t, http.StatusOK, resp.StatusCode, string(data))
	})

	t.Run("non-UK postcode", func(t *testing.T) {
		body := strings.Replace(validBody, `"postcode": "LS1 4AB"`, `"postcode": "10001"`, 1)
		resp, data := doWith(t, app.Test, http.MethodPost, "/generate-tenancy-pack", body)
		assert.Equal(t, http.StatusOK, resp.StatusCode, string(data))
	})

	t.Run("missing landlord name", func(t *testing.T) {
		body := strings.Replace(validBody, `"fullName": "Alice Landlord", `, "", 1)
		resp, data := doWith(t, app.Test, http.MethodPost, "/generate-tenancy-pack", body)
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		assert.Equal(t, "missing required field 'landlord.fullName'", decodeError(t, data).Error)
	})

	t.Run("empty body", func(t *testing.T) {
		resp, data := doWith(t, app.Test, http.MethodPost, "/generate-tenancy-pack", "")
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "No data provided", decodeError(t, data).Error)
	})
}
