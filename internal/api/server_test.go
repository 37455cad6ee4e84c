package api

import (
	"bytes"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"certagent/internal/caclient"
	"certagent/internal/credstore"
	"certagent/internal/csr"
	"certagent/internal/enroll"
	"certagent/internal/services"
	"certagent/internal/utils"
)

const testSecret = "test-api-secret"

// stubCA signs whatever CSR it receives with a throwaway CA key.
func stubCA(t *testing.T) *httptest.Server {
	t.Helper()

	caKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	caTemplate := &x509.Certificate{
		SerialNumber:          big.NewInt(1),
		NotBefore:             time.Now().Add(-time.Hour),
		NotAfter:              time.Now().Add(48 * time.Hour),
		IsCA:                  true,
		BasicConstraintsValid: true,
		KeyUsage:              x509.KeyUsageCertSign,
	}
	caDER, err := x509.CreateCertificate(rand.Reader, caTemplate, caTemplate, &caKey.PublicKey, caKey)
	require.NoError(t, err)
	caCert, err := x509.ParseCertificate(caDER)
	require.NoError(t, err)

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			CertificateSigningRequest string `json:"CertificateSigningRequest"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "bad body", http.StatusBadRequest)
			return
		}

		block, _ := pem.Decode([]byte(body.CertificateSigningRequest))
		if block == nil {
			http.Error(w, "bad csr", http.StatusBadRequest)
			return
		}
		request, err := x509.ParseCertificateRequest(block.Bytes)
		if err != nil {
			http.Error(w, "bad csr", http.StatusBadRequest)
			return
		}

		serial, _ := rand.Int(rand.Reader, big.NewInt(1<<62))
		template := &x509.Certificate{
			SerialNumber: serial,
			RawSubject:   request.RawSubject,
			NotBefore:    time.Now().Add(-time.Minute),
			NotAfter:     time.Now().AddDate(0, 0, 365),
		}
		der, err := x509.CreateCertificate(rand.Reader, template, caCert, request.PublicKey, caKey)
		if err != nil {
			http.Error(w, "signing failed", http.StatusInternalServerError)
			return
		}

		certPEM := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})
		json.NewEncoder(w).Encode(map[string]string{"Certificate": string(certPEM)})
	}))
}

func newTestServer(t *testing.T) *Server {
	t.Helper()

	ca := stubCA(t)
	t.Cleanup(ca.Close)

	config := &utils.Config{
		Environment:             "test",
		LogLevel:                "error",
		APIAuthSecret:           testSecret,
		CAEndpoint:              ca.URL,
		CAAuthToken:             "ca-token",
		CertificateValidityDays: 365,
		CARequestTimeout:        5 * time.Second,
		RetryMaxAttempts:        2,
		RetryInitialDelay:       time.Millisecond,
		RetryMaxDelay:           5 * time.Millisecond,
		RetryBackoffFactor:      2.0,
		RateLimitPerMinute:      1000,
		MetricsEnabled:          true,
	}

	logger := utils.NewLogger("error")
	metrics := services.NewMetricsService(config, logger)

	client, err := caclient.NewClient(config, logger, metrics)
	require.NoError(t, err)

	orchestrator := enroll.NewOrchestrator(config, logger, metrics,
		csr.NewManager(logger), client, credstore.NewStore(), nil)

	return NewServer(config, logger, orchestrator, metrics, nil)
}

func authToken(t *testing.T) string {
	t.Helper()
	token, err := utils.GenerateJWT("tester", "admin", testSecret)
	require.NoError(t, err)
	return token
}

func doRequest(server *Server, method, path, token string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	server.ServeHTTP(w, req)
	return w
}

func TestHealthIsPublic(t *testing.T) {
	server := newTestServer(t)

	w := doRequest(server, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	server := newTestServer(t)

	w := doRequest(server, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "certagent_")
}

func TestAPIRequiresAuth(t *testing.T) {
	server := newTestServer(t)

	w := doRequest(server, http.MethodGet, "/api/v1/certificates", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doRequest(server, http.MethodGet, "/api/v1/certificates", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestEnrollAndLifecycle(t *testing.T) {
	server := newTestServer(t)
	token := authToken(t)

	body, err := json.Marshal(map[string]string{
		"common_name":  "api.example.com",
		"organization": "Test Corp",
	})
	require.NoError(t, err)

	w := doRequest(server, http.MethodPost, "/api/v1/certificates", token, body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var info struct {
		Alias   string `json:"alias"`
		Subject string `json:"subject"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &info))
	assert.Contains(t, info.Alias, "api_example_com")
	assert.Equal(t, "CN=api.example.com, O=Test Corp", info.Subject)

	w = doRequest(server, http.MethodGet, "/api/v1/certificates", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), info.Alias)

	w = doRequest(server, http.MethodGet, "/api/v1/certificates/"+info.Alias, token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doRequest(server, http.MethodGet, "/api/v1/certificates/"+info.Alias+"/validity", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"valid":true`)

	w = doRequest(server, http.MethodDelete, "/api/v1/certificates/"+info.Alias, token, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doRequest(server, http.MethodGet, "/api/v1/certificates/"+info.Alias, token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestEnrollValidation(t *testing.T) {
	server := newTestServer(t)
	token := authToken(t)

	w := doRequest(server, http.MethodPost, "/api/v1/certificates", token, []byte(`{}`))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestEventsWithoutJournal(t *testing.T) {
	server := newTestServer(t)
	token := authToken(t)

	w := doRequest(server, http.MethodGet, "/api/v1/events", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"events":[]`)
}

func TestEventsLimitBounds(t *testing.T) {
	server := newTestServer(t)
	token := authToken(t)

	for _, limit := range []string{"0", "-1", "1001", "abc"} {
		w := doRequest(server, http.MethodGet, "/api/v1/events?limit="+limit, token, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, "limit=%s", limit)
	}

	w := doRequest(server, http.MethodGet, "/api/v1/events?limit=1000", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestUnknownCertificate(t *testing.T) {
	server := newTestServer(t)
	token := authToken(t)

	w := doRequest(server, http.MethodGet, "/api/v1/certificates/nope", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doRequest(server, http.MethodDelete, "/api/v1/certificates/nope", token, nil)
	assert.Equal(t, http.StatusNoContent, w.Code, "remove is idempotent")
}
