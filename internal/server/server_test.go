package server

import (
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/danmuck/packetctl/internal/protocol/packet"
	"github.com/danmuck/packetctl/internal/testutil/testlog"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestServer(t *testing.T, limits packet.Limits) *Server {
	t.Helper()
	testlog.Start(t)
	s := Appear("packetd-test", ":0", nil, limits)
	s.RegisterRoutes()
	return s
}

func serve(s *Server, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	s.HTTPRouter().ServeHTTP(rr, req)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body), "body=%s", rr.Body.String())
	return body
}

func TestHealthReadyAndMetrics(t *testing.T) {
	s := newTestServer(t, packet.DefaultLimits())

	rr := serve(s, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "packetd-test", decodeBody(t, rr)["service"])

	rr = serve(s, http.MethodGet, "/ready", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.EqualValues(t, 256, decodeBody(t, rr)["max_depth"])

	serve(s, http.MethodGet, "/packets/D2FE28", "")
	rr = serve(s, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "packetctl_decoder_decodes_total")
}

func TestPostDecodeEvaluatesTree(t *testing.T) {
	s := newTestServer(t, packet.DefaultLimits())

	rr := serve(s, http.MethodPost, "/packets/decode", `{"hex":" 9C0141080250320F1802104A08\n"}`)
	require.Equal(t, http.StatusOK, rr.Code, "body=%s", rr.Body.String())
	body := decodeBody(t, rr)
	assert.EqualValues(t, 1, body["value"])
	assert.EqualValues(t, 7, body["packets"])
	assert.EqualValues(t, 3, body["depth"])
	assert.NotEmpty(t, body["id"])
	assert.Equal(t, rr.Header().Get("X-Request-ID"), body["id"])

	tree, ok := body["tree"].(map[string]any)
	require.True(t, ok, "tree missing: %#v", body)
	assert.Equal(t, "equal", tree["type"])
	log.Debug().Msgf("server/http: POST /packets/decode status=%d value=%v", rr.Code, body["value"])
}

func TestGetDecodeLiteral(t *testing.T) {
	s := newTestServer(t, packet.DefaultLimits())

	rr := serve(s, http.MethodGet, "/packets/D2FE28", "")
	require.Equal(t, http.StatusOK, rr.Code)
	body := decodeBody(t, rr)
	assert.EqualValues(t, 2021, body["value"])
	assert.EqualValues(t, 6, body["version_sum"])
}

func TestDecodeErrorsMapToStatus(t *testing.T) {
	s := newTestServer(t, packet.DefaultLimits())

	rr := serve(s, http.MethodPost, "/packets/decode", `{"hex":`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = serve(s, http.MethodGet, "/packets/D2FE", "")
	require.Equal(t, http.StatusBadRequest, rr.Code)
	body := decodeBody(t, rr)
	assert.Contains(t, body["error"], "underrun")
	assert.Nil(t, body["tree"])

	rr = serve(s, http.MethodGet, "/packets/D2FZ", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	hex, err := packet.EncodeHex(packet.NewOperator(3, packet.TypeGreater, packet.NewLiteral(2, 1)))
	require.NoError(t, err)
	rr = serve(s, http.MethodGet, "/packets/"+hex, "")
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	body = decodeBody(t, rr)
	assert.Contains(t, body["error"], "arity")
	assert.EqualValues(t, 5, body["version_sum"])
	assert.NotNil(t, body["tree"])
	assert.Nil(t, body["value"])
}

func TestDecodeInputTooLarge(t *testing.T) {
	s := newTestServer(t, packet.Limits{MaxInputBits: 16})

	rr := serve(s, http.MethodGet, "/packets/D2FE28", "")
	assert.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)
}

func TestDecodeWithoutTransport(t *testing.T) {
	s := newTestServer(t, packet.DefaultLimits())

	res, err := s.Decode("620080001611562C8802118E34")
	require.NoError(t, err)
	assert.EqualValues(t, 12, res.VersionSum)
	require.NotNil(t, res.Value)
	assert.EqualValues(t, 46, *res.Value)
	assert.Empty(t, res.ID)
}

func TestPostDecodeBodyIsBounded(t *testing.T) {
	s := newTestServer(t, packet.Limits{MaxInputBits: 64})

	body := `{"hex":"` + strings.Repeat("0", 4096) + `"}`
	rr := serve(s, http.MethodPost, "/packets/decode", body)
	require.Equal(t, http.StatusRequestEntityTooLarge, rr.Code, "body=%s", rr.Body.String())
	assert.Contains(t, decodeBody(t, rr)["error"], "request body exceeds")

	rr = serve(s, http.MethodPost, "/packets/decode", `{"hex":"D2FE28"}`)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestFullWidthValueKeepsExactText(t *testing.T) {
	s := newTestServer(t, packet.DefaultLimits())

	hex, err := packet.EncodeHex(packet.NewLiteral(5, math.MaxUint64))
	require.NoError(t, err)
	rr := serve(s, http.MethodGet, "/packets/"+hex, "")
	require.Equal(t, http.StatusOK, rr.Code)
	body := decodeBody(t, rr)
	assert.Equal(t, "18446744073709551615", body["value_str"])

	tree, ok := body["tree"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "18446744073709551615", tree["value_str"])
}

func TestProductWithZeroFactorOverWire(t *testing.T) {
	s := newTestServer(t, packet.DefaultLimits())

	wide := packet.NewLiteral(0, 1<<32)
	hex, err := packet.EncodeHex(packet.NewOperator(0, packet.TypeProduct, wide, wide, packet.NewLiteral(0, 0)))
	require.NoError(t, err)
	res, err := s.Decode(hex)
	require.NoError(t, err)
	require.NotNil(t, res.Value)
	assert.EqualValues(t, 0, *res.Value)
}
