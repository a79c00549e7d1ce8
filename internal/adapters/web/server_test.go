package web

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/corey/bbfs/internal/adapters/socket"
	"github.com/corey/bbfs/internal/domain/bbfs"
	"github.com/corey/bbfs/internal/domain/chat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockQueries implements socket.AppQueries for testing.
type mockQueries struct {
	analyses int64
	lastTopN int
	last     chat.Message
}

func (m *mockQueries) HandleMessage(msg chat.Message) chat.Reply {
	m.last = msg
	return chat.Reply{Messages: []string{"got " + msg.Text}}
}

func (m *mockQueries) Analyze(history []string, topN int) *bbfs.Analysis {
	m.analyses++
	m.lastTopN = topN
	return bbfs.Run(history, topN)
}

func (m *mockQueries) Health() socket.HealthResult {
	return socket.HealthResult{Status: "ok", Analyses: m.analyses}
}

func setupTestServer(t *testing.T, q socket.AppQueries) *httptest.Server {
	t.Helper()
	srv := NewServer(q, "", nil)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func TestHealthEndpoint(t *testing.T) {
	q := &mockQueries{analyses: 4}
	ts := setupTestServer(t, q)

	resp, err := http.Get(ts.URL + "/api/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var result socket.HealthResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, "ok", result.Status)
	assert.Equal(t, int64(4), result.Analyses)
}

func TestAnalyzeEndpoint_TopOmitted(t *testing.T) {
	q := &mockQueries{lastTopN: -1}
	ts := setupTestServer(t, q)

	resp, err := http.Post(ts.URL+"/api/analyze", "text/plain", strings.NewReader("12\n"))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, 0, q.lastTopN)

	resp, err = http.Post(ts.URL+"/api/analyze?top=", "text/plain", strings.NewReader("12\n"))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, bbfs.DefaultTopN, q.lastTopN)
}

func TestAnalyzeEndpoint_LongLine(t *testing.T) {
	ts := setupTestServer(t, &mockQueries{})

	body := "1234\n" + strings.Repeat("7", 2<<20) + "\n5678\n"
	resp, err := http.Post(ts.URL+"/api/analyze?top=1", "text/plain", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	var result socket.AnalyzeResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, 3, result.Entries)
	assert.Equal(t, "7", result.Analysis.BBFS)
}

func TestAnalyzeEndpoint(t *testing.T) {
	q := &mockQueries{}
	ts := setupTestServer(t, q)

	resp, err := http.Post(ts.URL+"/api/analyze?top=3", "text/plain",
		strings.NewReader("123\n\n 231\n321\n"))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result socket.AnalyzeResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, 3, result.Entries)
	assert.Equal(t, 3, result.TopN)
	assert.Equal(t, bbfs.Analyze([]string{"123", "231", "321"}, 3), result.Report)
	require.NotNil(t, result.Analysis)
	assert.Equal(t, bbfs.OutcomeReport, result.Analysis.Outcome)
	assert.Equal(t, int64(1), q.analyses)
}

func TestAnalyzeEndpoint_InvalidTopAndEmptyBody(t *testing.T) {
	ts := setupTestServer(t, nil)

	resp, err := http.Post(ts.URL+"/api/analyze?top=lots", "text/plain", strings.NewReader(""))
	require.NoError(t, err)
	defer resp.Body.Close()

	var result socket.AnalyzeResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, bbfs.DefaultTopN, result.TopN)
	assert.Equal(t, bbfs.EmptyHistoryMessage, result.Report)
}

func TestMessagesEndpoint(t *testing.T) {
	q := &mockQueries{}
	ts := setupTestServer(t, q)

	body := `{"chat_id": 5, "text": "/help"}`
	resp, err := http.Post(ts.URL+"/api/messages", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var reply chat.Reply
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&reply))
	assert.Equal(t, []string{"got /help"}, reply.Messages)
	assert.Equal(t, int64(5), q.last.ChatID)
}

func TestMessagesEndpoint_Errors(t *testing.T) {
	ts := setupTestServer(t, &mockQueries{})
	resp, err := http.Post(ts.URL+"/api/messages", "application/json", strings.NewReader("{nope"))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	noChat := setupTestServer(t, nil)
	resp, err = http.Post(noChat.URL+"/api/messages", "application/json", strings.NewReader("{}"))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestIndexPage(t *testing.T) {
	ts := setupTestServer(t, nil)

	resp, err := http.Get(ts.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
}

func TestStartStop_PortFile(t *testing.T) {
	portFile := filepath.Join(t.TempDir(), "http.port")
	srv := NewServer(&mockQueries{}, portFile, nil)
	require.NoError(t, srv.Start(0))

	data, err := os.ReadFile(portFile)
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("%d", srv.Port()), string(data))

	resp, err := http.Get(fmt.Sprintf("http://127.0.0.1:%d/api/health", srv.Port()))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	srv.Stop()
	srv.Stop()
	_, err = os.Stat(portFile)
	assert.True(t, os.IsNotExist(err))
}

func TestDefaultPort(t *testing.T) {
	p := DefaultPort("/srv/draws")
	assert.Equal(t, p, DefaultPort("/srv/draws"))
	assert.GreaterOrEqual(t, p, 19000)
	assert.Less(t, p, 20000)
}
