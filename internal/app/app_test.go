package app

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/corey/bbfs/internal/adapters/socket"
	"github.com/corey/bbfs/internal/config"
	"github.com/corey/bbfs/internal/domain/bbfs"
	"github.com/corey/bbfs/internal/domain/chat"
	"github.com/corey/bbfs/internal/domain/status"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	root := t.TempDir()
	a, err := New(Config{ProjectRoot: root, Settings: config.Default()})
	require.NoError(t, err)
	t.Cleanup(func() { a.Stop() })
	return a
}

func TestNew_RequiresRoot(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)
}

func TestNew_CreatesLayout(t *testing.T) {
	a := newTestApp(t)
	assert.DirExists(t, a.Paths.InboxDir)
	assert.DirExists(t, a.Paths.ReportsDir)
	assert.FileExists(t, a.Paths.DB)
	assert.Equal(t, socket.SocketPath(a.ProjectRoot), a.SocketPath())
}

func TestAnalyze_DefaultsTopN(t *testing.T) {
	a := newTestApp(t)
	a.Settings.TopN = 2

	res := a.Analyze([]string{"1234", "1256"}, 0)
	assert.Equal(t, 2, res.TopN)
	assert.Equal(t, "12", res.BBFS)
	assert.Equal(t, "67", res.Mirror)

	res = a.Analyze([]string{"1234", "1256"}, 4)
	assert.Equal(t, "1234", res.BBFS)
	assert.Equal(t, int64(2), a.Health().Analyses)
}

func TestHandleMessage_CountsAndReplies(t *testing.T) {
	a := newTestApp(t)

	r := a.HandleMessage(chat.Message{ChatID: 1, UserID: 1, Text: "/help"})
	assert.NotEmpty(t, r.Messages)
	assert.Equal(t, int64(1), a.Health().Messages)
}

func TestStartStop_ServesSocket(t *testing.T) {
	a := newTestApp(t)
	require.NoError(t, a.Start())

	client := socket.NewClient(a.SocketPath())
	require.True(t, client.Ping())

	h, err := client.Health()
	require.NoError(t, err)
	assert.Equal(t, "ok", h.Status)

	res, err := client.Analyze([]string{" 123 ", "", "456"}, 3)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Entries)
	require.NotNil(t, res.Analysis)
	assert.Equal(t, bbfs.OutcomeReport, res.Analysis.Outcome)
	assert.Equal(t, "123", res.Analysis.BBFS)

	assert.FileExists(t, a.Paths.PIDFile)
	require.NoError(t, a.Stop())
	assert.NoFileExists(t, a.Paths.PIDFile)
	assert.False(t, client.Ping())

	// second Stop is a no-op
	require.NoError(t, a.Stop())
}

func TestAnalyze_WritesStatus(t *testing.T) {
	a := newTestApp(t)
	a.Analyze([]string{"123", "231", "321"}, 3)

	sd, err := status.ReadJSON(a.Paths.Status)
	require.NoError(t, err)
	assert.Equal(t, "api", sd.Source)
	assert.Equal(t, "123", sd.BBFS)
	assert.Equal(t, int64(1), sd.Analyses)
}

func TestInboxReport_WritesStatus(t *testing.T) {
	a := newTestApp(t)
	hist := filepath.Join(a.Paths.InboxDir, "draws.txt")
	require.NoError(t, os.WriteFile(hist, []byte("98\n89\n"), 0644))

	_, err := a.Inbox.Process(hist)
	require.NoError(t, err)

	sd, err := status.ReadJSON(a.Paths.Status)
	require.NoError(t, err)
	assert.Equal(t, hist, sd.Source)
	assert.Equal(t, "98", sd.BBFS)
	assert.Equal(t, "43", sd.Mirror)
}

func TestWebAnalyze_UsesConfiguredTopN(t *testing.T) {
	a := newTestApp(t)
	a.Settings.TopN = 2

	req := httptest.NewRequest(http.MethodPost, "/api/analyze", strings.NewReader("123456\n"))
	rec := httptest.NewRecorder()
	a.WebServer.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var res socket.AnalyzeResult
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&res))
	assert.Equal(t, 2, res.TopN)
	require.NotNil(t, res.Analysis)
	assert.Equal(t, "12", res.Analysis.BBFS)
}

func TestChatAnalyze_UsesConfiguredTopN(t *testing.T) {
	root := t.TempDir()
	settings := config.Default()
	settings.TopN = 3
	a, err := New(Config{ProjectRoot: root, Settings: settings})
	require.NoError(t, err)
	t.Cleanup(func() { a.Stop() })

	up := a.HandleMessage(chat.Message{ChatID: 5, UserID: 5, Document: &chat.Document{
		Name: "h.txt", MimeType: "text/plain", Content: []byte("123456\n"),
	}})
	require.NotEmpty(t, up.UploadID)

	r := a.HandleMessage(chat.Message{ChatID: 5, UserID: 5, Text: "/analyze", ReplyTo: up.UploadID})
	require.Len(t, r.Messages, 2)
	assert.Equal(t, bbfs.Analyze([]string{"123456"}, 3), r.Messages[1])
}
