package socket

import (
	"bufio"
	"net"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/corey/bbfs/internal/domain/bbfs"
	"github.com/corey/bbfs/internal/domain/chat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

// fakeApp records calls and answers with canned data.
type fakeApp struct {
	mu       sync.Mutex
	messages []chat.Message
	analyses atomic.Int64
	panicky  bool
}

func (f *fakeApp) HandleMessage(m chat.Message) chat.Reply {
	if f.panicky {
		panic("boom")
	}
	f.mu.Lock()
	f.messages = append(f.messages, m)
	f.mu.Unlock()
	return chat.Reply{Messages: []string{"echo: " + m.Text}, UploadID: m.ReplyTo}
}

func (f *fakeApp) Analyze(history []string, topN int) *bbfs.Analysis {
	f.analyses.Add(1)
	return bbfs.Run(history, topN)
}

func (f *fakeApp) Health() HealthResult {
	return HealthResult{Status: "ok", Analyses: f.analyses.Load()}
}

// testSocketPath returns a unique socket path for a test.
func testSocketPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "test.sock")
}

func startServer(t *testing.T, app AppQueries) (*Server, *Client) {
	t.Helper()
	sockPath := testSocketPath(t)
	srv := NewServer(sockPath, app, nil)
	require.NoError(t, srv.Start())
	t.Cleanup(func() { srv.Stop() })
	return srv, NewClient(sockPath)
}

func TestServer_Health(t *testing.T) {
	_, client := startServer(t, &fakeApp{})

	h, err := client.Health()
	require.NoError(t, err)
	assert.Equal(t, "ok", h.Status)
	assert.NotEmpty(t, h.Uptime)
}

func TestServer_HealthWithoutApp(t *testing.T) {
	_, client := startServer(t, nil)

	h, err := client.Health()
	require.NoError(t, err)
	assert.Equal(t, "ok", h.Status)
}

func TestServer_AnalyzeRoundtrip(t *testing.T) {
	app := &fakeApp{}
	_, client := startServer(t, app)

	result, err := client.Analyze([]string{" 123", "", "231 ", "321"}, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Entries)
	assert.Equal(t, 3, result.TopN)
	assert.Equal(t, bbfs.Analyze([]string{"123", "231", "321"}, 3), result.Report)
	require.NotNil(t, result.Analysis)
	assert.Equal(t, "123", result.Analysis.BBFS)
	assert.Equal(t, "678", result.Analysis.Mirror)
	assert.Equal(t, []bbfs.RankedDigit{{Digit: 1, Count: 1}}, result.Analysis.Positions[0][:1])
	assert.Equal(t, int64(1), app.analyses.Load())
}

func TestServer_AnalyzeEmpty(t *testing.T) {
	_, client := startServer(t, nil)

	result, err := client.Analyze(nil, 0)
	require.NoError(t, err)
	assert.Equal(t, bbfs.EmptyHistoryMessage, result.Report)
	assert.Equal(t, bbfs.DefaultTopN, result.TopN)
}

func TestServer_MessageRoundtrip(t *testing.T) {
	app := &fakeApp{}
	_, client := startServer(t, app)

	reply, err := client.Send(chat.Message{
		ChatID:   9,
		Text:     "/analyze 5",
		ReplyTo:  "up-1",
		Document: &chat.Document{Name: "h.txt", MimeType: "text/plain", Content: []byte("12\n")},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"echo: /analyze 5"}, reply.Messages)
	assert.Equal(t, "up-1", reply.UploadID)

	require.Len(t, app.messages, 1)
	assert.Equal(t, []byte("12\n"), app.messages[0].Document.Content)
	assert.Equal(t, int64(9), app.messages[0].ChatID)
}

func TestServer_MessageWithoutApp(t *testing.T) {
	_, client := startServer(t, nil)
	_, err := client.Send(chat.Message{Text: "/start"})
	assert.Error(t, err)
}

func TestServer_HandlerPanicBecomesError(t *testing.T) {
	_, client := startServer(t, &fakeApp{panicky: true})

	_, err := client.Send(chat.Message{Text: "/start"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "internal error")

	// The daemon is still serving.
	_, err = client.Health()
	assert.NoError(t, err)
}

func TestServer_UnknownMethodAndBadJSON(t *testing.T) {
	srv, client := startServer(t, nil)

	_, err := client.call(Request{ID: "1", Method: "bogus"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown method")

	conn, err := net.Dial("unix", srv.Addr())
	require.NoError(t, err)
	defer conn.Close()
	_, err = conn.Write([]byte("{not json\n"))
	require.NoError(t, err)
	scanner := bufio.NewScanner(conn)
	require.True(t, scanner.Scan())
	assert.Contains(t, scanner.Text(), "invalid request JSON")
}

func TestServer_RemoteShutdown(t *testing.T) {
	srv, client := startServer(t, nil)

	require.NoError(t, client.Shutdown())
	<-srv.ShutdownCh()
}

func TestServer_StaleSocketAndAlreadyRunning(t *testing.T) {
	srv, _ := startServer(t, nil)

	second := NewServer(srv.Addr(), nil, nil)
	assert.Error(t, second.Start(), "second server on a live socket must fail")

	require.NoError(t, srv.Stop())
	assert.False(t, NewClient(srv.Addr()).Ping())
}

func TestServer_StopReleasesGoroutines(t *testing.T) {
	defer goleak.VerifyNone(t)

	sockPath := testSocketPath(t)
	srv := NewServer(sockPath, &fakeApp{}, nil)
	require.NoError(t, srv.Start())

	// Leave an idle connection open; Stop must still return.
	conn, err := net.Dial("unix", sockPath)
	require.NoError(t, err)
	defer conn.Close()

	client := NewClient(sockPath)
	_, err = client.Health()
	require.NoError(t, err)

	require.NoError(t, srv.Stop())
	require.NoError(t, srv.Stop())
}

func TestSocketPath_Stable(t *testing.T) {
	a := SocketPath("/srv/draws")
	assert.Equal(t, a, SocketPath("/srv/draws"))
	assert.NotEqual(t, a, SocketPath("/srv/other"))
	assert.Regexp(t, `^/tmp/bbfs-[0-9a-f]{12}\.sock$`, a)
}
