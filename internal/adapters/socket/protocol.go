// Package socket implements a JSON-over-Unix-socket protocol for the bbfs daemon.
// The protocol uses newline-delimited JSON: each message is one JSON object + \n.
package socket

import (
	"crypto/sha256"
	"fmt"
	"path/filepath"

	"github.com/corey/bbfs/internal/domain/bbfs"
	"github.com/corey/bbfs/internal/domain/chat"
)

// maxMessageBytes bounds one protocol line. Documents travel base64-encoded
// inside message requests, so this sits well above the upload limit.
const maxMessageBytes = 16 * 1024 * 1024

// SocketPath returns the Unix socket path for a given project root.
// Format: /tmp/bbfs-{first12hex}.sock
func SocketPath(projectRoot string) string {
	abs, err := filepath.Abs(projectRoot)
	if err != nil {
		abs = projectRoot
	}
	h := sha256.Sum256([]byte(abs))
	return fmt.Sprintf("/tmp/bbfs-%x.sock", h[:6])
}

// Method names for the protocol.
const (
	MethodHealth   = "health"
	MethodShutdown = "shutdown"
	MethodMessage  = "message"
	MethodAnalyze  = "analyze"
)

// Request is the wire format for client-to-server messages.
type Request struct {
	ID     string      `json:"id"`
	Method string      `json:"method"`
	Params interface{} `json:"params,omitempty"`
}

// Response is the wire format for server-to-client messages.
type Response struct {
	ID     string      `json:"id"`
	Result interface{} `json:"result,omitempty"`
	Error  string      `json:"error,omitempty"`
}

// HealthResult is the result of a health request.
type HealthResult struct {
	Status       string `json:"status"`
	Uptime       string `json:"uptime"`
	Messages     int64  `json:"messages"`
	Analyses     int64  `json:"analyses"`
	InboxReports int64  `json:"inbox_reports"`
	HTTPPort     int    `json:"http_port,omitempty"`
}

// AnalyzeParams is the params for an analyze request. Lines are raw; the
// daemon cleans them with the history loader before analysis.
type AnalyzeParams struct {
	Lines []string `json:"lines"`
	TopN  int      `json:"top_n,omitempty"`
}

// AnalyzeResult is the result of an analyze request.
type AnalyzeResult struct {
	Entries  int            `json:"entries"`
	TopN     int            `json:"top_n"`
	Report   string         `json:"report"`
	Analysis *bbfs.Analysis `json:"analysis"`
}

// MessageParams is the params for a message request.
type MessageParams = chat.Message

// MessageResult is the result of a message request.
type MessageResult = chat.Reply
