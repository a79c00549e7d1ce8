package socket

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/corey/bbfs/internal/domain/chat"
)

// Client connects to the bbfs daemon over a Unix socket.
type Client struct {
	sockPath string
}

// NewClient creates a client that will connect to the given socket path.
func NewClient(sockPath string) *Client {
	return &Client{sockPath: sockPath}
}

// Health sends a health check request.
func (c *Client) Health() (*HealthResult, error) {
	resp, err := c.call(Request{ID: "1", Method: MethodHealth})
	if err != nil {
		return nil, err
	}
	var result HealthResult
	if err := decodeResult(resp, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Shutdown sends a shutdown request to the daemon.
func (c *Client) Shutdown() error {
	_, err := c.call(Request{ID: "1", Method: MethodShutdown})
	return err
}

// Send delivers a chat message and returns the bot's reply.
func (c *Client) Send(m chat.Message) (*chat.Reply, error) {
	resp, err := c.callWithTimeout(Request{
		ID:     "1",
		Method: MethodMessage,
		Params: MessageParams(m),
	}, 30*time.Second)
	if err != nil {
		return nil, err
	}
	var result MessageResult
	if err := decodeResult(resp, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Analyze asks the daemon to analyze raw history lines.
func (c *Client) Analyze(lines []string, topN int) (*AnalyzeResult, error) {
	resp, err := c.callWithTimeout(Request{
		ID:     "1",
		Method: MethodAnalyze,
		Params: AnalyzeParams{Lines: lines, TopN: topN},
	}, 30*time.Second)
	if err != nil {
		return nil, err
	}
	var result AnalyzeResult
	if err := decodeResult(resp, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Ping checks if the daemon is reachable.
func (c *Client) Ping() bool {
	conn, err := net.DialTimeout("unix", c.sockPath, 500*time.Millisecond)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}

// decodeResult re-marshals the generic result into a typed struct.
func decodeResult(resp *Response, out interface{}) error {
	resultJSON, err := json.Marshal(resp.Result)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	if err := json.Unmarshal(resultJSON, out); err != nil {
		return fmt.Errorf("unmarshal result: %w", err)
	}
	return nil
}

func (c *Client) call(req Request) (*Response, error) {
	return c.callWithTimeout(req, 5*time.Second)
}

func (c *Client) callWithTimeout(req Request, timeout time.Duration) (*Response, error) {
	conn, err := net.DialTimeout("unix", c.sockPath, 2*time.Second)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	defer conn.Close()

	// Set deadline for the whole request/response
	conn.SetDeadline(time.Now().Add(timeout))

	data, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	data = append(data, '\n')
	if _, err := conn.Write(data); err != nil {
		return nil, fmt.Errorf("write: %w", err)
	}

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 64*1024), maxMessageBytes)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("read: %w", err)
		}
		return nil, fmt.Errorf("empty response")
	}

	var resp Response
	if err := json.Unmarshal(scanner.Bytes(), &resp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("server error: %s", resp.Error)
	}
	return &resp, nil
}
