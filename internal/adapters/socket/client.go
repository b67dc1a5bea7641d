package socket

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/google/uuid"
)

// Client connects to the chatmon daemon over a Unix socket.
type Client struct {
	sockPath string
}

// NewClient creates a client that will connect to the given socket path.
func NewClient(sockPath string) *Client {
	return &Client{sockPath: sockPath}
}

// Ask sends a question and returns the resolved answer.
func (c *Client) Ask(query string) (*AskResult, error) {
	var result AskResult
	if err := c.invoke(MethodAsk, AskParams{Query: query}, &result, 5*time.Second); err != nil {
		return nil, err
	}
	return &result, nil
}

// Health sends a health check request.
func (c *Client) Health() (*HealthResult, error) {
	var result HealthResult
	if err := c.invoke(MethodHealth, nil, &result, 5*time.Second); err != nil {
		return nil, err
	}
	return &result, nil
}

// Stats fetches lookup counters with up to top ranked questions.
func (c *Client) Stats(top int) (*StatsResult, error) {
	var result StatsResult
	if err := c.invoke(MethodStats, StatsParams{Top: top}, &result, 5*time.Second); err != nil {
		return nil, err
	}
	return &result, nil
}

// Unanswered fetches up to limit logged queries that got the default reply.
func (c *Client) Unanswered(limit int) (*UnansweredResult, error) {
	var result UnansweredResult
	if err := c.invoke(MethodUnanswered, UnansweredParams{Limit: limit}, &result, 5*time.Second); err != nil {
		return nil, err
	}
	return &result, nil
}

// Reload asks the daemon to refetch its dataset, with an extended timeout
// for remote sources.
func (c *Client) Reload() (*ReloadResult, error) {
	var result ReloadResult
	if err := c.invoke(MethodReload, nil, &result, 60*time.Second); err != nil {
		return nil, err
	}
	return &result, nil
}

// Shutdown sends a shutdown request to the daemon.
func (c *Client) Shutdown() error {
	_, err := c.call(Request{
		ID:     uuid.NewString(),
		Method: MethodShutdown,
	}, 5*time.Second)
	return err
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

// invoke performs one call and decodes the result into out.
func (c *Client) invoke(method string, params interface{}, out interface{}, timeout time.Duration) error {
	resp, err := c.call(Request{
		ID:     uuid.NewString(),
		Method: method,
		Params: params,
	}, timeout)
	if err != nil {
		return err
	}

	// Re-marshal the generic result into the typed struct
	resultJSON, err := json.Marshal(resp.Result)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	if err := json.Unmarshal(resultJSON, out); err != nil {
		return fmt.Errorf("unmarshal result: %w", err)
	}
	return nil
}

func (c *Client) call(req Request, timeout time.Duration) (*Response, error) {
	conn, err := net.DialTimeout("unix", c.sockPath, 2*time.Second)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	defer conn.Close()

	// Set deadline for the whole request/response
	conn.SetDeadline(time.Now().Add(timeout))

	// Send request
	data, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	data = append(data, '\n')
	if _, err := conn.Write(data); err != nil {
		return nil, fmt.Errorf("write: %w", err)
	}

	// Read response
	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
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
	if resp.ID != req.ID {
		return nil, fmt.Errorf("response id %q does not match request %q", resp.ID, req.ID)
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("server error: %s", resp.Error)
	}
	return &resp, nil
}
