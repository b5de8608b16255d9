package ipc

import (
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"time"
)

// Client provides RPC access to the daemon.
type Client struct {
	conn   net.Conn
	client *rpc.Client
}

// Dial connects to the IPC server at the given socket path.
func Dial(path string) (*Client, error) {
	conn, err := net.DialTimeout("unix", path, 2*time.Second)
	if err != nil {
		return nil, err
	}
	rpcClient := rpc.NewClientWithCodec(jsonrpc.NewClientCodec(conn))
	return &Client{conn: conn, client: rpcClient}, nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	if c.client != nil {
		_ = c.client.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// Ping checks that the daemon answers RPC requests.
func (c *Client) Ping() (*PingResponse, error) {
	var resp PingResponse
	if err := c.client.Call("Conveyor.Ping", PingRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Status retrieves the daemon status snapshot.
func (c *Client) Status() (*StatusResponse, error) {
	var resp StatusResponse
	if err := c.client.Call("Conveyor.Status", StatusRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Submit enqueues one work item.
func (c *Client) Submit(kind, payload string) (*SubmitResponse, error) {
	var resp SubmitResponse
	req := SubmitRequest{Kind: kind, Payload: payload}
	if err := c.client.Call("Conveyor.Submit", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// History retrieves recent work outcomes.
func (c *Client) History(limit int) (*HistoryResponse, error) {
	var resp HistoryResponse
	req := HistoryRequest{Limit: limit}
	if err := c.client.Call("Conveyor.History", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Health retrieves the latest probe results.
func (c *Client) Health() (*HealthResponse, error) {
	var resp HealthResponse
	if err := c.client.Call("Conveyor.Health", HealthRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Stop requests daemon shutdown.
func (c *Client) Stop() (*StopResponse, error) {
	var resp StopResponse
	if err := c.client.Call("Conveyor.Stop", StopRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
