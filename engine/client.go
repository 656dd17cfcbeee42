package engine

import (
	"encoding/json"
	"net"
	"time"

	"github.com/pkg/errors"
)

const dialTimeout = 500 * time.Millisecond

// Client implements Engine for one namespace of a daemon listening on a Unix socket.
type Client struct {
	socketPath string
	namespace  string
}

var (
	_ Engine     = (*Client)(nil)
	_ Namespaced = (*Client)(nil)
)

// RemoteError carries an error message reported by the daemon.
type RemoteError struct {
	Op  string
	Msg string
}

func (e *RemoteError) Error() string { return "engine: remote " + e.Op + ": " + e.Msg }

func NewClient(socketPath, namespace string) *Client {
	return &Client{socketPath: socketPath, namespace: namespace}
}

func (c *Client) Namespace() string { return c.namespace }

// Ping dials the socket once and closes the connection.
func (c *Client) Ping() error {
	conn, err := net.DialTimeout("unix", c.socketPath, dialTimeout)
	if err != nil {
		return errors.Wrapf(err, "engine: dial %s", c.socketPath)
	}
	return conn.Close()
}

func (c *Client) do(req Request) (Response, error) {
	var resp Response
	conn, err := net.DialTimeout("unix", c.socketPath, dialTimeout)
	if err != nil {
		return resp, errors.Wrapf(err, "engine: dial %s", c.socketPath)
	}
	defer conn.Close()
	req.Namespace = c.namespace
	if err := json.NewEncoder(conn).Encode(&req); err != nil {
		return resp, errors.Wrapf(err, "engine: send %s", req.Op)
	}
	if err := json.NewDecoder(conn).Decode(&resp); err != nil {
		return resp, errors.Wrapf(err, "engine: receive %s", req.Op)
	}
	if !resp.OK {
		return resp, &RemoteError{Op: req.Op, Msg: resp.Error}
	}
	return resp, nil
}

func (c *Client) Set(key, value string) error {
	_, err := c.do(Request{Op: OpSet, Key: key, Value: value})
	return err
}

func (c *Client) GetString(key string) (string, bool, error) {
	resp, err := c.do(Request{Op: OpGet, Key: key})
	if err != nil {
		return "", false, err
	}
	return resp.Value, resp.Found, nil
}

func (c *Client) Delete(key string) error {
	_, err := c.do(Request{Op: OpDelete, Key: key})
	return err
}

func (c *Client) ClearAll() error {
	_, err := c.do(Request{Op: OpClear})
	return err
}
