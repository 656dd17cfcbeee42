package engine

// Simple JSON protocol for the engine daemon over a Unix domain socket.
// Requests and responses are newline-delimited JSON values; a connection may
// carry any number of request/response pairs.

const (
	OpGet    = "get"
	OpSet    = "set"
	OpDelete = "delete"
	OpClear  = "clear"
)

type Request struct {
	Op        string `json:"op"`
	Namespace string `json:"namespace"`
	Key       string `json:"key,omitempty"`
	Value     string `json:"value,omitempty"`
}

type Response struct {
	OK    bool   `json:"ok"`
	Found bool   `json:"found,omitempty"`
	Value string `json:"value,omitempty"`
	Error string `json:"error,omitempty"`
}
