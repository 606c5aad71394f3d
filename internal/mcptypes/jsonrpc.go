package mcptypes

// file: internal/mcptypes/jsonrpc.go

import (
	"bytes"
	"encoding/json"
)

// JSONRPCVersion is the only protocol version accepted.
const JSONRPCVersion = "2.0"

// Request is an incoming JSON-RPC message. A request without an ID is a notification.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// IsNotification reports whether the message expects no response.
func (r *Request) IsNotification() bool {
	return len(r.ID) == 0 || bytes.Equal(bytes.TrimSpace(r.ID), []byte("null"))
}

// ErrorObject is the error member of a JSON-RPC response.
type ErrorObject struct {
	Code    int                    `json:"code"`
	Message string                 `json:"message"`
	Data    map[string]interface{} `json:"data,omitempty"`
}

// Response is an outgoing JSON-RPC response. ID serializes as null when unknown.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *ErrorObject    `json:"error,omitempty"`
}

// NewResultResponse builds a success response.
func NewResultResponse(id json.RawMessage, result json.RawMessage) *Response {
	return &Response{JSONRPC: JSONRPCVersion, ID: id, Result: result}
}

// NewErrorResponse builds an error response.
func NewErrorResponse(id json.RawMessage, code int, message string, data map[string]interface{}) *Response {
	return &Response{
		JSONRPC: JSONRPCVersion,
		ID:      id,
		Error:   &ErrorObject{Code: code, Message: message, Data: data},
	}
}
