package models

// MCPRequest is a JSON-RPC 2.0 request envelope for the MCP endpoint.
type MCPRequest struct {
	JSONRPC string                 `json:"jsonrpc"`
	ID      interface{}            `json:"id"`
	Method  string                 `json:"method" binding:"required"`
	Params  map[string]interface{} `json:"params"`
}

// MCPResponse is a JSON-RPC 2.0 response envelope.
type MCPResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *MCPError   `json:"error,omitempty"`
}

// MCPError carries a JSON-RPC error object.
type MCPError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// JSON-RPC 2.0 error codes used by the MCP endpoint.
const (
	MCPErrInvalidRequest = -32600
	MCPErrMethodNotFound = -32601
	MCPErrInvalidParams  = -32602
	MCPErrInternal       = -32603
)

// NewMCPResult builds a success response for the given request id.
func NewMCPResult(id interface{}, result interface{}) MCPResponse {
	return MCPResponse{JSONRPC: "2.0", ID: id, Result: result}
}

// NewMCPError builds an error response for the given request id.
func NewMCPError(id interface{}, code int, message string, data interface{}) MCPResponse {
	return MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error:   &MCPError{Code: code, Message: message, Data: data},
	}
}
