package protocol

import (
	"encoding/json"
	"fmt"
)

/**
MCP lifecycle as seen by this server:
	1) client sends 'initialize' with its protocolVersion and capabilities
	   eg {"method":"initialize","params":{"protocolVersion":"2024-11-05","capabilities":{}},"jsonrpc":"2.0","id":0}
	   we answer with our serverInfo and that we offer tools and prompts
	2) client sends the 'notifications/initialized' notification (no id, no reply)
	3) client asks 'tools/list' and later 'tools/call' with {"name":"referee_stats","arguments":{...}}
	   tool output goes back as a list of text content blocks
	4) 'prompts/list' and 'prompts/get' expose canned report prompts
	5) 'resources/list' and 'resources/read' serve the seasons, referees, summary and charts
	   for the tracked team by uri, eg refstats://charts/heatmap.svg
*/

// MethodType defines the possible JSON-RPC method types
type MethodType string

// Method types for JSON-RPC requests
const (
	MethodInitialize              MethodType = "initialize"
	MethodInitialized             MethodType = "initialized"
	MethodNotificationInitialized MethodType = "notifications/initialized"
	MethodPing                    MethodType = "ping"
	MethodToolsList               MethodType = "tools/list"
	MethodToolsCall               MethodType = "tools/call"
	MethodResourcesList           MethodType = "resources/list"
	MethodResourcesRead           MethodType = "resources/read"
	MethodPromptsList             MethodType = "prompts/list"
	MethodPromptsGet              MethodType = "prompts/get"
	MethodShutdown                MethodType = "shutdown"
	MethodExit                    MethodType = "exit"
	MethodCancelRequest           MethodType = "$/cancelRequest"
)

// ProtocolVersion is the MCP revision this server speaks
const ProtocolVersion = "2024-11-05"

// Version is the JSON-RPC protocol version
const JsonRpcVersion = "2.0"

// Request represents a JSON-RPC 2.0 request object
type JsonRpcRequest struct {
	// A String specifying the version of the JSON-RPC protocol. MUST be exactly "2.0".
	JsonRPC string `json:"jsonrpc"`

	// A String containing the name of the method to be invoked.
	Method string `json:"method"`

	// A Structured value that holds the parameter values to be used during the invocation of the method.
	// This member MAY be omitted.
	Params json.RawMessage `json:"params,omitempty"`

	// An identifier established by the Client that MUST contain a String, Number, or NULL value if included.
	// If it is not included it is assumed to be a notification.
	ID interface{} `json:"id,omitempty"`
}

// Response represents a JSON-RPC 2.0 response object
type JsonRpcResponse struct {
	// A String specifying the version of the JSON-RPC protocol. MUST be exactly "2.0".
	JsonRPC string `json:"jsonrpc"`

	// This member is REQUIRED on success.
	// This member MUST NOT exist if there was an error invoking the method.
	Result json.RawMessage `json:"result,omitempty"`

	// This member is REQUIRED on error.
	// This member MUST NOT exist if there was no error triggered during invocation.
	Error *JsonRpcError `json:"error,omitempty"`

	// This member is REQUIRED.
	// It MUST be the same as the value of the id member in the Request Object.
	// If there was an error in detecting the id in the Request object (e.g. Parse error/Invalid Request), it MUST be Null.
	ID any `json:"id"`
}

// Error represents a JSON-RPC 2.0 error object
type JsonRpcError struct {
	// A Number that indicates the error type that occurred.
	Code int `json:"code"`

	// A String providing a short description of the error.
	Message string `json:"message"`

	// A Primitive or Structured value that contains additional information about the error.
	// This may be omitted.
	Data any `json:"data,omitempty"`
}

type ToolProperty struct {
	Type        string        `json:"type"`
	Description string        `json:"description,omitempty"`
	Items       *ToolProperty `json:"items,omitempty"`
	Default     any           `json:"default,omitempty"`
}

type InputSchema struct {
	Type                 string                  `json:"type"`
	Properties           map[string]ToolProperty `json:"properties,omitempty"`
	Required             []string                `json:"required"`
	AdditionalProperties bool                    `json:"additionalProperties"`
}

// Tool represents a tool that can be invoked by an MCP client
type Tool struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	InputSchema InputSchema `json:"inputSchema"`
}

// ToolsResponse represents the response to a tools discovery request
type ToolsResponse struct {
	Tools []Tool `json:"tools"`
}

// Content is one block of a tool result or prompt message
type Content struct {
	Type     string `json:"type"`
	Text     string `json:"text,omitempty"`
	MimeType string `json:"mimeType,omitempty"`
}

// ToolResult is the body of a tools/call response
type ToolResult struct {
	Content []Content `json:"content"`
	IsError bool      `json:"isError,omitempty"`
}

// NewTextContent wraps text in a Content block
func NewTextContent(text string) Content {
	return Content{Type: "text", Text: text}
}

// PromptArgument describes one argument a prompt template accepts
type PromptArgument struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Required    bool   `json:"required,omitempty"`
}

// Prompt is a reusable prompt template advertised by prompts/list
type Prompt struct {
	Name        string           `json:"name"`
	Description string           `json:"description,omitempty"`
	Arguments   []PromptArgument `json:"arguments,omitempty"`
}

// PromptMessage is one rendered message returned by prompts/get
type PromptMessage struct {
	Role    string  `json:"role"`
	Content Content `json:"content"`
}

// PromptResult is the body of a prompts/get response
type PromptResult struct {
	Description string          `json:"description,omitempty"`
	Messages    []PromptMessage `json:"messages"`
}

// Resource describes a readable document offered by the server
type Resource struct {
	URI         string `json:"uri"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	MimeType    string `json:"mimeType,omitempty"`
}

// ResourceContents is one document returned by resources/read
type ResourceContents struct {
	URI      string `json:"uri"`
	MimeType string `json:"mimeType,omitempty"`
	Text     string `json:"text"`
}

// ResourceResult is the body of a resources/read response
type ResourceResult struct {
	Contents []ResourceContents `json:"contents"`
}

// Standard error codes defined by the JSON-RPC 2.0 specification
const (
	// Parse error: Invalid JSON was received by the server.
	ErrParse = -32700

	// Invalid Request: The JSON sent is not a valid Request object.
	ErrInvalidRequest = -32600

	// Method not found: The method does not exist / is not available.
	ErrMethodNotFound = -32601

	// Invalid params: Invalid method parameter(s).
	ErrInvalidParams = -32602

	// Internal error: Internal JSON-RPC error.
	ErrInternal = -32603

	// Server error: Reserved for implementation-defined server-errors.
	// -32000 to -32099
	ErrServer = -32000

	// Tool execution failed
	ErrToolExecutionFailed = -32000
)

// Error returns a string representation of the error
func (e *JsonRpcError) Error() string {
	return fmt.Sprintf("jsonrpc error: code=%d message=%s", e.Code, e.Message)
}

// NewResponse creates a new JSON-RPC 2.0 success response
func NewJsonRpcResponse(result interface{}, id interface{}) (*JsonRpcResponse, error) {
	var resultJSON json.RawMessage
	var err error

	if result != nil {
		resultJSON, err = json.Marshal(result)
		if err != nil {
			return nil, err
		}
	}

	return &JsonRpcResponse{
		JsonRPC: JsonRpcVersion,
		Result:  resultJSON,
		ID:      id,
	}, nil
}

// NewErrorResponse creates a new JSON-RPC 2.0 error response
func NewJsonRpcErrorResponse(code int, message string, data interface{}, id interface{}) *JsonRpcResponse {
	return &JsonRpcResponse{
		JsonRPC: JsonRpcVersion,
		Error: &JsonRpcError{
			Code:    code,
			Message: message,
			Data:    data,
		},
		ID: id,
	}
}

// ParseRequest parses a JSON-RPC 2.0 request from raw JSON
func ParseJsonRpcRequest(data []byte) (*JsonRpcRequest, error) {
	var req JsonRpcRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, err
	}

	// Validate the request
	if req.JsonRPC != JsonRpcVersion {
		return nil, fmt.Errorf("invalid JSON-RPC version: %s", req.JsonRPC)
	}

	return &req, nil
}

// ParseResponse parses a JSON-RPC 2.0 response from raw JSON
func ParseJsonRpcResponse(data []byte) (*JsonRpcResponse, error) {
	var resp JsonRpcResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, err
	}

	// Validate the response
	if resp.JsonRPC != JsonRpcVersion {
		return nil, fmt.Errorf("invalid JSON-RPC version: %s", resp.JsonRPC)
	}

	return &resp, nil
}

// BatchRequest represents a batch of JSON-RPC 2.0 requests
type BatchRequest []*JsonRpcRequest

// BatchResponse represents a batch of JSON-RPC 2.0 responses
type BatchResponse []*JsonRpcResponse

// String returns a JSON string representation of the request
func (r *JsonRpcRequest) String() string {
	bytes, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Sprintf("Error marshaling request: %v", err)
	}
	return string(bytes)
}

// String returns a JSON string representation of the response
func (r *JsonRpcResponse) String() string {
	bytes, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Sprintf("Error marshaling response: %v", err)
	}
	return string(bytes)
}

// String returns a JSON string representation of the error
func (e *JsonRpcError) String() string {
	bytes, err := json.MarshalIndent(e, "", "  ")
	if err != nil {
		return fmt.Sprintf("Error marshaling error: %v", err)
	}
	return string(bytes)
}
