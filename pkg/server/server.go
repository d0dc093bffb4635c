package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/richard-senior/refstats/internal/logger"
	"github.com/richard-senior/refstats/pkg/prompts"
	"github.com/richard-senior/refstats/pkg/protocol"
	"github.com/richard-senior/refstats/pkg/resources"
	"github.com/richard-senior/refstats/pkg/tools"
	"github.com/richard-senior/refstats/pkg/transport"
)

// Name and Version are reported to clients in the initialize response
const (
	Name    = "refstats"
	Version = "1.0.0"
)

// toolPrefix is prepended to tool names by some clients
const toolPrefix = "mcp___"

// Server represents an MCP server
type Server struct {
	transport transport.Transport
	registry  *prompts.PromptRegistry
	resources *resources.Provider

	mu       sync.RWMutex
	handlers map[string]HandlerFunc
	tools    []protocol.Tool
	toolFns  map[string]HandlerFunc
}

// HandlerFunc is a function that handles an MCP request
type HandlerFunc func(params any) (any, error)

// errExit stops ProcessRequests after an exit notification
var errExit = errors.New("exit requested")

// NewServer creates a server reading from t with the built-in MCP methods registered
func NewServer(t transport.Transport, registry *prompts.PromptRegistry) *Server {
	if registry == nil {
		registry = prompts.NewPromptRegistry(nil)
	}
	s := &Server{
		transport: t,
		registry:  registry,
		handlers:  make(map[string]HandlerFunc),
		toolFns:   make(map[string]HandlerFunc),
	}
	s.handlers[string(protocol.MethodInitialize)] = s.handleInitialize
	s.handlers[string(protocol.MethodPing)] = s.handlePing
	s.handlers[string(protocol.MethodToolsList)] = s.handleToolsList
	s.handlers[string(protocol.MethodToolsCall)] = s.handleToolsCall
	s.handlers[string(protocol.MethodPromptsList)] = s.handlePromptsList
	s.handlers[string(protocol.MethodPromptsGet)] = s.handlePromptsGet
	s.handlers[string(protocol.MethodShutdown)] = s.handleShutdown
	return s
}

// RegisterTool registers a tool with the server
func (s *Server) RegisterTool(tool protocol.Tool, handler HandlerFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tools = append(s.tools, tool)
	s.toolFns[tool.Name] = handler
	logger.Info("Registered tool:", tool.Name)
}

// RegisterRefereeTools registers referee_stats and referee_charts
func (s *Server) RegisterRefereeTools(rt *tools.RefereeTools) {
	s.RegisterTool(tools.RefereeStatsTool(), rt.HandleRefereeStats)
	s.RegisterTool(tools.RefereeChartsTool(), rt.HandleRefereeCharts)
}

// RegisterResources serves resources/list and resources/read from p
func (s *Server) RegisterResources(p *resources.Provider) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resources = p
	s.handlers[string(protocol.MethodResourcesList)] = s.handleResourcesList
	s.handlers[string(protocol.MethodResourcesRead)] = s.handleResourcesRead
	logger.Info("Registered resources")
}

// GetTools returns the list of registered tools
func (s *Server) GetTools() []protocol.Tool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ret := make([]protocol.Tool, len(s.tools))
	copy(ret, s.tools)
	return ret
}

// Start processes requests until the client disconnects or a signal arrives
func (s *Server) Start() error {
	logger.Info("Starting MCP server")
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	errChan := make(chan error, 1)
	go func() {
		errChan <- s.ProcessRequests()
	}()

	select {
	case err := <-errChan:
		return err
	case sig := <-sigChan:
		logger.Info("Received signal:", sig)
		return nil
	}
}

// ProcessRequests reads and answers requests until EOF or exit.
// A clean disconnect returns nil.
func (s *Server) ProcessRequests() error {
	for {
		req, err := s.transport.ReadRequest()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			if errors.Is(err, transport.ErrMalformedRequest) {
				// unparseable input gets an error with a null id, then carry on
				if werr := s.transport.WriteResponse(protocol.NewJsonRpcErrorResponse(protocol.ErrParse, err.Error(), nil, nil)); werr != nil {
					return werr
				}
				continue
			}
			return err
		}

		resp, err := s.handleRequest(req)
		if errors.Is(err, errExit) {
			logger.Info("Client requested exit")
			return nil
		}
		if resp == nil {
			continue
		}
		if err := s.transport.WriteResponse(resp); err != nil {
			return err
		}
	}
}

// isNotification reports whether req expects no response
func isNotification(req *protocol.JsonRpcRequest) bool {
	return req.ID == nil || strings.HasPrefix(req.Method, "notifications/") ||
		req.Method == string(protocol.MethodInitialized) ||
		req.Method == string(protocol.MethodCancelRequest)
}

// handleRequest processes a request and returns a response, nil for notifications
func (s *Server) handleRequest(req *protocol.JsonRpcRequest) (*protocol.JsonRpcResponse, error) {
	logger.Info(">> ", req.Method)
	logger.Debug("Full request:", req.String())

	if req.Method == string(protocol.MethodExit) {
		return nil, errExit
	}
	if isNotification(req) {
		logger.Info("Received notification:", req.Method)
		return nil, nil
	}

	s.mu.RLock()
	handler := s.handlers[req.Method]
	s.mu.RUnlock()
	if handler == nil {
		return protocol.NewJsonRpcErrorResponse(protocol.ErrMethodNotFound,
			fmt.Sprintf("Method not found: %s", req.Method), nil, req.ID), nil
	}

	result, err := handler(req.Params)
	if err != nil {
		return protocol.NewJsonRpcErrorResponse(errorCode(err), err.Error(), nil, req.ID), nil
	}

	resp, err := protocol.NewJsonRpcResponse(result, req.ID)
	if err != nil {
		return protocol.NewJsonRpcErrorResponse(protocol.ErrInternal,
			"Failed to marshal result: "+err.Error(), nil, req.ID), nil
	}
	logger.Debug("Full response:", resp.String())
	return resp, nil
}

// invalidParams marks errors caused by the request rather than the data
type invalidParams struct{ error }

func (e invalidParams) Unwrap() error { return e.error }

func errorCode(err error) int {
	var ip invalidParams
	if errors.As(err, &ip) {
		return protocol.ErrInvalidParams
	}
	return protocol.ErrToolExecutionFailed
}

func decodeParams(params any, into any) error {
	raw, ok := params.(json.RawMessage)
	if !ok {
		b, err := json.Marshal(params)
		if err != nil {
			return invalidParams{fmt.Errorf("failed to marshal params: %w", err)}
		}
		raw = b
	}
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	if err := json.Unmarshal(raw, into); err != nil {
		return invalidParams{fmt.Errorf("invalid parameters: %w", err)}
	}
	return nil
}

// handleInitialize handles the initialize method
func (s *Server) handleInitialize(params any) (any, error) {
	var p struct {
		ProtocolVersion string `json:"protocolVersion"`
		ClientInfo      struct {
			Name    string `json:"name"`
			Version string `json:"version"`
		} `json:"clientInfo"`
	}
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	version := protocol.ProtocolVersion
	if p.ProtocolVersion != "" {
		version = p.ProtocolVersion
	}
	logger.Info("Initialize from", p.ClientInfo.Name, p.ClientInfo.Version, "protocol", version)

	capabilities := map[string]any{
		"tools":   map[string]any{"listChanged": false},
		"prompts": map[string]any{"listChanged": false},
	}
	s.mu.RLock()
	if s.resources != nil {
		capabilities["resources"] = map[string]any{"listChanged": false, "subscribe": false}
	}
	s.mu.RUnlock()
	return map[string]any{
		"protocolVersion": version,
		"capabilities":    capabilities,
		"serverInfo": map[string]string{
			"name":    Name,
			"version": Version,
		},
	}, nil
}

func (s *Server) handlePing(params any) (any, error) {
	return struct{}{}, nil
}

func (s *Server) handleShutdown(params any) (any, error) {
	logger.Info("Shutdown requested")
	return struct{}{}, nil
}

// handleToolsList handles the tools/list method
func (s *Server) handleToolsList(params any) (any, error) {
	return protocol.ToolsResponse{Tools: s.GetTools()}, nil
}

// handleToolsCall runs a tool and wraps its JSON output in a text content block
func (s *Server) handleToolsCall(params any) (any, error) {
	var p struct {
		Name      string         `json:"name"`
		Arguments map[string]any `json:"arguments"`
	}
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	logger.Info("Tool call requested for:", p.Name)

	s.mu.RLock()
	handler := s.toolFns[p.Name]
	if handler == nil {
		handler = s.toolFns[strings.TrimPrefix(p.Name, toolPrefix)]
	}
	s.mu.RUnlock()
	if handler == nil {
		return nil, invalidParams{fmt.Errorf("tool not found: %s", p.Name)}
	}

	result, err := handler(p.Arguments)
	if err != nil {
		return nil, fmt.Errorf("tool %s failed: %w", p.Name, err)
	}
	text, err := json.MarshalIndent(result, "", " ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal tool result: %w", err)
	}
	return protocol.ToolResult{Content: []protocol.Content{protocol.NewTextContent(string(text))}}, nil
}

// handlePromptsList returns every registered prompt
func (s *Server) handlePromptsList(params any) (any, error) {
	return struct {
		Prompts []protocol.Prompt `json:"prompts"`
	}{Prompts: s.registry.ListPrompts()}, nil
}

// handlePromptsGet renders one prompt with the client's arguments
func (s *Server) handlePromptsGet(params any) (any, error) {
	var p struct {
		Name      string            `json:"name"`
		Arguments map[string]string `json:"arguments,omitempty"`
	}
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	logger.Info("Prompt get requested for:", p.Name)
	res, err := s.registry.GetPrompt(p.Name, p.Arguments)
	if err != nil {
		return nil, invalidParams{err}
	}
	return res, nil
}

func (s *Server) handleResourcesList(params any) (any, error) {
	return struct {
		Resources []protocol.Resource `json:"resources"`
	}{Resources: s.resources.GetResources()}, nil
}

// handleResourcesRead returns the contents of one resource by uri
func (s *Server) handleResourcesRead(params any) (any, error) {
	var p struct {
		URI string `json:"uri"`
	}
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	res, err := s.resources.Read(p.URI)
	if errors.Is(err, resources.ErrResourceNotFound) {
		return nil, invalidParams{err}
	}
	if err != nil {
		return nil, err
	}
	return res, nil
}
