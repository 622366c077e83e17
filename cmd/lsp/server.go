package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/langweave/glyph/pkg/embed"
)

// DocumentState is the last known content and diagnostics for one open
// editor document.
type DocumentState struct {
	Content string
	Diags   []Diagnostic
	mu      sync.RWMutex
}

// Server is the stdio JSON-RPC loop. Grounded on the teacher's
// cmd/lsp/server.go Content-Length framing and request/notification
// dispatch, trimmed to the three document-sync notifications and the
// initialize/shutdown request pair this shell actually serves.
type Server struct {
	documents map[string]*DocumentState
	mu        sync.RWMutex
	writer    io.Writer
}

func NewServer(w io.Writer) *Server {
	return &Server{documents: make(map[string]*DocumentState), writer: w}
}

func (s *Server) Start(r io.Reader) {
	reader := bufio.NewReader(r)
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			if err != io.EOF {
				log.Printf("error reading header: %v", err)
			}
			return
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			continue
		}
		if !strings.HasPrefix(line, "Content-Length: ") {
			continue
		}
		length, err := strconv.Atoi(strings.TrimPrefix(line, "Content-Length: "))
		if err != nil {
			log.Printf("bad Content-Length: %v", err)
			continue
		}
		for {
			sep, err := reader.ReadString('\n')
			if err != nil {
				return
			}
			if strings.TrimRight(sep, "\r\n") == "" {
				break
			}
		}
		content := make([]byte, length)
		if _, err := io.ReadFull(reader, content); err != nil {
			log.Printf("error reading body: %v", err)
			return
		}
		if err := s.handleMessage(content); err != nil {
			log.Printf("error handling message: %v", err)
		}
	}
}

func (s *Server) handleMessage(content []byte) error {
	var base struct {
		ID     interface{} `json:"id,omitempty"`
		Method string      `json:"method"`
	}
	if err := json.Unmarshal(content, &base); err != nil {
		return fmt.Errorf("unmarshal message: %w", err)
	}
	if base.ID != nil {
		return s.handleRequest(base.ID, base.Method, content)
	}
	return s.handleNotification(base.Method, content)
}

func (s *Server) handleRequest(id interface{}, method string, content []byte) error {
	switch method {
	case "initialize":
		var req struct {
			Params InitializeParams `json:"params"`
		}
		if err := json.Unmarshal(content, &req); err != nil {
			return err
		}
		return s.sendResponse(ResponseMessage{
			Jsonrpc: "2.0",
			ID:      id,
			Result:  InitializeResult{Capabilities: ServerCapabilities{TextDocumentSync: 1}},
		})
	case "shutdown":
		return s.sendResponse(ResponseMessage{Jsonrpc: "2.0", ID: id, Result: nil})
	default:
		return s.sendResponse(ResponseMessage{
			Jsonrpc: "2.0",
			ID:      id,
			Error:   &RPCError{Code: -32601, Message: fmt.Sprintf("method not found: %s", method)},
		})
	}
}

func (s *Server) handleNotification(method string, content []byte) error {
	switch method {
	case "initialized":
		return nil
	case "textDocument/didOpen":
		var req struct {
			Params DidOpenTextDocumentParams `json:"params"`
		}
		if err := json.Unmarshal(content, &req); err != nil {
			return err
		}
		return s.analyzeAndPublish(req.Params.TextDocument.URI, req.Params.TextDocument.Text)
	case "textDocument/didChange":
		var req struct {
			Params DidChangeTextDocumentParams `json:"params"`
		}
		if err := json.Unmarshal(content, &req); err != nil {
			return err
		}
		if len(req.Params.ContentChanges) == 0 {
			return nil
		}
		return s.analyzeAndPublish(req.Params.TextDocument.URI, req.Params.ContentChanges[0].Text)
	case "textDocument/didClose":
		var req struct {
			Params DidCloseTextDocumentParams `json:"params"`
		}
		if err := json.Unmarshal(content, &req); err != nil {
			return err
		}
		s.mu.Lock()
		delete(s.documents, req.Params.TextDocument.URI)
		s.mu.Unlock()
		return nil
	case "exit":
		os.Exit(0)
		return nil
	default:
		return nil
	}
}

func (s *Server) analyzeAndPublish(uri, content string) error {
	diags := diagnose(content, uriToPath(uri))

	doc := &DocumentState{Content: content, Diags: diags}
	s.mu.Lock()
	s.documents[uri] = doc
	s.mu.Unlock()

	return s.sendNotification(NotificationMessage{
		Jsonrpc: "2.0",
		Method:  "textDocument/publishDiagnostics",
		Params:  PublishDiagnosticsParams{URI: uri, Diagnostics: diags},
	})
}

// diagnose runs content through the library's lex/parse/analyze stages and
// converts whatever diagnostics.Diagnostic / analyzer.SemanticError values
// come back into LSP Diagnostic wire structs. It never compiles or
// executes — an editor should never run the program it is showing.
func diagnose(content, file string) []Diagnostic {
	result := make([]Diagnostic, 0)

	prog, parseErrs := embed.Parse(content, file)
	for _, d := range parseErrs {
		result = append(result, diagnosticFrom(d))
	}
	if len(parseErrs) > 0 {
		return result
	}

	_, semErrs := embed.Analyze(prog, file)
	for _, se := range semErrs {
		result = append(result, diagnosticFrom(se.Diagnostic(file)))
	}
	return result
}

func diagnosticFrom(d *embed.Diagnostic) Diagnostic {
	var line, startCol, endCol int
	for _, lbl := range d.Labels {
		if lbl.IsPrimary {
			line = lbl.Span.Start.Line
			startCol = lbl.Span.Start.Column
			endCol = lbl.Span.End.Column
			break
		}
	}
	return Diagnostic{
		Range: Range{
			Start: Position{Line: line - 1, Character: startCol - 1},
			End:   Position{Line: line - 1, Character: endCol - 1},
		},
		Severity: SeverityError,
		Code:     d.Code,
		Message:  d.Message,
		Source:   "glyph",
	}
}

func uriToPath(uri string) string {
	return strings.TrimPrefix(uri, "file://")
}

func (s *Server) sendResponse(r ResponseMessage) error     { return s.sendMessage(r) }
func (s *Server) sendNotification(n NotificationMessage) error { return s.sendMessage(n) }

func (s *Server) sendMessage(message interface{}) error {
	data, err := json.Marshal(message)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(s.writer, "Content-Length: %d\r\n\r\n%s", len(data), data)
	return err
}
