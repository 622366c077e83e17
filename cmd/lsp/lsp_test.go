package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func frame(method string, id interface{}, params interface{}) []byte {
	msg := map[string]interface{}{"jsonrpc": "2.0", "method": method, "params": params}
	if id != nil {
		msg["id"] = id
	}
	data, _ := json.Marshal(msg)
	return []byte(fmt.Sprintf("Content-Length: %d\r\n\r\n%s", len(data), data))
}

func readMessages(t *testing.T, r *bytes.Reader) []map[string]interface{} {
	t.Helper()
	var out []map[string]interface{}
	br := bufio.NewReader(r)
	for {
		line, err := br.ReadString('\n')
		if err != nil {
			break
		}
		line = strings.TrimRight(line, "\r\n")
		if !strings.HasPrefix(line, "Content-Length: ") {
			continue
		}
		n, err := strconv.Atoi(strings.TrimPrefix(line, "Content-Length: "))
		require.NoError(t, err)
		for {
			sep, err := br.ReadString('\n')
			require.NoError(t, err)
			if strings.TrimRight(sep, "\r\n") == "" {
				break
			}
		}
		body := make([]byte, n)
		_, err = io.ReadFull(br, body)
		require.NoError(t, err)
		var m map[string]interface{}
		require.NoError(t, json.Unmarshal(body, &m))
		out = append(out, m)
	}
	return out
}

func TestServer_InitializeRespondsWithCapabilities(t *testing.T) {
	var in bytes.Buffer
	in.Write(frame("initialize", float64(1), map[string]interface{}{}))

	var out bytes.Buffer
	NewServer(&out).Start(&in)

	msgs := readMessages(t, bytes.NewReader(out.Bytes()))
	require.Len(t, msgs, 1)
	assert.Equal(t, float64(1), msgs[0]["id"])
	result := msgs[0]["result"].(map[string]interface{})
	caps := result["capabilities"].(map[string]interface{})
	assert.Equal(t, float64(1), caps["textDocumentSync"])
}

func TestServer_DidOpenPublishesDiagnosticsForBadSource(t *testing.T) {
	var in bytes.Buffer
	in.Write(frame("textDocument/didOpen", nil, map[string]interface{}{
		"textDocument": map[string]interface{}{
			"uri":  "file:///broken.glyph",
			"text": "chant (",
		},
	}))

	var out bytes.Buffer
	NewServer(&out).Start(&in)

	msgs := readMessages(t, bytes.NewReader(out.Bytes()))
	require.Len(t, msgs, 1)
	assert.Equal(t, "textDocument/publishDiagnostics", msgs[0]["method"])
	params := msgs[0]["params"].(map[string]interface{})
	diags := params["diagnostics"].([]interface{})
	assert.NotEmpty(t, diags)
}

func TestServer_DidOpenPublishesNoDiagnosticsForGoodSource(t *testing.T) {
	var in bytes.Buffer
	in.Write(frame("textDocument/didOpen", nil, map[string]interface{}{
		"textDocument": map[string]interface{}{
			"uri":  "file:///ok.glyph",
			"text": "yield 1 + 1",
		},
	}))

	var out bytes.Buffer
	NewServer(&out).Start(&in)

	msgs := readMessages(t, bytes.NewReader(out.Bytes()))
	require.Len(t, msgs, 1)
	params := msgs[0]["params"].(map[string]interface{})
	diags := params["diagnostics"].([]interface{})
	assert.Empty(t, diags)
}
