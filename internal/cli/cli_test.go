// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jeranaias/rigchat/internal/cloud"
	"github.com/jeranaias/rigchat/internal/config"
	"github.com/jeranaias/rigchat/internal/conversation"
)

func TestMain(m *testing.M) {
	lipgloss.SetColorProfile(termenv.Ascii)
	os.Exit(m.Run())
}

// isolate points rigchat at a temp home and clears host settings.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("RIGCHAT_HOME", dir)
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("NO_COLOR", "")
	t.Setenv("FORCE_COLOR", "")
	for _, name := range []string{"API_KEY", "MODEL", "BASE_URL"} {
		t.Setenv("RIGCHAT_CLOUD_"+name, "")
	}
	return dir
}

// execute runs the command tree with args and returns what it printed.
func execute(t *testing.T, stdin string, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetArgs(args)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	err = cmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

// completionServer answers every request with reply and records the
// decoded request bodies.
type completionServer struct {
	*httptest.Server
	mu       sync.Mutex
	requests []map[string]any
}

func newCompletionServer(t *testing.T, status int, reply string) *completionServer {
	t.Helper()
	s := &completionServer{}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		s.mu.Lock()
		s.requests = append(s.requests, body)
		s.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status != http.StatusOK {
			w.Write([]byte(`{"error": {"message": "rejected"}}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id": "chatcmpl-1",
			"choices": []map[string]any{{
				"index":         0,
				"message":       map[string]string{"role": "assistant", "content": reply},
				"finish_reason": "stop",
			}},
		})
	}))
	t.Cleanup(s.Close)

	t.Setenv("RIGCHAT_CLOUD_API_KEY", "sk-test")
	t.Setenv("RIGCHAT_CLOUD_BASE_URL", s.URL)
	t.Setenv("RIGCHAT_CLOUD_MAX_RETRIES", "1")
	return s
}

func (s *completionServer) lastMessages(t *testing.T) []map[string]any {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	require.NotEmpty(t, s.requests)
	raw := s.requests[len(s.requests)-1]["messages"].([]any)
	msgs := make([]map[string]any, len(raw))
	for i, m := range raw {
		msgs[i] = m.(map[string]any)
	}
	return msgs
}

// =============================================================================
// ASK
// =============================================================================

func TestAsk_PlainOutput(t *testing.T) {
	isolate(t)
	server := newCompletionServer(t, http.StatusOK, "Use **go test**:\n```sh\ngo test ./...\n```")

	stdout, _, err := execute(t, "", "ask", "how", "do", "I", "test?")
	require.NoError(t, err)
	assert.Equal(t, "Use go test:\n[sh]\n    go test ./...\n", stdout)

	msgs := server.lastMessages(t)
	require.Len(t, msgs, 2)
	assert.Equal(t, "system", msgs[0]["role"])
	assert.Equal(t, conversation.DefaultSystemPrompt, msgs[0]["content"])
	assert.Equal(t, "how do I test?", msgs[1]["content"])
}

func TestAsk_Raw(t *testing.T) {
	isolate(t)
	newCompletionServer(t, http.StatusOK, "**bold** `code`")

	stdout, _, err := execute(t, "", "ask", "--raw", "hi")
	require.NoError(t, err)
	assert.Equal(t, "**bold** `code`\n", stdout)
}

func TestAsk_PromptFromStdin(t *testing.T) {
	isolate(t)
	server := newCompletionServer(t, http.StatusOK, "ok")

	_, _, err := execute(t, "  piped question\n", "ask")
	require.NoError(t, err)
	assert.Equal(t, "piped question", server.lastMessages(t)[1]["content"])
}

func TestAsk_Flags(t *testing.T) {
	isolate(t)
	server := newCompletionServer(t, http.StatusOK, "ok")

	_, _, err := execute(t, "", "--model", "gpt-4o", "ask", "--system", "be terse", "hi")
	require.NoError(t, err)

	server.mu.Lock()
	model := server.requests[0]["model"]
	server.mu.Unlock()
	assert.Equal(t, "gpt-4o", model)
	assert.Equal(t, "be terse", server.lastMessages(t)[0]["content"])
}

func TestAsk_NoPrompt(t *testing.T) {
	isolate(t)
	_, _, err := execute(t, "   ", "ask")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no prompt given")
}

func TestAsk_NotConfigured(t *testing.T) {
	isolate(t)

	stdout, stderr, err := execute(t, "", "ask", "hi")
	assert.ErrorIs(t, err, errNoReply)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, conversation.NoticeUnavailable)
}

func TestAsk_UpstreamFailure(t *testing.T) {
	isolate(t)
	newCompletionServer(t, http.StatusBadRequest, "")

	stdout, stderr, err := execute(t, "", "ask", "hi")
	assert.ErrorIs(t, err, errNoReply)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, conversation.NoticeFailure)
}

func TestAsk_BadConfig(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte("[cloud]\ntemperature = 5.0\n"), 0600))

	_, _, err := execute(t, "", "--config", path, "ask", "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cloud.temperature")
}

// =============================================================================
// REPL
// =============================================================================

type stubCompleter struct {
	reply string
}

func (s *stubCompleter) Complete(_ context.Context, _ []cloud.ChatMessage) (string, error) {
	return s.reply, nil
}

func newTestSession(t *testing.T, configured bool) (*replSession, *bytes.Buffer) {
	t.Helper()
	a := &app{
		cfg:      config.Default(),
		logger:   zap.NewNop(),
		closeLog: func() error { return nil },
	}
	ctrl := conversation.New(&stubCompleter{reply: "**hi** there"}, conversation.Options{
		Configured: configured,
		Model:      "test-model",
	})
	var out bytes.Buffer
	return newReplSession(a, ctrl, &out), &out
}

func TestRepl_Message(t *testing.T) {
	s, out := newTestSession(t, true)

	assert.False(t, s.handleLine(context.Background(), "  hello "))
	assert.Contains(t, out.String(), "Assistant:\nhi there\n")
	assert.Equal(t, 2, s.controller.Len())

	out.Reset()
	assert.False(t, s.handleLine(context.Background(), "   "))
	assert.Empty(t, out.String())
	assert.Equal(t, 2, s.controller.Len())
}

func TestRepl_NotConfigured(t *testing.T) {
	s, out := newTestSession(t, false)
	s.handleLine(context.Background(), "hello")
	assert.Contains(t, out.String(), "no API key is configured")
}

func TestRepl_Commands(t *testing.T) {
	s, out := newTestSession(t, true)
	ctx := context.Background()

	s.handleLine(ctx, "//etc/hosts")
	assert.Equal(t, "/etc/hosts", s.controller.Messages()[0].Content)

	s.handleLine(ctx, "/bogus")
	assert.Contains(t, out.String(), "[!] Unknown command /bogus (try /help)")

	s.handleLine(ctx, "/nwe")
	assert.Contains(t, out.String(), "Unknown command /nwe (did you mean /new?)")
	assert.Equal(t, 2, s.controller.Len(), "unknown commands are not sent")

	s.handleLine(ctx, "/help")
	assert.Contains(t, out.String(), "/export <path>")

	s.handleLine(ctx, "/NEW")
	assert.Equal(t, 0, s.controller.Len())
	assert.Contains(t, out.String(), "[i] Started a new conversation.")

	for _, quit := range []string{"/quit", "/exit", "/q"} {
		assert.True(t, s.handleLine(ctx, quit), quit)
	}
}

func TestRepl_Export(t *testing.T) {
	s, out := newTestSession(t, true)
	ctx := context.Background()

	s.handleLine(ctx, "/export")
	assert.Contains(t, out.String(), "Usage: /export <path>")

	s.handleLine(ctx, "/export x.md")
	assert.Contains(t, out.String(), "Nothing to export yet.")

	s.handleLine(ctx, "hello")
	base := filepath.Join(t.TempDir(), "chat")
	s.handleLine(ctx, "/export "+base)
	assert.Contains(t, out.String(), "[OK] Exported to "+base+".md")

	s.handleLine(ctx, "/export "+base+".pdf")
	assert.Contains(t, out.String(), "[X] Export failed:")

	data, err := os.ReadFile(base + ".md")
	require.NoError(t, err)
	assert.Contains(t, string(data), "**hi** there")
}

// =============================================================================
// CONFIG AND VERSION
// =============================================================================

func TestConfig_PathAndInit(t *testing.T) {
	dir := isolate(t)
	want := filepath.Join(dir, "config.toml")

	stdout, _, err := execute(t, "", "config", "path")
	require.NoError(t, err)
	assert.Equal(t, want+"\n", stdout)

	stdout, _, err = execute(t, "", "config", "init")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Wrote "+want)

	_, _, err = execute(t, "", "config", "init")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	_, _, err = execute(t, "", "config", "init", "--force")
	require.NoError(t, err)

	cfg, err := config.Load(want)
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestConfig_CustomPath(t *testing.T) {
	dir := isolate(t)
	custom := filepath.Join(dir, "dev", "rigchat.toml")

	stdout, _, err := execute(t, "", "--config", custom, "config", "path")
	require.NoError(t, err)
	assert.Equal(t, custom+"\n", stdout)

	_, _, err = execute(t, "", "--config", custom, "config", "init")
	require.NoError(t, err)
	assert.FileExists(t, custom)
}

func TestConfig_ShowMasksKey(t *testing.T) {
	isolate(t)
	t.Setenv("RIGCHAT_CLOUD_API_KEY", "sk-secret-abcdef123456")

	stdout, _, err := execute(t, "", "--model", "gpt-4o", "config", "show")
	require.NoError(t, err)
	assert.NotContains(t, stdout, "sk-secret-abcdef123456")
	assert.Contains(t, stdout, "# api key: ")
	assert.Contains(t, stdout, "[REDACTED]")
	assert.Contains(t, stdout, `model = "gpt-4o"`)
}

func TestVersion(t *testing.T) {
	stdout, _, err := execute(t, "", "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stdout, "rigchat "+Version+"\n"))
	assert.Contains(t, stdout, "Commit:")
}

func TestRootHelp(t *testing.T) {
	stdout, _, err := execute(t, "", "--help")
	require.NoError(t, err)
	for _, sub := range []string{"ask", "repl", "config", "version", "--log-stderr"} {
		assert.Contains(t, stdout, sub)
	}
}

// =============================================================================
// TERMINAL
// =============================================================================

func TestTerminalDetection(t *testing.T) {
	var buf bytes.Buffer
	assert.False(t, isTerminal(&buf))
	assert.Equal(t, DefaultTerminalWidth, terminalWidth(&buf))

	t.Setenv("NO_COLOR", "")
	t.Setenv("FORCE_COLOR", "1")
	assert.True(t, colorsEnabled(&buf))

	t.Setenv("NO_COLOR", "1")
	assert.False(t, colorsEnabled(&buf))
	assert.Equal(t, "x", formatReply("**x**", &buf, false, ""))
}
