package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	terminai "github.com/terminai/terminai-api"
	"github.com/terminai/terminai-api/client"
)

func TestTildePath(t *testing.T) {
	tests := []struct {
		path, home, want string
	}{
		{"/home/alice", "/home/alice", "~"},
		{"/home/alice/src/app", "/home/alice", "~/src/app"},
		{"/home/alicex", "/home/alice", "/home/alicex"},
		{"/tmp", "/home/alice", "/tmp"},
		{"/tmp", "", "/tmp"},
		{"/tmp", "/", "/tmp"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tildePath(tt.path, tt.home), "tildePath(%q, %q)", tt.path, tt.home)
	}
}

func TestGatherContext(t *testing.T) {
	t.Setenv("SHELL", "/bin/zsh")

	ctx := gatherContext()
	assert.Equal(t, "/bin/zsh", ctx[terminai.ContextShell])
	assert.NotEmpty(t, ctx[terminai.ContextOS])
	assert.NotEmpty(t, ctx[terminai.ContextCurrentDir])
	assert.Len(t, ctx, 3)
}

func TestGatherContextWithoutShell(t *testing.T) {
	t.Setenv("SHELL", "")

	_, ok := gatherContext()[terminai.ContextShell]
	assert.False(t, ok)
}

type stubClient struct {
	resp *terminai.CommandResponse
	err  error
	got  *terminai.CommandRequest
}

func (s *stubClient) GenerateCommand(_ context.Context, req *terminai.CommandRequest) (*terminai.CommandResponse, error) {
	s.got = req
	return s.resp, s.err
}

func TestAskPrintsCommand(t *testing.T) {
	c := &stubClient{resp: &terminai.CommandResponse{Command: "ls -la"}}
	var out bytes.Buffer

	err := ask(context.Background(), c, askOptions{
		query:   "list files",
		context: map[string]any{"shell": "bash"},
	}, &out)
	require.NoError(t, err)
	assert.Equal(t, "ls -la\n", out.String())
	assert.Equal(t, "list files", c.got.Query)
	assert.Equal(t, "bash", c.got.Context["shell"])
}

func TestAskReturnsError(t *testing.T) {
	c := &stubClient{err: &client.APIError{StatusCode: 401, Detail: "Invalid API key"}}
	var out bytes.Buffer

	err := ask(context.Background(), c, askOptions{query: "x"}, &out)
	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 401, apiErr.StatusCode)
	assert.Empty(t, out.String())
}

func TestAskTOML(t *testing.T) {
	c := &stubClient{resp: &terminai.CommandResponse{Command: `grep -r "TODO" .`}}
	var out bytes.Buffer

	err := ask(context.Background(), c, askOptions{
		query:   "find todos",
		context: map[string]any{"os": "Linux 6.1.0"},
		toml:    true,
	}, &out)
	require.NoError(t, err)

	var got entry
	_, err = toml.Decode(out.String(), &got)
	require.NoError(t, err)
	assert.Equal(t, "find todos", got.Request.Query)
	assert.Equal(t, "Linux 6.1.0", got.Request.Context["os"])
	require.NotNil(t, got.Response)
	assert.Equal(t, `grep -r "TODO" .`, got.Response.Command)
	assert.Nil(t, got.Error)
}

func TestAskTOMLRecordsError(t *testing.T) {
	c := &stubClient{err: &client.APIError{StatusCode: 500, Detail: "Error generating command: boom"}}
	var out bytes.Buffer

	err := ask(context.Background(), c, askOptions{query: "x", toml: true}, &out)
	require.Error(t, err)

	var got entry
	_, derr := toml.Decode(out.String(), &got)
	require.NoError(t, derr)
	require.NotNil(t, got.Error)
	assert.Equal(t, 500, got.Error.Status)
	assert.Equal(t, "Error generating command: boom", got.Error.Message)
	assert.Nil(t, got.Response)
}

func TestNewEntryPlainError(t *testing.T) {
	e := newEntry(time.Now(), &terminai.CommandRequest{Query: "q"}, nil, errors.New("dial tcp: refused"))
	require.NotNil(t, e.Error)
	assert.Zero(t, e.Error.Status)
	assert.Equal(t, "dial tcp: refused", e.Error.Message)
}

func TestRootCmdEndToEnd(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-api-key") != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(terminai.ErrorResponse{Detail: "Invalid API key"})
			return
		}
		var req terminai.CommandRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(terminai.CommandResponse{Command: "echo " + req.Query})
	}))
	defer srv.Close()

	run := func(args ...string) (string, error) {
		cmd := newRootCmd(nil)
		var out bytes.Buffer
		cmd.SetOut(&out)
		cmd.SetErr(&out)
		cmd.SetArgs(args)
		err := cmd.Execute()
		return out.String(), err
	}

	t.Setenv("TERMINAI_API_KEY", "")
	t.Setenv("TERMINAI_API_URL", "")

	out, err := run("--url", srv.URL, "--api-key", "secret", "hello", "world")
	require.NoError(t, err)
	assert.Equal(t, "echo hello world\n", out)

	_, err = run("--url", srv.URL, "--api-key", "wrong", "hi")
	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Invalid API key", apiErr.Detail)

	_, err = run("--url", srv.URL, "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no API key")

	t.Setenv("TERMINAI_API_KEY", "secret")
	t.Setenv("TERMINAI_API_URL", srv.URL)
	out, err = run("hi")
	require.NoError(t, err)
	assert.Equal(t, "echo hi\n", out)
}
