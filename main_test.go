package main

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeDict(t *testing.T, name string, words ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(words, "\n")+"\n"), 0o644))
	return path
}

func TestConstants(t *testing.T) {
	if Version == "" {
		t.Error("Version should not be empty")
	}
	if AppName != "Ask Ouija" {
		t.Errorf("Expected app name Ask Ouija, got %s", AppName)
	}
}

func TestInitializeServices(t *testing.T) {
	path := writeDict(t, "english.txt", "cat", "cats", "a", "tag", "x1")

	svcs, err := initializeServices(path, "", time.Minute)
	require.NoError(t, err)

	assert.Equal(t, "english", svcs.catalog.DefaultName())
	assert.Equal(t, time.Minute, svcs.boards.IdleTimeout())

	dicts, err := svcs.ouija.ListDictionaries(context.Background())
	require.NoError(t, err)
	require.Len(t, dicts, 1)
	assert.Equal(t, 4, dicts[0].Words)
	assert.True(t, dicts[0].Default)
}

func TestInitializeServices_Errors(t *testing.T) {
	tests := []struct {
		name     string
		dictPath string
		dictDir  string
		wantErr  string
	}{
		{"no dictionary", "", "", "dictionary file is required"},
		{"missing file", "/non/existent/words.txt", "", "failed to load dictionary"},
		{"missing dict dir", writeDict(t, "w.txt", "cat"), "/non/existent/path", "failed to create dictionary catalog"},
		{"no admissible words", writeDict(t, "junk.txt", "x", "1234", ""), "", "failed to load dictionary"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := initializeServices(tt.dictPath, tt.dictDir, time.Minute)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestSetupLogging(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)

	require.NoError(t, setupLogging("debug", "json"))
	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())

	require.NoError(t, setupLogging("warn", "console"))
	assert.Equal(t, zerolog.WarnLevel, zerolog.GlobalLevel())

	assert.Error(t, setupLogging("loud", "json"))
	assert.Error(t, setupLogging("info", "xml"))
}

func TestLoopbackURL(t *testing.T) {
	tests := []struct {
		host string
		port int
		want string
	}{
		{"localhost", 8080, "http://localhost:8080"},
		{"0.0.0.0", 9090, "http://127.0.0.1:9090"},
		{"", 80, "http://127.0.0.1:80"},
		{"::", 8080, "http://127.0.0.1:8080"},
	}

	for _, tt := range tests {
		if got := loopbackURL(tt.host, tt.port); got != tt.want {
			t.Errorf("loopbackURL(%q, %d) = %q, want %q", tt.host, tt.port, got, tt.want)
		}
	}
}

func TestJanitorInterval(t *testing.T) {
	assert.Equal(t, 5*time.Minute, janitorInterval(10*time.Minute))
	assert.Equal(t, time.Second, janitorInterval(100*time.Millisecond))
}

func TestNewApp(t *testing.T) {
	app := newApp()

	assert.Equal(t, "askouija", app.Name)
	assert.Equal(t, Version, app.Version)

	var flags []string
	for _, f := range app.Flags {
		flags = append(flags, f.Names()[0])
	}
	for _, want := range []string{
		"dict", "dict-dir", "host", "port", "idle-timeout",
		"log-level", "log-format", "ngrok", "ngrok-auth", "ngrok-domain",
	} {
		assert.Contains(t, flags, want)
	}

	var commands []string
	for _, c := range app.Commands {
		commands = append(commands, c.Name)
	}
	assert.Equal(t, []string{"serve", "mcp"}, commands)
}

func TestNewApp_ServeRequiresDictionary(t *testing.T) {
	t.Setenv("ASKOUIJA_DICT", "")

	err := newApp().Run(context.Background(), []string{"askouija", "serve"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dictionary file is required")
}

func TestNewHandler(t *testing.T) {
	path := writeDict(t, "english.txt", "cat", "cats", "a", "tag")
	svcs, err := initializeServices(path, "", time.Minute)
	require.NoError(t, err)

	srv := httptest.NewServer(newHandler(svcs.ouija, nil, "http://127.0.0.1:1"))
	defer srv.Close()

	t.Run("health", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/api/health")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("mcp rejects GET", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/mcp")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	})

	t.Run("mcp lists tools", func(t *testing.T) {
		body := strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`)
		resp, err := http.Post(srv.URL+"/mcp", "application/json", body)
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		data, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		for _, tool := range []string{"ask_ouija", "tell_ouija", "goodbye", "legal_letters"} {
			assert.Contains(t, string(data), tool)
		}
	})
}
