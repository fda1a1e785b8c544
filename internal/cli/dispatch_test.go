package cli_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"todo/internal/backend/googletasks"
	"todo/internal/cli"
	"todo/internal/commands"
	"todo/internal/config"
	"todo/internal/exitcode"
	"todo/internal/service"
	"todo/internal/testutil"
)

// testFactory creates a service factory that returns the given FakeService.
func testFactory(svc *testutil.FakeService) cli.ServiceFactory {
	return func(ctx context.Context, cfg *config.Config) (service.Service, error) {
		return svc, nil
	}
}

func run(t *testing.T, d *cli.Dispatcher, args ...string) (stdout, stderr string, code int) {
	t.Helper()
	var outBuf, errBuf bytes.Buffer
	code = d.Run(context.Background(), args, &outBuf, &errBuf)
	return outBuf.String(), errBuf.String(), code
}

func TestDispatcher_UnknownCommand(t *testing.T) {
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, testFactory(testutil.NewFakeService()))

	_, stderr, code := run(t, dispatcher, "unknowncmd")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	expected := "error: unknown command: unknowncmd\n"
	if stderr != expected {
		t.Errorf("expected %q, got %q", expected, stderr)
	}
}

func TestDispatcher_FlagBeforeCommand(t *testing.T) {
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, testFactory(testutil.NewFakeService()))

	_, stderr, code := run(t, dispatcher, "--quiet")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	expected := "error: unknown command: --quiet\n"
	if stderr != expected {
		t.Errorf("expected %q, got %q", expected, stderr)
	}
}

func TestDispatcher_HelpCommand(t *testing.T) {
	svc := testutil.NewFakeService()
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, testFactory(svc))

	stdout, stderr, code := run(t, dispatcher, "help", "--config", t.TempDir())

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	if !strings.Contains(stdout, "Usage:") {
		t.Error("expected help output to contain 'Usage:'")
	}
	if svc.Closed() {
		t.Error("help must not open the service")
	}
}

func TestDispatcher_VersionCommand(t *testing.T) {
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, testFactory(testutil.NewFakeService()))

	stdout, stderr, code := run(t, dispatcher, "version", "--config", t.TempDir())

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	if stdout != "todo 0.1.0\n" {
		t.Errorf("expected 'todo 0.1.0\\n', got %q", stdout)
	}
}

func TestDispatcher_UnknownFlag(t *testing.T) {
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, testFactory(testutil.NewFakeService()))

	_, stderr, code := run(t, dispatcher, "help", "--unknown")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	expected := "error: unknown flag: -unknown\n"
	if stderr != expected {
		t.Errorf("expected %q, got %q", expected, stderr)
	}
}

func TestDispatcher_FlagNeedsArgument(t *testing.T) {
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, testFactory(testutil.NewFakeService()))

	_, stderr, code := run(t, dispatcher, "list", "--search")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	expected := "error: flag needs an argument: -search\n"
	if stderr != expected {
		t.Errorf("expected %q, got %q", expected, stderr)
	}
}

func TestDispatcher_NoArgsListsAndClosesService(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTask("Buy milk", nil, false)
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, testFactory(svc))

	var outBuf, errBuf bytes.Buffer
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	code := dispatcher.Run(context.Background(), nil, &outBuf, &errBuf)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d (%s)", exitcode.Success, code, errBuf.String())
	}
	if outBuf.String() != "   1  [ ] Buy milk\n" {
		t.Errorf("unexpected stdout %q", outBuf.String())
	}
	if !svc.Closed() {
		t.Error("expected service to be closed after the command")
	}
}

func TestDispatcher_FactoryErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
		want string
	}{
		{
			name: "credentials",
			err:  fmt.Errorf("%w: not logged in (run: todo login)", googletasks.ErrNoCredentials),
			code: exitcode.AuthError,
			want: "error: auth error: google credentials missing: not logged in (run: todo login)\n",
		},
		{
			name: "store",
			err:  fmt.Errorf("%w: open /x/todo.db: permission denied", service.ErrFetch),
			code: exitcode.StoreError,
			want: "error: fetch failed: open /x/todo.db: permission denied\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			factory := func(ctx context.Context, cfg *config.Config) (service.Service, error) {
				return nil, tt.err
			}
			dispatcher := cli.NewDispatcher(commands.DefaultRegistry, factory)

			_, stderr, code := run(t, dispatcher, "list", "--config", t.TempDir())
			if code != tt.code {
				t.Errorf("expected exit code %d, got %d", tt.code, code)
			}
			if stderr != tt.want {
				t.Errorf("expected %q, got %q", tt.want, stderr)
			}
		})
	}
}

func TestDispatcher_DebugLogging(t *testing.T) {
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, testFactory(testutil.NewFakeService()))

	_, stderr, code := run(t, dispatcher, "list", "--debug", "--config", t.TempDir())

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if !strings.Contains(stderr, "todo: ") || !strings.Contains(stderr, "config dir") {
		t.Errorf("expected debug output on stderr, got %q", stderr)
	}
}

// seedServer serves the public seed endpoint shape and counts requests.
func seedServer(t *testing.T, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/todos" {
			http.NotFound(w, r)
			return
		}
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"todos":[`+
			`{"id":1,"todo":"Buy milk","completed":false,"userId":5},`+
			`{"id":2,"todo":"Walk dog","completed":true,"userId":5}],`+
			`"total":2,"skip":0,"limit":30}`)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func writeConfig(t *testing.T, dir, body string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, config.ConfigFile), []byte(body), 0600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
}

func TestEndToEnd_SeedsOnceThenWorksLocally(t *testing.T) {
	var hits atomic.Int32
	srv := seedServer(t, &hits)
	dir := t.TempDir()
	writeConfig(t, dir, "seed:\n  url: "+srv.URL+"\n")

	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, nil)

	stdout, stderr, code := run(t, dispatcher, "list", "--config", dir)
	if code != exitcode.Success {
		t.Fatalf("list failed with %d: %s", code, stderr)
	}
	if stdout != "   1  [ ] Buy milk\n   2  [x] Walk dog\n" {
		t.Errorf("unexpected first listing %q", stdout)
	}
	if _, err := os.Stat(filepath.Join(dir, config.DatabaseFile)); err != nil {
		t.Errorf("expected database file in config dir: %v", err)
	}

	if _, stderr, code := run(t, dispatcher, "toggle", "--config", dir, "2"); code != exitcode.Success {
		t.Fatalf("toggle failed with %d: %s", code, stderr)
	}
	if _, stderr, code := run(t, dispatcher, "rm", "--config", dir, "1"); code != exitcode.Success {
		t.Fatalf("rm failed with %d: %s", code, stderr)
	}

	stdout, _, _ = run(t, dispatcher, "list", "--config", dir)
	if stdout != "   1  [ ] Walk dog\n" {
		t.Errorf("unexpected listing after edits %q", stdout)
	}

	stdout, _, _ = run(t, dispatcher, "show", "--config", dir, "1")
	if !strings.Contains(stdout, "id:      00000000-0000-4000-8000-000000000002\n") {
		t.Errorf("expected seed-derived id, got %q", stdout)
	}

	if got := hits.Load(); got != 1 {
		t.Errorf("expected exactly one seed request, got %d", got)
	}
}

func TestEndToEnd_SeedFailureThenRetry(t *testing.T) {
	var fail atomic.Bool
	fail.Store(true)
	var hits atomic.Int32
	ok := seedServer(t, &hits)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fail.Load() {
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}
		ok.Config.Handler.ServeHTTP(w, r)
	}))
	defer srv.Close()

	dir := t.TempDir()
	writeConfig(t, dir, "seed:\n  url: "+srv.URL+"\n")
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, nil)

	_, stderr, code := run(t, dispatcher, "list", "--config", dir)
	if code != exitcode.BackendError {
		t.Errorf("expected exit code %d, got %d", exitcode.BackendError, code)
	}
	if !strings.HasPrefix(stderr, "error: backend error: network error") {
		t.Errorf("unexpected stderr %q", stderr)
	}

	fail.Store(false)
	stdout, stderr, code := run(t, dispatcher, "list", "--config", dir)
	if code != exitcode.Success {
		t.Fatalf("retry failed with %d: %s", code, stderr)
	}
	if strings.Count(stdout, "\n") != 2 {
		t.Errorf("expected two seeded tasks, got %q", stdout)
	}
}

func TestEndToEnd_SeedingDisabled(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "seed:\n  enabled: false\n")
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, nil)

	stdout, _, code := run(t, dispatcher, "list", "--config", dir)
	if code != exitcode.Success || stdout != "no tasks found\n" {
		t.Fatalf("expected empty list, got %d %q", code, stdout)
	}

	if _, stderr, code := run(t, dispatcher, "add", "--config", dir, "--desc", "oat", "Buy", "milk"); code != exitcode.Success {
		t.Fatalf("add failed with %d: %s", code, stderr)
	}
	stdout, _, _ = run(t, dispatcher, "search", "--config", dir, "MILK")
	if stdout != "   1  [ ] Buy milk\n" {
		t.Errorf("unexpected search output %q", stdout)
	}
}

func TestEndToEnd_GoogleTasksWithoutLogin(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "seed:\n  source: googletasks\n")
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, nil)

	_, stderr, code := run(t, dispatcher, "list", "--config", dir)
	if code != exitcode.AuthError {
		t.Errorf("expected exit code %d, got %d", exitcode.AuthError, code)
	}
	if !strings.Contains(stderr, "oauth_client.json not found") {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestNewSeedSource(t *testing.T) {
	cfg := config.Default(t.TempDir())

	src, err := cli.NewSeedSource(context.Background(), cfg)
	if err != nil || src == nil {
		t.Fatalf("expected dummyjson source, got %v, %v", src, err)
	}

	cfg.Seed.Enabled = false
	src, err = cli.NewSeedSource(context.Background(), cfg)
	if err != nil || src != nil {
		t.Fatalf("expected no source when disabled, got %v, %v", src, err)
	}

	cfg.Seed.Enabled = true
	cfg.Seed.Source = "ftp"
	if _, err := cli.NewSeedSource(context.Background(), cfg); err == nil {
		t.Fatal("expected error for unknown source")
	}

	cfg.Seed.Source = config.SourceGoogleTasks
	_, err = cli.NewSeedSource(context.Background(), cfg)
	if !errors.Is(err, googletasks.ErrNoCredentials) {
		t.Fatalf("expected ErrNoCredentials, got %v", err)
	}
}
