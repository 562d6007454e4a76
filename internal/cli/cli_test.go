package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/andy/kihopunch/internal/app"
	"github.com/andy/kihopunch/internal/config"
	"github.com/andy/kihopunch/internal/domain"
	"github.com/andy/kihopunch/internal/keyring"
	"github.com/andy/kihopunch/internal/kiho"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gokeyring "github.com/zalando/go-keyring"
)

const punchesJSON = `{"result": [
	{"id": 3, "type": "LOGOUT", "description": "", "timestamp": "2024-09-04T17:00:00+03:00", "realTimestamp": "2024-09-04T17:00:00+03:00", "customerCostcentre": null},
	{"id": 2, "type": "LOGIN", "description": "Audit: ISO27001", "timestamp": "2024-09-04T15:39:37+03:00", "realTimestamp": "2024-09-04T15:39:37+03:00", "customerCostcentre": {"id": 892621, "name": "Compliance"}}
]}`

type testEnv struct {
	configPath string
	requests   []*http.Request
	bodies     [][]byte
}

// setup writes a config pointing at a fake punch API
func setup(t *testing.T, handler http.HandlerFunc) *testEnv {
	t.Helper()
	gokeyring.MockInit()
	t.Setenv(keyring.EnvAPIKey, "test-key")

	env := &testEnv{configPath: filepath.Join(t.TempDir(), "config.yaml")}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body := new(bytes.Buffer)
		_, _ = body.ReadFrom(r.Body)
		env.requests = append(env.requests, r)
		env.bodies = append(env.bodies, body.Bytes())
		if handler == nil {
			t.Errorf("unexpected %s request", r.Method)
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	cfg := config.DefaultConfig()
	cfg.API.URL = srv.URL
	cfg.RecurringTasks = []string{"B | three", "A | one", "A | two", "loose task"}
	require.NoError(t, cfg.Save(env.configPath))

	return env
}

func (e *testEnv) run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	err := Execute(context.Background(), strings.NewReader(stdin), &out, &errOut,
		append([]string{"--config", e.configPath}, args...))
	return out.String(), errOut.String(), err
}

func createdHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"result": {"id": 42, "type": "LOGIN", "description": "A: two", "timestamp": "2024-09-04T15:39:37+03:00", "realTimestamp": "2024-09-04T15:39:37+03:00", "customerCostcentre": {"id": 901184, "name": "Default"}}}`))
}

func TestGetTasks(t *testing.T) {
	env := setup(t, nil)

	out, _, err := env.run(t, "", "get", "tasks")
	require.NoError(t, err)
	assert.Contains(t, out, "Kiho Worktime Puncher v"+app.Version)

	a := strings.Index(out, "A:\n  - one\n  - two")
	b := strings.Index(out, "B:\n  - three")
	u := strings.Index(out, "unclassified:\n  - loose task")
	require.True(t, a >= 0 && b >= 0 && u >= 0, out)
	assert.Less(t, a, b)
	assert.Less(t, b, u)
}

func TestGetConfig_MasksKey(t *testing.T) {
	env := setup(t, nil)
	cfg, err := config.Load(env.configPath)
	require.NoError(t, err)
	cfg.API.Key = "supersecret"
	require.NoError(t, cfg.Save(env.configPath))

	out, _, err := env.run(t, "", "get", "config")
	require.NoError(t, err)
	assert.NotContains(t, out, "supersecret")
	assert.Contains(t, out, "********")
	assert.Contains(t, out, "recurring_tasks:")
}

func TestGetCCC(t *testing.T) {
	env := setup(t, nil)

	out, _, err := env.run(t, "", "get", "ccc")
	require.NoError(t, err)
	assert.Contains(t, out, "Example default customer cost centre")
	assert.Contains(t, out, "ISO27")
	assert.Contains(t, out, "Default cost centre: 901184")
}

func TestGetJSON(t *testing.T) {
	env := setup(t, nil)

	out, _, err := env.run(t, "", "get", "json")
	require.NoError(t, err)
	assert.Contains(t, out, `"newPunch"`)
	assert.Contains(t, out, `"description": "Rusting it out"`)
	assert.Contains(t, out, `"timestamp": "2023-08-22T14:09:09+03:00"`)
}

func TestGetLatest(t *testing.T) {
	env := setup(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(punchesJSON))
	})

	out, _, err := env.run(t, "", "get", "latest", "2", "login")
	require.NoError(t, err)

	require.Len(t, env.requests, 1)
	q := env.requests[0].URL.Query()
	assert.Equal(t, "2", q.Get("pageSize"))
	assert.Equal(t, "LOGIN", q.Get("type"))
	assert.Equal(t, "timestamp DESC", q.Get("orderBy"))
	assert.Equal(t, "test-key", env.requests[0].Header.Get("Authorization"))

	assert.Contains(t, out, "Latest 2 worktime LOGIN punch line(s) in ascending order:")
	login := strings.Index(out, "04.09.2024 15:39:37")
	logout := strings.Index(out, "04.09.2024 17:00:00")
	require.True(t, login >= 0 && logout >= 0, out)
	assert.Less(t, login, logout)
	assert.Contains(t, out, "Compliance")
}

func TestGetLatest_NoneFound(t *testing.T) {
	env := setup(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"result": []}`))
	})

	out, _, err := env.run(t, "", "get", "latest", "5")
	require.NoError(t, err)
	assert.Contains(t, out, "NONE FOUND!")
}

func TestGetLatest_BadArguments(t *testing.T) {
	env := setup(t, nil)

	for _, args := range [][]string{
		{"get", "latest"},
		{"get", "latest", "0"},
		{"get", "latest", "many"},
		{"get", "latest", "1", "LUNCH"},
	} {
		_, _, err := env.run(t, "", args...)
		assert.Error(t, err, args)
	}
	assert.Empty(t, env.requests)
}

func TestStart_WithDescription(t *testing.T) {
	env := setup(t, createdHandler)

	out, _, err := env.run(t, "", "start", "Audit:", "ISO27001")
	require.NoError(t, err)
	require.Len(t, env.bodies, 1)

	var body domain.NewPunchRequest
	require.NoError(t, json.Unmarshal(env.bodies[0], &body))
	assert.Equal(t, domain.PunchTypeLogin, body.NewPunch.Type)
	assert.Equal(t, "Audit: ISO27001", body.NewPunch.Description)
	assert.Equal(t, int64(892621), body.NewPunch.CustomerCostcentre.ID)
	assert.Equal(t, "application/json", env.requests[0].Header.Get("Content-Type"))

	assert.Contains(t, out, "Following new punch line created:")
	assert.Contains(t, out, "42")
}

func TestStart_ChoosesRecurringTask(t *testing.T) {
	env := setup(t, createdHandler)

	out, _, err := env.run(t, "x\nA\n2\n", "start", "--ccc", "7")
	require.NoError(t, err)

	assert.Contains(t, out, "Please choose one from the following recurring ones:")
	assert.Contains(t, out, "Invalid choice!")
	assert.Contains(t, out, "==> Select description [1-2] (ctrl+c to cancel): ")

	var body domain.NewPunchRequest
	require.NoError(t, json.Unmarshal(env.bodies[0], &body))
	assert.Equal(t, "A: two", body.NewPunch.Description)
	assert.Equal(t, int64(7), body.NewPunch.CustomerCostcentre.ID)
}

func TestStart_InputClosed(t *testing.T) {
	env := setup(t, nil)

	_, _, err := env.run(t, "", "start")
	require.Error(t, err)
	assert.Empty(t, env.requests)
}

func TestDryRun_SkipsHTTP(t *testing.T) {
	env := setup(t, nil)

	out, errOut, err := env.run(t, "", "--dry-run", "start", "work")
	require.NoError(t, err)
	assert.Contains(t, out, "NOTE: This is a DRY-RUN!")
	assert.Contains(t, errOut, "DRY RUN")

	_, _, err = env.run(t, "", "-n", "stop")
	require.NoError(t, err)

	_, _, err = env.run(t, "", "-n", "get", "latest", "3")
	require.NoError(t, err)

	assert.Empty(t, env.requests)
}

func TestStop(t *testing.T) {
	env := setup(t, createdHandler)

	_, _, err := env.run(t, "", "stop")
	require.NoError(t, err)

	var body map[string]map[string]any
	require.NoError(t, json.Unmarshal(env.bodies[0], &body))
	assert.Equal(t, "LOGOUT", body["newPunch"]["type"])
	assert.NotContains(t, body["newPunch"], "description")
}

func TestStop_MissingAPIKey(t *testing.T) {
	env := setup(t, nil)
	t.Setenv(keyring.EnvAPIKey, "")

	_, _, err := env.run(t, "", "stop")
	require.ErrorIs(t, err, app.ErrMissingAPIKey)
}

func TestBreak(t *testing.T) {
	env := setup(t, nil)

	_, _, err := env.run(t, "", "break")
	require.ErrorIs(t, err, domain.ErrBreakUnsupported)
}

func TestConfigPath(t *testing.T) {
	env := setup(t, nil)

	out, _, err := env.run(t, "", "config", "path")
	require.NoError(t, err)
	assert.Equal(t, env.configPath+"\n", out)
}

func TestConfigInit(t *testing.T) {
	env := setup(t, nil)

	_, _, err := env.run(t, "", "config", "init")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	_, _, err = env.run(t, "", "config", "init", "--force")
	require.NoError(t, err)

	cfg, err := config.Load(env.configPath)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultConfig().RecurringTasks, cfg.RecurringTasks)

	fresh := filepath.Join(t.TempDir(), "nested", "config.toml")
	err = Execute(context.Background(), strings.NewReader(""), &bytes.Buffer{}, &bytes.Buffer{},
		[]string{"--config", fresh, "config", "init"})
	require.NoError(t, err)
	_, err = os.Stat(fresh)
	assert.NoError(t, err)
}

func TestConfigKeyCommands(t *testing.T) {
	env := setup(t, nil)

	_, _, err := env.run(t, "stored-key\n", "config", "set-key")
	require.NoError(t, err)

	key, err := keyring.NewKeyring().GetKey()
	require.NoError(t, err)
	assert.Equal(t, "stored-key", key)

	out, _, err := env.run(t, "n\n", "config", "delete-key")
	require.NoError(t, err)
	assert.Contains(t, out, "Cancelled.")

	_, _, err = env.run(t, "y\n", "config", "delete-key")
	require.NoError(t, err)
	_, err = keyring.NewKeyring().GetKey()
	assert.ErrorIs(t, err, keyring.ErrKeyNotFound)
}

func TestStart_InterruptedWhileChoosing(t *testing.T) {
	env := setup(t, nil)
	r, w := io.Pipe()
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Execute(ctx, r, &bytes.Buffer{}, &bytes.Buffer{},
			[]string{"--config", env.configPath, "start"})
	}()

	_, err := io.WriteString(w, "A\n")
	require.NoError(t, err)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("start kept waiting for a choice after the context was cancelled")
	}
	assert.Empty(t, env.requests)
}

func TestUnauthorized_HintsAtAPIKey(t *testing.T) {
	env := setup(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message": "invalid api key"}`))
	})

	_, _, err := env.run(t, "", "stop")
	require.Error(t, err)
	assert.True(t, kiho.IsUnauthorized(err))
	assert.Contains(t, err.Error(), "check the API key")
}
