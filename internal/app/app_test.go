package app

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/quillpost/quillpost"
	"github.com/quillpost/quillpost/internal/config"
	"github.com/quillpost/quillpost/password"
)

type memUsers struct {
	mu    sync.Mutex
	users map[int64]quillpost.UserRecord
}

func (m *memUsers) GetUserByLogin(_ context.Context, login string) (quillpost.UserRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Login == login {
			return u, nil
		}
	}
	return quillpost.UserRecord{}, quillpost.ErrUserNotFound
}

func (m *memUsers) GetUserByID(_ context.Context, id int64) (quillpost.UserRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return quillpost.UserRecord{}, quillpost.ErrUserNotFound
	}
	return u, nil
}

func (m *memUsers) CreateUser(context.Context, string, string) (quillpost.UserRecord, error) {
	return quillpost.UserRecord{}, quillpost.ErrInfrastructure
}

func (m *memUsers) UpdatePasswordHash(context.Context, int64, string) error { return nil }
func (m *memUsers) ChangeLogin(context.Context, int64, string) error          { return nil }
func (m *memUsers) Delete(context.Context, int64) error                       { return nil }

type noMessages struct{}

func (noMessages) List(context.Context, int64, int64) ([]quillpost.Message, error) { return nil, nil }
func (noMessages) Get(context.Context, int64) (quillpost.Message, error) {
	return quillpost.Message{}, quillpost.ErrMessageNotFound
}
func (noMessages) Create(context.Context, int64, string) (quillpost.Message, error) {
	return quillpost.Message{}, quillpost.ErrInfrastructure
}
func (noMessages) UpdateText(context.Context, int64, string) error { return nil }
func (noMessages) Delete(context.Context, int64) error             { return nil }

func memoryConfig() config.Config {
	cfg := config.Default()
	cfg.Auth.Session.Backend = quillpost.BackendMemory
	cfg.Server.ShutdownTimeout = 2 * time.Second
	return cfg
}

func testRepos() Repositories {
	return Repositories{
		Users: &memUsers{users: map[int64]quillpost.UserRecord{
			1: {ID: 1, Login: "alice", PasswordHash: password.Digest("1234")},
		}},
		Messages: noMessages{},
		Ping:     func(context.Context) error { return nil },
	}
}

func TestServeAndShutdown(t *testing.T) {
	defer goleak.VerifyNone(t)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	a, err := Assemble(memoryConfig(), logger, testRepos(), nil)
	require.NoError(t, err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	base := "http://" + ln.Addr().String()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Serve(ctx, ln) }()

	client := &http.Client{
		Timeout:   5 * time.Second,
		Transport: &http.Transport{DisableKeepAlives: true},
	}

	resp, err := client.Get(base + "/readyz")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body, _ := json.Marshal(map[string]string{"login": "alice", "password": "1234"})
	resp, err = client.Post(base+"/auth/login", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	var login struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&login))
	_ = resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	req, err := http.NewRequest(http.MethodGet, base+"/users/1", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+login.Token)
	resp, err = client.Do(req)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = client.Get(base + "/metrics")
	require.NoError(t, err)
	metrics, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	require.NoError(t, err)
	assert.Contains(t, string(metrics), "quillpost_login_success_total 1")
	assert.Contains(t, string(metrics), "quillpost_http_requests_total")

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestAssembleRejectsInvalidAuthConfig(t *testing.T) {
	defer goleak.VerifyNone(t)

	cfg := memoryConfig()
	cfg.Auth.Session.TTL = 0

	_, err := Assemble(cfg, nil, testRepos(), nil)
	assert.Error(t, err)
}

func TestAssembleRedisBackendWithoutClient(t *testing.T) {
	cfg := memoryConfig()
	cfg.Auth.Session.Backend = quillpost.BackendRedis

	_, err := Assemble(cfg, nil, testRepos(), nil)
	assert.ErrorIs(t, err, quillpost.ErrMissingStore)
}
