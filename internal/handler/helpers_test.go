package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"sync"
	"testing"

	"github.com/nephsir/jobfinder/internal/config"
	"github.com/nephsir/jobfinder/internal/middleware"
	"github.com/nephsir/jobfinder/internal/server"
	"github.com/nephsir/jobfinder/internal/user"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"
)

var testJWTKey = []byte("test-signing-key")

func newTestServer(t *testing.T) (server.Server, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	cfg := config.Config{Env: "dev", JwtSigningKey: testJWTKey}
	return server.NewServer(cfg, db, mux.NewRouter()), mock, db
}

type stubUserRepo struct {
	u user.User
}

func (s stubUserRepo) GetUser(id string) (user.User, error) {
	if id != s.u.ID {
		return user.User{}, errors.New("user not found")
	}
	return s.u, nil
}

// asUser runs the handler behind the auth middleware with u already logged in.
func asUser(t *testing.T, u user.User, next http.HandlerFunc) http.HandlerFunc {
	t.Helper()
	token, err := middleware.NewUserToken(u.ID, testJWTKey)
	require.NoError(t, err)
	authed := middleware.UserAuthenticatedMiddleware(stubUserRepo{u}, testJWTKey, next)
	return func(w http.ResponseWriter, r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+token)
		authed(w, r)
	}
}

type emittedEvent struct {
	UserID string
	Event  string
	Data   interface{}
}

type fakeEmitter struct {
	mu     sync.Mutex
	events []emittedEvent
}

func (f *fakeEmitter) Broadcast(event string, data interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, emittedEvent{Event: event, Data: data})
}

func (f *fakeEmitter) ToUser(userID string, event string, data interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, emittedEvent{UserID: userID, Event: event, Data: data})
}

func (f *fakeEmitter) eventNames() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	names := make([]string, 0, len(f.events))
	for _, e := range f.events {
		names = append(names, e.Event)
	}
	return names
}
