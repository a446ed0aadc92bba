package server

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/nephsir/jobfinder/internal/config"
	"github.com/nephsir/jobfinder/internal/middleware"

	"github.com/allegro/bigcache/v3"
	"github.com/getsentry/raven-go"
	"github.com/gorilla/mux"
)

const CacheKeyProfileTitles = "profileTitles"

// Response is the uniform envelope every /api endpoint answers with.
type Response struct {
	StatusCode int         `json:"statusCode"`
	Data       interface{} `json:"data,omitempty"`
	Message    string      `json:"message"`
	Count      *int        `json:"count,omitempty"`
	Error      string      `json:"error,omitempty"`
}

type Server struct {
	cfg      config.Config
	Conn     *sql.DB
	router   *mux.Router
	bigCache *bigcache.BigCache
}

func NewServer(cfg config.Config, conn *sql.DB, r *mux.Router) Server {
	raven.SetDSN(cfg.SentryDSN)

	bigCache, err := bigcache.NewBigCache(bigcache.DefaultConfig(12 * time.Hour))
	svr := Server{
		cfg:      cfg,
		Conn:     conn,
		router:   r,
		bigCache: bigCache,
	}
	if err != nil {
		svr.Log(err, "unable to initialise big cache")
	}
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/api") {
			svr.RespondError(w, http.StatusNotFound, "API route not found")
			return
		}
		http.NotFound(w, r)
	})

	return svr
}

func (s Server) RegisterRoute(path string, handler func(w http.ResponseWriter, r *http.Request), methods []string) {
	s.router.HandleFunc(path, handler).Methods(methods...)
}

func (s Server) GetConfig() config.Config {
	return s.cfg
}

func (s Server) GetJWTSigningKey() []byte {
	return s.cfg.JwtSigningKey
}

func (s Server) JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

func (s Server) RespondData(w http.ResponseWriter, status int, data interface{}, message string) {
	s.JSON(w, status, Response{StatusCode: status, Data: data, Message: message})
}

// RespondList is RespondData plus the count field for collection endpoints.
func (s Server) RespondList(w http.ResponseWriter, status int, data interface{}, count int, message string) {
	s.JSON(w, status, Response{StatusCode: status, Data: data, Message: message, Count: &count})
}

func (s Server) RespondError(w http.ResponseWriter, status int, message string) {
	s.JSON(w, status, Response{StatusCode: status, Message: message})
}

func (s Server) Log(err error, msg string) {
	raven.CaptureErrorAndWait(err, map[string]string{"ctx": msg})
	log.Printf("%s: %+v", msg, err)
}

// Cache helpers tolerate a nil cache so a failed cache init degrades to
// cache misses instead of panics.
func (s Server) CacheGet(key string) ([]byte, bool) {
	if s.bigCache == nil {
		return []byte{}, false
	}
	out, err := s.bigCache.Get(key)
	if err != nil {
		return []byte{}, false
	}
	return out, true
}

func (s Server) CacheSet(key string, val []byte) error {
	if s.bigCache == nil {
		return errors.New("cache unavailable")
	}
	return s.bigCache.Set(key, val)
}

func (s Server) CacheDelete(key string) error {
	if s.bigCache == nil {
		return errors.New("cache unavailable")
	}
	return s.bigCache.Delete(key)
}

func (s Server) Run() error {
	addr := fmt.Sprintf(":%s", s.cfg.Port)
	if s.cfg.Env == "dev" {
		log.Printf("local env http://localhost:%s", s.cfg.Port)
		addr = fmt.Sprintf("localhost:%s", s.cfg.Port)
	}
	return http.ListenAndServe(
		addr,
		middleware.RecoveryMiddleware(
			middleware.LoggingMiddleware(middleware.HeadersMiddleware(s.router, s.cfg.Env)),
			s.Log,
		),
	)
}
