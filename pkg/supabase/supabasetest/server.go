// Package supabasetest provides an in-memory stand-in for the auth admin and record
// endpoints used by the bootstrap, for tests.
package supabasetest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"slices"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"
	"golang.org/x/exp/maps"

	"github.com/tendant/wms-superadmin/pkg/supabase"
)

const jwtSecret = "supabasetest-jwt-secret-with-enough-length"

type contextKey struct {
	name string
}

var bodyKey = &contextKey{"body"}

// Tables served by the fake and their conflict keys
var defaultTables = map[string][]string{
	"ruoli":               {"codice"},
	"utenti_profilo":      {"id"},
	"ruoli_tab_abilitate": {"ruolo_codice", "tab_nome"},
}

// Request is a request received by the server
type Request struct {
	Method   string
	Path     string
	RawQuery string
	Prefer   string
	Body     map[string]interface{}
}

// Failure makes matching requests fail with Status instead of being served
type Failure struct {
	Method string
	Path   string
	Status int
	// Match narrows the failure to some request bodies. Nil matches all.
	Match func(body map[string]interface{}) bool
	// Times limits how often the failure fires. Zero means every time.
	Times int
	// Body is the response body, a generic JSON error when empty
	Body string

	fired int
}

type table struct {
	key  []string
	rows map[string]map[string]interface{}
}

// Server is an httptest server holding users and table rows in memory
type Server struct {
	*httptest.Server

	tokenAuth      *jwtauth.JWTAuth
	serviceRoleKey string
	anonKey        string

	mu       sync.Mutex
	users    []supabase.User
	tables   map[string]*table
	failures []*Failure
	requests []Request
}

// NewServer starts a server that is closed when the test ends
func NewServer(t testing.TB) *Server {
	s := &Server{
		tokenAuth: jwtauth.New("HS256", []byte(jwtSecret), nil),
		tables:    make(map[string]*table),
	}
	for name, key := range defaultTables {
		s.tables[name] = &table{key: key, rows: make(map[string]map[string]interface{})}
	}

	var err error
	if _, s.serviceRoleKey, err = s.tokenAuth.Encode(map[string]interface{}{"iss": "supabase", "role": "service_role"}); err != nil {
		t.Fatalf("failed to encode service role key: %v", err)
	}
	if _, s.anonKey, err = s.tokenAuth.Encode(map[string]interface{}{"iss": "supabase", "role": "anon"}); err != nil {
		t.Fatalf("failed to encode anon key: %v", err)
	}

	s.Server = httptest.NewServer(s.routes())
	t.Cleanup(s.Close)
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(s.recordRequest)
	r.Use(s.injectFailures)
	r.Use(jwtauth.Verifier(s.tokenAuth))
	r.Use(s.requireServiceRole)

	r.Route("/auth/v1/admin/users", func(r chi.Router) {
		r.Post("/", s.createUser)
		r.Get("/", s.listUsers)
	})
	r.Route("/rest/v1/{table}", func(r chi.Router) {
		r.Post("/", s.upsertRow)
		r.Get("/", s.selectRows)
	})
	return r
}

// ServiceRoleKey returns a key the server accepts for admin calls
func (s *Server) ServiceRoleKey() string {
	return s.serviceRoleKey
}

// AnonKey returns a validly signed key without admin rights
func (s *Server) AnonKey() string {
	return s.anonKey
}

// FailOn registers a failure
func (s *Server) FailOn(f Failure) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = append(s.failures, &f)
}

// AddUser stores an existing auth user and returns it
func (s *Server) AddUser(email string) supabase.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addUserLocked(email, nil, false)
}

func (s *Server) addUserLocked(email string, metadata map[string]interface{}, confirm bool) supabase.User {
	user := supabase.User{
		ID:           uuid.NewString(),
		Email:        email,
		UserMetadata: metadata,
		CreatedAt:    time.Now().UTC(),
	}
	if confirm {
		confirmedAt := user.CreatedAt
		user.EmailConfirmedAt = &confirmedAt
	}
	s.users = append(s.users, user)
	return user
}

// Users returns the stored auth users in creation order
func (s *Server) Users() []supabase.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.users)
}

// Rows returns the rows of a table ordered by key
func (s *Server) Rows(name string) []map[string]interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tables[name]
	if !ok {
		return nil
	}
	return t.sortedRows()
}

// Requests returns every request received so far
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.requests)
}

// RequestCount counts requests with the given method and path
func (s *Server) RequestCount(method, path string) int {
	count := 0
	for _, req := range s.Requests() {
		if req.Method == method && req.Path == path {
			count++
		}
	}
	return count
}

func (t *table) sortedRows() []map[string]interface{} {
	keys := maps.Keys(t.rows)
	slices.Sort(keys)

	rows := make([]map[string]interface{}, 0, len(keys))
	for _, k := range keys {
		rows = append(rows, maps.Clone(t.rows[k]))
	}
	return rows
}

func (s *Server) recordRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		r.Body = io.NopCloser(bytes.NewReader(data))

		var body map[string]interface{}
		if len(data) > 0 {
			_ = json.Unmarshal(data, &body)
		}

		s.mu.Lock()
		s.requests = append(s.requests, Request{
			Method:   r.Method,
			Path:     r.URL.Path,
			RawQuery: r.URL.RawQuery,
			Prefer:   r.Header.Get("Prefer"),
			Body:     body,
		})
		s.mu.Unlock()

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), bodyKey, body)))
	})
}

func (s *Server) injectFailures(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := r.Context().Value(bodyKey).(map[string]interface{})

		s.mu.Lock()
		var hit *Failure
		for _, f := range s.failures {
			if f.Method != r.Method || f.Path != r.URL.Path {
				continue
			}
			if f.Times > 0 && f.fired >= f.Times {
				continue
			}
			if f.Match != nil && !f.Match(body) {
				continue
			}
			f.fired++
			hit = f
			break
		}
		s.mu.Unlock()

		if hit == nil {
			next.ServeHTTP(w, r)
			return
		}

		payload := hit.Body
		if payload == "" {
			payload = fmt.Sprintf(`{"message":"injected failure","status":%d}`, hit.Status)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(hit.Status)
		_, _ = w.Write([]byte(payload))
	})
}

func (s *Server) requireServiceRole(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, claims, err := jwtauth.FromContext(r.Context())
		if err != nil || token == nil {
			writeError(w, r, http.StatusUnauthorized, "invalid_jwt", "Invalid JWT")
			return
		}
		bearer := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		if r.Header.Get("apikey") != bearer {
			writeError(w, r, http.StatusUnauthorized, "invalid_api_key", "apikey header does not match the bearer token")
			return
		}
		if role, _ := claims["role"].(string); role != "service_role" {
			writeError(w, r, http.StatusForbidden, "not_admin", "User not allowed")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code, msg string) {
	render.Status(r, status)
	render.JSON(w, r, map[string]interface{}{
		"code":       status,
		"error_code": code,
		"msg":        msg,
	})
}

func (s *Server) createUser(w http.ResponseWriter, r *http.Request) {
	var params supabase.CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		writeError(w, r, http.StatusBadRequest, "bad_json", "Could not parse request body as JSON")
		return
	}
	if params.Email == "" || params.Password == "" {
		writeError(w, r, http.StatusUnprocessableEntity, "validation_failed", "Email and password are required")
		return
	}

	s.mu.Lock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, params.Email) {
			s.mu.Unlock()
			writeError(w, r, http.StatusUnprocessableEntity, "email_exists", "A user with this email address has already been registered")
			return
		}
	}
	user := s.addUserLocked(params.Email, params.UserMetadata, params.EmailConfirm)
	s.mu.Unlock()

	render.Status(r, http.StatusOK)
	render.JSON(w, r, user)
}

// listUsers pages over all users. Like older auth servers it ignores the email
// filter, so clients have to match emails themselves.
func (s *Server) listUsers(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page", 1)
	perPage := queryInt(r, "per_page", 50)

	s.mu.Lock()
	start := (page - 1) * perPage
	end := start + perPage
	var users []supabase.User
	if start < len(s.users) {
		users = slices.Clone(s.users[start:min(end, len(s.users))])
	}
	s.mu.Unlock()

	if users == nil {
		users = []supabase.User{}
	}
	render.JSON(w, r, map[string]interface{}{
		"aud":   "authenticated",
		"users": users,
	})
}

func queryInt(r *http.Request, name string, fallback int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func (s *Server) upsertRow(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "table")

	var row map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&row); err != nil {
		writeRestError(w, r, http.StatusBadRequest, "PGRST102", "Empty or invalid json")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tables[name]
	if !ok {
		writeRestError(w, r, http.StatusNotFound, "42P01", fmt.Sprintf("relation %q does not exist", name))
		return
	}

	if onConflict := r.URL.Query().Get("on_conflict"); onConflict != "" {
		columns := strings.Split(onConflict, ",")
		if !sameColumns(columns, t.key) {
			writeRestError(w, r, http.StatusBadRequest, "42P10", "there is no unique or exclusion constraint matching the ON CONFLICT specification")
			return
		}
	}

	key, ok := t.rowKey(row)
	if !ok {
		writeRestError(w, r, http.StatusBadRequest, "23502", "null value in column violates not-null constraint")
		return
	}

	existing, exists := t.rows[key]
	if exists {
		if !strings.Contains(r.Header.Get("Prefer"), supabase.PreferMergeDuplicates) {
			writeRestError(w, r, http.StatusConflict, "23505", "duplicate key value violates unique constraint")
			return
		}
		for k, v := range row {
			existing[k] = v
		}
	} else {
		t.rows[key] = row
	}

	w.WriteHeader(http.StatusCreated)
}

func (s *Server) selectRows(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "table")

	s.mu.Lock()
	t, ok := s.tables[name]
	var rows []map[string]interface{}
	if ok {
		rows = t.sortedRows()
	}
	s.mu.Unlock()

	if !ok {
		writeRestError(w, r, http.StatusNotFound, "42P01", fmt.Sprintf("relation %q does not exist", name))
		return
	}

	query := r.URL.Query()
	var columns []string
	if sel := query.Get("select"); sel != "" && sel != "*" {
		columns = strings.Split(sel, ",")
	}

	result := make([]map[string]interface{}, 0, len(rows))
	for _, row := range rows {
		if !matchesFilters(row, query) {
			continue
		}
		if columns != nil {
			projected := make(map[string]interface{}, len(columns))
			for _, c := range columns {
				projected[c] = row[c]
			}
			row = projected
		}
		result = append(result, row)
	}

	render.JSON(w, r, result)
}

func matchesFilters(row map[string]interface{}, query map[string][]string) bool {
	for column, values := range query {
		if column == "select" || column == "order" {
			continue
		}
		for _, v := range values {
			expected, ok := strings.CutPrefix(v, "eq.")
			if !ok {
				continue
			}
			if fmt.Sprint(row[column]) != expected {
				return false
			}
		}
	}
	return true
}

func writeRestError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	render.Status(r, status)
	render.JSON(w, r, map[string]interface{}{
		"code":    code,
		"message": message,
		"details": nil,
		"hint":    nil,
	})
}

func (t *table) rowKey(row map[string]interface{}) (string, bool) {
	parts := make([]string, 0, len(t.key))
	for _, column := range t.key {
		v, ok := row[column]
		if !ok || v == nil {
			return "", false
		}
		parts = append(parts, fmt.Sprint(v))
	}
	return strings.Join(parts, "\x00"), true
}

func sameColumns(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	a = slices.Clone(a)
	b = slices.Clone(b)
	slices.Sort(a)
	slices.Sort(b)
	return slices.Equal(a, b)
}
