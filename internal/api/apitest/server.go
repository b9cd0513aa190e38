// Package apitest runs an in-process fake of the back-office API for tests.
package apitest

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/machibo/backoffice/internal/domain"
)

// Recorded is a request observed by the fake server.
type Recorded struct {
	Method        string
	Path          string
	Query         url.Values
	Authorization string
	Header        http.Header
	Body          []byte
}

// Server is a fake API. Exported fields may be set before the first request.
type Server struct {
	*httptest.Server

	mu          sync.Mutex
	users       map[string]string
	token       string
	withdrawals []domain.Withdrawal
	members     []domain.Member
	wallets     map[string][]domain.GameWallet
	banks       []domain.WithdrawalBank
	failures    map[string][]int
	requests    []Recorded
}

// New starts a fake server and stops it when t finishes.
func New(t testing.TB) *Server {
	t.Helper()
	s := &Server{
		users:    make(map[string]string),
		wallets:  make(map[string][]domain.GameWallet),
		failures: make(map[string][]int),
		banks: []domain.WithdrawalBank{
			{ID: 1, Code: "BCA", Name: "Bank Central Asia", Active: true},
			{ID: 2, Code: "BNI", Name: "Bank Negara Indonesia", Active: true},
		},
	}
	s.Server = httptest.NewServer(s.router())
	t.Cleanup(s.Close)
	return s
}

func (s *Server) router() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.record)
	r.HandleFunc("/auth/login", s.handleLogin).Methods(http.MethodPost)

	api := r.NewRoute().Subrouter()
	api.Use(s.authenticate)
	api.HandleFunc("/members", s.handleMembers).Methods(http.MethodGet)
	api.HandleFunc("/members/u/{username}", s.handleMember).Methods(http.MethodGet)
	api.HandleFunc("/members/game_wallets", s.handleGameWallets).Methods(http.MethodGet)
	api.HandleFunc("/members/wallet_logs", emptyList("rows")).Methods(http.MethodGet)
	api.HandleFunc("/members/promotion_logs", emptyList("logs")).Methods(http.MethodGet)
	api.HandleFunc("/members/game_results", emptyList("rows")).Methods(http.MethodGet)
	api.HandleFunc("/members/game_reports", emptyArray).Methods(http.MethodGet)
	api.HandleFunc("/withdrawals", s.handleWithdrawals).Methods(http.MethodGet)
	api.HandleFunc("/withdrawals/logs", emptyList("logs")).Methods(http.MethodGet)
	api.HandleFunc("/withdrawals/details/{id:[0-9]+}", s.handleWithdrawalDetail).Methods(http.MethodGet)
	api.HandleFunc("/withdrawals/game_reports/{id:[0-9]+}", emptyArray).Methods(http.MethodGet)
	api.HandleFunc("/withdrawals/approve", s.handleDecision(domain.WithdrawalApproved)).Methods(http.MethodPost)
	api.HandleFunc("/withdrawals/reject", s.handleDecision(domain.WithdrawalRejected)).Methods(http.MethodPost)
	api.HandleFunc("/system/withdrawal_banks", s.handleBanks).Methods(http.MethodGet)
	return r
}

// AddUser registers credentials accepted by POST /auth/login.
func (s *Server) AddUser(username, password string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[username] = password
}

// IssueToken makes token the only accepted bearer token.
func (s *Server) IssueToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
}

// ExpireToken revokes the current token so later requests get 401.
func (s *Server) ExpireToken() {
	s.IssueToken("")
}

// SetWithdrawals replaces the withdrawal table.
func (s *Server) SetWithdrawals(rows ...domain.Withdrawal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.withdrawals = append([]domain.Withdrawal(nil), rows...)
}

// SetMembers replaces the member table.
func (s *Server) SetMembers(rows ...domain.Member) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.members = append([]domain.Member(nil), rows...)
}

// SetGameWallets sets the game wallets returned for username.
func (s *Server) SetGameWallets(username string, wallets ...domain.GameWallet) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.wallets[username] = wallets
}

// FailNext makes the next request to path answer with status.
func (s *Server) FailNext(path string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[path] = append(s.failures[path], status)
}

// Withdrawal returns the current state of withdrawal id.
func (s *Server) Withdrawal(id int64) (domain.Withdrawal, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, w := range s.withdrawals {
		if w.ID == id {
			return w, true
		}
	}
	return domain.Withdrawal{}, false
}

// Requests returns every request observed so far.
func (s *Server) Requests() []Recorded {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Recorded(nil), s.requests...)
}

// Count returns how many requests hit path.
func (s *Server) Count(path string) int {
	n := 0
	for _, r := range s.Requests() {
		if r.Path == path {
			n++
		}
	}
	return n
}

// Last returns the most recent request to path.
func (s *Server) Last(path string) (Recorded, bool) {
	reqs := s.Requests()
	for i := len(reqs) - 1; i >= 0; i-- {
		if reqs[i].Path == path {
			return reqs[i], true
		}
	}
	return Recorded{}, false
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		r.Body = io.NopCloser(strings.NewReader(string(body)))

		s.mu.Lock()
		s.requests = append(s.requests, Recorded{
			Method:        r.Method,
			Path:          r.URL.Path,
			Query:         r.URL.Query(),
			Authorization: r.Header.Get("Authorization"),
			Header:        r.Header.Clone(),
			Body:          body,
		})
		var forced int
		if queued := s.failures[r.URL.Path]; len(queued) > 0 {
			forced = queued[0]
			s.failures[r.URL.Path] = queued[1:]
		}
		s.mu.Unlock()

		if forced != 0 {
			if forced == http.StatusUnauthorized {
				s.ExpireToken()
			}
			writeEnvelope(w, forced, false, http.StatusText(forced), nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		valid := s.token
		s.mu.Unlock()
		if valid == "" || r.Header.Get("Authorization") != "Bearer "+valid {
			writeEnvelope(w, http.StatusUnauthorized, false, "Unauthenticated.", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var creds domain.Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeEnvelope(w, http.StatusBadRequest, false, "invalid body", nil)
		return
	}
	s.mu.Lock()
	password, ok := s.users[creds.Username]
	if !ok || password != creds.Password {
		s.mu.Unlock()
		writeEnvelope(w, http.StatusUnprocessableEntity, false, "Invalid username or password", nil)
		return
	}
	s.token = uuid.NewString()
	token := s.token
	s.mu.Unlock()

	writeEnvelope(w, http.StatusOK, true, "Login success", domain.LoginResult{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   3600,
		Username:    creds.Username,
	})
}

func (s *Server) handleWithdrawals(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	status := strings.ToUpper(q.Get("status"))
	username := q.Get("username")

	s.mu.Lock()
	var rows []domain.Withdrawal
	for _, wd := range s.withdrawals {
		if status != "" && string(wd.Status) != status {
			continue
		}
		if username != "" && wd.Username != username {
			continue
		}
		rows = append(rows, wd)
	}
	s.mu.Unlock()

	writeList(w, "rows", rows, q)
}

func (s *Server) handleWithdrawalDetail(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	wd, ok := s.Withdrawal(id)
	if !ok {
		writeEnvelope(w, http.StatusNotFound, false, "Withdrawal not found", nil)
		return
	}
	writeEnvelope(w, http.StatusOK, true, "", domain.WithdrawalDetail{
		Withdrawal: wd,
		Logs: []domain.WithdrawalLog{{
			ID: 1, WithdrawalID: wd.ID, Username: wd.Username, Action: "CREATED", CreatedAt: wd.CreatedAt,
		}},
	})
}

func (s *Server) handleDecision(to domain.WithdrawalStatus) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var decision domain.WithdrawalDecision
		if err := json.NewDecoder(r.Body).Decode(&decision); err != nil {
			writeEnvelope(w, http.StatusBadRequest, false, "invalid body", nil)
			return
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, wd := range s.withdrawals {
			if wd.ID != decision.ID {
				continue
			}
			if wd.Status != domain.WithdrawalPending {
				writeEnvelope(w, http.StatusUnprocessableEntity, false, "Withdrawal already processed", nil)
				return
			}
			s.withdrawals[i].Status = to
			s.withdrawals[i].Remark = decision.Remark
			writeEnvelope(w, http.StatusOK, true, "Withdrawal "+strings.ToLower(string(to)), nil)
			return
		}
		writeEnvelope(w, http.StatusNotFound, false, "Withdrawal not found", nil)
	}
}

func (s *Server) handleMembers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	username := q.Get("username")
	s.mu.Lock()
	var rows []domain.Member
	for _, m := range s.members {
		if username != "" && !strings.Contains(m.Username, username) {
			continue
		}
		rows = append(rows, m)
	}
	s.mu.Unlock()
	writeList(w, "rows", rows, q)
}

func (s *Server) handleMember(w http.ResponseWriter, r *http.Request) {
	username := mux.Vars(r)["username"]
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.members {
		if m.Username == username {
			writeEnvelope(w, http.StatusOK, true, "", domain.MemberDetail{Member: m})
			return
		}
	}
	writeEnvelope(w, http.StatusNotFound, false, "Member not found", nil)
}

func (s *Server) handleGameWallets(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	wallets := s.wallets[r.URL.Query().Get("username")]
	s.mu.Unlock()
	if wallets == nil {
		wallets = []domain.GameWallet{}
	}
	writeEnvelope(w, http.StatusOK, true, "", wallets)
}

func (s *Server) handleBanks(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	banks := append([]domain.WithdrawalBank(nil), s.banks...)
	s.mu.Unlock()
	writeEnvelope(w, http.StatusOK, true, "", banks)
}

func emptyList(field string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeList[struct{}](w, field, nil, r.URL.Query())
	}
}

func emptyArray(w http.ResponseWriter, r *http.Request) {
	writeEnvelope(w, http.StatusOK, true, "", []struct{}{})
}

func writeList[T any](w http.ResponseWriter, field string, rows []T, q url.Values) {
	page, _ := strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}
	perPage, _ := strconv.Atoi(q.Get("per_page"))
	if perPage < 1 {
		perPage = 10
	}
	total := len(rows)
	lastPage := (total + perPage - 1) / perPage
	if lastPage < 1 {
		lastPage = 1
	}
	start := (page - 1) * perPage
	if start > total {
		start = total
	}
	end := start + perPage
	if end > total {
		end = total
	}
	slice := rows[start:end]
	if slice == nil {
		slice = []T{}
	}
	writeEnvelope(w, http.StatusOK, true, "", map[string]any{
		field: slice,
		"pagination": domain.Pagination{
			CurrentPage: page,
			LastPage:    lastPage,
			PerPage:     perPage,
			Total:       total,
		},
	})
}

func writeEnvelope(w http.ResponseWriter, status int, ok bool, message string, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":  ok,
		"message": message,
		"data":    data,
	})
}
