package test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
)

// TwinCard is a stamp card row held by LoyaltyTwin.
type TwinCard struct {
	RecordID      int64 `json:"recid"`
	MemberID      int64 `json:"member_recid"`
	Stamps        int   `json:"no_of_stamps"`
	CardsFilled   int   `json:"no_of_cards_filled"`
	RewardsEarned int   `json:"no_of_rewards_earned"`
}

// TwinCoupon records one coupon assignment received by LoyaltyTwin.
type TwinCoupon struct {
	CouponID        int64
	Members         []int64
	CreateDuplicate *bool
}

// LoyaltyTwin is an in-memory fake of the loyalty REST API.
type LoyaltyTwin struct {
	Username string
	Password string
	AuthType string

	mu       sync.Mutex
	cards    map[int64]TwinCard
	tokens   map[string]bool
	coupons  []TwinCoupon
	calls    []string
	failures map[string]int
	nextTok  int
}

// NewLoyaltyTwin creates twin accepting the provided credentials.
func NewLoyaltyTwin(username, password string) *LoyaltyTwin {
	return &LoyaltyTwin{
		Username: username,
		Password: password,
		AuthType: "U",
		cards:    make(map[int64]TwinCard),
		tokens:   make(map[string]bool),
		failures: make(map[string]int),
	}
}

// Serve starts an httptest server for the twin and closes it on test cleanup.
func (tw *LoyaltyTwin) Serve(t *testing.T) string {
	t.Helper()
	srv := httptest.NewServer(tw.Handler())
	t.Cleanup(srv.Close)
	return srv.URL
}

// Handler returns chi router implementing the loyalty endpoints.
func (tw *LoyaltyTwin) Handler() http.Handler {
	r := chi.NewRouter()
	r.Post("/login", tw.login)
	r.Group(func(r chi.Router) {
		r.Use(tw.requireToken)
		r.Get("/stampcard", tw.listCards)
		r.Get("/stampcard/{recid}", tw.getCard)
		r.Put("/stampcard/{recid}", tw.updateCard)
		r.Post("/coupons/{couponID}/create", tw.createCoupon)
	})
	return r
}

// PutCard stores or replaces a card.
func (tw *LoyaltyTwin) PutCard(card TwinCard) {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	tw.cards[card.RecordID] = card
}

// Card returns stored card by record id.
func (tw *LoyaltyTwin) Card(recordID int64) (TwinCard, bool) {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	card, ok := tw.cards[recordID]
	return card, ok
}

// Coupons returns received coupon assignments in arrival order.
func (tw *LoyaltyTwin) Coupons() []TwinCoupon {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	return append([]TwinCoupon(nil), tw.coupons...)
}

// Calls returns "METHOD route" entries in arrival order.
func (tw *LoyaltyTwin) Calls() []string {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	return append([]string(nil), tw.calls...)
}

// FailNext makes the next request to route ("METHOD pattern") answer with status.
func (tw *LoyaltyTwin) FailNext(route string, status int) {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	tw.failures[route] = status
}

func (tw *LoyaltyTwin) record(r *http.Request, pattern string) (int, bool) {
	route := r.Method + " " + pattern
	tw.mu.Lock()
	defer tw.mu.Unlock()
	tw.calls = append(tw.calls, route)
	if status, ok := tw.failures[route]; ok {
		delete(tw.failures, route)
		return status, true
	}
	return 0, false
}

func (tw *LoyaltyTwin) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := r.Header.Get("X-Redcat-Authtoken")
		tw.mu.Lock()
		ok := tw.tokens[token]
		tw.mu.Unlock()
		if !ok {
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (tw *LoyaltyTwin) login(w http.ResponseWriter, r *http.Request) {
	if status, fail := tw.record(r, "/login"); fail {
		writeError(w, status, "injected failure")
		return
	}
	var req struct {
		Username string `json:"username"`
		Password string `json:"psw"`
		AuthType string `json:"auth_type"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Username != tw.Username || req.Password != tw.Password || req.AuthType != tw.AuthType {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	tw.mu.Lock()
	tw.nextTok++
	token := fmt.Sprintf("tok-%d", tw.nextTok)
	tw.tokens[token] = true
	tw.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

func (tw *LoyaltyTwin) listCards(w http.ResponseWriter, r *http.Request) {
	if status, fail := tw.record(r, "/stampcard"); fail {
		writeError(w, status, "injected failure")
		return
	}
	tw.mu.Lock()
	cards := make([]TwinCard, 0, len(tw.cards))
	for _, c := range tw.cards {
		cards = append(cards, c)
	}
	tw.mu.Unlock()
	sort.Slice(cards, func(i, j int) bool { return cards[i].RecordID < cards[j].RecordID })
	writeJSON(w, http.StatusOK, map[string]any{"data": cards})
}

func (tw *LoyaltyTwin) getCard(w http.ResponseWriter, r *http.Request) {
	if status, fail := tw.record(r, "/stampcard/{recid}"); fail {
		writeError(w, status, "injected failure")
		return
	}
	card, ok := tw.lookup(chi.URLParam(r, "recid"))
	if !ok {
		writeError(w, http.StatusNotFound, "stampcard not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": card})
}

func (tw *LoyaltyTwin) updateCard(w http.ResponseWriter, r *http.Request) {
	if status, fail := tw.record(r, "/stampcard/{recid}"); fail {
		writeError(w, status, "injected failure")
		return
	}
	card, ok := tw.lookup(chi.URLParam(r, "recid"))
	if !ok {
		writeError(w, http.StatusNotFound, "stampcard not found")
		return
	}
	var req TwinCard
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	card.MemberID = req.MemberID
	card.Stamps = req.Stamps
	card.CardsFilled = req.CardsFilled
	card.RewardsEarned = req.RewardsEarned
	tw.PutCard(card)
	writeJSON(w, http.StatusOK, map[string]any{"data": card})
}

func (tw *LoyaltyTwin) createCoupon(w http.ResponseWriter, r *http.Request) {
	if status, fail := tw.record(r, "/coupons/{couponID}/create"); fail {
		writeError(w, status, "injected failure")
		return
	}
	couponID, err := strconv.ParseInt(chi.URLParam(r, "couponID"), 10, 64)
	if err != nil {
		writeError(w, http.StatusNotFound, "coupon not found")
		return
	}
	var req struct {
		Members         []int64 `json:"Members"`
		HandleErrors    bool    `json:"HandleErrors"`
		ReturnAlias     bool    `json:"ReturnAlias"`
		CreateDuplicate *bool   `json:"create_duplicate"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	tw.mu.Lock()
	tw.coupons = append(tw.coupons, TwinCoupon{CouponID: couponID, Members: req.Members, CreateDuplicate: req.CreateDuplicate})
	tw.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": map[string]any{"coupon": couponID, "members": req.Members}})
}

func (tw *LoyaltyTwin) lookup(raw string) (TwinCard, bool) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return TwinCard{}, false
	}
	return tw.Card(id)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"success": false, "error": message, "code": status})
}
