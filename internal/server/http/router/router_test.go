package router

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/stampcard/internal/app"
	"github.com/polkiloo/stampcard/internal/config"
	"github.com/polkiloo/stampcard/internal/domain/model"
	pkgAuth "github.com/polkiloo/stampcard/internal/pkg/auth"
	"github.com/polkiloo/stampcard/internal/server/http/dto"
	"github.com/polkiloo/stampcard/internal/server/http/handlers"
	"github.com/polkiloo/stampcard/internal/server/http/middleware"
	testhelpers "github.com/polkiloo/stampcard/internal/test"
	"github.com/polkiloo/stampcard/internal/usecase"
)

var (
	_ handlers.StampCardFacade = (*app.StampCardFacade)(nil)
	_ middleware.KeyVerifier   = (*pkgAuth.OperatorVerifier)(nil)
)

func newEngine(t *testing.T, verifier middleware.KeyVerifier) (*gin.Engine, *testhelpers.LoyaltyGatewayStub, *testhelpers.ActivityJournalStub) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	cfg := &config.Config{
		BusinessName:    "Corner Cafe",
		StampsPerCard:   4,
		DefaultCouponID: 230,
		StampEmoji:      "*",
		EmptySlotEmoji:  ".",
		RequestTimeout:  time.Second,
	}
	gateway := &testhelpers.LoyaltyGatewayStub{Cards: []model.StampCard{
		{RecordID: "11", MemberID: 42, Stamps: 3, CardsFilled: 1, RewardsEarned: 1},
	}}
	journal := &testhelpers.ActivityJournalStub{}
	workflow := usecase.NewStampCardUseCase(gateway, model.Rules{StampsPerCard: 4, AllowDuplicateCoupons: true})
	facade := app.NewStampCardFacade(workflow, journal, cfg, logger)
	return Setup(facade, verifier, logger), gateway, journal
}

func post(engine *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	data, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	engine.ServeHTTP(resp, req)
	return resp
}

func TestSetupRoutes(t *testing.T) {
	engine, gateway, journal := newEngine(t, &testhelpers.KeyVerifierStub{})

	resp := httptest.NewRecorder()
	engine.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/settings", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200 for settings, got %d", resp.Code)
	}

	resp = post(engine, "/api/stampcard/fetch", map[string]any{"username": "staff", "password": "pw", "member_id": 42})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200 for fetch, got %d: %s", resp.Code, resp.Body.String())
	}

	resp = post(engine, "/api/stampcard/update", map[string]any{"username": "staff", "password": "pw", "member_id": 42, "stamps": 4})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200 for update, got %d: %s", resp.Code, resp.Body.String())
	}
	var body dto.WorkflowResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode update: %v", err)
	}
	if body.Card == nil || body.Card.Stamps != 0 || body.Card.CardsFilled != 2 || body.Card.RewardsEarned != 2 {
		t.Fatalf("unexpected card after completion %+v", body.Card)
	}
	if len(gateway.Assignments) != 1 || gateway.Assignments[0].CouponID != 230 {
		t.Fatalf("expected default coupon to be assigned, got %+v", gateway.Assignments)
	}

	resp = httptest.NewRecorder()
	engine.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/activity/42", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200 for activity, got %d", resp.Code)
	}
	if got := len(journal.Snapshot()); got != 2 {
		t.Fatalf("expected two journaled runs, got %d", got)
	}
}

func TestSetupRejectsInvalidOperatorKey(t *testing.T) {
	engine, gateway, _ := newEngine(t, &testhelpers.KeyVerifierStub{Err: pkgAuth.ErrInvalidKey})

	resp := post(engine, "/api/stampcard/fetch", map[string]any{"username": "staff", "password": "pw", "member_id": 42})
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}
	if calls := gateway.CallLog(); len(calls) != 0 {
		t.Fatalf("expected no gateway calls, got %v", calls)
	}
}

func TestSetupValidationBeforeNetwork(t *testing.T) {
	engine, gateway, _ := newEngine(t, &testhelpers.KeyVerifierStub{})

	resp := post(engine, "/api/stampcard/update", map[string]any{"username": "staff", "password": "pw", "member_id": 42, "stamps": 9})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
	if calls := gateway.CallLog(); len(calls) != 0 {
		t.Fatalf("expected no gateway calls, got %v", calls)
	}
}
