package di

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/polkiloo/stampcard/internal/app"
	"github.com/polkiloo/stampcard/internal/config"
	"github.com/polkiloo/stampcard/internal/domain/model"
	"github.com/polkiloo/stampcard/internal/domain/repository"
	"github.com/polkiloo/stampcard/internal/test"
)

func testConfig() *config.Config {
	return &config.Config{
		RunAddress:      ":0",
		APIBaseURL:      "http://localhost",
		AuthType:        "staff",
		RequestTimeout:  time.Second,
		ShutdownTimeout: time.Millisecond,
		BusinessName:    "Corner Cafe",
		StampsPerCard:   4,
		DefaultCouponID: 230,
	}
}

func TestModuleComposesGraphWithReplacements(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	gateway := &test.LoyaltyGatewayStub{Cards: []model.StampCard{{RecordID: "1", MemberID: 7, Stamps: 1}}}
	journal := &test.ActivityJournalStub{}

	var (
		facade *app.StampCardFacade
		engine *gin.Engine
	)
	fxApp := fx.New(
		fx.NopLogger,
		fx.Supply(context.Background()),
		Module(
			fx.Replace(testConfig()),
			fx.Replace(logger),
			fx.Replace(fx.Annotate(gateway, fx.As(new(repository.LoyaltyGateway)))),
			fx.Replace(fx.Annotate(journal, fx.As(new(repository.ActivityJournal)))),
		),
		fx.Populate(&facade, &engine),
	)

	if err := fxApp.Err(); err != nil {
		t.Fatalf("fx app returned error: %v", err)
	}
	t.Cleanup(func() { _ = fxApp.Stop(context.Background()) })
	if facade == nil || engine == nil {
		t.Fatal("expected facade and router instances")
	}

	result, err := facade.FetchStampCard(context.Background(), model.Credentials{Username: "staff", Password: "pw"}, 7)
	if err != nil {
		t.Fatalf("fetch through graph: %v", err)
	}
	if result.Card.Stamps != 1 {
		t.Fatalf("unexpected card %+v", result.Card)
	}
	if len(journal.Snapshot()) != 1 {
		t.Fatal("expected replaced journal to record the run")
	}

	resp := httptest.NewRecorder()
	engine.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/settings", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected open settings without operator hash, got %d", resp.Code)
	}
}

func TestModuleRejectsMalformedOperatorHash(t *testing.T) {
	cfg := testConfig()
	cfg.OperatorKeyHash = "not-a-bcrypt-hash"

	fxApp := fx.New(
		fx.NopLogger,
		fx.Supply(context.Background()),
		Module(
			fx.Replace(cfg),
			fx.Replace(slog.New(slog.NewJSONHandler(io.Discard, nil))),
		),
		fx.Invoke(func(*gin.Engine) {}),
	)
	if fxApp.Err() == nil {
		t.Fatal("expected malformed operator hash to fail graph construction")
	}
}
