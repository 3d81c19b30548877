package handlers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	dom "github.com/SixTanDev/BTG/internal/domain"
	"github.com/SixTanDev/BTG/internal/dto"
	"github.com/SixTanDev/BTG/internal/repo"
	"github.com/SixTanDev/BTG/internal/service"

	"github.com/gin-gonic/gin"
)

const cop = 100

func newTestRouter() (*gin.Engine, *repo.MemoryStore) {
	gin.SetMode(gin.TestMode)

	store := repo.NewMemoryStore()
	store.PutUser(dom.User{
		ID: "usr-1", Name: "Emmanuel", Email: "emmanuel@example.com",
		Phone: "+573001112233", Balance: 500000 * cop, Version: 1,
		Channels: []string{dom.ChannelEmail},
	})
	store.PutFund(dom.Fund{ID: "fund_2", Name: "FPV_BTG_PACTUAL_ECOPETROL", Category: "FPV", MinimumAmount: 50000 * cop})
	store.PutFund(dom.Fund{ID: "fund_3", Name: "DEUDAPRIVADA", Category: "FIC", MinimumAmount: 50000 * cop})

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	ledgerSvc := service.NewLedgerService(store.Users(), store.Funds(), store.Transactions(), nil, nil, log)
	fundSvc := service.NewFundService(store.Funds(), nil)
	userSvc := service.NewUserService(store.Users(), store.Transactions())

	ledger := NewLedgerHandler(ledgerSvc)
	funds := NewFundHandler(fundSvc)
	users := NewUserHandler(userSvc)
	statement := NewStatementHandler(userSvc)

	r := gin.New()
	api := r.Group("/api/v1")
	api.POST("/subscriptions", ledger.Subscribe)
	api.POST("/subscriptions/cancel", ledger.Cancel)
	api.GET("/users/:id", users.GetInfo)
	api.GET("/users/:id/balance", ledger.Balance)
	api.GET("/users/:id/transactions", ledger.History)
	api.GET("/users/:id/statement", statement.Statement)
	api.GET("/funds", funds.List)
	api.GET("/funds/:id", funds.Get)
	return r, store
}

func doJSON(t *testing.T, r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestSubscribeEndpoint(t *testing.T) {
	r, _ := newTestRouter()

	rec := doJSON(t, r, http.MethodPost, "/api/v1/subscriptions",
		`{"user_id":"usr-1","fund_id":"fund_2","amount":100000}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var resp dto.TransactionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Kind != dom.KindSubscribe || resp.Status != dom.StatusCommitted {
		t.Fatalf("unexpected transaction %+v", resp)
	}
	if resp.BalanceAfter != "400000" {
		t.Fatalf("balance_after = %s, want 400000", resp.BalanceAfter)
	}
}

func TestSubscribeEndpointValidation(t *testing.T) {
	r, store := newTestRouter()

	// Missing fund_id fails binding.
	rec := doJSON(t, r, http.MethodPost, "/api/v1/subscriptions",
		`{"user_id":"usr-1","amount":100000}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}

	// Missing and zero amounts fail binding before reaching the ledger,
	// so no audit record is written.
	for _, body := range []string{
		`{"user_id":"usr-1","fund_id":"fund_2"}`,
		`{"user_id":"usr-1","fund_id":"fund_2","amount":0}`,
	} {
		rec = doJSON(t, r, http.MethodPost, "/api/v1/subscriptions", body)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400 for %s", rec.Code, body)
		}
	}
	if list, _ := store.Transactions().ListByUser(context.Background(), "usr-1"); len(list) != 0 {
		t.Fatalf("malformed requests left %d audit records", len(list))
	}

	// Unknown fund maps to 404 and records the reason.
	rec = doJSON(t, r, http.MethodPost, "/api/v1/subscriptions",
		`{"user_id":"usr-1","fund_id":"fund_999","amount":100000}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["reason"] != dom.ReasonFundNotFound {
		t.Fatalf("reason = %q, want %q", body["reason"], dom.ReasonFundNotFound)
	}

	// Insufficient balance maps to 400.
	rec = doJSON(t, r, http.MethodPost, "/api/v1/subscriptions",
		`{"user_id":"usr-1","fund_id":"fund_2","amount":600000}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestSubscribeEndpointConflict(t *testing.T) {
	r, _ := newTestRouter()

	body := `{"user_id":"usr-1","fund_id":"fund_2","amount":100000}`
	if rec := doJSON(t, r, http.MethodPost, "/api/v1/subscriptions", body); rec.Code != http.StatusCreated {
		t.Fatalf("first subscribe: %d", rec.Code)
	}
	rec := doJSON(t, r, http.MethodPost, "/api/v1/subscriptions", body)
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
}

func TestCancelEndpoint(t *testing.T) {
	r, _ := newTestRouter()

	doJSON(t, r, http.MethodPost, "/api/v1/subscriptions",
		`{"user_id":"usr-1","fund_id":"fund_2","amount":100000}`)

	rec := doJSON(t, r, http.MethodPost, "/api/v1/subscriptions/cancel",
		`{"user_id":"usr-1","fund_id":"fund_2"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var resp dto.TransactionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Kind != dom.KindCancel || resp.BalanceAfter != "500000" {
		t.Fatalf("unexpected transaction %+v", resp)
	}

	rec = doJSON(t, r, http.MethodPost, "/api/v1/subscriptions/cancel",
		`{"user_id":"usr-1","fund_id":"fund_2"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("second cancel status = %d, want 400", rec.Code)
	}
}

func TestBalanceEndpoint(t *testing.T) {
	r, _ := newTestRouter()

	rec := doJSON(t, r, http.MethodGet, "/api/v1/users/usr-1/balance", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp dto.BalanceResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Balance != "500000" {
		t.Fatalf("balance = %s, want 500000", resp.Balance)
	}

	rec = doJSON(t, r, http.MethodGet, "/api/v1/users/missing/balance", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestHistoryEndpoint(t *testing.T) {
	r, _ := newTestRouter()

	doJSON(t, r, http.MethodPost, "/api/v1/subscriptions",
		`{"user_id":"usr-1","fund_id":"fund_2","amount":100000}`)
	doJSON(t, r, http.MethodPost, "/api/v1/subscriptions",
		`{"user_id":"usr-1","fund_id":"fund_3","amount":40000}`)

	rec := doJSON(t, r, http.MethodGet, "/api/v1/users/usr-1/transactions", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp dto.ListTransactionsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Items) != 2 {
		t.Fatalf("items = %d, want 2", len(resp.Items))
	}
	if resp.Items[1].Status != dom.StatusRejected || resp.Items[1].Reason != dom.ReasonBelowMinimum {
		t.Fatalf("rejected audit record missing: %+v", resp.Items[1])
	}
}

func TestUserInfoEndpoint(t *testing.T) {
	r, _ := newTestRouter()

	doJSON(t, r, http.MethodPost, "/api/v1/subscriptions",
		`{"user_id":"usr-1","fund_id":"fund_2","amount":100000}`)

	rec := doJSON(t, r, http.MethodGet, "/api/v1/users/usr-1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp dto.UserResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Balance != "400000" || len(resp.Subscriptions) != 1 || len(resp.Transactions) != 1 {
		t.Fatalf("unexpected user info %+v", resp)
	}
}

func TestFundsEndpoint(t *testing.T) {
	r, _ := newTestRouter()

	rec := doJSON(t, r, http.MethodGet, "/api/v1/funds", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp dto.ListFundsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Items) != 2 {
		t.Fatalf("items = %d, want 2", len(resp.Items))
	}
}

func TestFundGetEndpoint(t *testing.T) {
	r, _ := newTestRouter()

	rec := doJSON(t, r, http.MethodGet, "/api/v1/funds/fund_2", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp dto.FundResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Name != "FPV_BTG_PACTUAL_ECOPETROL" || resp.MinimumAmount != "50000" {
		t.Fatalf("unexpected fund %+v", resp)
	}

	rec = doJSON(t, r, http.MethodGet, "/api/v1/funds/fund_999", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestStatementEndpoint(t *testing.T) {
	r, _ := newTestRouter()

	doJSON(t, r, http.MethodPost, "/api/v1/subscriptions",
		`{"user_id":"usr-1","fund_id":"fund_2","amount":100000}`)

	rec := doJSON(t, r, http.MethodGet, "/api/v1/users/usr-1/statement", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Fatalf("content type = %s, want application/pdf", ct)
	}
	if !strings.HasPrefix(rec.Body.String(), "%PDF") {
		t.Fatal("body is not a PDF document")
	}

	rec = doJSON(t, r, http.MethodGet, "/api/v1/users/missing/statement", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}
