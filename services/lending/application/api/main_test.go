package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/sessions"

	"github.com/ghuser/lendingdesk/pkg/auth"
	"github.com/ghuser/lendingdesk/pkg/config"
	"github.com/ghuser/lendingdesk/pkg/httpx"
	"github.com/ghuser/lendingdesk/pkg/logger"
	"github.com/ghuser/lendingdesk/services/lending/application/handlers"
	appsvcs "github.com/ghuser/lendingdesk/services/lending/application/services"
	domainsvcs "github.com/ghuser/lendingdesk/services/lending/domain/services"
	"github.com/ghuser/lendingdesk/services/lending/infrastructure/persistence/memory"
)

type testServer struct {
	t     *testing.T
	h     http.Handler
	now   time.Time
	admin uuid.UUID
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	log := logger.New(&config.Config{LogLevel: "error"})
	ts := &testServer{t: t, now: time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC), admin: uuid.New()}
	svcs := appsvcs.NewWithDeps(appsvcs.Deps{
		Store:       memory.NewStore(),
		Policy:      domainsvcs.DefaultPolicy(),
		Clock:       func() time.Time { return ts.now },
		Logger:      log,
		SweepOnRead: true,
	})
	store := sessions.NewCookieStore([]byte("0123456789abcdef0123456789abcdef"))
	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		Mount(r, svcs, auth.RequireAuth(store, log, auth.Options{TrustHeaders: true}), log)
	})
	ts.h = r
	return ts
}

func (ts *testServer) do(method, path string, user uuid.UUID, role string, body any, out any) int {
	ts.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			ts.t.Fatalf("encode: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if user != uuid.Nil {
		req.Header.Set(auth.HeaderUserID, user.String())
		req.Header.Set(auth.HeaderRole, role)
	}
	rec := httptest.NewRecorder()
	ts.h.ServeHTTP(rec, req)
	if out != nil && rec.Code < 300 {
		if err := json.NewDecoder(rec.Body).Decode(out); err != nil {
			ts.t.Fatalf("decode %s %s: %v", method, path, err)
		}
	}
	return rec.Code
}

func (ts *testServer) asAdmin(method, path string, body any, out any) int {
	ts.t.Helper()
	return ts.do(method, path, ts.admin, "admin", body, out)
}

func (ts *testServer) createItem(serial string, stock int) handlers.ItemResponse {
	ts.t.Helper()
	var item handlers.ItemResponse
	code := ts.asAdmin(http.MethodPost, "/api/admin/items", handlers.ItemRequest{
		SerialNumber: serial, Name: "Projector", ItemType: "AV", Stock: stock,
	}, &item)
	if code != http.StatusCreated {
		ts.t.Fatalf("create item: status %d", code)
	}
	return item
}

func TestBorrowFlow(t *testing.T) {
	ts := newTestServer(t)
	user := uuid.New()
	item := ts.createItem("PRJ-1", 3)

	var b handlers.BorrowResponse
	if code := ts.do(http.MethodPost, "/api/items/"+item.ID.String()+"/borrow", user, "user",
		handlers.BorrowRequest{Quantity: 2}, &b); code != http.StatusCreated {
		t.Fatalf("request borrow: status %d", code)
	}
	if b.Status != "Pending" {
		t.Fatalf("expected Pending, got %s", b.Status)
	}

	if code := ts.asAdmin(http.MethodPost, "/api/admin/borrows/"+b.ID.String()+"/approve", nil, &b); code != http.StatusOK {
		t.Fatalf("approve: status %d", code)
	}
	if b.DueDate == nil || *b.DueDate != "2026-03-13" {
		t.Fatalf("expected due date 2026-03-13, got %v", b.DueDate)
	}

	// five days past due
	ts.now = ts.now.AddDate(0, 0, 8)

	var mine httpx.Page[handlers.BorrowResponse]
	if code := ts.do(http.MethodGet, "/api/me/borrows", user, "user", nil, &mine); code != http.StatusOK {
		t.Fatalf("list my borrows: status %d", code)
	}
	if mine.Total != 1 || mine.Data[0].Status != "Overdue" {
		t.Fatalf("expected one Overdue borrow, got %+v", mine)
	}

	var pens httpx.Page[handlers.PenaltyResponse]
	if code := ts.do(http.MethodGet, "/api/me/penalties", user, "user", nil, &pens); code != http.StatusOK {
		t.Fatalf("list my penalties: status %d", code)
	}
	if pens.Total != 1 || pens.Data[0].Amount != "250.00" || pens.Data[0].Status != "Unpaid" {
		t.Fatalf("expected one unpaid 250.00 penalty, got %+v", pens)
	}

	if code := ts.asAdmin(http.MethodPut, "/api/admin/borrows/"+b.ID.String()+"/status",
		handlers.StatusRequest{Status: "Returned"}, &b); code != http.StatusOK {
		t.Fatalf("return via status: status %d", code)
	}

	var got handlers.ItemResponse
	ts.do(http.MethodGet, "/api/items/"+item.ID.String(), user, "user", nil, &got)
	if got.Stock != 3 {
		t.Fatalf("expected stock 3 after return, got %d", got.Stock)
	}

	var pen handlers.PenaltyResponse
	if code := ts.asAdmin(http.MethodPost, "/api/admin/penalties/"+pens.Data[0].ID.String()+"/pay", nil, &pen); code != http.StatusOK {
		t.Fatalf("pay: status %d", code)
	}
	if pen.Status != "Paid" || pen.PaidAt == nil {
		t.Fatalf("expected Paid penalty, got %+v", pen)
	}

	var rep handlers.ReportResponse
	if code := ts.asAdmin(http.MethodGet, "/api/admin/reports", nil, &rep); code != http.StatusOK {
		t.Fatalf("report: status %d", code)
	}
	if rep.ReturnedBorrows != 1 || rep.PaidPenalties != 1 || rep.TotalCollected != "250.00" {
		t.Fatalf("unexpected report %+v", rep)
	}
}

func TestErrorStatuses(t *testing.T) {
	ts := newTestServer(t)
	user := uuid.New()
	item := ts.createItem("PRJ-2", 1)

	tests := []struct {
		name   string
		method string
		path   string
		user   uuid.UUID
		role   string
		body   any
		want   int
	}{
		{"no identity", http.MethodGet, "/api/items", uuid.Nil, "", nil, http.StatusUnauthorized},
		{"user on admin route", http.MethodGet, "/api/admin/borrows", user, "user", nil, http.StatusForbidden},
		{"bad id", http.MethodGet, "/api/items/not-a-uuid", user, "user", nil, http.StatusBadRequest},
		{"unknown item", http.MethodGet, "/api/items/" + uuid.NewString(), user, "user", nil, http.StatusNotFound},
		{"over stock", http.MethodPost, "/api/items/" + item.ID.String() + "/borrow", user, "user",
			handlers.BorrowRequest{Quantity: 2}, http.StatusConflict},
		{"zero quantity", http.MethodPost, "/api/items/" + item.ID.String() + "/borrow", user, "user",
			handlers.BorrowRequest{Quantity: 0}, http.StatusUnprocessableEntity},
		{"duplicate serial", http.MethodPost, "/api/admin/items", ts.admin, "admin",
			handlers.ItemRequest{SerialNumber: "PRJ-2", Name: "Other", ItemType: "AV", Stock: 1}, http.StatusConflict},
		{"bad condition", http.MethodPut, "/api/admin/items/" + item.ID.String() + "/condition", ts.admin, "admin",
			handlers.ConditionRequest{Condition: "Broken"}, http.StatusUnprocessableEntity},
		{"unknown borrow", http.MethodPost, "/api/admin/borrows/" + uuid.NewString() + "/return", ts.admin, "admin",
			nil, http.StatusNotFound},
		{"bad limit", http.MethodGet, "/api/admin/borrows?limit=-1", ts.admin, "admin", nil, http.StatusBadRequest},
		{"bad status filter", http.MethodGet, "/api/admin/penalties?status=Waived", ts.admin, "admin", nil, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if code := ts.do(tt.method, tt.path, tt.user, tt.role, tt.body, nil); code != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, code)
			}
		})
	}
}

func TestInvalidTransitionIsConflict(t *testing.T) {
	ts := newTestServer(t)
	item := ts.createItem("PRJ-3", 2)

	var b handlers.BorrowResponse
	ts.do(http.MethodPost, "/api/items/"+item.ID.String()+"/borrow", uuid.New(), "user", handlers.BorrowRequest{Quantity: 1}, &b)

	code := ts.asAdmin(http.MethodPut, "/api/admin/borrows/"+b.ID.String()+"/status", handlers.StatusRequest{Status: "Overdue"}, nil)
	if code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", code)
	}
	code = ts.asAdmin(http.MethodPost, "/api/admin/borrows/"+b.ID.String()+"/cancel-overdue", nil, nil)
	if code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", code)
	}
}

func TestAdminSweep(t *testing.T) {
	ts := newTestServer(t)
	item := ts.createItem("PRJ-4", 2)
	var b handlers.BorrowResponse
	ts.do(http.MethodPost, "/api/items/"+item.ID.String()+"/borrow", uuid.New(), "user", handlers.BorrowRequest{Quantity: 1}, &b)
	ts.asAdmin(http.MethodPost, "/api/admin/borrows/"+b.ID.String()+"/approve", nil, nil)
	ts.now = ts.now.AddDate(0, 0, 4)

	var res handlers.SweepResponse
	if code := ts.asAdmin(http.MethodPost, "/api/admin/borrows/sweep", nil, &res); code != http.StatusOK {
		t.Fatalf("sweep: status %d", code)
	}
	if res.Marked != 1 {
		t.Fatalf("expected 1 marked, got %d", res.Marked)
	}
}
