package controllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"gymdesk-backend/config"
	"gymdesk-backend/models"
	"gymdesk-backend/services"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatal(err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	if err := config.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func newRouter(db *gorm.DB) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	mc := NewMemberController(services.NewMemberService(db), "")
	ic := NewInvoiceController(services.NewBillingService(db))

	r.POST("/members", mc.CreateMember)
	r.GET("/members/:id", mc.GetMember)
	r.POST("/invoices", ic.CreateInvoice)
	r.GET("/invoices/:id", ic.GetInvoice)
	r.POST("/invoices/:id/record-payment", ic.RecordPayment)
	r.POST("/payments", ic.CreatePayment)
	return r
}

func doJSON(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %s: %v", w.Body.String(), err)
	}
	return v
}

func createMember(t *testing.T, r http.Handler) models.Member {
	t.Helper()
	w := doJSON(t, r, http.MethodPost, "/members", gin.H{"name": "Zoya", "contact1": "9876543210"})
	if w.Code != http.StatusCreated {
		t.Fatalf("create member: %d %s", w.Code, w.Body.String())
	}
	return decode[models.Member](t, w)
}

func TestInvoicePaymentFlow(t *testing.T) {
	r := newRouter(newTestDB(t))
	m := createMember(t, r)

	w := doJSON(t, r, http.MethodPost, "/invoices", gin.H{
		"memberId": m.MemberCode,
		"items":    []gin.H{{"description": "Monthly plan", "quantity": 1, "unitPrice": 100}},
		"taxRate":  18,
		"discount": 10,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create invoice: %d %s", w.Code, w.Body.String())
	}
	inv := decode[models.Invoice](t, w)
	if inv.TotalAmount.String() != "108" {
		t.Fatalf("total = %s, want 108", inv.TotalAmount)
	}

	w = doJSON(t, r, http.MethodPost, "/invoices/"+inv.ID.String()+"/record-payment", gin.H{"amount": 200, "paymentMode": "cash"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("overpayment: %d %s", w.Code, w.Body.String())
	}
	if body := decode[map[string]string](t, w); body["reason"] != "exceeds_balance" {
		t.Errorf("reason = %q", body["reason"])
	}

	w = doJSON(t, r, http.MethodPost, "/invoices/"+inv.ID.String()+"/record-payment", gin.H{"amount": "50", "paymentMode": "upi"})
	if w.Code != http.StatusCreated {
		t.Fatalf("partial payment: %d %s", w.Code, w.Body.String())
	}
	resp := decode[struct {
		Invoice models.Invoice `json:"invoice"`
		Payment models.Payment `json:"payment"`
	}](t, w)
	if resp.Invoice.Status != models.InvoicePartial || resp.Invoice.BalanceAmount.String() != "58" {
		t.Errorf("after 50: %s balance %s", resp.Invoice.Status, resp.Invoice.BalanceAmount)
	}

	w = doJSON(t, r, http.MethodPost, "/payments", gin.H{"invoiceId": inv.ID, "amount": 58})
	if w.Code != http.StatusCreated {
		t.Fatalf("final payment: %d %s", w.Code, w.Body.String())
	}

	w = doJSON(t, r, http.MethodGet, "/invoices/"+inv.ID.String(), nil)
	if got := decode[models.Invoice](t, w); got.Status != models.InvoicePaid {
		t.Errorf("status = %s, want paid", got.Status)
	}
}

func TestInvoiceErrors(t *testing.T) {
	r := newRouter(newTestDB(t))

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		want   int
	}{
		{"unknown invoice", http.MethodGet, "/invoices/" + uuid.NewString(), nil, http.StatusNotFound},
		{"malformed id", http.MethodGet, "/invoices/not-a-uuid", nil, http.StatusBadRequest},
		{"no items", http.MethodPost, "/invoices", gin.H{"memberId": "MEM000001"}, http.StatusBadRequest},
		{"unknown member", http.MethodPost, "/invoices", gin.H{
			"memberId": "MEM000001",
			"items":    []gin.H{{"description": "x", "quantity": 1, "unitPrice": 5}},
		}, http.StatusNotFound},
		{"payment without invoice", http.MethodPost, "/payments", gin.H{"amount": 5}, http.StatusBadRequest},
		{"bad member phone", http.MethodPost, "/members", gin.H{"name": "A", "contact1": "phone"}, http.StatusBadRequest},
		{"member without name", http.MethodPost, "/members", gin.H{"contact1": "9876543210"}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, r, tt.method, tt.path, tt.body)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d (%s)", w.Code, tt.want, w.Body.String())
			}
		})
	}
}
