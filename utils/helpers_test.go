package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"gymdesk-backend/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func TestGenerateMemberCode(t *testing.T) {
	pattern := regexp.MustCompile(`^MEM\d{6}$`)
	for i := 0; i < 50; i++ {
		if code := GenerateMemberCode(); !pattern.MatchString(code) {
			t.Fatalf("code %q does not match MEM + 6 digits", code)
		}
	}
}

func TestHashTemplate(t *testing.T) {
	a, b := HashTemplate("template-a"), HashTemplate("template-a")
	if a != b || len(a) != 64 {
		t.Errorf("hash = %q, %q", a, b)
	}
	if HashTemplate("template-b") == a {
		t.Error("different templates hash equal")
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-03-10")
	if err != nil || !d.Equal(time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("ParseDate(date) = %v, %v", d, err)
	}
	ts, err := ParseDate("2025-03-10T18:45:00Z")
	if err != nil || ts.Hour() != 18 {
		t.Errorf("ParseDate(rfc3339) = %v, %v", ts, err)
	}
	if _, err := ParseDate("10/03/2025"); err == nil {
		t.Error("expected error for dd/mm/yyyy")
	}
}

func TestDayHelpers(t *testing.T) {
	at := time.Date(2025, 3, 10, 14, 5, 0, 0, time.UTC)
	if got := BeginningOfDay(at); !got.Equal(time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("BeginningOfDay = %v", got)
	}
	if got := EndOfDay(at); got.Day() != 10 || got.Hour() != 23 || got.Minute() != 59 {
		t.Errorf("EndOfDay = %v", got)
	}
	if got := DaysBetween(at, at.AddDate(0, 0, 3).Add(-10*time.Hour)); got != 3 {
		t.Errorf("DaysBetween = %d, want 3", got)
	}
}

func TestValidation(t *testing.T) {
	phones := map[string]bool{
		"+91 98765 43210": true,
		"9876543210":      true,
		"(022) 2345-678":  false,
		"abc":             false,
	}
	for in, want := range phones {
		if got := ValidatePhone(in); got != want {
			t.Errorf("ValidatePhone(%q) = %v, want %v", in, got, want)
		}
	}
	if !ValidateEmail("desk@gym.example") || ValidateEmail("desk@") {
		t.Error("email validation mismatch")
	}
}

func TestRespondWithServiceError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tests := []struct {
		name   string
		err    error
		status int
		reason string
	}{
		{"rule", models.ErrExceedsBalance, http.StatusBadRequest, "exceeds_balance"},
		{"wrapped rule", fmt.Errorf("pay: %w", models.ErrNoSessions), http.StatusBadRequest, "no_sessions"},
		{"not found", models.NotFound("invoice"), http.StatusNotFound, ""},
		{"gorm not found", gorm.ErrRecordNotFound, http.StatusNotFound, ""},
		{"conflict", models.ErrConflict, http.StatusConflict, ""},
		{"duplicate", gorm.ErrDuplicatedKey, http.StatusConflict, ""},
		{"other", errors.New("disk full"), http.StatusInternalServerError, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
			RespondWithServiceError(c, tt.err)
			if w.Code != tt.status {
				t.Fatalf("status = %d, want %d", w.Code, tt.status)
			}
			var body map[string]any
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			if body["error"] == "" {
				t.Error("missing error message")
			}
			if tt.reason != "" && body["reason"] != tt.reason {
				t.Errorf("reason = %v, want %s", body["reason"], tt.reason)
			}
		})
	}
}
