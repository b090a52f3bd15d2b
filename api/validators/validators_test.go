package validators

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	pkgerrors "github.com/xfinds/xfinds-backend/pkg/errors"
)

type addBody struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity" validate:"gte=0,lte=99"`
}

func TestDecodeJSONBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"productId":"p1","quantity":2}`))
	var body addBody
	if err := DecodeJSONBody(req, &body); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if body.ProductID != "p1" || body.Quantity != 2 {
		t.Fatalf("unexpected body %+v", body)
	}
}

func TestDecodeJSONBodyRejectsUnknownFields(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"productId":"p1","extra":true}`))
	var body addBody
	if err := DecodeJSONBody(req, &body); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDecodeJSONBodyReportsFieldErrors(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"quantity":100}`))
	var body addBody
	err := DecodeJSONBody(req, &body)
	typed := pkgerrors.As(err)
	if typed == nil {
		t.Fatalf("expected typed error, got %v", err)
	}
	details, ok := typed.Details().(map[string]string)
	if !ok {
		t.Fatalf("expected field details, got %#v", typed.Details())
	}
	if details["productId"] != "is required" || details["quantity"] != "must be less than or equal to 99" {
		t.Fatalf("unexpected details %v", details)
	}
}

func TestParseQueryInt(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?page=3&bad=x&big=500", nil)
	if v, err := ParseQueryInt(req, "page", 1, 1, 100); err != nil || v != 3 {
		t.Fatalf("expected 3, got %d (%v)", v, err)
	}
	if v, _ := ParseQueryInt(req, "missing", 1, 1, 100); v != 1 {
		t.Fatalf("expected default, got %d", v)
	}
	if _, err := ParseQueryInt(req, "bad", 1, 1, 100); err == nil {
		t.Fatal("expected error for non numeric value")
	}
	if _, err := ParseQueryInt(req, "big", 1, 1, 100); err == nil {
		t.Fatal("expected error for out of range value")
	}
}

func TestParseQueryDecimal(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?min=12.50&neg=-1&bad=abc", nil)
	v, err := ParseQueryDecimal(req, "min")
	if err != nil || !v.Valid || v.Decimal.String() != "12.5" {
		t.Fatalf("unexpected value %v (%v)", v, err)
	}
	if v, err := ParseQueryDecimal(req, "max"); err != nil || v.Valid {
		t.Fatalf("absent value should be null, got %v (%v)", v, err)
	}
	if _, err := ParseQueryDecimal(req, "neg"); err == nil {
		t.Fatal("expected error for negative value")
	}
	if _, err := ParseQueryDecimal(req, "bad"); err == nil {
		t.Fatal("expected error for non numeric value")
	}
}

func TestSanitizeString(t *testing.T) {
	cases := []struct {
		in     string
		maxLen int
		want   string
	}{
		{"  hello world  ", 5, "hello"},
		{"  hello world  ", 0, "hello world"},
		{"retro\t\n  runner", 0, "retro runner"},
		{"ab\x00c", 0, "abc"},
		{"chaussures été", 12, "chaussures é"},
		{"ab cd", 3, "ab"},
	}
	for _, tc := range cases {
		if got := SanitizeString(tc.in, tc.maxLen); got != tc.want {
			t.Fatalf("SanitizeString(%q, %d) = %q, want %q", tc.in, tc.maxLen, got, tc.want)
		}
	}
}
