package http

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"
)

func TestParseMonthParams(t *testing.T) {
	now := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		query   url.Values
		want    MonthParams
		wantErr bool
	}{
		{"defaults", url.Values{}, MonthParams{2024, 3}, false},
		{"explicit", url.Values{"year": {"2023"}, "month": {"12"}}, MonthParams{2023, 12}, false},
		{"whitespace", url.Values{"month": {" 7 "}}, MonthParams{2024, 7}, false},
		{"month zero", url.Values{"month": {"0"}}, MonthParams{}, true},
		{"month thirteen", url.Values{"month": {"13"}}, MonthParams{}, true},
		{"month text", url.Values{"month": {"março"}}, MonthParams{}, true},
		{"year out of range", url.Values{"year": {"20"}}, MonthParams{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseMonthParams(tt.query, now)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseMonthParams() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseMonthParams() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func newParser(t *testing.T, contentType, body string) *RequestBodyParser {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	return NewRequestBodyParser(httptest.NewRecorder(), req)
}

func TestRequestBodyParser(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		body        string
		key         string
		want        string
		wantJSON    bool
	}{
		{"json string", "application/json", `{"name":" Mercado "}`, "name", "Mercado", true},
		{"json number", "application/json; charset=utf-8", `{"amount":12.5}`, "amount", "12.5", true},
		{"json large number keeps digits", "application/json", `{"amount":12345678901234567}`, "amount", "12345678901234567", true},
		{"json sniffed", "", `{"type":"income"}`, "type", "income", true},
		{"json missing key", "application/json", `{"type":"income"}`, "name", "", true},
		{"form", "application/x-www-form-urlencoded", "name=Pizza&amount=40%2C00", "amount", "40,00", false},
		{"form control chars", "application/x-www-form-urlencoded", "name=Piz%00za%0A", "name", "Pizza", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newParser(t, tt.contentType, tt.body)
			if err := p.Parse(); err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if got := p.Get(tt.key); got != tt.want {
				t.Errorf("Get(%q) = %q, want %q", tt.key, got, tt.want)
			}
			if p.IsJSON() != tt.wantJSON {
				t.Errorf("IsJSON() = %v", p.IsJSON())
			}
		})
	}
}

func TestRequestBodyParserErrors(t *testing.T) {
	if err := newParser(t, "application/json", `{"name":`).Parse(); err == nil {
		t.Error("expected error for truncated JSON")
	}
	if err := newParser(t, "application/json", strings.Repeat("a", maxBodyBytes+1)).Parse(); err == nil {
		t.Error("expected error for oversized body")
	}

	p := newParser(t, "", "")
	if err := p.Parse(); err != nil {
		t.Fatalf("empty body should parse, got %v", err)
	}
	if p.Get("name") != "" {
		t.Error("empty body should yield empty values")
	}
}

func TestParseCreateInput(t *testing.T) {
	loc := time.FixedZone("BRT", -3*60*60)

	p := newParser(t, "application/json", `{"name":"Pizza","amount":"40","type":"negative","category":"food","date":"2024-01-10"}`)
	if err := p.Parse(); err != nil {
		t.Fatal(err)
	}
	in, err := ParseCreateInput(p, loc)
	if err != nil {
		t.Fatalf("ParseCreateInput() error = %v", err)
	}
	if in.Name != "Pizza" || in.Amount != "40" || in.Type != "negative" || in.Category != "food" {
		t.Errorf("unexpected input %+v", in)
	}
	if !in.Date.Equal(time.Date(2024, 1, 10, 3, 0, 0, 0, time.UTC)) {
		t.Errorf("date should be midnight in loc, got %v", in.Date)
	}

	p = newParser(t, "application/json", `{"date":"2024-01-10T15:04:05Z"}`)
	_ = p.Parse()
	in, err = ParseCreateInput(p, loc)
	if err != nil || !in.Date.Equal(time.Date(2024, 1, 10, 15, 4, 5, 0, time.UTC)) {
		t.Errorf("RFC 3339 date = %v, %v", in.Date, err)
	}

	p = newParser(t, "application/json", `{"date":"10/01/2024"}`)
	_ = p.Parse()
	if _, err := ParseCreateInput(p, loc); err == nil {
		t.Error("expected error for unsupported date layout")
	}

	p = newParser(t, "application/json", `{"name":"Pizza"}`)
	_ = p.Parse()
	if in, _ := ParseCreateInput(p, loc); !in.Date.IsZero() {
		t.Error("missing date should stay zero")
	}
}
