package validators

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	pkgerrors "github.com/grocerease/grocerease-backend/pkg/errors"
)

type loginBody struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

func TestDecodeJSONBody(t *testing.T) {
	cases := []struct {
		name    string
		body    string
		wantErr bool
		field   string
	}{
		{name: "valid", body: `{"email":"a@b.co","password":"secret1"}`},
		{name: "empty", body: ``, wantErr: true},
		{name: "unknown field", body: `{"email":"a@b.co","password":"secret1","role":"admin"}`, wantErr: true},
		{name: "bad email", body: `{"email":"nope","password":"secret1"}`, wantErr: true, field: "email"},
		{name: "short password", body: `{"email":"a@b.co","password":"abc"}`, wantErr: true, field: "password"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tc.body))
			var dest loginBody
			err := DecodeJSONBody(req, &dest)
			if !tc.wantErr {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if dest.Email != "a@b.co" {
					t.Fatalf("unexpected decode %+v", dest)
				}
				return
			}
			if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if tc.field == "" {
				return
			}
			details, ok := pkgerrors.As(err).Details().(map[string]string)
			if !ok {
				t.Fatalf("expected field details, got %#v", pkgerrors.As(err).Details())
			}
			if _, ok := details[tc.field]; !ok {
				t.Fatalf("expected %s in details %v", tc.field, details)
			}
		})
	}
}

func TestDecodeJSONBodyNilBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Body = nil
	err := DecodeJSONBody(req, &loginBody{})
	if got := pkgerrors.As(err); got == nil || got.Message() != "request body is required" {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestParsePagination(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?page=3&limit=500", nil)
	params, err := ParsePagination(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if params.Page != 3 || params.Limit != 100 || params.Skip != 200 {
		t.Fatalf("unexpected params %+v", params)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	params, err = ParsePagination(req)
	if err != nil || params.Page != 1 || params.Limit != 20 {
		t.Fatalf("expected defaults, got %+v err=%v", params, err)
	}

	req = httptest.NewRequest(http.MethodGet, "/?page=zero", nil)
	if _, err := ParsePagination(req); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestParseUUIDParam(t *testing.T) {
	id := uuid.New()
	withParam := func(value string) *http.Request {
		rctx := chi.NewRouteContext()
		rctx.URLParams.Add("id", value)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	}

	got, err := ParseUUIDParam(withParam(id.String()), "id")
	if err != nil || got != id {
		t.Fatalf("expected %s, got %s err=%v", id, got, err)
	}
	if _, err := ParseUUIDParam(withParam("not-a-uuid"), "id"); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestSanitizeString(t *testing.T) {
	if got := SanitizeString("  apples  ", 0); got != "apples" {
		t.Fatalf("unexpected %q", got)
	}
	if got := SanitizeString("bananas", 3); got != "ban" {
		t.Fatalf("unexpected %q", got)
	}
}
