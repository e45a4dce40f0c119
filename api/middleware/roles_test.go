package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/grocerease/grocerease-backend/pkg/db/models"
	"github.com/grocerease/grocerease-backend/pkg/enums"
)

func requestAs(user *models.User) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/api/admin/stats", nil)
	if user == nil {
		return req
	}
	return req.WithContext(WithUser(req.Context(), user))
}

func TestRequireAdmin(t *testing.T) {
	tests := []struct {
		name string
		role enums.Role
		want int
	}{
		{"admin", enums.RoleAdmin, http.StatusOK},
		{"employee", enums.RoleEmployee, http.StatusForbidden},
		{"user", enums.RoleUser, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := RequireAdmin(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, requestAs(&models.User{ID: uuid.New(), Role: tt.role}))
			if rec.Code != tt.want {
				t.Fatalf("expected %d got %d", tt.want, rec.Code)
			}
		})
	}
}

func TestRequireEmployee(t *testing.T) {
	employee := &models.User{ID: uuid.New(), Role: enums.RoleEmployee, Name: "fresh"}
	admin := &models.User{ID: uuid.New(), Role: enums.RoleAdmin}
	users := fakeUsers{employee.ID: employee, admin.ID: admin}

	t.Run("user forbidden", func(t *testing.T) {
		handler := RequireEmployee(users, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("handler should not run")
		}))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, requestAs(&models.User{ID: uuid.New(), Role: enums.RoleUser}))
		if rec.Code != http.StatusForbidden {
			t.Fatalf("expected 403 got %d", rec.Code)
		}
		if msg := decodeErrorMessage(t, rec); msg != "Employee access required" {
			t.Fatalf("unexpected message %q", msg)
		}
	})

	t.Run("employee reloaded", func(t *testing.T) {
		stale := &models.User{ID: employee.ID, Role: enums.RoleEmployee, Name: "stale"}
		handler := RequireEmployee(users, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if got := UserFromContext(r.Context()); got == nil || got.Name != "fresh" {
				t.Fatalf("expected reloaded employee, got %+v", got)
			}
			w.WriteHeader(http.StatusOK)
		}))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, requestAs(stale))
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200 got %d", rec.Code)
		}
	})

	t.Run("admin allowed", func(t *testing.T) {
		handler := RequireEmployee(users, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, requestAs(admin))
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200 got %d", rec.Code)
		}
	})

	t.Run("missing employee", func(t *testing.T) {
		handler := RequireEmployee(users, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("handler should not run")
		}))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, requestAs(&models.User{ID: uuid.New(), Role: enums.RoleEmployee}))
		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404 got %d", rec.Code)
		}
	})
}
