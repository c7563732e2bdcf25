package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hitoshi/furcode/internal/authz"
	"github.com/hitoshi/furcode/internal/model"
)

type mockDecisionRecorder struct {
	decisions []string
}

func (m *mockDecisionRecorder) RecordAuthzDecision(d string) { m.decisions = append(m.decisions, d) }

func testPolicy(t *testing.T, def authz.DefaultDecision) *authz.Policy {
	t.Helper()
	p, err := authz.NewPolicy([]authz.Rule{
		authz.Require(http.MethodPost, "/api/v1/pet", model.RoleAdmin),
		authz.Require(http.MethodGet, "/api/v1/person/all", model.RoleUser),
		authz.Public(http.MethodPost, "/api/v1/auth/login"),
	}, def)
	if err != nil {
		t.Fatalf("NewPolicy: %v", err)
	}
	return p
}

func TestAuthorizationMiddleware_Decisions(t *testing.T) {
	user := &model.Principal{PersonID: 1, Email: "user@example.com", Role: model.RoleUser}
	admin := &model.Principal{PersonID: 2, Email: "admin@example.com", Role: model.RoleAdmin}
	manager := &model.Principal{PersonID: 3, Email: "manager@example.com", Role: model.RoleManager}

	tests := []struct {
		name         string
		method       string
		path         string
		principal    *model.Principal
		wantStatus   int
		wantCode     string
		wantDecision string
	}{
		{"admin creates pet", http.MethodPost, "/api/v1/pet", admin, http.StatusCreated, "", "permit"},
		{"user creates pet", http.MethodPost, "/api/v1/pet", user, http.StatusForbidden, model.ErrCodeForbidden, "forbidden"},
		{"anonymous creates pet", http.MethodPost, "/api/v1/pet", nil, http.StatusUnauthorized, model.ErrCodeUnauthenticated, "unauthenticated"},
		{"manager on user route", http.MethodGet, "/api/v1/person/all", manager, http.StatusForbidden, model.ErrCodeForbidden, "forbidden"},
		{"public login", http.MethodPost, "/api/v1/auth/login", nil, http.StatusCreated, "", "permit"},
		{"unmatched route default permit", http.MethodGet, "/api/v1/shelter/all", nil, http.StatusCreated, "", "permit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &mockDecisionRecorder{}
			handlerCalled := false
			handler := NewAuthorizationMiddleware(testPolicy(t, authz.DefaultPermit), rec, nil)(
				http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					handlerCalled = true
					w.WriteHeader(http.StatusCreated)
				}))

			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.principal != nil {
				req = req.WithContext(ContextWithPrincipal(req.Context(), tt.principal))
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			if w.Result().StatusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Result().StatusCode, tt.wantStatus)
			}
			if tt.wantCode != "" {
				if handlerCalled {
					t.Error("denied request must not reach the handler")
				}
				var body ErrorResponseBody
				if err := json.NewDecoder(w.Result().Body).Decode(&body); err != nil {
					t.Fatalf("failed to decode: %v", err)
				}
				if body.Code != tt.wantCode {
					t.Errorf("code = %q, want %q", body.Code, tt.wantCode)
				}
			} else if !handlerCalled {
				t.Error("permitted request should reach the handler")
			}
			if len(rec.decisions) != 1 || rec.decisions[0] != tt.wantDecision {
				t.Errorf("decisions = %v, want [%s]", rec.decisions, tt.wantDecision)
			}
		})
	}
}

func TestAuthorizationMiddleware_DefaultDeny(t *testing.T) {
	handler := NewAuthorizationMiddleware(testPolicy(t, authz.DefaultDeny), nil, nil)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("handler should not be called")
		}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/shelter/all", nil)
	req = req.WithContext(ContextWithPrincipal(req.Context(), &model.Principal{Email: "a@example.com", Role: model.RoleAdmin}))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusForbidden {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusForbidden)
	}
}

func TestAuthorizationMiddleware_EscapedIDSegmentHitsRule(t *testing.T) {
	p, err := authz.NewPolicy([]authz.Rule{
		authz.Require(http.MethodDelete, "/api/v1/pet/delete/{id}", model.RoleManager),
	}, authz.DefaultPermit)
	if err != nil {
		t.Fatalf("NewPolicy: %v", err)
	}
	handler := NewAuthorizationMiddleware(p, nil, nil)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("handler should not be called")
		}))

	for _, target := range []string{"/api/v1/pet/delete/+1", "/api/v1/pet/delete/%2B1", "/api/v1/pet/delete/1%2F2"} {
		req := httptest.NewRequest(http.MethodDelete, target, nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		if w.Result().StatusCode != http.StatusUnauthorized {
			t.Errorf("%s: status = %d, want %d", target, w.Result().StatusCode, http.StatusUnauthorized)
		}
	}
}
