package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testTokenAuth = jwtauth.New("HS256", []byte("test-secret-key-for-jwt"), nil)

func protectedRouter() http.Handler {
	r := chi.NewRouter()
	r.Use(jwtauth.Verifier(testTokenAuth))
	r.Use(AuthRequired(testTokenAuth))
	r.Use(RequireCompany)
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	return r
}

func request(t *testing.T, claims map[string]interface{}) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if claims != nil {
		_, token, err := testTokenAuth.Encode(claims)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	protectedRouter().ServeHTTP(rec, req)
	return rec
}

func TestProtectedRoutes(t *testing.T) {
	cases := []struct {
		name   string
		claims map[string]interface{}
		want   int
	}{
		{"no token", nil, http.StatusUnauthorized},
		{"access token", map[string]interface{}{"user_id": "u1", "company_id": "c1", "type": "access"}, http.StatusNoContent},
		{"sse token", map[string]interface{}{"user_id": "u1", "type": "sse"}, http.StatusUnauthorized},
		{"untyped token", map[string]interface{}{"user_id": "u1", "company_id": "c1"}, http.StatusUnauthorized},
		{"no company", map[string]interface{}{"user_id": "u1", "type": "access"}, http.StatusForbidden},
		{"no user", map[string]interface{}{"company_id": "c1", "type": "access"}, http.StatusUnauthorized},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, request(t, tc.claims).Code)
		})
	}
}
