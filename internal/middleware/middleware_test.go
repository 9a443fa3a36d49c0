package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/mmynk/tillpoint/internal/auth"
	"github.com/mmynk/tillpoint/internal/metrics"
	"github.com/mmynk/tillpoint/internal/models"
)

func TestRequireAuth(t *testing.T) {
	jwtManager := auth.NewJWTManager("secret", time.Hour)
	user := models.NewUser("cashier", "Cashier", models.RoleCashier, "")
	token, err := jwtManager.Generate(user)
	if err != nil {
		t.Fatal(err)
	}

	var gotUser, gotName, gotRole string
	h := RequireAuth(jwtManager)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser = GetUserID(r.Context())
		gotName = GetUsername(r.Context())
		gotRole = GetRole(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"not bearer", "Basic abc", http.StatusUnauthorized},
		{"garbage", "Bearer not-a-token", http.StatusUnauthorized},
		{"valid", "Bearer " + token, http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}

	if gotUser != user.ID || gotName != "cashier" || gotRole != models.RoleCashier {
		t.Errorf("context = %q %q %q", gotUser, gotName, gotRole)
	}
}

func TestMetricsUsesRoutePattern(t *testing.T) {
	m := metrics.NewServer(prometheus.NewRegistry())
	r := chi.NewRouter()
	r.Use(Logging, Metrics(m))
	r.Get("/hold/{billNo}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	for _, path := range []string{"/hold/1", "/hold/2"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	if got := testutil.ToFloat64(m.Requests.WithLabelValues("GET", "/hold/{billNo}", "404")); got != 2 {
		t.Errorf("requests = %v, want 2", got)
	}
}
