package router

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func tag(t *testing.T, order *[]string, name string) Middleware {
	t.Helper()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			*order = append(*order, name)
			next.ServeHTTP(w, r)
		})
	}
}

func TestChainRunsInRegistrationOrder(t *testing.T) {
	var order []string

	h := Chain(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		order = append(order, "handler")
	}), tag(t, &order, "first"), tag(t, &order, "second"))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	want := []string{"first", "second", "handler"}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
}

func TestChainWithoutMiddlewares(t *testing.T) {
	var ran bool

	h := Chain(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { ran = true }))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if !ran {
		t.Fatal("handler did not run")
	}
}
