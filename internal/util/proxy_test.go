package util

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNewProxyFunc_ExplicitProxies(t *testing.T) {
	fn := NewProxyFunc("http://proxy.internal:3128", "http://sproxy.internal:3128", "")

	req := httptest.NewRequest(http.MethodGet, "https://example.com/page", nil)
	u, err := fn(req)
	if err != nil {
		t.Fatalf("proxy func: %v", err)
	}
	if u == nil || u.Host != "sproxy.internal:3128" {
		t.Errorf("https request must use the https proxy, got %v", u)
	}

	req = httptest.NewRequest(http.MethodGet, "http://example.com/page", nil)
	u, err = fn(req)
	if err != nil {
		t.Fatalf("proxy func: %v", err)
	}
	if u == nil || u.Host != "proxy.internal:3128" {
		t.Errorf("http request must use the http proxy, got %v", u)
	}
}

func TestNewProxyFunc_Bypass(t *testing.T) {
	fn := NewProxyFunc("http://proxy.internal:3128", "", "internal.example, localhost")

	req := httptest.NewRequest(http.MethodGet, "http://api.internal.example/v1", nil)
	u, err := fn(req)
	if err != nil {
		t.Fatalf("proxy func: %v", err)
	}
	if u != nil {
		t.Errorf("bypass host must go direct, got %v", u)
	}

	req = httptest.NewRequest(http.MethodGet, "http://example.com/", nil)
	u, err = fn(req)
	if err != nil {
		t.Fatalf("proxy func: %v", err)
	}
	if u == nil {
		t.Error("non-bypass host must use the proxy")
	}
}

func TestNewProxyFunc_NoLookalikeBypass(t *testing.T) {
	fn := NewProxyFunc("http://proxy.internal:3128", "", "internal.example")

	req := httptest.NewRequest(http.MethodGet, "http://notinternal.example/", nil)
	u, err := fn(req)
	if err != nil {
		t.Fatalf("proxy func: %v", err)
	}
	if u == nil {
		t.Error("suffix matching must respect label boundaries")
	}
}
