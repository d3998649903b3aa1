//go:build integration

package integration

import (
	"net/http"
	"testing"
)

func TestListProducts_BasePrices(t *testing.T) {
	resp := doGetAsUser(t, "/api/products", 7)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	products := decodeJSON[[]productResponse](t, resp)
	if len(products) != 3 {
		t.Fatalf("products: got %d, want 3", len(products))
	}

	byID := make(map[int64]productResponse, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	if byID[1].Price != 10000 {
		t.Errorf("product 1 price: got %v, want 10000", byID[1].Price)
	}
	if byID[2].Name != "Garden Salad" {
		t.Errorf("product 2 name: got %q, want Garden Salad", byID[2].Name)
	}
}

func TestListProducts_OverridesApplied(t *testing.T) {
	resp := doGetAsUser(t, "/api/products", 42)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	products := decodeJSON[[]productResponse](t, resp)
	if len(products) != 2 {
		t.Fatalf("products: got %d, want 2 (product 2 hidden)", len(products))
	}

	for _, p := range products {
		if p.ID == 2 {
			t.Error("hidden product 2 should not be listed")
		}
		if p.ID == 1 && p.Price != 8000 {
			t.Errorf("product 1 price: got %v, want 8000 (override)", p.Price)
		}
	}
}

func TestListProducts_NoAuth(t *testing.T) {
	resp := doGet(t, "/api/products")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}
