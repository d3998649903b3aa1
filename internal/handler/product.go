package handler

import (
	"net/http"

	"github.com/go-faster/errors"

	"github.com/xenking/lunchbox-orders/internal/catalog"
)

type productResponse struct {
	ID    int64   `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// ListProducts handles GET /api/products: the catalog with the caller's
// effective prices applied, hidden products excluded.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	products, err := h.catalog.ListProducts(r.Context())
	if err != nil {
		if errors.Is(err, catalog.ErrEmpty) {
			writeError(w, http.StatusNotFound, "no products available")
			return
		}
		logError(r, "Catalog fetch failed", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	effective, err := h.prices.Resolve(r.Context(), userID, products)
	if err != nil {
		logError(r, "Price resolution failed", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	resp := make([]productResponse, 0, len(products))
	for _, p := range products {
		eff := effective[p.ID]
		if eff.Hidden {
			continue
		}
		resp = append(resp, productResponse{
			ID:    p.ID,
			Name:  p.Name,
			Price: eff.UnitPrice.InexactFloat64(),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}
