package server

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/mmynk/tillpoint/internal/httpx"
	"github.com/mmynk/tillpoint/internal/middleware"
	"github.com/mmynk/tillpoint/internal/models"
	"github.com/mmynk/tillpoint/internal/service"
	"github.com/mmynk/tillpoint/internal/storage"
)

type okResponse struct {
	OK bool `json:"ok"`
}

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	res, err := h.Auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, res)
}

func (h *handler) me(w http.ResponseWriter, r *http.Request) {
	user, err := h.Auth.Me(r.Context(), middleware.GetUserID(r.Context()))
	if errors.Is(err, storage.ErrNotFound) {
		// The token outlived its operator.
		httpx.Error(w, http.StatusUnauthorized, "operator no longer exists")
		return
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, user)
}

func (h *handler) products(w http.ResponseWriter, r *http.Request) {
	products, err := h.Catalog.Products(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	out := make([]map[string]any, 0, len(products))
	for _, p := range products {
		out = append(out, productRecord(p))
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *handler) customers(w http.ResponseWriter, r *http.Request) {
	customers, err := h.Catalog.Customers(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	out := make([]map[string]any, 0, len(customers))
	for _, c := range customers {
		out = append(out, customerRecord(c))
	}
	httpx.JSON(w, http.StatusOK, out)
}

// lookup answers a miss with 200 and found=false so scanners can tell an
// unknown code from a broken backend.
func (h *handler) lookup(w http.ResponseWriter, r *http.Request) {
	code := strings.TrimSpace(r.URL.Query().Get("code"))
	p, err := h.Catalog.Lookup(r.Context(), code)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		httpx.JSON(w, http.StatusOK, map[string]any{
			"found": false,
			"code":  code,
			"error": "product not found",
		})
	case err != nil:
		h.fail(w, r, err)
	default:
		rec := productRecord(*p)
		rec["found"] = true
		httpx.JSON(w, http.StatusOK, rec)
	}
}

func (h *handler) syncCart(w http.ResponseWriter, r *http.Request) {
	var snap models.CartSnapshot
	if err := httpx.Decode(r, &snap); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	applied, err := h.Carts.SyncCart(r.Context(), snap)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]bool{"ok": true, "applied": applied})
}

func (h *handler) cartByBill(w http.ResponseWriter, r *http.Request) {
	billNo, ok := queryBillNo(w, r)
	if !ok {
		return
	}
	snap, err := h.Carts.CartByBill(r.Context(), billNo, r.URL.Query().Get("locationCode"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, snap)
}

func (h *handler) holdBill(w http.ResponseWriter, r *http.Request) {
	var bill models.HeldBill
	if err := httpx.Decode(r, &bill); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := h.Carts.HoldBill(r.Context(), bill); err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, okResponse{OK: true})
}

func (h *handler) heldBills(w http.ResponseWriter, r *http.Request) {
	bills, err := h.Carts.HeldBills(r.Context(), r.URL.Query().Get("locationCode"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	out := make([]map[string]any, 0, len(bills))
	for _, b := range bills {
		out = append(out, heldRecord(b))
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *handler) heldBill(w http.ResponseWriter, r *http.Request) {
	billNo, ok := pathBillNo(w, r)
	if !ok {
		return
	}
	bill, err := h.Carts.HeldBill(r.Context(), billNo, r.URL.Query().Get("locationCode"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, bill)
}

func (h *handler) deleteHeldBill(w http.ResponseWriter, r *http.Request) {
	billNo, ok := pathBillNo(w, r)
	if !ok {
		return
	}
	if err := h.Carts.DeleteHeldBill(r.Context(), billNo, r.URL.Query().Get("locationCode")); err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, okResponse{OK: true})
}

func (h *handler) nextBillNo(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Flag         string `json:"flag"`
		CounterCode  string `json:"counterCode"`
		LocationCode string `json:"locationCode"`
	}
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	n, err := h.Billing.NextBillNo(r.Context(), req.Flag, req.CounterCode, req.LocationCode)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"ok": true, "billNo": n})
}

func (h *handler) checkBillNo(w http.ResponseWriter, r *http.Request) {
	last, next, err := h.Billing.CheckBillNo(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]int64{"lastBillNo": last, "nextBillNo": next})
}

func (h *handler) markBillPaid(w http.ResponseWriter, r *http.Request) {
	var req struct {
		BillNo int64 `json:"billNo"`
	}
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := h.Billing.MarkBillPaid(r.Context(), req.BillNo); err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, okResponse{OK: true})
}

func (h *handler) insertBillDetail(w http.ResponseWriter, r *http.Request) {
	var st models.BillSettlement
	if err := httpx.Decode(r, &st); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := h.Billing.InsertBillDetail(r.Context(), &st); err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"ok": true, "id": st.ID})
}

func queryBillNo(w http.ResponseWriter, r *http.Request) (int64, bool) {
	return parseBillNo(w, r.URL.Query().Get("billNo"))
}

func pathBillNo(w http.ResponseWriter, r *http.Request) (int64, bool) {
	return parseBillNo(w, chi.URLParam(r, "billNo"))
}

func parseBillNo(w http.ResponseWriter, raw string) (int64, bool) {
	n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || n <= 0 {
		httpx.Error(w, http.StatusBadRequest, service.ErrInvalidArgument.Error()+": billNo must be a positive integer")
		return 0, false
	}
	return n, true
}
