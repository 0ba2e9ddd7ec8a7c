package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/uangku/uangku/internal/ctxkeys"
	"github.com/uangku/uangku/internal/render"
	"github.com/uangku/uangku/internal/repository"
	"github.com/uangku/uangku/internal/service"
)

type transactionHandler struct {
	transactionService *service.TransactionService
}

func NewTransactionHandler(transactionService *service.TransactionService) *transactionHandler {
	return &transactionHandler{transactionService: transactionService}
}

func (h *transactionHandler) List(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	filter, ok := parseFilter(w, r)
	if !ok {
		return
	}

	page, err := h.transactionService.List(user.ID, filter)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	render.JSON(w, http.StatusOK, page)
}

func (h *transactionHandler) Show(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	tx, err := h.transactionService.ByID(user.ID, r.PathValue("id"))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	render.JSON(w, http.StatusOK, tx)
}

type transactionRequest struct {
	CategoryID  string  `json:"category_id"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	Type        string  `json:"type"`
	Date        string  `json:"date"`
}

func (req transactionRequest) input() service.TransactionInput {
	return service.TransactionInput{
		CategoryID:  req.CategoryID,
		Description: req.Description,
		Amount:      req.Amount,
		Type:        req.Type,
		Date:        req.Date,
	}
}

func (h *transactionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user := ctxkeys.User(r.Context())
	tx, err := h.transactionService.Create(user.ID, req.input())
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	render.JSON(w, http.StatusCreated, tx)
}

func (h *transactionHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user := ctxkeys.User(r.Context())
	tx, err := h.transactionService.Update(user.ID, r.PathValue("id"), req.input())
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	render.JSON(w, http.StatusOK, tx)
}

func (h *transactionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	err := h.transactionService.Delete(user.ID, r.PathValue("id"))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// parseFilter reads the list query parameters. Bad dates and page numbers are
// rejected rather than silently ignored.
func parseFilter(w http.ResponseWriter, r *http.Request) (repository.TransactionFilter, bool) {
	q := r.URL.Query()

	filter := repository.TransactionFilter{
		Search:     q.Get("search"),
		Type:       q.Get("type"),
		CategoryID: q.Get("category_id"),
		Page:       1,
	}

	if filter.Type != "" && filter.Type != "income" && filter.Type != "expense" {
		render.Error(w, http.StatusBadRequest, "type must be income or expense")
		return filter, false
	}

	if raw := q.Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			render.Error(w, http.StatusBadRequest, "invalid page number")
			return filter, false
		}
		filter.Page = page
	}

	if raw := q.Get("date_from"); raw != "" {
		from, err := time.Parse("2006-01-02", raw)
		if err != nil {
			render.Error(w, http.StatusBadRequest, "invalid date_from, expected YYYY-MM-DD")
			return filter, false
		}
		filter.DateFrom = &from
	}

	if raw := q.Get("date_to"); raw != "" {
		to, err := time.Parse("2006-01-02", raw)
		if err != nil {
			render.Error(w, http.StatusBadRequest, "invalid date_to, expected YYYY-MM-DD")
			return filter, false
		}
		filter.DateTo = &to
	}

	return filter, true
}
