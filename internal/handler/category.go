package handler

import (
	"net/http"

	"github.com/uangku/uangku/internal/ctxkeys"
	"github.com/uangku/uangku/internal/render"
	"github.com/uangku/uangku/internal/service"
)

type categoryHandler struct {
	categoryService *service.CategoryService
}

func NewCategoryHandler(categoryService *service.CategoryService) *categoryHandler {
	return &categoryHandler{categoryService: categoryService}
}

func (h *categoryHandler) List(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	categories, err := h.categoryService.Categories(user.ID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	render.JSON(w, http.StatusOK, map[string]any{"categories": categories})
}

func (h *categoryHandler) Show(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	category, err := h.categoryService.ByID(user.ID, r.PathValue("id"))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	render.JSON(w, http.StatusOK, category)
}

type categoryRequest struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

func (h *categoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user := ctxkeys.User(r.Context())
	category, err := h.categoryService.Create(user.ID, req.Name, req.Color)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	render.JSON(w, http.StatusCreated, category)
}

func (h *categoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user := ctxkeys.User(r.Context())
	category, err := h.categoryService.Update(user.ID, r.PathValue("id"), req.Name, req.Color)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	render.JSON(w, http.StatusOK, category)
}

func (h *categoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	err := h.categoryService.Delete(user.ID, r.PathValue("id"))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
