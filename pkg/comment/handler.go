package comment

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/trelliskit/trellis/internal/httpx"
	"github.com/trelliskit/trellis/pkg/service"
)

// Handler exposes comments as JSON endpoints.
type Handler struct {
	svc *Service
	log *slog.Logger
}

// NewHandler creates the comment handler.
func NewHandler(svc *Service, log *slog.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

// Routes mounts the comment endpoints on r.
func (h *Handler) Routes(r chi.Router) {
	r.Route("/comments", func(r chi.Router) {
		r.Get("/", h.list)
		r.Post("/", h.create)
		r.Get("/{id}", h.get)
		r.Patch("/{id}", h.update)
		r.Delete("/{id}", h.delete)
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	opts, err := ParseListOptions(r.URL.Query())
	if err != nil {
		httpx.BadRequest(w, r, "invalid filter: "+err.Error())
		return
	}

	page, err := h.svc.List(r.Context(), opts, service.ParsePagination(r.URL.Query()))
	if err != nil {
		httpx.Error(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, page)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var in CreateInput
	if err := httpx.Bind(r, &in); err != nil {
		httpx.BadRequest(w, r, err.Error())
		return
	}

	c, err := h.svc.Create(r.Context(), in)
	if err != nil {
		httpx.Error(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, c)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	c, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.Error(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, c)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	var in UpdateInput
	if err := httpx.Bind(r, &in); err != nil {
		httpx.BadRequest(w, r, err.Error())
		return
	}

	c, err := h.svc.Update(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		httpx.Error(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, c)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		httpx.Error(w, r, h.log, err)
		return
	}
	httpx.NoContent(w)
}
