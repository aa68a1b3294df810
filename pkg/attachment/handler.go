package attachment

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/trelliskit/trellis/internal/httpx"
	"github.com/trelliskit/trellis/pkg/fingerprint"
	"github.com/trelliskit/trellis/pkg/service"
)

// multipartMemory is the in-memory buffer for multipart parsing; larger
// files spill to temp files.
const multipartMemory = 8 << 20

// Handler exposes attachments as JSON endpoints; uploads arrive as
// multipart forms with an "attachable" field and a "file" part.
type Handler struct {
	svc *Service
	log *slog.Logger
}

// NewHandler creates the attachment handler.
func NewHandler(svc *Service, log *slog.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

// Routes mounts the attachment endpoints on r.
func (h *Handler) Routes(r chi.Router) {
	r.Route("/attachments", func(r chi.Router) {
		r.Get("/", h.list)
		r.Post("/", h.create)
		r.Get("/{id}", h.get)
		r.Patch("/{id}", h.update)
		r.Delete("/{id}", h.delete)
		r.Get("/{id}/url", h.url)
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
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		httpx.BadRequest(w, r, "malformed multipart form")
		return
	}

	attachable, err := fingerprint.Parse(r.FormValue("attachable"))
	if err != nil {
		httpx.BadRequest(w, r, "invalid attachable fingerprint")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		httpx.BadRequest(w, r, "file part is required")
		return
	}
	defer file.Close()

	a, err := h.svc.Create(r.Context(), UploadInput{
		Attachable:  attachable,
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		Filename:    header.Filename,
		Content:     file,
		Size:        header.Size,
	})
	if err != nil {
		httpx.Error(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, a)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	a, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.Error(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, a)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	var in UpdateInput
	if err := httpx.Bind(r, &in); err != nil {
		httpx.BadRequest(w, r, err.Error())
		return
	}

	a, err := h.svc.Update(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		httpx.Error(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, a)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		httpx.Error(w, r, h.log, err)
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) url(w http.ResponseWriter, r *http.Request) {
	u, err := h.svc.URL(r.Context(),
		chi.URLParam(r, "id"),
		r.URL.Query().Get("variant"),
		httpx.QueryBool(r.URL.Query(), "download"),
	)
	if err != nil {
		httpx.Error(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"url": u})
}
