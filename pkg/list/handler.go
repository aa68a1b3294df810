package list

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/trelliskit/trellis/internal/httpx"
	"github.com/trelliskit/trellis/pkg/fingerprint"
	"github.com/trelliskit/trellis/pkg/service"
)

// Handler exposes lists and their items as JSON endpoints.
type Handler struct {
	svc *Service
	log *slog.Logger
}

// NewHandler creates the list handler.
func NewHandler(svc *Service, log *slog.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

// Routes mounts the list endpoints on r.
func (h *Handler) Routes(r chi.Router) {
	r.Route("/lists", func(r chi.Router) {
		r.Post("/", h.create)
		r.Get("/containing", h.containing)
		r.Get("/{id}", h.get)
		r.Patch("/{id}", h.update)
		r.Delete("/{id}", h.delete)

		r.Get("/{id}/items", h.items)
		r.Post("/{id}/items", h.addItem)
		r.Get("/{id}/items/named/{name}", h.itemByName)
		r.Patch("/{id}/items/{itemID}", h.updateItem)
		r.Delete("/{id}/items/{itemID}", h.removeItem)
	})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var in CreateListInput
	if err := httpx.Bind(r, &in); err != nil {
		httpx.BadRequest(w, r, err.Error())
		return
	}

	l, err := h.svc.CreateList(r.Context(), in)
	if err != nil {
		httpx.Error(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, l)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	l, err := h.svc.GetList(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.Error(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, l)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	var in UpdateListInput
	if err := httpx.Bind(r, &in); err != nil {
		httpx.BadRequest(w, r, err.Error())
		return
	}

	l, err := h.svc.UpdateList(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		httpx.Error(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, l)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteList(r.Context(), chi.URLParam(r, "id")); err != nil {
		httpx.Error(w, r, h.log, err)
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) items(w http.ResponseWriter, r *http.Request) {
	opts, err := ParseItemOptions(r.URL.Query())
	if err != nil {
		httpx.BadRequest(w, r, "invalid filter: "+err.Error())
		return
	}
	p := service.ParsePagination(r.URL.Query())
	opts.Limit = p.Limit()
	opts.Offset = p.Offset()

	items, err := h.svc.Items(r.Context(), chi.URLParam(r, "id"), opts)
	if err != nil {
		httpx.Error(w, r, h.log, err)
		return
	}
	if items == nil {
		items = []Item{}
	}
	httpx.JSON(w, http.StatusOK, items)
}

func (h *Handler) addItem(w http.ResponseWriter, r *http.Request) {
	var in AddItemInput
	if err := httpx.Bind(r, &in); err != nil {
		httpx.BadRequest(w, r, err.Error())
		return
	}

	item, err := h.svc.AddItem(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		httpx.Error(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, item)
}

func (h *Handler) itemByName(w http.ResponseWriter, r *http.Request) {
	item, err := h.svc.GetItemByName(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "name"))
	if err != nil {
		httpx.Error(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, item)
}

// updateItemInput carries the mutable item attributes. Position and state
// are applied independently when present.
type updateItemInput struct {
	Position *int       `json:"position"`
	State    *ItemState `json:"state"`
}

func (h *Handler) updateItem(w http.ResponseWriter, r *http.Request) {
	var in updateItemInput
	if err := httpx.Bind(r, &in); err != nil {
		httpx.BadRequest(w, r, err.Error())
		return
	}
	listID := chi.URLParam(r, "id")
	itemID := chi.URLParam(r, "itemID")

	if in.State != nil {
		if err := h.svc.SetItemState(r.Context(), listID, itemID, *in.State); err != nil {
			httpx.Error(w, r, h.log, err)
			return
		}
	}
	if in.Position != nil {
		if err := h.svc.MoveItem(r.Context(), listID, itemID, *in.Position); err != nil {
			httpx.Error(w, r, h.log, err)
			return
		}
	}

	item, err := h.svc.GetItem(r.Context(), listID, itemID)
	if err != nil {
		httpx.Error(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, item)
}

func (h *Handler) removeItem(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.RemoveItem(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "itemID")); err != nil {
		httpx.Error(w, r, h.log, err)
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) containing(w http.ResponseWriter, r *http.Request) {
	object, err := fingerprint.Parse(r.URL.Query().Get("object"))
	if err != nil {
		httpx.BadRequest(w, r, "invalid object: "+err.Error())
		return
	}
	opts, err := ParseContainingOptions(r.URL.Query())
	if err != nil {
		httpx.BadRequest(w, r, "invalid filter: "+err.Error())
		return
	}
	p := service.ParsePagination(r.URL.Query())
	opts.Limit = p.Limit()
	opts.Offset = p.Offset()

	lists, err := h.svc.Containing(r.Context(), object, opts)
	if err != nil {
		httpx.Error(w, r, h.log, err)
		return
	}
	if lists == nil {
		lists = []List{}
	}
	httpx.JSON(w, http.StatusOK, lists)
}
