package actorgroup

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/trelliskit/trellis/internal/httpx"
	"github.com/trelliskit/trellis/pkg/fingerprint"
	"github.com/trelliskit/trellis/pkg/service"
)

// Handler exposes actor groups as JSON endpoints.
type Handler struct {
	svc *Service
	log *slog.Logger
}

// NewHandler creates the group handler.
func NewHandler(svc *Service, log *slog.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

// Routes mounts the group endpoints on r.
func (h *Handler) Routes(r chi.Router) {
	r.Route("/groups", func(r chi.Router) {
		r.Post("/", h.create)
		r.Get("/for-actor", h.groupsFor)
		r.Get("/named/{name}", h.getByName)
		r.Get("/{id}", h.get)
		r.Patch("/{id}", h.update)
		r.Delete("/{id}", h.delete)

		r.Get("/{id}/members", h.members)
		r.Post("/{id}/members", h.addMember)
		r.Delete("/{id}/members", h.removeMember)
	})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var in CreateGroupInput
	if err := httpx.Bind(r, &in); err != nil {
		httpx.BadRequest(w, r, err.Error())
		return
	}

	g, err := h.svc.CreateGroup(r.Context(), in)
	if err != nil {
		httpx.Error(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, g)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	g, err := h.svc.GetGroup(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.Error(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, g)
}

func (h *Handler) getByName(w http.ResponseWriter, r *http.Request) {
	g, err := h.svc.GetGroupByName(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		httpx.Error(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, g)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	var in UpdateGroupInput
	if err := httpx.Bind(r, &in); err != nil {
		httpx.BadRequest(w, r, err.Error())
		return
	}

	g, err := h.svc.UpdateGroup(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		httpx.Error(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, g)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteGroup(r.Context(), chi.URLParam(r, "id")); err != nil {
		httpx.Error(w, r, h.log, err)
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) members(w http.ResponseWriter, r *http.Request) {
	opts, err := ParseMemberOptions(r.URL.Query())
	if err != nil {
		httpx.BadRequest(w, r, "invalid filter: "+err.Error())
		return
	}
	p := service.ParsePagination(r.URL.Query())
	opts.Limit = p.Limit()
	opts.Offset = p.Offset()

	members, err := h.svc.Members(r.Context(), chi.URLParam(r, "id"), opts)
	if err != nil {
		httpx.Error(w, r, h.log, err)
		return
	}
	if members == nil {
		members = []Member{}
	}
	httpx.JSON(w, http.StatusOK, members)
}

func (h *Handler) addMember(w http.ResponseWriter, r *http.Request) {
	var in AddMemberInput
	if err := httpx.Bind(r, &in); err != nil {
		httpx.BadRequest(w, r, err.Error())
		return
	}

	m, err := h.svc.AddMember(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		httpx.Error(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, m)
}

func (h *Handler) removeMember(w http.ResponseWriter, r *http.Request) {
	actor, err := fingerprint.Parse(r.URL.Query().Get("actor"))
	if err != nil {
		httpx.BadRequest(w, r, "invalid actor: "+err.Error())
		return
	}
	if err := h.svc.RemoveMember(r.Context(), chi.URLParam(r, "id"), actor); err != nil {
		httpx.Error(w, r, h.log, err)
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) groupsFor(w http.ResponseWriter, r *http.Request) {
	actor, err := fingerprint.Parse(r.URL.Query().Get("actor"))
	if err != nil {
		httpx.BadRequest(w, r, "invalid actor: "+err.Error())
		return
	}
	opts, err := ParseGroupOptions(r.URL.Query())
	if err != nil {
		httpx.BadRequest(w, r, "invalid filter: "+err.Error())
		return
	}
	p := service.ParsePagination(r.URL.Query())
	opts.Limit = p.Limit()
	opts.Offset = p.Offset()

	groups, err := h.svc.GroupsFor(r.Context(), actor, opts)
	if err != nil {
		httpx.Error(w, r, h.log, err)
		return
	}
	if groups == nil {
		groups = []Group{}
	}
	httpx.JSON(w, http.StatusOK, groups)
}
