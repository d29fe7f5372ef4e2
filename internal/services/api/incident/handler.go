package incident

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/webchecker/backend/internal/domain/incident"
	apiauth "github.com/webchecker/backend/internal/services/api/auth"
	"github.com/webchecker/backend/internal/services/api/httpx"
)

type Handler struct {
	uc  *Usecase
	log *zap.Logger
}

func NewHandler(uc *Usecase, log *zap.Logger) *Handler {
	return &Handler{uc: uc, log: log}
}

func (h *Handler) Register(r *mux.Router) {
	r.HandleFunc("/incidents", h.list(false)).Methods(http.MethodGet)
	r.HandleFunc("/incidents/active", h.list(true)).Methods(http.MethodGet)
	r.HandleFunc("/incidents/site/{id:[0-9]+}", h.bySite(false)).Methods(http.MethodGet)
	r.HandleFunc("/incidents/site/{id:[0-9]+}/active", h.bySite(true)).Methods(http.MethodGet)
}

func (h *Handler) RegisterWorker(r *mux.Router) {
	r.HandleFunc("/incident", h.open).Methods(http.MethodPost)
	r.HandleFunc("/incident/{id:[0-9]+}/resolve", h.resolve).Methods(http.MethodPut)
}

func (h *Handler) list(activeOnly bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner, ok := apiauth.SubjectFromCtx(r.Context())
		if !ok {
			httpx.Error(w, http.StatusUnauthorized, "authentication required")
			return
		}
		incidents, err := h.uc.List(r.Context(), owner, activeOnly)
		if err != nil {
			h.respondErr(w, err)
			return
		}
		if incidents == nil {
			incidents = []*incident.Incident{}
		}
		httpx.JSON(w, http.StatusOK, incidents)
	}
}

func (h *Handler) bySite(activeOnly bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner, ok := apiauth.SubjectFromCtx(r.Context())
		if !ok {
			httpx.Error(w, http.StatusUnauthorized, "authentication required")
			return
		}
		incidents, err := h.uc.BySite(r.Context(), owner, pathID(r), activeOnly)
		if err != nil {
			h.respondErr(w, err)
			return
		}
		if incidents == nil {
			incidents = []*incident.Incident{}
		}
		httpx.JSON(w, http.StatusOK, incidents)
	}
}

func (h *Handler) open(w http.ResponseWriter, r *http.Request) {
	var in WorkerInput
	if err := httpx.Decode(r, &in); err != nil {
		httpx.Error(w, http.StatusBadRequest, "malformed payload")
		return
	}
	inc, err := h.uc.Open(r.Context(), in)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, inc)
}

func (h *Handler) resolve(w http.ResponseWriter, r *http.Request) {
	inc, err := h.uc.Resolve(r.Context(), pathID(r))
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, inc)
}

func (h *Handler) respondErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalid):
		httpx.Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, incident.ErrNotFound):
		httpx.Error(w, http.StatusNotFound, "incident not found")
	default:
		h.log.Error("incident request failed", zap.Error(err))
		httpx.Error(w, http.StatusInternalServerError, "internal error")
	}
}

func pathID(r *http.Request) int64 {
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	return id
}
