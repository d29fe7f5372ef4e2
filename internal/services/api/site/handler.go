package site

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/webchecker/backend/internal/domain/site"
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

// Register mounts the site routes on r, which is expected to be the /api
// subrouter.
func (h *Handler) Register(r *mux.Router) {
	r.HandleFunc("/sites", h.list).Methods(http.MethodGet)
	r.HandleFunc("/sites", h.create).Methods(http.MethodPost)
	r.HandleFunc("/sites/count", h.count).Methods(http.MethodGet)
	r.HandleFunc("/sites/{id:[0-9]+}", h.get).Methods(http.MethodGet)
	r.HandleFunc("/sites/{id:[0-9]+}", h.update).Methods(http.MethodPut)
	r.HandleFunc("/sites/{id:[0-9]+}", h.delete).Methods(http.MethodDelete)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	owner, ok := apiauth.SubjectFromCtx(r.Context())
	if !ok {
		httpx.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}
	var in Input
	if err := httpx.Decode(r, &in); err != nil {
		httpx.Error(w, http.StatusBadRequest, "malformed payload")
		return
	}
	s, err := h.uc.Create(r.Context(), owner, in)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, s)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	owner, ok := apiauth.SubjectFromCtx(r.Context())
	if !ok {
		httpx.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}
	enabledOnly := r.URL.Query().Get("enabled") == "true"
	sites, err := h.uc.List(r.Context(), owner, enabledOnly)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	if sites == nil {
		sites = []*site.Site{}
	}
	httpx.JSON(w, http.StatusOK, sites)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	owner, ok := apiauth.SubjectFromCtx(r.Context())
	if !ok {
		httpx.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}
	id := pathID(r)
	s, err := h.uc.Get(r.Context(), owner, id)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, s)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	owner, ok := apiauth.SubjectFromCtx(r.Context())
	if !ok {
		httpx.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}
	var in Input
	if err := httpx.Decode(r, &in); err != nil {
		httpx.Error(w, http.StatusBadRequest, "malformed payload")
		return
	}
	s, err := h.uc.Update(r.Context(), owner, pathID(r), in)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, s)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	owner, ok := apiauth.SubjectFromCtx(r.Context())
	if !ok {
		httpx.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}
	if err := h.uc.Delete(r.Context(), owner, pathID(r)); err != nil {
		h.respondErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) count(w http.ResponseWriter, r *http.Request) {
	owner, ok := apiauth.SubjectFromCtx(r.Context())
	if !ok {
		httpx.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}
	n, err := h.uc.Count(r.Context(), owner)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, n)
}

func (h *Handler) respondErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalid):
		httpx.Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, site.ErrNotFound):
		httpx.Error(w, http.StatusNotFound, "site not found")
	default:
		h.log.Error("site request failed", zap.Error(err))
		httpx.Error(w, http.StatusInternalServerError, "internal error")
	}
}

func pathID(r *http.Request) int64 {
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	return id
}
