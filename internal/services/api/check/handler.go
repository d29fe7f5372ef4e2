package check

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/webchecker/backend/internal/domain/check"
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

// Register mounts the authenticated check-result routes on the /api subrouter.
func (h *Handler) Register(r *mux.Router) {
	r.HandleFunc("/checks/recent", h.recent).Methods(http.MethodGet)
	r.HandleFunc("/checks/site/{id:[0-9]+}", h.bySite).Methods(http.MethodGet)
	r.HandleFunc("/checks/site/{id:[0-9]+}/uptime", h.uptime).Methods(http.MethodGet)
}

// RegisterWorker mounts the unauthenticated ingestion route on the /api/worker
// subrouter.
func (h *Handler) RegisterWorker(r *mux.Router) {
	r.HandleFunc("/check-result", h.ingest).Methods(http.MethodPost)
}

func (h *Handler) recent(w http.ResponseWriter, r *http.Request) {
	owner, ok := apiauth.SubjectFromCtx(r.Context())
	if !ok {
		httpx.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}
	results, err := h.uc.Recent(r.Context(), owner)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	if results == nil {
		results = []*check.Result{}
	}
	httpx.JSON(w, http.StatusOK, results)
}

func (h *Handler) bySite(w http.ResponseWriter, r *http.Request) {
	owner, ok := apiauth.SubjectFromCtx(r.Context())
	if !ok {
		httpx.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}
	results, err := h.uc.BySite(r.Context(), owner, pathID(r))
	if err != nil {
		h.respondErr(w, err)
		return
	}
	if results == nil {
		results = []*check.Result{}
	}
	httpx.JSON(w, http.StatusOK, results)
}

func (h *Handler) uptime(w http.ResponseWriter, r *http.Request) {
	owner, ok := apiauth.SubjectFromCtx(r.Context())
	if !ok {
		httpx.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}
	pct, err := h.uc.Uptime(r.Context(), owner, pathID(r))
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, pct)
}

func (h *Handler) ingest(w http.ResponseWriter, r *http.Request) {
	var res check.Result
	if err := httpx.Decode(r, &res); err != nil {
		httpx.Error(w, http.StatusBadRequest, "malformed payload")
		return
	}
	stored, err := h.uc.Ingest(r.Context(), &res)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, stored)
}

func (h *Handler) respondErr(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrInvalid) {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	h.log.Error("check request failed", zap.Error(err))
	httpx.Error(w, http.StatusInternalServerError, "internal error")
}

func pathID(r *http.Request) int64 {
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	return id
}
