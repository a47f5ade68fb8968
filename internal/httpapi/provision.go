package httpapi

import (
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/ent0n29/videotask/internal/platform"
	"github.com/ent0n29/videotask/internal/policy"
	"github.com/ent0n29/videotask/internal/provisioning"
)

const (
	maxRequestBody = 100 << 10

	msgMissingService = "Missing service or room"
	msgProvisionFail  = "Erreur lors de la création de la tâche"
)

func (s *Server) handleCreateVideoTask(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())

	var req provisioning.Request
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	if err := decodeJSON(r, &req); err != nil && !errors.Is(err, errEmptyBody) {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body", Details: err.Error()})
		return
	}
	log.Printf("create-video-task: request_id=%s service=%q customer=%q",
		reqID, req.Service, policy.RedactForLog(req.CustomerName))

	res, err := s.provisioner.Provision(r.Context(), req)
	if err != nil {
		if errors.Is(err, provisioning.ErrMissingService) {
			respondJSON(w, http.StatusBadRequest, errorResponse{Error: msgMissingService})
			return
		}
		log.Printf("create-video-task: request_id=%s failed: %v", reqID, err)
		respondJSON(w, http.StatusInternalServerError, errorResponse{
			Error:   msgProvisionFail,
			Details: platform.Details(err),
		})
		return
	}

	respondJSON(w, http.StatusOK, res)
}
