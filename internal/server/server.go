// Package server exposes the positions API consumed by position.HTTPBackend,
// so one laneplan process can host layouts for others.
package server

import (
	"encoding/json"
	"net/http"

	"github.com/jspahr/laneplan/internal/domain"
	"github.com/jspahr/laneplan/internal/repository"
)

type Server struct {
	positions repository.PositionRepo
}

func New(positions repository.PositionRepo) *Server {
	return &Server{positions: positions}
}

// Handler routes the position contract: fetch, upsert, reset.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /positions", s.handleFetch)
	mux.HandleFunc("POST /positions", s.handleUpsert)
	mux.HandleFunc("DELETE /positions", s.handleReset)
	return mux
}

// positionPayload mirrors the wire form in position.HTTPBackend.
type positionPayload struct {
	Container      string  `json:"container"`
	NodeType       string  `json:"nodeType"`
	NodeID         string  `json:"nodeId"`
	RelY           float64 `json:"relY"`
	IsDuplicate    bool    `json:"isDuplicate"`
	DuplicateKey   string  `json:"duplicateKey,omitempty"`
	OriginalNodeID *int64  `json:"originalNodeId,omitempty"`
}

func (s *Server) handleFetch(w http.ResponseWriter, r *http.Request) {
	container := r.URL.Query().Get("container")
	nodeType := domain.NodeType(r.URL.Query().Get("nodeType"))
	if container == "" {
		http.Error(w, "missing container", http.StatusBadRequest)
		return
	}
	if nodeType != domain.NodeMilestone && nodeType != domain.NodeWorkstream {
		http.Error(w, "invalid nodeType", http.StatusBadRequest)
		return
	}

	records, err := s.positions.List(r.Context(), container, nodeType)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	payload := make([]positionPayload, 0, len(records))
	for _, p := range records {
		payload = append(payload, positionPayload{
			Container:      p.ContainerID,
			NodeType:       string(p.NodeType),
			NodeID:         p.NodeID,
			RelY:           p.RelY,
			IsDuplicate:    p.IsDuplicate,
			DuplicateKey:   p.DuplicateKey,
			OriginalNodeID: p.OriginalNodeID,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(payload)
}

func (s *Server) handleUpsert(w http.ResponseWriter, r *http.Request) {
	var payload positionPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "invalid body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if payload.Container == "" || payload.NodeID == "" {
		http.Error(w, "missing container or nodeId", http.StatusBadRequest)
		return
	}
	nodeType := domain.NodeType(payload.NodeType)
	if nodeType != domain.NodeMilestone && nodeType != domain.NodeWorkstream {
		http.Error(w, "invalid nodeType", http.StatusBadRequest)
		return
	}

	err := s.positions.Upsert(r.Context(), &domain.Position{
		ContainerID:    payload.Container,
		NodeType:       nodeType,
		NodeID:         payload.NodeID,
		RelY:           payload.RelY,
		IsDuplicate:    payload.IsDuplicate,
		DuplicateKey:   payload.DuplicateKey,
		OriginalNodeID: payload.OriginalNodeID,
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	container := r.URL.Query().Get("container")
	if container == "" {
		http.Error(w, "missing container", http.StatusBadRequest)
		return
	}
	if err := s.positions.DeleteByContainer(r.Context(), container); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
