package mockapi

import (
	"net/http"
	"strings"

	"github.com/dmitrijs2005/langcrowd/internal/client/models"
)

func requireName(w http.ResponseWriter, name string) bool {
	if strings.TrimSpace(name) == "" {
		writeFields(w, map[string][]string{"name": {"This field is required."}})
		return false
	}
	return true
}

func (s *Server) listBackups(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.Backups())
}

func (s *Server) createBackup(w http.ResponseWriter, r *http.Request) {
	var b models.Backup
	if !decode(w, r, &b) || !requireName(w, b.Name) {
		return
	}
	writeJSON(w, http.StatusCreated, s.store.CreateBackup(b))
}

func (s *Server) deleteBackup(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteBackup(pathID(r)); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listSnapshots(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.Snapshots())
}

func (s *Server) createSnapshot(w http.ResponseWriter, r *http.Request) {
	var sn models.Snapshot
	if !decode(w, r, &sn) || !requireName(w, sn.Name) {
		return
	}
	writeJSON(w, http.StatusCreated, s.store.CreateSnapshot(sn))
}

func (s *Server) restoreSnapshot(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	if err := s.store.RestoreSnapshot(id); err != nil {
		writeError(w, err)
		return
	}
	s.logger.Warn(r.Context(), "snapshot restored", "id", id, "by", caller(r).Username)
	writeDetail(w, http.StatusOK, "Snapshot restored.")
}

func (s *Server) deleteSnapshot(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteSnapshot(pathID(r)); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
