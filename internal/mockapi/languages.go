package mockapi

import (
	"errors"
	"net/http"
	"slices"

	"github.com/dmitrijs2005/langcrowd/internal/client/models"
	"github.com/dmitrijs2005/langcrowd/internal/client/validate"
)

type page[T any] struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

func pageOf[T any](items []T) page[T] {
	if items == nil {
		items = []T{}
	}
	return page[T]{Count: len(items), Results: items}
}

func (s *Server) listLanguages(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, pageOf(s.store.Languages()))
}

func (s *Server) getLanguage(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	langs := s.store.Languages()
	i := slices.IndexFunc(langs, func(l models.Language) bool { return l.ID == id })
	if i < 0 {
		writeError(w, ErrNotFound)
		return
	}
	writeJSON(w, http.StatusOK, langs[i])
}

func (s *Server) createLanguage(w http.ResponseWriter, r *http.Request) {
	var l models.Language
	if !decode(w, r, &l) {
		return
	}
	if err := validate.Language(l); err != nil {
		writeError(w, err)
		return
	}
	created, err := s.store.CreateLanguage(l)
	if errors.Is(err, ErrAlreadyExists) {
		writeFields(w, map[string][]string{"name": {"Language with this name already exists."}})
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) updateLanguage(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	langs := s.store.Languages()
	i := slices.IndexFunc(langs, func(l models.Language) bool { return l.ID == id })
	if i < 0 {
		writeError(w, ErrNotFound)
		return
	}
	// PATCH bodies overlay the stored language
	l := langs[i]
	if !decode(w, r, &l) {
		return
	}
	l.ID = id
	if err := validate.Language(l); err != nil {
		writeError(w, err)
		return
	}
	updated, err := s.store.UpdateLanguage(l)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) deleteLanguage(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteLanguage(pathID(r)); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
