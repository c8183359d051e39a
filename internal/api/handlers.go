package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"matinee/internal/catalog"
	"matinee/internal/logging"
)

// entryView is the JSON shape served to the player UI.
type entryView struct {
	ID           int64     `json:"id"`
	ExternalKey  string    `json:"externalKey"`
	IMDbID       string    `json:"imdbId,omitempty"`
	Title        string    `json:"title"`
	Year         int       `json:"year,omitempty"`
	Genre        string    `json:"genre,omitempty"`
	Director     string    `json:"director,omitempty"`
	Actors       string    `json:"actors,omitempty"`
	Plot         string    `json:"plot,omitempty"`
	Language     string    `json:"language,omitempty"`
	Country      string    `json:"country,omitempty"`
	PosterURL    string    `json:"posterUrl,omitempty"`
	Runtime      string    `json:"runtime,omitempty"`
	Rating       float64   `json:"rating,omitempty"`
	WatchCount   int       `json:"watchCount"`
	SyncState    string    `json:"syncState"`
	LastSyncedAt time.Time `json:"lastSyncedAt,omitempty"`
}

func viewOf(entry *catalog.Entry) entryView {
	return entryView{
		ID:           entry.ID,
		ExternalKey:  entry.ExternalKey,
		IMDbID:       entry.IMDbID,
		Title:        entry.Title,
		Year:         entry.Year,
		Genre:        entry.Genre,
		Director:     entry.Director,
		Actors:       entry.Actors,
		Plot:         entry.Plot,
		Language:     entry.Language,
		Country:      entry.Country,
		PosterURL:    entry.PosterURL,
		Runtime:      entry.Runtime,
		Rating:       entry.Rating,
		WatchCount:   entry.WatchCount,
		SyncState:    string(entry.SyncState),
		LastSyncedAt: entry.LastSyncedAt,
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	health, err := s.store.Health(r.Context())
	if err != nil {
		s.writeError(w, http.StatusServiceUnavailable, "catalog unavailable")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"entries": health.Total,
		"failed":  health.Failed,
	})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	entries, err := s.service.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		s.storageFailure(w, err)
		return
	}
	views := make([]entryView, 0, len(entries))
	for _, entry := range entries {
		views = append(views, viewOf(entry))
	}
	s.writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleEntry(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid entry id")
		return
	}
	entry, err := s.service.ByID(r.Context(), id)
	if err != nil {
		s.storageFailure(w, err)
		return
	}
	if entry == nil {
		s.writeError(w, http.StatusNotFound, "entry not found")
		return
	}
	s.writeJSON(w, http.StatusOK, viewOf(entry))
}

func (s *Server) handleWatched(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid entry id")
		return
	}
	bumped, err := s.store.IncrementWatchCount(r.Context(), id)
	if err != nil {
		s.storageFailure(w, err)
		return
	}
	if !bumped {
		s.writeError(w, http.StatusNotFound, "entry not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) storageFailure(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, catalog.ErrStorageUnavailable) {
		status = http.StatusServiceUnavailable
	}
	s.logger.Error("request failed", logging.Error(err))
	s.writeError(w, status, "catalog query failed")
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("encode response", logging.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}
