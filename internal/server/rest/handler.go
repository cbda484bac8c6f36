package rest

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/dmitrijs2005/secretkey/internal/server/services"
	"github.com/go-chi/chi/v5"
)

const maxBodyBytes = 1 << 20

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) Register(w http.ResponseWriter, r *http.Request) {
	var req authRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	res, err := s.users.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		mapError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, authResponse{Token: res.Token, Username: res.User.UserName, ID: res.User.ID})
}

func (s *Server) Login(w http.ResponseWriter, r *http.Request) {
	var req authRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	res, err := s.users.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		mapError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, authResponse{Token: res.Token, Username: res.User.UserName, ID: res.User.ID})
}

// ListPlatforms answers 204 when the user has nothing registered.
func (s *Server) ListPlatforms(w http.ResponseWriter, r *http.Request) {
	number, ok := queryInt(w, r, "page", 0)
	if !ok {
		return
	}
	size, ok := queryInt(w, r, "size", services.DefaultPageSize)
	if !ok {
		return
	}

	page, err := s.platforms.Page(r.Context(), userIDFrom(r.Context()), number, size)
	if err != nil {
		mapError(w, err)
		return
	}
	if page.Total == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, toPageResponse(page))
}

func (s *Server) FindPlatform(w http.ResponseWriter, r *http.Request) {
	p, err := s.platforms.FindByName(r.Context(), userIDFrom(r.Context()), r.URL.Query().Get("name"))
	if err != nil {
		mapError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPlatformResponse(p))
}

func (s *Server) CreatePlatform(w http.ResponseWriter, r *http.Request) {
	var req platformRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	p, err := s.platforms.Create(r.Context(), userIDFrom(r.Context()), req.input())
	if err != nil {
		mapError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toPlatformResponse(p))
}

func (s *Server) UpdatePlatform(w http.ResponseWriter, r *http.Request) {
	var req platformRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	p, err := s.platforms.Update(r.Context(), userIDFrom(r.Context()), chi.URLParam(r, "id"), req.input())
	if err != nil {
		mapError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPlatformResponse(p))
}

func (s *Server) DeletePlatform(w http.ResponseWriter, r *http.Request) {
	if err := s.platforms.Delete(r.Context(), userIDFrom(r.Context()), chi.URLParam(r, "id")); err != nil {
		mapError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) ExportPlatforms(w http.ResponseWriter, r *http.Request) {
	format := chi.URLParam(r, "format")
	data, contentType, err := s.platforms.Export(r.Context(), userIDFrom(r.Context()), format)
	if err != nil {
		mapError(w, err)
		return
	}

	ext := "xlsx"
	if format == services.FormatDocument {
		ext = "pdf"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="platforms.`+ext+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func queryInt(w http.ResponseWriter, r *http.Request, name string, def int) (int, bool) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def, true
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		writeError(w, http.StatusBadRequest, name+" must be a number")
		return 0, false
	}
	return n, true
}
