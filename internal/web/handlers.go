package web

import (
	"crypto/subtle"
	"io"
	"net/http"
	"strings"

	"github.com/goccy/go-json"

	"github.com/drweldonhawaii/rvu-web-app/internal/fileutil"
	"github.com/drweldonhawaii/rvu-web-app/internal/rvu"
)

const maxUploadBytes = 16 << 20

type pageData struct {
	Flashes    []flash
	InputCodes string
	Results    []rvu.Combo
	HasData    bool
	Error      string
}

func (s *Server) handleLoginForm(w http.ResponseWriter, r *http.Request) {
	if s.sessions.valid(sessionToken(r)) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	s.render(w, "login.html", pageData{})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	password := r.FormValue("password")
	if subtle.ConstantTimeCompare([]byte(password), []byte(s.password)) != 1 {
		s.logger.Warn("failed login attempt", "remote", r.RemoteAddr)
		w.WriteHeader(http.StatusUnauthorized)
		s.render(w, "login.html", pageData{Error: "Incorrect password."})
		return
	}

	token := s.sessions.create()
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.sessions.destroy(sessionToken(r))
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	token := sessionToken(r)
	data := pageData{Flashes: s.sessions.popFlashes(token)}

	rvuCodes, _ := s.store.Len()
	data.HasData = rvuCodes > 0

	if r.Method == http.MethodPost {
		data.InputCodes = r.FormValue("codes")
		codes := splitCodes(data.InputCodes)
		if len(codes) > 0 {
			data.Results = s.store.Score(codes)
		}
	}

	s.render(w, "index.html", data)
}

type breakdownRequest struct {
	Codes []string `json:"codes"`
}

type breakdownEntry struct {
	Code string  `json:"code"`
	RVU  float64 `json:"rvu"`
}

type breakdownResponse struct {
	Breakdown []breakdownEntry `json:"breakdown"`
	Total     float64          `json:"total"`
}

func (s *Server) handleBreakdown(w http.ResponseWriter, r *http.Request) {
	if !s.sessions.valid(sessionToken(r)) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}

	var req breakdownRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	resp := breakdownResponse{Breakdown: make([]breakdownEntry, 0, len(req.Codes))}
	for _, code := range req.Codes {
		value := s.store.RVU(code)
		resp.Breakdown = append(resp.Breakdown, breakdownEntry{Code: code, RVU: value})
		resp.Total += value
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleUpdateForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, "update.html", pageData{Flashes: s.sessions.popFlashes(sessionToken(r))})
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	token := sessionToken(r)

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		s.sessions.pushFlash(token, "error", "Upload too large or malformed.")
		http.Redirect(w, r, "/update", http.StatusSeeOther)
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		s.sessions.pushFlash(token, "error", "No file selected.")
		http.Redirect(w, r, "/update", http.StatusSeeOther)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		s.sessions.pushFlash(token, "error", "Could not read uploaded file.")
		http.Redirect(w, r, "/update", http.StatusSeeOther)
		return
	}

	if err := fileutil.WriteFileAtomic(s.rvuTablePath, data, 0o644); err != nil {
		s.logger.Error("write rvu table", "path", s.rvuTablePath, "error", err)
		s.sessions.pushFlash(token, "error", "Could not save uploaded file.")
		http.Redirect(w, r, "/update", http.StatusSeeOther)
		return
	}

	if err := s.store.Reload(); err != nil {
		s.logger.Error("reload rvu store", "error", err)
		s.sessions.pushFlash(token, "error", "Uploaded table could not be parsed.")
		http.Redirect(w, r, "/update", http.StatusSeeOther)
		return
	}

	s.logger.Info("rvu table updated", "path", s.rvuTablePath, "bytes", len(data))
	s.sessions.pushFlash(token, "success", "RVU database updated successfully.")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func splitCodes(input string) []string {
	parts := strings.Split(input, ",")
	codes := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			codes = append(codes, trimmed)
		}
	}
	return codes
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
