package server

import (
	"net/http"
	"strconv"

	"github.com/mgpai22/momentnav/internal/editor"
	"github.com/mgpai22/momentnav/internal/logging"
	"github.com/mgpai22/momentnav/internal/navigator"
	"github.com/mgpai22/momentnav/internal/search"
	"github.com/mgpai22/momentnav/internal/timecode"
	"github.com/mgpai22/momentnav/internal/timeline"
)

// Handler holds the API route handlers
type Handler struct {
	nav    *navigator.Navigator
	coord  *timeline.Coordinator
	logger *logging.Logger
}

func NewHandler(nav *navigator.Navigator, coord *timeline.Coordinator, logger *logging.Logger) *Handler {
	return &Handler{nav: nav, coord: coord, logger: logging.OrNop(logger)}
}

type fileGroup struct {
	search.FileResults
	Media string `json:"media,omitempty"`
}

type searchResponse struct {
	Query  string      `json:"query"`
	Show   string      `json:"show,omitempty"`
	Total  int         `json:"total"`
	Groups []fileGroup `json:"groups"`
}

// Search handles GET /api/search?q=&show=
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	keyword, show := q.Get("q"), q.Get("show")

	results, err := h.nav.Search(r.Context(), keyword, show)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	links := h.nav.Links()
	resp := searchResponse{Query: keyword, Show: show, Total: len(results), Groups: []fileGroup{}}
	for _, g := range search.Group(results) {
		m, _ := links.Media(g.SourcePath)
		resp.Groups = append(resp.Groups, fileGroup{FileResults: g, Media: m})
	}
	writeJSON(w, h.logger, http.StatusOK, resp)
}

// Shows handles GET /api/shows
func (h *Handler) Shows(w http.ResponseWriter, r *http.Request) {
	shows, err := h.nav.Shows()
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if shows == nil {
		shows = []string{}
	}
	writeJSON(w, h.logger, http.StatusOK, map[string][]string{"shows": shows})
}

type link struct {
	Transcript string `json:"transcript"`
	Media      string `json:"media"`
}

type linksResponse struct {
	Links     []link   `json:"links"`
	Unmatched []string `json:"unmatched"`
}

// Links handles GET /api/links
func (h *Handler) Links(w http.ResponseWriter, r *http.Request) {
	links := h.nav.Links()
	resp := linksResponse{Links: []link{}, Unmatched: []string{}}
	for _, t := range links.Transcripts() {
		if m, ok := links.Media(t); ok {
			resp.Links = append(resp.Links, link{Transcript: t, Media: m})
		}
	}
	resp.Unmatched = append(resp.Unmatched, links.Unmatched()...)
	writeJSON(w, h.logger, http.StatusOK, resp)
}

// TimelineSearch handles GET /api/timeline/search?q=&case=. Deferred searches
// answer 202 and deliver their matches over /api/events.
func (h *Handler) TimelineSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	caseSensitive, _ := strconv.ParseBool(q.Get("case"))

	out := h.coord.Search(q.Get("q"), caseSensitive)
	if out.Matches == nil {
		out.Matches = []editor.Entry{}
	}
	status := http.StatusOK
	if out.Deferred {
		status = http.StatusAccepted
	}
	writeJSON(w, h.logger, status, out)
}

type stateResponse struct {
	State   string `json:"state"`
	Started *bool  `json:"started,omitempty"`
}

// TimelineState handles GET /api/timeline
func (h *Handler) TimelineState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.logger, http.StatusOK, stateResponse{State: h.coord.State().String()})
}

// TimelineRefresh handles POST /api/timeline/refresh
func (h *Handler) TimelineRefresh(w http.ResponseWriter, r *http.Request) {
	started := h.coord.Refresh()
	status := http.StatusAccepted
	if !started {
		status = http.StatusOK
	}
	writeJSON(w, h.logger, status, stateResponse{State: h.coord.State().String(), Started: &started})
}

// Focus handles POST /api/focus, sent by the front end when it regains focus
func (h *Handler) Focus(w http.ResponseWriter, r *http.Request) {
	if err := h.coord.FocusGained(r.Context()); err != nil {
		h.writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, h.logger, http.StatusOK, stateResponse{State: h.coord.State().String()})
}

type playRequest struct {
	Transcript string            `json:"transcript"`
	Start      timecode.Timecode `json:"start"`
}

// Play handles POST /api/play
func (h *Handler) Play(w http.ResponseWriter, r *http.Request) {
	var req playRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}
	if req.Transcript == "" {
		h.writeError(w, http.StatusBadRequest, "transcript is required")
		return
	}

	if err := h.nav.Play(r.Context(), req.Transcript, req.Start); err != nil {
		h.writeError(w, statusFor(err), err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type pushRequest struct {
	Transcript string            `json:"transcript"`
	Start      timecode.Timecode `json:"start"`
	End        timecode.Timecode `json:"end"`
}

// Push handles POST /api/push
func (h *Handler) Push(w http.ResponseWriter, r *http.Request) {
	var req pushRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}
	if req.Transcript == "" {
		h.writeError(w, http.StatusBadRequest, "transcript is required")
		return
	}

	rng, err := h.nav.Push(r.Context(), req.Transcript, req.Start, req.End)
	if err != nil {
		h.writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, h.logger, http.StatusOK, rng)
}
