package api

import (
	"net/http"
	"strconv"

	"github.com/okian/workbook/internal/domain/catalog"
	"github.com/okian/workbook/internal/domain/matching"
)

type activitiesResponse struct {
	Activities []catalog.Activity `json:"activities"`
}

// pageResponse is one workbook page as reached by the previous/next buttons.
type pageResponse struct {
	Index    int              `json:"index"`
	Total    int              `json:"total"`
	Activity catalog.Activity `json:"activity"`
}

// answerRequest echoes the round on screen with the button pressed.
type answerRequest struct {
	catalog.SizesRound
	Choice catalog.Choice `json:"choice"`
}

type matchingRequest struct {
	Moves []matching.Move `json:"moves"`
}

// handleListActivities handles GET /activities. With ?page=N it returns that
// page alone, clamped to the first and last page.
func (s *Server) handleListActivities(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_activities"
	all := s.deps.Activities()
	if !r.URL.Query().Has("page") {
		writeJSON(w, http.StatusOK, activitiesResponse{Activities: all})
		return
	}
	n, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil {
		s.fail(w, r, op, WrapKind(op, ErrBadRequest, err))
		return
	}
	a, index := s.deps.Page(n)
	writeJSON(w, http.StatusOK, pageResponse{Index: index, Total: len(all), Activity: a})
}

// handleGetActivity handles GET /activities/{id}.
func (s *Server) handleGetActivity(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_activity"
	a, err := s.deps.Activity(r.PathValue("id"))
	if err != nil {
		s.fail(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// handleCheckMatching handles POST /activities/{id}/check.
func (s *Server) handleCheckMatching(w http.ResponseWriter, r *http.Request) {
	const op = "api.check_matching"
	var req matchingRequest
	if err := decode(r, &req); err != nil {
		s.fail(w, r, op, WrapKind(op, ErrBadRequest, err))
		return
	}
	out, err := s.deps.CheckMatching(r.Context(), r.PathValue("id"), req.Moves)
	if err != nil {
		s.fail(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// handleSizesRound handles GET /activities/{id}/round.
func (s *Server) handleSizesRound(w http.ResponseWriter, r *http.Request) {
	const op = "api.sizes_round"
	round, err := s.deps.SizesRound(r.PathValue("id"))
	if err != nil {
		s.fail(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, round)
}

// handleSizesAnswer handles POST /activities/{id}/answer.
func (s *Server) handleSizesAnswer(w http.ResponseWriter, r *http.Request) {
	const op = "api.sizes_answer"
	var req answerRequest
	if err := decode(r, &req); err != nil {
		s.fail(w, r, op, WrapKind(op, ErrBadRequest, err))
		return
	}
	ans, err := s.deps.AnswerSizes(r.Context(), r.PathValue("id"), req.SizesRound, req.Choice)
	if err != nil {
		s.fail(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, ans)
}
