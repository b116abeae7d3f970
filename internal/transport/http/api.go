package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"linguahub/internal/app"
	"linguahub/internal/domain"
)

type sendMessageRequest struct {
	To   string `json:"to"`
	Text string `json:"text"`
}

type sendMessageResponse struct {
	domain.Message
	// Delivered/Targets expose the best-effort fan-out outcome; an
	// offline recipient yields 0/0 and the message is still persisted.
	Delivered int `json:"delivered"`
	Targets   int `json:"targets"`
}

func (s *Server) handleListPeers(w http.ResponseWriter, r *http.Request) {
	p, _ := PrincipalFromContext(r.Context())
	peers, err := s.chat.Peers(r.Context(), p.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, peers)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	p, _ := PrincipalFromContext(r.Context())
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	msgs, err := s.chat.History(r.Context(), p.ID, chi.URLParam(r, "peerID"), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, msgs)
}

func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	p, _ := PrincipalFromContext(r.Context())
	var req sendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "invalid request body"})
		return
	}
	msg, report, err := s.chat.Send(r.Context(), p.ID, req.To, req.Text)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sendMessageResponse{
		Message: msg, Delivered: report.Delivered, Targets: report.Targets,
	})
}

func (s *Server) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	p, _ := PrincipalFromContext(r.Context())
	items, err := s.notifications.List(r.Context(), p.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleMarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	p, _ := PrincipalFromContext(r.Context())
	n, err := s.notifications.MarkRead(r.Context(), p.ID, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

func (s *Server) handleClearNotifications(w http.ResponseWriter, r *http.Request) {
	p, _ := PrincipalFromContext(r.Context())
	if err := s.notifications.ClearAll(r.Context(), p.ID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) handleListLiveTests(w http.ResponseWriter, r *http.Request) {
	tests, err := s.tests.ListLive(r.Context(), r.URL.Query().Get("language"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tests)
}

func (s *Server) handleCreateTest(w http.ResponseWriter, r *http.Request) {
	p, _ := PrincipalFromContext(r.Context())
	var in app.CreateTestInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "invalid request body"})
		return
	}
	t, err := s.tests.Create(r.Context(), p.ID, in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

func (s *Server) handleListMyTests(w http.ResponseWriter, r *http.Request) {
	p, _ := PrincipalFromContext(r.Context())
	tests, err := s.tests.ListMine(r.Context(), p.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tests)
}

func (s *Server) handleCompletedTests(w http.ResponseWriter, r *http.Request) {
	p, _ := PrincipalFromContext(r.Context())
	out, err := s.tests.Completed(r.Context(), p.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetTest(w http.ResponseWriter, r *http.Request) {
	t, err := s.tests.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleSetTestLive(w http.ResponseWriter, r *http.Request) {
	p, _ := PrincipalFromContext(r.Context())
	var req struct {
		IsLive bool `json:"isLive"`
	}
	// missing body defaults to publish, matching the product's UI
	req.IsLive = true
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}
	t, err := s.tests.SetLive(r.Context(), p.ID, chi.URLParam(r, "id"), req.IsLive)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleDeleteTest(w http.ResponseWriter, r *http.Request) {
	p, _ := PrincipalFromContext(r.Context())
	if err := s.tests.Delete(r.Context(), p.ID, chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "deleted"})
}

func (s *Server) handleSubmitTest(w http.ResponseWriter, r *http.Request) {
	p, _ := PrincipalFromContext(r.Context())
	var req struct {
		Answers []domain.Answer `json:"answers"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "invalid request body"})
		return
	}
	sub, err := s.tests.Submit(r.Context(), p.ID, chi.URLParam(r, "id"), req.Answers)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sub)
}

func (s *Server) handleListSubmissions(w http.ResponseWriter, r *http.Request) {
	p, _ := PrincipalFromContext(r.Context())
	subs, err := s.tests.Submissions(r.Context(), p.ID, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, subs)
}

func (s *Server) handleGenerateQuestions(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SourceLanguage string `json:"sourceLanguage"`
		TargetLanguage string `json:"targetLanguage"`
		NumQuestions   int    `json:"numQuestions"`
		Difficulty     string `json:"difficulty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "invalid request body"})
		return
	}
	questions, err := s.tests.Generate(r.Context(), req.SourceLanguage, req.TargetLanguage, req.NumQuestions, req.Difficulty)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, questions)
}

func (s *Server) handleCommentSubmission(w http.ResponseWriter, r *http.Request) {
	p, _ := PrincipalFromContext(r.Context())
	var req struct {
		Comment string `json:"comment"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "invalid request body"})
		return
	}
	if err := s.tests.Comment(r.Context(), p.ID, chi.URLParam(r, "id"), req.Comment); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "comment added"})
}

func (s *Server) handleAskTutor(w http.ResponseWriter, r *http.Request) {
	p, _ := PrincipalFromContext(r.Context())
	var req struct {
		TutorID  string `json:"tutorId"`
		TestID   string `json:"testId"`
		Question string `json:"question"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "invalid request body"})
		return
	}
	d, err := s.doubts.AskTutor(r.Context(), p.ID, req.TutorID, req.TestID, req.Question)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, d)
}

func (s *Server) handleAskAI(w http.ResponseWriter, r *http.Request) {
	p, _ := PrincipalFromContext(r.Context())
	var req struct {
		TestID   string `json:"testId"`
		Question string `json:"question"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "invalid request body"})
		return
	}
	d, err := s.doubts.AskAI(r.Context(), p.ID, req.TestID, req.Question)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, d)
}

func (s *Server) handleDoubtInbox(w http.ResponseWriter, r *http.Request) {
	p, _ := PrincipalFromContext(r.Context())
	items, err := s.doubts.Inbox(r.Context(), p.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleMyDoubts(w http.ResponseWriter, r *http.Request) {
	p, _ := PrincipalFromContext(r.Context())
	items, err := s.doubts.Mine(r.Context(), p.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleAnswerDoubt(w http.ResponseWriter, r *http.Request) {
	p, _ := PrincipalFromContext(r.Context())
	var req struct {
		Answer string `json:"answer"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "invalid request body"})
		return
	}
	d, err := s.doubts.Answer(r.Context(), p.ID, chi.URLParam(r, "id"), req.Answer)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *Server) handleHeatmap(w http.ResponseWriter, r *http.Request) {
	p, _ := PrincipalFromContext(r.Context())
	days, _ := strconv.Atoi(r.URL.Query().Get("days"))
	hm, err := s.progress.Heatmap(r.Context(), p.ID, days)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, hm)
}
