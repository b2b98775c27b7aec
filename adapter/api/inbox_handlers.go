package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/felixgeelhaar/calmbox/internal/datasource"
	inboxCommands "github.com/felixgeelhaar/calmbox/internal/inbox/application/commands"
	inboxQueries "github.com/felixgeelhaar/calmbox/internal/inbox/application/queries"
	inbox "github.com/felixgeelhaar/calmbox/internal/inbox/domain"
	"github.com/felixgeelhaar/calmbox/internal/inbox/store"
	"github.com/go-chi/chi/v5"
)

type syncRequest struct {
	Replace bool `json:"replace"`
}

type syncResponse struct {
	Source  string               `json:"source"`
	Notice  *datasource.Notice   `json:"notice,omitempty"`
	Fetched int                  `json:"fetched"`
	Added   int                  `json:"added"`
	Updated int                  `json:"updated"`
	Stress  inbox.StressSnapshot `json:"stress"`
}

type processRequest struct {
	IDs []string `json:"ids"`
}

type processResponse struct {
	Report store.ProcessReport  `json:"report"`
	Stress inbox.StressSnapshot `json:"stress"`
}

type analyzeRequest struct {
	Text string `json:"text"`
}

type markResponse struct {
	ID    string `json:"id"`
	Found bool   `json:"found"`
}

func (s *Server) handleSyncInbox(w http.ResponseWriter, r *http.Request) {
	var req syncRequest
	if err := decodeJSON(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	result, err := s.app.SyncInboxHandler.Handle(r.Context(), inboxCommands.SyncInboxCommand{Replace: req.Replace})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.saveSession(r.Context(), result.Source)

	s.respondJSON(w, http.StatusOK, syncResponse{
		Source:  result.Source,
		Notice:  result.Notice,
		Fetched: result.Fetched,
		Added:   result.Added,
		Updated: result.Updated,
		Stress:  result.Stress,
	})
}

func (s *Server) handleGetStats(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, s.app.StatsHandler.Stats(r.Context()))
}

func (s *Server) handleGetStress(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, s.app.StatsHandler.Stress(r.Context()))
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := decodeJSON(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	analysis, err := s.app.AnalyzeTextHandler.Handle(r.Context(), inboxQueries.AnalyzeTextQuery{Text: req.Text})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, analysis)
}

func (s *Server) handleListEmails(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, err := intParam(q.Get("limit"))
	if err != nil {
		s.fail(w, r, err)
		return
	}

	emails, err := s.app.ListEmailsHandler.Handle(r.Context(), inboxQueries.ListEmailsQuery{
		UnreadOnly:  boolParam(q.Get("unread")),
		FlaggedOnly: boolParam(q.Get("flagged")),
		Pending:     boolParam(q.Get("pending")),
		Category:    q.Get("category"),
		Priority:    q.Get("priority"),
		StressLevel: q.Get("stress"),
		Limit:       limit,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, emails)
}

func (s *Server) handleGetEmail(w http.ResponseWriter, r *http.Request) {
	email, err := s.app.GetEmailHandler.Handle(r.Context(), inboxQueries.GetEmailQuery{EmailID: chi.URLParam(r, "emailID")})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, email)
}

func (s *Server) handleProcessEmails(w http.ResponseWriter, r *http.Request) {
	var req processRequest
	if err := decodeJSON(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	result, err := s.app.ProcessEmailsHandler.Handle(r.Context(), inboxCommands.ProcessEmailsCommand{IDs: req.IDs})
	if result != nil {
		s.saveSession(r.Context(), "")
	}
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, processResponse{Report: result.Report, Stress: result.Stress})
}

// Marking an unknown email is a silent no-op, so these answer 200 with
// found=false instead of 404.
func (s *Server) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "emailID")
	result, err := s.app.MarkEmailHandler.MarkRead(r.Context(), inboxCommands.MarkReadCommand{EmailID: id})
	s.respondMark(w, r, id, result, err)
}

func (s *Server) handleFlag(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "emailID")
	result, err := s.app.MarkEmailHandler.Flag(r.Context(), inboxCommands.FlagEmailCommand{EmailID: id})
	s.respondMark(w, r, id, result, err)
}

func (s *Server) handleUnflag(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "emailID")
	result, err := s.app.MarkEmailHandler.Flag(r.Context(), inboxCommands.FlagEmailCommand{EmailID: id, Unflag: true})
	s.respondMark(w, r, id, result, err)
}

func (s *Server) respondMark(w http.ResponseWriter, r *http.Request, id string, result *inboxCommands.MarkEmailResult, err error) {
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if result.Found {
		s.saveSession(r.Context(), "")
	}
	s.respondJSON(w, http.StatusOK, markResponse{ID: id, Found: result.Found})
}

func boolParam(v string) bool {
	b, _ := strconv.ParseBool(v)
	return b
}

func intParam(v string) (int, error) {
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, &badRequestError{err: errors.New("limit must be a non-negative integer")}
	}
	return n, nil
}
