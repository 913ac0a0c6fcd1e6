package apitest

import (
	"net/http"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/jrsteele09/evangelism-tracker/people"
	"github.com/jrsteele09/evangelism-tracker/reports"
	"github.com/jrsteele09/evangelism-tracker/users"
)

// visibleReport must be called with s.lock held.
func (s *Server) visibleReport(u users.User, id string) (*reports.Report, int) {
	r, ok := s.reports[id]
	if !ok {
		return nil, http.StatusNotFound
	}
	if r.EvangelistID != u.ID && !u.IsAdmin() {
		return nil, http.StatusForbidden
	}
	return r, http.StatusOK
}

func writeLookupFailure(w http.ResponseWriter, status int, what string) {
	if status == http.StatusForbidden {
		writeDetail(w, status, "Not enough permissions")
		return
	}
	writeDetail(w, status, what+" not found")
}

func (s *Server) listReportsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u := userFrom(r.Context())
		s.lock.Lock()
		out := make([]reports.Report, 0, len(s.reports))
		for _, rep := range s.reports {
			if rep.EvangelistID == u.ID || u.IsAdmin() {
				out = append(out, *rep)
			}
		}
		s.lock.Unlock()
		sort.Slice(out, func(i, j int) bool {
			if out[i].Date != out[j].Date {
				return out[i].Date > out[j].Date
			}
			return out[i].CreatedAt.After(out[j].CreatedAt)
		})
		writeJSON(w, http.StatusOK, out)
	}
}

func (s *Server) getReportHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.lock.Lock()
		rep, status := s.visibleReport(userFrom(r.Context()), r.PathValue("id"))
		var out reports.Report
		if rep != nil {
			out = *rep
		}
		s.lock.Unlock()
		if rep == nil {
			writeLookupFailure(w, status, "Report")
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func reportFieldErrors(p reports.Payload) []fieldError {
	var fields []fieldError
	if strings.TrimSpace(p.OutreachName) == "" {
		fields = append(fields, missing("outreach_name"))
	}
	if strings.TrimSpace(p.Location) == "" {
		fields = append(fields, missing("location"))
	}
	if strings.TrimSpace(p.Date) == "" {
		fields = append(fields, missing("date"))
	}
	return fields
}

func (s *Server) createReportHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var p reports.Payload
		if err := decodeBody(r, &p); err != nil {
			writeDetail(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if fields := reportFieldErrors(p); len(fields) > 0 {
			writeFieldErrors(w, fields)
			return
		}
		rep := s.AddReport(userFrom(r.Context()).ID, p)
		writeJSON(w, http.StatusCreated, rep)
	}
}

func (s *Server) updateReportHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var u reports.Update
		if err := decodeBody(r, &u); err != nil {
			writeDetail(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		s.lock.Lock()
		rep, status := s.visibleReport(userFrom(r.Context()), r.PathValue("id"))
		var out reports.Report
		if rep != nil {
			u.Apply(rep)
			rep.UpdatedAt = nowTimeFunc().UTC()
			out = *rep
		}
		s.lock.Unlock()
		if rep == nil {
			writeLookupFailure(w, status, "Report")
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// deleteReportHandler also removes the report's people.
func (s *Server) deleteReportHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		s.lock.Lock()
		rep, status := s.visibleReport(userFrom(r.Context()), id)
		if rep != nil {
			delete(s.reports, id)
			for pid, p := range s.people {
				if p.ReportID == id {
					delete(s.people, pid)
				}
			}
		}
		s.lock.Unlock()
		if rep == nil {
			writeLookupFailure(w, status, "Report")
			return
		}
		writeJSON(w, http.StatusNoContent, nil)
	}
}

func (s *Server) listPeopleHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u := userFrom(r.Context())
		reportID := r.URL.Query().Get("report_id")
		if s.ignorePeopleFilter {
			reportID = ""
		}

		s.lock.Lock()
		out := make([]people.Person, 0, len(s.people))
		for _, p := range s.people {
			if reportID != "" && p.ReportID != reportID {
				continue
			}
			if rep, _ := s.visibleReport(u, p.ReportID); rep == nil {
				continue
			}
			out = append(out, *p)
		}
		s.lock.Unlock()
		sort.Slice(out, func(i, j int) bool {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		})
		writeJSON(w, http.StatusOK, out)
	}
}

// visiblePerson must be called with s.lock held.
func (s *Server) visiblePerson(u users.User, id string) (*people.Person, int) {
	p, ok := s.people[id]
	if !ok {
		return nil, http.StatusNotFound
	}
	if _, status := s.visibleReport(u, p.ReportID); status != http.StatusOK {
		return nil, status
	}
	return p, http.StatusOK
}

func (s *Server) getPersonHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.lock.Lock()
		p, status := s.visiblePerson(userFrom(r.Context()), r.PathValue("id"))
		var out people.Person
		if p != nil {
			out = *p
		}
		s.lock.Unlock()
		if p == nil {
			writeLookupFailure(w, status, "Person")
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func (s *Server) createPersonHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body people.Payload
		if err := decodeBody(r, &body); err != nil {
			writeDetail(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		var fields []fieldError
		if strings.TrimSpace(body.FullName) == "" {
			fields = append(fields, missing("full_name"))
		}
		if body.Status == "" {
			fields = append(fields, missing("status"))
		}
		if body.ReportID == "" {
			fields = append(fields, missing("report_id"))
		}
		if len(fields) > 0 {
			writeFieldErrors(w, fields)
			return
		}

		s.lock.Lock()
		rep, status := s.visibleReport(userFrom(r.Context()), body.ReportID)
		var out people.Person
		if rep != nil {
			out = s.addPersonLocked(body)
		}
		s.lock.Unlock()
		if rep == nil {
			writeLookupFailure(w, status, "Report")
			return
		}
		writeJSON(w, http.StatusCreated, out)
	}
}

func (s *Server) updatePersonHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var u people.Update
		if err := decodeBody(r, &u); err != nil {
			writeDetail(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		user := userFrom(r.Context())
		s.lock.Lock()
		p, status := s.visiblePerson(user, r.PathValue("id"))
		what := "Person"
		if p != nil && u.ReportID != nil {
			if rep, st := s.visibleReport(user, *u.ReportID); rep == nil {
				p, status, what = nil, st, "Report"
			}
		}
		var out people.Person
		if p != nil {
			u.Apply(p)
			p.UpdatedAt = nowTimeFunc().UTC()
			out = *p
		}
		s.lock.Unlock()
		if p == nil {
			writeLookupFailure(w, status, what)
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func (s *Server) deletePersonHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		s.lock.Lock()
		p, status := s.visiblePerson(userFrom(r.Context()), id)
		if p != nil {
			delete(s.people, id)
		}
		s.lock.Unlock()
		if p == nil {
			writeLookupFailure(w, status, "Person")
			return
		}
		writeJSON(w, http.StatusNoContent, nil)
	}
}

// AddReport stores a report for the given evangelist.
func (s *Server) AddReport(evangelistID string, p reports.Payload) reports.Report {
	now := nowTimeFunc().UTC()
	rep := &reports.Report{
		ID:              uuid.New().String(),
		EvangelistID:    evangelistID,
		OutreachName:    p.OutreachName,
		Location:        p.Location,
		Date:            p.Date,
		HeardCount:      p.HeardCount,
		InterestedCount: p.InterestedCount,
		AcceptedCount:   p.AcceptedCount,
		RepentedCount:   p.RepentedCount,
		Notes:           p.Notes,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	s.lock.Lock()
	defer s.lock.Unlock()
	s.reports[rep.ID] = rep
	return *rep
}

// AddPerson stores a person without checking who owns the report.
func (s *Server) AddPerson(p people.Payload) people.Person {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.addPersonLocked(p)
}

func (s *Server) addPersonLocked(p people.Payload) people.Person {
	now := nowTimeFunc().UTC()
	person := &people.Person{
		ID:          uuid.New().String(),
		ReportID:    p.ReportID,
		FullName:    p.FullName,
		PhoneNumber: p.PhoneNumber,
		Status:      p.Status,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.people[person.ID] = person
	return *person
}
