package people

import (
	"context"
	"net/http"
	"net/url"

	"github.com/jrsteele09/evangelism-tracker/apiclient"
	errs "github.com/jrsteele09/evangelism-tracker/internal/errors"
)

// Caller is the authenticated call path. *apiclient.Client satisfies it.
type Caller interface {
	DoJSON(ctx context.Context, req apiclient.Request, out any) error
}

type Service struct {
	api Caller
}

func NewService(api Caller) *Service {
	return &Service{api: api}
}

// List returns people, optionally only those of one report. The filter is
// sent to the server and applied again here in case the server ignores it.
func (s *Service) List(ctx context.Context, reportID string) ([]Person, error) {
	req := apiclient.Request{Method: http.MethodGet, Path: apiclient.RoutePeople}
	if reportID != "" {
		req.Query = url.Values{"report_id": {reportID}}
	}

	var all []Person
	if err := s.api.DoJSON(ctx, req, &all); err != nil {
		return nil, errs.Wrapf(err, "[people List]")
	}
	if reportID == "" {
		if all == nil {
			all = []Person{}
		}
		return all, nil
	}

	out := make([]Person, 0, len(all))
	for _, p := range all {
		if p.ReportID == reportID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Person, error) {
	var out Person
	if err := s.api.DoJSON(ctx, apiclient.Request{Method: http.MethodGet, Path: itemPath(id)}, &out); err != nil {
		return nil, errs.Wrapf(err, "[people Get] %s", id)
	}
	return &out, nil
}

func (s *Service) Create(ctx context.Context, p Payload) (*Person, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	var out Person
	if err := s.api.DoJSON(ctx, apiclient.Request{Method: http.MethodPost, Path: apiclient.RoutePeople, Body: p}, &out); err != nil {
		return nil, errs.Wrapf(err, "[people Create]")
	}
	return &out, nil
}

func (s *Service) Update(ctx context.Context, id string, u Update) (*Person, error) {
	if err := u.Validate(); err != nil {
		return nil, err
	}
	var out Person
	if err := s.api.DoJSON(ctx, apiclient.Request{Method: http.MethodPut, Path: itemPath(id), Body: u}, &out); err != nil {
		return nil, errs.Wrapf(err, "[people Update] %s", id)
	}
	return &out, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.api.DoJSON(ctx, apiclient.Request{Method: http.MethodDelete, Path: itemPath(id)}, nil); err != nil {
		return errs.Wrapf(err, "[people Delete] %s", id)
	}
	return nil
}

func itemPath(id string) string {
	return apiclient.RoutePeople + "/" + url.PathEscape(id)
}
