package reports

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

// Service wraps the report endpoints. Errors from the call path are returned
// unchanged apart from context.
type Service struct {
	api Caller
}

func NewService(api Caller) *Service {
	return &Service{api: api}
}

func (s *Service) List(ctx context.Context) ([]Report, error) {
	var out []Report
	if err := s.api.DoJSON(ctx, apiclient.Request{Method: http.MethodGet, Path: apiclient.RouteReports}, &out); err != nil {
		return nil, errs.Wrapf(err, "[reports List]")
	}
	if out == nil {
		out = []Report{}
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Report, error) {
	var out Report
	if err := s.api.DoJSON(ctx, apiclient.Request{Method: http.MethodGet, Path: itemPath(id)}, &out); err != nil {
		return nil, errs.Wrapf(err, "[reports Get] %s", id)
	}
	return &out, nil
}

func (s *Service) Create(ctx context.Context, p Payload) (*Report, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	var out Report
	if err := s.api.DoJSON(ctx, apiclient.Request{Method: http.MethodPost, Path: apiclient.RouteReports, Body: p}, &out); err != nil {
		return nil, errs.Wrapf(err, "[reports Create]")
	}
	return &out, nil
}

func (s *Service) Update(ctx context.Context, id string, u Update) (*Report, error) {
	if err := u.Validate(); err != nil {
		return nil, err
	}
	var out Report
	if err := s.api.DoJSON(ctx, apiclient.Request{Method: http.MethodPut, Path: itemPath(id), Body: u}, &out); err != nil {
		return nil, errs.Wrapf(err, "[reports Update] %s", id)
	}
	return &out, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.api.DoJSON(ctx, apiclient.Request{Method: http.MethodDelete, Path: itemPath(id)}, nil); err != nil {
		return errs.Wrapf(err, "[reports Delete] %s", id)
	}
	return nil
}

func itemPath(id string) string {
	return apiclient.RouteReports + "/" + url.PathEscape(id)
}
