package authsdk

import (
	"context"
	"net/http"
)

// Session performs requests with an explicit bearer token.
type Session struct {
	client *SDKClient
	token  string
}

// Token returns the bearer token the session was created with.
func (s *Session) Token() string { return s.token }

func (s *Session) do(ctx context.Context, method, path string, body any, target any, expected int) error {
	resp, err := s.client.doJSON(ctx, method, path, body, map[string]string{
		"Authorization": "Bearer " + s.token,
	})
	if err != nil {
		return err
	}
	return decodeJSON(resp, target, expected)
}

// Me returns the principal behind the bearer token.
func (s *Session) Me(ctx context.Context) (*PrincipalResponse, error) {
	var out PrincipalResponse
	if err := s.do(ctx, http.MethodGet, "/api/auth/me", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateDirector provisions a director. Requires the admin role.
func (s *Session) CreateDirector(ctx context.Context, req CreateDirectorRequest) (*CreateDirectorResponse, error) {
	var out CreateDirectorResponse
	if err := s.do(ctx, http.MethodPost, "/api/admin/directors", req, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListDirectors lists director accounts. Requires the admin role.
func (s *Session) ListDirectors(ctx context.Context) ([]PrincipalResponse, error) {
	var out ListResponse[PrincipalResponse]
	if err := s.do(ctx, http.MethodGet, "/api/admin/directors", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return out.Items, nil
}

// SetDirectorActive activates or deactivates a director. Requires the admin role.
func (s *Session) SetDirectorActive(ctx context.Context, id string, active bool) (*PrincipalResponse, error) {
	var out PrincipalResponse
	err := s.do(ctx, http.MethodPut, "/api/admin/directors/"+id+"/active", SetActiveRequest{Active: active}, &out, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// AssignDivisions replaces the divisions a director manages. Requires the
// admin role.
func (s *Session) AssignDivisions(ctx context.Context, id string, divisionIDs []string) (*PrincipalResponse, error) {
	var out PrincipalResponse
	err := s.do(ctx, http.MethodPut, "/api/admin/directors/"+id+"/divisions",
		AssignDivisionsRequest{DivisionIDs: divisionIDs}, &out, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateDivision adds a division. Requires the admin role.
func (s *Session) CreateDivision(ctx context.Context, name string) (*DivisionResponse, error) {
	var out DivisionResponse
	if err := s.do(ctx, http.MethodPost, "/api/admin/divisions", CreateDivisionRequest{Name: name}, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListDivisions lists every division. Requires the admin role.
func (s *Session) ListDivisions(ctx context.Context) ([]DivisionResponse, error) {
	var out ListResponse[DivisionResponse]
	if err := s.do(ctx, http.MethodGet, "/api/admin/divisions", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return out.Items, nil
}

// MyDivisions lists the divisions the calling director manages.
func (s *Session) MyDivisions(ctx context.Context) ([]DivisionResponse, error) {
	var out ListResponse[DivisionResponse]
	if err := s.do(ctx, http.MethodGet, "/api/director/divisions", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return out.Items, nil
}
