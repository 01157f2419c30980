package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/aussiebroadwan/portal/internal/portal/domain"
	"github.com/aussiebroadwan/portal/internal/portal/service"
	"github.com/aussiebroadwan/portal/internal/portal/store"
	"github.com/aussiebroadwan/portal/pkg/authsdk"
	"github.com/aussiebroadwan/portal/pkg/httpx"
	"github.com/aussiebroadwan/portal/pkg/slogx"
)

const maxBodyBytes = 64 << 10

func toPrincipalResponse(p domain.Principal) authsdk.PrincipalResponse {
	return authsdk.PrincipalResponse{
		ID:          p.ID,
		Email:       p.Email,
		Name:        p.Name,
		Role:        p.Role.String(),
		IsActive:    p.IsActive,
		DivisionIDs: p.DivisionIDs,
		CreatedAt:   p.CreatedAt,
	}
}

func toDivisionResponse(d domain.Division) authsdk.DivisionResponse {
	return authsdk.DivisionResponse{ID: d.ID, Name: d.Name, CreatedAt: d.CreatedAt}
}

// decodeJSON reads a bounded JSON body into v. Unknown fields are rejected.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errors.New("body must contain a single JSON object")
	}
	return nil
}

// writeServiceError maps service and store errors to API errors. Anything
// unexpected is logged and reported without detail.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		authsdk.ErrInvalidRequest.WithDescription(err.Error()).WriteError(w)
	case errors.Is(err, store.ErrNotFound), errors.Is(err, service.ErrNotDirector):
		authsdk.ErrNotFound.WriteError(w)
	case errors.Is(err, store.ErrAlreadyExists):
		authsdk.ErrConflict.WriteError(w)
	default:
		slogx.FromContext(r.Context()).Error("request failed", "err", err)
		authsdk.ErrServerError.WriteError(w)
	}
}

func writeDivisions(w http.ResponseWriter, divisions []domain.Division) {
	out := authsdk.ListResponse[authsdk.DivisionResponse]{Items: []authsdk.DivisionResponse{}}
	for _, d := range divisions {
		out.Items = append(out.Items, toDivisionResponse(d))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}
