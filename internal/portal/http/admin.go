package http

import (
	"net/http"

	"github.com/aussiebroadwan/portal/internal/portal/service"
	"github.com/aussiebroadwan/portal/internal/portal/session"
	"github.com/aussiebroadwan/portal/pkg/authsdk"
	"github.com/aussiebroadwan/portal/pkg/httpx"
)

type AdminHandler struct {
	DirectorService *service.DirectorService
	DivisionService *service.DivisionService
}

// HandleCreateDirector provisions a director.
//
//	@Summary		Create director
//	@Description	Creates an active director and returns a generated one-time password. Admin only.
//	@Tags			Admin
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.CreateDirectorRequest	true	"Director"
//	@Success		201		{object}	authsdk.CreateDirectorResponse
//	@Failure		400		{object}	authsdk.APIError
//	@Failure		401		{object}	authsdk.APIError
//	@Failure		403		{object}	authsdk.APIError
//	@Failure		409		{object}	authsdk.APIError	"Email already in use"
//	@Router			/api/admin/directors [post].
func (h *AdminHandler) HandleCreateDirector(w http.ResponseWriter, r *http.Request) {
	var req authsdk.CreateDirectorRequest
	if err := decodeJSON(w, r, &req); err != nil {
		authsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	p, password, err := h.DirectorService.CreateDirector(r.Context(), req.Email, req.Name, req.DivisionIDs)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, authsdk.CreateDirectorResponse{
		Director: toPrincipalResponse(p),
		Password: password,
	})
}

// HandleListDirectors lists directors.
//
//	@Summary	List directors
//	@Tags		Admin
//	@Security	BearerAuth
//	@Produce	json
//	@Success	200	{object}	authsdk.ListResponse[authsdk.PrincipalResponse]
//	@Router		/api/admin/directors [get].
func (h *AdminHandler) HandleListDirectors(w http.ResponseWriter, r *http.Request) {
	directors, err := h.DirectorService.ListDirectors(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out := authsdk.ListResponse[authsdk.PrincipalResponse]{Items: []authsdk.PrincipalResponse{}}
	for _, d := range directors {
		out.Items = append(out.Items, toPrincipalResponse(d))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// HandleSetActive activates or deactivates a director.
//
//	@Summary		Set director active flag
//	@Description	Deactivation takes effect on the director's next request.
//	@Tags			Admin
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string						true	"Director ID"
//	@Param			request	body		authsdk.SetActiveRequest	true	"Flag"
//	@Success		200		{object}	authsdk.PrincipalResponse
//	@Failure		404		{object}	authsdk.APIError
//	@Router			/api/admin/directors/{id}/active [put].
func (h *AdminHandler) HandleSetActive(w http.ResponseWriter, r *http.Request) {
	var req authsdk.SetActiveRequest
	if err := decodeJSON(w, r, &req); err != nil {
		authsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	id := r.PathValue("id")
	if caller, ok := session.PrincipalFromContext(r.Context()); ok && caller.ID == id {
		authsdk.ErrInvalidRequest.WithDescription("you cannot change your own account").WriteError(w)
		return
	}

	p, err := h.DirectorService.SetActive(r.Context(), id, req.Active)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toPrincipalResponse(p))
}

// HandleAssignDivisions replaces a director's divisions.
//
//	@Summary	Assign divisions
//	@Tags		Admin
//	@Security	BearerAuth
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string							true	"Director ID"
//	@Param		request	body		authsdk.AssignDivisionsRequest	true	"Divisions"
//	@Success	200		{object}	authsdk.PrincipalResponse
//	@Failure	400		{object}	authsdk.APIError	"Unknown division"
//	@Failure	404		{object}	authsdk.APIError
//	@Router		/api/admin/directors/{id}/divisions [put].
func (h *AdminHandler) HandleAssignDivisions(w http.ResponseWriter, r *http.Request) {
	var req authsdk.AssignDivisionsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		authsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	p, err := h.DirectorService.AssignDivisions(r.Context(), r.PathValue("id"), req.DivisionIDs)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toPrincipalResponse(p))
}

// HandleCreateDivision adds a division.
//
//	@Summary	Create division
//	@Tags		Admin
//	@Security	BearerAuth
//	@Accept		json
//	@Produce	json
//	@Param		request	body		authsdk.CreateDivisionRequest	true	"Division"
//	@Success	201		{object}	authsdk.DivisionResponse
//	@Failure	409		{object}	authsdk.APIError	"Name already in use"
//	@Router		/api/admin/divisions [post].
func (h *AdminHandler) HandleCreateDivision(w http.ResponseWriter, r *http.Request) {
	var req authsdk.CreateDivisionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		authsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	d, err := h.DivisionService.CreateDivision(r.Context(), req.Name)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, toDivisionResponse(d))
}

// HandleListDivisions lists every division.
//
//	@Summary	List divisions
//	@Tags		Admin
//	@Security	BearerAuth
//	@Produce	json
//	@Success	200	{object}	authsdk.ListResponse[authsdk.DivisionResponse]
//	@Router		/api/admin/divisions [get].
func (h *AdminHandler) HandleListDivisions(w http.ResponseWriter, r *http.Request) {
	divisions, err := h.DivisionService.ListDivisions(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeDivisions(w, divisions)
}

// HandleMyDivisions lists the divisions the calling director manages.
//
//	@Summary	My divisions
//	@Tags		Director
//	@Security	BearerAuth
//	@Produce	json
//	@Success	200	{object}	authsdk.ListResponse[authsdk.DivisionResponse]
//	@Router		/api/director/divisions [get].
func (h *AdminHandler) HandleMyDivisions(w http.ResponseWriter, r *http.Request) {
	caller, ok := session.PrincipalFromContext(r.Context())
	if !ok {
		authsdk.ErrUnauthenticated.WriteError(w)
		return
	}

	divisions, err := h.DivisionService.ListManagedBy(r.Context(), caller.ID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeDivisions(w, divisions)
}
