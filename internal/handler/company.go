package handler

import (
	"database/sql"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/greenwork/greenwork-api/internal/middleware"
	"github.com/greenwork/greenwork-api/internal/model"
	"github.com/greenwork/greenwork-api/internal/repository"
)

// CompanyHandler implements the /api/companies endpoints.  Writes on
// an existing company are restricted to its owner or an admin.
type CompanyHandler struct {
	Companies CompanyStore
	Users     UserStore
}

func NewCompanyHandler(companies CompanyStore, users UserStore) *CompanyHandler {
	return &CompanyHandler{Companies: companies, Users: users}
}

// List handles GET /api/companies.
func (h *CompanyHandler) List(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	companies, err := h.Companies.List(ctx)
	if err != nil {
		return serverError(c, "Failed to load companies")
	}
	return c.JSON(http.StatusOK, companies)
}

// Get handles GET /api/companies/:id.
func (h *CompanyHandler) Get(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return badRequest(c, "Invalid id")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	company, err := h.Companies.GetByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return notFound(c, "Company not found")
		}
		return serverError(c, "Failed to load company")
	}
	return c.JSON(http.StatusOK, company)
}

// ListByUser handles GET /api/users/:id/companies.  Only the user
// themselves or an admin may list a user's companies.
func (h *CompanyHandler) ListByUser(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return badRequest(c, "Invalid id")
	}
	if !middleware.OwnerOrAdmin(c, id) {
		return fail(c, http.StatusForbidden, "You do not have permission to view these companies")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	companies, err := h.Companies.ListByUser(ctx, id)
	if err != nil {
		return serverError(c, "Failed to load companies")
	}
	return c.JSON(http.StatusOK, companies)
}

type companyCreateReq struct {
	UserID  uint64  `json:"user_id"`
	Name    string  `json:"name"`
	Email   string  `json:"email"`
	Phone   *string `json:"phone"`
	Address *string `json:"address"`
}

// Create handles POST /api/companies.
func (h *CompanyHandler) Create(c echo.Context) error {
	var req companyCreateReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.UserID == 0 {
		return badRequest(c, "Field 'user_id' is required")
	}
	if req.Name == "" {
		return badRequest(c, "Field 'name' is required")
	}
	if req.Email == "" {
		return badRequest(c, "Field 'email' is required")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if _, err := h.Users.GetByID(ctx, req.UserID); err != nil {
		if err == sql.ErrNoRows {
			return badRequest(c, "The given user does not exist")
		}
		return serverError(c, "Failed to create company")
	}

	company := model.Company{
		UserID:  req.UserID,
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Address: req.Address,
	}
	id, err := h.Companies.Create(ctx, company)
	if err != nil {
		if err == repository.ErrEmailExists {
			return fail(c, http.StatusConflict, "Email already registered for another company")
		}
		return serverError(c, "Failed to create company")
	}
	company.ID = id
	return c.JSON(http.StatusCreated, echo.Map{
		"success": true,
		"message": "Company created successfully",
		"company": company,
	})
}

type companyUpdateReq struct {
	Name    *string `json:"name"`
	Email   *string `json:"email"`
	Phone   *string `json:"phone"`
	Address *string `json:"address"`
}

// Update handles PUT /api/companies/:id.  The owning user_id can
// never change.
func (h *CompanyHandler) Update(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return badRequest(c, "Invalid id")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	existing, err := h.Companies.GetByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return notFound(c, "Company not found")
		}
		return serverError(c, "Failed to load company")
	}
	if !middleware.OwnerOrAdmin(c, existing.UserID) {
		return fail(c, http.StatusForbidden, "You do not have permission to modify this company")
	}

	var req companyUpdateReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	patch := repository.CompanyPatch{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Address: req.Address,
	}
	if err := h.Companies.Update(ctx, id, patch); err != nil {
		if err == repository.ErrEmailExists {
			return fail(c, http.StatusConflict, "Email already in use by another company")
		}
		return serverError(c, "Failed to update company")
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "Company updated successfully"})
}

// Delete handles DELETE /api/companies/:id.  Rooms are not cascaded;
// they keep their company_id.
func (h *CompanyHandler) Delete(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return badRequest(c, "Invalid id")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	existing, err := h.Companies.GetByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return notFound(c, "Company not found")
		}
		return serverError(c, "Failed to load company")
	}
	if !middleware.OwnerOrAdmin(c, existing.UserID) {
		return fail(c, http.StatusForbidden, "You do not have permission to delete this company")
	}

	if err := h.Companies.Delete(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return notFound(c, "Company not found")
		}
		return serverError(c, "Failed to delete company")
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "Company deleted successfully"})
}
