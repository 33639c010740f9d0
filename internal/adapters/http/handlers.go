package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/SomeLazyDayz/Backend-15-11/internal/core/domain"
	"github.com/SomeLazyDayz/Backend-15-11/internal/core/usecases"
)

// DirectoryStats holds row counts from the core tables.
type DirectoryStats struct {
	Users     int `json:"users"`
	Donors    int `json:"donors"`
	Located   int `json:"located_donors"`
	Hospitals int `json:"hospitals"`
}

// StatsHandler returns row counts from the directory tables.
func StatsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if deps.DB == nil {
			return errInternal(c, "database not available")
		}

		var stats DirectoryStats
		row := deps.DB.Pool.QueryRow(c.Context(), `
			SELECT
				(SELECT count(*) FROM users),
				(SELECT count(*) FROM users WHERE role = 'donor'),
				(SELECT count(*) FROM users WHERE role = 'donor' AND lat IS NOT NULL AND lng IS NOT NULL),
				(SELECT count(*) FROM hospitals)
		`)
		if err := row.Scan(&stats.Users, &stats.Donors, &stats.Located, &stats.Hospitals); err != nil {
			return errInternal(c, err.Error())
		}

		c.Set("Cache-Control", "public, max-age=60")
		return c.JSON(stats)
	}
}

// RegisterDonorHandler creates a donor account. Registration succeeds
// even when the address cannot be geocoded; the response then carries a
// warning and the donor stays invisible to proximity alerts until their
// address is fixed.
func RegisterDonorHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var reg usecases.DonorRegistration
		if err := c.BodyParser(&reg); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		donor, located, err := deps.Donors.Register(c.Context(), reg)
		if err != nil {
			return writeDomainError(c, err)
		}

		resp := fiber.Map{
			"message": "registration successful",
			"donor":   donor,
		}
		if !located {
			resp["warning"] = "address could not be located; you will not appear in proximity alerts until it is updated"
		}
		return c.Status(fiber.StatusCreated).JSON(resp)
	}
}

// LoginHandler verifies donor credentials.
func LoginHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := c.BodyParser(&body); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		donor, err := deps.Donors.Login(c.Context(), body.Email, body.Password)
		if err != nil {
			return writeDomainError(c, err)
		}
		return c.JSON(fiber.Map{
			"message": "login successful",
			"donor":   donor,
		})
	}
}

// ListDonorsHandler returns all users with offset/limit pagination.
func ListDonorsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		donors, err := deps.Donors.List(c.Context())
		if err != nil {
			return writeDomainError(c, err)
		}

		offset := c.QueryInt("offset", 0)
		limit := c.QueryInt("limit", 100)
		if offset < 0 {
			offset = 0
		}
		if limit <= 0 || limit > 200 {
			limit = 100
		}

		total := len(donors)
		if offset >= total {
			donors = nil
		} else {
			end := offset + limit
			if end > total {
				end = total
			}
			donors = donors[offset:end]
		}

		pg := Pagination{Offset: offset, Limit: limit, Total: total}
		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse{Data: donors, Pagination: pg})
	}
}

// GetDonorHandler returns a single donor by ID.
func GetDonorHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return errBadRequest(c, "donor id must be a positive integer")
		}
		donor, err := deps.Donors.GetByID(c.Context(), int64(id))
		if err != nil {
			return writeDomainError(c, err)
		}
		return c.JSON(donor)
	}
}

// UpdateDonorHandler applies a partial update to a donor profile.
// Changing the address re-runs geocoding; an unresolvable address
// clears the stored location.
func UpdateDonorHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return errBadRequest(c, "donor id must be a positive integer")
		}

		var upd usecases.DonorUpdate
		if err := c.BodyParser(&upd); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		donor, err := deps.Donors.Update(c.Context(), int64(id), upd)
		if err != nil {
			return writeDomainError(c, err)
		}
		return c.JSON(fiber.Map{
			"message": "profile updated",
			"donor":   donor,
		})
	}
}

// ListHospitalsHandler returns hospitals with offset/limit pagination.
func ListHospitalsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		hospitals, err := deps.Hospitals.List(c.Context())
		if err != nil {
			return writeDomainError(c, err)
		}

		offset := c.QueryInt("offset", 0)
		limit := c.QueryInt("limit", 100)
		if offset < 0 {
			offset = 0
		}
		if limit <= 0 || limit > 200 {
			limit = 100
		}

		total := len(hospitals)
		if offset >= total {
			hospitals = nil
		} else {
			end := offset + limit
			if end > total {
				end = total
			}
			hospitals = hospitals[offset:end]
		}

		pg := Pagination{Offset: offset, Limit: limit, Total: total}
		SetLinkHeaders(c, pg)
		c.Set("Cache-Control", "public, max-age=3600")
		return c.JSON(PaginatedResponse{Data: hospitals, Pagination: pg})
	}
}

// GetHospitalHandler returns a single hospital by ID.
func GetHospitalHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return errBadRequest(c, "hospital id must be a positive integer")
		}
		hospital, err := deps.Hospitals.GetByID(c.Context(), int64(id))
		if err != nil {
			return writeDomainError(c, err)
		}
		return c.JSON(hospital)
	}
}

// CreateAlertHandler runs the proximity pipeline for a hospital's blood
// request and returns the ranked shortlist of donors.
func CreateAlertHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req domain.AlertRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		result, err := deps.Alerts.CreateAlert(c.Context(), req)
		if err != nil {
			return writeDomainError(c, err)
		}
		return c.JSON(result)
	}
}
