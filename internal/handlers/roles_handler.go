package handlers

import (
	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/resume-screener/internal/services"
)

type RolesHandler struct {
	roles services.RoleCatalog
}

func NewRolesHandler(roles services.RoleCatalog) *RolesHandler {
	return &RolesHandler{roles: roles}
}

// HandleList handles GET /api/roles
func (h *RolesHandler) HandleList(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"roles": h.roles.List(),
	})
}

// HandleGet handles GET /api/roles/:id
func (h *RolesHandler) HandleGet(c *fiber.Ctx) error {
	profile, err := h.roles.Lookup(c.Params("id"))
	if err != nil {
		return writeScoringError(c, err)
	}
	return c.JSON(profile)
}
