// FILE: internal/controller/admin_controller.go
package controller

import (
	"admissions-rag-be/internal/pkg/serverutils"
	"admissions-rag-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IAdminController interface {
	RegisterRoutes(r fiber.Router)
}

type adminController struct {
	configService service.IConfigService
}

func NewAdminController(configService service.IConfigService) IAdminController {
	return &adminController{configService: configService}
}

func (c *adminController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/admin/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Post("config/reload", c.ReloadConfig)
	h.Get("config/status", c.ConfigStatus)
}

func (c *adminController) ReloadConfig(ctx *fiber.Ctx) error {
	res, err := c.configService.Reload(ctx.Context())
	if err != nil {
		// Reload failure is not fatal: report it with the local fallback state.
		return ctx.Status(fiber.StatusBadGateway).JSON(serverutils.ErrorResponse(fiber.StatusBadGateway, err.Error()))
	}
	return ctx.JSON(serverutils.SuccessResponse("Success reload config", res))
}

func (c *adminController) ConfigStatus(ctx *fiber.Ctx) error {
	return ctx.JSON(serverutils.SuccessResponse("Success show config status", c.configService.Status()))
}
