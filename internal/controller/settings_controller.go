package controller

import (
	"ai-writepad-be/internal/dto"
	"ai-writepad-be/internal/pkg/serverutils"
	"ai-writepad-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ISettingsController interface {
	RegisterRoutes(r fiber.Router)
	Update(ctx *fiber.Ctx) error
	SetToken(ctx *fiber.Ctx) error
}

type settingsController struct {
	settingsService service.ISettingsService
}

func NewSettingsController(settingsService service.ISettingsService) ISettingsController {
	return &settingsController{
		settingsService: settingsService,
	}
}

func (c *settingsController) RegisterRoutes(r fiber.Router) {
	r.Post("/settings", c.Update)
	r.Post("/set_token", c.SetToken)
}

func (c *settingsController) Update(ctx *fiber.Ctx) error {
	var req dto.UpdateSettingsRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := c.settingsService.Update(ctx.Context(), &req); err != nil {
		return err
	}
	return ctx.JSON(serverutils.OK())
}

func (c *settingsController) SetToken(ctx *fiber.Ctx) error {
	var req dto.SetTokenRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	if err := c.settingsService.SetToken(ctx.Context(), req.Token); err != nil {
		return err
	}
	return ctx.JSON(serverutils.OK())
}
