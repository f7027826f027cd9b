package controller

import (
	"ai-writepad-be/internal/dto"
	"ai-writepad-be/internal/pkg/serverutils"
	"ai-writepad-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IDocumentController interface {
	RegisterRoutes(r fiber.Router)
	List(ctx *fiber.Ctx) error
	Search(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	Create(ctx *fiber.Ctx) error
	Update(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
	SetCurrent(ctx *fiber.Ctx) error
}

type documentController struct {
	documentService service.IDocumentService
}

func NewDocumentController(documentService service.IDocumentService) IDocumentController {
	return &documentController{
		documentService: documentService,
	}
}

func (c *documentController) RegisterRoutes(r fiber.Router) {
	r.Get("/documents", c.List)
	r.Get("/documents/search", c.Search)
	r.Post("/documents/new", c.Create)
	r.Get("/documents/:id", c.Show)
	r.Put("/documents/:id", c.Update)
	r.Delete("/documents/:id", c.Delete)
	r.Post("/documents/:id/set-current", c.SetCurrent)
}

func (c *documentController) List(ctx *fiber.Ctx) error {
	res, err := c.documentService.List(ctx.Context())
	if err != nil {
		return err
	}
	return ctx.JSON(res)
}

func (c *documentController) Search(ctx *fiber.Ctx) error {
	q := ctx.Query("q", "")
	res, err := c.documentService.Search(ctx.Context(), q)
	if err != nil {
		return err
	}
	return ctx.JSON(res)
}

func (c *documentController) Show(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid document id")
	}

	res, err := c.documentService.Show(ctx.Context(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(res)
}

func (c *documentController) Create(ctx *fiber.Ctx) error {
	var req dto.CreateDocumentRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	res, err := c.documentService.Create(ctx.Context(), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(res)
}

func (c *documentController) Update(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid document id")
	}

	var req dto.UpdateDocumentRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := c.documentService.Update(ctx.Context(), id, &req); err != nil {
		return err
	}
	return ctx.JSON(serverutils.OK())
}

func (c *documentController) Delete(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid document id")
	}

	if err := c.documentService.Delete(ctx.Context(), id); err != nil {
		return err
	}
	return ctx.JSON(serverutils.OK())
}

func (c *documentController) SetCurrent(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid document id")
	}

	if err := c.documentService.SetCurrent(ctx.Context(), id); err != nil {
		return err
	}
	return ctx.JSON(serverutils.OK())
}
