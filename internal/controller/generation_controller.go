package controller

import (
	"bufio"
	"encoding/json"
	"fmt"

	"ai-writepad-be/internal/dto"
	"ai-writepad-be/internal/pkg/serverutils"
	"ai-writepad-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"
)

type IGenerationController interface {
	RegisterRoutes(r fiber.Router)
	Submit(ctx *fiber.Ctx) error
	Stream(ctx *fiber.Ctx) error
	Cancel(ctx *fiber.Ctx) error
}

type generationController struct {
	generationService service.IGenerationService
}

func NewGenerationController(generationService service.IGenerationService) IGenerationController {
	return &generationController{
		generationService: generationService,
	}
}

func (c *generationController) RegisterRoutes(r fiber.Router) {
	r.Post("/submit", c.Submit)
	r.Get("/stream/:generation_id", c.Stream)
	r.Post("/cancel/:generation_id", c.Cancel)
}

func (c *generationController) Submit(ctx *fiber.Ctx) error {
	var req dto.SubmitRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.generationService.Submit(ctx.Context(), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(res)
}

// Stream pushes the session's ordered events as SSE frames. The subscription
// is taken before the response body is handed to the stream writer so a
// missing or busy session still gets a JSON error response.
func (c *generationController) Stream(ctx *fiber.Ctx) error {
	generationID := ctx.Params("generation_id")

	session, events, err := c.generationService.OpenStream(generationID)
	if err != nil {
		return err
	}

	ctx.Set(fiber.HeaderContentType, "text/event-stream")
	ctx.Set(fiber.HeaderCacheControl, "no-cache")
	ctx.Set(fiber.HeaderConnection, "keep-alive")
	ctx.Set("X-Accel-Buffering", "no")

	ctx.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		defer c.generationService.Release(session)

		for event := range events {
			payload, err := json.Marshal(event)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", payload)
			if err := w.Flush(); err != nil {
				// Client went away; the session keeps running and the
				// terminal event stays replayable within the grace window.
				return
			}
			if event.Terminal() {
				return
			}
		}
	}))

	return nil
}

func (c *generationController) Cancel(ctx *fiber.Ctx) error {
	generationID := ctx.Params("generation_id")
	if err := c.generationService.Cancel(ctx.Context(), generationID); err != nil {
		return err
	}
	return ctx.JSON(serverutils.OK())
}
