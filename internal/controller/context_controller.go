package controller

import (
	"cortex-ai-be/internal/dto"
	"cortex-ai-be/internal/pkg/serverutils"
	"cortex-ai-be/internal/service"
	"cortex-ai-be/pkg/apperror"

	"github.com/gofiber/fiber/v2"
)

type IContextController interface {
	RegisterRoutes(r fiber.Router, auth fiber.Handler)
	AddReference(ctx *fiber.Ctx) error
	RemoveReference(ctx *fiber.Ctx) error
	Search(ctx *fiber.Ctx) error
}

type contextController struct {
	contextService service.IContextService
}

func NewContextController(contextService service.IContextService) IContextController {
	return &contextController{
		contextService: contextService,
	}
}

func (c *contextController) RegisterRoutes(r fiber.Router, auth fiber.Handler) {
	h := r.Group("/chat/v1")
	h.Post("conversations/:id/context", auth, c.AddReference)
	h.Delete("conversations/:id/context", auth, c.RemoveReference)
	h.Get("context/search", auth, c.Search)
}

func (c *contextController) AddReference(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserID(ctx)
	if err != nil {
		return err
	}
	conversationId, err := paramID(ctx, "id")
	if err != nil {
		return err
	}

	var req dto.AddContextReferenceRequest
	if err := ctx.BodyParser(&req); err != nil {
		return apperror.Validation("invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.contextService.AddReference(ctx.UserContext(), userId, conversationId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success add context reference", res))
}

func (c *contextController) RemoveReference(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserID(ctx)
	if err != nil {
		return err
	}
	conversationId, err := paramID(ctx, "id")
	if err != nil {
		return err
	}

	var req dto.RemoveContextReferenceRequest
	if err := ctx.QueryParser(&req); err != nil {
		return apperror.Validation("invalid query parameters")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.contextService.RemoveReference(ctx.UserContext(), userId, conversationId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success remove context reference", res))
}

func (c *contextController) Search(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserID(ctx)
	if err != nil {
		return err
	}

	var req dto.SearchContextRequest
	if err := ctx.QueryParser(&req); err != nil {
		return apperror.Validation("invalid query parameters")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.contextService.Search(ctx.UserContext(), userId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success search context", res))
}
