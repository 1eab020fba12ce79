package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/lchelle/servicediary/core/feedback"
	"github.com/lchelle/servicediary/core/user"
)

type feedbackApi struct {
	svc      *feedback.Service
	validate *validator.Validate
}

func registerFeedbackAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := feedbackApi{svc: deps.FeedbackSvc, validate: deps.Validate}

	fg := g.Group("/feedback", jwt)
	fg.POST("/submit", api.submit)
}

func (api *feedbackApi) submit(ctx echo.Context) error {
	var data feedback.NewFeedback
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewFeedback")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	role, err := user.ParseRole(claims.Role)
	if err != nil {
		return errHttpForbidden
	}

	fb, err := api.svc.Submit(ctx.Request().Context(), claims.Subject, role, data)
	if err != nil {
		return errors.Wrap(err, "submitting feedback")
	}

	return ctx.JSON(http.StatusCreated, FeedbackResponse{
		Success:      true,
		Message:      "Feedback submitted successfully",
		FeedbackID:   fb.ID,
		TicketNumber: fb.TicketNumber(),
	})
}

type FeedbackResponse struct {
	Success      bool   `json:"success"`
	Message      string `json:"message"`
	FeedbackID   string `json:"feedbackId"`
	TicketNumber string `json:"ticketNumber"`
}
