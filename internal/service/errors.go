// Package service implements the blog's business operations on top of the
// repository layer. Every method returns plain errors; failures the caller
// can act on are *models.AppError.
package service

import (
	"context"
	"log/slog"

	"blogapi/internal/middleware"
	"blogapi/internal/models"
)

// internal logs err with request context and hides it behind a generic
// AppError. AppErrors pass through unchanged.
func internal(ctx context.Context, op string, err error) error {
	if err == nil {
		return nil
	}
	if appErr := models.AsAppError(err); appErr.Code != models.CodeInternal {
		return appErr
	}
	middleware.Logger.ErrorContext(ctx, "service operation failed",
		slog.String("op", op),
		slog.String("error", err.Error()),
	)
	return models.AsAppError(err)
}
