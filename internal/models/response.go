package models

import "github.com/gofiber/fiber/v2"

// Response is the JSON envelope returned by every endpoint.
type Response struct {
	Success     bool              `json:"success"`
	Message     string            `json:"message"`
	Data        any               `json:"data"`
	Errors      map[string]string `json:"errors"`
	Pagination  *Pagination       `json:"pagination,omitempty"`
	SearchQuery *string           `json:"search_query,omitempty"`
}

// Pagination describes one page of a larger result set.
type Pagination struct {
	Page    int   `json:"page"`
	Pages   int   `json:"pages"`
	PerPage int   `json:"per_page"`
	Total   int64 `json:"total"`
	HasNext bool  `json:"has_next"`
	HasPrev bool  `json:"has_prev"`
}

// NewPagination computes page metadata. Pages is zero for an empty set.
func NewPagination(page, perPage int, total int64) Pagination {
	pages := 0
	if perPage > 0 && total > 0 {
		pages = int((total + int64(perPage) - 1) / int64(perPage))
	}
	return Pagination{
		Page:    page,
		Pages:   pages,
		PerPage: perPage,
		Total:   total,
		HasNext: page < pages,
		HasPrev: page > 1,
	}
}

// RespondOK writes a successful envelope with the given status.
func RespondOK(c *fiber.Ctx, status int, message string, data any) error {
	return c.Status(status).JSON(Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// RespondPage writes a successful envelope carrying pagination metadata.
func RespondPage(c *fiber.Ctx, message string, data any, page Pagination) error {
	return c.Status(fiber.StatusOK).JSON(Response{
		Success:    true,
		Message:    message,
		Data:       data,
		Pagination: &page,
	})
}

// RespondWithError writes a failed envelope. Internal error details are
// never rendered.
func RespondWithError(c *fiber.Ctx, status int, message string, err error) error {
	appErr := AsAppError(err)
	if message == "" {
		message = appErr.Message
	}
	return c.Status(status).JSON(Response{
		Success: false,
		Message: message,
		Errors:  appErr.ErrorMap(),
	})
}
