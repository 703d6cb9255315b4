package validation

import (
	"fmt"
	"strconv"
	"strings"

	"blogapi/internal/models"
)

const missingField = "Missing data for required field."

// Errors collects field-keyed validation messages.
type Errors map[string]string

// Add records the first message for field.
func (e Errors) Add(field, message string) {
	if _, exists := e[field]; !exists {
		e[field] = message
	}
}

// Check records err under field when err is non-nil.
func (e Errors) Check(field string, err error) {
	if err != nil {
		e.Add(field, err.Error())
	}
}

// Err returns a validation AppError, or nil when nothing was recorded.
func (e Errors) Err() error {
	if len(e) == 0 {
		return nil
	}
	return models.NewFieldValidationError(e)
}

func required(errs Errors, field string, v *string) (string, bool) {
	if v == nil {
		errs.Add(field, missingField)
		return "", false
	}
	return *v, true
}

// RegisterRequest is the body of POST /api/auth/register.
type RegisterRequest struct {
	Username *string `json:"username"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
}

// RegisterInput is a validated registration.
type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// Validate checks the registration fields.
func (r RegisterRequest) Validate() (RegisterInput, error) {
	errs := Errors{}
	var in RegisterInput
	if v, ok := required(errs, "username", r.Username); ok {
		in.Username = strings.TrimSpace(v)
		errs.Check("username", ValidateUsername(in.Username))
	}
	if v, ok := required(errs, "email", r.Email); ok {
		in.Email = strings.TrimSpace(v)
		errs.Check("email", ValidateEmail(in.Email))
	}
	if v, ok := required(errs, "password", r.Password); ok {
		in.Password = v
		errs.Check("password", ValidatePassword(v))
	}
	return in, errs.Err()
}

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Username *string `json:"username"`
	Password *string `json:"password"`
}

// Validate checks that both credentials are present.
func (r LoginRequest) Validate() (username, password string, err error) {
	errs := Errors{}
	if v, ok := required(errs, "username", r.Username); ok {
		username = strings.TrimSpace(v)
	}
	if v, ok := required(errs, "password", r.Password); ok {
		password = v
	}
	return username, password, errs.Err()
}

// CreatePostRequest is the body of POST /api/posts.
type CreatePostRequest struct {
	Title  *string `json:"title"`
	Body   *string `json:"body"`
	Author *string `json:"author"`
}

// CreatePostInput is a validated post creation.
type CreatePostInput struct {
	Title  string
	Body   string
	Author string
}

// Validate checks the post fields.
func (r CreatePostRequest) Validate() (CreatePostInput, error) {
	errs := Errors{}
	var in CreatePostInput
	if v, ok := required(errs, "title", r.Title); ok {
		in.Title = v
		errs.Check("title", checkLength(v, 1, TitleMax))
	}
	if v, ok := required(errs, "body", r.Body); ok {
		in.Body = v
		errs.Check("body", checkLength(v, BodyMin, 0))
	}
	if v, ok := required(errs, "author", r.Author); ok {
		in.Author = v
		errs.Check("author", checkLength(v, 1, AuthorMax))
	}
	return in, errs.Err()
}

// UpdatePostRequest is the body of PUT /api/posts/:id. Absent or empty
// fields leave the stored value unchanged.
type UpdatePostRequest struct {
	Title *string `json:"title"`
	Body  *string `json:"body"`
}

// UpdatePostInput carries only the fields to change.
type UpdatePostInput struct {
	Title string
	Body  string
}

// Validate checks the fields that were supplied.
func (r UpdatePostRequest) Validate() (UpdatePostInput, error) {
	errs := Errors{}
	var in UpdatePostInput
	if r.Title != nil && *r.Title != "" {
		in.Title = *r.Title
		errs.Check("title", checkLength(in.Title, 1, TitleMax))
	}
	if r.Body != nil && *r.Body != "" {
		in.Body = *r.Body
		errs.Check("body", checkLength(in.Body, BodyMin, 0))
	}
	return in, errs.Err()
}

// VoteRequest is the body of POST /api/posts/:id/vote.
type VoteRequest struct {
	VoteType *string `json:"vote_type"`
}

// Validate returns true for an upvote and false for a downvote.
func (r VoteRequest) Validate() (bool, error) {
	errs := Errors{}
	v, ok := required(errs, "vote_type", r.VoteType)
	if ok {
		errs.Check("vote_type", oneOf(v, models.VoteTypeUpvote, models.VoteTypeDownvote))
	}
	return v == models.VoteTypeUpvote, errs.Err()
}

// CommentRequest is the body of POST /api/posts/:id/comments.
type CommentRequest struct {
	Content *string `json:"content"`
}

// Validate checks the comment content.
func (r CommentRequest) Validate() (string, error) {
	errs := Errors{}
	v, ok := required(errs, "content", r.Content)
	if ok {
		errs.Check("content", checkLength(v, 1, CommentMax))
	}
	return v, errs.Err()
}

// PageQuery holds validated pagination parameters.
type PageQuery struct {
	Page    int
	PerPage int
}

// ListQuery holds validated list and search parameters.
type ListQuery struct {
	PageQuery
	Query  string
	SortBy string
	Order  string
}

// QueryGetter matches fiber.Ctx.Query.
type QueryGetter func(key string, defaultValue ...string) string

// ParsePageQuery reads page and per_page.
func ParsePageQuery(get QueryGetter) (PageQuery, error) {
	errs := Errors{}
	q := parsePage(get, errs)
	return q, errs.Err()
}

// ParseListQuery reads q, page, per_page, sort_by and order.
func ParseListQuery(get QueryGetter) (ListQuery, error) {
	errs := Errors{}
	q := ListQuery{
		PageQuery: parsePage(get, errs),
		Query:     get("q"),
		SortBy:    get("sort_by", models.SortByPublishedAt),
		Order:     get("order", models.OrderDesc),
	}
	errs.Check("sort_by", oneOf(q.SortBy, models.SortByPublishedAt, models.SortByTitle, models.SortByVoteScore))
	errs.Check("order", oneOf(q.Order, models.OrderAsc, models.OrderDesc))
	return q, errs.Err()
}

func parsePage(get QueryGetter, errs Errors) PageQuery {
	q := PageQuery{Page: 1, PerPage: 10}
	if raw := get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		switch {
		case err != nil:
			errs.Add("page", "Not a valid integer.")
		case n < 1:
			errs.Add("page", "Must be greater than or equal to 1.")
		default:
			q.Page = n
		}
	}
	if raw := get("per_page"); raw != "" {
		n, err := strconv.Atoi(raw)
		switch {
		case err != nil:
			errs.Add("per_page", "Not a valid integer.")
		case n < 1 || n > PerPageMax:
			errs.Add("per_page", fmt.Sprintf("Must be greater than or equal to 1 and less than or equal to %d.", PerPageMax))
		default:
			q.PerPage = n
		}
	}
	return q
}
