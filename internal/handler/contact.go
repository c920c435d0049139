package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Vasyl-Hlushchenko/contacts-api/internal/model"
	"github.com/Vasyl-Hlushchenko/contacts-api/internal/service"
)

// ContactHandler bundles dependencies for the contact endpoints. Every
// handler resolves the account placed in context by the auth middleware
// and passes it down; the service layer scopes all queries by it.
type ContactHandler struct {
	Contacts *service.ContactService
}

func NewContactHandler(contacts *service.ContactService) *ContactHandler {
	return &ContactHandler{Contacts: contacts}
}

const birthDateLayout = "2006-01-02"

type contactReq struct {
	FirstName   string `json:"first_name" validate:"required,min=3,max=30"`
	LastName    string `json:"last_name" validate:"required,min=3,max=50"`
	Email       string `json:"email" validate:"required,email"`
	Phone       string `json:"phone" validate:"required,min=10,max=13"`
	BirthDate   string `json:"birth_date" validate:"required,datetime=2006-01-02"`
	Description string `json:"description" validate:"required,min=3,max=250"`
}

type contactResp struct {
	ID          uint64 `json:"id"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	BirthDate   string `json:"birth_date"`
	Description string `json:"description"`
}

func contactToResp(c *model.Contact) contactResp {
	return contactResp{
		ID:          c.ID,
		FirstName:   c.FirstName,
		LastName:    c.LastName,
		Email:       c.Email,
		Phone:       c.Phone,
		BirthDate:   c.BirthDate.Format(birthDateLayout),
		Description: c.Description,
	}
}

func contactsToResp(cs []*model.Contact) []contactResp {
	out := make([]contactResp, 0, len(cs))
	for _, c := range cs {
		out = append(out, contactToResp(c))
	}
	return out
}

// bindContact binds and validates the request body, returning the parsed
// service input. The datetime tag has already guaranteed the birth date
// parses.
func bindContact(c echo.Context) (service.ContactInput, error) {
	var req contactReq
	if err := c.Bind(&req); err != nil {
		return service.ContactInput{}, echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return service.ContactInput{}, err
	}
	birth, _ := time.Parse(birthDateLayout, req.BirthDate)
	return service.ContactInput{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		Phone:       req.Phone,
		BirthDate:   birth,
		Description: req.Description,
	}, nil
}

// List handles GET /api/contacts with optional skip/limit query params.
func (h *ContactHandler) List(c echo.Context) error {
	acc := currentAccount(c)
	skip, _ := strconv.Atoi(c.QueryParam("skip"))
	limit, err := strconv.Atoi(c.QueryParam("limit"))
	if err != nil || limit <= 0 {
		limit = 100
	}

	contacts, err := h.Contacts.List(c.Request().Context(), acc, skip, limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, contactsToResp(contacts))
}

// Get handles GET /api/contacts/:id.
func (h *ContactHandler) Get(c echo.Context) error {
	acc := currentAccount(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	contact, err := h.Contacts.Get(c.Request().Context(), acc, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if contact == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "contact not found"})
	}
	return c.JSON(http.StatusOK, contactToResp(contact))
}

// Create handles POST /api/contacts.
func (h *ContactHandler) Create(c echo.Context) error {
	acc := currentAccount(c)
	in, err := bindContact(c)
	if err != nil {
		return err
	}

	contact, err := h.Contacts.Create(c.Request().Context(), acc, in)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create failed"})
	}
	return c.JSON(http.StatusCreated, contactToResp(contact))
}

// Update handles PUT /api/contacts/:id with full replace semantics.
func (h *ContactHandler) Update(c echo.Context) error {
	acc := currentAccount(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	in, err := bindContact(c)
	if err != nil {
		return err
	}

	contact, err := h.Contacts.Update(c.Request().Context(), acc, id, in)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	if contact == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "contact not found"})
	}
	return c.JSON(http.StatusOK, contactToResp(contact))
}

// Remove handles DELETE /api/contacts/:id and returns the deleted snapshot.
func (h *ContactHandler) Remove(c echo.Context) error {
	acc := currentAccount(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	contact, err := h.Contacts.Remove(c.Request().Context(), acc, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	if contact == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "contact not found"})
	}
	return c.JSON(http.StatusOK, contactToResp(contact))
}

// Find handles GET /api/contacts/find/:query, a case-insensitive
// substring search over first name, last name and email.
func (h *ContactHandler) Find(c echo.Context) error {
	acc := currentAccount(c)
	needle := c.Param("query")

	contacts, err := h.Contacts.Search(c.Request().Context(), acc, needle)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, contactsToResp(contacts))
}

// Birthdays handles GET /api/contacts/birthdays/:days.
func (h *ContactHandler) Birthdays(c echo.Context) error {
	acc := currentAccount(c)
	days, err := strconv.Atoi(c.Param("days"))
	if err != nil || days < 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid days"})
	}

	contacts, err := h.Contacts.UpcomingBirthdays(c.Request().Context(), acc, days)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, contactsToResp(contacts))
}
