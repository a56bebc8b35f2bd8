package handlers

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"unitalent/talent-center/internal/models"
	"unitalent/talent-center/internal/repositories"
)

// CatalogHandler serves one admin-managed collection. Reads are public,
// writes go through the admin group. Fields maps accepted JSON keys to
// columns; anything else in a body is rejected.
type CatalogHandler[T any] struct {
	repo     repositories.CatalogRepository[T]
	fields   map[string]string
	required string
}

func NewOrganizationHandler(repo repositories.CatalogRepository[models.Organization]) *CatalogHandler[models.Organization] {
	return &CatalogHandler[models.Organization]{
		repo: repo,
		fields: map[string]string{
			"name":        "name",
			"description": "description",
			"website":     "website",
			"logo_url":    "logo_url",
		},
		required: "name",
	}
}

func NewNewsHandler(repo repositories.CatalogRepository[models.News]) *CatalogHandler[models.News] {
	return &CatalogHandler[models.News]{
		repo: repo,
		fields: map[string]string{
			"title":        "title",
			"body":         "body",
			"author":       "author",
			"image_url":    "image_url",
			"published_at": "published_at",
		},
		required: "title",
	}
}

func NewStudentOrganizationHandler(repo repositories.CatalogRepository[models.StudentOrganization]) *CatalogHandler[models.StudentOrganization] {
	return &CatalogHandler[models.StudentOrganization]{
		repo: repo,
		fields: map[string]string{
			"name":        "name",
			"description": "description",
			"leader":      "leader",
			"contact":     "contact",
			"members":     "members",
			"logo_url":    "logo_url",
		},
		required: "name",
	}
}

func (h *CatalogHandler[T]) HandleList(c *fiber.Ctx) error {
	items, total, err := h.repo.List(c.UserContext(), c.QueryInt("offset", 0), c.QueryInt("limit", 20))
	if err != nil {
		return respondError(c, err)
	}
	if items == nil {
		items = []T{}
	}

	return c.JSON(models.ListResponse[T]{Items: items, Total: total})
}

func (h *CatalogHandler[T]) HandleGet(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	item, err := h.repo.FindByID(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(item)
}

func (h *CatalogHandler[T]) HandleCreate(c *fiber.Ctx) error {
	body, item, err := h.decode(c.Body())
	if err != nil {
		return badRequest(c, err.Error())
	}
	if value, _ := body[h.required].(string); strings.TrimSpace(value) == "" {
		return badRequest(c, h.required+" is required")
	}

	if err := h.repo.Create(c.UserContext(), item); err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(item)
}

func (h *CatalogHandler[T]) HandleUpdate(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	body, _, err := h.decode(c.Body())
	if err != nil {
		return badRequest(c, err.Error())
	}
	if len(body) == 0 {
		return badRequest(c, "no fields to update")
	}
	if value, present := body[h.required]; present {
		if s, _ := value.(string); strings.TrimSpace(s) == "" {
			return badRequest(c, h.required+" must not be empty")
		}
	}

	updates := make(map[string]interface{}, len(body))
	for key, value := range body {
		if strings.HasSuffix(key, "_at") {
			s, _ := value.(string)
			t, err := time.Parse(time.RFC3339, s)
			if err != nil {
				return badRequest(c, key+" must be an RFC 3339 timestamp")
			}
			value = t
		}
		updates[h.fields[key]] = value
	}

	if err := h.repo.Update(c.UserContext(), id, updates); err != nil {
		return respondError(c, err)
	}

	item, err := h.repo.FindByID(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(item)
}

func (h *CatalogHandler[T]) HandleDelete(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	if err := h.repo.Delete(c.UserContext(), id); err != nil {
		return respondError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// decode returns the body as a map restricted to known keys, and the same
// body decoded into T so that value types are checked.
func (h *CatalogHandler[T]) decode(raw []byte) (map[string]interface{}, *T, error) {
	var body map[string]interface{}
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, nil, fmt.Errorf("invalid request body")
	}

	for key := range body {
		if _, ok := h.fields[key]; !ok {
			return nil, nil, fmt.Errorf("unknown field %q", key)
		}
	}

	item := new(T)
	if err := json.Unmarshal(raw, item); err != nil {
		return nil, nil, fmt.Errorf("invalid request body: %v", err)
	}
	return body, item, nil
}
