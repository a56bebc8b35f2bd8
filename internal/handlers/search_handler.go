package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"unitalent/talent-center/internal/services"
)

type SearchHandler struct {
	search services.SearchService
}

func NewSearchHandler(search services.SearchService) *SearchHandler {
	return &SearchHandler{search: search}
}

// HandleSearch answers GET /search?q=&limit=&faculty=.
func (h *SearchHandler) HandleSearch(c *fiber.Ctx) error {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		return badRequest(c, "q is required")
	}

	hits, err := h.search.Search(c.UserContext(), query, c.QueryInt("limit", 10), c.Query("faculty"))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"query":   query,
		"results": hits,
		"count":   len(hits),
	})
}
