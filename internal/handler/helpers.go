package handler

import (
	"errors"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/vstep-go-api/internal/utils"
)

// Pagination clamps keep a single misbehaving client from scanning whole tables.
const (
	defaultPageSize  = 20
	maxPageSize      = 50
	maxAdminPageSize = 100
)

func parseQueryInt(c *fiber.Ctx, key string) (int, error) {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		return 0, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}
	return parsed, nil
}

// parsePagination reads page/limit query params and clamps limit to cap.
func parsePagination(c *fiber.Ctx, cap int) (page, limit int, err error) {
	page, err = parseQueryInt(c, "page")
	if err != nil {
		return 0, 0, err
	}
	if page <= 0 {
		page = 1
	}

	limit, err = parseQueryInt(c, "limit")
	if err != nil {
		return 0, 0, err
	}
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > cap {
		limit = cap
	}

	return page, limit, nil
}

func buildPagination(total int64, page, limit int) utils.Pagination {
	totalPages := 0
	if limit > 0 {
		totalPages = int((total + int64(limit) - 1) / int64(limit))
	}
	return utils.Pagination{
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
	}
}

func parseIDParam(c *fiber.Ctx, key string) (uint, error) {
	raw := c.Params(key)
	parsed, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || parsed == 0 {
		return 0, errors.New("invalid id")
	}
	return uint(parsed), nil
}

func userIDFromContext(c *fiber.Ctx) uint {
	if v := c.Locals("user_id"); v != nil {
		if id, ok := v.(uint); ok {
			return id
		}
		if id, ok := v.(int); ok {
			if id < 0 {
				return 0
			}
			return uint(id)
		}
	}
	return 0
}

func userIDStringFromContext(c *fiber.Ctx) string {
	if v := c.Locals("user_id"); v != nil {
		switch id := v.(type) {
		case uint:
			return strconv.FormatUint(uint64(id), 10)
		case int:
			if id < 0 {
				return ""
			}
			return strconv.Itoa(id)
		case string:
			return strings.TrimSpace(id)
		}
	}
	return ""
}

func isValidationError(err error) bool {
	var validationErrors validator.ValidationErrors
	return errors.As(err, &validationErrors)
}
