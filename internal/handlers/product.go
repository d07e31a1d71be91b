package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/example/catalogapi/internal/middleware"
	"github.com/example/catalogapi/internal/services"
)

// CatalogService is the product catalog used by ProductHandler.
type CatalogService interface {
	AddProduct(ctx context.Context, in services.ProductInput) (uuid.UUID, error)
	ListProducts(ctx context.Context, params services.ListParams) (services.ProductPage, error)
}

// ProductHandler serves the product endpoints.
type ProductHandler struct {
	catalog CatalogService
}

// NewProductHandler constructs a ProductHandler.
func NewProductHandler(catalog CatalogService) *ProductHandler {
	return &ProductHandler{catalog: catalog}
}

type productRequest struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       any             `json:"price"`
	Category    string          `json:"category"`
	Attributes  json.RawMessage `json:"attributes"`
	Photo       string          `json:"photo"`
}

// AddProduct accepts a JSON body with a photo URL, or a multipart form with an
// "image" file part and attributes as a JSON array string.
func (h *ProductHandler) AddProduct(c *fiber.Ctx) error {
	var (
		in  services.ProductInput
		err error
	)

	if strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		var file multipart.File
		in, file, err = multipartProduct(c)
		if file != nil {
			defer file.Close()
		}
	} else {
		in, err = jsonProduct(c)
	}
	if err != nil {
		return err
	}
	in.CreatedBy, _ = middleware.CurrentUserID(c)

	id, err := h.catalog.AddProduct(c.UserContext(), in)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success":   true,
		"message":   "Product added successfully.",
		"productId": id,
	})
}

func jsonProduct(c *fiber.Ctx) (services.ProductInput, error) {
	var req productRequest
	if err := c.BodyParser(&req); err != nil {
		return services.ProductInput{}, fiber.NewError(fiber.StatusBadRequest, "Invalid request body.")
	}

	attrs, err := decodeAttributes(req.Attributes)
	if err != nil {
		return services.ProductInput{}, err
	}

	return services.ProductInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       priceText(req.Price),
		Category:    req.Category,
		Attributes:  attrs,
		Photo:       req.Photo,
	}, nil
}

// multipartProduct reads the form. The returned file, if any, must be closed
// by the caller once the product is stored.
func multipartProduct(c *fiber.Ctx) (services.ProductInput, multipart.File, error) {
	attrs, err := decodeAttributes([]byte(c.FormValue("attributes")))
	if err != nil {
		return services.ProductInput{}, nil, err
	}

	in := services.ProductInput{
		Name:        c.FormValue("name"),
		Description: c.FormValue("description"),
		Price:       c.FormValue("price"),
		Category:    c.FormValue("category"),
		Attributes:  attrs,
		Photo:       c.FormValue("photo"),
	}

	header, err := c.FormFile("image")
	if err != nil {
		return in, nil, nil
	}

	file, err := header.Open()
	if err != nil {
		return services.ProductInput{}, nil, fiber.NewError(fiber.StatusBadRequest, "Invalid file upload.")
	}

	in.Upload = &services.ImageUpload{
		Filename: header.Filename,
		Size:     header.Size,
		Body:     file,
	}
	return in, file, nil
}

// decodeAttributes parses a JSON array of {name, value}. Absent input yields
// nil, which validation rejects with its own message.
func decodeAttributes(raw []byte) ([]services.AttributeInput, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return nil, nil
	}

	var attrs []services.AttributeInput
	if err := json.Unmarshal([]byte(trimmed), &attrs); err != nil {
		return nil, services.ErrInvalidAttrs
	}
	return attrs, nil
}

func priceText(v any) string {
	switch p := v.(type) {
	case nil:
		return ""
	case string:
		return p
	case float64:
		return strconv.FormatFloat(p, 'f', -1, 64)
	default:
		return fmt.Sprint(p)
	}
}

// ListProducts returns a filtered, sorted page of products.
func (h *ProductHandler) ListProducts(c *fiber.Ctx) error {
	var req services.ListRequest
	if err := c.QueryParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid query parameters.")
	}

	page, err := h.catalog.ListProducts(c.UserContext(), services.ParseListParams(req))
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success":    true,
		"message":    "Products retrieved successfully.",
		"data":       page.Products,
		"pagination": page.Pagination,
	})
}
