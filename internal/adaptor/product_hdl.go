package adaptor

import (
	"errors"
	"math"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"marketplace/internal/dto/request"
	"marketplace/internal/usecase"
	"marketplace/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// extra room for the non-file form fields
const formOverhead = 1 << 20

type ProductHandler struct {
	service  usecase.ProductService
	maxBytes int64
	log      *zap.Logger
}

func NewProductHandler(service usecase.ProductService, maxBytes int64, log *zap.Logger) *ProductHandler {
	return &ProductHandler{
		service:  service,
		maxBytes: maxBytes,
		log:      log.With(zap.String("handler", "product")),
	}
}

// Create handles POST /api/products (multipart: name, price, description, image)
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := identity(r)
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	if !h.parseMultipart(w, r) {
		return
	}

	price, err := parsePrice(r.FormValue("price"))
	if err != nil {
		utils.ResponseBadRequest(w, utils.CodeValidationFailed, "Validation failed",
			map[string]string{"price": "Must be a number"})
		return
	}
	req := request.CreateProductRequest{
		Name:        strings.TrimSpace(r.FormValue("name")),
		Price:       price,
		Description: r.FormValue("description"),
	}

	image, closeImage, ok := h.formImage(w, r)
	if !ok {
		return
	}
	defer closeImage()

	product, err := h.service.Create(r.Context(), actor, &req, image)
	if err != nil {
		handleServiceError(h.log, w, err, "create product")
		return
	}

	utils.ResponseCreated(w, "Product submitted for review", product)
}

// Update handles PUT /api/products/{id} (JSON or multipart)
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, ok := identity(r)
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	var req request.UpdateProductRequest
	var image *request.ImageUpload

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if !h.parseMultipart(w, r) {
			return
		}
		if v, present := formField(r, "name"); present {
			v = strings.TrimSpace(v)
			req.Name = &v
		}
		if v, present := formField(r, "description"); present {
			req.Description = &v
		}
		if v, present := formField(r, "price"); present {
			price, err := parsePrice(v)
			if err != nil {
				utils.ResponseBadRequest(w, utils.CodeValidationFailed, "Validation failed",
					map[string]string{"price": "Must be a number"})
				return
			}
			req.Price = &price
		}

		img, closeImage, ok := h.formImage(w, r)
		if !ok {
			return
		}
		defer closeImage()
		image = img
	} else if !decodeJSON(w, r, &req) {
		return
	}

	product, err := h.service.Update(r.Context(), actor, chi.URLParam(r, "id"), &req, image)
	if err != nil {
		handleServiceError(h.log, w, err, "update product")
		return
	}

	utils.ResponseSuccess(w, "Product updated successfully", product)
}

// Delete handles DELETE /api/products/{id}
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := identity(r)
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	if err := h.service.Delete(r.Context(), actor, chi.URLParam(r, "id")); err != nil {
		handleServiceError(h.log, w, err, "delete product")
		return
	}

	utils.ResponseSuccess(w, "Product deleted successfully", nil)
}

// MarkSold handles POST /api/products/{id}/sold
func (h *ProductHandler) MarkSold(w http.ResponseWriter, r *http.Request) {
	actor, ok := identity(r)
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	if err := h.service.MarkSold(r.Context(), actor, chi.URLParam(r, "id")); err != nil {
		handleServiceError(h.log, w, err, "mark product sold")
		return
	}

	utils.ResponseSuccess(w, "Product marked as sold", nil)
}

// ListPublic handles GET /api/products
func (h *ProductHandler) ListPublic(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.ListPublic(r.Context())
	if err != nil {
		handleServiceError(h.log, w, err, "list products")
		return
	}

	utils.ResponseSuccess(w, "Products retrieved successfully", products)
}

// GetPublic handles GET /api/products/{id}
func (h *ProductHandler) GetPublic(w http.ResponseWriter, r *http.Request) {
	product, err := h.service.GetPublic(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(h.log, w, err, "get product")
		return
	}

	utils.ResponseSuccess(w, "Product retrieved successfully", product)
}

// ListBySeller handles GET /api/sellers/{sellerId}/products
func (h *ProductHandler) ListBySeller(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.ListBySeller(r.Context(), chi.URLParam(r, "sellerId"))
	if err != nil {
		handleServiceError(h.log, w, err, "list seller products")
		return
	}

	utils.ResponseSuccess(w, "Products retrieved successfully", products)
}

// ListMine handles GET /api/seller/products
func (h *ProductHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	actor, ok := identity(r)
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	products, err := h.service.ListMine(r.Context(), actor)
	if err != nil {
		handleServiceError(h.log, w, err, "list own products")
		return
	}

	utils.ResponseSuccess(w, "Products retrieved successfully", products)
}

// ListByStatus returns a handler for GET /api/products/{status} (admin only)
func (h *ProductHandler) ListByStatus(status string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := identity(r)
		if !ok {
			utils.ResponseUnauthorized(w, "Authentication required")
			return
		}

		products, err := h.service.ListByStatus(r.Context(), actor, status)
		if err != nil {
			handleServiceError(h.log, w, err, "list "+status+" products")
			return
		}

		utils.ResponseSuccess(w, "Products retrieved successfully", products)
	}
}

// Approve handles PUT /api/products/{id}/approve (admin only)
func (h *ProductHandler) Approve(w http.ResponseWriter, r *http.Request) {
	actor, ok := identity(r)
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	product, err := h.service.Approve(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(h.log, w, err, "approve product")
		return
	}

	utils.ResponseSuccess(w, "Product approved", product)
}

// Reject handles PUT /api/products/{id}/reject (admin only)
func (h *ProductHandler) Reject(w http.ResponseWriter, r *http.Request) {
	actor, ok := identity(r)
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	product, err := h.service.Reject(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(h.log, w, err, "reject product")
		return
	}

	utils.ResponseSuccess(w, "Product rejected", product)
}

// ==================== HELPER METHODS ====================

func (h *ProductHandler) parseMultipart(w http.ResponseWriter, r *http.Request) bool {
	limit := h.maxBytes + formOverhead
	r.Body = http.MaxBytesReader(w, r.Body, limit)

	if err := r.ParseMultipartForm(limit); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			utils.ResponseTooLarge(w, "Image is too large")
			return false
		}
		h.log.Warn("Invalid multipart form", zap.Error(err))
		utils.ResponseBadRequest(w, utils.CodeValidationFailed, "Invalid multipart form", nil)
		return false
	}
	return true
}

// formImage returns a nil upload when no image part was sent.
func (h *ProductHandler) formImage(w http.ResponseWriter, r *http.Request) (*request.ImageUpload, func(), bool) {
	file, header, err := r.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, func() {}, true
		}
		h.log.Warn("Failed to read image part", zap.Error(err))
		utils.ResponseBadRequest(w, utils.CodeValidationFailed, "Invalid image upload", nil)
		return nil, nil, false
	}

	return imageUpload(file, header), func() { _ = file.Close() }, true
}

func imageUpload(file multipart.File, header *multipart.FileHeader) *request.ImageUpload {
	return &request.ImageUpload{
		Filename: header.Filename,
		Size:     header.Size,
		File:     file,
	}
}

func formField(r *http.Request, key string) (string, bool) {
	values, ok := r.MultipartForm.Value[key]
	if !ok || len(values) == 0 {
		return "", false
	}
	return values[0], true
}

var errNonFinitePrice = errors.New("price is not a finite number")

// parsePrice accepts decimal form values only; Inf and NaN never reach validation.
func parsePrice(raw string) (float64, error) {
	price, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, err
	}
	if math.IsInf(price, 0) || math.IsNaN(price) {
		return 0, errNonFinitePrice
	}
	return price, nil
}
