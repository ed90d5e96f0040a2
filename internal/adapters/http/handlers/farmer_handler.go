package handlers

import (
	"errors"
	"strconv"
	"strings"

	"shamba-credit/internal/core/services"
	"shamba-credit/internal/pkg/pagination"
	"shamba-credit/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// FarmerHandler handles farmer registry endpoints
type FarmerHandler struct {
	farmerService *services.FarmerService
}

// NewFarmerHandler creates a new farmer handler
func NewFarmerHandler(farmerService *services.FarmerService) *FarmerHandler {
	return &FarmerHandler{farmerService: farmerService}
}

// CreateFarmerRequest represents farmer creation request body
type CreateFarmerRequest struct {
	Name       string `json:"name"`
	Phone      string `json:"phone"`
	NationalID string `json:"national_id"`
}

// Create handles farmer creation
// @Summary Create farmer
// @Description Add a single farmer to the registry
// @Tags Farmers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateFarmerRequest true "Farmer data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /farmers [post]
func (h *FarmerHandler) Create(c *fiber.Ctx) error {
	var req CreateFarmerRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	input := &services.CreateFarmerInput{
		Name:       strings.TrimSpace(req.Name),
		Phone:      strings.TrimSpace(req.Phone),
		NationalID: strings.TrimSpace(req.NationalID),
	}

	farmer, err := h.farmerService.Create(c.Context(), input)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrMissingFarmerFields):
			return response.BadRequest(c, "Name, phone and national ID are required")
		default:
			return response.InternalServerError(c, "Failed to create farmer")
		}
	}

	return response.Created(c, "Farmer created successfully", farmer)
}

// Import handles bulk farmer import from a CSV upload
// @Summary Import farmers from CSV
// @Description Bulk import farmers. The CSV must include name, phone and national ID columns; rows missing any field are skipped.
// @Tags Farmers
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "CSV file"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /farmers/import [post]
func (h *FarmerHandler) Import(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return response.BadRequest(c, "CSV file is required")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return response.BadRequest(c, "Failed to open uploaded file")
	}
	defer file.Close()

	result, err := h.farmerService.ImportCSV(c.Context(), file)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrMissingCSVColumns):
			return response.UnprocessableEntity(c, "CSV must include name, phone and national ID columns")
		case errors.Is(err, services.ErrEmptyImport):
			return response.UnprocessableEntity(c, "Import file contains no farmer rows")
		default:
			return response.InternalServerError(c, "Failed to import farmers")
		}
	}

	return response.Success(c, "Farmers imported successfully", result)
}

// List handles farmer listing
// @Summary List farmers
// @Description List farmers. Agents may filter with ?filter=unlinked (claimable) or ?filter=mine (own roster).
// @Tags Farmers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param filter query string false "Filter: unlinked or mine"
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} response.Response
// @Router /farmers [get]
func (h *FarmerHandler) List(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	filter := services.ListFilter(c.Query("filter"))
	switch filter {
	case services.ListAll, services.ListUnlinked, services.ListMine:
	default:
		return response.BadRequest(c, "Filter must be unlinked or mine")
	}

	params := pagination.GetParams(c)

	farmers, total, err := h.farmerService.List(c.Context(), filter, userID, params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list farmers")
	}

	return response.Success(c, "Farmers retrieved successfully", pagination.NewResponse(farmers, params, total))
}

// Get handles single farmer retrieval
// @Summary Get farmer
// @Description Get a farmer by ID
// @Tags Farmers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Farmer ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /farmers/{id} [get]
func (h *FarmerHandler) Get(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid farmer ID")
	}

	farmer, err := h.farmerService.GetByID(c.Context(), uint(id))
	if err != nil {
		if errors.Is(err, services.ErrFarmerNotFound) {
			return response.NotFound(c, "Farmer not found")
		}
		return response.InternalServerError(c, "Failed to get farmer")
	}

	return response.Success(c, "Farmer retrieved successfully", farmer)
}

// Link handles an agent claiming an unlinked farmer
// @Summary Link farmer to agent
// @Description Claim an unlinked farmer for the calling agent. First claim wins; a farmer already linked stays with the original agent.
// @Tags Farmers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Farmer ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /farmers/{id}/link [post]
func (h *FarmerHandler) Link(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid farmer ID")
	}

	farmer, err := h.farmerService.Link(c.Context(), uint(id), userID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrFarmerNotFound):
			return response.NotFound(c, "Farmer not found")
		case errors.Is(err, services.ErrFarmerAlreadyLinked):
			return response.Conflict(c, "Farmer is already linked to an agent")
		default:
			return response.InternalServerError(c, "Failed to link farmer")
		}
	}

	return response.Success(c, "Farmer linked successfully", farmer)
}

// Me returns the farmer record for the authenticated farmer session
// @Summary Get own farmer record
// @Description Get the farmer registry record matching the authenticated farmer's phone
// @Tags Farmers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /farmers/me [get]
func (h *FarmerHandler) Me(c *fiber.Ctx) error {
	phone, ok := c.Locals("phone").(string)
	if !ok || phone == "" {
		return response.Unauthorized(c, "Unauthorized")
	}

	farmer, err := h.farmerService.GetByPhone(c.Context(), phone)
	if err != nil {
		if errors.Is(err, services.ErrFarmerNotFound) {
			return response.NotFound(c, "Farmer record not found")
		}
		return response.InternalServerError(c, "Failed to get farmer record")
	}

	return response.Success(c, "Farmer retrieved successfully", farmer)
}
