package services

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"log"
	"strings"

	"shamba-credit/internal/adapters/persistence/models"
	"shamba-credit/internal/adapters/persistence/repositories"
	"shamba-credit/internal/core/domain"

	"gorm.io/gorm"
)

// Farmer service errors
var (
	ErrFarmerNotFound      = errors.New("farmer not found")
	ErrFarmerAlreadyLinked = errors.New("farmer already linked to an agent")
	ErrMissingFarmerFields = errors.New("name, phone and national ID are required")
	ErrEmptyImport         = errors.New("import file contains no farmer rows")
	ErrMissingCSVColumns   = errors.New("CSV must include name, phone and national ID columns")
)

// FarmerService handles farmer business logic
type FarmerService struct {
	farmerRepo repositories.FarmerRepository
}

// NewFarmerService creates a new farmer service
func NewFarmerService(farmerRepo repositories.FarmerRepository) *FarmerService {
	return &FarmerService{farmerRepo: farmerRepo}
}

// CreateFarmerInput represents create farmer input
type CreateFarmerInput struct {
	Name       string `json:"name" validate:"required"`
	Phone      string `json:"phone" validate:"required"`
	NationalID string `json:"national_id" validate:"required"`
}

// Create creates a single farmer record (unlinked)
func (s *FarmerService) Create(ctx context.Context, input *CreateFarmerInput) (*models.Farmer, error) {
	if input.Name == "" || input.Phone == "" || input.NationalID == "" {
		return nil, ErrMissingFarmerFields
	}

	farmer := &models.Farmer{
		Name:       input.Name,
		Phone:      input.Phone,
		NationalID: input.NationalID,
	}

	if err := s.farmerRepo.Create(ctx, farmer); err != nil {
		return nil, err
	}

	return farmer, nil
}

// csvColumn resolves a header name to a farmer field. Header matching is
// case-insensitive with the aliases the upload format allows.
func csvColumn(header string) string {
	switch strings.ToLower(strings.TrimSpace(header)) {
	case "name":
		return "name"
	case "phone":
		return "phone"
	case "national_id", "nationalid", "id":
		return "national_id"
	default:
		return ""
	}
}

// ImportResult represents the outcome of a bulk import
type ImportResult struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}

// ImportCSV parses a CSV of farmers and inserts them as one batch. Rows
// missing any required field are skipped; dedup beyond the unique phone and
// national_id constraints is left to the database.
func (s *FarmerService) ImportCSV(ctx context.Context, r io.Reader) (*ImportResult, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	// Rows with too few fields are skipped below, not treated as a parse error
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyImport
		}
		return nil, err
	}

	// Map column index → field name
	fields := make(map[int]string, len(header))
	seen := make(map[string]bool, 3)
	for i, h := range header {
		if f := csvColumn(h); f != "" {
			fields[i] = f
			seen[f] = true
		}
	}
	if !seen["name"] || !seen["phone"] || !seen["national_id"] {
		return nil, ErrMissingCSVColumns
	}

	var farmers []*models.Farmer
	skipped := 0
	for {
		record, err := reader.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, err
		}

		row := map[string]string{}
		for i, value := range record {
			if f, ok := fields[i]; ok {
				row[f] = strings.TrimSpace(value)
			}
		}

		if row["name"] == "" || row["phone"] == "" || row["national_id"] == "" {
			skipped++
			continue
		}

		farmers = append(farmers, &models.Farmer{
			Name:       row["name"],
			Phone:      row["phone"],
			NationalID: row["national_id"],
		})
	}

	if len(farmers) == 0 {
		return nil, ErrEmptyImport
	}

	if err := s.farmerRepo.CreateBatch(ctx, farmers); err != nil {
		return nil, err
	}

	log.Printf("✅ Imported %d farmers (%d rows skipped)", len(farmers), skipped)

	return &ImportResult{Imported: len(farmers), Skipped: skipped}, nil
}

// GetByID gets a farmer by ID
func (s *FarmerService) GetByID(ctx context.Context, id uint) (*models.Farmer, error) {
	farmer, err := s.farmerRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFarmerNotFound
		}
		return nil, err
	}
	return farmer, nil
}

// GetByPhone gets a farmer by phone number
func (s *FarmerService) GetByPhone(ctx context.Context, phone string) (*models.Farmer, error) {
	farmer, err := s.farmerRepo.GetByPhone(ctx, phone)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFarmerNotFound
		}
		return nil, err
	}
	return farmer, nil
}

// ListFilter selects which farmers to list
type ListFilter string

const (
	ListAll      ListFilter = ""
	ListUnlinked ListFilter = "unlinked"
	ListMine     ListFilter = "mine"
)

// List lists farmers. The "mine" filter scopes to the calling agent, the
// "unlinked" filter returns farmers available to claim.
func (s *FarmerService) List(ctx context.Context, filter ListFilter, agentID uint, offset, limit int) ([]*models.Farmer, int64, error) {
	switch filter {
	case ListUnlinked:
		return s.farmerRepo.ListUnlinked(ctx, offset, limit)
	case ListMine:
		return s.farmerRepo.ListByAgent(ctx, agentID, offset, limit)
	default:
		return s.farmerRepo.List(ctx, offset, limit)
	}
}

// Link claims a farmer for an agent. First claim wins; a farmer that is
// already linked stays with the original agent (no unlink operation).
func (s *FarmerService) Link(ctx context.Context, farmerID, agentID uint) (*models.Farmer, error) {
	if err := s.farmerRepo.Link(ctx, farmerID, agentID); err != nil {
		switch {
		case errors.Is(err, domain.ErrFarmerNotFound):
			return nil, ErrFarmerNotFound
		case errors.Is(err, domain.ErrFarmerAlreadyLinked):
			return nil, ErrFarmerAlreadyLinked
		default:
			return nil, err
		}
	}

	log.Printf("✅ Farmer %d linked to agent %d", farmerID, agentID)

	return s.farmerRepo.GetByID(ctx, farmerID)
}
