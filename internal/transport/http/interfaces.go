package http

import (
	"context"
	"io"

	"github.com/phetchalermchai/it-inventory/internal/inventory"
	"github.com/phetchalermchai/it-inventory/internal/services"
	api "github.com/phetchalermchai/it-inventory/pkg/contracts/api/v1"
	"github.com/phetchalermchai/it-inventory/pkg/contracts/domain"
)

// InventoryService defines the inventory operations the handlers need
type InventoryService interface {
	Metadata(ctx context.Context) (services.Metadata, error)
	Records(ctx context.Context, query string) ([]domain.InventoryRecord, error)
	Summary(ctx context.Context, query string) (domain.Report, error)
	Departments(ctx context.Context, query string) ([]domain.DepartmentView, error)
	Audit(ctx context.Context) ([]inventory.Finding, error)
	Export(ctx context.Context, w io.Writer, q api.ExportQuery) error
	Load(ctx context.Context, name string, r io.Reader) (*inventory.Dataset, error)
	LoadSample(ctx context.Context) (*inventory.Dataset, error)
}

// Validator checks decoded request contracts
type Validator interface {
	ValidateStruct(v interface{}) error
}
