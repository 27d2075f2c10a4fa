package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"gamagourmet/internal/domain/branch"
	"gamagourmet/internal/domain/company"
)

// CompanyStoreForOrchestrator defines the store interface needed by company orchestrators.
type CompanyStoreForOrchestrator interface {
	GetByID(ctx context.Context, id string) (company.Company, error)
	Save(ctx context.Context, c company.Company) error
}

// BranchStoreForOrchestrator defines the store interface needed by branch orchestrators.
type BranchStoreForOrchestrator interface {
	GetByID(ctx context.Context, id string) (branch.Branch, error)
	Save(ctx context.Context, b branch.Branch) error
	Delete(ctx context.Context, id string) error
}

// --- Save Company ---

// SaveCompanyInput carries input for create/edit of a company.
type SaveCompanyInput struct {
	CompanyID    string // empty = create
	Name         string
	TaxID        string
	ContactEmail string
}

// SaveCompanyDeps holds dependencies for company orchestrators.
type SaveCompanyDeps struct {
	CompanyStore CompanyStoreForOrchestrator
	BranchStore  BranchStoreForOrchestrator
	GenerateID   func() string
	Now          func() time.Time
}

// ExecuteSaveCompany creates or updates a company.
// PRE: Name is non-empty
// POST: Company persisted; new companies start active
func ExecuteSaveCompany(ctx context.Context, input SaveCompanyInput, deps SaveCompanyDeps) (company.Company, error) {
	now := deps.Now()
	creating := input.CompanyID == ""

	var c company.Company
	if creating {
		c = company.Company{
			ID:        deps.GenerateID(),
			Active:    true,
			CreatedAt: now,
		}
	} else {
		existing, err := deps.CompanyStore.GetByID(ctx, input.CompanyID)
		if err != nil {
			return company.Company{}, err
		}
		c = existing
		c.UpdatedAt = now
	}

	c.Name = input.Name
	c.TaxID = input.TaxID
	c.ContactEmail = input.ContactEmail

	if err := c.Validate(); err != nil {
		return company.Company{}, err
	}
	if err := deps.CompanyStore.Save(ctx, c); err != nil {
		return company.Company{}, err
	}

	event := "empresa_updated"
	if creating {
		event = "empresa_created"
	}
	slog.Info("empresa_event", "event", event, "empresa_id", c.ID, "name", c.Name)
	return c, nil
}

// SetCompanyActiveInput carries input for the activation toggle.
type SetCompanyActiveInput struct {
	CompanyID string
	Active    bool
}

// ExecuteSetCompanyActive activates or deactivates a company.
// PRE: CompanyID is non-empty; company exists
// POST: Active flag updated
func ExecuteSetCompanyActive(ctx context.Context, input SetCompanyActiveInput, deps SaveCompanyDeps) error {
	if input.CompanyID == "" {
		return errors.New("company ID is required")
	}
	c, err := deps.CompanyStore.GetByID(ctx, input.CompanyID)
	if err != nil {
		return err
	}
	if input.Active {
		c.Reactivate()
	} else {
		c.Deactivate()
	}
	c.UpdatedAt = deps.Now()
	if err := deps.CompanyStore.Save(ctx, c); err != nil {
		return err
	}

	event := "empresa_deactivated"
	if input.Active {
		event = "empresa_reactivated"
	}
	slog.Info("empresa_event", "event", event, "empresa_id", input.CompanyID)
	return nil
}

// --- Save Branch ---

// SaveBranchInput carries input for create/edit of a branch.
type SaveBranchInput struct {
	BranchID  string // empty = create
	CompanyID string
	Name      string
	Address   string
}

// ExecuteSaveBranch creates or updates a branch of a company.
// PRE: CompanyID and Name are non-empty; company exists
// POST: Branch persisted; new branches start active
func ExecuteSaveBranch(ctx context.Context, input SaveBranchInput, deps SaveCompanyDeps) (branch.Branch, error) {
	// The parent company must exist before attaching branches.
	if _, err := deps.CompanyStore.GetByID(ctx, input.CompanyID); err != nil {
		return branch.Branch{}, err
	}

	creating := input.BranchID == ""
	var b branch.Branch
	if creating {
		b = branch.Branch{
			ID:        deps.GenerateID(),
			Active:    true,
			CreatedAt: deps.Now(),
		}
	} else {
		existing, err := deps.BranchStore.GetByID(ctx, input.BranchID)
		if err != nil {
			return branch.Branch{}, err
		}
		b = existing
	}

	b.CompanyID = input.CompanyID
	b.Name = input.Name
	b.Address = input.Address

	if err := b.Validate(); err != nil {
		return branch.Branch{}, err
	}
	if err := deps.BranchStore.Save(ctx, b); err != nil {
		return branch.Branch{}, err
	}

	event := "sucursal_updated"
	if creating {
		event = "sucursal_created"
	}
	slog.Info("empresa_event", "event", event, "sucursal_id", b.ID, "empresa_id", b.CompanyID)
	return b, nil
}
