package orchestrators

import (
	"context"
	"log/slog"
	"time"

	"gamagourmet/internal/domain/plan"
)

// PlanStoreForOrchestrator defines the store interface needed by plan orchestrators.
type PlanStoreForOrchestrator interface {
	GetByID(ctx context.Context, id string) (plan.Plan, error)
	Save(ctx context.Context, p plan.Plan) error
	AssignToCompany(ctx context.Context, a plan.Assignment) error
}

// SavePlanInput carries input for create/edit of a plan.
type SavePlanInput struct {
	PlanID       string // empty = create
	Name         string
	Description  string
	PriceCents   int
	MealsPerWeek int
}

// SavePlanDeps holds dependencies for plan orchestrators.
type SavePlanDeps struct {
	PlanStore    PlanStoreForOrchestrator
	CompanyStore CompanyStoreForOrchestrator
	GenerateID   func() string
	Now          func() time.Time
}

// ExecuteSavePlan creates or updates a subscription plan.
// PRE: Name non-empty, price >= 0, meals per week in [1,7]
// POST: Plan persisted; new plans start active
func ExecuteSavePlan(ctx context.Context, input SavePlanInput, deps SavePlanDeps) (plan.Plan, error) {
	now := deps.Now()
	creating := input.PlanID == ""

	var p plan.Plan
	if creating {
		p = plan.Plan{
			ID:        deps.GenerateID(),
			Active:    true,
			CreatedAt: now,
		}
	} else {
		existing, err := deps.PlanStore.GetByID(ctx, input.PlanID)
		if err != nil {
			return plan.Plan{}, err
		}
		p = existing
		p.UpdatedAt = now
	}

	p.Name = input.Name
	p.Description = input.Description
	p.PriceCents = input.PriceCents
	p.MealsPerWeek = input.MealsPerWeek

	if err := p.Validate(); err != nil {
		return plan.Plan{}, err
	}
	if err := deps.PlanStore.Save(ctx, p); err != nil {
		return plan.Plan{}, err
	}

	event := "plan_updated"
	if creating {
		event = "plan_created"
	}
	slog.Info("plan_event", "event", event, "plan_id", p.ID, "name", p.Name)
	return p, nil
}

// AssignPlanInput carries input for assigning a plan to a company.
type AssignPlanInput struct {
	CompanyID string
	PlanID    string
}

// ExecuteAssignPlan sets a company's active plan, replacing any previous one.
// PRE: Both ids non-empty; company and plan exist
// POST: empresa_planes row for the company points at the plan
func ExecuteAssignPlan(ctx context.Context, input AssignPlanInput, deps SavePlanDeps) error {
	a := plan.Assignment{
		CompanyID:  input.CompanyID,
		PlanID:     input.PlanID,
		AssignedAt: deps.Now(),
	}
	if err := a.Validate(); err != nil {
		return err
	}
	if _, err := deps.CompanyStore.GetByID(ctx, input.CompanyID); err != nil {
		return err
	}
	if _, err := deps.PlanStore.GetByID(ctx, input.PlanID); err != nil {
		return err
	}
	if err := deps.PlanStore.AssignToCompany(ctx, a); err != nil {
		return err
	}

	slog.Info("plan_event", "event", "plan_assigned", "empresa_id", input.CompanyID, "plan_id", input.PlanID)
	return nil
}
