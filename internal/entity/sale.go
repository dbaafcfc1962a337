package entity

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// SaleType is the closed set of things the site sells. ProgramRequest is not
// sellable: it only exists to build outbound matching links for staff.
type SaleType int

const (
	SaleTypeUnknown SaleType = iota
	SaleTypeBeginner
	SaleTypeAdvanced
	SaleTypeNutritionStandard
	SaleTypeNutritionPro
	SaleTypeCoaching
	SaleTypePosing
	SaleTypeEndo
	SaleTypeProgramRequest
)

func ParseSaleType(form string) (SaleType, bool) {
	switch form {
	case "program-beginner":
		return SaleTypeBeginner, true
	case "program-advanced":
		return SaleTypeAdvanced, true
	case "nutrition-standard":
		return SaleTypeNutritionStandard, true
	case "nutrition-pro":
		return SaleTypeNutritionPro, true
	case "coaching":
		return SaleTypeCoaching, true
	case "posing":
		return SaleTypePosing, true
	case "endo":
		return SaleTypeEndo, true
	default:
		return SaleTypeUnknown, false
	}
}

func (t SaleType) String() string {
	switch t {
	case SaleTypeBeginner:
		return "program-beginner"
	case SaleTypeAdvanced:
		return "program-advanced"
	case SaleTypeNutritionStandard:
		return "nutrition-standard"
	case SaleTypeNutritionPro:
		return "nutrition-pro"
	case SaleTypeCoaching:
		return "coaching"
	case SaleTypePosing:
		return "posing"
	case SaleTypeEndo:
		return "endo"
	case SaleTypeProgramRequest:
		return "program-request"
	default:
		return "unknown"
	}
}

// NeedsAgenda reports whether this sale type carries a fitness profile.
func (t SaleType) NeedsAgenda() bool {
	switch t {
	case SaleTypeBeginner, SaleTypeAdvanced, SaleTypeNutritionStandard, SaleTypeNutritionPro, SaleTypeCoaching:
		return true
	default:
		return false
	}
}

// NeedsProgram reports whether fulfillment attaches a matched workout program.
func (t SaleType) NeedsProgram() bool {
	return t == SaleTypeBeginner || t == SaleTypeAdvanced
}

// NeedsNutrition reports whether fulfillment generates a nutrition document.
func (t SaleType) NeedsNutrition() bool {
	return t == SaleTypeNutritionStandard || t == SaleTypeNutritionPro
}

// CompletesImmediately reports whether the sale has no deliverable artifact
// and finishes as soon as both notifications went out.
func (t SaleType) CompletesImmediately() bool {
	return t == SaleTypeCoaching || t == SaleTypePosing || t == SaleTypeEndo
}

// Sale is the central record of one fulfillment instance. The three milestone
// flags only ever move forward; ErrorHandled is the tri-state "needs human"
// marker (nil = not evaluated, true = parked for manual intervention).
type Sale struct {
	ID      string    `json:"id"`
	Type    SaleType  `json:"type"`
	Time    time.Time `json:"time"`
	OrderID string    `json:"order_id"`

	Client   *Client   `json:"client"`
	Agenda   *Agenda   `json:"agenda,omitempty"`
	Products []Product `json:"products"`

	WorkoutProgramID   *string `json:"workout_program_id,omitempty"`
	WorkoutProgramPath string  `json:"workout_program_path,omitempty"`
	NutritionPath      string  `json:"nutrition_path,omitempty"`

	ResumeKey *string `json:"resume_key,omitempty"`

	IsSuccessEmailSent bool       `json:"is_success_email_sent"`
	IsStaffNotified    bool       `json:"is_staff_notified"`
	ErrorHandled       *bool      `json:"error_handled,omitempty"`
	ScheduledDelivery  *time.Time `json:"scheduled_delivery,omitempty"`
	IsDone             bool       `json:"is_done"`
}

func NewSale(saleType SaleType, client *Client, agenda *Agenda, at time.Time) *Sale {
	return &Sale{
		ID:     uuid.New().String(),
		Type:   saleType,
		Time:   at,
		Client: client,
		Agenda: agenda,
	}
}

// ArtifactPath is the file the client is ultimately owed, if any is attached yet.
func (s *Sale) ArtifactPath() string {
	if s.Type.NeedsProgram() {
		return s.WorkoutProgramPath
	}
	if s.Type.NeedsNutrition() {
		return s.NutritionPath
	}
	return ""
}

// MilestonesDone reports whether every applicable milestone has fired.
// Artifact sales are completed by the delivery task, never here.
func (s *Sale) MilestonesDone() bool {
	return s.Type.CompletesImmediately() && s.IsSuccessEmailSent && s.IsStaffNotified
}

type SaleRepository interface {
	Create(ctx context.Context, sale *Sale) error
	FindByID(ctx context.Context, id string) (*Sale, error)
	FindByResumeKey(ctx context.Context, key string) (*Sale, error)
	// FindPending returns sales with IsDone=false whose ErrorHandled marker
	// is not true, i.e. everything the reconciliation sweep must look at.
	FindPending(ctx context.Context) ([]*Sale, error)
	// Mutate runs fn on a freshly loaded sale inside a single
	// read-modify-write transaction keyed by the sale id.
	Mutate(ctx context.Context, saleID string, fn func(s *Sale) error) error
	ListCompleted(ctx context.Context) ([]CompletedSale, error)
}

// CompletedSale is the flattened export row for the accounting CSV.
type CompletedSale struct {
	SaleID   string
	OrderID  string
	Time     time.Time
	Email    string
	Phone    string
	Name     string
	Products string
}
