package entity

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var ErrStaffNotFound = errors.New("staff member not found")

// Staff is a trainer or administrator reachable by the internal notifications.
type Staff struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Nickname string `json:"nickname"`
	IsAdmin  bool   `json:"is_admin"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
}

func NewStaff(name, nickname string, isAdmin bool, email, phone string) *Staff {
	return &Staff{
		ID:       uuid.New().String(),
		Name:     name,
		Nickname: nickname,
		IsAdmin:  isAdmin,
		Email:    email,
		Phone:    phone,
	}
}

type StaffRepository interface {
	Add(ctx context.Context, s *Staff) error
	DeleteByName(ctx context.Context, name string) error
	FindByName(ctx context.Context, name string) (*Staff, error)
	// Recipients returns every admin plus the named trainers, deduplicated.
	Recipients(ctx context.Context, trainerNames []string) ([]Staff, error)
}
