package models

import (
	"strings"

	"github.com/erp/backoffice/internal/domain/identity"
)

// UserModel is the persistence model for back office users. Roles are kept
// as a comma separated list.
type UserModel struct {
	AggregateModel
	Email        string `gorm:"type:varchar(200);not null;uniqueIndex"`
	Name         string `gorm:"type:varchar(200)"`
	PasswordHash string `gorm:"type:varchar(255);not null"`
	Roles        string `gorm:"type:varchar(255);not null;default:''"`
	IsActive     bool   `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (UserModel) TableName() string {
	return "users"
}

// ToDomain converts the persistence model to a domain User
func (m *UserModel) ToDomain() *identity.User {
	var roles []identity.Role
	for _, r := range strings.Split(m.Roles, ",") {
		if r = strings.TrimSpace(r); r != "" {
			roles = append(roles, identity.Role(r))
		}
	}
	return &identity.User{
		BaseAggregateRoot: m.ToAggregateRoot(),
		Email:             m.Email,
		Name:              m.Name,
		PasswordHash:      m.PasswordHash,
		Roles:             roles,
		IsActive:          m.IsActive,
	}
}

// FromDomain populates the persistence model from a domain User
func (m *UserModel) FromDomain(u *identity.User) {
	m.FromDomainAggregateRoot(u.BaseAggregateRoot)
	m.Email = u.Email
	m.Name = u.Name
	m.PasswordHash = u.PasswordHash
	m.Roles = strings.Join(u.RoleNames(), ",")
	m.IsActive = u.IsActive
}
