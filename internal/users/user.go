// Package users manages user records: the people who operate the console,
// their role and where they work.
//
// Every write goes through Service, which validates input before touching
// storage, publishes a domain event and pushes a fresh full snapshot to
// subscribers. Location fields are normalised per role on every write.
package users

import (
	"time"

	"github.com/dmitrymomot/medstock/pkg/rbac"
	"github.com/dmitrymomot/medstock/pkg/session"
)

// Status is the account state of a user record.
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	return s == StatusActive || s == StatusInactive
}

// User is a stored user record.
type User struct {
	ID           string     `bson:"_id" json:"id"`
	Name         string     `bson:"name" json:"name"`
	Email        string     `bson:"email,omitempty" json:"email,omitempty"`
	Phone        string     `bson:"phone" json:"phone"`
	Role         rbac.Role  `bson:"role" json:"role"`
	Status       Status     `bson:"status" json:"status"`
	FacilityName string     `bson:"facility_name,omitempty" json:"facility_name,omitempty"`
	Region       string     `bson:"region,omitempty" json:"region,omitempty"`
	District     string     `bson:"district,omitempty" json:"district,omitempty"`
	LastLogin    *time.Time `bson:"last_login,omitempty" json:"last_login,omitempty"`
	CreatedAt    time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `bson:"updated_at" json:"updated_at"`
}

// Active reports whether the user may sign in.
func (u User) Active() bool {
	return u.Status == StatusActive
}

// Location returns the one location field that applies to the user's role.
func (u User) Location() string {
	switch u.Role {
	case rbac.RoleFacilityManager, rbac.RoleVillageHealthWorker:
		return u.FacilityName
	case rbac.RoleDistrictHealthOfficer:
		return u.District
	case rbac.RoleRegionalSupervisor:
		return u.Region
	default:
		return ""
	}
}

// Profile converts the record into the shape the session layer joins.
func (u User) Profile() session.Profile {
	return session.Profile{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		Phone:        u.Phone,
		Role:         u.Role,
		Active:       u.Active(),
		FacilityName: u.FacilityName,
		Region:       u.Region,
		District:     u.District,
	}
}

// Profiles converts a snapshot.
func Profiles(list []User) []session.Profile {
	out := make([]session.Profile, len(list))
	for i, u := range list {
		out[i] = u.Profile()
	}
	return out
}

// normalizeLocation keeps only the location field that matches the role.
func normalizeLocation(u *User) {
	facility, region, district := u.FacilityName, u.Region, u.District
	u.FacilityName, u.Region, u.District = "", "", ""

	switch u.Role {
	case rbac.RoleFacilityManager, rbac.RoleVillageHealthWorker:
		u.FacilityName = facility
	case rbac.RoleDistrictHealthOfficer:
		u.District = district
	case rbac.RoleRegionalSupervisor:
		u.Region = region
	}
}

func (u *User) clone() *User {
	cp := *u
	if u.LastLogin != nil {
		t := *u.LastLogin
		cp.LastLogin = &t
	}
	return &cp
}
