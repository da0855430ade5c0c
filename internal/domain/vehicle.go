package domain

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Vehicle represents a mobile sales unit. A vehicle holds no inventory of its
// own; its effective stock is the aggregate of collected issuance layers
// minus what has been sold.
type Vehicle struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	VehicleName        string             `bson:"vehicleName" json:"vehicleName"`
	RegistrationNumber string             `bson:"registrationNumber" json:"registrationNumber"`
	SalesTeamMember    string             `bson:"salesTeamMember,omitempty" json:"salesTeamMember,omitempty"`
	IsActive           bool               `bson:"isActive" json:"isActive"`
	DateCreated        time.Time          `bson:"dateCreated" json:"dateCreated"`
	LastUpdated        time.Time          `bson:"lastUpdated" json:"lastUpdated"`
	DomainEvents       []DomainEvent      `bson:"-" json:"-"`
}

// NewVehicle registers a new vehicle
func NewVehicle(vehicleName, registrationNumber, salesTeamMember string) (*Vehicle, error) {
	if strings.TrimSpace(vehicleName) == "" || strings.TrimSpace(registrationNumber) == "" {
		return nil, ErrInvalidVehicle
	}

	now := time.Now().UTC()
	vehicle := &Vehicle{
		ID:                 primitive.NewObjectID(),
		VehicleName:        vehicleName,
		RegistrationNumber: strings.ToUpper(strings.TrimSpace(registrationNumber)),
		SalesTeamMember:    salesTeamMember,
		IsActive:           true,
		DateCreated:        now,
		LastUpdated:        now,
		DomainEvents:       make([]DomainEvent, 0),
	}

	vehicle.addDomainEvent(&VehicleRegisteredEvent{
		VehicleID:    vehicle.ID.Hex(),
		PlateNumber:  vehicle.RegistrationNumber,
		RegisteredAt: now,
	})

	return vehicle, nil
}

// Update replaces the editable fields of the vehicle
func (v *Vehicle) Update(vehicleName, salesTeamMember string, isActive bool) error {
	if strings.TrimSpace(vehicleName) == "" {
		return ErrInvalidVehicle
	}

	now := time.Now().UTC()
	v.VehicleName = vehicleName
	v.SalesTeamMember = salesTeamMember
	v.IsActive = isActive
	v.LastUpdated = now

	v.addDomainEvent(&VehicleUpdatedEvent{
		VehicleID:   v.ID.Hex(),
		PlateNumber: v.RegistrationNumber,
		UpdatedAt:   now,
	})

	return nil
}

// addDomainEvent adds a domain event
func (v *Vehicle) addDomainEvent(event DomainEvent) {
	v.DomainEvents = append(v.DomainEvents, event)
}

// GetDomainEvents returns all domain events
func (v *Vehicle) GetDomainEvents() []DomainEvent {
	return v.DomainEvents
}

// ClearDomainEvents clears all domain events
func (v *Vehicle) ClearDomainEvents() {
	v.DomainEvents = make([]DomainEvent, 0)
}
