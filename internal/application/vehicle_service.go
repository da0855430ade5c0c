package application

import (
	"context"

	"github.com/Hiuhuedd/migingo-backend/internal/domain"
	"github.com/Hiuhuedd/migingo-backend/pkg/errors"
	"github.com/Hiuhuedd/migingo-backend/pkg/logging"
)

// VehicleService implements the application layer for vehicle registration
type VehicleService struct {
	vehicleRepo domain.VehicleRepository
	publisher   domain.EventPublisher
	logger      *logging.Logger
}

// NewVehicleService creates a new VehicleService
func NewVehicleService(vehicleRepo domain.VehicleRepository, publisher domain.EventPublisher, logger *logging.Logger) *VehicleService {
	return &VehicleService{
		vehicleRepo: vehicleRepo,
		publisher:   publisher,
		logger:      logger,
	}
}

// RegisterVehicleCommand represents the command to register a vehicle
type RegisterVehicleCommand struct {
	VehicleName        string
	RegistrationNumber string
	SalesTeamMember    string
}

// RegisterVehicle registers a vehicle. Registration numbers are unique.
func (s *VehicleService) RegisterVehicle(ctx context.Context, cmd RegisterVehicleCommand) (*domain.Vehicle, error) {
	existing, err := s.vehicleRepo.FindByRegistration(ctx, cmd.RegistrationNumber)
	if err != nil {
		return nil, errors.ErrInternal("failed to check registration number").Wrap(err)
	}
	if existing != nil {
		return nil, errors.ErrConflict("a vehicle with this registration number already exists")
	}

	vehicle, err := domain.NewVehicle(cmd.VehicleName, cmd.RegistrationNumber, cmd.SalesTeamMember)
	if err != nil {
		return nil, errors.ErrValidation(err.Error())
	}

	if err := s.vehicleRepo.Save(ctx, vehicle); err != nil {
		s.logger.WithError(err).Error("Failed to save vehicle")
		return nil, errors.ErrInternal("failed to save vehicle").Wrap(err)
	}

	s.publishEvents(ctx, vehicle.GetDomainEvents())
	vehicle.ClearDomainEvents()

	s.logger.Info("Registered vehicle",
		"vehicleId", vehicle.ID.Hex(),
		"registrationNumber", vehicle.RegistrationNumber,
	)

	return vehicle, nil
}

// UpdateVehicleCommand represents the command to update a vehicle
type UpdateVehicleCommand struct {
	VehicleID       string
	VehicleName     string
	SalesTeamMember string
	IsActive        bool
}

// UpdateVehicle replaces the editable fields of a vehicle
func (s *VehicleService) UpdateVehicle(ctx context.Context, cmd UpdateVehicleCommand) (*domain.Vehicle, error) {
	vehicle, err := s.vehicleRepo.FindByID(ctx, cmd.VehicleID)
	if err != nil {
		return nil, errors.ErrInternal("failed to load vehicle").Wrap(err)
	}
	if vehicle == nil {
		return nil, errors.ErrNotFoundWithID("vehicle", cmd.VehicleID)
	}

	if err := vehicle.Update(cmd.VehicleName, cmd.SalesTeamMember, cmd.IsActive); err != nil {
		return nil, errors.ErrValidation(err.Error())
	}

	if err := s.vehicleRepo.Save(ctx, vehicle); err != nil {
		return nil, errors.ErrInternal("failed to save vehicle").Wrap(err)
	}

	s.publishEvents(ctx, vehicle.GetDomainEvents())
	vehicle.ClearDomainEvents()

	return vehicle, nil
}

// GetVehicle retrieves a vehicle by ID
func (s *VehicleService) GetVehicle(ctx context.Context, vehicleID string) (*domain.Vehicle, error) {
	vehicle, err := s.vehicleRepo.FindByID(ctx, vehicleID)
	if err != nil {
		return nil, errors.ErrInternal("failed to load vehicle").Wrap(err)
	}
	if vehicle == nil {
		return nil, errors.ErrNotFoundWithID("vehicle", vehicleID)
	}
	return vehicle, nil
}

// ListVehicles retrieves all vehicles, newest first
func (s *VehicleService) ListVehicles(ctx context.Context, pagination domain.Pagination) ([]*domain.Vehicle, error) {
	vehicles, err := s.vehicleRepo.List(ctx, pagination)
	if err != nil {
		return nil, errors.ErrInternal("failed to list vehicles").Wrap(err)
	}
	return vehicles, nil
}

// publishEvents publishes domain events, logging failures without failing
// the operation that produced them
func (s *VehicleService) publishEvents(ctx context.Context, events []domain.DomainEvent) {
	if len(events) == 0 || s.publisher == nil {
		return
	}
	if err := s.publisher.PublishAll(ctx, events); err != nil {
		s.logger.WithError(err).Warn("Failed to publish domain events", "count", len(events))
	}
}
