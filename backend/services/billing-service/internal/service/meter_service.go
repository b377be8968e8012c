package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"greenvolt/backend/services/billing-service/internal/models"
	"greenvolt/backend/services/billing-service/internal/repository"
)

// MeterService manages smart meters and their ownership.
type MeterService struct {
	users  UserDirectory
	meters MeterRepository
	now    Clock
	logger *zap.Logger
}

// NewMeterService builds service.
func NewMeterService(users UserDirectory, meters MeterRepository, now Clock, logger *zap.Logger) *MeterService {
	if now == nil {
		now = utcNow
	}
	return &MeterService{users: users, meters: meters, now: now, logger: logger}
}

// CreateMeterInput is a meter registration request.
type CreateMeterInput struct {
	SerialNumber string
	Location     string
	UserID       int64
}

// CreateMeter registers a meter for its owner. Serial numbers are unique.
func (s *MeterService) CreateMeter(ctx context.Context, callerID int64, in CreateMeterInput) (*models.SmartMeter, error) {
	in.SerialNumber = strings.TrimSpace(in.SerialNumber)
	in.Location = strings.TrimSpace(in.Location)
	if in.SerialNumber == "" {
		return nil, invalid("serial_number is required")
	}
	if in.UserID <= 0 {
		return nil, invalid("user_id is required")
	}
	if err := authorize(callerID, in.UserID); err != nil {
		return nil, err
	}
	if err := requireUser(ctx, s.users, in.UserID); err != nil {
		return nil, err
	}

	meter := &models.SmartMeter{
		SerialNumber:     in.SerialNumber,
		Location:         in.Location,
		InstallationDate: s.now().UTC(),
		UserID:           in.UserID,
	}
	if err := s.meters.Create(ctx, meter); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, fmt.Errorf("%w: serial number %q already registered", ErrConflict, in.SerialNumber)
		}
		return nil, err
	}

	s.logger.Info("smart meter registered",
		zap.Int64("meter_id", meter.ID),
		zap.Int64("user_id", meter.UserID),
		zap.String("serial_number", meter.SerialNumber),
	)
	return meter, nil
}

// ListByUser returns the meters owned by userID.
func (s *MeterService) ListByUser(ctx context.Context, callerID, userID int64) ([]models.SmartMeter, error) {
	if err := authorize(callerID, userID); err != nil {
		return nil, err
	}
	if err := requireUser(ctx, s.users, userID); err != nil {
		return nil, err
	}
	meters, err := s.meters.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if meters == nil {
		meters = []models.SmartMeter{}
	}
	return meters, nil
}

// OwnedMeter loads a meter and checks the caller owns it.
func (s *MeterService) OwnedMeter(ctx context.Context, callerID, meterID int64) (*models.SmartMeter, error) {
	return ownedMeter(ctx, s.meters, callerID, meterID)
}

func ownedMeter(ctx context.Context, meters MeterRepository, callerID, meterID int64) (*models.SmartMeter, error) {
	meter, err := meters.GetByID(ctx, meterID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound("smart meter")
		}
		return nil, err
	}
	if err := authorize(callerID, meter.UserID); err != nil {
		return nil, err
	}
	return meter, nil
}

func requireUser(ctx context.Context, users UserDirectory, userID int64) error {
	ok, err := users.UserExists(ctx, userID)
	if err != nil {
		return fmt.Errorf("lookup user %d: %w", userID, err)
	}
	if !ok {
		return notFound("user")
	}
	return nil
}
