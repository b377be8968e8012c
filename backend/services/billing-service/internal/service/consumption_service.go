package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"greenvolt/backend/services/billing-service/internal/models"
)

// ConsumptionService stores generic consumption records.
type ConsumptionService struct {
	users   UserDirectory
	meters  MeterRepository
	records ConsumptionRepository
	logger  *zap.Logger
}

// NewConsumptionService builds service.
func NewConsumptionService(users UserDirectory, meters MeterRepository, records ConsumptionRepository, logger *zap.Logger) *ConsumptionService {
	return &ConsumptionService{users: users, meters: meters, records: records, logger: logger}
}

// ConsumptionInput is one consumption record to store. A nil EnergyKWh is
// rejected.
type ConsumptionInput struct {
	UserID    int64
	MeterID   int64
	Timestamp time.Time
	EnergyKWh *float64
}

// BulkItemResult is the outcome of one bulk record.
type BulkItemResult struct {
	Index  int                 `json:"index"`
	Record *models.Consumption `json:"record,omitempty"`
	Error  string              `json:"error,omitempty"`
}

// BulkResult summarizes a bulk upload.
type BulkResult struct {
	UploadedCount int              `json:"uploaded_count"`
	FailedCount   int              `json:"failed_count"`
	Details       []BulkItemResult `json:"details"`
}

func validateConsumption(in ConsumptionInput) error {
	if in.UserID <= 0 {
		return invalid("user_id is required")
	}
	if in.MeterID <= 0 {
		return invalid("smart_meter_id is required")
	}
	if in.Timestamp.IsZero() {
		return invalid("timestamp is required")
	}
	if in.EnergyKWh == nil {
		return invalid("energy_kwh is required")
	}
	if !finite(*in.EnergyKWh) || *in.EnergyKWh < 0 {
		return invalid("energy_kwh must be a finite, non-negative number")
	}
	return nil
}

// Create stores a record on a meter that belongs to the record's user.
func (s *ConsumptionService) Create(ctx context.Context, callerID int64, in ConsumptionInput) (*models.Consumption, error) {
	if err := validateConsumption(in); err != nil {
		return nil, err
	}
	if err := authorize(callerID, in.UserID); err != nil {
		return nil, err
	}
	if err := requireUser(ctx, s.users, in.UserID); err != nil {
		return nil, err
	}
	meter, err := ownedMeter(ctx, s.meters, in.UserID, in.MeterID)
	if err != nil {
		if errors.Is(err, ErrUnauthorized) {
			return nil, notFound("smart meter for this user")
		}
		return nil, err
	}

	record := &models.Consumption{
		UserID:    in.UserID,
		MeterID:   meter.ID,
		Timestamp: in.Timestamp.UTC(),
		EnergyKWh: *in.EnergyKWh,
	}
	if err := s.records.Create(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

// BulkCreate stores each record independently; one failure does not undo or
// stop the others.
func (s *ConsumptionService) BulkCreate(ctx context.Context, callerID int64, items []ConsumptionInput) (BulkResult, error) {
	if len(items) == 0 {
		return BulkResult{}, invalid("consumption list is empty")
	}

	res := BulkResult{Details: make([]BulkItemResult, 0, len(items))}
	for i, in := range items {
		record, err := s.Create(ctx, callerID, in)
		if err != nil {
			res.FailedCount++
			res.Details = append(res.Details, BulkItemResult{Index: i, Error: err.Error()})
			continue
		}
		res.UploadedCount++
		res.Details = append(res.Details, BulkItemResult{Index: i, Record: record})
	}

	s.logger.Info("bulk consumption upload",
		zap.Int64("caller_id", callerID),
		zap.Int("uploaded", res.UploadedCount),
		zap.Int("failed", res.FailedCount),
	)
	return res, nil
}

// ListByUser returns records of userID with timestamps in [from, to].
func (s *ConsumptionService) ListByUser(ctx context.Context, callerID, userID int64, from, to time.Time) ([]models.Consumption, error) {
	if from.IsZero() || to.IsZero() {
		return nil, invalid("start and end are required")
	}
	if to.Before(from) {
		return nil, invalid("end must not be before start")
	}
	if err := authorize(callerID, userID); err != nil {
		return nil, err
	}
	if err := requireUser(ctx, s.users, userID); err != nil {
		return nil, err
	}
	records, err := s.records.ListByUser(ctx, userID, from.UTC(), to.UTC())
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = []models.Consumption{}
	}
	return records, nil
}
