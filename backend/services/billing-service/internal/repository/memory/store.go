// Package memory is an in-process store used by tests and by the
// STORAGE_DRIVER=memory mode.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"greenvolt/backend/services/billing-service/internal/models"
	"greenvolt/backend/services/billing-service/internal/repository"
)

// Store holds every billing table in maps guarded by one RWMutex.
type Store struct {
	mu sync.RWMutex

	users       map[int64]struct{}
	meters      map[int64]models.SmartMeter
	readings    map[int64]models.MeterReading
	prices      map[time.Time]models.PriceEntry
	sessions    map[int64]models.ChargingSession
	consumption map[int64]models.Consumption

	nextMeter, nextReading, nextPrice, nextSession, nextConsumption int64
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		users:       make(map[int64]struct{}),
		meters:      make(map[int64]models.SmartMeter),
		readings:    make(map[int64]models.MeterReading),
		prices:      make(map[time.Time]models.PriceEntry),
		sessions:    make(map[int64]models.ChargingSession),
		consumption: make(map[int64]models.Consumption),
	}
}

// AddUser registers user ids known to the directory.
func (s *Store) AddUser(ids ...int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		s.users[id] = struct{}{}
	}
}

// Users returns the user directory view.
func (s *Store) Users() *Users { return &Users{s} }

// Meters returns the meter repository view.
func (s *Store) Meters() *Meters { return &Meters{s} }

// Readings returns the reading repository view.
func (s *Store) Readings() *Readings { return &Readings{s} }

// Prices returns the price repository view.
func (s *Store) Prices() *Prices { return &Prices{s} }

// Sessions returns the session repository view.
func (s *Store) Sessions() *Sessions { return &Sessions{s} }

// Consumption returns the consumption repository view.
func (s *Store) Consumption() *Consumption { return &Consumption{s} }

// Users implements the user directory.
type Users struct{ s *Store }

// UserExists reports whether id was added.
func (u *Users) UserExists(_ context.Context, id int64) (bool, error) {
	u.s.mu.RLock()
	defer u.s.mu.RUnlock()
	_, ok := u.s.users[id]
	return ok, nil
}

// Meters implements the meter repository.
type Meters struct{ s *Store }

// Create inserts a meter, rejecting a reused serial number.
func (m *Meters) Create(_ context.Context, meter *models.SmartMeter) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, existing := range m.s.meters {
		if existing.SerialNumber == meter.SerialNumber {
			return repository.ErrDuplicate
		}
	}
	m.s.nextMeter++
	meter.ID = m.s.nextMeter
	m.s.meters[meter.ID] = *meter
	return nil
}

// GetByID returns a copy of the meter or ErrNotFound.
func (m *Meters) GetByID(_ context.Context, id int64) (*models.SmartMeter, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	meter, ok := m.s.meters[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &meter, nil
}

// ListByUser returns a user's meters ordered by id.
func (m *Meters) ListByUser(_ context.Context, userID int64) ([]models.SmartMeter, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	var out []models.SmartMeter
	for _, meter := range m.s.meters {
		if meter.UserID == userID {
			out = append(out, meter)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Readings implements the reading repository.
type Readings struct{ s *Store }

// Create inserts a reading.
func (r *Readings) Create(_ context.Context, reading *models.MeterReading) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.nextReading++
	reading.ID = r.s.nextReading
	r.s.readings[reading.ID] = *reading
	return nil
}

// ListByMeter returns every reading of a meter in time order.
func (r *Readings) ListByMeter(_ context.Context, meterID int64) ([]models.MeterReading, error) {
	return r.filter(func(m models.MeterReading) bool { return m.MeterID == meterID }), nil
}

// ListByMeters returns readings of the meters with timestamps in [from, until).
func (r *Readings) ListByMeters(_ context.Context, meterIDs []int64, from, until time.Time) ([]models.MeterReading, error) {
	ids := make(map[int64]struct{}, len(meterIDs))
	for _, id := range meterIDs {
		ids[id] = struct{}{}
	}
	return r.filter(func(m models.MeterReading) bool {
		_, ok := ids[m.MeterID]
		return ok && inRange(m.Timestamp, from, until)
	}), nil
}

// SumByMeter totals a meter's energy in [from, until).
func (r *Readings) SumByMeter(_ context.Context, meterID int64, from, until time.Time) (float64, error) {
	var total float64
	for _, m := range r.filter(func(m models.MeterReading) bool {
		return m.MeterID == meterID && inRange(m.Timestamp, from, until)
	}) {
		total += m.EnergyKWh
	}
	return total, nil
}

func (r *Readings) filter(keep func(models.MeterReading) bool) []models.MeterReading {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []models.MeterReading
	for _, m := range r.s.readings {
		if keep(m) {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].ID < out[j].ID
		}
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out
}

// Prices implements the price repository.
type Prices struct{ s *Store }

// Upsert sets the price of an hour bucket and reports whether it was new.
func (p *Prices) Upsert(_ context.Context, hourStart time.Time, price float64) (*models.PriceEntry, bool, error) {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	key := hourStart.UTC()
	entry, ok := p.s.prices[key]
	if !ok {
		p.s.nextPrice++
		entry = models.PriceEntry{ID: p.s.nextPrice, HourStart: key}
	}
	entry.PricePerKWh = price
	p.s.prices[key] = entry
	return &entry, !ok, nil
}

// GetByHour returns the entry for an exact hour start or ErrNotFound.
func (p *Prices) GetByHour(_ context.Context, hourStart time.Time) (*models.PriceEntry, error) {
	p.s.mu.RLock()
	defer p.s.mu.RUnlock()
	entry, ok := p.s.prices[hourStart.UTC()]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &entry, nil
}

// ListRange returns entries with hour_start in [from, until), in time order.
func (p *Prices) ListRange(_ context.Context, from, until time.Time) ([]models.PriceEntry, error) {
	p.s.mu.RLock()
	defer p.s.mu.RUnlock()
	var out []models.PriceEntry
	for _, e := range p.s.prices {
		if inRange(e.HourStart, from, until) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].HourStart.Before(out[j].HourStart) })
	return out, nil
}

// Count returns the number of stored price entries.
func (p *Prices) Count() int {
	p.s.mu.RLock()
	defer p.s.mu.RUnlock()
	return len(p.s.prices)
}

// Sessions implements the session repository.
type Sessions struct{ s *Store }

// Create inserts a session.
func (r *Sessions) Create(_ context.Context, session *models.ChargingSession) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.nextSession++
	session.ID = r.s.nextSession
	stored := *session
	if session.EndTime != nil {
		end := *session.EndTime
		stored.EndTime = &end
	}
	r.s.sessions[session.ID] = stored
	return nil
}

// ListByUser returns a user's sessions, newest first.
func (r *Sessions) ListByUser(_ context.Context, userID int64) ([]models.ChargingSession, error) {
	out := r.filter(func(s models.ChargingSession) bool { return s.UserID == userID })
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

// ListByUserStartedBetween returns sessions whose start_time is in [from, until).
func (r *Sessions) ListByUserStartedBetween(_ context.Context, userID int64, from, until time.Time) ([]models.ChargingSession, error) {
	return r.filter(func(s models.ChargingSession) bool {
		return s.UserID == userID && inRange(s.StartTime, from, until)
	}), nil
}

func (r *Sessions) filter(keep func(models.ChargingSession) bool) []models.ChargingSession {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []models.ChargingSession
	for _, s := range r.s.sessions {
		if keep(s) {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].StartTime.Equal(out[j].StartTime) {
			return out[i].ID < out[j].ID
		}
		return out[i].StartTime.Before(out[j].StartTime)
	})
	return out
}

// Consumption implements the consumption repository.
type Consumption struct{ s *Store }

// Create inserts a record.
func (c *Consumption) Create(_ context.Context, record *models.Consumption) error {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	c.s.nextConsumption++
	record.ID = c.s.nextConsumption
	c.s.consumption[record.ID] = *record
	return nil
}

// ListByUser returns records with timestamps in [from, to], in time order.
func (c *Consumption) ListByUser(_ context.Context, userID int64, from, to time.Time) ([]models.Consumption, error) {
	c.s.mu.RLock()
	defer c.s.mu.RUnlock()
	var out []models.Consumption
	for _, r := range c.s.consumption {
		if r.UserID == userID && !r.Timestamp.Before(from) && !r.Timestamp.After(to) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].ID < out[j].ID
		}
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out, nil
}

func inRange(t, from, until time.Time) bool {
	return !t.Before(from) && t.Before(until)
}

// AnyUser is a user directory that accepts every positive id. It backs the
// memory driver, where accounts live only in the auth service.
type AnyUser struct{}

// UserExists reports whether id is positive.
func (AnyUser) UserExists(_ context.Context, id int64) (bool, error) {
	return id > 0, nil
}
