package house

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/nerrad567/smarthouse-core/internal/device"
)

// Record is the stored form of one registered device.
// Measurement columns are nil when the device has no trusted measurement.
type Record struct {
	Location  string      `json:"location"`
	Name      string      `json:"name"`
	Kind      device.Kind `json:"kind"`
	NetworkID string      `json:"network_id"`
	State     string      `json:"state"`
	PWatts    *float64    `json:"p_watts,omitempty"`
	QVAR      *float64    `json:"q_var,omitempty"`
	Kelvin    *float64    `json:"kelvin,omitempty"`
}

// Repository defines the persistence operations for house snapshots.
type Repository interface {
	// List returns every stored record ordered by location, then name.
	List(ctx context.Context) ([]Record, error)

	// Save inserts or replaces the record stored under its location and name.
	Save(ctx context.Context, rec Record) error

	// Delete removes the record stored under location and name.
	// Returns ErrDeviceNotFound if there is none.
	Delete(ctx context.Context, location, name string) error
}

// SQLiteRepository implements Repository over the devices table.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a repository on an open, migrated database.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// List returns every stored record ordered by location, then name.
func (r *SQLiteRepository) List(ctx context.Context) ([]Record, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT location, name, kind, network_id, state, p_watts, q_var, kelvin
		FROM devices
		ORDER BY location, name`)
	if err != nil {
		return nil, fmt.Errorf("querying devices: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var (
			rec                  Record
			kind                 string
			pWatts, qVAR, kelvin sql.NullFloat64
		)
		if err := rows.Scan(&rec.Location, &rec.Name, &kind, &rec.NetworkID, &rec.State,
			&pWatts, &qVAR, &kelvin); err != nil {
			return nil, fmt.Errorf("scanning device row: %w", err)
		}
		rec.Kind = device.Kind(kind)
		rec.PWatts = nullFloat(pWatts)
		rec.QVAR = nullFloat(qVAR)
		rec.Kelvin = nullFloat(kelvin)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating devices: %w", err)
	}
	return records, nil
}

// Save inserts or replaces the record stored under its location and name.
func (r *SQLiteRepository) Save(ctx context.Context, rec Record) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO devices (location, name, kind, network_id, state, p_watts, q_var, kelvin, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))
		ON CONFLICT (location, name) DO UPDATE SET
			kind = excluded.kind,
			network_id = excluded.network_id,
			state = excluded.state,
			p_watts = excluded.p_watts,
			q_var = excluded.q_var,
			kelvin = excluded.kelvin,
			updated_at = excluded.updated_at`,
		rec.Location, rec.Name, string(rec.Kind), rec.NetworkID, rec.State,
		rec.PWatts, rec.QVAR, rec.Kelvin,
	)
	if err != nil {
		return fmt.Errorf("saving device %s@%s: %w", rec.Name, rec.Location, err)
	}
	return nil
}

// Delete removes the record stored under location and name.
func (r *SQLiteRepository) Delete(ctx context.Context, location, name string) error {
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM devices WHERE location = ? AND name = ?", location, name)
	if err != nil {
		return fmt.Errorf("deleting device: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if n == 0 {
		return ErrDeviceNotFound
	}
	return nil
}

func nullFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

// recordBuilder flattens a device into a Record.
type recordBuilder struct {
	rec *Record
}

func (b recordBuilder) VisitSmartSocket(s *device.SmartSocket) {
	b.rec.State = string(s.SocketState())
	if p, ok := s.Power(); ok {
		b.rec.PWatts = &p.ActiveWatts
		b.rec.QVAR = &p.ReactiveVAR
	}
}

func (b recordBuilder) VisitTempSensor(t *device.TempSensor) {
	b.rec.State = string(t.SensorState())
	if temp, ok := t.Temperature(); ok {
		b.rec.Kelvin = &temp.Kelvin
	}
}

// NewRecord flattens the device stored under id.
func NewRecord(id DeviceID, dev device.SmartDevice) Record {
	rec := Record{
		Location:  id.Location,
		Name:      id.Name,
		Kind:      dev.Kind(),
		NetworkID: dev.NetworkID(),
	}
	dev.Accept(recordBuilder{rec: &rec})
	return rec
}

// DeviceFromRecord rebuilds the device described by rec.
// Returns ErrInvalidRecord for unknown kinds or states.
func DeviceFromRecord(rec Record) (device.SmartDevice, error) {
	switch rec.Kind {
	case device.KindSmartSocket:
		state, err := device.ParseSocketState(rec.State)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidRecord, err)
		}
		var power *device.ElectricalPower
		if rec.PWatts != nil && rec.QVAR != nil {
			power = &device.ElectricalPower{ActiveWatts: *rec.PWatts, ReactiveVAR: *rec.QVAR}
		}
		return device.RestoreSmartSocket(rec.NetworkID, state, power), nil

	case device.KindTempSensor:
		state, err := device.ParseTempSensorState(rec.State)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidRecord, err)
		}
		var temp *device.Temperature
		if rec.Kelvin != nil {
			temp = &device.Temperature{Kelvin: *rec.Kelvin}
		}
		return device.RestoreTempSensor(rec.NetworkID, state, temp), nil
	}
	return nil, fmt.Errorf("%w: kind %q", ErrInvalidRecord, rec.Kind)
}

// SaveTo writes every registered device to repo.
func (h *SmartHouse) SaveTo(ctx context.Context, repo Repository) error {
	statuses := h.Statuses()
	for _, st := range statuses {
		if err := repo.Save(ctx, st.Record); err != nil {
			return err
		}
	}

	h.mu.RLock()
	h.logger.Info("house snapshot saved", "devices", len(statuses))
	h.mu.RUnlock()
	return nil
}

// LoadFrom adds every device stored in repo, replacing devices registered
// under the same keys. It returns the number of devices loaded.
func (h *SmartHouse) LoadFrom(ctx context.Context, repo Repository) (int, error) {
	records, err := repo.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("loading devices: %w", err)
	}

	for _, rec := range records {
		dev, err := DeviceFromRecord(rec)
		if err != nil {
			return 0, fmt.Errorf("device %s@%s: %w", rec.Name, rec.Location, err)
		}
		h.AddDevice(rec.Location, rec.Name, dev)
	}

	h.mu.RLock()
	h.logger.Info("house snapshot loaded", "devices", len(records))
	h.mu.RUnlock()
	return len(records), nil
}
