package postgres

import (
	"context"
	"fmt"

	"bodymetrics/internal/domain"
)

// Ensure interfaces are met.
var _ domain.HistoryStorage = (*DB)(nil)
var _ domain.SessionRepository = (*SessionRepo)(nil)

// ReadAll returns every stored measurement in insertion order. Sex and
// classification are not checked here; the history store validates records.
func (d *DB) ReadAll(ctx context.Context) ([]domain.Measurement, error) {
	rows, err := d.sql.QueryContext(ctx,
		"SELECT id, recorded_at, weight_kg, height_m, age, sex, bmi, bmr, classification FROM measurements ORDER BY position;")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Measurement
	for rows.Next() {
		var (
			m          domain.Measurement
			sex, class string
		)
		if err := rows.Scan(&m.ID, &m.Timestamp, &m.WeightKg, &m.HeightM, &m.Age, &sex, &m.BMI, &m.BMR, &class); err != nil {
			return nil, &domain.CorruptDataWarning{Source: "measurements", Err: err}
		}
		m.Timestamp = m.Timestamp.UTC()
		m.Sex = domain.Sex(sex)
		m.Classification = domain.Classification(class)
		out = append(out, m)
	}
	return out, rows.Err()
}

// WriteAll replaces the stored log in one transaction.
func (d *DB) WriteAll(ctx context.Context, log []domain.Measurement) error {
	tx, err := d.sql.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM measurements;"); err != nil {
		return fmt.Errorf("clear measurements: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO measurements(position, id, recorded_at, weight_kg, height_m, age, sex, bmi, bmr, classification) VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);")
	if err != nil {
		return err
	}
	defer func() { _ = stmt.Close() }()

	for i, m := range log {
		if _, err := stmt.ExecContext(ctx, i, m.ID, m.Timestamp.UTC(), m.WeightKg, m.HeightM, m.Age,
			string(m.Sex), m.BMI, m.BMR, string(m.Classification)); err != nil {
			return fmt.Errorf("insert measurement %d: %w", i, err)
		}
	}
	return tx.Commit()
}
