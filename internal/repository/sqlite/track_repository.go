package sqlite

import (
	"database/sql"
	"fmt"

	"github.com/golang/geo/r2"

	"fieldtrack/internal/model"
)

// TrackRepository implements repository.TrackRepository for SQLite.
type TrackRepository struct {
	db *DB
}

// NewTrackRepository creates a new SQLite track table repository.
func NewTrackRepository(db *DB) *TrackRepository {
	return &TrackRepository{db: db}
}

// SaveTable replaces the stored track table. Undefined fields are stored as NULL.
func (r *TrackRepository) SaveTable(table *model.TrackTable, runID string) error {
	r.db.Lock()
	defer r.db.Unlock()

	tx, err := r.db.Conn().Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, q := range []string{`DELETE FROM track_records`, `DELETE FROM track_categories`} {
		if _, err := tx.Exec(q); err != nil {
			return fmt.Errorf("failed to clear track table: %w", err)
		}
	}

	for _, c := range table.Categories() {
		if _, err := tx.Exec(`INSERT INTO track_categories (category) VALUES (?)`, string(c)); err != nil {
			return fmt.Errorf("failed to insert category %s: %w", c, err)
		}
	}

	stmt, err := tx.Prepare(`
		INSERT INTO track_records (
			category, frame, track_id,
			bbox_left, bbox_top, bbox_right, bbox_bottom,
			position_x, position_y, adjusted_x, adjusted_y, projected_x, projected_y,
			speed, distance
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	var insertErr error
	table.Each(func(c model.Category, frame, id int, rec *model.TrackRecord) {
		if insertErr != nil {
			return
		}
		px, py := nullPoint(rec.Position)
		ax, ay := nullPoint(rec.Adjusted)
		jx, jy := nullPoint(rec.Projected)
		_, insertErr = stmt.Exec(
			string(c), frame, id,
			rec.BBox.X.Lo, rec.BBox.Y.Lo, rec.BBox.X.Hi, rec.BBox.Y.Hi,
			px, py, ax, ay, jx, jy,
			nullFloat(rec.Speed), nullFloat(rec.Distance),
		)
		if insertErr != nil {
			insertErr = fmt.Errorf("failed to insert %s frame %d track %d: %w", c, frame, id, insertErr)
		}
	})
	if insertErr != nil {
		return insertErr
	}

	if err := putSnapshot(tx, model.SnapshotTracks, runID, table.FrameCount()); err != nil {
		return err
	}
	return tx.Commit()
}

// LoadTable rebuilds the stored track table.
func (r *TrackRepository) LoadTable() (*model.TrackTable, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	snap, err := getSnapshot(r.db.Conn(), model.SnapshotTracks)
	if err != nil {
		return nil, err
	}
	table := model.NewTrackTable(snap.FrameCount)

	categories, err := r.db.Conn().Query(`SELECT category FROM track_categories ORDER BY category`)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	for categories.Next() {
		var c string
		if err := categories.Scan(&c); err != nil {
			categories.Close()
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		table.AddCategory(model.Category(c))
	}
	categories.Close()
	if err := categories.Err(); err != nil {
		return nil, err
	}

	rows, err := r.db.Conn().Query(`
		SELECT category, frame, track_id,
			bbox_left, bbox_top, bbox_right, bbox_bottom,
			position_x, position_y, adjusted_x, adjusted_y, projected_x, projected_y,
			speed, distance
		FROM track_records
		ORDER BY category, frame, track_id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query track records: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			c                        string
			frame, id                int
			left, top, right, bottom float64
			px, py, ax, ay, jx, jy   sql.NullFloat64
			speed, distance          sql.NullFloat64
		)
		if err := rows.Scan(&c, &frame, &id, &left, &top, &right, &bottom,
			&px, &py, &ax, &ay, &jx, &jy, &speed, &distance); err != nil {
			return nil, fmt.Errorf("failed to scan track record: %w", err)
		}

		rec := &model.TrackRecord{
			BBox:      model.NewBBox(left, top, right, bottom),
			Position:  pointOf(px, py),
			Adjusted:  pointOf(ax, ay),
			Projected: pointOf(jx, jy),
			Speed:     floatOf(speed),
			Distance:  floatOf(distance),
		}
		if err := table.Set(model.Category(c), frame, id, rec); err != nil {
			return nil, fmt.Errorf("stored record %s/%d/%d: %w", c, frame, id, err)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return table, nil
}

func nullPoint(p *r2.Point) (any, any) {
	if p == nil {
		return nil, nil
	}
	return p.X, p.Y
}

func nullFloat(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}

func pointOf(x, y sql.NullFloat64) *r2.Point {
	if !x.Valid || !y.Valid {
		return nil
	}
	return &r2.Point{X: x.Float64, Y: y.Float64}
}

func floatOf(f sql.NullFloat64) *float64 {
	if !f.Valid {
		return nil
	}
	v := f.Float64
	return &v
}
