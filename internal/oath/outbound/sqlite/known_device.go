package sqlite

import (
	"context"

	"github.com/shandysiswandi/gooath/internal/oath/entity"
	"github.com/shandysiswandi/gooath/internal/pkg/sealer"
)

func (s *Store) ListKnownDevices(ctx context.Context) (_ []entity.KnownDevice, err error) {
	ctx, span := s.startSpan(ctx, "ListKnownDevices")
	defer func() { s.endSpan(span, err) }()

	rows, err := s.db.Reader.QueryContext(ctx, `SELECT id, name, last_seen, saved_key FROM known_devices ORDER BY id`)
	if err != nil {
		return nil, s.mapError(err)
	}
	defer rows.Close()

	var out []entity.KnownDevice
	for rows.Next() {
		var (
			kd     entity.KnownDevice
			seen   int64
			sealed []byte
		)
		if err := rows.Scan(&kd.ID, &kd.Name, &seen, &sealed); err != nil {
			return nil, err
		}
		if kd.SavedKey, err = s.open(sealed, kd.ID, sealer.PurposeDeviceKey); err != nil {
			return nil, err
		}
		kd.LastSeen = fromMillis(seen)
		out = append(out, kd)
	}

	return out, rows.Err()
}

// SaveKnownDevice inserts or replaces kd.
func (s *Store) SaveKnownDevice(ctx context.Context, kd entity.KnownDevice) (err error) {
	ctx, span := s.startSpan(ctx, "SaveKnownDevice")
	defer func() { s.endSpan(span, err) }()

	sealed, err := s.seal(kd.SavedKey, kd.ID, sealer.PurposeDeviceKey)
	if err != nil {
		return err
	}

	_, err = s.db.Writer.ExecContext(ctx, `INSERT INTO known_devices (id, name, last_seen, saved_key)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET name = excluded.name, last_seen = excluded.last_seen,
			saved_key = excluded.saved_key`,
		kd.ID, kd.Name, toMillis(kd.LastSeen), sealed,
	)

	return s.mapError(err)
}

func (s *Store) DeleteKnownDevice(ctx context.Context, id string) (err error) {
	ctx, span := s.startSpan(ctx, "DeleteKnownDevice")
	defer func() { s.endSpan(span, err) }()

	return s.execOne(ctx, `DELETE FROM known_devices WHERE id = ?`, id)
}
