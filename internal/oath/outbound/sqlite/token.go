package sqlite

import (
	"context"
	"strings"

	"github.com/shandysiswandi/gooath/internal/oath/entity"
	"github.com/shandysiswandi/gooath/internal/pkg/goerror"
	"github.com/shandysiswandi/gooath/internal/pkg/sealer"
)

const tokenColumns = `id, name, serial_number, firmware_version, model, model_code, form_factor,
	capabilities, password_key, plugged, created_at`

func (s *Store) CreateToken(ctx context.Context, tok entity.VirtualToken) (err error) {
	ctx, span := s.startSpan(ctx, "CreateToken")
	defer func() { s.endSpan(span, err) }()

	key, err := s.seal(tok.PasswordKey, tok.ID, sealer.PurposeDeviceKey)
	if err != nil {
		return err
	}

	_, err = s.db.Writer.ExecContext(ctx, `INSERT INTO virtual_tokens (`+tokenColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		tok.ID, tok.Name, tok.SerialNumber, tok.FirmwareVersion, tok.Model, tok.ModelCode, tok.FormFactor,
		strings.Join(tok.Capabilities, ","), key, tok.Plugged, toMillis(tok.CreatedAt),
	)

	return s.mapError(err)
}

func (s *Store) ListTokens(ctx context.Context) (_ []entity.VirtualToken, err error) {
	ctx, span := s.startSpan(ctx, "ListTokens")
	defer func() { s.endSpan(span, err) }()

	rows, err := s.db.Reader.QueryContext(ctx, `SELECT `+tokenColumns+` FROM virtual_tokens ORDER BY created_at, id`)
	if err != nil {
		return nil, s.mapError(err)
	}
	defer rows.Close()

	var out []entity.VirtualToken
	for rows.Next() {
		var (
			tok     entity.VirtualToken
			caps    string
			key     []byte
			created int64
		)
		if err := rows.Scan(&tok.ID, &tok.Name, &tok.SerialNumber, &tok.FirmwareVersion, &tok.Model, &tok.ModelCode,
			&tok.FormFactor, &caps, &key, &tok.Plugged, &created); err != nil {
			return nil, err
		}

		if tok.PasswordKey, err = s.open(key, tok.ID, sealer.PurposeDeviceKey); err != nil {
			return nil, err
		}
		if caps != "" {
			tok.Capabilities = strings.Split(caps, ",")
		}
		tok.CreatedAt = fromMillis(created)
		out = append(out, tok)
	}

	return out, rows.Err()
}

func (s *Store) SetTokenPlugged(ctx context.Context, id string, plugged bool) (err error) {
	ctx, span := s.startSpan(ctx, "SetTokenPlugged")
	defer func() { s.endSpan(span, err) }()

	return s.execOne(ctx, `UPDATE virtual_tokens SET plugged = ? WHERE id = ?`, plugged, id)
}

// SetTokenPasswordKey replaces the access key. A nil key removes the password.
func (s *Store) SetTokenPasswordKey(ctx context.Context, id string, key []byte) (err error) {
	ctx, span := s.startSpan(ctx, "SetTokenPasswordKey")
	defer func() { s.endSpan(span, err) }()

	sealed, err := s.seal(key, id, sealer.PurposeDeviceKey)
	if err != nil {
		return err
	}

	return s.execOne(ctx, `UPDATE virtual_tokens SET password_key = ? WHERE id = ?`, sealed, id)
}

// execOne runs a write that must touch exactly one row.
func (s *Store) execOne(ctx context.Context, query string, args ...any) error {
	res, err := s.db.Writer.ExecContext(ctx, query, args...)
	if err != nil {
		return s.mapError(err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return goerror.ErrNotFound
	}
	return nil
}
