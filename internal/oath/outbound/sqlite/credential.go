package sqlite

import (
	"context"
	"time"

	"github.com/shandysiswandi/gooath/internal/oath/entity"
	"github.com/shandysiswandi/gooath/internal/pkg/sealer"
)

func (s *Store) ListCredentials(ctx context.Context, tokenID string) (_ []entity.StoredCredential, err error) {
	ctx, span := s.startSpan(ctx, "ListCredentials")
	defer func() { s.endSpan(span, err) }()

	rows, err := s.db.Reader.QueryContext(ctx, `SELECT name, issuer, account, oath_type, algorithm, digits,
		period, counter, requires_touch, secret
		FROM virtual_credentials WHERE token_id = ? ORDER BY created_at, name`, tokenID)
	if err != nil {
		return nil, s.mapError(err)
	}
	defer rows.Close()

	var out []entity.StoredCredential
	for rows.Next() {
		var (
			sc     entity.StoredCredential
			typ    string
			alg    string
			sealed []byte
		)
		r := &sc.Record
		if err := rows.Scan(&r.Name, &r.Issuer, &r.Account, &typ, &alg, &r.Digits,
			&r.Period, &sc.Counter, &r.RequiresTouch, &sealed); err != nil {
			return nil, err
		}

		secret, err := s.open(sealed, tokenID, sealer.PurposeCredentialSecret)
		if err != nil {
			return nil, err
		}
		r.Type = entity.ParseOathType(typ)
		r.Algorithm = entity.ParseAlgorithm(alg)
		r.DeviceID = tokenID
		sc.Secret = string(secret)
		out = append(out, sc)
	}

	return out, rows.Err()
}

// InsertCredential stores sc under tokenID. An existing name yields
// goerror.ErrConflict and an unknown token goerror.ErrNotFound.
func (s *Store) InsertCredential(ctx context.Context, tokenID string, sc entity.StoredCredential, at time.Time) (err error) {
	ctx, span := s.startSpan(ctx, "InsertCredential")
	defer func() { s.endSpan(span, err) }()

	sealed, err := s.seal([]byte(sc.Secret), tokenID, sealer.PurposeCredentialSecret)
	if err != nil {
		return err
	}

	r := sc.Record
	_, err = s.db.Writer.ExecContext(ctx, `INSERT INTO virtual_credentials
		(token_id, name, issuer, account, oath_type, algorithm, digits, period, counter, requires_touch, secret, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		tokenID, r.Name, r.Issuer, r.Account, string(r.Type), string(r.Algorithm), r.Digits, r.Period,
		sc.Counter, r.RequiresTouch, sealed, toMillis(at),
	)

	return s.mapError(err)
}

func (s *Store) DeleteCredential(ctx context.Context, tokenID, name string) (err error) {
	ctx, span := s.startSpan(ctx, "DeleteCredential")
	defer func() { s.endSpan(span, err) }()

	return s.execOne(ctx, `DELETE FROM virtual_credentials WHERE token_id = ? AND name = ?`, tokenID, name)
}

func (s *Store) SetCounter(ctx context.Context, tokenID, name string, counter uint64) (err error) {
	ctx, span := s.startSpan(ctx, "SetCounter")
	defer func() { s.endSpan(span, err) }()

	return s.execOne(ctx, `UPDATE virtual_credentials SET counter = ? WHERE token_id = ? AND name = ?`,
		counter, tokenID, name)
}
