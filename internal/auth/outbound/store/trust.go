package store

import (
	"context"

	"github.com/krishg/billgate/internal/auth/entity"
	"github.com/krishg/billgate/internal/pkg/kvstore"
)

func (s *Store) GetTrust(ctx context.Context, deviceID string) (_ *entity.TrustRecord, err error) {
	ctx, span := s.startSpan(ctx, "GetTrust")
	defer func() { s.endSpan(span, err) }()

	rec, err := s.kv.Get(ctx, trustKey(deviceID))
	if err != nil {
		return nil, s.mapError(err)
	}

	firstTrustedAt, err := decodeTime("first_trusted_at", rec["first_trusted_at"])
	if err != nil {
		return nil, err
	}

	return &entity.TrustRecord{
		DeviceID:       deviceID,
		TrustToken:     rec["trust_token"],
		FirstTrustedAt: firstTrustedAt,
	}, nil
}

func (s *Store) PutTrust(ctx context.Context, tr entity.TrustRecord) (err error) {
	ctx, span := s.startSpan(ctx, "PutTrust")
	defer func() { s.endSpan(span, err) }()

	err = s.kv.Put(ctx, trustKey(tr.DeviceID), kvstore.Record{
		"trust_token":      tr.TrustToken,
		"first_trusted_at": encodeTime(tr.FirstTrustedAt),
	})
	return err
}

func (s *Store) DeleteTrust(ctx context.Context, deviceID string) (err error) {
	ctx, span := s.startSpan(ctx, "DeleteTrust")
	defer func() { s.endSpan(span, err) }()

	err = s.kv.Delete(ctx, trustKey(deviceID))
	return err
}
