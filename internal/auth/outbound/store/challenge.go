package store

import (
	"context"

	"github.com/krishg/billgate/internal/auth/entity"
	"github.com/krishg/billgate/internal/pkg/kvstore"
)

func (s *Store) GetChallenge(ctx context.Context, deviceID string) (_ *entity.Challenge, err error) {
	ctx, span := s.startSpan(ctx, "GetChallenge")
	defer func() { s.endSpan(span, err) }()

	rec, err := s.kv.Get(ctx, challengeKey(deviceID))
	if err != nil {
		return nil, s.mapError(err)
	}

	createdAt, err := decodeTime("created_at", rec["created_at"])
	if err != nil {
		return nil, err
	}

	expiresAt, err := decodeTime("expires_at", rec["expires_at"])
	if err != nil {
		return nil, err
	}

	ch := &entity.Challenge{
		DeviceID:  deviceID,
		Code:      rec["code"],
		Username:  rec["username"],
		Remember:  decodeBool(rec["remember"]),
		CreatedAt: createdAt,
		ExpiresAt: expiresAt,
		Context: entity.DeviceContext{
			UserAgent: rec["ctx_user_agent"],
			Platform:  rec["ctx_platform"],
			Locale:    rec["ctx_locale"],
			Timezone:  rec["ctx_timezone"],
			Screen:    rec["ctx_screen"],
			IP:        rec["ctx_ip"],
			Location:  rec["ctx_location"],
		},
	}

	if v := rec["ctx_captured_at"]; v != "" {
		capturedAt, err := decodeTime("ctx_captured_at", v)
		if err != nil {
			return nil, err
		}
		ch.Context.CapturedAt = capturedAt
	}

	return ch, nil
}

// PutChallenge replaces any existing pending challenge for the device;
// overwrite-on-issue is what keeps at most one challenge live per device.
func (s *Store) PutChallenge(ctx context.Context, ch entity.Challenge) (err error) {
	ctx, span := s.startSpan(ctx, "PutChallenge")
	defer func() { s.endSpan(span, err) }()

	rec := kvstore.Record{
		"code":           ch.Code,
		"username":       ch.Username,
		"remember":       encodeBool(ch.Remember),
		"created_at":     encodeTime(ch.CreatedAt),
		"expires_at":     encodeTime(ch.ExpiresAt),
		"ctx_user_agent": ch.Context.UserAgent,
		"ctx_platform":   ch.Context.Platform,
		"ctx_locale":     ch.Context.Locale,
		"ctx_timezone":   ch.Context.Timezone,
		"ctx_screen":     ch.Context.Screen,
		"ctx_ip":         ch.Context.IP,
		"ctx_location":   ch.Context.Location,
	}
	if !ch.Context.CapturedAt.IsZero() {
		rec["ctx_captured_at"] = encodeTime(ch.Context.CapturedAt)
	}

	err = s.kv.Put(ctx, challengeKey(ch.DeviceID), rec)
	return err
}

func (s *Store) DeleteChallenge(ctx context.Context, deviceID string) (err error) {
	ctx, span := s.startSpan(ctx, "DeleteChallenge")
	defer func() { s.endSpan(span, err) }()

	err = s.kv.Delete(ctx, challengeKey(deviceID))
	return err
}

func (s *Store) GetRateWindow(ctx context.Context, deviceID string) (_ *entity.RateWindow, err error) {
	ctx, span := s.startSpan(ctx, "GetRateWindow")
	defer func() { s.endSpan(span, err) }()

	rec, err := s.kv.Get(ctx, rateKey(deviceID))
	if err != nil {
		return nil, s.mapError(err)
	}

	lastIssuedAt, err := decodeTime("last_issued_at", rec["last_issued_at"])
	if err != nil {
		return nil, err
	}

	return &entity.RateWindow{DeviceID: deviceID, LastIssuedAt: lastIssuedAt}, nil
}

func (s *Store) PutRateWindow(ctx context.Context, rw entity.RateWindow) (err error) {
	ctx, span := s.startSpan(ctx, "PutRateWindow")
	defer func() { s.endSpan(span, err) }()

	err = s.kv.Put(ctx, rateKey(rw.DeviceID), kvstore.Record{
		"last_issued_at": encodeTime(rw.LastIssuedAt),
	})
	return err
}
