package store

import (
	"context"

	"github.com/krishg/billgate/internal/auth/entity"
	"github.com/krishg/billgate/internal/pkg/kvstore"
)

func (s *Store) GetSession(ctx context.Context, deviceID string) (_ *entity.Session, err error) {
	ctx, span := s.startSpan(ctx, "GetSession")
	defer func() { s.endSpan(span, err) }()

	rec, err := s.kv.Get(ctx, sessionKey(deviceID))
	if err != nil {
		return nil, s.mapError(err)
	}

	loginTime, err := decodeTime("login_time", rec["login_time"])
	if err != nil {
		return nil, err
	}

	return &entity.Session{
		DeviceID:  deviceID,
		Username:  rec["username"],
		LoginTime: loginTime,
		Active:    decodeBool(rec["active"]),
	}, nil
}

func (s *Store) PutSession(ctx context.Context, sess entity.Session) (err error) {
	ctx, span := s.startSpan(ctx, "PutSession")
	defer func() { s.endSpan(span, err) }()

	err = s.kv.Put(ctx, sessionKey(sess.DeviceID), kvstore.Record{
		"username":   sess.Username,
		"login_time": encodeTime(sess.LoginTime),
		"active":     encodeBool(sess.Active),
	})
	return err
}

func (s *Store) DeleteSession(ctx context.Context, deviceID string) (err error) {
	ctx, span := s.startSpan(ctx, "DeleteSession")
	defer func() { s.endSpan(span, err) }()

	err = s.kv.Delete(ctx, sessionKey(deviceID))
	return err
}
