package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/krishg/billgate/internal/pkg/goerror"
	"github.com/krishg/billgate/internal/pkg/instrument"
	"github.com/krishg/billgate/internal/pkg/kvstore"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Store persists the three device-keyed record kinds (trust, session,
// pending challenge) plus the issuance rate window. Records for one
// device are independent: clearing a session never touches trust.
type Store struct {
	kv  kvstore.Store
	ins instrument.Instrumentation
}

func NewStore(kv kvstore.Store, ins instrument.Instrumentation) *Store {
	return &Store{kv: kv, ins: ins}
}

func trustKey(deviceID string) string     { return "trust:" + deviceID }
func sessionKey(deviceID string) string   { return "session:" + deviceID }
func challengeKey(deviceID string) string { return "challenge:" + deviceID }
func rateKey(deviceID string) string      { return "ratelimit:" + deviceID }

func (s *Store) mapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, kvstore.ErrNotFound) {
		return goerror.ErrNotFound
	}

	return err
}

func (s *Store) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("auth.outbound.store").Start(ctx, name)
}

func (s *Store) endSpan(span trace.Span, err error) {
	if err != nil && !errors.Is(err, goerror.ErrNotFound) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func encodeTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func decodeTime(field, value string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("store: field %s: %w", field, err)
	}
	return t, nil
}

func encodeBool(b bool) string {
	return strconv.FormatBool(b)
}

func decodeBool(value string) bool {
	b, err := strconv.ParseBool(value)
	return err == nil && b
}
