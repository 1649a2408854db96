package stores

import (
	"bytes"
	"context"
	"crypto/subtle"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/MrEthical07/campusride/internal"
	"github.com/redis/go-redis/v9"
)

const (
	ledgerRecordVersionV1 = 1
	defaultExpiryGrace    = 10 * time.Minute
)

// consumeLedgerLua atomically performs GET→expiry check→compare→DEL on a ledger record.
// KEYS[1] = record key
// ARGV[1] = provided code hash (32 bytes)
// ARGV[2] = current unix millis
//
// Layout: version(1) purpose(1) issuedAt(8 BE) expiresAt(8 BE) hash(32) ...
//
// Returns:
//
//	record bytes on success
//	error string: "not_found", "expired", "mismatch"
var consumeLedgerLua = redis.NewScript(`
local data = redis.call('GET', KEYS[1])
if not data then
  return {err='not_found'}
end

if string.byte(data, 1) ~= 1 or #data < 50 then
  redis.call('DEL', KEYS[1])
  return {err='not_found'}
end

local expiresAt = 0
for i = 11, 18 do
  expiresAt = expiresAt * 256 + string.byte(data, i)
end

if tonumber(ARGV[2]) > expiresAt then
  redis.call('DEL', KEYS[1])
  return {err='expired'}
end

if string.sub(data, 19, 50) ~= ARGV[1] then
  return {err='mismatch'}
end

redis.call('DEL', KEYS[1])
return data
`)

// RedisLedger is a [Ledger] shared by every process pointed at the same
// Redis. Consume runs as one Lua script so racing submissions of the same
// code cannot both succeed.
type RedisLedger struct {
	redis  redis.UniversalClient
	prefix string
	opts   ledgerOptions
}

func NewRedisLedger(redisClient redis.UniversalClient, prefix string, opts ...LedgerOption) *RedisLedger {
	if prefix == "" {
		prefix = "crv"
	}
	o := ledgerOptions{
		now:         time.Now,
		newCode:     internal.NewVerificationCode,
		expiryGrace: defaultExpiryGrace,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return &RedisLedger{
		redis:  redisClient,
		prefix: prefix,
		opts:   o,
	}
}

func (l *RedisLedger) key(email string, purpose Purpose) string {
	return l.prefix + ":" + purpose.String() + ":" + internal.KeyDigest(normalizeEmail(email))
}

func (l *RedisLedger) Issue(ctx context.Context, email string, purpose Purpose, language string, ttl time.Duration) (string, error) {
	if !purpose.valid() {
		return "", ErrInvalidPurpose
	}
	code, err := l.opts.newCode()
	if err != nil {
		return "", err
	}

	now := l.opts.now()
	entry := &Entry{
		Email:     normalizeEmail(email),
		Purpose:   purpose,
		CodeHash:  internal.HashCode(code),
		IssuedAt:  now,
		ExpiresAt: now.Add(ttl),
		Language:  language,
	}
	encoded, err := encodeLedgerEntry(entry)
	if err != nil {
		return "", err
	}

	if err := l.redis.Set(ctx, l.key(email, purpose), encoded, ttl+l.opts.expiryGrace).Err(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrLedgerUnavailable, err)
	}

	return code, nil
}

func (l *RedisLedger) Consume(ctx context.Context, email string, purpose Purpose, code string) (Entry, error) {
	provided := internal.HashCode(code)

	result, err := consumeLedgerLua.Run(ctx, l.redis,
		[]string{l.key(email, purpose)},
		string(provided[:]),
		l.opts.now().UnixMilli(),
	).Result()
	if err != nil {
		switch err.Error() {
		case "not_found":
			return Entry{}, ErrNoSuchEntry
		case "expired":
			return Entry{}, ErrExpired
		case "mismatch":
			return Entry{}, ErrCodeMismatch
		default:
			return Entry{}, fmt.Errorf("%w: %v", ErrLedgerUnavailable, err)
		}
	}

	data, ok := result.(string)
	if !ok {
		return Entry{}, fmt.Errorf("%w: unexpected lua result type", ErrLedgerUnavailable)
	}

	entry, err := decodeLedgerEntry([]byte(data))
	if err != nil {
		return Entry{}, fmt.Errorf("%w: %v", ErrLedgerUnavailable, err)
	}

	// Lua string comparison is not constant-time.
	if subtle.ConstantTimeCompare(entry.CodeHash[:], provided[:]) != 1 {
		return Entry{}, ErrCodeMismatch
	}

	return *entry, nil
}

func (l *RedisLedger) Revoke(ctx context.Context, email string, purpose Purpose) error {
	if err := l.redis.Del(ctx, l.key(email, purpose)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrLedgerUnavailable, err)
	}
	return nil
}

func (l *RedisLedger) Pending(ctx context.Context, email string, purpose Purpose) (bool, error) {
	n, err := l.redis.Exists(ctx, l.key(email, purpose)).Result()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrLedgerUnavailable, err)
	}
	return n == 1, nil
}

func encodeLedgerEntry(entry *Entry) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte(ledgerRecordVersionV1)
	buf.WriteByte(byte(entry.Purpose))

	if err := binary.Write(&buf, binary.BigEndian, entry.IssuedAt.UnixMilli()); err != nil {
		return nil, err
	}
	if err := binary.Write(&buf, binary.BigEndian, entry.ExpiresAt.UnixMilli()); err != nil {
		return nil, err
	}
	buf.Write(entry.CodeHash[:])

	if len(entry.Language) > 255 {
		return nil, errors.New("ledger entry language too long")
	}
	buf.WriteByte(byte(len(entry.Language)))
	buf.WriteString(entry.Language)

	if len(entry.Email) > 65535 {
		return nil, errors.New("ledger entry email too long")
	}
	if err := binary.Write(&buf, binary.BigEndian, uint16(len(entry.Email))); err != nil {
		return nil, err
	}
	buf.WriteString(entry.Email)

	return buf.Bytes(), nil
}

func decodeLedgerEntry(data []byte) (*Entry, error) {
	reader := bytes.NewReader(data)

	version, err := reader.ReadByte()
	if err != nil {
		return nil, err
	}
	if version != ledgerRecordVersionV1 {
		return nil, errors.New("invalid ledger record version")
	}

	purpose, err := reader.ReadByte()
	if err != nil {
		return nil, err
	}
	entry := &Entry{Purpose: Purpose(purpose)}

	var issuedAt, expiresAt int64
	if err := binary.Read(reader, binary.BigEndian, &issuedAt); err != nil {
		return nil, err
	}
	if err := binary.Read(reader, binary.BigEndian, &expiresAt); err != nil {
		return nil, err
	}
	entry.IssuedAt = time.UnixMilli(issuedAt)
	entry.ExpiresAt = time.UnixMilli(expiresAt)

	if _, err := io.ReadFull(reader, entry.CodeHash[:]); err != nil {
		return nil, err
	}

	langLen, err := reader.ReadByte()
	if err != nil {
		return nil, err
	}
	lang := make([]byte, langLen)
	if _, err := io.ReadFull(reader, lang); err != nil {
		return nil, err
	}
	entry.Language = string(lang)

	var emailLen uint16
	if err := binary.Read(reader, binary.BigEndian, &emailLen); err != nil {
		return nil, err
	}
	email := make([]byte, emailLen)
	if _, err := io.ReadFull(reader, email); err != nil {
		return nil, err
	}
	entry.Email = string(email)

	return entry, nil
}
