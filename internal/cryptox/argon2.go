// Package cryptox implements password and refresh-token hashing with
// argon2id. Hashes are self-describing PHC strings, so parameters can change
// without invalidating stored values.
package cryptox

import (
	"context"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"runtime"
	"strings"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"golang.org/x/crypto/argon2"
	"golang.org/x/sync/semaphore"
)

const algorithmID = "argon2id"

var (
	ErrInvalidHash         = errors.New("invalid argon2id hash")
	ErrIncompatibleVersion = errors.New("incompatible argon2 version")
)

// Params are the argon2id cost parameters. They are fixed for the process.
type Params struct {
	Time        uint32
	MemoryKiB   uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// DefaultParams matches the cost the service has always used for
// key derivation: one pass over 64 MiB with four lanes.
func DefaultParams() Params {
	return Params{
		Time:        1,
		MemoryKiB:   64 * 1024,
		Parallelism: 4,
		SaltLength:  16,
		KeyLength:   32,
	}
}

// Hasher hashes and verifies secrets. At most `concurrency` derivations run
// at once; callers beyond that wait on the semaphore or give up when their
// context is cancelled.
type Hasher struct {
	params Params
	sem    *semaphore.Weighted
}

// NewHasher returns a Hasher. concurrency <= 0 means GOMAXPROCS.
func NewHasher(p Params, concurrency int) *Hasher {
	if concurrency <= 0 {
		concurrency = runtime.GOMAXPROCS(0)
	}
	return &Hasher{params: p, sem: semaphore.NewWeighted(int64(concurrency))}
}

// Hash derives a PHC-encoded argon2id hash of secret with a fresh salt.
func (h *Hasher) Hash(ctx context.Context, secret string) (string, error) {
	salt := common.GenerateRandByteArray(int(h.params.SaltLength))
	if salt == nil {
		return "", errors.New("reading random salt failed")
	}

	key, err := h.derive(ctx, secret, salt, h.params.Time, h.params.MemoryKiB, h.params.Parallelism, h.params.KeyLength)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("$%s$v=%d$m=%d,t=%d,p=%d$%s$%s",
		algorithmID,
		argon2.Version,
		h.params.MemoryKiB,
		h.params.Time,
		h.params.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// Verify reports whether secret matches encoded. A malformed encoded value
// yields false together with ErrInvalidHash or ErrIncompatibleVersion.
func (h *Hasher) Verify(ctx context.Context, secret, encoded string) (bool, error) {
	p, salt, want, err := decodeHash(encoded)
	if err != nil {
		return false, err
	}

	got, err := h.derive(ctx, secret, salt, p.Time, p.MemoryKiB, p.Parallelism, uint32(len(want)))
	if err != nil {
		return false, err
	}

	return subtle.ConstantTimeCompare(got, want) == 1, nil
}

func (h *Hasher) derive(ctx context.Context, secret string, salt []byte, t, m uint32, p uint8, keyLen uint32) ([]byte, error) {
	if err := h.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer h.sem.Release(1)

	pw := []byte(secret)
	defer common.WipeByteArray(pw)

	return argon2.IDKey(pw, salt, t, m, p, keyLen), nil
}

func decodeHash(encoded string) (Params, []byte, []byte, error) {
	var p Params

	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != algorithmID {
		return p, nil, nil, ErrInvalidHash
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return p, nil, nil, ErrInvalidHash
	}
	if version != argon2.Version {
		return p, nil, nil, ErrIncompatibleVersion
	}

	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.MemoryKiB, &p.Time, &p.Parallelism); err != nil {
		return p, nil, nil, ErrInvalidHash
	}
	if p.MemoryKiB == 0 || p.Time == 0 || p.Parallelism == 0 {
		return p, nil, nil, ErrInvalidHash
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil || len(salt) == 0 {
		return p, nil, nil, ErrInvalidHash
	}
	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(key) == 0 {
		return p, nil, nil, ErrInvalidHash
	}
	p.SaltLength = uint32(len(salt))
	p.KeyLength = uint32(len(key))

	return p, salt, key, nil
}
