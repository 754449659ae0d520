package services

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"selfie/utils"

	"golang.org/x/crypto/argon2"
)

var (
	ErrWeakPassword  = errors.New("password must be at least 6 characters and contain a number and a special character")
	ErrMalformedHash = errors.New("malformed password hash")
)

// argonParams are stored alongside every hash, so raising the cost later
// leaves existing hashes verifiable.
type argonParams struct {
	memory  uint32
	time    uint32
	threads uint8
	keyLen  uint32
	saltLen int
}

var passwordParams = argonParams{memory: 64 * 1024, time: 3, threads: 2, keyLen: 32, saltLen: 16}

var b64 = base64.RawStdEncoding

// HashPassword returns an encoded argon2id hash:
// $argon2id$v=19$m=<KiB>,t=<passes>,p=<threads>$<salt>$<key>
func HashPassword(password string) (string, error) {
	if !utils.ValidatePassword(password) {
		return "", ErrWeakPassword
	}
	return hashWith(passwordParams, password)
}

func hashWith(p argonParams, password string) (string, error) {
	salt := make([]byte, p.saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}
	key := argon2.IDKey([]byte(password), salt, p.time, p.memory, p.threads, p.keyLen)
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, p.memory, p.time, p.threads, b64.EncodeToString(salt), b64.EncodeToString(key)), nil
}

func decodeHash(encoded string) (argonParams, []byte, []byte, error) {
	var p argonParams
	fields := strings.Split(encoded, "$")
	if len(fields) != 6 || fields[0] != "" || fields[1] != "argon2id" {
		return p, nil, nil, ErrMalformedHash
	}

	var version int
	if _, err := fmt.Sscanf(fields[2], "v=%d", &version); err != nil || version != argon2.Version {
		return p, nil, nil, ErrMalformedHash
	}
	if _, err := fmt.Sscanf(fields[3], "m=%d,t=%d,p=%d", &p.memory, &p.time, &p.threads); err != nil {
		return p, nil, nil, ErrMalformedHash
	}

	salt, err := b64.DecodeString(fields[4])
	if err != nil {
		return p, nil, nil, ErrMalformedHash
	}
	key, err := b64.DecodeString(fields[5])
	if err != nil || len(key) == 0 {
		return p, nil, nil, ErrMalformedHash
	}
	p.saltLen = len(salt)
	p.keyLen = uint32(len(key))
	return p, salt, key, nil
}

// VerifyPassword checks provided against an encoded hash using the
// parameters recorded in it.
func VerifyPassword(encoded, provided string) (bool, error) {
	p, salt, key, err := decodeHash(encoded)
	if err != nil {
		return false, err
	}
	computed := argon2.IDKey([]byte(provided), salt, p.time, p.memory, p.threads, p.keyLen)
	return subtle.ConstantTimeCompare(computed, key) == 1, nil
}

// ComparePasswords is VerifyPassword with malformed hashes counted as a mismatch.
func ComparePasswords(encoded, plain string) bool {
	ok, err := VerifyPassword(encoded, plain)
	return err == nil && ok
}
