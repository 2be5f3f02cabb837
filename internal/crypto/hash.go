package crypto

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidHashFormat   = errors.New("invalid encoded hash format")
	ErrIncompatibleVersion = errors.New("incompatible argon2 version")
)

var b64 = base64.RawStdEncoding

// HashParams are the argon2id cost settings. SaltLength and KeyLength
// apply when hashing; on verify they come from the stored hash.
type HashParams struct {
	Memory      uint32
	Iterations  uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// DefaultHashParams returns the cost used for new passwords (64 MiB, t=3, p=2).
func DefaultHashParams() HashParams {
	return HashParams{
		Memory:      64 * 1024,
		Iterations:  3,
		Parallelism: 2,
		SaltLength:  16,
		KeyLength:   32,
	}
}

// argonHash is one stored credential in PHC form:
// $argon2id$v=19$m=<mem>,t=<iter>,p=<par>$<salt>$<key>
type argonHash struct {
	params HashParams
	salt   []byte
	key    []byte
}

func (h argonHash) String() string {
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, h.params.Memory, h.params.Iterations, h.params.Parallelism,
		b64.EncodeToString(h.salt), b64.EncodeToString(h.key))
}

func (h argonHash) derive(password string) []byte {
	return argon2.IDKey([]byte(password), h.salt,
		h.params.Iterations, h.params.Memory, h.params.Parallelism, uint32(len(h.key)))
}

// HashPassword hashes password with DefaultHashParams.
func HashPassword(password string) (string, error) {
	return HashPasswordWithParams(password, DefaultHashParams())
}

func HashPasswordWithParams(password string, params HashParams) (string, error) {
	h := argonHash{
		params: params,
		salt:   make([]byte, params.SaltLength),
		key:    make([]byte, params.KeyLength),
	}
	if _, err := rand.Read(h.salt); err != nil {
		return "", fmt.Errorf("generating salt: %w", err)
	}
	h.key = h.derive(password)

	return h.String(), nil
}

// VerifyPassword reports whether password matches encodedHash. Besides
// argon2id, bcrypt hashes carried over from the previous user store are
// accepted. A hash in neither format yields ErrInvalidHashFormat.
func VerifyPassword(password, encodedHash string) (bool, error) {
	if isBcryptHash(encodedHash) {
		return verifyBcrypt(password, encodedHash)
	}

	h, err := parseArgonHash(encodedHash)
	if err != nil {
		return false, err
	}

	return subtle.ConstantTimeCompare(h.key, h.derive(password)) == 1, nil
}

func isBcryptHash(encodedHash string) bool {
	return strings.HasPrefix(encodedHash, "$2a$") ||
		strings.HasPrefix(encodedHash, "$2b$") ||
		strings.HasPrefix(encodedHash, "$2y$")
}

func verifyBcrypt(password, encodedHash string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(encodedHash), []byte(password))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, ErrInvalidHashFormat
	}
}

func parseArgonHash(encoded string) (argonHash, error) {
	fields := strings.Split(strings.TrimPrefix(encoded, "$"), "$")
	if len(fields) != 5 || fields[0] != "argon2id" {
		return argonHash{}, ErrInvalidHashFormat
	}

	var version int
	if _, err := fmt.Sscanf(fields[1], "v=%d", &version); err != nil {
		return argonHash{}, ErrInvalidHashFormat
	}
	if version != argon2.Version {
		return argonHash{}, ErrIncompatibleVersion
	}

	var h argonHash
	if _, err := fmt.Sscanf(fields[2], "m=%d,t=%d,p=%d",
		&h.params.Memory, &h.params.Iterations, &h.params.Parallelism); err != nil {
		return argonHash{}, ErrInvalidHashFormat
	}

	var err error
	if h.salt, err = b64.DecodeString(fields[3]); err != nil || len(h.salt) == 0 {
		return argonHash{}, ErrInvalidHashFormat
	}
	if h.key, err = b64.DecodeString(fields[4]); err != nil || len(h.key) == 0 {
		return argonHash{}, ErrInvalidHashFormat
	}
	h.params.SaltLength = uint32(len(h.salt))
	h.params.KeyLength = uint32(len(h.key))

	return h, nil
}
