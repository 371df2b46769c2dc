package jobs

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	validation "github.com/go-ozzo/ozzo-validation"
	"golang.org/x/crypto/pbkdf2"
)

const (
	// MinPasswordLength is counted in characters, not bytes.
	MinPasswordLength = 16

	// PasswordSymbols is the punctuation set accepted as the required symbol.
	PasswordSymbols = "!@#$%^&*()_+[]{};'\\:\"|<,>./?`~-"

	DefaultPBKDF2Rounds = 29000

	pbkdf2Ident   = "pbkdf2-sha256"
	pbkdf2SaltLen = 16
	pbkdf2KeyLen  = 32
)

// ErrMismatchedHashAndPassword is returned by hashers when the password does
// not match. It never leaves the credential subsystem.
var ErrMismatchedHashAndPassword = errors.New("hash and password mismatch")

// ErrUnknownHashFormat is returned when a stored hash was produced by a hasher
// this package does not know about.
var ErrUnknownHashFormat = errors.New("unknown password hash format")

var (
	upperRx  = regexp.MustCompile(`[A-Z]`)
	lowerRx  = regexp.MustCompile(`[a-z]`)
	digitRx  = regexp.MustCompile(`[0-9]`)
	symbolRx = regexp.MustCompile(`[` + regexp.QuoteMeta(PasswordSymbols) + `]`)
)

// ValidatePassword checks plaintext against the fixed password policy.
func ValidatePassword(password string) error {
	err := validation.Validate(password,
		validation.Required,
		validation.By(minRunes(MinPasswordLength)),
		validation.Match(upperRx),
		validation.Match(lowerRx),
		validation.Match(digitRx),
		validation.Match(symbolRx),
	)
	if err != nil {
		return ErrWeakCredential
	}
	return nil
}

// PasswordHasher derives and verifies one-way password hashes.
type PasswordHasher interface {
	HashPassword(password string) (string, error)
	ComparePasswordAndHash(password, hash string) error
}

// Credential is a write-only secret embedded in entities that can
// authenticate. The hash is never serialized and has no getter.
type Credential struct {
	PasswordHash string `bun:"password,notnull" json:"-"`
}

// SetPassword validates plaintext against the policy and stores its hash.
func (c *Credential) SetPassword(hasher PasswordHasher, password string) error {
	if err := ValidatePassword(password); err != nil {
		return err
	}

	hash, err := hasher.HashPassword(password)
	if err != nil {
		return err
	}

	c.PasswordHash = hash
	return nil
}

// CheckPassword reports whether password matches the stored hash.
func (c Credential) CheckPassword(hasher PasswordHasher, password string) bool {
	if c.PasswordHash == "" {
		return false
	}
	return hasher.ComparePasswordAndHash(password, c.PasswordHash) == nil
}

// PBKDF2Hasher derives PBKDF2-SHA256 hashes encoded in the modular crypt
// format `$pbkdf2-sha256$<rounds>$<salt>$<checksum>` with adapted base64.
type PBKDF2Hasher struct {
	Rounds int
}

// PBKDF2Option configures a PBKDF2Hasher.
type PBKDF2Option func(*PBKDF2Hasher)

// WithPBKDF2Rounds overrides the iteration count used for new hashes.
func WithPBKDF2Rounds(rounds int) PBKDF2Option {
	return func(h *PBKDF2Hasher) {
		if rounds > 0 {
			h.Rounds = rounds
		}
	}
}

// NewPBKDF2Hasher returns a hasher using DefaultPBKDF2Rounds unless overridden.
func NewPBKDF2Hasher(opts ...PBKDF2Option) PBKDF2Hasher {
	h := PBKDF2Hasher{Rounds: DefaultPBKDF2Rounds}
	for _, opt := range opts {
		if opt != nil {
			opt(&h)
		}
	}
	return h
}

func (h PBKDF2Hasher) HashPassword(password string) (string, error) {
	if password == "" {
		return "", ErrWeakCredential
	}

	rounds := h.Rounds
	if rounds <= 0 {
		rounds = DefaultPBKDF2Rounds
	}

	salt := make([]byte, pbkdf2SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	key := pbkdf2.Key([]byte(password), salt, rounds, pbkdf2KeyLen, sha256.New)

	return fmt.Sprintf("$%s$%d$%s$%s", pbkdf2Ident, rounds, ab64Encode(salt), ab64Encode(key)), nil
}

// ComparePasswordAndHash re-derives the key with the stored salt and rounds
// and compares in constant time.
func (h PBKDF2Hasher) ComparePasswordAndHash(password, hash string) error {
	rounds, salt, expected, err := parsePBKDF2Hash(hash)
	if err != nil {
		return err
	}

	key := pbkdf2.Key([]byte(password), salt, rounds, len(expected), sha256.New)
	if subtle.ConstantTimeCompare(key, expected) != 1 {
		return ErrMismatchedHashAndPassword
	}
	return nil
}

func isPBKDF2Hash(hash string) bool {
	return strings.HasPrefix(hash, "$"+pbkdf2Ident+"$")
}

func parsePBKDF2Hash(hash string) (int, []byte, []byte, error) {
	parts := strings.Split(hash, "$")
	// "", ident, rounds, salt, checksum
	if len(parts) != 5 || parts[0] != "" || parts[1] != pbkdf2Ident {
		return 0, nil, nil, ErrUnknownHashFormat
	}

	rounds, err := strconv.Atoi(parts[2])
	if err != nil || rounds <= 0 {
		return 0, nil, nil, ErrUnknownHashFormat
	}

	salt, err := ab64Decode(parts[3])
	if err != nil {
		return 0, nil, nil, ErrUnknownHashFormat
	}

	key, err := ab64Decode(parts[4])
	if err != nil || len(key) == 0 {
		return 0, nil, nil, ErrUnknownHashFormat
	}

	return rounds, salt, key, nil
}

// ab64 is standard base64 without padding and with "." in place of "+".
func ab64Encode(b []byte) string {
	return strings.ReplaceAll(base64.RawStdEncoding.EncodeToString(b), "+", ".")
}

func ab64Decode(s string) ([]byte, error) {
	return base64.RawStdEncoding.DecodeString(strings.ReplaceAll(s, ".", "+"))
}

// passwordHasher hashes with PBKDF2 and verifies PBKDF2 or bcrypt hashes.
type passwordHasher struct {
	primary PBKDF2Hasher
	bcrypt  BcryptHasher
}

// NewPasswordHasher returns the default hasher. New hashes are PBKDF2-SHA256;
// existing bcrypt hashes still verify.
func NewPasswordHasher(opts ...PBKDF2Option) PasswordHasher {
	return passwordHasher{
		primary: NewPBKDF2Hasher(opts...),
		bcrypt:  NewBcryptHasher(0),
	}
}

func (p passwordHasher) HashPassword(password string) (string, error) {
	return p.primary.HashPassword(password)
}

func (p passwordHasher) ComparePasswordAndHash(password, hash string) error {
	switch {
	case isPBKDF2Hash(hash):
		return p.primary.ComparePasswordAndHash(password, hash)
	case isBcryptHash(hash):
		return p.bcrypt.ComparePasswordAndHash(password, hash)
	default:
		return ErrUnknownHashFormat
	}
}

func minRunes(n int) validation.RuleFunc {
	return func(value interface{}) error {
		s, _ := value.(string)
		if utf8.RuneCountInString(s) < n {
			return fmt.Errorf("must be at least %d characters long", n)
		}
		return nil
	}
}

func maxRunes(n int) validation.RuleFunc {
	return func(value interface{}) error {
		s, _ := value.(string)
		if utf8.RuneCountInString(s) > n {
			return fmt.Errorf("must be at most %d characters long", n)
		}
		return nil
	}
}
