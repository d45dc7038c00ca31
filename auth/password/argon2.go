package password

import (
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// Argon2MaxLength bounds argon2id input to keep hashing cost predictable.
const Argon2MaxLength = 1024

// Parameter bounds accepted when verifying a stored hash. A hash outside
// them is treated as malformed instead of being computed.
const (
	argon2MaxMemory = 1 << 20 // KiB
	argon2MaxTime   = 16
	argon2MinKeyLen = 16
	argon2MaxKeyLen = 64
	argon2MinSalt   = 8
)

// Argon2Params are the argon2id cost parameters.
type Argon2Params struct {
	Time    uint32 `yaml:"time" mapstructure:"time"`
	Memory  uint32 `yaml:"memory" mapstructure:"memory"`
	Threads uint8  `yaml:"threads" mapstructure:"threads"`
}

// Argon2Hasher implements Hasher with argon2id.
type Argon2Hasher struct {
	params  Argon2Params
	keyLen  uint32
	saltLen int
}

// NewArgon2Hasher creates an argon2id hasher. Zero fields take the OWASP
// defaults (t=1, m=64MiB, p=4).
func NewArgon2Hasher(params Argon2Params) *Argon2Hasher {
	if params.Time == 0 {
		params.Time = 1
	}
	if params.Memory == 0 {
		params.Memory = 64 * 1024
	}
	if params.Threads == 0 {
		params.Threads = 4
	}
	return &Argon2Hasher{params: params, keyLen: 32, saltLen: 16}
}

// Hash encodes as $argon2id$v=19$m=MEMORY,t=TIME,p=THREADS$SALT$KEY.
func (h *Argon2Hasher) Hash(plain string) (string, error) {
	if err := checkLength(plain, Argon2MaxLength); err != nil {
		return "", err
	}
	salt, err := randomBytes(h.saltLen)
	if err != nil {
		return "", fmt.Errorf("password: argon2 salt: %w", err)
	}
	key := argon2.IDKey([]byte(plain), salt, h.params.Time, h.params.Memory, h.params.Threads, h.keyLen)
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		h.params.Memory, h.params.Time, h.params.Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

func (h *Argon2Hasher) Verify(plain, encoded string) bool {
	if plain == "" || len(plain) > Argon2MaxLength {
		return false
	}
	params, salt, want, ok := decodeArgon2(encoded)
	if !ok {
		return false
	}
	got := argon2.IDKey([]byte(plain), salt, params.Time, params.Memory, params.Threads, uint32(len(want)))
	return subtle.ConstantTimeCompare(got, want) == 1
}

func decodeArgon2(encoded string) (Argon2Params, []byte, []byte, bool) {
	var p Argon2Params
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2id" {
		return p, nil, nil, false
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return p, nil, nil, false
	}
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.Memory, &p.Time, &p.Threads); err != nil {
		return p, nil, nil, false
	}
	if p.Time == 0 || p.Time > argon2MaxTime || p.Threads == 0 ||
		p.Memory < 8*uint32(p.Threads) || p.Memory > argon2MaxMemory {
		return p, nil, nil, false
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil || len(salt) < argon2MinSalt {
		return p, nil, nil, false
	}
	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(key) < argon2MinKeyLen || len(key) > argon2MaxKeyLen {
		return p, nil, nil, false
	}
	return p, salt, key, true
}
