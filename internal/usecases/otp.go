package usecases

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// otpSpace covers every six-digit code, 000000 through 999999.
const otpSpace = 1_000_000

// OTPSource yields one-time withdrawal codes. Injected so tests can fix
// the code instead of depending on ambient randomness.
type OTPSource interface {
	Code() string
}

// SeededOTPSource draws uniform six-digit codes from a seedable PRNG.
// Collisions across orders are acceptable and not deduplicated. Safe
// for concurrent use.
type SeededOTPSource struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewSeededOTPSource(seed uint64) *SeededOTPSource {
	return &SeededOTPSource{rng: rand.New(rand.NewPCG(seed, seed))}
}

func (s *SeededOTPSource) Code() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return fmt.Sprintf("%06d", s.rng.IntN(otpSpace))
}

// ValidationHash computes the integrity digest stored with a withdrawal
// order, covering the OTP, source account, amount and issuance time.
func ValidationHash(otp string, accountID int64, amount decimal.Decimal, issuedAt time.Time) string {
	payload := fmt.Sprintf("%s-%d-%s-%s", otp, accountID, amount.String(), issuedAt.UTC().Format(time.RFC3339Nano))
	sum := sha256.Sum256([]byte(payload))

	return hex.EncodeToString(sum[:])
}
