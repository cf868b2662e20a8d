package randomutil

import (
	"encoding/hex"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/gofrs/uuid"
)

// IDGenerator produces request, impression and user identifiers: 32 lowercase hex characters.
type IDGenerator interface {
	GenerateID() string
}

// RandomIDGenerator draws 128 bits from crypto/rand through a UUIDv4. When secure randomness is
// unavailable it falls back to a timestamp derived id, since the ids only correlate logs and requests.
type RandomIDGenerator struct {
	newUUID func() (uuid.UUID, error)
	now     func() time.Time
}

// NewIDGenerator returns the production generator.
func NewIDGenerator() RandomIDGenerator {
	return RandomIDGenerator{
		newUUID: uuid.NewV4,
		now:     time.Now,
	}
}

var fallbackSequence uint64

func (g RandomIDGenerator) GenerateID() string {
	newUUID := g.newUUID
	if newUUID == nil {
		newUUID = uuid.NewV4
	}
	if id, err := newUUID(); err == nil {
		return hex.EncodeToString(id.Bytes())
	}
	return g.timestampID()
}

// timestampID renders nanoseconds and a process-wide counter as 16 hex digits each,
// so two fallback ids generated in the same nanosecond still differ.
func (g RandomIDGenerator) timestampID() string {
	now := g.now
	if now == nil {
		now = time.Now
	}
	nanos := strconv.FormatUint(uint64(now().UnixNano()), 16)
	seq := strconv.FormatUint(atomic.AddUint64(&fallbackSequence, 1), 16)
	return leftPad(nanos, 16) + leftPad(seq, 16)
}

func leftPad(s string, width int) string {
	for len(s) < width {
		s = "0" + s
	}
	return s
}
