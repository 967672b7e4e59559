package ledger

import (
	cryptoRand "crypto/rand"
	"encoding/binary"
	"io"
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	ridMu   sync.Mutex
	ridMono io.Reader
)

func init() {
	// The SQLite store orders rows by (date, row_id), so ids minted within
	// the same millisecond must still sort in append order. ulid.Monotonic
	// guarantees that; the PRNG is seeded from crypto/rand so ids stay
	// unpredictable across runs.
	var seed int64
	_ = binary.Read(cryptoRand.Reader, binary.LittleEndian, &seed)
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	ridMono = ulid.Monotonic(rand.New(rand.NewSource(seed)), 0)
}

// newRowID returns a time-sortable ULID for a history row.
func newRowID() string {
	ridMu.Lock()
	defer ridMu.Unlock()

	id, err := ulid.New(ulid.Timestamp(time.Now().UTC()), ridMono)
	if err != nil {
		// Only possible if time goes backwards or entropy fails.
		panic(err)
	}
	return id.String()
}
