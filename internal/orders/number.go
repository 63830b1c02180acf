package orders

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewOrderNumber builds a human-traceable token: "HX" + second-precision
// timestamp + 8 random hex chars. Practically collision-free at expected
// volumes; the ledger's UNIQUE constraint is still the authority.
func NewOrderNumber() string {
	ts := time.Now().Format("20060102150405")
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return "HX" + ts + suffix
}
