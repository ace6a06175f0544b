// Package slot defines the unit of isolation: one uploaded file inside one
// conversation, identified by a timestamped slot name and expired by age or
// by usage rounds.
package slot

import (
	"fmt"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Key addresses exactly one vector index.
type Key struct {
	SessionID      string
	ConversationID string
	Slot           string
}

func (k Key) String() string {
	return k.SessionID + "/" + k.ConversationID + "/" + k.Slot
}

// Encode builds the slot name for a file uploaded at the given time:
// the base file name with the upload epoch appended ("report.pdf_1700000000").
// The string form doubles as the index directory name on disk.
func Encode(originalName string, uploadedAt time.Time) string {
	base := path.Base(filepath.ToSlash(originalName))
	return fmt.Sprintf("%s_%d", base, uploadedAt.Unix())
}

// Parse splits a slot name back into the original file name and upload time.
// ok is false when the name carries no trailing "_<digits>" suffix.
//
// A file whose original name itself ends in "_<digits>" cannot be told apart
// from an encoded slot; the trailing number is always read as the timestamp.
func Parse(slotName string) (originalName string, uploadedAt time.Time, ok bool) {
	base := path.Base(filepath.ToSlash(slotName))

	i := strings.LastIndex(base, "_")
	if i < 0 {
		return base, time.Time{}, false
	}

	suffix := base[i+1:]
	epoch, err := strconv.ParseInt(suffix, 10, 64)
	if err != nil || suffix == "" {
		return base, time.Time{}, false
	}

	return base[:i], time.Unix(epoch, 0), true
}
