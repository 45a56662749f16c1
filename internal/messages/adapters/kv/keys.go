package kv

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Message keys order by send time within a chat:
//
//   msg:{chatID}:{unix_seconds_hex16}:{uuid}
//
// The 16-digit zero-padded hex timestamp keeps lexicographic order equal to
// chronological order, so range filtering works on the key alone.

func MessageKey(chatID int64, sentAt time.Time, id string) string {
	return fmt.Sprintf("msg:%d:%016x:%s", chatID, sentAt.UTC().Unix(), id)
}

func MessagePrefix(chatID int64) string {
	return fmt.Sprintf("msg:%d:", chatID)
}

// ParseMessageKey extracts the send time from a message key.
func ParseMessageKey(key string) (time.Time, bool) {
	parts := strings.Split(key, ":")
	if len(parts) != 4 || parts[0] != "msg" {
		return time.Time{}, false
	}
	secs, err := strconv.ParseInt(parts[2], 16, 64)
	if err != nil {
		return time.Time{}, false
	}
	return time.Unix(secs, 0).UTC(), true
}
