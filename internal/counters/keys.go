package counters

import (
	"fmt"
	"strconv"
	"strings"
)

// Keyspace layout for counters in the key-value store:
//
//   count:chat:{chatID}:{day}            -> decimal total for the chat/day
//   count:user:{chatID}:{userID}:{day}   -> decimal total for the user/day
//   count:word:{chatID}:{word}:{day}     -> decimal total for the token/day
//   name:{chatID}:{userID}               -> last seen display name
//
// Days are formatted as 2006-01-02 so per-dimension keys sort by day.

const DayFormat = "2006-01-02"

func ChatDayKey(chatID int64, day string) string {
	return fmt.Sprintf("count:chat:%d:%s", chatID, day)
}

func ChatDayPrefix(chatID int64) string {
	return fmt.Sprintf("count:chat:%d:", chatID)
}

func UserDayKey(chatID, userID int64, day string) string {
	return fmt.Sprintf("count:user:%d:%d:%s", chatID, userID, day)
}

func UserDayPrefix(chatID int64) string {
	return fmt.Sprintf("count:user:%d:", chatID)
}

func WordDayKey(chatID int64, word, day string) string {
	return fmt.Sprintf("count:word:%d:%s:%s", chatID, word, day)
}

func WordDayPrefix(chatID int64) string {
	return fmt.Sprintf("count:word:%d:", chatID)
}

func UsernameKey(chatID, userID int64) string {
	return fmt.Sprintf("name:%d:%d", chatID, userID)
}

func UsernamePrefix(chatID int64) string {
	return fmt.Sprintf("name:%d:", chatID)
}

// ParseChatDayKey extracts the day from a chat-total key.
func ParseChatDayKey(key string) (day string, ok bool) {
	rest, ok := splitCounterKey(key, "count:chat:", 2)
	if !ok {
		return "", false
	}
	return rest[1], true
}

// ParseUserDayKey extracts the user id and day from a per-user key.
func ParseUserDayKey(key string) (userID int64, day string, ok bool) {
	rest, ok := splitCounterKey(key, "count:user:", 3)
	if !ok {
		return 0, "", false
	}
	id, err := strconv.ParseInt(rest[1], 10, 64)
	if err != nil {
		return 0, "", false
	}
	return id, rest[2], true
}

// ParseWordDayKey extracts the word token and day from a per-word key.
func ParseWordDayKey(key string) (word, day string, ok bool) {
	rest, ok := splitCounterKey(key, "count:word:", 3)
	if !ok {
		return "", "", false
	}
	return rest[1], rest[2], true
}

func splitCounterKey(key, prefix string, parts int) ([]string, bool) {
	if !strings.HasPrefix(key, prefix) {
		return nil, false
	}
	fields := strings.SplitN(key[len(prefix):], ":", parts)
	if len(fields) != parts {
		return nil, false
	}
	for _, f := range fields {
		if f == "" {
			return nil, false
		}
	}
	return fields, true
}
