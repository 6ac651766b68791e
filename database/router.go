package database

import (
	"crypto/md5"
	"encoding/hex"
	"strings"
)

// DefaultForceHint is the comment a proxy reads to send a statement to the
// primary.
const DefaultForceHint = "/*FORCE_MASTER*/"

// SelectReplica picks a replica for clientID among n. The first hex
// character of md5(clientID), as a byte, modulo n; the same client always
// lands on the same replica.
func SelectReplica(clientID string, n int) int {
	if n <= 1 {
		return 0
	}
	sum := md5.Sum([]byte(clientID))
	first := hex.EncodeToString(sum[:1])[0]
	return int(first) % n
}

// ForcePrimary prefixes sql with hint unless it already starts with a
// comment or hint.
func ForcePrimary(sql, hint string) string {
	if hint == "" || strings.HasPrefix(sql, "/") {
		return sql
	}
	return hint + " " + sql
}
