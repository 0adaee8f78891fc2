package redis

import "fmt"

// Key prefix for all netpong data
const keyPrefix = "netpong"

// accountKey returns the Redis key for an Account
func accountKey(username string) string {
	return fmt.Sprintf("%s:account:%s", keyPrefix, username)
}

// winsKey returns the Redis key for the win-count sorted set
func winsKey() string {
	return fmt.Sprintf("%s:wins", keyPrefix)
}
