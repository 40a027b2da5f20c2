// Package store holds the flat key-value backends for persisted settings.
// Every backend stores plain strings; encoding lives in the settings service.
package store

// RedisKey is the hash that holds all settings in the Redis backend.
const RedisKey = "mailguard:settings"
