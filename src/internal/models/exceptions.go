package models

import "errors"

var (
	ErrRedisConnection = errors.New("redis connection error")
	ErrRedisGet        = errors.New("redis get error")
	ErrRedisSet        = errors.New("redis set error")
)

var (
	ErrStudentNotFound  = errors.New("student not found")
	ErrSessionNotFound  = errors.New("session not found")
	ErrSessionExpired   = errors.New("session expired")
	ErrInvalidParams    = errors.New("invalid parameters")
	ErrLMSUnavailable   = errors.New("course platform unavailable")
	ErrLMSUnauthorized  = errors.New("course platform rejected the api key")
	ErrHistoryNotFound  = errors.New("activity history not found")
	ErrSettingsNotFound = errors.New("settings not found")
)

var (
	ErrDatabaseConnection = errors.New("database connection error")
	ErrDatabaseQuery      = errors.New("database query error")
	ErrDatabaseInsert     = errors.New("database insert error")
	ErrDatabaseUpdate     = errors.New("database update error")
)
