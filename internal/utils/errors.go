package utils

import "errors"

// ----------------- config ------------------
var (
	ErrConfigEmptyBaseURL     = errors.New("product API base URL is empty")
	ErrConfigInvalidBaseURL   = errors.New("product API base URL is invalid")
	ErrConfigEmptyHostName    = errors.New("host name is empty")
	ErrConfigInvalidPort      = errors.New("port number is invalid")
	ErrConfigInvalidTimeout   = errors.New("timeout is invalid")
	ErrConfigInvalidPoolSize  = errors.New("pool size is invalid")
	ErrConfigEmptyBrokers     = errors.New("kafka brokers list is empty")
	ErrConfigEmptyTopic       = errors.New("kafka topic is empty")
	ErrConfigInvalidRateLimit = errors.New("rate limit is invalid")
)
