package utils

import (
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// ValidateBaseURL проверяет адрес API каталога и возвращает его без завершающего слэша
func ValidateBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrConfigEmptyBaseURL
	}

	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return "", ErrConfigInvalidBaseURL
	}

	return strings.TrimRight(raw, "/"), nil
}

// HostPort собирает адрес host:port с проверкой обеих частей
func HostPort(host string, port int) (string, error) {
	if host == "" {
		return "", ErrConfigEmptyHostName
	}
	if port <= 0 || port > 65535 {
		return "", ErrConfigInvalidPort
	}
	return net.JoinHostPort(host, strconv.Itoa(port)), nil
}

// ValidateTimeout отрицательный таймаут недопустим, ноль означает значение по умолчанию
func ValidateTimeout(d time.Duration) error {
	if d < 0 {
		return ErrConfigInvalidTimeout
	}
	return nil
}

// ValidatePoolSize размер пула не может быть отрицательным
func ValidatePoolSize(n int) error {
	if n < 0 {
		return ErrConfigInvalidPoolSize
	}
	return nil
}
