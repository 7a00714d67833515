// Package utils holds small helpers shared across layers: env value
// parsing and Postgres error classification.
package utils

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

// ParseDurationEnv reads a duration from an environment value. Accepts
// anything time.ParseDuration does ("10s", "5m") plus a bare integer,
// which is taken as seconds (ALERT_POLL_INTERVAL=60 means one minute).
func ParseDurationEnv(raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if len(raw) >= 2 {
		// some env files quote values
		if (raw[0] == '"' && raw[len(raw)-1] == '"') || (raw[0] == '\'' && raw[len(raw)-1] == '\'') {
			raw = raw[1 : len(raw)-1]
		}
	}
	if raw == "" {
		return 0, fmt.Errorf("empty duration")
	}
	if secs, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("duration must be like 10s, 5m or a number of seconds: %w", err)
	}
	return d, nil
}

// ParseRedisURL splits a redis:// or rediss:// URL into the pieces
// go-redis wants: host:port, password and DB index.
func ParseRedisURL(raw string) (addr, password string, db int, err error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", "", 0, err
	}
	if u.Scheme != "redis" && u.Scheme != "rediss" {
		return "", "", 0, fmt.Errorf("scheme must be redis or rediss, got %q", u.Scheme)
	}
	if u.Host == "" {
		return "", "", 0, fmt.Errorf("missing host in Redis URL")
	}
	addr = u.Host
	if u.User != nil {
		password, _ = u.User.Password()
	}
	if p := strings.TrimPrefix(u.Path, "/"); p != "" {
		db, _ = strconv.Atoi(p)
	}
	return addr, password, db, nil
}

// IsPGUniqueViolation reports whether err is a Postgres unique
// constraint violation (SQLSTATE 23505), e.g. a duplicate username.
func IsPGUniqueViolation(err error) bool {
	var pge *pgconn.PgError
	return errors.As(err, &pge) && pge.Code == "23505"
}
