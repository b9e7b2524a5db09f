package utils

import (
	"time"
)

// Token and session time constants
const (
	// AccessTokenTTL is the time-to-live for access tokens (24 hours)
	AccessTokenTTL = 24 * time.Hour

	// AccessTokenTTLSeconds is the time-to-live for access tokens in seconds (86400 seconds = 24 hours)
	AccessTokenTTLSeconds = 86400

	// RefreshTokenTTL is the time-to-live for refresh tokens (7 days)
	RefreshTokenTTL = 7 * 24 * time.Hour

	// SessionTimeout is the default session timeout (24 hours)
	SessionTimeout = 24 * time.Hour
)

// CORS and security constants
const (
	// CORSMaxAge is the maximum age for CORS preflight requests (24 hours)
	CORSMaxAge = 86400
)

// Commission and payout constants
const (
	// MaxCommissionRate is the highest allowed commission percentage
	MaxCommissionRate = 100

	// PayoutReportFilenamePrefix is the prefix of the payout CSV attachment name
	PayoutReportFilenamePrefix = "relatorio_pagamento_"

	// PayoutLockTTL bounds how long a payout batch may hold the execution lock
	PayoutLockTTL = 2 * time.Minute

	// PayoutLockKey is the redis key guarding payout batch double-submission
	PayoutLockKey = "payout:batch:lock"

	// BusinessTimezone is the IANA zone used for day boundaries in dashboards
	BusinessTimezone = "America/Sao_Paulo"
)
