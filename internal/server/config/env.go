package config

import (
	"fmt"
	"strconv"
	"time"
)

const envPrefix = "TASKTRACKER_"

// parseEnv overlays TASKTRACKER_* variables. lookup is os.LookupEnv in
// production. Malformed numeric, bool or duration values panic like a bad
// JSON file does.
func parseEnv(config *Config, lookup func(string) (string, bool)) {
	str := func(key string, dst *string) {
		if v, ok := lookup(envPrefix + key); ok {
			*dst = v
		}
	}
	num := func(key string, dst *int) {
		if v, ok := lookup(envPrefix + key); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				panic(fmt.Errorf("%s%s: %w", envPrefix, key, err))
			}
			*dst = n
		}
	}
	dur := func(key string, dst *time.Duration) {
		if v, ok := lookup(envPrefix + key); ok {
			d, err := time.ParseDuration(v)
			if err != nil {
				panic(fmt.Errorf("%s%s: %w", envPrefix, key, err))
			}
			*dst = d
		}
	}

	str("HTTP_ADDR", &config.EndpointAddrHTTP)
	str("GRPC_ADDR", &config.EndpointAddrGRPC)
	str("DATABASE_DSN", &config.DatabaseDSN)
	str("SECRET_KEY", &config.SecretKey)
	dur("SESSION_TTL", &config.SessionTTL)
	dur("RESET_TOKEN_TTL", &config.ResetTokenTTL)
	dur("ACTIVATION_TOKEN_TTL", &config.ActivationTokenTTL)
	str("FRONTEND_URL", &config.FrontendURL)
	str("SMTP_HOST", &config.SMTPHost)
	num("SMTP_PORT", &config.SMTPPort)
	str("SMTP_USER", &config.SMTPUser)
	str("SMTP_PASSWORD", &config.SMTPPassword)
	str("SMTP_FROM", &config.SMTPFrom)
	num("BCRYPT_COST", &config.BcryptCost)
	str("PHONE_REGION", &config.PhoneRegion)
	str("LOG_LEVEL", &config.LogLevel)
	str("LOG_FORMAT", &config.LogFormat)

	if v, ok := lookup(envPrefix + "COOKIE_SECURE"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			panic(fmt.Errorf("%sCOOKIE_SECURE: %w", envPrefix, err))
		}
		config.CookieSecure = b
	}
}
