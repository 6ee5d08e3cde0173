package utils

import (
	"context"
	"strings"
	"time"
)

// Counters live in Redis; every check fails open when Redis is missing or errors.

func guardKey(parts ...string) string {
	return "guard:" + strings.Join(parts, ":")
}

// RegistrationCooldownTry enforces a short cooldown between signup attempts per IP.
func RegistrationCooldownTry(ip string, cooldown time.Duration) bool {
	if cooldown <= 0 {
		return true
	}
	cli := GetRedis()
	if cli == nil {
		return true
	}
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	ok, err := cli.SetNX(ctx, guardKey("signup", "cooldown", ip), "1", cooldown).Result()
	if err != nil {
		return true
	}
	return ok
}

// LoginIsBanned reports whether ip is temporarily banned from logging in.
func LoginIsBanned(ip string) bool {
	cli := GetRedis()
	if cli == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	exists, err := cli.Exists(ctx, guardKey("login", "ban", ip)).Result()
	if err != nil {
		return false
	}
	return exists > 0
}

// LoginFailRecord counts a failed login for ip within the current hour and
// bans the ip for banFor once the count exceeds maxPerHour. It returns the count.
func LoginFailRecord(ip string, maxPerHour int, banFor time.Duration) int {
	cli := GetRedis()
	if cli == nil {
		return 0
	}
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	key := guardKey("login", "fail", ip, time.Now().Format("2006010215"))
	n, err := cli.Incr(ctx, key).Result()
	if err != nil {
		return 0
	}
	_ = cli.Expire(ctx, key, time.Hour).Err()
	if maxPerHour > 0 && int(n) > maxPerHour {
		if banFor <= 0 {
			banFor = time.Hour
		}
		_ = cli.Set(ctx, guardKey("login", "ban", ip), "1", banFor).Err()
	}
	return int(n)
}
