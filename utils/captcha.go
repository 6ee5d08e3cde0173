package utils

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/mojocn/base64Captcha"
	"github.com/redis/go-redis/v9"
)

const signupCaptchaTTL = 10 * time.Minute

var signupCaptchas = newCaptchaStore("captcha:signup:", signupCaptchaTTL)

// captchaStore keeps answers in Redis and falls back to process memory when
// Redis is not configured or fails. Implements base64Captcha.Store.
type captchaStore struct {
	prefix string
	ttl    time.Duration
	local  base64Captcha.Store
}

func newCaptchaStore(prefix string, ttl time.Duration) *captchaStore {
	return &captchaStore{
		prefix: prefix,
		ttl:    ttl,
		local:  base64Captcha.NewMemoryStore(base64Captcha.GCLimitNumber, ttl),
	}
}

func (s *captchaStore) Set(id, answer string) error {
	if rc := GetRedis(); rc != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		err := rc.Set(ctx, s.prefix+id, answer, s.ttl).Err()
		if err == nil {
			return nil
		}
		Sugar.Warnw("captcha answer kept in memory", "error", err)
	}
	return s.local.Set(id, answer)
}

func (s *captchaStore) Get(id string, clear bool) string {
	if rc := GetRedis(); rc != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		var (
			v   string
			err error
		)
		if clear {
			v, err = rc.GetDel(ctx, s.prefix+id).Result()
		} else {
			v, err = rc.Get(ctx, s.prefix+id).Result()
		}
		if err == nil {
			return v
		}
		if !errors.Is(err, redis.Nil) {
			Sugar.Warnw("captcha lookup failed", "error", err)
		}
	}
	return s.local.Get(id, clear)
}

// Verify reports whether answer matches, ignoring case and surrounding space.
func (s *captchaStore) Verify(id, answer string, clear bool) bool {
	v := s.Get(id, clear)
	return v != "" && strings.EqualFold(v, strings.TrimSpace(answer))
}

// GenerateCaptcha creates a digit captcha and returns its id and image data URI.
func GenerateCaptcha() (string, string, error) {
	driver := base64Captcha.NewDriverDigit(40, 120, 5, 0.7, 80)
	id, image, _, err := base64Captcha.NewCaptcha(driver, signupCaptchas).Generate()
	return id, image, err
}

// VerifyCaptcha checks a signup captcha answer. Each captcha is usable once.
func VerifyCaptcha(id, answer string) bool {
	if id == "" || answer == "" {
		return false
	}
	return signupCaptchas.Verify(id, answer, true)
}
