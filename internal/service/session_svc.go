package service

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ==================== 会话令牌常量 ====================

const (
	// SessionTokenTTL 匿名购物车会话有效期
	SessionTokenTTL = 24 * time.Hour

	// sessionTokenMinLen 低于该长度的令牌直接判为无效（前端以此决定是否换新）
	sessionTokenMinLen = 64
)

// ==================== SessionService 匿名会话服务 ====================

// SessionService 匿名购物车会话令牌
// 令牌格式: <毫秒时间戳>.<48位随机hex>.<HMAC-SHA256 hex>
// 签名覆盖前两段，服务端可完整校验——不再是装饰性后缀
type SessionService struct {
	secret []byte
}

// NewSessionService 创建会话服务
func NewSessionService(secret string) *SessionService {
	return &SessionService{secret: []byte(secret)}
}

// GenerateToken 签发新令牌
func (s *SessionService) GenerateToken() (string, time.Time, error) {
	now := time.Now()

	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return "", time.Time{}, fmt.Errorf("生成随机数失败: %w", err)
	}

	body := strconv.FormatInt(now.UnixMilli(), 10) + "." + hex.EncodeToString(buf)
	token := body + "." + s.sign(body)

	return token, now.Add(SessionTokenTTL), nil
}

// ValidateToken 校验令牌：长度、格式、签名、有效期
// 返回过期时间和是否有效
func (s *SessionService) ValidateToken(token string) (time.Time, bool) {
	if len(token) < sessionTokenMinLen {
		return time.Time{}, false
	}

	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return time.Time{}, false
	}

	body := parts[0] + "." + parts[1]
	if !hmac.Equal([]byte(s.sign(body)), []byte(parts[2])) {
		return time.Time{}, false
	}

	issuedMs, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return time.Time{}, false
	}

	expiresAt := time.UnixMilli(issuedMs).Add(SessionTokenTTL)
	if time.Now().After(expiresAt) {
		return time.Time{}, false
	}

	return expiresAt, true
}

func (s *SessionService) sign(body string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(body))
	return hex.EncodeToString(mac.Sum(nil))
}
