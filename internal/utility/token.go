package utility

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"

	"github.com/devwander/localiza-tech-api/internal/common"

	jwt "github.com/dgrijalva/jwt-go"
)

// JwtToken chứa các claims của token đăng nhập.
// Time và RandomNumber đảm bảo mỗi token phát hành là duy nhất cho cùng một user.
type JwtToken struct {
	UserID       string `json:"userId"`
	Time         string `json:"time"`
	RandomNumber string `json:"randomNumber"`
	jwt.StandardClaims
}

// CreateToken tạo JWT token cho user với thời hạn cho trước.
// @params - secret: bí mật ký token, userID: id của user, ttl: thời hạn token
// @returns - chuỗi token đã ký và lỗi nếu có
func CreateToken(secret string, userID string, ttl time.Duration) (string, error) {
	randomBytes := make([]byte, 8)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", fmt.Errorf("failed to generate random number: %w", err)
	}

	now := time.Now()
	claims := JwtToken{
		UserID:       userID,
		Time:         strconv.FormatInt(now.UnixMilli(), 16),
		RandomNumber: hex.EncodeToString(randomBytes),
		StandardClaims: jwt.StandardClaims{
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(ttl).Unix(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// VerifyToken kiểm tra chữ ký và thời hạn của token, trả về claims nếu hợp lệ.
func VerifyToken(secret string, tokenString string) (*JwtToken, error) {
	claims := &JwtToken{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		if ve, ok := err.(*jwt.ValidationError); ok && ve.Errors&jwt.ValidationErrorExpired != 0 {
			return nil, common.ErrTokenExpired
		}
		return nil, common.ErrTokenInvalid
	}
	if !token.Valid {
		return nil, common.ErrTokenInvalid
	}
	return claims, nil
}
