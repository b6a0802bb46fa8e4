package identity

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// Claims 是开发用身份服务签发的 JWT 载荷，字段与验证响应保持一致。
type Claims struct {
	LoginHandle string `json:"user_login_id"`
	DisplayName string `json:"name"`
	jwt.RegisteredClaims
}

// MintToken 为指定身份签发一个 JWT，仅供本地开发与测试。
func MintToken(rec Record, secret string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		LoginHandle: rec.LoginHandle,
		DisplayName: rec.DisplayName,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   rec.ID,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseToken 验证 JWT 并还原身份记录。
func ParseToken(tokenStr, secret string) (*Record, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, jwt.ErrTokenUnverifiable
	}
	return &Record{ID: claims.Subject, LoginHandle: claims.LoginHandle, DisplayName: claims.DisplayName}, nil
}

// DevRouter 返回开发用身份服务的路由：verify 实现验证契约，token 用于本地签发。
func DevRouter(secret string, ttl time.Duration) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	r.POST("/api/auth/verify", func(c *gin.Context) {
		var req struct {
			Token string `json:"token"`
		}
		if err := c.ShouldBindJSON(&req); err != nil || req.Token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Token required"})
			return
		}
		rec, err := ParseToken(req.Token, secret)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token: " + err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"user_info": rec})
	})

	r.POST("/api/auth/token", func(c *gin.Context) {
		var req Record
		if err := c.ShouldBindJSON(&req); err != nil || req.ID == "" || req.LoginHandle == "" || req.DisplayName == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
			return
		}
		token, err := MintToken(req, secret, ttl)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to sign token"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"token": token})
	})

	return r
}
