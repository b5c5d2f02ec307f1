package services

import (
	"context"
	"net/url"
	"time"

	"github.com/arhub/ar-hub-backend/errs"
	"github.com/golang-jwt/jwt/v5"
)

// LocalSigner issues HMAC-signed download/upload URLs pointing back at this
// deployment. It stands in for S3 when no bucket is configured and gives
// tests a deterministic signer.
type LocalSigner struct {
	secret  []byte
	baseURL string
	ttl     time.Duration
}

func NewLocalSigner(secret, baseURL string) *LocalSigner {
	return &LocalSigner{
		secret:  []byte(secret),
		baseURL: baseURL,
		ttl:     signedURLTTL,
	}
}

func (s *LocalSigner) signedURL(path, fileKey, scope string) (string, error) {
	claims := jwt.MapClaims{
		"key":   fileKey,
		"scope": scope,
		"exp":   time.Now().Add(s.ttl).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", errs.NewSignURLError(fileKey, err)
	}
	return s.baseURL + path + "?token=" + url.QueryEscape(token), nil
}

func (s *LocalSigner) ResolveURL(ctx context.Context, fileKey string) (string, error) {
	return s.signedURL("/api/files", fileKey, "get")
}

func (s *LocalSigner) SignUpload(ctx context.Context, fileKey, mime string, sizeBytes int64) (string, error) {
	return s.signedURL("/api/files", fileKey, "put")
}

// VerifyToken checks a signed URL token and returns the fileKey and scope.
func (s *LocalSigner) VerifyToken(token string) (fileKey, scope string, err error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errs.ErrInvalidToken
		}
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !parsed.Valid {
		return "", "", errs.NewInvalidTokenError()
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return "", "", errs.NewInvalidTokenError()
	}
	fileKey, _ = claims["key"].(string)
	scope, _ = claims["scope"].(string)
	return fileKey, scope, nil
}
