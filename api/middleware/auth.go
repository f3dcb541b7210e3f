/*
Copyright 2025 NovaTrek Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"

	"github.com/FredvanRijswijk/novatrek-engine/config"
)

const (
	RoleAdmin    = "admin"
	RoleReviewer = "reviewer"

	// ContextSubjectKey is where the authenticated subject lands in the gin
	// context, so handlers can attribute admin actions to a reviewer.
	ContextSubjectKey = "auth_subject"
)

// AdminClaims are the claims carried by staff tokens. Role gates access to the
// admin surface; Subject identifies the reviewer for audit fields.
type AdminClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

func parseAdminToken(tokenStr, secret string) (*AdminClaims, error) {
	if secret == "" {
		return nil, errors.New("token secret is empty")
	}

	token, err := jwt.ParseWithClaims(tokenStr, &AdminClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*AdminClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// AdminAuthMiddleware authenticates the admin surface with a bearer token
// signed by the server secret. A valid token without an admin or reviewer
// role is authenticated but not authorized.
func AdminAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		conf, err := config.Fetch()
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Server auth is not configured"})
			return
		}

		authHeader := c.GetHeader("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing bearer token"})
			return
		}

		claims, err := parseAdminToken(strings.TrimPrefix(authHeader, "Bearer "), conf.Server.SecretKey)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		if claims.Role != RoleAdmin && claims.Role != RoleReviewer {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Insufficient permissions"})
			return
		}

		c.Set(ContextSubjectKey, claims.Subject)
		c.Next()
	}
}
