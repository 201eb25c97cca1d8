package model

import "github.com/golang-jwt/jwt/v5"

// LoginRequest is the operator login payload
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse contains the operator JWT
type LoginResponse struct {
	Token      string `json:"token"`
	OperatorID string `json:"operatorId"`
}

// OperatorClaims are JWT claims for operator tokens
type OperatorClaims struct {
	OperatorID string `json:"operatorId"`
	jwt.RegisteredClaims
}

// SessionClaims are JWT claims for respondent session tokens
type SessionClaims struct {
	SessionID string `json:"sessionId"`
	jwt.RegisteredClaims
}
