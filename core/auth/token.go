package auth

import (
	"strconv"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/pkg/errors"

	"github.com/trezcool/academia/core/principal"
)

const TokenType = "bearer"

var (
	NowFunc = time.Now // mockable

	ErrInvalidToken     = errors.New("invalid token")
	ErrUnknownAlgorithm = errors.New("unknown signing algorithm")
)

// Claims represents the authorization claims transmitted via a JWT.
type Claims struct {
	jwt.StandardClaims
	Username string         `json:"username"`
	Role     principal.Role `json:"role"`
}

// PrincipalID returns the ID of the principal the token was issued to.
func (c Claims) PrincipalID() (int, error) {
	id, err := strconv.Atoi(c.Subject)
	if err != nil {
		return 0, errors.Wrap(ErrInvalidToken, "parsing subject")
	}
	return id, nil
}

// Token is the response of a successful authentication.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// TokenService issues and decodes signed, time-bound tokens.
type TokenService struct {
	issuer   string
	secret   []byte
	method   jwt.SigningMethod
	lifetime time.Duration
}

// NewTokenService supports the HMAC algorithms HS256, HS384 and HS512.
func NewTokenService(issuer, secret, algorithm string, lifetime time.Duration) (*TokenService, error) {
	var method jwt.SigningMethod
	switch algorithm {
	case jwt.SigningMethodHS256.Alg():
		method = jwt.SigningMethodHS256
	case jwt.SigningMethodHS384.Alg():
		method = jwt.SigningMethodHS384
	case jwt.SigningMethodHS512.Alg():
		method = jwt.SigningMethodHS512
	default:
		return nil, errors.Wrapf(ErrUnknownAlgorithm, "%q", algorithm)
	}
	if secret == "" {
		return nil, errors.New("empty signing secret")
	}
	if lifetime <= 0 {
		lifetime = 2 * 24 * time.Hour
	}
	return &TokenService{issuer: issuer, secret: []byte(secret), method: method, lifetime: lifetime}, nil
}

// Issue signs a token for p, valid for the configured lifetime.
func (ts *TokenService) Issue(p principal.Principal) (Token, error) {
	now := NowFunc()
	claims := &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    ts.issuer,
			Subject:   strconv.Itoa(p.ID),
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(ts.lifetime).Unix(),
		},
		Username: p.Username,
		Role:     p.Role,
	}

	ss, err := jwt.NewWithClaims(ts.method, claims).SignedString(ts.secret)
	if err != nil {
		return Token{}, errors.Wrap(err, "signing token")
	}
	return Token{AccessToken: ss, TokenType: TokenType}, nil
}

// Decode verifies the token signature, algorithm and expiry.
// Any failure is reported as ErrInvalidToken.
func (ts *TokenService) Decode(tokenString string) (*Claims, error) {
	claims := new(Claims)
	parser := jwt.Parser{ValidMethods: []string{ts.method.Alg()}}
	token, err := parser.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return ts.secret, nil
	})
	if err != nil {
		return nil, errors.Wrap(ErrInvalidToken, err.Error())
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.ExpiresAt == 0 {
		return nil, errors.Wrap(ErrInvalidToken, "missing expiry")
	}
	if !claims.Role.Valid() || claims.Username == "" {
		return nil, errors.Wrap(ErrInvalidToken, "invalid claims")
	}
	if _, err = claims.PrincipalID(); err != nil {
		return nil, err
	}
	return claims, nil
}

// Valid checks the time based claims using NowFunc. It is called by the parser.
// iat is not checked so that clock skew between issuer and verifier is tolerated.
func (c Claims) Valid() error {
	now := NowFunc().Unix()
	if !c.VerifyExpiresAt(now, false) {
		return errors.New("token is expired")
	}
	if !c.VerifyNotBefore(now, false) {
		return errors.New("token is not valid yet")
	}
	return nil
}
