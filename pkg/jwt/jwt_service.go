package jwt

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"Food-Rescue-Ledger/domain"
	"Food-Rescue-Ledger/internal/utils"

	"github.com/gofiber/fiber/v2/log"
	"github.com/golang-jwt/jwt/v4"
)

const tokenTTL = 120 * time.Minute

// ErrEmptySecret is returned by the constructors when no signing key is set.
// HS256 accepts a zero-length key, so such a service would verify tokens
// anyone can forge.
var ErrEmptySecret = errors.New("JWT_SECRET must not be empty")

type (
	JWTService interface {
		GenerateTokenUser(user domain.CurrentUser) string
		ValidateTokenUser(token string) (*jwt.Token, error)
		GetUserByToken(token string) (domain.CurrentUser, error)
	}

	jwtUserClaim struct {
		UserID      string `json:"user_id"`
		Role        string `json:"role"`
		DisplayName string `json:"display_name"`
		jwt.RegisteredClaims
	}

	jwtService struct {
		secretKey string
		issuer    string
		now       func() time.Time
	}
)

func NewJWTService() (JWTService, error) {
	return NewJWTServiceWithSecret(utils.GetConfig("JWT_SECRET"), nil)
}

func NewJWTServiceWithSecret(secretKey string, now func() time.Time) (JWTService, error) {
	if strings.TrimSpace(secretKey) == "" {
		return nil, ErrEmptySecret
	}
	if now == nil {
		now = time.Now
	}
	return &jwtService{
		secretKey: secretKey,
		issuer:    "FOOD-RESCUE-LEDGER",
		now:       now,
	}, nil
}

func (j *jwtService) GenerateTokenUser(user domain.CurrentUser) string {
	issuedAt := j.now()
	claims := jwtUserClaim{
		user.ID,
		user.Role,
		user.DisplayName,
		jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(tokenTTL)),
			Issuer:    j.issuer,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tx, err := token.SignedString([]byte(j.secretKey))
	if err != nil {
		log.Error(err)
	}
	return tx
}

func (j *jwtService) parseToken(t_ *jwt.Token) (any, error) {
	if _, ok := t_.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method %v", t_.Header["alg"])
	}
	return []byte(j.secretKey), nil
}

func (j *jwtService) ValidateTokenUser(token string) (*jwt.Token, error) {
	parser := jwt.NewParser(jwt.WithoutClaimsValidation())
	t_Token, err := parser.ParseWithClaims(token, &jwtUserClaim{}, j.parseToken)
	if err != nil {
		return nil, err
	}

	claims := t_Token.Claims.(*jwtUserClaim)
	if !claims.VerifyExpiresAt(j.now(), true) {
		return nil, jwt.ErrTokenExpired
	}
	if !claims.VerifyIssuer(j.issuer, true) {
		return nil, jwt.ErrTokenInvalidIssuer
	}
	return t_Token, nil
}

func (j *jwtService) GetUserByToken(token string) (domain.CurrentUser, error) {
	t_Token, err := j.ValidateTokenUser(token)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return domain.CurrentUser{}, domain.ErrTokenExpired
		}
		return domain.CurrentUser{}, domain.ErrTokenInvalid
	}
	if !t_Token.Valid {
		return domain.CurrentUser{}, domain.ErrTokenInvalid
	}

	claims := t_Token.Claims.(*jwtUserClaim)
	if claims.UserID == "" {
		return domain.CurrentUser{}, domain.ErrTokenInvalid
	}
	return domain.CurrentUser{
		ID:          claims.UserID,
		DisplayName: claims.DisplayName,
		Role:        claims.Role,
	}, nil
}
