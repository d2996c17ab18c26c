package tokens

import (
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/muhasebehub/muhasebe.go/db/models"
)

type jwtCustomClaims struct {
	ID        int64 `json:"id"`
	Superuser bool  `json:"superuser"`
	IsRefresh bool  `json:"isRefresh"`
	jwt.StandardClaims
}

var badAuth = echo.NewHTTPError(http.StatusUnauthorized, echo.Map{
	"error":   true,
	"code":    1,
	"message": "bad auth",
})

func Middleware(secret []byte) echo.MiddlewareFunc {
	config := middleware.DefaultJWTConfig

	config.ContextKey = "UserJwt"
	config.SigningKey = secret
	config.ErrorHandlerWithContext = func(err error, c echo.Context) error {
		c.Logger().Error(err)
		return badAuth
	}
	config.SuccessHandler = func(c echo.Context) {
		token := c.Get("UserJwt").(*jwt.Token)
		claims := token.Claims.(jwt.MapClaims)
		if id, ok := claims["id"].(float64); ok {
			c.Set("UserID", int64(id))
		}
		superuser, _ := claims["superuser"].(bool)
		c.Set("Superuser", superuser)
		isRefresh, _ := claims["isRefresh"].(bool)
		c.Set("IsRefresh", isRefresh)
	}
	jwtMiddleware := middleware.JWTWithConfig(config)

	// refresh tokens only buy new tokens at /auth
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return jwtMiddleware(func(c echo.Context) error {
			if isRefresh, _ := c.Get("IsRefresh").(bool); isRefresh {
				return badAuth
			}
			if _, ok := c.Get("UserID").(int64); !ok {
				return badAuth
			}
			return next(c)
		})
	}
}

// SuperuserMiddleware must run after Middleware.
func SuperuserMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if superuser, _ := c.Get("Superuser").(bool); !superuser {
				return echo.NewHTTPError(http.StatusForbidden, echo.Map{
					"error":   true,
					"code":    3,
					"message": "superuser required",
				})
			}
			return next(c)
		}
	}
}

// GenerateAccessToken : Generate Access Token
func GenerateAccessToken(secret []byte, expiryInSeconds int, u *models.User) (string, error) {
	claims := &jwtCustomClaims{
		ID:        u.ID,
		Superuser: u.Superuser,
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: time.Now().Add(time.Second * time.Duration(expiryInSeconds)).Unix(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	t, err := token.SignedString(secret)
	if err != nil {
		return "", err
	}

	return t, nil
}

// GenerateRefreshToken : Generate Refresh Token
func GenerateRefreshToken(secret []byte, expiryInSeconds int, u *models.User) (string, error) {
	claims := &jwtCustomClaims{
		ID:        u.ID,
		IsRefresh: true,
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: time.Now().Add(time.Second * time.Duration(expiryInSeconds)).Unix(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	t, err := token.SignedString(secret)
	if err != nil {
		return "", err
	}

	return t, nil
}

// GetUserIdFromToken validates a refresh token and returns its user id.
func GetUserIdFromToken(secret []byte, token string) (int64, error) {
	claims := &jwtCustomClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	})
	if err != nil {
		return -1, err
	}
	if !parsed.Valid || !claims.IsRefresh {
		return -1, errors.New("not a valid refresh token")
	}
	return claims.ID, nil
}
