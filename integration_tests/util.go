package integration_tests

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/muhasebehub/muhasebe.go/common"
	"github.com/muhasebehub/muhasebe.go/controllers"
	"github.com/muhasebehub/muhasebe.go/db"
	"github.com/muhasebehub/muhasebe.go/db/migrations"
	"github.com/muhasebehub/muhasebe.go/db/models"
	"github.com/muhasebehub/muhasebe.go/lib"
	"github.com/muhasebehub/muhasebe.go/lib/logging"
	"github.com/muhasebehub/muhasebe.go/lib/responses"
	"github.com/muhasebehub/muhasebe.go/lib/service"
	"github.com/muhasebehub/muhasebe.go/lib/tokens"
	"github.com/muhasebehub/muhasebe.go/lib/transport"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"github.com/uptrace/bun/migrate"
)

// LedgerTestServiceInit opens a private in-memory sqlite database named
// name, migrates it and wraps it in a service.
func LedgerTestServiceInit(name string) (svc *service.LedgerService, err error) {
	c := &service.Config{
		DatabaseUri:           fmt.Sprintf("sqlite://file:%s?mode=memory&cache=shared", name),
		JWTSecret:             []byte("SECRET"),
		JWTAccessTokenExpiry:  3600,
		JWTRefreshTokenExpiry: 3600,
		BaseCurrency:          common.DefaultBaseCurrency,
		CompanyName:           "Test Ticaret",
		AllowUserCreation:     true,
		LogLevel:              "error",
	}

	dbConn, err := db.Open(c)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	ctx := context.Background()
	migrator := migrate.NewMigrator(dbConn, migrations.Migrations)
	err = migrator.Init(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to init migrations: %w", err)
	}
	_, err = migrator.Migrate(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to migrate: %w", err)
	}

	svc = &service.LedgerService{
		Config: c,
		DB:     dbConn,
		Logger: logging.Logger(c.LogFilePath, c.LogLevel),
	}
	return svc, nil
}

// newTestEcho mounts every endpoint without rate limits or request logging.
func newTestEcho(svc *service.LedgerService) *echo.Echo {
	e := echo.New()
	e.HTTPErrorHandler = responses.HTTPErrorHandler
	e.Validator = &lib.CustomValidator{Validator: validator.New()}
	pass := func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	secured, admin := transport.SecuredGroups(e, svc.Config.JWTSecret, pass)
	transport.RegisterEndpoints(svc, e, secured, admin, pass, tokens.AdminTokenMiddleware(svc.Config.AdminToken), pass, nil)
	return e
}

func createUsers(svc *service.LedgerService, usersToCreate int, superuser bool) (logins []controllers.CreateUserResponseBody, accessTokens []string, err error) {
	logins = []controllers.CreateUserResponseBody{}
	accessTokens = []string{}
	for i := 0; i < usersToCreate; i++ {
		user, err := svc.CreateUser(context.Background(), "", "", superuser)
		if err != nil {
			return nil, nil, err
		}
		logins = append(logins, controllers.CreateUserResponseBody{
			ID:        user.ID,
			Login:     user.Login,
			Password:  user.Password,
			Superuser: user.Superuser,
		})
		token, _, err := svc.GenerateToken(context.Background(), user.Login, user.Password, "")
		if err != nil {
			return nil, nil, err
		}
		accessTokens = append(accessTokens, token)
	}
	return logins, accessTokens, nil
}

// TestSuite carries the request helpers every ledger suite shares.
type TestSuite struct {
	suite.Suite
	echo  *echo.Echo
	token string
}

func (suite *TestSuite) request(method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		var buf bytes.Buffer
		assert.NoError(suite.T(), json.NewEncoder(&buf).Encode(body))
		reader = &buf
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Add("Authorization", fmt.Sprintf("Bearer %s", token))
	}
	rec := httptest.NewRecorder()
	suite.echo.ServeHTTP(rec, req)
	return rec
}

// do sends an authenticated request, expects status and decodes the body
// into out when out is not nil.
func (suite *TestSuite) do(method, path string, body interface{}, status int, out interface{}) {
	rec := suite.request(method, path, body, suite.token)
	if !assert.Equal(suite.T(), status, rec.Code, rec.Body.String()) {
		return
	}
	if out != nil {
		assert.NoError(suite.T(), json.NewDecoder(rec.Body).Decode(out))
	}
}

func (suite *TestSuite) checkErrResponse(rec *httptest.ResponseRecorder, status int) *responses.ErrorResponse {
	errorResponse := &responses.ErrorResponse{}
	assert.Equal(suite.T(), status, rec.Code, rec.Body.String())
	assert.NoError(suite.T(), json.NewDecoder(rec.Body).Decode(errorResponse))
	return errorResponse
}

func (suite *TestSuite) createAccount(kind, name, currency string) *models.Account {
	account := &models.Account{}
	suite.do(http.MethodPost, "/accounts", &controllers.AccountRequestBody{
		Kind:     kind,
		Name:     name,
		Currency: currency,
	}, http.StatusOK, account)
	return account
}

func (suite *TestSuite) createTransaction(body *controllers.TransactionRequestBody) *models.Transaction {
	t := &models.Transaction{}
	suite.do(http.MethodPost, "/transactions", body, http.StatusOK, t)
	return t
}

func (suite *TestSuite) balance(accountID int64, currency string) decimal.Decimal {
	balance := &service.Balance{}
	path := fmt.Sprintf("/accounts/%d/balance", accountID)
	if currency != "" {
		path += "?currency=" + currency
	}
	suite.do(http.MethodGet, path, nil, http.StatusOK, balance)
	return balance.Balance
}

func (suite *TestSuite) createItem(name string, quantity, salePrice, vatRate int64) *models.Item {
	item := &models.Item{}
	suite.do(http.MethodPost, "/items", &controllers.ItemRequestBody{
		Name:      name,
		Unit:      "adet",
		Quantity:  decimal.NewFromInt(quantity),
		SalePrice: decimal.NewFromInt(salePrice),
		VATRate:   decimal.NewFromInt(vatRate),
	}, http.StatusOK, item)
	return item
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func nullDec(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(dec(s))
}
