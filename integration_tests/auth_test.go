package integration_tests

import (
	"encoding/json"
	"log"
	"net/http"
	"testing"

	"github.com/muhasebehub/muhasebe.go/controllers"
	"github.com/muhasebehub/muhasebe.go/lib/responses"
	"github.com/muhasebehub/muhasebe.go/lib/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type UserAuthTestSuite struct {
	TestSuite
	Service   *service.LedgerService
	userLogin controllers.CreateUserResponseBody
}

func (suite *UserAuthTestSuite) SetupSuite() {
	svc, err := LedgerTestServiceInit("auth")
	if err != nil {
		log.Fatalf("Error initializing test service: %v", err)
	}
	users, _, err := createUsers(svc, 1, false)
	if err != nil {
		log.Fatalf("Error creating test users %v", err)
	}
	suite.Service = svc
	suite.echo = newTestEcho(svc)
	assert.Equal(suite.T(), 1, len(users))
	suite.userLogin = users[0]
}

func (suite *UserAuthTestSuite) TearDownSuite() {
	suite.Service.DB.Close()
}

func (suite *UserAuthTestSuite) TestAuth() {
	rec := suite.request(http.MethodPost, "/auth", &controllers.AuthRequestBody{
		Login:    suite.userLogin.Login,
		Password: suite.userLogin.Password,
	}, "")
	responseBody := &controllers.AuthResponseBody{}
	assert.Equal(suite.T(), http.StatusOK, rec.Code)
	assert.NoError(suite.T(), json.NewDecoder(rec.Body).Decode(responseBody))
	assert.NotEmpty(suite.T(), responseBody.AccessToken)
	assert.NotEmpty(suite.T(), responseBody.RefreshToken)

	// login again with only the refresh token
	rec = suite.request(http.MethodPost, "/auth", &controllers.AuthRequestBody{
		RefreshToken: responseBody.RefreshToken,
	}, "")
	refreshed := &controllers.AuthResponseBody{}
	assert.Equal(suite.T(), http.StatusOK, rec.Code)
	assert.NoError(suite.T(), json.NewDecoder(rec.Body).Decode(refreshed))
	assert.NotEmpty(suite.T(), refreshed.AccessToken)

	// refresh tokens do not open the api
	rec = suite.request(http.MethodGet, "/accounts", nil, responseBody.RefreshToken)
	assert.Equal(suite.T(), http.StatusUnauthorized, rec.Code)

	rec = suite.request(http.MethodGet, "/accounts", nil, refreshed.AccessToken)
	assert.Equal(suite.T(), http.StatusOK, rec.Code)
}

func (suite *UserAuthTestSuite) TestAuthWrongPassword() {
	rec := suite.request(http.MethodPost, "/auth", &controllers.AuthRequestBody{
		Login:    suite.userLogin.Login,
		Password: "not the password",
	}, "")
	resp := suite.checkErrResponse(rec, http.StatusUnauthorized)
	assert.Equal(suite.T(), "bad auth", resp.Message)
}

func (suite *UserAuthTestSuite) TestMissingToken() {
	rec := suite.request(http.MethodGet, "/invoices", nil, "")
	assert.Equal(suite.T(), http.StatusUnauthorized, rec.Code)
}

func (suite *UserAuthTestSuite) TestAdminEndpointsNeedSuperuser() {
	_, tokens, err := createUsers(suite.Service, 1, false)
	assert.NoError(suite.T(), err)
	rec := suite.request(http.MethodGet, "/admin/deleted", nil, tokens[0])
	assert.Equal(suite.T(), http.StatusForbidden, rec.Code)

	_, tokens, err = createUsers(suite.Service, 1, true)
	assert.NoError(suite.T(), err)
	rec = suite.request(http.MethodGet, "/admin/deleted", nil, tokens[0])
	assert.Equal(suite.T(), http.StatusOK, rec.Code)
}

func (suite *UserAuthTestSuite) TestCreateUserGeneratesCredentials() {
	rec := suite.request(http.MethodPost, "/users", &controllers.CreateUserRequestBody{}, "")
	created := &controllers.CreateUserResponseBody{}
	assert.Equal(suite.T(), http.StatusOK, rec.Code)
	assert.NoError(suite.T(), json.NewDecoder(rec.Body).Decode(created))
	assert.Len(suite.T(), created.Login, 20)
	assert.Len(suite.T(), created.Password, 20)

	rec = suite.request(http.MethodPost, "/users", &controllers.CreateUserRequestBody{Login: created.Login}, "")
	resp := suite.checkErrResponse(rec, http.StatusBadRequest)
	assert.Equal(suite.T(), responses.LoginTakenError.Message, resp.Message)
}

func TestUserAuthTestSuite(t *testing.T) {
	suite.Run(t, new(UserAuthTestSuite))
}
