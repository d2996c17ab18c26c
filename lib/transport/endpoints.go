package transport

import (
	cache "github.com/SporkHubr/echo-http-cache"
	"github.com/labstack/echo/v4"
	"github.com/muhasebehub/muhasebe.go/controllers"
	"github.com/muhasebehub/muhasebe.go/lib/service"
	"github.com/muhasebehub/muhasebe.go/lib/tokens"
)

// RegisterEndpoints mounts the ledger API. secured requires a valid access
// token, admin additionally requires a superuser.
func RegisterEndpoints(svc *service.LedgerService, e *echo.Echo, secured *echo.Group, admin *echo.Group, strictRateLimitMiddleware echo.MiddlewareFunc, adminTokenMw echo.MiddlewareFunc, logMw echo.MiddlewareFunc, cacheClient *cache.Client) {
	e.POST("/auth", controllers.NewAuthController(svc).Auth, strictRateLimitMiddleware, logMw)
	e.GET("/health", controllers.NewHealthController(svc).Check)

	userCtrl := controllers.NewUserController(svc)
	e.POST("/users", userCtrl.CreateUser, strictRateLimitMiddleware, adminTokenMw, logMw)
	if svc.Config.AdminToken != "" {
		e.PUT("/admin/users", userCtrl.UpdateUser, strictRateLimitMiddleware, adminTokenMw, logMw)
	}

	currencyCtrl := controllers.NewCurrencyController(svc)
	currencies := []echo.MiddlewareFunc{}
	if cacheClient != nil {
		currencies = append(currencies, cacheClient.Middleware())
	}
	secured.GET("/currencies", currencyCtrl.ListCurrencies, currencies...)
	admin.POST("/currencies", currencyCtrl.CreateCurrency)

	accountCtrl := controllers.NewAccountController(svc)
	secured.GET("/accounts", accountCtrl.ListAccounts)
	secured.POST("/accounts", accountCtrl.CreateAccount)
	secured.GET("/accounts/:id", accountCtrl.GetAccount)
	secured.PUT("/accounts/:id", accountCtrl.UpdateAccount)
	secured.DELETE("/accounts/:id", accountCtrl.DeleteAccount)
	secured.GET("/accounts/:id/balance", accountCtrl.Balance)
	secured.GET("/accounts/:id/balances", accountCtrl.Balances)
	secured.GET("/accounts/:id/statement.xlsx", accountCtrl.Statement, strictRateLimitMiddleware)

	groupCtrl := controllers.NewGroupController(svc)
	secured.GET("/groups", groupCtrl.ListGroups)
	secured.POST("/groups", groupCtrl.CreateGroup)
	secured.DELETE("/groups/:id", groupCtrl.DeleteGroup)

	transactionCtrl := controllers.NewTransactionController(svc)
	secured.GET("/transactions", transactionCtrl.ListTransactions)
	secured.POST("/transactions", transactionCtrl.CreateTransaction)
	secured.GET("/transactions/:id", transactionCtrl.GetTransaction)
	secured.PUT("/transactions/:id", transactionCtrl.UpdateTransaction)
	secured.DELETE("/transactions/:id", transactionCtrl.DeleteTransaction)
	secured.POST("/transfers", controllers.NewTransferController(svc).CreateTransfer)

	itemCtrl := controllers.NewItemController(svc)
	secured.GET("/items", itemCtrl.ListItems)
	secured.POST("/items", itemCtrl.CreateItem)
	secured.GET("/items/:id", itemCtrl.GetItem)
	secured.PUT("/items/:id", itemCtrl.UpdateItem)
	secured.DELETE("/items/:id", itemCtrl.DeleteItem)
	secured.PUT("/items/:id/group-prices", itemCtrl.SetGroupPrices)
	secured.POST("/items/:id/options", itemCtrl.AddOption)
	secured.POST("/items/options/:id/values", itemCtrl.AddOptionValue)
	secured.GET("/items/:id/quote", itemCtrl.Quote)

	invoiceCtrl := controllers.NewInvoiceController(svc)
	secured.GET("/invoices", invoiceCtrl.ListInvoices)
	secured.POST("/invoices", invoiceCtrl.CreateInvoice)
	secured.POST("/invoices/preview", invoiceCtrl.PreviewInvoice)
	secured.GET("/invoices/:id", invoiceCtrl.GetInvoice)
	secured.PUT("/invoices/:id", invoiceCtrl.UpdateInvoice)
	secured.DELETE("/invoices/:id", invoiceCtrl.DeleteInvoice)
	secured.POST("/invoices/:id/paid", invoiceCtrl.SetPaid)
	secured.POST("/invoices/:id/void", invoiceCtrl.VoidInvoice)
	secured.GET("/invoices/:id/qr.png", invoiceCtrl.QRCode)

	deletedCtrl := controllers.NewDeletedController(svc)
	admin.GET("/admin/deleted", deletedCtrl.ListDeleted)
	admin.POST("/admin/deleted/:kind/:id/restore", deletedCtrl.Restore)
	admin.DELETE("/admin/deleted/:kind/:id", deletedCtrl.Purge)
	admin.DELETE("/admin/deleted/:kind", deletedCtrl.PurgeAll, strictRateLimitMiddleware)
}

// SecuredGroups builds the groups RegisterEndpoints expects.
func SecuredGroups(e *echo.Echo, jwtSecret []byte, logMw echo.MiddlewareFunc) (secured *echo.Group, admin *echo.Group) {
	secured = e.Group("", tokens.Middleware(jwtSecret), logMw)
	admin = e.Group("", tokens.Middleware(jwtSecret), tokens.SuperuserMiddleware(), logMw)
	return secured, admin
}
