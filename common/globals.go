package common

const (
	AccountKindCustomer = "customer"
	AccountKindCash     = "cash"
	AccountKindBank     = "bank"
	AccountKindPOS      = "pos"

	ChannelCash     = "cash"
	ChannelBank     = "bank"
	ChannelPOS      = "pos"
	ChannelTransfer = "transfer"
	ChannelOther    = "other"

	InvoiceTypeSale     = "sale"
	InvoiceTypePurchase = "purchase"

	// invoice number prefixes, followed by the year and a 6 digit sequence
	InvoicePrefixSale     = "SF"
	InvoicePrefixPurchase = "AF"

	CustomerCodePrefix = "CK"
	ItemCodePrefix     = "STK"

	EntityAccount       = "accounts"
	EntityTransaction   = "transactions"
	EntityInvoice       = "invoices"
	EntityItem          = "items"
	EntityCustomerGroup = "groups"

	DefaultBaseCurrency = "TL"
)

// GroupCodePrefixes by group depth, deeper groups reuse the last prefix.
var GroupCodePrefixes = []string{"GR", "AR", "AG"}
