package domain

// Currency is an entry in the shared currency catalog. The three-letter
// code keys the catalog; documents and rates reference it by code.
type Currency struct {
	CurrencyCode string `json:"currencyCode"` // ISO 4217 code, primary key
	Symbol       string `json:"symbol"`
	Name         string `json:"name"`
	AuditFields
}
