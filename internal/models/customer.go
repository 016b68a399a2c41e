// internal/models/customer.go
package models

// CustomerRecord is an immutable registry row keyed by phone number.
// Absence of a record is a valid business outcome (new customer), not an error.
type CustomerRecord struct {
	Phone          string `json:"phone" db:"phone"`
	Name           string `json:"name" db:"name"`
	CreditScore    int    `json:"creditScore" db:"credit_score"`
	ApprovedAmount int64  `json:"approvedAmount" db:"approved_amount"` // pre-approved limit
	Income         int64  `json:"income" db:"income"`
	Blacklisted    bool   `json:"blacklisted" db:"blacklisted"`
}
