package models

// PaymentMethod is how an order is paid
type PaymentMethod string

const (
	PaymentCashOnDelivery PaymentMethod = "cash_on_delivery"
	PaymentCreditCard     PaymentMethod = "credit_card"
	PaymentBankTransfer   PaymentMethod = "bank_transfer"
	PaymentMobile         PaymentMethod = "mobile_payment"
)

// PaymentStatus tracks settlement of an order
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentFailed   PaymentStatus = "failed"
	PaymentRefunded PaymentStatus = "refunded"
)

// IsValidPaymentStatus reports whether s is a known payment status
func IsValidPaymentStatus(s PaymentStatus) bool {
	switch s {
	case PaymentPending, PaymentPaid, PaymentFailed, PaymentRefunded:
		return true
	}
	return false
}
