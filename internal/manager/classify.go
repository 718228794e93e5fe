package manager

import "strings"

// Messages returned in a failed SendResult
const (
	ErrMsgInvalidRecipient    = "Invalid recipient address"
	ErrMsgInvalidAmount       = "Invalid amount"
	ErrMsgInsufficientBalance = "Insufficient EDU balance"
	ErrMsgInsufficientFunds   = "Insufficient funds to complete this transaction"
	ErrMsgSequencing          = "Transaction sequencing error. Please try again"
	ErrMsgRejected            = "Transaction rejected by the network"
	ErrMsgNetwork             = "Network connection error. Please check your internet connection"
	ErrMsgTimeout             = "Network timeout. The eduTestnet might be congested"
	ErrMsgUnknown             = "Unknown error occurred"

	// MsgConfirmationTimeout comes with a successful result
	MsgConfirmationTimeout = "Transaction sent but confirmation timed out. It may still go through. Check explorer for status."
)

// classes are checked in order, the first match wins
var errorClasses = []struct {
	needles []string
	message string
}{
	{[]string{"insufficient funds", "not enough funds"}, ErrMsgInsufficientFunds},
	{[]string{"nonce", "already known"}, ErrMsgSequencing},
	{[]string{"rejected", "denied"}, ErrMsgRejected},
	{[]string{"network", "connect"}, ErrMsgNetwork},
	{[]string{"timeout", "timed out"}, ErrMsgTimeout},
}

// ClassifyError maps a provider or signing error to a user facing message.
// Unmatched errors keep their own text.
func ClassifyError(err error) string {
	if err == nil || err.Error() == "" {
		return ErrMsgUnknown
	}
	msg := strings.ToLower(err.Error())
	for _, class := range errorClasses {
		for _, needle := range class.needles {
			if strings.Contains(msg, needle) {
				return class.message
			}
		}
	}
	return err.Error()
}
