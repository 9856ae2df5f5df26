package gateway

import "github.com/stretchr/testify/mock"

// MatchRequest creates a custom matcher for payment request arguments in mocks
func MatchRequest(matcher func(Request) bool) interface{} {
	return mock.MatchedBy(matcher)
}

// MatchPayment creates a custom matcher for payment record arguments in mocks
func MatchPayment(matcher func(Payment) bool) interface{} {
	return mock.MatchedBy(matcher)
}
