// Package errors provides structured error handling with i18n support.
package errors

import "net/http"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Request errors
	CodeInvalidRequest Code = "INVALID_REQUEST"
	CodeUnauthorized   Code = "UNAUTHORIZED"
	CodeNotFound       Code = "NOT_FOUND"

	// Catalog errors
	CodeProductNotFound    Code = "PRODUCT_NOT_FOUND"
	CodeProductInvalidSize Code = "PRODUCT_INVALID_SIZE"

	// Cart errors
	CodeCartEmpty           Code = "CART_EMPTY"
	CodeCartInvalidQuantity Code = "CART_INVALID_QUANTITY"
	CodeCartItemNotFound    Code = "CART_ITEM_NOT_FOUND"

	// Shipping errors
	CodeShippingUnknownPrefecture Code = "SHIPPING_UNKNOWN_PREFECTURE"
	CodeShippingUnknownCarrier    Code = "SHIPPING_UNKNOWN_CARRIER"
	CodeShippingNoRate            Code = "SHIPPING_NO_RATE"
	CodeShippingTooLarge          Code = "SHIPPING_TOO_LARGE"

	// Coupon errors
	CodeCouponInvalid     Code = "COUPON_INVALID"
	CodeCouponNotFound    Code = "COUPON_NOT_FOUND"
	CodeCouponInactive    Code = "COUPON_INACTIVE"
	CodeCouponExpired     Code = "COUPON_EXPIRED"
	CodeCouponExhausted   Code = "COUPON_EXHAUSTED"
	CodeCouponMinPurchase Code = "COUPON_MIN_PURCHASE"
	CodeCouponDuplicate   Code = "COUPON_DUPLICATE"

	// Order errors
	CodeOrderInvalid       Code = "ORDER_INVALID"
	CodeOrderNotFound      Code = "ORDER_NOT_FOUND"
	CodeOrderInvalidStatus Code = "ORDER_INVALID_STATUS"

	// Review errors
	CodeReviewInvalidRating Code = "REVIEW_INVALID_RATING"
	CodeReviewInvalid       Code = "REVIEW_INVALID"

	// Wishlist errors
	CodeWishlistInvalid Code = "WISHLIST_INVALID"

	// Postal lookup errors
	CodePostalInvalidCode  Code = "POSTAL_INVALID_CODE"
	CodePostalNotFound     Code = "POSTAL_NOT_FOUND"
	CodePostalLookupFailed Code = "POSTAL_LOOKUP_FAILED"

	// Payment errors
	CodePaymentInvalid Code = "PAYMENT_INVALID"
	CodePaymentFailed  Code = "PAYMENT_FAILED"

	// Messaging errors
	CodeContactInvalidPhone Code = "CONTACT_INVALID_PHONE"
)

// HTTPStatus maps domain codes to HTTP status codes.
func (c Code) HTTPStatus() int {
	switch c {
	// 400 - validation failures, bad input
	case CodeInvalidRequest,
		CodeProductInvalidSize,
		CodeCartInvalidQuantity,
		CodeShippingUnknownPrefecture,
		CodeShippingUnknownCarrier,
		CodeCouponInvalid,
		CodeOrderInvalid,
		CodeOrderInvalidStatus,
		CodeReviewInvalidRating,
		CodeReviewInvalid,
		CodeWishlistInvalid,
		CodePostalInvalidCode,
		CodePaymentInvalid,
		CodeContactInvalidPhone:
		return http.StatusBadRequest

	case CodeUnauthorized:
		return http.StatusUnauthorized

	// 404 - resource doesn't exist
	case CodeNotFound,
		CodeProductNotFound,
		CodeCartItemNotFound,
		CodeCouponNotFound,
		CodeOrderNotFound,
		CodePostalNotFound:
		return http.StatusNotFound

	// 409 - unique resource constraint
	case CodeCouponDuplicate:
		return http.StatusConflict

	// 422 - state doesn't allow operation
	case CodeCartEmpty,
		CodeShippingNoRate,
		CodeShippingTooLarge,
		CodeCouponInactive,
		CodeCouponExpired,
		CodeCouponExhausted,
		CodeCouponMinPurchase:
		return http.StatusUnprocessableEntity

	// 502 - upstream integration failed
	case CodePostalLookupFailed,
		CodePaymentFailed:
		return http.StatusBadGateway

	default:
		return http.StatusInternalServerError
	}
}
