package models

import (
	"fmt"
	"regexp"
	"strconv"
)

// ReferenceKind tags which entity a payment-provider external reference
// points at.
type ReferenceKind string

const (
	RefOrder       ReferenceKind = "ORD"
	RefReservation ReferenceKind = "RES"
	RefEbook       ReferenceKind = "EBOOK"
)

// PaymentReference is the parsed form of the opaque external-reference token
// shared with the payment providers (`ORD42`, `RES17`, `EBOOK9`). It is the
// sole coupling contract between this system and the providers' reference
// field, parsed once at the boundary instead of prefix-poking strings in
// every handler.
type PaymentReference struct {
	Kind ReferenceKind
	ID   int64
}

var referencePattern = regexp.MustCompile(`^(RES|ORD|EBOOK)(\d+)$`)

// ParsePaymentReference parses an external-reference token. The token must
// match ^(RES|ORD|EBOOK)\d+$ exactly.
func ParsePaymentReference(token string) (PaymentReference, error) {
	m := referencePattern.FindStringSubmatch(token)
	if m == nil {
		return PaymentReference{}, fmt.Errorf("malformed payment reference %q", token)
	}

	id, err := strconv.ParseInt(m[2], 10, 64)
	if err != nil {
		return PaymentReference{}, fmt.Errorf("malformed payment reference %q: %w", token, err)
	}

	return PaymentReference{Kind: ReferenceKind(m[1]), ID: id}, nil
}

// OrderReference builds the token for an order.
func OrderReference(id int64) PaymentReference {
	return PaymentReference{Kind: RefOrder, ID: id}
}

// ReservationReference builds the token for a reservation.
func ReservationReference(id int64) PaymentReference {
	return PaymentReference{Kind: RefReservation, ID: id}
}

// EbookReference builds the token for an ebook purchase.
func EbookReference(id int64) PaymentReference {
	return PaymentReference{Kind: RefEbook, ID: id}
}

func (r PaymentReference) String() string {
	return string(r.Kind) + strconv.FormatInt(r.ID, 10)
}
