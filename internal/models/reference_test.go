package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePaymentReference(t *testing.T) {
	ref, err := ParsePaymentReference("ORD42")
	assert.NoError(t, err)
	assert.Equal(t, RefOrder, ref.Kind)
	assert.Equal(t, int64(42), ref.ID)

	ref, err = ParsePaymentReference("RES17")
	assert.NoError(t, err)
	assert.Equal(t, RefReservation, ref.Kind)
	assert.Equal(t, int64(17), ref.ID)

	ref, err = ParsePaymentReference("EBOOK9")
	assert.NoError(t, err)
	assert.Equal(t, RefEbook, ref.Kind)
	assert.Equal(t, int64(9), ref.ID)
}

func TestParsePaymentReferenceMalformed(t *testing.T) {
	malformed := []string{
		"",
		"ORD",
		"ORD-1",
		"ord42",
		"ORD42x",
		"xORD42",
		"BOOK9",
		"RES 17",
	}

	for _, token := range malformed {
		_, err := ParsePaymentReference(token)
		assert.Error(t, err, "token %q should not parse", token)
	}
}

func TestPaymentReferenceRoundTrip(t *testing.T) {
	assert.Equal(t, "ORD7", OrderReference(7).String())
	assert.Equal(t, "RES123", ReservationReference(123).String())
	assert.Equal(t, "EBOOK1", EbookReference(1).String())

	ref, err := ParsePaymentReference(ReservationReference(55).String())
	assert.NoError(t, err)
	assert.Equal(t, ReservationReference(55), ref)
}
