package errors

import "errors"

var ErrUnauthorized = errors.New("user is not authorized")
var ErrForbidden = errors.New("operation is forbidden for user")

// ErrNotFound covers lookups for entities referenced by a webhook or
// redirect that no longer exist. Handlers log and ignore it rather than
// failing the HTTP response.
var ErrNotFound = errors.New("entity not found")

// ErrAlreadyProcessed marks an idempotent no-op: the payment confirmation
// was applied by an earlier webhook or redirect.
var ErrAlreadyProcessed = errors.New("payment already processed")

var ErrCapacityExceeded = errors.New("requested quantity exceeds remaining capacity")

var ErrCouponNotFound = errors.New("coupon code does not exist")
var ErrCouponInvalid = errors.New("coupon is inactive or outside its validity window")
var ErrCouponAlreadyUsed = errors.New("coupon was already used by this user")

var ErrCartEmpty = errors.New("cart has no items")
var ErrOutOfStock = errors.New("requested quantity exceeds stock")
var ErrAlreadyOwned = errors.New("ebook already purchased by this user")
var ErrEmailTaken = errors.New("email is already registered")

var ErrCycle = errors.New("category reparenting would create a cycle")
var ErrHasChildren = errors.New("category still has subcategories")
var ErrHasDependents = errors.New("category still has dependent entities")

// ErrGatewayUnavailable is a transient payment-provider failure after the
// timeout and retry budget is exhausted. Webhook handlers answer non-2xx on
// it so the provider retries.
var ErrGatewayUnavailable = errors.New("payment gateway unavailable")

// ErrAmountMismatch means the confirmed payment amount or currency does not
// match the local expected total. Permanent: the entity stays pending and the
// webhook is acknowledged.
var ErrAmountMismatch = errors.New("confirmed amount does not match expected total")
