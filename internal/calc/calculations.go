// Package calc holds the pure derivation rules for stored order and delivery
// fields. Services call these on every write touching an input so the stored
// columns never drift from their inputs.
package calc

// EstimatedAmount derives an order's amount from quantity and unit price.
func EstimatedAmount(quantity, unitPrice float64) float64 {
	return quantity * unitPrice
}

// DeliveredVolume derives a delivery's delivered volume from the linked
// order's quantity and the declared missing volume, clamped at zero so an
// over-declared shortage can never produce a negative delivery.
func DeliveredVolume(orderedQuantity, missingVolume float64) float64 {
	v := orderedQuantity - missingVolume
	if v < 0 {
		return 0
	}
	return v
}
