package domain

import "errors"

// Domain errors
var (
	ErrInventoryNotFound     = errors.New("inventory item not found")
	ErrVehicleNotFound       = errors.New("vehicle not found")
	ErrIssuanceNotFound      = errors.New("issuance not found")
	ErrSaleNotFound          = errors.New("sale not found")
	ErrLayerNotFound         = errors.New("packaging layer not found")
	ErrItemIndexOutOfRange   = errors.New("item index out of range")
	ErrLayerIndexOutOfRange  = errors.New("layer index out of range")
	ErrInvalidPackaging      = errors.New("invalid packaging structure")
	ErrInvalidVehicle        = errors.New("vehicle name and registration number are required")
	ErrVehicleInactive       = errors.New("vehicle is not active")
	ErrDuplicateProduct      = errors.New("product with this name already exists")
	ErrInvalidStatus         = errors.New("invalid issuance status")
	ErrInvalidQuantity       = errors.New("quantity must be greater than zero")
	ErrInvalidConversion     = errors.New("conversion requires a larger unit and a smaller unit")
	ErrInsufficientStock     = errors.New("insufficient stock")
	ErrLayerAlreadyCollected = errors.New("layer already collected")
	ErrLayerNotCollected     = errors.New("layer not collected")
	ErrItemDeleted           = errors.New("inventory item is deleted")
	ErrItemNotDeleted        = errors.New("inventory item is not deleted")
	ErrEmptyIssuance         = errors.New("issuance requires at least one item")
	ErrVersionConflict       = errors.New("concurrent modification detected")
)
