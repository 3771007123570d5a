package notifier

// Event types pushed over live channels.
const (
	EventNewOrder      = "new_order"
	EventOrderAssigned = "order_assigned"
	EventStatusUpdate  = "status_update"
	EventOrderApproved = "order_approved"
	EventOrderRejected = "order_rejected"
	EventLocation      = "location_update"
)

// Event is the JSON-shaped message delivered to live channels. Data carries
// the type-specific payload fields.
type Event struct {
	Type      string                 `json:"type"`
	OrderID   uint                   `json:"order_id,omitempty"`
	CourierID uint                   `json:"courier_id,omitempty"`
	Message   string                 `json:"message"`
	Data      map[string]interface{} `json:"data,omitempty"`
}
