package valueobject

// DeliveryStatus итог одной попытки доставки.
type DeliveryStatus string

const (
	// DeliverySent получатель подтвердил приём (2xx).
	DeliverySent DeliveryStatus = "sent"
	// DeliveryUnconfirmed запрос завершился без транспортной ошибки, но подтверждения нет.
	DeliveryUnconfirmed DeliveryStatus = "unconfirmed"
	// DeliveryFailed транспортная ошибка.
	DeliveryFailed DeliveryStatus = "failed"
)

// DeliveryOutcome = Sent | Unconfirmed | Failed(reason).
type DeliveryOutcome struct {
	Status DeliveryStatus
	Reason string
}

func Sent() DeliveryOutcome {
	return DeliveryOutcome{Status: DeliverySent}
}

func Unconfirmed(reason string) DeliveryOutcome {
	return DeliveryOutcome{Status: DeliveryUnconfirmed, Reason: reason}
}

func Failed(reason string) DeliveryOutcome {
	return DeliveryOutcome{Status: DeliveryFailed, Reason: reason}
}

func (o DeliveryOutcome) IsFailed() bool {
	return o.Status == DeliveryFailed
}

func (o DeliveryOutcome) String() string {
	if o.Reason == "" {
		return string(o.Status)
	}
	return string(o.Status) + ": " + o.Reason
}
