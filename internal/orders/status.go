package orders

type Status string

const (
	StatusPending Status = "pending"
	// StatusCancelled keeps the spelling existing clients send and filter on.
	StatusCancelled Status = "cancle"
)
