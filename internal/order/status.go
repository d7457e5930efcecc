package order

type Status string

const (
	StatusPending    Status = "pendiente"
	StatusAccepted   Status = "aceptado"
	StatusInProgress Status = "en_proceso"
	StatusShipped    Status = "enviado"
	StatusDelivered  Status = "entregado"
	StatusCancelled  Status = "cancelado"
)

// lifecycle is the forward path an order moves along.
var lifecycle = []Status{
	StatusPending,
	StatusAccepted,
	StatusInProgress,
	StatusShipped,
	StatusDelivered,
}

func (s Status) step() int {
	for i, st := range lifecycle {
		if st == s {
			return i
		}
	}
	return -1
}

func (s Status) Valid() bool {
	return s == StatusCancelled || s.step() >= 0
}

func (s Status) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// CanTransition reports whether an order in from may move to to. Orders move
// forward along the lifecycle, possibly skipping steps, and may be cancelled
// until they reach a terminal state. Same-status updates are allowed as no-ops.
func CanTransition(from, to Status) bool {
	if !from.Valid() || !to.Valid() {
		return false
	}
	if from == to {
		return true
	}
	if from.Terminal() {
		return false
	}
	if to == StatusCancelled {
		return true
	}
	return to.step() > from.step()
}

// NextStatuses lists the statuses reachable from s, excluding s itself.
func NextStatuses(s Status) []Status {
	out := []Status{}
	for _, to := range append(append([]Status{}, lifecycle...), StatusCancelled) {
		if to != s && CanTransition(s, to) {
			out = append(out, to)
		}
	}
	return out
}
