package domain

import "fmt"

// TransitionPolicy decides whether an operator may move an order from its
// current statuses to the requested ones. It is configured, not implied:
// the permissive policy mirrors how the dashboard has always behaved.
type TransitionPolicy interface {
	Name() string
	Check(current Order, update StatusUpdate) error
}

const (
	PolicyPermissive  = "permissive"
	PolicyForwardOnly = "forward_only"
)

func NewTransitionPolicy(name string) (TransitionPolicy, error) {
	switch name {
	case "", PolicyPermissive:
		return PermissivePolicy{}, nil
	case PolicyForwardOnly:
		return ForwardOnlyPolicy{}, nil
	}
	return nil, fmt.Errorf("unknown transition policy %q", name)
}

type PermissivePolicy struct{}

func (PermissivePolicy) Name() string { return PolicyPermissive }

func (PermissivePolicy) Check(Order, StatusUpdate) error { return nil }

// ForwardOnlyPolicy allows the fulfilment axis to advance one step at a
// time or to be cancelled before delivery, and never lets a paid order
// fall back to another payment state.
type ForwardOnlyPolicy struct{}

var fulfilmentRank = map[OrderStatus]int{
	OrderStatusReceived:  0,
	OrderStatusPreparing: 1,
	OrderStatusOnTheWay:  2,
	OrderStatusDelivered: 3,
}

func (ForwardOnlyPolicy) Name() string { return PolicyForwardOnly }

func (ForwardOnlyPolicy) Check(current Order, update StatusUpdate) error {
	if update.Status != nil && *update.Status != current.Status {
		if err := checkFulfilment(current.Status, *update.Status); err != nil {
			return err
		}
	}
	if update.PaymentStatus != nil && current.PaymentStatus == PaymentStatusPaid && *update.PaymentStatus != PaymentStatusPaid {
		return &TransitionError{Axis: "paymentStatus", From: string(current.PaymentStatus), To: string(*update.PaymentStatus)}
	}
	return nil
}

func checkFulfilment(from, to OrderStatus) error {
	if from == OrderStatusCancelled || from == OrderStatusDelivered {
		return &TransitionError{Axis: "status", From: string(from), To: string(to)}
	}
	if to == OrderStatusCancelled {
		return nil
	}
	if fulfilmentRank[to] != fulfilmentRank[from]+1 {
		return &TransitionError{Axis: "status", From: string(from), To: string(to)}
	}
	return nil
}

type TransitionError struct {
	Axis string
	From string
	To   string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s transition %s -> %s not allowed", e.Axis, e.From, e.To)
}
