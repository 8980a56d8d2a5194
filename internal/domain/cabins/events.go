package cabins

import "time"

type CabinCreated struct {
	CabinID CabinID   `json:"cabin_id"`
	Name    string    `json:"name"`
	At      time.Time `json:"occurred_at"`
}

func (e CabinCreated) EventName() string     { return "cabin.created" }
func (e CabinCreated) AggregateID() string   { return string(e.CabinID) }
func (e CabinCreated) OccurredAt() time.Time { return e.At }

type CabinUpdated struct {
	CabinID CabinID   `json:"cabin_id"`
	At      time.Time `json:"occurred_at"`
}

func (e CabinUpdated) EventName() string     { return "cabin.updated" }
func (e CabinUpdated) AggregateID() string   { return string(e.CabinID) }
func (e CabinUpdated) OccurredAt() time.Time { return e.At }

type CabinImageAttached struct {
	CabinID CabinID   `json:"cabin_id"`
	ImageID string    `json:"image_id"`
	URL     string    `json:"url"`
	At      time.Time `json:"occurred_at"`
}

func (e CabinImageAttached) EventName() string     { return "cabin.image_attached" }
func (e CabinImageAttached) AggregateID() string   { return string(e.CabinID) }
func (e CabinImageAttached) OccurredAt() time.Time { return e.At }

type CabinImageRemoved struct {
	CabinID CabinID   `json:"cabin_id"`
	ImageID string    `json:"image_id"`
	At      time.Time `json:"occurred_at"`
}

func (e CabinImageRemoved) EventName() string     { return "cabin.image_removed" }
func (e CabinImageRemoved) AggregateID() string   { return string(e.CabinID) }
func (e CabinImageRemoved) OccurredAt() time.Time { return e.At }
