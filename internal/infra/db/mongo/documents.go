package mongo

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	domaincabins "cabinrent/internal/domain/cabins"
	domainreservations "cabinrent/internal/domain/reservations"
	"cabinrent/internal/domain/shared/civil"
	"cabinrent/internal/domain/shared/daterange"
	domainuser "cabinrent/internal/domain/user"
)

const (
	collectionCabins       = "cabins"
	collectionReservations = "reservations"
	collectionCabinLocks   = "cabin_locks"
	collectionUsers        = "users"
	collectionOutbox       = "app_outbox"
	collectionIdempotency  = "app_idempotency"
)

func bson2(keys ...string) bson.D {
	out := make(bson.D, 0, len(keys))
	for _, k := range keys {
		out = append(out, bson.E{Key: k, Value: 1})
	}
	return out
}

// isWriteConflict reports a transaction aborted by a concurrent writer.
func isWriteConflict(err error) bool {
	var se mongo.ServerError
	if errors.As(err, &se) {
		return se.HasErrorLabel("TransientTransactionError") || se.HasErrorCode(112)
	}
	return false
}

type imageDocument struct {
	ID          string `bson:"id"`
	URL         string `bson:"url"`
	ContentType string `bson:"content_type"`
	Position    int    `bson:"position"`
}

type cabinDocument struct {
	ID          string          `bson:"_id"`
	Name        string          `bson:"name"`
	Description string          `bson:"description"`
	Capacity    int             `bson:"capacity"`
	Bedrooms    int             `bson:"bedrooms"`
	Amenities   []string        `bson:"amenities"`
	Images      []imageDocument `bson:"images"`
	CreatedAt   time.Time       `bson:"created_at"`
	UpdatedAt   time.Time       `bson:"updated_at"`
	Version     int64           `bson:"version"`
}

func newCabinDocument(c *domaincabins.Cabin) cabinDocument {
	images := make([]imageDocument, 0, len(c.Images))
	for _, img := range c.Images {
		images = append(images, imageDocument{ID: img.ID, URL: img.URL, ContentType: img.ContentType, Position: img.Position})
	}
	return cabinDocument{
		ID:          string(c.ID),
		Name:        c.Name,
		Description: c.Description,
		Capacity:    c.Capacity,
		Bedrooms:    c.Bedrooms,
		Amenities:   c.Amenities,
		Images:      images,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
		Version:     c.Version,
	}
}

func (d cabinDocument) toAggregate() *domaincabins.Cabin {
	images := make([]domaincabins.ImageRef, 0, len(d.Images))
	for _, img := range d.Images {
		images = append(images, domaincabins.ImageRef{ID: img.ID, URL: img.URL, ContentType: img.ContentType, Position: img.Position})
	}
	return &domaincabins.Cabin{
		ID:          domaincabins.CabinID(d.ID),
		Name:        d.Name,
		Description: d.Description,
		Capacity:    d.Capacity,
		Bedrooms:    d.Bedrooms,
		Amenities:   d.Amenities,
		Images:      images,
		CreatedAt:   d.CreatedAt.UTC(),
		UpdatedAt:   d.UpdatedAt.UTC(),
		Version:     d.Version,
	}
}

// Civil dates are stored as YYYY-MM-DD strings, which order the same way
// lexically and chronologically.
type reservationDocument struct {
	ID           string    `bson:"_id"`
	CabinID      string    `bson:"cabin_id"`
	CheckIn      string    `bson:"check_in"`
	CheckOut     string    `bson:"check_out"`
	Status       string    `bson:"status"`
	TotalPrice   int64     `bson:"total_price"`
	GuestName    string    `bson:"guest_name"`
	GuestEmail   string    `bson:"guest_email"`
	GuestPhone   string    `bson:"guest_phone"`
	Notes        string    `bson:"notes"`
	Guests       int       `bson:"guests"`
	CancelReason string    `bson:"cancel_reason,omitempty"`
	CreatedAt    time.Time `bson:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at"`
	Version      int64     `bson:"version"`
}

func newReservationDocument(r *domainreservations.Reservation) reservationDocument {
	return reservationDocument{
		ID:           string(r.ID),
		CabinID:      string(r.CabinID),
		CheckIn:      r.Range.CheckIn.String(),
		CheckOut:     r.Range.CheckOut.String(),
		Status:       string(r.Status),
		TotalPrice:   r.TotalPrice,
		GuestName:    r.Guest.Name,
		GuestEmail:   r.Guest.Email,
		GuestPhone:   r.Guest.Phone,
		Notes:        r.Guest.Notes,
		Guests:       r.Guests,
		CancelReason: r.CancelReason,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
		Version:      r.Version,
	}
}

func (d reservationDocument) toAggregate() (*domainreservations.Reservation, error) {
	in, err := civil.Parse(d.CheckIn)
	if err != nil {
		return nil, err
	}
	out, err := civil.Parse(d.CheckOut)
	if err != nil {
		return nil, err
	}
	return &domainreservations.Reservation{
		ID:           domainreservations.ReservationID(d.ID),
		CabinID:      domaincabins.CabinID(d.CabinID),
		Range:        daterange.DateRange{CheckIn: in, CheckOut: out},
		Status:       domainreservations.Status(d.Status),
		TotalPrice:   d.TotalPrice,
		Guest:        domainreservations.Guest{Name: d.GuestName, Email: d.GuestEmail, Phone: d.GuestPhone, Notes: d.Notes},
		Guests:       d.Guests,
		CancelReason: d.CancelReason,
		CreatedAt:    d.CreatedAt.UTC(),
		UpdatedAt:    d.UpdatedAt.UTC(),
		Version:      d.Version,
	}, nil
}

type userDocument struct {
	ID           string    `bson:"_id"`
	Email        string    `bson:"email"`
	Name         string    `bson:"name"`
	PasswordHash string    `bson:"password_hash"`
	Roles        []string  `bson:"roles"`
	CreatedAt    time.Time `bson:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at"`
}

func newUserDocument(u *domainuser.User) userDocument {
	roles := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		roles = append(roles, string(r))
	}
	return userDocument{
		ID:           string(u.ID),
		Email:        u.Email,
		Name:         u.Name,
		PasswordHash: u.PasswordHash,
		Roles:        roles,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func (d userDocument) toAggregate() *domainuser.User {
	roles := make([]domainuser.Role, 0, len(d.Roles))
	for _, r := range d.Roles {
		roles = append(roles, domainuser.Role(r))
	}
	return &domainuser.User{
		ID:           domainuser.ID(d.ID),
		Email:        d.Email,
		Name:         d.Name,
		PasswordHash: d.PasswordHash,
		Roles:        roles,
		CreatedAt:    d.CreatedAt.UTC(),
		UpdatedAt:    d.UpdatedAt.UTC(),
	}
}
