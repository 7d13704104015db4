package domain

import "time"

// CustomerIdentity is the platform's best-effort record of who paid.
// Two touches are considered the same customer when either email or phone
// matches. That inclusive OR can merge two people sharing a phone line;
// known weakness, kept as documented behavior.
type CustomerIdentity struct {
	ID        int64
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Address   string
	City      string
	State     string
	Pincode   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CustomerFields is an incoming snapshot from a checkout form or callback.
type CustomerFields struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Address   string
	City      string
	State     string
	Pincode   string
}

// IsEmpty reports whether the snapshot carries nothing to match on.
func (f CustomerFields) IsEmpty() bool {
	return f.Email == "" && f.Phone == ""
}

// Merge applies the non-empty incoming fields onto the stored identity.
// A populated field is never overwritten with an empty one. Returns true
// if anything changed.
func (c *CustomerIdentity) Merge(f CustomerFields) bool {
	changed := false
	apply := func(dst *string, src string) {
		if src != "" && *dst != src {
			*dst = src
			changed = true
		}
	}

	apply(&c.FirstName, f.FirstName)
	apply(&c.LastName, f.LastName)
	apply(&c.Email, f.Email)
	apply(&c.Phone, f.Phone)
	apply(&c.Address, f.Address)
	apply(&c.City, f.City)
	apply(&c.State, f.State)
	apply(&c.Pincode, f.Pincode)

	return changed
}

// NewCustomerIdentity creates an identity from an incoming snapshot.
func NewCustomerIdentity(f CustomerFields) *CustomerIdentity {
	now := time.Now().UTC()
	return &CustomerIdentity{
		FirstName: f.FirstName,
		LastName:  f.LastName,
		Email:     f.Email,
		Phone:     f.Phone,
		Address:   f.Address,
		City:      f.City,
		State:     f.State,
		Pincode:   f.Pincode,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
