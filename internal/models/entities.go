package models

// Tenant is a person renting a housing.
type Tenant struct {
	SyncMeta
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

// Kind implements Entity.
func (*Tenant) Kind() EntityKind { return KindTenant }

// Housing is a rentable property.
type Housing struct {
	SyncMeta
	Label        string `json:"label"`
	Address      string `json:"address"`
	City         string `json:"city,omitempty"`
	PostalCode   string `json:"postal_code,omitempty"`
	RentCents    int64  `json:"rent_cents"`
	ChargesCents int64  `json:"charges_cents"`
}

// Kind implements Entity.
func (*Housing) Kind() EntityKind { return KindHousing }

// Lease binds a tenant to a housing. Parents are linked by local id.
type Lease struct {
	SyncMeta
	StartDate      string `json:"start_date"`
	EndDate        string `json:"end_date,omitempty"`
	ReferenceIndex string `json:"reference_index,omitempty"` // например IRL 2024-T2
	HousingLocalID int64  `json:"housing_local_id"`
	TenantLocalID  int64  `json:"tenant_local_id"`
	RentCents      int64  `json:"rent_cents"`
	DepositCents   int64  `json:"deposit_cents"`
	PaymentDay     int    `json:"payment_day"`
}

// Kind implements Entity.
func (*Lease) Kind() EntityKind { return KindLease }

// Key is a physical key of a housing.
type Key struct {
	SyncMeta
	Label          string `json:"label"`
	HandedOverTo   string `json:"handed_over_to,omitempty"`
	HousingLocalID int64  `json:"housing_local_id"`
	Quantity       int    `json:"quantity"`
}

// Kind implements Entity.
func (*Key) Kind() EntityKind { return KindKey }

// IndexationEvent records a rent revision of a lease.
type IndexationEvent struct {
	SyncMeta
	EffectiveDate string  `json:"effective_date"`
	LeaseLocalID  int64   `json:"lease_local_id"`
	IndexValue    float64 `json:"index_value"`
	OldRentCents  int64   `json:"old_rent_cents"`
	NewRentCents  int64   `json:"new_rent_cents"`
}

// Kind implements Entity.
func (*IndexationEvent) Kind() EntityKind { return KindIndexationEvent }
