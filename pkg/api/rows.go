package api

// Имена таблиц REST API, по одной на синхронизируемую сущность
const (
	TableTenants          = "tenants"
	TableHousings         = "housings"
	TableLeases           = "leases"
	TableKeys             = "keys"
	TableIndexationEvents = "indexation_events"
)

// Tables lists every table the rows API serves, in dependency order.
var Tables = []string{
	TableTenants,
	TableHousings,
	TableLeases,
	TableKeys,
	TableIndexationEvents,
}

// IsKnownTable reports whether name is served by the rows API.
func IsKnownTable(name string) bool {
	for _, t := range Tables {
		if t == name {
			return true
		}
	}
	return false
}

// Row is a wire row of any table.
type Row interface {
	GetRemoteID() string
	GetUpdatedAt() string
}

// RowMeta holds the columns every table shares.
type RowMeta struct {
	RemoteID  string `json:"remote_id"`
	UserID    string `json:"user_id,omitempty"`
	UpdatedAt string `json:"updated_at,omitempty"` // проставляется сервером
}

// GetRemoteID returns the row's remote id.
func (m RowMeta) GetRemoteID() string { return m.RemoteID }

// GetUpdatedAt returns the raw server timestamp.
func (m RowMeta) GetUpdatedAt() string { return m.UpdatedAt }

// RemoteIDRow is the projection returned by select=remote_id.
type RemoteIDRow struct {
	RemoteID string `json:"remote_id"`
}

// TenantRow is a tenant on the wire.
type TenantRow struct {
	RowMeta
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

// HousingRow is a housing on the wire.
type HousingRow struct {
	RowMeta
	Label        string `json:"label"`
	Address      string `json:"address"`
	City         string `json:"city,omitempty"`
	PostalCode   string `json:"postal_code,omitempty"`
	RentCents    int64  `json:"rent_cents"`
	ChargesCents int64  `json:"charges_cents"`
}

// LeaseRow is a lease on the wire. Parents are referenced by remote id.
type LeaseRow struct {
	RowMeta
	HousingRemoteID string `json:"housing_remote_id"`
	TenantRemoteID  string `json:"tenant_remote_id"`
	StartDate       string `json:"start_date"`
	EndDate         string `json:"end_date,omitempty"`
	ReferenceIndex  string `json:"reference_index,omitempty"`
	RentCents       int64  `json:"rent_cents"`
	DepositCents    int64  `json:"deposit_cents"`
	PaymentDay      int    `json:"payment_day"`
}

// KeyRow is a key on the wire.
type KeyRow struct {
	RowMeta
	HousingRemoteID string `json:"housing_remote_id"`
	Label           string `json:"label"`
	HandedOverTo    string `json:"handed_over_to,omitempty"`
	Quantity        int    `json:"quantity"`
}

// IndexationEventRow is an indexation event on the wire.
type IndexationEventRow struct {
	RowMeta
	LeaseRemoteID string  `json:"lease_remote_id"`
	EffectiveDate string  `json:"effective_date"`
	IndexValue    float64 `json:"index_value"`
	OldRentCents  int64   `json:"old_rent_cents"`
	NewRentCents  int64   `json:"new_rent_cents"`
}
