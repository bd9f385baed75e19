package sync

import (
	"context"
	"errors"
	"fmt"

	"github.com/iudanet/rentkeeper/internal/client/storage"
	"github.com/iudanet/rentkeeper/internal/models"
	"github.com/iudanet/rentkeeper/pkg/api"
)

// Binding maps one entity kind between its local and wire shapes.
// Parent links are translated here: local ids locally, remote ids on the wire.
type Binding[E models.Entity, R api.Row] interface {
	Kind() models.EntityKind

	// ToRow returns an error wrapping ErrParentUnresolved if a parent has no local row.
	ToRow(ctx context.Context, ownerID string, entity E) (R, error)

	// FromRow returns *MissingParentError if a parent is not stored locally yet.
	FromRow(ctx context.Context, row R) (E, error)
}

func rowMeta(ownerID string, m *models.SyncMeta) api.RowMeta {
	return api.RowMeta{RemoteID: m.RemoteID, UserID: ownerID}
}

// metaFromRow leaves ServerUpdatedAt nil when the timestamp does not parse.
func metaFromRow(row api.RowMeta) models.SyncMeta {
	meta := models.SyncMeta{RemoteID: row.RemoteID}
	if ms, err := api.ParseTimestamp(row.UpdatedAt); err == nil {
		meta.ServerUpdatedAt = &ms
	}
	return meta
}

func parentRemoteID[P models.Entity](ctx context.Context, parents storage.EntityStorage[P], field string, localID int64) (string, error) {
	parent, err := parents.GetByLocalID(ctx, localID)
	if errors.Is(err, storage.ErrEntityNotFound) {
		return "", fmt.Errorf("%s local id %d: %w", field, localID, ErrParentUnresolved)
	}
	if err != nil {
		return "", fmt.Errorf("failed to load parent for %s: %w", field, err)
	}
	return parent.Meta().RemoteID, nil
}

// parentLocalID appends to missing instead of failing when the parent is not local.
func parentLocalID[P models.Entity](ctx context.Context, parents storage.EntityStorage[P], kind models.EntityKind, field, remoteID string, missing *[]MissingRef) (int64, error) {
	if remoteID != "" {
		parent, err := parents.GetByRemoteID(ctx, remoteID)
		if err == nil {
			return parent.Meta().LocalID, nil
		}
		if !errors.Is(err, storage.ErrEntityNotFound) {
			return 0, fmt.Errorf("failed to resolve %s: %w", field, err)
		}
	}
	*missing = append(*missing, MissingRef{Field: field, Parent: kind, RemoteID: remoteID})
	return 0, nil
}

// TenantBinding maps tenants. Tenants have no parents.
type TenantBinding struct{}

func (TenantBinding) Kind() models.EntityKind { return models.KindTenant }

func (TenantBinding) ToRow(_ context.Context, ownerID string, t *models.Tenant) (api.TenantRow, error) {
	return api.TenantRow{
		RowMeta:   rowMeta(ownerID, &t.SyncMeta),
		FirstName: t.FirstName,
		LastName:  t.LastName,
		Email:     t.Email,
		Phone:     t.Phone,
	}, nil
}

func (TenantBinding) FromRow(_ context.Context, row api.TenantRow) (*models.Tenant, error) {
	return &models.Tenant{
		SyncMeta:  metaFromRow(row.RowMeta),
		FirstName: row.FirstName,
		LastName:  row.LastName,
		Email:     row.Email,
		Phone:     row.Phone,
	}, nil
}

// HousingBinding maps housings. Housings have no parents.
type HousingBinding struct{}

func (HousingBinding) Kind() models.EntityKind { return models.KindHousing }

func (HousingBinding) ToRow(_ context.Context, ownerID string, h *models.Housing) (api.HousingRow, error) {
	return api.HousingRow{
		RowMeta:      rowMeta(ownerID, &h.SyncMeta),
		Label:        h.Label,
		Address:      h.Address,
		City:         h.City,
		PostalCode:   h.PostalCode,
		RentCents:    h.RentCents,
		ChargesCents: h.ChargesCents,
	}, nil
}

func (HousingBinding) FromRow(_ context.Context, row api.HousingRow) (*models.Housing, error) {
	return &models.Housing{
		SyncMeta:     metaFromRow(row.RowMeta),
		Label:        row.Label,
		Address:      row.Address,
		City:         row.City,
		PostalCode:   row.PostalCode,
		RentCents:    row.RentCents,
		ChargesCents: row.ChargesCents,
	}, nil
}

// LeaseBinding maps leases onto their housing and tenant.
type LeaseBinding struct {
	Housings storage.EntityStorage[*models.Housing]
	Tenants  storage.EntityStorage[*models.Tenant]
}

func (LeaseBinding) Kind() models.EntityKind { return models.KindLease }

func (b LeaseBinding) ToRow(ctx context.Context, ownerID string, l *models.Lease) (api.LeaseRow, error) {
	housingID, err := parentRemoteID(ctx, b.Housings, "housing_remote_id", l.HousingLocalID)
	if err != nil {
		return api.LeaseRow{}, err
	}
	tenantID, err := parentRemoteID(ctx, b.Tenants, "tenant_remote_id", l.TenantLocalID)
	if err != nil {
		return api.LeaseRow{}, err
	}

	return api.LeaseRow{
		RowMeta:         rowMeta(ownerID, &l.SyncMeta),
		HousingRemoteID: housingID,
		TenantRemoteID:  tenantID,
		StartDate:       l.StartDate,
		EndDate:         l.EndDate,
		ReferenceIndex:  l.ReferenceIndex,
		RentCents:       l.RentCents,
		DepositCents:    l.DepositCents,
		PaymentDay:      l.PaymentDay,
	}, nil
}

func (b LeaseBinding) FromRow(ctx context.Context, row api.LeaseRow) (*models.Lease, error) {
	var missing []MissingRef
	housingID, err := parentLocalID(ctx, b.Housings, models.KindHousing, "housing_remote_id", row.HousingRemoteID, &missing)
	if err != nil {
		return nil, err
	}
	tenantID, err := parentLocalID(ctx, b.Tenants, models.KindTenant, "tenant_remote_id", row.TenantRemoteID, &missing)
	if err != nil {
		return nil, err
	}
	if len(missing) > 0 {
		return nil, &MissingParentError{Entity: models.KindLease, RemoteID: row.RemoteID, Missing: missing}
	}

	return &models.Lease{
		SyncMeta:       metaFromRow(row.RowMeta),
		HousingLocalID: housingID,
		TenantLocalID:  tenantID,
		StartDate:      row.StartDate,
		EndDate:        row.EndDate,
		ReferenceIndex: row.ReferenceIndex,
		RentCents:      row.RentCents,
		DepositCents:   row.DepositCents,
		PaymentDay:     row.PaymentDay,
	}, nil
}

// KeyBinding maps keys onto their housing.
type KeyBinding struct {
	Housings storage.EntityStorage[*models.Housing]
}

func (KeyBinding) Kind() models.EntityKind { return models.KindKey }

func (b KeyBinding) ToRow(ctx context.Context, ownerID string, k *models.Key) (api.KeyRow, error) {
	housingID, err := parentRemoteID(ctx, b.Housings, "housing_remote_id", k.HousingLocalID)
	if err != nil {
		return api.KeyRow{}, err
	}

	return api.KeyRow{
		RowMeta:         rowMeta(ownerID, &k.SyncMeta),
		HousingRemoteID: housingID,
		Label:           k.Label,
		HandedOverTo:    k.HandedOverTo,
		Quantity:        k.Quantity,
	}, nil
}

func (b KeyBinding) FromRow(ctx context.Context, row api.KeyRow) (*models.Key, error) {
	var missing []MissingRef
	housingID, err := parentLocalID(ctx, b.Housings, models.KindHousing, "housing_remote_id", row.HousingRemoteID, &missing)
	if err != nil {
		return nil, err
	}
	if len(missing) > 0 {
		return nil, &MissingParentError{Entity: models.KindKey, RemoteID: row.RemoteID, Missing: missing}
	}

	return &models.Key{
		SyncMeta:       metaFromRow(row.RowMeta),
		HousingLocalID: housingID,
		Label:          row.Label,
		HandedOverTo:   row.HandedOverTo,
		Quantity:       row.Quantity,
	}, nil
}

// IndexationEventBinding maps indexation events onto their lease.
type IndexationEventBinding struct {
	Leases storage.EntityStorage[*models.Lease]
}

func (IndexationEventBinding) Kind() models.EntityKind { return models.KindIndexationEvent }

func (b IndexationEventBinding) ToRow(ctx context.Context, ownerID string, e *models.IndexationEvent) (api.IndexationEventRow, error) {
	leaseID, err := parentRemoteID(ctx, b.Leases, "lease_remote_id", e.LeaseLocalID)
	if err != nil {
		return api.IndexationEventRow{}, err
	}

	return api.IndexationEventRow{
		RowMeta:       rowMeta(ownerID, &e.SyncMeta),
		LeaseRemoteID: leaseID,
		EffectiveDate: e.EffectiveDate,
		IndexValue:    e.IndexValue,
		OldRentCents:  e.OldRentCents,
		NewRentCents:  e.NewRentCents,
	}, nil
}

func (b IndexationEventBinding) FromRow(ctx context.Context, row api.IndexationEventRow) (*models.IndexationEvent, error) {
	var missing []MissingRef
	leaseID, err := parentLocalID(ctx, b.Leases, models.KindLease, "lease_remote_id", row.LeaseRemoteID, &missing)
	if err != nil {
		return nil, err
	}
	if len(missing) > 0 {
		return nil, &MissingParentError{Entity: models.KindIndexationEvent, RemoteID: row.RemoteID, Missing: missing}
	}

	return &models.IndexationEvent{
		SyncMeta:      metaFromRow(row.RowMeta),
		LeaseLocalID:  leaseID,
		EffectiveDate: row.EffectiveDate,
		IndexValue:    row.IndexValue,
		OldRentCents:  row.OldRentCents,
		NewRentCents:  row.NewRentCents,
	}, nil
}
