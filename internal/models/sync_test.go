package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseEntityKind(t *testing.T) {
	tests := []struct {
		in   string
		want EntityKind
		ok   bool
	}{
		{in: "tenant", want: KindTenant, ok: true},
		{in: "housings", want: KindHousing, ok: true},
		{in: "lease", want: KindLease, ok: true},
		{in: "keys", want: KindKey, ok: true},
		{in: "indexation_events", want: KindIndexationEvent, ok: true},
		{in: "indexation_event", want: KindIndexationEvent, ok: true},
		{in: "Lease", ok: false},
		{in: "", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseEntityKind(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAllKinds_ParentsFirst(t *testing.T) {
	kinds := AllKinds()
	pos := map[EntityKind]int{}
	for i, k := range kinds {
		pos[k] = i
	}

	assert.Len(t, kinds, 5)
	assert.Less(t, pos[KindTenant], pos[KindLease])
	assert.Less(t, pos[KindHousing], pos[KindLease])
	assert.Less(t, pos[KindHousing], pos[KindKey])
	assert.Less(t, pos[KindLease], pos[KindIndexationEvent])
}

func TestEntityKind_TableAndSyncKey(t *testing.T) {
	assert.Equal(t, "indexation_events", KindIndexationEvent.Table())
	assert.Equal(t, "keys", KindKey.SyncKey())
	assert.Equal(t, "custom", EntityKind("custom").Table())
}

func TestEntities_ShareMeta(t *testing.T) {
	entities := []Entity{&Tenant{}, &Housing{}, &Lease{}, &Key{}, &IndexationEvent{}}
	for i, e := range entities {
		e.Meta().RemoteID = "r"
		e.Meta().LocalID = int64(i + 1)
		assert.Equal(t, AllKinds()[i], e.Kind())
		assert.Equal(t, "r", e.Meta().RemoteID)
	}
}
