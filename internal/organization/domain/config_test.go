package domain

import (
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitialConfigHunt(t *testing.T) {
	cfg := InitialConfig(TypeHunt)

	assert.True(t, cfg.ShowCalendarWidget)
	assert.False(t, cfg.ShowBoard)
	assert.False(t, cfg.ShowContactWidget)
	assert.True(t, cfg.ShowMembershipForm)
	assert.True(t, cfg.ShowSnowStatus)
	assert.True(t, cfg.ShowDocuments)
	assert.True(t, cfg.ShowNews)
	assert.Equal(t, "Ingen jakt", cfg.SnowStatusText)
	assert.False(t, cfg.ShowBooking)
}

func TestInitialConfigPerType(t *testing.T) {
	cases := map[OrgType]SiteConfig{
		TypeRoad:  {ShowSnowStatus: true, ShowDocuments: true, ShowBoard: true, ShowContactWidget: true, ShowNews: true},
		TypeBRF:   {ShowBooking: true, ShowDocuments: true, ShowBoard: true, ShowCalendarWidget: true, ShowContactWidget: true, ShowBrokerInfo: true, ShowNews: true},
		TypeBoat:  {ShowBooking: true, ShowCalendarWidget: true, ShowWaterStatus: true, ShowContactWidget: true, ShowBoard: true, ShowNews: true},
		TypeCabin: {ShowWaterStatus: true, ShowCalendarWidget: true, ShowDocuments: true, ShowContactWidget: true, ShowBoard: true, ShowNews: true},
		TypeVenue: {ShowBooking: true, ShowCalendarWidget: true, ShowContactWidget: true, ShowNews: true},
		TypeOther: {ShowDocuments: true, ShowContactWidget: true, ShowNews: true},
	}
	for typ, want := range cases {
		assert.Equal(t, want, InitialConfig(typ), string(typ))
	}
}

func TestParseOrgTypeFallsBackToOther(t *testing.T) {
	assert.Equal(t, TypeHunt, ParseOrgType(" Hunt "))
	assert.Equal(t, TypeOther, ParseOrgType("golfklubb"))
	assert.Equal(t, TypeOther, ParseOrgType(""))
	assert.Equal(t, InitialConfig(TypeOther), InitialConfig(OrgType("golfklubb")))
}

func TestDefaultsAreNotShared(t *testing.T) {
	patch := DefaultsFor(TypeHunt)
	*patch.SnowStatusText = "Jakt pågår"
	*patch.ShowBoard = true

	cfg := InitialConfig(TypeHunt)
	assert.Equal(t, "Ingen jakt", cfg.SnowStatusText)
	assert.False(t, cfg.ShowBoard)
}

func TestMergeOnlyAppliesSetFields(t *testing.T) {
	at := time.Date(2024, 1, 10, 6, 30, 0, 0, time.UTC)
	base := SiteConfig{ShowNews: true, ShowBoard: true, SnowStatusText: "Plogat", SnowUpdatedAt: &at}

	no := false
	text := "Ej plogat"
	merged := Merge(base, ConfigPatch{ShowBoard: &no, SnowStatusText: &text})

	assert.True(t, merged.ShowNews)
	assert.False(t, merged.ShowBoard)
	assert.Equal(t, "Ej plogat", merged.SnowStatusText)
	require.NotNil(t, merged.SnowUpdatedAt)
	assert.Equal(t, at, *merged.SnowUpdatedAt)

	// base is untouched
	assert.True(t, base.ShowBoard)
	assert.Equal(t, "Plogat", base.SnowStatusText)
	assert.NotSame(t, base.SnowUpdatedAt, merged.SnowUpdatedAt)
}

func TestMergeEmptyPatchIsIdentity(t *testing.T) {
	base := InitialConfig(TypeBRF)
	assert.Equal(t, base, Merge(base, ConfigPatch{}))
}

func TestModulePatch(t *testing.T) {
	patch, err := ModulePatch("show_booking", true)
	require.NoError(t, err)

	cfg := Merge(InitialConfig(TypeRoad), patch)
	assert.True(t, cfg.ShowBooking)

	_, err = ModulePatch("show_everything", true)
	assert.ErrorIs(t, err, ErrUnknownModule)
	assert.Len(t, ModuleKeys(), 14)
}

func TestNormalizeSubdomain(t *testing.T) {
	cases := map[string]string{
		"Björkens Jaktlag":     "bjorkens-jaktlag",
		"  Sjöviks Båtklubb! ": "sjoviks-batklubb",
		"BRF Ängen 2":          "brf-angen-2",
		"--a--b--":             "a-b",
		"åäö":                  "aao",
		"!!!":                  "",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizeSubdomain(in), in)
	}

	assert.True(t, ValidSubdomain("bjorken"))
	assert.False(t, ValidSubdomain("ab"))
	assert.False(t, ValidSubdomain(""))
}

func TestEveryFlagIsMergeable(t *testing.T) {
	configType := reflect.TypeOf(SiteConfig{})
	patchType := reflect.TypeOf(ConfigPatch{})

	flags := 0
	for i := 0; i < configType.NumField(); i++ {
		field := configType.Field(i)
		if field.Type.Kind() != reflect.Bool {
			continue
		}
		flags++
		key, _, _ := strings.Cut(field.Tag.Get("json"), ",")

		accessor, ok := moduleFlags[key]
		require.True(t, ok, "%s (%s) has no module flag entry", field.Name, key)

		patchField, ok := patchType.FieldByName(field.Name)
		require.True(t, ok, "ConfigPatch lacks %s", field.Name)
		assert.Equal(t, reflect.TypeOf((*bool)(nil)), patchField.Type)

		var cfg SiteConfig
		*accessor.config(&cfg) = true
		assert.True(t, reflect.ValueOf(cfg).Field(i).Bool(), "%s accessor points at another field", key)

		patch, err := ModulePatch(key, true)
		require.NoError(t, err)
		merged := Merge(SiteConfig{}, patch)
		assert.True(t, reflect.ValueOf(merged).Field(i).Bool(), "%s is dropped by Merge", key)
	}
	assert.Len(t, moduleFlags, flags)
}
