package call

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kiriyama-dx/hcpmix/internal/model"
	"github.com/kiriyama-dx/hcpmix/internal/source"
)

func callTable(rows ...model.Raw) model.Table {
	return model.Table{
		Columns: []string{
			"child_account_identifier_vod__c",
			"call_date_vod__c",
			"call2_vod_id",
			"Action",
			"recordtype_name",
			"product_external_id_vod__c",
		},
		Rows: rows,
	}
}

func callRow(hcp, date, id, action, product string) model.Raw {
	return model.Raw{
		"child_account_identifier_vod__c": hcp,
		"call_date_vod__c":                date,
		"call2_vod_id":                    id,
		"Action":                          action,
		"recordtype_name":                 "Face_to_Face_vod",
		"product_external_id_vod__c":      product,
	}
}

func TestMapFixedChannelVerbatimAction(t *testing.T) {
	tbl := callTable(
		callRow("H1", "2026-03-09", "C1", "Attended", "P-EBG"),
		callRow("H2", "2026-04-01", "C2", "Detailed", "P-EBG"),
	)

	ds, err := Mapper{}.Map(tbl, source.FilterConfig{})
	require.NoError(t, err)
	require.Len(t, ds, 2)

	for _, e := range ds {
		require.Equal(t, "CALL", e.Channel)
		require.NotEmpty(t, e.HCPID)
		require.NotEmpty(t, e.ID)
		require.NotEmpty(t, e.Action)
		require.NotEmpty(t, e.YrMo)
		require.False(t, e.ActivityDate.IsZero())
	}
	require.Equal(t, "Attended", ds[0].Action)
	require.Equal(t, "2026-03", ds[0].YrMo)
	require.Equal(t, time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC), ds[0].ActivityDate)
}

func TestMapProductPredicateExcludesMismatch(t *testing.T) {
	tbl := callTable(
		callRow("H1", "2026-03-09", "C1", "Attended", "X"),
		callRow("H2", "2026-03-10", "C2", "Attended", "Y"),
	)
	cfg := source.FilterConfig{
		Predicates: []source.Predicate{{Field: "product_external_id_vod__c", Value: "Y"}},
	}

	ds, err := Mapper{}.Map(tbl, cfg)
	require.NoError(t, err)
	require.Len(t, ds, 1)
	require.Equal(t, "H2", ds[0].HCPID)
}

func TestMapDropsUnparseableDate(t *testing.T) {
	tbl := callTable(
		callRow("H1", "garbage", "C1", "Attended", "P"),
		callRow("H2", "2026-03-10", "C2", "Attended", "P"),
	)

	ds, err := Mapper{}.Map(tbl, source.FilterConfig{})
	require.NoError(t, err)
	require.Len(t, ds, 1)
	require.Equal(t, "C2", ds[0].ID)
}

func TestMapDropsBlankIdentifiers(t *testing.T) {
	tbl := callTable(
		callRow("", "2026-03-09", "C1", "Attended", "P"),
		callRow("H2", "2026-03-09", "", "Attended", "P"),
		callRow("H3", "2026-03-09", "C3", "Attended", "P"),
	)

	ds, err := Mapper{}.Map(tbl, source.FilterConfig{})
	require.NoError(t, err)
	require.Len(t, ds, 1)
	require.Equal(t, "H3", ds[0].HCPID)
}

func TestMapMissingRequiredColumnIsFatal(t *testing.T) {
	tbl := model.Table{
		Columns: []string{"child_account_identifier_vod__c", "call_date_vod__c"},
		Rows:    []model.Raw{{"child_account_identifier_vod__c": "H1", "call_date_vod__c": "2026-03-09"}},
	}

	_, err := Mapper{}.Map(tbl, source.FilterConfig{})
	var me *source.MappingError
	require.ErrorAs(t, err, &me)
	require.Equal(t, source.Call, me.Source)
}

func TestMapEmptyMatchIsEmptyNotError(t *testing.T) {
	tbl := callTable(callRow("H1", "2026-03-09", "C1", "Attended", "X"))
	cfg := source.FilterConfig{
		Predicates: []source.Predicate{{Field: "product_external_id_vod__c", Value: "nope"}},
	}

	ds, err := Mapper{}.Map(tbl, cfg)
	require.NoError(t, err)
	require.Empty(t, ds)
}

func TestRegistered(t *testing.T) {
	m, err := source.Get(source.Call)
	require.NoError(t, err)
	require.IsType(t, Mapper{}, m)
}
