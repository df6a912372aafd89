package reach

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kiriyama-dx/hcpmix/internal/model"
	"github.com/kiriyama-dx/hcpmix/internal/source"
)

func reachTable(rows ...model.Raw) model.Table {
	return model.Table{
		Columns: []string{"customer_id", "activity_date", "sevc_id", "action", "product_id"},
		Rows:    rows,
	}
}

func reachRow(hcp, date, id, action string) model.Raw {
	return model.Raw{
		"customer_id":   hcp,
		"activity_date": date,
		"sevc_id":       id,
		"action":        action,
		"product_id":    "P1",
	}
}

func TestMapChannelAlwaysLMMR(t *testing.T) {
	tbl := reachTable(
		reachRow("H1", "2026-02-01", "S1", "Delivered"),
		reachRow("H2", "2026-02-02", "S2", "Listened"),
		reachRow("H3", "2026-02-03", "S3", "anything-at-all"),
	)

	ds, err := Mapper{}.Map(tbl, source.FilterConfig{})
	require.NoError(t, err)
	require.Len(t, ds, 3)
	for _, e := range ds {
		require.Equal(t, "LMMR", e.Channel)
	}
}

func TestMapSortsByHCPDateIDAction(t *testing.T) {
	tbl := reachTable(
		reachRow("H2", "2026-02-01", "S9", "Delivered"),
		reachRow("H1", "2026-02-05", "S2", "Delivered"),
		reachRow("H1", "2026-02-01", "S5", "Opened"),
		reachRow("H1", "2026-02-01", "S5", "Delivered"),
	)

	ds, err := Mapper{}.Map(tbl, source.FilterConfig{})
	require.NoError(t, err)
	require.Len(t, ds, 4)

	require.Equal(t, "H1", ds[0].HCPID)
	require.Equal(t, "Delivered", ds[0].Action) // same hcp/date/id: action breaks the tie
	require.Equal(t, "Opened", ds[1].Action)
	require.Equal(t, "S2", ds[2].ID)
	require.Equal(t, "H2", ds[3].HCPID)
}

func TestMapProductPredicate(t *testing.T) {
	tbl := reachTable(
		reachRow("H1", "2026-02-01", "S1", "Delivered"),
	)
	cfg := source.FilterConfig{Predicates: []source.Predicate{{Field: "product_id", Value: "other"}}}

	ds, err := Mapper{}.Map(tbl, cfg)
	require.NoError(t, err)
	require.Empty(t, ds)
}

func TestMapMissingServiceIDColumnIsFatal(t *testing.T) {
	tbl := model.Table{
		Columns: []string{"customer_id", "activity_date", "action"},
	}

	_, err := Mapper{}.Map(tbl, source.FilterConfig{})
	var me *source.MappingError
	require.ErrorAs(t, err, &me)
	require.Equal(t, "sevc_id", me.Column)
}

func TestMapDropsBadRows(t *testing.T) {
	tbl := reachTable(
		reachRow("H1", "not a date", "S1", "Delivered"),
		reachRow("", "2026-02-01", "S2", "Delivered"),
		reachRow("H3", "2026-02-01", "S3", ""),
		reachRow("H4", "2026-02-01", "S4", "Delivered"),
	)

	ds, err := Mapper{}.Map(tbl, source.FilterConfig{})
	require.NoError(t, err)
	require.Len(t, ds, 1)
	require.Equal(t, "H4", ds[0].HCPID)
}

func TestRegistered(t *testing.T) {
	m, err := source.Get(source.Reach)
	require.NoError(t, err)
	require.IsType(t, Mapper{}, m)
}
