package pipeline

import (
	"bytes"
	"context"
	"regexp"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kiriyama-dx/hcpmix/internal/consolidate"
	"github.com/kiriyama-dx/hcpmix/internal/model"
	"github.com/kiriyama-dx/hcpmix/internal/output"
	"github.com/kiriyama-dx/hcpmix/internal/source"
)

// fullTables is a realistic four-source snapshot for an October 2026 run
// with seven months of retention (cutoff 2026-03-01). Rows cover the
// boundary dates, vendor noise, and every edetail platform family.
func fullTables() map[string]model.Table {
	return map[string]model.Table{
		"call.csv": table(
			[]string{"child_account_identifier_vod__c", "call_date_vod__c", "call2_vod_id", "Action"},
			[]string{"H001", "2026-04-01", "C-1", "Detail"},
			[]string{"H001", "2026-02-28", "C-2", "Detail"},
			[]string{"H002", "2026-05-10", "C-3", "Samples"},
			[]string{"H001", "2026-03-01", "C-4", "Detail"},
		),
		"edetail.csv": table(
			[]string{"src_systm_cd", "dgtl_dtl_only_id", "action", "activity_date", "customer_id"},
			[]string{"NMO", "E-1", "Delivered", "2026-04-02", "H004"},
			[]string{"NMO", "E-1", "Viewed", "2026-04-03", "H004"},
			[]string{"M3", "E-2", "Sent", "2026-03-15", "H005"},
			[]string{"M3", "E-2", "Clicked", "2026-03-16", "H005"},
			[]string{"M3", "E-2", "Clicked", "2026-03-16", "H005"},
			[]string{"NMO", "E-3", "Viewed", "2026-04-05", "H006"},
			[]string{"CARENET", "E-4", "Delivered", "2026-01-10", "H007"},
			[]string{"CARENET", "E-4", "Opened", "2026-03-10", "H007"},
			[]string{"JSTREAM", "E-5", "Delivered", "2026-04-10", "H008"},
		),
		"events.csv": table(
			[]string{"customer_id", "conference_id", "ACTVY_STRT_DT", "channel", "action"},
			[]string{"H009", "W-1", "2026-06-01", "WEBINAR", "Attended"},
			[]string{"H010", "W-2", "2026-02-01", "WEBINAR", "Attended"},
			[]string{"H011", "W-3", "2026-06-02", "", "Attended"},
		),
		"reach.csv": table(
			[]string{"customer_id", "activity_date", "sevc_id", "action"},
			[]string{"H013", "2026-07-01", "R-3", "Clicked"},
			[]string{"H012", "2026-04-20", "R-2", "Viewed"},
			[]string{"H012", "2026-04-18", "R-1", "Viewed"},
		),
	}
}

func runFull(t *testing.T) (map[string]model.Dataset, model.Dataset) {
	t.Helper()
	reader := &fakeReader{tables: fullTables()}
	r := New(fourSources(octWindow()), WithReader(reader.read))

	results, err := r.Run(context.Background())
	require.NoError(t, err)

	unified, err := consolidate.Concat(results, source.Order)
	require.NoError(t, err)
	return results, unified
}

func TestRunProducesCanonicalRows(t *testing.T) {
	_, unified := runFull(t)

	dayFormat := regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	for _, e := range unified {
		rec := e.Record()
		for i, col := range model.Columns {
			require.NotEmpty(t, rec[i], "column %s in row %v", col, rec)
		}
		require.Regexp(t, dayFormat, rec[1])
		require.Equal(t, rec[1][:7], rec[2], "YRMO must match the activity month")
	}
}

func TestRunCountsAndOrder(t *testing.T) {
	results, unified := runFull(t)

	require.Len(t, results[source.Call], 3)
	require.Len(t, results[source.Edetail], 4)
	require.Len(t, results[source.Events], 1)
	require.Len(t, results[source.Reach], 3)
	require.Len(t, unified, 11)

	var ids []string
	for _, e := range unified {
		ids = append(ids, e.ID)
	}
	require.Equal(t, []string{
		"C-1", "C-3", "C-4",
		"E-2", "E-2", "E-1", "E-1",
		"W-1",
		"R-1", "R-2", "R-3",
	}, ids)
}

func TestRunChannelVocabulary(t *testing.T) {
	results, _ := runFull(t)

	for _, e := range results[source.Call] {
		require.Equal(t, "CALL", e.Channel)
	}
	for _, e := range results[source.Reach] {
		require.Equal(t, "LMMR", e.Channel)
	}
	require.Equal(t, "WEBINAR", results[source.Events][0].Channel)

	var channels []string
	for _, e := range results[source.Edetail] {
		channels = append(channels, e.Channel)
	}
	require.Equal(t, []string{
		"EMAIL_M3_MR_KUN", "EMAIL_M3_MR_KUN",
		"EDETAIL_NMO", "EDETAIL_NMO",
	}, channels)
}

func TestRunRetentionBoundary(t *testing.T) {
	results, _ := runFull(t)

	var ids []string
	for _, e := range results[source.Call] {
		ids = append(ids, e.ID)
	}
	// 2026-02-28 falls before the cutoff, 2026-03-01 is on it.
	require.NotContains(t, ids, "C-2")
	require.Contains(t, ids, "C-4")
}

func TestRunDropsVendorNoise(t *testing.T) {
	results, _ := runFull(t)

	var ids []string
	for _, e := range results[source.Edetail] {
		ids = append(ids, e.ID)
	}
	// E-3 opened without a delivery, E-4 delivered before the window,
	// E-5 came from a platform with no family.
	require.NotContains(t, ids, "E-3")
	require.NotContains(t, ids, "E-4")
	require.NotContains(t, ids, "E-5")
}

func TestRunIsDeterministic(t *testing.T) {
	_, first := runFull(t)
	_, second := runFull(t)

	var a, b bytes.Buffer
	require.NoError(t, output.EncodeCSV(&a, first))
	require.NoError(t, output.EncodeCSV(&b, second))
	require.Equal(t, a.Bytes(), b.Bytes())
}
