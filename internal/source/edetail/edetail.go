package edetail

import (
	"log/slog"
	"time"

	"github.com/kiriyama-dx/hcpmix/internal/dates"
	"github.com/kiriyama-dx/hcpmix/internal/model"
	"github.com/kiriyama-dx/hcpmix/internal/source"
)

// Raw column names in the edetail export. One table carries every
// platform; src_systm_cd discriminates.
const (
	colPlatform = "src_systm_cd"
	colID       = "dgtl_dtl_only_id"
	colAction   = "action"
	colDate     = "activity_date"
	colHCP      = "customer_id"
)

// channels maps the raw platform discriminator to its canonical channel
// label. JSTREAM maps but belongs to no family, so its rows never emit.
var channels = map[string]string{
	"M3":      "EMAIL_M3_MR_KUN",
	"M3-Quiz": "EMAIL_M3_QUIZ",
	"M3-MM":   "EMAIL_M3_MM",
	"M3-OPD":  "EMAIL_M3_OPD",
	"NMO":     "EDETAIL_NMO",
	"CARENET": "EDETAIL_CARENET",
	"JSTREAM": "EDETAIL_JSTREAM",
	"Medpeer": "EDETAIL_MEDPEER",
}

// Platform families. Declaration order is output order.
type family int

const (
	ecare family = iota
	m3
	nmo
	familyCount
)

var families = map[string]family{
	"EDETAIL_CARENET": ecare,
	"EDETAIL_MEDPEER": ecare,
	"EMAIL_M3_MR_KUN": m3,
	"EMAIL_M3_QUIZ":   m3,
	"EMAIL_M3_MM":     m3,
	"EMAIL_M3_OPD":    m3,
	"EDETAIL_NMO":     nmo,
}

// allowed actions per family, checked after normalization. Every family
// converges on the Delivered/Opened/Clicked vocabulary; only the M3
// emails track clicks.
var allowed = map[family]map[string]bool{
	ecare: {"Delivered": true, "Opened": true},
	m3:    {"Delivered": true, "Opened": true, "Clicked": true},
	nmo:   {"Delivered": true, "Opened": true},
}

func init() {
	source.Register(source.Edetail, Mapper{})
}

// Mapper normalizes the edetail export. Rows dispatch on the platform
// discriminator into families that converge on one action vocabulary,
// and only activity whose ID also delivered inside the retention window
// survives: an open or click with no delivered parent is vendor noise.
type Mapper struct{}

type dupKey struct {
	date    time.Time
	hcp     string
	id      string
	channel string
	action  string
}

func (Mapper) Map(tbl model.Table, cfg source.FilterConfig) (model.Dataset, error) {
	if err := source.RequireColumns(source.Edetail, tbl, colPlatform, colID, colAction, colDate, colHCP); err != nil {
		return nil, err
	}
	rows, err := source.ApplyPredicates(source.Edetail, tbl, cfg.Predicates)
	if err != nil {
		return nil, err
	}

	grouped := make([]model.Dataset, familyCount)
	delivered := map[string]bool{}
	unmapped := map[string]int{}

	for _, row := range rows {
		plat, _ := row.Field(colPlatform)
		channel, ok := channels[plat]
		if !ok {
			unmapped[plat]++
			continue
		}
		fam, ok := families[channel]
		if !ok {
			unmapped[plat]++
			continue
		}

		hcp, _ := row.Field(colHCP)
		id, _ := row.Field(colID)
		if hcp == "" || id == "" {
			slog.Warn("dropping row with blank identifier", "source", source.Edetail, "hcp_id", hcp, "id", id)
			continue
		}
		rawDate, _ := row.Field(colDate)
		d, err := dates.Parse(rawDate)
		if err != nil {
			slog.Warn("dropping row with unparseable date", "source", source.Edetail, "value", rawDate)
			continue
		}

		action := normalizeAction(row, fam)
		if !allowed[fam][action] {
			slog.Warn("dropping row with action outside vocabulary", "source", source.Edetail, "platform", plat, "action", action)
			continue
		}

		if action == "Delivered" && cfg.Window.Contains(d) {
			delivered[id] = true
		}
		grouped[fam] = append(grouped[fam], source.NewEngagement(hcp, d, id, channel, action))
	}

	for plat, n := range unmapped {
		slog.Info("skipping rows from unmapped platform", "source", source.Edetail, "platform", plat, "rows", n)
	}

	var total int
	for _, g := range grouped {
		total += len(g)
	}
	out := make(model.Dataset, 0, total)
	for fam, recs := range grouped {
		seen := map[dupKey]bool{}
		for _, e := range recs {
			// The e-care and M3 feeds repeat rows; NMO passes through as is.
			if family(fam) != nmo {
				k := dupKey{e.ActivityDate, e.HCPID, e.ID, e.Channel, e.Action}
				if seen[k] {
					continue
				}
				seen[k] = true
			}
			if !delivered[e.ID] {
				continue
			}
			out = append(out, e)
		}
	}
	return out, nil
}

// normalizeAction maps raw feed verbs onto the canonical vocabulary:
// every platform writes Sent for deliveries, and NMO writes Viewed for
// opens.
func normalizeAction(row model.Raw, fam family) string {
	action, _ := row.Field(colAction)
	if action == "Sent" {
		return "Delivered"
	}
	if fam == nmo && action == "Viewed" {
		return "Opened"
	}
	return action
}
