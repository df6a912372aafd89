// Package engage normalizes heterogeneous HCP activity exports into one
// canonical engagement schema.
//
// Quick start:
//
//	n, err := engage.New(engage.WithMonths(7))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	columns := []string{"customer_id", "activity_date", "sevc_id", "action"}
//	rows := [][]string{{"H203", "2026-04-21", "SVC-117", "Clicked"}}
//
//	engagements, _ := n.Normalize(ctx, "reach", columns, rows)
//	fmt.Println(engagements[0].Channel) // LMMR
//
// A Normalizer is safe for concurrent use. Create once, reuse across
// sources and calls. See the README for full documentation.
package engage
