package app

import (
	"context"
	"sort"

	"github.com/cinedata/moviedash/internal/dataset"
)

// KPI is one headline number. KPIs for unresolved roles are omitted, not
// zeroed: "no score column" must render differently from "score 0".
type KPI struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// ChartPoint is one labeled bar of a top-N chart.
type ChartPoint struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// Dashboard is everything the data-dependent views render from.
type Dashboard struct {
	TotalRows int               `json:"total_rows"`
	KPIs      []KPI             `json:"kpis"`
	Roles     map[string]string `json:"roles"`

	TopByScore   []ChartPoint `json:"top_by_score,omitempty"`
	TopByRevenue []ChartPoint `json:"top_by_revenue,omitempty"`
}

const topN = 10

// Dashboard computes KPIs and chart series from the current snapshot.
// A store failure is terminal for this render cycle: no partial dashboard.
func (a *App) Dashboard(ctx context.Context) (Dashboard, error) {
	snap, roles, err := a.Window(ctx, a.fetchLimit)
	if err != nil {
		return Dashboard{}, err
	}

	out := Dashboard{
		TotalRows: snap.Data.Len(),
		KPIs:      []KPI{{Name: "total_movies", Value: float64(snap.Data.Len())}},
		Roles:     make(map[string]string, len(roles)),
	}
	for role, col := range roles {
		out.Roles[string(role)] = col
	}

	if col, ok := roles.Resolved(dataset.RoleScore); ok {
		if mean, n := meanOf(snap.Data.Records, col); n > 0 {
			out.KPIs = append(out.KPIs, KPI{Name: "mean_score", Value: mean})
		}
	}
	if col, ok := roles.Resolved(dataset.RoleRevenue); ok {
		out.KPIs = append(out.KPIs, KPI{Name: "total_revenue", Value: sumOf(snap.Data.Records, col)})
	}

	// Charts need a title to label the bars; without one they are skipped.
	if titleCol, ok := roles.Resolved(dataset.RoleTitle); ok {
		if col, ok := roles.Resolved(dataset.RoleScore); ok {
			out.TopByScore = topBy(snap.Data.Records, titleCol, col)
		}
		if col, ok := roles.Resolved(dataset.RoleRevenue); ok {
			out.TopByRevenue = topBy(snap.Data.Records, titleCol, col)
		}
	}

	return out, nil
}

func meanOf(recs []dataset.Record, col string) (float64, int) {
	var sum float64
	var n int
	for _, r := range recs {
		if v, ok := dataset.AsFloat(r[col]); ok {
			sum += v
			n++
		}
	}
	if n == 0 {
		return 0, 0
	}
	return sum / float64(n), n
}

func sumOf(recs []dataset.Record, col string) float64 {
	var sum float64
	for _, r := range recs {
		if v, ok := dataset.AsFloat(r[col]); ok {
			sum += v
		}
	}
	return sum
}

func topBy(recs []dataset.Record, labelCol, valueCol string) []ChartPoint {
	pts := make([]ChartPoint, 0, len(recs))
	for _, r := range recs {
		v, ok := dataset.AsFloat(r[valueCol])
		if !ok {
			continue
		}
		pts = append(pts, ChartPoint{Label: dataset.AsString(r[labelCol]), Value: v})
	}
	sort.SliceStable(pts, func(i, j int) bool { return pts[i].Value > pts[j].Value })
	if len(pts) > topN {
		pts = pts[:topN]
	}
	return pts
}
