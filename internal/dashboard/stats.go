package dashboard

import (
	"fmt"
	"math"
	"time"

	"github.com/petroflow/petroflow/internal/deliveries"
	"github.com/petroflow/petroflow/internal/orders"
)

const recentLimit = 5

// KPI is a headline figure with its percentage change against the previous
// window, rounded to one decimal.
type KPI struct {
	Value  float64 `json:"value"`
	Change float64 `json:"change"`
}

// Donut is the delivered-versus-missing volume split over the window.
type Donut struct {
	Delivered float64 `json:"delivered"`
	Missing   float64 `json:"missing"`
}

// StatPoint is one bar of the revenue chart.
type StatPoint struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// Bundle is the full stats payload for one period.
type Bundle struct {
	Period           string                `json:"period"`
	Window           Window                `json:"window"`
	Revenue          KPI                   `json:"revenue"`
	VolumeDelivered  KPI                   `json:"volume_delivered"`
	InProgressOrders KPI                   `json:"in_progress_orders"`
	DeliveryCount    KPI                   `json:"delivery_count"`
	Donut            Donut                 `json:"donut"`
	RevenueSeries    []StatPoint           `json:"revenue_series"`
	RecentOrders     []orders.Order        `json:"recent_orders"`
	RecentDeliveries []deliveries.Delivery `json:"recent_deliveries"`
	GeneratedAt      time.Time             `json:"generated_at"`
}

// Change computes the percentage change from previous to current, rounded to
// one decimal. An empty previous window reports 100 when anything happened and
// 0 otherwise, never a division by zero.
func Change(current, previous float64) float64 {
	if previous == 0 {
		if current > 0 {
			return 100
		}
		return 0
	}
	return math.Round((current-previous)/previous*1000) / 10
}

type windowData struct {
	orders     []orders.Order
	deliveries []deliveries.Delivery
}

func revenue(data windowData) float64 {
	var sum float64
	for _, o := range data.orders {
		if o.Status == orders.StatusDelivered {
			sum += o.EstimatedAmount
		}
	}
	return sum
}

func deliveredVolume(data windowData) float64 {
	var sum float64
	for _, d := range data.deliveries {
		sum += d.VolumeLivre
	}
	return sum
}

func inProgressCount(data windowData) float64 {
	var n float64
	for _, o := range data.orders {
		if o.Status == orders.StatusNotDelivered {
			n++
		}
	}
	return n
}

// compute folds the two windows into the stats bundle. The recent lists are
// attached by the caller.
func compute(period string, current, previous Window, cur, prev windowData, now time.Time) Bundle {
	bundle := Bundle{
		Period: period,
		Window: current,
		Revenue: KPI{
			Value:  revenue(cur),
			Change: Change(revenue(cur), revenue(prev)),
		},
		VolumeDelivered: KPI{
			Value:  deliveredVolume(cur),
			Change: Change(deliveredVolume(cur), deliveredVolume(prev)),
		},
		InProgressOrders: KPI{
			Value:  inProgressCount(cur),
			Change: Change(inProgressCount(cur), inProgressCount(prev)),
		},
		DeliveryCount: KPI{
			Value:  float64(len(cur.deliveries)),
			Change: Change(float64(len(cur.deliveries)), float64(len(prev.deliveries))),
		},
		RevenueSeries: revenueSeries(period, current, cur.orders),
		GeneratedAt:   now,
	}
	for _, d := range cur.deliveries {
		bundle.Donut.Delivered += d.VolumeLivre
		bundle.Donut.Missing += d.VolumeManquant
	}
	return bundle
}

// revenueSeries buckets delivered-order revenue by hour for the day period and
// by day otherwise.
func revenueSeries(period string, window Window, windowOrders []orders.Order) []StatPoint {
	if period == PeriodDay {
		points := make([]StatPoint, 24)
		for h := range points {
			points[h].Label = fmt.Sprintf("%02d:00", h)
		}
		for _, o := range windowOrders {
			if o.Status != orders.StatusDelivered {
				continue
			}
			points[o.OrderDate.Hour()].Value += o.EstimatedAmount
		}
		return points
	}

	var points []StatPoint
	index := make(map[string]int)
	for day := window.From; day.Before(window.To); day = day.AddDate(0, 0, 1) {
		label := day.Format("2006-01-02")
		index[label] = len(points)
		points = append(points, StatPoint{Label: label})
	}
	for _, o := range windowOrders {
		if o.Status != orders.StatusDelivered {
			continue
		}
		if i, ok := index[o.OrderDate.Format("2006-01-02")]; ok {
			points[i].Value += o.EstimatedAmount
		}
	}
	return points
}
