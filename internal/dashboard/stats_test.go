package dashboard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/petroflow/petroflow/internal/deliveries"
	"github.com/petroflow/petroflow/internal/orders"
)

func TestChange(t *testing.T) {
	cases := []struct {
		name     string
		current  float64
		previous float64
		want     float64
	}{
		{"growth", 150, 100, 50},
		{"decline", 50, 100, -50},
		{"flat", 100, 100, 0},
		{"from zero", 42, 0, 100},
		{"both zero", 0, 0, 0},
		{"to zero", 0, 100, -100},
		{"rounded to one decimal", 100, 300, -66.7},
		{"small growth rounded", 1003, 1000, 0.3},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, Change(tc.current, tc.previous))
		})
	}
}

func TestWindowsDay(t *testing.T) {
	now := time.Date(2025, 8, 20, 14, 30, 0, 0, time.UTC)
	current, previous, err := Windows(PeriodDay, now)
	require.NoError(t, err)

	require.Equal(t, time.Date(2025, 8, 20, 0, 0, 0, 0, time.UTC), current.From)
	require.Equal(t, now, current.To)
	require.Equal(t, time.Date(2025, 8, 19, 0, 0, 0, 0, time.UTC), previous.From)
	require.Equal(t, time.Date(2025, 8, 19, 14, 30, 0, 0, time.UTC), previous.To)
}

func TestWindowsWeekStartsMonday(t *testing.T) {
	// 2025-08-20 is a Wednesday.
	now := time.Date(2025, 8, 20, 9, 0, 0, 0, time.UTC)
	current, previous, err := Windows(PeriodWeek, now)
	require.NoError(t, err)

	require.Equal(t, time.Date(2025, 8, 18, 0, 0, 0, 0, time.UTC), current.From)
	require.Equal(t, time.Monday, current.From.Weekday())
	require.Equal(t, time.Date(2025, 8, 11, 0, 0, 0, 0, time.UTC), previous.From)
	require.Equal(t, current.Span(), previous.Span())
}

func TestWindowsMonthSameSpan(t *testing.T) {
	now := time.Date(2025, 8, 15, 12, 0, 0, 0, time.UTC)
	current, previous, err := Windows(PeriodMonth, now)
	require.NoError(t, err)

	require.Equal(t, time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC), current.From)
	require.Equal(t, time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC), previous.From)
	require.Equal(t, current.Span(), previous.Span())
}

func TestWindowsUnknownPeriod(t *testing.T) {
	_, _, err := Windows("quarter", time.Now())
	require.Error(t, err)
}

func TestComputeKPIsAndDonut(t *testing.T) {
	now := time.Date(2025, 8, 20, 18, 0, 0, 0, time.UTC)
	current, previous, err := Windows(PeriodDay, now)
	require.NoError(t, err)

	cur := windowData{
		orders: []orders.Order{
			{Status: orders.StatusDelivered, EstimatedAmount: 4250000, OrderDate: now.Add(-2 * time.Hour)},
			{Status: orders.StatusDelivered, EstimatedAmount: 1000000, OrderDate: now.Add(-4 * time.Hour)},
			{Status: orders.StatusNotDelivered, EstimatedAmount: 999999, OrderDate: now.Add(-1 * time.Hour)},
			{Status: orders.StatusCancelled, EstimatedAmount: 500000, OrderDate: now.Add(-3 * time.Hour)},
		},
		deliveries: []deliveries.Delivery{
			{VolumeLivre: 7500, VolumeManquant: 500},
			{VolumeLivre: 5000, VolumeManquant: 0},
		},
	}
	prev := windowData{
		orders: []orders.Order{
			{Status: orders.StatusDelivered, EstimatedAmount: 2625000},
			{Status: orders.StatusNotDelivered},
			{Status: orders.StatusNotDelivered},
		},
		deliveries: []deliveries.Delivery{{VolumeLivre: 12500, VolumeManquant: 100}},
	}

	bundle := compute(PeriodDay, current, previous, cur, prev, now)

	// Cancelled and in-progress orders never count toward revenue.
	require.Equal(t, float64(5250000), bundle.Revenue.Value)
	require.Equal(t, float64(100), bundle.Revenue.Change)

	require.Equal(t, float64(12500), bundle.VolumeDelivered.Value)
	require.Equal(t, float64(0), bundle.VolumeDelivered.Change)

	require.Equal(t, float64(1), bundle.InProgressOrders.Value)
	require.Equal(t, float64(-50), bundle.InProgressOrders.Change)

	require.Equal(t, float64(2), bundle.DeliveryCount.Value)
	require.Equal(t, float64(100), bundle.DeliveryCount.Change)

	require.Equal(t, float64(12500), bundle.Donut.Delivered)
	require.Equal(t, float64(500), bundle.Donut.Missing)
}

func TestComputeEmptyPreviousMonthReportsFullVolumeChange(t *testing.T) {
	now := time.Date(2025, 8, 15, 12, 0, 0, 0, time.UTC)
	current, previous, err := Windows(PeriodMonth, now)
	require.NoError(t, err)

	cur := windowData{
		deliveries: []deliveries.Delivery{{VolumeLivre: 9000, VolumeManquant: 0}},
	}
	bundle := compute(PeriodMonth, current, previous, cur, windowData{}, now)

	require.Equal(t, float64(9000), bundle.VolumeDelivered.Value)
	require.Equal(t, float64(100), bundle.VolumeDelivered.Change)
	require.Equal(t, float64(0), bundle.Revenue.Value)
	require.Equal(t, float64(0), bundle.Revenue.Change)
}

func TestRevenueSeriesDayBucketsByHour(t *testing.T) {
	now := time.Date(2025, 8, 20, 18, 0, 0, 0, time.UTC)
	current, _, err := Windows(PeriodDay, now)
	require.NoError(t, err)

	points := revenueSeries(PeriodDay, current, []orders.Order{
		{Status: orders.StatusDelivered, EstimatedAmount: 1000, OrderDate: time.Date(2025, 8, 20, 9, 15, 0, 0, time.UTC)},
		{Status: orders.StatusDelivered, EstimatedAmount: 2000, OrderDate: time.Date(2025, 8, 20, 9, 45, 0, 0, time.UTC)},
		{Status: orders.StatusNotDelivered, EstimatedAmount: 9999, OrderDate: time.Date(2025, 8, 20, 9, 50, 0, 0, time.UTC)},
	})

	require.Len(t, points, 24)
	require.Equal(t, "09:00", points[9].Label)
	require.Equal(t, float64(3000), points[9].Value)
	require.Equal(t, float64(0), points[10].Value)
}

func TestRevenueSeriesWeekBucketsByDay(t *testing.T) {
	now := time.Date(2025, 8, 20, 18, 0, 0, 0, time.UTC)
	current, _, err := Windows(PeriodWeek, now)
	require.NoError(t, err)

	points := revenueSeries(PeriodWeek, current, []orders.Order{
		{Status: orders.StatusDelivered, EstimatedAmount: 5000, OrderDate: time.Date(2025, 8, 18, 10, 0, 0, 0, time.UTC)},
		{Status: orders.StatusDelivered, EstimatedAmount: 7000, OrderDate: time.Date(2025, 8, 20, 8, 0, 0, 0, time.UTC)},
	})

	// Monday through Wednesday of the running week.
	require.Len(t, points, 3)
	require.Equal(t, "2025-08-18", points[0].Label)
	require.Equal(t, float64(5000), points[0].Value)
	require.Equal(t, float64(7000), points[2].Value)
}
