package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gymdesk-backend/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ReportService aggregates sales, payments and members. It never writes
// business data; snapshots are its only table.
type ReportService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewReportService(db *gorm.DB) *ReportService {
	return &ReportService{db: db, now: time.Now}
}

type Range struct {
	Start *time.Time
	End   *time.Time
}

func (r Range) apply(q *gorm.DB, column string) *gorm.DB {
	if r.Start != nil {
		q = q.Where(column+" >= ?", *r.Start)
	}
	if r.End != nil {
		q = q.Where(column+" <= ?", *r.End)
	}
	return q
}

type Breakdown struct {
	Label       string          `json:"label"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	Count       int64           `json:"count"`
}

func (s *ReportService) salesBy(ctx context.Context, r Range, label, join string) ([]Breakdown, error) {
	q := s.db.WithContext(ctx).Table("sales").
		Select(label + " AS label, COALESCE(SUM(sales.amount), 0) AS total_amount, COUNT(*) AS count")
	if join != "" {
		q = q.Joins(join)
	}
	var rows []Breakdown
	err := r.apply(q, "sales.date").Group(label).Order("total_amount DESC").Scan(&rows).Error
	return rows, err
}

func (s *ReportService) ProductWise(ctx context.Context, r Range) ([]Breakdown, error) {
	return s.salesBy(ctx, r, "COALESCE(products.name, 'Unassigned')", "LEFT JOIN products ON products.id = sales.product_id")
}

func (s *ReportService) CategoryWise(ctx context.Context, r Range) ([]Breakdown, error) {
	return s.salesBy(ctx, r, "sales.type", "")
}

func (s *ReportService) StaffPerformance(ctx context.Context, r Range) ([]Breakdown, error) {
	return s.salesBy(ctx, r, "COALESCE(staffs.name, 'Unassigned')", "LEFT JOIN staffs ON staffs.id = sales.staff_id")
}

func (s *ReportService) PaymentModes(ctx context.Context, r Range) ([]Breakdown, error) {
	return s.salesBy(ctx, r, "sales.payment_mode", "")
}

type DailySales struct {
	Date  string          `json:"date"`
	Total decimal.Decimal `json:"total"`
	Count int             `json:"count"`
	Sales []models.Sale   `json:"sales"`
}

// DSR lists sales in the range, defaulting to today.
func (s *ReportService) DSR(ctx context.Context, r Range) (*DailySales, error) {
	now := s.now()
	if r.Start == nil && r.End == nil {
		start := models.DateOnly(now)
		end := start.Add(24*time.Hour - time.Nanosecond)
		r = Range{Start: &start, End: &end}
	}
	var sales []models.Sale
	if err := r.apply(s.db.WithContext(ctx).Model(&models.Sale{}), "date").Order("date ASC").Find(&sales).Error; err != nil {
		return nil, err
	}
	out := &DailySales{Date: models.DateKey(now), Total: decimal.Zero, Count: len(sales), Sales: sales}
	if r.Start != nil {
		out.Date = models.DateKey(*r.Start)
	}
	for _, sale := range sales {
		out.Total = out.Total.Add(sale.Amount)
	}
	return out, nil
}

type MonthlySales struct {
	Month       string          `json:"month"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	Count       int             `json:"count"`
}

// Monthly buckets sales by calendar month (YYYY-MM), oldest first.
func (s *ReportService) Monthly(ctx context.Context, r Range) ([]MonthlySales, error) {
	var rows []struct {
		Date   time.Time
		Amount decimal.Decimal
	}
	q := s.db.WithContext(ctx).Model(&models.Sale{}).Select("date, amount")
	if err := r.apply(q, "date").Order("date ASC").Scan(&rows).Error; err != nil {
		return nil, err
	}
	var out []MonthlySales
	for _, row := range rows {
		key := row.Date.Format("2006-01")
		if n := len(out); n > 0 && out[n-1].Month == key {
			out[n-1].TotalAmount = out[n-1].TotalAmount.Add(row.Amount)
			out[n-1].Count++
			continue
		}
		out = append(out, MonthlySales{Month: key, TotalAmount: row.Amount, Count: 1})
	}
	return out, nil
}

type ModeTotal struct {
	Method string          `json:"method"`
	Amount decimal.Decimal `json:"amount"`
	Count  int64           `json:"count"`
}

type FinancialReport struct {
	Start        *time.Time      `json:"startDate,omitempty"`
	End          *time.Time      `json:"endDate,omitempty"`
	TotalRevenue decimal.Decimal `json:"totalRevenue"`
	ByMethod     []ModeTotal     `json:"byMethod"`
}

// Financial reports money actually received, grouped by payment mode.
func (s *ReportService) Financial(ctx context.Context, r Range) (*FinancialReport, error) {
	var rows []ModeTotal
	q := s.db.WithContext(ctx).Model(&models.Payment{}).
		Select("payment_mode AS method, COALESCE(SUM(amount), 0) AS amount, COUNT(*) AS count")
	if err := r.apply(q, "payment_date").Group("payment_mode").Order("amount DESC").Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := &FinancialReport{Start: r.Start, End: r.End, TotalRevenue: decimal.Zero, ByMethod: rows}
	for _, row := range rows {
		out.TotalRevenue = out.TotalRevenue.Add(row.Amount)
	}
	return out, nil
}

type sumRow struct {
	Total decimal.Decimal
}

func (s *ReportService) revenue(ctx context.Context, start, end time.Time) (decimal.Decimal, error) {
	var row sumRow
	err := s.db.WithContext(ctx).Model(&models.Payment{}).
		Select("COALESCE(SUM(amount), 0) AS total").
		Where("payment_date BETWEEN ? AND ?", start, end).
		Scan(&row).Error
	return row.Total, err
}

func quarterStart(t time.Time) time.Time {
	quarter := (int(t.Month()) - 1) / 3
	return time.Date(t.Year(), time.Month(quarter*3+1), 1, 0, 0, 0, 0, t.Location())
}

func growth(current, previous decimal.Decimal) float64 {
	if previous.IsZero() {
		if current.IsZero() {
			return 0
		}
		return 100
	}
	g, _ := current.Sub(previous).Div(previous).Mul(decimal.NewFromInt(100)).Round(2).Float64()
	return g
}

type MemberSpend struct {
	Name     string          `json:"name"`
	Payments int64           `json:"payments"`
	Spent    decimal.Decimal `json:"spent"`
}

type QuickStats struct {
	TotalMembers  int64           `json:"totalMembers"`
	ActiveMembers int64           `json:"activeMembers"`
	TotalInvoices int64           `json:"totalInvoices"`
	AvgOrderValue decimal.Decimal `json:"avgOrderValue"`
}

type Analytics struct {
	CurrentMonthRevenue   decimal.Decimal `json:"currentMonthRevenue"`
	MonthGrowth           float64         `json:"monthGrowth"`
	CurrentQuarterRevenue decimal.Decimal `json:"currentQuarterRevenue"`
	QuarterGrowth         float64         `json:"quarterGrowth"`
	CurrentYearRevenue    decimal.Decimal `json:"currentYearRevenue"`
	YearGrowth            float64         `json:"yearGrowth"`
	TopProducts           []Breakdown     `json:"topProducts"`
	TopMembers            []MemberSpend   `json:"topMembers"`
	QuickStats            QuickStats      `json:"quickStats"`
}

// Analytics compares received revenue for the current month, quarter and
// year against the previous period.
func (s *ReportService) Analytics(ctx context.Context) (*Analytics, error) {
	now := s.now()
	loc := now.Location()
	month := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)
	quarter := quarterStart(now)
	year := time.Date(now.Year(), 1, 1, 0, 0, 0, 0, loc)
	last := func(t time.Time) time.Time { return t.Add(-time.Nanosecond) }

	periods := []struct{ start, end time.Time }{
		{month, last(month.AddDate(0, 1, 0))},
		{month.AddDate(0, -1, 0), last(month)},
		{quarter, last(quarter.AddDate(0, 3, 0))},
		{quarter.AddDate(0, -3, 0), last(quarter)},
		{year, last(year.AddDate(1, 0, 0))},
		{year.AddDate(-1, 0, 0), last(year)},
	}
	totals := make([]decimal.Decimal, len(periods))
	for i, p := range periods {
		v, err := s.revenue(ctx, p.start, p.end)
		if err != nil {
			return nil, fmt.Errorf("revenue: %w", err)
		}
		totals[i] = v
	}

	out := &Analytics{
		CurrentMonthRevenue:   totals[0],
		MonthGrowth:           growth(totals[0], totals[1]),
		CurrentQuarterRevenue: totals[2],
		QuarterGrowth:         growth(totals[2], totals[3]),
		CurrentYearRevenue:    totals[4],
		YearGrowth:            growth(totals[4], totals[5]),
	}

	monthEnd := periods[0].end
	r := Range{Start: &month, End: &monthEnd}
	top, err := s.ProductWise(ctx, r)
	if err != nil {
		return nil, err
	}
	if len(top) > 4 {
		top = top[:4]
	}
	out.TopProducts = top

	err = s.db.WithContext(ctx).Table("payments").
		Select("members.name AS name, COUNT(payments.id) AS payments, COALESCE(SUM(payments.amount), 0) AS spent").
		Joins("JOIN members ON members.id = payments.member_id").
		Where("payments.payment_date BETWEEN ? AND ?", month, monthEnd).
		Group("members.name").
		Order("spent DESC").
		Limit(4).
		Scan(&out.TopMembers).Error
	if err != nil {
		return nil, err
	}

	if out.QuickStats, err = s.quickStats(ctx); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *ReportService) quickStats(ctx context.Context) (QuickStats, error) {
	db := s.db.WithContext(ctx)
	var qs QuickStats
	if err := db.Model(&models.Member{}).Count(&qs.TotalMembers).Error; err != nil {
		return qs, err
	}
	if err := db.Model(&models.Member{}).Where("status = ?", models.MemberActive).Count(&qs.ActiveMembers).Error; err != nil {
		return qs, err
	}
	if err := db.Model(&models.Invoice{}).Where("status <> ?", models.InvoiceCancelled).Count(&qs.TotalInvoices).Error; err != nil {
		return qs, err
	}
	var billed sumRow
	if err := db.Model(&models.Invoice{}).Select("COALESCE(SUM(total_amount), 0) AS total").
		Where("status <> ?", models.InvoiceCancelled).Scan(&billed).Error; err != nil {
		return qs, err
	}
	qs.AvgOrderValue = decimal.Zero
	if qs.TotalInvoices > 0 {
		qs.AvgOrderValue = billed.Total.Div(decimal.NewFromInt(qs.TotalInvoices)).Round(2)
	}
	return qs, nil
}

type Dashboard struct {
	TotalMembers     int64            `json:"totalMembers"`
	ActiveMembers    int64            `json:"activeMembers"`
	ExpiringSoon     int64            `json:"expiringSoon"`
	CheckedInNow     int64            `json:"checkedInNow"`
	TodayRevenue     decimal.Decimal  `json:"todayRevenue"`
	MonthlyRevenue   decimal.Decimal  `json:"monthlyRevenue"`
	Outstanding      decimal.Decimal  `json:"outstanding"`
	OpenInvoices     int64            `json:"openInvoices"`
	TodayAppointment int64            `json:"todayAppointments"`
	RecentPayments   []models.Payment `json:"recentPayments"`
}

func (s *ReportService) Dashboard(ctx context.Context) (*Dashboard, error) {
	db := s.db.WithContext(ctx)
	now := s.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	tomorrow := today.AddDate(0, 0, 1)
	month := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	open := []models.InvoiceStatus{models.InvoicePending, models.InvoicePartial, models.InvoiceOverdue}

	d := &Dashboard{}
	steps := []func() error{
		func() error { return db.Model(&models.Member{}).Count(&d.TotalMembers).Error },
		func() error {
			return db.Model(&models.Member{}).Where("status = ?", models.MemberActive).Count(&d.ActiveMembers).Error
		},
		func() error {
			return db.Model(&models.Member{}).
				Where("membership_status = ? AND membership_end_date > ? AND membership_end_date <= ?",
					models.MembershipActive, now, now.AddDate(0, 0, 7)).
				Count(&d.ExpiringSoon).Error
		},
		func() error {
			return db.Model(&models.Attendance{}).
				Where("date = ? AND status = ?", models.DateKey(now), models.AttendanceCheckedIn).
				Count(&d.CheckedInNow).Error
		},
		func() error {
			v, err := s.revenue(ctx, today, tomorrow.Add(-time.Nanosecond))
			d.TodayRevenue = v
			return err
		},
		func() error {
			v, err := s.revenue(ctx, month, now)
			d.MonthlyRevenue = v
			return err
		},
		func() error {
			var row sumRow
			err := db.Model(&models.Invoice{}).Select("COALESCE(SUM(balance_amount), 0) AS total").
				Where("status IN ?", open).Scan(&row).Error
			d.Outstanding = row.Total
			return err
		},
		func() error {
			return db.Model(&models.Invoice{}).Where("status IN ?", open).Count(&d.OpenInvoices).Error
		},
		func() error {
			return db.Model(&models.Appointment{}).
				Where("date >= ? AND date < ? AND status IN ?", today, tomorrow,
					[]models.AppointmentStatus{models.AppointmentScheduled, models.AppointmentRescheduled}).
				Count(&d.TodayAppointment).Error
		},
		func() error { return db.Order("payment_date DESC").Limit(5).Find(&d.RecentPayments).Error },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return nil, err
		}
	}
	return d, nil
}

type SnapshotInput struct {
	ReportType  string
	Start       time.Time
	End         time.Time
	GeneratedBy string
	Notes       string
	Data        json.RawMessage
}

type snapshotData struct {
	DSR              *DailySales    `json:"dsr"`
	Monthly          []MonthlySales `json:"monthly"`
	ProductWise      []Breakdown    `json:"productWise"`
	StaffPerformance []Breakdown    `json:"staffPerformance"`
	PaymentMode      []Breakdown    `json:"paymentMode"`
}

var snapshotTypes = map[string]bool{"daily": true, "monthly": true, "comprehensive": true, "custom": true}

// CreateSnapshot stores a report for the range. Without caller-supplied data
// the standard sales reports are computed and summarised.
func (s *ReportService) CreateSnapshot(ctx context.Context, in SnapshotInput) (*models.ReportSnapshot, error) {
	if !snapshotTypes[in.ReportType] {
		return nil, models.NewRuleError("invalid_report_type", "report type must be daily, monthly, comprehensive or custom")
	}
	if in.End.Before(in.Start) {
		return nil, models.NewRuleError("invalid_range", "end date must not be before start date")
	}
	r := Range{Start: &in.Start, End: &in.End}
	snap := &models.ReportSnapshot{
		ReportType:              in.ReportType,
		GeneratedAt:             s.now(),
		GeneratedBy:             in.GeneratedBy,
		RangeStart:              in.Start,
		RangeEnd:                in.End,
		Notes:                   in.Notes,
		TotalRevenue:            decimal.Zero,
		AverageTransactionValue: decimal.Zero,
	}
	if snap.GeneratedBy == "" {
		snap.GeneratedBy = "System"
	}

	data := snapshotData{}
	var err error
	if data.DSR, err = s.DSR(ctx, r); err != nil {
		return nil, err
	}
	if data.ProductWise, err = s.ProductWise(ctx, r); err != nil {
		return nil, err
	}
	if data.StaffPerformance, err = s.StaffPerformance(ctx, r); err != nil {
		return nil, err
	}
	snap.TotalRevenue = data.DSR.Total
	snap.TotalTransactions = int64(data.DSR.Count)
	if data.DSR.Count > 0 {
		snap.AverageTransactionValue = data.DSR.Total.Div(decimal.NewFromInt(int64(data.DSR.Count))).Round(2)
	}
	if len(data.ProductWise) > 0 {
		snap.TopProduct = data.ProductWise[0].Label
	}
	if len(data.StaffPerformance) > 0 {
		snap.TopStaff = data.StaffPerformance[0].Label
	}

	if len(in.Data) > 0 {
		snap.Data = datatypes.JSON(in.Data)
	} else {
		if data.Monthly, err = s.Monthly(ctx, r); err != nil {
			return nil, err
		}
		if data.PaymentMode, err = s.PaymentModes(ctx, r); err != nil {
			return nil, err
		}
		raw, err := json.Marshal(data)
		if err != nil {
			return nil, err
		}
		snap.Data = datatypes.JSON(raw)
	}

	if err := s.db.WithContext(ctx).Create(snap).Error; err != nil {
		return nil, err
	}
	return snap, nil
}

func (s *ReportService) ListSnapshots(ctx context.Context, reportType string, page Page) ([]models.ReportSnapshot, int64, error) {
	q := s.db.WithContext(ctx).Model(&models.ReportSnapshot{})
	if reportType != "" {
		q = q.Where("report_type = ?", reportType)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var snaps []models.ReportSnapshot
	err := page.apply(q.Omit("data").Order("generated_at DESC")).Find(&snaps).Error
	return snaps, total, err
}

func (s *ReportService) GetSnapshot(ctx context.Context, id uuid.UUID) (*models.ReportSnapshot, error) {
	return loadByID[models.ReportSnapshot](s.db.WithContext(ctx), "report snapshot", id)
}

func (s *ReportService) DeleteSnapshot(ctx context.Context, id uuid.UUID) error {
	res := s.db.WithContext(ctx).Delete(&models.ReportSnapshot{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return models.NotFound("report snapshot")
	}
	return nil
}
