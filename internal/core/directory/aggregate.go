package directory

import (
	"time"

	"github.com/ogurasousui/employee-directory/internal/core/employee"
	"github.com/shopspring/decimal"
)

const (
	// DefaultTrendMonths は採用推移グラフの月数です。
	DefaultTrendMonths = 6
	// RecentHireWindow は「最近の入社」カードで使う直近期間です。
	RecentHireWindow = 30 * 24 * time.Hour
)

// Summary は統計カードに表示する集計値です。
type Summary struct {
	Total          int
	Departments    int
	NewThisMonth   int
	AvgSalary      float64
	SalaryExpense  float64
	ActiveProjects int
}

// DepartmentCount は部署ごとの人数です。
type DepartmentCount struct {
	Department string
	Count      int
}

// TrendBucket は 1 か月分の採用数です。範囲は [Start, End) で、End は翌月 1 日です。
type TrendBucket struct {
	Label string
	Start time.Time
	End   time.Time
	Hires int
}

// Aggregate は records の統計値を asOf 時点で計算します。
//
// NewThisMonth は asOf の月の 1 日 (asOf のロケーション) 以降に入社した件数です。
// 入社日が欠損したレコードは数えません。
func Aggregate(records []employee.Employee, asOf time.Time) Summary {
	monthStart := startOfMonth(asOf)

	var (
		sum      decimal.Decimal
		projects int
		newHires int
	)
	for _, rec := range records {
		sum = sum.Add(decimal.NewFromFloat(rec.Salary))
		projects += len(rec.Projects)
		if !rec.HireDate.IsZero() && !rec.HireDate.Before(monthStart) {
			newHires++
		}
	}

	summary := Summary{
		Total:          len(records),
		Departments:    len(DepartmentDistribution(records)),
		NewThisMonth:   newHires,
		SalaryExpense:  sum.InexactFloat64(),
		ActiveProjects: projects,
	}
	if len(records) > 0 {
		summary.AvgSalary = sum.Div(decimal.NewFromInt(int64(len(records)))).Round(2).InexactFloat64()
	}
	return summary
}

// RecentHires は asOf から RecentHireWindow さかのぼった時刻より後に入社した件数です。
// NewThisMonth とは別の指標です。
func RecentHires(records []employee.Employee, asOf time.Time) int {
	cutoff := asOf.Add(-RecentHireWindow)
	count := 0
	for _, rec := range records {
		if !rec.HireDate.IsZero() && rec.HireDate.After(cutoff) {
			count++
		}
	}
	return count
}

// DepartmentDistribution は部署ごとの人数を初出順で返します。部署が空のレコードは "" にまとめます。
func DepartmentDistribution(records []employee.Employee) []DepartmentCount {
	index := make(map[string]int)
	out := make([]DepartmentCount, 0)
	for _, rec := range records {
		i, ok := index[rec.Department]
		if !ok {
			i = len(out)
			index[rec.Department] = i
			out = append(out, DepartmentCount{Department: rec.Department})
		}
		out[i].Count++
	}
	return out
}

// HiringTrend は asOf の月を含む直近 months か月の採用数を古い順に返します。
// 採用 0 件の月も含みます。months が 0 以下なら空です。
func HiringTrend(records []employee.Employee, asOf time.Time, months int) []TrendBucket {
	if months <= 0 {
		return []TrendBucket{}
	}

	current := startOfMonth(asOf)
	buckets := make([]TrendBucket, months)
	for i := range buckets {
		start := current.AddDate(0, i-(months-1), 0)
		buckets[i] = TrendBucket{
			Label: start.Month().String()[:3],
			Start: start,
			End:   start.AddDate(0, 1, 0),
		}
	}

	first, last := buckets[0].Start, buckets[months-1].End
	for _, rec := range records {
		hired := rec.HireDate
		if hired.IsZero() || hired.Before(first) || !hired.Before(last) {
			continue
		}
		for i := range buckets {
			if !hired.Before(buckets[i].Start) && hired.Before(buckets[i].End) {
				buckets[i].Hires++
				break
			}
		}
	}
	return buckets
}

func startOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}
