package analysis

import (
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/mjanssen/SupportTicketAnalytics/src/tickets"
)

// Alpha is the fixed significance level for the comparison verdict.
const Alpha = 0.05

// Comparison is the outcome of a two-group CSAT mean comparison.
//
// Exactly one of three shapes comes back:
//   - Insufficient: combined group size < 2, no test attempted.
//   - Degenerate: the test was attempted but the samples cannot support the
//     Welch statistic (an empty group, or too little variance to form a finite
//     standard error / degrees of freedom). TStat and PValue are NaN.
//   - Otherwise TStat, PValue and DF hold the Welch result and Significant is
//     the p < Alpha verdict.
type Comparison struct {
	LabelA, LabelB string
	SizeA, SizeB   int
	MeanA, MeanB   float64 // NaN for an empty group

	Insufficient bool
	Degenerate   bool

	TStat       float64
	DF          float64
	PValue      float64
	Significant bool
}

// CompareGroups partitions rows by the value of column into the labelA and
// labelB groups (rows matching neither are excluded), reports per-group size
// and mean CSAT, and runs Welch's unequal-variance t-test on the two groups'
// scores when the combined size is at least 2.
func CompareGroups(rows []tickets.Ticket, column, labelA, labelB string) Comparison {
	c := Comparison{
		LabelA: labelA, LabelB: labelB,
		MeanA: math.NaN(), MeanB: math.NaN(),
		TStat: math.NaN(), DF: math.NaN(), PValue: math.NaN(),
	}
	var a, b []float64
	for _, t := range rows {
		switch columnValue(t, column) {
		case labelA:
			a = append(a, t.CSAT)
		case labelB:
			b = append(b, t.CSAT)
		}
	}
	c.SizeA, c.SizeB = len(a), len(b)
	if len(a) > 0 {
		c.MeanA = stat.Mean(a, nil)
	}
	if len(b) > 0 {
		c.MeanB = stat.Mean(b, nil)
	}
	if c.SizeA+c.SizeB < 2 {
		c.Insufficient = true
		return c
	}
	t, df, p, ok := welchTTest(a, b)
	if !ok {
		c.Degenerate = true
		return c
	}
	c.TStat, c.DF, c.PValue = t, df, p
	c.Significant = p < Alpha
	return c
}

// welchTTest computes the two-sample unequal-variance t statistic, the
// Welch–Satterthwaite degrees of freedom and the two-sided p-value. ok is
// false when the samples cannot produce a finite statistic (empty group,
// zero pooled variance, or fewer than 2 samples in a group, which leaves the
// df term undefined).
func welchTTest(a, b []float64) (t, df, p float64, ok bool) {
	n1, n2 := float64(len(a)), float64(len(b))
	if len(a) == 0 || len(b) == 0 {
		return 0, 0, 0, false
	}
	m1 := stat.Mean(a, nil)
	m2 := stat.Mean(b, nil)
	v1 := stat.Variance(a, nil) // sample variance, n-1 divisor; NaN for n=1
	v2 := stat.Variance(b, nil)

	se2 := v1/n1 + v2/n2
	if math.IsNaN(se2) || se2 <= 0 {
		return 0, 0, 0, false
	}
	t = (m1 - m2) / math.Sqrt(se2)

	// Welch–Satterthwaite approximation.
	df = se2 * se2 / ((v1/n1)*(v1/n1)/(n1-1) + (v2/n2)*(v2/n2)/(n2-1))
	if math.IsNaN(df) || math.IsInf(df, 0) || df <= 0 {
		return 0, 0, 0, false
	}
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	p = 2 * dist.CDF(-math.Abs(t))
	return t, df, p, true
}

func columnValue(t tickets.Ticket, column string) string {
	switch column {
	case tickets.ColIssueType:
		return t.IssueType
	default:
		// tickets.ColChannel is the reference configuration.
		return t.Channel
	}
}
