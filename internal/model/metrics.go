package model

import "time"

// SummaryStats holds the overview metrics across all loans.
type SummaryStats struct {
	TotalLoans          int
	TotalAmount         float64
	AverageInterestRate float64
	AverageAmount       float64
}

// DatePoint is one point of a chronological series.
type DatePoint struct {
	Date  time.Time
	Value float64
}

// CategoryCount is the number of loans sharing one categorical value.
type CategoryCount struct {
	Key   string
	Count int
}

// HistogramBin is one equal-width loan amount bucket.
// ByTerm holds per-term counts; Count is their total.
type HistogramBin struct {
	Lower  float64
	Upper  float64
	Count  int
	ByTerm map[string]int
}

// BoxStats summarizes loan amounts for one purpose/term group.
type BoxStats struct {
	Purpose string
	Term    string
	Count   int
	Min     float64
	Q1      float64
	Median  float64
	Q3      float64
	Max     float64
	Mean    float64
}
