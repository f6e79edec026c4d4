package csv

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"churn-metrics-pipeline/internal/dataset/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func f(v float64) *float64 { return &v }

func TestWriteSnapshot_NullsAsEmptyCells(t *testing.T) {
	s := domain.Pivot(time.Now(), []string{"login_count", "purchase_count"}, []string{"A1", "B2"}, []domain.Observation{
		{AccountID: "A1", MetricName: "login_count", Value: f(2)},
		{AccountID: "B2", MetricName: "purchase_count", Value: f(0.5)},
	})

	var buf bytes.Buffer
	require.NoError(t, WriteSnapshot(&buf, s))

	assert.Equal(t, "account_id,login_count,purchase_count\nA1,2,\nB2,,0.5\n", buf.String())
}

func TestReadSnapshot_RoundTripKeepsNulls(t *testing.T) {
	in := "account_id,login_count,purchase_count\nA1,2,\nB2,,0.5\n"

	s, err := ReadSnapshot(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, s.Rows, 2)
	assert.Equal(t, []string{"login_count", "purchase_count"}, s.Metrics)

	v, _ := s.Value("A1", "purchase_count")
	assert.Nil(t, v)
	v, _ = s.Value("B2", "purchase_count")
	assert.Equal(t, 0.5, *v)

	var buf bytes.Buffer
	require.NoError(t, WriteSnapshot(&buf, s))
	assert.Equal(t, in, buf.String())
}

func TestReadSnapshot_Errors(t *testing.T) {
	_, err := ReadSnapshot(strings.NewReader(""))
	assert.True(t, errors.Is(err, ErrBadDataset))

	_, err = ReadSnapshot(strings.NewReader("metric,x\n"))
	assert.True(t, errors.Is(err, ErrBadDataset))

	_, err = ReadSnapshot(strings.NewReader("account_id,x\nA1,abc\n"))
	assert.True(t, errors.Is(err, ErrBadDataset))
	assert.Contains(t, err.Error(), "line 2")
}

func TestWriteSummary(t *testing.T) {
	s := domain.Pivot(time.Now(), []string{"m"}, []string{"A", "B"}, []domain.Observation{
		{AccountID: "A", MetricName: "m", Value: f(4)},
	})

	var buf bytes.Buffer
	require.NoError(t, WriteSummary(&buf, domain.Summarize(s)))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "metric,count,nonzero,mean,std,skew,min,1pct,25pct,50pct,75pct,99pct,max", lines[0])
	// single value: std and skew undefined
	assert.Equal(t, "m,1,0.5,4,,,4,4,4,4,4,4,4", lines[1])
}
