package handler

import (
    "testing"

    "github.com/stretchr/testify/assert"
)

func TestSummarize(t *testing.T) {
    cases := []struct {
        name      string
        confirmed int
        present   int
        want      string
    }{
        {"empty event", 0, 0, "0%"},
        {"nobody showed", 10, 0, "0.00%"},
        {"full house", 4, 4, "100.00%"},
        {"two thirds", 3, 2, "66.67%"},
        {"half", 8, 4, "50.00%"},
    }
    for _, tc := range cases {
        t.Run(tc.name, func(t *testing.T) {
            s := summarize(tc.confirmed, tc.present)
            assert.Equal(t, tc.confirmed, s.TotalConfirmed)
            assert.Equal(t, tc.present, s.TotalPresent)
            assert.Equal(t, tc.want, s.AttendancePercentage)
        })
    }
}
