package health

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStatusWithoutChecks(t *testing.T) {
	report := NewService().Status(context.Background())
	assert.True(t, report.OK)
	assert.Nil(t, report.Checks)
}

func TestStatusReportsFailures(t *testing.T) {
	svc := NewService()
	svc.Add("database", func(context.Context) error { return nil })
	svc.Add("broker", func(context.Context) error { return errors.New("connection refused") })

	report := svc.Status(context.Background())
	assert.False(t, report.OK)
	assert.Equal(t, map[string]string{"database": "ok", "broker": "connection refused"}, report.Checks)
}

func TestStatusAppliesTimeout(t *testing.T) {
	svc := NewService()
	svc.Timeout = 20 * time.Millisecond
	svc.Add("slow", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	report := svc.Status(context.Background())
	assert.False(t, report.OK)
	assert.Equal(t, context.DeadlineExceeded.Error(), report.Checks["slow"])
}
