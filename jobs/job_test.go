package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockComposer struct {
	mock.Mock
}

func (m *MockComposer) Compose(ctx context.Context, greeting string) string {
	args := m.Called(ctx, greeting)
	return args.String(0)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, chatID int64, text string) ([]int, error) {
	args := m.Called(ctx, chatID, text)
	ids, _ := args.Get(0).([]int)
	return ids, args.Error(1)
}

func TestTrigger_Greeting(t *testing.T) {
	tests := []struct {
		trigger Trigger
		want    string
	}{
		{trigger: TriggerScheduled, want: "Доброе утро!"},
		{trigger: TriggerOnDemand, want: "Данные по запросу:"},
		{trigger: Trigger("unknown"), want: ""},
	}
	for _, tt := range tests {
		t.Run(string(tt.trigger), func(t *testing.T) {
			if got := tt.trigger.Greeting(); got != tt.want {
				t.Errorf("Greeting() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBriefJob_Execute(t *testing.T) {
	tests := []struct {
		name       string
		trigger    Trigger
		publish    bool
		publishErr error
		wantErr    bool
	}{
		{name: "scheduled report is delivered", trigger: TriggerScheduled, publish: true},
		{name: "on-demand report is delivered", trigger: TriggerOnDemand, publish: true},
		{name: "delivery failure", trigger: TriggerOnDemand, publish: true, publishErr: errors.New("chat not found"), wantErr: true},
		{name: "dry run does not deliver", trigger: TriggerScheduled, publish: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := new(MockComposer)
			c.On("Compose", mock.Anything, tt.trigger.Greeting()).Return(tt.trigger.Greeting() + "\n\nreport")
			p := new(MockPublisher)
			p.On("Publish", mock.Anything, int64(1001), tt.trigger.Greeting()+"\n\nreport").Return([]int{1}, tt.publishErr)

			job := NewBriefJob(c, p)
			if tt.publish {
				job = job.Publish()
			}

			err := job.Execute(context.Background(), 1001, tt.trigger)
			if (err != nil) != tt.wantErr {
				t.Errorf("BriefJob.Execute() error = %v, wantErr %v", err, tt.wantErr)
			}
			c.AssertNumberOfCalls(t, "Compose", 1)
			if tt.publish {
				p.AssertNumberOfCalls(t, "Publish", 1)
			} else {
				p.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
			}
		})
	}
}

func TestBriefJob_Run_EveryTriggerRefetches(t *testing.T) {
	c := new(MockComposer)
	c.On("Compose", mock.Anything, "Данные по запросу:").Return("report")
	p := new(MockPublisher)
	p.On("Publish", mock.Anything, int64(7), "report").Return([]int{1}, nil)

	run := NewBriefJob(c, p).Publish().Run(7, TriggerOnDemand)
	run()
	run()

	c.AssertNumberOfCalls(t, "Compose", 2)
	p.AssertNumberOfCalls(t, "Publish", 2)
}

func TestBriefJob_Run_Timeout(t *testing.T) {
	c := new(MockComposer)
	c.On("Compose", mock.Anything, "Доброе утро!").Return("report").Run(func(args mock.Arguments) {
		ctx := args.Get(0).(context.Context)
		deadline, ok := ctx.Deadline()
		require.True(t, ok)
		assert.WithinDuration(t, time.Now().Add(time.Second), deadline, time.Second)
	})
	p := new(MockPublisher)
	p.On("Publish", mock.Anything, int64(7), "report").Return([]int{1}, nil)

	NewBriefJob(c, p).Publish().Timeout(time.Second).Run(7, TriggerScheduled)()
	c.AssertExpectations(t)
}
