package generator

import (
	"errors"
	"testing"
	"time"
)

func testRunDate() time.Time {
	return time.Date(2026, 8, 25, 0, 0, 0, 0, time.UTC)
}

func TestParamsValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Params)
		wantErr error
	}{
		{"defaults are valid", func(p *Params) {}, nil},
		{"zero user count", func(p *Params) { p.UserCount = 0 }, ErrInvalidArgument},
		{"negative user count", func(p *Params) { p.UserCount = -5 }, ErrInvalidArgument},
		{"zero window", func(p *Params) { p.HistoryWindowDays = 0 }, ErrInvalidArgument},
		{"p_verified above one", func(p *Params) { p.PVerified = 1.5 }, ErrInvalidArgument},
		{"p_verified negative", func(p *Params) { p.PVerified = -0.1 }, ErrInvalidArgument},
		{"zero run date", func(p *Params) { p.RunDate = time.Time{} }, ErrInvalidArgument},
		{"ab_ratio zero", func(p *Params) { p.ABRatio = 0 }, ErrInvalidConfiguration},
		{"ab_ratio one", func(p *Params) { p.ABRatio = 1 }, ErrInvalidConfiguration},
		{"negative session mean", func(p *Params) { p.SessionMean = -1 }, ErrInvalidConfiguration},
		{"unknown lift transition", func(p *Params) { p.ABLiftTransition = "search_to_checkout" }, ErrInvalidConfiguration},
		{
			"missing transition",
			func(p *Params) { delete(p.ContinueProb, ItemViewToChatClick) },
			ErrInvalidConfiguration,
		},
		{
			"probability above one",
			func(p *Params) { p.ContinueProb[PageViewToSearch] = 1.2 },
			ErrInvalidArgument,
		},
		{
			"probability negative",
			func(p *Params) { p.ContinueProb[ChatClickToChatSend] = -0.2 },
			ErrInvalidArgument,
		},
		{
			"unknown transition key",
			func(p *Params) { p.ContinueProb["chat_send_to_purchase"] = 0.5 },
			ErrInvalidConfiguration,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultParams(testRunDate())
			tt.mutate(&p)
			err := p.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Validate() error = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestStageRank(t *testing.T) {
	for i, stage := range FunnelStages {
		if got := StageRank(stage); got != i {
			t.Errorf("StageRank(%s) = %d, want %d", stage, got, i)
		}
	}
	if got := StageRank("purchase"); got != -1 {
		t.Errorf("StageRank(purchase) = %d, want -1", got)
	}
}
