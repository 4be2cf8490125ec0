package app

import (
	"context"
	"errors"
	"time"

	"oceanwatch/internal/earnings"
	"oceanwatch/internal/service"
)

// SimulatePayout 构造一条模拟出块收益并走一遍告警通道。
func (a *App) SimulatePayout(ctx context.Context, account string, entry earnings.Entry) error {
	if !a.Config.Alerting.Enabled {
		return errors.New("alerting 未启用")
	}

	notifier := a.newNotifier()
	if notifier == nil {
		return errors.New("未配置任何告警通道")
	}

	resolved, err := a.Config.ResolveAccount(account)
	if err != nil {
		resolved = "simulated"
	}

	note := service.NotificationFor(resolved, entry, time.Now().UTC())
	note.Note = "(simulated payout)"
	return notifier.Notify(ctx, note)
}
