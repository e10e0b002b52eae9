package usecase

import "time"

// SetClock はテスト用に現在時刻の取得関数を差し替えます。
func (u *historyUsecase) SetClock(now func() time.Time) { u.now = now }
