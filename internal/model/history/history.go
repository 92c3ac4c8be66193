package history

import (
	"github.com/mindbridge/checkin/backend/internal/model/chat"
	"github.com/mindbridge/checkin/backend/internal/model/checkin"
)

// DefaultLimit 历史页每类记录展示的条数。
const DefaultLimit = 5

// History 某个用户最近的打卡与聊天记录，均按时间倒序。
type History struct {
	Checkins []checkin.Record     `json:"checkins"`
	Sessions []chat.SessionRecord `json:"sessions"`
}

// AnonymousUserID 未登录时所有记录归属的用户。
const AnonymousUserID int64 = 1
