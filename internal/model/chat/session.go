package chat

import "time"

// SessionRecord 持久化的一次聊天轮次，写入后不再修改。
type SessionRecord struct {
	ID             int64     `json:"id"`
	UserID         int64     `json:"user_id"`
	Message        string    `json:"message"`
	Response       string    `json:"response"`
	Language       string    `json:"language"`
	Timestamp      time.Time `json:"timestamp"`
	CrisisDetected bool      `json:"crisis_detected"`
}

// TurnResult 是编排器对一条消息给出的回复与危机标记。
type TurnResult struct {
	Response       string `json:"response"`
	CrisisDetected bool   `json:"crisis_detected"`
}
