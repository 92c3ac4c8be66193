package checkin

import (
	"errors"
	"time"
)

const (
	MinMood = 1
	MaxMood = 5
)

// ErrMoodOutOfRange 心情评分不在 1~5 之间。
var ErrMoodOutOfRange = errors.New("mood must be between 1 and 5")

// Record 持久化的一次心情打卡。
type Record struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Mood      int       `json:"mood"`
	Note      string    `json:"note"`
	Language  string    `json:"language"`
	Timestamp time.Time `json:"timestamp"`
}

// Result 打卡流程返回给前端的内容。
type Result struct {
	Response string `json:"response"`
	Mood     int    `json:"mood"`
	Note     string `json:"note"`
}

// ValidateMood 校验评分范围。
func ValidateMood(mood int) error {
	if mood < MinMood || mood > MaxMood {
		return ErrMoodOutOfRange
	}
	return nil
}
